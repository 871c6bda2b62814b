package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect resume las diferencias de SQL entre motores.
type Dialect struct {
	Name       string
	DriverName string
	// Placeholders $n en vez de ?.
	Numbered bool
	// Sufijo de upsert de celdas.
	UpsertCell string
	// Prefijo para insertar ignorando duplicados.
	InsertIgnore string
	// Sufijo para insertar ignorando duplicados.
	OnConflictNothing string
	// Parámetro de texto en un SELECT sin tipo de destino.
	TextParam string
	// Opciones de la transacción de lectura de LoadAll; nil usa las del driver.
	ReadTx *sql.TxOptions
}

// snapshotRead: una sola instantánea para todas las consultas de la transacción.
var snapshotRead = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

var (
	Postgres = Dialect{
		Name:              "postgres",
		DriverName:        "pgx",
		Numbered:          true,
		UpsertCell:        "ON CONFLICT (animal_id, taken_at) DO UPDATE SET weight = EXCLUDED.weight",
		InsertIgnore:      "INSERT INTO",
		OnConflictNothing: "ON CONFLICT DO NOTHING",
		TextParam:         "CAST(? AS TEXT)",
		ReadTx:            snapshotRead,
	}
	MySQL = Dialect{
		Name:         "mysql",
		DriverName:   "mysql",
		UpsertCell:   "ON DUPLICATE KEY UPDATE weight = VALUES(weight)",
		InsertIgnore: "INSERT IGNORE INTO",
		TextParam:    "CAST(? AS CHAR)",
		ReadTx:       snapshotRead,
	}
	SQLite = Dialect{
		Name:              "sqlite",
		DriverName:        "sqlite",
		UpsertCell:        "ON CONFLICT (animal_id, taken_at) DO UPDATE SET weight = excluded.weight",
		InsertIgnore:      "INSERT INTO",
		OnConflictNothing: "ON CONFLICT DO NOTHING",
		TextParam:         "?",
	}
)

func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "pgx":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported sql driver %q", driver)
	}
}

// rebind reescribe ? como $1..$n para dialectos numerados.
func (d Dialect) rebind(q string) string {
	if !d.Numbered {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Open abre un pool para el dialecto y hace ping.
func Open(ctx context.Context, d Dialect, dsn string) (*sql.DB, error) {
	if d.Name == SQLite.Name && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o750); err != nil {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	db, err := sql.Open(d.DriverName, dsn)
	if err != nil {
		return nil, err
	}

	// defaults razonables (ajustable luego)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)
	if d.Name == SQLite.Name {
		// un solo escritor
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
