package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"herd-weight-tracker/internal/domain/weights"
)

// WeightsRepo guarda la grilla en tres tablas: filas (animales), columnas (timestamps) y celdas.
// Las celdas son texto crudo para que una celda inválida se comporte igual que en la planilla.
type WeightsRepo struct {
	db *sql.DB
	d  Dialect
}

func NewWeightsRepo(db *sql.DB, d Dialect) *WeightsRepo {
	return &WeightsRepo{db: db, d: d}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS weight_animals (
		animal_id VARCHAR(191) NOT NULL PRIMARY KEY,
		position  INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS weight_columns (
		taken_at VARCHAR(32) NOT NULL PRIMARY KEY,
		position INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS weight_cells (
		animal_id VARCHAR(191) NOT NULL,
		taken_at  VARCHAR(32) NOT NULL,
		weight    VARCHAR(64) NOT NULL,
		PRIMARY KEY (animal_id, taken_at)
	)`,
}

// EnsureSchema crea las tablas si no existen.
func (r *WeightsRepo) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// LoadAll lee las tres tablas dentro de una transacción de lectura para que
// columnas, animales y celdas salgan del mismo estado.
func (r *WeightsRepo) LoadAll(ctx context.Context) (weights.Grid, error) {
	var g weights.Grid

	tx, err := r.db.BeginTx(ctx, r.d.ReadTx)
	if err != nil {
		return g, err
	}
	defer func() { _ = tx.Rollback() }()

	cols, err := queryStrings(ctx, tx, `SELECT taken_at FROM weight_columns ORDER BY position`)
	if err != nil {
		return g, err
	}
	ids, err := queryStrings(ctx, tx, `SELECT animal_id FROM weight_animals ORDER BY position`)
	if err != nil {
		return g, err
	}

	colIdx := make(map[string]int, len(cols))
	for i, c := range cols {
		colIdx[c] = i
	}
	rowIdx := make(map[string]int, len(ids))
	g.Columns = cols
	g.Rows = make([]weights.Row, len(ids))
	for i, id := range ids {
		rowIdx[id] = i
		g.Rows[i] = weights.Row{AnimalID: id}
	}

	rows, err := tx.QueryContext(ctx, `SELECT animal_id, taken_at, weight FROM weight_cells`)
	if err != nil {
		return g, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, at, w string
		if err := rows.Scan(&id, &at, &w); err != nil {
			return g, err
		}
		ri, okR := rowIdx[id]
		ci, okC := colIdx[at]
		if !okR || !okC {
			continue
		}
		cells := g.Rows[ri].Cells
		for len(cells) <= ci {
			cells = append(cells, "")
		}
		cells[ci] = w
		g.Rows[ri].Cells = cells
	}
	if err := rows.Err(); err != nil {
		return g, err
	}
	if err := rows.Close(); err != nil {
		return g, err
	}
	return g, tx.Commit()
}

func (r *WeightsRepo) AppendOrUpdate(ctx context.Context, animalID weights.AnimalID, at time.Time, weightKg float64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	header := weights.FormatTimestamp(at)

	// position = max+1; WHERE 1=1 evita la ambigüedad de sqlite entre ON de join y ON CONFLICT.
	if _, err := tx.ExecContext(ctx, r.d.rebind(fmt.Sprintf(`
		%s weight_columns (taken_at, position)
		SELECT %s, COALESCE(MAX(position), 0) + 1 FROM weight_columns WHERE 1=1
		%s
	`, r.d.InsertIgnore, r.d.TextParam, r.d.OnConflictNothing)), header); err != nil {
		return fmt.Errorf("insert column: %w", err)
	}

	if _, err := tx.ExecContext(ctx, r.d.rebind(fmt.Sprintf(`
		%s weight_animals (animal_id, position)
		SELECT %s, COALESCE(MAX(position), 0) + 1 FROM weight_animals WHERE 1=1
		%s
	`, r.d.InsertIgnore, r.d.TextParam, r.d.OnConflictNothing)), string(animalID)); err != nil {
		return fmt.Errorf("insert animal: %w", err)
	}

	if _, err := tx.ExecContext(ctx, r.d.rebind(fmt.Sprintf(`
		INSERT INTO weight_cells (animal_id, taken_at, weight)
		VALUES (?, ?, ?)
		%s
	`, r.d.UpsertCell)), string(animalID), header, weights.FormatWeight(weightKg)); err != nil {
		return fmt.Errorf("upsert cell: %w", err)
	}

	return tx.Commit()
}

func queryStrings(ctx context.Context, tx *sql.Tx, q string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
