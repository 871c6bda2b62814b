package sqlstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"herd-weight-tracker/internal/domain/weights"
)

func newSQLiteRepo(t *testing.T) *WeightsRepo {
	t.Helper()

	db, err := Open(context.Background(), SQLite, filepath.Join(t.TempDir(), "data", "weights.db"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewWeightsRepo(db, SQLite)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema error: %v", err)
	}
	return repo
}

func TestWeightsRepo_SQLite_AppendOrUpdate(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	t1 := time.Date(2024, 1, 11, 8, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	steps := []struct {
		id string
		at time.Time
		kg float64
	}{
		{"007", t1, 520},
		{"008", t2, 500},
		{"007", t2, 500},
		{"007", t1, 521.5}, // sobrescribe
	}
	for _, s := range steps {
		if err := repo.AppendOrUpdate(ctx, weights.AnimalID(s.id), s.at, s.kg); err != nil {
			t.Fatalf("AppendOrUpdate(%s) error: %v", s.id, err)
		}
	}

	g, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}

	// Orden de aparición, no cronológico.
	if len(g.Columns) != 2 || g.Columns[0] != "2024-01-11 08:00:00" || g.Columns[1] != "2024-01-01 08:00:00" {
		t.Fatalf("unexpected columns %v", g.Columns)
	}
	if len(g.Rows) != 2 || g.Rows[0].AnimalID != "007" || g.Rows[1].AnimalID != "008" {
		t.Fatalf("unexpected rows %#v", g.Rows)
	}
	if g.Rows[0].Cell(0) != "521.5" || g.Rows[0].Cell(1) != "500" {
		t.Fatalf("unexpected cells for 007: %v", g.Rows[0].Cells)
	}
	if g.Rows[1].Cell(0) != "" || g.Rows[1].Cell(1) != "500" {
		t.Fatalf("unexpected cells for 008: %v", g.Rows[1].Cells)
	}

	series := weights.NewSnapshot(g, time.UTC).Series("007")
	if len(series) != 2 || !series[0].At.Equal(t2) {
		t.Fatalf("expected ascending series, got %v", series)
	}
}

func TestWeightsRepo_SQLite_EmptyStore(t *testing.T) {
	repo := newSQLiteRepo(t)

	g, err := repo.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}
	if len(g.Columns) != 0 || len(g.Rows) != 0 {
		t.Fatalf("expected empty grid, got %#v", g)
	}
}

func TestWeightsRepo_SQLite_LoadAllReleasesReadTx(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	// Con una sola conexión, una transacción de lectura sin cerrar bloquearía la escritura siguiente.
	for i := 0; i < 3; i++ {
		if err := repo.AppendOrUpdate(ctx, "007", at.AddDate(0, 0, i), 500+float64(i)); err != nil {
			t.Fatalf("AppendOrUpdate #%d error: %v", i, err)
		}
		g, err := repo.LoadAll(ctx)
		if err != nil {
			t.Fatalf("LoadAll #%d error: %v", i, err)
		}
		if len(g.Columns) != i+1 || len(g.Rows) != 1 || len(g.Rows[0].Cells) != i+1 {
			t.Fatalf("LoadAll #%d: unexpected grid %#v", i, g)
		}
	}
}

func TestDialect_ReadTxIsSnapshot(t *testing.T) {
	for _, d := range []Dialect{Postgres, MySQL} {
		if d.ReadTx == nil || !d.ReadTx.ReadOnly || d.ReadTx.Isolation != sql.LevelRepeatableRead {
			t.Fatalf("%s: expected read-only repeatable read, got %#v", d.Name, d.ReadTx)
		}
	}
}

func TestDialect_Rebind(t *testing.T) {
	got := Postgres.rebind("INSERT INTO t (a, b) VALUES (?, ?)")
	if got != "INSERT INTO t (a, b) VALUES ($1, $2)" {
		t.Fatalf("unexpected rebind %q", got)
	}
	if MySQL.rebind("?") != "?" {
		t.Fatalf("mysql must keep ? placeholders")
	}
}

func TestDialectFor(t *testing.T) {
	for in, want := range map[string]string{"postgres": "postgres", "PGX": "postgres", "mysql": "mysql", "sqlite": "sqlite"} {
		d, err := DialectFor(in)
		if err != nil || d.Name != want {
			t.Fatalf("DialectFor(%q) = %q, %v", in, d.Name, err)
		}
	}
	if _, err := DialectFor("oracle"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
