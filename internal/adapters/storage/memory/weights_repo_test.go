package memory

import (
	"context"
	"testing"
	"time"

	"herd-weight-tracker/internal/domain/weights"
)

func TestWeightsRepo_AppendOrUpdate(t *testing.T) {
	repo := NewWeightsRepo()
	ctx := context.Background()

	t1 := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	t2 := t1.AddDate(0, 0, 10)

	_ = repo.AppendOrUpdate(ctx, "007", t1, 500)
	_ = repo.AppendOrUpdate(ctx, "008", t2, 480.5)
	_ = repo.AppendOrUpdate(ctx, "007", t1, 505)

	g, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}
	if len(g.Columns) != 2 || g.Columns[0] != "2024-01-01 08:00:00" {
		t.Fatalf("unexpected columns %v", g.Columns)
	}
	if len(g.Rows) != 2 || g.Rows[0].AnimalID != "007" || g.Rows[1].AnimalID != "008" {
		t.Fatalf("unexpected rows %#v", g.Rows)
	}
	if g.Rows[0].Cell(0) != "505" {
		t.Fatalf("expected overwrite to 505, got %q", g.Rows[0].Cell(0))
	}
	if g.Rows[1].Cell(0) != "" || g.Rows[1].Cell(1) != "480.5" {
		t.Fatalf("unexpected cells for 008: %v", g.Rows[1].Cells)
	}
}

func TestWeightsRepo_LoadAllReturnsCopy(t *testing.T) {
	repo := NewWeightsRepoFrom(weights.Grid{
		Columns: []string{"2024-01-01 08:00:00"},
		Rows:    []weights.Row{{AnimalID: "A", Cells: []string{"300"}}},
	})

	g, _ := repo.LoadAll(context.Background())
	g.Rows[0].Cells[0] = "999"

	again, _ := repo.LoadAll(context.Background())
	if again.Rows[0].Cell(0) != "300" {
		t.Fatalf("repository state leaked through LoadAll")
	}
}
