package sheet

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"herd-weight-tracker/internal/domain/weights"
)

func TestRepo_LoadAllMissingFileIsEmpty(t *testing.T) {
	repo := New(filepath.Join(t.TempDir(), "data", "weights.xlsx"))

	g, err := repo.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}
	if len(g.Columns) != 0 || len(g.Rows) != 0 {
		t.Fatalf("expected empty grid, got %#v", g)
	}
}

func TestRepo_AppendOrUpdate_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "weights.xlsx")
	repo := New(path)
	ctx := context.Background()

	t1 := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	t2 := t1.AddDate(0, 0, 10)

	steps := []struct {
		id string
		at time.Time
		kg float64
	}{
		{"002", t1, 500},
		{"2", t1, 310.25},
		{"002", t2, 520.4},
		{"002", t1, 501}, // sobrescribe
	}
	for _, s := range steps {
		if err := repo.AppendOrUpdate(ctx, weights.AnimalID(s.id), s.at, s.kg); err != nil {
			t.Fatalf("AppendOrUpdate(%s) error: %v", s.id, err)
		}
	}

	g, err := New(path).LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}
	if len(g.Columns) != 2 || g.Columns[1] != "2024-01-11 08:00:00" {
		t.Fatalf("unexpected columns %v", g.Columns)
	}
	if len(g.Rows) != 2 || g.Rows[0].AnimalID != "002" || g.Rows[1].AnimalID != "2" {
		t.Fatalf("expected distinct ids 002 and 2, got %#v", g.Rows)
	}

	snap := weights.NewSnapshot(g, time.UTC)
	if w, ok := snap.WeightAt("002", t1); !ok || w != 501 {
		t.Fatalf("expected overwritten 501, got %v (%v)", w, ok)
	}
	if w, ok := snap.WeightAt("002", t2); !ok || w != 520.4 {
		t.Fatalf("expected 520.4, got %v (%v)", w, ok)
	}
	if w, ok := snap.WeightAt("2", t1); !ok || w != 310.25 {
		t.Fatalf("expected 310.25, got %v (%v)", w, ok)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile error: %v", err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue(SheetName, "A1"); v != IDHeader {
		t.Fatalf("expected %q header, got %q", IDHeader, v)
	}
}

func TestRepo_AppendOrUpdate_KeepsSheetRowsAfterBlankRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.xlsx")
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	f, err := newWorkbook()
	if err != nil {
		t.Fatalf("newWorkbook error: %v", err)
	}
	for cell, v := range map[string]string{
		"B1": weights.FormatTimestamp(at),
		"A2": "A", "B2": "100",
		"A4": "B", "B4": "200",
	} {
		if err := f.SetCellStr(SheetName, cell, v); err != nil {
			t.Fatalf("SetCellStr(%s) error: %v", cell, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs error: %v", err)
	}
	_ = f.Close()

	repo := New(path)
	if err := repo.AppendOrUpdate(ctx, "B", at, 250); err != nil {
		t.Fatalf("AppendOrUpdate error: %v", err)
	}

	f, err = excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile error: %v", err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue(SheetName, "A3"); v != "" {
		t.Fatalf("expected blank row 3 untouched, got %q", v)
	}
	if v, _ := f.GetCellValue(SheetName, "B4"); v != "250" {
		t.Fatalf("expected B4 overwritten with 250, got %q", v)
	}

	g, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}
	snap := weights.NewSnapshot(g, time.UTC)
	if w, ok := snap.WeightAt("B", at); !ok || w != 250 {
		t.Fatalf("expected 250 for B, got %v (%v)", w, ok)
	}
	if w, ok := snap.WeightAt("A", at); !ok || w != 100 {
		t.Fatalf("expected 100 for A, got %v (%v)", w, ok)
	}
	if ids := snap.AnimalIDs(); len(ids) != 2 {
		t.Fatalf("expected two animals, got %v", ids)
	}
}

func TestExport(t *testing.T) {
	g := weights.Grid{
		Columns: []string{"2024-01-01 08:00:00", "2024-01-11 08:00:00"},
		Rows: []weights.Row{
			{AnimalID: "007", Cells: []string{"500", "520"}},
			{AnimalID: "008", Cells: []string{"", "n/a"}},
		},
	}

	var buf bytes.Buffer
	if err := Export(g, &buf); err != nil {
		t.Fatalf("Export error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader error: %v", err)
	}
	defer f.Close()

	got, err := readGrid(f)
	if err != nil {
		t.Fatalf("readGrid error: %v", err)
	}
	if len(got.Rows) != 2 || got.Rows[0].Cell(1) != "520" {
		t.Fatalf("unexpected exported grid %#v", got)
	}
	if got.Rows[1].Cell(0) != "" || got.Rows[1].Cell(1) != "n/a" {
		t.Fatalf("expected malformed cell kept as text, got %v", got.Rows[1].Cells)
	}
}
