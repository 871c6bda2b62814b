// Package sheet persiste la grilla de pesajes en un libro xlsx: columna A con el id
// del animal, fila 1 con los timestamps.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"herd-weight-tracker/internal/domain/weights"
)

const (
	SheetName = "weights"
	IDHeader  = "cow_id"
)

type Repo struct {
	mu   sync.Mutex
	path string
}

// New no toca el disco: el archivo se crea en la primera escritura.
func New(path string) *Repo {
	return &Repo{path: path}
}

func (r *Repo) Path() string {
	return r.path
}

// LoadAll relee el archivo en cada llamada; un archivo inexistente es una grilla vacía.
func (r *Repo) LoadAll(ctx context.Context) (weights.Grid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return weights.Grid{}, nil
		}
		return weights.Grid{}, fmt.Errorf("open %s: %w", r.path, err)
	}
	defer f.Close()

	return readGrid(f)
}

func (r *Repo) AppendOrUpdate(ctx context.Context, animalID weights.AnimalID, at time.Time, weightKg float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.openOrCreate()
	if err != nil {
		return err
	}
	defer f.Close()

	g, err := readGrid(f)
	if err != nil {
		return err
	}

	header := weights.FormatTimestamp(at)
	row, col := g.Set(string(animalID), header, weights.FormatWeight(weightKg))

	sheet := activeSheet(f)
	if err := setCell(f, sheet, col+2, 1, header); err != nil {
		return err
	}
	if err := setCell(f, sheet, 1, row+2, string(animalID)); err != nil {
		return err
	}
	cell, err := excelize.CoordinatesToCellName(col+2, row+2)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, weightKg); err != nil {
		return fmt.Errorf("write %s: %w", cell, err)
	}

	if err := f.SaveAs(r.path); err != nil {
		return fmt.Errorf("save %s: %w", r.path, err)
	}
	return nil
}

func (r *Repo) openOrCreate() (*excelize.File, error) {
	f, err := excelize.OpenFile(r.path)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("open %s: %w", r.path, err)
	}

	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return newWorkbook()
}

func newWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.SetCellStr(SheetName, "A1", IDHeader); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

// activeSheet equivale a la hoja activa del libro (la primera si no hay otra marcada).
func activeSheet(f *excelize.File) string {
	if name := f.GetSheetName(f.GetActiveSheetIndex()); name != "" {
		return name
	}
	return f.GetSheetName(0)
}

func setCell(f *excelize.File, sheet string, col, row int, v string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellStr(sheet, cell, v)
}

// setWeightCell escribe números como número y deja el resto como texto crudo.
func setWeightCell(f *excelize.File, sheet string, col, row int, raw string) error {
	kg, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return setCell(f, sheet, col, row, raw)
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, kg)
}

// readGrid convierte las filas crudas; RawCellValue evita que el formato numérico
// de la celda altere los pesos.
func readGrid(f *excelize.File) (weights.Grid, error) {
	rows, err := f.GetRows(activeSheet(f), excelize.Options{RawCellValue: true})
	if err != nil {
		return weights.Grid{}, fmt.Errorf("read rows: %w", err)
	}

	var g weights.Grid
	if len(rows) == 0 {
		return g, nil
	}
	if len(rows[0]) > 1 {
		g.Columns = append(g.Columns, rows[0][1:]...)
	}

	// Las filas vacías se conservan como Row{} para que el índice de la grilla
	// siga siendo la fila de la hoja menos dos.
	for _, raw := range rows[1:] {
		if len(raw) == 0 {
			g.Rows = append(g.Rows, weights.Row{})
			continue
		}
		row := weights.Row{AnimalID: raw[0]}
		if len(raw) > 1 {
			row.Cells = append(row.Cells, raw[1:]...)
		}
		g.Rows = append(g.Rows, row)
	}
	return g, nil
}

// Export escribe la grilla como libro xlsx en w, con el mismo layout que el repo.
func Export(g weights.Grid, w io.Writer) error {
	f, err := newWorkbook()
	if err != nil {
		return err
	}
	defer f.Close()

	for i, h := range g.Columns {
		if err := setCell(f, SheetName, i+2, 1, h); err != nil {
			return err
		}
	}
	for ri, row := range g.Rows {
		if err := setCell(f, SheetName, 1, ri+2, row.AnimalID); err != nil {
			return err
		}
		for ci, c := range row.Cells {
			if c == "" {
				continue
			}
			if err := setWeightCell(f, SheetName, ci+2, ri+2, c); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
