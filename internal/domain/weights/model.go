package weights

import (
	"strconv"
	"strings"
	"time"
)

// TimestampLayout es el formato de los encabezados de columna de la grilla.
const TimestampLayout = "2006-01-02 15:04:05"

// AnimalID es opaco y sensible a mayúsculas: "002" y "2" son animales distintos.
type AnimalID string

// NormalizeAnimalID solo recorta espacios; no se quitan ceros a la izquierda.
func NormalizeAnimalID(raw string) AnimalID {
	return AnimalID(strings.TrimSpace(raw))
}

// Observation es un pesaje de un animal en un instante (resolución de segundos).
type Observation struct {
	AnimalID AnimalID
	At       time.Time
	WeightKg float64
}

// Series son las observaciones de un animal, ordenadas ascendente por At.
type Series []Observation

func (s Series) Len() int { return len(s) }

// First devuelve la observación más antigua.
func (s Series) First() (Observation, bool) {
	if len(s) == 0 {
		return Observation{}, false
	}
	return s[0], true
}

// Last devuelve la observación más reciente (el peso actual).
func (s Series) Last() (Observation, bool) {
	if len(s) == 0 {
		return Observation{}, false
	}
	return s[len(s)-1], true
}

// Grid es la forma persistida: una fila por animal, una columna por timestamp,
// celdas crudas ("" = sin observación). Cells está alineado por índice con Columns
// y puede ser más corto (celdas finales vacías).
type Grid struct {
	Columns []string
	Rows    []Row
}

type Row struct {
	AnimalID string
	Cells    []string
}

// Cell devuelve la celda de la columna i ("" si no existe).
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// MalformedCell describe una celda salteada al construir un snapshot.
type MalformedCell struct {
	AnimalID string
	Column   string
	Value    string
	Reason   string
}

// FormatTimestamp produce el encabezado de columna para at.
func FormatTimestamp(at time.Time) string {
	return at.Format(TimestampLayout)
}

// FormatWeight serializa un peso sin pérdida (round-trip exacto con ParseFloat).
func FormatWeight(kg float64) string {
	return strconv.FormatFloat(kg, 'f', -1, 64)
}

// ParseTimestamp acepta el layout de la grilla o RFC3339.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(TimestampLayout, raw, loc)
	if err == nil {
		return t, nil
	}
	t2, err2 := time.Parse(time.RFC3339, raw)
	if err2 != nil {
		return time.Time{}, err
	}
	return t2.In(loc).Truncate(time.Second), nil
}

// Set escribe value en (animalID, column), agregando fila o columna al final si no existen.
// Devuelve los índices usados.
func (g *Grid) Set(animalID, column, value string) (row, col int) {
	col = -1
	for i, h := range g.Columns {
		if h == column {
			col = i
			break
		}
	}
	if col < 0 {
		g.Columns = append(g.Columns, column)
		col = len(g.Columns) - 1
	}

	row = -1
	for i, r := range g.Rows {
		if NormalizeAnimalID(r.AnimalID) == AnimalID(animalID) {
			row = i
			break
		}
	}
	if row < 0 {
		g.Rows = append(g.Rows, Row{AnimalID: animalID})
		row = len(g.Rows) - 1
	}

	cells := g.Rows[row].Cells
	for len(cells) <= col {
		cells = append(cells, "")
	}
	cells[col] = value
	g.Rows[row].Cells = cells
	return row, col
}

// Clone copia la grilla en profundidad.
func (g Grid) Clone() Grid {
	out := Grid{
		Columns: append([]string(nil), g.Columns...),
		Rows:    make([]Row, len(g.Rows)),
	}
	for i, r := range g.Rows {
		out.Rows[i] = Row{AnimalID: r.AnimalID, Cells: append([]string(nil), r.Cells...)}
	}
	return out
}
