package weights

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Snapshot es una vista inmutable de la grilla, cargada una sola vez por operación lógica.
type Snapshot struct {
	ids       []AnimalID
	series    map[AnimalID]Series
	catalog   []time.Time
	malformed []MalformedCell
}

// NewSnapshot parsea la grilla de forma tolerante: celdas con encabezado o peso
// inválido se saltean y quedan registradas en Malformed().
func NewSnapshot(g Grid, loc *time.Location) *Snapshot {
	if loc == nil {
		loc = time.Local
	}

	s := &Snapshot{
		series: make(map[AnimalID]Series),
	}

	cols := make([]time.Time, len(g.Columns))
	colOK := make([]bool, len(g.Columns))
	seenTS := map[int64]struct{}{}
	for i, h := range g.Columns {
		t, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(h), loc)
		if err != nil {
			continue
		}
		cols[i] = t
		colOK[i] = true
		if _, ok := seenTS[t.Unix()]; !ok {
			seenTS[t.Unix()] = struct{}{}
			s.catalog = append(s.catalog, t)
		}
	}

	// Por animal: unix -> observación. Filas duplicadas se fusionan y la última escrita gana.
	byAnimal := map[AnimalID]map[int64]Observation{}

	for _, row := range g.Rows {
		id := NormalizeAnimalID(row.AnimalID)
		if id == "" {
			for i, c := range row.Cells {
				if strings.TrimSpace(c) == "" {
					continue
				}
				s.malformed = append(s.malformed, MalformedCell{
					Column: columnName(g.Columns, i),
					Value:  c,
					Reason: "missing animal id",
				})
			}
			continue
		}

		cells, ok := byAnimal[id]
		if !ok {
			cells = map[int64]Observation{}
			byAnimal[id] = cells
			s.ids = append(s.ids, id)
		}

		for i, raw := range row.Cells {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			if i >= len(g.Columns) || !colOK[i] {
				s.malformed = append(s.malformed, MalformedCell{
					AnimalID: string(id),
					Column:   columnName(g.Columns, i),
					Value:    raw,
					Reason:   "invalid timestamp header",
				})
				continue
			}
			w, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
				s.malformed = append(s.malformed, MalformedCell{
					AnimalID: string(id),
					Column:   g.Columns[i],
					Value:    raw,
					Reason:   "invalid weight",
				})
				continue
			}
			cells[cols[i].Unix()] = Observation{AnimalID: id, At: cols[i], WeightKg: w}
		}
	}

	for id, cells := range byAnimal {
		series := make(Series, 0, len(cells))
		for _, o := range cells {
			series = append(series, o)
		}
		sort.Slice(series, func(i, j int) bool {
			return series[i].At.Before(series[j].At)
		})
		s.series[id] = series
	}

	return s
}

func columnName(cols []string, i int) string {
	if i >= 0 && i < len(cols) {
		return cols[i]
	}
	return ""
}

// AnimalIDs en orden de primera aparición.
func (s *Snapshot) AnimalIDs() []AnimalID {
	out := make([]AnimalID, len(s.ids))
	copy(out, s.ids)
	return out
}

// Series devuelve la serie del animal; vacía si es desconocido.
func (s *Snapshot) Series(id AnimalID) Series {
	src := s.series[NormalizeAnimalID(string(id))]
	out := make(Series, len(src))
	copy(out, src)
	return out
}

// All devuelve todas las series (incluye animales sin observaciones válidas).
func (s *Snapshot) All() map[AnimalID]Series {
	out := make(map[AnimalID]Series, len(s.series))
	for id := range s.series {
		out[id] = s.Series(id)
	}
	return out
}

// WeightAt busca coincidencia exacta al segundo; sin interpolación.
func (s *Snapshot) WeightAt(id AnimalID, at time.Time) (float64, bool) {
	target := at.Truncate(time.Second)
	for _, o := range s.series[NormalizeAnimalID(string(id))] {
		if o.At.Equal(target) {
			return o.WeightKg, true
		}
	}
	return 0, false
}

// Timestamps es el catálogo de columnas válidas, en orden de aparición.
func (s *Snapshot) Timestamps() []time.Time {
	out := make([]time.Time, len(s.catalog))
	copy(out, s.catalog)
	return out
}

func (s *Snapshot) Malformed() []MalformedCell {
	out := make([]MalformedCell, len(s.malformed))
	copy(out, s.malformed)
	return out
}
