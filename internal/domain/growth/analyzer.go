// Package growth calcula el ganho médio diário (GMD) de un animal y los
// agregados del rebaño a partir de series de pesajes.
package growth

import (
	"sort"
	"time"

	"herd-weight-tracker/internal/domain/weights"
)

type GainStatus string

const (
	// GainDefined: hay valor numérico.
	GainDefined GainStatus = "defined"
	// GainInsufficientData: menos de dos observaciones.
	GainInsufficientData GainStatus = "insufficient_data"
	// GainUndefined: los extremos existen pero no pasó ningún día completo.
	GainUndefined GainStatus = "undefined"
)

// Gain es el resultado de AverageDailyGain. First/Last solo se informan con >= 2 observaciones.
type Gain struct {
	First  weights.Observation
	Last   weights.Observation
	Days   int
	PerDay float64
	Status GainStatus
}

// Value devuelve el GMD y si está definido.
func (g Gain) Value() (float64, bool) {
	if g.Status != GainDefined {
		return 0, false
	}
	return g.PerDay, true
}

// WholeDays cuenta días completos de reloj entre a y b (trunca el resto).
// Compara la hora de pared, así un cambio de horario no quita ni agrega un día.
func WholeDays(a, b time.Time) int {
	return int(wallClock(b).Sub(wallClock(a)) / (24 * time.Hour))
}

func wallClock(t time.Time) time.Time {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, mo, d, h, mi, s, t.Nanosecond(), time.UTC)
}

// AverageDailyGain usa solo la primera y la última observación cronológica.
// Una ganancia negativa (pérdida de peso) es un resultado válido.
func AverageDailyGain(series weights.Series) Gain {
	if len(series) < 2 {
		return Gain{Status: GainInsufficientData}
	}

	first, last := series[0], series[len(series)-1]
	g := Gain{
		First: first,
		Last:  last,
		Days:  WholeDays(first.At, last.At),
	}

	// Mismo día calendario => 0 días completos; también cubre < 24h entre días distintos.
	if g.Days <= 0 {
		g.Days = 0
		g.Status = GainUndefined
		return g
	}

	g.PerDay = (last.WeightKg - first.WeightKg) / float64(g.Days)
	g.Status = GainDefined
	return g
}

// MeanWeight promedia todas las observaciones de la serie.
func MeanWeight(series weights.Series) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, o := range series {
		sum += o.WeightKg
	}
	return sum / float64(len(series)), true
}

// HerdStats agrega el rebaño. Los dos promedios tienen conjuntos de elegibilidad independientes.
type HerdStats struct {
	// Animales con al menos una observación.
	WeighedAnimals    int
	MeanCurrentWeight float64
	HasCurrentWeight  bool

	// Animales con GMD definido.
	GainAnimals int
	MeanGain    float64
	HasGain     bool
}

// HerdAverage promedia el peso más reciente de cada animal con >= 1 observación y
// el GMD de los animales cuyo GMD está definido.
func HerdAverage(seriesByAnimal map[weights.AnimalID]weights.Series) HerdStats {
	// Orden estable de suma para resultados reproducibles.
	ids := make([]weights.AnimalID, 0, len(seriesByAnimal))
	for id := range seriesByAnimal {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var st HerdStats
	sumWeight, sumGain := 0.0, 0.0

	for _, id := range ids {
		series := seriesByAnimal[id]
		last, ok := series.Last()
		if !ok {
			continue
		}
		st.WeighedAnimals++
		sumWeight += last.WeightKg

		if v, ok := AverageDailyGain(series).Value(); ok {
			st.GainAnimals++
			sumGain += v
		}
	}

	if st.WeighedAnimals > 0 {
		st.MeanCurrentWeight = sumWeight / float64(st.WeighedAnimals)
		st.HasCurrentWeight = true
	}
	if st.GainAnimals > 0 {
		st.MeanGain = sumGain / float64(st.GainAnimals)
		st.HasGain = true
	}
	return st
}
