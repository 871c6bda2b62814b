package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"herd-weight-tracker/internal/domain/forecast"
	"herd-weight-tracker/internal/domain/growth"
	"herd-weight-tracker/internal/domain/weights"
	"herd-weight-tracker/internal/platform/logger"
)

var ErrUnknownAnimal = errors.New("unknown animal")

// GainSource indica de dónde salió el GMD usado en una simulación.
type GainSource string

const (
	GainSourceMeasured GainSource = "measured"
	GainSourceDefault  GainSource = "default"
)

// DefaultHorizonDays es el horizonte de proyección de los reportes.
const DefaultHorizonDays = 90

// AnimalReport: los punteros nil significan "sin dato".
type AnimalReport struct {
	AnimalID      weights.AnimalID
	Observations  int
	First         weights.Observation
	Last          weights.Observation
	CurrentWeight float64
	MeanWeight    float64
	GainStatus    growth.GainStatus
	GainPerDay    *float64
	GainDays      int
	HorizonDays   int
	Projected     *float64
}

type HerdReport struct {
	Animals           int
	WeighedAnimals    int
	GainAnimals       int
	MeanCurrentWeight *float64
	MeanGainPerDay    *float64
	HorizonDays       int
	ProjectedWeight   *float64
}

type Simulation struct {
	AnimalID       weights.AnimalID
	CurrentWeight  float64
	TargetWeight   float64
	GainPerDay     float64
	GainSource     GainSource
	Days           int
	EstimatedDate  time.Time
	PricePerArroba decimal.Decimal
	Value          decimal.Decimal
}

// Snapshotter es lo que el facade necesita del store.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*weights.Snapshot, error)
}

type Facade struct {
	store   Snapshotter
	engine  *forecast.Engine
	horizon int
	log     logger.Logger
}

type Options struct {
	HorizonDays int
	Logger      logger.Logger
}

func NewFacade(store Snapshotter, engine *forecast.Engine, opts Options) *Facade {
	h := opts.HorizonDays
	if h <= 0 {
		h = DefaultHorizonDays
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Facade{
		store:   store,
		engine:  engine,
		horizon: h,
		log:     log.With(map[string]any{"component": "analytics"}),
	}
}

func (f *Facade) seriesOf(ctx context.Context, animalID string) (weights.AnimalID, weights.Series, error) {
	id := weights.NormalizeAnimalID(animalID)
	if id == "" {
		return "", nil, weights.ErrInvalidInput
	}
	snap, err := f.store.Snapshot(ctx)
	if err != nil {
		return "", nil, err
	}
	series := snap.Series(id)
	if len(series) == 0 {
		return id, nil, ErrUnknownAnimal
	}
	return id, series, nil
}

func (f *Facade) AnimalReport(ctx context.Context, animalID string) (AnimalReport, error) {
	id, series, err := f.seriesOf(ctx, animalID)
	if err != nil {
		return AnimalReport{}, err
	}

	first, _ := series.First()
	last, _ := series.Last()
	mean, _ := growth.MeanWeight(series)
	gain := growth.AverageDailyGain(series)

	rep := AnimalReport{
		AnimalID:      id,
		Observations:  len(series),
		First:         first,
		Last:          last,
		CurrentWeight: last.WeightKg,
		MeanWeight:    mean,
		GainStatus:    gain.Status,
		GainDays:      gain.Days,
		HorizonDays:   f.horizon,
	}

	if v, ok := gain.Value(); ok {
		rep.GainPerDay = &v
		p, err := f.engine.ProjectWeight(last.WeightKg, v, f.horizon)
		if err != nil {
			return AnimalReport{}, fmt.Errorf("project weight: %w", err)
		}
		rep.Projected = &p
	}
	return rep, nil
}

func (f *Facade) HerdReport(ctx context.Context) (HerdReport, error) {
	snap, err := f.store.Snapshot(ctx)
	if err != nil {
		return HerdReport{}, err
	}

	st := growth.HerdAverage(snap.All())
	rep := HerdReport{
		Animals:        len(snap.AnimalIDs()),
		WeighedAnimals: st.WeighedAnimals,
		GainAnimals:    st.GainAnimals,
		HorizonDays:    f.horizon,
	}
	if st.HasCurrentWeight {
		w := st.MeanCurrentWeight
		rep.MeanCurrentWeight = &w
	}
	if st.HasGain {
		g := st.MeanGain
		rep.MeanGainPerDay = &g
	}
	// La proyección necesita ambos promedios.
	if st.HasCurrentWeight && st.HasGain {
		p, err := f.engine.ProjectWeight(st.MeanCurrentWeight, st.MeanGain, f.horizon)
		if err != nil {
			return HerdReport{}, fmt.Errorf("project weight: %w", err)
		}
		rep.ProjectedWeight = &p
	}
	return rep, nil
}

// SimulateGoal usa el GMD medido; si no está definido, la tasa por defecto del motor.
func (f *Facade) SimulateGoal(ctx context.Context, animalID string, targetKg float64, pricePerArroba decimal.Decimal) (Simulation, error) {
	id, series, err := f.seriesOf(ctx, animalID)
	if err != nil {
		return Simulation{}, err
	}
	last, _ := series.Last()

	gain, source := f.engine.DefaultGain(), GainSourceDefault
	if v, ok := growth.AverageDailyGain(series).Value(); ok {
		gain, source = v, GainSourceMeasured
	}

	days, err := f.engine.DaysToTarget(last.WeightKg, targetKg, gain)
	if err != nil {
		return Simulation{}, err
	}
	value, err := f.engine.MonetaryValue(targetKg, pricePerArroba)
	if err != nil {
		return Simulation{}, err
	}

	f.log.Debug("goal simulated", map[string]any{
		"animal_id":   string(id),
		"target_kg":   targetKg,
		"gain_source": string(source),
		"days":        days,
	})

	return Simulation{
		AnimalID:       id,
		CurrentWeight:  last.WeightKg,
		TargetWeight:   targetKg,
		GainPerDay:     gain,
		GainSource:     source,
		Days:           days,
		EstimatedDate:  f.engine.EstimatedDate(days),
		PricePerArroba: pricePerArroba,
		Value:          value,
	}, nil
}
