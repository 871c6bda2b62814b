package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"herd-weight-tracker/internal/domain/forecast"
	"herd-weight-tracker/internal/domain/growth"
	"herd-weight-tracker/internal/domain/weights"
)

// -------------------------
// Fake store
// -------------------------

type fakeStore struct {
	grid  weights.Grid
	err   error
	loads int
}

func (s *fakeStore) Snapshot(ctx context.Context) (*weights.Snapshot, error) {
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return weights.NewSnapshot(s.grid, time.UTC), nil
}

func herdGrid() weights.Grid {
	return weights.Grid{
		Columns: []string{"2024-01-01 08:00:00", "2024-01-11 08:00:00"},
		Rows: []weights.Row{
			{AnimalID: "007", Cells: []string{"500", "520"}},
			{AnimalID: "008", Cells: []string{"500"}},
			{AnimalID: "009", Cells: []string{"480", "500"}},
			{AnimalID: "010", Cells: []string{"500", "500"}},
		},
	}
}

func newTestFacade(store Snapshotter) *Facade {
	return NewFacade(store, forecast.NewEngine(forecast.DefaultGainPerDay), Options{})
}

// -------------------------
// Tests
// -------------------------

func TestFacade_AnimalReport(t *testing.T) {
	f := newTestFacade(&fakeStore{grid: herdGrid()})

	rep, err := f.AnimalReport(context.Background(), " 007 ")
	if err != nil {
		t.Fatalf("AnimalReport error: %v", err)
	}
	if rep.AnimalID != "007" || rep.Observations != 2 {
		t.Fatalf("unexpected report header %#v", rep)
	}
	if rep.CurrentWeight != 520 || rep.First.WeightKg != 500 {
		t.Fatalf("unexpected weights %#v", rep)
	}
	if rep.GainPerDay == nil || *rep.GainPerDay != 2.0 {
		t.Fatalf("expected GMD 2.0, got %v", rep.GainPerDay)
	}
	if rep.MeanWeight != 510 {
		t.Fatalf("expected mean 510, got %v", rep.MeanWeight)
	}
	if rep.Projected == nil || *rep.Projected != 520+2.0*DefaultHorizonDays {
		t.Fatalf("unexpected projection %v", rep.Projected)
	}
}

func TestFacade_AnimalReport_SingleObservation(t *testing.T) {
	f := newTestFacade(&fakeStore{grid: herdGrid()})

	rep, err := f.AnimalReport(context.Background(), "008")
	if err != nil {
		t.Fatalf("AnimalReport error: %v", err)
	}
	if rep.GainStatus != growth.GainInsufficientData || rep.GainPerDay != nil || rep.Projected != nil {
		t.Fatalf("expected no gain data, got %#v", rep)
	}
	if rep.CurrentWeight != 500 {
		t.Fatalf("expected current 500, got %v", rep.CurrentWeight)
	}
}

func TestFacade_AnimalReport_UnknownAnimal(t *testing.T) {
	f := newTestFacade(&fakeStore{grid: herdGrid()})

	_, err := f.AnimalReport(context.Background(), "7")
	if !errors.Is(err, ErrUnknownAnimal) {
		t.Fatalf("expected ErrUnknownAnimal, got %v", err)
	}
}

func TestFacade_HerdReport(t *testing.T) {
	store := &fakeStore{grid: herdGrid()}
	f := newTestFacade(store)

	rep, err := f.HerdReport(context.Background())
	if err != nil {
		t.Fatalf("HerdReport error: %v", err)
	}
	if store.loads != 1 {
		t.Fatalf("expected a single snapshot load, got %d", store.loads)
	}
	if rep.Animals != 4 || rep.WeighedAnimals != 4 || rep.GainAnimals != 3 {
		t.Fatalf("unexpected counts %#v", rep)
	}
	// (520+500+500+500)/4
	if rep.MeanCurrentWeight == nil || *rep.MeanCurrentWeight != 505 {
		t.Fatalf("expected mean current 505, got %v", rep.MeanCurrentWeight)
	}
	// (2+2+0)/3
	want := 4.0 / 3.0
	if rep.MeanGainPerDay == nil || *rep.MeanGainPerDay != want {
		t.Fatalf("expected mean gain %v, got %v", want, rep.MeanGainPerDay)
	}
	if rep.ProjectedWeight == nil || *rep.ProjectedWeight != 505+want*DefaultHorizonDays {
		t.Fatalf("unexpected projection %v", rep.ProjectedWeight)
	}
}

func TestFacade_HerdReport_Empty(t *testing.T) {
	f := newTestFacade(&fakeStore{})

	rep, err := f.HerdReport(context.Background())
	if err != nil {
		t.Fatalf("HerdReport error: %v", err)
	}
	if rep.MeanCurrentWeight != nil || rep.MeanGainPerDay != nil || rep.ProjectedWeight != nil {
		t.Fatalf("expected all aggregates undefined, got %#v", rep)
	}
}

func TestFacade_SimulateGoal_MeasuredGain(t *testing.T) {
	f := newTestFacade(&fakeStore{grid: herdGrid()})
	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	f.engine = forecastAt(base)

	sim, err := f.SimulateGoal(context.Background(), "009", 560, decimal.NewFromInt(300))
	if err != nil {
		t.Fatalf("SimulateGoal error: %v", err)
	}
	if sim.GainSource != GainSourceMeasured || sim.GainPerDay != 2.0 {
		t.Fatalf("expected measured 2.0, got %v (%s)", sim.GainPerDay, sim.GainSource)
	}
	if sim.Days != 30 {
		t.Fatalf("expected 30 days, got %d", sim.Days)
	}
	if !sim.EstimatedDate.Equal(base.AddDate(0, 0, 30)) {
		t.Fatalf("unexpected estimated date %v", sim.EstimatedDate)
	}
	if sim.Value.StringFixed(2) != "11200.00" {
		t.Fatalf("expected 11200.00, got %s", sim.Value.StringFixed(2))
	}
}

func TestFacade_SimulateGoal_DefaultGainWhenUndefined(t *testing.T) {
	f := newTestFacade(&fakeStore{grid: herdGrid()})

	sim, err := f.SimulateGoal(context.Background(), "008", 540, decimal.NewFromInt(300))
	if err != nil {
		t.Fatalf("SimulateGoal error: %v", err)
	}
	if sim.GainSource != GainSourceDefault || sim.GainPerDay != forecast.DefaultGainPerDay {
		t.Fatalf("expected default gain, got %v (%s)", sim.GainPerDay, sim.GainSource)
	}
	if sim.Days != 50 {
		t.Fatalf("expected 40/0.8 = 50 days, got %d", sim.Days)
	}
}

func TestFacade_SimulateGoal_ZeroGainIsUnreachable(t *testing.T) {
	f := newTestFacade(&fakeStore{grid: herdGrid()})

	_, err := f.SimulateGoal(context.Background(), "010", 560, decimal.NewFromInt(300))
	if !errors.Is(err, forecast.ErrUnreachableTarget) {
		t.Fatalf("expected ErrUnreachableTarget, got %v", err)
	}
}

func TestFacade_PropagatesStoreError(t *testing.T) {
	boom := errors.New("sheet locked")
	f := newTestFacade(&fakeStore{err: boom})

	if _, err := f.HerdReport(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func forecastAt(now time.Time) *forecast.Engine {
	e := forecast.NewEngine(forecast.DefaultGainPerDay)
	e.SetClock(func() time.Time { return now })
	return e
}
