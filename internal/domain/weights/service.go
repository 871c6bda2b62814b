package weights

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"herd-weight-tracker/internal/platform/logger"
	"herd-weight-tracker/internal/platform/metrics"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidWeight = errors.New("weight must be a positive number")
	ErrNotFound      = errors.New("not found")
)

type Service struct {
	repo Repository
	loc  *time.Location
	log  logger.Logger
	now  func() time.Time
}

type Options struct {
	// Zona de los encabezados de la grilla (nil = time.Local).
	Location *time.Location
	Logger   logger.Logger
}

func NewService(repo Repository, opts Options) *Service {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo: repo,
		loc:  loc,
		log:  log.With(map[string]any{"component": "weights"}),
		now:  time.Now,
	}
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// Upsert registra un pesaje. Si at es cero se usa el reloj truncado al segundo,
// así que dos llamadas en el mismo segundo caen en la misma columna.
func (s *Service) Upsert(ctx context.Context, animalID string, at time.Time, weightKg float64) (Observation, error) {
	id := NormalizeAnimalID(animalID)
	if id == "" {
		return Observation{}, ErrInvalidInput
	}
	if math.IsNaN(weightKg) || math.IsInf(weightKg, 0) || weightKg <= 0 {
		return Observation{}, ErrInvalidWeight
	}
	if at.IsZero() {
		at = s.now()
	}
	at = at.In(s.loc).Truncate(time.Second)

	if err := s.repo.AppendOrUpdate(ctx, id, at, weightKg); err != nil {
		return Observation{}, fmt.Errorf("append or update: %w", err)
	}
	metrics.ObservationsUpserted.Inc()

	s.log.Debug("weight recorded", map[string]any{
		"animal_id": string(id),
		"taken_at":  FormatTimestamp(at),
		"weight_kg": weightKg,
	})

	return Observation{AnimalID: id, At: at, WeightKg: weightKg}, nil
}

// Snapshot carga la grilla completa. Todo lo que se lea dentro de una misma
// operación lógica debe salir del mismo snapshot.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	g, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load all: %w", err)
	}
	snap := NewSnapshot(g, s.loc)

	if bad := snap.Malformed(); len(bad) > 0 {
		metrics.MalformedCells.Add(float64(len(bad)))
		first := bad[0]
		s.log.Warn("skipped malformed cells", map[string]any{
			"count":        len(bad),
			"first_animal": first.AnimalID,
			"first_column": first.Column,
			"first_reason": first.Reason,
		})
	}
	return snap, nil
}

func (s *Service) ListAnimalIDs(ctx context.Context) ([]AnimalID, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.AnimalIDs(), nil
}

func (s *Service) SeriesFor(ctx context.Context, animalID string) (Series, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Series(NormalizeAnimalID(animalID)), nil
}

// WeightAt devuelve ErrNotFound si no hay pesaje exactamente en at.
func (s *Service) WeightAt(ctx context.Context, animalID string, at time.Time) (float64, error) {
	id := NormalizeAnimalID(animalID)
	if id == "" || at.IsZero() {
		return 0, ErrInvalidInput
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	w, ok := snap.WeightAt(id, at)
	if !ok {
		return 0, ErrNotFound
	}
	return w, nil
}

// Timestamps lista el catálogo de columnas.
func (s *Service) Timestamps(ctx context.Context) ([]time.Time, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Timestamps(), nil
}
