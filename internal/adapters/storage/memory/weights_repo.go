package memory

import (
	"context"
	"sync"
	"time"

	"herd-weight-tracker/internal/domain/weights"
)

// weightsRepo guarda la grilla en memoria; se pierde al reiniciar.
type weightsRepo struct {
	mu   sync.RWMutex
	grid weights.Grid
}

func NewWeightsRepo() weights.Repository {
	return &weightsRepo{}
}

// NewWeightsRepoFrom arranca con una grilla existente (copiada).
func NewWeightsRepoFrom(g weights.Grid) weights.Repository {
	return &weightsRepo{grid: g.Clone()}
}

func (r *weightsRepo) LoadAll(ctx context.Context) (weights.Grid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.grid.Clone(), nil
}

func (r *weightsRepo) AppendOrUpdate(ctx context.Context, animalID weights.AnimalID, at time.Time, weightKg float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.grid.Set(string(animalID), weights.FormatTimestamp(at), weights.FormatWeight(weightKg))
	return nil
}
