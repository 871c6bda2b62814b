package weights

import (
	"context"
	"time"
)

// Repository es el adapter de persistencia de la grilla de pesajes.
// AppendOrUpdate tiene semántica upsert: misma (animal, timestamp) sobrescribe.
type Repository interface {
	LoadAll(ctx context.Context) (Grid, error)
	AppendOrUpdate(ctx context.Context, animalID AnimalID, at time.Time, weightKg float64) error
}
