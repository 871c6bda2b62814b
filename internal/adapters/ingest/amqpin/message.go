package amqpin

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/encoding/json"

	"herd-weight-tracker/internal/domain/weights"
)

var ErrInvalidMessage = errors.New("invalid weighing message")

// WeighingEvent es un pesaje terminado publicado por la balanza (no muestras crudas).
type WeighingEvent struct {
	AnimalID string  `json:"animal_id"`
	WeightKg float64 `json:"weight_kg"`
	// "YYYY-MM-DD HH:MM:SS" o RFC3339; vacío = hora de recepción.
	TakenAt string `json:"taken_at"`
}

// Decode valida la forma del mensaje; el rango del peso lo valida el store.
func Decode(body []byte, loc *time.Location) (WeighingEvent, time.Time, error) {
	var ev WeighingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if strings.TrimSpace(ev.AnimalID) == "" {
		return ev, time.Time{}, fmt.Errorf("%w: animal_id required", ErrInvalidMessage)
	}

	var at time.Time
	if strings.TrimSpace(ev.TakenAt) != "" {
		t, err := weights.ParseTimestamp(ev.TakenAt, loc)
		if err != nil {
			return ev, time.Time{}, fmt.Errorf("%w: taken_at: %v", ErrInvalidMessage, err)
		}
		at = t
	}
	return ev, at, nil
}
