// Package forecast proyecta pesos futuros con un modelo lineal y valora metas en arrobas.
package forecast

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// ArrobaKg es fijo; no es configurable.
	ArrobaKg = 15
	// DefaultGainPerDay se usa cuando no hay GMD medido.
	DefaultGainPerDay = 0.8
)

var (
	ErrUnreachableTarget = errors.New("target weight is unreachable with the given daily gain")
	ErrInvalidInput      = errors.New("invalid input")
)

var arroba = decimal.NewFromInt(ArrobaKg)

type Engine struct {
	defaultGain float64
	now         func() time.Time
}

// NewEngine crea el motor. Una tasa por defecto no positiva o no finita cae en DefaultGainPerDay.
func NewEngine(defaultGainPerDay float64) *Engine {
	if !finite(defaultGainPerDay) || defaultGainPerDay <= 0 {
		defaultGainPerDay = DefaultGainPerDay
	}
	return &Engine{
		defaultGain: defaultGainPerDay,
		now:         time.Now,
	}
}

// SetClock reemplaza el reloj usado por EstimatedDate.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

func (e *Engine) DefaultGain() float64 {
	return e.defaultGain
}

// ProjectWeight = current + gain*horizon. Sin recorte: con GMD negativo el resultado baja.
func (e *Engine) ProjectWeight(current, gainPerDay float64, horizonDays int) (float64, error) {
	if !finite(current) || !finite(gainPerDay) || horizonDays < 0 {
		return 0, ErrInvalidInput
	}
	return current + gainPerDay*float64(horizonDays), nil
}

// DaysToTarget devuelve max(1, floor((target-current)/gain)).
func (e *Engine) DaysToTarget(current, target, gainPerDay float64) (int, error) {
	if !finite(current) || !finite(target) || !finite(gainPerDay) {
		return 0, ErrInvalidInput
	}

	gap := target - current
	if gap > 0 && gainPerDay <= 0 {
		return 0, ErrUnreachableTarget
	}

	// Meta ya alcanzada: solo un GMD negativo (bajar de peso) da más de un día.
	if gap <= 0 && gainPerDay >= 0 {
		return 1, nil
	}

	days := math.Floor(gap / gainPerDay)
	if days < 1 {
		return 1, nil
	}
	if days > math.MaxInt32 {
		return 0, ErrUnreachableTarget
	}
	return int(days), nil
}

func (e *Engine) DaysToTargetAtDefault(current, target float64) (int, error) {
	return e.DaysToTarget(current, target, e.defaultGain)
}

// EstimatedDate = ahora + days.
func (e *Engine) EstimatedDate(days int) time.Time {
	return e.now().AddDate(0, 0, days)
}

// MonetaryValue = target * precio / 15, redondeado a centavos.
func (e *Engine) MonetaryValue(targetKg float64, pricePerArroba decimal.Decimal) (decimal.Decimal, error) {
	if !finite(targetKg) {
		return decimal.Zero, ErrInvalidInput
	}
	return decimal.NewFromFloat(targetKg).Mul(pricePerArroba).Div(arroba).Round(2), nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
