package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDaysToTarget_GoalScenario(t *testing.T) {
	e := NewEngine(DefaultGainPerDay)

	days, err := e.DaysToTarget(500, 560, 2.0)
	if err != nil {
		t.Fatalf("DaysToTarget error: %v", err)
	}
	if days != 30 {
		t.Fatalf("expected 30 days, got %d", days)
	}
}

func TestDaysToTarget_FloorsAndClampsToOne(t *testing.T) {
	e := NewEngine(DefaultGainPerDay)

	cases := []struct {
		current, target, gain float64
		want                  int
	}{
		{500, 507, 2.0, 3},   // 3.5 => 3
		{500, 501, 2.0, 1},   // 0.5 => 1
		{560, 500, 2.0, 1},   // ya alcanzada
		{500, 500, 0, 1},     // sin brecha
		{560, 500, -2.0, 30}, // pérdida de peso hacia una meta menor
	}
	for _, c := range cases {
		got, err := e.DaysToTarget(c.current, c.target, c.gain)
		if err != nil {
			t.Fatalf("%v->%v @ %v: unexpected error %v", c.current, c.target, c.gain, err)
		}
		if got != c.want {
			t.Fatalf("%v->%v @ %v: expected %d, got %d", c.current, c.target, c.gain, c.want, got)
		}
	}
}

func TestDaysToTarget_UnreachableWithNonPositiveGain(t *testing.T) {
	e := NewEngine(DefaultGainPerDay)

	for _, g := range []float64{0, -0.5} {
		if _, err := e.DaysToTarget(500, 560, g); !errors.Is(err, ErrUnreachableTarget) {
			t.Fatalf("gain %v: expected ErrUnreachableTarget, got %v", g, err)
		}
	}
}

func TestDaysToTarget_RejectsNonFinite(t *testing.T) {
	e := NewEngine(DefaultGainPerDay)

	if _, err := e.DaysToTarget(math.NaN(), 560, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDaysToTargetAtDefault(t *testing.T) {
	e := NewEngine(0) // cae en 0.8

	if e.DefaultGain() != DefaultGainPerDay {
		t.Fatalf("expected default gain fallback, got %v", e.DefaultGain())
	}
	days, err := e.DaysToTargetAtDefault(400, 480)
	if err != nil {
		t.Fatalf("DaysToTargetAtDefault error: %v", err)
	}
	if days != 100 {
		t.Fatalf("expected 80/0.8 = 100 days, got %d", days)
	}
}

func TestProjectWeight_NoClamping(t *testing.T) {
	e := NewEngine(DefaultGainPerDay)

	up, _ := e.ProjectWeight(400, 1.0, 90)
	if up != 490 {
		t.Fatalf("expected 490, got %v", up)
	}
	down, _ := e.ProjectWeight(400, -0.5, 90)
	if down != 355 {
		t.Fatalf("expected 355, got %v", down)
	}
	if _, err := e.ProjectWeight(400, 1, -1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative horizon, got %v", err)
	}
}

func TestEstimatedDate(t *testing.T) {
	e := NewEngine(DefaultGainPerDay)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return base }

	got := e.EstimatedDate(30)
	if !got.Equal(base.AddDate(0, 0, 30)) {
		t.Fatalf("expected %v, got %v", base.AddDate(0, 0, 30), got)
	}
}

func TestMonetaryValue(t *testing.T) {
	e := NewEngine(DefaultGainPerDay)

	v, err := e.MonetaryValue(560, decimal.NewFromInt(300))
	if err != nil {
		t.Fatalf("MonetaryValue error: %v", err)
	}
	if !v.Equal(decimal.NewFromInt(11200)) {
		t.Fatalf("expected 11200, got %s", v)
	}
	if v.StringFixed(2) != "11200.00" {
		t.Fatalf("expected 11200.00, got %s", v.StringFixed(2))
	}

	// 500 kg = 33.33... arrobas
	v2, _ := e.MonetaryValue(500, decimal.RequireFromString("310.50"))
	if v2.StringFixed(2) != "10350.00" {
		t.Fatalf("expected 10350.00, got %s", v2.StringFixed(2))
	}
}
