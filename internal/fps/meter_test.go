package fps

import (
	"errors"
	"math"
	"testing"
	"time"
)

func ms(v float64) time.Duration {
	return time.Duration(v * float64(time.Millisecond))
}

func TestFirstSampleSeedsAverage(t *testing.T) {
	var m Meter
	got, err := m.Update(ms(16.6))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got != 60.2 {
		t.Fatalf("first sample avg=%f want=60.2", got)
	}
}

func TestSubsequentSamplesAreSmoothed(t *testing.T) {
	var m Meter
	m.Update(ms(20))
	got, _ := m.Update(ms(40))
	if want := 50*0.95 + 25*0.05; math.Abs(got-want) > 1e-9 {
		t.Fatalf("avg=%f want=%f", got, want)
	}
}

func TestSixtyThenThirty(t *testing.T) {
	var m Meter
	m.Update(ms(16.6))
	got, _ := m.Update(ms(33.3))
	if math.Abs(got-58.5) > 0.25 {
		t.Fatalf("avg=%f want≈58.5", got)
	}
	if m.Instant() != 30 {
		t.Fatalf("instant=%f want=30", m.Instant())
	}
}

func TestNonPositiveElapsedIsRejected(t *testing.T) {
	var m Meter
	m.Update(ms(10))
	for _, d := range []time.Duration{0, -time.Millisecond} {
		got, err := m.Update(d)
		if !errors.Is(err, ErrInvalidElapsed) {
			t.Fatalf("Update(%v): expected ErrInvalidElapsed, got %v", d, err)
		}
		if got != 100 || math.IsNaN(got) {
			t.Fatalf("Update(%v) changed average to %f", d, got)
		}
	}
}

func TestZeroValueReportsZero(t *testing.T) {
	var m Meter
	if m.Average() != 0 {
		t.Fatalf("expected unseeded average 0, got %f", m.Average())
	}
}
