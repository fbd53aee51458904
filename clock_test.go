package subduction

import "testing"

func TestAffineClockUninitializedReturnsNone(t *testing.T) {
	c := NewAffineClock(1.0, 0.2, 0.2)
	if _, ok := c.MediaTimeAt(1000); ok {
		t.Error("expected no mapping before first update")
	}
}

func TestAffineClockFirstObservationSetsMappingExactly(t *testing.T) {
	c := NewAffineClock(1.0, 0.2, 0.2)
	c.Update(1000, 5.0)
	got, ok := c.MediaTimeAt(1000)
	if !ok || got != 5.0 {
		t.Errorf("media_time_at(1000) = %v, ok=%v, want 5.0", got, ok)
	}
}

func TestAffineClockRateConverges(t *testing.T) {
	c := NewAffineClock(1.0, 0.5, 0.5)
	// Feed a steady rate of 2.0 media-units per host-tick.
	c.Update(0, 0)
	for i := 1; i <= 20; i++ {
		c.Update(uint64(i*100), float64(i*100)*2.0)
	}
	got, _ := c.MediaTimeAt(2000)
	want := 4000.0
	if diff := got - want; diff > 5 || diff < -5 {
		t.Errorf("converged prediction = %v, want close to %v", got, want)
	}
}

func TestAffineClockResetClearsState(t *testing.T) {
	c := NewAffineClock(1.0, 0.2, 0.2)
	c.Update(1000, 5.0)
	c.Reset()
	if _, ok := c.MediaTimeAt(1000); ok {
		t.Error("expected no mapping after reset")
	}
}
