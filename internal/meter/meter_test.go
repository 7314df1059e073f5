package meter

import (
	"math"
	"testing"
)

func TestSimulatedReadingsStayInBounds(t *testing.T) {
	m := NewSimulated(42)
	for i := 0; i < 500; i++ {
		r := m.Read()
		if r.O2Pct < 18.0 || r.O2Pct > 21.0 {
			t.Fatalf("o2 out of range: %v", r.O2Pct)
		}
		if r.COPpm < 0 || r.COPpm > 15 {
			t.Fatalf("co out of range: %v", r.COPpm)
		}
		if r.H2SPpm < 0 || r.H2SPpm > 5 {
			t.Fatalf("h2s out of range: %v", r.H2SPpm)
		}
		if r.LELPct < 0 || r.LELPct > 5 {
			t.Fatalf("lel out of range: %v", r.LELPct)
		}
		if r.CapturedAt.IsZero() {
			t.Fatal("captured_at not stamped")
		}
	}
}

func TestSimulatedReadingsAreRounded(t *testing.T) {
	m := NewSimulated(7)
	for i := 0; i < 100; i++ {
		r := m.Read()
		if got := roundTo(r.O2Pct, 2); got != r.O2Pct {
			t.Fatalf("o2 not rounded to 2 places: %v", r.O2Pct)
		}
		for _, v := range []float64{r.COPpm, r.H2SPpm, r.LELPct} {
			if math.Round(v*10)/10 != v {
				t.Fatalf("value not rounded to 1 place: %v", v)
			}
		}
	}
}

func TestSimulatedSeedIsDeterministic(t *testing.T) {
	a := NewSimulated(99)
	b := NewSimulated(99)
	for i := 0; i < 20; i++ {
		ra, rb := a.Read(), b.Read()
		if ra.O2Pct != rb.O2Pct || ra.COPpm != rb.COPpm || ra.H2SPpm != rb.H2SPpm || ra.LELPct != rb.LELPct {
			t.Fatalf("seeded meters diverged at %d: %+v vs %+v", i, ra, rb)
		}
	}
}
