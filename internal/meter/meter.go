// Package meter produces gas readings. Field hardware speaks a vendor
// protocol this demo does not carry, so the only implementation simulates a
// four-gas meter with plausible cave atmosphere values.
package meter

import (
	"math"
	"math/rand"
	"time"

	"cama/internal/survey"
)

// ReadingSource yields one gas reading per call, stamped at capture time.
type ReadingSource interface {
	Read() survey.GasReading
}

// Simulated emits random readings inside realistic bounds: O2 near the
// 20.9% atmospheric norm, trace CO/H2S, low LEL.
type Simulated struct {
	rng *rand.Rand
}

// NewSimulated builds a simulated meter. A zero seed derives one from the
// clock so unseeded meters differ run to run.
func NewSimulated(seed int64) *Simulated {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulated{rng: rand.New(rand.NewSource(seed))}
}

func (m *Simulated) Read() survey.GasReading {
	return survey.GasReading{
		CapturedAt: time.Now().UTC(),
		O2Pct:      roundTo(m.uniform(18.0, 21.0), 2),
		COPpm:      roundTo(m.uniform(0, 15), 1),
		H2SPpm:     roundTo(m.uniform(0, 5), 1),
		LELPct:     roundTo(m.uniform(0, 5), 1),
	}
}

func (m *Simulated) uniform(lo, hi float64) float64 {
	return lo + m.rng.Float64()*(hi-lo)
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
