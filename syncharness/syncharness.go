// Package syncharness provides reusable sync-quality metrics and grading
// for demo harnesses: a rolling tracker of frame deltas, a miss-rate
// accumulator, and a confidence-graded letter grade suitable for an
// on-screen HUD.
package syncharness

import (
	sd "github.com/phanxgames/subduction"
)

// SyncSample is a per-frame metrics sample fed into SyncTracker.Observe.
type SyncSample struct {
	Confidence   sd.TimingConfidence
	PhaseErrorMs float64
	HardMiss     bool
	SoftMiss     bool
	FrameDeltaMs float64
}

// SyncGrade is a letter grade for synchronization quality.
type SyncGrade uint8

const (
	GradeA SyncGrade = iota
	GradeB
	GradeC
	GradeD
)

// String returns a short label suitable for HUD rendering.
func (g SyncGrade) String() string {
	switch g {
	case GradeA:
		return "A"
	case GradeB:
		return "B"
	case GradeC:
		return "C"
	default:
		return "D"
	}
}

// SyncReport is the aggregated report returned by SyncTracker.Observe.
type SyncReport struct {
	Grade            SyncGrade
	MissRatePer1000  float64
	PhaseErrorMs     float64
	TotalFrames      uint64
	MissedFrames     uint64
}

// SyncTracker is a rolling sync tracker with a fixed-size frame-delta
// history, sized at construction.
type SyncTracker struct {
	deltasMs     []float64
	cursor       int
	totalFrames  uint64
	missedFrames uint64
}

// NewSyncTracker creates a tracker of the given size, with its ring buffer
// prefilled with seedDeltaMs.
func NewSyncTracker(seedDeltaMs float64, size int) *SyncTracker {
	if size <= 0 {
		panic("subduction: sync tracker size must be positive")
	}
	deltas := make([]float64, size)
	for i := range deltas {
		deltas[i] = seedDeltaMs
	}
	return &SyncTracker{deltasMs: deltas}
}

// Observe records one frame's sample and returns an updated report.
func (t *SyncTracker) Observe(sample SyncSample) SyncReport {
	t.totalFrames++
	n := len(t.deltasMs)
	t.deltasMs[t.cursor%n] = sample.FrameDeltaMs
	t.cursor = (t.cursor + 1) % n

	if sample.HardMiss || sample.SoftMiss {
		t.missedFrames++
	}

	var missRate float64
	if t.totalFrames != 0 {
		missRate = float64(t.missedFrames) * 1000.0 / float64(t.totalFrames)
	}

	grade := gradeFor(sample.Confidence, absF64(sample.PhaseErrorMs), missRate)

	return SyncReport{
		Grade:           grade,
		MissRatePer1000: missRate,
		PhaseErrorMs:    sample.PhaseErrorMs,
		TotalFrames:     t.totalFrames,
		MissedFrames:    t.missedFrames,
	}
}

// FrameDeltas returns the ring-buffer's frame deltas in oldest-to-newest
// order.
func (t *SyncTracker) FrameDeltas() []float64 {
	n := len(t.deltasMs)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = t.deltasMs[(t.cursor+i)%n]
	}
	return out
}

const sparklineLevels = " .:-=+*#%@"

// SparklineASCII renders an ASCII sparkline over FrameDeltas, clamped to
// [minMs, maxMs].
func (t *SyncTracker) SparklineASCII(minMs, maxMs float64) string {
	n := len(t.deltasMs)
	out := make([]byte, n)
	span := maxMs - minMs
	for i := 0; i < n; i++ {
		idx := (t.cursor + i) % n
		v := clamp(t.deltasMs[idx], minMs, maxMs)
		frac := (v - minMs) / span
		level := int(frac*float64(len(sparklineLevels)-1) + 0.5)
		if level < 0 {
			level = 0
		}
		if level >= len(sparklineLevels) {
			level = len(sparklineLevels) - 1
		}
		out[i] = sparklineLevels[level]
	}
	return string(out)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absF64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// gradeFor applies the per-confidence phase-error and miss-rate thresholds:
// tighter for Predictive, looser for PacingOnly, since lower-confidence
// timing sources are inherently noisier.
func gradeFor(conf sd.TimingConfidence, phaseErrorAbsMs, missRatePer1000 float64) SyncGrade {
	var aPhase, bPhase, cPhase, aMiss, bMiss, cMiss float64
	switch conf {
	case sd.Predictive:
		aPhase, bPhase, cPhase = 16.0, 32.0, 50.0
		aMiss, bMiss, cMiss = 1.0, 5.0, 15.0
	case sd.Estimated:
		aPhase, bPhase, cPhase = 24.0, 45.0, 70.0
		aMiss, bMiss, cMiss = 3.0, 10.0, 25.0
	default: // PacingOnly
		aPhase, bPhase, cPhase = 35.0, 65.0, 100.0
		aMiss, bMiss, cMiss = 10.0, 30.0, 80.0
	}

	switch {
	case phaseErrorAbsMs < aPhase && missRatePer1000 < aMiss:
		return GradeA
	case phaseErrorAbsMs < bPhase && missRatePer1000 < bMiss:
		return GradeB
	case phaseErrorAbsMs < cPhase && missRatePer1000 < cMiss:
		return GradeC
	default:
		return GradeD
	}
}
