package subduction

// TimingConfidence grades how much a platform backend knows about future
// presentation.
type TimingConfidence uint8

const (
	// Predictive means the platform predicts present time with low error
	// (e.g. CVDisplayLink / CADisplayLink with a present-time prediction).
	Predictive TimingConfidence = iota
	// Estimated means vsync-ish timing with higher error.
	Estimated
	// PacingOnly means the platform offers no present-time prediction at
	// all.
	PacingOnly
)

func (c TimingConfidence) String() string {
	switch c {
	case Predictive:
		return "Predictive"
	case Estimated:
		return "Estimated"
	case PacingOnly:
		return "PacingOnly"
	default:
		return "Unknown"
	}
}

// FrameTick is produced by the platform backend for each frame
// opportunity.
type FrameTick struct {
	Now                HostTime
	PredictedPresent    HostTime
	HasPredictedPresent bool
	RefreshInterval     Duration
	HasRefreshInterval  bool
	Confidence          TimingConfidence
	FrameIndex          uint64 // monotone
	Output              OutputId
	PrevActualPresent   HostTime
	HasPrevActualPresent bool
}

// PresentHints is produced by the backend from a tick and a safety margin.
type PresentHints struct {
	DesiredPresent    HostTime
	HasDesiredPresent bool
	LatestCommit      HostTime
}

// ComputePresentHints implements the standard policy from spec §4.6:
// desired_present = tick.predicted_present; latest_commit =
// desired_present - safety_margin, or tick.now if that underflows or no
// prediction exists. Backends may override this (e.g. pacing-only backends
// always return {none, tick.now}).
func ComputePresentHints(tick FrameTick, safetyMargin Duration) PresentHints {
	if !tick.HasPredictedPresent {
		return PresentHints{LatestCommit: tick.Now}
	}
	latest, ok := tick.PredictedPresent.CheckedSub(safetyMargin)
	if !ok {
		latest = tick.Now
	}
	return PresentHints{
		DesiredPresent:    tick.PredictedPresent,
		HasDesiredPresent: true,
		LatestCommit:      latest,
	}
}

// FramePlan is produced by the scheduler for a frame.
type FramePlan struct {
	SemanticTime    HostTime
	PresentTime     HostTime
	HasPresentTime  bool
	CommitDeadline  HostTime
	PipelineDepth   uint8
	Output          OutputId
	FrameIndex      uint64
}

// PresentFeedback reports what actually happened when a frame was
// presented.
type PresentFeedback struct {
	BuildStart        HostTime
	SubmittedAt       HostTime
	ExpectedPresent   HostTime
	HasExpectedPresent bool
	ActualPresent     HostTime
	HasActualPresent  bool
	MissedDeadline    bool
	HasMissedDeadline bool
}

// NewPresentFeedback derives MissedDeadline: if both actualPresent and
// desiredPresent are known, missed = actual > desired; otherwise missed =
// submittedAt > latestCommit.
func NewPresentFeedback(
	buildStart, submittedAt HostTime,
	expectedPresent HostTime, hasExpectedPresent bool,
	actualPresent HostTime, hasActualPresent bool,
	desiredPresent HostTime, hasDesiredPresent bool,
	latestCommit HostTime,
) PresentFeedback {
	f := PresentFeedback{
		BuildStart:         buildStart,
		SubmittedAt:        submittedAt,
		ExpectedPresent:    expectedPresent,
		HasExpectedPresent: hasExpectedPresent,
		ActualPresent:      actualPresent,
		HasActualPresent:   hasActualPresent,
	}
	switch {
	case hasActualPresent && hasDesiredPresent:
		f.MissedDeadline = actualPresent > desiredPresent
		f.HasMissedDeadline = true
	default:
		f.MissedDeadline = submittedAt > latestCommit
		f.HasMissedDeadline = true
	}
	return f
}

// PendingFeedback is a closure over the hints, build-start, and submitted-
// at time captured when a frame is submitted. Its actual present time is
// not known until the following tick reports it, at which point Resolve
// produces the final PresentFeedback.
type PendingFeedback struct {
	Hints       PresentHints
	BuildStart  HostTime
	SubmittedAt HostTime
}

// Resolve produces the final feedback for the pending frame once the
// actual present time (or its absence) is known.
func (p PendingFeedback) Resolve(actualPresent HostTime, hasActualPresent bool) PresentFeedback {
	return NewPresentFeedback(
		p.BuildStart, p.SubmittedAt,
		p.Hints.DesiredPresent, p.Hints.HasDesiredPresent,
		actualPresent, hasActualPresent,
		p.Hints.DesiredPresent, p.Hints.HasDesiredPresent,
		p.Hints.LatestCommit,
	)
}
