// Package trace defines the compositor's tracing event types and the
// TraceSink contract consumed by the recorder and chrome packages.
package trace

import (
	sd "github.com/phanxgames/subduction"
)

// PhaseKind identifies one of the four phases traced per frame.
type PhaseKind uint8

const (
	PhasePlan PhaseKind = iota
	PhaseEvaluate
	PhaseRender
	PhaseSubmit
)

func (p PhaseKind) String() string {
	switch p {
	case PhasePlan:
		return "Plan"
	case PhaseEvaluate:
		return "Evaluate"
	case PhaseRender:
		return "Render"
	case PhaseSubmit:
		return "Submit"
	default:
		return "Unknown"
	}
}

// phaseIndex maps a PhaseKind to its slot in FrameSummary's four phase
// slots and in FrameSummaryBuilder's scratch arrays.
func phaseIndex(p PhaseKind) int { return int(p) }

// LayerField identifies which per-layer property changed, for rich
// LayerChange events.
type LayerField uint8

const (
	FieldTransform LayerField = iota
	FieldOpacity
	FieldClip
	FieldContent
	FieldFlags
	FieldTopology
)

// FrameTickEvent mirrors a FrameTick at the moment it was delivered.
type FrameTickEvent struct {
	FrameIndex          uint64
	Output              sd.OutputId
	Now                 sd.HostTime
	PredictedPresent    sd.HostTime
	HasPredictedPresent bool
	RefreshInterval     sd.Duration
	HasRefreshInterval  bool
	Confidence          sd.TimingConfidence
}

// FrameTickEventFrom builds a FrameTickEvent from a FrameTick.
func FrameTickEventFrom(tick sd.FrameTick) FrameTickEvent {
	return FrameTickEvent{
		FrameIndex:          tick.FrameIndex,
		Output:              tick.Output,
		Now:                 tick.Now,
		PredictedPresent:    tick.PredictedPresent,
		HasPredictedPresent: tick.HasPredictedPresent,
		RefreshInterval:     tick.RefreshInterval,
		HasRefreshInterval:  tick.HasRefreshInterval,
		Confidence:          tick.Confidence,
	}
}

// FramePlanEvent mirrors a FramePlan plus the safety margin that was in
// effect when the scheduler produced it (the scheduler tracks the margin
// separately from FramePlan itself).
type FramePlanEvent struct {
	FrameIndex       uint64
	Output           sd.OutputId
	SemanticTime     sd.HostTime
	PresentTime      sd.HostTime
	HasPresentTime   bool
	CommitDeadline   sd.HostTime
	PipelineDepth    uint8
	SafetyMarginTick uint64
}

// NewFramePlanEvent builds a FramePlanEvent from a plan and the safety
// margin active when it was produced.
func NewFramePlanEvent(plan sd.FramePlan, safetyMarginTicks uint64) FramePlanEvent {
	return FramePlanEvent{
		FrameIndex:       plan.FrameIndex,
		Output:           plan.Output,
		SemanticTime:     plan.SemanticTime,
		PresentTime:      plan.PresentTime,
		HasPresentTime:   plan.HasPresentTime,
		CommitDeadline:   plan.CommitDeadline,
		PipelineDepth:    plan.PipelineDepth,
		SafetyMarginTick: safetyMarginTicks,
	}
}

// PhaseBeginEvent marks the start of a traced phase.
type PhaseBeginEvent struct {
	FrameIndex uint64
	Phase      PhaseKind
	Timestamp  sd.HostTime
}

// PhaseEndEvent marks the end of a traced phase.
type PhaseEndEvent struct {
	FrameIndex uint64
	Phase      PhaseKind
	Timestamp  sd.HostTime
}

// SubmitEvent marks when a frame's change-set was handed to the presenter.
type SubmitEvent struct {
	FrameIndex  uint64
	SubmittedAt sd.HostTime
}

// PresentFeedbackEvent mirrors a resolved PresentFeedback.
type PresentFeedbackEvent struct {
	FrameIndex     uint64
	ActualPresent  sd.HostTime
	HasActual      bool
	MissedDeadline bool
	HasMissed      bool
}

// FrameSummary rolls up the four phase durations plus the missed-deadline
// flag for one frame.
type FrameSummary struct {
	FrameIndex     uint64
	Output         sd.OutputId
	Now            sd.HostTime
	PipelineDepth  uint8
	PlanTicks      uint64
	EvalTicks      uint64
	RenderTicks    uint64
	SubmitTicks    uint64
	MissedDeadline bool
}

// LayerChange describes one layer field change in a frame's change-set.
// Rich (optional) events carry a slice of these plus the frame index
// separately, matching the recorded wire format of (frame_index, count).
type LayerChange struct {
	Slot  uint32
	Field LayerField
}

// DamageRect is a rich (optional) damaged region.
type DamageRect struct {
	X, Y, W, H float64
}

// TraceSink is a polymorphic receiver with one method per event type. Two
// dynamic-dispatch implementations exist in this repository: NoopSink (the
// null implementation) and recorder.RecorderSink. Implementations that only
// care about a subset of events should embed NoopSink to pick up no-op
// defaults for the rest, rather than implementing every method.
type TraceSink interface {
	OnFrameTick(e FrameTickEvent)
	OnFramePlan(e FramePlanEvent)
	OnPhaseBegin(e PhaseBeginEvent)
	OnPhaseEnd(e PhaseEndEvent)
	OnSubmit(e SubmitEvent)
	OnPresentFeedback(e PresentFeedbackEvent)
	OnFrameSummary(s FrameSummary)
	OnLayerChanges(frameIndex uint64, changes []LayerChange)
	OnDamageRects(frameIndex uint64, rects []DamageRect)
}

// NoopSink implements TraceSink with every method a no-op. Embed it in a
// sink that only wants to override a subset of events.
type NoopSink struct{}

func (NoopSink) OnFrameTick(FrameTickEvent)             {}
func (NoopSink) OnFramePlan(FramePlanEvent)             {}
func (NoopSink) OnPhaseBegin(PhaseBeginEvent)           {}
func (NoopSink) OnPhaseEnd(PhaseEndEvent)               {}
func (NoopSink) OnSubmit(SubmitEvent)                   {}
func (NoopSink) OnPresentFeedback(PresentFeedbackEvent) {}
func (NoopSink) OnFrameSummary(FrameSummary)             {}
func (NoopSink) OnLayerChanges(uint64, []LayerChange)    {}
func (NoopSink) OnDamageRects(uint64, []DamageRect)      {}

// Tracer wraps an optional TraceSink, forwarding each event only when a
// sink is present. RichTracing gates LayerChanges/DamageRects forwarding: a
// host may want coarse trace events every frame but only enable the
// per-layer rich events for a short diagnostic session.
type Tracer struct {
	sink        TraceSink
	RichTracing bool
}

// NewTracer wraps sink. A nil sink is equivalent to None().
func NewTracer(sink TraceSink) Tracer { return Tracer{sink: sink} }

// None returns a Tracer with no sink attached; every forwarding method is a
// no-op.
func None() Tracer { return Tracer{} }

func (t Tracer) FrameTick(e FrameTickEvent) {
	if t.sink != nil {
		t.sink.OnFrameTick(e)
	}
}

func (t Tracer) FramePlan(e FramePlanEvent) {
	if t.sink != nil {
		t.sink.OnFramePlan(e)
	}
}

func (t Tracer) PhaseBegin(e PhaseBeginEvent) {
	if t.sink != nil {
		t.sink.OnPhaseBegin(e)
	}
}

func (t Tracer) PhaseEnd(e PhaseEndEvent) {
	if t.sink != nil {
		t.sink.OnPhaseEnd(e)
	}
}

func (t Tracer) Submit(e SubmitEvent) {
	if t.sink != nil {
		t.sink.OnSubmit(e)
	}
}

func (t Tracer) PresentFeedback(e PresentFeedbackEvent) {
	if t.sink != nil {
		t.sink.OnPresentFeedback(e)
	}
}

func (t Tracer) FrameSummary(s FrameSummary) {
	if t.sink != nil {
		t.sink.OnFrameSummary(s)
	}
}

func (t Tracer) LayerChanges(frameIndex uint64, changes []LayerChange) {
	if t.sink != nil && t.RichTracing {
		t.sink.OnLayerChanges(frameIndex, changes)
	}
}

func (t Tracer) DamageRects(frameIndex uint64, rects []DamageRect) {
	if t.sink != nil && t.RichTracing {
		t.sink.OnDamageRects(frameIndex, rects)
	}
}

// FrameSummaryBuilder accumulates phase begin/end timestamps across a
// single frame and produces a FrameSummary.
type FrameSummaryBuilder struct {
	frameIndex    uint64
	output        sd.OutputId
	now           sd.HostTime
	pipelineDepth uint8

	phaseStarts   [4]sd.HostTime
	phaseHasStart [4]bool
	phaseEnds     [4]sd.HostTime
	phaseHasEnd   [4]bool

	missedDeadline bool
}

// NewFrameSummaryBuilder starts accumulating a summary for the frame plan
// describes.
func NewFrameSummaryBuilder(tick sd.FrameTick, plan sd.FramePlan) *FrameSummaryBuilder {
	return &FrameSummaryBuilder{
		frameIndex:    plan.FrameIndex,
		output:        plan.Output,
		now:           tick.Now,
		pipelineDepth: plan.PipelineDepth,
	}
}

// PhaseBegin records the start timestamp of phase.
func (b *FrameSummaryBuilder) PhaseBegin(phase PhaseKind, t sd.HostTime) {
	i := phaseIndex(phase)
	b.phaseStarts[i] = t
	b.phaseHasStart[i] = true
}

// PhaseEnd records the end timestamp of phase.
func (b *FrameSummaryBuilder) PhaseEnd(phase PhaseKind, t sd.HostTime) {
	i := phaseIndex(phase)
	b.phaseEnds[i] = t
	b.phaseHasEnd[i] = true
}

// SetMissedDeadline records whether this frame missed its commit deadline.
func (b *FrameSummaryBuilder) SetMissedDeadline(missed bool) { b.missedDeadline = missed }

// Finish computes each phase's duration (0 if either timestamp is
// missing) and returns the completed FrameSummary.
func (b *FrameSummaryBuilder) Finish() FrameSummary {
	durations := [4]uint64{}
	for i := 0; i < 4; i++ {
		if b.phaseHasStart[i] && b.phaseHasEnd[i] {
			durations[i] = b.phaseEnds[i].SaturatingDurationSince(b.phaseStarts[i]).Ticks()
		}
	}
	return FrameSummary{
		FrameIndex:     b.frameIndex,
		Output:         b.output,
		Now:            b.now,
		PipelineDepth:  b.pipelineDepth,
		PlanTicks:      durations[phaseIndex(PhasePlan)],
		EvalTicks:      durations[phaseIndex(PhaseEvaluate)],
		RenderTicks:    durations[phaseIndex(PhaseRender)],
		SubmitTicks:    durations[phaseIndex(PhaseSubmit)],
		MissedDeadline: b.missedDeadline,
	}
}
