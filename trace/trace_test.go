package trace

import (
	"testing"

	sd "github.com/phanxgames/subduction"
)

func TestFrameTickEventFromCopiesFields(t *testing.T) {
	tick := sd.FrameTick{
		Now:                 sd.HostTime(100),
		PredictedPresent:    sd.HostTime(150),
		HasPredictedPresent: true,
		FrameIndex:          7,
		Output:              sd.OutputId(1),
		Confidence:          sd.Predictive,
	}
	e := FrameTickEventFrom(tick)
	if e.FrameIndex != 7 || e.Now != sd.HostTime(100) || !e.HasPredictedPresent {
		t.Fatalf("unexpected event: %+v", e)
	}
}

func TestNewFramePlanEventCarriesSafetyMargin(t *testing.T) {
	plan := sd.FramePlan{
		SemanticTime:  sd.HostTime(10),
		PipelineDepth: 2,
		FrameIndex:    3,
	}
	e := NewFramePlanEvent(plan, 42)
	if e.SafetyMarginTick != 42 || e.FrameIndex != 3 || e.PipelineDepth != 2 {
		t.Fatalf("unexpected event: %+v", e)
	}
}

func TestNoopSinkCompilesAndDoesNothing(t *testing.T) {
	var sink TraceSink = NoopSink{}
	sink.OnFrameTick(FrameTickEvent{})
	sink.OnFramePlan(FramePlanEvent{})
	sink.OnPhaseBegin(PhaseBeginEvent{})
	sink.OnPhaseEnd(PhaseEndEvent{})
	sink.OnSubmit(SubmitEvent{})
	sink.OnPresentFeedback(PresentFeedbackEvent{})
	sink.OnFrameSummary(FrameSummary{})
	sink.OnLayerChanges(1, []LayerChange{{Slot: 1}})
	sink.OnDamageRects(1, []DamageRect{{X: 1}})
}

// recordingSink embeds NoopSink and overrides only OnFrameTick, the
// standard partial-implementation idiom for TraceSink.
type recordingSink struct {
	NoopSink
	ticks int
}

func (r *recordingSink) OnFrameTick(FrameTickEvent) { r.ticks++ }

func TestEmbeddingNoopSinkAllowsPartialOverride(t *testing.T) {
	r := &recordingSink{}
	var sink TraceSink = r
	sink.OnFrameTick(FrameTickEvent{})
	sink.OnFramePlan(FramePlanEvent{}) // falls through to NoopSink, must not panic
	if r.ticks != 1 {
		t.Fatalf("ticks = %d, want 1", r.ticks)
	}
}

func TestTracerWithNilSinkDoesNothing(t *testing.T) {
	tr := None()
	tr.FrameTick(FrameTickEvent{})
	tr.FramePlan(FramePlanEvent{})
	tr.PhaseBegin(PhaseBeginEvent{})
	tr.PhaseEnd(PhaseEndEvent{})
	tr.Submit(SubmitEvent{})
	tr.PresentFeedback(PresentFeedbackEvent{})
	tr.FrameSummary(FrameSummary{})
	tr.RichTracing = true
	tr.LayerChanges(1, []LayerChange{{Slot: 1}})
	tr.DamageRects(1, []DamageRect{{X: 1}})
}

func TestTracerForwardsToSink(t *testing.T) {
	r := &recordingSink{}
	tr := NewTracer(r)
	tr.FrameTick(FrameTickEvent{FrameIndex: 1})
	if r.ticks != 1 {
		t.Fatalf("expected sink to receive event, ticks = %d", r.ticks)
	}
}

func TestTracerGatesRichEventsBehindRichTracing(t *testing.T) {
	r := &richSinkForward{}
	tr := NewTracer(r)
	tr.LayerChanges(1, []LayerChange{{Slot: 1}})
	if r.lastFrameIndex != 0 || r.lastCount != 0 {
		t.Fatal("rich event should not forward when RichTracing is false")
	}
}

type richSinkForward struct {
	NoopSink
	lastFrameIndex uint64
	lastCount      int
}

func (r *richSinkForward) OnLayerChanges(frameIndex uint64, changes []LayerChange) {
	r.lastFrameIndex = frameIndex
	r.lastCount = len(changes)
}

func TestTracerForwardsRichEventsWhenEnabled(t *testing.T) {
	r := &richSinkForward{}
	tr := NewTracer(r)
	tr.RichTracing = true
	tr.LayerChanges(7, []LayerChange{{Slot: 1}, {Slot: 2}})
	if r.lastFrameIndex != 7 || r.lastCount != 2 {
		t.Fatalf("unexpected forwarded batch: frame=%d count=%d", r.lastFrameIndex, r.lastCount)
	}
}

func TestFrameSummaryBuilderComputesDurations(t *testing.T) {
	tick := sd.FrameTick{Now: sd.HostTime(1000), FrameIndex: 5, Output: sd.OutputId(2)}
	plan := sd.FramePlan{FrameIndex: 5, Output: sd.OutputId(2), PipelineDepth: 2}
	b := NewFrameSummaryBuilder(tick, plan)

	b.PhaseBegin(PhasePlan, sd.HostTime(1000))
	b.PhaseEnd(PhasePlan, sd.HostTime(1010))

	b.PhaseBegin(PhaseEvaluate, sd.HostTime(1010))
	b.PhaseEnd(PhaseEvaluate, sd.HostTime(1025))

	// Render phase never begun: should default to zero duration.
	b.SetMissedDeadline(true)

	summary := b.Finish()
	if summary.PlanTicks != 10 {
		t.Errorf("PlanTicks = %d, want 10", summary.PlanTicks)
	}
	if summary.EvalTicks != 15 {
		t.Errorf("EvalTicks = %d, want 15", summary.EvalTicks)
	}
	if summary.RenderTicks != 0 {
		t.Errorf("RenderTicks = %d, want 0 (phase never begun)", summary.RenderTicks)
	}
	if summary.SubmitTicks != 0 {
		t.Errorf("SubmitTicks = %d, want 0", summary.SubmitTicks)
	}
	if !summary.MissedDeadline {
		t.Error("expected MissedDeadline true")
	}
	if summary.FrameIndex != 5 || summary.PipelineDepth != 2 {
		t.Errorf("unexpected identity fields: %+v", summary)
	}
}

func TestPhaseKindString(t *testing.T) {
	cases := map[PhaseKind]string{
		PhasePlan:     "Plan",
		PhaseEvaluate: "Evaluate",
		PhaseRender:   "Render",
		PhaseSubmit:   "Submit",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
