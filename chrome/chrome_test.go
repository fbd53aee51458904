package chrome

import (
	"bytes"
	"encoding/json"
	"testing"

	sd "github.com/phanxgames/subduction"
	"github.com/phanxgames/subduction/recorder"
	"github.com/phanxgames/subduction/trace"
)

func TestExportProducesValidJSON(t *testing.T) {
	rec := recorder.NewRecorderSink()
	rec.OnFrameTick(trace.FrameTickEvent{
		FrameIndex:         0,
		Output:             sd.OutputId(0),
		Now:                sd.HostTime(1_000_000),
		RefreshInterval:    sd.Duration(16_666_667),
		HasRefreshInterval: true,
		Confidence:         sd.PacingOnly,
	})
	rec.OnPhaseBegin(trace.PhaseBeginEvent{
		FrameIndex: 0,
		Phase:      trace.PhasePlan,
		Timestamp:  sd.HostTime(1_000_000),
	})
	rec.OnPhaseEnd(trace.PhaseEndEvent{
		FrameIndex: 0,
		Phase:      trace.PhasePlan,
		Timestamp:  sd.HostTime(1_000_100),
	})

	var out bytes.Buffer
	if err := Export(rec.AsBytes(), sd.TimebaseNanos, &out); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var parsed []map[string]any
	if err := json.Unmarshal(out.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(parsed) != 3 {
		t.Fatalf("len(parsed) = %d, want 3", len(parsed))
	}

	if parsed[0]["ph"] != "i" || parsed[0]["name"] != "FrameTick" {
		t.Errorf("unexpected first event: %+v", parsed[0])
	}
	if parsed[1]["ph"] != "B" || parsed[1]["name"] != "Plan" {
		t.Errorf("unexpected second event: %+v", parsed[1])
	}
	if parsed[2]["ph"] != "E" || parsed[2]["name"] != "Plan" {
		t.Errorf("unexpected third event: %+v", parsed[2])
	}
}

func TestExportEmptyRecordingProducesEmptyArray(t *testing.T) {
	var out bytes.Buffer
	if err := Export(nil, sd.TimebaseNanos, &out); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var parsed []map[string]any
	if err := json.Unmarshal(out.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(parsed) != 0 {
		t.Fatalf("expected empty array, got %d events", len(parsed))
	}
}

func TestExportFrameSummaryUsesMicrosecondDurations(t *testing.T) {
	rec := recorder.NewRecorderSink()
	rec.OnFrameSummary(trace.FrameSummary{
		FrameIndex:    1,
		Output:        sd.OutputId(2),
		Now:           sd.HostTime(0),
		PipelineDepth: 2,
		PlanTicks:     1000,
		EvalTicks:     2000,
	})

	var out bytes.Buffer
	if err := Export(rec.AsBytes(), sd.TimebaseNanos, &out); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	var parsed []map[string]any
	if err := json.Unmarshal(out.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	args := parsed[0]["args"].(map[string]any)
	// Timebase is 1:1 nanos, so 1000 ticks of nanoseconds = 1.0 us.
	if args["plan_us"].(float64) != 1.0 {
		t.Errorf("plan_us = %v, want 1.0", args["plan_us"])
	}
	if args["eval_us"].(float64) != 2.0 {
		t.Errorf("eval_us = %v, want 2.0", args["eval_us"])
	}
}

func TestExportLayerChangesCarriesCount(t *testing.T) {
	rec := recorder.NewRecorderSink()
	rec.OnLayerChanges(5, []trace.LayerChange{{Slot: 1}, {Slot: 2}, {Slot: 3}})
	rec.OnDamageRects(5, []trace.DamageRect{{X: 1}})

	var out bytes.Buffer
	if err := Export(rec.AsBytes(), sd.TimebaseNanos, &out); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	var parsed []map[string]any
	if err := json.Unmarshal(out.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("len(parsed) = %d, want 2", len(parsed))
	}
	layerArgs := parsed[0]["args"].(map[string]any)
	if layerArgs["frame_index"].(float64) != 5 || layerArgs["count"].(float64) != 3 {
		t.Errorf("unexpected LayerChanges args: %+v", layerArgs)
	}
	damageArgs := parsed[1]["args"].(map[string]any)
	if damageArgs["count"].(float64) != 1 {
		t.Errorf("unexpected DamageRects args: %+v", damageArgs)
	}
}

func TestExportPresentFeedbackUnknownActualUsesZeroTimestamp(t *testing.T) {
	rec := recorder.NewRecorderSink()
	rec.OnPresentFeedback(trace.PresentFeedbackEvent{FrameIndex: 3})

	var out bytes.Buffer
	if err := Export(rec.AsBytes(), sd.TimebaseNanos, &out); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	var parsed []map[string]any
	if err := json.Unmarshal(out.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed[0]["ts"].(float64) != 0 {
		t.Errorf("ts = %v, want 0 for unknown actual present", parsed[0]["ts"])
	}
}
