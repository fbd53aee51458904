// Package chrome translates recorded binary events into the Chrome Trace
// Event Format, for loading into chrome://tracing or https://ui.perfetto.dev.
package chrome

import (
	"encoding/json"
	"io"

	sd "github.com/phanxgames/subduction"
	"github.com/phanxgames/subduction/recorder"
)

// Export reads recorded events from bytes and writes a complete Chrome
// Trace Event Format JSON array to writer. Timestamps are converted to
// microseconds using timebase.
func Export(bytes []byte, timebase sd.Timebase, writer io.Writer) error {
	events := make([]map[string]any, 0)

	it := recorder.Decode(bytes)
	for {
		ev, ok := it.Next()
		if !ok {
			break
		}
		switch {
		case ev.FrameTick != nil:
			e := ev.FrameTick
			events = append(events, map[string]any{
				"ph":   "i",
				"name": "FrameTick",
				"cat":  "Scheduler",
				"ts":   ticksToUs(e.Now.Ticks(), timebase),
				"pid":  e.Output,
				"tid":  0,
				"s":    "g",
				"args": map[string]any{
					"frame_index": e.FrameIndex,
					"confidence":  e.Confidence.String(),
				},
			})

		case ev.FramePlan != nil:
			e := ev.FramePlan
			events = append(events, map[string]any{
				"ph":   "i",
				"name": "FramePlan",
				"cat":  "Scheduler",
				"ts":   ticksToUs(e.CommitDeadline.Ticks(), timebase),
				"pid":  e.Output,
				"tid":  0,
				"s":    "g",
				"args": map[string]any{
					"frame_index":          e.FrameIndex,
					"pipeline_depth":       e.PipelineDepth,
					"safety_margin_ticks":  e.SafetyMarginTick,
				},
			})

		case ev.PhaseBegin != nil:
			e := ev.PhaseBegin
			events = append(events, map[string]any{
				"ph":   "B",
				"name": e.Phase.String(),
				"cat":  "Frame",
				"ts":   ticksToUs(e.Timestamp.Ticks(), timebase),
				"pid":  0,
				"tid":  0,
				"args": map[string]any{
					"frame_index": e.FrameIndex,
				},
			})

		case ev.PhaseEnd != nil:
			e := ev.PhaseEnd
			events = append(events, map[string]any{
				"ph":   "E",
				"name": e.Phase.String(),
				"cat":  "Frame",
				"ts":   ticksToUs(e.Timestamp.Ticks(), timebase),
				"pid":  0,
				"tid":  0,
				"args": map[string]any{
					"frame_index": e.FrameIndex,
				},
			})

		case ev.Submit != nil:
			e := ev.Submit
			events = append(events, map[string]any{
				"ph":   "i",
				"name": "Submit",
				"cat":  "Frame",
				"ts":   ticksToUs(e.SubmittedAt.Ticks(), timebase),
				"pid":  0,
				"tid":  0,
				"s":    "t",
				"args": map[string]any{
					"frame_index": e.FrameIndex,
				},
			})

		case ev.PresentFeedback != nil:
			e := ev.PresentFeedback
			ts := 0.0
			if e.HasActual {
				ts = ticksToUs(e.ActualPresent.Ticks(), timebase)
			}
			events = append(events, map[string]any{
				"ph":   "i",
				"name": "PresentFeedback",
				"cat":  "Frame",
				"ts":   ts,
				"pid":  0,
				"tid":  0,
				"s":    "t",
				"args": map[string]any{
					"frame_index": e.FrameIndex,
					"missed":      e.MissedDeadline,
				},
			})

		case ev.FrameSummary != nil:
			s := ev.FrameSummary
			events = append(events, map[string]any{
				"ph":   "i",
				"name": "FrameSummary",
				"cat":  "Summary",
				"ts":   ticksToUs(s.Now.Ticks(), timebase),
				"pid":  s.Output,
				"tid":  0,
				"s":    "g",
				"args": map[string]any{
					"frame_index":     s.FrameIndex,
					"pipeline_depth":  s.PipelineDepth,
					"plan_us":         ticksToUs(s.PlanTicks, timebase),
					"eval_us":         ticksToUs(s.EvalTicks, timebase),
					"render_us":       ticksToUs(s.RenderTicks, timebase),
					"submit_us":       ticksToUs(s.SubmitTicks, timebase),
					"missed_deadline": s.MissedDeadline,
				},
			})

		case ev.LayerChangesCount:
			events = append(events, map[string]any{
				"ph":   "i",
				"name": "LayerChanges",
				"cat":  "Rich",
				"ts":   0,
				"pid":  0,
				"tid":  0,
				"s":    "p",
				"args": map[string]any{
					"frame_index": ev.FrameIndex,
					"count":       ev.Count,
				},
			})

		case ev.DamageRectsCount:
			events = append(events, map[string]any{
				"ph":   "i",
				"name": "DamageRects",
				"cat":  "Rich",
				"ts":   0,
				"pid":  0,
				"tid":  0,
				"s":    "p",
				"args": map[string]any{
					"frame_index": ev.FrameIndex,
					"count":       ev.Count,
				},
			})
		}
	}

	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	return enc.Encode(events)
}

func ticksToUs(ticks uint64, timebase sd.Timebase) float64 {
	return float64(timebase.TicksToNanos(ticks)) / 1000.0
}
