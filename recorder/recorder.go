// Package recorder implements a compact binary encoding of trace events,
// for offline capture to a file or ring buffer. Every event is a fixed tag
// byte followed by a little-endian payload; the decoder tolerates
// truncation and unknown tags by simply stopping rather than erroring, so a
// recording that was cut off mid-event (e.g. a crash) still yields whatever
// prefix was flushed.
package recorder

import (
	"encoding/binary"

	sd "github.com/phanxgames/subduction"
	"github.com/phanxgames/subduction/trace"
)

// Tag bytes identify the event kind at the start of each record.
const (
	TagFrameTick          byte = 1
	TagFramePlan          byte = 2
	TagPhaseBegin         byte = 3
	TagPhaseEnd           byte = 4
	TagSubmit             byte = 5
	TagPresentFeedback    byte = 6
	TagFrameSummary       byte = 7
	TagLayerChangesCount  byte = 8
	TagDamageRectsCount   byte = 9
)

// RecorderSink implements trace.TraceSink, appending each event's binary
// encoding to a growable in-memory buffer. Rich LayerChange/DamageRect
// batches are recorded as (frame_index, count) only, not in full per-item
// detail, to keep the recording compact; a host that wants per-layer
// fidelity should use the trace package's LayerChanges/DamageRects events
// directly rather than decoding a recording.
type RecorderSink struct {
	trace.NoopSink
	buf []byte
}

// NewRecorderSink creates an empty recorder.
func NewRecorderSink() *RecorderSink {
	return &RecorderSink{}
}

// AsBytes returns the recorded bytes so far, without transferring
// ownership; callers must not mutate the returned slice.
func (r *RecorderSink) AsBytes() []byte { return r.buf }

// IntoBytes returns the recorded bytes and resets the sink to empty.
func (r *RecorderSink) IntoBytes() []byte {
	out := r.buf
	r.buf = nil
	return out
}

func (r *RecorderSink) writeU8(v byte) { r.buf = append(r.buf, v) }

func (r *RecorderSink) writeU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	r.buf = append(r.buf, b[:]...)
}

func (r *RecorderSink) writeU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	r.buf = append(r.buf, b[:]...)
}

func (r *RecorderSink) writeOptionU64(v uint64, has bool) {
	if has {
		r.writeU8(1)
		r.writeU64(v)
	} else {
		r.writeU8(0)
	}
}

func (r *RecorderSink) writeOptionBool(v bool, has bool) {
	switch {
	case !has:
		r.writeU8(0)
	case v:
		r.writeU8(2)
	default:
		r.writeU8(1)
	}
}

func (r *RecorderSink) writeConfidence(c sd.TimingConfidence) { r.writeU8(byte(c)) }

func (r *RecorderSink) writePhase(p trace.PhaseKind) { r.writeU8(byte(p)) }

func (r *RecorderSink) OnFrameTick(e trace.FrameTickEvent) {
	r.writeU8(TagFrameTick)
	r.writeU64(e.FrameIndex)
	r.writeU32(uint32(e.Output))
	r.writeU64(e.Now.Ticks())
	r.writeOptionU64(e.PredictedPresent.Ticks(), e.HasPredictedPresent)
	r.writeOptionU64(e.RefreshInterval.Ticks(), e.HasRefreshInterval)
	r.writeConfidence(e.Confidence)
}

func (r *RecorderSink) OnFramePlan(e trace.FramePlanEvent) {
	r.writeU8(TagFramePlan)
	r.writeU64(e.FrameIndex)
	r.writeU32(uint32(e.Output))
	r.writeU64(e.SemanticTime.Ticks())
	r.writeOptionU64(e.PresentTime.Ticks(), e.HasPresentTime)
	r.writeU64(e.CommitDeadline.Ticks())
	r.writeU8(e.PipelineDepth)
	r.writeU64(e.SafetyMarginTick)
}

func (r *RecorderSink) OnPhaseBegin(e trace.PhaseBeginEvent) {
	r.writeU8(TagPhaseBegin)
	r.writeU64(e.FrameIndex)
	r.writePhase(e.Phase)
	r.writeU64(e.Timestamp.Ticks())
}

func (r *RecorderSink) OnPhaseEnd(e trace.PhaseEndEvent) {
	r.writeU8(TagPhaseEnd)
	r.writeU64(e.FrameIndex)
	r.writePhase(e.Phase)
	r.writeU64(e.Timestamp.Ticks())
}

func (r *RecorderSink) OnSubmit(e trace.SubmitEvent) {
	r.writeU8(TagSubmit)
	r.writeU64(e.FrameIndex)
	r.writeU64(e.SubmittedAt.Ticks())
}

func (r *RecorderSink) OnPresentFeedback(e trace.PresentFeedbackEvent) {
	r.writeU8(TagPresentFeedback)
	r.writeU64(e.FrameIndex)
	r.writeOptionU64(e.ActualPresent.Ticks(), e.HasActual)
	r.writeOptionBool(e.MissedDeadline, e.HasMissed)
}

func (r *RecorderSink) OnFrameSummary(s trace.FrameSummary) {
	r.writeU8(TagFrameSummary)
	r.writeU64(s.FrameIndex)
	r.writeU32(uint32(s.Output))
	r.writeU64(s.Now.Ticks())
	r.writeU8(s.PipelineDepth)
	r.writeU64(s.PlanTicks)
	r.writeU64(s.EvalTicks)
	r.writeU64(s.RenderTicks)
	r.writeU64(s.SubmitTicks)
	r.writeOptionBool(s.MissedDeadline, true)
}

func (r *RecorderSink) OnLayerChanges(frameIndex uint64, changes []trace.LayerChange) {
	r.writeU8(TagLayerChangesCount)
	r.writeU64(frameIndex)
	r.writeU32(uint32(len(changes)))
}

func (r *RecorderSink) OnDamageRects(frameIndex uint64, rects []trace.DamageRect) {
	r.writeU8(TagDamageRectsCount)
	r.writeU64(frameIndex)
	r.writeU32(uint32(len(rects)))
}

// RecordedEvent is the decoded sum type produced by DecodeIter. Exactly
// one of the pointer fields is non-nil per event.
type RecordedEvent struct {
	FrameTick         *trace.FrameTickEvent
	FramePlan         *trace.FramePlanEvent
	PhaseBegin        *trace.PhaseBeginEvent
	PhaseEnd          *trace.PhaseEndEvent
	Submit            *trace.SubmitEvent
	PresentFeedback   *trace.PresentFeedbackEvent
	FrameSummary      *trace.FrameSummary
	LayerChangesCount bool
	DamageRectsCount  bool
	FrameIndex        uint64
	Count             uint32
}

// Decode returns an iterator over the events encoded in data.
func Decode(data []byte) *DecodeIter { return &DecodeIter{buf: data} }

// DecodeIter walks a recorded byte stream one event at a time.
type DecodeIter struct {
	buf []byte
	pos int
}

// Remaining reports how many bytes have not yet been consumed.
func (it *DecodeIter) Remaining() int { return len(it.buf) - it.pos }

func (it *DecodeIter) readU8() (byte, bool) {
	if it.pos+1 > len(it.buf) {
		return 0, false
	}
	v := it.buf[it.pos]
	it.pos++
	return v, true
}

func (it *DecodeIter) readU32() (uint32, bool) {
	if it.pos+4 > len(it.buf) {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(it.buf[it.pos : it.pos+4])
	it.pos += 4
	return v, true
}

func (it *DecodeIter) readU64() (uint64, bool) {
	if it.pos+8 > len(it.buf) {
		return 0, false
	}
	v := binary.LittleEndian.Uint64(it.buf[it.pos : it.pos+8])
	it.pos += 8
	return v, true
}

func (it *DecodeIter) readOptionU64() (uint64, bool, bool) {
	flag, ok := it.readU8()
	if !ok {
		return 0, false, false
	}
	if flag == 0 {
		return 0, false, true
	}
	v, ok := it.readU64()
	if !ok {
		return 0, false, false
	}
	return v, true, true
}

func (it *DecodeIter) readOptionBool() (bool, bool, bool) {
	flag, ok := it.readU8()
	if !ok {
		return false, false, false
	}
	switch flag {
	case 0:
		return false, false, true
	case 1:
		return false, true, true
	case 2:
		return true, true, true
	default:
		return false, false, false
	}
}

func (it *DecodeIter) readConfidence() (sd.TimingConfidence, bool) {
	v, ok := it.readU8()
	if !ok {
		return 0, false
	}
	return sd.TimingConfidence(v), true
}

func (it *DecodeIter) readPhase() (trace.PhaseKind, bool) {
	v, ok := it.readU8()
	if !ok {
		return 0, false
	}
	return trace.PhaseKind(v), true
}

// Next decodes the next event. Returns (event, true) on success, or
// (zero, false) at end of stream, on truncation, or on an unknown tag —
// decoding never errors, it simply stops.
func (it *DecodeIter) Next() (RecordedEvent, bool) {
	start := it.pos
	tag, ok := it.readU8()
	if !ok {
		return RecordedEvent{}, false
	}

	switch tag {
	case TagFrameTick:
		frameIndex, ok := it.readU64()
		if !ok {
			break
		}
		output, ok := it.readU32()
		if !ok {
			break
		}
		now, ok := it.readU64()
		if !ok {
			break
		}
		predicted, hasPredicted, ok := it.readOptionU64()
		if !ok {
			break
		}
		refresh, hasRefresh, ok := it.readOptionU64()
		if !ok {
			break
		}
		confidence, ok := it.readConfidence()
		if !ok {
			break
		}
		e := trace.FrameTickEvent{
			FrameIndex:          frameIndex,
			Output:              sd.OutputId(output),
			Now:                 sd.HostTime(now),
			PredictedPresent:    sd.HostTime(predicted),
			HasPredictedPresent: hasPredicted,
			RefreshInterval:     sd.Duration(refresh),
			HasRefreshInterval:  hasRefresh,
			Confidence:          confidence,
		}
		return RecordedEvent{FrameTick: &e}, true

	case TagFramePlan:
		frameIndex, ok := it.readU64()
		if !ok {
			break
		}
		output, ok := it.readU32()
		if !ok {
			break
		}
		semantic, ok := it.readU64()
		if !ok {
			break
		}
		present, hasPresent, ok := it.readOptionU64()
		if !ok {
			break
		}
		deadline, ok := it.readU64()
		if !ok {
			break
		}
		depth, ok := it.readU8()
		if !ok {
			break
		}
		margin, ok := it.readU64()
		if !ok {
			break
		}
		e := trace.FramePlanEvent{
			FrameIndex:       frameIndex,
			Output:           sd.OutputId(output),
			SemanticTime:     sd.HostTime(semantic),
			PresentTime:      sd.HostTime(present),
			HasPresentTime:   hasPresent,
			CommitDeadline:   sd.HostTime(deadline),
			PipelineDepth:    depth,
			SafetyMarginTick: margin,
		}
		return RecordedEvent{FramePlan: &e}, true

	case TagPhaseBegin:
		frameIndex, ok := it.readU64()
		if !ok {
			break
		}
		phase, ok := it.readPhase()
		if !ok {
			break
		}
		ts, ok := it.readU64()
		if !ok {
			break
		}
		e := trace.PhaseBeginEvent{FrameIndex: frameIndex, Phase: phase, Timestamp: sd.HostTime(ts)}
		return RecordedEvent{PhaseBegin: &e}, true

	case TagPhaseEnd:
		frameIndex, ok := it.readU64()
		if !ok {
			break
		}
		phase, ok := it.readPhase()
		if !ok {
			break
		}
		ts, ok := it.readU64()
		if !ok {
			break
		}
		e := trace.PhaseEndEvent{FrameIndex: frameIndex, Phase: phase, Timestamp: sd.HostTime(ts)}
		return RecordedEvent{PhaseEnd: &e}, true

	case TagSubmit:
		frameIndex, ok := it.readU64()
		if !ok {
			break
		}
		ts, ok := it.readU64()
		if !ok {
			break
		}
		e := trace.SubmitEvent{FrameIndex: frameIndex, SubmittedAt: sd.HostTime(ts)}
		return RecordedEvent{Submit: &e}, true

	case TagPresentFeedback:
		frameIndex, ok := it.readU64()
		if !ok {
			break
		}
		actual, hasActual, ok := it.readOptionU64()
		if !ok {
			break
		}
		missed, hasMissed, ok := it.readOptionBool()
		if !ok {
			break
		}
		e := trace.PresentFeedbackEvent{
			FrameIndex:     frameIndex,
			ActualPresent:  sd.HostTime(actual),
			HasActual:      hasActual,
			MissedDeadline: missed,
			HasMissed:      hasMissed,
		}
		return RecordedEvent{PresentFeedback: &e}, true

	case TagFrameSummary:
		frameIndex, ok := it.readU64()
		if !ok {
			break
		}
		output, ok := it.readU32()
		if !ok {
			break
		}
		now, ok := it.readU64()
		if !ok {
			break
		}
		depth, ok := it.readU8()
		if !ok {
			break
		}
		plan, ok := it.readU64()
		if !ok {
			break
		}
		eval, ok := it.readU64()
		if !ok {
			break
		}
		render, ok := it.readU64()
		if !ok {
			break
		}
		submit, ok := it.readU64()
		if !ok {
			break
		}
		missed, _, ok := it.readOptionBool()
		if !ok {
			break
		}
		s := trace.FrameSummary{
			FrameIndex:     frameIndex,
			Output:         sd.OutputId(output),
			Now:            sd.HostTime(now),
			PipelineDepth:  depth,
			PlanTicks:      plan,
			EvalTicks:      eval,
			RenderTicks:    render,
			SubmitTicks:    submit,
			MissedDeadline: missed,
		}
		return RecordedEvent{FrameSummary: &s}, true

	case TagLayerChangesCount:
		frameIndex, ok := it.readU64()
		if !ok {
			break
		}
		count, ok := it.readU32()
		if !ok {
			break
		}
		return RecordedEvent{LayerChangesCount: true, FrameIndex: frameIndex, Count: count}, true

	case TagDamageRectsCount:
		frameIndex, ok := it.readU64()
		if !ok {
			break
		}
		count, ok := it.readU32()
		if !ok {
			break
		}
		return RecordedEvent{DamageRectsCount: true, FrameIndex: frameIndex, Count: count}, true

	default:
		it.pos = start
		return RecordedEvent{}, false
	}

	// A break above means truncation mid-event: rewind so Remaining()
	// reflects the undecoded bytes and report end-of-stream.
	it.pos = start
	return RecordedEvent{}, false
}
