// Package subduction implements a timing-synchronized compositor core.
//
// It turns platform display-refresh callbacks into presentable scene
// updates while adapting to observed latency. The package is strictly
// single-threaded and synchronous: every method here is expected to run on
// one "frame thread", typically the platform's UI/main thread. Nothing in
// this package blocks, suspends, or spawns goroutines.
//
// The runtime data-flow, once per frame, is:
//
//	backend tick -> compute_hints -> Scheduler.Plan -> FramePlan
//	                                                       |
//	app mutates the LayerStore using plan.SemanticTime ----+
//	store.Evaluate() -> FrameChanges -> presenter.Apply
//	submit -> PresentFeedback (resolved next tick) -> Scheduler.Observe
//
// Platform backends (display-link wrappers, DOM/CALayer/Metal presenters,
// Wayland protocol wiring), example demos, CLI/config loading, and GPU
// shaders are not part of this package; they are external collaborators
// defined only through the interfaces they consume (Presenter, the
// LayerStore mutation API, and Scheduler.Plan/Observe).
package subduction
