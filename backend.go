package subduction

// Presenter is the single interface a backend implements to consume a
// frame's changes. Implementers should process the change-set in this
// order to preserve invariants: Removed, Added, Transforms, Opacities,
// Hidden, Unhidden, Clips, Content, then any topology reorder. The store's
// raw-index accessors (WorldTransformAt, EffectiveOpacityAt, ...) are the
// supported way to read current property values while processing a
// change-set.
//
// A typical backend-driven frame loop looks like:
//
//	tick := backend.NextTick()
//	hints := backend.ComputePresentHints(tick, scheduler.SafetyMarginTicks())
//	plan := scheduler.Plan(tick, hints)
//	app.Animate(store, plan.SemanticTime)
//	changes := store.Evaluate()
//	presenter.Apply(store, changes)
//	pending := PendingFeedback{Hints: hints, BuildStart: buildStart, SubmittedAt: submittedAt}
//	// ... on the next tick, once prev_actual_present is known:
//	scheduler.Observe(pending.Resolve(tick.PrevActualPresent, tick.HasPrevActualPresent))
type Presenter interface {
	Apply(store *LayerStore, changes *FrameChanges)
}
