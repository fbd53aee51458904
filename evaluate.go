package subduction

// FrameChanges is the change-set produced by a single Evaluate /
// EvaluateInto call: the compact description of what changed this frame,
// consumed by presenters. Reusing the same FrameChanges across frames
// (via EvaluateInto) avoids allocation once its slices have grown to their
// steady-state capacity.
type FrameChanges struct {
	Transforms []uint32
	Opacities  []uint32
	Clips      []uint32
	Content    []uint32
	Hidden     []uint32
	Unhidden   []uint32
	Added      []uint32
	Removed    []uint32

	TopologyChanged bool
}

// Clear empties every slice (retaining capacity) and resets
// TopologyChanged. Called at the start of every EvaluateInto.
func (c *FrameChanges) Clear() {
	c.Transforms = c.Transforms[:0]
	c.Opacities = c.Opacities[:0]
	c.Clips = c.Clips[:0]
	c.Content = c.Content[:0]
	c.Hidden = c.Hidden[:0]
	c.Unhidden = c.Unhidden[:0]
	c.Added = c.Added[:0]
	c.Removed = c.Removed[:0]
	c.TopologyChanged = false
}

// Evaluate runs EvaluateInto against a fresh FrameChanges and returns it.
func (s *LayerStore) Evaluate() *FrameChanges {
	changes := &FrameChanges{}
	s.EvaluateInto(changes)
	return changes
}

// EvaluateInto drains every dirty channel in the fixed order TRANSFORM,
// OPACITY, CLIP, CONTENT, TOPOLOGY and assembles the result into changes.
// changes' slices, the traversal-order cache and the hidden-flip scratch
// buffer are reused across calls. It is not allocation-free: each drain of
// a channel with dirty keys builds its result in a new slice, which is
// heap-allocated unless the compiler can keep it on the stack.
func (s *LayerStore) EvaluateInto(changes *FrameChanges) {
	changes.Clear()

	if s.traversalDirty {
		s.rebuildTraversalOrder()
		changes.TopologyChanged = true
		s.traversalDirty = false
	}

	// TRANSFORM: recompute world_transform and effective_hidden in
	// parent-before-child order. The tracker's insertion order only
	// reflects which mutation discovered a key first and does not
	// guarantee parent-before-child across multiple mutations in the same
	// frame, so drain filtered through traversalOrder (a DFS pre-order,
	// always parent-before-child by construction) instead of plain
	// insertion order.
	transformDirty := s.dirty.drainOrdered(ChannelTransform, s.traversalOrder)
	s.hiddenScratch = s.hiddenScratch[:0]
	for _, idx := range transformDirty {
		s.hiddenScratch = append(s.hiddenScratch, s.effectiveHidden[idx])
	}
	for _, idx := range transformDirty {
		s.recomputeTransform(idx)
	}
	changes.Transforms = append(changes.Transforms, transformDirty...)
	for i, idx := range transformDirty {
		was := s.hiddenScratch[i]
		now := s.effectiveHidden[idx]
		if was == now {
			continue
		}
		if now {
			changes.Hidden = append(changes.Hidden, idx)
		} else {
			changes.Unhidden = append(changes.Unhidden, idx)
		}
	}

	// OPACITY: same parent-before-child requirement as TRANSFORM.
	opacityDirty := s.dirty.drainOrdered(ChannelOpacity, s.traversalOrder)
	for _, idx := range opacityDirty {
		s.recomputeOpacity(idx)
	}
	changes.Opacities = append(changes.Opacities, opacityDirty...)

	// CLIP / CONTENT: no recomputation, values are read directly from the
	// store by consumers.
	changes.Clips = append(changes.Clips, s.dirty.drain(ChannelClip)...)
	changes.Content = append(changes.Content, s.dirty.drain(ChannelContent)...)

	// TOPOLOGY: drained and discarded; Added/Removed below carry the
	// lifecycle information consumers actually need.
	s.dirty.drain(ChannelTopology)

	changes.Added = append(changes.Added, s.pendingAdded...)
	changes.Removed = append(changes.Removed, s.pendingRemoved...)
	s.pendingAdded = s.pendingAdded[:0]
	s.pendingRemoved = s.pendingRemoved[:0]
}

func (s *LayerStore) recomputeTransform(idx uint32) {
	parentWorld := Identity3d
	parentHidden := false
	if pIdx := s.parent[idx]; pIdx != invalidSlot {
		parentWorld = s.worldTransform[pIdx]
		parentHidden = s.effectiveHidden[pIdx]
	}
	s.worldTransform[idx] = parentWorld.Mul(s.localTransform[idx])
	s.effectiveHidden[idx] = parentHidden || s.flags[idx].Hidden
}

func (s *LayerStore) recomputeOpacity(idx uint32) {
	parentOpacity := float32(1)
	if pIdx := s.parent[idx]; pIdx != invalidSlot {
		parentOpacity = s.effectiveOpacity[pIdx]
	}
	s.effectiveOpacity[idx] = parentOpacity * s.localOpacity[idx]
}

func (s *LayerStore) rebuildTraversalOrder() {
	s.traversalOrder = s.traversalOrder[:0]
	for idx := 0; idx < s.len(); idx++ {
		if s.parent[idx] == invalidSlot && !s.inFreeList[idx] {
			s.dfsCollect(uint32(idx))
		}
	}
}

func (s *LayerStore) dfsCollect(idx uint32) {
	s.traversalOrder = append(s.traversalOrder, idx)
	child := s.firstChild[idx]
	for child != invalidSlot {
		s.dfsCollect(child)
		child = s.nextSibling[child]
	}
}
