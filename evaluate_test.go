package subduction

import "testing"

func TestEmptyEvaluateIsIdempotent(t *testing.T) {
	s := NewLayerStore()
	s.Evaluate()
	changes := s.Evaluate()
	if len(changes.Transforms) != 0 || changes.TopologyChanged {
		t.Fatalf("expected empty, stable change-set, got %+v", changes)
	}
}

func TestChainOfThreeWorldTransform(t *testing.T) {
	s := NewLayerStore()
	a := s.CreateLayer()
	b := s.CreateLayer()
	c := s.CreateLayer()
	s.AddChild(a, b)
	s.AddChild(b, c)
	s.SetTransform(a, TransformFromTranslation(10, 0, 0))

	changes := s.Evaluate()
	want := TransformFromTranslation(10, 0, 0)
	if got := s.WorldTransform(c); !transformsEqual(got, want) {
		t.Errorf("world transform of c = %v, want %v", got, want)
	}
	seen := map[uint32]bool{}
	for _, idx := range changes.Transforms {
		seen[idx] = true
	}
	for _, id := range []LayerId{a, b, c} {
		if !seen[id.Index()] {
			t.Errorf("expected %v in transforms change-set", id)
		}
	}
}

func TestOpacityPropagatesThroughThreeLevels(t *testing.T) {
	s := NewLayerStore()
	a := s.CreateLayer()
	b := s.CreateLayer()
	c := s.CreateLayer()
	s.AddChild(a, b)
	s.AddChild(b, c)
	s.SetOpacity(a, 0.5)
	s.SetOpacity(b, 0.5)
	s.Evaluate()

	if got := s.EffectiveOpacity(c); got != 0.25 {
		t.Errorf("effective opacity of c = %v, want 0.25", got)
	}
}

func TestTraversalOrderIsDFSPreOrder(t *testing.T) {
	s := NewLayerStore()
	root := s.CreateLayer()
	a := s.CreateLayer()
	b := s.CreateLayer()
	s.AddChild(root, a)
	s.AddChild(root, b)
	grandchild := s.CreateLayer()
	s.AddChild(a, grandchild)
	s.Evaluate()

	order := s.TraversalOrder()
	want := []uint32{root.Index(), a.Index(), grandchild.Index(), b.Index()}
	if len(order) != len(want) {
		t.Fatalf("traversal order length = %d, want %d: %v", len(order), len(want), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("traversal order = %v, want %v", order, want)
		}
	}
}

func TestClipAndContentChangesTracked(t *testing.T) {
	s := NewLayerStore()
	id := s.CreateLayer()
	s.Evaluate()

	s.SetClip(id, NewRectClip(Rect{Width: 10, Height: 10}))
	s.SetContent(id, SurfaceId(42))
	changes := s.Evaluate()

	if len(changes.Clips) != 1 || changes.Clips[0] != id.Index() {
		t.Errorf("expected clip change for id, got %v", changes.Clips)
	}
	if len(changes.Content) != 1 || changes.Content[0] != id.Index() {
		t.Errorf("expected content change for id, got %v", changes.Content)
	}
}

func TestTransformDrainOrdersParentBeforeChildAcrossMutationsInOneFrame(t *testing.T) {
	s := NewLayerStore()
	root := s.CreateLayer()
	child := s.CreateLayer()
	s.AddChild(root, child)
	s.Evaluate()

	// Mutate the child first, then the parent, within the same frame: the
	// dirty tracker's insertion order would be [child, root], but
	// recomputeTransform must still run root before child.
	s.SetTransform(child, TransformFromTranslation(1, 0, 0))
	s.SetTransform(root, TransformFromTranslation(10, 0, 0))
	s.Evaluate()

	want := TransformFromTranslation(11, 0, 0)
	if got := s.WorldTransform(child); !transformsEqual(got, want) {
		t.Errorf("world transform of child = %v, want %v (root must recompute first)", got, want)
	}
}

func TestMultipleRootsEvaluate(t *testing.T) {
	s := NewLayerStore()
	a := s.CreateLayer()
	b := s.CreateLayer()
	s.SetTransform(a, TransformFromTranslation(1, 0, 0))
	s.SetTransform(b, TransformFromTranslation(0, 1, 0))
	s.Evaluate()

	if got := s.WorldTransform(a); !transformsEqual(got, TransformFromTranslation(1, 0, 0)) {
		t.Errorf("a world transform = %v", got)
	}
	if got := s.WorldTransform(b); !transformsEqual(got, TransformFromTranslation(0, 1, 0)) {
		t.Errorf("b world transform = %v", got)
	}
}

func TestAddedAndRemovedLifecycle(t *testing.T) {
	s := NewLayerStore()
	id := s.CreateLayer()
	changes := s.Evaluate()
	if len(changes.Added) != 1 || changes.Added[0] != id.Index() {
		t.Fatalf("expected id in added, got %v", changes.Added)
	}

	s.DestroyLayer(id)
	changes = s.Evaluate()
	if len(changes.Removed) != 1 || changes.Removed[0] != id.Index() {
		t.Fatalf("expected id in removed, got %v", changes.Removed)
	}
}

func TestHiddenPropagatesToChildren(t *testing.T) {
	s := NewLayerStore()
	root := s.CreateLayer()
	child := s.CreateLayer()
	s.AddChild(root, child)
	s.Evaluate()

	s.SetFlags(root, LayerFlags{Hidden: true})
	changes := s.Evaluate()

	hidden := map[uint32]bool{}
	for _, idx := range changes.Hidden {
		hidden[idx] = true
	}
	if !hidden[root.Index()] || !hidden[child.Index()] {
		t.Fatalf("expected both root and child hidden, got %v", changes.Hidden)
	}
	if !s.EffectiveHidden(child) {
		t.Error("child effective_hidden should be true")
	}
	// World transform still computed for hidden layers.
	if got := s.WorldTransform(child); !transformsEqual(got, Identity3d) {
		t.Errorf("hidden child world transform = %v, want identity", got)
	}
}

func TestUnhideRestoresVisibility(t *testing.T) {
	s := NewLayerStore()
	root := s.CreateLayer()
	s.SetFlags(root, LayerFlags{Hidden: true})
	s.Evaluate()

	s.SetFlags(root, LayerFlags{Hidden: false})
	changes := s.Evaluate()

	found := false
	for _, idx := range changes.Unhidden {
		if idx == root.Index() {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected root in unhidden, got %v", changes.Unhidden)
	}
}

func TestEvaluateIntoReusesBuffer(t *testing.T) {
	s := NewLayerStore()
	id := s.CreateLayer()
	var changes FrameChanges
	s.EvaluateInto(&changes)
	if len(changes.Added) != 1 {
		t.Fatalf("expected 1 added on first call, got %d", len(changes.Added))
	}
	s.EvaluateInto(&changes)
	if len(changes.Added) != 0 {
		t.Fatalf("expected no accumulation across calls, got %v", changes.Added)
	}
	_ = id
}
