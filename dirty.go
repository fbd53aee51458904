package subduction

import "fmt"

// DirtyChannel is one of the fixed invalidation channels the layer store
// tracks. TRANSFORM and OPACITY use eager propagation (marking a key also
// marks every dependent along that channel's edges); CLIP, CONTENT, and
// TOPOLOGY are local-only.
type DirtyChannel uint8

const (
	ChannelTransform DirtyChannel = iota
	ChannelOpacity
	ChannelClip
	ChannelContent
	ChannelTopology
	numDirtyChannels
)

// dirtyTracker is a keyed multi-channel invalidation tracker with
// dependency edges and propagation policies. It is a private dependency of
// LayerStore; nothing outside this package touches it. Keys are slot
// indices (uint32), matching the layer store's struct-of-arrays storage.
type dirtyTracker struct {
	dirty [numDirtyChannels]map[uint32]struct{}
	order [numDirtyChannels][]uint32
	deps  [numDirtyChannels]map[uint32][]uint32 // dependency -> dependents
}

func newDirtyTracker() *dirtyTracker {
	d := &dirtyTracker{}
	for c := range d.dirty {
		d.dirty[c] = make(map[uint32]struct{})
		d.deps[c] = make(map[uint32][]uint32)
	}
	return d
}

// mark records dirtiness for key on channel with the default (local-only)
// policy.
func (d *dirtyTracker) mark(key uint32, ch DirtyChannel) {
	d.markLocal(key, ch)
}

func (d *dirtyTracker) markLocal(key uint32, ch DirtyChannel) bool {
	if _, ok := d.dirty[ch][key]; ok {
		return false
	}
	d.dirty[ch][key] = struct{}{}
	d.order[ch] = append(d.order[ch], key)
	return true
}

// markEager records dirtiness for key on channel and, following that
// channel's dependency edges, marks every transitive dependent as well.
func (d *dirtyTracker) markEager(key uint32, ch DirtyChannel) {
	stack := []uint32{key}
	visited := make(map[uint32]struct{})
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[n]; ok {
			continue
		}
		visited[n] = struct{}{}
		d.markLocal(n, ch)
		stack = append(stack, d.deps[ch][n]...)
	}
}

// addDependency records that dependent becomes dirty on channel whenever
// dependency is marked dirty on channel. Returns an error if the edge would
// create a cycle; the layer store's tree-shaped usage never triggers this,
// but the tracker checks defensively regardless of caller.
func (d *dirtyTracker) addDependency(dependent, dependency uint32, ch DirtyChannel) error {
	if d.reachable(dependent, dependency, ch) {
		return fmt.Errorf("subduction: dirty tracker: dependency %d -> %d on channel %d would create a cycle", dependency, dependent, ch)
	}
	d.deps[ch][dependency] = append(d.deps[ch][dependency], dependent)
	return nil
}

// removeDependency removes a previously added edge. A no-op if the edge
// does not exist.
func (d *dirtyTracker) removeDependency(dependent, dependency uint32, ch DirtyChannel) {
	list := d.deps[ch][dependency]
	for i, v := range list {
		if v == dependent {
			d.deps[ch][dependency] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// removeKey clears all dirtiness and all edges touching key, across every
// channel. Used when a layer is destroyed.
func (d *dirtyTracker) removeKey(key uint32) {
	for ch := DirtyChannel(0); ch < numDirtyChannels; ch++ {
		delete(d.dirty[ch], key)
		delete(d.deps[ch], key)
		for dep, dependents := range d.deps[ch] {
			for i, v := range dependents {
				if v == key {
					d.deps[ch][dep] = append(dependents[:i], dependents[i+1:]...)
					break
				}
			}
		}
	}
}

// drain returns the dirty keys on channel in deterministic order (stable
// across runs given the same mutation sequence: first-marked order with
// duplicates collapsed) and clears the channel.
func (d *dirtyTracker) drain(ch DirtyChannel) []uint32 {
	order := d.order[ch]
	out := make([]uint32, 0, len(order))
	for _, k := range order {
		if _, ok := d.dirty[ch][k]; ok {
			out = append(out, k)
			delete(d.dirty[ch], k)
		}
	}
	d.order[ch] = d.order[ch][:0]
	return out
}

// drainOrdered returns the dirty keys on channel filtered down from
// externalOrder (an external total order over all keys, e.g. a DFS
// pre-order tree traversal), preserving externalOrder's relative order, and
// clears the channel. Unlike drain, this does not depend on the order keys
// were marked dirty in: insertion order only reflects which markEager call
// discovered a key first, which can put a child before its own ancestor if
// the ancestor is mutated later in the same frame. Channels whose recompute
// has a parent-before-child dependency (TRANSFORM, OPACITY) must drain this
// way; channels with no such dependency can keep using drain.
func (d *dirtyTracker) drainOrdered(ch DirtyChannel, externalOrder []uint32) []uint32 {
	set := d.dirty[ch]
	out := make([]uint32, 0, len(set))
	for _, k := range externalOrder {
		if _, ok := set[k]; ok {
			out = append(out, k)
		}
	}
	for k := range set {
		delete(set, k)
	}
	d.order[ch] = d.order[ch][:0]
	return out
}

// reachable reports whether target is reachable from start by following
// dependency edges on channel (start -> ... -> target).
func (d *dirtyTracker) reachable(start, target uint32, ch DirtyChannel) bool {
	if start == target {
		return true
	}
	stack := []uint32{start}
	visited := make(map[uint32]struct{})
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == target {
			return true
		}
		if _, ok := visited[n]; ok {
			continue
		}
		visited[n] = struct{}{}
		stack = append(stack, d.deps[ch][n]...)
	}
	return false
}
