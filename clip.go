package subduction

// Rect is an axis-aligned rectangle in local layer coordinates. Adapted
// from the teacher's willow.Rect (origin top-left, Y increasing downward).
type Rect struct {
	X, Y, Width, Height float64
}

// RoundedRect is a Rect with a uniform corner radius.
type RoundedRect struct {
	Rect
	Radius float64
}

// ClipShapeKind distinguishes the variant stored in a ClipShape.
type ClipShapeKind uint8

const (
	// ClipShapeNone means the layer has no clip shape set.
	ClipShapeNone ClipShapeKind = iota
	// ClipShapeRect means Rect is the active shape.
	ClipShapeRect
	// ClipShapeRoundedRect means RoundedRect is the active shape.
	ClipShapeRoundedRect
)

// ClipShape is the clip region assigned to a layer: either absent, a plain
// Rect, or a RoundedRect. This is a closed sum type standing in for the
// original implementation's kurbo-backed Rect/RoundedRect clip enum; no
// geometry library in the retrieved example corpus covers rounded-rect
// clipping, so the shape is modeled directly on the teacher's own Rect.
type ClipShape struct {
	Kind        ClipShapeKind
	Rect        Rect
	RoundedRect RoundedRect
}

// NoClip is the zero-value "no clip shape" ClipShape.
var NoClip = ClipShape{Kind: ClipShapeNone}

// NewRectClip builds a ClipShape from a plain Rect.
func NewRectClip(r Rect) ClipShape {
	return ClipShape{Kind: ClipShapeRect, Rect: r}
}

// NewRoundedRectClip builds a ClipShape from a RoundedRect.
func NewRoundedRectClip(r RoundedRect) ClipShape {
	return ClipShape{Kind: ClipShapeRoundedRect, RoundedRect: r}
}
