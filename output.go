package subduction

import "fmt"

// OutputId identifies a display output (monitor, window, or surface) the
// scheduler and tracing subsystem attach frames to. The core never
// dereferences it; it is an opaque token supplied by the backend.
type OutputId uint32

func (o OutputId) String() string { return fmt.Sprintf("OutputId(%d)", uint32(o)) }

// SurfaceId is an opaque 32-bit identifier supplied by the caller for a
// layer's content. The core never dereferences it.
type SurfaceId uint32

func (s SurfaceId) String() string { return fmt.Sprintf("SurfaceId(%d)", uint32(s)) }
