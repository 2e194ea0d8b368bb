package surface

import "fmt"

// unknownAttr is the sentinel used when a surface exposes no stable
// attribute at all.
const unknownAttr = "unknown"

// Identity derives a stable composite key for a surface.
//
// The raw handle value is never part of the key: the operating system
// reuses handle values for unrelated nodes shortly after release, and a
// key built on the bit pattern would serve confidently-wrong cached
// geometry for whatever node inherited the value.
//
// The key combines the owning process id, the structural role, and the
// best stable attribute available: the explicit identifier, else the
// description, else the last-known frame origin, else a sentinel.
func Identity(h Handle) string {
	attr := h.Identifier()
	if attr == "" {
		attr = h.Description()
	}
	if attr == "" {
		if frame, err := h.Frame(); err == nil {
			attr = fmt.Sprintf("@%.0f,%.0f", frame.X, frame.Y)
		}
	}
	if attr == "" {
		attr = unknownAttr
	}
	return fmt.Sprintf("%d:%s:%s", h.PID(), h.Role(), attr)
}
