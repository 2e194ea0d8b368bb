package textgeom

// Display describes one physical display in the global top-down
// coordinate space. The primary display has its frame origin at the
// global origin (0, 0); secondary displays sit at arbitrary offsets,
// including negative ones.
type Display struct {
	Frame Rect
}

// DisplayList is the set of displays known at resolution time.
// Callers refresh it from the windowing system when the configuration
// changes; the list itself is an immutable snapshot.
type DisplayList []Display

// SingleDisplay returns a one-display list of the given size with its
// origin at the global origin. Convenient for tests and single-monitor
// setups.
func SingleDisplay(width, height float64) DisplayList {
	return DisplayList{{Frame: XYWH(0, 0, width, height)}}
}

// Primary returns the display whose frame origin is the global origin.
// The primary display is the one coordinate flips are computed against,
// not the first in the list and not the one under the cursor.
// Falls back to the first display when none sits at the origin.
func (dl DisplayList) Primary() (Display, bool) {
	if len(dl) == 0 {
		return Display{}, false
	}
	for _, d := range dl {
		if d.Frame.X == 0 && d.Frame.Y == 0 {
			return d, true
		}
	}
	return dl[0], true
}

// For returns the display containing the largest share of r, resolving
// rectangles that straddle display boundaries. A rectangle touching no
// display returns false: such bounds are stale answers for scrolled-away
// content and must not be attributed to any display.
func (dl DisplayList) For(r Rect) (Display, bool) {
	var (
		best     Display
		bestArea float64
	)
	for _, d := range dl {
		if a := d.Frame.IntersectionArea(r); a > bestArea {
			best = d
			bestArea = a
		}
	}
	if bestArea <= 0 {
		return Display{}, false
	}
	return best, true
}
