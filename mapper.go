package textgeom

import (
	"errors"
	"fmt"
)

// Validation limits. Introspection implementations that cannot answer a
// glyph-bounds query sometimes return the surface's container frame with a
// success status; a rectangle as wide as a text field or as tall as a
// paragraph is a container, not a glyph run.
const (
	// MaxRunWidth is the largest plausible width of a single glyph-run
	// bounds answer.
	MaxRunWidth = 800.0

	// MaxRunHeight is the largest plausible height of a single glyph-run
	// bounds answer.
	MaxRunHeight = 200.0

	// MinRunDimension is the smallest plausible width or height; some
	// implementations return zero-sized or sub-pixel rectangles for
	// ranges they silently failed to resolve.
	MinRunDimension = 1.0

	// FrameSlack is how far outside its surface's frame a bounds answer
	// may reach before it is treated as stale (content scrolled away but
	// the implementation still answers with the old position).
	FrameSlack = 50.0
)

// ErrNoDisplays is returned when a Mapper is asked to flip coordinates
// with an empty display list.
var ErrNoDisplays = errors.New("textgeom: no displays configured")

// ValidationError reports why a rectangle was rejected.
type ValidationError struct {
	Rect   Rect
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("textgeom: invalid bounds %s: %s", e.Rect, e.Reason)
}

func invalid(r Rect, reason string) error {
	return &ValidationError{Rect: r, Reason: reason}
}

// Mapper converts rectangles between coordinate systems and validates
// bounds answers from the introspection interface. A Mapper is an
// immutable snapshot of the display configuration; it is safe for
// concurrent use.
type Mapper struct {
	displays DisplayList
}

// NewMapper creates a Mapper over the given display snapshot.
func NewMapper(displays DisplayList) *Mapper {
	return &Mapper{displays: displays}
}

// Displays returns the display snapshot the mapper was built with.
func (m *Mapper) Displays() DisplayList {
	return m.displays
}

// ToOtherSystem converts a rectangle between top-down and bottom-up
// coordinates using the primary display's height:
//
//	y' = displayHeight - y - height
//
// Applying the conversion twice is the identity. The flip is always
// computed against the primary display (frame origin at the global
// origin); using whichever display happens to contain the rectangle
// would make the two systems disagree about every secondary display.
func (m *Mapper) ToOtherSystem(r ScreenRect) (ScreenRect, error) {
	primary, ok := m.displays.Primary()
	if !ok {
		return r, ErrNoDisplays
	}
	out := r
	out.Y = primary.Frame.Height - r.Y - r.Height
	if r.System == TopDown {
		out.System = BottomUp
	} else {
		out.System = TopDown
	}
	return out, nil
}

// ValidateBounds rejects rectangles that cannot be glyph-run bounds:
// non-finite coordinates, empty or sub-pixel sizes, and container-sized
// frames returned in place of glyph bounds.
func (m *Mapper) ValidateBounds(r Rect) error {
	if !r.IsFinite() {
		return invalid(r, "non-finite coordinates")
	}
	if r.Width <= 0 || r.Height <= 0 {
		return invalid(r, "empty size")
	}
	if r.Width < MinRunDimension || r.Height < MinRunDimension {
		return invalid(r, "sub-pixel size")
	}
	if r.Width >= MaxRunWidth {
		return invalid(r, "container-sized width")
	}
	if r.Height >= MaxRunHeight {
		return invalid(r, "container-sized height")
	}
	return nil
}

// ValidateOnScreen applies ValidateBounds and additionally requires the
// rectangle to intersect a known display. Off-screen answers are stale:
// the content scrolled away but the implementation kept answering.
func (m *Mapper) ValidateOnScreen(r Rect) error {
	if err := m.ValidateBounds(r); err != nil {
		return err
	}
	if _, ok := m.displays.For(r); !ok {
		return invalid(r, "intersects no display")
	}
	return nil
}

// ValidateWithinFrame applies ValidateBounds and additionally requires
// the rectangle to lie within the surface's own frame expanded by
// FrameSlack. Bounds far outside their surface belong to scrolled-away
// content.
func (m *Mapper) ValidateWithinFrame(r, frame Rect) error {
	if err := m.ValidateBounds(r); err != nil {
		return err
	}
	if !frame.Expand(FrameSlack).Contains(r) {
		return invalid(r, "outside surface frame")
	}
	return nil
}

// DisplayFor returns the display containing the largest share of r.
func (m *Mapper) DisplayFor(r Rect) (Display, bool) {
	return m.displays.For(r)
}
