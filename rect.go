package textgeom

import (
	"fmt"
	"math"
)

// CoordinateSystem identifies the vertical orientation of a rectangle's
// coordinates. Introspection implementations answer top-down; window
// servers on some platforms draw bottom-up. Rectangles always carry their
// system explicitly so the two are never confused silently.
type CoordinateSystem uint8

const (
	// TopDown places the origin at the top-left of the primary display;
	// y grows downward.
	TopDown CoordinateSystem = iota

	// BottomUp places the origin at the bottom-left of the primary
	// display; y grows upward.
	BottomUp
)

// String returns the string representation of the coordinate system.
func (c CoordinateSystem) String() string {
	switch c {
	case TopDown:
		return "TopDown"
	case BottomUp:
		return "BottomUp"
	default:
		return "Unknown"
	}
}

// Rect is an axis-aligned rectangle given by its origin and size.
// Rect is an immutable value; all methods return new rectangles.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// XYWH is a convenience function to create a Rect.
func XYWH(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// MaxX returns the x coordinate of the right edge.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the y coordinate of the far edge (bottom in top-down,
// top in bottom-up).
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Origin returns the rectangle's origin point.
func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// IsFinite reports whether all four components are finite numbers.
func (r Rect) IsFinite() bool {
	for _, v := range [4]float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Intersect returns the intersection of two rectangles.
// If the rectangles do not overlap, the result is empty.
func (r Rect) Intersect(o Rect) Rect {
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.MaxX(), o.MaxX())
	y1 := math.Min(r.MaxY(), o.MaxY())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// IntersectionArea returns the area of the overlap between two rectangles,
// or 0 when they do not overlap.
func (r Rect) IntersectionArea(o Rect) float64 {
	i := r.Intersect(o)
	return i.Width * i.Height
}

// Intersects reports whether two rectangles overlap with positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.IntersectionArea(o) > 0
}

// Contains reports whether o lies entirely within r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y &&
		o.MaxX() <= r.MaxX() && o.MaxY() <= r.MaxY()
}

// Union returns the smallest rectangle containing both r and o.
// An empty rectangle does not contribute to the union.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	x0 := math.Min(r.X, o.X)
	y0 := math.Min(r.Y, o.Y)
	x1 := math.Max(r.MaxX(), o.MaxX())
	y1 := math.Max(r.MaxY(), o.MaxY())
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Expand returns the rectangle grown by d on every side.
// Negative d shrinks the rectangle.
func (r Rect) Expand(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// String returns a compact representation for logs and cache keys.
func (r Rect) String() string {
	return fmt.Sprintf("(%.1f,%.1f %.1fx%.1f)", r.X, r.Y, r.Width, r.Height)
}

// ScreenRect is a rectangle tagged with the coordinate system its values
// are expressed in.
type ScreenRect struct {
	Rect
	System CoordinateSystem
}

// NewScreenRect creates a ScreenRect from components.
func NewScreenRect(x, y, w, h float64, sys CoordinateSystem) ScreenRect {
	return ScreenRect{Rect: XYWH(x, y, w, h), System: sys}
}

// String returns a compact representation including the coordinate system.
func (r ScreenRect) String() string {
	return r.Rect.String() + "/" + r.System.String()
}
