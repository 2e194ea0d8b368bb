// Package textindex converts character offsets between the three
// incompatible ways of counting "characters" in a piece of text.
//
// The upstream error detector reports ranges in Unicode scalar values
// (runes). Chromium-family introspection implementations index text in
// UTF-16 code units. What users perceive as one character is a grapheme
// cluster, which may span several scalars, each of which may span two
// UTF-16 units. Conversions walk real boundary iterators; assuming a
// 1:1 mapping corrupts every offset past the first emoji.
package textindex

import "github.com/rivo/uniseg"

// Scheme identifies a character-indexing scheme.
type Scheme uint8

const (
	// Scalar counts Unicode scalar values (Go runes). This is the
	// canonical scheme: the detector reports error ranges in it.
	Scalar Scheme = iota

	// UTF16 counts UTF-16 code units; a scalar outside the Basic
	// Multilingual Plane occupies two.
	UTF16

	// Grapheme counts extended grapheme clusters (UAX #29); one cluster
	// may span many scalars.
	Grapheme
)

// String returns the string representation of the scheme.
func (s Scheme) String() string {
	switch s {
	case Scalar:
		return "Scalar"
	case UTF16:
		return "UTF16"
	case Grapheme:
		return "Grapheme"
	default:
		return "Unknown"
	}
}

// Range is a half-open character range (location, location+length) over
// one specific indexing scheme. Ranges are comparable only to ranges in
// the same scheme over the same text snapshot.
type Range struct {
	Location int
	Length   int
	Scheme   Scheme
}

// NewRange creates a Range. Negative lengths are clamped to zero.
func NewRange(location, length int, scheme Scheme) Range {
	if length < 0 {
		length = 0
	}
	return Range{Location: location, Length: length, Scheme: scheme}
}

// End returns the offset one past the last unit of the range.
func (r Range) End() int { return r.Location + r.Length }

// Contains reports whether o lies entirely within r.
// Both ranges must use the same scheme over the same text.
func (r Range) Contains(o Range) bool {
	return o.Location >= r.Location && o.End() <= r.End()
}

// Overlaps reports whether r and o share at least one unit.
// Both ranges must use the same scheme over the same text.
func (r Range) Overlaps(o Range) bool {
	return o.Location < r.End() && r.Location < o.End()
}

// Length returns the length of text counted in the given scheme.
func Length(text string, scheme Scheme) int {
	switch scheme {
	case UTF16:
		n := 0
		for _, r := range text {
			n += utf16Len(r)
		}
		return n
	case Grapheme:
		return uniseg.GraphemeClusterCount(text)
	default:
		n := 0
		for range text {
			n++
		}
		return n
	}
}

// utf16Len returns the number of UTF-16 code units needed for a scalar.
func utf16Len(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}
