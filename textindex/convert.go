package textindex

import "github.com/rivo/uniseg"

// Convert re-expresses a range in another indexing scheme over the same
// text snapshot.
//
// Out-of-range offsets clamp to the text length. An offset falling inside
// a surrogate pair or a grapheme cluster rounds down to the unit's start.
// A non-zero input range never collapses to zero length (minimum 1), so
// a follow-up capability call is not rejected as degenerate; zero-length
// ranges stay zero-length.
func Convert(r Range, to Scheme, text string) Range {
	runes := []rune(text)

	s0 := toScalar(r.Location, r.Scheme, text, runes)
	s1 := toScalar(r.End(), r.Scheme, text, runes)

	loc := fromScalar(s0, to, text, runes)
	end := fromScalar(s1, to, text, runes)

	length := end - loc
	if r.Length == 0 {
		length = 0
	}

	total := Length(text, to)
	if loc > total {
		loc = total
	}
	if loc+length > total {
		length = total - loc
	}
	if r.Length > 0 && length < 1 {
		// The range collapsed inside a single unit of the target scheme;
		// widen back to one unit, shifting left at the end of the text.
		if loc >= total && total > 0 {
			loc = total - 1
		}
		if loc < total {
			length = 1
		} else {
			length = 0
		}
	}

	return Range{Location: loc, Length: length, Scheme: to}
}

// toScalar converts an offset in the given scheme to a scalar offset,
// clamping to the text length and rounding down inside multi-unit
// sequences.
func toScalar(offset int, from Scheme, text string, runes []rune) int {
	if offset < 0 {
		return 0
	}
	switch from {
	case Scalar:
		if offset > len(runes) {
			return len(runes)
		}
		return offset
	case UTF16:
		u := 0
		for i, r := range runes {
			n := utf16Len(r)
			if offset < u+n {
				return i
			}
			u += n
		}
		return len(runes)
	case Grapheme:
		g := 0
		runeIdx := 0
		gr := uniseg.NewGraphemes(text)
		for gr.Next() {
			if offset <= g {
				return runeIdx
			}
			runeIdx += len(gr.Runes())
			g++
		}
		return len(runes)
	default:
		return 0
	}
}

// fromScalar converts a scalar offset to the given scheme, clamping to
// the text length and rounding down inside multi-scalar clusters.
func fromScalar(scalar int, to Scheme, text string, runes []rune) int {
	if scalar < 0 {
		scalar = 0
	}
	if scalar > len(runes) {
		scalar = len(runes)
	}
	switch to {
	case Scalar:
		return scalar
	case UTF16:
		u := 0
		for _, r := range runes[:scalar] {
			u += utf16Len(r)
		}
		return u
	case Grapheme:
		g := 0
		runeIdx := 0
		gr := uniseg.NewGraphemes(text)
		for gr.Next() {
			n := len(gr.Runes())
			if scalar < runeIdx+n {
				return g
			}
			runeIdx += n
			g++
		}
		return g
	default:
		return 0
	}
}
