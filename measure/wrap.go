package measure

import "unicode"

// AdvanceFunc measures the rendered width of a piece of text in pixels.
// The wrap simulation is parameterized on it so tests can use fixed
// per-rune widths and production code can bind Measurer.Advance at a
// specific font size.
type AdvanceFunc func(text string) float64

// Line is one wrapped line as a half-open range of rune offsets into the
// full text. Lines partition the text: every rune offset belongs to
// exactly one line, with a terminating newline counted into the line it
// ends.
type Line struct {
	// Start is the rune offset of the line's first rune.
	Start int

	// End is the rune offset one past the line's last rune.
	End int

	// Width is the measured width of the line's content in pixels,
	// excluding a terminating newline.
	Width float64
}

// Contains reports whether the rune offset falls on this line.
func (l Line) Contains(offset int) bool {
	return offset >= l.Start && offset < l.End
}

// Wrap simulates greedy word wrapping of text against maxWidth.
//
// Words break at whitespace; a word wider than maxWidth on a line of its
// own breaks at character boundaries. Newlines force hard breaks. A
// non-positive maxWidth disables wrapping. Empty text wraps to nil.
//
// This mirrors the wrapping native text fields perform closely enough to
// place an estimate on the right visual line; it does not attempt UAX #14
// fidelity, which the estimate's confidence band already accounts for.
func Wrap(text string, maxWidth float64, advance AdvanceFunc) []Line {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	var lines []Line

	paraStart := 0
	for i := 0; i <= len(runes); i++ {
		if i < len(runes) && runes[i] != '\n' {
			continue
		}
		// Paragraph [paraStart, i); the newline at i (if any) is folded
		// into the paragraph's last line.
		end := i
		hasNL := i < len(runes)
		paraLines := wrapParagraph(runes, paraStart, end, maxWidth, advance)
		if hasNL {
			paraLines[len(paraLines)-1].End++
		}
		lines = append(lines, paraLines...)
		paraStart = i + 1
	}
	return lines
}

// LineAt returns the index of the line containing the rune offset.
// An offset at or past the end of the text maps to the last line.
// Returns -1 for an empty line slice.
func LineAt(lines []Line, offset int) int {
	for i, l := range lines {
		if l.Contains(offset) {
			return i
		}
	}
	return len(lines) - 1
}

// wrapParagraph wraps one newline-free span of runes. Always returns at
// least one line, possibly empty.
func wrapParagraph(runes []rune, start, end int, maxWidth float64, advance AdvanceFunc) []Line {
	if maxWidth <= 0 {
		return []Line{{Start: start, End: end, Width: advance(string(runes[start:end]))}}
	}

	var lines []Line
	lineStart := start
	lineWidth := 0.0

	i := start
	for i < end {
		tokEnd := tokenEnd(runes, i, end)
		tok := string(runes[i:tokEnd])
		tokWidth := advance(tok)
		isWord := !unicode.IsSpace(runes[i])

		if isWord && lineWidth > 0 && lineWidth+tokWidth > maxWidth {
			lines = append(lines, Line{Start: lineStart, End: i, Width: lineWidth})
			lineStart = i
			lineWidth = 0
		}

		if isWord && tokWidth > maxWidth {
			// The word alone overflows: break at character boundaries.
			for j := i; j < tokEnd; j++ {
				rw := advance(string(runes[j]))
				if lineWidth > 0 && lineWidth+rw > maxWidth {
					lines = append(lines, Line{Start: lineStart, End: j, Width: lineWidth})
					lineStart = j
					lineWidth = 0
				}
				lineWidth += rw
			}
			i = tokEnd
			continue
		}

		lineWidth += tokWidth
		i = tokEnd
	}

	lines = append(lines, Line{Start: lineStart, End: end, Width: lineWidth})
	return lines
}

// tokenEnd returns the rune offset one past the maximal run of the same
// kind (space or non-space) starting at i.
func tokenEnd(runes []rune, i, end int) int {
	isSpace := unicode.IsSpace(runes[i])
	j := i + 1
	for j < end && unicode.IsSpace(runes[j]) == isSpace && runes[j] != '\n' {
		j++
	}
	return j
}
