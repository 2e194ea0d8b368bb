package measure

import "golang.org/x/text/unicode/bidi"

// IsRightToLeft reports whether the text contains any right-to-left run.
// The estimation strategy refuses such text outright: simulating mirrored
// line layout from font metrics alone produces positions wrong enough to
// be worse than no answer.
func IsRightToLeft(text string) bool {
	if text == "" {
		return false
	}
	p := bidi.Paragraph{}
	_, _ = p.SetString(text)
	ordering, err := p.Order()
	if err != nil {
		return false
	}
	for i := 0; i < ordering.NumRuns(); i++ {
		// Run returns a value; Direction has a pointer receiver.
		run := ordering.Run(i)
		if run.Direction() == bidi.RightToLeft {
			return true
		}
	}
	return false
}
