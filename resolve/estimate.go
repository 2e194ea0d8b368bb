package resolve

import (
	"github.com/overlaykit/textgeom"
)

// Rough-estimate constants: generic monospace-ish metrics used only when
// every strategy has failed and nothing is known about the app's fonts.
const (
	roughCharWidth  = 7.5
	roughLineHeight = 18.0
)

// roughEstimate derives last-resort bounds from the surface's own frame
// and an average character width. It is tagged with the minimum
// confidence and the resolver never caches it: a cached guess would keep
// shadowing a precise answer for a range that becomes resolvable once
// conditions change (content scrolled into view, capability recovers).
func roughEstimate(req *Request) *Result {
	frame, err := req.Surface.Frame()
	if err != nil || frame.IsEmpty() || !frame.IsFinite() {
		return nil
	}

	charsPerLine := int(frame.Width / roughCharWidth)
	if charsPerLine < 1 {
		charsPerLine = 1
	}
	row := req.Range.Location / charsPerLine
	col := req.Range.Location % charsPerLine

	width := float64(req.Range.Length) * roughCharWidth
	if width < roughCharWidth {
		width = roughCharWidth
	}

	return &Result{
		Bounds: textgeom.ScreenRect{
			Rect: textgeom.XYWH(
				frame.X+float64(col)*roughCharWidth,
				frame.Y+float64(row)*roughLineHeight,
				width,
				roughLineHeight,
			),
			System: textgeom.TopDown,
		},
		Confidence: ConfidenceRough,
		Strategy:   "rough-estimate",
		Metadata:   map[string]string{"uncached": "true"},
	}
}
