package resolve

import (
	"log/slog"
	"strconv"

	"github.com/overlaykit/textgeom"
	"github.com/overlaykit/textgeom/measure"
	"github.com/overlaykit/textgeom/surface"
)

// fontMetricStrategyName identifies FontMetricStrategy in results.
const fontMetricStrategyName = "font-metric"

// minIndicatorWidth keeps estimated bounds wide enough to draw under
// even for single-character errors in narrow glyphs.
const minIndicatorWidth = 4.0

// StyleProvider is the external configuration collaborator: per-app,
// per-context calibration of how the target application renders text.
// Only the font-metric strategy consults it.
type StyleProvider interface {
	// FontSize returns the best-known font size in points.
	FontSize(appID, uiContext string) float64

	// SpacingMultiplier returns the line-height multiplier applied to
	// the font size.
	SpacingMultiplier(appID, uiContext string) float64

	// HorizontalPadding returns the content inset from the surface
	// frame's left and right edges.
	HorizontalPadding(appID, uiContext string) float64

	// UIContext classifies the surface within the application
	// ("compose", "search", ...), selecting among calibrations.
	UIContext(s surface.Handle) string
}

// TextMeasurer measures rendered text width. measure.Measurer is the
// production implementation; tests substitute fixed-width fakes.
type TextMeasurer interface {
	Advance(text string, size float64) float64
}

// FontMetricStrategy is the universal lowest-priority fallback: it
// estimates bounds from font metrics alone, measuring the text before
// and inside the error range and simulating the surface's line wrapping.
// Its results always sit in the estimation confidence band: a caller
// that needs certainty must not get it from here.
type FontMetricStrategy struct {
	mapper   *textgeom.Mapper
	throttle Throttle
	styles   StyleProvider
	measurer TextMeasurer
	log      *slog.Logger
}

// NewFontMetricStrategy creates the font-metric estimation strategy.
func NewFontMetricStrategy(mapper *textgeom.Mapper, throttle Throttle, styles StyleProvider, measurer TextMeasurer, log *slog.Logger) *FontMetricStrategy {
	if throttle == nil {
		throttle = nopThrottle{}
	}
	if log == nil {
		log = textgeom.Logger()
	}
	return &FontMetricStrategy{
		mapper:   mapper,
		throttle: throttle,
		styles:   styles,
		measurer: measurer,
		log:      log,
	}
}

// Name implements Strategy.
func (s *FontMetricStrategy) Name() string { return fontMetricStrategyName }

// CanHandle implements Strategy. Estimation needs no surface capability,
// only its frame, so it applies everywhere its collaborators exist.
func (s *FontMetricStrategy) CanHandle(req *Request) bool {
	return s.styles != nil && s.measurer != nil
}

// Calculate implements Strategy.
func (s *FontMetricStrategy) Calculate(req *Request) *Result {
	if req.Text == "" {
		return nil
	}
	if measure.IsRightToLeft(req.Text) {
		s.log.Debug("estimation refused for right-to-left text")
		return nil
	}
	if s.throttle.ShouldSkipCalls(req.AppID) {
		return nil
	}
	frame, err := req.Surface.Frame()
	if err != nil {
		s.log.Debug("surface frame unavailable", "err", err)
		return nil
	}

	uiContext := s.styles.UIContext(req.Surface)
	size := s.styles.FontSize(req.AppID, uiContext)
	spacing := s.styles.SpacingMultiplier(req.AppID, uiContext)
	padding := s.styles.HorizontalPadding(req.AppID, uiContext)
	if size <= 0 || spacing <= 0 {
		return nil
	}
	lineHeight := size * spacing
	contentWidth := frame.Width - 2*padding
	if contentWidth <= 0 {
		return nil
	}

	adv := func(t string) float64 { return s.measurer.Advance(t, size) }
	lines := measure.Wrap(req.Text, contentWidth, adv)
	if len(lines) == 0 {
		return nil
	}

	runes := []rune(req.Text)
	loc := min(req.Range.Location, len(runes))
	end := min(req.Range.End(), len(runes))
	lineIdx := measure.LineAt(lines, loc)
	if lineIdx < 0 {
		return nil
	}
	line := lines[lineIdx]

	prefix := string(runes[line.Start:loc])
	errText := string(runes[loc:end])

	width := max(adv(errText), minIndicatorWidth)
	bounds := textgeom.XYWH(
		frame.X+padding+adv(prefix),
		frame.Y+float64(lineIdx)*lineHeight,
		width,
		lineHeight,
	)

	if err := s.mapper.ValidateWithinFrame(bounds, frame); err != nil {
		s.log.Debug("estimated bounds rejected", "err", err)
		return nil
	}

	confidence := ConfidenceEstimateMax
	if len(lines) > 1 {
		// Wrapped content compounds the estimate's error per line.
		confidence -= 0.05
	}
	if req.Range.End() > len(runes) || loc != req.Range.Location {
		confidence = ConfidenceEstimateMin
	}

	return &Result{
		Bounds:     textgeom.ScreenRect{Rect: bounds, System: textgeom.TopDown},
		Confidence: confidence,
		Strategy:   fontMetricStrategyName,
		Metadata: map[string]string{
			"line":      strconv.Itoa(lineIdx),
			"uiContext": uiContext,
		},
	}
}
