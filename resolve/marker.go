package resolve

import (
	"log/slog"

	"github.com/overlaykit/textgeom"
	"github.com/overlaykit/textgeom/textindex"
)

// markerStrategyName identifies MarkerStrategy in results.
const markerStrategyName = "opaque-marker"

// MarkerStrategy resolves bounds through opaque position markers
// (Chromium family). Both range endpoints are converted to markers via a
// capability call, then bounds are requested for the marker pair passed
// as a plain ordered pair; several implementations reject a composite
// range object but accept the pair form.
type MarkerStrategy struct {
	mapper   *textgeom.Mapper
	throttle Throttle
	log      *slog.Logger
}

// NewMarkerStrategy creates the opaque-marker strategy.
func NewMarkerStrategy(mapper *textgeom.Mapper, throttle Throttle, log *slog.Logger) *MarkerStrategy {
	if throttle == nil {
		throttle = nopThrottle{}
	}
	if log == nil {
		log = textgeom.Logger()
	}
	return &MarkerStrategy{mapper: mapper, throttle: throttle, log: log}
}

// Name implements Strategy.
func (s *MarkerStrategy) Name() string { return markerStrategyName }

// CanHandle implements Strategy.
func (s *MarkerStrategy) CanHandle(req *Request) bool {
	return req.Caps.OpaqueMarkers
}

// Calculate implements Strategy. It fails over (returns nil) on marker
// creation failure, bounds call failure, throttling, and bounds that do
// not survive validation.
func (s *MarkerStrategy) Calculate(req *Request) *Result {
	r := textindex.Convert(req.Range, req.Caps.Scheme, req.Text)

	if s.throttle.ShouldSkipCalls(req.AppID) {
		return nil
	}
	start, err := req.Surface.TextMarker(r.Location)
	if err != nil {
		s.log.Debug("marker creation failed", "offset", r.Location, "err", err)
		return nil
	}

	if s.throttle.ShouldSkipCalls(req.AppID) {
		return nil
	}
	end, err := req.Surface.TextMarker(r.End())
	if err != nil {
		s.log.Debug("marker creation failed", "offset", r.End(), "err", err)
		return nil
	}

	if s.throttle.ShouldSkipCalls(req.AppID) {
		return nil
	}
	bounds, err := req.Surface.MarkerBounds(start, end)
	if err != nil {
		s.log.Debug("marker bounds call failed", "err", err)
		return nil
	}
	if err := s.mapper.ValidateBounds(bounds); err != nil {
		s.log.Warn("marker bounds rejected", "err", err)
		return nil
	}

	return &Result{
		Bounds:     textgeom.ScreenRect{Rect: bounds, System: textgeom.TopDown},
		Confidence: ConfidenceDirect,
		Strategy:   markerStrategyName,
		Metadata:   map[string]string{"scheme": r.Scheme.String()},
	}
}
