package resolve

import (
	"log/slog"

	"github.com/overlaykit/textgeom"
	"github.com/overlaykit/textgeom/textindex"
)

// classicStrategyName identifies ClassicRangeStrategy in results.
const classicStrategyName = "classic-range"

// ClassicRangeStrategy resolves bounds with a direct bounds-for-range
// capability call carrying an explicit offset and length (native
// renderers).
type ClassicRangeStrategy struct {
	mapper   *textgeom.Mapper
	throttle Throttle
	log      *slog.Logger
}

// NewClassicRangeStrategy creates the classic range strategy.
func NewClassicRangeStrategy(mapper *textgeom.Mapper, throttle Throttle, log *slog.Logger) *ClassicRangeStrategy {
	if throttle == nil {
		throttle = nopThrottle{}
	}
	if log == nil {
		log = textgeom.Logger()
	}
	return &ClassicRangeStrategy{mapper: mapper, throttle: throttle, log: log}
}

// Name implements Strategy.
func (s *ClassicRangeStrategy) Name() string { return classicStrategyName }

// CanHandle implements Strategy.
func (s *ClassicRangeStrategy) CanHandle(req *Request) bool {
	return req.Caps.ClassicRange
}

// Calculate implements Strategy.
func (s *ClassicRangeStrategy) Calculate(req *Request) *Result {
	r := textindex.Convert(req.Range, req.Caps.Scheme, req.Text)

	if s.throttle.ShouldSkipCalls(req.AppID) {
		return nil
	}
	bounds, err := req.Surface.RangeBounds(r.Location, r.Length)
	if err != nil {
		s.log.Debug("range bounds call failed", "location", r.Location, "length", r.Length, "err", err)
		return nil
	}
	if err := s.mapper.ValidateBounds(bounds); err != nil {
		s.log.Warn("range bounds rejected", "err", err)
		return nil
	}

	return &Result{
		Bounds:     textgeom.ScreenRect{Rect: bounds, System: textgeom.TopDown},
		Confidence: ConfidenceDirect,
		Strategy:   classicStrategyName,
		Metadata:   map[string]string{"scheme": r.Scheme.String()},
	}
}
