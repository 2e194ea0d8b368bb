package resolve

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/overlaykit/textgeom"
	"github.com/overlaykit/textgeom/cache"
	"github.com/overlaykit/textgeom/surface"
	"github.com/overlaykit/textgeom/textindex"
)

// treeStrategyName identifies TreeStrategy in results.
const treeStrategyName = "tree-traversal"

// Traversal limits.
const (
	// DefaultMaxDepth bounds the structural recursion. Renderer trees
	// deeper than this are pathological; an unbounded walk over a remote
	// process is how resolutions take seconds.
	DefaultMaxDepth = 15

	// spanCacheCapacity and spanCacheTTL size the child-map cache. The
	// map is invalidated naturally by its key (text hash + surface
	// frame): edits and scrolls change the key.
	spanCacheCapacity = 32
	spanCacheTTL      = 10 * time.Second
)

// childSpan maps one child text-run node into the full text: the scalar
// range its text occupies, its frame, and its handle.
type childSpan struct {
	rng    textindex.Range
	frame  textgeom.Rect
	handle surface.Handle
}

// TreeStrategy serves renderers whose root surface supports neither
// markers nor range bounds, but whose child text-run nodes answer range
// queries individually. It maps each child's text into the full text by
// substring search, then scopes the query to the child containing the
// target range.
type TreeStrategy struct {
	mapper   *textgeom.Mapper
	throttle Throttle
	log      *slog.Logger
	maxDepth int
	spans    *cache.Cache[[]childSpan]
}

// NewTreeStrategy creates the structural tree-traversal strategy.
func NewTreeStrategy(mapper *textgeom.Mapper, throttle Throttle, log *slog.Logger) *TreeStrategy {
	if throttle == nil {
		throttle = nopThrottle{}
	}
	if log == nil {
		log = textgeom.Logger()
	}
	return &TreeStrategy{
		mapper:   mapper,
		throttle: throttle,
		log:      log,
		maxDepth: DefaultMaxDepth,
		spans:    cache.New[[]childSpan](spanCacheCapacity, spanCacheTTL),
	}
}

// Name implements Strategy.
func (s *TreeStrategy) Name() string { return treeStrategyName }

// CanHandle implements Strategy.
func (s *TreeStrategy) CanHandle(req *Request) bool {
	return req.Caps.ChildTraversal
}

// Calculate implements Strategy.
//
// The child map is cached by full-text hash plus surface frame, so
// repeated queries against unchanged content skip the traversal. If no
// child's range contains or overlaps the target (virtualized or
// off-tree content), the answer is unavailable; interpolating a guessed
// position between neighboring children would be confidently wrong.
func (s *TreeStrategy) Calculate(req *Request) *Result {
	if s.throttle.ShouldSkipCalls(req.AppID) {
		return nil
	}
	frame, err := req.Surface.Frame()
	if err != nil {
		s.log.Debug("surface frame unavailable", "err", err)
		return nil
	}

	key := fmt.Sprintf("%016x|%s", hashString(req.Text), frame)
	spans, ok := s.spans.Get(key)
	if !ok {
		runes := []rune(req.Text)
		spans, _ = s.walk(req.Surface, runes, req.AppID, 0, s.maxDepth)
		s.spans.Store(key, spans)
	}
	if len(spans) == 0 {
		return nil
	}

	target := req.Range

	// Prefer the most specific child fully containing the target.
	var containing *childSpan
	for i := range spans {
		sp := &spans[i]
		if !sp.rng.Contains(target) {
			continue
		}
		if containing == nil || sp.rng.Length < containing.rng.Length {
			containing = sp
		}
	}
	if containing != nil {
		bounds, conf, ok := s.childBounds(req, containing, target)
		if !ok {
			return nil
		}
		return &Result{
			Bounds:     textgeom.ScreenRect{Rect: bounds, System: textgeom.TopDown},
			Confidence: conf,
			Strategy:   treeStrategyName,
			Metadata: map[string]string{
				"childRole": containing.handle.Role(),
			},
		}
	}

	// The target straddles children: union each overlapping child's
	// sub-range bounds.
	var (
		union textgeom.Rect
		conf  = ConfidenceDerived
		parts int
	)
	for i := range spans {
		sp := &spans[i]
		if !sp.rng.Overlaps(target) {
			continue
		}
		clamped := clampRange(target, sp.rng)
		bounds, partConf, ok := s.childBounds(req, sp, clamped)
		if !ok {
			continue
		}
		union = union.Union(bounds)
		if partConf < conf {
			conf = partConf
		}
		parts++
	}
	if parts == 0 {
		return nil
	}
	return &Result{
		Bounds:     textgeom.ScreenRect{Rect: union, System: textgeom.TopDown},
		Confidence: conf,
		Strategy:   treeStrategyName,
		Metadata: map[string]string{
			"unionParts": strconv.Itoa(parts),
		},
	}
}

// childBounds queries one child for the bounds of target (a scalar range
// over the full text that the child's range contains), converting the
// local sub-range to the child's own indexing scheme. On sub-query
// failure the child's whole frame stands in at reduced confidence.
func (s *TreeStrategy) childBounds(req *Request, sp *childSpan, target textindex.Range) (textgeom.Rect, float64, bool) {
	runes := []rune(req.Text)
	childText := string(runes[sp.rng.Location:sp.rng.End()])
	local := textindex.Range{
		Location: target.Location - sp.rng.Location,
		Length:   target.Length,
		Scheme:   textindex.Scalar,
	}
	local = textindex.Convert(local, sp.handle.IndexScheme(), childText)

	if !s.throttle.ShouldSkipCalls(req.AppID) {
		bounds, err := sp.handle.RangeBounds(local.Location, local.Length)
		if err == nil {
			if verr := s.mapper.ValidateBounds(bounds); verr == nil {
				return bounds, ConfidenceDerived, true
			}
			s.log.Debug("child bounds rejected", "child", sp.handle.Role())
		} else {
			s.log.Debug("child bounds call failed", "child", sp.handle.Role(), "err", err)
		}
	}

	// Whole-frame fallback: coarse, but anchored to the right node.
	if !sp.frame.IsFinite() || sp.frame.IsEmpty() {
		return textgeom.Rect{}, 0, false
	}
	return sp.frame, ConfidenceFrameFallback, true
}

// walk recursively maps child text runs into the full text. It is a pure
// function over the introspection snapshot: it returns the collected
// spans and the advanced match cursor rather than mutating shared state.
//
// Each child's text is located by forward substring search from the
// cursor; a miss retries from the start of the text to tolerate
// out-of-order children. Matched children are treated as leaves.
func (s *TreeStrategy) walk(h surface.Handle, runes []rune, appID string, cursor, depth int) ([]childSpan, int) {
	if depth <= 0 || s.throttle.ShouldSkipCalls(appID) {
		return nil, cursor
	}
	children, err := h.Children()
	if err != nil {
		s.log.Debug("children unavailable", "err", err)
		return nil, cursor
	}

	var spans []childSpan
	for _, c := range children {
		if sp, ok := s.matchChild(c, runes, cursor); ok {
			spans = append(spans, sp)
			if end := sp.rng.End(); end > cursor {
				cursor = end
			}
			continue
		}
		sub, next := s.walk(c, runes, appID, cursor, depth-1)
		spans = append(spans, sub...)
		cursor = next
	}
	return spans, cursor
}

// matchChild locates a child's text within the full text.
func (s *TreeStrategy) matchChild(c surface.Handle, runes []rune, cursor int) (childSpan, bool) {
	text, err := c.Text()
	if err != nil || text == "" {
		return childSpan{}, false
	}
	childRunes := []rune(text)
	idx := indexRunes(runes, childRunes, cursor)
	if idx < 0 {
		idx = indexRunes(runes, childRunes, 0)
	}
	if idx < 0 {
		return childSpan{}, false
	}
	frame, err := c.Frame()
	if err != nil {
		return childSpan{}, false
	}
	return childSpan{
		rng:    textindex.Range{Location: idx, Length: len(childRunes), Scheme: textindex.Scalar},
		frame:  frame,
		handle: c,
	}, true
}

// clampRange returns the part of target that falls within the given
// range, preserving the scheme.
func clampRange(target, within textindex.Range) textindex.Range {
	loc := max(target.Location, within.Location)
	end := min(target.End(), within.End())
	if end < loc {
		end = loc
	}
	return textindex.Range{Location: loc, Length: end - loc, Scheme: target.Scheme}
}

// indexRunes returns the rune index of the first occurrence of needle in
// haystack at or after from, or -1. Searching runes rather than bytes
// keeps the result directly usable as a scalar offset.
func indexRunes(haystack, needle []rune, from int) int {
	if from < 0 {
		from = 0
	}
	if len(needle) == 0 || len(needle) > len(haystack)-from {
		return -1
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
