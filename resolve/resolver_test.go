package resolve_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/overlaykit/textgeom"
	"github.com/overlaykit/textgeom/resolve"
	"github.com/overlaykit/textgeom/surface"
	"github.com/overlaykit/textgeom/surface/surfacetest"
)

// stubStrategy returns a canned result and counts invocations. The
// counter is atomic because closed-resolver requests run inline on the
// caller's goroutine.
type stubStrategy struct {
	name  string
	can   bool
	res   *resolve.Result
	calls atomic.Int32
}

func (s *stubStrategy) Name() string                    { return s.name }
func (s *stubStrategy) CanHandle(*resolve.Request) bool { return s.can }

func (s *stubStrategy) Calculate(*resolve.Request) *resolve.Result {
	s.calls.Add(1)
	return s.res
}

func stubResult(confidence float64) *resolve.Result {
	return &resolve.Result{
		Bounds:     textgeom.NewScreenRect(50, 100, 30, 18, textgeom.TopDown),
		Confidence: confidence,
		Strategy:   "stub",
	}
}

func TestResolverStopsAtFirstUsableResult(t *testing.T) {
	high := &stubStrategy{name: "high", can: true, res: stubResult(0.95)}
	low := &stubStrategy{name: "low", can: true, res: stubResult(0.85)}
	r := resolve.New(testMapper(), resolve.WithStrategies(high, low))
	defer r.Close()

	fake := &surfacetest.Fake{NodeRole: "TextArea"}
	res, ok := r.Resolve(resolve.NewRequest(fake, scalarRange(0, 3), "Teh quick fox", "app"))
	if !ok {
		t.Fatal("Resolve = not ok")
	}
	if high.calls.Load() != 1 || low.calls.Load() != 0 {
		t.Errorf("calls = high %d, low %d; want 1, 0", high.calls.Load(), low.calls.Load())
	}
	if res.Bounds.System != textgeom.BottomUp {
		t.Errorf("system = %v, want bottom-up", res.Bounds.System)
	}

	stats := r.StrategyStats()
	if s := stats["high"]; s.Attempts != 1 || s.Successes != 1 {
		t.Errorf("high stats = %+v", s)
	}
	if s := stats["low"]; s.Attempts != 0 {
		t.Errorf("low stats = %+v", s)
	}
}

func TestResolverSkipsLowConfidenceResults(t *testing.T) {
	weak := &stubStrategy{name: "weak", can: true, res: stubResult(0.3)}
	strong := &stubStrategy{name: "strong", can: true, res: stubResult(0.95)}
	r := resolve.New(testMapper(), resolve.WithStrategies(weak, strong))
	defer r.Close()

	fake := &surfacetest.Fake{NodeRole: "TextArea"}
	res, ok := r.Resolve(resolve.NewRequest(fake, scalarRange(0, 3), "Teh quick fox", "app"))
	if !ok || strong.calls.Load() != 1 {
		t.Fatalf("strong not consulted after weak result (ok=%v, calls=%d)", ok, strong.calls.Load())
	}
	if res.Confidence != 0.95 {
		t.Errorf("confidence = %v", res.Confidence)
	}

	stats := r.StrategyStats()
	if s := stats["weak"]; s.Attempts != 1 || s.Successes != 0 {
		t.Errorf("weak stats = %+v", s)
	}
}

func TestResolverSkipsNonApplicableStrategies(t *testing.T) {
	inapplicable := &stubStrategy{name: "inapplicable", can: false, res: stubResult(0.95)}
	applicable := &stubStrategy{name: "applicable", can: true, res: stubResult(0.95)}
	r := resolve.New(testMapper(), resolve.WithStrategies(inapplicable, applicable))
	defer r.Close()

	fake := &surfacetest.Fake{NodeRole: "TextArea"}
	if _, ok := r.Resolve(resolve.NewRequest(fake, scalarRange(0, 3), "text", "app")); !ok {
		t.Fatal("Resolve = not ok")
	}
	if inapplicable.calls.Load() != 0 {
		t.Errorf("inapplicable strategy was invoked %d times", inapplicable.calls.Load())
	}
	if s := r.StrategyStats()["inapplicable"]; s.Attempts != 0 {
		t.Errorf("inapplicable stats = %+v", s)
	}
}

func TestResolverEndToEnd(t *testing.T) {
	fake := &surfacetest.Fake{
		ProcessID:    42,
		NodeRole:     "TextArea",
		ID:           "compose",
		Capabilities: []surface.Capability{surface.CapClassicRange},
		RangeBoundsFunc: func(location, length int) (textgeom.Rect, error) {
			return textgeom.XYWH(50, 100, 30, 18), nil
		},
	}
	r := resolve.New(testMapper())
	defer r.Close()

	req := resolve.NewRequest(fake, scalarRange(0, 3), "Teh quick fox", "com.example.app")
	res, ok := r.Resolve(req)
	if !ok {
		t.Fatal("Resolve = not ok")
	}
	// The 1000px-tall primary display flips y: 1000 - 100 - 18 = 882.
	want := textgeom.NewScreenRect(50, 882, 30, 18, textgeom.BottomUp)
	if res.Bounds != want {
		t.Errorf("bounds = %v, want %v", res.Bounds, want)
	}
	if res.Strategy != "classic-range" || res.Confidence != resolve.ConfidenceDirect {
		t.Errorf("result = %+v", res)
	}

	// A second identical request is served from the position cache
	// without touching the surface again.
	res2, ok := r.Resolve(req)
	if !ok || res2.Bounds != res.Bounds || res2.Strategy != res.Strategy {
		t.Fatalf("cached Resolve = (%+v, %v)", res2, ok)
	}
	if fake.Calls.RangeBounds != 1 {
		t.Errorf("RangeBounds calls = %d, want 1", fake.Calls.RangeBounds)
	}
	if stats := r.CacheStats(); stats.Hits != 1 || stats.Len != 1 {
		t.Errorf("cache stats = %+v", stats)
	}
}

func TestResolverRoughEstimateFallback(t *testing.T) {
	// No capability at all: the resolver still answers with frame
	// arithmetic, below every usable threshold, and caches nothing.
	fake := &surfacetest.Fake{
		NodeRole:  "TextArea",
		NodeFrame: textgeom.XYWH(0, 0, 300, 90),
	}
	r := resolve.New(testMapper())
	defer r.Close()

	res, ok := r.Resolve(resolve.NewRequest(fake, scalarRange(0, 3), "Teh quick fox", "app"))
	if !ok {
		t.Fatal("Resolve = not ok")
	}
	if res.Strategy != "rough-estimate" || res.Confidence != resolve.ConfidenceRough {
		t.Errorf("result = %+v", res)
	}
	if res.Usable(resolve.DefaultMinConfidence) {
		t.Error("rough estimate reported as usable")
	}
	want := textgeom.NewScreenRect(0, 982, 22.5, 18, textgeom.BottomUp)
	if res.Bounds != want {
		t.Errorf("bounds = %v, want %v", res.Bounds, want)
	}
	if stats := r.CacheStats(); stats.Len != 0 {
		t.Errorf("rough estimate was cached: %+v", stats)
	}
}

func TestResolverNoAnswer(t *testing.T) {
	fake := &surfacetest.Fake{
		NodeRole: "TextArea",
		FrameErr: errors.New("element gone"),
	}
	r := resolve.New(testMapper())
	defer r.Close()

	if _, ok := r.Resolve(resolve.NewRequest(fake, scalarRange(0, 3), "text", "app")); ok {
		t.Error("Resolve = ok with no capabilities and no frame")
	}
}

func TestResolverCustomThreshold(t *testing.T) {
	// At a 0.9 threshold a derived-band result no longer clears the bar.
	derived := &stubStrategy{name: "derived", can: true, res: stubResult(0.85)}
	r := resolve.New(testMapper(),
		resolve.WithStrategies(derived),
		resolve.WithMinConfidence(0.9))
	defer r.Close()

	fake := &surfacetest.Fake{
		NodeRole:  "TextArea",
		NodeFrame: textgeom.XYWH(0, 0, 300, 90),
	}
	res, ok := r.Resolve(resolve.NewRequest(fake, scalarRange(0, 3), "text", "app"))
	if !ok {
		t.Fatal("Resolve = not ok")
	}
	if res.Strategy != "rough-estimate" {
		t.Errorf("strategy = %q, want the fallback estimate", res.Strategy)
	}
}

func TestResolverCloseStrandsNoRequest(t *testing.T) {
	// Requests racing Close must all receive an outcome, whether they won
	// the queue or fell back to answering inline.
	for iter := 0; iter < 25; iter++ {
		high := &stubStrategy{name: "high", can: true, res: stubResult(0.95)}
		r := resolve.New(testMapper(), resolve.WithStrategies(high))
		fake := &surfacetest.Fake{NodeRole: "TextArea", ID: "stable"}

		const callers = 8
		outs := make(chan (<-chan resolve.Outcome), callers)
		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				outs <- r.ResolveAsync(resolve.NewRequest(fake, scalarRange(0, 3), "text", "app"))
			}()
		}
		close(start)
		r.Close()
		wg.Wait()
		close(outs)

		for ch := range outs {
			select {
			case out := <-ch:
				if !out.OK {
					t.Error("request answered not ok")
				}
			case <-time.After(5 * time.Second):
				t.Fatal("request stranded across Close")
			}
		}
	}
}

func TestResolverAnswersAfterClose(t *testing.T) {
	high := &stubStrategy{name: "high", can: true, res: stubResult(0.95)}
	r := resolve.New(testMapper(), resolve.WithStrategies(high))
	r.Close()

	fake := &surfacetest.Fake{NodeRole: "TextArea"}
	if _, ok := r.Resolve(resolve.NewRequest(fake, scalarRange(0, 3), "text", "app")); !ok {
		t.Error("Resolve = not ok after Close")
	}
}
