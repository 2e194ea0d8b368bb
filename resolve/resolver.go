package resolve

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/overlaykit/textgeom"
	"github.com/overlaykit/textgeom/cache"
	"github.com/overlaykit/textgeom/surface"
)

// Default resolver configuration.
const (
	// DefaultCacheCapacity is the default position-cache size.
	DefaultCacheCapacity = 128

	// DefaultCacheTTL is the default position-cache entry lifetime.
	DefaultCacheTTL = 30 * time.Second

	// defaultQueueDepth is the buffer of the serial worker queue.
	defaultQueueDepth = 16
)

// Outcome is the answer to an asynchronous resolution.
type Outcome struct {
	Result Result
	OK     bool
}

// StrategyStats counts one strategy's attempts and wins.
type StrategyStats struct {
	Attempts  uint64
	Successes uint64
}

// Resolver orchestrates the strategy chain: cache check, ordered
// strategy attempts, cache store. Each resolution runs on the resolver's
// serial worker queue so introspection latency never blocks the caller's
// thread, and strategies within one request always run sequentially.
//
// The only state shared between requests is the position cache (its own
// single lock) and the diagnostics counters; no lock is ever held across
// an introspection call.
type Resolver struct {
	strategies    []Strategy
	mapper        *textgeom.Mapper
	positions     *cache.Cache[Result]
	log           *slog.Logger
	minConfidence float64

	queue  chan func()
	done   chan struct{}
	wg     sync.WaitGroup
	sendMu sync.Mutex
	closed bool

	mu    sync.Mutex
	stats map[string]*StrategyStats
}

// Option configures a Resolver.
type Option func(*resolverOptions)

type resolverOptions struct {
	strategies    []Strategy
	throttle      Throttle
	log           *slog.Logger
	minConfidence float64
	cacheCapacity int
	cacheTTL      time.Duration
	cacheClock    func() time.Time
	styles        StyleProvider
	measurer      TextMeasurer
}

// WithStrategies replaces the default strategy chain. Order is priority:
// strategies are attempted first to last.
func WithStrategies(s ...Strategy) Option {
	return func(o *resolverOptions) { o.strategies = s }
}

// WithThrottle installs the external throttling collaborator consulted
// before introspection calls.
func WithThrottle(t Throttle) Option {
	return func(o *resolverOptions) { o.throttle = t }
}

// WithLogger scopes diagnostics to this resolver instance. Defaults to
// the package-level textgeom logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *resolverOptions) { o.log = l }
}

// WithMinConfidence sets the usable threshold. Results below it are
// treated as unavailable and never cached. The threshold is policy, not
// algorithm; embedders own the value.
func WithMinConfidence(threshold float64) Option {
	return func(o *resolverOptions) { o.minConfidence = threshold }
}

// WithCache sizes the position cache.
func WithCache(capacity int, ttl time.Duration) Option {
	return func(o *resolverOptions) {
		o.cacheCapacity = capacity
		o.cacheTTL = ttl
	}
}

// WithCacheClock replaces the position cache's time source (tests).
func WithCacheClock(now func() time.Time) Option {
	return func(o *resolverOptions) { o.cacheClock = now }
}

// WithFontMetrics enables the font-metric estimation strategy by
// providing its two collaborators: per-app style calibration and a text
// measurer.
func WithFontMetrics(styles StyleProvider, measurer TextMeasurer) Option {
	return func(o *resolverOptions) {
		o.styles = styles
		o.measurer = measurer
	}
}

// New creates a Resolver and starts its worker. Without WithStrategies
// the default chain is: opaque markers, classic range, tree traversal,
// and, when WithFontMetrics was given, font-metric estimation.
func New(mapper *textgeom.Mapper, opts ...Option) *Resolver {
	o := resolverOptions{
		throttle:      nopThrottle{},
		log:           textgeom.Logger(),
		minConfidence: DefaultMinConfidence,
		cacheCapacity: DefaultCacheCapacity,
		cacheTTL:      DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.strategies == nil {
		o.strategies = []Strategy{
			NewMarkerStrategy(mapper, o.throttle, o.log),
			NewClassicRangeStrategy(mapper, o.throttle, o.log),
			NewTreeStrategy(mapper, o.throttle, o.log),
		}
		if o.styles != nil && o.measurer != nil {
			o.strategies = append(o.strategies,
				NewFontMetricStrategy(mapper, o.throttle, o.styles, o.measurer, o.log))
		}
	}

	var cacheOpts []cache.Option
	if o.cacheClock != nil {
		cacheOpts = append(cacheOpts, cache.WithClock(o.cacheClock))
	}

	r := &Resolver{
		strategies:    o.strategies,
		mapper:        mapper,
		positions:     cache.New[Result](o.cacheCapacity, o.cacheTTL, cacheOpts...),
		log:           o.log,
		minConfidence: o.minConfidence,
		queue:         make(chan func(), defaultQueueDepth),
		done:          make(chan struct{}),
		stats:         make(map[string]*StrategyStats),
	}

	r.wg.Add(1)
	go r.worker()
	return r
}

// worker is the serial resolution queue.
func (r *Resolver) worker() {
	defer r.wg.Done()
	for {
		select {
		case <-r.done:
			// Drain so queued callers still get their answers.
			for {
				select {
				case task := <-r.queue:
					task()
				default:
					return
				}
			}
		case task := <-r.queue:
			task()
		}
	}
}

// Close stops the worker after draining queued requests. Safe to call
// more than once.
func (r *Resolver) Close() {
	r.sendMu.Lock()
	if !r.closed {
		r.closed = true
		close(r.done)
	}
	r.sendMu.Unlock()
	r.wg.Wait()
}

// Resolve computes the bounds for a request, blocking until the
// resolver's worker has processed it. The second return is false when no
// answer at all, not even a rough estimate, could be produced.
func (r *Resolver) Resolve(req *Request) (Result, bool) {
	out := <-r.ResolveAsync(req)
	return out.Result, out.OK
}

// ResolveAsync enqueues a request on the worker queue and returns a
// channel that will receive exactly one Outcome. Callers are expected to
// discard outcomes that became stale (the text changed) rather than
// cancel in-flight work.
func (r *Resolver) ResolveAsync(req *Request) <-chan Outcome {
	out := make(chan Outcome, 1)
	task := func() {
		res, ok := r.resolve(req)
		out <- Outcome{Result: res, OK: ok}
	}
	// The closed flag and the enqueue share one lock so a task can never
	// land in the queue after the worker's final drain: any send that
	// precedes Close is in the queue before done closes, and any send
	// after it answers inline.
	r.sendMu.Lock()
	if r.closed {
		r.sendMu.Unlock()
		task()
		return out
	}
	r.queue <- task
	r.sendMu.Unlock()
	return out
}

// resolve runs on the worker. Strategies execute strictly sequentially
// in priority order; the first usable result is flipped to bottom-up,
// cached, and returned.
func (r *Resolver) resolve(req *Request) (Result, bool) {
	key := cacheKey(req)
	if res, ok := r.positions.Get(key); ok {
		r.log.Debug("position cache hit", "key", key)
		return res, true
	}

	for _, s := range r.strategies {
		if !s.CanHandle(req) {
			continue
		}
		r.countAttempt(s.Name())
		res := s.Calculate(req)
		if res == nil || res.Confidence < r.minConfidence {
			continue
		}
		r.countSuccess(s.Name())
		final := r.flip(*res)
		r.positions.Store(key, final)
		r.log.Debug("resolved", "strategy", s.Name(), "confidence", res.Confidence, "bounds", final.Bounds)
		return final, true
	}

	if est := roughEstimate(req); est != nil {
		r.log.Debug("all strategies failed; returning rough estimate")
		return r.flip(*est), true
	}
	return Result{}, false
}

// flip converts a strategy's top-down result to bottom-up.
func (r *Resolver) flip(res Result) Result {
	flipped, err := r.mapper.ToOtherSystem(res.Bounds)
	if err != nil {
		r.log.Warn("coordinate flip unavailable", "err", err)
		return res
	}
	res.Bounds = flipped
	return res
}

func (r *Resolver) countAttempt(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stats[name]
	if !ok {
		s = &StrategyStats{}
		r.stats[name] = s
	}
	s.Attempts++
}

func (r *Resolver) countSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stats[name]; ok {
		s.Successes++
	}
}

// StrategyStats returns a snapshot of per-strategy attempt counters.
func (r *Resolver) StrategyStats() map[string]StrategyStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]StrategyStats, len(r.stats))
	for name, s := range r.stats {
		out[name] = *s
	}
	return out
}

// CacheStats returns a snapshot of the position cache's counters.
func (r *Resolver) CacheStats() cache.Stats {
	return r.positions.Stats()
}

// cacheKey builds the position-cache key from derived surface identity,
// the canonical range, and a hash of the text snapshot. The raw handle
// value never participates; see surface.Identity.
func cacheKey(req *Request) string {
	return fmt.Sprintf("%s|%d+%d|%016x",
		surface.Identity(req.Surface),
		req.Range.Location, req.Range.Length,
		hashString(req.Text))
}

// hashString computes the FNV-1a hash of a string.
func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // fnv.Write never returns an error
	return h.Sum64()
}
