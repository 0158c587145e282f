package httputil

import (
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/banshee-data/starbox/internal/monitoring"
)

// DefaultRequestsPerSecond keeps clients under SIMBAD's published query rate.
const DefaultRequestsPerSecond = 5

// RateLimitedClient paces requests through a token bucket before handing
// them to the wrapped client. Waiting honours the request context.
type RateLimitedClient struct {
	inner   HTTPClient
	limiter *rate.Limiter
}

// NewRateLimitedClient allows perSecond requests with the given burst.
// perSecond <= 0 disables pacing.
func NewRateLimitedClient(inner HTTPClient, perSecond float64, burst int) *RateLimitedClient {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedClient{inner: inner, limiter: rate.NewLimiter(limit, burst)}
}

// Do waits for a token, then sends the request.
func (c *RateLimitedClient) Do(req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return c.inner.Do(req)
}

// InstrumentedClient records the status and latency of every request.
type InstrumentedClient struct {
	inner   HTTPClient
	metrics *monitoring.Metrics
}

// NewInstrumentedClient wraps inner. A nil metrics records nothing.
func NewInstrumentedClient(inner HTTPClient, m *monitoring.Metrics) *InstrumentedClient {
	return &InstrumentedClient{inner: inner, metrics: m}
}

// Do sends the request and records its outcome.
func (c *InstrumentedClient) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.inner.Do(req)
	code := "error"
	if err == nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	c.metrics.ObserveCatalog(code, time.Since(start))
	monitoring.Debugf("%s %s -> %s in %v", req.Method, req.URL, code, time.Since(start))
	return resp, err
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs method, path, status and duration of each request
// and counts it in m (which may be nil). Not-found requests share one path
// label so stray URLs cannot grow the metric without bound.
func LoggingMiddleware(next http.Handler, m *monitoring.Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		path := r.URL.Path
		if lrw.statusCode == http.StatusNotFound {
			path = "unmatched"
		}
		m.ObserveViewer(path, lrw.statusCode)
		monitoring.Logf("[%d] %s %s %vms",
			lrw.statusCode, r.Method, r.RequestURI,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}
