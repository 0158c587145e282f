// Package viewer serves a rendered star box over HTTP until the caller's
// context is cancelled.
package viewer

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/banshee-data/starbox/internal/httputil"
	"github.com/banshee-data/starbox/internal/monitoring"
	"github.com/banshee-data/starbox/internal/starbox"
)

// shutdownTimeout bounds graceful shutdown before the server is closed.
const shutdownTimeout = time.Second

// Server exposes one star box: the rendered page at "/", the points at
// "/api/points" and the depth histogram at "/api/histogram".
type Server struct {
	box     *starbox.Box
	html    []byte
	bins    int
	mux     *http.ServeMux
	handler http.Handler
}

// New builds a viewer for box. html is the page produced by starbox.RenderHTML.
func New(box *starbox.Box, html []byte) *Server {
	s := &Server{box: box, html: html, bins: starbox.DefaultHistogramBins, mux: http.NewServeMux()}
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/api/points", s.handlePoints)
	s.mux.HandleFunc("/api/histogram", s.handleHistogram)
	s.handler = httputil.LoggingMiddleware(s.mux, nil)
	return s
}

// WithHistogramBins sets the bin count of /api/histogram.
func (s *Server) WithHistogramBins(n int) *Server {
	if n > 0 {
		s.bins = n
	}
	return s
}

// WithMetrics counts requests in m and serves m at "/metrics".
func (s *Server) WithMetrics(m *monitoring.Metrics) *Server {
	s.mux.Handle("/metrics", m.Handler())
	s.handler = httputil.LoggingMiddleware(s.mux, m)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		httputil.NotFound(w, "not found")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteHTML(w, s.html)
}

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, s.box)
}

func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, starbox.DepthHistogram(s.box, s.bins))
}

// Serve listens on addr and serves h until ctx is done. ready, if not nil,
// receives the bound address once the listener is open.
func Serve(ctx context.Context, addr string, h http.Handler, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if ready != nil {
		ready(ln.Addr())
	}

	server := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	monitoring.Logf("shutting down viewer...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("viewer shutdown error: %v", err)
		if err := server.Close(); err != nil {
			monitoring.Logf("viewer force close error: %v", err)
		}
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
