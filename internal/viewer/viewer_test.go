package viewer

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/starbox/internal/catalog"
	"github.com/banshee-data/starbox/internal/monitoring"
	"github.com/banshee-data/starbox/internal/region"
	"github.com/banshee-data/starbox/internal/skycoord"
	"github.com/banshee-data/starbox/internal/starbox"
	"github.com/banshee-data/starbox/internal/units"
)

func testBox() *starbox.Box {
	target := starbox.Point{
		Object:     catalog.Object{ID: "HD 984", RA: "00 14 10.2521", Dec: "-07 11 56.841", Parallax: catalog.Float(21.8781)},
		Coord:      skycoord.Coord{RA: 3.5427, Dec: -7.1991},
		DistancePC: 45.7078,
	}
	return &starbox.Box{
		RunID:       "run-1",
		StarName:    "HD 984",
		Target:      target,
		Points:      []starbox.Point{target},
		Radius:      units.Deg(1),
		Window:      region.Window{Start: 0, End: 100},
		RegionCount: 6,
	}
}

func TestServer_Index(t *testing.T) {
	s := New(testBox(), []byte("<html>box</html>"))

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html>box</html>", w.Body.String())

	w = httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Points(t *testing.T) {
	s := New(testBox(), nil)

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/points", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		StarName string `json:"star_name"`
		Points   []struct {
			Object     catalog.Object `json:"object"`
			DistancePC float64        `json:"distance_pc"`
		} `json:"points"`
		Window region.Window `json:"window"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "HD 984", got.StarName)
	require.Len(t, got.Points, 1)
	assert.Equal(t, 21.8781, *got.Points[0].Object.Parallax)
	assert.Equal(t, 100.0, got.Window.End)

	w = httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/points", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServer_Histogram(t *testing.T) {
	s := New(testBox(), nil)

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/histogram", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var bins []starbox.Bin
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bins))
	require.Len(t, bins, starbox.DefaultHistogramBins)

	// the one point sits at 45.7 pc, in the 40-50 pc bin of a 0-100 pc window
	counts := make([]int, len(bins))
	for i, b := range bins {
		counts[i] = b.Count
	}
	assert.Equal(t, []int{0, 0, 0, 0, 1, 0, 0, 0, 0, 0}, counts)
	assert.Equal(t, 40.0, bins[4].From)
	assert.Equal(t, 50.0, bins[4].To)
}

func TestServer_HistogramBins(t *testing.T) {
	s := New(testBox(), nil).WithHistogramBins(4)

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/histogram", nil))
	var bins []starbox.Bin
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bins))
	require.Len(t, bins, 4)
	// 45.7 pc falls in 25-50 pc
	assert.Equal(t, 1, bins[1].Count)
	assert.Equal(t, 25.0, bins[1].From)
}

func TestServer_Metrics(t *testing.T) {
	m, err := monitoring.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	s := New(testBox(), []byte("<html/>")).WithMetrics(m)

	s.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	s.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/points", nil))

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `starbox_viewer_requests_total{code="200",path="/api/points"} 1`)
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	addrc := make(chan net.Addr, 1)
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", New(testBox(), []byte("ok")), func(a net.Addr) { addrc <- a })
	}()

	var addr net.Addr
	select {
	case addr = <-addrc:
	case <-time.After(5 * time.Second):
		t.Fatal("viewer did not start")
	}

	resp, err := http.Get("http://" + addr.String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("viewer did not stop after cancel")
	}
}

func TestServe_BadAddress(t *testing.T) {
	err := Serve(context.Background(), "256.0.0.1:bad", http.NotFoundHandler(), nil)
	assert.Error(t, err)
}
