// Package testutil provides shared test utilities and fixtures.
//
// SIMBAD replies recorded for HD 984 live in testdata/ so the catalog,
// star box and CLI tests all exercise the same rows.
package testutil

import (
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/banshee-data/starbox/internal/httputil"
)

// Fixture names under testdata/.
const (
	ResolveHD984  = "simbad_resolve_hd984.txt"
	RegionHD984   = "simbad_region_hd984.txt"
	ResolveNoPlx  = "simbad_resolve_no_parallax.txt"
	NotFound      = "simbad_not_found.txt"
	RegionEmpty   = "simbad_region_empty.txt"
	RegionBadRows = "simbad_region_bad_rows.txt"
)

// FixturePath returns the absolute path of a file in testdata/.
func FixturePath(name string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata", name)
}

// Fixture reads a file from testdata/.
func Fixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(FixturePath(name))
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return string(data)
}

// NewSimbadMock returns a mock HTTP client that answers successive requests
// with the named fixtures, in order.
func NewSimbadMock(t *testing.T, fixtures ...string) *httputil.MockHTTPClient {
	t.Helper()
	mock := httputil.NewMockHTTPClient()
	for _, name := range fixtures {
		mock.AddResponse(http.StatusOK, Fixture(t, name))
	}
	return mock
}
