package testutil

import (
	"net/http"
	"strings"
	"testing"
)

func TestFixture(t *testing.T) {
	body := Fixture(t, ResolveHD984)
	if !strings.Contains(body, "::data::") {
		t.Errorf("fixture %s has no data section", ResolveHD984)
	}
}

func TestNewSimbadMock(t *testing.T) {
	mock := NewSimbadMock(t, ResolveHD984, RegionHD984)
	if len(mock.Responses) != 2 {
		t.Fatalf("got %d queued responses, want 2", len(mock.Responses))
	}
	for i, r := range mock.Responses {
		if r.StatusCode != http.StatusOK {
			t.Errorf("response %d status = %d", i, r.StatusCode)
		}
	}
}
