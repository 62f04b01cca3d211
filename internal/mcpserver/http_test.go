package mcpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/server"
)

func TestHealthEndpointReturnsOK(t *testing.T) {
	s := server.NewMCPServer("test", "0.0.0")
	mux := NewHTTPHandler(s)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rw := httptest.NewRecorder()
	mux.ServeHTTP(rw, req)

	if rw.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", rw.Result().StatusCode)
	}
	if ct := rw.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", ct)
	}
}

func TestMCPRouteIsMounted(t *testing.T) {
	s := server.NewMCPServer("test", "0.0.0")
	mux := NewHTTPHandler(s)

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	rw := httptest.NewRecorder()
	mux.ServeHTTP(rw, req)

	// The streamable handler rejects a bodyless POST, but it must be the
	// one answering — a 404 here would mean the route isn't mounted.
	if rw.Result().StatusCode == http.StatusNotFound {
		t.Fatal("expected /mcp to be routed to the streamable handler, got 404")
	}
}

func TestAddrFormatsHostPort(t *testing.T) {
	if got := Addr("0.0.0.0", 8000); got != "0.0.0.0:8000" {
		t.Fatalf("Addr = %q, want 0.0.0.0:8000", got)
	}
}
