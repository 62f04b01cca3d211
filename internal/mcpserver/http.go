package mcpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"
)

// NewHTTPHandler builds the HTTP transport's mux: a JSON-RPC route
// backed by mcp-go's streamable HTTP server, plus the /health route
// spec §6 requires (200, small JSON body). Grounded on Sergey-Bar-
// Alfred's chi router/middleware shape, adapted from HTTP-API routing to
// fronting the MCP JSON-RPC handler.
func NewHTTPHandler(s *server.MCPServer) http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)

	mux.Get("/health", healthHandler)

	streamable := server.NewStreamableHTTPServer(s)
	mux.Handle("/mcp", streamable)
	mux.Handle("/mcp/*", streamable)

	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Addr renders host:port for net/http.Server.Addr.
func Addr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
