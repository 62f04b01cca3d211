// Command server is the process entry point: it loads configuration,
// wires the pool/router/middleware/dispatcher, and serves either the
// STDIO or HTTP transport per SCOUT_TRANSPORT (spec §6).
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"scout-gateway/internal/config"
	"scout-gateway/internal/dispatch"
	"scout-gateway/internal/hostinfo"
	"scout-gateway/internal/logging"
	"scout-gateway/internal/mcpserver"
	"scout-gateway/internal/middleware"
	"scout-gateway/internal/probe"
	"scout-gateway/internal/sshpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logging isn't up yet; a startup config error goes straight to
		// stderr and a nonzero exit, per spec §6.
		os.Stderr.WriteString("scout-gateway: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.New(cfg)
	logger.Info().
		Str("transport", cfg.Transport).
		Int("hosts", len(cfg.Hosts)).
		Msg("starting scout-gateway")

	table, err := hostinfo.NewTable(cfg.Hosts)
	if err != nil {
		logger.Fatal().Err(err).Msg("building host table")
	}

	pool := sshpool.New(sshpool.WithIdleTimeout(cfg.IdleTimeout))
	defer pool.CloseAll()

	rt := mcpserver.BuildRouter(table.Names())

	chain := middleware.New(logger, middleware.NewStats(),
		middleware.WithSlowThresholdMs(cfg.SlowThresholdMs),
		middleware.WithIncludeTraceback(cfg.IncludeTraceback),
		middleware.WithLogPayloads(cfg.LogPayloads),
	)

	d := dispatch.New(table, pool, rt, chain, dispatch.Config{
		MaxFileSize:    cfg.MaxFileSize,
		CommandTimeout: cfg.CommandTimeout,
		ProbeTimeout:   probe.DefaultTimeout,
	})

	mcpSrv := mcpserver.New(cfg, d)

	switch cfg.Transport {
	case "stdio":
		runStdio(logger, mcpSrv)
	default:
		runHTTP(logger, cfg, mcpSrv, pool)
	}
}

func runStdio(logger zerolog.Logger, mcpSrv *server.MCPServer) {
	if err := server.ServeStdio(mcpSrv); err != nil {
		logger.Fatal().Err(err).Msg("stdio transport exited")
	}
}

func runHTTP(logger zerolog.Logger, cfg *config.Config, mcpSrv *server.MCPServer, pool *sshpool.Pool) {
	httpSrv := &http.Server{
		Addr:    mcpserver.Addr(cfg.HTTPHost, cfg.HTTPPort),
		Handler: mcpserver.NewHTTPHandler(mcpSrv),
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info().Str("addr", httpSrv.Addr).Msg("HTTP transport listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP transport exited")
		}
	}()

	<-sigCh
	logger.Info().Msg("shutting down")

	// Close the SSH pool first so in-flight reaper/dial activity stops
	// before the HTTP server drains its remaining requests.
	pool.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown error")
	}
}
