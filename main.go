// Currents MCP Server - A Model Context Protocol server for the Currents news API
// Provides tools for searching news and listing the provider's languages, regions and categories
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/olgasafonova/currents-mcp-server/internal/base"
	"github.com/olgasafonova/currents-mcp-server/internal/config"
	"github.com/olgasafonova/currents-mcp-server/internal/currents"
	"github.com/olgasafonova/currents-mcp-server/metrics"
	"github.com/olgasafonova/currents-mcp-server/tools"
	"github.com/olgasafonova/currents-mcp-server/tracing"
)

const (
	ServerName    = "currents-mcp-server"
	ServerVersion = "1.0.0"
)

// HTTP paths served in sse and http transport modes
const (
	PathSSE        = "/sse"
	PathStreamable = "/mcp"
	PathMetrics    = "/metrics"
	PathHealth     = "/health"
)

const serverInstructions = `Currents MCP Server provides tools for the Currents news API.

Available tools:
- search_news: Search news by keywords, language, country and category (defaults to the last hour)
- get_latest_news: Get the latest headlines, optionally in one language
- get_available_languages: List supported language codes
- get_available_regions: List supported region codes
- get_available_categories: List supported news categories

Configure via environment variables:
- CURRENTS_API_KEY: Currents API key (required)
- MCP_TRANSPORT: sse (default), http or stdio
- HOST / PORT: Listen address for sse and http (default 0.0.0.0:8000)
- LOG_LEVEL: debug, info, warn or error`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the CLI. Flags override environment variables, which
// override the config file.
func newRootCmd() *cobra.Command {
	v := config.New()
	var configPath string

	cmd := &cobra.Command{
		Use:          ServerName,
		Short:        "MCP server for the Currents news API",
		Version:      ServerVersion,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, v, configPath)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "Path to a YAML config file")
	flags.String("transport", "", "MCP transport: sse, http or stdio")
	flags.String("host", "", "Listen host for sse and http transports")
	flags.Int("port", 0, "Listen port for sse and http transports")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.Bool("strict", false, "Fail tool calls whose provider response does not match its schema")

	for key, flag := range map[string]string{
		"transport":     "transport",
		"host":          "host",
		"port":          "port",
		"log_level":     "log-level",
		"strict_schema": "strict",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	return cmd
}

// run loads configuration, wires the clients and serves until ctx is done.
func run(ctx context.Context, v *viper.Viper, configPath string) error {
	cfg, err := config.Load(v, configPath)
	if err != nil {
		return err
	}

	// Configure logging to stderr (stdout is used for the stdio transport)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	shutdownTracing, err := tracing.Setup(ctx, tracing.FromEnv(ServerVersion))
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	requester, err := base.NewClient(cfg.APIKey,
		base.WithBaseURL(cfg.BaseURL),
		base.WithTimeout(cfg.Timeout),
		base.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	client := currents.NewClient(requester,
		currents.WithLogger(logger),
		currents.WithStrictSchema(cfg.StrictSchema),
	)

	server := newServer(client, logger)

	logger.Info("Starting Currents MCP Server",
		"name", ServerName,
		"version", ServerVersion,
		"transport", cfg.Transport,
		"base_url", cfg.BaseURL,
		"strict_schema", cfg.StrictSchema,
	)

	if cfg.Transport == config.TransportStdio {
		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	return serveHTTP(ctx, cfg, newHTTPHandler(cfg.Transport, server), logger)
}

// newServer creates the MCP server with every tool registered
func newServer(client *currents.Client, logger *slog.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: serverInstructions,
	})

	tools.NewHandlerRegistry(client, logger).RegisterAll(server)
	return server
}

// newHTTPHandler mounts the MCP endpoint for transport next to /metrics and /health.
func newHTTPHandler(transport string, server *mcp.Server) http.Handler {
	getServer := func(*http.Request) *mcp.Server { return server }

	mux := http.NewServeMux()
	switch transport {
	case config.TransportHTTP:
		mux.Handle(PathStreamable, mcp.NewStreamableHTTPHandler(getServer, nil))
	default:
		mux.Handle(PathSSE, mcp.NewSSEHandler(getServer, nil))
	}
	mux.Handle(PathMetrics, promhttp.Handler())
	mux.HandleFunc(PathHealth, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"status":"ok","name":%q,"version":%q}`, ServerName, ServerVersion)
	})

	return otelhttp.NewHandler(countRequests(mux), ServerName)
}

// serveHTTP runs handler on cfg.Addr() until ctx is cancelled.
func serveHTTP(ctx context.Context, cfg *config.Config, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", srv.Addr, "transport", cfg.Transport)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// countRequests records every HTTP request by method and status code
func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
	})
}

// statusRecorder captures the response status. It keeps Flush working for SSE streams.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
