package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/currents-mcp-server/internal/currents"
	"github.com/olgasafonova/currents-mcp-server/metrics"
	"github.com/olgasafonova/currents-mcp-server/tracing"
)

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to their concrete handler implementations.
type HandlerRegistry struct {
	client *currents.Client
	logger *slog.Logger
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(client *currents.Client, logger *slog.Logger) *HandlerRegistry {
	return &HandlerRegistry{
		client: client,
		logger: logger,
	}
}

// RegisterAll registers all tools with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	for _, spec := range AllTools {
		h.registerByName(server, spec)
	}
	h.logger.Info("Registered all tools", "count", len(AllTools))
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) {
	tool := h.buildTool(spec)

	switch spec.Method {
	case "SearchNews":
		register(h, server, tool, spec, h.client.SearchNewsMCP)
	case "GetLatestNews":
		register(h, server, tool, spec, h.client.GetLatestNewsMCP)
	case "GetAvailableLanguages":
		register(h, server, tool, spec, h.client.GetAvailableLanguagesMCP)
	case "GetAvailableRegions":
		register(h, server, tool, spec, h.client.GetAvailableRegionsMCP)
	case "GetAvailableCategories":
		register(h, server, tool, spec, h.client.GetAvailableCategoriesMCP)
	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
	}
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:           spec.Title,
		ReadOnlyHint:    spec.ReadOnly,
		IdempotentHint:  spec.Idempotent,
		DestructiveHint: ptr(spec.Destructive),
	}
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	tool := &mcp.Tool{
		Name:        spec.Name,
		Title:       spec.Title,
		Description: spec.Description,
		Annotations: annotations,
	}
	if len(spec.Tags) > 0 {
		tool.Meta = mcp.Meta{"tags": append([]string(nil), spec.Tags...)}
	}
	return tool
}

// register is a generic helper that registers a tool with the MCP server.
// It wraps the client method with panic recovery, metrics, tracing, and logging.
// Every outcome, including a panic, reaches the caller as an envelope.
func register[Args any](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (currents.Envelope, error),
) {
	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args Args) (_ *mcp.CallToolResult, env currents.Envelope, _ error) {
		invocationID := uuid.NewString()

		ctx, span := tracing.StartToolSpan(ctx, spec.Name, spec.Category, invocationID, spec.ReadOnly)
		defer span.End()

		// Track in-flight requests
		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		start := time.Now()
		defer func() {
			if rec := recover(); rec != nil {
				env = h.recoverPanic(spec, invocationID, rec)
				span.SetStatus(codes.Error, env.Error)
				metrics.RecordRequest(spec.Name, time.Since(start).Seconds(), false)
			}
		}()

		env, err := method(ctx, args)
		if err != nil {
			env = failure(spec, err.Error())
		}
		duration := time.Since(start).Seconds()

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

		if env.Failed() {
			span.SetStatus(codes.Error, env.Error)
			metrics.RecordRequest(spec.Name, duration, false)
			h.logger.Warn("Tool failed",
				"tool", spec.Name,
				"invocation_id", invocationID,
				"error", env.Error,
			)
			return nil, env, nil
		}

		span.SetStatus(codes.Ok, "")
		metrics.RecordRequest(spec.Name, duration, true)
		h.logExecution(spec, invocationID, args, env)
		return nil, env, nil
	})
}

// failure builds the failure envelope in the shape the tool declares
func failure(spec ToolSpec, msg string) currents.Envelope {
	if spec.BareErrors {
		return currents.FailBare(msg)
	}
	return currents.Fail(msg)
}

// recoverPanic logs a recovered panic and converts it to a failure envelope.
func (h *HandlerRegistry) recoverPanic(spec ToolSpec, invocationID string, rec any) currents.Envelope {
	metrics.PanicsRecovered.WithLabelValues(spec.Name).Inc()
	h.logger.Error("Panic recovered",
		"tool", spec.Name,
		"invocation_id", invocationID,
		"panic", rec,
		"stack", string(debug.Stack()))
	return failure(spec, fmt.Sprintf("internal error: %v", rec))
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, invocationID string, args any, env currents.Envelope) {
	attrs := []any{"tool", spec.Name, "invocation_id", invocationID}

	switch a := args.(type) {
	case currents.SearchNewsArgs:
		attrs = append(attrs, "keywords", a.Keywords, "language", a.Language, "country", a.Country, "category", a.Category)
	case currents.GetLatestNewsArgs:
		attrs = append(attrs, "language", a.Language)
	}

	switch spec.Method {
	case "SearchNews", "GetLatestNews":
		if r, err := currents.Decode[currents.NewsResult](env.Result); err == nil {
			attrs = append(attrs, "articles", len(r.News))
		}
	case "GetAvailableLanguages":
		if r, err := currents.Decode[currents.LanguagesResult](env.Result); err == nil {
			attrs = append(attrs, "languages", len(r.Languages))
		}
	case "GetAvailableRegions":
		if r, err := currents.Decode[currents.RegionsResult](env.Result); err == nil {
			attrs = append(attrs, "regions", len(r.Regions))
		}
	case "GetAvailableCategories":
		if r, err := currents.Decode[currents.CategoriesResult](env.Result); err == nil {
			attrs = append(attrs, "categories", len(r.Categories))
		}
	}

	h.logger.Info("Tool executed", attrs...)
}
