package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olgasafonova/currents-mcp-server/internal/base"
	"github.com/olgasafonova/currents-mcp-server/internal/config"
	"github.com/olgasafonova/currents-mcp-server/internal/currents"
	apierrors "github.com/olgasafonova/currents-mcp-server/internal/errors"
	"github.com/olgasafonova/currents-mcp-server/metrics"
	"github.com/olgasafonova/currents-mcp-server/tools"
)

func testServer(t *testing.T) *mcp.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	requester, err := base.NewClient("test-key", base.WithLogger(logger))
	require.NoError(t, err)
	return newServer(currents.NewClient(requester), logger)
}

func TestRootCmd_Flags(t *testing.T) {
	cmd := newRootCmd()

	for _, name := range []string{"config", "transport", "host", "port", "log-level", "strict"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag --%s", name)
	}
	assert.Equal(t, ServerName, cmd.Use)
	assert.Equal(t, ServerVersion, cmd.Version)
}

func TestRootCmd_MissingAPIKeyAbortsStartup(t *testing.T) {
	t.Setenv("CURRENTS_API_KEY", "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--transport", "stdio"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, apierrors.IsConfiguration(err), "want ConfigurationError, got %T: %v", err, err)
	assert.Contains(t, err.Error(), "CURRENTS_API_KEY")
}

func TestRootCmd_InvalidTransportFlag(t *testing.T) {
	t.Setenv("CURRENTS_API_KEY", "k")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--transport", "carrier-pigeon"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, apierrors.IsConfiguration(err))
	assert.Contains(t, err.Error(), "MCP_TRANSPORT")
}

func TestNewServer_RegistersAllTools(t *testing.T) {
	ctx := context.Background()
	server := testServer(t)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer func() { _ = serverSession.Close() }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer func() { _ = session.Close() }()

	res, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	assert.Len(t, res.Tools, len(tools.AllTools))

	initResult := session.InitializeResult()
	require.NotNil(t, initResult)
	assert.Equal(t, ServerName, initResult.ServerInfo.Name)
	assert.Contains(t, initResult.Instructions, "search_news")
}

func TestHTTPHandler_HealthAndMetrics(t *testing.T) {
	for _, transport := range []string{config.TransportSSE, config.TransportHTTP} {
		t.Run(transport, func(t *testing.T) {
			srv := httptest.NewServer(newHTTPHandler(transport, testServer(t)))
			defer srv.Close()

			resp, err := http.Get(srv.URL + PathHealth)
			require.NoError(t, err)
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.JSONEq(t, `{"status":"ok","name":"currents-mcp-server","version":"`+ServerVersion+`"}`, string(body))

			resp, err = http.Get(srv.URL + PathMetrics)
			require.NoError(t, err)
			body, _ = io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, string(body), metrics.Namespace+"_http_requests_total")
		})
	}
}

func TestHTTPHandler_UnknownPath(t *testing.T) {
	srv := httptest.NewServer(newHTTPHandler(config.TransportHTTP, testServer(t)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + PathSSE)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStreamableHTTP_CallTool(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","categories":["world"],"description":"d"}`))
	}))
	defer upstream.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	requester, err := base.NewClient("k", base.WithBaseURL(upstream.URL), base.WithLogger(logger))
	require.NoError(t, err)
	server := newServer(currents.NewClient(requester, currents.WithLogger(logger)), logger)

	srv := httptest.NewServer(newHTTPHandler(config.TransportHTTP, server))
	defer srv.Close()

	ctx := context.Background()
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: srv.URL + PathStreamable}, nil)
	require.NoError(t, err)
	defer func() { _ = session.Close() }()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "get_available_categories", Arguments: map[string]any{}})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.True(t, strings.Contains(text.Text, `"success":true`), text.Text)
	assert.Contains(t, text.Text, "world")
}

func TestCountRequests(t *testing.T) {
	handler := countRequests(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "418")
	before := testutil.ToFloat64(counter)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/x", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestStatusRecorder(t *testing.T) {
	inner := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: inner, status: http.StatusOK}

	rec.WriteHeader(http.StatusAccepted)
	rec.WriteHeader(http.StatusInternalServerError)
	rec.Flush()

	assert.Equal(t, http.StatusAccepted, rec.status)
	assert.True(t, inner.Flushed)
	assert.Same(t, inner, rec.Unwrap())
}
