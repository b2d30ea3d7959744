package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func callRequest(name, args string) *sdkmcp.ServerRequest[*sdkmcp.CallToolParamsRaw] {
	return &sdkmcp.ServerRequest[*sdkmcp.CallToolParamsRaw]{
		Params: &sdkmcp.CallToolParamsRaw{Name: name, Arguments: json.RawMessage(args)},
	}
}

func runLogged(t *testing.T, req sdkmcp.Request, result sdkmcp.Result, err error) string {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	next := func(context.Context, string, sdkmcp.Request) (sdkmcp.Result, error) {
		return result, err
	}
	handler := trafficLoggingMiddleware(logger, "inbound")(next)
	got, gotErr := handler(context.Background(), "tools/call", req)
	require.Equal(t, result, got)
	require.Equal(t, err, gotErr)
	return buf.String()
}

func TestTrafficLogging_TagsProjectTools(t *testing.T) {
	out := runLogged(t,
		callRequest("update_project_room", `{"id":"p-1","room_id":"r-9"}`),
		&sdkmcp.CallToolResult{IsError: true}, nil)

	require.Contains(t, out, "msg=\"mcp request\"")
	require.Contains(t, out, "msg=\"mcp response\"")
	require.Contains(t, out, "tool=update_project_room")
	require.Contains(t, out, "project_id=p-1")
	require.Contains(t, out, "room_id=r-9")
	require.Contains(t, out, "tool_error=true")
}

func TestTrafficLogging_TagsCaptureTools(t *testing.T) {
	out := runLogged(t,
		callRequest("delete_capture", `{"kind":"room","id":"c-3"}`),
		&sdkmcp.CallToolResult{}, nil)

	require.Contains(t, out, "tool=delete_capture")
	require.Contains(t, out, "capture_id=c-3")
	require.NotContains(t, out, "project_id=")
}

func TestTrafficLogging_RecordsErrors(t *testing.T) {
	boom := errors.New("boom")
	out := runLogged(t, callRequest("list_projects", `{}`), nil, boom)
	require.Contains(t, out, "tool=list_projects")
	require.Contains(t, out, "error=boom")
}

func TestTrafficLogging_SkipsBelowDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	called := false
	next := func(context.Context, string, sdkmcp.Request) (sdkmcp.Result, error) {
		called = true
		return nil, nil
	}
	_, err := trafficLoggingMiddleware(logger, "inbound")(next)(context.Background(), "tools/call", callRequest("list_projects", `{}`))
	require.NoError(t, err)
	require.True(t, called)
	require.Empty(t, buf.String())
}
