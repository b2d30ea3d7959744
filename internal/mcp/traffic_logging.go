package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// toolCallTarget is the subset of tool arguments that identifies what a call
// touches. Project tools name their project "id" or "project_id" and a room
// "room_id". Capture tools pass a kind and name the capture "id".
type toolCallTarget struct {
	Name      string `json:"name"`
	Arguments struct {
		ID        string `json:"id"`
		ProjectID string `json:"project_id"`
		RoomID    string `json:"room_id"`
		Kind      string `json:"kind"`
	} `json:"arguments"`
}

// trafficLoggingMiddleware logs every MCP exchange at debug level. Tool calls
// are tagged with the tool name and the project or capture they target so a
// project's history can be followed through the log.
func trafficLoggingMiddleware(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || !logger.Enabled(ctx, slog.LevelDebug) {
				return next(ctx, method, req)
			}

			params := safeParams(req)
			attrs := []any{"direction", direction, "method", method, "session_id", safeSessionID(req)}
			if method == "tools/call" {
				attrs = append(attrs, toolAttrs(params)...)
			}
			logger.Debug("mcp request", append(attrs, "params", formatPayload(params))...)

			result, err := next(ctx, method, req)
			if strings.HasPrefix(method, "notifications/") {
				return result, err
			}
			if res, ok := result.(*sdkmcp.CallToolResult); ok && res != nil {
				attrs = append(attrs, "tool_error", res.IsError)
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			logger.Debug("mcp response", append(attrs, "result", formatPayload(result))...)
			return result, err
		}
	}
}

// toolAttrs extracts the tool name and its target ids from tools/call params.
func toolAttrs(params any) []any {
	if params == nil {
		return nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil
	}
	var target toolCallTarget
	if err := json.Unmarshal(data, &target); err != nil {
		return nil
	}

	attrs := []any{"tool", target.Name}
	projectID := target.Arguments.ProjectID
	if projectID == "" {
		projectID = target.Arguments.ID
	}
	if target.Arguments.Kind != "" && target.Arguments.ProjectID == "" {
		projectID = ""
		if target.Arguments.ID != "" {
			attrs = append(attrs, "capture_id", target.Arguments.ID)
		}
	}
	if projectID != "" {
		attrs = append(attrs, "project_id", projectID)
	}
	if target.Arguments.RoomID != "" {
		attrs = append(attrs, "room_id", target.Arguments.RoomID)
	}
	return attrs
}

func safeSessionID(req sdkmcp.Request) (id string) {
	if req == nil {
		return ""
	}
	// In-memory and unconnected sessions may not carry a connection.
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	session := req.GetSession()
	if session == nil {
		return ""
	}
	return session.ID()
}

func safeParams(req sdkmcp.Request) (params any) {
	if req == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			params = nil
		}
	}()
	return req.GetParams()
}

func formatPayload(payload any) string {
	if payload == nil {
		return "<nil>"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%T", payload)
	}
	return string(data)
}
