// Package mcpserver exposes the week-planning tool catalog over the Model
// Context Protocol so MCP clients can call the same tools the chat graph uses.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"week-planner/internal/tool"
	"week-planner/internal/tool/registry"
	pkgerrors "week-planner/pkg/errors"
)

// Name is the MCP server name reported to clients.
const Name = "weekplan"

const instructions = `Week-planning tools for a single employee: profile, calendar summaries,
competency expectations, pull requests, goals, recent updates and the current tech spec.
Call get_calendar_summary with week "this_week" or "last_week".`

// New builds an MCP server with one MCP tool per registered tool.
func New(reg *registry.Registry, version string) (*server.MCPServer, error) {
	s := server.NewMCPServer(
		Name,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	for _, t := range reg.List() {
		def, err := Definition(t)
		if err != nil {
			return nil, err
		}
		s.AddTool(def, Handler(reg, t.Name()))
	}
	return s, nil
}

// Definition converts a tool into its MCP definition.
func Definition(t tool.Tool) (mcp.Tool, error) {
	raw, err := json.Marshal(tool.JSONSchema(t.Schema()))
	if err != nil {
		return mcp.Tool{}, fmt.Errorf("marshal schema for %s: %w", t.Name(), err)
	}
	return mcp.NewToolWithRawSchema(t.Name(), t.Description(), raw), nil
}

// Handler invokes the named tool through the registry. Recoverable tool
// errors and unknown tools become MCP error results; collaborator failures
// are returned as protocol errors.
func Handler(reg *registry.Registry, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := reg.InvokeInput(ctx, name, req.GetArguments())
		switch {
		case errors.Is(err, pkgerrors.ErrNotFound), errors.Is(err, pkgerrors.ErrInvalidArg):
			return mcp.NewToolResultError(err.Error()), nil
		case err != nil:
			return nil, err
		case res.Err != "":
			return mcp.NewToolResultError(res.Err), nil
		}
		return mcp.NewToolResultText(res.Content), nil
	}
}

// ServeStdio serves the catalog over stdin/stdout until the client disconnects.
func ServeStdio(reg *registry.Registry, version string) error {
	s, err := New(reg, version)
	if err != nil {
		return err
	}
	return server.ServeStdio(s)
}
