// Package mcp provides the stdio MCP server exposing the menu compiler to
// coding agents.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/go-ports/contextmenu/internal/buildinfo"
	"github.com/go-ports/contextmenu/internal/compiler"
	"github.com/go-ports/contextmenu/internal/menu"
	"github.com/go-ports/contextmenu/internal/menufile"
)

const compileDescription = `Compile a menu definition file (YAML or HCL) into the desktop's context menu. Every root menu and fast command in the file is written; an existing entry with the same name is replaced. Set dry_run to get the registry keys or plugin source that would be written without touching the system.`

const removeDescription = `Remove a top-level context menu entry by name. type is the activation type it was compiled for: FILES, DIRECTORY, DIRECTORY_BACKGROUND, DESKTOP_BACKGROUND, DRIVE or a file extension such as .txt.`

const listDescription = `List the top-level context menu entries registered for an activation type.`

// NewServer creates and registers all menu tools on a new MCP server.
// It is separate from Serve so that tests can obtain a fully configured
// server without committing to the stdio transport.
func NewServer(comp compiler.Compiler) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("contextmenu", buildinfo.Version)
	registerTools(s, comp)
	return s
}

// Serve starts the stdio MCP server, blocking until stdin closes.
func Serve(_ context.Context, comp compiler.Compiler) error {
	return mcpserver.ServeStdio(NewServer(comp))
}

// registerTools wires the three MCP tools into the server.
func registerTools(s *mcpserver.MCPServer, comp compiler.Compiler) {
	s.AddTool(mcp.NewTool("menu_compile",
		mcp.WithDescription(compileDescription),
		mcp.WithString("path",
			mcp.Description("Path to a .yaml, .yml or .hcl menu definition file."),
			mcp.Required(),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Render the output instead of writing it."),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCompile(ctx, comp, req)
	})

	s.AddTool(mcp.NewTool("menu_remove",
		mcp.WithDescription(removeDescription),
		mcp.WithString("name",
			mcp.Description("Name of the top-level menu or fast command."),
			mcp.Required(),
		),
		mcp.WithString("type",
			mcp.Description("Activation type the entry was compiled for."),
			mcp.Required(),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRemove(ctx, comp, req)
	})

	s.AddTool(mcp.NewTool("menu_list",
		mcp.WithDescription(listDescription),
		mcp.WithString("type",
			mcp.Description("Activation type to list."),
			mcp.Required(),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleList(ctx, comp, req)
	})
}

// ---------------------------------------------------------------------------
// Tool handlers
// ---------------------------------------------------------------------------

func handleCompile(_ context.Context, comp compiler.Compiler, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := strings.TrimSpace(req.GetString("path", ""))
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	doc, err := menufile.Load(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if req.GetBool("dry_run", false) {
		out, err := compiler.PreviewAll(comp, doc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]any{
			"entries": doc.Names(),
			"preview": out,
		})
	}

	done, err := compiler.CompileAll(comp, doc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%v (compiled before failure: %s)", err, strings.Join(done, ", "))), nil
	}
	return jsonResult(map[string]any{
		"compiled": done,
	})
}

func handleRemove(_ context.Context, comp compiler.Compiler, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	a, err := menu.ParseActivation(req.GetString("type", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := comp.Remove(name, a); err != nil {
		if compiler.IsNotFound(err) {
			return mcp.NewToolResultError(fmt.Sprintf("no %s entry named %q", a, name)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"removed": name,
		"type":    string(a),
	})
}

func handleList(_ context.Context, comp compiler.Compiler, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := menu.ParseActivation(req.GetString("type", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	names, err := comp.List(a)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"type":    string(a),
		"entries": names,
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
