// Package setup registers and unregisters the contextmenu MCP server with
// supported coding agents (Claude Code, Cursor, Codex, OpenCode).
package setup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ServerName is the key the server is registered under in agent configs.
const ServerName = "contextmenu"

// ErrUnknownAgent is returned for agent names not in Agents.
var ErrUnknownAgent = errors.New("unknown agent")

// Result reports what an install or uninstall changed.
type Result struct {
	Changed bool
	Path    string // config file that was consulted
	Message string
}

// Options locate the agent's config. Empty fields fall back to defaults
// under the user's home directory.
type Options struct {
	// Home is the agent's own directory (~/.claude, ~/.cursor, ~/.codex).
	Home string
	// ProjectDir writes a project-scoped config there instead of the
	// user-wide one, for agents that support it.
	ProjectDir string
	// Command is the executable agents launch; defaults to "contextmenu".
	Command string
}

// agent knows where one coding agent keeps its MCP servers.
type agent struct {
	home      string // directory name under $HOME
	path      func(o Options) string
	install   func(path, command string) (bool, error)
	uninstall func(path string) (bool, error)
}

var agents = map[string]agent{
	"claude": {
		home: ".claude",
		path: func(o Options) string {
			if o.ProjectDir != "" {
				return filepath.Join(o.ProjectDir, ".mcp.json")
			}
			return filepath.Join(filepath.Dir(o.Home), ".claude.json")
		},
		install:   installJSON("mcpServers", stdioEntry),
		uninstall: uninstallJSON("mcpServers"),
	},
	"cursor": {
		home: ".cursor",
		path: func(o Options) string {
			if o.ProjectDir != "" {
				return filepath.Join(o.ProjectDir, ".cursor", "mcp.json")
			}
			return filepath.Join(o.Home, "mcp.json")
		},
		install:   installJSON("mcpServers", stdioEntry),
		uninstall: uninstallJSON("mcpServers"),
	},
	"codex": {
		home:      ".codex",
		path:      func(o Options) string { return filepath.Join(o.Home, "config.toml") },
		install:   installTOML,
		uninstall: uninstallTOML,
	},
	"opencode": {
		home: filepath.Join(".config", "opencode"),
		path: func(o Options) string {
			if o.ProjectDir != "" {
				return filepath.Join(o.ProjectDir, "opencode.json")
			}
			return filepath.Join(o.Home, "opencode.json")
		},
		install:   installJSON("mcp", localEntry),
		uninstall: uninstallJSON("mcp"),
	},
}

// Agents lists the supported agent names.
func Agents() []string {
	names := make([]string, 0, len(agents))
	for name := range agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ConfigPath returns the file Install and Uninstall edit for name.
func ConfigPath(name string, o Options) (string, error) {
	a, o, err := resolve(name, o)
	if err != nil {
		return "", err
	}
	return a.path(o), nil
}

// Install registers the MCP server with the named agent. An existing
// entry is left untouched.
func Install(name string, o Options) (Result, error) {
	a, o, err := resolve(name, o)
	if err != nil {
		return Result{}, err
	}
	path := a.path(o)
	added, err := a.install(path, o.Command)
	if err != nil {
		return Result{}, fmt.Errorf("setup.Install %s: %w", name, err)
	}
	if !added {
		return Result{Path: path, Message: "Already installed"}, nil
	}
	return Result{Changed: true, Path: path, Message: "Installed " + ServerName + " MCP server in " + path}, nil
}

// Uninstall removes the MCP server entry from the named agent's config.
func Uninstall(name string, o Options) (Result, error) {
	a, o, err := resolve(name, o)
	if err != nil {
		return Result{}, err
	}
	path := a.path(o)
	removed, err := a.uninstall(path)
	if err != nil {
		return Result{}, fmt.Errorf("setup.Uninstall %s: %w", name, err)
	}
	if !removed {
		return Result{Path: path, Message: "Nothing to remove"}, nil
	}
	return Result{Changed: true, Path: path, Message: "Removed " + ServerName + " MCP server from " + path}, nil
}

func resolve(name string, o Options) (agent, Options, error) {
	a, ok := agents[strings.ToLower(name)]
	if !ok {
		return agent{}, o, fmt.Errorf("%w %q (want one of %s)", ErrUnknownAgent, name, strings.Join(Agents(), ", "))
	}
	if o.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return agent{}, o, err
		}
		o.Home = filepath.Join(home, a.home)
	}
	if o.Command == "" {
		o.Command = ServerName
	}
	return a, o, nil
}

// ---------------------------------------------------------------------------
// Server entries
// ---------------------------------------------------------------------------

func stdioEntry(command string) map[string]any {
	return map[string]any{
		"command": command,
		"args":    []any{"mcp"},
		"type":    "stdio",
	}
}

func localEntry(command string) map[string]any {
	return map[string]any{
		"type":    "local",
		"command": []any{command, "mcp"},
	}
}

// ---------------------------------------------------------------------------
// JSON configs
// ---------------------------------------------------------------------------

// readJSON returns an empty map for missing files. Malformed files are an
// error so they are never overwritten.
func readJSON(path string) (map[string]any, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- agent config file under the user's home
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

func writeJSON(path string, data map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644) // #nosec G306 -- agent config files (MCP server entries) do not contain secrets
}

func installJSON(section string, entry func(string) map[string]any) func(path, command string) (bool, error) {
	return func(path, command string) (bool, error) {
		data, err := readJSON(path)
		if err != nil {
			return false, err
		}
		servers, _ := data[section].(map[string]any)
		if servers == nil {
			servers = make(map[string]any)
			data[section] = servers
		}
		if _, exists := servers[ServerName]; exists {
			return false, nil
		}
		servers[ServerName] = entry(command)
		return true, writeJSON(path, data)
	}
}

func uninstallJSON(section string) func(path string) (bool, error) {
	return func(path string) (bool, error) {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return false, nil
		}
		data, err := readJSON(path)
		if err != nil {
			return false, err
		}
		servers, _ := data[section].(map[string]any)
		if _, exists := servers[ServerName]; !exists {
			return false, nil
		}
		delete(servers, ServerName)
		if len(servers) == 0 {
			delete(data, section)
		}
		if len(data) == 0 {
			return true, os.Remove(path)
		}
		return true, writeJSON(path, data)
	}
}

// ---------------------------------------------------------------------------
// TOML config (text-based; only handles the [mcp_servers.contextmenu] table)
// ---------------------------------------------------------------------------

const tomlHeader = "[mcp_servers." + ServerName + "]"

func installTOML(path, command string) (bool, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- agent config file under the user's home
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}
	if strings.Contains(string(data), tomlHeader) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) // #nosec G302 G304 -- agent TOML config is not a sensitive credential file
	if err != nil {
		return false, err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "\n%s\ncommand = %q\nargs = [\"mcp\"]\n", tomlHeader, command)
	return err == nil, err
}

func uninstallTOML(path string) (bool, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- agent config file under the user's home
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	content := string(data)
	if !strings.Contains(content, tomlHeader) {
		return false, nil
	}
	// Drop the table header and its key-value pairs up to the next table
	// header or EOF.
	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	inSection := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == tomlHeader {
			inSection = true
			continue
		}
		if inSection && strings.HasPrefix(trimmed, "[") {
			inSection = false
		}
		if !inSection {
			kept = append(kept, line)
		}
	}
	cleaned := strings.TrimRight(strings.Join(kept, "\n"), "\n") + "\n"
	return true, os.WriteFile(path, []byte(cleaned), 0o644) // #nosec G306 -- agent TOML config is not a sensitive credential file
}
