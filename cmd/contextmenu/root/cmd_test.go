// These tests run the root command in-process against a temporary config
// file. Output is captured via SetOut so tests can run concurrently without
// touching os.Stdout.
package rootcmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	rootcmd "github.com/go-ports/contextmenu/cmd/contextmenu/root"
	"github.com/go-ports/contextmenu/internal/config"
)

const definition = `
menus:
  - name: Dev Tools
    type: DIRECTORY_BACKGROUND
    items:
      - name: Echo here
        template: "echo ?"
        vars: [DIR]
fast:
  - name: Hello
    type: .txt
    template: echo hello
`

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type env struct {
	dir        string
	configPath string
	defPath    string
}

// newEnv writes a config pointing the registry at a hive file and the
// plugin compiler at a temp dir, plus a definition file.
func newEnv(c *qt.C) env {
	c.Helper()
	c.Setenv(config.EnvConfig, "")
	c.Setenv(config.EnvPlatform, "")
	c.Setenv(config.EnvInterpreter, "")

	dir := c.TempDir()
	e := env{
		dir:        dir,
		configPath: filepath.Join(dir, "config.yaml"),
		defPath:    filepath.Join(dir, "menus.yaml"),
	}
	cfg := "interpreter: /usr/bin/python3\n" +
		"registry:\n  file: " + filepath.Join(dir, "hive.db") + "\n" +
		"plugin:\n  dir: " + filepath.Join(dir, "extensions") + "\n" +
		"log:\n  level: error\n"
	c.Assert(os.WriteFile(e.configPath, []byte(cfg), 0o600), qt.IsNil)
	c.Assert(os.WriteFile(e.defPath, []byte(definition), 0o600), qt.IsNil)
	return e
}

// run executes the root command with the config flag prepended and returns
// the captured stdout.
func (e env) run(c *qt.C, args ...string) (string, error) {
	c.Helper()

	var out, errOut bytes.Buffer
	root := rootcmd.New()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// ---------------------------------------------------------------------------
// Help and version
// ---------------------------------------------------------------------------

func TestHelp_HappyPath(t *testing.T) {
	c := qt.New(t)
	e := newEnv(c)

	out, err := e.run(c, "--help")
	c.Assert(err, qt.IsNil)
	for _, verb := range []string{"compile", "show", "remove", "list", "config", "mcp", "version"} {
		c.Assert(out, qt.Contains, verb)
	}
}

func TestVersion_HappyPath(t *testing.T) {
	c := qt.New(t)
	e := newEnv(c)

	out, err := e.run(c, "version")
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Matches, `contextmenu \S+ \(commit .*\)\n`)
}

// ---------------------------------------------------------------------------
// compile / list / remove
// ---------------------------------------------------------------------------

func TestCompileListRemove_Registry(t *testing.T) {
	c := qt.New(t)
	e := newEnv(c)

	out, err := e.run(c, "--platform", "windows", "compile", e.defPath)
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "Compiled: Dev Tools\nCompiled: Hello\n")

	out, err = e.run(c, "--platform", "windows", "list", "--type", "directory_background")
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "Dev Tools\n")

	out, err = e.run(c, "--platform", "windows", "list", "-t", ".TXT")
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "Hello\n")

	out, err = e.run(c, "--platform", "windows", "remove", "Dev Tools", "--type", "DIRECTORY_BACKGROUND")
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "Removed: Dev Tools\n")

	out, err = e.run(c, "--platform", "windows", "remove", "Dev Tools", "--type", "DIRECTORY_BACKGROUND")
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "No DIRECTORY_BACKGROUND entry named Dev Tools\n")

	out, err = e.run(c, "--platform", "windows", "list", "--type", "DIRECTORY_BACKGROUND")
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "No DIRECTORY_BACKGROUND entries.\n")
}

func TestCompileListRemove_Plugin(t *testing.T) {
	c := qt.New(t)
	e := newEnv(c)

	_, err := e.run(c, "--platform", "linux", "compile", e.defPath)
	c.Assert(err, qt.IsNil)

	src, err := os.ReadFile(filepath.Join(e.dir, "extensions", "DevTools.py"))
	c.Assert(err, qt.IsNil)
	c.Assert(string(src), qt.Contains, "# activation: DIRECTORY_BACKGROUND")

	out, err := e.run(c, "--platform", "linux", "list", "--type", "DIRECTORY_BACKGROUND")
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "DevTools\n")

	out, err = e.run(c, "--platform", "linux", "remove", "Dev Tools", "--type", "DIRECTORY_BACKGROUND")
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "Removed: Dev Tools\n")

	_, err = os.Stat(filepath.Join(e.dir, "extensions", "DevTools.py"))
	c.Assert(os.IsNotExist(err), qt.IsTrue)
}

func TestCompile_FailurePath(t *testing.T) {
	c := qt.New(t)
	e := newEnv(c)

	c.Run("missing argument", func(c *qt.C) {
		_, err := e.run(c, "compile")
		c.Assert(err, qt.IsNotNil)
	})

	c.Run("unsupported platform", func(c *qt.C) {
		_, err := e.run(c, "--platform", "plan9", "compile", e.defPath)
		c.Assert(err, qt.ErrorMatches, `.*unsupported platform.*`)
	})

	c.Run("bad log level", func(c *qt.C) {
		_, err := e.run(c, "--platform", "linux", "--log-level", "loud", "compile", e.defPath)
		c.Assert(err, qt.ErrorMatches, `unknown log level "loud".*`)
	})

	c.Run("list requires a type", func(c *qt.C) {
		_, err := e.run(c, "--platform", "linux", "list")
		c.Assert(err, qt.IsNotNil)
	})
}

// ---------------------------------------------------------------------------
// show
// ---------------------------------------------------------------------------

func TestShow_WritesNothing(t *testing.T) {
	c := qt.New(t)
	e := newEnv(c)

	out, err := e.run(c, "--platform", "windows", "show", e.defPath)
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Contains, "# Dev Tools\n")
	c.Assert(out, qt.Contains, `[Software\Classes\.txt\shell\Hello\command]`)
	c.Assert(out, qt.Contains, `"/usr/bin/python3" -c`)

	out, err = e.run(c, "--platform", "windows", "list", "--type", "DIRECTORY_BACKGROUND")
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "No DIRECTORY_BACKGROUND entries.\n")

	out, err = e.run(c, "--platform", "linux", "show", e.defPath)
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Contains, "class DevToolsMenuProvider_")
	_, err = os.Stat(filepath.Join(e.dir, "extensions"))
	c.Assert(os.IsNotExist(err), qt.IsTrue)
}

// ---------------------------------------------------------------------------
// config
// ---------------------------------------------------------------------------

func TestConfig_HappyPath(t *testing.T) {
	c := qt.New(t)
	e := newEnv(c)

	out, err := e.run(c, "config", "set", "platform", "linux")
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Contains, "Set platform = linux")

	out, err = e.run(c, "config")
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Contains, "platform: linux\n")
	c.Assert(out, qt.Contains, "platform_effective: linux\n")
	c.Assert(out, qt.Contains, "interpreter_source: config\n")

	out, err = e.run(c, "config", "unset", "platform")
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "Unset platform\n")

	out, err = e.run(c, "config", "unset", "platform")
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "platform was not set\n")

	out, err = e.run(c, "config", "path")
	c.Assert(err, qt.IsNil)
	c.Assert(strings.TrimSpace(out), qt.Equals, e.configPath+" (flag)")
}

func TestConfig_FailurePath(t *testing.T) {
	c := qt.New(t)
	e := newEnv(c)

	_, err := e.run(c, "config", "set", "color", "blue")
	c.Assert(err, qt.ErrorMatches, `config.Set: unknown key "color"`)
}

// ---------------------------------------------------------------------------
// setup / uninstall
// ---------------------------------------------------------------------------

func TestSetupUninstall_HappyPath(t *testing.T) {
	c := qt.New(t)
	e := newEnv(c)
	home := filepath.Join(e.dir, ".cursor")

	out, err := e.run(c, "setup", "cursor", "--config-dir", home)
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Contains, "Installed contextmenu MCP server in "+filepath.Join(home, "mcp.json"))

	out, err = e.run(c, "setup", "cursor", "--config-dir", home)
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "Already installed\n")

	out, err = e.run(c, "uninstall", "cursor", "--config-dir", home)
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Contains, "Removed contextmenu MCP server")

	_, err = e.run(c, "setup", "notepad")
	c.Assert(err, qt.ErrorMatches, `unknown agent "notepad".*`)
}
