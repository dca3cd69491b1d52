package config_test

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/contextmenu/internal/config"
)

func writeConfig(c *qt.C, body string) string {
	c.Helper()
	path := filepath.Join(c.TempDir(), "config.yaml")
	c.Assert(os.WriteFile(path, []byte(body), 0o600), qt.IsNil)
	return path
}

func TestDefault_HappyPath(t *testing.T) {
	c := qt.New(t)
	cfg := config.Default()
	c.Assert(cfg, qt.IsNotNil)
	c.Assert(cfg.Platform, qt.Equals, "")
	c.Assert(cfg.Interpreter, qt.Equals, "")
	c.Assert(cfg.Registry.File, qt.Equals, "")
	c.Assert(cfg.Plugin.Dir, qt.Equals, "")
	c.Assert(cfg.Log.Level, qt.Equals, "info")
	c.Assert(cfg.Log.Format, qt.Equals, "text")
}

func TestLoad_HappyPath(t *testing.T) {
	c := qt.New(t)

	c.Run("non-existent file returns defaults without error", func(c *qt.C) {
		cfg, err := config.Load("/nonexistent/config.yaml")
		c.Assert(err, qt.IsNil)
		c.Assert(cfg, qt.DeepEquals, config.Default())
	})

	tests := []struct {
		name            string
		yaml            string
		wantPlatform    string
		wantInterpreter string
		wantLevel       string
		wantFormat      string
	}{
		{
			name:         "platform only",
			yaml:         "platform: linux\n",
			wantPlatform: "linux",
			wantLevel:    "info",
			wantFormat:   "text",
		},
		{
			name:            "interpreter is trimmed",
			yaml:            "interpreter: \"  /usr/bin/python3 \"\n",
			wantInterpreter: "/usr/bin/python3",
			wantLevel:       "info",
			wantFormat:      "text",
		},
		{
			name:       "log section overrides",
			yaml:       "log:\n  level: debug\n  format: json\n",
			wantLevel:  "debug",
			wantFormat: "json",
		},
		{
			name:       "empty log level retains default",
			yaml:       "log:\n  level: \"\"\n",
			wantLevel:  "info",
			wantFormat: "text",
		},
	}

	for _, tt := range tests {
		c.Run(tt.name, func(c *qt.C) {
			cfg, err := config.Load(writeConfig(c, tt.yaml))
			c.Assert(err, qt.IsNil)
			c.Assert(cfg.Platform, qt.Equals, tt.wantPlatform)
			c.Assert(cfg.Interpreter, qt.Equals, tt.wantInterpreter)
			c.Assert(cfg.Log.Level, qt.Equals, tt.wantLevel)
			c.Assert(cfg.Log.Format, qt.Equals, tt.wantFormat)
		})
	}
}

func TestLoad_PathsAreNormalized(t *testing.T) {
	c := qt.New(t)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	cfg, err := config.Load(writeConfig(c, "registry:\n  file: ~/hive.db\nplugin:\n  dir: ~/ext\n"))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Registry.File, qt.Equals, filepath.Join(home, "hive.db"))
	c.Assert(cfg.Plugin.Dir, qt.Equals, filepath.Join(home, "ext"))
}

func TestLoad_FailurePath(t *testing.T) {
	c := qt.New(t)

	_, err := config.Load(writeConfig(c, "platform: [unclosed\n"))
	c.Assert(err, qt.IsNotNil)
}

func TestApplyEnv(t *testing.T) {
	c := qt.New(t)

	t.Setenv(config.EnvPlatform, "windows")
	t.Setenv(config.EnvInterpreter, "/opt/py/bin/python")

	cfg := config.Default()
	cfg.Platform = "linux"
	config.ApplyEnv(cfg)
	c.Assert(cfg.Platform, qt.Equals, "windows")
	c.Assert(cfg.Interpreter, qt.Equals, "/opt/py/bin/python")
}

func TestResolve(t *testing.T) {
	c := qt.New(t)

	c.Run("explicit path wins and env overlays", func(c *qt.C) {
		path := writeConfig(c, "platform: linux\ninterpreter: python3\n")
		c.Setenv(config.EnvInterpreter, "/custom/python")

		cfg, used, err := config.Resolve(path)
		c.Assert(err, qt.IsNil)
		c.Assert(used, qt.Equals, path)
		c.Assert(cfg.Platform, qt.Equals, "linux")
		c.Assert(cfg.Interpreter, qt.Equals, "/custom/python")
	})

	c.Run("config env variable", func(c *qt.C) {
		path := writeConfig(c, "platform: windows\n")
		c.Setenv(config.EnvConfig, path)

		cfg, used, err := config.Resolve("")
		c.Assert(err, qt.IsNil)
		c.Assert(used, qt.Equals, path)
		c.Assert(cfg.Platform, qt.Equals, "windows")
	})
}

func TestPath(t *testing.T) {
	c := qt.New(t)

	c.Run("default location", func(c *qt.C) {
		home := c.TempDir()
		c.Setenv("HOME", home)
		c.Setenv("USERPROFILE", home)
		c.Setenv(config.EnvConfig, "")

		path, source, err := config.Path()
		c.Assert(err, qt.IsNil)
		c.Assert(source, qt.Equals, "default")
		c.Assert(path, qt.Equals, filepath.Join(home, ".config", "contextmenu", "config.yaml"))
	})

	c.Run("env override", func(c *qt.C) {
		tmp := c.TempDir()
		c.Setenv(config.EnvConfig, filepath.Join(tmp, "cm.yaml"))

		path, source, err := config.Path()
		c.Assert(err, qt.IsNil)
		c.Assert(source, qt.Equals, "env")
		c.Assert(path, qt.Equals, filepath.Join(tmp, "cm.yaml"))
	})
}

// ---------------------------------------------------------------------------
// Set / Unset
// ---------------------------------------------------------------------------

func TestSetAndUnset(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	_, err := config.Set(path, "platform", "linux")
	c.Assert(err, qt.IsNil)
	stored, err := config.Set(path, "plugin.dir", t.TempDir())
	c.Assert(err, qt.IsNil)
	c.Assert(filepath.IsAbs(stored), qt.IsTrue)

	cfg, err := config.Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Platform, qt.Equals, "linux")
	c.Assert(cfg.Plugin.Dir, qt.Equals, stored)

	removed, err := config.Unset(path, "plugin.dir")
	c.Assert(err, qt.IsNil)
	c.Assert(removed, qt.IsTrue)

	removed, err = config.Unset(path, "plugin.dir")
	c.Assert(err, qt.IsNil)
	c.Assert(removed, qt.IsFalse)

	removed, err = config.Unset(path, "platform")
	c.Assert(err, qt.IsNil)
	c.Assert(removed, qt.IsTrue)

	_, err = os.Stat(path)
	c.Assert(os.IsNotExist(err), qt.IsTrue, qt.Commentf("empty config file should be deleted"))
}

func TestSet_FailurePath(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := config.Set(path, "memory_home", "/x")
	c.Assert(err, qt.ErrorMatches, `config.Set: unknown key "memory_home"`)

	_, err = config.Unset(path, "nope")
	c.Assert(err, qt.IsNotNil)
}

// ---------------------------------------------------------------------------
// ResolveInterpreter
// ---------------------------------------------------------------------------

func TestResolveInterpreter(t *testing.T) {
	c := qt.New(t)

	c.Run("configured value wins", func(c *qt.C) {
		p, source := config.ResolveInterpreter("/opt/python")
		c.Assert(p, qt.Equals, "/opt/python")
		c.Assert(source, qt.Equals, "config")
	})

	c.Run("empty PATH falls back to python", func(c *qt.C) {
		c.Setenv("PATH", c.TempDir())
		p, source := config.ResolveInterpreter("")
		c.Assert(p, qt.Equals, "python")
		c.Assert(source, qt.Equals, "default")
	})
}
