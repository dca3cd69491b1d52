// Package config handles configuration loading and interpreter resolution.
package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Resolve.
const (
	EnvConfig      = "CONTEXTMENU_CONFIG"
	EnvPlatform    = "CONTEXTMENU_PLATFORM"
	EnvInterpreter = "CONTEXTMENU_INTERPRETER"
)

// ---------------------------------------------------------------------------
// Config types
// ---------------------------------------------------------------------------

// RegistryConfig controls where registry trees are written.
type RegistryConfig struct {
	// File is a SQLite hive used instead of the native registry. Empty means
	// the native registry on Windows.
	File string `yaml:"file"`
}

// PluginConfig controls where nautilus-python modules are written.
type PluginConfig struct {
	Dir string `yaml:"dir"` // empty means ~/.local/share/nautilus-python/extensions
}

// LogConfig sets the default log level and format for the CLI.
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `yaml:"format"` // "text" | "json"
}

// Config is the root configuration.
type Config struct {
	Platform    string         `yaml:"platform"` // "" (detect) | "windows" | "linux"
	Interpreter string         `yaml:"interpreter"`
	Registry    RegistryConfig `yaml:"registry"`
	Plugin      PluginConfig   `yaml:"plugin"`
	Log         LogConfig      `yaml:"log"`
}

// Keys lists the dotted keys accepted by Set and Unset.
var Keys = []string{
	"platform",
	"interpreter",
	"registry.file",
	"plugin.dir",
	"log.level",
	"log.format",
}

// Default returns a Config populated with defaults.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads config.yaml from path.
// If the file does not exist it returns Default() with no error.
// Missing keys retain their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) // #nosec G304 -- path is the user's own config file
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	// Unmarshal into a plain map so we can apply only the keys that are present.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config.Load %s: %w", path, err)
	}

	if v, ok := raw["platform"].(string); ok {
		cfg.Platform = strings.TrimSpace(v)
	}
	if v, ok := raw["interpreter"].(string); ok {
		cfg.Interpreter = strings.TrimSpace(v)
	}
	if reg, ok := raw["registry"].(map[string]any); ok {
		if v, ok := reg["file"].(string); ok && v != "" {
			p, err := normalizePath(v)
			if err != nil {
				return nil, fmt.Errorf("config.Load registry.file: %w", err)
			}
			cfg.Registry.File = p
		}
	}
	if pl, ok := raw["plugin"].(map[string]any); ok {
		if v, ok := pl["dir"].(string); ok && v != "" {
			p, err := normalizePath(v)
			if err != nil {
				return nil, fmt.Errorf("config.Load plugin.dir: %w", err)
			}
			cfg.Plugin.Dir = p
		}
	}
	if lg, ok := raw["log"].(map[string]any); ok {
		if v, ok := lg["level"].(string); ok && v != "" {
			cfg.Log.Level = v
		}
		if v, ok := lg["format"].(string); ok && v != "" {
			cfg.Log.Format = v
		}
	}

	return cfg, nil
}

// ApplyEnv overlays the CONTEXTMENU_* variables on cfg.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvPlatform)); v != "" {
		cfg.Platform = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvInterpreter)); v != "" {
		cfg.Interpreter = v
	}
}

// Resolve loads a .env file from the working directory if present, then
// the config file (explicit path, $CONTEXTMENU_CONFIG or the default
// location) and finally the environment overrides. The returned path is
// the file that was consulted.
func Resolve(explicit string) (*Config, string, error) {
	_ = godotenv.Load()

	path := explicit
	if path == "" {
		var err error
		if path, _, err = Path(); err != nil {
			return nil, "", err
		}
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	ApplyEnv(cfg)
	return cfg, path, nil
}

// ---------------------------------------------------------------------------
// Config file location
// ---------------------------------------------------------------------------

// Path returns the config file path and the source of the resolution.
// Priority: CONTEXTMENU_CONFIG env → ~/.config/contextmenu/config.yaml.
// source is one of "env" or "default".
func Path() (path, source string, err error) {
	if env := os.Getenv(EnvConfig); env != "" {
		p, err := normalizePath(env)
		if err == nil {
			return p, "env", nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", err
	}
	return filepath.Join(home, ".config", "contextmenu", "config.yaml"), "default", nil
}

// normalizePath expands ~ and environment variables and makes the path
// absolute.
func normalizePath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(os.ExpandEnv(path))
}

// ---------------------------------------------------------------------------
// Persisted keys
// ---------------------------------------------------------------------------

// Set stores key=value in the config file at path, preserving other keys.
// Path-valued keys are normalized first. Returns the stored value.
func Set(path, key, value string) (string, error) {
	if !slices.Contains(Keys, key) {
		return "", fmt.Errorf("config.Set: unknown key %q", key)
	}
	if key == "registry.file" || key == "plugin.dir" {
		p, err := normalizePath(value)
		if err != nil {
			return "", fmt.Errorf("config.Set: %w", err)
		}
		value = p
	}

	raw, err := readRaw(path)
	if err != nil {
		return "", err
	}
	section, name, nested := strings.Cut(key, ".")
	if !nested {
		raw[key] = value
	} else {
		sub, _ := raw[section].(map[string]any)
		if sub == nil {
			sub = make(map[string]any)
		}
		sub[name] = value
		raw[section] = sub
	}

	if err := writeRaw(path, raw); err != nil {
		return "", err
	}
	return value, nil
}

// Unset removes key from the config file at path.
// Returns true if the key was present and removed.
// If the file becomes empty after removal it is deleted.
func Unset(path, key string) (bool, error) {
	if !slices.Contains(Keys, key) {
		return false, fmt.Errorf("config.Unset: unknown key %q", key)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}
	raw, err := readRaw(path)
	if err != nil {
		return false, err
	}

	section, name, nested := strings.Cut(key, ".")
	switch {
	case !nested:
		if _, ok := raw[key]; !ok {
			return false, nil
		}
		delete(raw, key)
	default:
		sub, _ := raw[section].(map[string]any)
		if _, ok := sub[name]; !ok {
			return false, nil
		}
		delete(sub, name)
		if len(sub) == 0 {
			delete(raw, section)
		}
	}

	if len(raw) == 0 {
		_ = os.Remove(path)
		return true, nil
	}
	return true, writeRaw(path, raw)
}

func readRaw(path string) (map[string]any, error) {
	var raw map[string]any
	data, err := os.ReadFile(path) // #nosec G304 -- path is the user's own config file
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}
	if raw == nil {
		raw = make(map[string]any)
	}
	return raw, nil
}

func writeRaw(path string, raw map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

// ---------------------------------------------------------------------------
// Interpreter resolution
// ---------------------------------------------------------------------------

// ResolveInterpreter returns the Python interpreter embedded in generated
// commands and the source of the resolution ("config", "path" or
// "default"). A configured value wins; otherwise python3 and then python
// are looked up on PATH.
func ResolveInterpreter(configured string) (path, source string) {
	if configured != "" {
		return configured, "config"
	}
	for _, name := range []string{"python3", "python"} {
		if p, err := exec.LookPath(name); err == nil {
			return p, "path"
		}
	}
	return "python", "default"
}
