// ABOUTME: Server configuration with defaults, YAML file loading, and SKETCHPAD_* env overrides.
// ABOUTME: Resolves the base directory that the index file is looked up under.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure returned from Validate.
var ErrInvalidConfig = errors.New("invalid config")

// EnvPrefix is prepended to every environment variable name read by ApplyEnv.
const EnvPrefix = "SKETCHPAD_"

// Config holds everything needed to start the server.
type Config struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	BaseDir      string `yaml:"base_dir"`      // directory the index path is joined to; empty means the executable's directory
	StaticDir    string `yaml:"static_dir"`    // relative paths resolve against the working directory
	StaticPrefix string `yaml:"static_prefix"` // URL prefix the static directory is mounted under
	IndexPath    string `yaml:"index_path"`    // index file path relative to BaseDir
	MetricsAddr  string `yaml:"metrics_addr"`  // empty disables the metrics listener
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`

	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the configuration the server runs with when nothing is overridden:
// all interfaces on port 8000, ./static mounted at /static, templates/index.html as the index.
func Default() Config {
	return Config{
		Host:              "0.0.0.0",
		Port:              8000,
		StaticDir:         "static",
		StaticPrefix:      "/static",
		IndexPath:         filepath.Join("templates", "index.html"),
		LogLevel:          "info",
		LogFormat:         "text",
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
		ShutdownTimeout:   10 * time.Second,
	}
}

// Load builds a Config from defaults, then the YAML file at path (skipped when
// path is empty), then environment variables found through lookup.
func Load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return Config{}, err
		}
	}
	if lookup != nil {
		if err := cfg.ApplyEnv(lookup); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// LoadFile overlays the YAML document at path onto c. Keys absent from the
// file keep their current values; unknown keys are an error.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from SKETCHPAD_* variables. Empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("HOST"); ok {
		c.Host = v
	}
	if v, ok := get("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sPORT=%q is not a number", ErrInvalidConfig, EnvPrefix, v)
		}
		c.Port = port
	}
	if v, ok := get("BASE_DIR"); ok {
		c.BaseDir = v
	}
	if v, ok := get("STATIC_DIR"); ok {
		c.StaticDir = v
	}
	if v, ok := get("METRICS_ADDR"); ok {
		c.MetricsAddr = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := get("LOG_FORMAT"); ok {
		c.LogFormat = v
	}
	return nil
}

// Validate reports the first problem found in c, wrapped in ErrInvalidConfig.
// It does not touch the filesystem.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if c.StaticDir == "" {
		return fmt.Errorf("%w: static dir must not be empty", ErrInvalidConfig)
	}
	if !strings.HasPrefix(c.StaticPrefix, "/") || strings.TrimRight(c.StaticPrefix, "/") == "" {
		return fmt.Errorf("%w: static prefix %q must start with / and name a path segment", ErrInvalidConfig, c.StaticPrefix)
	}
	if c.IndexPath == "" {
		return fmt.Errorf("%w: index path must not be empty", ErrInvalidConfig)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q must be text or json", ErrInvalidConfig, c.LogFormat)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: shutdown timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// IndexFile returns the absolute-or-relative path of the index file, joined
// under BaseDir. Call ResolveBaseDir first to anchor it to the executable.
func (c Config) IndexFile() string {
	if filepath.IsAbs(c.IndexPath) {
		return c.IndexPath
	}
	return filepath.Join(c.BaseDir, c.IndexPath)
}

// NormalizedPrefix returns StaticPrefix without trailing slashes.
func (c Config) NormalizedPrefix() string {
	return strings.TrimRight(c.StaticPrefix, "/")
}

// ResolveBaseDir fills an empty BaseDir with the directory of the running executable.
func (c *Config) ResolveBaseDir() error {
	if c.BaseDir != "" {
		return nil
	}
	dir, err := ExecutableDir()
	if err != nil {
		return err
	}
	c.BaseDir = dir
	return nil
}

// ExecutableDir returns the directory containing the running program, with symlinks resolved.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
