package config

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/pagerouter/internal/errors"
	"github.com/vango-dev/pagerouter/pkg/bridge"
	"github.com/vango-dev/pagerouter/pkg/router"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "pagerouter.json"

	// DefaultAddr is the default server listen address.
	DefaultAddr = ":8080"

	// DefaultMetricsPath is the default path of the Prometheus endpoint.
	DefaultMetricsPath = "/metrics"

	// DefaultContentDir is the default directory for file: sources.
	DefaultContentDir = "content"

	// EnvMode overrides Config.Mode.
	EnvMode = "PAGEROUTER_MODE"

	// EnvAddr overrides Server.Addr.
	EnvAddr = "PAGEROUTER_ADDR"
)

// Config represents the complete pagerouter.json configuration.
type Config struct {
	// Mode is the routing mode, "history" or "hash".
	Mode string `json:"mode,omitempty"`

	// Title is the document title before any route sets one.
	Title string `json:"title,omitempty"`

	// Routes is the route table, in registration order.
	Routes []RouteConfig `json:"routes,omitempty"`

	// Content configures where route content is loaded from.
	Content ContentConfig `json:"content,omitempty"`

	// Server configures the serve command.
	Server ServerConfig `json:"server,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RouteConfig is one entry of the route table.
type RouteConfig struct {
	// Path is the route template, e.g. "/users/:id".
	Path string `json:"path"`

	// Exact defaults to true. False makes the route match nested paths.
	Exact *bool `json:"exact,omitempty"`

	// Src names the route's content.
	Src string `json:"src,omitempty"`

	// Title becomes the document title while the route is active.
	Title string `json:"title,omitempty"`

	// Meta is registered with the route.
	Meta map[string]any `json:"meta,omitempty"`
}

// IsExact reports whether the route matches only its own path.
func (r RouteConfig) IsExact() bool {
	return r.Exact == nil || *r.Exact
}

// ContentConfig configures content sources.
type ContentConfig struct {
	// BaseURL resolves relative HTTP sources.
	BaseURL string `json:"baseURL,omitempty"`

	// Dir holds file: sources and is served under /content/.
	Dir string `json:"dir,omitempty"`

	// S3 configures s3:// sources.
	S3 S3Config `json:"s3,omitempty"`
}

// S3Config configures the S3 client used for s3:// sources.
type S3Config struct {
	// Enabled turns on s3:// sources. Credentials come from the
	// default AWS chain.
	Enabled bool `json:"enabled,omitempty"`

	// Region overrides the region from the environment.
	Region string `json:"region,omitempty"`

	// Endpoint points the client at an S3-compatible service.
	Endpoint string `json:"endpoint,omitempty"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty"`

	// MetricsPath is where Prometheus metrics are served. "-" disables it.
	MetricsPath string `json:"metricsPath,omitempty"`

	// WebSocket configures the browser bridge.
	WebSocket WebSocketConfig `json:"websocket,omitempty"`
}

// WebSocketConfig configures bridge connections. Durations use
// time.ParseDuration syntax ("10s").
type WebSocketConfig struct {
	ReadBufferSize   int    `json:"readBufferSize,omitempty"`
	WriteBufferSize  int    `json:"writeBufferSize,omitempty"`
	HandshakeTimeout string `json:"handshakeTimeout,omitempty"`
	ReadTimeout      string `json:"readTimeout,omitempty"`
	WriteTimeout     string `json:"writeTimeout,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory.
// It looks for pagerouter.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path, applies
// defaults and environment overrides, and validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("R008").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or pass --config")
		}
		return nil, errors.New("R008").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("R008").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.ApplyEnv(os.LookupEnv)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("R008").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("R008").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// ApplyEnv applies PAGEROUTER_* overrides found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvMode); ok && v != "" {
		c.Mode = v
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = string(router.ModeHistory)
	}
	if c.Content.Dir == "" {
		c.Content.Dir = DefaultContentDir
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = DefaultMetricsPath
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := router.ParseMode(c.Mode); err != nil {
		return errors.New("R008").
			WithDetailf("mode %q must be %q or %q", c.Mode, router.ModeHistory, router.ModeHash)
	}

	for i, rt := range c.Routes {
		if !strings.HasPrefix(rt.Path, "/") {
			return errors.New("R008").
				WithDetailf("routes[%d]: path %q must start with /", i, rt.Path)
		}
	}

	if c.Content.BaseURL != "" {
		u, err := url.Parse(c.Content.BaseURL)
		if err != nil || !u.IsAbs() {
			return errors.New("R008").
				WithDetailf("content.baseURL %q must be an absolute URL", c.Content.BaseURL)
		}
	}

	if c.Server.MetricsPath != "-" && !strings.HasPrefix(c.Server.MetricsPath, "/") {
		return errors.New("R008").
			WithDetailf("server.metricsPath %q must start with /", c.Server.MetricsPath)
	}

	ws := c.Server.WebSocket
	if ws.ReadBufferSize < 0 || ws.WriteBufferSize < 0 {
		return errors.New("R008").WithDetail("server.websocket buffer sizes must not be negative")
	}
	for name, v := range map[string]string{
		"handshakeTimeout": ws.HandshakeTimeout,
		"readTimeout":      ws.ReadTimeout,
		"writeTimeout":     ws.WriteTimeout,
	} {
		if _, err := parseDuration(v); err != nil {
			return errors.New("R008").
				WithDetailf("server.websocket.%s %q is not a duration", name, v)
		}
	}
	return nil
}

// RoutingMode returns the configured mode.
func (c *Config) RoutingMode() router.Mode {
	m, err := router.ParseMode(c.Mode)
	if err != nil {
		return router.ModeHistory
	}
	return m
}

// BaseURL returns the parsed content base URL, or nil if unset.
func (c *Config) BaseURL() *url.URL {
	if c.Content.BaseURL == "" {
		return nil
	}
	u, err := url.Parse(c.Content.BaseURL)
	if err != nil {
		return nil
	}
	return u
}

// ContentPath returns the absolute path to the content directory.
func (c *Config) ContentPath() string {
	if filepath.IsAbs(c.Content.Dir) {
		return c.Content.Dir
	}
	return filepath.Join(c.Dir(), c.Content.Dir)
}

// MetricsEnabled reports whether the metrics endpoint is served.
func (c *Config) MetricsEnabled() bool {
	return c.Server.MetricsPath != "-"
}

// BridgeConfig converts the WebSocket settings. Zero values are left for
// bridge.NewHandler to default.
func (c *Config) BridgeConfig() *bridge.Config {
	ws := c.Server.WebSocket
	handshake, _ := parseDuration(ws.HandshakeTimeout)
	read, _ := parseDuration(ws.ReadTimeout)
	write, _ := parseDuration(ws.WriteTimeout)
	return &bridge.Config{
		ReadBufferSize:   ws.ReadBufferSize,
		WriteBufferSize:  ws.WriteBufferSize,
		HandshakeTimeout: handshake,
		ReadTimeout:      read,
		WriteTimeout:     write,
	}
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing pagerouter.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("R008").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
