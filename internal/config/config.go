package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the dlex server and tools.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Sites    SitesConfig    `yaml:"sites"`
	Messages Messages       `yaml:"messages"`
}

type ServerConfig struct {
	HTTPPort        string `yaml:"http_port"`
	DiagnosticsPort string `yaml:"diagnostics_port"`
	StaticDir       string `yaml:"static_dir"`
	RawDelay        string `yaml:"operation_delay"`

	OperationDelay time.Duration `yaml:"-"`
}

type DatabaseConfig struct {
	// DSN is a lib/pq connection string. Empty selects the in-memory store.
	DSN        string `yaml:"dsn"`
	RawTimeout string `yaml:"timeout"`

	Timeout time.Duration `yaml:"-"`
}

type SitesConfig struct {
	// Root is the URL prefix of the dlex site, e.g. "/dlex".
	Root string `yaml:"root_dlex"`
}

// Messages are the banner texts returned in response envelopes.
type Messages struct {
	ListOK          string `yaml:"MESSAGE_1"`
	AddOK           string `yaml:"MESSAGE_2"`
	ListEmpty       string `yaml:"MESSAGE_3"`
	OperationOK     string `yaml:"MESSAGE_4"`
	DeleteOK        string `yaml:"MESSAGE_5"`
	ListFailed      string `yaml:"ERROR_1"`
	AddFailed       string `yaml:"ERROR_2"`
	OperationFailed string `yaml:"ERROR_3"`
	DeleteFailed    string `yaml:"ERROR_4"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        "8080",
			DiagnosticsPort: "9090",
			StaticDir:       "web/dlex",
			RawDelay:        "2s",
		},
		Database: DatabaseConfig{
			RawTimeout: "5s",
		},
		Sites: SitesConfig{
			Root: "/dlex",
		},
		Messages: Messages{
			ListOK:          "Orders loaded.",
			AddOK:           "Order added.",
			ListEmpty:       "No orders found.",
			OperationOK:     "Operation completed.",
			DeleteOK:        "Orders deleted.",
			ListFailed:      "Failed to load orders.",
			AddFailed:       "Failed to add the order.",
			OperationFailed: "Operation failed.",
			DeleteFailed:    "Failed to delete orders.",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty), a .env file in the working directory if present, and
// finally the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	override := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	override(&c.Server.HTTPPort, "HTTP_PORT")
	override(&c.Server.DiagnosticsPort, "DIAGNOSTICS_PORT")
	override(&c.Server.StaticDir, "STATIC_DIR")
	override(&c.Server.RawDelay, "OPERATION_DELAY")
	override(&c.Database.DSN, "POSTGRES_DSN")
	override(&c.Database.RawTimeout, "DB_TIMEOUT")
	override(&c.Sites.Root, "SITE_ROOT")
}

func (c *Config) resolve() error {
	delay, err := time.ParseDuration(c.Server.RawDelay)
	if err != nil {
		return fmt.Errorf("invalid operation_delay %q: %w", c.Server.RawDelay, err)
	}
	if delay < 0 {
		return fmt.Errorf("invalid operation_delay %q: must not be negative", c.Server.RawDelay)
	}
	c.Server.OperationDelay = delay

	timeout, err := time.ParseDuration(c.Database.RawTimeout)
	if err != nil {
		return fmt.Errorf("invalid database timeout %q: %w", c.Database.RawTimeout, err)
	}
	if timeout <= 0 {
		return fmt.Errorf("invalid database timeout %q: must be positive", c.Database.RawTimeout)
	}
	c.Database.Timeout = timeout

	c.Sites.Root = "/" + strings.Trim(c.Sites.Root, "/")
	return nil
}

// UseMemoryStore reports whether no database is configured.
func (c *Config) UseMemoryStore() bool {
	return strings.TrimSpace(c.Database.DSN) == ""
}
