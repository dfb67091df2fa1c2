package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/vitebski/sql-er-diagram/internal/layout"
)

// Config holds the settings shared by the CLI and the HTTP server.
// Values come from an optional YAML file; SQLERD_* environment variables
// override them.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Layout   LayoutConfig   `yaml:"layout"`
	Graphviz GraphvizConfig `yaml:"graphviz"`
}

type ServerConfig struct {
	BindAddr        string        `yaml:"bind_addr" env:"SQLERD_BIND_ADDR" env-default:"127.0.0.1"`
	Port            string        `yaml:"port" env:"SQLERD_PORT" env-default:"8080"`
	Dev             bool          `yaml:"dev" env:"SQLERD_DEV" env-default:"false"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"SQLERD_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000,http://localhost:5173"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" env:"SQLERD_MAX_BODY_BYTES" env-default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SQLERD_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type LayoutConfig struct {
	TableRadius float64 `yaml:"table_radius" env:"SQLERD_TABLE_RADIUS" env-default:"6"`
	FieldRadius float64 `yaml:"field_radius" env:"SQLERD_FIELD_RADIUS" env-default:"2"`
	ShowType    bool    `yaml:"show_type" env:"SQLERD_SHOW_TYPE" env-default:"false"`
	FontName    string  `yaml:"font_name" env:"SQLERD_FONT_NAME" env-default:"Microsoft YaHei"`
}

type GraphvizConfig struct {
	Binary  string        `yaml:"binary" env:"SQLERD_GRAPHVIZ_BINARY" env-default:"neato"`
	Format  string        `yaml:"format" env:"SQLERD_GRAPHVIZ_FORMAT" env-default:"png"`
	Timeout time.Duration `yaml:"timeout" env:"SQLERD_GRAPHVIZ_TIMEOUT" env-default:"30s"`
	TempDir string        `yaml:"temp_dir" env:"SQLERD_GRAPHVIZ_TEMP_DIR" env-default:""`
}

// Load reads configuration from path with environment variable overrides.
// An empty path reads the environment only.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks values cleanenv cannot check by type alone
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port number: %s", c.Server.Port)
	}
	if c.Graphviz.Binary == "" {
		return fmt.Errorf("graphviz binary must not be empty")
	}
	if c.Graphviz.Format == "" {
		return fmt.Errorf("graphviz output format must not be empty")
	}
	return c.LayoutParams().Validate()
}

// LayoutParams returns the configured default layout parameters
func (c *Config) LayoutParams() layout.Params {
	return layout.Params{
		TableRadius: c.Layout.TableRadius,
		FieldRadius: c.Layout.FieldRadius,
		ShowType:    c.Layout.ShowType,
	}
}

// Addr is the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.Server.BindAddr + ":" + c.Server.Port
}

// Usage describes every supported environment variable
func Usage() string {
	desc, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return desc
}
