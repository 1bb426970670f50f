// Package config loads the tracker configuration from an HCL file.
// A missing file yields the defaults, so the CLI works with no setup.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete tracker configuration.
type Config struct {
	User     string            `hcl:"user,optional"`
	Server   *ServerSettings   `hcl:"server,block"`
	Redis    *RedisSettings    `hcl:"redis,block"`
	Analysis *AnalysisSettings `hcl:"analysis,block"`
	Import   *ImportSettings   `hcl:"import,block"`
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// RedisSettings configures the snapshot cache. An empty address disables
// Redis and snapshots stay in process memory.
type RedisSettings struct {
	Addr     string `hcl:"addr,optional"`
	Password string `hcl:"password,optional"`
	DB       int    `hcl:"db,optional"`
}

// AnalysisSettings configures the AI commentary backend. An empty URL
// disables analysis.
type AnalysisSettings struct {
	URL string `hcl:"url,optional"`
}

// ImportSettings configures batch processing.
type ImportSettings struct {
	Workers int `hcl:"workers,optional"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: &ServerSettings{
			Address:  "localhost",
			Port:     8090,
			LogLevel: "info",
		},
		Redis:    &RedisSettings{},
		Analysis: &AnalysisSettings{},
		Import:   &ImportSettings{Workers: 4},
	}
}

// Load reads the configuration from an HCL file, falling back to the
// defaults when the file does not exist.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing blocks and values
	def := Default()
	if cfg.Server == nil {
		cfg.Server = def.Server
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = def.Server.Address
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = def.Server.LogLevel
	}
	if cfg.Redis == nil {
		cfg.Redis = def.Redis
	}
	if cfg.Analysis == nil {
		cfg.Analysis = def.Analysis
	}
	if cfg.Import == nil {
		cfg.Import = def.Import
	}
	if cfg.Import.Workers == 0 {
		cfg.Import.Workers = def.Import.Workers
	}

	return &cfg, nil
}

// Validate checks the configuration for values no component can accept.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Import.Workers < 1 {
		return fmt.Errorf("import workers must be positive, got %d", c.Import.Workers)
	}
	switch c.Server.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}
	return nil
}

// ListenAddress returns the full HTTP listen address.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
