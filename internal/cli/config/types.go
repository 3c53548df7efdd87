// Package config provides configuration management for the leapion CLI.
package config

// ServeConfig holds configuration for the API server.
type ServeConfig struct {
	Addr  string `koanf:"addr"`
	Watch bool   `koanf:"watch"`
}

// DefaultServeConfig returns a ServeConfig with default values.
func DefaultServeConfig() *ServeConfig {
	return &ServeConfig{
		Addr:  DefaultAddr,
		Watch: true,
	}
}

// GetServeConfig returns the serve config with defaults applied for any
// unset values.
func (c *Config) GetServeConfig() *ServeConfig {
	if c.Serve == nil {
		return DefaultServeConfig()
	}
	serve := c.Serve
	if serve.Addr == "" {
		serve.Addr = DefaultAddr
	}
	return serve
}

// Config holds all CLI configuration options.
type Config struct {
	CatalogDir   string       `koanf:"catalog_dir"`
	OutputFormat string       `koanf:"output"`
	Verbose      bool         `koanf:"verbose"`
	Serve        *ServeConfig `koanf:"serve"`

	// ProjectRoot is the directory all relative paths resolve against.
	// It is inferred at load time, never read from the config file.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultCatalogDir = "macros"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultAddr       = ":7341"
)
