package config

import (
	"fmt"
	"os"
)

// validOutputFormats are the values accepted for the output setting.
var validOutputFormats = map[string]bool{
	"":         true,
	"auto":     true,
	"text":     true,
	"markdown": true,
	"json":     true,
	"yaml":     true,
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.CatalogDir == "" {
		return fmt.Errorf("catalog_dir is required")
	}
	if !validOutputFormats[c.OutputFormat] {
		return fmt.Errorf("invalid output format %q (want one of auto, text, markdown, json, yaml)", c.OutputFormat)
	}
	return nil
}

// ValidateCatalogDir checks if the catalog directory exists.
func (c *Config) ValidateCatalogDir() error {
	if _, err := os.Stat(c.CatalogDir); os.IsNotExist(err) {
		return fmt.Errorf("catalog directory does not exist: %s\nHint: Create the directory or use --catalog-dir to specify a different path", c.CatalogDir)
	}
	return nil
}
