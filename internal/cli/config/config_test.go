package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfig_Defaults tests loading with no file, env, or flags.
func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, DefaultCatalogDir, filepath.Base(cfg.CatalogDir))
	assert.True(t, filepath.IsAbs(cfg.CatalogDir), "catalog dir resolves against the project root")

	serve := cfg.GetServeConfig()
	assert.Equal(t, DefaultAddr, serve.Addr)
	assert.True(t, serve.Watch)
}

// TestLoadConfig_File tests loading values from a config file.
func TestLoadConfig_File(t *testing.T) {
	ResetConfig()

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "leapion.yaml")
	cfgContent := `catalog_dir: definitions
output: markdown
serve:
  addr: ":9000"
  watch: false
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgContent), 0600))

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	// Relative catalog_dir resolves against the config file's directory.
	assert.Equal(t, filepath.Join(tmpDir, "definitions"), cfg.CatalogDir)
	assert.Equal(t, tmpDir, cfg.ProjectRoot)
	assert.Equal(t, "markdown", cfg.OutputFormat)

	serve := cfg.GetServeConfig()
	assert.Equal(t, ":9000", serve.Addr)
	assert.False(t, serve.Watch)

	assert.Equal(t, cfgPath, GetConfigFileUsed())
	assert.Equal(t, cfg, GetCurrentConfig())
}

// TestLoadConfig_EnvPrecedenceOverFile tests that env vars override the config file.
func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "leapion.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output: markdown\n"), 0600))

	require.NoError(t, os.Setenv("LEAPION_OUTPUT", "json"))
	defer func() { _ = os.Unsetenv("LEAPION_OUTPUT") }()

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.OutputFormat, "env var should override config file")
}

// TestLoadConfig_EnvNestedKey tests that a double underscore in an env
// var name addresses a nested key.
func TestLoadConfig_EnvNestedKey(t *testing.T) {
	ResetConfig()

	require.NoError(t, os.Setenv("LEAPION_SERVE__ADDR", ":8100"))
	defer func() { _ = os.Unsetenv("LEAPION_SERVE__ADDR") }()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, ":8100", cfg.GetServeConfig().Addr)
}

// TestLoadConfig_FlagPrecedence tests that flags override env vars and config file.
func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "leapion.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output: markdown\n"), 0600))

	require.NoError(t, os.Setenv("LEAPION_OUTPUT", "json"))
	defer func() { _ = os.Unsetenv("LEAPION_OUTPUT") }()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "", "output format")
	require.NoError(t, flags.Set("output", "text"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.OutputFormat, "flag value should override config file and env var")
}

// TestLoadConfig_CatalogDirFlag tests that an explicit --catalog-dir flag
// resolves against the working directory, not the project root.
func TestLoadConfig_CatalogDirFlag(t *testing.T) {
	ResetConfig()

	tmpDir := t.TempDir()
	catalogDir := filepath.Join(tmpDir, "elsewhere")
	require.NoError(t, os.Mkdir(catalogDir, 0750))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("catalog-dir", "", "catalog directory")
	require.NoError(t, flags.Set("catalog-dir", catalogDir))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, catalogDir, cfg.CatalogDir)
}

// TestLoadConfig_InvalidOutput tests that a bad output format is rejected.
func TestLoadConfig_InvalidOutput(t *testing.T) {
	ResetConfig()

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "leapion.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output: xml\n"), 0600))

	_, err := LoadConfig(cfgPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

// TestConfig_Validate tests the Config.Validate method.
func TestConfig_Validate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := &Config{CatalogDir: "macros", OutputFormat: "auto"}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("empty catalog_dir", func(t *testing.T) {
		cfg := &Config{CatalogDir: ""}
		err := cfg.Validate()
		require.Error(t, err, "expected error for empty catalog_dir")
		assert.Contains(t, err.Error(), "catalog_dir is required")
	})

	t.Run("bad output format", func(t *testing.T) {
		cfg := &Config{CatalogDir: "macros", OutputFormat: "xml"}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid output format")
	})
}

// TestGetServeConfig tests defaults applied to partial serve configs.
func TestGetServeConfig(t *testing.T) {
	t.Run("nil serve config", func(t *testing.T) {
		cfg := &Config{}
		serve := cfg.GetServeConfig()
		assert.Equal(t, DefaultAddr, serve.Addr)
		assert.True(t, serve.Watch)
	})

	t.Run("empty addr gets default", func(t *testing.T) {
		cfg := &Config{Serve: &ServeConfig{Watch: false}}
		serve := cfg.GetServeConfig()
		assert.Equal(t, DefaultAddr, serve.Addr)
		assert.False(t, serve.Watch)
	})
}

// TestGetLogger tests the context logger fallback.
func TestGetLogger(t *testing.T) {
	logger := GetLogger(t.Context())
	require.NotNil(t, logger, "missing logger should fall back to a discard logger")
}
