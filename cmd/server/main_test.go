package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"github.com/iliyamo/camera-overlay/internal/config"
)

func resolveWith(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	var cfg config.Config
	var resolveErr error
	app := newApp()
	app.Action = func(c *cli.Context) error {
		cfg, resolveErr = resolveConfig(c)
		return nil
	}
	require.NoError(t, app.Run(append([]string{"overlay-server"}, args...)))
	return cfg, resolveErr
}

func TestResolveConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := resolveWith(t)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 5001, cfg.Port)
	assert.False(t, cfg.Debug)
}

func TestResolveConfig_FlagsOverrideEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_PORT", "7000")
	t.Setenv("APP_DEBUG", "true")

	cfg, err := resolveWith(t)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.True(t, cfg.Debug)

	cfg, err = resolveWith(t, "--port", "8000", "--debug=false", "--host", "127.0.0.1", "--template-dir", "web")
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, "web", cfg.TemplateDir)
}

func TestResolveConfig_Invalid(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := resolveWith(t, "-p", "70000")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{false, true} {
		logger, err := newLogger(debug)
		require.NoError(t, err)
		assert.Equal(t, debug, logger.Core().Enabled(zapcore.DebugLevel))
	}
}
