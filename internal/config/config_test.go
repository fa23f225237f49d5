package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/hoststatus/internal/config"
	"codeberg.org/mutker/hoststatus/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOSTSTATUS_CONFIG", "")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hoststatus.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.False(t, cfg.Status)
	assert.Equal(t, config.DefaultRefreshRate, cfg.RefreshRate)
	assert.Equal(t, 500*time.Millisecond, cfg.VolumeInterval)
	assert.Equal(t, []string{"/"}, cfg.Mounts)
	assert.False(t, cfg.StrictMounts)
	assert.Equal(t, 5, cfg.FieldWidth)
	assert.Equal(t, config.SinkStdout, cfg.Sink)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, "top", cfg.Bar.Position)
	assert.Contains(t, cfg.Bar.Command, "--status")
	assert.Equal(t, time.Second/60, cfg.RenderInterval())
}

func TestStatusFlag(t *testing.T) {
	isolate(t)

	cfg, err := config.Load([]string{"--status"})
	require.NoError(t, err)
	assert.True(t, cfg.Status)
}

func TestUnknownFlag(t *testing.T) {
	isolate(t)

	_, err := config.Load([]string{"--bogus"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidArgument))
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
refresh_rate = 144
volume_interval = "250ms"
mounts = ["/", "/home"]
strict_mounts = true
sink = "x11root"
log_level = "debug"

[bar]
id = "bar-1"
command = "/usr/bin/hoststatus --status"
`)

	cfg, err := config.Load(nil, config.WithConfigFile(path))
	require.NoError(t, err)

	assert.Equal(t, 144, cfg.RefreshRate)
	assert.Equal(t, 250*time.Millisecond, cfg.VolumeInterval)
	assert.Equal(t, []string{"/", "/home"}, cfg.Mounts)
	assert.True(t, cfg.StrictMounts)
	assert.Equal(t, config.SinkRootWindow, cfg.Sink)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "bar-1", cfg.Bar.ID)
	assert.Equal(t, "/usr/bin/hoststatus --status", cfg.Bar.Command)
}

func TestEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `refresh_rate = 144`)
	t.Setenv("HOSTSTATUS_CONFIG", path)
	t.Setenv("HOSTSTATUS_REFRESH_RATE", "30")
	t.Setenv("HOSTSTATUS_BAR_POSITION", "bottom")

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.RefreshRate)
	assert.Equal(t, "bottom", cfg.Bar.Position)
}

func TestLoadInvalidFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `This is not a valid TOML file`)

	_, err := config.Load(nil, config.WithConfigFile(path))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestInvalidValues(t *testing.T) {
	cases := map[string]struct {
		content string
		code    errors.ErrorCode
	}{
		"log level":   {`log_level = "invalid"`, errors.ErrInvalidLogLevel},
		"zero rate":   {`refresh_rate = 0`, errors.ErrInvalidInterval},
		"sink":        {`sink = "dbus"`, errors.ErrInvalidConfig},
		"field width": {`field_width = -1`, errors.ErrInvalidConfig},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			path := writeConfig(t, tc.content)

			_, err := config.Load(nil, config.WithConfigFile(path))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func TestStatusCommandQuotesExecutable(t *testing.T) {
	tests := map[string]string{
		"/usr/bin/hoststatus":       "/usr/bin/hoststatus --status",
		"/opt/my apps/hoststatus":   "'/opt/my apps/hoststatus' --status",
		"/home/o'neil/bin/hoststat": `'/home/o'\''neil/bin/hoststat' --status`,
	}

	for exe, want := range tests {
		assert.Equal(t, want, config.StatusCommand(exe), exe)
	}
}
