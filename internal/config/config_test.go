package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/screenwatch/internal/errors"
	"github.com/GriffinCanCode/screenwatch/internal/reading"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "screenwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.SleepInterval)
	assert.Equal(t, time.Second, cfg.SurfaceWait)
	assert.Equal(t, 120, cfg.StrikeAlertLimit)
	assert.Equal(t, 80, cfg.CPUAlertLimit)
	assert.Equal(t, reading.Range{Min: 1, Max: 150}, cfg.StrikeRange)
	assert.Equal(t, reading.Range{Min: 1, Max: 100}, cfg.CPURange)
	assert.Equal(t, "OCR Demo", cfg.WindowTitle)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "ocr_shots", cfg.SnapshotDir)
	assert.Equal(t, BackendTesseract, cfg.OCRBackend)
	assert.Equal(t, 6, cfg.TesseractPSM)
	assert.True(t, cfg.OCRCache)
	assert.Empty(t, cfg.HTTPAddr)
	assert.False(t, cfg.AlarmEnabled)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
sleep_interval: 250ms
strike_alert_limit: 110
cpu_range: {min: 5, max: 95}
window_title: Grafana
ocr_backend: grpc
http_addr: ":8080"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.SleepInterval)
	assert.Equal(t, 110, cfg.StrikeAlertLimit)
	assert.Equal(t, 80, cfg.CPUAlertLimit, "unset keys keep defaults")
	assert.Equal(t, reading.Range{Min: 5, Max: 95}, cfg.CPURange)
	assert.Equal(t, "Grafana", cfg.WindowTitle)
	assert.Equal(t, BackendGRPC, cfg.OCRBackend)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, "\n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.IsCode(err, errors.ConfigMissing), "got %v", err)
}

func TestLoadSchemaViolations(t *testing.T) {
	tests := map[string]string{
		"unknown backend":  "ocr_backend: paddle\n",
		"bad duration":     "sleep_interval: soon\n",
		"zero history":     "history_size: 0\n",
		"psm out of range": "tesseract_psm: 42\n",
		"inverted range":   "strike_range: {min: 10, max: 2}\n",
		"wrong type":       "alarm_enabled: loud\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.True(t, errors.IsCode(err, errors.ConfigInvalid), "got %v", err)
		})
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv(EnvPrefix+"SLEEP_INTERVAL", "2")
	t.Setenv(EnvPrefix+"CPU_ALERT_LIMIT", "90")
	t.Setenv(EnvPrefix+"WINDOW_TITLE", "Ops Board")
	t.Setenv(EnvPrefix+"ALARM_ENABLED", "1")
	t.Setenv(EnvPrefix+"OCR_TIMEOUT", "500ms")

	cfg, err := Load(writeConfig(t, "cpu_alert_limit: 70\n"))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.SleepInterval)
	assert.Equal(t, 90, cfg.CPUAlertLimit, "env wins over file")
	assert.Equal(t, "Ops Board", cfg.WindowTitle)
	assert.True(t, cfg.AlarmEnabled)
	assert.Equal(t, 500*time.Millisecond, cfg.OCRTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero sleep", func(c *Config) { c.SleepInterval = 0 }},
		{"zero surface wait", func(c *Config) { c.SurfaceWait = -time.Second }},
		{"empty cpu range", func(c *Config) { c.CPURange = reading.Range{Min: 9, Max: 1} }},
		{"unknown backend", func(c *Config) { c.OCRBackend = "paddle" }},
		{"grpc without addr", func(c *Config) { c.OCRBackend = BackendGRPC; c.InferenceAddr = "" }},
		{"no data dir", func(c *Config) { c.DataDir = "" }},
		{"no history", func(c *Config) { c.HistorySize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.True(t, errors.IsCode(cfg.Validate(), errors.ConfigInvalid))
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("SW_TEST_INT", "notanumber")
	t.Setenv("SW_TEST_DUR", "1m30s")
	t.Setenv("SW_TEST_BOOL", "yes")

	if got := getEnvInt("SW_TEST_INT", 7); got != 7 {
		t.Errorf("getEnvInt(invalid) = %d, want 7", got)
	}
	if got := getEnvDuration("SW_TEST_DUR", 0); got != 90*time.Second {
		t.Errorf("getEnvDuration() = %v, want 1m30s", got)
	}
	if got := getEnvBool("SW_TEST_BOOL", false); got {
		t.Error("getEnvBool(yes) = true, want false")
	}
	if got := getEnv("SW_TEST_UNSET", "def"); got != "def" {
		t.Errorf("getEnv(unset) = %q, want def", got)
	}
}
