// Package config handles screenwatch configuration.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/GriffinCanCode/screenwatch/internal/errors"
	"github.com/GriffinCanCode/screenwatch/internal/reading"
)

// EnvPrefix namespaces environment overrides.
const EnvPrefix = "SCREENWATCH_"

// OCR backends.
const (
	BackendTesseract = "tesseract"
	BackendGRPC      = "grpc"
)

type Config struct {
	SleepInterval    time.Duration `yaml:"sleep_interval"`
	SurfaceWait      time.Duration `yaml:"surface_wait"`
	StrikeAlertLimit int           `yaml:"strike_alert_limit"`
	CPUAlertLimit    int           `yaml:"cpu_alert_limit"`
	StrikeRange      reading.Range `yaml:"strike_range"`
	CPURange         reading.Range `yaml:"cpu_range"`
	WindowTitle      string        `yaml:"window_title"`
	DataDir          string        `yaml:"data_dir"`
	SnapshotDir      string        `yaml:"snapshot_dir"`
	OCRBackend       string        `yaml:"ocr_backend"`
	TesseractPath    string        `yaml:"tesseract_path"`
	TesseractPSM     int           `yaml:"tesseract_psm"`
	TesseractLang    string        `yaml:"tesseract_lang"`
	InferenceAddr    string        `yaml:"inference_addr"`
	OCRTimeout       time.Duration `yaml:"ocr_timeout"`
	OCRCache         bool          `yaml:"ocr_cache"`
	HTTPAddr         string        `yaml:"http_addr"`
	AlarmEnabled     bool          `yaml:"alarm_enabled"`
	LogVerbose       bool          `yaml:"log_verbose"`
	HistorySize      int           `yaml:"history_size"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		SleepInterval:    time.Second,
		SurfaceWait:      time.Second,
		StrikeAlertLimit: 120,
		CPUAlertLimit:    80,
		StrikeRange:      reading.StrikeRate.Valid,
		CPURange:         reading.CPUUsage.Valid,
		WindowTitle:      "OCR Demo",
		DataDir:          "data",
		SnapshotDir:      "ocr_shots",
		OCRBackend:       BackendTesseract,
		TesseractPath:    "tesseract",
		TesseractPSM:     6,
		InferenceAddr:    "localhost:50051",
		OCRTimeout:       10 * time.Second,
		OCRCache:         true,
		HistorySize:      200,
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, then environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ConfigMissing, "config file %s not found", path)
	}
	if err != nil {
		return errors.Wrapf(err, errors.ConfigInvalid, "read config %s", path)
	}
	if err := ValidateYAML(data); err != nil {
		return errors.Wrapf(err, errors.ConfigInvalid, "config %s does not match schema", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, errors.ConfigInvalid, "decode config %s", path)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.SleepInterval = getEnvDuration(EnvPrefix+"SLEEP_INTERVAL", c.SleepInterval)
	c.SurfaceWait = getEnvDuration(EnvPrefix+"SURFACE_WAIT", c.SurfaceWait)
	c.StrikeAlertLimit = getEnvInt(EnvPrefix+"STRIKE_ALERT_LIMIT", c.StrikeAlertLimit)
	c.CPUAlertLimit = getEnvInt(EnvPrefix+"CPU_ALERT_LIMIT", c.CPUAlertLimit)
	c.WindowTitle = getEnv(EnvPrefix+"WINDOW_TITLE", c.WindowTitle)
	c.DataDir = getEnv(EnvPrefix+"DATA_DIR", c.DataDir)
	c.SnapshotDir = getEnv(EnvPrefix+"SNAPSHOT_DIR", c.SnapshotDir)
	c.OCRBackend = getEnv(EnvPrefix+"OCR_BACKEND", c.OCRBackend)
	c.TesseractPath = getEnv(EnvPrefix+"TESSERACT_PATH", c.TesseractPath)
	c.TesseractPSM = getEnvInt(EnvPrefix+"TESSERACT_PSM", c.TesseractPSM)
	c.TesseractLang = getEnv(EnvPrefix+"TESSERACT_LANG", c.TesseractLang)
	c.InferenceAddr = getEnv(EnvPrefix+"INFERENCE_ADDR", c.InferenceAddr)
	c.OCRTimeout = getEnvDuration(EnvPrefix+"OCR_TIMEOUT", c.OCRTimeout)
	c.OCRCache = getEnvBool(EnvPrefix+"OCR_CACHE", c.OCRCache)
	c.HTTPAddr = getEnv(EnvPrefix+"HTTP_ADDR", c.HTTPAddr)
	c.AlarmEnabled = getEnvBool(EnvPrefix+"ALARM_ENABLED", c.AlarmEnabled)
	c.LogVerbose = getEnvBool(EnvPrefix+"LOG_VERBOSE", c.LogVerbose)
	c.HistorySize = getEnvInt(EnvPrefix+"HISTORY_SIZE", c.HistorySize)
}

// Validate checks cross-field constraints the schema cannot express.
func (c *Config) Validate() error {
	switch {
	case c.SleepInterval <= 0:
		return errors.New(errors.ConfigInvalid, "sleep_interval must be positive")
	case c.SurfaceWait <= 0:
		return errors.New(errors.ConfigInvalid, "surface_wait must be positive")
	case c.StrikeRange.Min > c.StrikeRange.Max:
		return errors.Newf(errors.ConfigInvalid, "strike_range %s is empty", c.StrikeRange)
	case c.CPURange.Min > c.CPURange.Max:
		return errors.Newf(errors.ConfigInvalid, "cpu_range %s is empty", c.CPURange)
	case c.OCRBackend != BackendTesseract && c.OCRBackend != BackendGRPC:
		return errors.Newf(errors.ConfigInvalid, "unknown ocr_backend %q", c.OCRBackend)
	case c.OCRBackend == BackendGRPC && c.InferenceAddr == "":
		return errors.New(errors.ConfigInvalid, "inference_addr required for grpc backend")
	case c.DataDir == "" || c.SnapshotDir == "":
		return errors.New(errors.ConfigInvalid, "data_dir and snapshot_dir must be set")
	case c.HistorySize <= 0:
		return errors.New(errors.ConfigInvalid, "history_size must be positive")
	}
	return nil
}
