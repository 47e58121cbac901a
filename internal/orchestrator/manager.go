package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/GriffinCanCode/screenwatch/internal/alarm"
	"github.com/GriffinCanCode/screenwatch/internal/config"
	"github.com/GriffinCanCode/screenwatch/internal/errors"
	"github.com/GriffinCanCode/screenwatch/internal/grpcclient"
	"github.com/GriffinCanCode/screenwatch/internal/imaging"
	"github.com/GriffinCanCode/screenwatch/internal/logging"
	"github.com/GriffinCanCode/screenwatch/internal/monitor"
	"github.com/GriffinCanCode/screenwatch/internal/ocr"
	"github.com/GriffinCanCode/screenwatch/internal/orchestrator/history"
	"github.com/GriffinCanCode/screenwatch/internal/orchestrator/screen"
	"github.com/GriffinCanCode/screenwatch/internal/reading"
	screencap "github.com/GriffinCanCode/screenwatch/internal/screen"
	"github.com/GriffinCanCode/screenwatch/internal/store"
	"github.com/GriffinCanCode/screenwatch/internal/surface"
)

// Option overrides a collaborator, mainly for tests and headless runs.
type Option func(*Manager)

// WithCapturer replaces the platform screen capturer.
func WithCapturer(c screencap.Capturer) Option { return func(m *Manager) { m.capturer = c } }

// WithSurface replaces the platform window detector.
func WithSurface(d surface.Detector) Option { return func(m *Manager) { m.surface = d } }

// WithRecognizer replaces the configured OCR backend.
func WithRecognizer(r ocr.Recognizer) Option { return func(m *Manager) { m.recognizer = r } }

// WithAlarm replaces the PortAudio alarm player.
func WithAlarm(p alarm.Player) Option { return func(m *Manager) { m.alarmPlayer = p } }

// Manager wires configuration into a running sampler.
type Manager struct {
	cfg   *config.Config
	runID string
	start time.Time

	capturer    screencap.Capturer
	surface     surface.Detector
	recognizer  ocr.Recognizer
	inference   *grpcclient.Client
	alarmPlayer alarm.Player
	alarm       *alarm.Alarm

	samples  *store.SampleLog
	evidence *store.EvidenceStore
	history  *history.Store
	sampler  *Sampler
}

// New builds every collaborator from cfg.
func New(cfg *config.Config, opts ...Option) (*Manager, error) {
	m := &Manager{cfg: cfg, runID: uuid.NewString(), start: time.Now()}
	for _, opt := range opts {
		opt(m)
	}

	extractor, err := reading.NewExtractor(cfg.StrikeRange, cfg.CPURange)
	if err != nil {
		return nil, errors.Wrap(err, errors.ConfigInvalid, "metric ranges")
	}

	if m.samples, err = store.NewSampleLog(cfg.DataDir, m.start); err != nil {
		return nil, err
	}
	if m.evidence, err = store.NewEvidenceStore(cfg.SnapshotDir); err != nil {
		return nil, err
	}
	if m.capturer == nil {
		if m.capturer, err = screencap.New(); err != nil {
			return nil, err
		}
	}
	if m.surface == nil {
		m.surface = surface.New()
	}
	if m.recognizer == nil {
		if m.recognizer, err = m.newRecognizer(); err != nil {
			m.capturer.Close()
			return nil, err
		}
	}
	m.recognizer = ocr.Guard(m.recognizer, cfg.OCRTimeout, nil)

	if cfg.AlarmEnabled {
		m.setupAlarm()
	}

	m.history = history.NewStore(cfg.HistorySize)
	proc := screen.NewProcessor(m.capturer, m.recognizer, imaging.DefaultOptions(), cfg.OCRCache)

	deps := Deps{
		Surface:  m.surface,
		Sensor:   proc,
		Samples:  m.samples,
		Evidence: m.evidence,
		History:  m.history,
	}
	if m.alarm != nil {
		deps.Alarm = m.alarm
	}

	m.sampler = NewSampler(SamplerConfig{
		RunID:         m.runID,
		WindowTitle:   cfg.WindowTitle,
		SleepInterval: cfg.SleepInterval,
		SurfaceWait:   cfg.SurfaceWait,
		Rules:         monitor.NewRules(cfg.StrikeAlertLimit, cfg.CPUAlertLimit),
		Extractor:     extractor,
		SampleLog:     m.samples.Path(),
	}, deps)
	return m, nil
}

func (m *Manager) newRecognizer() (ocr.Recognizer, error) {
	switch m.cfg.OCRBackend {
	case config.BackendGRPC:
		client, err := grpcclient.NewWithConfig(m.cfg.InferenceAddr, inferenceConfig(m.cfg.SleepInterval))
		if err != nil {
			return nil, err
		}
		m.inference = client
		return ocr.NewRemote(client), nil
	default:
		return ocr.Tesseract{Path: m.cfg.TesseractPath, PSM: m.cfg.TesseractPSM, Lang: m.cfg.TesseractLang}, nil
	}
}

// inferenceConfig keeps the client's breaker from outlasting one pause, so
// every sampling cycle reaches the server at least once.
func inferenceConfig(sleep time.Duration) grpcclient.Config {
	cfg := grpcclient.DefaultConfig()
	cfg.Breaker.ResetTimeout = max(sleep/2, time.Nanosecond)
	return cfg
}

// setupAlarm opens the audio device. An unavailable device disables the
// alarm but never the monitor.
func (m *Manager) setupAlarm() {
	if m.alarmPlayer == nil {
		p, err := alarm.NewPortAudioPlayer(alarm.DefaultSampleRate)
		if err != nil {
			slog.Warn("alarm disabled: audio output unavailable", "error", err)
			return
		}
		m.alarmPlayer = p
	}
	m.alarm = alarm.New(m.alarmPlayer, alarm.DefaultTone(), alarm.DefaultSampleRate)
}

// Run logs the start banner and samples until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	log := logging.FromContext(ctx)
	log.Info(StartBanner)
	log.Debug("run started", "run_id", m.runID, "sample_log", m.samples.Path(), "snapshots", m.evidence.Dir())

	if m.inference != nil {
		if err := m.inference.Healthy(ctx); err != nil {
			log.Warn("inference server not healthy yet", "addr", m.cfg.InferenceAddr, "error", err)
		}
	}
	if m.alarm != nil {
		go m.alarm.Run(ctx)
	}

	err := m.sampler.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info("=== OCR Stopped ===")
		return nil
	}
	return err
}

// Close releases capture, inference and audio resources.
func (m *Manager) Close() error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	if m.capturer != nil {
		keep(m.capturer.Close())
	}
	if m.inference != nil {
		keep(m.inference.Close())
	}
	if m.alarm != nil {
		keep(m.alarm.Close())
	}
	return first
}

// RunID identifies this run.
func (m *Manager) RunID() string { return m.runID }

// Status returns the sampler's published status.
func (m *Manager) Status() Status { return m.sampler.Status() }

// History returns the run's event history.
func (m *Manager) History() *history.Store { return m.history }

// Samples returns the records persisted by this run.
func (m *Manager) Samples() ([]store.Record, error) { return m.samples.Records() }

// Sampler exposes the underlying loop.
func (m *Manager) Sampler() *Sampler { return m.sampler }
