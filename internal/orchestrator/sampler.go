// Package orchestrator runs the sampling loop and wires its collaborators.
package orchestrator

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/GriffinCanCode/screenwatch/internal/errors"
	"github.com/GriffinCanCode/screenwatch/internal/logging"
	"github.com/GriffinCanCode/screenwatch/internal/monitor"
	"github.com/GriffinCanCode/screenwatch/internal/orchestrator/history"
	"github.com/GriffinCanCode/screenwatch/internal/orchestrator/screen"
	"github.com/GriffinCanCode/screenwatch/internal/reading"
	"github.com/GriffinCanCode/screenwatch/internal/surface"
	"github.com/GriffinCanCode/screenwatch/internal/syncx"
	"github.com/GriffinCanCode/screenwatch/internal/trace"
)

// Sensor produces one recognized frame per call.
type Sensor interface {
	Sense(ctx context.Context) (screen.Frame, error)
}

// SampleSink persists complete samples.
type SampleSink interface {
	Append(s monitor.Sample) error
}

// EvidenceSink stores snapshots and returns where they went.
type EvidenceSink interface {
	Save(img image.Image, at time.Time, reason string) (string, error)
}

// Alarm is notified of threshold warnings. Trigger must not block.
type Alarm interface {
	Trigger(metric string, value int)
}

// SamplerConfig holds the loop's tunables.
type SamplerConfig struct {
	RunID         string
	WindowTitle   string
	SleepInterval time.Duration
	SurfaceWait   time.Duration
	Rules         monitor.Rules
	Extractor     reading.Extractor
	SampleLog     string // path, reported in status only
}

// Deps are the loop's collaborators. Alarm and History are optional.
type Deps struct {
	Surface  surface.Detector
	Sensor   Sensor
	Samples  SampleSink
	Evidence EvidenceSink
	Alarm    Alarm
	History  *history.Store
}

// Sampler owns the monitor state and executes one cycle at a time. It is
// not safe for concurrent Cycle calls; Status may be read from anywhere.
type Sampler struct {
	cfg    SamplerConfig
	deps   Deps
	state  monitor.State
	status *syncx.RWGuard[Status]
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewSampler creates a sampler in the waiting phase.
func NewSampler(cfg SamplerConfig, deps Deps) *Sampler {
	if cfg.SleepInterval <= 0 {
		cfg.SleepInterval = DefaultSleepInterval
	}
	if cfg.SurfaceWait <= 0 {
		cfg.SurfaceWait = DefaultSurfaceWait
	}
	if cfg.Extractor == (reading.Extractor{}) {
		cfg.Extractor = reading.DefaultExtractor()
	}
	if cfg.Rules == (monitor.Rules{}) {
		cfg.Rules = monitor.DefaultRules()
	}
	if deps.History == nil {
		deps.History = history.NewStore(DefaultHistorySize)
	}

	s := &Sampler{
		cfg:   cfg,
		deps:  deps,
		now:   time.Now,
		sleep: pause,
	}
	s.status = syncx.NewGuard(Status{
		RunID:     cfg.RunID,
		StartedAt: s.now(),
		Window:    cfg.WindowTitle,
		Phase:     PhaseWaiting,
		SampleLog: cfg.SampleLog,
		Metrics:   s.metricStatus(),
	})
	return s
}

// Run cycles until ctx is cancelled and returns ctx's error.
func (s *Sampler) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.sleep(ctx, s.Cycle(ctx)); err != nil {
			return err
		}
	}
}

// Cycle performs one surface check and, if the surface is visible, one
// sampling pass. It returns the pause to take before the next cycle.
func (s *Sampler) Cycle(ctx context.Context) time.Duration {
	log := logging.FromContext(ctx)

	if !s.visible(ctx, log) {
		s.setPhase(PhaseWaiting)
		log.Info(fmt.Sprintf("Window %q not open - skipping OCR", s.cfg.WindowTitle))
		return s.cfg.SurfaceWait
	}
	s.setPhase(PhaseSampling)

	ctx, span := trace.StartSpan(ctx, "sample_cycle")
	defer span.End()
	log = log.With("trace_id", span.Ctx.TraceID)

	frame, err := s.deps.Sensor.Sense(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return 0
		}
		span.SetAttr("error", err.Error())
		s.recordFailure(log, err)
		return s.cfg.SleepInterval
	}
	span.SetAttr("cached", frame.Cached)

	pair := s.cfg.Extractor.Parse(frame.Text)
	now := s.now()

	var effects []monitor.Effect
	s.state, effects = monitor.Step(s.cfg.Rules, s.state, pair, now)
	persisted := s.execute(log, effects, frame.Raw, now)

	s.status.Write(func(st *Status) {
		st.Cycles++
		if frame.Cached {
			st.CacheHits++
		}
		st.Samples += persisted
		st.LastCycle = now
		st.Metrics = s.metricStatus()
	})
	return s.cfg.SleepInterval
}

// State returns the current monitor state.
func (s *Sampler) State() monitor.State {
	return s.state
}

// Status returns a snapshot of the published status.
func (s *Sampler) Status() Status {
	return s.status.Get()
}

// History returns the sampler's event history.
func (s *Sampler) History() *history.Store {
	return s.deps.History
}

func (s *Sampler) visible(ctx context.Context, log *slog.Logger) bool {
	ok, err := s.deps.Surface.Visible(ctx, s.cfg.WindowTitle)
	if err != nil {
		log.Warn("window query failed", "error", err)
		return false
	}
	return ok
}

func (s *Sampler) setPhase(p Phase) {
	changed := syncx.View(s.status, func(st Status) bool { return st.Phase != p })
	if !changed {
		return
	}
	s.status.Write(func(st *Status) { st.Phase = p })
	s.deps.History.Add(history.Event{Time: s.now(), Kind: history.KindSurface, Message: string(p)})
}

func (s *Sampler) recordFailure(log *slog.Logger, err error) {
	msg := "OCR error: " + errorText(err)
	if errors.IsCode(err, errors.CaptureFailed) {
		msg = "Capture error: " + errorText(err)
	}
	log.Error(msg)
	s.status.Write(func(st *Status) { st.Failures++ })
	s.deps.History.Add(history.Event{Time: s.now(), Kind: history.KindOCRError, Message: msg})
}

// execute applies the effects in order and returns how many samples were
// persisted. Sink failures are logged and never stop the loop.
func (s *Sampler) execute(log *slog.Logger, effects []monitor.Effect, raw image.Image, now time.Time) int {
	persisted := 0
	for _, e := range effects {
		switch e.Kind {
		case monitor.NotDetected, monitor.Detected:
			log.Info(e.Message)
			s.addEvent(e, now)
		case monitor.ThresholdWarning:
			log.Warn(e.Message)
			s.addEvent(e, now)
			if s.deps.Alarm != nil {
				s.deps.Alarm.Trigger(e.Metric, e.Value)
			}
		case monitor.Snapshot:
			path, err := s.deps.Evidence.Save(raw, now, e.Reason)
			if err != nil {
				log.Error("snapshot failed", "reason", e.Reason, "error", err)
				continue
			}
			log.Info("Screenshot saved: " + path)
			s.deps.History.Add(history.Event{Time: now, Kind: history.KindSnapshot, Metric: e.Metric, Value: e.Value, Message: path})
		case monitor.PersistSample:
			if err := s.deps.Samples.Append(e.Sample); err != nil {
				log.Error("sample log write failed", "error", err)
				continue
			}
			persisted++
			s.deps.History.Add(history.Event{
				Time:    now,
				Kind:    history.KindSample,
				Message: fmt.Sprintf("strike_rate=%d cpu_usage=%d", e.Sample.StrikeRate, e.Sample.CPUUsage),
			})
		}
	}
	return persisted
}

func (s *Sampler) addEvent(e monitor.Effect, now time.Time) {
	s.deps.History.Add(history.Event{Time: now, Kind: e.Kind.String(), Metric: e.Metric, Value: e.Value, Message: e.Message})
}

func (s *Sampler) metricStatus() map[string]MetricStatus {
	view := func(r monitor.Rule, m monitor.MetricState) MetricStatus {
		return MetricStatus{Value: m.Last.Value, Present: m.Last.Present, Alerted: m.Alerted, Limit: r.Limit}
	}
	return map[string]MetricStatus{
		s.cfg.Rules.Strike.Name: view(s.cfg.Rules.Strike, s.state.Strike),
		s.cfg.Rules.CPU.Name:    view(s.cfg.Rules.CPU, s.state.CPU),
	}
}

// errorText prefers an AppError's message over its full chain.
func errorText(err error) string {
	var appErr *errors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		if appErr.Cause != nil {
			return appErr.Message + ": " + appErr.Cause.Error()
		}
		return appErr.Message
	}
	return err.Error()
}

// pause waits for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
