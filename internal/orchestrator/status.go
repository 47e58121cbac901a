package orchestrator

import "time"

// Phase is the sampling loop's state.
type Phase string

const (
	PhaseWaiting  Phase = "WAITING_FOR_SURFACE"
	PhaseSampling Phase = "SAMPLING"
)

// MetricStatus is the published view of one metric.
type MetricStatus struct {
	Value   int  `json:"value,omitempty"`
	Present bool `json:"present"`
	Alerted bool `json:"alerted"`
	Limit   int  `json:"limit"`
}

// Status is a point-in-time view of the run, safe to share across goroutines.
type Status struct {
	RunID     string                  `json:"run_id"`
	StartedAt time.Time               `json:"started_at"`
	Window    string                  `json:"window"`
	Phase     Phase                   `json:"phase"`
	Cycles    int                     `json:"cycles"`
	Failures  int                     `json:"failures"`
	CacheHits int                     `json:"cache_hits"`
	Samples   int                     `json:"samples"`
	LastCycle time.Time               `json:"last_cycle,omitzero"`
	SampleLog string                  `json:"sample_log,omitempty"`
	Metrics   map[string]MetricStatus `json:"metrics"`
}
