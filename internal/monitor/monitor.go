// Package monitor decides, cycle by cycle, which metric readings are worth
// recording and which ones breach a threshold.
package monitor

import (
	"fmt"
	"time"

	"github.com/GriffinCanCode/screenwatch/internal/reading"
)

// Snapshot reason tags.
const (
	ReasonStrike      = "strike"
	ReasonCPU         = "cpu"
	ReasonStrikeAlert = "SR_ALERT"
	ReasonCPUAlert    = "CPU_ALERT"
)

// Default alert limits.
const (
	DefaultStrikeAlertLimit = 120
	DefaultCPUAlertLimit    = 80
)

// Rule parameterizes the per-metric procedure.
type Rule struct {
	Name        string // stable identifier, e.g. "strike_rate"
	Label       string // human label used in notifications
	Limit       int    // alert when value > Limit
	Reason      string // snapshot tag on value change
	AlertReason string // snapshot tag on threshold breach
}

// Rules holds the two metric rules.
type Rules struct {
	Strike Rule
	CPU    Rule
}

// DefaultRules returns the stock limits and reason tags.
func DefaultRules() Rules {
	return NewRules(DefaultStrikeAlertLimit, DefaultCPUAlertLimit)
}

// NewRules builds the stock rules with custom limits.
func NewRules(strikeLimit, cpuLimit int) Rules {
	return Rules{
		Strike: Rule{
			Name:        reading.StrikeRate.Name,
			Label:       reading.StrikeRate.Label,
			Limit:       strikeLimit,
			Reason:      ReasonStrike,
			AlertReason: ReasonStrikeAlert,
		},
		CPU: Rule{
			Name:        reading.CPUUsage.Name,
			Label:       reading.CPUUsage.Label,
			Limit:       cpuLimit,
			Reason:      ReasonCPU,
			AlertReason: ReasonCPUAlert,
		},
	}
}

// MetricState is the cross-cycle memory for one metric.
type MetricState struct {
	Last    reading.Reading // Present is false until the first reading
	Alerted bool
}

// State is the whole memory of a run. The zero value is the initial state.
type State struct {
	Strike MetricState
	CPU    MetricState
}

// Sample is a durable record of a complete reading pair.
type Sample struct {
	Timestamp  time.Time
	StrikeRate int
	CPUUsage   int
}

// Apply runs the per-metric rules against one reading and returns the
// updated state with the requested effects.
func (r Rule) Apply(s MetricState, in reading.Reading) (MetricState, []Effect) {
	if !in.Present {
		return s, []Effect{{
			Kind:    NotDetected,
			Metric:  r.Name,
			Message: r.Label + " not detected",
		}}
	}

	var effects []Effect
	v := in.Value

	if !s.Last.Present || s.Last.Value != v {
		effects = append(effects,
			Effect{
				Kind:    Detected,
				Metric:  r.Name,
				Value:   v,
				Message: fmt.Sprintf("%s Detected: %d", r.Label, v),
			},
			Effect{Kind: Snapshot, Metric: r.Name, Value: v, Reason: r.Reason},
		)
		s.Last = in
	}

	if v > r.Limit && !s.Alerted {
		effects = append(effects,
			Effect{
				Kind:    ThresholdWarning,
				Metric:  r.Name,
				Value:   v,
				Message: fmt.Sprintf("WARNING: %s too high (%d)", r.Label, v),
			},
			Effect{Kind: Snapshot, Metric: r.Name, Value: v, Reason: r.AlertReason},
		)
		s.Alerted = true
	}

	if v <= r.Limit {
		s.Alerted = false
	}

	return s, effects
}

// Step evaluates one cycle. The returned state replaces st.
func Step(rules Rules, st State, p reading.Pair, now time.Time) (State, []Effect) {
	var effects, e []Effect

	st.Strike, e = rules.Strike.Apply(st.Strike, p.Strike)
	effects = append(effects, e...)
	st.CPU, e = rules.CPU.Apply(st.CPU, p.CPU)
	effects = append(effects, e...)

	if p.Complete() {
		effects = append(effects, Effect{
			Kind: PersistSample,
			Sample: Sample{
				Timestamp:  now,
				StrikeRate: p.Strike.Value,
				CPUUsage:   p.CPU.Value,
			},
		})
	}
	return st, effects
}
