package monitor

// EffectKind identifies a side effect requested by Step.
type EffectKind int

const (
	NotDetected EffectKind = iota
	Detected
	ThresholdWarning
	Snapshot
	PersistSample
)

func (k EffectKind) String() string {
	switch k {
	case NotDetected:
		return "not_detected"
	case Detected:
		return "detected"
	case ThresholdWarning:
		return "threshold_warning"
	case Snapshot:
		return "snapshot"
	case PersistSample:
		return "persist_sample"
	default:
		return "unknown"
	}
}

// Notification reports whether the effect is a console notification.
func (k EffectKind) Notification() bool {
	return k == NotDetected || k == Detected || k == ThresholdWarning
}

// Effect is one side-effect request. Fields are populated per kind:
// notifications carry Message, snapshots carry Reason, PersistSample carries Sample.
type Effect struct {
	Kind    EffectKind
	Metric  string
	Value   int
	Message string
	Reason  string
	Sample  Sample
}

// Filter returns the effects of the given kind, in order.
func Filter(effects []Effect, kind EffectKind) []Effect {
	var out []Effect
	for _, e := range effects {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
