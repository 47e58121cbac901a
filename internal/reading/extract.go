package reading

// Default on-screen fields.
var (
	StrikeRate = MustMetric("strike_rate", "Strike Rate", Range{Min: 1, Max: 150})
	CPUUsage   = MustMetric("cpu_usage", "CPU Usage", Range{Min: 1, Max: 100})
)

// Pair holds both readings of one cycle.
type Pair struct {
	Strike Reading
	CPU    Reading
}

// Complete reports whether both metrics were read.
func (p Pair) Complete() bool { return p.Strike.Present && p.CPU.Present }

// Extractor pulls the strike rate and CPU usage out of normalized text.
type Extractor struct {
	Strike Metric
	CPU    Metric
}

// DefaultExtractor uses the stock labels and ranges.
func DefaultExtractor() Extractor {
	return Extractor{Strike: StrikeRate, CPU: CPUUsage}
}

// NewExtractor builds an extractor with the stock labels and custom ranges.
func NewExtractor(strike, cpu Range) (Extractor, error) {
	s, err := NewMetric(StrikeRate.Name, StrikeRate.Label, strike)
	if err != nil {
		return Extractor{}, err
	}
	c, err := NewMetric(CPUUsage.Name, CPUUsage.Label, cpu)
	if err != nil {
		return Extractor{}, err
	}
	return Extractor{Strike: s, CPU: c}, nil
}

// Extract evaluates each metric independently.
func (e Extractor) Extract(text string) Pair {
	return Pair{Strike: e.Strike.Find(text), CPU: e.CPU.Find(text)}
}

// Parse normalizes raw recognized text and extracts both readings.
func (e Extractor) Parse(raw string) Pair {
	return e.Extract(Normalize(raw))
}
