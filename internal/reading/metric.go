package reading

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxDigits bounds the digit run accepted after a label.
const MaxDigits = 3

// Range is an inclusive band of plausible values.
type Range struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Contains reports whether v lies inside the band.
func (r Range) Contains(v int) bool { return v >= r.Min && v <= r.Max }

func (r Range) String() string { return fmt.Sprintf("[%d,%d]", r.Min, r.Max) }

// Reading is one metric's value for a single cycle, or its absence.
type Reading struct {
	Value   int
	Present bool
}

// Absent is the zero Reading.
var Absent = Reading{}

// Of returns a present reading.
func Of(v int) Reading { return Reading{Value: v, Present: true} }

func (r Reading) String() string {
	if !r.Present {
		return "absent"
	}
	return strconv.Itoa(r.Value)
}

// Metric describes one on-screen numeric field anchored by a label.
type Metric struct {
	Name    string // stable identifier, e.g. "strike_rate"
	Label   string // on-screen label, e.g. "Strike Rate"
	Valid   Range
	pattern *regexp.Regexp
}

// NewMetric compiles the anchored pattern for label. Whitespace inside the
// label matches any amount of whitespace, including none.
func NewMetric(name, label string, valid Range) (Metric, error) {
	words := strings.Fields(label)
	if len(words) == 0 {
		return Metric{}, fmt.Errorf("metric %q: empty label", name)
	}
	if valid.Min > valid.Max {
		return Metric{}, fmt.Errorf("metric %q: invalid range %s", name, valid)
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	expr := `(?i)` + strings.Join(quoted, `\s*`) + `[^0-9]*([0-9]+)`
	re, err := regexp.Compile(expr)
	if err != nil {
		return Metric{}, fmt.Errorf("metric %q: %w", name, err)
	}
	return Metric{Name: name, Label: label, Valid: valid, pattern: re}, nil
}

// MustMetric is NewMetric for package-level defaults.
func MustMetric(name, label string, valid Range) Metric {
	m, err := NewMetric(name, label, valid)
	if err != nil {
		panic(err)
	}
	return m
}

// Find returns the first labelled value in text. A value outside the valid
// range is reported as absent, the same as no match at all. Digit runs longer
// than MaxDigits are out of range rather than truncated.
func (m Metric) Find(text string) Reading {
	if m.pattern == nil {
		return Absent
	}
	match := m.pattern.FindStringSubmatch(text)
	if match == nil || len(match[1]) > MaxDigits {
		return Absent
	}
	v, err := strconv.Atoi(match[1])
	if err != nil || !m.Valid.Contains(v) {
		return Absent
	}
	return Of(v)
}
