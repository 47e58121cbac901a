package reading

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Strike Rate: 100", "Strike Rate: 100"},
		{"accents dropped", "Stríke Rate: 1é00", "Strke Rate: 100"},
		{"symbols dropped", "CPU Usage — 42 ％", "CPU Usage  42 "},
		{"invalid utf8", "CPU\xff Usage: 5", "CPU Usage: 5"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestStrikeRateRange(t *testing.T) {
	for v := 0; v <= 1000; v++ {
		got := StrikeRate.Find(fmt.Sprintf("Strike Rate: %d", v))
		if v >= 1 && v <= 150 {
			require.Equal(t, Of(v), got, "v=%d", v)
		} else {
			require.Equal(t, Absent, got, "v=%d", v)
		}
	}
}

func TestCPUUsageRange(t *testing.T) {
	for v := 0; v <= 1000; v++ {
		got := CPUUsage.Find(fmt.Sprintf("CPU Usage: %d", v))
		if v >= 1 && v <= 100 {
			require.Equal(t, Of(v), got, "v=%d", v)
		} else {
			require.Equal(t, Absent, got, "v=%d", v)
		}
	}
}

func TestLongDigitRunIsAbsent(t *testing.T) {
	assert.Equal(t, Absent, StrikeRate.Find("Strike Rate: 1234"))
	assert.Equal(t, Absent, CPUUsage.Find("CPU Usage: 99999"))
}

func TestFindPatternShape(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Reading
	}{
		{"case insensitive", "STRIKE RATE 77", Of(77)},
		{"no space in label", "strikerate=12", Of(12)},
		{"noise between label and digits", "Strike Rate ::: ~ 9", Of(9)},
		{"newline between words", "Strike\nRate: 45", Of(45)},
		{"first match wins", "Strike Rate: 10 Strike Rate: 20", Of(10)},
		{"first match out of range is not retried", "Strike Rate: 200 Strike Rate: 20", Absent},
		{"missing label", "Rate: 10", Absent},
		{"label without digits", "Strike Rate: n/a", Absent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StrikeRate.Find(tt.text))
		})
	}
}

func TestExtractIndependent(t *testing.T) {
	e := DefaultExtractor()

	p := e.Parse("Dashboard\nStrike Rate: 100\nCPU Usage: 50%")
	assert.Equal(t, Pair{Strike: Of(100), CPU: Of(50)}, p)
	assert.True(t, p.Complete())

	p = e.Parse("Strike Rate: 100\nCPU Usage: 500")
	assert.Equal(t, Of(100), p.Strike)
	assert.Equal(t, Absent, p.CPU)
	assert.False(t, p.Complete())

	p = e.Parse("nothing here")
	assert.Equal(t, Pair{}, p)
}

func TestNewMetricErrors(t *testing.T) {
	_, err := NewMetric("x", "   ", Range{Min: 1, Max: 2})
	assert.Error(t, err)

	_, err = NewMetric("x", "Temp", Range{Min: 5, Max: 1})
	assert.Error(t, err)

	m, err := NewMetric("temp", "Temp (C)", Range{Min: 1, Max: 120})
	require.NoError(t, err)
	assert.Equal(t, Of(40), m.Find("temp (c): 40"))
}

func TestZeroMetricFindsNothing(t *testing.T) {
	assert.Equal(t, Absent, Metric{}.Find("Strike Rate: 5"))
}

func TestReadingString(t *testing.T) {
	assert.Equal(t, "absent", Absent.String())
	assert.Equal(t, "42", Of(42).String())
}

func TestNewExtractorCustomRanges(t *testing.T) {
	e, err := NewExtractor(Range{Min: 1, Max: 200}, Range{Min: 10, Max: 100})
	require.NoError(t, err)

	p := e.Parse("Strike Rate: 180 CPU Usage: 5")
	assert.Equal(t, Of(180), p.Strike)
	assert.Equal(t, Absent, p.CPU)

	_, err = NewExtractor(Range{Min: 9, Max: 1}, Range{Min: 1, Max: 100})
	assert.Error(t, err)
}
