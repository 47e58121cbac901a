// Package store persists samples and visual evidence to the local filesystem.
package store

import (
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/GriffinCanCode/screenwatch/internal/errors"
	"github.com/GriffinCanCode/screenwatch/internal/monitor"
)

// Timestamp layouts used in persisted artifacts.
const (
	RecordTimeLayout = "2006-01-02 15:04:05"
	FileTimeLayout   = "20060102_150405"
)

// Record is the on-disk shape of one sample.
type Record struct {
	Timestamp  string `json:"timestamp"`
	StrikeRate int    `json:"strike_rate"`
	CPUUsage   int    `json:"cpu_usage"`
}

// RecordOf converts a sample into its on-disk shape.
func RecordOf(s monitor.Sample) Record {
	return Record{
		Timestamp:  s.Timestamp.Format(RecordTimeLayout),
		StrikeRate: s.StrikeRate,
		CPUUsage:   s.CPUUsage,
	}
}

// SampleLog is an append-only JSON array file owned by one run.
type SampleLog struct {
	mu   sync.Mutex
	path string
}

// SampleLogName returns the file name for a run started at start.
func SampleLogName(start time.Time) string {
	return "values_" + start.Format(FileTimeLayout) + ".json"
}

// NewSampleLog prepares dir and names the run's log file. The file itself is
// created on the first Append.
func NewSampleLog(dir string, start time.Time) (*SampleLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, errors.StorageWrite, "create data dir %s", dir)
	}
	return &SampleLog{path: filepath.Join(dir, SampleLogName(start))}, nil
}

// Path returns the log file path.
func (l *SampleLog) Path() string { return l.path }

// Append rewrites the whole array with s appended. An unreadable or invalid
// existing file is replaced by a fresh array; its previous content is lost.
func (l *SampleLog) Append(s monitor.Sample) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.load()
	if err != nil {
		slog.Warn("sample log unreadable, starting a fresh array", "path", l.path, "error", err)
		records = nil
	}
	records = append(records, RecordOf(s))

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return errors.Wrap(err, errors.Internal, "encode samples")
	}
	if err := writeFileAtomic(l.path, data); err != nil {
		return errors.Wrapf(err, errors.StorageWrite, "write %s", l.path)
	}
	return nil
}

// Records returns the samples persisted so far.
func (l *SampleLog) Records() ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

func (l *SampleLog) load() ([]Record, error) {
	data, err := os.ReadFile(l.path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.StorageCorrupt, "read %s", l.path)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrapf(err, errors.StorageCorrupt, "decode %s", l.path)
	}
	return records, nil
}

// writeFileAtomic replaces path via a sibling temp file and rename.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}
