package store

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/GriffinCanCode/screenwatch/internal/errors"
)

// EvidenceStore writes labelled PNG snapshots into a shared directory.
type EvidenceStore struct {
	dir     string
	encoder png.Encoder
}

// NewEvidenceStore creates dir if needed.
func NewEvidenceStore(dir string) (*EvidenceStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, errors.StorageWrite, "create snapshot dir %s", dir)
	}
	return &EvidenceStore{dir: dir, encoder: png.Encoder{CompressionLevel: png.BestSpeed}}, nil
}

// Dir returns the snapshot directory.
func (s *EvidenceStore) Dir() string { return s.dir }

// SnapshotName returns the file name for a snapshot taken at at.
func SnapshotName(at time.Time, reason string) string {
	return at.Format(FileTimeLayout) + "_" + reason + ".png"
}

// Save encodes img as <at>_<reason>.png and returns its path.
func (s *EvidenceStore) Save(img image.Image, at time.Time, reason string) (string, error) {
	if img == nil {
		return "", errors.New(errors.InvalidArgument, "nil snapshot image")
	}
	path := filepath.Join(s.dir, SnapshotName(at, reason))
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.StorageWrite, "create %s", path)
	}
	if err := s.encoder.Encode(f, img); err != nil {
		f.Close()
		return "", errors.Wrapf(err, errors.StorageWrite, "encode %s", path)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, errors.StorageWrite, "close %s", path)
	}
	return path, nil
}
