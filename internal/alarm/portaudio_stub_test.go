//go:build !cgo || noaudio

package alarm

import (
	"testing"

	"github.com/GriffinCanCode/screenwatch/internal/errors"
)

func TestPortAudioPlayerUnavailable(t *testing.T) {
	p, err := NewPortAudioPlayer(DefaultSampleRate)
	if p != nil {
		t.Errorf("NewPortAudioPlayer() = %v, want nil", p)
	}
	if !errors.IsCode(err, errors.Unavailable) {
		t.Errorf("NewPortAudioPlayer() error = %v, want UNAVAILABLE", err)
	}
}
