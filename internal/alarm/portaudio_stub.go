//go:build !cgo || noaudio

package alarm

import "github.com/GriffinCanCode/screenwatch/internal/errors"

// PortAudioPlayer is unavailable in builds without cgo or with the noaudio tag.
type PortAudioPlayer struct{}

// NewPortAudioPlayer always fails; the monitor runs without an alarm.
func NewPortAudioPlayer(int) (*PortAudioPlayer, error) {
	return nil, errors.New(errors.Unavailable, "audio output not built in (cgo disabled or noaudio tag)")
}

func (*PortAudioPlayer) Play([]float32) error { return errors.New(errors.Unavailable, "audio output not built in") }

func (*PortAudioPlayer) Close() error { return nil }
