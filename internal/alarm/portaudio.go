//go:build cgo && !noaudio

package alarm

import (
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudioPlayer writes samples to the default output device.
type PortAudioPlayer struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	buf    []float32
}

// NewPortAudioPlayer opens a mono output stream on the default device.
func NewPortAudioPlayer(sampleRate int) (*PortAudioPlayer, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	buf := make([]float32, FramesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), len(buf), buf)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, err
	}
	return &PortAudioPlayer{stream: stream, buf: buf}, nil
}

// Play blocks until all samples are written.
func (p *PortAudioPlayer) Play(samples []float32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.stream.Start(); err != nil {
		return err
	}
	for off := 0; off < len(samples); off += len(p.buf) {
		n := copy(p.buf, samples[off:])
		clear(p.buf[n:])
		if err := p.stream.Write(); err != nil {
			_ = p.stream.Stop()
			return err
		}
	}
	return p.stream.Stop()
}

// Close closes the stream and terminates PortAudio.
func (p *PortAudioPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.stream.Close()
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
