package audio

import (
	"bytes"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// Player plays PCM through the system audio device. The underlying
// context is created once per sample rate and reused across units.
type Player struct {
	mu         sync.Mutex
	context    *oto.Context
	sampleRate int
	ready      bool
}

// NewPlayer creates a player for the given sample rate and waits
// for the audio device to come up.
func NewPlayer(sampleRate int) (*Player, error) {
	options := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	switch runtime.GOOS {
	case "darwin":
		options.BufferSize = time.Millisecond * 100
	case "windows":
		options.BufferSize = time.Millisecond * 80
	default:
		options.BufferSize = time.Millisecond * 50
	}

	log.Debug("initializing audio context",
		"sample_rate", options.SampleRate,
		"buffer_size", options.BufferSize)

	context, readyChan, err := oto.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio context: %w", err)
	}

	select {
	case <-readyChan:
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("audio context initialization timeout")
	}

	return &Player{context: context, sampleRate: sampleRate, ready: true}, nil
}

// Play blocks until the samples have finished playing.
func (p *Player) Play(samples []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready || p.context == nil {
		return fmt.Errorf("audio context not ready")
	}
	if len(samples) == 0 {
		return nil
	}

	player := p.context.NewPlayer(bytes.NewReader(samples))
	player.Play()
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return player.Close()
}

// SampleRate returns the rate the device was opened at.
func (p *Player) SampleRate() int {
	return p.sampleRate
}

// Close releases the player. The oto context itself has no Close in
// v3 and is reclaimed by the garbage collector.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ready = false
	p.context = nil
	return nil
}
