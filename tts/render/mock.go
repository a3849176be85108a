// Package render turns phoneme id sequences into raw PCM audio.
package render

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/dgnsrekt/vocalize/tts"
)

// Mock is a renderer for tests. It produces deterministic audio
// derived from the request contents and can be told to fail or
// delay on demand.
type Mock struct {
	mu sync.Mutex

	// SamplesPerID controls output length, samples per phoneme id.
	SamplesPerID int
	// Delay is the simulated processing time per request.
	Delay time.Duration
	// FailOn makes the nth call (1-based) fail with FailErr.
	FailOn  int
	FailErr error

	calls int
}

// NewMock creates a mock renderer with a short output per id.
func NewMock() *Mock {
	return &Mock{SamplesPerID: 64}
}

// Calls reports how many render requests were made.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Render produces 16-bit little-endian mono PCM. The same request
// always yields the same bytes.
func (m *Mock) Render(ctx context.Context, req tts.RenderRequest) ([]byte, int, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.mu.Unlock()

	if m.FailOn != 0 && call == m.FailOn {
		err := m.FailErr
		if err == nil {
			err = tts.ErrRendererUnavailable
		}
		return nil, 0, err
	}

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	samples := make([]byte, 0, len(req.PhonemeIDs)*m.SamplesPerID*2)
	buf := make([]byte, 2)
	for _, id := range req.PhonemeIDs {
		// A constant value per id keeps the output inspectable.
		value := int16((id*31 + int64(req.SpeakerID)) % (1 << 14))
		for i := 0; i < m.SamplesPerID; i++ {
			binary.LittleEndian.PutUint16(buf, uint16(value))
			samples = append(samples, buf...)
		}
	}

	rate := req.SampleRate
	if rate == 0 {
		rate = tts.DefaultSampleRate
	}
	return samples, rate, nil
}
