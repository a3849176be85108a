package render

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/vocalize/tts"
)

// ProcessConfig configures the subprocess renderer.
type ProcessConfig struct {
	// BinaryPath is the inference binary. When empty, common
	// install locations are searched.
	BinaryPath string
	// SampleRate of the produced PCM. Zero means the default.
	SampleRate int
	// RequestTimeout bounds a single render. Zero means 30s.
	RequestTimeout time.Duration
}

// Process renders audio by running an inference binary per request.
// Phoneme ids go in on stdin, one space-separated line, and raw
// 16-bit mono PCM comes back on stdout. A fresh process per request
// keeps a crashed model from poisoning later units.
type Process struct {
	config ProcessConfig

	mu    sync.Mutex
	stats struct {
		requests int64
		failed   int64
	}
}

// NewProcess creates a subprocess renderer.
func NewProcess(config ProcessConfig) (*Process, error) {
	if config.BinaryPath == "" {
		config.BinaryPath = findBinary()
		if config.BinaryPath == "" {
			return nil, fmt.Errorf("%w: inference binary not found", tts.ErrRendererUnavailable)
		}
	}
	if _, err := os.Stat(config.BinaryPath); err != nil {
		return nil, fmt.Errorf("%w: %v", tts.ErrRendererUnavailable, err)
	}
	if config.SampleRate == 0 {
		config.SampleRate = tts.DefaultSampleRate
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = 30 * time.Second
	}
	return &Process{config: config}, nil
}

// Render runs one inference. The request's model path must point at
// a local model file.
func (p *Process) Render(ctx context.Context, req tts.RenderRequest) ([]byte, int, error) {
	p.mu.Lock()
	p.stats.requests++
	p.mu.Unlock()

	if req.Model == "" {
		return nil, 0, p.fail(fmt.Errorf("%w: no model path", tts.ErrRendererUnavailable))
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.RequestTimeout)
	defer cancel()

	args := []string{
		"--model", req.Model,
		"--output-raw",
		"--noise-scale", formatFloat(req.NoiseScale),
		"--noise-w", formatFloat(req.NoiseW),
		"--length-scale", formatFloat(req.LengthScale),
	}
	if req.SpeakerID > 0 {
		args = append(args, "--speaker", strconv.Itoa(req.SpeakerID))
	}
	if req.Deterministic {
		args = append(args, "--seed", "0")
	}

	cmd := exec.CommandContext(ctx, p.config.BinaryPath, args...)
	cmd.Stdin = strings.NewReader(idLine(req.PhonemeIDs))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug("render", "model", filepath.Base(req.Model), "ids", len(req.PhonemeIDs))
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, 0, p.fail(ctx.Err())
		}
		return nil, 0, p.fail(fmt.Errorf("%w: %v: %s",
			tts.ErrRendererUnavailable, err, firstStderrLine(&stderr)))
	}

	samples := stdout.Bytes()
	if len(samples) == 0 {
		return nil, 0, p.fail(fmt.Errorf("%w: no audio produced", tts.ErrRendererUnavailable))
	}

	// The binary emits raw PCM at the model's own rate; trust the
	// voice's declaration over the renderer-level default.
	rate := req.SampleRate
	if rate == 0 {
		rate = p.config.SampleRate
	}
	return samples, rate, nil
}

// Stats reports request counts since creation.
func (p *Process) Stats() (requests, failed int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats.requests, p.stats.failed
}

func (p *Process) fail(err error) error {
	p.mu.Lock()
	p.stats.failed++
	p.mu.Unlock()
	return err
}

func idLine(ids []int64) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	b.WriteByte('\n')
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func firstStderrLine(r io.Reader) string {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			return line
		}
	}
	return "no diagnostic output"
}

// findBinary searches common install locations for the inference
// binary.
func findBinary() string {
	locations := []string{
		"vocalize-infer",
		"/usr/local/bin/vocalize-infer",
		"/usr/bin/vocalize-infer",
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations,
			filepath.Join(home, ".local", "bin", "vocalize-infer"),
			filepath.Join(home, "bin", "vocalize-infer"),
		)
	}
	for _, loc := range locations {
		if path, err := exec.LookPath(loc); err == nil {
			return path
		}
	}
	return ""
}
