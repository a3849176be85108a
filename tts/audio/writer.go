package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Naming selects how per-unit output files are named.
type Naming string

const (
	// NamingText derives the file name from the spoken text.
	NamingText Naming = "text"
	// NamingTime derives the file name from a timestamp.
	NamingTime Naming = "time"
	// NamingID numbers the files sequentially.
	NamingID Naming = "id"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9-_]+`)

// ParseNaming validates a naming scheme string.
func ParseNaming(s string) (Naming, error) {
	switch Naming(s) {
	case NamingText, NamingTime, NamingID:
		return Naming(s), nil
	}
	return "", fmt.Errorf("unknown output naming %q", s)
}

// DirWriter saves each unit's audio as a WAV file in a directory.
type DirWriter struct {
	Dir    string
	Naming Naming

	nextID int
}

// Write saves one unit and returns the file path.
func (w *DirWriter) Write(samples []byte, sampleRate int, text string) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", err
	}

	var name string
	switch w.Naming {
	case NamingTime:
		name = fmt.Sprintf("%d", time.Now().UnixNano())
	case NamingID:
		name = fmt.Sprintf("%d", w.nextID)
		w.nextID++
	default:
		name = sanitizeName(text)
		if name == "" {
			name = fmt.Sprintf("%d", w.nextID)
			w.nextID++
		}
	}

	path := filepath.Join(w.Dir, name+".wav")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteWAV(f, samples, sampleRate); err != nil {
		f.Close() //nolint:errcheck,gosec
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	log.Debug("wrote audio", "path", path, "bytes", len(samples))
	return path, nil
}

func sanitizeName(text string) string {
	name := unsafeNameChars.ReplaceAllString(strings.TrimSpace(text), "_")
	name = strings.Trim(name, "_")
	const maxLen = 100
	if len(name) > maxLen {
		name = name[:maxLen]
	}
	return name
}

// StreamWriter concatenates all units into a single WAV on one
// writer. Close finalizes the header, so output must be buffered
// until then.
type StreamWriter struct {
	w          io.Writer
	sampleRate int
	samples    []byte
}

// NewStreamWriter creates a concatenating writer.
func NewStreamWriter(w io.Writer, sampleRate int) *StreamWriter {
	return &StreamWriter{w: w, sampleRate: sampleRate}
}

// Write appends one unit's samples.
func (s *StreamWriter) Write(samples []byte) {
	s.samples = append(s.samples, samples...)
}

// Close writes the accumulated audio as one WAV file.
func (s *StreamWriter) Close() error {
	return WriteWAV(s.w, s.samples, s.sampleRate)
}

// WriteMarks appends mark names to w, one per line, in the order
// they were reached.
func WriteMarks(w io.Writer, marks []string) error {
	for _, mark := range marks {
		if _, err := fmt.Fprintln(w, mark); err != nil {
			return err
		}
	}
	return nil
}
