package voices

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/gzip"

	"github.com/dgnsrekt/vocalize/tts"
)

// EnsureLocal makes sure the voice's model file exists on disk. If
// the voice directory holds a packed model archive instead, it is
// unpacked in place. The returned path points at the model file.
func (r *Registry) EnsureLocal(key string) (string, error) {
	voice, _, err := r.Resolve(key)
	if err != nil {
		return "", err
	}

	if voice.ModelPath != "" {
		if _, err := os.Stat(voice.ModelPath); err == nil {
			return voice.ModelPath, nil
		}
	}

	dir := filepath.Dir(voice.ModelPath)
	if dir == "." || dir == "" {
		return "", fmt.Errorf("%w: %q has no model", tts.ErrVoiceNotLocal, key)
	}

	archive, err := findArchive(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", tts.ErrVoiceNotLocal, key, err)
	}

	log.Info("unpacking voice archive", "voice", key, "archive", archive)
	if err := extractTarGz(archive, dir); err != nil {
		return "", err
	}

	if _, err := os.Stat(voice.ModelPath); err != nil {
		return "", fmt.Errorf("%w: archive for %q did not contain the model", tts.ErrVoiceNotLocal, key)
	}
	if err := r.Rescan(); err != nil {
		log.Warn("rescan after unpack failed", "error", err)
	}
	return voice.ModelPath, nil
}

func findArchive(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz") {
			return filepath.Join(dir, name), nil
		}
	}
	return "", errors.New("no model archive found")
}

// extractTarGz unpacks a gzipped tarball into dir. Entries escaping
// the target directory are rejected.
func extractTarGz(archive, dir string) error {
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close() //nolint:errcheck

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target := filepath.Join(dir, filepath.Clean(hdr.Name))
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry escapes target dir: %q", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, hdr.FileInfo().Mode())
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil { //nolint:gosec
				out.Close() //nolint:errcheck,gosec
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		}
	}
}
