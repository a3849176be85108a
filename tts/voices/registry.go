// Package voices maintains the catalog of installed voices and
// resolves voice keys to concrete models and speakers.
package voices

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	gap "github.com/muesli/go-app-paths"

	"github.com/dgnsrekt/vocalize/tts"
)

const (
	configFile   = "config.json"
	speakersFile = "speakers.txt"
	phonemesFile = "phonemes.txt"
	aliasesFile  = "ALIASES"
)

// Registry scans one or more voice directories and serves lookups
// from an in-memory catalog. The catalog refreshes when a watched
// directory changes.
type Registry struct {
	mu      sync.RWMutex
	dirs    []string
	voices  map[string]tts.Voice
	aliases map[string]string

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// voiceConfig is the on-disk voice description, one per voice
// directory next to the model file.
type voiceConfig struct {
	Name       string  `json:"name"`
	Language   string  `json:"language"`
	Quality    string  `json:"quality"`
	Phonemizer string  `json:"phonemizer"`
	SampleRate int     `json:"sample_rate"`
	Model      string  `json:"model"`
	NoiseScale float64 `json:"noise_scale"`
	NoiseW     float64 `json:"noise_w"`
}

// DefaultDirs returns the voice search path: the user data directory
// plus any extra directories from the environment.
func DefaultDirs() []string {
	scope := gap.NewScope(gap.User, "vocalize")
	dirs, err := scope.DataDirs()
	if err != nil {
		log.Error("could not find data directory", "error", err)
		dirs = nil
	}

	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		dirs = append([]string{filepath.Join(d, "vocalize")}, dirs...)
	}

	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		out = append(out, filepath.Join(d, "voices"))
	}
	return out
}

// New creates a registry over the given voice directories and
// performs the initial scan. Missing directories are skipped.
func New(dirs ...string) (*Registry, error) {
	if len(dirs) == 0 {
		dirs = DefaultDirs()
	}
	r := &Registry{
		dirs:    dirs,
		voices:  make(map[string]tts.Voice),
		aliases: make(map[string]string),
	}
	if err := r.Rescan(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewStatic creates a registry preloaded with the given voices and
// no backing directories.
func NewStatic(voices ...tts.Voice) *Registry {
	r := &Registry{
		voices:  make(map[string]tts.Voice),
		aliases: make(map[string]string),
	}
	for _, v := range voices {
		r.voices[v.Key] = v
		for _, alias := range v.Aliases {
			r.aliases[alias] = v.Key
		}
	}
	return r
}

// Voices returns all known voices sorted by key.
func (r *Registry) Voices() []tts.Voice {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tts.Voice, 0, len(r.voices))
	for _, v := range r.voices {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Rescan rebuilds the catalog from the voice directories.
func (r *Registry) Rescan() error {
	voices := make(map[string]tts.Voice)
	aliases := make(map[string]string)

	for _, dir := range r.dirs {
		langDirs, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		for _, langEntry := range langDirs {
			if !langEntry.IsDir() {
				continue
			}
			lang := langEntry.Name()
			voiceDirs, err := os.ReadDir(filepath.Join(dir, lang))
			if err != nil {
				log.Warn("skipping unreadable language dir", "dir", lang, "error", err)
				continue
			}
			for _, voiceEntry := range voiceDirs {
				if !voiceEntry.IsDir() {
					continue
				}
				voiceDir := filepath.Join(dir, lang, voiceEntry.Name())
				voice, err := loadVoice(voiceDir, lang, voiceEntry.Name())
				if err != nil {
					log.Warn("skipping voice", "dir", voiceDir, "error", err)
					continue
				}
				voices[voice.Key] = voice
				for _, alias := range voice.Aliases {
					aliases[alias] = voice.Key
				}
			}
		}
	}

	r.mu.Lock()
	r.voices = voices
	r.aliases = aliases
	r.mu.Unlock()

	log.Debug("voice catalog rebuilt", "voices", len(voices))
	return nil
}

// loadVoice reads a single voice directory. The directory name is
// name_quality and the parent directory is the language.
func loadVoice(dir, lang, dirName string) (tts.Voice, error) {
	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if err != nil {
		return tts.Voice{}, err
	}

	var cfg voiceConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return tts.Voice{}, err
	}

	name, quality := dirName, ""
	if i := strings.LastIndex(dirName, "_"); i >= 0 {
		name, quality = dirName[:i], dirName[i+1:]
	}
	if cfg.Name != "" {
		name = cfg.Name
	}
	if cfg.Quality != "" {
		quality = cfg.Quality
	}
	if cfg.Language != "" {
		lang = cfg.Language
	}

	voice := tts.Voice{
		Key:        lang + "/" + name + "_" + quality,
		Name:       name,
		Language:   lang,
		Quality:    quality,
		Phonemizer: phonemizerVariant(cfg.Phonemizer),
		SampleRate: cfg.SampleRate,
		ModelPath:  filepath.Join(dir, cfg.Model),
		Params: tts.InferenceParams{
			NoiseScale:  cfg.NoiseScale,
			NoiseW:      cfg.NoiseW,
			LengthScale: tts.DefaultLengthScale,
		},
	}
	if voice.SampleRate == 0 {
		voice.SampleRate = tts.DefaultSampleRate
	}
	if cfg.NoiseScale == 0 {
		voice.Params.NoiseScale = tts.DefaultNoiseScale
	}
	if cfg.NoiseW == 0 {
		voice.Params.NoiseW = tts.DefaultNoiseW
	}
	if cfg.Model == "" {
		voice.ModelPath = ""
	}

	voice.Speakers = readLines(filepath.Join(dir, speakersFile))
	voice.Aliases = readLines(filepath.Join(dir, aliasesFile))
	voice.IDTable = readPhonemeTable(filepath.Join(dir, phonemesFile))

	return voice, nil
}

func phonemizerVariant(s string) tts.PhonemizerVariant {
	switch s {
	case "lexicon":
		return tts.VariantLexicon
	case "rule":
		return tts.VariantRule
	default:
		return tts.VariantChars
	}
}

// readLines returns the non-empty lines of a file, or nil when the
// file is absent.
func readLines(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// readPhonemeTable parses a phoneme-to-id mapping, one "id symbol"
// pair per line.
func readPhonemeTable(path string) map[string]int64 {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	table := make(map[string]int64)
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			continue
		}
		table[fields[1]] = id
	}
	if len(table) == 0 {
		return nil
	}
	return table
}

// Watch refreshes the catalog whenever a voice directory changes.
// Stop with Close.
func (r *Registry) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error("error creating fsnotify watcher", "error", err)
		return err
	}
	for _, dir := range r.dirs {
		if err := watcher.Add(dir); err != nil {
			log.Debug("not watching dir", "dir", dir, "error", err)
			continue
		}
		log.Info("fsnotify watching dir", "dir", dir)
	}

	r.mu.Lock()
	r.watcher = watcher
	r.done = make(chan struct{})
	r.mu.Unlock()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Write) {
					continue
				}
				log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
				if err := r.Rescan(); err != nil {
					log.Error("voice rescan failed", "error", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Debug("fsnotify error", "error", err)
			case <-r.done:
				return
			}
		}
	}()
	return nil
}

// Close stops the directory watcher if one is running.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.watcher == nil {
		return nil
	}
	close(r.done)
	err := r.watcher.Close()
	r.watcher = nil
	return err
}
