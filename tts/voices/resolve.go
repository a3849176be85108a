package voices

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/dgnsrekt/vocalize/tts"
)

// maxSuggestions caps the did-you-mean list on a failed lookup.
const maxSuggestions = 3

// parsedKey is a voice key split into its parts. A key is
// language/name_quality with an optional #speaker suffix.
type parsedKey struct {
	voice   string
	speaker string
}

func parseKey(key string) (parsedKey, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return parsedKey{}, fmt.Errorf("%w: empty key", tts.ErrInvalidVoiceKey)
	}

	p := parsedKey{voice: key}
	if i := strings.Index(key, "#"); i >= 0 {
		p.voice, p.speaker = key[:i], key[i+1:]
		if p.speaker == "" {
			return parsedKey{}, fmt.Errorf("%w: empty speaker in %q", tts.ErrInvalidVoiceKey, key)
		}
	}
	if p.voice == "" {
		return parsedKey{}, fmt.Errorf("%w: %q", tts.ErrInvalidVoiceKey, key)
	}
	return p, nil
}

// Resolve maps a voice key to a voice and a speaker id. Lookups are
// idempotent: resolving a key the registry returned resolves to the
// same voice. Unknown voices and unknown speakers are errors, never
// silent fallbacks.
func (r *Registry) Resolve(key string) (tts.Voice, int, error) {
	p, err := parseKey(key)
	if err != nil {
		return tts.Voice{}, 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	name := p.voice
	if target, ok := r.aliases[name]; ok {
		name = target
	}

	voice, ok := r.voices[name]
	if !ok {
		return tts.Voice{}, 0, fmt.Errorf("%w: %q%s",
			tts.ErrVoiceNotFound, p.voice, r.suggest(p.voice))
	}

	if p.speaker == "" {
		return voice, 0, nil
	}
	id, err := resolveSpeaker(voice, p.speaker)
	if err != nil {
		return tts.Voice{}, 0, err
	}
	return voice, id, nil
}

// resolveSpeaker accepts a speaker name from the voice's speaker
// list or a zero-based index.
func resolveSpeaker(voice tts.Voice, speaker string) (int, error) {
	for i, name := range voice.Speakers {
		if name == speaker {
			return i, nil
		}
	}

	if id, err := strconv.Atoi(speaker); err == nil {
		limit := len(voice.Speakers)
		if limit == 0 {
			limit = 1
		}
		if id >= 0 && id < limit {
			return id, nil
		}
	}

	return 0, fmt.Errorf("%w: %q has no speaker %q", tts.ErrSpeakerNotFound, voice.Key, speaker)
}

// suggest formats a did-you-mean suffix from fuzzy-matching known
// keys, or an empty string when nothing is close.
func (r *Registry) suggest(key string) string {
	keys := make([]string, 0, len(r.voices))
	for k := range r.voices {
		keys = append(keys, k)
	}
	matches := fuzzy.Find(key, keys)
	if len(matches) == 0 {
		return ""
	}
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Str
	}
	return " (did you mean " + strings.Join(names, ", ") + "?)"
}
