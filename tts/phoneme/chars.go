package phoneme

import (
	"fmt"
	"strings"

	"github.com/dgnsrekt/vocalize/tts"
	"github.com/dgnsrekt/vocalize/tts/segment"
)

// Chars is the passthrough phonemizer for character-level voices:
// every codepoint of the input is its own symbol and no text
// normalization is applied. Numbers, dates and currency reach the
// model exactly as written.
type Chars struct{}

// NewChars creates a character phonemizer.
func NewChars() *Chars {
	return &Chars{}
}

// Phonemize splits text into words on whitespace and each word into
// its codepoints. The text itself is never rewritten.
func (p *Chars) Phonemize(text, language string) ([][]string, error) {
	var words [][]string
	for _, field := range strings.Fields(text) {
		word := make([]string, 0, len(field))
		for _, r := range field {
			word = append(word, string(r))
		}
		words = append(words, word)
	}
	return words, nil
}

// PhonemizeSayAs honors only the spelling hints, which need no text
// rewriting. Anything else cannot be expanded without normalization,
// so the span passes through as characters with a recoverable error.
func (p *Chars) PhonemizeSayAs(text, language string, hint tts.SayAsHint) ([][]string, error) {
	switch hint.InterpretAs {
	case "spell-out", "characters", "letters":
		expanded, err := segment.ExpandSayAs(text, hint, language)
		if err != nil {
			return p.phonemizeVerbatim(text), err
		}
		return p.Phonemize(expanded, language)
	}

	words, _ := p.Phonemize(text, language)
	return words, fmt.Errorf("%w: character voice cannot interpret %q",
		tts.ErrUnsupportedNormalization, hint.InterpretAs)
}

func (p *Chars) phonemizeVerbatim(text string) [][]string {
	words, _ := p.Phonemize(text, "")
	return words
}
