// Package phoneme provides the phonemization strategies voices select
// from: dictionary lookup with rule fallback, a pure rule engine, and
// character passthrough.
package phoneme

import (
	"strings"
	"unicode"

	"github.com/dgnsrekt/vocalize/tts"
)

// ForVoice returns the phonemizer variant the voice is configured
// with. Unknown variants fall back to character passthrough, which
// makes no assumptions about the model's symbol set.
func ForVoice(v tts.Voice) tts.Phonemizer {
	switch v.Phonemizer {
	case tts.VariantLexicon:
		return NewLexicon()
	case tts.VariantRule:
		return NewRules()
	default:
		return NewChars()
	}
}

// tokenize splits text into lowercase word tokens, dropping
// punctuation. Clause-final punctuation becomes its own token so the
// model sees pause cues.
func tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'':
			current.WriteRune(r)
		case r == ',' || r == '.' || r == '?' || r == '!' || r == ';' || r == ':':
			flush()
			tokens = append(tokens, string(r))
		default:
			flush()
		}
	}
	flush()

	return tokens
}

// punctSymbols maps clause punctuation tokens to their phoneme
// symbols.
var punctSymbols = map[string]string{
	",": ",",
	".": ".",
	"?": "?",
	"!": "!",
	";": ";",
	":": ":",
}
