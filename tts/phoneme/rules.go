package phoneme

import (
	"strings"

	"github.com/dgnsrekt/vocalize/tts"
	"github.com/dgnsrekt/vocalize/tts/segment"
)

// Rules is the rule-based phonemizer: a fixed letter-cluster engine
// that covers many languages without a dictionary. It accepts say-as
// hints when the normalizer supports them and otherwise ignores the
// hint without erroring.
type Rules struct {
	clusters  map[string]string
	overrides map[string]map[string]string
}

// NewRules creates the rule engine with the built-in cluster tables.
func NewRules() *Rules {
	return &Rules{
		clusters:  baseClusters,
		overrides: languageOverrides,
	}
}

// Phonemize converts normalized text using letter-cluster rules.
func (p *Rules) Phonemize(text, language string) ([][]string, error) {
	text = segment.Normalize(text, language)

	var words [][]string
	for _, token := range tokenize(text) {
		if sym, ok := punctSymbols[token]; ok {
			words = append(words, []string{sym})
			continue
		}
		if phonemes := p.wordToPhonemes(token, language); len(phonemes) > 0 {
			words = append(words, phonemes)
		}
	}
	return words, nil
}

// PhonemizeSayAs applies the hint through the normalizer when
// supported. Per the rule engine's contract an unsupported format is
// ignored silently and the literal text is phonemized.
func (p *Rules) PhonemizeSayAs(text, language string, hint tts.SayAsHint) ([][]string, error) {
	expanded, err := segment.ExpandSayAs(text, hint, language)
	if err != nil {
		// Format hints the engine cannot honor are dropped, not
		// surfaced.
		expanded = text
	}
	return p.Phonemize(expanded, language)
}

// wordToPhonemes applies greedy longest-cluster matching over the
// word's letters.
func (p *Rules) wordToPhonemes(word, language string) []string {
	base, _, _ := strings.Cut(strings.ToLower(strings.ReplaceAll(language, "_", "-")), "-")
	override := p.overrides[base]

	var phonemes []string
	runes := []rune(word)

	for i := 0; i < len(runes); {
		matched := false

		// Longest cluster first: three letters, then two.
		for size := 3; size >= 2; size-- {
			if i+size > len(runes) {
				continue
			}
			cluster := string(runes[i : i+size])
			if sym, ok := override[cluster]; ok {
				phonemes = append(phonemes, splitSymbols(sym)...)
				i += size
				matched = true
				break
			}
			if sym, ok := p.clusters[cluster]; ok {
				phonemes = append(phonemes, splitSymbols(sym)...)
				i += size
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		single := string(runes[i])
		if sym, ok := override[single]; ok {
			phonemes = append(phonemes, splitSymbols(sym)...)
		} else if sym, ok := p.clusters[single]; ok {
			phonemes = append(phonemes, splitSymbols(sym)...)
		} else {
			// Unknown letters pass through as themselves.
			phonemes = append(phonemes, single)
		}
		i++
	}

	return phonemes
}

func splitSymbols(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, " ")
}

// baseClusters is the default (English-leaning) letter-to-IPA table.
var baseClusters = map[string]string{
	// Trigraphs
	"igh": "aɪ",
	"tch": "tʃ",
	"dge": "dʒ",

	// Digraphs
	"th": "θ",
	"sh": "ʃ",
	"ch": "tʃ",
	"ph": "f",
	"wh": "w",
	"ck": "k",
	"ng": "ŋ",
	"qu": "k w",
	"ee": "iː",
	"oo": "uː",
	"ea": "iː",
	"ai": "eɪ",
	"ay": "eɪ",
	"oa": "oʊ",
	"ow": "aʊ",
	"ou": "aʊ",
	"oy": "ɔɪ",
	"oi": "ɔɪ",
	"ar": "ɑːɹ",
	"er": "ɜːɹ",
	"ir": "ɜːɹ",
	"or": "ɔːɹ",
	"ur": "ɜːɹ",

	// Single letters
	"a": "æ",
	"b": "b",
	"c": "k",
	"d": "d",
	"e": "ɛ",
	"f": "f",
	"g": "ɡ",
	"h": "h",
	"i": "ɪ",
	"j": "dʒ",
	"k": "k",
	"l": "l",
	"m": "m",
	"n": "n",
	"o": "ɒ",
	"p": "p",
	"q": "k",
	"r": "ɹ",
	"s": "s",
	"t": "t",
	"u": "ʌ",
	"v": "v",
	"w": "w",
	"x": "k s",
	"y": "j",
	"z": "z",
	"0": "z ɪ ɹ oʊ",
	"1": "w ʌ n",
	"2": "t uː",
	"3": "θ ɹ iː",
	"4": "f ɔːɹ",
	"5": "f aɪ v",
	"6": "s ɪ k s",
	"7": "s ɛ v ə n",
	"8": "eɪ t",
	"9": "n aɪ n",
}

// languageOverrides adjusts clusters for languages where the default
// table is badly wrong.
var languageOverrides = map[string]map[string]string{
	"de": {
		"sch": "ʃ",
		"ch":  "x",
		"w":   "v",
		"v":   "f",
		"z":   "t s",
		"ei":  "aɪ",
		"ie":  "iː",
		"eu":  "ɔʏ",
	},
	"es": {
		"ll": "ʝ",
		"ñ":  "ɲ",
		"rr": "r",
		"j":  "x",
		"a":  "a",
		"e":  "e",
		"i":  "i",
		"o":  "o",
		"u":  "u",
	},
	"fr": {
		"ou": "u",
		"oi": "w a",
		"ch": "ʃ",
		"u":  "y",
		"j":  "ʒ",
		"r":  "ʁ",
	},
	"nl": {
		"ij": "ɛɪ",
		"ui": "œy",
		"g":  "ɣ",
		"w":  "ʋ",
	},
}
