package phoneme

import (
	"strings"

	"github.com/dgnsrekt/vocalize/tts"
	"github.com/dgnsrekt/vocalize/tts/segment"
)

// Lexicon is the dictionary-based phonemizer: words are looked up in
// a pronunciation dictionary, out-of-vocabulary words fall back to
// the rule engine's grapheme-to-phoneme conversion. Given the same
// dictionary the output is deterministic.
type Lexicon struct {
	entries  map[string]string
	fallback *Rules
}

// NewLexicon creates a lexicon phonemizer with the embedded
// dictionary.
func NewLexicon() *Lexicon {
	return &Lexicon{
		entries:  englishLexicon,
		fallback: NewRules(),
	}
}

// Phonemize converts normalized free text word by word.
func (p *Lexicon) Phonemize(text, language string) ([][]string, error) {
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

// PhonemizeSayAs expands the span under the hint first, then
// phonemizes the expansion. An unsupported format degrades to the
// literal text; the warning is propagated alongside the phonemes.
func (p *Lexicon) PhonemizeSayAs(text, language string, hint tts.SayAsHint) ([][]string, error) {
	expanded, expandErr := segment.ExpandSayAs(text, hint, language)
	words, err := p.Phonemize(expanded, language)
	if err != nil {
		return words, err
	}
	return words, expandErr
}

func (p *Lexicon) wordToPhonemes(word, language string) []string {
	if entry, ok := p.entries[word]; ok {
		return strings.Split(entry, " ")
	}
	// Out of vocabulary: grapheme-to-phoneme fallback.
	return p.fallback.wordToPhonemes(word, language)
}

// englishLexicon is a compact pronunciation dictionary for common
// English words, IPA symbols separated by spaces.
var englishLexicon = map[string]string{
	"a":         "ə",
	"about":     "ə b aʊ t",
	"after":     "æ f t ɚ",
	"again":     "ə ɡ ɛ n",
	"all":       "ɔː l",
	"also":      "ɔː l s oʊ",
	"an":        "æ n",
	"and":       "æ n d",
	"any":       "ɛ n i",
	"are":       "ɑːɹ",
	"as":        "æ z",
	"at":        "æ t",
	"be":        "b iː",
	"because":   "b ɪ k ʌ z",
	"been":      "b ɪ n",
	"before":    "b ɪ f ɔːɹ",
	"but":       "b ʌ t",
	"by":        "b aɪ",
	"can":       "k æ n",
	"could":     "k ʊ d",
	"day":       "d eɪ",
	"do":        "d uː",
	"down":      "d aʊ n",
	"each":      "iː tʃ",
	"eight":     "eɪ t",
	"every":     "ɛ v ɹ i",
	"first":     "f ɜː s t",
	"five":      "f aɪ v",
	"for":       "f ɔːɹ",
	"four":      "f ɔːɹ",
	"from":      "f ɹ ʌ m",
	"get":       "ɡ ɛ t",
	"give":      "ɡ ɪ v",
	"go":        "ɡ oʊ",
	"good":      "ɡ ʊ d",
	"had":       "h æ d",
	"has":       "h æ z",
	"have":      "h æ v",
	"he":        "h iː",
	"hello":     "h ə l oʊ",
	"her":       "h ɜː",
	"here":      "h ɪ ɹ",
	"him":       "h ɪ m",
	"his":       "h ɪ z",
	"how":       "h aʊ",
	"hundred":   "h ʌ n d ɹ ə d",
	"i":         "aɪ",
	"if":        "ɪ f",
	"in":        "ɪ n",
	"into":      "ɪ n t uː",
	"is":        "ɪ z",
	"it":        "ɪ t",
	"its":       "ɪ t s",
	"just":      "dʒ ʌ s t",
	"know":      "n oʊ",
	"like":      "l aɪ k",
	"little":    "l ɪ t ə l",
	"long":      "l ɒ ŋ",
	"look":      "l ʊ k",
	"made":      "m eɪ d",
	"make":      "m eɪ k",
	"many":      "m ɛ n i",
	"may":       "m eɪ",
	"me":        "m iː",
	"million":   "m ɪ l j ə n",
	"more":      "m ɔːɹ",
	"most":      "m oʊ s t",
	"much":      "m ʌ tʃ",
	"my":        "m aɪ",
	"new":       "n juː",
	"nine":      "n aɪ n",
	"no":        "n oʊ",
	"not":       "n ɒ t",
	"now":       "n aʊ",
	"of":        "ɒ v",
	"oh":        "oʊ",
	"on":        "ɒ n",
	"one":       "w ʌ n",
	"only":      "oʊ n l i",
	"or":        "ɔːɹ",
	"other":     "ʌ ð ɚ",
	"our":       "aʊ ɚ",
	"out":       "aʊ t",
	"over":      "oʊ v ɚ",
	"people":    "p iː p ə l",
	"point":     "p ɔɪ n t",
	"said":      "s ɛ d",
	"second":    "s ɛ k ə n d",
	"see":       "s iː",
	"seven":     "s ɛ v ə n",
	"she":       "ʃ iː",
	"six":       "s ɪ k s",
	"so":        "s oʊ",
	"some":      "s ʌ m",
	"speech":    "s p iː tʃ",
	"ten":       "t ɛ n",
	"text":      "t ɛ k s t",
	"than":      "ð æ n",
	"that":      "ð æ t",
	"the":       "ð ə",
	"their":     "ð ɛ ɹ",
	"them":      "ð ɛ m",
	"then":      "ð ɛ n",
	"there":     "ð ɛ ɹ",
	"these":     "ð iː z",
	"they":      "ð eɪ",
	"third":     "θ ɜː d",
	"thirty":    "θ ɜː t i",
	"this":      "ð ɪ s",
	"thousand":  "θ aʊ z ə n d",
	"three":     "θ ɹ iː",
	"time":      "t aɪ m",
	"to":        "t uː",
	"twenty":    "t w ɛ n t i",
	"two":       "t uː",
	"up":        "ʌ p",
	"use":       "j uː z",
	"very":      "v ɛ ɹ i",
	"was":       "w ɒ z",
	"water":     "w ɔː t ɚ",
	"way":       "w eɪ",
	"we":        "w iː",
	"well":      "w ɛ l",
	"were":      "w ɜː",
	"what":      "w ɒ t",
	"when":      "w ɛ n",
	"where":     "w ɛ ɹ",
	"which":     "w ɪ tʃ",
	"who":       "h uː",
	"will":      "w ɪ l",
	"with":      "w ɪ ð",
	"word":      "w ɜː d",
	"world":     "w ɜː l d",
	"would":     "w ʊ d",
	"year":      "j ɪ ɹ",
	"you":       "j uː",
	"your":      "j ɔːɹ",
	"zero":      "z ɪ ɹ oʊ",
}
