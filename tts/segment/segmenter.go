// Package segment provides sentence segmentation and locale-aware
// text normalization for synthesis.
package segment

import (
	"regexp"
	"strings"
	"unicode"
)

// Sentence is one segmented span of input text.
type Sentence struct {
	Text string
}

// Segmenter splits raw text into sentences. It is safe for reuse
// across spans; Segment is restartable and has no carried state.
type Segmenter struct {
	// Paragraphs treats blank lines as hard boundaries and single
	// line breaks as soft whitespace.
	Paragraphs bool

	sentenceEndRegex *regexp.Regexp
	blankLineRegex   *regexp.Regexp
	abbreviations    map[string]bool
}

// NewSegmenter creates a segmenter with compiled boundary patterns.
func NewSegmenter() *Segmenter {
	return &Segmenter{
		// Sentence-ending punctuation, optional trailing quotes or
		// brackets, then whitespace or end of input.
		sentenceEndRegex: regexp.MustCompile(`([.!?]+)(["')\]]*)(\s+|$)`),
		blankLineRegex:   regexp.MustCompile(`\n[ \t]*\n`),
		abbreviations:    makeAbbreviationMap(),
	}
}

// Segment splits text into sentences for the given language. Line
// breaks are treated as plain whitespace unless Paragraphs is set, in
// which case blank lines are hard boundaries.
func (s *Segmenter) Segment(text, language string) []Sentence {
	var sentences []Sentence

	if s.Paragraphs {
		for _, para := range s.blankLineRegex.Split(text, -1) {
			sentences = append(sentences, s.splitSentences(para)...)
		}
		return sentences
	}

	return s.splitSentences(text)
}

func (s *Segmenter) splitSentences(text string) []Sentence {
	text = collapseWhitespace(text)
	if text == "" {
		return nil
	}

	var sentences []Sentence
	start := 0

	for _, loc := range s.sentenceEndRegex.FindAllStringSubmatchIndex(text, -1) {
		end := loc[5] // end of trailing quotes/brackets group
		if end < 0 {
			end = loc[3]
		}

		candidate := strings.TrimSpace(text[start:end])
		if candidate == "" {
			continue
		}

		punct := text[loc[2]:loc[3]]
		if punct == "." && s.isAbbreviation(candidate) {
			// Not a boundary, keep accumulating.
			continue
		}

		sentences = append(sentences, Sentence{Text: candidate})
		start = loc[1]
	}

	if rest := strings.TrimSpace(text[start:]); rest != "" {
		sentences = append(sentences, Sentence{Text: rest})
	}

	return sentences
}

// isAbbreviation checks whether the sentence candidate ends in a word
// that is an abbreviation or a single initial rather than a true
// sentence boundary.
func (s *Segmenter) isAbbreviation(candidate string) bool {
	fields := strings.Fields(candidate)
	if len(fields) == 0 {
		return false
	}

	last := strings.TrimSuffix(fields[len(fields)-1], ".")
	last = strings.ToLower(last)

	if len([]rune(last)) == 1 && unicode.IsLetter([]rune(last)[0]) {
		// Single initial, e.g. "J." in "J. Smith".
		return true
	}

	return s.abbreviations[last]
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func makeAbbreviationMap() map[string]bool {
	abbrevs := []string{
		"mr", "mrs", "ms", "dr", "prof", "sr", "jr", "st",
		"i.e", "e.g", "etc", "vs", "inc", "ltd", "co", "corp",
		"no", "vol", "pg", "pp", "ed", "est", "dept", "approx",
		"jan", "feb", "mar", "apr", "jun", "jul", "aug",
		"sep", "sept", "oct", "nov", "dec",
		"mon", "tue", "wed", "thu", "fri", "sat", "sun",
		"ave", "blvd", "rd", "ft", "hr", "min", "sec",
		"u.s", "u.k", "u.n", "e.u",
	}

	m := make(map[string]bool, len(abbrevs))
	for _, a := range abbrevs {
		m[a] = true
	}
	return m
}
