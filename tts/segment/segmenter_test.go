package segment

import (
	"reflect"
	"testing"
)

func sentenceTexts(sentences []Sentence) []string {
	var out []string
	for _, s := range sentences {
		out = append(out, s.Text)
	}
	return out
}

func TestSegmentBasic(t *testing.T) {
	s := NewSegmenter()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			"two sentences",
			"Hello world. How are you?",
			[]string{"Hello world.", "How are you?"},
		},
		{
			"exclamation",
			"Stop! Come back here.",
			[]string{"Stop!", "Come back here."},
		},
		{
			"no terminal punctuation",
			"an unfinished thought",
			[]string{"an unfinished thought"},
		},
		{
			"trailing quote",
			`He said "go." Then he left.`,
			[]string{`He said "go."`, "Then he left."},
		},
		{
			"empty input",
			"   ",
			nil,
		},
		{
			"newlines as whitespace",
			"First sentence.\nStill first paragraph.",
			[]string{"First sentence.", "Still first paragraph."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sentenceTexts(s.Segment(tt.text, "en_US"))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Segment(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestSegmentAbbreviations(t *testing.T) {
	s := NewSegmenter()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			"title abbreviation",
			"Dr. Smith arrived. He was late.",
			[]string{"Dr. Smith arrived.", "He was late."},
		},
		{
			"single initial",
			"J. Smith wrote it. Nobody read it.",
			[]string{"J. Smith wrote it.", "Nobody read it."},
		},
		{
			"latin abbreviation",
			"Bring fruit, e.g. apples. They keep well.",
			[]string{"Bring fruit, e.g. apples.", "They keep well."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sentenceTexts(s.Segment(tt.text, "en_US"))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Segment(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestSegmentParagraphs(t *testing.T) {
	s := NewSegmenter()
	s.Paragraphs = true

	text := "First block\n\nSecond block. Third sentence."
	got := sentenceTexts(s.Segment(text, "en_US"))
	want := []string{"First block", "Second block.", "Third sentence."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Segment = %v, want %v", got, want)
	}
}
