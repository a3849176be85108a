package tts

import (
	"reflect"
	"testing"
)

func TestPhonemeIDsWithTable(t *testing.T) {
	voice := Voice{
		IDTable: map[string]int64{
			PhonemePad: 0,
			PhonemeBOS: 1,
			PhonemeEOS: 2,
			"h":        10,
			"i":        11,
			"oʊ":       12,
		},
	}

	tests := []struct {
		name  string
		words [][]string
		want  []int64
	}{
		{
			"single word",
			[][]string{{"h", "i"}},
			[]int64{1, 10, 11, 2},
		},
		{
			"pad between words",
			[][]string{{"h", "i"}, {"oʊ"}},
			[]int64{1, 10, 11, 0, 12, 2},
		},
		{
			"unknown symbols skipped",
			[][]string{{"h", "ZZZ", "i"}},
			[]int64{1, 10, 11, 2},
		},
		{
			"empty input still wrapped",
			nil,
			[]int64{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := voice.PhonemeIDs(tt.words)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PhonemeIDs(%v) = %v, want %v", tt.words, got, tt.want)
			}
		})
	}
}

func TestPhonemeIDsWithoutTable(t *testing.T) {
	voice := Voice{}

	got := voice.PhonemeIDs([][]string{{"a", "b"}})
	want := []int64{'a', 'b'}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PhonemeIDs = %v, want codepoints %v", got, want)
	}

	// No begin/end markers without a table.
	if len(voice.PhonemeIDs(nil)) != 0 {
		t.Error("empty input without table should produce no ids")
	}
}

func TestDocumentMarks(t *testing.T) {
	doc := &Document{
		Utterances: []Utterance{
			{Index: 0, MarksBefore: []string{"start"}},
			{Index: 1},
			{Index: 2, MarksBefore: []string{"mid-a", "mid-b"}},
		},
		TrailingMarks: []string{"end"},
	}

	got := doc.Marks()
	want := []Mark{
		{Name: "start", Index: 0},
		{Name: "mid-a", Index: 2},
		{Name: "mid-b", Index: 2},
		{Name: "end", Index: 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Marks() = %v, want %v", got, want)
	}
}

func TestVoiceMultispeaker(t *testing.T) {
	if (Voice{}).Multispeaker() {
		t.Error("voice without speakers is not multispeaker")
	}
	if (Voice{Speakers: []string{"a"}}).Multispeaker() {
		t.Error("single speaker is not multispeaker")
	}
	if !(Voice{Speakers: []string{"a", "b"}}).Multispeaker() {
		t.Error("two speakers is multispeaker")
	}
}

func TestPhonemeInput(t *testing.T) {
	u := Utterance{Text: "W3C", Alias: "World Wide Web Consortium"}
	if got := u.PhonemeInput(); got != "World Wide Web Consortium" {
		t.Errorf("PhonemeInput() = %q, want the alias", got)
	}

	plain := Utterance{Text: "hello"}
	if got := plain.PhonemeInput(); got != "hello" {
		t.Errorf("PhonemeInput() = %q, want the text", got)
	}
}
