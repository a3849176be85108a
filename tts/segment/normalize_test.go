package segment

import (
	"errors"
	"testing"

	"github.com/dgnsrekt/vocalize/tts"
)

func TestCardinalWords(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "zero"},
		{7, "seven"},
		{13, "thirteen"},
		{20, "twenty"},
		{21, "twenty one"},
		{100, "one hundred"},
		{101, "one hundred one"},
		{999, "nine hundred ninety nine"},
		{1000, "one thousand"},
		{1234, "one thousand two hundred thirty four"},
		{1_000_000, "one million"},
		{-5, "minus five"},
	}

	for _, tt := range tests {
		if got := CardinalWords(tt.n); got != tt.want {
			t.Errorf("CardinalWords(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestOrdinalWords(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{1, "first"},
		{2, "second"},
		{3, "third"},
		{4, "fourth"},
		{5, "fifth"},
		{8, "eighth"},
		{9, "ninth"},
		{12, "twelfth"},
		{20, "twentieth"},
		{21, "twenty first"},
		{100, "one hundredth"},
	}

	for _, tt := range tests {
		if got := OrdinalWords(tt.n); got != tt.want {
			t.Errorf("OrdinalWords(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestYearWords(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{2020, "twenty twenty"},
		{1984, "nineteen eighty four"},
		{2005, "two thousand five"},
		{1907, "nineteen oh seven"},
		{1900, "nineteen hundred"},
		{2000, "two thousand"},
		{800, "eight hundred"},
	}

	for _, tt := range tests {
		if got := YearWords(tt.n); got != tt.want {
			t.Errorf("YearWords(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		text string
		lang string
		want string
	}{
		{
			"integer",
			"I have 3 cats",
			"en_US",
			"I have three cats",
		},
		{
			"decimal",
			"pi is 3.14",
			"en_US",
			"pi is three point one four",
		},
		{
			"currency",
			"it costs $5.25 today",
			"en_US",
			"it costs five dollars and twenty five cents today",
		},
		{
			"one dollar singular",
			"just $1",
			"en_US",
			"just one dollar",
		},
		{
			"one cent singular",
			"exactly $2.01",
			"en_US",
			"exactly two dollars and one cent",
		},
		{
			"pounds",
			"£10 note",
			"en_GB",
			"ten pounds note",
		},
		{
			"non-english untouched",
			"ich habe 3 Katzen",
			"de_DE",
			"ich habe 3 Katzen",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.text, tt.lang); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExpandSayAs(t *testing.T) {
	tests := []struct {
		name string
		text string
		hint tts.SayAsHint
		want string
	}{
		{
			"spell out",
			"abc",
			tts.SayAsHint{InterpretAs: "spell-out"},
			"a b c",
		},
		{
			"digits",
			"123",
			tts.SayAsHint{InterpretAs: "digits"},
			"one two three",
		},
		{
			"cardinal",
			"42",
			tts.SayAsHint{InterpretAs: "number"},
			"forty two",
		},
		{
			"ordinal interpretation",
			"2",
			tts.SayAsHint{InterpretAs: "ordinal"},
			"second",
		},
		{
			"ordinal via format",
			"3",
			tts.SayAsHint{InterpretAs: "number", Format: "ordinal"},
			"third",
		},
		{
			"year format",
			"2020",
			tts.SayAsHint{InterpretAs: "number", Format: "year"},
			"twenty twenty",
		},
		{
			"iso date",
			"2021-06-15",
			tts.SayAsHint{InterpretAs: "date", Format: "mdy"},
			"june fifteenth twenty twenty one",
		},
		{
			"slash date default mdy",
			"4/1",
			tts.SayAsHint{InterpretAs: "date"},
			"april first",
		},
		{
			"time on the hour",
			"5:00",
			tts.SayAsHint{InterpretAs: "time"},
			"five o'clock",
		},
		{
			"time with minutes and meridiem",
			"9:05 am",
			tts.SayAsHint{InterpretAs: "time"},
			"nine oh five a m",
		},
		{
			"telephone",
			"555-1234",
			tts.SayAsHint{InterpretAs: "telephone"},
			"five five five one two three four",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandSayAs(tt.text, tt.hint, "en_US")
			if err != nil {
				t.Fatalf("ExpandSayAs(%q) error: %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("ExpandSayAs(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExpandSayAsUnsupported(t *testing.T) {
	got, err := ExpandSayAs("AB-", tts.SayAsHint{InterpretAs: "blood-type"}, "en_US")
	if !errors.Is(err, tts.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if got != "AB-" {
		t.Errorf("unsupported hint should return the literal text, got %q", got)
	}

	// Recoverable: processing may continue with the fallback.
	if !tts.IsRecoverable(err) {
		t.Error("unsupported format must be recoverable")
	}
}
