package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/dgnsrekt/vocalize/tts"
	"github.com/dgnsrekt/vocalize/tts/render"
)

func TestIsSSML(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"<speak>hi</speak>", true},
		{"  <s>hi</s>", true},
		{"hello world", false},
		{"less < than", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsSSML(tt.input); got != tt.want {
			t.Errorf("IsSSML(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSynthesizePlainText(t *testing.T) {
	s := NewSynthesizer(testRegistry(), render.NewMock(), testConfig())

	result, err := s.Synthesize(context.Background(), "Hello there. Second sentence.", false)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(result.Results) != 2 {
		t.Fatalf("got %d results, want one per sentence", len(result.Results))
	}
	if result.Results[0].SourceText != "Hello there." {
		t.Errorf("first sentence = %q", result.Results[0].SourceText)
	}
	if result.TotalDuration() <= 0 {
		t.Errorf("total duration = %v", result.TotalDuration())
	}
}

func TestSynthesizeSSML(t *testing.T) {
	s := NewSynthesizer(testRegistry(), render.NewMock(), testConfig())

	result, err := s.Synthesize(context.Background(),
		`<speak><s>One sentence, kept whole.</s></speak>`, false)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(result.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(result.Results))
	}
}

func TestSynthesizeForcedSSML(t *testing.T) {
	s := NewSynthesizer(testRegistry(), render.NewMock(), testConfig())

	// Without a leading angle bracket the input only parses as SSML
	// when forced; a bare fragment is wrapped in a speak root.
	result, err := s.Synthesize(context.Background(), "Forced markup.", true)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(result.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(result.Results))
	}
}

func TestSynthesizeEmpty(t *testing.T) {
	s := NewSynthesizer(testRegistry(), render.NewMock(), testConfig())

	for _, input := range []string{"", "   "} {
		if _, err := s.Synthesize(context.Background(), input, false); !errors.Is(err, tts.ErrEmptyDocument) {
			t.Errorf("Synthesize(%q) err = %v, want ErrEmptyDocument", input, err)
		}
	}
}

func TestSynthesizeUnknownDefaultVoice(t *testing.T) {
	mock := render.NewMock()
	cfg := Config{DefaultVoice: "fr_FR/ghost_low"}
	s := NewSynthesizer(testRegistry(), mock, cfg)

	_, err := s.Synthesize(context.Background(), "Hello.", false)
	if !errors.Is(err, tts.ErrVoiceNotFound) {
		t.Fatalf("err = %v, want ErrVoiceNotFound", err)
	}
	if mock.Calls() != 0 {
		t.Error("nothing must render when the default voice is unknown")
	}
}

func TestSynthesizeMalformedSSML(t *testing.T) {
	s := NewSynthesizer(testRegistry(), render.NewMock(), testConfig())

	_, err := s.Synthesize(context.Background(), "<speak><s>unclosed</speak>", false)
	if !errors.Is(err, tts.ErrMalformedSSML) {
		t.Fatalf("err = %v, want ErrMalformedSSML", err)
	}
}

func TestStreamDocumentError(t *testing.T) {
	cfg := Config{DefaultVoice: "fr_FR/ghost_low"}
	s := NewSynthesizer(testRegistry(), render.NewMock(), cfg)

	var items []Item
	for item := range s.Stream(context.Background(), "Hello.", false) {
		items = append(items, item)
	}

	if len(items) != 1 {
		t.Fatalf("got %d items, want a single error item", len(items))
	}
	if !errors.Is(items[0].Err, tts.ErrVoiceNotFound) {
		t.Errorf("err = %v, want ErrVoiceNotFound", items[0].Err)
	}
}

func TestStreamPlainText(t *testing.T) {
	s := NewSynthesizer(testRegistry(), render.NewMock(), testConfig())

	var results int
	for item := range s.Stream(context.Background(), "One. Two. Three.", false) {
		if item.Err != nil {
			t.Fatalf("stream error: %v", item.Err)
		}
		results++
	}
	if results != 3 {
		t.Errorf("got %d results, want 3", results)
	}
}
