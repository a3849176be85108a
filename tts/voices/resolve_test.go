package voices

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgnsrekt/vocalize/tts"
)

func testRegistry() *Registry {
	return NewStatic(
		tts.Voice{
			Key:      "en_UK/apope_low",
			Language: "en_UK",
			Aliases:  []string{"apope"},
		},
		tts.Voice{
			Key:      "en_US/vctk_low",
			Language: "en_US",
			Speakers: []string{"p239", "p240", "p241"},
		},
	)
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		key     string
		voice   string
		speaker string
		wantErr bool
	}{
		{"en_UK/apope_low", "en_UK/apope_low", "", false},
		{"en_US/vctk_low#p240", "en_US/vctk_low", "p240", false},
		{"en_US/vctk_low#2", "en_US/vctk_low", "2", false},
		{"  en_UK/apope_low ", "en_UK/apope_low", "", false},
		{"", "", "", true},
		{"   ", "", "", true},
		{"voice#", "", "", true},
		{"#speaker", "", "", true},
	}

	for _, tt := range tests {
		p, err := parseKey(tt.key)
		if tt.wantErr {
			if !errors.Is(err, tts.ErrInvalidVoiceKey) {
				t.Errorf("parseKey(%q) err = %v, want ErrInvalidVoiceKey", tt.key, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseKey(%q) error: %v", tt.key, err)
			continue
		}
		if p.voice != tt.voice || p.speaker != tt.speaker {
			t.Errorf("parseKey(%q) = %q#%q, want %q#%q",
				tt.key, p.voice, p.speaker, tt.voice, tt.speaker)
		}
	}
}

func TestResolve(t *testing.T) {
	r := testRegistry()

	tests := []struct {
		key     string
		wantKey string
		wantID  int
		wantErr error
	}{
		{"en_UK/apope_low", "en_UK/apope_low", 0, nil},
		{"apope", "en_UK/apope_low", 0, nil},
		{"en_US/vctk_low", "en_US/vctk_low", 0, nil},
		{"en_US/vctk_low#p240", "en_US/vctk_low", 1, nil},
		{"en_US/vctk_low#2", "en_US/vctk_low", 2, nil},
		{"en_US/vctk_low#p999", "", 0, tts.ErrSpeakerNotFound},
		{"en_US/vctk_low#3", "", 0, tts.ErrSpeakerNotFound},
		{"en_UK/apope_low#0", "en_UK/apope_low", 0, nil},
		{"en_UK/apope_low#1", "", 0, tts.ErrSpeakerNotFound},
		{"fr_FR/nope_low", "", 0, tts.ErrVoiceNotFound},
	}

	for _, tt := range tests {
		voice, id, err := r.Resolve(tt.key)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Resolve(%q) err = %v, want %v", tt.key, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("Resolve(%q) error: %v", tt.key, err)
			continue
		}
		if voice.Key != tt.wantKey || id != tt.wantID {
			t.Errorf("Resolve(%q) = %q speaker %d, want %q speaker %d",
				tt.key, voice.Key, id, tt.wantKey, tt.wantID)
		}
	}
}

func TestResolveIdempotent(t *testing.T) {
	r := testRegistry()

	first, _, err := r.Resolve("apope")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, _, err := r.Resolve(first.Key)
	if err != nil {
		t.Fatalf("resolving a returned key must succeed, got %v", err)
	}
	if second.Key != first.Key {
		t.Errorf("re-resolve moved from %q to %q", first.Key, second.Key)
	}
}

func TestResolveSuggestion(t *testing.T) {
	r := testRegistry()

	_, _, err := r.Resolve("en_UK/apope")
	if !errors.Is(err, tts.ErrVoiceNotFound) {
		t.Fatalf("err = %v, want ErrVoiceNotFound", err)
	}
	if !strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error %q lacks a suggestion", err)
	}
	if !strings.Contains(err.Error(), "en_UK/apope_low") {
		t.Errorf("error %q should suggest the close key", err)
	}
}
