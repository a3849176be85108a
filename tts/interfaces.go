package tts

import "context"

// Phonemizer converts normalized text into ordered phoneme symbol
// sequences, one slice per word. Implementations may return valid
// phonemes together with a recoverable error (ErrUnsupportedFormat,
// ErrUnsupportedNormalization) when a say-as hint could not be
// honored; callers should record the warning and keep the degraded
// output.
type Phonemizer interface {
	// Phonemize converts free text in the given language.
	Phonemize(text, language string) ([][]string, error)

	// PhonemizeSayAs converts text under an explicit say-as hint.
	PhonemizeSayAs(text, language string, hint SayAsHint) ([][]string, error)
}

// RenderRequest is the input to the acoustic model.
type RenderRequest struct {
	PhonemeIDs  []int64
	SpeakerID   int
	NoiseScale  float64
	NoiseW      float64
	LengthScale float64

	// Model is the opaque on-disk model reference from the voice.
	Model string

	// SampleRate is the rate the voice's model produces audio at.
	// Renderers tag their output with it; zero means the default.
	SampleRate int

	// Deterministic requests reproducible output for identical input.
	Deterministic bool
}

// Renderer is the black-box acoustic model: phoneme ids in, audio
// samples out. Samples are 16-bit mono little-endian PCM.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (samples []byte, sampleRate int, err error)
}

// Registry resolves voice keys and reports available voices. Reads
// are safe for concurrent use; registering new voices must not be
// observable mid-update.
type Registry interface {
	// Voices lists every known voice.
	Voices() []Voice

	// Resolve maps a voice key ("language/name_quality[#speaker]") to
	// a concrete voice and speaker id. Resolution is pure and
	// idempotent.
	Resolve(key string) (Voice, int, error)

	// EnsureLocal materializes the voice's model locally and returns
	// its path. Downloading absent voices is the caller's
	// collaborator; EnsureLocal only unpacks what is already on disk.
	EnsureLocal(key string) (string, error)
}
