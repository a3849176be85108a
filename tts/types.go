// Package tts defines the data model shared by the synthesis
// front-end (SSML processing, segmentation, phonemization) and the
// rendering pipeline.
package tts

import "time"

// Prosody defaults. Volume is an absolute level in [0, 100]; rate is a
// multiplier with 1.0 as identity.
const (
	DefaultVolume = 100.0
	DefaultRate   = 1.0
)

// Default inference parameters used when a voice config does not
// declare its own.
const (
	DefaultNoiseScale  = 0.667
	DefaultNoiseW      = 0.8
	DefaultLengthScale = 1.0
	DefaultSampleRate  = 22050
)

// UtteranceKind distinguishes spoken utterances from synthetic
// silence inserted by <break>.
type UtteranceKind int

const (
	// KindText is a spoken span of text.
	KindText UtteranceKind = iota
	// KindBreak is synthetic silence with an explicit duration.
	KindBreak
)

// SayAsHint carries an SSML <say-as> interpretation for a span.
type SayAsHint struct {
	InterpretAs string // e.g. "number", "date", "spell-out"
	Format      string // interpretation-specific format, may be empty
}

// Utterance is one indivisible span scheduled for phonemization and
// rendering. Utterance order within a Document is document order and
// is never changed by the pipeline.
type Utterance struct {
	Index int           // position in document order
	Kind  UtteranceKind // text or break

	Text  string // original text span (empty for breaks)
	Alias string // substitution text for phonemization, "" = none

	VoiceKey string // resolved voice key for this span
	Language string // language inherited from markup scope

	// Prosody, resolved to absolute numeric values at parse time.
	Volume float64 // [0, 100]
	Rate   float64 // multiplier, 1.0 = normal

	// Explicit phoneme override from <phoneme>. When non-nil the
	// phonemizer is bypassed entirely.
	Phonemes        [][]string
	PhonemeAlphabet string

	SayAs *SayAsHint // say-as hint for this span, nil = free text

	// MarksBefore are mark names that occur immediately before this
	// utterance in document order.
	MarksBefore []string

	// BreakDuration is the silence length for KindBreak.
	BreakDuration time.Duration

	// WholeSentence is set for spans from <s>: the span is exactly one
	// utterance regardless of embedded punctuation.
	WholeSentence bool
	// WholeWord is set for spans from <w>/<token>: the span is one
	// indivisible token for phonemization.
	WholeWord bool
}

// IsBreak reports whether the utterance is synthetic silence.
func (u Utterance) IsBreak() bool { return u.Kind == KindBreak }

// PhonemeInput returns the text to phonemize: the <sub> alias when
// present, the original span otherwise.
func (u Utterance) PhonemeInput() string {
	if u.Alias != "" {
		return u.Alias
	}
	return u.Text
}

// Mark is a named zero-duration marker used for progress callbacks.
type Mark struct {
	Name  string
	Index int // index of the utterance the mark precedes
}

// Document is the flattened, ordered output of the SSML processor (or
// of plain-text segmentation). It is immutable once built.
type Document struct {
	Language   string
	Utterances []Utterance

	// TrailingMarks occur after the last utterance.
	TrailingMarks []string

	// Warnings collects recoverable degradations found during
	// processing (unsupported say-as formats and the like).
	Warnings []Warning
}

// Marks returns every mark in the document in emission order.
func (d *Document) Marks() []Mark {
	var marks []Mark
	for _, u := range d.Utterances {
		for _, name := range u.MarksBefore {
			marks = append(marks, Mark{Name: name, Index: u.Index})
		}
	}
	for _, name := range d.TrailingMarks {
		marks = append(marks, Mark{Name: name, Index: len(d.Utterances)})
	}
	return marks
}

// InferenceParams are the acoustic model knobs carried by a voice and
// overridable per request.
type InferenceParams struct {
	NoiseScale  float64 `json:"noise_scale" yaml:"noise_scale"`
	NoiseW      float64 `json:"noise_w" yaml:"noise_w"`
	LengthScale float64 `json:"length_scale" yaml:"length_scale"`
}

// PhonemizerVariant selects which phonemization strategy a voice uses.
type PhonemizerVariant string

const (
	// VariantLexicon looks words up in a pronunciation dictionary and
	// falls back to grapheme-to-phoneme rules for unknown words.
	VariantLexicon PhonemizerVariant = "lexicon"
	// VariantRule applies a fixed letter-cluster rule engine.
	VariantRule PhonemizerVariant = "rule"
	// VariantChars treats text characters directly as symbols.
	VariantChars PhonemizerVariant = "chars"
)

// Voice describes a trained voice known to the registry. A resolved
// Voice is immutable for the duration of a request.
type Voice struct {
	Key      string // "<language>/<name_quality>"
	Name     string // human-readable name
	Language string // e.g. "en_UK"
	Quality  string // e.g. "low"

	Phonemizer PhonemizerVariant

	// Speakers lists speaker names in id order. Empty means
	// single-speaker.
	Speakers []string

	SampleRate int
	Params     InferenceParams

	// ModelPath is an opaque reference to the on-disk model, consumed
	// by the renderer.
	ModelPath string

	// Aliases are alternative keys accepted by Resolve.
	Aliases []string

	// phoneme symbol -> model input id, loaded from the voice's
	// phoneme table when available.
	IDTable map[string]int64
}

// Multispeaker reports whether the voice declares more than one
// speaker.
func (v Voice) Multispeaker() bool { return len(v.Speakers) > 1 }

// Meta phoneme symbols for id encoding.
const (
	PhonemePad = "_"
	PhonemeBOS = "^"
	PhonemeEOS = "$"
)

// PhonemeIDs encodes word phoneme sequences into model input ids
// using the voice's id table. Words are separated by the pad symbol;
// the sequence is wrapped with begin/end markers when the table
// declares them. Symbols missing from the table are skipped. With no
// table at all, codepoints serve as ids so tests and passthrough
// voices still produce deterministic input.
func (v Voice) PhonemeIDs(words [][]string) []int64 {
	var ids []int64

	lookup := func(symbol string) (int64, bool) {
		if v.IDTable != nil {
			id, ok := v.IDTable[symbol]
			return id, ok
		}
		for _, r := range symbol {
			return int64(r), true
		}
		return 0, false
	}

	if id, ok := lookup(PhonemeBOS); ok && v.IDTable != nil {
		ids = append(ids, id)
	}

	for wi, word := range words {
		if wi > 0 {
			if id, ok := lookup(PhonemePad); ok {
				ids = append(ids, id)
			}
		}
		for _, symbol := range word {
			if id, ok := lookup(symbol); ok {
				ids = append(ids, id)
			}
		}
	}

	if id, ok := lookup(PhonemeEOS); ok && v.IDTable != nil {
		ids = append(ids, id)
	}

	return ids
}

// PhonemizedUnit is an utterance with everything resolved: phoneme
// symbols, voice, speaker and inference parameters. This is the unit
// handed to the renderer.
type PhonemizedUnit struct {
	Utterance Utterance
	Phonemes  [][]string
	Voice     Voice
	SpeakerID int
	Params    InferenceParams
}

// AudioResult is one rendered unit: raw 16-bit mono little-endian PCM
// samples plus the source text and any marks crossed immediately
// before the unit.
type AudioResult struct {
	Samples    []byte
	SampleRate int
	SourceText string
	Marks      []string
	Duration   time.Duration
}

// SynthesisResult is the ordered output of a batch synthesis request.
type SynthesisResult struct {
	Results       []AudioResult
	TrailingMarks []string
	Warnings      []Warning
}

// TotalDuration sums the duration of every rendered unit.
func (r *SynthesisResult) TotalDuration() time.Duration {
	var total time.Duration
	for _, res := range r.Results {
		total += res.Duration
	}
	return total
}
