package pipeline

import (
	"context"
	"strings"

	"github.com/dgnsrekt/vocalize/tts"
	"github.com/dgnsrekt/vocalize/tts/segment"
	"github.com/dgnsrekt/vocalize/tts/ssml"
)

// Synthesizer is the top-level entry point: it accepts plain text or
// SSML, builds a document and runs the pipeline over it.
type Synthesizer struct {
	registry  tts.Registry
	processor *ssml.Processor
	segmenter *segment.Segmenter
	pipeline  *Pipeline
	config    Config
}

// NewSynthesizer wires a synthesizer from its parts.
func NewSynthesizer(registry tts.Registry, renderer tts.Renderer, config Config) *Synthesizer {
	segmenter := segment.NewSegmenter()
	return &Synthesizer{
		registry:  registry,
		processor: ssml.NewProcessor(registry, segmenter),
		segmenter: segmenter,
		pipeline:  New(registry, renderer, config),
		config:    config,
	}
}

// IsSSML reports whether input looks like markup rather than plain
// text.
func IsSSML(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "<")
}

// Document builds the utterance sequence for the input without
// rendering anything. SSML is detected by a leading angle bracket
// unless forceSSML pins the choice.
func (s *Synthesizer) Document(input string, forceSSML bool) (*tts.Document, error) {
	voice, _, err := s.registry.Resolve(s.config.DefaultVoice)
	if err != nil {
		return nil, err
	}

	if forceSSML || IsSSML(input) {
		return s.processor.Process(input, ssml.DefaultContext(voice.Key, voice.Language))
	}
	return s.plainDocument(input, voice), nil
}

// plainDocument segments raw text into one utterance per sentence
// with identity prosody.
func (s *Synthesizer) plainDocument(input string, voice tts.Voice) *tts.Document {
	doc := &tts.Document{Language: voice.Language}
	for _, sentence := range s.segmenter.Segment(input, voice.Language) {
		doc.Utterances = append(doc.Utterances, tts.Utterance{
			Index:    len(doc.Utterances),
			Kind:     tts.KindText,
			Text:     sentence.Text,
			VoiceKey: voice.Key,
			Language: voice.Language,
			Volume:   tts.DefaultVolume,
			Rate:     tts.DefaultRate,
		})
	}
	return doc
}

// Synthesize renders the whole input synchronously, in document
// order.
func (s *Synthesizer) Synthesize(ctx context.Context, input string, forceSSML bool) (*tts.SynthesisResult, error) {
	doc, err := s.Document(input, forceSSML)
	if err != nil {
		return nil, err
	}
	if len(doc.Utterances) == 0 {
		return nil, tts.ErrEmptyDocument
	}
	return s.pipeline.Batch(ctx, doc)
}

// Stream renders the input with bounded readahead, yielding each
// unit as it finishes. Document construction errors surface as a
// single Err item.
func (s *Synthesizer) Stream(ctx context.Context, input string, forceSSML bool) <-chan Item {
	doc, err := s.Document(input, forceSSML)
	if err == nil && len(doc.Utterances) == 0 {
		err = tts.ErrEmptyDocument
	}
	if err != nil {
		out := make(chan Item, 1)
		out <- Item{Err: err}
		close(out)
		return out
	}
	return s.pipeline.Stream(ctx, doc)
}
