// Package pipeline drives synthesis: it turns processed documents
// into audio through phonemization, id mapping and rendering, in
// batch or streaming mode.
package pipeline

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/vocalize/tts"
	"github.com/dgnsrekt/vocalize/tts/audio"
	"github.com/dgnsrekt/vocalize/tts/phoneme"
)

// resultQueueSize bounds how far the producer may run ahead of the
// consumer in streaming mode.
const resultQueueSize = 5

// Config controls pipeline behavior.
type Config struct {
	// DefaultVoice is used for utterances without a voice of their
	// own. Required.
	DefaultVoice string
	// NoiseScale, NoiseW and LengthScale override the voice's own
	// inference parameters when non-zero.
	NoiseScale  float64
	NoiseW      float64
	LengthScale float64
	// Deterministic zeroes the noise parameters so identical input
	// yields identical audio.
	Deterministic bool
	// FailFast aborts the whole run on the first unit failure
	// instead of skipping the unit.
	FailFast bool
}

// Pipeline synthesizes documents against a voice registry and a
// renderer.
type Pipeline struct {
	registry tts.Registry
	renderer tts.Renderer
	config   Config

	phonemizers map[tts.PhonemizerVariant]tts.Phonemizer
}

// New creates a pipeline.
func New(registry tts.Registry, renderer tts.Renderer, config Config) *Pipeline {
	return &Pipeline{
		registry: registry,
		renderer: renderer,
		config:   config,
		phonemizers: map[tts.PhonemizerVariant]tts.Phonemizer{
			tts.VariantLexicon: phoneme.NewLexicon(),
			tts.VariantRule:    phoneme.NewRules(),
			tts.VariantChars:   phoneme.NewChars(),
		},
	}
}

// Batch synthesizes every utterance of the document in order and
// returns all results at once. Unit failures are skipped and
// reported as warnings unless FailFast is set.
func (p *Pipeline) Batch(ctx context.Context, doc *tts.Document) (*tts.SynthesisResult, error) {
	result := &tts.SynthesisResult{
		TrailingMarks: doc.TrailingMarks,
		Warnings:      doc.Warnings,
	}

	for i := range doc.Utterances {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := p.synthesizeUnit(ctx, &doc.Utterances[i])
		if err != nil {
			if !tts.IsRecoverable(err) {
				return nil, err
			}
			unitErr := &tts.UnitError{
				Index: doc.Utterances[i].Index,
				Text:  doc.Utterances[i].Text,
				Err:   err,
			}
			if p.config.FailFast {
				return nil, unitErr
			}
			log.Warn("skipping unit", "index", unitErr.Index, "error", err)
			result.Warnings = append(result.Warnings, tts.Warning{Err: unitErr})
			continue
		}
		if warn := res.warning; warn != nil {
			result.Warnings = append(result.Warnings, *warn)
		}
		result.Results = append(result.Results, res.audio)
	}

	return result, nil
}

// Item is one streaming result. Exactly one of Result and Err is
// set; a recoverable Err item is followed by further results unless
// FailFast is on.
type Item struct {
	Result *tts.AudioResult
	Err    error
}

// Stream synthesizes the document with a single producer feeding a
// bounded channel. The producer blocks when the consumer falls
// resultQueueSize units behind, and stops at the next unit boundary
// once ctx is canceled. The channel always closes.
func (p *Pipeline) Stream(ctx context.Context, doc *tts.Document) <-chan Item {
	out := make(chan Item, resultQueueSize)

	go func() {
		defer close(out)

		for i := range doc.Utterances {
			if ctx.Err() != nil {
				return
			}

			res, err := p.synthesizeUnit(ctx, &doc.Utterances[i])
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if !tts.IsRecoverable(err) {
					p.send(ctx, out, Item{Err: err})
					return
				}
				unitErr := &tts.UnitError{
					Index: doc.Utterances[i].Index,
					Text:  doc.Utterances[i].Text,
					Err:   err,
				}
				if !p.send(ctx, out, Item{Err: unitErr}) {
					return
				}
				if p.config.FailFast {
					return
				}
				continue
			}

			audioCopy := res.audio
			if !p.send(ctx, out, Item{Result: &audioCopy}) {
				return
			}
		}

		if len(doc.TrailingMarks) > 0 {
			p.send(ctx, out, Item{Result: &tts.AudioResult{Marks: doc.TrailingMarks}})
		}
	}()

	return out
}

func (p *Pipeline) send(ctx context.Context, out chan<- Item, item Item) bool {
	select {
	case out <- item:
		return true
	case <-ctx.Done():
		return false
	}
}

type unitResult struct {
	audio   tts.AudioResult
	warning *tts.Warning
}

// synthesizeUnit runs one utterance end to end.
func (p *Pipeline) synthesizeUnit(ctx context.Context, u *tts.Utterance) (unitResult, error) {
	voiceKey := u.VoiceKey
	if voiceKey == "" {
		voiceKey = p.config.DefaultVoice
	}
	voice, speakerID, err := p.registry.Resolve(voiceKey)
	if err != nil {
		return unitResult{}, err
	}

	if u.IsBreak() {
		rate := voice.SampleRate
		return unitResult{audio: tts.AudioResult{
			Samples:    audio.Silence(u.BreakDuration, rate),
			SampleRate: rate,
			Marks:      u.MarksBefore,
			Duration:   u.BreakDuration,
		}}, nil
	}

	unit, warning, err := p.phonemizeUnit(u, voice, speakerID)
	if err != nil {
		return unitResult{}, err
	}

	samples, sampleRate, err := p.render(ctx, unit)
	if err != nil {
		return unitResult{}, fmt.Errorf("%w: %v", tts.ErrUnitSynthesisFailed, err)
	}

	if u.Volume < tts.DefaultVolume {
		samples = audio.ApplyGain(samples, u.Volume)
	}

	return unitResult{
		audio: tts.AudioResult{
			Samples:    samples,
			SampleRate: sampleRate,
			SourceText: u.Text,
			Marks:      u.MarksBefore,
			Duration:   audio.Duration(samples, sampleRate),
		},
		warning: warning,
	}, nil
}

// phonemizeUnit picks the voice's phonemizer and produces the
// phoneme sequence. Inline phonemes bypass the phonemizer entirely.
func (p *Pipeline) phonemizeUnit(u *tts.Utterance, voice tts.Voice, speakerID int) (tts.PhonemizedUnit, *tts.Warning, error) {
	unit := tts.PhonemizedUnit{
		Utterance: *u,
		Voice:     voice,
		SpeakerID: speakerID,
		Params:    p.params(voice),
	}

	if len(u.Phonemes) > 0 {
		unit.Phonemes = u.Phonemes
		return unit, nil, nil
	}

	phonemizer, ok := p.phonemizers[voice.Phonemizer]
	if !ok {
		phonemizer = p.phonemizers[tts.VariantChars]
	}

	var (
		words [][]string
		err   error
	)
	if u.SayAs != nil {
		words, err = phonemizer.PhonemizeSayAs(u.PhonemeInput(), u.Language, *u.SayAs)
	} else {
		words, err = phonemizer.Phonemize(u.PhonemeInput(), u.Language)
	}

	var warning *tts.Warning
	if err != nil {
		if !tts.IsRecoverable(err) || len(words) == 0 {
			return tts.PhonemizedUnit{}, nil, err
		}
		warning = &tts.Warning{Err: err, Detail: u.Text}
		log.Warn("degraded phonemization", "index", u.Index, "error", err)
	}

	if u.WholeWord {
		words = mergeWords(words)
	}

	unit.Phonemes = words
	return unit, warning, nil
}

// mergeWords collapses a span into a single word so no pad symbol is
// inserted inside it. <w>/<token> spans are one indivisible unit.
func mergeWords(words [][]string) [][]string {
	if len(words) < 2 {
		return words
	}
	var merged []string
	for _, word := range words {
		merged = append(merged, word...)
	}
	return [][]string{merged}
}

// params merges the voice defaults with the pipeline overrides and
// the utterance rate. Rate speeds audio up by shrinking the length
// scale.
func (p *Pipeline) params(voice tts.Voice) tts.InferenceParams {
	params := voice.Params
	if p.config.NoiseScale != 0 {
		params.NoiseScale = p.config.NoiseScale
	}
	if p.config.NoiseW != 0 {
		params.NoiseW = p.config.NoiseW
	}
	if p.config.LengthScale != 0 {
		params.LengthScale = p.config.LengthScale
	}
	if p.config.Deterministic {
		params.NoiseScale = 0
		params.NoiseW = 0
	}
	return params
}

func (p *Pipeline) render(ctx context.Context, unit tts.PhonemizedUnit) ([]byte, int, error) {
	params := unit.Params
	rate := unit.Utterance.Rate
	if rate <= 0 {
		rate = tts.DefaultRate
	}
	params.LengthScale /= rate

	req := tts.RenderRequest{
		PhonemeIDs:    unit.Voice.PhonemeIDs(unit.Phonemes),
		SpeakerID:     unit.SpeakerID,
		NoiseScale:    params.NoiseScale,
		NoiseW:        params.NoiseW,
		LengthScale:   params.LengthScale,
		Model:         unit.Voice.ModelPath,
		SampleRate:    unit.Voice.SampleRate,
		Deterministic: p.config.Deterministic,
	}
	return p.renderer.Render(ctx, req)
}
