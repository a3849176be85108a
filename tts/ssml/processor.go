// Package ssml flattens SSML markup into an ordered sequence of
// synthesis units. The processor walks the markup token stream with a
// scope stack so voice, language and prosody inherit from enclosing
// elements until overridden.
package ssml

import (
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/vocalize/tts"
	"github.com/dgnsrekt/vocalize/tts/segment"
)

// Context is the inherited state for a markup scope.
type Context struct {
	VoiceKey string
	Language string
	Volume   float64
	Rate     float64
}

// DefaultContext returns a context with identity prosody.
func DefaultContext(voiceKey, language string) Context {
	return Context{
		VoiceKey: voiceKey,
		Language: language,
		Volume:   tts.DefaultVolume,
		Rate:     tts.DefaultRate,
	}
}

type parseState int

const (
	stateDefault parseState = iota
	stateSentence
	stateWord
	stateSub
	stateSayAs
	statePhoneme
	stateMetadata
)

var breakTimeRegex = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(ms|s)$`)

// Processor converts SSML documents into flat utterance sequences.
// Voice keys are resolved eagerly through the registry so an unknown
// voice fails before any rendering begins.
type Processor struct {
	registry  tts.Registry
	segmenter *segment.Segmenter
}

// NewProcessor creates an SSML processor backed by the given registry
// and segmenter.
func NewProcessor(registry tts.Registry, segmenter *segment.Segmenter) *Processor {
	if segmenter == nil {
		segmenter = segment.NewSegmenter()
	}
	return &Processor{registry: registry, segmenter: segmenter}
}

// Process parses an SSML document and returns the flattened utterance
// sequence. Malformed markup aborts the whole document: inheritance
// cannot be trusted after a recovery.
func (p *Processor) Process(markup string, defaults Context) (*tts.Document, error) {
	trimmed := strings.TrimSpace(markup)
	if !strings.HasPrefix(trimmed, "<speak") {
		// Bare fragments are valid input; wrap them.
		trimmed = "<speak>" + trimmed + "</speak>"
	}

	r := &run{
		p:        p,
		defaults: defaults,
		doc:      &tts.Document{Language: defaults.Language},
		states:   []parseState{stateDefault},
	}

	dec := xml.NewDecoder(strings.NewReader(trimmed))
	for {
		token, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", tts.ErrMalformedSSML, err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if err := r.startElement(t); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if err := r.endElement(t); err != nil {
				return nil, err
			}
		case xml.CharData:
			if err := r.charData(string(t)); err != nil {
				return nil, err
			}
		}
	}

	r.doc.TrailingMarks = r.pendingMarks
	return r.doc, nil
}

// run holds the mutable traversal state for one document.
type run struct {
	p        *Processor
	defaults Context
	doc      *tts.Document

	states  []parseState
	voices  []string
	langs   []string
	prosody []prosodyValues

	pendingMarks []string

	// Scoped text accumulators.
	sentenceBuf strings.Builder
	sentenceCtx Context
	wordBuf     strings.Builder
	sayAsBuf    strings.Builder
	sayAsHint   tts.SayAsHint
	subBuf      strings.Builder
	subAlias    string
}

type prosodyValues struct {
	volume float64
	rate   float64
}

func (r *run) state() parseState {
	return r.states[len(r.states)-1]
}

func (r *run) pushState(s parseState) { r.states = append(r.states, s) }

func (r *run) popState(s parseState) error {
	if r.state() != s {
		return fmt.Errorf("%w: unexpected close in state %d", tts.ErrMalformedSSML, r.state())
	}
	r.states = r.states[:len(r.states)-1]
	return nil
}

func (r *run) context() Context {
	ctx := r.defaults
	if n := len(r.voices); n > 0 {
		ctx.VoiceKey = r.voices[n-1]
	}
	if n := len(r.langs); n > 0 {
		ctx.Language = r.langs[n-1]
	}
	if n := len(r.prosody); n > 0 {
		ctx.Volume = r.prosody[n-1].volume
		ctx.Rate = r.prosody[n-1].rate
	}
	return ctx
}

func (r *run) startElement(elem xml.StartElement) error {
	switch elem.Name.Local {
	case "speak", "p":
		// Scope containers; paragraph boundaries fall out of
		// per-chunk segmentation.
		return nil

	case "s":
		r.pushState(stateSentence)
		r.sentenceBuf.Reset()
		r.sentenceCtx = r.context()
		return nil

	case "w", "token":
		r.pushState(stateWord)
		r.wordBuf.Reset()
		return nil

	case "voice":
		name := attr(elem, "name")
		if name == "" {
			return fmt.Errorf("%w: <voice> requires a name attribute", tts.ErrMalformedSSML)
		}
		if r.p.registry != nil {
			// Fail fast: an unresolvable voice aborts the request
			// before any rendering.
			if _, _, err := r.p.registry.Resolve(name); err != nil {
				return err
			}
		}
		r.voices = append(r.voices, name)
		r.scopeChanged()
		return nil

	case "lang":
		code := attr(elem, "lang")
		if code == "" {
			code = attr(elem, "xml:lang")
		}
		if code == "" {
			return fmt.Errorf("%w: <lang> requires a lang attribute", tts.ErrMalformedSSML)
		}
		r.langs = append(r.langs, code)
		r.scopeChanged()
		return nil

	case "prosody":
		current := r.context()
		next := prosodyValues{volume: current.Volume, rate: current.Rate}

		if v := attr(elem, "volume"); v != "" {
			volume, err := parseVolume(v, current.Volume)
			if err != nil {
				return fmt.Errorf("%w: %v", tts.ErrMalformedSSML, err)
			}
			next.volume = volume
		}
		if v := attr(elem, "rate"); v != "" {
			rate, err := parseRate(v, current.Rate)
			if err != nil {
				return fmt.Errorf("%w: %v", tts.ErrMalformedSSML, err)
			}
			next.rate = rate
		}

		r.prosody = append(r.prosody, next)
		r.scopeChanged()
		return nil

	case "say-as":
		r.pushState(stateSayAs)
		r.sayAsBuf.Reset()
		r.sayAsHint = tts.SayAsHint{
			InterpretAs: attr(elem, "interpret-as"),
			Format:      attr(elem, "format"),
		}
		return nil

	case "sub":
		r.pushState(stateSub)
		r.subBuf.Reset()
		r.subAlias = attr(elem, "alias")
		return nil

	case "phoneme":
		ph := strings.TrimSpace(attr(elem, "ph"))
		if ph == "" {
			return fmt.Errorf("%w: <phoneme> requires a ph attribute", tts.ErrMalformedSSML)
		}
		ctx := r.context()
		r.emitScoped(tts.Utterance{
			Kind:            tts.KindText,
			Phonemes:        [][]string{phonemeSymbols(ph)},
			PhonemeAlphabet: attr(elem, "alphabet"),
			VoiceKey:        ctx.VoiceKey,
			Language:        ctx.Language,
			Volume:          ctx.Volume,
			Rate:            ctx.Rate,
		})
		r.pushState(statePhoneme)
		return nil

	case "break":
		d, err := parseBreakTime(attr(elem, "time"))
		if err != nil {
			return err
		}
		ctx := r.context()
		r.emitScoped(tts.Utterance{
			Kind:          tts.KindBreak,
			BreakDuration: d,
			VoiceKey:      ctx.VoiceKey,
			Language:      ctx.Language,
			Volume:        ctx.Volume,
			Rate:          ctx.Rate,
		})
		return nil

	case "mark":
		if name := attr(elem, "name"); name != "" {
			r.pendingMarks = append(r.pendingMarks, name)
		}
		return nil

	case "metadata", "meta":
		r.pushState(stateMetadata)
		return nil

	default:
		log.Debug("ignoring SSML tag", "tag", elem.Name.Local)
		return nil
	}
}

func (r *run) endElement(elem xml.EndElement) error {
	switch elem.Name.Local {
	case "s":
		if err := r.popState(stateSentence); err != nil {
			return err
		}
		text := strings.TrimSpace(r.sentenceBuf.String())
		if text != "" {
			// The whole span is exactly one utterance, embedded
			// punctuation notwithstanding.
			u := r.utteranceFrom(r.sentenceCtx, text)
			u.WholeSentence = true
			r.emit(u)
		}
		return nil

	case "w", "token":
		if err := r.popState(stateWord); err != nil {
			return err
		}
		text := strings.TrimSpace(r.wordBuf.String())
		if text != "" {
			u := r.utteranceFrom(r.context(), text)
			u.WholeWord = true
			r.emitScoped(u)
		}
		return nil

	case "say-as":
		if err := r.popState(stateSayAs); err != nil {
			return err
		}
		text := strings.TrimSpace(r.sayAsBuf.String())
		if text != "" {
			hint := r.sayAsHint
			u := r.utteranceFrom(r.context(), text)
			u.SayAs = &hint
			r.emitScoped(u)
		}
		return nil

	case "sub":
		if err := r.popState(stateSub); err != nil {
			return err
		}
		text := strings.TrimSpace(r.subBuf.String())
		if text != "" {
			u := r.utteranceFrom(r.context(), text)
			u.Alias = r.subAlias
			r.emitScoped(u)
		}
		return nil

	case "phoneme":
		return r.popState(statePhoneme)

	case "metadata", "meta":
		return r.popState(stateMetadata)

	case "voice":
		if n := len(r.voices); n > 0 {
			r.voices = r.voices[:n-1]
		}
		r.scopeChanged()
		return nil

	case "lang":
		if n := len(r.langs); n > 0 {
			r.langs = r.langs[:n-1]
		}
		r.scopeChanged()
		return nil

	case "prosody":
		if n := len(r.prosody); n > 0 {
			r.prosody = r.prosody[:n-1]
		}
		r.scopeChanged()
		return nil

	default:
		return nil
	}
}

func (r *run) charData(text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	switch r.state() {
	case stateMetadata, statePhoneme:
		// Metadata is never spoken; phoneme content was replaced by
		// the ph attribute.
		return nil
	case stateSub:
		r.subBuf.WriteString(text)
		return nil
	case stateWord:
		r.wordBuf.WriteString(text)
		return nil
	case stateSayAs:
		r.sayAsBuf.WriteString(text)
		return nil
	case stateSentence:
		r.sentenceBuf.WriteString(text)
		return nil
	default:
		ctx := r.context()
		for _, sentence := range r.p.segmenter.Segment(text, ctx.Language) {
			r.emit(r.utteranceFrom(ctx, sentence.Text))
		}
		return nil
	}
}

// utteranceFrom builds a text utterance carrying the scope's resolved
// context.
func (r *run) utteranceFrom(ctx Context, text string) tts.Utterance {
	return tts.Utterance{
		Kind:     tts.KindText,
		Text:     text,
		VoiceKey: ctx.VoiceKey,
		Language: ctx.Language,
		Volume:   ctx.Volume,
		Rate:     ctx.Rate,
	}
}

// emit appends an utterance in document order, binding pending marks
// to its position.
func (r *run) emit(u tts.Utterance) {
	u.Index = len(r.doc.Utterances)
	u.MarksBefore = r.pendingMarks
	r.pendingMarks = nil
	r.doc.Utterances = append(r.doc.Utterances, u)
}

// emitScoped appends an utterance produced inside an enclosing <s>
// buffer. The buffered sentence text before the element is flushed
// first so document order is preserved.
func (r *run) emitScoped(u tts.Utterance) {
	r.flushSentence()
	r.emit(u)
}

// flushSentence emits any buffered <s> text under the context it was
// collected in.
func (r *run) flushSentence() {
	if r.state() != stateSentence {
		return
	}
	if text := strings.TrimSpace(r.sentenceBuf.String()); text != "" {
		flushed := r.utteranceFrom(r.sentenceCtx, text)
		flushed.WholeSentence = true
		r.emit(flushed)
		r.sentenceBuf.Reset()
	}
}

// scopeChanged records a voice/lang/prosody boundary. Text inside an
// open <s> collected so far keeps the old context; what follows picks
// up the new one.
func (r *run) scopeChanged() {
	if r.state() != stateSentence {
		return
	}
	r.flushSentence()
	r.sentenceCtx = r.context()
}

// phonemeSymbols splits a ph attribute into symbols: whitespace
// separated when present, codepoints otherwise.
func phonemeSymbols(ph string) []string {
	if strings.ContainsAny(ph, " \t") {
		return strings.Fields(ph)
	}
	symbols := make([]string, 0, len(ph))
	for _, r := range ph {
		symbols = append(symbols, string(r))
	}
	return symbols
}

// parseBreakTime parses <break time="...">. Only "s" and "ms" units
// are accepted; anything else is a fatal document error.
func parseBreakTime(value string) (time.Duration, error) {
	m := breakTimeRegex.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return 0, fmt.Errorf("%w: invalid break time %q", tts.ErrMalformedSSML, value)
	}

	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid break time %q", tts.ErrMalformedSSML, value)
	}

	if m[2] == "ms" {
		return time.Duration(n * float64(time.Millisecond)), nil
	}
	return time.Duration(n * float64(time.Second)), nil
}

func attr(elem xml.StartElement, name string) string {
	for _, a := range elem.Attr {
		if a.Name.Local == name || (a.Name.Space != "" && a.Name.Space+":"+a.Name.Local == name) {
			return a.Value
		}
	}
	return ""
}
