package ssml

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/dgnsrekt/vocalize/tts"
	"github.com/dgnsrekt/vocalize/tts/voices"
)

func testRegistry() tts.Registry {
	return voices.NewStatic(
		tts.Voice{Key: "en_UK/apope_low", Language: "en_UK"},
		tts.Voice{Key: "de_DE/thorsten_low", Language: "de_DE"},
	)
}

func testProcessor() *Processor {
	return NewProcessor(testRegistry(), nil)
}

func defaults() Context {
	return DefaultContext("en_UK/apope_low", "en_UK")
}

func TestProcessPlainFragment(t *testing.T) {
	doc, err := testProcessor().Process("Hello world. How are you?", defaults())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}

	if len(doc.Utterances) != 2 {
		t.Fatalf("got %d utterances, want 2", len(doc.Utterances))
	}
	if doc.Utterances[0].Text != "Hello world." {
		t.Errorf("first utterance = %q", doc.Utterances[0].Text)
	}
	if doc.Utterances[1].Text != "How are you?" {
		t.Errorf("second utterance = %q", doc.Utterances[1].Text)
	}
	for i, u := range doc.Utterances {
		if u.Index != i {
			t.Errorf("utterance %d has index %d", i, u.Index)
		}
		if u.VoiceKey != "en_UK/apope_low" {
			t.Errorf("utterance %d voice = %q", i, u.VoiceKey)
		}
		if u.Volume != tts.DefaultVolume || u.Rate != tts.DefaultRate {
			t.Errorf("utterance %d prosody = %v/%v, want defaults", i, u.Volume, u.Rate)
		}
	}
}

func TestProcessExplicitSentence(t *testing.T) {
	markup := `<speak><s>Dr. Smith arrived. He was late.</s></speak>`
	doc, err := testProcessor().Process(markup, defaults())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}

	// The whole <s> span is one utterance regardless of embedded
	// punctuation.
	if len(doc.Utterances) != 1 {
		t.Fatalf("got %d utterances, want 1", len(doc.Utterances))
	}
	u := doc.Utterances[0]
	if !u.WholeSentence {
		t.Error("utterance from <s> should be marked WholeSentence")
	}
	if u.Text != "Dr. Smith arrived. He was late." {
		t.Errorf("text = %q", u.Text)
	}
}

func TestProcessNestedProsody(t *testing.T) {
	markup := `<speak>
		<prosody rate="+10%" volume="soft">
			<prosody rate="+10%">inner text.</prosody>
			outer text.
		</prosody>
	</speak>`
	doc, err := testProcessor().Process(markup, defaults())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if len(doc.Utterances) != 2 {
		t.Fatalf("got %d utterances, want 2", len(doc.Utterances))
	}

	inner := doc.Utterances[0]
	if math.Abs(inner.Rate-1.21) > 1e-9 {
		t.Errorf("nested relative rate = %v, want 1.21", inner.Rate)
	}
	if inner.Volume != 30 {
		t.Errorf("inherited volume = %v, want 30", inner.Volume)
	}

	outer := doc.Utterances[1]
	if math.Abs(outer.Rate-1.1) > 1e-9 {
		t.Errorf("outer rate = %v, want 1.1", outer.Rate)
	}
}

func TestProcessBreak(t *testing.T) {
	markup := `<speak>Before.<break time="3s"/>After.</speak>`
	doc, err := testProcessor().Process(markup, defaults())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if len(doc.Utterances) != 3 {
		t.Fatalf("got %d utterances, want 3", len(doc.Utterances))
	}

	brk := doc.Utterances[1]
	if !brk.IsBreak() {
		t.Fatal("middle utterance should be a break")
	}
	if brk.BreakDuration != 3*time.Second {
		t.Errorf("break duration = %v, want 3s", brk.BreakDuration)
	}
}

func TestProcessBreakMilliseconds(t *testing.T) {
	doc, err := testProcessor().Process(`<speak><break time="250ms"/></speak>`, defaults())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if got := doc.Utterances[0].BreakDuration; got != 250*time.Millisecond {
		t.Errorf("break duration = %v, want 250ms", got)
	}
}

func TestProcessInvalidBreakUnit(t *testing.T) {
	_, err := testProcessor().Process(`<speak><break time="3min"/></speak>`, defaults())
	if !errors.Is(err, tts.ErrMalformedSSML) {
		t.Fatalf("invalid break unit should be fatal, got %v", err)
	}
}

func TestProcessSub(t *testing.T) {
	markup := `<speak><sub alias="World Wide Web Consortium">W3C</sub></speak>`
	doc, err := testProcessor().Process(markup, defaults())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if len(doc.Utterances) != 1 {
		t.Fatalf("got %d utterances, want 1", len(doc.Utterances))
	}

	u := doc.Utterances[0]
	if u.Text != "W3C" {
		t.Errorf("text = %q, want original", u.Text)
	}
	if u.Alias != "World Wide Web Consortium" {
		t.Errorf("alias = %q", u.Alias)
	}
	if u.PhonemeInput() != "World Wide Web Consortium" {
		t.Errorf("phoneme input = %q, want the alias", u.PhonemeInput())
	}
}

func TestProcessPhoneme(t *testing.T) {
	markup := `<speak><phoneme alphabet="ipa" ph="h ə l oʊ">hello</phoneme></speak>`
	doc, err := testProcessor().Process(markup, defaults())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if len(doc.Utterances) != 1 {
		t.Fatalf("got %d utterances, want 1", len(doc.Utterances))
	}

	u := doc.Utterances[0]
	want := [][]string{{"h", "ə", "l", "oʊ"}}
	if !reflect.DeepEqual(u.Phonemes, want) {
		t.Errorf("phonemes = %v, want %v", u.Phonemes, want)
	}
	if u.PhonemeAlphabet != "ipa" {
		t.Errorf("alphabet = %q", u.PhonemeAlphabet)
	}
}

func TestProcessPhonemeCodepoints(t *testing.T) {
	// Without whitespace the ph value splits into codepoints.
	doc, err := testProcessor().Process(`<speak><phoneme ph="ab">x</phoneme></speak>`, defaults())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	want := [][]string{{"a", "b"}}
	if !reflect.DeepEqual(doc.Utterances[0].Phonemes, want) {
		t.Errorf("phonemes = %v, want %v", doc.Utterances[0].Phonemes, want)
	}
}

func TestProcessMarks(t *testing.T) {
	markup := `<speak><mark name="start"/>Hello there.<mark name="end"/></speak>`
	doc, err := testProcessor().Process(markup, defaults())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if len(doc.Utterances) != 1 {
		t.Fatalf("got %d utterances, want 1", len(doc.Utterances))
	}

	if !reflect.DeepEqual(doc.Utterances[0].MarksBefore, []string{"start"}) {
		t.Errorf("MarksBefore = %v", doc.Utterances[0].MarksBefore)
	}
	if !reflect.DeepEqual(doc.TrailingMarks, []string{"end"}) {
		t.Errorf("TrailingMarks = %v", doc.TrailingMarks)
	}
}

func TestProcessVoiceScope(t *testing.T) {
	markup := `<speak>First.<voice name="de_DE/thorsten_low">Zweitens.</voice>Third.</speak>`
	doc, err := testProcessor().Process(markup, defaults())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if len(doc.Utterances) != 3 {
		t.Fatalf("got %d utterances, want 3", len(doc.Utterances))
	}

	if doc.Utterances[0].VoiceKey != "en_UK/apope_low" {
		t.Errorf("first voice = %q", doc.Utterances[0].VoiceKey)
	}
	if doc.Utterances[1].VoiceKey != "de_DE/thorsten_low" {
		t.Errorf("scoped voice = %q", doc.Utterances[1].VoiceKey)
	}
	if doc.Utterances[2].VoiceKey != "en_UK/apope_low" {
		t.Errorf("voice after scope = %q", doc.Utterances[2].VoiceKey)
	}
}

func TestProcessUnknownVoiceFailsFast(t *testing.T) {
	markup := `<speak><voice name="xx_XX/missing_low">text</voice></speak>`
	_, err := testProcessor().Process(markup, defaults())
	if !errors.Is(err, tts.ErrVoiceNotFound) {
		t.Fatalf("expected ErrVoiceNotFound, got %v", err)
	}
}

func TestProcessLangScope(t *testing.T) {
	markup := `<speak><lang lang="de_DE">Guten Tag.</lang></speak>`
	doc, err := testProcessor().Process(markup, defaults())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if doc.Utterances[0].Language != "de_DE" {
		t.Errorf("language = %q, want de_DE", doc.Utterances[0].Language)
	}
}

func TestProcessSayAs(t *testing.T) {
	markup := `<speak><say-as interpret-as="number" format="ordinal">2</say-as></speak>`
	doc, err := testProcessor().Process(markup, defaults())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	u := doc.Utterances[0]
	if u.SayAs == nil {
		t.Fatal("say-as hint missing")
	}
	if u.SayAs.InterpretAs != "number" || u.SayAs.Format != "ordinal" {
		t.Errorf("hint = %+v", *u.SayAs)
	}
	if u.Text != "2" {
		t.Errorf("text = %q", u.Text)
	}
}

func TestProcessMetadataIgnored(t *testing.T) {
	markup := `<speak><metadata><dc:title xmlns:dc="http://purl.org/dc/elements/1.1/">skip me</dc:title></metadata>Spoken.</speak>`
	doc, err := testProcessor().Process(markup, defaults())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if len(doc.Utterances) != 1 || doc.Utterances[0].Text != "Spoken." {
		t.Errorf("utterances = %+v, want only the spoken text", doc.Utterances)
	}
}

func TestProcessMalformed(t *testing.T) {
	tests := []struct {
		name   string
		markup string
	}{
		{"unclosed element", `<speak><s>dangling`},
		{"mismatched close", `<speak><s>text</w></speak>`},
		{"voice without name", `<speak><voice>text</voice></speak>`},
		{"phoneme without ph", `<speak><phoneme>x</phoneme></speak>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testProcessor().Process(tt.markup, defaults())
			if err == nil {
				t.Fatalf("Process(%q) should fail", tt.markup)
			}
		})
	}
}

func TestProcessProsodyInsideSentence(t *testing.T) {
	markup := `<speak><s>plain <prosody volume="silent">secret</prosody></s></speak>`
	doc, err := testProcessor().Process(markup, defaults())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if len(doc.Utterances) != 2 {
		t.Fatalf("got %d utterances, want 2", len(doc.Utterances))
	}

	if doc.Utterances[0].Text != "plain" || doc.Utterances[0].Volume != tts.DefaultVolume {
		t.Errorf("text before the scope = %q at volume %v",
			doc.Utterances[0].Text, doc.Utterances[0].Volume)
	}
	// The nested scope must apply to the text it encloses, not the
	// context <s> opened with.
	if doc.Utterances[1].Text != "secret" {
		t.Errorf("scoped text = %q", doc.Utterances[1].Text)
	}
	if doc.Utterances[1].Volume != 0 {
		t.Errorf("scoped volume = %v, want 0 (silent)", doc.Utterances[1].Volume)
	}
}

func TestProcessVoiceInsideSentence(t *testing.T) {
	markup := `<speak><s>One <voice name="de_DE/thorsten_low">zwei</voice> three.</s></speak>`
	doc, err := testProcessor().Process(markup, defaults())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if len(doc.Utterances) != 3 {
		t.Fatalf("got %d utterances, want 3", len(doc.Utterances))
	}

	wantVoices := []string{"en_UK/apope_low", "de_DE/thorsten_low", "en_UK/apope_low"}
	wantTexts := []string{"One", "zwei", "three."}
	for i, u := range doc.Utterances {
		if u.Text != wantTexts[i] {
			t.Errorf("utterance %d text = %q, want %q", i, u.Text, wantTexts[i])
		}
		if u.VoiceKey != wantVoices[i] {
			t.Errorf("utterance %d voice = %q, want %q", i, u.VoiceKey, wantVoices[i])
		}
	}
}

func TestProcessBreakInsideSentenceOrder(t *testing.T) {
	markup := `<speak><s>Before <break time="1s"/> after.</s></speak>`
	doc, err := testProcessor().Process(markup, defaults())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if len(doc.Utterances) < 2 {
		t.Fatalf("got %d utterances, want at least 2", len(doc.Utterances))
	}
	// The buffered sentence text before the break must come first.
	if doc.Utterances[0].IsBreak() {
		t.Error("break emitted before the preceding sentence text")
	}
	if doc.Utterances[0].Text != "Before" {
		t.Errorf("first utterance = %q, want the text before the break", doc.Utterances[0].Text)
	}
}
