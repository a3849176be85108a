package segment

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/dgnsrekt/vocalize/tts"
)

var (
	currencyRegex = regexp.MustCompile(`([$€£])(\d+)(?:\.(\d{2}))?`)
	decimalRegex  = regexp.MustCompile(`\b(\d+)\.(\d+)\b`)
	integerRegex  = regexp.MustCompile(`\b\d+\b`)
	dateISORegex  = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	dateSepRegex  = regexp.MustCompile(`^(\d{1,2})[/.](\d{1,2})(?:[/.](\d{2,4}))?$`)
	timeRegex     = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([aApP][mM])?$`)
)

var currencyNames = map[string]struct{ major, minor string }{
	"$": {"dollars", "cents"},
	"€": {"euros", "cents"},
	"£": {"pounds", "pence"},
}

var monthNames = []string{
	"january", "february", "march", "april", "may", "june", "july",
	"august", "september", "october", "november", "december",
}

// englishText reports whether numeric expansion words are available
// for the language. Voice languages use underscore codes ("en_US");
// BCP-47 also parses.
func englishText(lang string) bool {
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return false
	}
	base, _ := tag.Base()
	return base.String() == "en"
}

// Normalize expands number, decimal and currency tokens in free text
// when the language supports it. Explicit say-as spans are handled by
// ExpandSayAs instead.
func Normalize(text, lang string) string {
	if !englishText(lang) {
		return text
	}

	text = currencyRegex.ReplaceAllStringFunc(text, func(match string) string {
		return expandCurrency(match)
	})

	text = decimalRegex.ReplaceAllStringFunc(text, func(match string) string {
		parts := strings.SplitN(match, ".", 2)
		whole, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return match
		}
		return CardinalWords(whole) + " point " + DigitWords(parts[1])
	})

	text = integerRegex.ReplaceAllStringFunc(text, func(match string) string {
		n, err := strconv.ParseInt(match, 10, 64)
		if err != nil {
			return match
		}
		return CardinalWords(n)
	})

	return text
}

// ExpandSayAs renders a span under an explicit interpretation hint.
// An unsupported interpret-as/format combination returns the original
// text unchanged together with ErrUnsupportedFormat; the caller
// records the warning and keeps the literal fallback.
func ExpandSayAs(text string, hint tts.SayAsHint, lang string) (string, error) {
	text = strings.TrimSpace(text)
	interpret := strings.ToLower(strings.TrimSpace(hint.InterpretAs))
	format := strings.ToLower(strings.TrimSpace(hint.Format))

	switch interpret {
	case "spell-out", "characters", "letters":
		return spellOut(text), nil
	case "digits":
		return DigitWords(text), nil
	case "number", "cardinal", "ordinal":
		if !englishText(lang) {
			return text, unsupported(hint, lang)
		}
		return expandNumber(text, interpret, format, hint)
	case "date":
		if !englishText(lang) {
			return text, unsupported(hint, lang)
		}
		return expandDate(text, format, hint)
	case "time":
		if !englishText(lang) {
			return text, unsupported(hint, lang)
		}
		return expandTime(text, hint)
	case "currency":
		if !englishText(lang) {
			return text, unsupported(hint, lang)
		}
		if expanded := currencyRegex.ReplaceAllStringFunc(text, expandCurrency); expanded != text {
			return expanded, nil
		}
		return text, unsupported(hint, lang)
	case "telephone":
		return DigitWords(text), nil
	default:
		return text, unsupported(hint, lang)
	}
}

func unsupported(hint tts.SayAsHint, lang string) error {
	return fmt.Errorf("%w: interpret-as=%q format=%q lang=%q",
		tts.ErrUnsupportedFormat, hint.InterpretAs, hint.Format, lang)
}

// spellOut emits one word per character so each becomes its own
// phoneme unit.
func spellOut(text string) string {
	var words []string
	for _, r := range text {
		if r == ' ' {
			continue
		}
		words = append(words, string(r))
	}
	return strings.Join(words, " ")
}

func expandNumber(text, interpret, format string, hint tts.SayAsHint) (string, error) {
	n, err := strconv.ParseInt(strings.ReplaceAll(text, ",", ""), 10, 64)
	if err != nil {
		return text, fmt.Errorf("%w: %q is not a number", tts.ErrUnsupportedFormat, text)
	}

	if interpret == "ordinal" {
		return OrdinalWords(n), nil
	}

	switch format {
	case "", "cardinal":
		return CardinalWords(n), nil
	case "ordinal":
		return OrdinalWords(n), nil
	case "year":
		return YearWords(n), nil
	case "digits":
		return DigitWords(text), nil
	default:
		return text, unsupported(hint, "en")
	}
}

// expandDate renders numeric dates. The format string orders the
// fields (month/day/year, e.g. "mdy", "dmy", "ymd", "md", "my");
// default is month-day-year. Days are spoken as ordinals.
func expandDate(text, format string, hint tts.SayAsHint) (string, error) {
	if format == "" {
		format = "mdy"
	}

	var fields []int64
	if m := dateISORegex.FindStringSubmatch(text); m != nil {
		// ISO input is always year-month-day regardless of the
		// spoken field order.
		y, _ := strconv.ParseInt(m[1], 10, 64)
		mo, _ := strconv.ParseInt(m[2], 10, 64)
		d, _ := strconv.ParseInt(m[3], 10, 64)
		return renderDate(format, mo, d, y, hint)
	}

	m := dateSepRegex.FindStringSubmatch(text)
	if m == nil {
		return text, fmt.Errorf("%w: %q is not a recognized date", tts.ErrUnsupportedFormat, text)
	}
	for _, part := range m[1:] {
		if part == "" {
			fields = append(fields, 0)
			continue
		}
		n, _ := strconv.ParseInt(part, 10, 64)
		fields = append(fields, n)
	}

	var month, day, year int64
	for i, field := range strings.Split(format, "") {
		if i >= len(fields) || fields[i] == 0 {
			continue
		}
		switch field {
		case "m":
			month = fields[i]
		case "d":
			day = fields[i]
		case "y":
			year = fields[i]
		default:
			return text, unsupported(hint, "en")
		}
	}

	return renderDate(format, month, day, year, hint)
}

func renderDate(format string, month, day, year int64, hint tts.SayAsHint) (string, error) {
	var words []string

	for _, field := range strings.Split(format, "") {
		switch field {
		case "m":
			if month >= 1 && month <= 12 {
				words = append(words, monthNames[month-1])
			}
		case "d":
			if day > 0 {
				words = append(words, OrdinalWords(day))
			}
		case "y":
			if year > 0 {
				if year < 100 {
					year += 2000
				}
				words = append(words, YearWords(year))
			}
		default:
			return "", unsupported(hint, "en")
		}
	}

	if len(words) == 0 {
		return "", fmt.Errorf("%w: empty date", tts.ErrUnsupportedFormat)
	}
	return strings.Join(words, " "), nil
}

func expandTime(text string, hint tts.SayAsHint) (string, error) {
	m := timeRegex.FindStringSubmatch(text)
	if m == nil {
		return text, fmt.Errorf("%w: %q is not a recognized time", tts.ErrUnsupportedFormat, text)
	}

	hour, _ := strconv.ParseInt(m[1], 10, 64)
	minute, _ := strconv.ParseInt(m[2], 10, 64)

	var words []string
	words = append(words, CardinalWords(hour))

	switch {
	case minute == 0:
		words = append(words, "o'clock")
	case minute < 10:
		words = append(words, "oh", CardinalWords(minute))
	default:
		words = append(words, CardinalWords(minute))
	}

	if m[3] != "" {
		if strings.EqualFold(m[3], "am") {
			words = append(words, "a m")
		} else {
			words = append(words, "p m")
		}
	}

	return strings.Join(words, " "), nil
}

func expandCurrency(match string) string {
	m := currencyRegex.FindStringSubmatch(match)
	if m == nil {
		return match
	}

	names := currencyNames[m[1]]
	major, _ := strconv.ParseInt(m[2], 10, 64)

	out := CardinalWords(major) + " " + names.major
	if major == 1 {
		out = CardinalWords(major) + " " + strings.TrimSuffix(names.major, "s")
	}

	if m[3] != "" && m[3] != "00" {
		minor, _ := strconv.ParseInt(m[3], 10, 64)
		unit := names.minor
		if minor == 1 {
			unit = strings.TrimSuffix(unit, "s")
		}
		out += " and " + CardinalWords(minor) + " " + unit
	}

	return out
}
