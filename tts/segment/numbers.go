package segment

import (
	"strconv"
	"strings"
)

var onesWords = []string{
	"zero", "one", "two", "three", "four", "five",
	"six", "seven", "eight", "nine", "ten", "eleven", "twelve",
	"thirteen", "fourteen", "fifteen", "sixteen", "seventeen",
	"eighteen", "nineteen",
}

var tensWords = []string{
	"", "", "twenty", "thirty", "forty", "fifty",
	"sixty", "seventy", "eighty", "ninety",
}

var scaleWords = []struct {
	value int64
	word  string
}{
	{1_000_000_000, "billion"},
	{1_000_000, "million"},
	{1_000, "thousand"},
}

// ordinalIrregular maps cardinal words to their ordinal forms where a
// plain "th" suffix is wrong.
var ordinalIrregular = map[string]string{
	"one":    "first",
	"two":    "second",
	"three":  "third",
	"five":   "fifth",
	"eight":  "eighth",
	"nine":   "ninth",
	"twelve": "twelfth",
}

// CardinalWords renders an integer as English cardinal words.
func CardinalWords(n int64) string {
	if n < 0 {
		return "minus " + CardinalWords(-n)
	}
	if n < 20 {
		return onesWords[n]
	}
	if n < 100 {
		word := tensWords[n/10]
		if n%10 > 0 {
			word += " " + onesWords[n%10]
		}
		return word
	}
	if n < 1000 {
		word := onesWords[n/100] + " hundred"
		if n%100 > 0 {
			word += " " + CardinalWords(n%100)
		}
		return word
	}

	for _, scale := range scaleWords {
		if n >= scale.value {
			word := CardinalWords(n/scale.value) + " " + scale.word
			if n%scale.value > 0 {
				word += " " + CardinalWords(n%scale.value)
			}
			return word
		}
	}

	// Out of supported range, spell digits instead.
	return DigitWords(strconv.FormatInt(n, 10))
}

// OrdinalWords renders an integer as English ordinal words
// ("2" -> "second", "21" -> "twenty first").
func OrdinalWords(n int64) string {
	cardinal := CardinalWords(n)
	words := strings.Split(cardinal, " ")
	last := words[len(words)-1]

	switch {
	case ordinalIrregular[last] != "":
		last = ordinalIrregular[last]
	case strings.HasSuffix(last, "y"):
		last = strings.TrimSuffix(last, "y") + "ieth"
	default:
		last += "th"
	}

	words[len(words)-1] = last
	return strings.Join(words, " ")
}

// YearWords renders a year the way it is spoken: "2020" becomes
// "twenty twenty", "1984" becomes "nineteen eighty four", "2005"
// becomes "two thousand five".
func YearWords(n int64) string {
	if n < 1000 || n > 9999 {
		return CardinalWords(n)
	}

	high := n / 100
	low := n % 100

	switch {
	case low == 0 && high%10 == 0:
		// 2000, 1000
		return CardinalWords(n)
	case low == 0:
		return CardinalWords(high) + " hundred"
	case high%10 == 0:
		// 2005 -> two thousand five
		return CardinalWords(high/10*1000) + " " + CardinalWords(low)
	case low < 10:
		return CardinalWords(high) + " oh " + CardinalWords(low)
	default:
		return CardinalWords(high) + " " + CardinalWords(low)
	}
}

// DigitWords renders every digit in s as its own word; non-digit
// characters are dropped.
func DigitWords(s string) string {
	var words []string
	for _, r := range s {
		if r >= '0' && r <= '9' {
			words = append(words, onesWords[r-'0'])
		}
	}
	return strings.Join(words, " ")
}
