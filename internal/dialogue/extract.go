package dialogue

import (
	"regexp"
	"strings"
	"unicode"
)

// Answer is the outcome of yes/no detection.
type Answer int

const (
	AnswerAmbiguous Answer = iota
	AnswerYes
	AnswerNo
)

// Affirmative and negative vocabularies in the operating language
// (Urdu in Roman script, plus common English loans).
var (
	yesTokens = map[string]bool{
		"haan": true, "han": true, "jee": true, "ji": true, "yes": true,
		"bilkul": true, "theek": true, "ok": true, "confirm": true, "haa": true,
	}
	noTokens = map[string]bool{
		"nahin": true, "nahi": true, "no": true, "cancel": true,
		"nain": true, "nah": true, "na": true,
	}
)

var (
	nameMarkerPattern = regexp.MustCompile(`(?i)(?:mera naam|my name is|naam|mai|main)\s+([a-zA-Z\s]+)`)
	fillerPattern     = regexp.MustCompile(`(?i)\b(hai|ho|hun|ji)\b`)
	nonDigitPattern   = regexp.MustCompile(`\D`)
)

// Normalize lowercases an utterance, strips punctuation and symbols, and
// collapses whitespace.
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return r
	}, lowered)
	return strings.Join(strings.Fields(stripped), " ")
}

// TitleCase lowercases text and capitalizes the first letter of each word.
func TitleCase(text string) string {
	words := strings.Fields(strings.ToLower(text))
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// ExtractPhone strips all non-digits from an utterance. Exactly 11 digits
// are formatted as XXXX-XXXXXXX; any other digit string at least minDigits
// long passes through raw. Fewer than minDigits is an extraction failure,
// reported as an empty string.
func ExtractPhone(text string, minDigits int) string {
	digits := nonDigitPattern.ReplaceAllString(text, "")
	if len(digits) < minDigits {
		return ""
	}
	if len(digits) == 11 {
		return digits[:4] + "-" + digits[4:]
	}
	return digits
}

// ExtractName captures text following a marker phrase ("mera naam",
// "my name is", ...), strips filler words, and title-cases each token. When
// no marker matches, the entire utterance is title-cased instead.
func ExtractName(text string) string {
	raw := text
	if match := nameMarkerPattern.FindStringSubmatch(text); match != nil {
		raw = match[1]
	}
	cleaned := strings.TrimSpace(fillerPattern.ReplaceAllString(raw, ""))
	if cleaned == "" {
		cleaned = text
	}
	return TitleCase(cleaned)
}

// ExtractDateTime accepts any non-empty utterance as the requested time.
func ExtractDateTime(text string) string {
	return strings.TrimSpace(text)
}

// DetectYesNo performs a token-set membership test against the affirmative
// and negative vocabularies. Input matching neither set, or both, is
// ambiguous. The text must already be normalized.
func DetectYesNo(text string) Answer {
	var hasYes, hasNo bool
	for _, token := range strings.Fields(text) {
		if yesTokens[token] {
			hasYes = true
		}
		if noTokens[token] {
			hasNo = true
		}
	}

	switch {
	case hasYes && !hasNo:
		return AnswerYes
	case hasNo && !hasYes:
		return AnswerNo
	default:
		return AnswerAmbiguous
	}
}
