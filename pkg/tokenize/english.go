package tokenize

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// Hangul jamo, compatibility jamo and syllables.
	reHangul     = regexp.MustCompile(`[\x{1100}-\x{11FF}\x{3130}-\x{318F}\x{AC00}-\x{D7AF}]`)
	reTerminator = regexp.MustCompile(`[.!?]+`)
)

// English segments Latin-script text on whitespace.
type English struct{}

// Clean removes Hangul, replaces punctuation other than . ! ? with spaces and
// collapses whitespace.
func (English) Clean(text string) string {
	text = reHangul.ReplaceAllString(text, "")
	text = strings.Map(func(r rune) rune {
		switch {
		case r == '.' || r == '!' || r == '?':
			return r
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return r
		default:
			return ' '
		}
	}, text)
	return strings.Join(strings.Fields(text), " ")
}

// Sentences splits on runs of . ! ? and drops blank pieces.
func (English) Sentences(text string) []string {
	return splitOn(reTerminator, text)
}

// Words lowercases and splits on whitespace.
func (English) Words(sentence string) []Word {
	fields := strings.Fields(sentence)
	words := make([]Word, 0, len(fields))
	for _, f := range fields {
		words = append(words, Word{Surface: f, Norm: strings.ToLower(f)})
	}
	return words
}

// Valid accepts ASCII letters only.
func (English) Valid(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func splitOn(re *regexp.Regexp, text string) []string {
	var sentences []string
	for _, s := range re.Split(text, -1) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		sentences = append(sentences, s)
	}
	return sentences
}
