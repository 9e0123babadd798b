package tokenize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

var reJaTerminator = regexp.MustCompile(`[.!?。！？\n]+`)

// Japanese segments text with kagome (IPA dictionary) and keys words by their base form.
type Japanese struct {
	t *tokenizer.Tokenizer
}

// NewJapanese creates a kagome-backed segmenter.
func NewJapanese() (*Japanese, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Japanese{t: t}, nil
}

// Clean removes Hangul and Latin letters and replaces punctuation other than
// sentence terminators with spaces. Newlines are kept as terminators.
func (j *Japanese) Clean(text string) string {
	text = reHangul.ReplaceAllString(text, "")
	text = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || strings.ContainsRune(".!?。！？", r):
			return r
		case unicode.Is(unicode.Latin, r):
			return ' '
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == 'ー':
			return r
		default:
			return ' '
		}
	}, text)

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Sentences splits on Japanese and ASCII terminators and newlines.
func (j *Japanese) Sentences(text string) []string {
	return splitOn(reJaTerminator, text)
}

// Words returns content words: symbols, particles, auxiliary verbs and numerals are skipped.
func (j *Japanese) Words(sentence string) []Word {
	var words []Word
	for _, token := range j.t.Tokenize(sentence) {
		if token.Class == tokenizer.DUMMY || strings.TrimSpace(token.Surface) == "" {
			continue
		}
		features := token.Features()
		if len(features) > 0 {
			switch features[0] {
			case "記号", "補助記号", "助詞", "助動詞":
				continue
			}
		}
		if len(features) > 1 && features[1] == "数" {
			continue
		}

		base := token.Surface
		if len(features) > 6 && features[6] != "*" {
			base = features[6]
		}
		words = append(words, Word{Surface: token.Surface, Norm: base})
	}
	return words
}

// Valid accepts kanji, hiragana, katakana and the prolonged sound mark.
func (j *Japanese) Valid(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if r == 'ー' {
			continue
		}
		if !unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana) {
			return false
		}
	}
	return true
}
