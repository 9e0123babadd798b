package tokenize

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Context describes the corpus record a piece of text came from.
type Context struct {
	SourceID string
	Year     int
	Subject  string
}

// Occurrence is one validated appearance of a normalized word within one sentence.
type Occurrence struct {
	Word           string // normalized (lowercase / base form)
	Original       string // surface form as it appeared
	Sentence       string // cleaned sentence the word was found in
	SentenceIndex  int
	Position       int // index of the word within the sentence
	SourceID       string
	Year           int
	Subject        string
	SentenceLength int // number of words in the sentence
	Complexity     int // 1-10
}

// Word is a single segmented unit of a sentence.
type Word struct {
	Surface string
	Norm    string
}

// Segmenter holds the language-specific parts of tokenization.
type Segmenter interface {
	// Clean strips characters outside the target script and punctuation other
	// than sentence terminators, and collapses whitespace.
	Clean(text string) string
	// Sentences splits cleaned text on runs of sentence terminators.
	Sentences(text string) []string
	// Words segments a sentence; Norm is the comparison key.
	Words(sentence string) []Word
	// Valid reports whether every rune of a normalized word belongs to the target alphabet.
	Valid(word string) bool
}

// Options controls word filtering.
type Options struct {
	MinWordLength   int
	MaxWordLength   int
	FilterStopWords bool
	StopWords       StopWords
}

// Tokenizer turns raw text into word occurrences.
type Tokenizer struct {
	opts Options
	seg  Segmenter
}

// New creates a Tokenizer. A nil segmenter means English.
func New(opts Options, seg Segmenter) *Tokenizer {
	if seg == nil {
		seg = English{}
	}
	if opts.MinWordLength <= 0 {
		opts.MinWordLength = 1
	}
	if opts.MaxWordLength <= 0 {
		opts.MaxWordLength = math.MaxInt
	}
	return &Tokenizer{opts: opts, seg: seg}
}

// Tokenize extracts all surviving word occurrences from text. Empty input yields nil.
func (t *Tokenizer) Tokenize(text string, ctx Context) []Occurrence {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	cleaned := t.seg.Clean(text)
	if cleaned == "" {
		return nil
	}

	var out []Occurrence
	for idx, sentence := range t.seg.Sentences(cleaned) {
		words := t.seg.Words(sentence)
		if len(words) == 0 {
			continue
		}
		complexity := SentenceComplexity(words)

		for pos, w := range words {
			if !t.keep(w.Norm) {
				continue
			}
			out = append(out, Occurrence{
				Word:           w.Norm,
				Original:       w.Surface,
				Sentence:       sentence,
				SentenceIndex:  idx,
				Position:       pos,
				SourceID:       ctx.SourceID,
				Year:           ctx.Year,
				Subject:        ctx.Subject,
				SentenceLength: len(words),
				Complexity:     complexity,
			})
		}
	}
	return out
}

func (t *Tokenizer) keep(word string) bool {
	n := utf8.RuneCountInString(word)
	if n < t.opts.MinWordLength || n > t.opts.MaxWordLength {
		return false
	}
	if t.opts.FilterStopWords && t.opts.StopWords.Contains(word) {
		return false
	}
	return t.seg.Valid(word)
}

// SentenceComplexity scores a sentence from 1 to 10 using
// round(0.5*avgWordLength + 0.1*wordCount).
func SentenceComplexity(words []Word) int {
	if len(words) == 0 {
		return 1
	}
	total := 0
	for _, w := range words {
		total += utf8.RuneCountInString(w.Surface)
	}
	avg := float64(total) / float64(len(words))
	score := int(math.Round(0.5*avg + 0.1*float64(len(words))))
	return Clamp(score, 1, 10)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
