package vocab

import "github.com/japaniel/vocabex/pkg/tokenize"

// HighlightedExamples is how many leading examples per word are flagged highlighted.
const HighlightedExamples = 3

// Example is a retained usage of a word.
type Example struct {
	Sentence       string `json:"sentence"`
	SourceID       string `json:"sourceId"`
	Position       int    `json:"position"`
	Year           int    `json:"year"`
	Subject        string `json:"subject"`
	SentenceLength int    `json:"sentenceLength"`
	Complexity     int    `json:"complexity"`
	Highlighted    bool   `json:"highlighted"`
}

// WordAggregate accumulates statistics for one normalized word over a run.
type WordAggregate struct {
	Word     string
	Original string // surface form of the first occurrence
	Count    int
	Examples []Example

	SourceIDs Set[string]
	Years     Set[int]
	Subjects  Set[string]

	SentenceLengthSum int
	SentenceCount     int
}

// AvgSentenceLength is the mean length of the sentences the word appeared in.
func (w *WordAggregate) AvgSentenceLength() float64 {
	if w.SentenceCount == 0 {
		return 0
	}
	return float64(w.SentenceLengthSum) / float64(w.SentenceCount)
}

// Aggregator folds occurrences into per-word aggregates. It is not safe for
// concurrent use; one goroutine owns it for the duration of a run.
type Aggregator struct {
	maxExamples int
	words       map[string]*WordAggregate
	order       []*WordAggregate
	occurrences int
}

// NewAggregator creates an empty aggregator keeping at most maxExamples examples per word.
func NewAggregator(maxExamples int) *Aggregator {
	if maxExamples < 0 {
		maxExamples = 0
	}
	return &Aggregator{
		maxExamples: maxExamples,
		words:       make(map[string]*WordAggregate),
	}
}

// Fold adds one occurrence. The first maxExamples occurrences of a word become
// its examples; later ones only update counts and sets.
func (a *Aggregator) Fold(o tokenize.Occurrence) {
	agg, ok := a.words[o.Word]
	if !ok {
		agg = &WordAggregate{Word: o.Word, Original: o.Original}
		a.words[o.Word] = agg
		a.order = append(a.order, agg)
	}
	a.occurrences++

	agg.Count++
	agg.SourceIDs.Add(o.SourceID)
	agg.Years.Add(o.Year)
	agg.Subjects.Add(o.Subject)
	agg.SentenceLengthSum += o.SentenceLength
	agg.SentenceCount++

	if len(agg.Examples) < a.maxExamples {
		agg.Examples = append(agg.Examples, Example{
			Sentence:       o.Sentence,
			SourceID:       o.SourceID,
			Position:       o.Position,
			Year:           o.Year,
			Subject:        o.Subject,
			SentenceLength: o.SentenceLength,
			Complexity:     o.Complexity,
			Highlighted:    len(agg.Examples) < HighlightedExamples,
		})
	}
}

// FoldAll folds a slice of occurrences in order.
func (a *Aggregator) FoldAll(occs []tokenize.Occurrence) {
	for _, o := range occs {
		a.Fold(o)
	}
}

// Get returns the aggregate for a normalized word.
func (a *Aggregator) Get(word string) (*WordAggregate, bool) {
	agg, ok := a.words[word]
	return agg, ok
}

// Len is the number of distinct words.
func (a *Aggregator) Len() int { return len(a.order) }

// Occurrences is the total number of folded occurrences.
func (a *Aggregator) Occurrences() int { return a.occurrences }

// Words returns the aggregates in order of first occurrence.
func (a *Aggregator) Words() []*WordAggregate {
	return a.order
}
