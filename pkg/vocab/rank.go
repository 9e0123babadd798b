package vocab

import (
	"math"
	"slices"
	"unicode/utf8"

	"github.com/japaniel/vocabex/pkg/tokenize"
)

// NeutralComplexity stands in for the example complexity of a word with no examples.
const NeutralComplexity = 5.0

// Difficulty is the 1-10 heuristic combining rarity, context complexity and word length.
func Difficulty(word string, frequency int, examples []Example) int {
	frequencyScore := tokenize.Clamp(11-int(math.Ceil(float64(frequency)/10)), 1, 10)

	complexityScore := NeutralComplexity
	if len(examples) > 0 {
		sum := 0
		for _, ex := range examples {
			sum += ex.Complexity
		}
		complexityScore = float64(sum) / float64(len(examples))
	}

	lengthScore := tokenize.Clamp(utf8.RuneCountInString(word)-2, 1, 10)

	d := int(math.Round((float64(frequencyScore) + complexityScore + float64(lengthScore)) / 3))
	return tokenize.Clamp(d, 1, 10)
}

// YearRange is the span of exam years a word was seen in.
type YearRange struct {
	Earliest int `json:"earliest"`
	Latest   int `json:"latest"`
}

// RangeOf returns the min and max of sorted years. Empty input gives the zero range.
func RangeOf(sortedYears []int) YearRange {
	if len(sortedYears) == 0 {
		return YearRange{}
	}
	return YearRange{Earliest: sortedYears[0], Latest: sortedYears[len(sortedYears)-1]}
}

// RankedWord is a word that survived filtering and truncation.
type RankedWord struct {
	Word              string
	Original          string
	Frequency         int
	Rank              int
	Difficulty        int
	Years             []int
	Subjects          []string
	SourceCount       int
	AvgSentenceLength float64
	Examples          []Example
}

// TopExamples returns up to n example sentences.
func (r RankedWord) TopExamples(n int) []string {
	if n > len(r.Examples) {
		n = len(r.Examples)
	}
	out := make([]string, 0, n)
	for _, ex := range r.Examples[:n] {
		out = append(out, ex.Sentence)
	}
	return out
}

// RankOptions bounds the ranked output.
type RankOptions struct {
	MinFrequency int
	MaxWords     int
}

// RankStats summarizes a ranking pass.
type RankStats struct {
	UniqueWords   int `json:"uniqueWords"`
	FilteredWords int `json:"filteredWords"` // below threshold plus truncated
	StoredWords   int `json:"storedWords"`
	TopFrequency  int `json:"topFrequency"`
}

// Rank filters by minimum frequency, sorts by frequency descending, truncates and
// assigns dense 1-based ranks. Ties keep the order of the input slice, which for
// Aggregator.Words is order of first occurrence in the corpus.
func Rank(words []*WordAggregate, opts RankOptions) ([]RankedWord, RankStats) {
	ranked := make([]RankedWord, 0, len(words))
	for _, w := range words {
		if w.Count < opts.MinFrequency {
			continue
		}
		ranked = append(ranked, RankedWord{
			Word:              w.Word,
			Original:          w.Original,
			Frequency:         w.Count,
			Years:             w.Years.Sorted(),
			Subjects:          w.Subjects.Sorted(),
			SourceCount:       w.SourceIDs.Len(),
			AvgSentenceLength: w.AvgSentenceLength(),
			Examples:          w.Examples,
		})
	}

	slices.SortStableFunc(ranked, func(a, b RankedWord) int {
		return b.Frequency - a.Frequency
	})

	if opts.MaxWords > 0 && len(ranked) > opts.MaxWords {
		ranked = ranked[:opts.MaxWords]
	}

	for i := range ranked {
		ranked[i].Rank = i + 1
		ranked[i].Difficulty = Difficulty(ranked[i].Word, ranked[i].Frequency, ranked[i].Examples)
	}

	stats := RankStats{
		UniqueWords:   len(words),
		StoredWords:   len(ranked),
		FilteredWords: len(words) - len(ranked),
	}
	if len(ranked) > 0 {
		stats.TopFrequency = ranked[0].Frequency
	}
	return ranked, stats
}
