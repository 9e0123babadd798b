package vocab

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/vocabex/pkg/tokenize"
)

func occ(word, source string, year int, subject string) tokenize.Occurrence {
	return tokenize.Occurrence{
		Word:           word,
		Original:       word,
		Sentence:       fmt.Sprintf("%s appears in %s", word, source),
		SourceID:       source,
		Year:           year,
		Subject:        subject,
		SentenceLength: 4,
		Complexity:     4,
	}
}

func TestFoldCountsAndSetsAreOrderIndependent(t *testing.T) {
	var occs []tokenize.Occurrence
	for i := 0; i < 40; i++ {
		occs = append(occs, occ("inference", fmt.Sprintf("q%d", i%7), 2015+i%5, []string{"reading", "grammar"}[i%2]))
		if i%3 == 0 {
			occs = append(occs, occ("premise", fmt.Sprintf("q%d", i), 2020, "logic"))
		}
	}

	base := NewAggregator(10)
	base.FoldAll(occs)

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 5; trial++ {
		shuffled := append([]tokenize.Occurrence(nil), occs...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		agg := NewAggregator(10)
		agg.FoldAll(shuffled)

		for _, w := range []string{"inference", "premise"} {
			want, _ := base.Get(w)
			got, ok := agg.Get(w)
			require.True(t, ok)
			assert.Equal(t, want.Count, got.Count)
			assert.Equal(t, want.Years.Sorted(), got.Years.Sorted())
			assert.Equal(t, want.Subjects.Sorted(), got.Subjects.Sorted())
			assert.Equal(t, want.SourceIDs.Sorted(), got.SourceIDs.Sorted())
			assert.Equal(t, want.SentenceLengthSum, got.SentenceLengthSum)
		}
	}

	infer, _ := base.Get("inference")
	assert.Equal(t, 40, infer.Count)
	assert.Equal(t, []int{2015, 2016, 2017, 2018, 2019}, infer.Years.Sorted())
	assert.Equal(t, 7, infer.SourceIDs.Len())
	assert.Equal(t, 2, base.Len())
	assert.Equal(t, len(occs), base.Occurrences())
}

func TestFoldKeepsFirstExamplesOnly(t *testing.T) {
	agg := NewAggregator(10)
	for i := 0; i < 25; i++ {
		agg.Fold(occ("hypothesis", fmt.Sprintf("q%d", i), 2022, "science"))
	}

	w, ok := agg.Get("hypothesis")
	require.True(t, ok)
	assert.Equal(t, 25, w.Count)
	require.Len(t, w.Examples, 10)
	for i, ex := range w.Examples {
		assert.Equal(t, fmt.Sprintf("q%d", i), ex.SourceID)
		assert.Equal(t, i < HighlightedExamples, ex.Highlighted)
	}
	assert.GreaterOrEqual(t, w.Count, len(w.Examples))
}

func TestFoldSingleOccurrenceWordsAreHighlighted(t *testing.T) {
	tok := tokenize.New(tokenize.Options{
		MinWordLength:   3,
		FilterStopWords: true,
		StopWords:       tokenize.DefaultStopWords("en"),
	}, tokenize.English{})

	agg := NewAggregator(10)
	agg.FoldAll(tok.Tokenize("The quick brown fox jumps over the lazy dog.", tokenize.Context{SourceID: "q1", Year: 2020}))

	require.Equal(t, 6, agg.Len())
	for _, w := range agg.Words() {
		assert.Equal(t, 1, w.Count)
		require.Len(t, w.Examples, 1)
		assert.True(t, w.Examples[0].Highlighted)
	}
}

func TestFoldKeepsFirstSurfaceForm(t *testing.T) {
	agg := NewAggregator(2)
	o := occ("analyze", "q1", 2020, "x")
	o.Original = "Analyze"
	agg.Fold(o)
	o.Original = "ANALYZE"
	agg.Fold(o)

	w, _ := agg.Get("analyze")
	assert.Equal(t, "Analyze", w.Original)
}

func TestDifficultyScenario(t *testing.T) {
	examples := make([]Example, 10)
	for i := range examples {
		examples[i].Complexity = 7
	}
	assert.Equal(t, 6, Difficulty("analyze", 45, examples))
}

func TestDifficultyWithoutExamplesUsesNeutralComplexity(t *testing.T) {
	// frequency 1 -> 10, complexity 5, length 4-2 -> 2
	assert.Equal(t, 6, Difficulty("word", 1, nil))
}

func TestDifficultyBounds(t *testing.T) {
	for _, freq := range []int{1, 9, 10, 11, 99, 100, 1000, 100000} {
		for _, word := range []string{"a", "cat", "extraordinarily", "incomprehensibilities"} {
			for c := 1; c <= 10; c++ {
				d := Difficulty(word, freq, []Example{{Complexity: c}})
				assert.GreaterOrEqual(t, d, 1)
				assert.LessOrEqual(t, d, 10)
			}
		}
	}
}

func TestRankFiltersAndTruncates(t *testing.T) {
	agg := NewAggregator(3)
	// 200 words seen once, 850 seen between 2 and 11 times.
	for i := 0; i < 1050; i++ {
		word := fmt.Sprintf("word%04d", i)
		n := 1
		if i >= 200 {
			n = 2 + i%10
		}
		for j := 0; j < n; j++ {
			agg.Fold(occ(word, fmt.Sprintf("q%d", j), 2020, "s"))
		}
	}

	ranked, stats := Rank(agg.Words(), RankOptions{MinFrequency: 2, MaxWords: 500})

	assert.Len(t, ranked, 500)
	assert.Equal(t, 1050, stats.UniqueWords)
	assert.Equal(t, 500, stats.StoredWords)
	assert.Equal(t, 550, stats.FilteredWords)
	assert.Equal(t, 11, stats.TopFrequency)

	for i, r := range ranked {
		assert.Equal(t, i+1, r.Rank)
		assert.GreaterOrEqual(t, r.Frequency, 2)
		if i > 0 {
			assert.GreaterOrEqual(t, ranked[i-1].Frequency, r.Frequency)
		}
		assert.GreaterOrEqual(t, r.Difficulty, 1)
		assert.LessOrEqual(t, r.Difficulty, 10)
	}
}

func TestRankTiesKeepFirstOccurrenceOrder(t *testing.T) {
	agg := NewAggregator(5)
	for _, w := range []string{"zeta", "alpha", "mid", "alpha", "zeta", "mid", "rare"} {
		agg.Fold(occ(w, "q", 2020, "s"))
	}
	agg.Fold(occ("rare", "q", 2020, "s"))
	agg.Fold(occ("rare", "q", 2020, "s"))

	ranked, _ := Rank(agg.Words(), RankOptions{MinFrequency: 1})
	got := make([]string, len(ranked))
	for i, r := range ranked {
		got[i] = r.Word
	}
	assert.Equal(t, []string{"rare", "zeta", "alpha", "mid"}, got)
}

func TestRankedWordDerivedFields(t *testing.T) {
	agg := NewAggregator(10)
	for i, year := range []int{2019, 2015, 2023, 2015} {
		o := occ("evidence", fmt.Sprintf("q%d", i%3), year, []string{"law", "history"}[i%2])
		o.SentenceLength = 3 + i
		agg.Fold(o)
	}

	ranked, _ := Rank(agg.Words(), RankOptions{MinFrequency: 1, MaxWords: 10})
	require.Len(t, ranked, 1)
	r := ranked[0]
	assert.Equal(t, []int{2015, 2019, 2023}, r.Years)
	assert.Equal(t, YearRange{Earliest: 2015, Latest: 2023}, RangeOf(r.Years))
	assert.Equal(t, []string{"history", "law"}, r.Subjects)
	assert.Equal(t, 3, r.SourceCount)
	assert.InDelta(t, 4.5, r.AvgSentenceLength, 1e-9)
	assert.Len(t, r.TopExamples(3), 3)
	assert.Len(t, r.TopExamples(10), 4)
}

func TestSetSortedIgnoresInsertionOrder(t *testing.T) {
	var a, b Set[int]
	for _, v := range []int{3, 1, 2, 3} {
		a.Add(v)
	}
	for _, v := range []int{2, 3, 1} {
		b.Add(v)
	}
	assert.Equal(t, a.Sorted(), b.Sorted())
	assert.True(t, a.Has(2))
	assert.False(t, a.Add(1))
	assert.Equal(t, 3, a.Len())
	assert.Empty(t, (&Set[string]{}).Sorted())
}
