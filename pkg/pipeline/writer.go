package pipeline

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/japaniel/vocabex/pkg/store"
	"github.com/japaniel/vocabex/pkg/vocab"
)

// SummaryExamples is how many example sentences the summary document carries.
const SummaryExamples = 3

// WordSummary is the listing/search document for a word.
type WordSummary struct {
	Word              string          `json:"word"`
	Original          string          `json:"original"`
	Frequency         int             `json:"frequency"`
	Rank              int             `json:"rank"`
	Difficulty        int             `json:"difficulty"`
	YearRange         vocab.YearRange `json:"yearRange"`
	AvgSentenceLength float64         `json:"avgSentenceLength"`
	Subjects          []string        `json:"subjects"`
	QuestionCount     int             `json:"questionCount"`
	Examples          []string        `json:"examples"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// WordDetail holds every retained example of a word.
type WordDetail struct {
	Word          string          `json:"word"`
	Examples      []vocab.Example `json:"examples"`
	TotalExamples int             `json:"totalExamples"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// WordWriter persists ranked words as summary + detail documents through a BatchWriter.
type WordWriter struct {
	store store.Store
	limit int
	now   func() time.Time

	// Encode builds one write; defaults to store.SetOp.
	Encode func(collection, key string, v any) (store.Op, error)
	// OnError is called for a word whose documents could not be built.
	OnError func(word string, err error)
	Logger  *logrus.Entry
}

// NewWordWriter creates a writer committing at most limit ops at a time.
func NewWordWriter(s store.Store, limit int, now func() time.Time) *WordWriter {
	if now == nil {
		now = time.Now
	}
	return &WordWriter{store: s, limit: limit, now: now, Encode: store.SetOp}
}

// Write persists words in order and returns how many were committed. Per-word
// failures are reported via OnError and skipped; commit failures are returned.
func (w *WordWriter) Write(ctx context.Context, words []vocab.RankedWord) (int, error) {
	committed := 0
	commit := func(ctx context.Context, ops []store.Op) error {
		if err := w.store.Commit(ctx, ops); err != nil {
			return err
		}
		for _, op := range ops {
			if op.Collection == store.CollectionWords {
				committed++
			}
		}
		return nil
	}

	bw := store.NewBatchWriter(commit, w.limit)
	if w.Logger != nil {
		bw.OnCommit = func(n int) {
			w.Logger.Debugf("Committed batch of %d operations", n)
		}
	}

	for _, rw := range words {
		ops, err := w.ops(rw, w.now().UTC())
		if err != nil {
			if w.OnError != nil {
				w.OnError(rw.Word, err)
			}
			continue
		}
		if err := bw.Submit(ctx, ops...); err != nil {
			return committed, err
		}
	}
	if err := bw.Close(ctx); err != nil {
		return committed, err
	}
	return committed, nil
}

func (w *WordWriter) ops(rw vocab.RankedWord, at time.Time) ([]store.Op, error) {
	summary := WordSummary{
		Word:              rw.Word,
		Original:          rw.Original,
		Frequency:         rw.Frequency,
		Rank:              rw.Rank,
		Difficulty:        rw.Difficulty,
		YearRange:         vocab.RangeOf(rw.Years),
		AvgSentenceLength: RoundTo(rw.AvgSentenceLength, 2),
		Subjects:          rw.Subjects,
		QuestionCount:     rw.SourceCount,
		Examples:          rw.TopExamples(SummaryExamples),
		UpdatedAt:         at,
	}
	detail := WordDetail{
		Word:          rw.Word,
		Examples:      rw.Examples,
		TotalExamples: len(rw.Examples),
		UpdatedAt:     at,
	}

	summaryOp, err := w.Encode(store.CollectionWords, rw.Word, summary)
	if err != nil {
		return nil, err
	}
	detailOp, err := w.Encode(store.CollectionExamples, rw.Word, detail)
	if err != nil {
		return nil, err
	}
	return []store.Op{summaryOp, detailOp}, nil
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
