// Package corpus reads exam-question records page by page from a search index,
// a JSON-lines export or a directory of saved HTML papers.
package corpus

import (
	"context"
	"time"
)

// Page selects one page of a corpus.
type Page struct {
	Number int // zero-based
	Size   int
	Fields []string // text fields to retrieve
}

// Source is a paginated record source.
type Source interface {
	// Fetch returns one page. A page shorter than Size means the corpus is exhausted.
	Fetch(ctx context.Context, page Page) (Result, error)
	Name() string
}

// Clock returns the current time; sources use it to default missing years.
type Clock func() time.Time

func clockOrNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

// retrieveAttributes is the projection sent to sources that support one.
func retrieveAttributes(fields []string) []string {
	attrs := append([]string{"objectID", "id", "year", "subject", "category", "paper_info"}, fields...)
	return attrs
}
