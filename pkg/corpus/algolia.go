package corpus

import (
	"context"
	"fmt"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
)

// algoliaIndex is the subset of *search.Index the source needs.
type algoliaIndex interface {
	Search(query string, opts ...interface{}) (search.QueryRes, error)
}

// AlgoliaSource pages through an Algolia index with an empty query.
type AlgoliaSource struct {
	index algoliaIndex
	name  string
	Now   Clock
}

// NewAlgoliaSource connects to the named index.
func NewAlgoliaSource(appID, apiKey, indexName string) (*AlgoliaSource, error) {
	if appID == "" || apiKey == "" {
		return nil, fmt.Errorf("algolia: app id and api key are required")
	}
	client := search.NewClient(appID, apiKey)
	return &AlgoliaSource{index: client.InitIndex(indexName), name: indexName}, nil
}

func (a *AlgoliaSource) Name() string { return "algolia:" + a.name }

func (a *AlgoliaSource) Fetch(ctx context.Context, page Page) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	res, err := a.index.Search("",
		opt.Page(page.Number),
		opt.HitsPerPage(page.Size),
		opt.AttributesToRetrieve(retrieveAttributes(page.Fields)...),
	)
	if err != nil {
		return Result{}, fmt.Errorf("algolia search page %d: %w", page.Number, err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit(h))
	}
	return convert(hits, page.Fields, clockOrNow(a.Now)()), nil
}
