package corpus

import "context"

// SliceSource serves in-memory hits. FailPages maps page numbers to errors
// returned instead of data.
type SliceSource struct {
	Hits      []Hit
	FailPages map[int]error
	Now       Clock

	// Requests records every page requested, in order.
	Requests []Page
}

func (s *SliceSource) Name() string { return "memory" }

func (s *SliceSource) Fetch(ctx context.Context, page Page) (Result, error) {
	s.Requests = append(s.Requests, page)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err, ok := s.FailPages[page.Number]; ok {
		return Result{}, err
	}
	start := page.Number * page.Size
	if start >= len(s.Hits) || page.Size <= 0 {
		return Result{}, nil
	}
	end := min(start+page.Size, len(s.Hits))
	return convert(s.Hits[start:end], page.Fields, clockOrNow(s.Now)()), nil
}
