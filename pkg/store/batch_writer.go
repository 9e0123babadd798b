package store

import (
	"context"
	"fmt"
	"sync"
)

// CommitFunc atomically applies one batch of ops.
type CommitFunc func(ctx context.Context, ops []Op) error

// BatchWriter buffers ops and commits them in groups of at most maxOps.
// Ops submitted together are never split across commits.
type BatchWriter struct {
	mu      sync.Mutex
	buf     []Op
	cap     int
	commit  CommitFunc
	closed  bool
	commits int

	// OnCommit, if set, is called after each successful commit with the batch size.
	OnCommit func(ops int)
}

// NewBatchWriter creates a BatchWriter.
// commit: applies a batch, usually Store.Commit.
// maxOps: flush when the buffer reaches this many ops.
func NewBatchWriter(commit CommitFunc, maxOps int) *BatchWriter {
	if maxOps <= 0 {
		maxOps = 500
	}
	return &BatchWriter{
		buf:    make([]Op, 0, maxOps),
		cap:    maxOps,
		commit: commit,
	}
}

// Submit enqueues a group of ops, committing the current batch first if the
// group would not fit, and after if the batch is full. Commit errors are returned.
func (bw *BatchWriter) Submit(ctx context.Context, ops ...Op) error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	if len(ops) > bw.cap {
		return fmt.Errorf("%w: %d ops, limit %d", ErrBatchTooLarge, len(ops), bw.cap)
	}
	if len(bw.buf)+len(ops) > bw.cap {
		if err := bw.flushLocked(ctx); err != nil {
			return err
		}
	}
	bw.buf = append(bw.buf, ops...)
	if len(bw.buf) >= bw.cap {
		return bw.flushLocked(ctx)
	}
	return nil
}

// Flush commits any buffered ops.
func (bw *BatchWriter) Flush(ctx context.Context) error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	return bw.flushLocked(ctx)
}

// flushLocked assumes bw.mu is held.
func (bw *BatchWriter) flushLocked(ctx context.Context) error {
	if len(bw.buf) == 0 {
		return nil
	}
	batch := bw.buf
	bw.buf = make([]Op, 0, bw.cap)

	if err := bw.commit(ctx, batch); err != nil {
		return fmt.Errorf("failed to commit batch (%d ops): %w", len(batch), err)
	}
	bw.commits++
	if bw.OnCommit != nil {
		bw.OnCommit(len(batch))
	}
	return nil
}

// Close commits the remaining partial batch and stops accepting submissions.
func (bw *BatchWriter) Close(ctx context.Context) error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	bw.closed = true
	return bw.flushLocked(ctx)
}

// Commits returns the number of successful commits.
func (bw *BatchWriter) Commits() int {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	return bw.commits
}

var (
	ErrBatchWriterClosed = &BatchWriterError{"batch writer closed"}
	ErrBatchTooLarge     = &BatchWriterError{"op group exceeds batch limit"}
)

type BatchWriterError struct{ msg string }

func (e *BatchWriterError) Error() string { return e.msg }
