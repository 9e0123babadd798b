package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCommitter struct {
	sizes []int
	fail  error
}

func (r *recordingCommitter) commit(ctx context.Context, ops []Op) error {
	if r.fail != nil {
		return r.fail
	}
	r.sizes = append(r.sizes, len(ops))
	return nil
}

func wordOps(i int) []Op {
	key := fmt.Sprintf("word%d", i)
	return []Op{
		{Collection: CollectionWords, Key: key, Value: []byte(`{}`)},
		{Collection: CollectionExamples, Key: key, Value: []byte(`{}`)},
	}
}

func TestBatchWriterSplitsAtLimit(t *testing.T) {
	ctx := context.Background()
	rc := &recordingCommitter{}
	bw := NewBatchWriter(rc.commit, 500)

	for i := 0; i < 1200; i++ {
		require.NoError(t, bw.Submit(ctx, wordOps(i)...))
	}
	require.NoError(t, bw.Close(ctx))

	assert.Equal(t, []int{500, 500, 500, 500, 400}, rc.sizes)
	assert.Equal(t, 5, bw.Commits())
}

func TestBatchWriterNeverSplitsAGroup(t *testing.T) {
	ctx := context.Background()
	rc := &recordingCommitter{}
	bw := NewBatchWriter(rc.commit, 5)

	for i := 0; i < 7; i++ {
		require.NoError(t, bw.Submit(ctx, wordOps(i)...))
	}
	require.NoError(t, bw.Close(ctx))

	// 2+2 fit, the third pair would exceed 5 so the batch is committed at 4.
	assert.Equal(t, []int{4, 4, 4, 2}, rc.sizes)
	for _, s := range rc.sizes {
		assert.LessOrEqual(t, s, 5)
	}
}

func TestBatchWriterRejectsOversizedGroup(t *testing.T) {
	rc := &recordingCommitter{}
	bw := NewBatchWriter(rc.commit, 1)
	err := bw.Submit(context.Background(), wordOps(0)...)
	assert.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestBatchWriterPropagatesCommitError(t *testing.T) {
	boom := errors.New("quota exceeded")
	rc := &recordingCommitter{fail: boom}
	bw := NewBatchWriter(rc.commit, 2)

	err := bw.Submit(context.Background(), wordOps(0)...)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, bw.Commits())
}

func TestBatchWriterClose(t *testing.T) {
	ctx := context.Background()
	rc := &recordingCommitter{}
	var committed []int
	bw := NewBatchWriter(rc.commit, 10)
	bw.OnCommit = func(n int) { committed = append(committed, n) }

	require.NoError(t, bw.Submit(ctx, wordOps(0)...))
	require.NoError(t, bw.Close(ctx))
	assert.Equal(t, []int{2}, committed)

	assert.Equal(t, ErrBatchWriterClosed, bw.Close(ctx))
	assert.Equal(t, ErrBatchWriterClosed, bw.Submit(ctx, wordOps(1)...))
}

func TestBatchWriterEmptyCloseDoesNotCommit(t *testing.T) {
	rc := &recordingCommitter{}
	bw := NewBatchWriter(rc.commit, 10)
	require.NoError(t, bw.Close(context.Background()))
	assert.Empty(t, rc.sizes)
}
