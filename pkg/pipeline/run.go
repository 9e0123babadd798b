package pipeline

import (
	"fmt"
	"time"

	"github.com/japaniel/vocabex/pkg/config"
	"github.com/japaniel/vocabex/pkg/vocab"
)

// MaxLoggedErrors bounds the error list persisted with a run.
const MaxLoggedErrors = 100

// Status of a run.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusRunning    Status = "running"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Error stages.
const (
	StageFetch  = "fetch"
	StageRecord = "record"
	StageWord   = "word"
	StageFatal  = "fatal"
)

// ErrorEntry is one recorded failure.
type ErrorEntry struct {
	Stage   string    `json:"stage"`
	Key     string    `json:"key"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Stats is the run-level statistics snapshot.
type Stats struct {
	TotalQuestions int   `json:"totalQuestions"`
	TotalWords     int   `json:"totalWords"`
	UniqueWords    int   `json:"uniqueWords"`
	FilteredWords  int   `json:"filteredWords"`
	StoredWords    int   `json:"storedWords"`
	TopFrequency   int   `json:"topFrequency"`
	PagesFetched   int   `json:"pagesFetched"`
	Errors         int   `json:"errors"`
	ElapsedMillis  int64 `json:"elapsedMs"`
}

// Snapshot records the limits a run used.
type Snapshot struct {
	Source     string                 `json:"source"`
	PageSize   int                    `json:"pageSize"`
	TextFields []string               `json:"textFields"`
	Tokenizer  config.TokenizerConfig `json:"tokenizer"`
	Pipeline   config.PipelineConfig  `json:"pipeline"`
}

// RunMetadata is the durable record of one extraction run.
type RunMetadata struct {
	ID        string       `json:"id"`
	Status    Status       `json:"status"`
	StartTime time.Time    `json:"startTime"`
	EndTime   *time.Time   `json:"endTime,omitempty"`
	Stats     Stats        `json:"stats"`
	Errors    []ErrorEntry `json:"errors"`
	Config    Snapshot     `json:"config"`
}

// RunID derives a run identifier from its start time.
func RunID(start time.Time) string {
	return fmt.Sprintf("run_%d", start.UnixMilli())
}

func newRun(start time.Time, snap Snapshot) *RunMetadata {
	return &RunMetadata{
		ID:        RunID(start),
		Status:    StatusRunning,
		StartTime: start.UTC(),
		Errors:    []ErrorEntry{},
		Config:    snap,
	}
}

// recordError counts every error and keeps the first MaxLoggedErrors.
func (r *RunMetadata) recordError(stage, key string, err error, at time.Time) {
	r.Stats.Errors++
	if len(r.Errors) >= MaxLoggedErrors {
		return
	}
	r.Errors = append(r.Errors, ErrorEntry{Stage: stage, Key: key, Message: err.Error(), At: at.UTC()})
}

func (r *RunMetadata) applyRank(s vocab.RankStats) {
	r.Stats.UniqueWords = s.UniqueWords
	r.Stats.FilteredWords = s.FilteredWords
	r.Stats.StoredWords = s.StoredWords
	r.Stats.TopFrequency = s.TopFrequency
}

func (r *RunMetadata) finish(status Status, end time.Time) {
	end = end.UTC()
	r.Status = status
	r.EndTime = &end
	r.Stats.ElapsedMillis = end.Sub(r.StartTime).Milliseconds()
}
