package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/japaniel/vocabex/pkg/config"
	"github.com/japaniel/vocabex/pkg/corpus"
	"github.com/japaniel/vocabex/pkg/store"
	"github.com/japaniel/vocabex/pkg/tokenize"
	"github.com/japaniel/vocabex/pkg/vocab"
)

// ErrAlreadyRun is returned when Run is called on a pipeline that has already started.
var ErrAlreadyRun = errors.New("pipeline: run already started")

// Pipeline drives one extraction run: paginate the corpus, tokenize and fold
// every record, rank the words and persist them.
type Pipeline struct {
	Source    corpus.Source
	Store     store.Store
	Tokenizer *tokenize.Tokenizer
	Logger    *logrus.Entry

	Corpus   config.CorpusConfig
	Settings config.PipelineConfig
	// TokenizerConfig is recorded in the run snapshot only.
	TokenizerConfig config.TokenizerConfig

	// Now is the clock; defaults to time.Now.
	Now func() time.Time
	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) WorkerPoolInterface

	mu    sync.Mutex
	state Status
}

// New creates a Pipeline from configuration.
func New(cfg *config.Config, src corpus.Source, st store.Store, tok *tokenize.Tokenizer, logger *logrus.Entry) *Pipeline {
	if logger == nil {
		l := logrus.New()
		logger = logrus.NewEntry(l)
	}
	return &Pipeline{
		Source:          src,
		Store:           st,
		Tokenizer:       tok,
		Logger:          logger,
		Corpus:          cfg.Corpus,
		Settings:        cfg.Pipeline,
		TokenizerConfig: cfg.Tokenizer,
		Now:             time.Now,
		state:           StatusNotStarted,
	}
}

// State returns the current run state.
func (p *Pipeline) State() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) setState(s Status) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *Pipeline) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// Init checks that the store accepts a write/read/delete and that the corpus
// answers a one-record query. An empty corpus is fine.
func (p *Pipeline) Init(ctx context.Context) error {
	if err := store.Probe(ctx, p.Store, p.now()); err != nil {
		return fmt.Errorf("persistence store unreachable: %w", err)
	}
	if _, err := p.Source.Fetch(ctx, corpus.Page{Number: 0, Size: 1, Fields: p.Corpus.TextFields}); err != nil {
		return fmt.Errorf("corpus source %s unreachable: %w", p.Source.Name(), err)
	}
	return nil
}

// Run executes the pipeline once. Connectivity failures return a nil run.
// Any later fatal error marks the run failed, persists it best-effort and is returned.
func (p *Pipeline) Run(ctx context.Context) (*RunMetadata, error) {
	p.mu.Lock()
	if p.state != StatusNotStarted {
		p.mu.Unlock()
		return nil, ErrAlreadyRun
	}
	p.mu.Unlock()

	if err := p.Init(ctx); err != nil {
		return nil, err
	}

	run := newRun(p.now(), p.snapshot())
	log := p.Logger.WithField("run", run.ID)
	p.setState(StatusRunning)
	log.Infof("Starting vocabulary extraction from %s", p.Source.Name())

	if err := p.saveRun(ctx, run); err != nil {
		return run, p.fail(ctx, run, log, fmt.Errorf("failed to record run start: %w", err))
	}

	agg := vocab.NewAggregator(p.Settings.MaxExamples)
	if err := p.collect(ctx, run, agg, log); err != nil {
		return run, p.fail(ctx, run, log, err)
	}

	ranked, rankStats := vocab.Rank(agg.Words(), vocab.RankOptions{
		MinFrequency: p.Settings.MinFrequency,
		MaxWords:     p.Settings.MaxWords,
	})
	run.applyRank(rankStats)
	log.Infof("Ranked %d of %d unique words (min frequency %d, max %d)",
		rankStats.StoredWords, rankStats.UniqueWords, p.Settings.MinFrequency, p.Settings.MaxWords)

	writer := NewWordWriter(p.Store, p.Settings.BatchLimit, p.now)
	writer.Logger = log
	writer.OnError = func(word string, err error) {
		log.WithError(err).Warnf("Failed to prepare word %q", word)
		run.recordError(StageWord, word, err, p.now())
	}
	written, err := writer.Write(ctx, ranked)
	run.Stats.StoredWords = written
	if err != nil {
		return run, p.fail(ctx, run, log, err)
	}

	run.finish(StatusCompleted, p.now())
	if err := p.saveRun(ctx, run); err != nil {
		return run, p.fail(ctx, run, log, fmt.Errorf("failed to record run completion: %w", err))
	}
	p.setState(StatusCompleted)

	s := run.Stats
	log.WithFields(logrus.Fields{
		"totalQuestions": s.TotalQuestions,
		"totalWords":     s.TotalWords,
		"uniqueWords":    s.UniqueWords,
		"storedWords":    s.StoredWords,
		"topFrequency":   s.TopFrequency,
		"elapsed":        time.Duration(s.ElapsedMillis) * time.Millisecond,
		"errors":         s.Errors,
	}).Info("Vocabulary extraction complete")
	return run, nil
}

// recordResult is the tokenized form of one corpus record.
type recordResult struct {
	ID          string
	Occurrences []tokenize.Occurrence
	Err         error
}

// collect pages through the corpus and folds every record into agg. A failed
// page fetch ends the traversal and is recorded; cancellation is returned.
func (p *Pipeline) collect(ctx context.Context, run *RunMetadata, agg *vocab.Aggregator, log *logrus.Entry) error {
	limit := rate.Inf
	if p.Corpus.PageDelay > 0 {
		limit = rate.Every(p.Corpus.PageDelay)
	}
	limiter := rate.NewLimiter(limit, 1)

	workers := max(p.Settings.Workers, 1)
	var pool WorkerPoolInterface
	if p.PoolFactory != nil {
		pool = p.PoolFactory(workers, workers*2)
	} else {
		pool = NewWorkerPool(workers, workers*2)
	}
	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	pool.Start(poolCtx)
	defer pool.Close()

	interval := max(p.Settings.ProgressInterval, 1)
	for page := 0; ; page++ {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		res, err := p.Source.Fetch(ctx, corpus.Page{Number: page, Size: p.Corpus.PageSize, Fields: p.Corpus.TextFields})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.WithError(err).Warnf("Fetching page %d failed; continuing with %d records", page, run.Stats.TotalQuestions)
			run.recordError(StageFetch, fmt.Sprintf("page %d", page), err, p.now())
			break
		}
		run.Stats.PagesFetched++

		for _, rej := range res.Rejects {
			run.Stats.TotalQuestions++
			run.recordError(StageRecord, rej.ID, rej.Err, p.now())
		}

		results, err := p.tokenizePage(ctx, pool, res.Records)
		if err != nil {
			return err
		}
		for _, r := range results {
			run.Stats.TotalQuestions++
			if r.Err != nil {
				log.WithError(r.Err).Warnf("Skipping record %s", r.ID)
				run.recordError(StageRecord, r.ID, r.Err, p.now())
				continue
			}
			agg.FoldAll(r.Occurrences)
			if run.Stats.TotalQuestions%interval == 0 {
				log.Infof("Processed %d records: %d occurrences, %d unique words",
					run.Stats.TotalQuestions, agg.Occurrences(), agg.Len())
			}
		}

		if res.Len() < p.Corpus.PageSize {
			break
		}
	}

	run.Stats.TotalWords = agg.Occurrences()
	run.Stats.UniqueWords = agg.Len()
	log.Infof("Corpus traversal finished after %d pages and %d records", run.Stats.PagesFetched, run.Stats.TotalQuestions)
	return nil
}

// tokenizePage tokenizes records concurrently and returns results in record order.
// Jobs deliver into a channel sized to the page, so jobs left unrun after
// cancellation never block anything.
func (p *Pipeline) tokenizePage(ctx context.Context, pool WorkerPoolInterface, records []corpus.Record) ([]recordResult, error) {
	type indexed struct {
		idx int
		res recordResult
	}
	out := make(chan indexed, len(records))
	for i := range records {
		idx := i
		job := func(ctx context.Context) error {
			out <- indexed{idx: idx, res: p.processRecord(records[idx])}
			return nil
		}
		if err := pool.SubmitCtx(ctx, job); err != nil {
			return nil, fmt.Errorf("submit record %s: %w", records[idx].ID, err)
		}
	}

	results := make([]recordResult, len(records))
	for range records {
		select {
		case r := <-out:
			results[r.idx] = r.res
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return results, nil
}

func (p *Pipeline) processRecord(rec corpus.Record) (res recordResult) {
	res.ID = rec.ID
	defer func() {
		if r := recover(); r != nil {
			res.Occurrences = nil
			res.Err = fmt.Errorf("tokenizer panic: %v", r)
		}
	}()

	tc := tokenize.Context{SourceID: rec.ID, Year: rec.Year, Subject: rec.Subject}
	for _, text := range rec.Texts {
		res.Occurrences = append(res.Occurrences, p.Tokenizer.Tokenize(text.Value, tc)...)
	}
	return res
}

func (p *Pipeline) snapshot() Snapshot {
	return Snapshot{
		Source:     p.Source.Name(),
		PageSize:   p.Corpus.PageSize,
		TextFields: p.Corpus.TextFields,
		Tokenizer:  p.TokenizerConfig,
		Pipeline:   p.Settings,
	}
}

func (p *Pipeline) saveRun(ctx context.Context, run *RunMetadata) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}
	return p.Store.Set(ctx, store.CollectionRuns, run.ID, data)
}

// fail marks the run failed and persists it. A secondary failure is only logged.
func (p *Pipeline) fail(ctx context.Context, run *RunMetadata, log *logrus.Entry, cause error) error {
	p.setState(StatusFailed)
	run.recordError(StageFatal, run.ID, cause, p.now())
	run.finish(StatusFailed, p.now())
	log.WithError(cause).Error("Vocabulary extraction failed")

	if err := p.saveRun(context.WithoutCancel(ctx), run); err != nil {
		log.WithError(err).Error("Failed to record failed run")
	}
	return cause
}
