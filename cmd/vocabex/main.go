package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/japaniel/vocabex/pkg/config"
	"github.com/japaniel/vocabex/pkg/corpus"
	"github.com/japaniel/vocabex/pkg/pipeline"
	"github.com/japaniel/vocabex/pkg/store"
	"github.com/japaniel/vocabex/pkg/tokenize"
)

func main() {
	// All settings come from the environment; see config.Load.
	cfg := config.Load()

	logger := newLogger(cfg.LogLevel)

	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if _, err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Error("Extraction failed")
		os.Exit(1)
	}
}

func newLogger(level string) *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Unknown log level %q, using info", level)
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger.WithField("service", "vocabex")
}

// run wires the configured source, store and tokenizer and executes one extraction.
func run(ctx context.Context, cfg *config.Config, logger *logrus.Entry) (*pipeline.RunMetadata, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	src, err := openSource(cfg.Corpus)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}

	st, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	tok, err := newTokenizer(cfg.Tokenizer, logger)
	if err != nil {
		return nil, err
	}

	return pipeline.New(cfg, src, st, tok, logger).Run(ctx)
}

func openSource(c config.CorpusConfig) (corpus.Source, error) {
	switch c.Source {
	case "algolia":
		return corpus.NewAlgoliaSource(c.AlgoliaAppID, c.AlgoliaAPIKey, c.Index)
	case "jsonl":
		return corpus.OpenJSONL(c.Index)
	case "htmldir":
		return corpus.OpenHTMLDir(c.Index)
	}
	return nil, fmt.Errorf("unknown corpus source %q", c.Source)
}

func openStore(ctx context.Context, c config.StorageConfig) (store.Store, error) {
	switch c.Backend {
	case "sqlite":
		return store.OpenSQLite(c.SQLitePath)
	case "redis":
		return store.ConnectRedis(ctx, store.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
			Prefix:   "vocabex:",
		})
	case "cassandra":
		return store.ConnectCassandra(store.CassandraOptions{
			Hosts:    c.CassandraHosts,
			Keyspace: c.CassandraKeyspace,
		})
	}
	return nil, fmt.Errorf("unknown store %q", c.Backend)
}

func newTokenizer(c config.TokenizerConfig, logger *logrus.Entry) (*tokenize.Tokenizer, error) {
	var seg tokenize.Segmenter
	if c.Language == "ja" {
		ja, err := tokenize.NewJapanese()
		if err != nil {
			return nil, fmt.Errorf("failed to create Japanese tokenizer: %w", err)
		}
		seg = ja
	}

	stop := tokenize.DefaultStopWords(c.Language)
	if c.StopWordsFile != "" {
		extra, err := tokenize.LoadStopWords(c.StopWordsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load stop words: %w", err)
		}
		stop = stop.Merge(extra)
		logger.Infof("Loaded %d extra stop words from %s", len(extra), c.StopWordsFile)
	}

	return tokenize.New(tokenize.Options{
		MinWordLength:   c.MinWordLength,
		MaxWordLength:   c.MaxWordLength,
		FilterStopWords: c.FilterStopWords,
		StopWords:       stop,
	}, seg), nil
}
