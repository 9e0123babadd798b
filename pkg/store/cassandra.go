package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
)

const cassandraSchema = `CREATE TABLE IF NOT EXISTS documents (
	collection text,
	doc_key text,
	value text,
	updated_at timestamp,
	PRIMARY KEY ((collection), doc_key)
)`

// CassandraStore keeps documents in a table partitioned by collection.
type CassandraStore struct {
	session *gocql.Session
	now     func() time.Time
}

// CassandraOptions configures ConnectCassandra.
type CassandraOptions struct {
	Hosts    []string
	Keyspace string
	Timeout  time.Duration
}

// ConnectCassandra establishes a session and creates the documents table if needed.
func ConnectCassandra(opts CassandraOptions) (*CassandraStore, error) {
	cluster := gocql.NewCluster(opts.Hosts...)
	cluster.Keyspace = opts.Keyspace
	cluster.Consistency = gocql.Quorum
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cluster.Timeout = timeout
	cluster.ConnectTimeout = timeout

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Cassandra: %w", err)
	}
	if err := session.Query(cassandraSchema).Exec(); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}
	return &CassandraStore{session: session, now: time.Now}, nil
}

func (c *CassandraStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	var value string
	err := c.session.Query(`SELECT value FROM documents WHERE collection = ? AND doc_key = ?`,
		collection, key).WithContext(ctx).Scan(&value)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %s/%s: %w", collection, key, err)
	}
	return []byte(value), nil
}

func (c *CassandraStore) Set(ctx context.Context, collection, key string, value []byte) error {
	return c.session.Query(`INSERT INTO documents (collection, doc_key, value, updated_at) VALUES (?, ?, ?, ?)`,
		collection, key, string(value), c.now()).WithContext(ctx).Exec()
}

func (c *CassandraStore) Delete(ctx context.Context, collection, key string) error {
	return c.session.Query(`DELETE FROM documents WHERE collection = ? AND doc_key = ?`,
		collection, key).WithContext(ctx).Exec()
}

// Commit sends the ops as one logged batch.
func (c *CassandraStore) Commit(ctx context.Context, ops []Op) error {
	b := c.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	now := c.now()
	for _, op := range ops {
		b.Query(`INSERT INTO documents (collection, doc_key, value, updated_at) VALUES (?, ?, ?, ?)`,
			op.Collection, op.Key, string(op.Value), now)
	}
	if err := c.session.ExecuteBatch(b); err != nil {
		return fmt.Errorf("cassandra batch (%d ops): %w", len(ops), err)
	}
	return nil
}

func (c *CassandraStore) Close() error {
	c.session.Close()
	return nil
}
