// Package scylla is the gocql-backed store driver for ScyllaDB / Cassandra.
package scylla

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"github.com/murkotick/storefront-catalog/internal/store"
)

type Config struct {
	Hosts          []string
	Keyspace       string
	LocalDC        string
	Consistency    string
	Timeout        time.Duration
	ConnectTimeout time.Duration
	Username       string
	Password       string
}

// Session holds the single gocql session of the process.
type Session struct {
	session *gocql.Session
	closed  atomic.Bool
	log     *zap.Logger
}

var _ store.Session = (*Session)(nil)

// Connect builds the cluster config and opens a session.
// An empty Keyspace connects without one (used by migrations).
func Connect(ctx context.Context, cfg Config, log *zap.Logger) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(cfg.Hosts) == 0 {
		return nil, fmt.Errorf("scylla: no hosts configured")
	}

	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = cfg.Keyspace
	if cfg.Timeout > 0 {
		cluster.Timeout = cfg.Timeout
	}
	if cfg.ConnectTimeout > 0 {
		cluster.ConnectTimeout = cfg.ConnectTimeout
	}

	consistency := gocql.LocalQuorum
	if cfg.Consistency != "" {
		c, err := gocql.ParseConsistencyWrapper(cfg.Consistency)
		if err != nil {
			return nil, fmt.Errorf("scylla: consistency: %w", err)
		}
		consistency = c
	}
	cluster.Consistency = consistency

	if cfg.LocalDC != "" {
		cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.DCAwareRoundRobinPolicy(cfg.LocalDC))
	} else {
		cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	}

	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	s, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("scylla: create session: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}
	log.Info("scylla session established",
		zap.Strings("hosts", cfg.Hosts),
		zap.String("keyspace", cfg.Keyspace),
		zap.String("local_dc", cfg.LocalDC),
		zap.String("consistency", consistency.String()),
	)

	return &Session{session: s, log: log}, nil
}

// Execute runs one statement. SELECTs return exactly one page when FetchSize > 0.
func (s *Session) Execute(ctx context.Context, query string, params []any, opts store.QueryOptions) (*store.ResultSet, error) {
	if s.closed.Load() {
		return nil, store.ErrSessionClosed
	}

	kind, err := store.KindOf(query)
	if err != nil {
		return nil, err
	}

	q := s.session.Query(query, params...).WithContext(ctx)
	if kind != store.KindSelect {
		if err := q.Exec(); err != nil {
			return nil, fmt.Errorf("scylla: %s: %w", kind, err)
		}
		return &store.ResultSet{}, nil
	}

	if opts.FetchSize > 0 {
		state, err := store.DecodePageState(opts.PageState)
		if err != nil {
			return nil, err
		}
		// An explicit page state switches off gocql auto-paging.
		q = q.PageSize(opts.FetchSize).PageState(state)
	}

	iter := q.Iter()
	next := iter.PageState()

	rows := make([]store.Row, 0, iter.NumRows())
	for {
		row := make(map[string]any)
		if !iter.MapScan(row) {
			break
		}
		rows = append(rows, store.Row(row))
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("scylla: select: %w", err)
	}

	return &store.ResultSet{Rows: rows, PageState: store.EncodePageState(next)}, nil
}

// Batch applies all statements as one logged batch.
func (s *Session) Batch(ctx context.Context, stmts []store.Statement) error {
	if s.closed.Load() {
		return store.ErrSessionClosed
	}
	if len(stmts) == 0 {
		return nil
	}

	b := s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	for _, st := range stmts {
		b.Query(st.Query, st.Params...)
	}
	if err := s.session.ExecuteBatch(b); err != nil {
		return fmt.Errorf("scylla: batch of %d: %w", len(stmts), err)
	}
	return nil
}

// Close tears the session down. Calling it twice is harmless.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.session.Close()
	s.log.Info("scylla session closed")
	return nil
}

// ApplySchema runs DDL statements in order, waiting for schema agreement
// after each one.
func (s *Session) ApplySchema(ctx context.Context, stmts []string) error {
	if s.closed.Load() {
		return store.ErrSessionClosed
	}
	for i, stmt := range stmts {
		if err := s.session.Query(stmt).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("scylla: schema statement %d: %w", i+1, err)
		}
		if err := s.session.AwaitSchemaAgreement(ctx); err != nil {
			return fmt.Errorf("scylla: schema agreement: %w", err)
		}
	}
	s.log.Info("schema applied", zap.Int("statements", len(stmts)))
	return nil
}
