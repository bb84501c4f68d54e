// Package spanner runs catalog statements on Cloud Spanner.
//
// Statements arrive in CQL shape: positional ? placeholders and an optional
// trailing ALLOW FILTERING. Both are translated to GoogleSQL here.
package spanner

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	"github.com/murkotick/storefront-catalog/internal/statement"
	"github.com/murkotick/storefront-catalog/internal/store"
)

var allowFiltering = regexp.MustCompile(`(?i)\s+ALLOW\s+FILTERING\s*$`)

type Executor struct {
	client *spanner.Client
}

var _ store.Session = (*Executor)(nil)

func New(client *spanner.Client) *Executor {
	return &Executor{client: client}
}

func (e *Executor) Execute(ctx context.Context, query string, params []any, opts store.QueryOptions) (*store.ResultSet, error) {
	if e.client == nil {
		return nil, fmt.Errorf("spanner: client is nil")
	}

	kind, err := store.KindOf(query)
	if err != nil {
		return nil, err
	}

	stmt, err := toStatement(query, params)
	if err != nil {
		return nil, err
	}

	if kind != store.KindSelect {
		_, err := e.client.ReadWriteTransaction(ctx, func(ctx context.Context, tx *spanner.ReadWriteTransaction) error {
			_, err := tx.Update(ctx, stmt)
			return err
		})
		if err != nil {
			return nil, classify(kind, err)
		}
		return &store.ResultSet{}, nil
	}

	offset := 0
	if opts.FetchSize > 0 {
		offset, err = decodePageToken(opts.PageState)
		if err != nil {
			return nil, err
		}
		// Fetch one extra row to learn whether another page exists.
		stmt.SQL += " LIMIT @pagelimit OFFSET @pageoffset"
		stmt.Params["pagelimit"] = int64(opts.FetchSize + 1)
		stmt.Params["pageoffset"] = int64(offset)
	}

	iter := e.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	rows := make([]store.Row, 0)
	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, classify(kind, err)
		}
		decoded, err := decodeRow(row)
		if err != nil {
			return nil, err
		}
		rows = append(rows, decoded)
	}

	rs := &store.ResultSet{Rows: rows}
	if opts.FetchSize > 0 && len(rows) > opts.FetchSize {
		rs.Rows = rows[:opts.FetchSize]
		rs.PageState = encodePageToken(offset + opts.FetchSize)
	}
	return rs, nil
}

// Batch runs every statement through a single BatchUpdate in one transaction.
func (e *Executor) Batch(ctx context.Context, stmts []store.Statement) error {
	if len(stmts) == 0 {
		return nil
	}

	converted := make([]spanner.Statement, 0, len(stmts))
	for _, st := range stmts {
		s, err := toStatement(st.Query, st.Params)
		if err != nil {
			return err
		}
		converted = append(converted, s)
	}

	_, err := e.client.ReadWriteTransaction(ctx, func(ctx context.Context, tx *spanner.ReadWriteTransaction) error {
		_, err := tx.BatchUpdate(ctx, converted)
		return err
	})
	if err != nil {
		return classify(store.KindBatch, err)
	}
	return nil
}

func (e *Executor) Close() error {
	if e.client != nil {
		e.client.Close()
	}
	return nil
}

func toStatement(query string, params []any) (spanner.Statement, error) {
	if n := statement.CountPlaceholders(query); n != len(params) {
		return spanner.Statement{}, fmt.Errorf("%w: expected %d values, got %d", statement.ErrParamCountMismatch, n, len(params))
	}

	sql := allowFiltering.ReplaceAllString(query, "")
	sql = statement.RewritePlaceholders(sql, func(i int) string {
		return "@p" + strconv.Itoa(i+1)
	})

	bound := make(map[string]interface{}, len(params)+2)
	for i, p := range params {
		bound["p"+strconv.Itoa(i+1)] = p
	}
	return spanner.Statement{SQL: sql, Params: bound}, nil
}

func classify(kind store.Kind, err error) error {
	switch spanner.ErrCode(err) {
	case codes.Canceled:
		return fmt.Errorf("spanner: %s: %w", kind, context.Canceled)
	case codes.DeadlineExceeded:
		return fmt.Errorf("spanner: %s: %w", kind, context.DeadlineExceeded)
	}
	return fmt.Errorf("spanner: %s: %w", kind, err)
}
