// Package store defines the generic statement executor used by the catalog.
// Drivers live in the sub-packages (scylla, spanner, memstore).
package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	ErrInvalidPageState = errors.New("store: invalid page state")
	ErrSessionClosed    = errors.New("store: session is closed")
)

// Statement is a query with its positional parameters.
type Statement struct {
	Query  string
	Params []any
}

// QueryOptions control paging of a SELECT.
// FetchSize == 0 lets the driver decide; PageState resumes a previous page.
type QueryOptions struct {
	FetchSize int
	PageState string
}

// Row maps column names to decoded Go values.
type Row map[string]any

// ResultSet is one page of rows plus the token for the next page.
// PageState is empty when there are no more rows.
type ResultSet struct {
	Rows      []Row
	PageState string
}

// Executor runs statements against the store.
type Executor interface {
	Execute(ctx context.Context, query string, params []any, opts QueryOptions) (*ResultSet, error)
	Batch(ctx context.Context, stmts []Statement) error
}

// Session is an Executor bound to a live connection.
type Session interface {
	Executor
	Close() error
}

// EncodePageState turns a raw driver paging token into an opaque string.
func EncodePageState(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodePageState reverses EncodePageState. An empty state decodes to nil.
func DecodePageState(state string) ([]byte, error) {
	if state == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(state)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPageState, err)
	}
	return raw, nil
}
