// Package memstore is an in-process store for local development and tests.
//
// It understands the statement shapes produced by the statement builder:
// INSERT ... VALUES, UPDATE ... SET ... WHERE, DELETE FROM ... WHERE and
// SELECT ... [WHERE ...] [ALLOW FILTERING] with =, >= and <= terms.
// Writes are upserts keyed by the table's registered primary key.
package memstore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/murkotick/storefront-catalog/internal/schema"
	"github.com/murkotick/storefront-catalog/internal/statement"
	"github.com/murkotick/storefront-catalog/internal/store"
)

var ErrUnsupportedStatement = errors.New("memstore: unsupported statement")

var (
	insertRe = regexp.MustCompile(`^INSERT INTO (\w+) \(([^)]*)\) VALUES \(([^)]*)\)$`)
	updateRe = regexp.MustCompile(`^UPDATE (\w+) SET (.+?) WHERE (.+)$`)
	deleteRe = regexp.MustCompile(`^DELETE FROM (\w+) WHERE (.+)$`)
	selectRe = regexp.MustCompile(`^SELECT (.+?) FROM (\w+)(?: WHERE (.+?))?( ALLOW FILTERING)?$`)
	termRe   = regexp.MustCompile(`^(\w+) (=|>=|<=) \?$`)
)

type table struct {
	order []string
	rows  map[string]store.Row
}

type Store struct {
	mu       sync.RWMutex
	registry *schema.Registry
	tables   map[string]*table
	closed   bool
}

var _ store.Session = (*Store)(nil)

func New(registry *schema.Registry) *Store {
	return &Store{registry: registry, tables: make(map[string]*table)}
}

func (s *Store) Execute(ctx context.Context, query string, params []any, opts store.QueryOptions) (*store.ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n := statement.CountPlaceholders(query); n != len(params) {
		return nil, fmt.Errorf("%w: expected %d values, got %d", statement.ErrParamCountMismatch, n, len(params))
	}

	kind, err := store.KindOf(query)
	if err != nil {
		return nil, err
	}

	if kind == store.KindSelect {
		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.closed {
			return nil, store.ErrSessionClosed
		}
		return s.selectRows(query, params, opts)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, store.ErrSessionClosed
	}
	if err := s.apply(kind, query, params); err != nil {
		return nil, err
	}
	return &store.ResultSet{}, nil
}

// Batch applies all statements or none.
func (s *Store) Batch(ctx context.Context, stmts []store.Statement) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrSessionClosed
	}

	snapshot := s.snapshot()
	for i, st := range stmts {
		kind, err := store.KindOf(st.Query)
		if err == nil && kind == store.KindSelect {
			err = statement.ErrBatchSelect
		}
		if err == nil {
			err = s.apply(kind, st.Query, st.Params)
		}
		if err != nil {
			s.tables = snapshot
			return fmt.Errorf("memstore: batch statement %d: %w", i, err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *Store) apply(kind store.Kind, query string, params []any) error {
	if n := statement.CountPlaceholders(query); n != len(params) {
		return fmt.Errorf("%w: expected %d values, got %d", statement.ErrParamCountMismatch, n, len(params))
	}

	switch kind {
	case store.KindInsert:
		m := insertRe.FindStringSubmatch(query)
		if m == nil {
			return fmt.Errorf("%w: %s", ErrUnsupportedStatement, query)
		}
		cols := splitList(m[2])
		if len(cols) != len(params) {
			return fmt.Errorf("%w: %d columns for %d values", ErrUnsupportedStatement, len(cols), len(params))
		}
		row := make(store.Row, len(cols))
		for i, c := range cols {
			row[c] = params[i]
		}
		return s.upsert(m[1], row)

	case store.KindUpdate:
		m := updateRe.FindStringSubmatch(query)
		if m == nil {
			return fmt.Errorf("%w: %s", ErrUnsupportedStatement, query)
		}
		assignments := splitList(m[2])
		row := make(store.Row, len(assignments))
		for i, a := range assignments {
			col, ok := strings.CutSuffix(a, " = ?")
			if !ok {
				return fmt.Errorf("%w: assignment %q", ErrUnsupportedStatement, a)
			}
			row[col] = params[i]
		}
		conds, err := parseWhere(m[3], params[len(assignments):])
		if err != nil {
			return err
		}
		for _, c := range conds {
			if c.Op != statement.OpEq {
				return fmt.Errorf("%w: update key must use =", ErrUnsupportedStatement)
			}
			row[c.Column] = c.Value
		}
		return s.upsert(m[1], row)

	case store.KindDelete:
		m := deleteRe.FindStringSubmatch(query)
		if m == nil {
			return fmt.Errorf("%w: %s", ErrUnsupportedStatement, query)
		}
		conds, err := parseWhere(m[2], params)
		if err != nil {
			return err
		}
		t, err := s.table(m[1])
		if err != nil {
			return err
		}
		for _, id := range t.order {
			if matches(t.rows[id], conds) {
				delete(t.rows, id)
			}
		}
		t.compact()
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedStatement, query)
}

func (s *Store) selectRows(query string, params []any, opts store.QueryOptions) (*store.ResultSet, error) {
	m := selectRe.FindStringSubmatch(query)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedStatement, query)
	}

	var conds []statement.Cond
	if m[3] != "" {
		c, err := parseWhere(m[3], params)
		if err != nil {
			return nil, err
		}
		conds = c
	}

	t, err := s.table(m[2])
	if err != nil {
		return nil, err
	}

	var cols []string
	if m[1] != "*" {
		cols = splitList(m[1])
	}

	offset, err := decodeOffset(opts.PageState)
	if err != nil {
		return nil, err
	}

	matched := make([]store.Row, 0)
	for _, id := range t.order {
		row := t.rows[id]
		if matches(row, conds) {
			matched = append(matched, project(row, cols))
		}
	}

	rs := &store.ResultSet{}
	if offset >= len(matched) {
		return rs, nil
	}
	matched = matched[offset:]
	if opts.FetchSize > 0 && len(matched) > opts.FetchSize {
		matched = matched[:opts.FetchSize]
		rs.PageState = encodeOffset(offset + opts.FetchSize)
	}
	rs.Rows = matched
	return rs, nil
}

func (s *Store) upsert(name string, row store.Row) error {
	t, err := s.table(name)
	if err != nil {
		return err
	}
	key, err := s.key(name, row)
	if err != nil {
		return err
	}

	existing, ok := t.rows[key]
	if !ok {
		existing = make(store.Row, len(row))
		t.order = append(t.order, key)
		t.rows[key] = existing
	}
	for c, v := range row {
		existing[c] = v
	}
	return nil
}

func (s *Store) key(name string, row store.Row) (string, error) {
	d, err := s.registry.Descriptor(name)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(d.Key))
	for i, k := range d.Key {
		v, ok := row[k]
		if !ok || v == nil {
			return "", fmt.Errorf("memstore: %s: missing key column %s", name, k)
		}
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, "\x00"), nil
}

func (s *Store) table(name string) (*table, error) {
	if _, err := s.registry.Descriptor(name); err != nil {
		return nil, err
	}
	t, ok := s.tables[name]
	if !ok {
		t = &table{rows: make(map[string]store.Row)}
		s.tables[name] = t
	}
	return t, nil
}

func (s *Store) snapshot() map[string]*table {
	out := make(map[string]*table, len(s.tables))
	for name, t := range s.tables {
		cp := &table{order: append([]string(nil), t.order...), rows: make(map[string]store.Row, len(t.rows))}
		for k, r := range t.rows {
			row := make(store.Row, len(r))
			for c, v := range r {
				row[c] = v
			}
			cp.rows[k] = row
		}
		out[name] = cp
	}
	return out
}

func (t *table) compact() {
	kept := t.order[:0]
	for _, id := range t.order {
		if _, ok := t.rows[id]; ok {
			kept = append(kept, id)
		}
	}
	t.order = kept
}

func parseWhere(clause string, params []any) ([]statement.Cond, error) {
	terms := strings.Split(clause, " AND ")
	if len(terms) != len(params) {
		return nil, fmt.Errorf("%w: where %q", ErrUnsupportedStatement, clause)
	}
	out := make([]statement.Cond, len(terms))
	for i, term := range terms {
		m := termRe.FindStringSubmatch(strings.TrimSpace(term))
		if m == nil {
			return nil, fmt.Errorf("%w: term %q", ErrUnsupportedStatement, term)
		}
		out[i] = statement.Cond{Column: m[1], Op: statement.Op(m[2]), Value: params[i]}
	}
	return out, nil
}

func matches(row store.Row, conds []statement.Cond) bool {
	for _, c := range conds {
		cmp, ok := compare(row[c.Column], c.Value)
		if !ok {
			return false
		}
		switch c.Op {
		case statement.OpEq:
			if cmp != 0 {
				return false
			}
		case statement.OpGte:
			if cmp < 0 {
				return false
			}
		case statement.OpLte:
			if cmp > 0 {
				return false
			}
		}
	}
	return true
}

// compare orders a against b. Numbers compare numerically, times chronologically,
// everything else by string form.
func compare(a, b any) (int, bool) {
	if a == nil || b == nil {
		return 0, a == nil && b == nil
	}
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return ta.Compare(tb), true
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b)), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func project(row store.Row, cols []string) store.Row {
	out := make(store.Row, len(row))
	if len(cols) == 0 {
		for c, v := range row {
			out[c] = v
		}
		return out
	}
	for _, c := range cols {
		out[c] = row[c]
	}
	return out
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func encodeOffset(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

func decodeOffset(state string) (int, error) {
	if state == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(state)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", store.ErrInvalidPageState, err)
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", store.ErrInvalidPageState, raw)
	}
	return n, nil
}
