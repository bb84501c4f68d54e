// Package statement builds parameterized CQL statements from registered schemas.
package statement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/murkotick/storefront-catalog/internal/schema"
	"github.com/murkotick/storefront-catalog/internal/store"
)

var (
	ErrParamCountMismatch = errors.New("parameter count mismatch")
	ErrNothingToUpdate    = errors.New("no fields to update")
	ErrMissingWhere       = errors.New("statement requires a where clause")
	ErrUnknownColumn      = errors.New("unknown column")
	ErrBatchSelect        = errors.New("select statements cannot be batched")
)

// Entity is anything that can be written to a registered table.
// Values may omit columns; Insert binds nil for them.
type Entity interface {
	Table() string
	Values() map[string]any
}

type Op string

const (
	OpEq  Op = "="
	OpGte Op = ">="
	OpLte Op = "<="
)

// Cond is one "column op ?" term. Terms are joined with AND.
type Cond struct {
	Column string
	Op     Op
	Value  any
}

func Eq(column string, v any) Cond  { return Cond{Column: column, Op: OpEq, Value: v} }
func Gte(column string, v any) Cond { return Cond{Column: column, Op: OpGte, Value: v} }
func Lte(column string, v any) Cond { return Cond{Column: column, Op: OpLte, Value: v} }

type Builder struct {
	registry *schema.Registry
}

func NewBuilder(registry *schema.Registry) *Builder {
	return &Builder{registry: registry}
}

// Insert writes every registered field of the entity's table in registry order.
func (b *Builder) Insert(e Entity) (store.Statement, error) {
	table := e.Table()
	fields, err := b.registry.Fields(table)
	if err != nil {
		return store.Statement{}, err
	}

	values := e.Values()
	params := make([]any, len(fields))
	for i, f := range fields {
		params[i] = values[f]
	}

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(fields, ", "), placeholders(len(fields)))
	return b.Bind(q, params)
}

// Update sets every registered field present in the entity, except the where columns.
func (b *Builder) Update(e Entity, where ...Cond) (store.Statement, error) {
	table := e.Table()
	fields, err := b.registry.Fields(table)
	if err != nil {
		return store.Statement{}, err
	}
	if len(where) == 0 {
		return store.Statement{}, fmt.Errorf("%w: update %s", ErrMissingWhere, table)
	}

	keys := make(map[string]struct{}, len(where))
	for _, w := range where {
		keys[w.Column] = struct{}{}
	}

	values := e.Values()
	set := make([]Cond, 0, len(fields))
	for _, f := range fields {
		if _, isKey := keys[f]; isKey {
			continue
		}
		if v, ok := values[f]; ok {
			set = append(set, Eq(f, v))
		}
	}
	if len(set) == 0 {
		return store.Statement{}, fmt.Errorf("%w: %s", ErrNothingToUpdate, table)
	}

	return b.update(table, set, where)
}

// UpdateFields writes only the given columns.
func (b *Builder) UpdateFields(table string, set []Cond, where ...Cond) (store.Statement, error) {
	if err := b.checkColumns(table, set); err != nil {
		return store.Statement{}, err
	}
	if err := b.checkColumns(table, where); err != nil {
		return store.Statement{}, err
	}
	if len(set) == 0 {
		return store.Statement{}, fmt.Errorf("%w: %s", ErrNothingToUpdate, table)
	}
	if len(where) == 0 {
		return store.Statement{}, fmt.Errorf("%w: update %s", ErrMissingWhere, table)
	}
	return b.update(table, set, where)
}

func (b *Builder) update(table string, set, where []Cond) (store.Statement, error) {
	assignments := make([]string, len(set))
	params := make([]any, 0, len(set)+len(where))
	for i, s := range set {
		assignments[i] = s.Column + " = ?"
		params = append(params, s.Value)
	}

	clause, whereParams := renderWhere(where)
	params = append(params, whereParams...)

	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(assignments, ", "), clause)
	return b.Bind(q, params)
}

func (b *Builder) Delete(table string, where ...Cond) (store.Statement, error) {
	if err := b.checkColumns(table, where); err != nil {
		return store.Statement{}, err
	}
	if len(where) == 0 {
		return store.Statement{}, fmt.Errorf("%w: delete from %s", ErrMissingWhere, table)
	}

	clause, params := renderWhere(where)
	return b.Bind(fmt.Sprintf("DELETE FROM %s WHERE %s", table, clause), params)
}

// Select reads cols (all columns when empty) filtered by where.
// allowFiltering appends ALLOW FILTERING, needed for non-key predicates.
func (b *Builder) Select(table string, cols []string, where []Cond, allowFiltering bool) (store.Statement, error) {
	if err := b.checkColumns(table, where); err != nil {
		return store.Statement{}, err
	}
	for _, c := range cols {
		if !b.registry.Has(table, c) {
			return store.Statement{}, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, c)
		}
	}

	projection := "*"
	if len(cols) > 0 {
		projection = strings.Join(cols, ", ")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", projection, table)

	var params []any
	if len(where) > 0 {
		clause, p := renderWhere(where)
		sb.WriteString(" WHERE ")
		sb.WriteString(clause)
		params = p
	}
	if allowFiltering {
		sb.WriteString(" ALLOW FILTERING")
	}
	return b.Bind(sb.String(), params)
}

// Bind pairs a query with its positional values after checking the counts agree.
func (b *Builder) Bind(query string, params []any) (store.Statement, error) {
	if n := CountPlaceholders(query); n != len(params) {
		return store.Statement{}, fmt.Errorf("%w: expected %d values, but got %d", ErrParamCountMismatch, n, len(params))
	}
	return store.Statement{Query: query, Params: params}, nil
}

// PrepareBatch checks every statement before they are sent as one batch.
func (b *Builder) PrepareBatch(stmts []store.Statement) ([]store.Statement, error) {
	out := make([]store.Statement, 0, len(stmts))
	for i, st := range stmts {
		kind, err := DetectKind(st.Query)
		if err != nil {
			return nil, fmt.Errorf("batch statement %d: %w", i, err)
		}
		if kind == store.KindSelect {
			return nil, fmt.Errorf("batch statement %d: %w", i, ErrBatchSelect)
		}
		bound, err := b.Bind(st.Query, st.Params)
		if err != nil {
			return nil, fmt.Errorf("batch statement %d: %w", i, err)
		}
		out = append(out, bound)
	}
	return out, nil
}

// DetectKind classifies a query by its leading keyword.
func DetectKind(query string) (store.Kind, error) {
	return store.KindOf(query)
}

func (b *Builder) checkColumns(table string, conds []Cond) error {
	if _, err := b.registry.Descriptor(table); err != nil {
		return err
	}
	for _, c := range conds {
		if !b.registry.Has(table, c.Column) {
			return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, c.Column)
		}
	}
	return nil
}

func renderWhere(where []Cond) (string, []any) {
	terms := make([]string, len(where))
	params := make([]any, len(where))
	for i, w := range where {
		op := w.Op
		if op == "" {
			op = OpEq
		}
		terms[i] = fmt.Sprintf("%s %s ?", w.Column, op)
		params[i] = w.Value
	}
	return strings.Join(terms, " AND "), params
}
