// Package schema keeps the static column layout of every persisted table.
package schema

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	ErrSchemaNotFound    = errors.New("schema not found for table")
	ErrAlreadyRegistered = errors.New("schema already registered")
	ErrInvalidDescriptor = errors.New("invalid schema descriptor")
	ErrRegistryFrozen    = errors.New("schema registry is frozen")
)

// Descriptor is the ordered field list of a table. Key lists the primary key columns.
type Descriptor struct {
	Table  string
	Key    []string
	Fields []string
}

func (d Descriptor) validate() error {
	if d.Table == "" {
		return fmt.Errorf("%w: empty table name", ErrInvalidDescriptor)
	}
	if len(d.Fields) == 0 {
		return fmt.Errorf("%w: %s has no fields", ErrInvalidDescriptor, d.Table)
	}
	seen := make(map[string]struct{}, len(d.Fields))
	for _, f := range d.Fields {
		if f == "" {
			return fmt.Errorf("%w: %s has an empty field name", ErrInvalidDescriptor, d.Table)
		}
		if _, dup := seen[f]; dup {
			return fmt.Errorf("%w: %s lists %q twice", ErrInvalidDescriptor, d.Table, f)
		}
		seen[f] = struct{}{}
	}
	if len(d.Key) == 0 {
		return fmt.Errorf("%w: %s has no key", ErrInvalidDescriptor, d.Table)
	}
	for _, k := range d.Key {
		if _, ok := seen[k]; !ok {
			return fmt.Errorf("%w: key %q of %s is not a field", ErrInvalidDescriptor, k, d.Table)
		}
	}
	return nil
}

func (d Descriptor) clone() Descriptor {
	return Descriptor{Table: d.Table, Key: slices.Clone(d.Key), Fields: slices.Clone(d.Fields)}
}

// Registry maps table names to descriptors. Writes happen at startup,
// reads are safe from any goroutine.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]Descriptor
	frozen bool
}

func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]Descriptor)}
}

func (r *Registry) Register(d Descriptor) error {
	if err := d.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("%w: cannot register %s", ErrRegistryFrozen, d.Table)
	}
	if _, ok := r.tables[d.Table]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, d.Table)
	}
	r.tables[d.Table] = d.clone()
	return nil
}

// Fields returns a copy of the ordered field list for table.
func (r *Registry) Fields(table string) ([]string, error) {
	d, err := r.Descriptor(table)
	if err != nil {
		return nil, err
	}
	return d.Fields, nil
}

func (r *Registry) Descriptor(table string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.tables[table]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrSchemaNotFound, table)
	}
	return d.clone(), nil
}

// Has reports whether column is a registered field of table.
func (r *Registry) Has(table, column string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.tables[table]
	return ok && slices.Contains(d.Fields, column)
}

// Freeze rejects any further registration.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

var (
	defaultMu       sync.Mutex
	defaultRegistry = NewRegistry()
)

// Default is the process-wide registry.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultRegistry
}

// Reset replaces the process-wide registry with an empty one. Tests only.
func Reset() {
	defaultMu.Lock()
	defaultRegistry = NewRegistry()
	defaultMu.Unlock()
}
