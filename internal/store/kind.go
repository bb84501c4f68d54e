package store

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var ErrUnsupportedKind = errors.New("store: unsupported statement kind")

// Kind is the leading verb of a statement.
type Kind string

const (
	KindSelect Kind = "select"
	KindInsert Kind = "insert"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
	KindBatch  Kind = "batch"
)

// KindOf inspects the first keyword of query.
func KindOf(query string) (Kind, error) {
	trimmed := strings.TrimLeftFunc(query, unicode.IsSpace)
	end := strings.IndexFunc(trimmed, unicode.IsSpace)
	if end < 0 {
		end = len(trimmed)
	}

	switch strings.ToUpper(trimmed[:end]) {
	case "SELECT":
		return KindSelect, nil
	case "INSERT":
		return KindInsert, nil
	case "UPDATE":
		return KindUpdate, nil
	case "DELETE":
		return KindDelete, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, trimmed[:end])
}
