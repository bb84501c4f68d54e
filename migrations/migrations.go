// Package migrations embeds the schema files for every supported store.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"
)

//go:embed *.cql *.sql
var files embed.FS

// CQLParams fill the placeholders of the .cql files.
type CQLParams struct {
	Keyspace          string
	LocalDC           string
	ReplicationFactor int
}

// CQL returns every CQL statement in file order with placeholders rendered.
func CQL(p CQLParams) ([]string, error) {
	if strings.TrimSpace(p.Keyspace) == "" {
		return nil, fmt.Errorf("migrations: keyspace is required")
	}
	if p.LocalDC == "" {
		p.LocalDC = "datacenter1"
	}
	if p.ReplicationFactor <= 0 {
		p.ReplicationFactor = 1
	}

	r := strings.NewReplacer(
		"{{keyspace}}", p.Keyspace,
		"{{local_dc}}", p.LocalDC,
		"{{replication_factor}}", strconv.Itoa(p.ReplicationFactor),
	)
	stmts, err := load("*.cql")
	if err != nil {
		return nil, err
	}
	for i, s := range stmts {
		stmts[i] = r.Replace(s)
	}
	return stmts, nil
}

// SpannerDDL returns every Spanner DDL statement in file order.
func SpannerDDL() ([]string, error) {
	return load("*.sql")
}

func load(pattern string) ([]string, error) {
	names, err := fs.Glob(files, pattern)
	if err != nil {
		return nil, err
	}
	slices.Sort(names)

	var out []string
	for _, name := range names {
		b, err := files.ReadFile(name)
		if err != nil {
			return nil, err
		}
		out = append(out, Split(string(b))...)
	}
	return out, nil
}

// Split breaks a script on ';' and drops blank statements.
func Split(script string) []string {
	script = strings.ReplaceAll(script, "\r\n", "\n")

	parts := strings.Split(script, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		stmt := strings.TrimSpace(p)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
