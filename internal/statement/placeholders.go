package statement

import "strings"

// CountPlaceholders counts positional ? markers outside single-quoted literals.
// CQL escapes a quote inside a literal by doubling it, which toggles twice
// and leaves the state unchanged.
func CountPlaceholders(query string) int {
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
		case r == '?' && !inQuote:
			n++
		}
	}
	return n
}

// RewritePlaceholders replaces the i-th ? (zero based, outside literals) with name(i).
func RewritePlaceholders(query string, name func(i int) string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	i := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
		case r == '?' && !inQuote:
			b.WriteString(name(i))
			i++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
