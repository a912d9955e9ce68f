package notestore

import (
	"fmt"
	"strings"
)

// Order selects the direction of a priority sort.
type Order int

const (
	// HighFirst lists HIGH, then MEDIUM, then LOW.
	HighFirst Order = iota
	// LowFirst lists LOW, then MEDIUM, then HIGH.
	LowFirst
)

type queryKind int

const (
	kindAll queryKind = iota
	kindSearch
	kindPriority
)

// Query describes one of the store's read views. The zero value is All.
type Query struct {
	kind    queryKind
	pattern string
	order   Order
}

// All lists every note in insertion order.
func All() Query {
	return Query{kind: kindAll}
}

// Search lists notes whose title or description contains pattern.
func Search(pattern string) Query {
	return Query{kind: kindSearch, pattern: pattern}
}

// SortByPriority lists every note ordered by priority rank, ties broken by
// insertion order.
func SortByPriority(o Order) Query {
	return Query{kind: kindPriority, order: o}
}

// Pattern returns the search pattern (empty for non-search queries).
func (q Query) Pattern() string {
	return q.pattern
}

func (q Query) String() string {
	switch q.kind {
	case kindSearch:
		return fmt.Sprintf("search(%q)", q.pattern)
	case kindPriority:
		if q.order == LowFirst {
			return "sort(low)"
		}
		return "sort(high)"
	}
	return "all"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps pattern for a literal substring LIKE match.
func likePattern(pattern string) string {
	return "%" + likeEscaper.Replace(pattern) + "%"
}

// priorityOrderSQL ranks HIGH before LOW; LowFirst reverses it.
func priorityOrderSQL(o Order) string {
	if o == LowFirst {
		return `CASE priority WHEN 'LOW' THEN 0 WHEN 'MEDIUM' THEN 1 WHEN 'HIGH' THEN 2 ELSE 3 END, id ASC`
	}
	return `CASE priority WHEN 'HIGH' THEN 0 WHEN 'MEDIUM' THEN 1 WHEN 'LOW' THEN 2 ELSE 3 END, id ASC`
}
