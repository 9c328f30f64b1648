package store

import (
	"strings"
	"unicode"
)

// predicate accumulates parameterized WHERE fragments. Values are only ever
// bound as arguments, never formatted into the SQL text.
type predicate struct {
	clauses []string
	args    []any
}

func (p *predicate) add(clause string, args ...any) {
	p.clauses = append(p.clauses, clause)
	p.args = append(p.args, args...)
}

// where renders " WHERE a AND b", or "" when nothing was added.
func (p *predicate) where() string {
	if len(p.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(p.clauses, " AND ")
}

func (p *predicate) withFilter(f QuestionFilter) *predicate {
	if f.CategoryID != nil {
		p.add("q.category_id = ?", *f.CategoryID)
	}
	return p
}

// matchExpression turns free text into an FTS query where every term is a
// quoted phrase, so operators and stray quotes in user input stay literal.
// Terms without letters or digits are dropped.
func matchExpression(query string) string {
	words := strings.Fields(query)
	terms := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ReplaceAll(w, `"`, "")
		if !strings.ContainsFunc(w, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) {
			continue
		}
		terms = append(terms, `"`+w+`"`)
	}
	return strings.Join(terms, " ")
}
