package books

import (
	"fmt"
	"strings"

	"github.com/5w1tchy/book-explorer-api/internal/models"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// OrderTerm is one ordering key. Field is always a whitelisted column.
type OrderTerm struct {
	Field string
	Desc  bool
}

var orderable = map[string]struct{}{
	"title":          {},
	"author":         {},
	"published_year": {},
	"created_at":     {},
}

var defaultOrdering = []OrderTerm{{Field: "title"}}

// ParseOrdering reads a comma separated list like "-published_year,title".
// Unknown fields are dropped; if nothing usable remains the default (title
// ascending) is returned. A field repeated later in the list is ignored.
func ParseOrdering(raw string) []OrderTerm {
	var out []OrderTerm
	seen := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		field := strings.TrimPrefix(part, "-")
		if _, ok := orderable[field]; !ok || seen[field] {
			continue
		}
		seen[field] = true
		out = append(out, OrderTerm{Field: field, Desc: desc})
	}
	if len(out) == 0 {
		return append([]OrderTerm(nil), defaultOrdering...)
	}
	return out
}

// ListParams is a fully parsed listing request.
type ListParams struct {
	Genre    *models.Genre
	BookType *models.BookType
	Search   []string
	Ordering []OrderTerm
	Page     int
	PageSize int
}

func (p ListParams) normalized() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if len(p.Ordering) == 0 {
		p.Ordering = defaultOrdering
	}
	return p
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func buildWhere(p ListParams) (string, []any) {
	clauses := make([]string, 0, 2+len(p.Search))
	args := make([]any, 0, 2+len(p.Search))

	if p.Genre != nil {
		args = append(args, string(*p.Genre))
		clauses = append(clauses, fmt.Sprintf("genre = $%d", len(args)))
	}
	if p.BookType != nil {
		args = append(args, string(*p.BookType))
		clauses = append(clauses, fmt.Sprintf("book_type = $%d", len(args)))
	}
	for _, term := range p.Search {
		args = append(args, containsPattern(term))
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(`(title ILIKE $%d ESCAPE '\' OR author ILIKE $%d ESCAPE '\')`, n, n))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func orderClause(terms []OrderTerm) string {
	parts := make([]string, 0, len(terms)+1)
	for _, t := range terms {
		if _, ok := orderable[t.Field]; !ok {
			continue
		}
		dir := "ASC"
		if t.Desc {
			dir = "DESC"
		}
		parts = append(parts, t.Field+" "+dir)
	}
	parts = append(parts, "id ASC")
	return "ORDER BY " + strings.Join(parts, ", ")
}

// buildListQuery returns the count and page statements sharing one WHERE.
func buildListQuery(p ListParams) (countSQL, pageSQL string, args []any) {
	p = p.normalized()
	where, args := buildWhere(p)

	countSQL = "SELECT COUNT(*) FROM books " + where
	pageSQL = "SELECT " + listColumns + " FROM books " + where + " " + orderClause(p.Ordering) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	return countSQL, pageSQL, args
}
