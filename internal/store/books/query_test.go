package books

import (
	"testing"

	"github.com/5w1tchy/book-explorer-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestParseOrdering(t *testing.T) {
	cases := []struct {
		raw  string
		want []OrderTerm
	}{
		{"", []OrderTerm{{Field: "title"}}},
		{"-published_year", []OrderTerm{{Field: "published_year", Desc: true}}},
		{"author, -created_at", []OrderTerm{{Field: "author"}, {Field: "created_at", Desc: true}}},
		{"nonsense", []OrderTerm{{Field: "title"}}},
		{"description,-author", []OrderTerm{{Field: "author", Desc: true}}},
		{"title,-title", []OrderTerm{{Field: "title"}}},
		{"id; DROP TABLE books", []OrderTerm{{Field: "title"}}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseOrdering(tc.raw), "ordering=%q", tc.raw)
	}
}

func TestBuildListQuery_NoFilters(t *testing.T) {
	countSQL, pageSQL, args := buildListQuery(ListParams{})

	assert.Equal(t, "SELECT COUNT(*) FROM books ", countSQL)
	assert.Equal(t,
		"SELECT "+listColumns+" FROM books  ORDER BY title ASC, id ASC LIMIT $1 OFFSET $2",
		pageSQL)
	assert.Empty(t, args)
}

func TestBuildListQuery_FiltersAndSearch(t *testing.T) {
	g := models.GenreFantasy
	bt := models.BookTypeNovel
	_, pageSQL, args := buildListQuery(ListParams{
		Genre:    &g,
		BookType: &bt,
		Search:   []string{"harry", "50%"},
		Ordering: []OrderTerm{{Field: "published_year", Desc: true}},
	})

	assert.Contains(t, pageSQL, "WHERE genre = $1 AND book_type = $2 AND "+
		`(title ILIKE $3 ESCAPE '\' OR author ILIKE $3 ESCAPE '\') AND `+
		`(title ILIKE $4 ESCAPE '\' OR author ILIKE $4 ESCAPE '\')`)
	assert.Contains(t, pageSQL, "ORDER BY published_year DESC, id ASC LIMIT $5 OFFSET $6")
	assert.Equal(t, []any{"fantasy", "novel", "%harry%", `%50\%%`}, args)
}

func TestNormalizedClampsPaging(t *testing.T) {
	p := ListParams{Page: -3, PageSize: 1000}.normalized()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPageSize, p.PageSize)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 12))
	assert.Equal(t, 1, TotalPages(12, 12))
	assert.Equal(t, 2, TotalPages(13, 12))
}
