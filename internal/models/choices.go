package models

// Choice is a value/label pair rendered into client dropdowns.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Genre string

const (
	GenreFiction   Genre = "fiction"
	GenreFantasy   Genre = "fantasy"
	GenreSciFi     Genre = "sci_fi"
	GenreBiography Genre = "biography"
	GenreSelfHelp  Genre = "self_help"
)

type BookType string

const (
	BookTypeNovel        BookType = "novel"
	BookTypeShortStories BookType = "short_stories"
	BookTypePoetry       BookType = "poetry"
	BookTypeNonFiction   BookType = "non_fiction"
)

// Order matters: dropdowns render in table order.
var (
	genreChoices = []Choice{
		{string(GenreFiction), "Fiction"},
		{string(GenreFantasy), "Fantasy"},
		{string(GenreSciFi), "Science Fiction"},
		{string(GenreBiography), "Biography"},
		{string(GenreSelfHelp), "Self Help"},
	}
	bookTypeChoices = []Choice{
		{string(BookTypeNovel), "Novel"},
		{string(BookTypeShortStories), "Short Stories"},
		{string(BookTypePoetry), "Poetry"},
		{string(BookTypeNonFiction), "Non-fiction"},
	}
)

// GenreChoices returns a copy of the genre table.
func GenreChoices() []Choice { return append([]Choice(nil), genreChoices...) }

// BookTypeChoices returns a copy of the book type table.
func BookTypeChoices() []Choice { return append([]Choice(nil), bookTypeChoices...) }

func ParseGenre(s string) (Genre, bool) {
	if lookup(genreChoices, s) {
		return Genre(s), true
	}
	return "", false
}

func ParseBookType(s string) (BookType, bool) {
	if lookup(bookTypeChoices, s) {
		return BookType(s), true
	}
	return "", false
}

func (g Genre) Valid() bool    { return lookup(genreChoices, string(g)) }
func (t BookType) Valid() bool { return lookup(bookTypeChoices, string(t)) }

func (g Genre) Label() string    { return label(genreChoices, string(g)) }
func (t BookType) Label() string { return label(bookTypeChoices, string(t)) }

func lookup(table []Choice, v string) bool {
	for _, c := range table {
		if c.Value == v {
			return true
		}
	}
	return false
}

func label(table []Choice, v string) string {
	for _, c := range table {
		if c.Value == v {
			return c.Label
		}
	}
	return ""
}
