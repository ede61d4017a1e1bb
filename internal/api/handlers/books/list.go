package books

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/5w1tchy/book-explorer-api/internal/api/apperr"
	"github.com/5w1tchy/book-explorer-api/internal/api/httpx"
	"github.com/5w1tchy/book-explorer-api/internal/models"
	storebooks "github.com/5w1tchy/book-explorer-api/internal/store/books"
	"github.com/5w1tchy/book-explorer-api/internal/validate"
)

const msgInvalidPage = "Invalid page."

// parseListParams turns the query string into store parameters. Unknown
// enum values are a 400; a malformed page is a 404 like an out of range one.
func parseListParams(q url.Values) (storebooks.ListParams, error) {
	p := storebooks.ListParams{
		Search:   validate.SearchTerms(q.Get("search")),
		Ordering: storebooks.ParseOrdering(q.Get("ordering")),
		PageSize: validate.ClampPageSize(q.Get("page_size"), storebooks.DefaultPageSize, storebooks.MaxPageSize),
		Page:     1,
	}

	errs := validate.Errors{}
	if raw := strings.TrimSpace(q.Get("genre")); raw != "" {
		if g, ok := models.ParseGenre(raw); ok {
			p.Genre = &g
		} else {
			errs.Add("genre", invalidChoice(raw))
		}
	}
	if raw := strings.TrimSpace(q.Get("book_type")); raw != "" {
		if bt, ok := models.ParseBookType(raw); ok {
			p.BookType = &bt
		} else {
			errs.Add("book_type", invalidChoice(raw))
		}
	}
	if err := errs.Err(); err != nil {
		return p, err
	}

	if raw, ok := q["page"]; ok && len(raw) > 0 {
		n, ok := validate.ParsePositive(raw[0])
		if !ok {
			return p, apperr.NotFound(msgInvalidPage)
		}
		p.Page = n
	}
	return p, nil
}

func invalidChoice(v string) string {
	return "Select a valid choice. " + v + " is not one of the available choices."
}

// pageLink builds the absolute URL for page n, keeping the other params.
// Page 1 is written without a page parameter.
func pageLink(r *http.Request, n int) *string {
	q := r.URL.Query()
	if n <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}
	u := httpx.AbsoluteURL(r)
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return &u
}

// List handles GET /books/.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, err := parseListParams(r.URL.Query())
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	page, err := h.Store.List(r.Context(), p)
	if errors.Is(err, storebooks.ErrInvalidPage) {
		apperr.Write(w, r, apperr.NotFound(msgInvalidPage))
		return
	}
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	total := storebooks.TotalPages(page.Count, p.PageSize)
	resp := listResponse{
		Count:       page.Count,
		PageSize:    p.PageSize,
		CurrentPage: p.Page,
		TotalPages:  total,
		Results:     make([]listItem, 0, len(page.Books)),
	}
	if p.Page < total {
		resp.Next = pageLink(r, p.Page+1)
	}
	if p.Page > 1 {
		resp.Previous = pageLink(r, p.Page-1)
	}
	for _, b := range page.Books {
		resp.Results = append(resp.Results, h.toListItem(r.Context(), b))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// Choices handles GET /books/choices/.
func (h *Handler) Choices(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, choicesResponse{
		Genres:    models.GenreChoices(),
		BookTypes: models.BookTypeChoices(),
	})
}
