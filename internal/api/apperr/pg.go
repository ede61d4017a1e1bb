package apperr

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Constraint names from the embedded schema mapped to the field they guard.
var constraintField = map[string]string{
	"users_username_key":         "username",
	"books_title_not_blank":      "title",
	"books_author_not_blank":     "author",
	"books_published_year_range": "published_year",
	"books_genre_check":          "genre",
	"books_book_type_check":      "book_type",
	"user_notes_book_id_fkey":    "book",
	"user_notes_user_id_fkey":    "user",
}

func fieldFromDetail(detail string) string {
	for _, k := range []string{"username", "title", "author", "published_year", "genre", "book_type", "book_id", "user_id"} {
		if strings.Contains(detail, k) {
			return strings.TrimSuffix(k, "_id")
		}
	}
	return ""
}

// FromPG maps a Postgres error to an *Error by SQLSTATE.
func FromPG(err error) (*Error, bool) {
	var pg *pgconn.PgError
	if !errors.As(err, &pg) {
		return nil, false
	}

	field := constraintField[pg.ConstraintName]
	if field == "" && pg.Detail != "" {
		field = fieldFromDetail(pg.Detail)
	}
	if field == "" && pg.ColumnName != "" {
		field = pg.ColumnName
	}
	if field == "" {
		field = "non_field_errors"
	}

	e := &Error{Err: err}
	switch pg.Code {
	case "23505": // unique_violation
		e.Status, e.Message = http.StatusConflict, MsgConflict
		e.Details = map[string][]string{field: {"A record with this value already exists."}}
	case "23503": // foreign_key_violation
		e.Status, e.Message = http.StatusNotFound, MsgNotFound
	case "23502": // not_null_violation
		e.Status, e.Message = http.StatusBadRequest, MsgInvalidInput
		e.Details = map[string][]string{field: {"This field may not be null."}}
	case "23514": // check_violation
		e.Status, e.Message = http.StatusBadRequest, MsgInvalidInput
		e.Details = map[string][]string{field: {"Invalid value."}}
	case "22P02", "22003": // invalid_text_representation, numeric_value_out_of_range
		e.Status, e.Message = http.StatusBadRequest, MsgInvalidInput
		e.Details = map[string][]string{field: {"Invalid format."}}
	case "22001": // string_data_right_truncation
		e.Status, e.Message = http.StatusBadRequest, MsgInvalidInput
		e.Details = map[string][]string{field: {"Value is too long."}}
	case "40001", "40P01": // serialization_failure, deadlock_detected
		e.Status, e.Message = http.StatusConflict, "Concurrent update, please retry."
	default:
		e.Status, e.Message = http.StatusInternalServerError, MsgInternal
	}
	return e, true
}
