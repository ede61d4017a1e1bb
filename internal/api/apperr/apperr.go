package apperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/5w1tchy/book-explorer-api/internal/authz"
	"github.com/5w1tchy/book-explorer-api/internal/store/dbx"
	"github.com/5w1tchy/book-explorer-api/internal/validate"
	"go.uber.org/zap"
)

const (
	MsgNotFound         = "Not found."
	MsgInvalidInput     = "Invalid input."
	MsgNotProvided      = "Authentication credentials were not provided."
	MsgInvalidToken     = "Given token not valid for any token type"
	MsgBadCredentials   = "No active account found with the given credentials"
	MsgInternal         = "A server error occurred."
	MsgConflict         = "A resource with these values already exists."
	MsgMethodNotAllowed = "Method not allowed."
	MsgUnsupportedType  = "Unsupported media type in request."
)

// Error is an HTTP-aware failure. Details, when set, is rendered verbatim.
type Error struct {
	Status  int
	Message string
	Details map[string][]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, msg string) *Error { return &Error{Status: status, Message: msg} }

func BadRequest(field, msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: MsgInvalidInput, Details: map[string][]string{field: {msg}}}
}

func NotFound(msg string) *Error {
	if msg == "" {
		msg = MsgNotFound
	}
	return &Error{Status: http.StatusNotFound, Message: msg}
}

func Unauthorized(msg string) *Error { return &Error{Status: http.StatusUnauthorized, Message: msg} }

type body struct {
	StatusCode int                 `json:"status_code"`
	Message    string              `json:"message"`
	Details    map[string][]string `json:"details"`
}

type envelope struct {
	Error body `json:"error"`
}

// Convert maps any error to an *Error. It is the only place where domain
// errors learn their HTTP status.
func Convert(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	var verrs validate.Errors
	if errors.As(err, &verrs) {
		return &Error{Status: http.StatusBadRequest, Message: MsgInvalidInput, Details: verrs, Err: err}
	}
	switch {
	case errors.Is(err, dbx.ErrNotFound):
		return &Error{Status: http.StatusNotFound, Message: MsgNotFound, Err: err}
	case errors.Is(err, dbx.ErrConflict):
		return &Error{Status: http.StatusConflict, Message: MsgConflict, Err: err}
	case errors.Is(err, authz.ErrUnauthenticated):
		return &Error{Status: http.StatusUnauthorized, Message: MsgNotProvided, Err: err}
	}
	if pe, ok := FromPG(err); ok {
		return pe
	}
	return &Error{Status: http.StatusInternalServerError, Message: MsgInternal, Err: err}
}

// Write renders err in the error envelope. Server errors are logged.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	e := Convert(err)
	if e.Status >= 500 {
		fields := []zap.Field{zap.Int("status", e.Status), zap.Error(err)}
		if r != nil {
			fields = append(fields,
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("request_id", r.Header.Get("X-Request-ID")),
			)
		}
		zap.L().Error("request failed", fields...)
	}
	details := e.Details
	if details == nil {
		details = map[string][]string{}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if e.Status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(envelope{Error: body{StatusCode: e.Status, Message: e.Message, Details: details}})
}

// WriteStatus is shorthand for Write(w, r, New(status, msg)).
func WriteStatus(w http.ResponseWriter, r *http.Request, status int, msg string) {
	Write(w, r, New(status, msg))
}
