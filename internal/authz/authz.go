// Package authz decides, per operation, whether a caller may proceed.
//
// Ownership is not checked here: stores take the caller's id and put it in
// the WHERE clause, so a note owned by someone else is simply not found.
package authz

import "errors"

var ErrUnauthenticated = errors.New("authentication credentials were not provided")

type Rule int

const (
	Public Rule = iota
	Authenticated
	Owner
)

func (r Rule) String() string {
	switch r {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case Owner:
		return "owner"
	}
	return "unknown"
}

type Operation string

const (
	BookList    Operation = "book.list"
	BookCreate  Operation = "book.create"
	BookGet     Operation = "book.get"
	BookUpdate  Operation = "book.update"
	BookDelete  Operation = "book.delete"
	BookCover   Operation = "book.cover"
	BookChoices Operation = "book.choices"

	NoteList   Operation = "note.list"
	NoteCreate Operation = "note.create"
	NoteGet    Operation = "note.get"
	NoteUpdate Operation = "note.update"
	NoteDelete Operation = "note.delete"

	AuthRegister  Operation = "auth.register"
	AuthToken     Operation = "auth.token"
	AuthRefresh   Operation = "auth.refresh"
	AuthLogout    Operation = "auth.logout"
	AuthLogoutAll Operation = "auth.logout_all"
	AuthMe        Operation = "auth.me"
)

var policy = map[Operation]Rule{
	BookList:    Public,
	BookCreate:  Authenticated,
	BookGet:     Public,
	BookUpdate:  Public,
	BookDelete:  Public,
	BookCover:   Public,
	BookChoices: Public,

	NoteList:   Authenticated,
	NoteCreate: Authenticated,
	NoteGet:    Owner,
	NoteUpdate: Owner,
	NoteDelete: Owner,

	AuthRegister:  Public,
	AuthToken:     Public,
	AuthRefresh:   Public,
	AuthLogout:    Public,
	AuthLogoutAll: Authenticated,
	AuthMe:        Authenticated,
}

// RuleFor returns the rule for op. Unknown operations require authentication.
func RuleFor(op Operation) Rule {
	if r, ok := policy[op]; ok {
		return r
	}
	return Authenticated
}

// Authorize reports ErrUnauthenticated when op needs an identity and the
// caller has none.
func Authorize(op Operation, authenticated bool) error {
	if RuleFor(op) == Public || authenticated {
		return nil
	}
	return ErrUnauthenticated
}
