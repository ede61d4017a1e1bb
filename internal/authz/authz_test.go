package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	cases := []struct {
		op     Operation
		authed bool
		ok     bool
	}{
		{BookList, false, true},
		{BookChoices, false, true},
		{BookUpdate, false, true},
		{BookDelete, false, true},
		{BookCreate, false, false},
		{BookCreate, true, true},
		{NoteList, false, false},
		{NoteCreate, true, true},
		{NoteGet, false, false},
		{NoteDelete, true, true},
		{AuthToken, false, true},
		{AuthMe, false, false},
		{AuthLogoutAll, false, false},
	}
	for _, tc := range cases {
		err := Authorize(tc.op, tc.authed)
		if tc.ok {
			assert.NoError(t, err, "%s authed=%v", tc.op, tc.authed)
		} else {
			assert.ErrorIs(t, err, ErrUnauthenticated, "%s authed=%v", tc.op, tc.authed)
		}
	}
}

func TestRuleFor_UnknownRequiresAuth(t *testing.T) {
	assert.Equal(t, Authenticated, RuleFor("book.explode"))
	assert.Equal(t, Owner, RuleFor(NoteUpdate))
	assert.Equal(t, "owner", Owner.String())
}
