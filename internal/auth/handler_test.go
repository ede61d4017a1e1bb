package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/5w1tchy/book-explorer-api/internal/api/middlewares"
	"github.com/5w1tchy/book-explorer-api/internal/models"
	jwtutil "github.com/5w1tchy/book-explorer-api/internal/security/jwt"
	"github.com/5w1tchy/book-explorer-api/internal/security/password"
	"github.com/5w1tchy/book-explorer-api/internal/store/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	byID   map[int64]models.User
	nextID int64
}

func newMemUsers() *memUsers { return &memUsers{byID: map[int64]models.User{}, nextID: 1} }

func (m *memUsers) CreateUser(_ context.Context, u models.User) (models.User, error) {
	for _, existing := range m.byID {
		if existing.Username == u.Username {
			return models.User{}, dbx.ErrConflict
		}
	}
	u.ID = m.nextID
	u.TokenVersion = 1
	m.nextID++
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (models.User, error) {
	for _, u := range m.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, dbx.ErrNotFound
}

func (m *memUsers) FindByID(_ context.Context, id int64) (models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return models.User{}, dbx.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) TokenVersion(ctx context.Context, id int64) (int, error) {
	u, err := m.FindByID(ctx, id)
	return u.TokenVersion, err
}

func (m *memUsers) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	u := m.byID[id]
	u.PasswordHash = hash
	m.byID[id] = u
	return nil
}

func (m *memUsers) BumpTokenVersion(_ context.Context, id int64) (int, error) {
	u, ok := m.byID[id]
	if !ok {
		return 0, dbx.ErrNotFound
	}
	u.TokenVersion++
	m.byID[id] = u
	return u.TokenVersion, nil
}

type memRefresh struct {
	tokens map[string]string
	n      int
}

func (m *memRefresh) Issue(_ context.Context, userID int64, tv int) (string, error) {
	if m.tokens == nil {
		m.tokens = map[string]string{}
	}
	m.n++
	tok := "rt-" + encodeBinding(int64(m.n), 0)
	m.tokens[tok] = encodeBinding(userID, tv)
	return tok, nil
}

func (m *memRefresh) Consume(_ context.Context, token string) (int64, int, error) {
	v, ok := m.tokens[token]
	if !ok {
		return 0, 0, ErrInvalidRefresh
	}
	delete(m.tokens, token)
	return decodeBinding(v)
}

func (m *memRefresh) Revoke(_ context.Context, token string) error {
	delete(m.tokens, token)
	return nil
}

var cheap = password.Params{Memory: 1024, Iterations: 1, Parallelism: 1}

func newTestHandler(t *testing.T) (*Handler, *memUsers, *memRefresh) {
	t.Helper()
	users := newMemUsers()
	refresh := &memRefresh{}
	signer := jwtutil.NewSigner([]byte("test-secret-test-secret-test-secret"), 15*time.Minute, 30*time.Second)
	return New(users, refresh, signer, password.NewHasher(cheap), nil), users, refresh
}

func post(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/auth/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func register(t *testing.T, h *Handler, username, pwd string) RegisterResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Register(rec, post(`{"username":"`+username+`","email":"`+username+`@mail.com","password":"`+pwd+`"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out RegisterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRegister(t *testing.T) {
	h, users, _ := newTestHandler(t)

	out := register(t, h, "john", "JohnDoe123")
	assert.Equal(t, "john", out.User.Username)
	assert.Equal(t, "john@mail.com", out.User.Email)
	assert.NotEmpty(t, out.Access)
	assert.NotEmpty(t, out.Refresh)

	uid, tv, err := h.Signer.ParseAccess(out.Access)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, uid)
	assert.Equal(t, 1, tv)
	assert.NotEqual(t, "JohnDoe123", users.byID[uid].PasswordHash)
}

func TestRegister_Validation(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Register(rec, post(`{"username":"","email":"nope","password":"short"}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"username"`)
	assert.Contains(t, body, `"email"`)
	assert.Contains(t, body, "too short")
}

func TestRegister_DuplicateUsername(t *testing.T) {
	h, _, _ := newTestHandler(t)
	register(t, h, "jane", "JaneJane123")

	rec := httptest.NewRecorder()
	h.Register(rec, post(`{"username":"jane","email":"other@mail.com","password":"JaneJane123"}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "A user with that username already exists.")
}

func TestToken(t *testing.T) {
	h, _, _ := newTestHandler(t)
	register(t, h, "john", "JohnDoe123")

	rec := httptest.NewRecorder()
	h.Token(rec, post(`{"username":"john","password":"JohnDoe123"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	var pair TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	assert.NotEmpty(t, pair.Access)

	for _, body := range []string{
		`{"username":"john","password":"wrong-password"}`,
		`{"username":"ghost","password":"JohnDoe123"}`,
	} {
		rec = httptest.NewRecorder()
		h.Token(rec, post(body))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "No active account found with the given credentials")
	}
}

func TestToken_RehashesWeakerHash(t *testing.T) {
	h, users, _ := newTestHandler(t)
	register(t, h, "john", "JohnDoe123")
	before := users.byID[1].PasswordHash

	h.Hasher = password.NewHasher(password.Params{Memory: 2048, Iterations: 1, Parallelism: 1})
	rec := httptest.NewRecorder()
	h.Token(rec, post(`{"username":"john","password":"JohnDoe123"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, before, users.byID[1].PasswordHash)
}

func TestRefresh_RotatesAndIsSingleUse(t *testing.T) {
	h, _, refresh := newTestHandler(t)
	out := register(t, h, "john", "JohnDoe123")

	rec := httptest.NewRecorder()
	h.RefreshToken(rec, post(`{"refresh":"`+out.Refresh+`"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	var pair TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	assert.NotEqual(t, out.Refresh, pair.Refresh)
	assert.Len(t, refresh.tokens, 1)

	rec = httptest.NewRecorder()
	h.RefreshToken(rec, post(`{"refresh":"`+out.Refresh+`"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutAll_InvalidatesRefreshTokens(t *testing.T) {
	h, users, _ := newTestHandler(t)
	out := register(t, h, "john", "JohnDoe123")

	var revoked []int64
	h.OnRevoke = func(uid int64) { revoked = append(revoked, uid) }

	req := post(`{}`)
	req = req.WithContext(middlewares.WithUserID(req.Context(), out.User.ID))
	rec := httptest.NewRecorder()
	h.LogoutAll(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 2, users.byID[out.User.ID].TokenVersion)
	assert.Equal(t, []int64{out.User.ID}, revoked)

	rec = httptest.NewRecorder()
	h.RefreshToken(rec, post(`{"refresh":"`+out.Refresh+`"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout(t *testing.T) {
	h, _, refresh := newTestHandler(t)
	out := register(t, h, "john", "JohnDoe123")

	rec := httptest.NewRecorder()
	h.Logout(rec, post(`{"refresh":"`+out.Refresh+`"}`))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, refresh.tokens)
}

func TestMe(t *testing.T) {
	h, _, _ := newTestHandler(t)
	out := register(t, h, "jane", "JaneJane123")

	req := httptest.NewRequest(http.MethodGet, "/auth/me/", nil)
	rec := httptest.NewRecorder()
	h.Me(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = req.WithContext(middlewares.WithUserID(req.Context(), out.User.ID))
	rec = httptest.NewRecorder()
	h.Me(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"username":"jane","email":"jane@mail.com","first_name":"","last_name":""}`, rec.Body.String())
}

func TestDecodeBinding(t *testing.T) {
	id, tv, err := decodeBinding(encodeBinding(42, 3))
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, 3, tv)

	for _, bad := range []string{"", "42", "x|1", "1|y"} {
		_, _, err := decodeBinding(bad)
		assert.ErrorIs(t, err, ErrInvalidRefresh, bad)
	}
}
