package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/oauth2"

	"github.com/hal9000y/gmail-assistant/internal/auth"
)

func testConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/oauth",
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.example.com/auth",
			TokenURL: "https://accounts.example.com/token",
		},
		Scopes: []string{"scope-a"},
	}
}

func TestTokenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")

	tok, err := auth.NewToken(testConfig(), path, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.ErrorIs(t, tok.Ready(), auth.ErrTokenNotSet)
	_, err = tok.TokenSource(context.Background()).Token()
	assert.ErrorIs(t, err, auth.ErrTokenNotSet)

	require.NoError(t, tok.Persist())
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "nothing to persist without a token")
}

func TestTokenLoadAndPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	stored := &oauth2.Token{AccessToken: "access-1", RefreshToken: "refresh-1", Expiry: time.Now().Add(time.Hour)}
	data, err := json.Marshal(stored)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	tok, err := auth.NewToken(testConfig(), path, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, tok.Ready())

	got, err := tok.TokenSource(context.Background()).Token()
	require.NoError(t, err)
	assert.Equal(t, "access-1", got.AccessToken)

	require.NoError(t, os.Remove(path))
	require.NoError(t, tok.Persist())

	reloaded, err := auth.NewToken(testConfig(), path, zaptest.NewLogger(t))
	require.NoError(t, err)
	again, err := reloaded.OAuthToken()
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", again.RefreshToken)
}

func TestTokenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := auth.NewToken(testConfig(), path, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestTokenRedirectURLAndState(t *testing.T) {
	tok, err := auth.NewToken(testConfig(), "", zaptest.NewLogger(t))
	require.NoError(t, err)

	raw, err := tok.RedirectURL()
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "accounts.example.com", u.Host)
	assert.Equal(t, "offline", u.Query().Get("access_type"))
	assert.NotEmpty(t, u.Query().Get("state"))

	err = tok.AuthorizeCode(context.Background(), "code", "forged-state")
	assert.ErrorContains(t, err, "invalid or expired state")
}

type tokMock struct {
	AuthorizeCodeFunc func(ctx context.Context, code, state string) error
	OAuthTokenFunc    func() (*oauth2.Token, error)
	RedirectURLFunc   func() (string, error)
}

func (m *tokMock) AuthorizeCode(ctx context.Context, code, state string) error {
	return m.AuthorizeCodeFunc(ctx, code, state)
}

func (m *tokMock) OAuthToken() (*oauth2.Token, error) { return m.OAuthTokenFunc() }

func (m *tokMock) RedirectURL() (string, error) { return m.RedirectURLFunc() }

func TestHTTPHandler(t *testing.T) {
	t.Run("redirect", func(t *testing.T) {
		h := auth.NewHTTPHandler(&tokMock{
			RedirectURLFunc: func() (string, error) { return "https://accounts.example.com/auth?state=s", nil },
		}, zaptest.NewLogger(t))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth?redirect=1", nil))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "https://accounts.example.com/auth?state=s", rec.Header().Get("Location"))
	})

	t.Run("code rejected", func(t *testing.T) {
		h := auth.NewHTTPHandler(&tokMock{
			AuthorizeCodeFunc: func(_ context.Context, code, state string) error {
				assert.Equal(t, "abc", code)
				assert.Equal(t, "xyz", state)
				return errors.New("invalid or expired state parameter")
			},
		}, zaptest.NewLogger(t))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth?code=abc&state=xyz", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no token", func(t *testing.T) {
		h := auth.NewHTTPHandler(&tokMock{
			OAuthTokenFunc: func() (*oauth2.Token, error) { return nil, auth.ErrTokenNotSet },
		}, zaptest.NewLogger(t))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("masked token", func(t *testing.T) {
		h := auth.NewHTTPHandler(&tokMock{
			OAuthTokenFunc: func() (*oauth2.Token, error) {
				return &oauth2.Token{AccessToken: "secret-token-1234", Expiry: time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)}, nil
			},
		}, zaptest.NewLogger(t))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "XXXXXXXXXXXXX1234")
		assert.NotContains(t, rec.Body.String(), "secret")
		assert.Contains(t, rec.Body.String(), "2030-01-02T03:04:05Z")
	})
}
