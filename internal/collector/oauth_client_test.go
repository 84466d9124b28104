package collector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/qepting91/redelete/internal/domain"
	"github.com/qepting91/redelete/internal/pacing"
)

const listingBody = `{
  "kind": "Listing",
  "data": {
    "after": "t3_p2",
    "before": null,
    "children": [
      {"kind": "t3", "data": {"id": "p1", "name": "t3_p1", "subreddit": "golang", "score": 42,
        "created_utc": 1760702400.5, "title": "hello", "selftext": "body text", "url": "https://example.com"}},
      {"kind": "t3", "data": {"id": "p2", "name": "t3_p2", "subreddit": "rust", "score": -3,
        "created_utc": 1760698800, "title": "second", "selftext": "", "url": ""}}
    ]
  }
}`

const lastCommentsBody = `{"kind": "Listing", "data": {"after": null, "children": [
  {"kind": "t1", "data": {"id": "c1", "name": "t1_c1", "subreddit": "golang", "score": 7,
    "created_utc": 1760700000, "body": "a comment"}}
]}}`

func validToken() *oauth2.Token {
	return &oauth2.Token{AccessToken: "ACCESS_TOKEN", TokenType: "bearer", RefreshToken: "REFRESH_TOKEN", Expiry: time.Now().Add(time.Hour)}
}

func newTestClient(t *testing.T, srv *httptest.Server, tok *oauth2.Token, onRefresh func(*oauth2.Token)) *OAuthClient {
	t.Helper()
	oc, err := NewOAuthClient(tok, pacing.New(0), OAuthOptions{
		ClientID:  "client",
		UserAgent: "redelete-test",
		BaseURL:   srv.URL,
		TokenURL:  srv.URL + "/api/v1/access_token",
		OnRefresh: onRefresh,
	})
	require.NoError(t, err)
	return oc
}

func TestOAuthList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer ACCESS_TOKEN", r.Header.Get("Authorization"))
		assert.Equal(t, "redelete-test", r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/user/me/submitted":
			assert.Equal(t, "100", r.URL.Query().Get("limit"))
			assert.Equal(t, "", r.URL.Query().Get("after"))
			w.Write([]byte(listingBody))
		case "/user/me/comments":
			assert.Equal(t, "t1_x", r.URL.Query().Get("after"))
			w.Write([]byte(lastCommentsBody))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	oc := newTestClient(t, srv, validToken(), nil)

	posts, err := oc.List(context.Background(), "me", domain.Post, "", 100)
	require.NoError(t, err)
	assert.Equal(t, "t3_p2", posts.After)
	require.Len(t, posts.Items, 2)
	assert.Equal(t, domain.HistoryItem{
		ID:        "p1",
		Name:      "t3_p1",
		Kind:      domain.Post,
		Subreddit: "golang",
		Score:     42,
		CreatedAt: time.Unix(1760702400, 500_000_000).UTC(),
		Title:     "hello",
		Body:      "body text",
		URL:       "https://example.com",
	}, posts.Items[0])
	assert.Equal(t, -3, posts.Items[1].Score)

	comments, err := oc.List(context.Background(), "me", domain.Comment, "t1_x", 100)
	require.NoError(t, err)
	assert.Empty(t, comments.After)
	require.Len(t, comments.Items, 1)
	assert.Equal(t, domain.Comment, comments.Items[0].Kind)
	assert.Equal(t, "a comment", comments.Items[0].Body)
}

func TestOAuthListErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		kind      error
		retryable bool
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, kind: domain.ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, kind: domain.ErrUnauthorized},
		{name: "server_error", status: http.StatusBadGateway, kind: domain.ErrTransient, retryable: true},
		{name: "rate_limited", status: http.StatusTooManyRequests, kind: domain.ErrTransient, retryable: true},
		{name: "bad_json", status: http.StatusOK, body: "<html>", kind: domain.ErrTransient, retryable: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv, validToken(), nil).List(context.Background(), "me", domain.Post, "", 10)

			var fetchErr *domain.FetchError
			require.ErrorAs(t, err, &fetchErr)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.retryable, fetchErr.Kind == domain.ErrTransient)
		})
	}
}

func TestOAuthListNotFoundIsNotRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, validToken(), nil).List(context.Background(), "nobody", domain.Post, "", 10)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Nil(t, fetchErr.Kind)
}

func TestOAuthRemove(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/del", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		got = append(got, r.PostForm.Get("id"))
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	err := newTestClient(t, srv, validToken(), nil).Remove(context.Background(), domain.HistoryItem{ID: "a", Name: "t1_a"})

	require.NoError(t, err)
	assert.Equal(t, []string{"t1_a"}, got)
}

func TestOAuthRemoveErrors(t *testing.T) {
	tests := []struct {
		status int
		kind   error
	}{
		{status: http.StatusNotFound, kind: domain.ErrNotFound},
		{status: http.StatusTooManyRequests, kind: domain.ErrRateLimited},
		{status: http.StatusUnauthorized, kind: domain.ErrUnauthorized},
		{status: http.StatusInternalServerError, kind: domain.ErrTransient},
		{status: http.StatusBadRequest, kind: domain.ErrTransient},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := newTestClient(t, srv, validToken(), nil).Remove(context.Background(), domain.HistoryItem{ID: "a", Name: "t1_a"})

			var execErr *domain.ExecError
			require.ErrorAs(t, err, &execErr)
			assert.Equal(t, "a", execErr.ID)
			assert.ErrorIs(t, execErr.Kind, tt.kind)
		})
	}
}

func TestOAuthRefreshesExpiredToken(t *testing.T) {
	refreshes := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/access_token" {
			refreshes++
			user, _, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "client", user)
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
			assert.Equal(t, "REFRESH_TOKEN", r.PostForm.Get("refresh_token"))
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "REFRESHED_ACCESS_TOKEN",
				"token_type":   "bearer",
				"expires_in":   3600,
				"scope":        "history,edit,identity",
			})
			return
		}
		assert.Equal(t, "Bearer REFRESHED_ACCESS_TOKEN", r.Header.Get("Authorization"))
		w.Write([]byte(lastCommentsBody))
	}))
	defer srv.Close()

	expired := validToken()
	expired.Expiry = time.Now().Add(-time.Hour)
	var saved []*oauth2.Token
	oc := newTestClient(t, srv, expired, func(tok *oauth2.Token) { saved = append(saved, tok) })

	_, err := oc.List(context.Background(), "me", domain.Comment, "", 10)
	require.NoError(t, err)
	_, err = oc.List(context.Background(), "me", domain.Comment, "", 10)
	require.NoError(t, err)

	assert.Equal(t, 1, refreshes)
	require.Len(t, saved, 1)
	assert.Equal(t, "REFRESHED_ACCESS_TOKEN", saved[0].AccessToken)
	assert.Equal(t, "REFRESH_TOKEN", saved[0].RefreshToken)
}

func TestOAuthRefreshRejectedIsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/access_token" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "invalid_grant"}`))
			return
		}
		t.Error("listing must not be called without a token")
	}))
	defer srv.Close()

	expired := validToken()
	expired.Expiry = time.Now().Add(-time.Hour)

	_, err := newTestClient(t, srv, expired, nil).List(context.Background(), "me", domain.Post, "", 10)

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestNewOAuthClientNeedsToken(t *testing.T) {
	_, err := NewOAuthClient(&oauth2.Token{}, nil, OAuthOptions{UserAgent: "ua"})
	assert.Error(t, err)

	_, err = NewOAuthClient(validToken(), nil, OAuthOptions{})
	assert.Error(t, err)
}
