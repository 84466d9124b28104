package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/qepting91/redelete/internal/domain"
	"github.com/qepting91/redelete/internal/pacing"
)

const (
	DefaultAPIBase  = "https://oauth.reddit.com"
	DefaultTokenURL = "https://www.reddit.com/api/v1/access_token"
	DefaultAuthURL  = "https://www.reddit.com/api/v1/authorize"
)

// OAuthClient talks to the OAuth API with a bearer token obtained from a
// stored refresh token. An expired access token is renewed before the next
// request goes out.
type OAuthClient struct {
	httpClient *http.Client
	pacer      *pacing.Pacer
	userAgent  string
	baseURL    string
}

type OAuthOptions struct {
	ClientID  string
	UserAgent string
	BaseURL   string
	TokenURL  string
	// OnRefresh is told about every access token the client starts using.
	OnRefresh func(*oauth2.Token)
	Timeout   time.Duration
}

type redditListing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string `json:"kind"`
			Data struct {
				ID         string  `json:"id"`
				Name       string  `json:"name"`
				Subreddit  string  `json:"subreddit"`
				Score      int     `json:"score"`
				CreatedUTC float64 `json:"created_utc"`
				Title      string  `json:"title"`
				Selftext   string  `json:"selftext"`
				Body       string  `json:"body"`
				URL        string  `json:"url"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func NewOAuthClient(token *oauth2.Token, pacer *pacing.Pacer, o OAuthOptions) (*OAuthClient, error) {
	if token == nil || (token.RefreshToken == "" && token.AccessToken == "") {
		return nil, fmt.Errorf("oauth client: no stored token, authorize the account first")
	}
	if o.UserAgent == "" {
		return nil, fmt.Errorf("oauth client: user agent is required")
	}
	if o.BaseURL == "" {
		o.BaseURL = DefaultAPIBase
	}
	if o.TokenURL == "" {
		o.TokenURL = DefaultTokenURL
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}

	conf := &oauth2.Config{
		ClientID: o.ClientID,
		Endpoint: oauth2.Endpoint{
			AuthURL:   DefaultAuthURL,
			TokenURL:  o.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
	// The token endpoint also wants a User-Agent.
	base := &http.Client{Timeout: o.Timeout, Transport: &userAgentTransport{userAgent: o.UserAgent}}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	src := &tokenSource{
		src:         conf.TokenSource(ctx, token),
		last:        token.AccessToken,
		notify:      o.OnRefresh,
		refreshable: token.RefreshToken != "",
	}

	return &OAuthClient{
		httpClient: &http.Client{
			Timeout:   o.Timeout,
			Transport: &oauth2.Transport{Source: oauth2.ReuseTokenSource(nil, src), Base: base.Transport},
		},
		pacer:     pacer,
		userAgent: o.UserAgent,
		baseURL:   strings.TrimRight(o.BaseURL, "/"),
	}, nil
}

func (oc *OAuthClient) List(ctx context.Context, account string, kind domain.Kind, after string, limit int) (Listing, error) {
	if err := oc.pacer.Wait(ctx); err != nil {
		return Listing{}, &domain.FetchError{Kind: domain.ErrTransient, Err: err}
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("sort", "new")
	q.Set("t", "all")
	q.Set("raw_json", "1")
	if after != "" {
		q.Set("after", after)
	}
	endpoint := fmt.Sprintf("%s/user/%s/%s?%s", oc.baseURL, url.PathEscape(account), listingPath(kind), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Listing{}, &domain.FetchError{Err: err}
	}
	resp, err := oc.httpClient.Do(req)
	if err != nil {
		return Listing{}, fetchError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return Listing{}, fetchError(&StatusError{Code: resp.StatusCode, Op: "list " + listingPath(kind)})
	}

	var rResp redditListing
	if err := json.NewDecoder(resp.Body).Decode(&rResp); err != nil {
		return Listing{}, &domain.FetchError{Kind: domain.ErrTransient, Err: fmt.Errorf("decode listing: %w", err)}
	}

	out := Listing{After: rResp.Data.After}
	for _, child := range rResp.Data.Children {
		d := child.Data
		item := domain.HistoryItem{
			ID:        d.ID,
			Name:      d.Name,
			Kind:      kind,
			Subreddit: d.Subreddit,
			Score:     d.Score,
			CreatedAt: fromUnix(d.CreatedUTC),
			Title:     d.Title,
			Body:      d.Body,
			URL:       d.URL,
		}
		if kind == domain.Post {
			item.Body = d.Selftext
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func (oc *OAuthClient) Remove(ctx context.Context, item domain.HistoryItem) error {
	if err := oc.pacer.Wait(ctx); err != nil {
		return &domain.ExecError{ID: item.ID, Kind: domain.ErrTransient, Err: err}
	}

	form := url.Values{"id": {item.Name}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, oc.baseURL+"/api/del", strings.NewReader(form.Encode()))
	if err != nil {
		return &domain.ExecError{ID: item.ID, Kind: domain.ErrTransient, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := oc.httpClient.Do(req)
	if err != nil {
		return execError(item, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return execError(item, &StatusError{Code: resp.StatusCode, Op: "delete " + item.Name})
	}
	return nil
}

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	Code int
	Op   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("reddit %s: status %d", e.Op, e.Code)
}

// Is lets errors.Is match a StatusError against the error kinds.
func (e *StatusError) Is(target error) bool {
	kind := statusKind(e.Code)
	return kind != nil && kind == target
}

func listingPath(kind domain.Kind) string {
	if kind == domain.Comment {
		return "comments"
	}
	return "submitted"
}

func fromUnix(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}

type userAgentTransport struct {
	userAgent string
	base      http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return base.RoundTrip(r)
}

// tokenSource classifies token failures and reports each new access token,
// so it can be persisted.
type tokenSource struct {
	src         oauth2.TokenSource
	last        string
	notify      func(*oauth2.Token)
	refreshable bool
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		switch {
		case !s.refreshable:
			return nil, fmt.Errorf("%w: access token expired and no refresh token is stored", domain.ErrUnauthorized)
		case errors.As(err, &retrieveErr) && retrieveErr.Response != nil && statusKind(retrieveErr.Response.StatusCode) != domain.ErrTransient:
			return nil, fmt.Errorf("%w: refresh rejected: %v", domain.ErrUnauthorized, err)
		default:
			return nil, fmt.Errorf("%w: refresh token: %v", domain.ErrTransient, err)
		}
	}
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if s.notify != nil {
			s.notify(tok)
		}
	}
	return tok, nil
}
