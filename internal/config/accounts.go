package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/oauth2"

	"github.com/qepting91/redelete/internal/domain"
	"github.com/qepting91/redelete/internal/filter"
)

var ErrAccountNotFound = errors.New("account not found")

// Token is the stored OAuth grant.
type Token struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Account is one authorized user and their retention settings.
type Account struct {
	Token              Token    `json:"token"`
	Username           string   `json:"username"`
	TokenExpires       int64    `json:"token_expires"`
	ExcludedSubreddits []string `json:"excluded_subreddits"`
	MinimumScore       *int     `json:"minimum_score"`
	MaxHours           *int     `json:"max_hours"`
}

// FilterRule returns an independent snapshot of the account's settings.
func (a Account) FilterRule() domain.FilterRule {
	return domain.FilterRule{
		ExcludedSubreddits: a.ExcludedSubreddits,
		MinAgeHours:        a.MaxHours,
		MinScoreThreshold:  a.MinimumScore,
	}.Clone()
}

func (a Account) OAuthToken() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  a.Token.AccessToken,
		TokenType:    a.Token.TokenType,
		RefreshToken: a.Token.RefreshToken,
	}
	if a.TokenExpires > 0 {
		tok.Expiry = time.Unix(a.TokenExpires, 0)
	} else if tok.RefreshToken != "" {
		// Unknown expiry: force a refresh before first use.
		tok.Expiry = time.Unix(1, 0)
	}
	return tok
}

type File struct {
	Accounts []Account `json:"accounts"`
}

// Store is the JSON settings file holding every authorized account.
type Store struct {
	path string
	now  func() time.Time
}

func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// DefaultPath is <user config dir>/redelete/redelete.conf.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "redelete", "redelete.conf"), nil
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the file. A missing or empty file is an empty config.
func (s *Store) Load() (File, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return File{}, nil
	}
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	var f File
	if len(data) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return f, nil
}

func (s *Store) save(f File) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return os.Rename(tmp, s.path)
}

// Account returns the saved settings for username.
func (s *Store) Account(username string) (Account, error) {
	f, err := s.Load()
	if err != nil {
		return Account{}, err
	}
	for _, a := range f.Accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, username)
}

// update applies fn to username's entry, creating it when missing.
func (s *Store) update(username string, fn func(*Account)) (Account, error) {
	f, err := s.Load()
	if err != nil {
		return Account{}, err
	}
	i := slices.IndexFunc(f.Accounts, func(a Account) bool { return a.Username == username })
	if i < 0 {
		f.Accounts = append(f.Accounts, Account{Username: username})
		i = len(f.Accounts) - 1
	}
	fn(&f.Accounts[i])
	if err := s.save(f); err != nil {
		return Account{}, err
	}
	return f.Accounts[i], nil
}

// SetMaxHours keeps items younger than hours. 0 removes the filter.
func (s *Store) SetMaxHours(username string, hours int) error {
	_, err := s.update(username, func(a *Account) {
		a.MaxHours = nil
		if hours > 0 {
			a.MaxHours = domain.Int(hours)
		}
	})
	return err
}

// SetMinimumScore keeps items scoring at least score. 0 or less removes the filter.
func (s *Store) SetMinimumScore(username string, score int) error {
	_, err := s.update(username, func(a *Account) {
		a.MinimumScore = nil
		if score > 0 {
			a.MinimumScore = domain.Int(score)
		}
	})
	return err
}

// SetExcludedSubreddits replaces the exclusion list. An empty list removes it.
func (s *Store) SetExcludedSubreddits(username string, subs []string) (Account, error) {
	return s.update(username, func(a *Account) {
		a.ExcludedSubreddits = nil
		if len(subs) > 0 {
			a.ExcludedSubreddits = append([]string(nil), subs...)
		}
	})
}

// AddExcludedSubreddits appends subs not already listed.
func (s *Store) AddExcludedSubreddits(username string, subs []string) (Account, error) {
	return s.update(username, func(a *Account) {
		for _, sub := range subs {
			if !containsSubreddit(a.ExcludedSubreddits, sub) {
				a.ExcludedSubreddits = append(a.ExcludedSubreddits, sub)
			}
		}
	})
}

// RemoveExcludedSubreddits drops subs from the list.
func (s *Store) RemoveExcludedSubreddits(username string, subs []string) (Account, error) {
	return s.update(username, func(a *Account) {
		kept := a.ExcludedSubreddits[:0]
		for _, sub := range a.ExcludedSubreddits {
			if !containsSubreddit(subs, sub) {
				kept = append(kept, sub)
			}
		}
		a.ExcludedSubreddits = nil
		if len(kept) > 0 {
			a.ExcludedSubreddits = kept
		}
	})
}

// SaveToken stores a fresh grant. A grant without a refresh token keeps the
// one already on file.
func (s *Store) SaveToken(username string, tok Token) (Account, error) {
	return s.update(username, func(a *Account) {
		if tok.RefreshToken == "" {
			tok.RefreshToken = a.Token.RefreshToken
		}
		a.Token = tok
		a.TokenExpires = 0
		if tok.ExpiresIn > 0 {
			a.TokenExpires = s.now().Unix() + tok.ExpiresIn
		}
	})
}

// SaveOAuthToken persists a token renewed mid-run.
func (s *Store) SaveOAuthToken(username string, tok *oauth2.Token) error {
	_, err := s.update(username, func(a *Account) {
		a.Token.AccessToken = tok.AccessToken
		if tok.TokenType != "" {
			a.Token.TokenType = tok.TokenType
		}
		if tok.RefreshToken != "" {
			a.Token.RefreshToken = tok.RefreshToken
		}
		a.TokenExpires = 0
		if !tok.Expiry.IsZero() {
			a.TokenExpires = tok.Expiry.Unix()
			a.Token.ExpiresIn = int64(time.Until(tok.Expiry).Seconds())
		}
	})
	return err
}

// DeleteAccount removes username; it reports whether anything was removed.
func (s *Store) DeleteAccount(username string) (bool, error) {
	f, err := s.Load()
	if err != nil {
		return false, err
	}
	n := len(f.Accounts)
	f.Accounts = slices.DeleteFunc(f.Accounts, func(a Account) bool { return a.Username == username })
	if len(f.Accounts) == n {
		return false, nil
	}
	return true, s.save(f)
}

func containsSubreddit(list []string, sub string) bool {
	sub = filter.NormalizeSubreddit(sub)
	return slices.ContainsFunc(list, func(s string) bool { return filter.NormalizeSubreddit(s) == sub })
}
