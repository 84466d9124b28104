package collector

import (
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/qepting91/redelete/internal/config"
	"github.com/qepting91/redelete/internal/pacing"
)

// NewCollector selects the correct implementation based on the MODE.
// onRefresh receives renewed tokens in oauth mode.
func NewCollector(cfg config.Config, account config.Account, pacer *pacing.Pacer, onRefresh func(*oauth2.Token)) (*History, error) {
	var (
		src Source
		err error
	)
	switch cfg.CollectorMode {
	case config.ModeAPI:
		src, err = NewAPIClient(cfg.ClientID, cfg.ClientSecret, cfg.Username, cfg.Password, cfg.UserAgent, pacer)
	case config.ModeOAuth:
		src, err = NewOAuthClient(account.OAuthToken(), pacer, OAuthOptions{
			ClientID:  cfg.ClientID,
			UserAgent: cfg.UserAgent,
			BaseURL:   cfg.APIBase,
			TokenURL:  cfg.TokenURL,
			OnRefresh: onRefresh,
		})
	case config.ModeMock:
		src = NewMockClient(cfg.MockItems, time.Now())
	default:
		return nil, fmt.Errorf("unknown collector mode: %s (use 'api', 'oauth', or 'mock')", cfg.CollectorMode)
	}
	if err != nil {
		return nil, err
	}
	return NewHistory(src, cfg.PageSize), nil
}
