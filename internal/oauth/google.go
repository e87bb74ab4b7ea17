package oauth

import (
	"context"
	"fmt"

	"github.com/dimitrije/relayo-api/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	ScopeCalendar     = "https://www.googleapis.com/auth/calendar"
	ScopeSpreadsheets = "https://www.googleapis.com/auth/spreadsheets"
	ScopeGmailSend    = "https://www.googleapis.com/auth/gmail.send"
)

// GoogleProvider runs the offline consent flow that connects a workspace's
// Google calendar and spreadsheets.
type GoogleProvider struct {
	config *oauth2.Config
}

func NewGoogleProvider(cfg config.GoogleConfig) *GoogleProvider {
	scopes := []string{ScopeCalendar, ScopeSpreadsheets}
	if cfg.GmailScope {
		scopes = append(scopes, ScopeGmailSend)
	}

	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     google.Endpoint,
		},
	}
}

func (p *GoogleProvider) Name() string {
	return "google"
}

// GetConsentURL forces the consent screen so Google always returns a
// refresh token.
func (p *GoogleProvider) GetConsentURL(state string) string {
	return p.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

func (p *GoogleProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return token, nil
}

// TokenSource refreshes token with the provider's client credentials.
func (p *GoogleProvider) TokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource {
	return p.config.TokenSource(ctx, token)
}
