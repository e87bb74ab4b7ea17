// Package google implements the calendar and spreadsheet providers on top of
// the Google Calendar v3 and Sheets v4 APIs.
package google

import (
	"context"
	"sync"

	"github.com/dimitrije/relayo-api/internal/logging"
	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/dimitrije/relayo-api/internal/providers"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// TokenSourcer turns a stored token into a refreshing token source.
type TokenSourcer interface {
	TokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource
}

// TokenStore persists refreshed tokens back onto the integration.
type TokenStore interface {
	UpdateToken(ctx context.Context, integrationID uuid.UUID, token *oauth2.Token) error
}

type Client struct {
	auth   TokenSourcer
	tokens TokenStore
	logger *logging.Logger
	opts   []option.ClientOption
}

// NewClient builds the Google provider. opts are appended to every API
// client, which lets tests point the services at a local server.
func NewClient(auth TokenSourcer, tokens TokenStore, logger *logging.Logger, opts ...option.ClientOption) *Client {
	return &Client{auth: auth, tokens: tokens, logger: logger, opts: opts}
}

func (c *Client) clientOptions(ctx context.Context, integ *models.Integration) ([]option.ClientOption, error) {
	if integ == nil || integ.RefreshToken == nil || *integ.RefreshToken == "" {
		return nil, providers.ErrNotConfigured
	}

	token := &oauth2.Token{RefreshToken: *integ.RefreshToken}
	if integ.AccessToken != nil {
		token.AccessToken = *integ.AccessToken
	}
	if integ.TokenExpiry != nil {
		token.Expiry = *integ.TokenExpiry
	}

	ts := &persistingTokenSource{
		ctx:           ctx,
		base:          oauth2.ReuseTokenSource(token, c.auth.TokenSource(ctx, token)),
		integrationID: integ.ID,
		store:         c.tokens,
		logger:        c.logger,
		last:          token.AccessToken,
	}

	return append([]option.ClientOption{option.WithTokenSource(ts)}, c.opts...), nil
}

// persistingTokenSource writes every newly minted access token to the store.
// Failing to persist is logged; the fresh token is still used.
type persistingTokenSource struct {
	ctx           context.Context
	base          oauth2.TokenSource
	integrationID uuid.UUID
	store         TokenStore
	logger        *logging.Logger

	mu   sync.Mutex
	last string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	changed := token.AccessToken != p.last
	p.last = token.AccessToken
	p.mu.Unlock()

	if changed {
		if err := p.store.UpdateToken(p.ctx, p.integrationID, token); err != nil {
			p.logger.Warnw("failed to persist refreshed google token",
				"integration_id", p.integrationID, "error", err)
		}
	}
	return token, nil
}
