package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/quotadeck/quotadeck/internal/accounts"
	"github.com/quotadeck/quotadeck/internal/logger"
)

const tokenEndpoint = "https://oauth2.googleapis.com/token"

// TokenExchanger turns an account's refresh token into a short-lived
// access token. The production exchanger talks to the provider's OAuth
// endpoint; tests stub this out.
type TokenExchanger interface {
	AccessToken(ctx context.Context, account accounts.Account) (string, error)
}

// tokenResponse is the OAuth token endpoint payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type cachedToken struct {
	accessToken string
	expiresAt   time.Time
}

// Valid reports whether the token is still usable, with a buffer so a
// token never expires mid-request.
func (t *cachedToken) Valid() bool {
	if t == nil || t.accessToken == "" {
		return false
	}
	return time.Now().Add(5 * time.Minute).Before(t.expiresAt)
}

// OAuthExchanger exchanges refresh tokens for access tokens and caches
// them per account until shortly before expiry.
type OAuthExchanger struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu    sync.Mutex
	cache map[string]*cachedToken
}

// NewOAuthExchanger creates an exchanger with a shared token cache.
func NewOAuthExchanger(clientID, clientSecret string) *OAuthExchanger {
	return &OAuthExchanger{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		cache:        make(map[string]*cachedToken),
	}
}

// AccessToken returns a valid access token for the account, exchanging
// the refresh token when the cached one has expired.
func (e *OAuthExchanger) AccessToken(ctx context.Context, account accounts.Account) (string, error) {
	e.mu.Lock()
	cached := e.cache[account.Email]
	e.mu.Unlock()

	if cached.Valid() {
		return cached.accessToken, nil
	}

	if account.RefreshToken == "" {
		return "", fmt.Errorf("no refresh token for account %s", account.Email)
	}

	resp, err := e.exchange(ctx, account.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("token exchange failed for %s: %w", account.Email, err)
	}

	e.mu.Lock()
	e.cache[account.Email] = &cachedToken{
		accessToken: resp.AccessToken,
		expiresAt:   time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}
	e.mu.Unlock()

	return resp.AccessToken, nil
}

func (e *OAuthExchanger) exchange(ctx context.Context, refreshToken string) (*tokenResponse, error) {
	data := url.Values{}
	data.Set("client_id", e.clientID)
	data.Set("client_secret", e.clientSecret)
	data.Set("refresh_token", refreshToken)
	data.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token exchange failed (status %d): %s", resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	return &tok, nil
}
