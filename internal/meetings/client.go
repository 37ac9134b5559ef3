// Package meetings wraps the Zoom REST API: meeting create/delete, recording
// metadata, and the account-credential token flow with its cache.
package meetings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/tutorsync/backend/config"
	"github.com/tutorsync/backend/internal/metrics"
	"github.com/tutorsync/backend/pkg/apperr"
)

const (
	// tokenExpiryMargin refuses cached tokens about to expire so an in-flight
	// call cannot straddle the expiry.
	tokenExpiryMargin = 60 * time.Second
	// legacyTokenTTL is the lifetime of self-signed JWT-app tokens.
	legacyTokenTTL = time.Hour

	defaultTimeout = 15 * time.Second
)

// Client is an authenticated Zoom API client with a pluggable token cache.
type Client struct {
	cfg        config.ZoomConfig
	httpClient *http.Client
	cache      TokenCache
	logger     *zap.Logger
}

// NewClient creates a meeting provider client. cache must not be nil; pass
// NewMemoryCache() when no shared backend is configured.
func NewClient(cfg config.ZoomConfig, cache TokenCache, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		logger:     logger,
	}
}

// Token returns a valid access token, reusing the cache unless the token
// expires within the margin or forceRefresh is set.
func (c *Client) Token(ctx context.Context, forceRefresh bool) (string, error) {
	if !forceRefresh {
		if tok, err := c.cache.Get(ctx); err == nil && tok != nil && time.Until(tok.ExpiresAt) > tokenExpiryMargin {
			return tok.AccessToken, nil
		}
	}
	switch {
	case c.cfg.AccountID != "" && c.cfg.ClientID != "" && c.cfg.ClientSecret != "":
		return c.exchangeToken(ctx)
	case c.cfg.APIKey != "" && c.cfg.APISecret != "":
		return c.signLegacyToken(ctx)
	default:
		return "", apperr.Auth("meeting provider credentials not configured", nil)
	}
}

func (c *Client) exchangeToken(ctx context.Context) (string, error) {
	endpoint := fmt.Sprintf("%s/oauth/token?grant_type=account_credentials&account_id=%s",
		c.cfg.OAuthBaseURL, url.QueryEscape(c.cfg.AccountID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", apperr.Auth("meeting provider token request failed", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstream("zoom_oauth", false)
		return "", apperr.Auth("meeting provider token exchange unreachable", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		metrics.RecordUpstream("zoom_oauth", false)
		return "", apperr.Auth("meeting provider token exchange failed",
			fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body)))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", apperr.Auth("meeting provider token response malformed", err)
	}

	tok := Token{
		AccessToken: tokenResp.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second),
	}
	if err := c.cache.Put(ctx, tok); err != nil {
		c.logger.Warn("token cache write failed", zap.Error(err))
	}
	metrics.RecordUpstream("zoom_oauth", true)
	c.logger.Info("meeting provider access token refreshed",
		zap.Time("expires_at", tok.ExpiresAt))
	return tok.AccessToken, nil
}

// signLegacyToken mints a JWT-app token locally. No exchange call is needed;
// the provider validates the signature against the account's API secret.
func (c *Client) signLegacyToken(ctx context.Context) (string, error) {
	expiresAt := time.Now().Add(legacyTokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": c.cfg.APIKey,
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(c.cfg.APISecret))
	if err != nil {
		return "", apperr.Auth("meeting provider legacy token signing failed", err)
	}
	if err := c.cache.Put(ctx, Token{AccessToken: signed, ExpiresAt: expiresAt}); err != nil {
		c.logger.Warn("token cache write failed", zap.Error(err))
	}
	return signed, nil
}

// invoke performs one authenticated API call. A 401 clears the cache and the
// call is retried exactly once with a fresh token; a second 401 surfaces as an
// auth error. Transient failures (network, 429, 5xx) are retried with
// exponential backoff before the last status is handed back to the caller.
func (c *Client) invoke(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	return c.invokeRetryAuth(ctx, method, path, payload, true)
}

func (c *Client) invokeRetryAuth(ctx context.Context, method, path string, payload any, retryOnAuth bool) (int, []byte, error) {
	var reqBody []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, apperr.Upstream("meeting provider request encoding failed", err)
		}
		reqBody = b
	}

	var status int
	var respBody []byte
	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.cfg.APIBaseURL+path, bytes.NewReader(reqBody))
		if err != nil {
			return backoff.Permanent(err)
		}
		token, err := c.Token(ctx, false)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		status, respBody = resp.StatusCode, b
		if status == http.StatusTooManyRequests || status >= 500 {
			return fmt.Errorf("transient status %d", status)
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.cfg.MaxRetries)), ctx)
	if err := backoff.Retry(attempt, policy); err != nil && status == 0 {
		metrics.RecordUpstream("zoom", false)
		if kind := apperr.KindOf(err); kind != apperr.KindUnknown {
			return 0, nil, err
		}
		return 0, nil, apperr.Upstream("meeting provider unreachable", err)
	}

	if status == http.StatusUnauthorized {
		if retryOnAuth {
			c.logger.Warn("meeting provider returned 401, refreshing token and retrying")
			_ = c.cache.Clear(ctx)
			if _, err := c.Token(ctx, true); err != nil {
				return status, respBody, err
			}
			return c.invokeRetryAuth(ctx, method, path, payload, false)
		}
		metrics.RecordUpstream("zoom", false)
		return status, respBody, apperr.Auth("meeting provider rejected credentials after token refresh", nil)
	}

	metrics.RecordUpstream("zoom", status < 400)
	return status, respBody, nil
}
