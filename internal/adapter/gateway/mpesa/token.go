package mpesa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// tokenRefreshMargin renews a token shortly before the provider expires it.
const tokenRefreshMargin = time.Minute

// TokenSource fetches and caches an OAuth access token. It is safe for
// concurrent use; at most one fetch is in flight at a time.
type TokenSource struct {
	httpClient *http.Client
	url        string
	key        string
	secret     string
	now        func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenSource creates a TokenSource for the client_credentials grant at url.
func NewTokenSource(httpClient *http.Client, url, key, secret string) *TokenSource {
	return &TokenSource{
		httpClient: httpClient,
		url:        url,
		key:        key,
		secret:     secret,
		now:        time.Now,
	}
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   json.Number `json:"expires_in"`
}

// Token returns a cached token or fetches a new one.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expiresAt) {
		return s.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(s.key, s.secret)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch token: unexpected status %d", resp.StatusCode)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("fetch token: empty access token")
	}

	ttl := time.Hour
	if secs, err := body.ExpiresIn.Int64(); err == nil && secs > 0 {
		ttl = time.Duration(secs) * time.Second
	}
	if ttl > 2*tokenRefreshMargin {
		ttl -= tokenRefreshMargin
	}

	s.token = body.AccessToken
	s.expiresAt = s.now().Add(ttl)

	return s.token, nil
}

// Invalidate drops the cached token if it is still token, so the next call fetches a new one.
func (s *TokenSource) Invalidate(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == token {
		s.token = ""
		s.expiresAt = time.Time{}
	}
}
