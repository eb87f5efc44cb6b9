//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

// Package auth fetches and tracks the opaque session token used to open and
// tag the streaming websocket, following the per-provider endpoint table in
// spec.md §6 and the token-refresh lifecycle in §4.6.
package auth

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cloudmanic/realtime-client/internal/config"
)

// SDKName and SDKVersion populate the Client-Information request header on
// every auth call, matching the Client-Information convention documented in
// spec.md §6.
const (
	SDKName    = "IntrinioRealtimeGoSDK"
	SDKVersion = "1.0.0"
)

// MaxTokenAge is how long a fetched token is reused. Each connect attempt
// fetches a new token when the held one is older than this; a session that
// stays connected is not re-authenticated while it is up. Only the Python
// options client observed this
// in original_source/; spec.md §9's open question directs implementers to
// apply it uniformly across equities and options.
const MaxTokenAge = 24 * time.Hour

// requestTimeout bounds every auth HTTP call. The Python options client uses
// a 1s timeout (options_client.py __get_token); spec.md §6 documents that
// value for options and asks other implementations to apply a bounded
// deadline, so the same value is used uniformly here.
const requestTimeout = 1 * time.Second

// authURLs maps each Provider to its fixed authentication endpoint
// (spec.md §6). ProviderManual is handled separately because its host is
// runtime-supplied (Config.IPAddress).
var authURLs = map[config.Provider]string{
	config.ProviderRealtime:    "https://realtime-mx.intrinio.com/auth",
	config.ProviderDelayedSIP:  "https://realtime-delayed-sip.intrinio.com/auth",
	config.ProviderNasdaqBasic: "https://realtime-nasdaq-basic.intrinio.com/auth",
	config.ProviderIEX:         "https://realtime-mx.intrinio.com/auth",
	config.ProviderCBOEOne:     "https://cboe-one.intrinio.com/auth",
	config.ProviderOPRA:        "https://realtime-options.intrinio.com/auth",
}

// Client fetches session tokens over HTTPS, exactly as internal/api.Client
// fetches REST resources: a thin wrapper around *http.Client with a fixed
// base URL and a single GET helper.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
}

// NewClient builds a token Client for the given configuration. cfg is not
// copied; later changes to cfg.Delayed etc. are observed on the next Fetch.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// AuthURL returns the fixed authentication endpoint for the configured
// provider, resolving ProviderManual against cfg.IPAddress.
func (c *Client) AuthURL() (string, error) {
	if c.cfg.Provider == config.ProviderManual {
		if c.cfg.IPAddress == "" {
			return "", fmt.Errorf("auth: MANUAL provider requires an ip address")
		}
		return fmt.Sprintf("http://%s/auth", c.cfg.IPAddress), nil
	}

	u, ok := authURLs[c.cfg.Provider]
	if !ok {
		return "", fmt.Errorf("auth: no endpoint known for provider %q", c.cfg.Provider)
	}
	return u, nil
}

// Fetch performs the HTTP auth call and returns the opaque token body.
// A non-200 response is a fatal failure for this attempt (spec.md §4.6);
// callers drive the supervisor's BACKOFF transition on error, Fetch itself
// never retries.
func (c *Client) Fetch() (string, error) {
	base, err := c.AuthURL()
	if err != nil {
		return "", err
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("auth: invalid url %q: %w", base, err)
	}

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("auth: building request: %w", err)
	}
	req.Header.Set("Client-Information", SDKName+SDKVersion)

	if c.cfg.APIKey != "" {
		q := u.Query()
		q.Set("api_key", c.cfg.APIKey)
		u.RawQuery = q.Encode()
		req.URL = u
	} else {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("auth: reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("auth: non-200 response (status %d): %s", resp.StatusCode, string(body))
	}

	return string(body), nil
}

// SocketURL builds the websocket URL for the configured provider and token,
// including the optional &delayed=true parameter (spec.md §6).
func (c *Client) SocketURL(token string) (string, error) {
	base, err := c.AuthURL()
	if err != nil {
		return "", err
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("auth: invalid url %q: %w", base, err)
	}

	scheme := "wss"
	if u.Scheme == "http" {
		scheme = "ws"
	}

	q := url.Values{}
	q.Set("vsn", "1.0.0")
	q.Set("token", token)
	if c.cfg.Delayed {
		q.Set("delayed", "true")
	}

	socket := url.URL{
		Scheme:   scheme,
		Host:     u.Host,
		Path:     "/socket/websocket",
		RawQuery: q.Encode(),
	}
	return socket.String(), nil
}

// Session tracks a single acquired token and its age, implementing the
// 24-hour refresh rule from spec.md §9 (checked at each connect attempt)
// uniformly across equities and options clients.
type Session struct {
	Token        string
	AcquiredAt   time.Time
	BackoffIndex int
}

// Stale reports whether the session's token is older than MaxTokenAge.
func (s *Session) Stale() bool {
	if s.Token == "" {
		return true
	}
	return time.Since(s.AcquiredAt) > MaxTokenAge
}

// Reset clears the token, forcing the next Stale check to report true.
func (s *Session) Reset() {
	s.Token = ""
	s.AcquiredAt = time.Time{}
}
