// Package fplclient is the upstream fetcher: a typed HTTP client for the
// Fantasy Premier League API. It performs anonymous and credentialed
// calls and reports failures as typed errors so the cache layer can
// apply its stale-fallback policy.
package fplclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	apperrors "github.com/fantasytools/fpl-agent/internal/errors"
	"github.com/fantasytools/fpl-agent/fpl"
)

// DefaultBaseURL is the production FPL API root.
const DefaultBaseURL = "https://fantasy.premierleague.com/api/"

const userAgent = "Mozilla/5.0"

// LeveledZerolog adapts a zerolog logger to retryablehttp's leveled
// interface. Client ERROR is re-written to WARN because of retries.
type LeveledZerolog struct {
	inner zerolog.Logger
}

func (l LeveledZerolog) Error(msg string, keysAndValues ...interface{}) {
	l.inner.Warn().Fields(keysAndValues).Msg(msg)
}

func (l LeveledZerolog) Warn(msg string, keysAndValues ...interface{}) {
	l.inner.Warn().Fields(keysAndValues).Msg(msg)
}

func (l LeveledZerolog) Info(msg string, keysAndValues ...interface{}) {
	l.inner.Info().Fields(keysAndValues).Msg(msg)
}

func (l LeveledZerolog) Debug(msg string, keysAndValues ...interface{}) {
	l.inner.Debug().Fields(keysAndValues).Msg(msg)
}

// Client calls the FPL API. The zero value is not usable; use New.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option modifies a Client during construction.
type Option func(*Client)

// WithBaseURL overrides the upstream API root (primarily for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New builds a Client with retrying HTTP defaults: 3 retries on
// connection errors and 5xx, no retry on 429 so rate-limiting reaches
// the cache layer, and a bounded overall timeout so one slow upstream
// call cannot starve coalescing waiters.
func New(logger zerolog.Logger, options ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(LeveledZerolog{inner: logger})
	retryClient.CheckRetry = retryPolicy

	hc := retryClient.StandardClient()
	hc.Timeout = 30 * time.Second

	c := &Client{
		baseURL: DefaultBaseURL,
		http:    hc,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// retryPolicy treats 429 Too Many Requests as non-retryable so the
// caller can decide how to deal with rate-limiting.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// request performs one upstream call. credential may be nil for
// anonymous endpoints. The raw response body is returned on 2xx.
func (c *Client) request(ctx context.Context, method, endpoint string, credential *oauth2.Token, body any) (json.RawMessage, error) {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("fplclient: marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("fplclient: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential != nil {
		// The FPL API reads the bearer token from both headers.
		bearer := "Bearer " + credential.AccessToken
		req.Header.Set("Authorization", bearer)
		req.Header.Set("x-api-authorization", bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Wrapf(err, "fplclient: %s %s", method, endpoint)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrapf(err, "fplclient: read response for %s", endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Status: resp.StatusCode, Endpoint: endpoint, Body: truncate(data, 512)}
	}
	return data, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Bootstrap fetches the bulk reference dataset (anonymous).
func (c *Client) Bootstrap(ctx context.Context) (json.RawMessage, error) {
	return c.request(ctx, http.MethodGet, "bootstrap-static/", nil, nil)
}

// Fixtures fetches the full season fixture list (anonymous).
func (c *Client) Fixtures(ctx context.Context) (json.RawMessage, error) {
	return c.request(ctx, http.MethodGet, "fixtures/", nil, nil)
}

// ElementSummary fetches detailed history and fixtures for one player.
func (c *Client) ElementSummary(ctx context.Context, elementID int) (json.RawMessage, error) {
	return c.request(ctx, http.MethodGet, fmt.Sprintf("element-summary/%d/", elementID), nil, nil)
}

// Entry fetches a manager's public account page.
func (c *Client) Entry(ctx context.Context, entryID int) (json.RawMessage, error) {
	return c.request(ctx, http.MethodGet, fmt.Sprintf("entry/%d/", entryID), nil, nil)
}

// EventPicks fetches a manager's team for one gameweek.
func (c *Client) EventPicks(ctx context.Context, entryID, gameweek int) (json.RawMessage, error) {
	return c.request(ctx, http.MethodGet, fmt.Sprintf("entry/%d/event/%d/picks/", entryID, gameweek), nil, nil)
}

// LeagueStandings fetches one page of a classic league table.
func (c *Client) LeagueStandings(ctx context.Context, leagueID, page int) (json.RawMessage, error) {
	return c.request(ctx, http.MethodGet, fmt.Sprintf("leagues-classic/%d/standings/?page_standings=%d", leagueID, page), nil, nil)
}

// MyTeam fetches the caller's current squad. Requires a credential.
func (c *Client) MyTeam(ctx context.Context, credential *oauth2.Token, entryID int) (*fpl.MyTeam, error) {
	data, err := c.request(ctx, http.MethodGet, fmt.Sprintf("my-team/%d/", entryID), credential, nil)
	if err != nil {
		return nil, err
	}
	var team fpl.MyTeam
	if err := json.Unmarshal(data, &team); err != nil {
		return nil, apperrors.Wrapf(err, "fplclient: decode my-team")
	}
	return &team, nil
}

// Me resolves the account behind a credential to its entry ID. Used
// exactly once per login, at session confirmation.
func (c *Client) Me(ctx context.Context, credential *oauth2.Token) (int, error) {
	data, err := c.request(ctx, http.MethodGet, "me/", credential, nil)
	if err != nil {
		return 0, err
	}
	var me fpl.Me
	if err := json.Unmarshal(data, &me); err != nil {
		return 0, apperrors.Wrapf(err, "fplclient: decode me")
	}
	if me.Player.Entry == 0 {
		return 0, apperrors.Wrapf(apperrors.ErrNotFound, "fplclient: me payload has no entry")
	}
	return me.Player.Entry, nil
}

// ExecuteTransfers posts the account-mutating transfer payload.
func (c *Client) ExecuteTransfers(ctx context.Context, credential *oauth2.Token, payload *fpl.TransferPayload) (json.RawMessage, error) {
	return c.request(ctx, http.MethodPost, "transfers/", credential, payload)
}
