package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/quotadeck/quotadeck/internal/accounts"
	"github.com/quotadeck/quotadeck/internal/logger"
	"github.com/quotadeck/quotadeck/internal/models"
)

// AccountProvider supplies the accounts to sweep on each read.
type AccountProvider interface {
	List() []accounts.Account
}

// Client assembles the summary and limits snapshots by sweeping every
// configured account against the upstream quota API. Individual
// account failures are recorded on that account; the sweep itself only
// fails when the context is canceled.
type Client struct {
	provider   AccountProvider
	tokens     TokenExchanger
	httpClient *http.Client
	baseURL    string
	sem        chan struct{}
}

// NewClient creates a sweeping source with a bounded number of
// concurrent account fetches.
func NewClient(provider AccountProvider, tokens TokenExchanger, baseURL string, maxConcurrent int) *Client {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Client{
		provider:   provider,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		sem:        make(chan struct{}, maxConcurrent),
	}
}

// Summary performs the health-style sweep.
func (c *Client) Summary(ctx context.Context) (*Summary, error) {
	accts := c.provider.List()
	started := time.Now()

	results := make([]SummaryAccount, len(accts))
	var wg sync.WaitGroup
	for i, acc := range accts {
		wg.Add(1)
		go func(i int, acc accounts.Account) {
			defer wg.Done()
			c.sem <- struct{}{}
			defer func() { <-c.sem }()
			results[i] = c.fetchHealth(ctx, acc)
		}(i, acc)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("summary sweep aborted: %w", err)
	}

	sum := &Summary{
		Accounts:  results,
		LatencyMs: time.Since(started).Milliseconds(),
	}
	sum.Counts.Total = len(results)
	for _, r := range results {
		switch r.Status {
		case models.StatusOK:
			sum.Counts.Available++
		case models.StatusRateLimited:
			sum.Counts.RateLimited++
		case models.StatusInvalid:
			sum.Counts.Invalid++
		}
	}
	return sum, nil
}

// Limits performs the limits-style sweep.
func (c *Client) Limits(ctx context.Context) (*Limits, error) {
	accts := c.provider.List()

	results := make([]LimitsAccount, len(accts))
	modelLists := make([][]string, len(accts))
	var wg sync.WaitGroup
	for i, acc := range accts {
		wg.Add(1)
		go func(i int, acc accounts.Account) {
			defer wg.Done()
			c.sem <- struct{}{}
			defer func() { <-c.sem }()
			results[i], modelLists[i] = c.fetchLimits(ctx, acc)
		}(i, acc)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("limits sweep aborted: %w", err)
	}

	lim := &Limits{Accounts: results}
	seen := make(map[string]bool)
	for _, list := range modelLists {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				lim.Models = append(lim.Models, id)
			}
		}
	}
	return lim, nil
}

func (c *Client) fetchHealth(ctx context.Context, acc accounts.Account) SummaryAccount {
	result := SummaryAccount{Email: acc.Email}

	var payload wireHealth
	if err := c.get(ctx, acc, "health", &payload); err != nil {
		result.Status, result.Err = classifyError(err)
		return result
	}

	result.Status = models.ParseStatus(payload.Status)
	result.LastUsed = parseTimeField(payload.LastUsed)
	result.Models = toFields(payload.Models)
	return result
}

func (c *Client) fetchLimits(ctx context.Context, acc accounts.Account) (LimitsAccount, []string) {
	result := LimitsAccount{Email: acc.Email}

	var payload wireLimits
	if err := c.get(ctx, acc, "limits", &payload); err != nil {
		result.Status, _ = classifyError(err)
		logger.Warn("limits fetch failed", "email", acc.Email, "error", err)
		return result, nil
	}

	result.Status = models.StatusOK
	result.Limits = toFields(payload.Limits)
	return result, payload.Models
}

func (c *Client) get(ctx context.Context, acc accounts.Account, resource string, out any) error {
	token, err := c.tokens.AccessToken(ctx, acc)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/v1/accounts/%s/%s", c.baseURL, url.PathEscape(acc.Email), resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s fetch failed: %w", resource, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", resource, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return &statusError{code: resp.StatusCode, msg: string(body)}
	default:
		return fmt.Errorf("%s fetch failed (status %d): %s", resource, resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", resource, err)
	}
	return nil
}

// statusError marks upstream rejections that mean the credential is bad
// rather than the service being unhealthy.
type statusError struct {
	code int
	msg  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("upstream rejected request (status %d): %s", e.code, e.msg)
}

// classifyError maps a per-account fetch error onto an account status.
func classifyError(err error) (models.Status, string) {
	if se, ok := err.(*statusError); ok {
		return models.StatusInvalid, se.Error()
	}
	return models.StatusError, err.Error()
}
