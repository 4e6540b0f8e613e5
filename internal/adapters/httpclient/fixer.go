package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"fxexchange/internal/domain"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Provider error codes that mean the access key is missing, wrong or disabled.
var authErrorCodes = map[int]struct{}{101: {}, 102: {}, 104: {}}

// FixerClient fetches the latest rates snapshot from a fixer-compatible "latest" endpoint.
type FixerClient struct {
	http    *http.Client
	baseURL string
}

type apiError struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}

type apiResponse struct {
	Success bool                       `json:"success"`
	Base    string                     `json:"base"`
	Date    string                     `json:"date"`
	Rates   map[string]decimal.Decimal `json:"rates"`
	Error   *apiError                  `json:"error,omitempty"`
}

func (c *FixerClient) FetchLatest(ctx context.Context, accessKey string, base string) (domain.Snapshot, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to parse base URL: %w", err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/latest"
	query := u.Query()
	query.Set("access_key", accessKey)
	query.Set("base", base)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to create request for base %q: %w", base, err)
	}
	req.Header.Set("apikey", accessKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: request for base %q failed: %w", domain.ErrProviderUnavailable, base, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return domain.Snapshot{}, fmt.Errorf("%w: status %d for base %q", domain.ErrProviderAuth, resp.StatusCode, base)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Snapshot{}, fmt.Errorf("%w: unexpected status code %d for base %q", domain.ErrProviderUnavailable, resp.StatusCode, base)
	}

	var body apiResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: failed to decode response for base %q: %w", domain.ErrProviderUnavailable, base, err)
	}

	if !body.Success {
		return domain.Snapshot{}, classifyAPIError(body.Error, base)
	}

	date, err := time.Parse(domain.DateLayout, body.Date)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: invalid snapshot date %q: %w", domain.ErrProviderUnavailable, body.Date, err)
	}
	if body.Rates == nil {
		body.Rates = map[string]decimal.Decimal{}
	}

	return domain.Snapshot{Base: body.Base, Date: date, Rates: body.Rates}, nil
}

func classifyAPIError(apiErr *apiError, base string) error {
	if apiErr == nil {
		return fmt.Errorf("%w: api returned non-success result for base %q", domain.ErrProviderUnavailable, base)
	}
	_, isAuthCode := authErrorCodes[apiErr.Code]
	if isAuthCode || strings.Contains(apiErr.Type, "access_key") {
		return fmt.Errorf("%w: %s (code %d)", domain.ErrProviderAuth, apiErr.Type, apiErr.Code)
	}
	return fmt.Errorf("%w: api returned error for base %q: %s (code %d)", domain.ErrProviderUnavailable, base, apiErr.Type, apiErr.Code)
}

func NewFixerClient(httpClient *http.Client, baseURL string) *FixerClient {
	return &FixerClient{http: httpClient, baseURL: baseURL}
}

// IsPermanent reports whether retrying err cannot help.
func IsPermanent(err error) bool {
	return errors.Is(err, domain.ErrProviderAuth) || errors.Is(err, context.Canceled)
}
