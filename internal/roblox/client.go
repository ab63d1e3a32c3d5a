package roblox

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"catalog-proxy-api/internal/model"
	"catalog-proxy-api/internal/repository"
	"catalog-proxy-api/internal/session"
	"catalog-proxy-api/pkg/apierror"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the base URL of the Roblox catalog API.
const DefaultBaseURL = "https://catalog.roblox.com"

// DefaultTimeout is the fixed per-call timeout for upstream requests.
const DefaultTimeout = 10 * time.Second

// sessionCookie is the Roblox authentication cookie name.
const sessionCookie = ".ROBLOSECURITY"

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration

	// RetryEnabled switches on transport-level retries for 5xx responses
	// (RetryAttempts total attempts, RetryBaseWait backoff). While active
	// it replaces the one-shot auth retry on 401/403.
	RetryEnabled  bool
	RetryAttempts int
	RetryBaseWait time.Duration
}

// Client issues requests against the Roblox catalog API, attaching the
// current session cookie where required and retrying once through a
// session refresh on an authentication failure.
type Client struct {
	http      *resty.Client
	baseURL   string
	session   *session.Store
	logs      repository.CallLogRepository
	authRetry bool
}

// NewClient creates a catalog API client. logs may be nil.
func NewClient(sess *session.Store, logs repository.CallLogRepository, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	hc := resty.New()
	hc.SetTimeout(opts.Timeout)

	if opts.RetryEnabled {
		attempts := opts.RetryAttempts
		if attempts < 1 {
			attempts = 3
		}
		wait := opts.RetryBaseWait
		if wait == 0 {
			wait = 500 * time.Millisecond
		}
		hc.SetRetryCount(attempts - 1)
		hc.SetRetryWaitTime(wait)
		hc.AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil || r == nil {
				return false
			}
			switch r.StatusCode() {
			case http.StatusInternalServerError, http.StatusBadGateway,
				http.StatusServiceUnavailable, http.StatusGatewayTimeout:
				return true
			}
			return false
		})
	}

	return &Client{
		http:      hc,
		baseURL:   opts.BaseURL,
		session:   sess,
		logs:      logs,
		authRetry: !opts.RetryEnabled,
	}
}

// AssetBundles fetches the bundles containing the given asset. No auth.
func (c *Client) AssetBundles(ctx context.Context, assetID int64) (*BundleList, error) {
	url := fmt.Sprintf("%s/v1/assets/%d/bundles", c.baseURL, assetID)

	data, err := c.Fetch(ctx, http.MethodGet, url, nil, false)
	if err != nil {
		return nil, err
	}

	var list BundleList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, apierror.BadGateway(fmt.Sprintf("malformed bundle list from %s", url))
	}
	return &list, nil
}

// BundleDetails fetches the details of a single bundle. No auth.
func (c *Client) BundleDetails(ctx context.Context, bundleID int64) (*BundleDetails, error) {
	url := fmt.Sprintf("%s/v1/bundles/%d/details", c.baseURL, bundleID)

	data, err := c.Fetch(ctx, http.MethodGet, url, nil, false)
	if err != nil {
		return nil, err
	}

	var details BundleDetails
	if err := json.Unmarshal(data, &details); err != nil {
		return nil, apierror.BadGateway(fmt.Sprintf("malformed bundle details from %s", url))
	}
	return &details, nil
}

// ItemDetails fetches batch item details. Requires an authenticated session.
func (c *Client) ItemDetails(ctx context.Context, assetIDs []int64) (*ItemDetailsResponse, error) {
	url := c.baseURL + "/v1/catalog/items/details"

	req := ItemDetailsRequest{Items: make([]ItemQuery, 0, len(assetIDs))}
	for _, id := range assetIDs {
		req.Items = append(req.Items, ItemQuery{ItemType: "Asset", ID: id})
	}

	data, err := c.Fetch(ctx, http.MethodPost, url, req, true)
	if err != nil {
		return nil, err
	}

	var resp ItemDetailsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, apierror.BadGateway(fmt.Sprintf("malformed item details from %s", url))
	}
	return &resp, nil
}

// Fetch issues one logical request and returns the raw response body.
// When requireAuth is set, a 401/403 triggers exactly one session refresh
// and retry; a second 401/403 fails with AuthenticationFailed. The bound
// is the loop, not recursion.
func (c *Client) Fetch(ctx context.Context, method, url string, body interface{}, requireAuth bool) ([]byte, error) {
	attempts := 1
	if requireAuth && c.authRetry {
		attempts = 2
	}

	for attempt := 0; attempt < attempts; attempt++ {
		var token string
		if requireAuth {
			var err error
			token, err = c.session.Token(ctx)
			if err != nil {
				return nil, err
			}
		}

		status, data, err := c.execute(ctx, method, url, body, token)
		if err != nil {
			return nil, err
		}

		if requireAuth && (status == http.StatusUnauthorized || status == http.StatusForbidden) {
			if attempt+1 < attempts {
				if _, err := c.session.ForceRefresh(ctx); err != nil {
					return nil, err
				}
				continue
			}
			return nil, apierror.AuthenticationFailed(
				fmt.Sprintf("upstream auth failed with %d for %s after refresh", status, url))
		}

		if err := mapStatus(status, url, data); err != nil {
			return nil, err
		}
		return data, nil
	}

	return nil, apierror.InternalError("request attempts exhausted")
}

// execute performs a single HTTP call and returns the status and body.
func (c *Client) execute(ctx context.Context, method, url string, body interface{}, token string) (int, []byte, error) {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(body)
	}
	if token != "" {
		req.SetCookie(&http.Cookie{Name: sessionCookie, Value: token})
	}

	start := time.Now()

	var resp *resty.Response
	var err error
	switch method {
	case http.MethodGet:
		resp, err = req.Get(url)
	case http.MethodPost:
		resp, err = req.Post(url)
	default:
		return 0, nil, apierror.InternalError("unsupported method " + method)
	}

	duration := time.Since(start)

	if err != nil {
		c.record(method, url, 0, duration, err)
		return 0, nil, apierror.BadGateway(fmt.Sprintf("upstream request failed for %s: %v", url, err))
	}

	c.record(method, url, resp.StatusCode(), duration, nil)
	return resp.StatusCode(), resp.Body(), nil
}

// record writes a call-log entry without blocking the request path.
func (c *Client) record(method, url string, status int, duration time.Duration, callErr error) {
	if c.logs == nil {
		return
	}

	entry := &model.CallLog{
		Method:     method,
		URL:        url,
		Status:     status,
		DurationMs: duration.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.logs.Insert(ctx, entry); err != nil {
			log.Printf("[RobloxClient] call log insert failed: %v", err)
		}
	}()
}

// mapStatus maps an upstream status code to the caller-visible outcome.
func mapStatus(status int, url string, body []byte) error {
	switch {
	case status == http.StatusNotFound:
		return apierror.NotFound("not found: " + url)
	case status >= 500:
		return apierror.BadGateway(fmt.Sprintf("upstream error %d for %s", status, url))
	case status >= 400:
		return apierror.UpstreamRejected(status,
			fmt.Sprintf("upstream error %d for %s", status, url)).
			WithUpstream(Decode(body).Value())
	}
	return nil
}
