package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultAuthURL is the Roblox credential login endpoint.
const DefaultAuthURL = "https://auth.roblox.com/v2/login"

// NewLoginFunc builds a username/password login strategy. The flow was
// flaky in production (captcha challenges invalidate it at any time), so
// it ships disabled and only runs when SESSION_LOGIN_ENABLED is set.
//
// Roblox rejects the first POST with 403 and a fresh x-csrf-token header;
// the request is replayed once with that token.
func NewLoginFunc(username, password string, timeout time.Duration) LoginFunc {
	client := resty.New()
	client.SetTimeout(timeout)

	return func(ctx context.Context) (string, error) {
		body := map[string]string{
			"ctype":    "Username",
			"cvalue":   username,
			"password": password,
		}

		resp, err := client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(body).
			Post(DefaultAuthURL)
		if err != nil {
			return "", fmt.Errorf("login request: %w", err)
		}

		if resp.StatusCode() == http.StatusForbidden {
			csrf := resp.Header().Get("x-csrf-token")
			if csrf == "" {
				return "", fmt.Errorf("login rejected with %d and no csrf token", resp.StatusCode())
			}
			resp, err = client.R().
				SetContext(ctx).
				SetHeader("Content-Type", "application/json").
				SetHeader("x-csrf-token", csrf).
				SetBody(body).
				Post(DefaultAuthURL)
			if err != nil {
				return "", fmt.Errorf("login retry: %w", err)
			}
		}

		if resp.StatusCode() != http.StatusOK {
			return "", fmt.Errorf("login failed with status %d", resp.StatusCode())
		}

		for _, c := range resp.Cookies() {
			if c.Name == ".ROBLOSECURITY" && c.Value != "" {
				return c.Value, nil
			}
		}
		return "", fmt.Errorf("login response carried no session cookie")
	}
}
