package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"catalog-proxy-api/pkg/apierror"
)

func writeCookie(t *testing.T, path, token string) {
	t.Helper()
	data, _ := json.Marshal(cookieRecord{Roblosecurity: token})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write cookie file: %v", err)
	}
}

func TestTokenPrefersCookieFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	writeCookie(t, path, "from-file")

	s := NewStore(path, "from-static")

	token, err := s.Token(context.Background())
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if token != "from-file" {
		t.Errorf("Token = %q, want %q", token, "from-file")
	}
}

func TestTokenStaticFallbackMirrorsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")

	s := NewStore(path, "from-static")

	token, err := s.Token(context.Background())
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if token != "from-static" {
		t.Errorf("Token = %q, want %q", token, "from-static")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cookie file not mirrored: %v", err)
	}
	var rec cookieRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("mirrored cookie file unparsable: %v", err)
	}
	if rec.Roblosecurity != "from-static" {
		t.Errorf("mirrored token = %q, want %q", rec.Roblosecurity, "from-static")
	}
}

func TestTokenUnparsableFileTreatedAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path, "from-static")

	token, err := s.Token(context.Background())
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if token != "from-static" {
		t.Errorf("Token = %q, want %q", token, "from-static")
	}
}

func TestTokenNoCredential(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")

	s := NewStore(path, "")

	_, err := s.Token(context.Background())
	if err == nil {
		t.Fatal("Token succeeded with no credential source")
	}

	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) || apiErr.Code != "NO_CREDENTIAL" {
		t.Errorf("error = %v, want NO_CREDENTIAL", err)
	}
}

func TestForceRefreshRereadsCookieFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	writeCookie(t, path, "first")

	s := NewStore(path, "")

	if token, _ := s.Token(context.Background()); token != "first" {
		t.Fatalf("initial token = %q, want %q", token, "first")
	}

	writeCookie(t, path, "second")

	token, err := s.ForceRefresh(context.Background())
	if err != nil {
		t.Fatalf("ForceRefresh failed: %v", err)
	}
	if token != "second" {
		t.Errorf("refreshed token = %q, want %q", token, "second")
	}
}

func TestTokenCachedInMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	writeCookie(t, path, "cached")

	s := NewStore(path, "")

	if _, err := s.Token(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Removing the file must not matter while the token is in memory.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	token, err := s.Token(context.Background())
	if err != nil {
		t.Fatalf("Token failed after file removal: %v", err)
	}
	if token != "cached" {
		t.Errorf("Token = %q, want %q", token, "cached")
	}
}

func TestLoginStrategyUsedAsLastResort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")

	s := NewStore(path, "")

	calls := 0
	s.SetLogin(func(ctx context.Context) (string, error) {
		calls++
		return "from-login", nil
	})

	token, err := s.Token(context.Background())
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if token != "from-login" {
		t.Errorf("Token = %q, want %q", token, "from-login")
	}
	if calls != 1 {
		t.Errorf("login calls = %d, want 1", calls)
	}

	// The login result must be mirrored like any other token.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cookie file not mirrored: %v", err)
	}
	var rec cookieRecord
	if err := json.Unmarshal(data, &rec); err != nil || rec.Roblosecurity != "from-login" {
		t.Errorf("mirrored cookie = %s, err = %v", data, err)
	}
}

func TestLoginFailureIsNoCredential(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")

	s := NewStore(path, "")
	s.SetLogin(func(ctx context.Context) (string, error) {
		return "", errors.New("captcha challenge")
	})

	_, err := s.Token(context.Background())
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) || apiErr.Code != "NO_CREDENTIAL" {
		t.Errorf("error = %v, want NO_CREDENTIAL", err)
	}
}
