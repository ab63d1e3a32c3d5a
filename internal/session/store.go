package session

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"

	"catalog-proxy-api/pkg/apierror"
)

// LoginFunc acquires a fresh session token over the network. Registered
// only when the legacy login flow is enabled.
type LoginFunc func(ctx context.Context) (string, error)

// cookieRecord is the persisted cookie file shape. The field name is an
// external contract shared with the bot tooling.
type cookieRecord struct {
	Roblosecurity string `json:"ROBLOSECURITY"`
}

// Store holds the single current .ROBLOSECURITY token for the process.
//
// Resolution order when no token is in memory: cookie file, then the
// statically configured token, then the login strategy if one is
// registered. A token obtained from any source is mirrored back into the
// cookie file.
type Store struct {
	mu         sync.Mutex
	token      string
	cookieFile string
	static     string
	login      LoginFunc
}

// NewStore creates a session store backed by the given cookie file.
// staticToken may be empty.
func NewStore(cookieFile, staticToken string) *Store {
	return &Store{
		cookieFile: cookieFile,
		static:     staticToken,
	}
}

// SetLogin registers a network login strategy. The store never calls it
// while a cookie-file or static token is available.
func (s *Store) SetLogin(fn LoginFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.login = fn
}

// Token returns the current session token, resolving one if none is held.
func (s *Store) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" {
		return s.token, nil
	}
	return s.resolve(ctx)
}

// ForceRefresh discards the in-memory token and re-runs resolution.
// It does not touch the cookie file: a token that keeps failing upstream
// has to be replaced out of band.
func (s *Store) ForceRefresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	return s.resolve(ctx)
}

// resolve runs the token resolution order. Caller must hold the lock.
func (s *Store) resolve(ctx context.Context) (string, error) {
	if token := s.readCookieFile(); token != "" {
		s.adopt(token)
		return token, nil
	}

	if s.static != "" {
		s.adopt(s.static)
		return s.static, nil
	}

	if s.login != nil {
		token, err := s.login(ctx)
		if err != nil {
			return "", apierror.NoCredential("login failed: " + err.Error())
		}
		s.adopt(token)
		return token, nil
	}

	return "", apierror.NoCredential("no cookie file, static token, or login strategy")
}

// adopt stores the token in memory and mirrors it to the cookie file.
func (s *Store) adopt(token string) {
	s.token = token
	s.writeCookieFile(token)
}

// readCookieFile loads the persisted token. A missing or unparsable file
// is treated as absent, never as an error.
func (s *Store) readCookieFile() string {
	data, err := os.ReadFile(s.cookieFile)
	if err != nil {
		return ""
	}

	var rec cookieRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		log.Printf("[Session] ignoring unparsable cookie file %s: %v", s.cookieFile, err)
		return ""
	}
	return rec.Roblosecurity
}

func (s *Store) writeCookieFile(token string) {
	if err := os.MkdirAll(filepath.Dir(s.cookieFile), 0o755); err != nil {
		log.Printf("[Session] cookie dir create failed: %v", err)
		return
	}

	data, _ := json.Marshal(cookieRecord{Roblosecurity: token})
	if err := os.WriteFile(s.cookieFile, data, 0o600); err != nil {
		log.Printf("[Session] cookie file write failed: %v", err)
	}
}
