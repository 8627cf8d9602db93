package client

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"essay-auth/middleware"
)

// Session is an HTTP client for callers of the guarded API. It holds the
// current access token, sends it as a bearer header, and on an expired-token
// rejection coordinates one reissue and one retry before giving up.
//
// The zero retry budget after a reissue is deliberate: a request that fails
// twice is not suffering from expiry.
type Session struct {
	httpClient  *http.Client
	coordinator *Coordinator
	logger      *slog.Logger

	mu          sync.RWMutex
	accessToken string
}

// NewSession creates a session against the auth service at authBaseURL.
// The underlying client gets a cookie jar if it has none, so the refresh
// cookie set at sign-in flows back to the reissue endpoint.
func NewSession(httpClient *http.Client, authBaseURL string, reissueTimeout time.Duration, logger *slog.Logger) (*Session, error) {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	reissueURL := strings.TrimSuffix(authBaseURL, "/") + "/auth/reissue"
	return &Session{
		httpClient:  httpClient,
		coordinator: NewCoordinator(httpClient, reissueURL, reissueTimeout, logger),
		logger:      logger,
	}, nil
}

// SetAccessToken installs the token obtained from sign-in or signup.
func (s *Session) SetAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

// AccessToken returns the current token, which may have been replaced by a
// background reissue since the caller last looked.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// Do sends a guarded request. On a retryable 401 it reissues the access
// token, once, and retries the request, once. Any other 401 and any
// post-retry 401 is a terminal ErrAuthFailed. The request needs GetBody set
// if it carries a body, which http.NewRequest does for common reader types.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	token := s.AccessToken()
	resp, err := s.attempt(req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	retryable := s.retryableRejection(resp, token)
	if !retryable {
		return nil, ErrAuthFailed
	}

	fresh, err := s.coordinator.Reissue(req.Context())
	if err != nil {
		return nil, err
	}
	s.SetAccessToken(fresh)

	resp, err = s.attempt(req, fresh)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		return nil, ErrAuthFailed
	}
	return resp, nil
}

// attempt sends a clone of req so the original stays replayable.
func (s *Session) attempt(req *http.Request, token string) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewind request body: %w", err)
		}
		clone.Body = body
	}
	if token != "" {
		clone.Header.Set("Authorization", "Bearer "+token)
	}
	return s.httpClient.Do(clone)
}

// retryableRejection decides whether a 401 is worth a reissue. An expired
// token is; so is a request that went out with no token at all, since a
// refresh cookie may still be live. Everything else is terminal.
func (s *Session) retryableRejection(resp *http.Response, sentToken string) bool {
	defer drain(resp)

	if sentToken == "" {
		return true
	}

	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err != nil {
		return false
	}
	return body.Code == middleware.CodeTokenExpired
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
