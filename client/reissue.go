package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultReissueTimeout = 10 * time.Second

// Coordinator funnels every concurrent reissue need through a single HTTP
// call. All waiters share the one in-flight outcome, success or failure, so
// a burst of expired requests costs the server exactly one reissue.
type Coordinator struct {
	group      singleflight.Group
	httpClient *http.Client
	reissueURL string
	timeout    time.Duration
	logger     *slog.Logger
}

// NewCoordinator creates a reissue coordinator. The http.Client must carry
// the cookie jar holding the refresh cookie. A zero timeout gets a default.
func NewCoordinator(httpClient *http.Client, reissueURL string, timeout time.Duration, logger *slog.Logger) *Coordinator {
	if timeout <= 0 {
		timeout = defaultReissueTimeout
	}
	return &Coordinator{
		httpClient: httpClient,
		reissueURL: reissueURL,
		timeout:    timeout,
		logger:     logger,
	}
}

// Reissue returns a fresh access token. Concurrent callers coalesce onto one
// in-flight request. The call runs on a context detached from any single
// caller so one caller cancelling does not fail the rest; the timeout bounds
// it instead.
func (co *Coordinator) Reissue(ctx context.Context) (string, error) {
	v, err, shared := co.group.Do("reissue", func() (any, error) {
		detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), co.timeout)
		defer cancel()
		return co.doReissue(detached)
	})
	if err != nil {
		return "", err
	}
	if shared {
		co.logger.Debug("reissue result shared with concurrent waiters")
	}
	return v.(string), nil
}

func (co *Coordinator) doReissue(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, co.reissueURL, nil)
	if err != nil {
		return "", fmt.Errorf("build reissue request: %w", err)
	}

	resp, err := co.httpClient.Do(req)
	if err != nil {
		co.logger.Warn("reissue request failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrRefreshRejected, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var body struct {
			AccessToken string `json:"accessToken"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return "", fmt.Errorf("%w: decode response: %v", ErrRefreshRejected, err)
		}
		return body.AccessToken, nil
	case http.StatusNoContent:
		return "", ErrNoRefreshCookie
	default:
		co.logger.Warn("reissue rejected", "status", resp.StatusCode)
		return "", fmt.Errorf("%w: status %d", ErrRefreshRejected, resp.StatusCode)
	}
}
