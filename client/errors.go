package client

import "errors"

var (
	// ErrNoRefreshCookie means the reissue endpoint had no cookie to work
	// with (HTTP 204). The caller must re-authenticate; retrying is useless.
	ErrNoRefreshCookie = errors.New("no refresh cookie present")

	// ErrRefreshRejected means reissue was attempted and refused, or timed
	// out. Terminal; the caller must re-authenticate.
	ErrRefreshRejected = errors.New("refresh rejected")

	// ErrAuthFailed is a terminal authentication failure on the guarded
	// request itself, including a 401 that survives one reissue-and-retry.
	ErrAuthFailed = errors.New("authentication failed")
)
