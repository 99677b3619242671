package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSyncInProgress is returned when a sync is requested while another one is running.
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrNoProfile is returned when no stored profile exists to sync with.
	ErrNoProfile = errors.New("no stored profile")
)

// AuthenticationError reports a failed get_profile call. It aborts a sync at the first stage.
type AuthenticationError struct {
	Err        error
	StatusCode int
}

func (e *AuthenticationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("authentication failed: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// NetworkError reports a catalog action that failed in transport, returned a
// non-success status, or returned a body that could not be decoded.
type NetworkError struct {
	Err        error
	Action     string
	StatusCode int
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d", e.Action, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError wraps a JSON decoding failure of a remote response body.
type DecodeError struct {
	Err    error
	Action string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Action, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// StorageError reports a failed batch statement. Chunks before Chunk are committed.
type StorageError struct {
	Err   error
	Table string
	Chunk int
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store %s (chunk %d): %v", e.Table, e.Chunk, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ProxyResolutionError reports that the local forwarding port could not be resolved.
// It is logged and never returned to callers of the proxy resolver.
type ProxyResolutionError struct {
	Err error
}

func (e *ProxyResolutionError) Error() string {
	return fmt.Sprintf("resolve proxy port: %v", e.Err)
}

func (e *ProxyResolutionError) Unwrap() error { return e.Err }
