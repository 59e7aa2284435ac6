package store

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that a lookup by primary key found no record. Absence is
// an expected outcome for GetOne callers, not a backend failure.
var ErrNotFound = errors.New("document not found")

// NetworkError wraps a failure to reach the remote store at all.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// BackendError wraps a remote rejection: permission denied, invalid query,
// malformed data and the like.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error during %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// QueryError signals a query the facade itself rejects before reaching the
// remote store, such as a malformed pagination cursor.
type QueryError struct {
	Reason string
}

func (e *QueryError) Error() string { return "invalid query: " + e.Reason }
