// internal/domain/query/errors.go
package query

import (
	"errors"
	"fmt"
)

// ErrorKind tags a resolution failure.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindTransportFailure
	KindInvalidQuery // Reserved for input validation; nothing produces it yet
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindTransportFailure:
		return "transport_failure"
	case KindInvalidQuery:
		return "invalid_query"
	}
	return "unknown"
}

// Sentinels for errors.Is. A *ResolveError matches the sentinel of its kind.
var (
	ErrNotFound         = errors.New("no student matches the query")
	ErrTransportFailure = errors.New("report service request failed")
	ErrInvalidQuery     = errors.New("invalid query")
)

// ResolveError is the only error type returned by the resolver.
type ResolveError struct {
	Kind  ErrorKind
	Query string
	Err   error // Underlying cause, may be nil
}

func (e *ResolveError) Error() string {
	msg := fmt.Sprintf("resolve %q: %s", e.Query, e.sentinel())
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNotFound) and friends match by kind.
func (e *ResolveError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *ResolveError) sentinel() error {
	switch e.Kind {
	case KindNotFound:
		return ErrNotFound
	case KindTransportFailure:
		return ErrTransportFailure
	case KindInvalidQuery:
		return ErrInvalidQuery
	}
	return nil
}

// NotFound builds a KindNotFound error for q.
func NotFound(q string) *ResolveError {
	return &ResolveError{Kind: KindNotFound, Query: q}
}

// TransportFailure builds a KindTransportFailure error for q wrapping cause.
func TransportFailure(q string, cause error) *ResolveError {
	return &ResolveError{Kind: KindTransportFailure, Query: q, Err: cause}
}

// KindOf extracts the kind of a resolution error. Errors that are not
// ResolveErrors report KindTransportFailure, the catch-all for the remote path.
func KindOf(err error) ErrorKind {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindTransportFailure
}
