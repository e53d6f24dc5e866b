package search

import (
	"errors"
	"fmt"
)

var (
	// ErrQuerySyntax matches any *QuerySyntaxError.
	ErrQuerySyntax = errors.New("malformed search query")
	// ErrIndexUnavailable matches any *IndexUnavailableError.
	ErrIndexUnavailable = errors.New("search index unavailable")
)

// QuerySyntaxError is returned for query strings that do not parse.
type QuerySyntaxError struct {
	Query string
	Pos   int
	Msg   string
}

func (e *QuerySyntaxError) Error() string {
	return fmt.Sprintf("malformed search query %q at position %d: %s", e.Query, e.Pos, e.Msg)
}

func (e *QuerySyntaxError) Is(target error) bool {
	return target == ErrQuerySyntax
}

// IndexUnavailableError wraps a failed call to the search index.
type IndexUnavailableError struct {
	Op  string
	Err error
}

func (e *IndexUnavailableError) Error() string {
	return fmt.Sprintf("search index unavailable (%s): %v", e.Op, e.Err)
}

func (e *IndexUnavailableError) Unwrap() error {
	return e.Err
}

func (e *IndexUnavailableError) Is(target error) bool {
	return target == ErrIndexUnavailable
}
