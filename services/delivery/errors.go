package delivery

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineClosed is returned by engine calls made after teardown.
	ErrEngineClosed = errors.New("delivery engine closed")
	// ErrInvalidSessionID is returned when a session id is empty or malformed.
	ErrInvalidSessionID = errors.New("invalid cart session id")
)

// CatalogError wraps a failed slot catalog fetch.
type CatalogError struct {
	Err error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("slot catalog fetch failed: %v", e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}
