package openlibrary

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound matches a StatusError carrying 404.
	ErrNotFound = errors.New("not found")

	// ErrNoResults is returned when a well-formed search response holds no
	// usable documents.
	ErrNoResults = errors.New("no results")
)

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.StatusCode)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}
