package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/five82/folio/internal/openlibrary"
)

// Message renders err as the text shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var status *openlibrary.StatusError
	switch {
	case errors.Is(err, openlibrary.ErrNoResults):
		return "No books found"
	case errors.Is(err, openlibrary.ErrNotFound):
		return "Book not found"
	case errors.As(err, &status):
		return fmt.Sprintf("Open Library returned status %d", status.StatusCode)
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out"
	default:
		return err.Error()
	}
}

// userError shows Message(err) while keeping err in the chain.
type userError struct {
	err error
}

func (e *userError) Error() string { return Message(e.err) }

func (e *userError) Unwrap() error { return e.err }

func friendly(err error) error {
	if err == nil {
		return nil
	}
	return &userError{err: err}
}
