package domain

import (
	"errors"
	"fmt"
)

// ErrQuestionNotFound is returned when a question id cannot be found in
// the store for the given category.
var ErrQuestionNotFound = errors.New("question not found")

// ErrCategoryNotFound is returned when a category has no question set.
var ErrCategoryNotFound = errors.New("category not found")

// ErrMalformedConditional marks a stored conditional_display that is in
// neither the canonical nor the legacy shape. Callers treat it as "no
// condition" so the question degrades to always visible.
var ErrMalformedConditional = errors.New("malformed conditional_display")

// ErrMutationInFlight is returned when a second mutation is attempted
// while one is still awaiting the store.
var ErrMutationInFlight = errors.New("another mutation is in flight")

// ErrNotLoaded is returned when an editor operation runs before the
// category's questions have been loaded.
var ErrNotLoaded = errors.New("questions not loaded")

// ValidationError rejects a condition dialog before anything reaches
// the store. Row identifies the offending condition (zero-based).
type ValidationError struct {
	Row    int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("condition %d: %s", e.Row, e.Reason)
}
