package coordinator

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classifying every failure the administrative surface can
// return. Callers branch with errors.Is; messages carry the detail.
var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrPermission      = errors.New("permission denied")
	ErrExternalService = errors.New("external service error")
	// ErrNoVerseAvailable is a normal outcome, not a failure: nothing is
	// currently assignable to the contributor.
	ErrNoVerseAvailable = errors.New("no verse available")
)

// Wrap builds an error message that includes operation context while tagging
// it with the provided marker for classification.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrExternalService
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "operation failure"
	}
	return strings.Join(parts, ": ")
}
