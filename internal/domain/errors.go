package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every layer. Storage adapters never leak their own
// errors past the repository; callers match these with errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrBusinessRule      = errors.New("business rule violation")
	ErrDuplicateResource = errors.New("duplicate resource")
	ErrOptimisticLock    = errors.New("optimistic lock conflict")
	ErrResourceNotFound  = errors.New("resource not found")
	ErrTransient         = errors.New("transient error")
)

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func businessRuleErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBusinessRule, fmt.Sprintf(format, args...))
}

// Transient marks err as a temporary infrastructure failure.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// IsRetryable reports whether an operation failing with err may succeed when
// invoked again unchanged.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrOptimisticLock)
}
