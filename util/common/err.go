package common

import (
	"errors"
	"fmt"

	"github.com/invcheck/invcheck/logger"
)

// NewErrorf formats an error; %w wraps its operand so errors.Is still matches.
func NewErrorf(format string, a ...any) error {
	return fmt.Errorf(format, a...)
}

// Recover must be deferred directly. It logs and returns the recovered panic value.
func Recover(msg string) any {
	panicErr := recover()
	if panicErr != nil {
		if msg != "" {
			logger.Error(msg, "panic:", panicErr)
		}
	}
	return panicErr
}

// Combine joins the non-nil errors, returning nil when there are none.
func Combine(errs ...error) error {
	return errors.Join(errs...)
}
