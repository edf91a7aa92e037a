// File: internal/webdriver/errors.go
package webdriver

import (
	"fmt"
	"time"
)

// This file introduces the typed errors raised by the facade. Typed errors let
// callers classify failures with errors.As instead of brittle string matching.

// LaunchError indicates the driver service or the browser process failed to start.
type LaunchError struct {
	Browser string
	Err     error
}

// Error implements the error interface.
func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s session: %v", e.Browser, e.Err)
}

// Unwrap provides the underlying error for use with errors.Is/As.
func (e *LaunchError) Unwrap() error { return e.Err }

// InvalidLocatorError is raised when a locator type has no native driver strategy.
type InvalidLocatorError struct {
	Type string
}

func (e *InvalidLocatorError) Error() string {
	return fmt.Sprintf("unrecognized locator type %q", e.Type)
}

// ElementTimeoutError is raised when a wait condition does not hold within the
// configured timeout. It names the locator and the condition that was polled.
type ElementTimeoutError struct {
	Locator   Locator
	Condition string
	Timeout   time.Duration
	Err       error
}

func (e *ElementTimeoutError) Error() string {
	return fmt.Sprintf("element %s did not become %s within %s", e.Locator, e.Condition, e.Timeout)
}

func (e *ElementTimeoutError) Unwrap() error { return e.Err }

// ActionError wraps a failure of the interaction itself, after the element was
// resolved, e.g. when the element is no longer interactable.
type ActionError struct {
	Op      string
	Locator Locator
	Err     error
}

func (e *ActionError) Error() string {
	if e.Locator == (Locator{}) {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed for element %s: %v", e.Op, e.Locator, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }
