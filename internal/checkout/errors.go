package checkout

import (
	"errors"
	"fmt"
)

// Step identifies a stage of the Submit pipeline.
type Step string

const (
	// StepLogin is the authentication call.
	StepLogin Step = "LOGIN"

	// StepAddToCart is the add-to-cart call.
	StepAddToCart Step = "ADD_TO_CART"

	// StepCheckout is the payment call.
	StepCheckout Step = "CHECKOUT"
)

// StepError is a failure of one Submit step.
type StepError struct {
	Step Step
	Err  error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// IsStepError reports whether err is a *StepError for step.
// Uses errors.As to handle wrapped errors.
func IsStepError(err error, step Step) bool {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step == step
	}
	return false
}

// StatusError is a non-2xx answer from the ordering service.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}
