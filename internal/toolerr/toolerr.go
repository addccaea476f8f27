// Package toolerr defines the error taxonomy shared by all tool handlers.
//
// Every failure surfaced to a caller falls into one of four kinds:
//
//   - Configuration: a required credential is missing; raised before any
//     network call
//   - Validation: a parameter failed schema constraints; raised before any
//     network call
//   - Provider: the provider reported an application-level error, or the
//     transport failed
//   - EmptyResult: the call succeeded but returned no usable record
//
// Handlers never let these propagate as faults; the dispatcher converts them
// into a single-text-block error response.
package toolerr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindValidation
	KindProvider
	KindEmptyResult
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindProvider:
		return "provider"
	case KindEmptyResult:
		return "empty_result"
	default:
		return "unknown"
	}
}

// Error is a kinded error. Message is what the caller sees; Err carries the
// underlying cause for logs and unwrapping.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Configf reports a missing or incomplete credential.
func Configf(format string, a ...any) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, a...)}
}

// Validatef reports a parameter that failed schema constraints.
func Validatef(format string, a ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, a...)}
}

// Providerf reports a provider-side or transport failure.
func Providerf(format string, a ...any) *Error {
	return &Error{Kind: KindProvider, Message: fmt.Sprintf(format, a...)}
}

// WrapProvider attaches a cause to a provider failure.
func WrapProvider(err error, format string, a ...any) *Error {
	return &Error{Kind: KindProvider, Message: fmt.Sprintf(format, a...), Err: err}
}

// EmptyResult reports a successful call with no usable record. The message
// is rendered verbatim as the entire tool output, so it should be the full
// "no results" sentence for the tool.
func EmptyResult(message string) *Error {
	return &Error{Kind: KindEmptyResult, Message: message}
}

// KindOf classifies err, unwrapping as needed. Errors outside the taxonomy
// classify as KindUnknown.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindUnknown
}

// UserMessage returns the text a caller should see for err.
func UserMessage(err error) string {
	var te *Error
	if errors.As(err, &te) {
		return te.Message
	}
	return err.Error()
}
