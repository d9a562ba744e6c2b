package stackwire

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorCode uint16

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeNamingConflict
	ErrCodeTokenConflict
	ErrCodeFactoryFailed
	ErrCodeGeneratorFailed
	ErrCodeCircularDependency
	ErrCodeInvalidGenerator
	ErrCodeInvalidFactory
	ErrCodeResourceNotFound
	ErrCodeTypeMismatch
	ErrCodeDuplicateResource
	ErrCodeOutputVersionMismatch
	ErrCodeBootstrapFailed
	ErrCodeInvalidConfig
	ErrCodeInvalidOutput
	ErrCodeStackCreationFailed
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:               "UNKNOWN",
	ErrCodeNamingConflict:        "NAMING_CONFLICT",
	ErrCodeTokenConflict:         "TOKEN_CONFLICT",
	ErrCodeFactoryFailed:         "FACTORY_FAILED",
	ErrCodeGeneratorFailed:       "GENERATOR_FAILED",
	ErrCodeCircularDependency:    "CIRCULAR_DEPENDENCY",
	ErrCodeInvalidGenerator:      "INVALID_GENERATOR",
	ErrCodeInvalidFactory:        "INVALID_FACTORY",
	ErrCodeResourceNotFound:      "RESOURCE_NOT_FOUND",
	ErrCodeTypeMismatch:          "TYPE_MISMATCH",
	ErrCodeDuplicateResource:     "DUPLICATE_RESOURCE",
	ErrCodeOutputVersionMismatch: "OUTPUT_VERSION_MISMATCH",
	ErrCodeBootstrapFailed:       "BOOTSTRAP_FAILED",
	ErrCodeInvalidConfig:         "INVALID_CONFIG",
	ErrCodeInvalidOutput:         "INVALID_OUTPUT",
	ErrCodeStackCreationFailed:   "STACK_CREATION_FAILED",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", c)
}

// Error is returned by every exported operation of this package. Match it
// by code with errors.Is(err, &Error{Code: ...}) or the IsXxx helpers; the
// underlying cause stays reachable through Unwrap.
type Error struct {
	Code     ErrorCode
	Message  string
	Resource string
	Cause    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s]", e.Code))

	if e.Resource != "" {
		b.WriteString(fmt.Sprintf(" resource=%q:", e.Resource))
	}

	b.WriteString(" ")
	b.WriteString(e.Message)

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func (e *Error) WithResource(resource string) *Error {
	e.Resource = resource
	return e
}

func newError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func errNamingConflict(name string, cause error) *Error {
	return newError(
		ErrCodeNamingConflict,
		fmt.Sprintf("stack name %q is already in use", name),
		cause,
	)
}

func errTokenConflict(token, resource string, cause error) *Error {
	return newError(
		ErrCodeTokenConflict,
		fmt.Sprintf("token %q is provided by more than one factory", token),
		cause,
	).WithResource(resource)
}

func errFactoryFailed(resource string, cause error) *Error {
	return newError(
		ErrCodeFactoryFailed,
		"factory returned error",
		cause,
	).WithResource(resource)
}

func errGeneratorFailed(generator string, cause error) *Error {
	return newError(
		ErrCodeGeneratorFailed,
		fmt.Sprintf("generator %s failed", generator),
		cause,
	)
}

func errCircularDependency(cause error) *Error {
	return newError(
		ErrCodeCircularDependency,
		"construct depends on itself",
		cause,
	)
}

func errInvalidGenerator(cause error) *Error {
	return newError(ErrCodeInvalidGenerator, "invalid generator", cause)
}

func errInvalidFactory(resource, got string) *Error {
	return newError(
		ErrCodeInvalidFactory,
		fmt.Sprintf("factory must be a non-nil pointer, got %s", got),
		nil,
	).WithResource(resource)
}

func errResourceNotFound(resource string) *Error {
	return newError(
		ErrCodeResourceNotFound,
		"no resource with this name",
		nil,
	).WithResource(resource)
}

func errTypeMismatch(resource, want, got string) *Error {
	return newError(
		ErrCodeTypeMismatch,
		fmt.Sprintf("expected %s, got %s", want, got),
		nil,
	).WithResource(resource)
}

func errDuplicateResource(resource, module string) *Error {
	msg := "resource name declared more than once"
	if module != "" {
		msg += " (again in module " + module + ")"
	}
	return newError(ErrCodeDuplicateResource, msg, nil).WithResource(resource)
}

func errOutputVersionMismatch(cause error) *Error {
	return newError(
		ErrCodeOutputVersionMismatch,
		"output fragment version does not match the accumulated outputs",
		cause,
	)
}

func errInvalidOutput(cause error) *Error {
	return newError(ErrCodeInvalidOutput, "failed to add output", cause)
}

func errStackCreationFailed(name string, cause error) *Error {
	return newError(
		ErrCodeStackCreationFailed,
		fmt.Sprintf("failed to create stack %q", name),
		cause,
	)
}

func errBootstrapFailed(step string, cause error) *Error {
	return newError(
		ErrCodeBootstrapFailed,
		"bootstrap failed at "+step,
		cause,
	)
}

func errInvalidConfig(message string, cause error) *Error {
	return newError(ErrCodeInvalidConfig, message, cause)
}

func hasCode(err error, code ErrorCode) bool {
	return errors.Is(err, &Error{Code: code})
}

func IsNamingConflict(err error) bool {
	return hasCode(err, ErrCodeNamingConflict)
}

func IsTokenConflict(err error) bool {
	return hasCode(err, ErrCodeTokenConflict)
}

func IsFactoryFailed(err error) bool {
	return hasCode(err, ErrCodeFactoryFailed)
}

func IsGeneratorFailed(err error) bool {
	return hasCode(err, ErrCodeGeneratorFailed)
}

func IsCircularDependency(err error) bool {
	return hasCode(err, ErrCodeCircularDependency)
}

func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeResourceNotFound)
}

func IsTypeMismatch(err error) bool {
	return hasCode(err, ErrCodeTypeMismatch)
}

func IsDuplicateResource(err error) bool {
	return hasCode(err, ErrCodeDuplicateResource)
}

func IsOutputVersionMismatch(err error) bool {
	return hasCode(err, ErrCodeOutputVersionMismatch)
}

func IsInvalidConfig(err error) bool {
	return hasCode(err, ErrCodeInvalidConfig)
}

func IsStackCreationFailed(err error) bool {
	return hasCode(err, ErrCodeStackCreationFailed)
}
