package custom_errors

import (
	"errors"
	"net/http"
)

// IBehaviorError is an error that knows the HTTP status it maps to.
type IBehaviorError interface {
	error
	IsBehaviorError() bool
	GetCode() int
}

type BehaviorError struct {
	Code    int
	Message string
}

func (e *BehaviorError) Error() string {
	return e.Message
}

func (e *BehaviorError) IsBehaviorError() bool {
	return true
}

func (e *BehaviorError) GetCode() int {
	return e.Code
}

func New400Error(msg string) IBehaviorError {
	return &BehaviorError{Code: http.StatusBadRequest, Message: msg}
}

func New413Error(msg string) IBehaviorError {
	return &BehaviorError{Code: http.StatusRequestEntityTooLarge, Message: msg}
}

func NewNotFoundError(msg string) IBehaviorError {
	return &BehaviorError{Code: http.StatusNotFound, Message: msg}
}

// SourceError wraps a span source failure and keeps the cause reachable for
// errors.Is / errors.As.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return "span source " + e.Source + " unavailable: " + e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

func (e *SourceError) IsBehaviorError() bool {
	return true
}

func (e *SourceError) GetCode() int {
	return http.StatusBadGateway
}

func NewSourceUnavailableError(source string, err error) IBehaviorError {
	return &SourceError{Source: source, Err: err}
}

// Code returns the HTTP status carried by err, or 500 for untyped errors.
func Code(err error) int {
	if e, ok := Unwrap[IBehaviorError](err); ok {
		return e.GetCode()
	}
	return http.StatusInternalServerError
}

func Unwrap[T IBehaviorError](err error) (T, bool) {
	var target T
	if errors.As(err, &target) {
		return target, true
	}
	return target, false
}
