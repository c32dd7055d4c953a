package data

import (
	goerrors "errors"
	"fmt"
	"strings"
)

// ErrorKind classifies the user-facing failures; anything not carrying
// one of these kinds is an internal failure.
type ErrorKind string

const (
	KindFileFormat    ErrorKind = "file_format"
	KindInvalidField  ErrorKind = "invalid_field"
	KindDuplicateData ErrorKind = "duplicate_data"
	KindBadInput      ErrorKind = "bad_input"
)

type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Keys    []string  `json:"keys,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func NewFileFormatError(format string, v ...any) *Error {
	return &Error{Kind: KindFileFormat, Message: fmt.Sprintf(format, v...)}
}

func NewInvalidFieldError(format string, v ...any) *Error {
	return &Error{Kind: KindInvalidField, Message: fmt.Sprintf(format, v...)}
}

// NewDuplicateDataError reports the offending keys in the order
// they were first encountered, e.g. "Duplicate ids detected - [e1]".
func NewDuplicateDataError(prefix string, keys ...string) *Error {
	return &Error{
		Kind:    KindDuplicateData,
		Message: fmt.Sprintf("%s - [%s]", prefix, strings.Join(keys, ", ")),
		Keys:    keys,
	}
}

func NewBadInputError(format string, v ...any) *Error {
	return &Error{Kind: KindBadInput, Message: fmt.Sprintf(format, v...)}
}

func AsError(err error) (*Error, bool) {
	e := &Error{}
	if goerrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func KindOf(err error) ErrorKind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return ""
}
