package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorKind string

const (
	KindConfigMissing     ErrorKind = "config_missing"
	KindInputInvalid      ErrorKind = "invalid_input"
	KindAuthFailure       ErrorKind = "auth_failure"
	KindTransportFailure  ErrorKind = "transport_failure"
	KindEmptyReply        ErrorKind = "empty_reply"
	KindParseFailure      ErrorKind = "parse_failure"
	KindValidationFailure ErrorKind = "validation_failure"
	KindUnexpected        ErrorKind = "unexpected"
)

const (
	MsgConfigMissing     = "Perplexity API key is not configured. Please add PERPLEXITY_API_KEY to your environment variables."
	MsgInputInvalid      = "Invalid input provided"
	MsgAuthFailure       = "Invalid Perplexity API key. Please check your configuration."
	MsgEmptyReply        = "No response received from Perplexity API"
	MsgParseFailure      = "Failed to parse AI response. Please try again."
	MsgValidationFailure = "No motions were generated. Please try again."
	MsgUnexpected        = "An unexpected error occurred. Please try again."

	msgTransportPrefix = "Failed to generate motions: "
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its kind.
var (
	ErrConfigMissing     = errors.New("config missing")
	ErrInputInvalid      = errors.New("invalid input")
	ErrAuthFailure       = errors.New("auth failure")
	ErrTransportFailure  = errors.New("transport failure")
	ErrEmptyReply        = errors.New("empty reply")
	ErrParseFailure      = errors.New("parse failure")
	ErrValidationFailure = errors.New("validation failure")
	ErrUnexpected        = errors.New("unexpected failure")
)

var kindSentinels = map[ErrorKind]error{
	KindConfigMissing:     ErrConfigMissing,
	KindInputInvalid:      ErrInputInvalid,
	KindAuthFailure:       ErrAuthFailure,
	KindTransportFailure:  ErrTransportFailure,
	KindEmptyReply:        ErrEmptyReply,
	KindParseFailure:      ErrParseFailure,
	KindValidationFailure: ErrValidationFailure,
	KindUnexpected:        ErrUnexpected,
}

// Error is a pipeline failure that already knows its user-facing message.
// Err keeps the underlying cause for logs; it is never shown to users.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "motions error"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	return kindSentinels[e.Kind] == target
}

// NewError builds an *Error with the fixed message for kind. Transport
// failures interpolate detail into their message; other kinds ignore it.
func NewError(kind ErrorKind, detail string, cause error) *Error {
	return &Error{Kind: kind, Message: MessageFor(kind, detail), Err: cause}
}

// MessageFor returns the user-facing message of kind.
func MessageFor(kind ErrorKind, detail string) string {
	switch kind {
	case KindConfigMissing:
		return MsgConfigMissing
	case KindInputInvalid:
		return MsgInputInvalid
	case KindAuthFailure:
		return MsgAuthFailure
	case KindTransportFailure:
		detail = strings.TrimSpace(detail)
		if detail == "" {
			return MsgUnexpected
		}
		return msgTransportPrefix + detail
	case KindEmptyReply:
		return MsgEmptyReply
	case KindParseFailure:
		return MsgParseFailure
	case KindValidationFailure:
		return MsgValidationFailure
	default:
		return MsgUnexpected
	}
}

// HTTPStatus maps a kind to the status code the HTTP surface answers with.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindInputInvalid:
		return http.StatusBadRequest
	case KindConfigMissing:
		return http.StatusServiceUnavailable
	case KindAuthFailure, KindTransportFailure, KindEmptyReply, KindParseFailure, KindValidationFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
