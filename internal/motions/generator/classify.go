package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/debate-motions/internal/motions/domain"
)

// Classify maps any failure to its kind and user-facing message. Precedence,
// first match wins: already classified pipeline errors, input validation
// errors, credential problems named in the message, any other descriptive
// message, and finally the generic fallback.
func Classify(err error) (domain.ErrorKind, string) {
	if err == nil {
		return domain.KindUnexpected, domain.MsgUnexpected
	}

	var typed *domain.Error
	if errors.As(err, &typed) && typed != nil {
		msg := strings.TrimSpace(typed.Message)
		if msg == "" {
			msg = domain.MessageFor(typed.Kind, "")
		}
		return typed.Kind, msg
	}

	var verrs validator.ValidationErrors
	var invalidArg *validator.InvalidValidationError
	if errors.As(err, &verrs) || errors.As(err, &invalidArg) {
		return domain.KindInputInvalid, domain.MsgInputInvalid
	}

	msg := strings.TrimSpace(err.Error())
	if strings.Contains(strings.ToLower(msg), "api key") {
		return domain.KindAuthFailure, domain.MsgAuthFailure
	}
	if msg != "" {
		return domain.KindTransportFailure, domain.MessageFor(domain.KindTransportFailure, msg)
	}
	return domain.KindUnexpected, domain.MsgUnexpected
}

// recoveredError turns a recovered panic value into an error. Values that
// carry no message come back nil so they land on the generic fallback.
func recoveredError(rec any) error {
	switch v := rec.(type) {
	case nil:
		return nil
	case error:
		return v
	case string:
		return errors.New(v)
	case fmt.Stringer:
		return errors.New(v.String())
	default:
		return nil
	}
}
