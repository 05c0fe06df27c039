package domain

import "encoding/json"

type ResultKind string

const (
	ResultOK    ResultKind = "ok"
	ResultError ResultKind = "error"
)

// Result is the only outcome type that leaves the generator. Exactly one arm
// is meaningful: Value when Kind is ok, Message and Code when Kind is error.
type Result[T any] struct {
	Kind    ResultKind
	Value   T
	Message string
	Code    ErrorKind
}

func Ok[T any](v T) Result[T] {
	return Result[T]{Kind: ResultOK, Value: v}
}

func Fail[T any](code ErrorKind, message string) Result[T] {
	return Result[T]{Kind: ResultError, Message: message, Code: code}
}

func FailWith[T any](err *Error) Result[T] {
	if err == nil {
		return Fail[T](KindUnexpected, MsgUnexpected)
	}
	return Fail[T](err.Kind, err.Message)
}

func (r Result[T]) IsOK() bool { return r.Kind == ResultOK }

type resultEnvelope[T any] struct {
	Success bool      `json:"success"`
	Data    *T        `json:"data,omitempty"`
	Error   string    `json:"error,omitempty"`
	Code    ErrorKind `json:"code,omitempty"`
}

// MarshalJSON renders {"success":true,"data":...} or
// {"success":false,"error":...,"code":...}.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.IsOK() {
		v := r.Value
		return json.Marshal(resultEnvelope[T]{Success: true, Data: &v})
	}
	return json.Marshal(resultEnvelope[T]{Error: r.Message, Code: r.Code})
}

func (r *Result[T]) UnmarshalJSON(b []byte) error {
	var env resultEnvelope[T]
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	if env.Success {
		*r = Result[T]{Kind: ResultOK}
		if env.Data != nil {
			r.Value = *env.Data
		}
		return nil
	}
	*r = Fail[T](env.Code, env.Error)
	return nil
}
