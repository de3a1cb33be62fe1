package backend

import (
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// Result is the uniform outcome of a backend call. Failures never surface as panics or
// raw transport errors; they arrive here with Success=false and a shopper-safe Message.
type Result[T any] struct {
	Success bool
	Message string
	Data    T
	Code    pkgerrors.Code
	Status  int
}

// Err converts a failed result into a typed error; it returns nil on success.
func (r Result[T]) Err() error {
	if r.Success {
		return nil
	}
	code := r.Code
	if code == "" {
		code = pkgerrors.CodeDependency
	}
	return pkgerrors.New(code, r.Message).Public()
}

func ok[T any](data T, message string, status int) Result[T] {
	return Result[T]{Success: true, Data: data, Message: message, Status: status}
}

func fail[T any](code pkgerrors.Code, message string, status int) Result[T] {
	return Result[T]{Code: code, Message: message, Status: status}
}

// Ack is the payload for calls that only report success and a message.
type Ack struct{}
