package model

// Result is the normalised outcome of one provider call: either a payload
// or a failure detail taken from the provider response.
type Result[T any] struct {
	ok      bool
	Payload T
	Detail  string
}

func Success[T any](payload T) Result[T] {
	return Result[T]{ok: true, Payload: payload}
}

func Failure[T any](detail string) Result[T] {
	return Result[T]{Detail: detail}
}

func (r Result[T]) IsSuccess() bool { return r.ok }
