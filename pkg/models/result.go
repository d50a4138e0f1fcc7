package models

// ResultStatus discriminates a Result.
type ResultStatus string

const (
	StatusSuccess ResultStatus = "success"
	StatusError   ResultStatus = "error"
)

// ErrorPayload is the error half of a Result.
type ErrorPayload struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Result is the tagged outcome of an API call. Exactly one of Data and Error
// is set, as told by Status.
type Result[T any] struct {
	Status ResultStatus  `json:"status"`
	Data   *T            `json:"data,omitempty"`
	Error  *ErrorPayload `json:"error,omitempty"`
}

func Success[T any](v T) Result[T] {
	return Result[T]{Status: StatusSuccess, Data: &v}
}

func Failure[T any](code, message string, details map[string]any) Result[T] {
	return Result[T]{
		Status: StatusError,
		Error:  &ErrorPayload{Code: code, Message: message, Details: details},
	}
}

func (r Result[T]) OK() bool { return r.Status == StatusSuccess }
