package constant

import "net/http"

type CustomError struct {
	StatusCode int
	Message    string
}

func NewCError(StatusCode int, Message string) CustomError {
	return CustomError{StatusCode: StatusCode, Message: Message}
}

func (err CustomError) Error() string {
	return err.Message
}

var (
	ErrUnknownKind = NewCError(http.StatusBadRequest,
		"unknown operation kind")
	ErrNotSubmittable = NewCError(http.StatusBadRequest,
		"operation kind is produced internally and cannot be submitted")
	ErrNoSymbol = NewCError(http.StatusBadRequest,
		"please provide symbol")
	ErrBadTimeRange = NewCError(http.StatusBadRequest,
		"invalid 'from'/'to' query parameters: must be RFC3339 and from <= to")
	ErrNoSamples = NewCError(http.StatusNotFound,
		"no net worth samples in the requested range")
)
