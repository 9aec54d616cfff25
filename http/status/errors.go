package status

type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

// CodeOf returns the status code the error should be responded with. Errors that aren't
// HTTPError are considered internal.
func CodeOf(err error) Code {
	if httpErr, ok := err.(HTTPError); ok {
		return httpErr.Code
	}

	return InternalServerError
}

var (
	ErrMalformedRequestLine = NewError(BadRequest, "malformed request line")
	ErrMalformedHeaderValue = NewError(BadRequest, "malformed Content-Length value")
	ErrUnknownBodyLength    = NewError(LengthRequired, "request body length is unknown")
	ErrTooLarge             = NewError(RequestEntityTooLarge, "request is too large")
	ErrRequestTimeout       = NewError(RequestTimeout, "request timeout")

	ErrCloseConnection = NewError(CloseConnection, "actively closing the connection")
)
