package status

import "strconv"

type (
	Code   uint16
	Status string
)

// HTTP status codes the request decoder and the connection layer respond with.
// See: https://www.iana.org/assignments/http-status-codes/http-status-codes.xhtml
const (
	OK        Code = 200 // RFC 9110, 15.3.1
	Created   Code = 201 // RFC 9110, 15.3.2
	NoContent Code = 204 // RFC 9110, 15.3.5

	BadRequest            Code = 400 // RFC 9110, 15.5.1
	NotFound              Code = 404 // RFC 9110, 15.5.5
	MethodNotAllowed      Code = 405 // RFC 9110, 15.5.6
	RequestTimeout        Code = 408 // RFC 9110, 15.5.9
	LengthRequired        Code = 411 // RFC 9110, 15.5.12
	RequestEntityTooLarge Code = 413 // RFC 9110, 15.5.14

	InternalServerError     Code = 500 // RFC 9110, 15.6.1
	NotImplemented          Code = 501 // RFC 9110, 15.6.2
	HTTPVersionNotSupported Code = 505 // RFC 9110, 15.6.6

	// CloseConnection isn't a real status code. It signals the connection layer to
	// close the connection without writing anything.
	CloseConnection Code = 1
)

// KnownCodes lists all the codes Text is aware of.
var KnownCodes = []Code{
	OK, Created, NoContent,
	BadRequest, NotFound, MethodNotAllowed, RequestTimeout, LengthRequired, RequestEntityTooLarge,
	InternalServerError, NotImplemented, HTTPVersionNotSupported,
}

// Text returns a text for the HTTP status code. It returns the empty
// string if the code is unknown.
func Text(code Code) Status {
	switch code {
	case OK:
		return "OK"
	case Created:
		return "Created"
	case NoContent:
		return "No Content"
	case BadRequest:
		return "Bad Request"
	case NotFound:
		return "Not Found"
	case MethodNotAllowed:
		return "Method Not Allowed"
	case RequestTimeout:
		return "Request Timeout"
	case LengthRequired:
		return "Length Required"
	case RequestEntityTooLarge:
		return "Request Entity Too Large"
	case InternalServerError:
		return "Internal Server Error"
	case NotImplemented:
		return "Not Implemented"
	case HTTPVersionNotSupported:
		return "HTTP Version Not Supported"
	default:
		return ""
	}
}

// Line returns the status part of a response line, e.g. "404 Not Found". Unknown codes
// are rendered without the reason phrase.
func Line(code Code) string {
	text := Text(code)
	if len(text) == 0 {
		return strconv.Itoa(int(code))
	}

	return strconv.Itoa(int(code)) + " " + string(text)
}
