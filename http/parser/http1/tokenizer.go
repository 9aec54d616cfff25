package http1

import (
	"bytes"
	"math"

	"github.com/indigo-web/reqstream/http"
	"github.com/indigo-web/reqstream/http/status"
	"github.com/indigo-web/utils/uf"
)

var crlf = []byte("\r\n")

// tokenize decodes the request line and headers from a complete header block, including its
// terminating empty line. Strings put into the request are views into the block. Returns
// unknownLength if no usable Content-Length header was met.
func tokenize(block []byte, request *http.Request) (contentLength int64, err error) {
	contentLength = unknownLength

	line, rest := cutLine(block)
	if err = parseRequestLine(line, request); err != nil {
		return contentLength, err
	}

	for len(rest) > 0 {
		line, rest = cutLine(rest)

		colon := bytes.IndexByte(line, ':')
		if colon == -1 {
			// either the empty line or garbage. Both end the headers section
			break
		}

		value := line[colon+1:]
		if len(value) > 0 && value[0] == ' ' {
			value = value[1:]
		}

		if len(value) == 0 {
			continue
		}

		key := uf.B2S(line[:colon])
		if key == "Content-Length" {
			if contentLength, err = parseContentLength(value); err != nil {
				return unknownLength, err
			}
		}

		request.Headers.Add(key, uf.B2S(value))
	}

	return contentLength, nil
}

// parseRequestLine splits the line in form of `METHOD PATH HTTP/VERSION`.
func parseRequestLine(line []byte, request *http.Request) error {
	methodEnd := bytes.IndexByte(line, ' ')
	if methodEnd == -1 {
		return status.ErrMalformedRequestLine
	}

	pathEnd := bytes.IndexByte(line[methodEnd+1:], ' ')
	if pathEnd == -1 {
		return status.ErrMalformedRequestLine
	}

	pathEnd += methodEnd + 1

	protoEnd := bytes.IndexByte(line[pathEnd+1:], '/')
	if protoEnd == -1 {
		return status.ErrMalformedRequestLine
	}

	protoEnd += pathEnd + 1

	if uf.B2S(line[pathEnd+1:protoEnd]) != "HTTP" {
		return status.ErrMalformedRequestLine
	}

	request.Method = uf.B2S(line[:methodEnd])
	request.Path = uf.B2S(line[methodEnd+1 : pathEnd])
	request.Version = uf.B2S(line[protoEnd+1:])

	return nil
}

func parseContentLength(value []byte) (int64, error) {
	var length int64

	for _, char := range value {
		if char < '0' || char > '9' {
			return unknownLength, status.ErrMalformedHeaderValue
		}

		digit := int64(char - '0')
		if length > (math.MaxInt64-digit)/10 {
			return unknownLength, status.ErrMalformedHeaderValue
		}

		length = length*10 + digit
	}

	return length, nil
}

func cutLine(data []byte) (line, rest []byte) {
	line, rest, _ = bytes.Cut(data, crlf)
	return line, rest
}
