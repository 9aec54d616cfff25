// Package render builds the text of outgoing HTTP/1.1 messages. The builders are stateless
// and always emit a fixed-length body, as no transfer-encodings are supported.
package render

import (
	"strconv"

	"github.com/indigo-web/reqstream/kv"
	"github.com/indigo-web/utils/strcomp"
	"github.com/valyala/bytebufferpool"
)

const protocol = "HTTP/1.1"

// Request renders a request in form of
//
//	METHOD path HTTP/1.1
//	Host: host
//	<headers>
//	[Content-Length: n]
//
//	body
//
// Empty path is replaced by "/". Content-Length is added only for non-empty body. The headers
// may be nil.
func Request(method, host, path string, body []byte, headers *kv.Storage) string {
	if len(path) == 0 {
		path = "/"
	}

	buff := bytebufferpool.Get()
	defer bytebufferpool.Put(buff)

	buff.B = append(buff.B, method...)
	buff.B = append(buff.B, ' ')
	buff.B = append(buff.B, path...)
	buff.B = append(buff.B, ' ')
	buff.B = append(buff.B, protocol...)
	buff.B = crlf(buff.B)
	buff.B = header(buff.B, "Host", host)

	if headers != nil {
		for key, value := range headers.Pairs() {
			buff.B = header(buff.B, key, value)
		}
	}

	if len(body) > 0 {
		buff.B = contentLength(buff.B, len(body))
	}

	buff.B = crlf(buff.B)
	buff.B = append(buff.B, body...)

	return buff.String()
}

// Response renders a response in form of
//
//	HTTP/1.1 statusLine
//	[Content-Length: n]
//	<headers>
//
//	body
//
// Content-Length is always computed from the body itself, so if headers contain one, it is
// skipped. The headers may be nil.
func Response(statusLine string, body []byte, headers *kv.Storage) string {
	buff := bytebufferpool.Get()
	defer bytebufferpool.Put(buff)

	buff.B = append(buff.B, protocol...)
	buff.B = append(buff.B, ' ')
	buff.B = append(buff.B, statusLine...)
	buff.B = crlf(buff.B)

	if len(body) > 0 {
		buff.B = contentLength(buff.B, len(body))
	}

	if headers != nil {
		for key, value := range headers.Pairs() {
			if strcomp.EqualFold(key, "Content-Length") {
				continue
			}

			buff.B = header(buff.B, key, value)
		}
	}

	buff.B = crlf(buff.B)
	buff.B = append(buff.B, body...)

	return buff.String()
}

func header(b []byte, key, value string) []byte {
	b = append(b, key...)
	b = append(b, ':', ' ')
	b = append(b, value...)

	return crlf(b)
}

func contentLength(b []byte, n int) []byte {
	b = append(b, "Content-Length: "...)
	b = strconv.AppendInt(b, int64(n), 10)

	return crlf(b)
}

func crlf(b []byte) []byte {
	return append(b, '\r', '\n')
}
