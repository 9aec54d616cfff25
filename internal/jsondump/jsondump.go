// Package jsondump renders a decoded request as a JSON object.
package jsondump

import (
	"io"
	"unicode/utf8"

	"github.com/indigo-web/reqstream/http"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
)

type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Model mirrors the layout of the rendered object.
type Model struct {
	Method  string   `json:"method"`
	Path    string   `json:"path"`
	Version string   `json:"version"`
	Headers []Header `json:"headers"`
	Body    string   `json:"body"`
	// BodyEncoding is "base64" for bodies that aren't valid UTF-8 and empty otherwise.
	BodyEncoding string `json:"body_encoding,omitempty"`
	RemoteAddr   string `json:"remote_addr"`
	RemotePort   uint16 `json:"remote_port"`
}

// Dump writes the request into the writer. Headers are rendered as an array of pairs in order
// to keep both the order and the duplicates. Binary bodies are base64-encoded, which is
// denoted by the body_encoding field.
func Dump(w io.Writer, request *http.Request) error {
	stream := json.ConfigDefault.BorrowStream(w)
	defer json.ConfigDefault.ReturnStream(stream)

	stream.WriteObjectStart()
	field(stream, "method", request.Method)
	stream.WriteMore()
	field(stream, "path", request.Path)
	stream.WriteMore()
	field(stream, "version", request.Version)
	stream.WriteMore()

	stream.WriteObjectField("headers")
	stream.WriteArrayStart()
	first := true
	for key, value := range request.Headers.Pairs() {
		if !first {
			stream.WriteMore()
		}

		first = false
		stream.WriteObjectStart()
		field(stream, "key", key)
		stream.WriteMore()
		field(stream, "value", value)
		stream.WriteObjectEnd()
	}
	stream.WriteArrayEnd()
	stream.WriteMore()

	if utf8.Valid(request.Body) {
		field(stream, "body", uf.B2S(request.Body))
	} else {
		stream.WriteObjectField("body")
		stream.WriteVal(request.Body)
		stream.WriteMore()
		field(stream, "body_encoding", "base64")
	}
	stream.WriteMore()
	field(stream, "remote_addr", request.RemoteAddr)
	stream.WriteMore()
	stream.WriteObjectField("remote_port")
	stream.WriteUint16(request.RemotePort)
	stream.WriteObjectEnd()

	if stream.Error != nil {
		return stream.Error
	}

	return stream.Flush()
}

func field(stream *json.Stream, name, value string) {
	stream.WriteObjectField(name)
	stream.WriteString(value)
}
