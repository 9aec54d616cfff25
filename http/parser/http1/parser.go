package http1

import (
	"bytes"

	"github.com/indigo-web/reqstream/config"
	"github.com/indigo-web/reqstream/http"
	"github.com/indigo-web/reqstream/http/status"
	"github.com/indigo-web/reqstream/internal/buffer"
)

type phase uint8

const (
	eAwaitingHeaders phase = iota
	eAwaitingBody
	eComplete
)

// unknownLength is the content length of a request whose headers didn't set it (yet).
const unknownLength = -1

var terminator = []byte("\r\n\r\n")

// Parser is an incremental decoder of a single HTTP/1.1 request. It accumulates the fed data
// in its own buffer, so chunk boundaries may cut the request at any point. The parser owns
// the request it decodes into and must be reset before decoding the next one.
//
// Parser isn't safe for concurrent use.
type Parser struct {
	cfg           *config.Config
	buff          *buffer.Buffer
	request       *http.Request
	phase         phase
	contentLength int64
	// scanned is the number of unconsumed bytes that were already searched for the terminator.
	scanned int
	// headers holds a copy of the header block. All the request's strings are views into it,
	// so the buffer is free to move or overwrite its own memory.
	headers []byte
	body    []byte
	err     error
}

func NewParser(cfg *config.Config, request *http.Request) *Parser {
	return &Parser{
		cfg:           cfg,
		buff:          buffer.New(cfg.Buffer.Initial, cfg.Buffer.Maximal),
		request:       request,
		phase:         eAwaitingHeaders,
		contentLength: unknownLength,
	}
}

// Feed pushes the next chunk of data. Incomplete request isn't an error: the caller is
// expected to keep feeding until IsComplete returns true. Any returned error is fatal for the
// request, and all the consequent calls return the same error until the parser is reset.
func (p *Parser) Feed(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	if p.err != nil {
		return p.err
	}

	if p.phase == eComplete {
		// pipelining isn't supported, so the data is dropped instead of touching
		// the already decoded request
		return nil
	}

	if !p.buff.Append(data) {
		return p.fail(status.ErrTooLarge)
	}

	if p.phase == eAwaitingHeaders {
		done, err := p.parseHeaders()
		if err != nil {
			return p.fail(err)
		}

		if !done {
			return nil
		}
	}

	return p.parseBody()
}

func (p *Parser) parseHeaders() (done bool, err error) {
	data := p.buff.Unconsumed()
	// the terminator might be cut in half by the previous chunk, so step back a bit
	from := max(p.scanned-len(terminator)+1, 0)

	boundary := bytes.Index(data[from:], terminator)
	if boundary == -1 {
		p.scanned = len(data)
		return false, nil
	}

	end := from + boundary + len(terminator)
	p.headers = append(p.headers[:0], data[:end]...)

	contentLength, err := tokenize(p.headers, p.request)
	if err != nil {
		return true, err
	}

	if contentLength == unknownLength && p.cfg.Body.ImplicitZeroLength {
		contentLength = 0
	}

	if contentLength > int64(p.cfg.Buffer.Maximal) {
		return true, status.ErrTooLarge
	}

	p.buff.Consume(end)
	p.contentLength = contentLength
	p.phase = eAwaitingBody

	return true, nil
}

func (p *Parser) parseBody() error {
	if p.contentLength == unknownLength {
		return p.fail(status.ErrUnknownBodyLength)
	}

	if int64(p.buff.Len()) < p.contentLength {
		return nil
	}

	length := int(p.contentLength)
	p.body = append(p.body[:0], p.buff.Unconsumed()[:length]...)
	p.request.Body = p.body
	p.buff.Consume(length)
	p.phase = eComplete

	return nil
}

func (p *Parser) fail(err error) error {
	p.err = err
	return err
}

// IsComplete reports whether both headers and the body were decoded.
func (p *Parser) IsComplete() bool {
	return p.phase == eComplete
}

// Result returns the decoded request. It's complete only after IsComplete returns true and
// stays valid until Reset.
func (p *Parser) Result() *http.Request {
	return p.request
}

// Reset brings the parser to its initial state, clearing the request. All the allocated
// memory is retained, so the parser can be used for the next request of the same connection.
func (p *Parser) Reset() {
	p.buff.Clear()
	p.request.Reset()
	p.phase = eAwaitingHeaders
	p.contentLength = unknownLength
	p.scanned = 0
	p.headers = p.headers[:0]
	p.body = p.body[:0]
	p.err = nil
}
