package dummy

import (
	"io"
	"net"

	"github.com/indigo-web/reqstream/transport"
)

var _ transport.Client = new(CircularClient)

// CircularClient is a client that on every read-operation returns the next chunk of the data
// it was initialised with, starting over when all of them are read. Everything written is
// recorded. This is used mainly for testing and benchmarking
type CircularClient struct {
	data            [][]byte
	pointer         int
	closed, oneTime bool
	remote          net.Addr
	Written         []byte
}

func NewCircularClient(data ...[]byte) *CircularClient {
	return &CircularClient{
		data: data,
	}
}

func (c *CircularClient) Read() (data []byte, err error) {
	if c.closed {
		return nil, io.EOF
	}

	if c.pointer >= len(c.data) {
		if c.oneTime || len(c.data) == 0 {
			c.closed = true
			return nil, io.EOF
		}

		c.pointer = 0
	}

	piece := c.data[c.pointer]
	c.pointer++

	return piece, nil
}

func (c *CircularClient) Write(p []byte) (int, error) {
	c.Written = append(c.Written, p...)
	return len(p), nil
}

func (c *CircularClient) Remote() net.Addr {
	return c.remote
}

func (c *CircularClient) Close() error {
	c.closed = true
	return nil
}

// Closed reports whether the client was closed, either explicitly or by running out of data.
func (c *CircularClient) Closed() bool {
	return c.closed
}

// OneTime makes the client return io.EOF instead of starting over.
func (c *CircularClient) OneTime() *CircularClient {
	c.oneTime = true
	return c
}

// WithRemote sets the address returned by Remote.
func (c *CircularClient) WithRemote(addr net.Addr) *CircularClient {
	c.remote = addr
	return c
}

func NewNopClient() *CircularClient {
	return NewCircularClient()
}
