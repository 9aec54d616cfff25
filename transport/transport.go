package transport

import (
	"net"

	"github.com/indigo-web/reqstream/config"
)

// Transport is a listener of a single address. Every accepted connection is handed to the
// callback in its own goroutine and closed as soon as the callback returns.
type Transport interface {
	Bind(addr string) error
	Listen(cfg config.NET, cb func(conn net.Conn)) error
	Stop()
	Close()
	Wait()
}
