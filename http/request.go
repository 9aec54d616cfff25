package http

import (
	"net"
	"net/netip"

	"github.com/indigo-web/reqstream/kv"
)

type (
	Headers = *kv.Storage
	Header  = kv.Pair
)

// Request represents a decoded HTTP request. All the string fields are views into the memory
// owned by the parser, therefore they're valid only until the parser is reset. Consider
// copying them, if they must be stored somewhere.
type Request struct {
	// Method is the verbatim method token of the request line.
	Method string
	// Path is the verbatim request target. It is neither decoded nor validated.
	Path string
	// Version is the part of the protocol token after the slash, e.g. "1.1".
	Version string
	// Headers holds non-normalized header pairs, even though lookup is case-insensitive. Duplicate
	// keys are kept as separate entries.
	Headers Headers
	// Body is exactly Content-Length bytes following the headers section.
	Body []byte
	// RemoteAddr and RemotePort hold the peer address. They're never derived from the request
	// itself, instead they are set by the connection layer.
	RemoteAddr string
	RemotePort uint16
}

func NewRequest(headers Headers) *Request {
	return &Request{
		Headers: headers,
	}
}

// SetRemote fills the peer metadata from the connection's remote address. Addresses which
// aren't in the host:port form are stored as is, with zero port.
func (r *Request) SetRemote(addr net.Addr) {
	if addr == nil {
		r.RemoteAddr, r.RemotePort = "", 0
		return
	}

	switch a := addr.(type) {
	case *net.TCPAddr:
		r.SetRemoteAddrPort(a.IP.String(), uint16(a.Port))
	default:
		addrPort, err := netip.ParseAddrPort(addr.String())
		if err != nil {
			r.SetRemoteAddrPort(addr.String(), 0)
			return
		}

		r.SetRemoteAddrPort(addrPort.Addr().String(), addrPort.Port())
	}
}

func (r *Request) SetRemoteAddrPort(addr string, port uint16) {
	r.RemoteAddr = addr
	r.RemotePort = port
}

// Reset clears all the fields, including the peer metadata. The headers storage is cleared,
// too, but its memory is retained.
func (r *Request) Reset() {
	r.Method = ""
	r.Path = ""
	r.Version = ""
	r.Headers.Clear()
	r.Body = nil
	r.RemoteAddr = ""
	r.RemotePort = 0
}
