package config

import (
	"time"
)

type (
	Buffer struct {
		// Initial is the size of the buffer allocated for every connection. The buffer is
		// retained among requests of the same connection.
		Initial int
		// Maximal limits the number of bytes the buffer may hold at once. Only the unconsumed
		// data counts: the header block is consumed once parsed, so the headers and the body
		// fed in the same chunk are limited together, while a body fed afterward is limited
		// alone. Content-Length exceeding it is rejected right away.
		Maximal int
	}

	Headers struct {
		// Prealloc is the initial capacity of the request headers storage.
		Prealloc int
	}

	Body struct {
		// ImplicitZeroLength makes requests without Content-Length be treated as bodiless.
		// Otherwise, such requests are rejected with status.ErrUnknownBodyLength, even those
		// whose methods conventionally don't carry a body, e.g. GET.
		ImplicitZeroLength bool `test:"nullable"`
	}

	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// socket
		ReadBufferSize int
		// ReadTimeout controls the maximal lifetime of IDLE connections. If no data was
		// received in this period of time, it'll be closed.
		ReadTimeout time.Duration
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop. Defaults to 5 seconds.
		AcceptLoopInterruptPeriod time.Duration
	}
)

// Config holds settings used across the parser and the connection layer, mainly
// restrictions, limitations and pre-allocations.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	Buffer  Buffer
	Headers Headers
	Body    Body
	NET     NET
}

// Default returns default config.
func Default() *Config {
	return &Config{
		Buffer: Buffer{
			Initial: 1024,
			Maximal: 64 * 1024 * 1024,
		},
		Headers: Headers{
			Prealloc: 10,
		},
		Body: Body{
			ImplicitZeroLength: false,
		},
		NET: NET{
			ReadBufferSize:            4 * 1024,
			ReadTimeout:               90 * time.Second,
			AcceptLoopInterruptPeriod: 5 * time.Second,
		},
	}
}
