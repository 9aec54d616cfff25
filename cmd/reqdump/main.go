// Command reqdump decodes HTTP/1.1 requests and dumps them as JSON. By default, it serves
// them over the network, replying to every request with its own dump. With -stdin, a single
// request is read from the standard input instead.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/indigo-web/reqstream"
	"github.com/indigo-web/reqstream/config"
	"github.com/indigo-web/reqstream/http"
	"github.com/indigo-web/reqstream/http/parser/http1"
	"github.com/indigo-web/reqstream/http/status"
	"github.com/indigo-web/reqstream/internal/jsondump"
	"github.com/indigo-web/reqstream/kv"
	"go.uber.org/zap"
)

var (
	addr         = flag.String("addr", "localhost:8080", "plain TCP address to listen at")
	httpsAddr    = flag.String("https-addr", "localhost:8443", "TLS address, used with -cert/-key or -domain")
	cert         = flag.String("cert", "", "TLS certificate file")
	key          = flag.String("key", "", "TLS private key file")
	domain       = flag.String("domain", "", "domain to obtain a certificate automatically for")
	implicitZero = flag.Bool("implicit-zero", false, "treat requests without Content-Length as bodyless")
	dev          = flag.Bool("dev", false, "human-readable debug logging")
	stdin        = flag.Bool("stdin", false, "decode a single request from the standard input")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	cfg.Body.ImplicitZeroLength = *implicitZero

	if *stdin {
		if err := dumpStdin(cfg, os.Stdin, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "reqdump:", err)
			os.Exit(1)
		}

		return
	}

	logger, err := newLogger(*dev)
	if err != nil {
		fmt.Fprintln(os.Stderr, "reqdump: logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err = serve(cfg, logger); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}

func serve(cfg *config.Config, logger *zap.Logger) error {
	app := reqstream.New(*addr).
		Tune(cfg).
		Logger(logger)

	switch {
	case len(*cert) > 0 || len(*key) > 0:
		app.HTTPS(*httpsAddr, *cert, *key)
	case len(*domain) > 0:
		app.AutoHTTPS(*httpsAddr, *domain)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	started := make(chan struct{})
	app.NotifyOnStart(func() {
		close(started)
	})

	go func() {
		select {
		case <-started:
		case <-ctx.Done():
			return
		}

		<-ctx.Done()
		logger.Info("shutting down")
		app.Stop()
	}()

	return app.Serve(handle(logger))
}

func handle(logger *zap.Logger) reqstream.Handler {
	return func(request *http.Request) reqstream.Reply {
		var buff bytes.Buffer
		if err := jsondump.Dump(&buff, request); err != nil {
			logger.Error("dump", zap.Error(err))
			return reqstream.Reply{Code: status.InternalServerError}
		}

		return reqstream.Reply{
			Headers: kv.New().Add("Content-Type", "application/json"),
			Body:    buff.Bytes(),
		}
	}
}

// dumpStdin feeds the input into the parser chunk by chunk, exactly as a network connection
// would, and prints the request as soon as it's complete.
func dumpStdin(cfg *config.Config, r io.Reader, w io.Writer) error {
	request := http.NewRequest(kv.NewPrealloc(cfg.Headers.Prealloc))
	parser := http1.NewParser(cfg, request)
	chunk := make([]byte, cfg.NET.ReadBufferSize)

	for !parser.IsComplete() {
		n, err := r.Read(chunk)
		if ferr := parser.Feed(chunk[:n]); ferr != nil {
			return ferr
		}

		switch {
		case errors.Is(err, io.EOF):
			if !parser.IsComplete() {
				return io.ErrUnexpectedEOF
			}
		case err != nil:
			return err
		}
	}

	if err := jsondump.Dump(w, parser.Result()); err != nil {
		return err
	}

	_, err := fmt.Fprintln(w)
	return err
}
