package server

import (
	"errors"
	"net"

	"github.com/indigo-web/reqstream/config"
	"github.com/indigo-web/reqstream/http"
	"github.com/indigo-web/reqstream/http/parser/http1"
	"github.com/indigo-web/reqstream/http/render"
	"github.com/indigo-web/reqstream/http/status"
	"github.com/indigo-web/reqstream/kv"
	"github.com/indigo-web/reqstream/transport"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
	"go.uber.org/zap"
)

// Reply is what a handler responds with. Zero Code is treated as status.OK, and
// status.CloseConnection closes the connection without writing anything.
type Reply struct {
	Code    status.Code
	Headers *kv.Storage
	Body    []byte
}

type Handler func(request *http.Request) Reply

// Server drives a parser per connection: it reads the data, feeds it into the parser and
// responds to every completed request. Connections are kept alive unless the client asks
// otherwise or the request is malformed.
type Server struct {
	cfg     *config.Config
	handler Handler
	logger  *zap.Logger
}

func New(cfg *config.Config, handler Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		cfg:     cfg,
		handler: handler,
		logger:  logger.Named("server"),
	}
}

// ServeConn wraps the connection into a client and serves it.
func (s *Server) ServeConn(conn net.Conn) {
	s.Serve(transport.NewClient(conn, s.cfg.NET.ReadTimeout, make([]byte, s.cfg.NET.ReadBufferSize)))
}

// Serve runs the session loop until the connection is closed or broken.
func (s *Server) Serve(client transport.Client) {
	request := http.NewRequest(kv.NewPrealloc(s.cfg.Headers.Prealloc))
	parser := http1.NewParser(s.cfg, request)
	logger := s.logger.With(zap.String("remote", remoteString(client.Remote())))
	logger.Debug("connection opened")

	for s.HandleRequest(client, parser, logger) {
	}

	_ = client.Close()
	logger.Debug("connection closed")
}

// HandleRequest processes a single read from the client. Returns false if the connection must
// be closed.
func (s *Server) HandleRequest(client transport.Client, parser *http1.Parser, logger *zap.Logger) (ok bool) {
	data, err := client.Read()
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			logger.Debug("read timeout")
			s.respondError(client, status.ErrRequestTimeout, logger)
		}

		return false
	}

	if err = parser.Feed(data); err != nil {
		logger.Info("bad request", zap.Error(err))
		s.respondError(client, err, logger)
		return false
	}

	if !parser.IsComplete() {
		return true
	}

	request := parser.Result()
	request.SetRemote(client.Remote())
	logger.Debug("request",
		zap.String("method", request.Method),
		zap.String("path", request.Path),
		zap.Int("body", len(request.Body)),
	)

	keepAlive := !strcomp.EqualFold(request.Headers.Value("Connection"), "close")
	reply := s.handler(request)

	switch reply.Code {
	case 0:
		reply.Code = status.OK
	case status.CloseConnection:
		return false
	}

	if err = s.write(client, reply); err != nil {
		logger.Warn("write failed", zap.Error(err))
		return false
	}

	// the reply might refer to the request's memory, so it's reset only after being written
	parser.Reset()

	return keepAlive
}

func (s *Server) respondError(client transport.Client, err error, logger *zap.Logger) {
	code := status.CodeOf(err)
	if code == status.CloseConnection {
		return
	}

	reply := Reply{
		Code:    code,
		Headers: kv.New().Add("Connection", "close"),
		Body:    []byte(err.Error()),
	}

	if err = s.write(client, reply); err != nil {
		logger.Warn("write failed", zap.Error(err))
	}
}

func (s *Server) write(client transport.Client, reply Reply) error {
	response := render.Response(status.Line(reply.Code), reply.Body, reply.Headers)
	_, err := client.Write(uf.S2B(response))
	return err
}

func remoteString(addr net.Addr) string {
	if addr == nil {
		return "unknown"
	}

	return addr.String()
}
