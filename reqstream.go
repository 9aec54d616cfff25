package reqstream

import (
	"crypto/tls"

	"github.com/indigo-web/reqstream/config"
	"github.com/indigo-web/reqstream/internal/server"
	"github.com/indigo-web/reqstream/transport"
	"go.uber.org/zap"
)

type (
	Handler = server.Handler
	Reply   = server.Reply
)

type hooks struct {
	OnStart, OnStop func()
}

type listener struct {
	addr      string
	transport transport.Transport
}

// App binds the streaming request parser to network listeners: every connection gets its
// own parser, and every decoded request is passed to the handler.
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	hooks      hooks
	listeners  []listener
	supervisor *transport.Supervisor
	err        error
}

// New returns a new App instance listening plain TCP at the given address.
func New(addr string) *App {
	return (&App{
		cfg:        config.Default(),
		logger:     zap.NewNop(),
		supervisor: transport.NewSupervisor(),
	}).Listen(addr, transport.NewTCP())
}

// Tune replaces default config.
func (a *App) Tune(cfg *config.Config) *App {
	a.cfg = cfg
	return a
}

// Logger sets the logger. By default, nothing is logged.
func (a *App) Logger(logger *zap.Logger) *App {
	a.logger = logger
	return a
}

// NotifyOnStart calls the callback at the moment, when all the listeners are bound. However,
// it isn't strongly guaranteed that they'll be able to accept new connections immediately
func (a *App) NotifyOnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback at the moment, when all the listeners are down and all the
// clients are disconnected
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Listen adds a new listener.
func (a *App) Listen(addr string, t transport.Transport) *App {
	a.listeners = append(a.listeners, listener{addr: addr, transport: t})
	return a
}

// HTTPS adds a TLS listener serving the certificate. Errors are reported by Serve.
func (a *App) HTTPS(addr, cert, key string) *App {
	certificate, err := tls.LoadX509KeyPair(cert, key)
	if err != nil {
		a.err = err
		return a
	}

	return a.Listen(addr, transport.NewHTTPS(certificate))
}

// AutoHTTPS adds a TLS listener obtaining certificates for the domains automatically.
// Errors are reported by Serve.
func (a *App) AutoHTTPS(addr string, domains ...string) *App {
	t, err := transport.NewAutoHTTPS(cacheDir(), domains...)
	if err != nil {
		a.err = err
		return a
	}

	return a.Listen(addr, t)
}

// Serve binds all the listeners and serves them until Stop is called or any of them fails.
func (a *App) Serve(handler Handler) error {
	if a.err != nil {
		a.supervisor.Close()
		return a.err
	}

	srv := server.New(a.cfg, handler, a.logger)

	for _, l := range a.listeners {
		if err := a.supervisor.Add(l.addr, l.transport, srv.ServeConn); err != nil {
			return err
		}

		a.logger.Info("listening", zap.String("addr", l.addr))
	}

	callIfNotNil(a.hooks.OnStart)
	err := a.supervisor.Run(a.cfg.NET)
	callIfNotNil(a.hooks.OnStop)

	return err
}

// Stop gracefully stops the App. All the listeners are closed immediately, while the
// connections are waited to be closed. Does nothing if Serve has already returned.
func (a *App) Stop() {
	a.supervisor.Stop()
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
