package reqstream

import (
	"bufio"
	"io"
	"net"
	stdhttp "net/http"
	"strings"
	"testing"
	"time"

	"github.com/indigo-web/reqstream/config"
	"github.com/indigo-web/reqstream/http"
	"github.com/indigo-web/reqstream/http/render"
	"github.com/indigo-web/reqstream/http/status"
	"github.com/indigo-web/reqstream/kv"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	addr    = "localhost:16100"
	appURL  = "http://" + addr
	timeout = 5 * time.Second
)

// the connections are closed after every exchange, so Stop doesn't wait for idle ones
var client = &stdhttp.Client{
	Transport: &stdhttp.Transport{DisableKeepAlives: true},
	Timeout:   timeout,
}

func echo(request *http.Request) Reply {
	if request.Path == "/teapot" {
		return Reply{Code: status.BadRequest, Body: []byte("no teapots")}
	}

	return Reply{
		Headers: kv.New().
			Add("X-Method", request.Method).
			Add("X-Path", request.Path),
		Body: append([]byte(request.Method+" "), request.Body...),
	}
}

func startApp(t *testing.T, cfg *config.Config, onStop func()) (app *App, served <-chan error) {
	started := make(chan struct{})
	errch := make(chan error, 1)

	app = New(addr).
		Tune(cfg).
		Logger(zaptest.NewLogger(t)).
		NotifyOnStart(func() {
			close(started)
		}).
		NotifyOnStop(onStop)

	go func() {
		errch <- app.Serve(echo)
	}()

	select {
	case <-started:
	case err := <-errch:
		require.FailNow(t, "app failed to start", err)
	case <-time.After(timeout):
		require.FailNow(t, "app start timed out")
	}

	return app, errch
}

func stopApp(t *testing.T, app *App, served <-chan error) {
	app.Stop()

	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(timeout):
		require.FailNow(t, "app stop timed out")
	}
}

func TestApp(t *testing.T) {
	cfg := config.Default()
	cfg.Body.ImplicitZeroLength = true
	stopped := make(chan struct{})
	app, served := startApp(t, cfg, func() {
		close(stopped)
	})

	t.Run("raw connection", func(t *testing.T) {
		conn, err := net.Dial("tcp", addr)
		require.NoError(t, err)
		defer conn.Close()

		request := render.Request("POST", addr, "/echo", []byte("Hello"), kv.New().Add("X-Test", "1"))
		// deliver the request byte by byte, so every read is a separate chunk
		for i := range len(request) {
			_, err = conn.Write([]byte{request[i]})
			require.NoError(t, err)
		}

		resp, err := stdhttp.ReadResponse(bufio.NewReader(conn), nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
		require.Equal(t, "POST", resp.Header.Get("X-Method"))
		require.Equal(t, "/echo", resp.Header.Get("X-Path"))
		require.Equal(t, "POST Hello", string(body))
	})

	t.Run("standard client", func(t *testing.T) {
		resp, err := client.Post(appURL+"/submit", "text/plain", strings.NewReader("payload"))
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, "POST payload", string(body))
		require.Equal(t, "/submit", resp.Header.Get("X-Path"))
	})

	t.Run("handler status", func(t *testing.T) {
		resp, err := client.Get(appURL + "/teapot")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, stdhttp.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "no teapots", string(body))
	})

	t.Run("malformed request", func(t *testing.T) {
		conn, err := net.Dial("tcp", addr)
		require.NoError(t, err)
		defer conn.Close()

		_, err = conn.Write([]byte("BROKEN\r\n\r\n"))
		require.NoError(t, err)

		resp, err := stdhttp.ReadResponse(bufio.NewReader(conn), nil)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		require.Equal(t, stdhttp.StatusBadRequest, resp.StatusCode)
		require.True(t, resp.Close)
	})

	stopApp(t, app, served)

	select {
	case <-stopped:
	default:
		require.FailNow(t, "stop hook wasn't called")
	}
}

// stopAtMost fails the test if Stop doesn't return on a failed App in time.
func stopAtMost(t *testing.T, app *App) {
	stopped := make(chan struct{})
	go func() {
		app.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		require.FailNow(t, "stop blocked after serve returned")
	}
}

func TestAppErrors(t *testing.T) {
	t.Run("missing certificate", func(t *testing.T) {
		app := New(addr).
			HTTPS("localhost:16443", "/nonexistent/cert.pem", "/nonexistent/key.pem")
		require.Error(t, app.Serve(echo))
		stopAtMost(t, app)
	})

	t.Run("address in use", func(t *testing.T) {
		l, err := net.Listen("tcp", "localhost:16101")
		require.NoError(t, err)
		defer l.Close()

		app := New("localhost:16101")
		require.Error(t, app.Serve(echo))
		stopAtMost(t, app)
	})

	t.Run("invalid address", func(t *testing.T) {
		app := New("256.0.0.1:99999")
		require.Error(t, app.Serve(echo))
		stopAtMost(t, app)
	})
}
