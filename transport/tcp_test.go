package transport

import (
	"net"
	"testing"
	"time"

	"github.com/indigo-web/reqstream/config"
	"github.com/stretchr/testify/require"
)

func TestTCP(t *testing.T) {
	cfg := config.Default().NET
	cfg.AcceptLoopInterruptPeriod = 20 * time.Millisecond
	cfg.ReadTimeout = time.Second

	tcp := NewTCP()
	require.NoError(t, tcp.Bind("127.0.0.1:0"))

	received := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- tcp.Listen(cfg, func(conn net.Conn) {
			client := NewClient(conn, cfg.ReadTimeout, make([]byte, 64))
			data, err := client.Read()
			if err != nil {
				received <- err.Error()
				return
			}

			received <- string(data)
			_, _ = client.Write([]byte("pong"))
		})
	}()

	conn, err := net.Dial("tcp", tcp.Addr().String())
	require.NoError(t, err)
	_, err = conn.Write([]byte("ping"))
	require.NoError(t, err)

	select {
	case data := <-received:
		require.Equal(t, "ping", data)
	case <-time.After(time.Second):
		require.Fail(t, "no data received")
	}

	reply := make([]byte, 4)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	n, err := conn.Read(reply)
	require.NoError(t, err)
	require.Equal(t, "pong", string(reply[:n]))
	require.NoError(t, conn.Close())

	tcp.Stop()
	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.Fail(t, "listener did not stop on time")
	}

	tcp.Wait()
	tcp.Close()
}

func TestClientTimeout(t *testing.T) {
	server, peer := net.Pipe()
	defer peer.Close()

	client := NewClient(server, 10*time.Millisecond, make([]byte, 16))
	_, err := client.Read()
	require.Error(t, err)

	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	require.True(t, netErr.Timeout())
	require.NoError(t, client.Close())
}
