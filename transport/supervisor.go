package transport

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/indigo-web/reqstream/config"
)

// Supervisor runs multiple transports at once. As soon as any of them fails, all the others
// are stopped, too.
type Supervisor struct {
	stopped *atomic.Bool
	ts      []boundTransport
	stopch  chan struct{}
	// done is closed as soon as the supervisor can't be run anymore.
	done     chan struct{}
	doneOnce sync.Once
}

func NewSupervisor() *Supervisor {
	return &Supervisor{
		stopped: new(atomic.Bool),
		stopch:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Add binds the transport. If binding fails, all the previously added transports are closed
// and the supervisor is finished.
func (s *Supervisor) Add(addr string, transport Transport, cb func(net.Conn)) error {
	if err := transport.Bind(addr); err != nil {
		s.Close()
		return err
	}

	s.ts = append(s.ts, boundTransport{
		cb: cb,
		t:  transport,
	})

	return nil
}

// Run blocks until either Stop is called or any of the transports fails. In the latter case,
// its error is returned.
func (s *Supervisor) Run(cfg config.NET) error {
	defer s.finish()

	if len(s.ts) == 0 {
		return nil
	}

	errch := make(chan error)

	for _, t := range s.ts {
		go func(t boundTransport) {
			errch <- t.t.Listen(cfg, t.cb)
		}(t)
	}

	select {
	case err := <-errch:
		s.stop()
		drain(errch, len(s.ts)-1)

		return err
	case <-s.stopch:
		s.stop()
		drain(errch, len(s.ts))
		s.stopch <- struct{}{}

		return nil
	}
}

// Stop gracefully stops all the transports, waiting for the connections to be closed. Returns
// immediately if the supervisor has already finished.
func (s *Supervisor) Stop() {
	select {
	case s.stopch <- struct{}{}:
		<-s.stopch
	case <-s.done:
	}
}

func (s *Supervisor) stop() {
	if !s.stopped.CompareAndSwap(false, true) {
		return
	}

	for _, t := range s.ts {
		t.t.Stop()
	}

	for _, t := range s.ts {
		t.t.Wait()
		t.t.Close()
	}
}

// Close closes all the added transports without running them. The supervisor is finished
// afterward, so Stop won't block on it.
func (s *Supervisor) Close() {
	for _, t := range s.ts {
		t.t.Close()
	}

	s.finish()
}

func (s *Supervisor) finish() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

type boundTransport struct {
	cb func(conn net.Conn)
	t  Transport
}

func drain(ch <-chan error, n int) {
	for range n {
		<-ch
	}
}
