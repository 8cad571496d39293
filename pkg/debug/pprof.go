// Package debug provides instrumentation for cuprof itself: syscall traces,
// raw profiler dumps, replay timing and a pprof endpoint.
package debug

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/sirupsen/logrus"
)

// PprofServer exposes the Go runtime profiles of a running cuprof process,
// useful when replaying large scripts under watch or bench.
type PprofServer struct {
	ln     net.Listener
	server *http.Server
}

// StartPprofServer serves /debug/pprof on addr (":6060" if empty).
func StartPprofServer(addr string, logger *logrus.Logger) (*PprofServer, error) {
	if addr == "" {
		addr = ":6060"
	}
	if logger == nil {
		logger = logrus.New()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("cannot start pprof server: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	p := &PprofServer{
		ln:     ln,
		server: &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second},
	}

	log := logger.WithField("addr", p.Addr())
	go func() {
		log.Info("pprof server listening")
		if err := p.server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Warn("pprof server stopped")
		}
	}()
	return p, nil
}

// Addr is the bound listen address.
func (p *PprofServer) Addr() string {
	return p.ln.Addr().String()
}

// Stop shuts the server down, waiting up to five seconds for requests.
func (p *PprofServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.server.Shutdown(ctx)
}
