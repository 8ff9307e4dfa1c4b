/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"

	"github.com/sabouaram/embercore/atomic"
	liberr "github.com/sabouaram/embercore/errors"
	"github.com/sabouaram/embercore/logger"
)

const timeoutShutdown = 10 * time.Second

// Server is a single HTTP/2-over-HTTP/1.1 listener, following the teacher's
// Listen/Shutdown lifecycle shape but trimmed to one server, no TLS, and no
// dynamic merge/restart semantics.
type Server struct {
	cfg Config
	log *logger.Logger

	running atomic.Value[bool]
	srv     *http.Server
	cnl     context.CancelFunc
}

// New builds a Server bound to cfg without starting it; call Listen to
// actually bind the socket.
func New(cfg Config, log *logger.Logger) *Server {
	return &Server{cfg: cfg, log: log, running: atomic.NewValue[bool]()}
}

// GetBindable returns the configured listen address.
func (s *Server) GetBindable() string {
	return s.cfg.Listen
}

// IsRunning reports whether the listener is currently serving.
func (s *Server) IsRunning() bool {
	return s.running.Load()
}

// PortInUse probes whether something is already listening on the configured
// address, the way the teacher's server.go guards against double-bind
// during a restart.
func (s *Server) PortInUse() liberr.Error {
	dia := net.Dialer{}
	ctx, cnl := context.WithTimeout(context.Background(), 2*time.Second)
	defer cnl()

	con, err := dia.DialContext(ctx, "tcp", s.cfg.Listen)
	if err != nil {
		return liberr.None
	}
	_ = con.Close()
	return errPortInUse(s.cfg.Listen)
}

// Listen starts serving handler in a background goroutine. It returns once
// the listener's configuration has been validated; ListenAndServe itself
// runs asynchronously, matching the teacher's fire-and-forget Listen.
func (s *Server) Listen(ctx context.Context, handler http.Handler) liberr.Error {
	if s.cfg.Listen == "" {
		return liberr.None
	}

	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		MaxHeaderBytes:    s.cfg.MaxHeaderBytes,
	}

	h2cfg := &http2.Server{
		MaxHandlers:          s.cfg.MaxHandlers,
		MaxConcurrentStreams: s.cfg.MaxConcurrentStreams,
		IdleTimeout:          s.cfg.IdleTimeout,
	}
	if e := http2.ConfigureServer(srv, h2cfg); e != nil {
		return errHTTP2Configure(e)
	}

	if s.IsRunning() {
		s.Shutdown()
	}
	for i := 0; i < 5; i++ {
		if e := s.PortInUse(); e.IsError() {
			s.Shutdown()
			continue
		}
		break
	}

	runCtx, cnl := context.WithCancel(ctx)
	s.srv = srv
	s.cnl = cnl

	go func() {
		defer func() {
			cnl()
			s.running.Store(false)
		}()

		srv.BaseContext = func(net.Listener) context.Context { return runCtx }

		s.running.Store(true)
		s.log.Trace("metrics listener starting", logger.Fields{"addr": s.cfg.Listen})

		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("metrics listener stopped", err, logger.Fields{"addr": s.cfg.Listen})
		}
	}()

	return liberr.None
}

// Shutdown gracefully stops the listener, waiting up to timeoutShutdown for
// in-flight scrapes to finish.
func (s *Server) Shutdown() {
	if s.srv == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeoutShutdown)
	defer cancel()

	if s.cnl != nil {
		s.cnl()
	}

	if err := s.srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("metrics listener shutdown error", err, logger.Fields{"addr": s.cfg.Listen})
	}

	s.running.Store(false)
}
