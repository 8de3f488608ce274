// Package lineproto implements the newline-delimited text protocol used for
// interactive logging and full-log export and import between peers.
package lineproto

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/wlog/internal/common"
	"github.com/dmitrijs2005/wlog/internal/logging"
)

type Server struct {
	address    string
	svc        EntryService
	logger     logging.Logger
	queueLimit int
}

func NewServer(a string, l logging.Logger, svc EntryService, queueLimit int) *Server {
	return &Server{
		address:    a,
		logger:     l.With("module", "line_server"),
		svc:        svc,
		queueLimit: queueLimit,
	}
}

// Run binds the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrBindFailure, s.address, err)
	}

	s.logger.Info(ctx, "Starting line protocol server", "address", listen.Addr().String())

	return s.Serve(ctx, listen)
}

// Serve accepts connections on ln until ctx is cancelled, then closes ln and
// waits for open connections to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		s.logger.Info(ctx, "Stopping line protocol server...")
		_ = ln.Close()
	})
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}

			// transient accept failure, e.g. out of file descriptors
			if delay == 0 {
				delay = 5 * time.Millisecond
			} else if delay *= 2; delay > time.Second {
				delay = time.Second
			}
			s.logger.Warn(ctx, "accept failed", "error", err, "retry_in", delay)
			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return nil
			}
		}
		delay = 0

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.serveConn(ctx, conn)
		}()
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	logger := s.logger.With("remote", conn.RemoteAddr().String())
	logger.Debug(ctx, "connection accepted")

	h := NewHandler(conn, s.svc, logger, s.queueLimit)
	err := h.Serve(ctx)

	logger.Debug(ctx, "connection closed", "reason", err)
}
