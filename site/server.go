// Package site serves a local directory of static pages over HTTP so they
// can be audited exactly like a deployed site: relative links resolve
// against real page URLs and are probed with real requests.
package site

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

// Server hosts a directory on a loopback port.
type Server struct {
	srv      *http.Server
	listener net.Listener
	done     chan error
}

// Serve starts serving dir on 127.0.0.1 with an ephemeral port.
func Serve(dir string, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat site directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("site %s is not a directory", dir)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	s := &Server{
		srv: &http.Server{
			Handler:           http.FileServer(http.Dir(dir)),
			ReadHeaderTimeout: 10 * time.Second,
		},
		listener: listener,
		done:     make(chan error, 1),
	}

	go func() {
		err := s.srv.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()

	log.Info("Serving site directory", zap.String("dir", dir), zap.String("url", s.URL()))
	return s, nil
}

// URL returns the root URL of the served directory.
func (s *Server) URL() string {
	return "http://" + s.listener.Addr().String() + "/"
}

// Close shuts the server down, waiting for in-flight requests until ctx ends.
func (s *Server) Close(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown site server: %w", err)
	}
	if err := <-s.done; err != nil {
		return fmt.Errorf("serve site: %w", err)
	}
	return nil
}
