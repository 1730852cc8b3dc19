package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// CallbackListener serves a [CallbackHandler] on the registered redirect
// address for the duration of one authorization flow.
type CallbackListener struct {
	server  *http.Server
	errChan chan error
}

// NewCallbackListener creates a listener that routes the redirect URI's
// path to the given handler. redirectURI decides the callback path;
// everything else gets a 404.
func NewCallbackListener(addr, redirectURI string, handler *CallbackHandler) *CallbackListener {
	path := "/callback"
	if parsed, err := url.Parse(redirectURI); err == nil && parsed.Path != "" {
		path = parsed.Path
	}

	mux := http.NewServeMux()
	mux.Handle(path, handler)

	return &CallbackListener{
		server:  &http.Server{Addr: addr, Handler: mux},
		errChan: make(chan error, 1),
	}
}

// Start binds the address and begins serving in the background.
//
// A bind failure is returned immediately, annotated with its likely cause,
// and is not retried: the one operation fails, not the session.
func (l *CallbackListener) Start() error {
	listener, err := net.Listen("tcp", l.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w (%s)", l.server.Addr, err, bindHint(err))
	}

	go func() {
		if err := l.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.errChan <- err
		}
	}()

	return nil
}

// Err returns the channel that receives a serve failure, if one occurs.
func (l *CallbackListener) Err() <-chan error {
	return l.errChan
}

// Shutdown stops the listener and releases the port.
func (l *CallbackListener) Shutdown(ctx context.Context) error {
	return l.server.Shutdown(ctx)
}

// bindHint names the likely cause of a listen failure for the user.
func bindHint(err error) string {
	switch {
	case errors.Is(err, syscall.EADDRINUSE):
		return "another process is using the port; close it or change the redirect URI port"
	case errors.Is(err, syscall.EACCES), errors.Is(err, os.ErrPermission):
		return "insufficient permission to bind; use a port above 1024"
	case strings.Contains(err.Error(), "address already in use"):
		return "another process is using the port; close it or change the redirect URI port"
	default:
		return "check the redirect URI host and port"
	}
}
