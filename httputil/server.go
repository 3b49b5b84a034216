package httputil

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kjk/wordtag/log"
)

// NewServer returns http.Server with sane timeouts
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// RunServer serves on l until ctx is cancelled, then shuts down,
// giving in-flight requests up to 5 seconds to finish
func RunServer(ctx context.Context, srv *http.Server, l net.Listener) error {
	chServerClosed := make(chan error, 1)
	go func() {
		err := srv.Serve(l)
		// mute error caused by Shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		chServerClosed <- err
	}()

	select {
	case err := <-chServerClosed:
		return err
	case <-ctx.Done():
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Logf("srv.Shutdown() failed with '%s'\n", err)
	}
	select {
	case err := <-chServerClosed:
		return err
	case <-ctxShutdown.Done():
		return nil
	}
}

// ListenAndServe runs srv until SIGINT or SIGTERM
func ListenAndServe(srv *http.Server) error {
	l, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	log.Logf("Listening on http://%s\n", l.Addr())
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt /* SIGINT */, syscall.SIGTERM)
	defer cancel()
	return RunServer(ctx, srv, l)
}
