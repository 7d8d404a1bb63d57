//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

// Command echo accepts connections on port 20000, reads up to 80 bytes
// from each, writes them back upper-cased and closes the connection.
package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Zereker/npl"
)

const (
	port    = 20000
	bufSize = 80
)

func serve(ctx context.Context, ln *npl.Socket[*npl.Inet4Address]) error {
	for {
		conn, peer, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		slog.Info("connection request", "host", peer.Host(), "port", peer.Port())

		if err := handle(conn); err != nil {
			slog.Error("connection error", "peer", peer.String(), "error", err)
		}
	}
}

func handle(conn *npl.Socket[*npl.Inet4Address]) error {
	defer conn.Close()

	buf := make([]byte, bufSize)
	n, err := conn.Recv(buf, 0)
	if err != nil {
		return err
	}
	_, err = conn.SendFull(bytes.ToUpper(buf[:n]), n)
	return err
}

func main() {
	ln, err := npl.OpenInet4(npl.Stream)
	if err != nil {
		slog.Error("failed to open socket", "error", err)
		os.Exit(1)
	}
	defer ln.Close()

	if err := ln.EnableReuseAddr(); err != nil {
		slog.Error("failed to set socket option", "error", err)
		os.Exit(1)
	}
	if err := ln.Bind(npl.NewInet4Wildcard(port)); err != nil {
		slog.Error("failed to bind", "error", err)
		os.Exit(1)
	}
	if err := ln.Listen(npl.DefaultBacklog); err != nil {
		slog.Error("failed to listen", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return serve(ctx, ln)
	})
	group.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down server...")
		// Wakes the blocked Accept on linux.
		_ = ln.Shutdown(npl.ShutReadWrite)
		return nil
	})

	slog.Info("server start", "port", port)
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server error", "error", err)
	}
}
