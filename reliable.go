//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package npl

import (
	"io"

	"github.com/pkg/errors"
)

// RawConn is a source and sink of single send and receive calls, each of
// which may transfer fewer bytes than asked. *Socket satisfies it.
type RawConn interface {
	Send(p []byte, flags int) (int, error)
	Recv(p []byte, flags int) (int, error)
}

// SendFull sends exactly the first n bytes of p through c, repeating short
// sends and retrying interrupted ones. On failure it returns the number of
// bytes sent so far and a *TransferError carrying the same count.
func SendFull(c RawConn, p []byte, n int) (int, error) {
	if n < 0 || n > len(p) {
		return 0, ErrShortBuffer
	}

	sent := 0
	for sent < n {
		m, err := c.Send(p[sent:n], 0)
		if err != nil {
			if IsInterrupted(err) {
				continue
			}
			return sent, &TransferError{Op: "send", N: sent, Err: cause(err)}
		}
		if m == 0 {
			return sent, &TransferError{Op: "send", N: sent, Err: io.ErrShortWrite}
		}
		sent += m
	}
	return sent, nil
}

// RecvFull receives n bytes into p through c, repeating short receives and
// retrying interrupted ones. If the peer closes first, RecvFull returns the
// bytes collected and a nil error. On failure it returns the count so far
// and a *TransferError carrying the same count.
func RecvFull(c RawConn, p []byte, n int) (int, error) {
	if n < 0 || n > len(p) {
		return 0, ErrShortBuffer
	}

	got := 0
	for got < n {
		m, err := c.Recv(p[got:n], 0)
		if err != nil {
			if IsInterrupted(err) {
				continue
			}
			return got, &TransferError{Op: "recv", N: got, Err: cause(err)}
		}
		if m == 0 {
			break
		}
		got += m
	}
	return got, nil
}

// cause strips a *TransferError reported by a single raw call so the
// returned error wraps the OS error directly.
func cause(err error) error {
	var te *TransferError
	if errors.As(err, &te) {
		return te.Err
	}
	return err
}
