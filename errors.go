//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package npl

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Errors returned without an OS call being made.
var (
	// ErrClosed is returned when operating on a socket that owns no descriptor.
	ErrClosed = errors.New("use of closed socket")
	// ErrShortBuffer is returned when a transfer length exceeds the buffer.
	ErrShortBuffer = errors.New("transfer length exceeds buffer")
	// ErrInvalidLength is returned when an address or option length is out of range.
	ErrInvalidLength = errors.New("invalid length")
	// ErrInvalidPath is returned for a unix-domain path holding a zero byte.
	ErrInvalidPath = errors.New("unix path contains zero byte")
	// ErrPathTooLong is returned when a unix socket path does not fit sun_path.
	ErrPathTooLong = errors.New("unix socket path too long")
	// ErrFamilyMismatch is returned when the OS hands back an address of another family.
	ErrFamilyMismatch = errors.New("address family mismatch")
)

// ResourceError reports a failing socket management call.
type ResourceError struct {
	Op     string // syscall name, e.g. "bind"
	Option string // socket option name for option calls, empty otherwise
	Err    error
}

func (e *ResourceError) Error() string {
	if e.Option != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Option, e.Err)
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *ResourceError) Unwrap() error { return e.Err }

// ResolutionError reports a failed textual address, host or service lookup.
type ResolutionError struct {
	Op      string
	Host    string
	Service string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s %q %q: %v", e.Op, e.Host, e.Service, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// InterfaceError reports an unknown network interface name or index.
type InterfaceError struct {
	Name  string
	Index int
	Err   error
}

func (e *InterfaceError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("interface %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("interface index %d: %v", e.Index, e.Err)
}

func (e *InterfaceError) Unwrap() error { return e.Err }

// TransferError reports a send or receive that failed for a reason other
// than interruption or an orderly peer close. N is the number of bytes
// transferred before the failure.
type TransferError struct {
	Op  string
	N   int
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s: %v (%d bytes transferred)", e.Op, e.Err, e.N)
}

func (e *TransferError) Unwrap() error { return e.Err }

// IsInterrupted reports whether err is an interrupted system call.
func IsInterrupted(err error) bool {
	return errors.Is(err, unix.EINTR)
}

func resourceError(op string, err error) error {
	return &ResourceError{Op: op, Err: err}
}

func optionError(op, option string, err error) error {
	return &ResourceError{Op: op, Option: option, Err: err}
}
