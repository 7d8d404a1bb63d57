//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package npl

import (
	"fmt"
	"runtime"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

func optionName(level, name int) string {
	if level == unix.SOL_SOCKET {
		switch name {
		case unix.SO_REUSEADDR:
			return "SO_REUSEADDR"
		case unix.SO_BROADCAST:
			return "SO_BROADCAST"
		case unix.SO_RCVTIMEO:
			return "SO_RCVTIMEO"
		case unix.SO_SNDTIMEO:
			return "SO_SNDTIMEO"
		case unix.SO_TYPE:
			return "SO_TYPE"
		case unix.SO_ERROR:
			return "SO_ERROR"
		}
	}
	return fmt.Sprintf("level=%d name=%d", level, name)
}

// SetOptionInt sets an integer socket option.
func (s *Socket[A]) SetOptionInt(level, name, value int) error {
	return s.setOptionInt(optionName(level, name), level, name, value)
}

func (s *Socket[A]) setOptionInt(option string, level, name, value int) error {
	if s.fd < 0 {
		return ErrClosed
	}
	defer runtime.KeepAlive(s)
	if err := unix.SetsockoptInt(s.fd, level, name, value); err != nil {
		return optionError("setsockopt", option, err)
	}
	return nil
}

// OptionInt returns the value of an integer socket option.
func (s *Socket[A]) OptionInt(level, name int) (int, error) {
	if s.fd < 0 {
		return 0, ErrClosed
	}
	defer runtime.KeepAlive(s)
	v, err := unix.GetsockoptInt(s.fd, level, name)
	if err != nil {
		return 0, optionError("getsockopt", optionName(level, name), err)
	}
	return v, nil
}

// OptionBytes returns the raw encoded value of a socket option, reading at
// most size bytes. The result is trimmed to the length the OS reports.
func (s *Socket[A]) OptionBytes(level, name, size int) ([]byte, error) {
	if size <= 0 {
		return nil, ErrInvalidLength
	}
	if s.fd < 0 {
		return nil, ErrClosed
	}
	defer runtime.KeepAlive(s)
	buf := make([]byte, size)
	n, err := getsockopt(s.fd, level, name, buf)
	if err != nil {
		return nil, optionError("getsockopt", optionName(level, name), err)
	}
	return buf[:n], nil
}

// OptionTimeval returns the value of a struct timeval socket option.
func (s *Socket[A]) OptionTimeval(level, name int) (time.Duration, error) {
	if s.fd < 0 {
		return 0, ErrClosed
	}
	defer runtime.KeepAlive(s)
	tv, err := unix.GetsockoptTimeval(s.fd, level, name)
	if err != nil {
		return 0, optionError("getsockopt", optionName(level, name), err)
	}
	return time.Duration(tv.Nano()), nil
}

func getsockopt(fd, level, name int, buf []byte) (int, error) {
	size := uint32(len(buf))
	_, _, errno := unix.Syscall6(unix.SYS_GETSOCKOPT, uintptr(fd), uintptr(level), uintptr(name),
		uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&size)), 0)
	if errno != 0 {
		return 0, errno
	}
	return int(size), nil
}

// SetOptionBytes sets a socket option from its raw encoded value.
func (s *Socket[A]) SetOptionBytes(level, name int, value []byte) error {
	if s.fd < 0 {
		return ErrClosed
	}
	defer runtime.KeepAlive(s)
	if err := unix.SetsockoptString(s.fd, level, name, string(value)); err != nil {
		return optionError("setsockopt", optionName(level, name), err)
	}
	return nil
}

// SetOptionTimeval sets a struct timeval socket option.
func (s *Socket[A]) SetOptionTimeval(level, name int, d time.Duration) error {
	if s.fd < 0 {
		return ErrClosed
	}
	defer runtime.KeepAlive(s)
	tv := unix.NsecToTimeval(d.Nanoseconds())
	if err := unix.SetsockoptTimeval(s.fd, level, name, &tv); err != nil {
		return optionError("setsockopt", optionName(level, name), err)
	}
	return nil
}

// EnableReuseAddr sets SO_REUSEADDR.
func (s *Socket[A]) EnableReuseAddr() error {
	return s.setOptionInt("SO_REUSEADDR", unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
}

// EnableBroadcast sets SO_BROADCAST.
func (s *Socket[A]) EnableBroadcast() error {
	return s.setOptionInt("SO_BROADCAST", unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
}

// SetReadTimeout bounds how long a receive blocks. A receive that times
// out fails with a *TransferError wrapping unix.EAGAIN. Zero disables it.
func (s *Socket[A]) SetReadTimeout(d time.Duration) error {
	return s.SetOptionTimeval(unix.SOL_SOCKET, unix.SO_RCVTIMEO, d)
}

// SetWriteTimeout bounds how long a send blocks. Zero disables it.
func (s *Socket[A]) SetWriteTimeout(d time.Duration) error {
	return s.SetOptionTimeval(unix.SOL_SOCKET, unix.SO_SNDTIMEO, d)
}
