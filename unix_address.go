//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package npl

import (
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// UnixAddress is a unix-domain endpoint: a filesystem path, an
// abstract-namespace name (linux) or the unnamed address.
type UnixAddress struct {
	raw unix.RawSockaddrUnix
	len int
}

var _ Address = (*UnixAddress)(nil)

var unixPathOffset = int(unsafe.Offsetof(unix.RawSockaddrUnix{}.Path))

// NewUnixAddress returns the empty unix-domain address.
func NewUnixAddress() *UnixAddress {
	a := &UnixAddress{len: unix.SizeofSockaddrUnix}
	initRawUnix(&a.raw)
	return a
}

// NewUnixPath returns the unix-domain address for a filesystem path.
// One byte of sun_path is kept for the terminating zero. A relative path
// starting with '@' is stored as "./@..." so it never names the abstract
// namespace.
func NewUnixPath(path string) (*UnixAddress, error) {
	if strings.IndexByte(path, 0) >= 0 {
		return nil, ErrInvalidPath
	}
	if strings.HasPrefix(path, "@") {
		path = "./" + path
	}
	a := NewUnixAddress()
	if len(path) > len(a.raw.Path)-1 {
		return nil, ErrPathTooLong
	}
	a.putPath(0, path)
	return a, nil
}

// NewAbstractUnixAddress returns a unix-domain address in the abstract
// namespace. The first byte of sun_path is reserved as the namespace marker.
// It returns unix.EAFNOSUPPORT where no abstract namespace exists.
func NewAbstractUnixAddress(name string) (*UnixAddress, error) {
	if !abstractNamespace {
		return nil, unix.EAFNOSUPPORT
	}
	a := NewUnixAddress()
	if len(name) > len(a.raw.Path)-1 {
		return nil, ErrPathTooLong
	}
	a.putPath(1, name)
	return a, nil
}

func (a *UnixAddress) putPath(offset int, s string) {
	for i := 0; i < len(s); i++ {
		a.raw.Path[offset+i] = int8(s[i])
	}
}

func (a *UnixAddress) pathFrom(offset int) string {
	b := make([]byte, 0, len(a.raw.Path))
	for _, c := range a.raw.Path[offset:] {
		if c == 0 {
			break
		}
		b = append(b, byte(c))
	}
	return string(b)
}

// Abstract reports whether the address names the abstract namespace.
func (a *UnixAddress) Abstract() bool {
	return abstractNamespace && a.raw.Path[0] == 0 && a.raw.Path[1] != 0
}

// Path returns the filesystem path, or the abstract name without its marker.
func (a *UnixAddress) Path() string {
	if a.Abstract() {
		return a.pathFrom(1)
	}
	return a.pathFrom(0)
}

func (a *UnixAddress) Family() Family { return FamilyUnix }

func (a *UnixAddress) Len() int { return a.len }

func (a *UnixAddress) SetLen(n int) error {
	if err := checkLen(n, unix.SizeofSockaddrUnix); err != nil {
		return err
	}
	a.len = n
	return nil
}

func (a *UnixAddress) Bytes() []byte { return rawView(&a.raw, a.len) }

func (a *UnixAddress) String() string {
	if a.Abstract() {
		return "@" + a.Path()
	}
	return a.Path()
}

func (a *UnixAddress) sockaddr() (unix.Sockaddr, error) {
	if a.Abstract() {
		return &unix.SockaddrUnix{Name: "@" + a.Path()}, nil
	}
	return &unix.SockaddrUnix{Name: a.Path()}, nil
}

func (a *UnixAddress) setSockaddr(sa unix.Sockaddr) error {
	su, ok := sa.(*unix.SockaddrUnix)
	if !ok {
		return ErrFamilyMismatch
	}
	initRawUnix(&a.raw)
	name := su.Name
	switch {
	case name == "", abstractNamespace && name == "@":
		a.len = unixPathOffset
	case abstractNamespace && name[0] == '@':
		name = name[1:]
		if len(name) > len(a.raw.Path)-1 {
			return ErrPathTooLong
		}
		a.putPath(1, name)
		a.len = unixPathOffset + 1 + len(name)
	default:
		if len(name) > len(a.raw.Path)-1 {
			return ErrPathTooLong
		}
		a.putPath(0, name)
		a.len = unixPathOffset + len(name) + 1
	}
	return nil
}
