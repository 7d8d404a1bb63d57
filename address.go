//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package npl

import (
	"encoding/binary"
	"strconv"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Family is an address family tag.
type Family int

// Supported address families. FamilyPacket is only defined on linux.
const (
	FamilyUnix  Family = unix.AF_UNIX
	FamilyInet4 Family = unix.AF_INET
)

func (f Family) String() string {
	switch f {
	case FamilyUnix:
		return "unix"
	case FamilyInet4:
		return "inet4"
	}
	if s := familyName(f); s != "" {
		return s
	}
	return "family(" + strconv.Itoa(int(f)) + ")"
}

// Address is a network endpoint encoded in the binary layout the OS
// expects for one address family. Each family has its own concrete type;
// a Socket is bound to exactly one of them.
type Address interface {
	// Family returns the address family tag.
	Family() Family
	// Len returns the length of the encoding. It starts as the native
	// structure size and is lowered when the OS reports a shorter address.
	Len() int
	// SetLen records the length written back by the OS.
	SetLen(n int) error
	// Bytes returns a read/write view of the first Len bytes of the
	// native encoding.
	Bytes() []byte
	String() string

	sockaddr() (unix.Sockaddr, error)
	setSockaddr(sa unix.Sockaddr) error
}

// rawView returns size bytes starting at p. size must not exceed the
// size of the structure p points to.
func rawView[T any](p *T, size int) []byte {
	if size > int(unsafe.Sizeof(*p)) {
		panic("npl: raw view exceeds structure size")
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), size)
}

func checkLen(n, native int) error {
	if n < 0 || n > native {
		return ErrInvalidLength
	}
	return nil
}

// htons converts a short from host to network byte order.
func htons(i uint16) uint16 {
	var bigEndian [2]byte
	binary.BigEndian.PutUint16(bigEndian[:], i)
	return binary.NativeEndian.Uint16(bigEndian[:])
}

// ntohs converts a short from network to host byte order.
func ntohs(i uint16) uint16 {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], i)
	return binary.BigEndian.Uint16(b[:])
}
