//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package npl

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// PacketSupported reports whether link-layer packet sockets are available.
const PacketSupported = false

const abstractNamespace = false

func familyName(Family) string { return "" }

func initRawUnix(raw *unix.RawSockaddrUnix) {
	*raw = unix.RawSockaddrUnix{Len: unix.SizeofSockaddrUnix, Family: unix.AF_UNIX}
}

func initRawInet4(raw *unix.RawSockaddrInet4) {
	*raw = unix.RawSockaddrInet4{Len: unix.SizeofSockaddrInet4, Family: unix.AF_INET}
}

// No SOCK_CLOEXEC here; hold ForkLock so no child inherits the
// descriptor before the flag is set.
func sysSocket(family, sotype, proto int, cloexec bool) (int, error) {
	syscall.ForkLock.RLock()
	defer syscall.ForkLock.RUnlock()
	fd, err := unix.Socket(family, sotype, proto)
	if err == nil && cloexec {
		unix.CloseOnExec(fd)
	}
	return fd, err
}

func sysAccept(fd int, cloexec bool) (int, unix.Sockaddr, error) {
	syscall.ForkLock.RLock()
	defer syscall.ForkLock.RUnlock()
	nfd, sa, err := unix.Accept(fd)
	if err == nil && cloexec {
		unix.CloseOnExec(nfd)
	}
	return nfd, sa, err
}
