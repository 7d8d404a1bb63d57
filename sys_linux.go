package npl

import "golang.org/x/sys/unix"

// PacketSupported reports whether link-layer packet sockets are available.
const PacketSupported = true

// abstractNamespace reports whether unix socket names may live in the
// abstract namespace, marked by a leading zero byte in sun_path.
const abstractNamespace = true

func familyName(f Family) string {
	if f == FamilyPacket {
		return "packet"
	}
	return ""
}

func initRawUnix(raw *unix.RawSockaddrUnix) {
	*raw = unix.RawSockaddrUnix{Family: unix.AF_UNIX}
}

func initRawInet4(raw *unix.RawSockaddrInet4) {
	*raw = unix.RawSockaddrInet4{Family: unix.AF_INET}
}

func sysSocket(family, sotype, proto int, cloexec bool) (int, error) {
	if cloexec {
		sotype |= unix.SOCK_CLOEXEC
	}
	return unix.Socket(family, sotype, proto)
}

func sysAccept(fd int, cloexec bool) (int, unix.Sockaddr, error) {
	flags := 0
	if cloexec {
		flags = unix.SOCK_CLOEXEC
	}
	return unix.Accept4(fd, flags)
}
