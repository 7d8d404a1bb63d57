//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

// Package npl provides low-level socket primitives: per-family address
// encodings in the exact layout the OS expects, a socket handle that owns
// one descriptor, exact-length transfers that absorb short and interrupted
// calls, and a 4-byte network-order length prefix for framing messages.
//
// Every operation is synchronous and blocks inside the OS call. A Socket
// must not be mutated (closed, moved, bound) concurrently with other
// operations on it; distinct sockets are independent.
package npl

import (
	"io"
	"runtime"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Type is a socket transport type.
type Type int

// Transport types.
const (
	Stream    Type = unix.SOCK_STREAM
	Datagram  Type = unix.SOCK_DGRAM
	SeqPacket Type = unix.SOCK_SEQPACKET
	Raw       Type = unix.SOCK_RAW
)

func (t Type) String() string {
	switch t {
	case Stream:
		return "stream"
	case Datagram:
		return "datagram"
	case SeqPacket:
		return "seqpacket"
	case Raw:
		return "raw"
	default:
		return "type(" + strconv.Itoa(int(t)) + ")"
	}
}

// DefaultBacklog is the listen backlog used when none is given.
const DefaultBacklog = 5

// noCopy may be embedded into structs which must not be copied after
// first use. See go vet's copylocks check.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Socket owns one OS socket descriptor of a single address family, selected
// by its address type A. A Socket that owns no descriptor performs no OS
// operation; Close on it is a no-op.
//
// Sockets must not be copied. Use Move to transfer ownership.
type Socket[A Address] struct {
	noCopy noCopy

	fd      int
	family  Family
	typ     Type
	proto   int
	opts    options
	newAddr func() A
}

// OpenUnix opens a unix-domain socket.
func OpenUnix(typ Type, opt ...Option) (*Socket[*UnixAddress], error) {
	opts := buildOptions(opt)
	return open(FamilyUnix, typ, opts.protocol, opts, NewUnixAddress)
}

// OpenInet4 opens an IPv4 socket.
func OpenInet4(typ Type, opt ...Option) (*Socket[*Inet4Address], error) {
	opts := buildOptions(opt)
	return open(FamilyInet4, typ, opts.protocol, opts, func() *Inet4Address {
		return NewInet4Wildcard(0)
	})
}

func open[A Address](family Family, typ Type, proto int, opts options, newAddr func() A) (*Socket[A], error) {
	fd, err := sysSocket(int(family), int(typ), proto, opts.cloexec)
	if err != nil {
		return nil, resourceError("socket", err)
	}
	s := newSocket(fd, family, typ, opts, newAddr)
	s.opts.logger.Debug("socket opened", "fd", fd, "family", family, "type", typ, "protocol", opts.protocol)
	return s, nil
}

func newSocket[A Address](fd int, family Family, typ Type, opts options, newAddr func() A) *Socket[A] {
	s := &Socket[A]{
		fd:      fd,
		family:  family,
		typ:     typ,
		proto:   opts.protocol,
		opts:    opts,
		newAddr: newAddr,
	}
	// Every method that passes fd to the OS keeps s alive until the call
	// returns, so the finalizer cannot close a descriptor in use.
	runtime.SetFinalizer(s, (*Socket[A]).Close)
	return s
}

// Fd returns the owned descriptor, or -1.
func (s *Socket[A]) Fd() int { return s.fd }

// Valid reports whether the socket owns a descriptor.
func (s *Socket[A]) Valid() bool { return s.fd >= 0 }

func (s *Socket[A]) Family() Family { return s.family }

func (s *Socket[A]) Type() Type { return s.typ }

// Protocol returns the protocol the socket was opened with.
func (s *Socket[A]) Protocol() int { return s.proto }

// Close releases the descriptor if one is owned. It is safe to call more
// than once.
func (s *Socket[A]) Close() error {
	if s.fd < 0 {
		return nil
	}
	fd := s.fd
	s.fd = -1
	runtime.SetFinalizer(s, nil)

	if err := unix.Close(fd); err != nil {
		return resourceError("close", err)
	}
	s.opts.logger.Debug("socket closed", "fd", fd)
	return nil
}

// Move transfers ownership of the descriptor to a new Socket. s is left
// owning nothing.
func (s *Socket[A]) Move() *Socket[A] {
	fd := s.fd
	s.fd = -1
	runtime.SetFinalizer(s, nil)

	if fd < 0 {
		return &Socket[A]{fd: -1, family: s.family, typ: s.typ, proto: s.proto, opts: s.opts, newAddr: s.newAddr}
	}
	return newSocket(fd, s.family, s.typ, s.opts, s.newAddr)
}

// Release gives up ownership and returns the descriptor. The caller
// becomes responsible for closing it.
func (s *Socket[A]) Release() int {
	fd := s.fd
	s.fd = -1
	runtime.SetFinalizer(s, nil)
	return fd
}

// Bind assigns addr to the socket. For a unix-domain filesystem path, an
// existing entry at that path is removed first.
func (s *Socket[A]) Bind(addr A) error {
	if s.fd < 0 {
		return ErrClosed
	}
	defer runtime.KeepAlive(s)
	sa, err := addr.sockaddr()
	if err != nil {
		return resourceError("bind", err)
	}
	if u, ok := any(addr).(*UnixAddress); ok {
		s.removeStalePath(u)
	}

	if err := unix.Bind(s.fd, sa); err != nil {
		return resourceError("bind", err)
	}
	s.opts.logger.Debug("socket bound", "fd", s.fd, "addr", addr.String())
	return nil
}

func (s *Socket[A]) removeStalePath(u *UnixAddress) {
	if u.Abstract() || u.Path() == "" {
		return
	}
	if err := unix.Unlink(u.Path()); err != nil && !errors.Is(err, unix.ENOENT) {
		s.opts.logger.Warn("remove stale socket path failed", "path", u.Path(), "error", err)
	}
}

// Listen marks the socket as accepting connections. A backlog <= 0 uses
// DefaultBacklog.
func (s *Socket[A]) Listen(backlog int) error {
	if s.fd < 0 {
		return ErrClosed
	}
	defer runtime.KeepAlive(s)
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	if err := unix.Listen(s.fd, backlog); err != nil {
		return resourceError("listen", err)
	}
	s.opts.logger.Debug("socket listening", "fd", s.fd, "backlog", backlog)
	return nil
}

// Connect connects the socket to remote.
func (s *Socket[A]) Connect(remote A) error {
	if s.fd < 0 {
		return ErrClosed
	}
	defer runtime.KeepAlive(s)
	sa, err := remote.sockaddr()
	if err != nil {
		return resourceError("connect", err)
	}
	if err := unix.Connect(s.fd, sa); err != nil {
		return resourceError("connect", err)
	}
	s.opts.logger.Debug("socket connected", "fd", s.fd, "remote", remote.String())
	return nil
}

// Accept waits for a pending connection and returns a new Socket owning
// it, together with the peer address. The listening socket is unaffected.
func (s *Socket[A]) Accept() (*Socket[A], A, error) {
	var zero A
	if s.fd < 0 {
		return nil, zero, ErrClosed
	}
	defer runtime.KeepAlive(s)
	nfd, sa, err := sysAccept(s.fd, s.opts.cloexec)
	if err != nil {
		return nil, zero, resourceError("accept", err)
	}
	peer, err := s.decodeAddr(sa)
	if err != nil {
		_ = unix.Close(nfd)
		return nil, zero, resourceError("accept", err)
	}

	conn := newSocket(nfd, s.family, s.typ, s.opts, s.newAddr)
	s.opts.logger.Debug("accepted connection", "fd", s.fd, "conn_fd", nfd, "peer", peer.String())
	return conn, peer, nil
}

// decodeAddr converts an address returned by the OS. A nil address
// yields an empty address of length zero.
func (s *Socket[A]) decodeAddr(sa unix.Sockaddr) (A, error) {
	addr := s.newAddr()
	if sa == nil {
		_ = addr.SetLen(0)
		return addr, nil
	}
	if err := addr.setSockaddr(sa); err != nil {
		var zero A
		return zero, err
	}
	return addr, nil
}

// LocalAddress returns the address the socket is bound to.
func (s *Socket[A]) LocalAddress() (A, error) {
	return s.name("getsockname", unix.Getsockname)
}

// PeerAddress returns the address of the connected peer.
func (s *Socket[A]) PeerAddress() (A, error) {
	return s.name("getpeername", unix.Getpeername)
}

func (s *Socket[A]) name(op string, get func(int) (unix.Sockaddr, error)) (A, error) {
	var zero A
	if s.fd < 0 {
		return zero, ErrClosed
	}
	defer runtime.KeepAlive(s)
	sa, err := get(s.fd)
	if err != nil {
		return zero, resourceError(op, err)
	}
	addr, err := s.decodeAddr(sa)
	if err != nil {
		return zero, resourceError(op, err)
	}
	return addr, nil
}

// ShutdownHow selects which directions Shutdown closes.
type ShutdownHow int

const (
	ShutRead      ShutdownHow = unix.SHUT_RD
	ShutWrite     ShutdownHow = unix.SHUT_WR
	ShutReadWrite ShutdownHow = unix.SHUT_RDWR
)

// Shutdown disables sends, receives or both without releasing the
// descriptor. On linux it also wakes a blocked Accept.
func (s *Socket[A]) Shutdown(how ShutdownHow) error {
	if s.fd < 0 {
		return ErrClosed
	}
	defer runtime.KeepAlive(s)
	if err := unix.Shutdown(s.fd, int(how)); err != nil {
		return resourceError("shutdown", err)
	}
	return nil
}

// Send performs one send call and reports what it transferred, which may
// be less than len(p).
func (s *Socket[A]) Send(p []byte, flags int) (int, error) {
	if s.fd < 0 {
		return 0, ErrClosed
	}
	defer runtime.KeepAlive(s)
	n, err := unix.SendmsgN(s.fd, p, nil, nil, flags)
	if err != nil {
		return 0, &TransferError{Op: "send", Err: err}
	}
	return n, nil
}

// SendTo performs one send call to the given address.
func (s *Socket[A]) SendTo(p []byte, to A, flags int) (int, error) {
	if s.fd < 0 {
		return 0, ErrClosed
	}
	defer runtime.KeepAlive(s)
	sa, err := to.sockaddr()
	if err != nil {
		return 0, &TransferError{Op: "sendto", Err: err}
	}
	n, err := unix.SendmsgN(s.fd, p, nil, sa, flags)
	if err != nil {
		return 0, &TransferError{Op: "sendto", Err: err}
	}
	return n, nil
}

// Recv performs one receive call. A zero count with a nil error on a
// stream socket means the peer closed its side.
func (s *Socket[A]) Recv(p []byte, flags int) (int, error) {
	if s.fd < 0 {
		return 0, ErrClosed
	}
	defer runtime.KeepAlive(s)
	n, _, err := unix.Recvfrom(s.fd, p, flags)
	if err != nil {
		return 0, &TransferError{Op: "recv", Err: err}
	}
	return n, nil
}

// RecvWaitAll performs one receive call with MSG_WAITALL, asking the OS to
// fill p. It may still return less on a signal, an error or peer close.
func (s *Socket[A]) RecvWaitAll(p []byte, flags int) (int, error) {
	return s.Recv(p, flags|unix.MSG_WAITALL)
}

// RecvFrom performs one receive call and returns the sender address. When
// the OS reports no address, the returned address has length zero.
func (s *Socket[A]) RecvFrom(p []byte, flags int) (int, A, error) {
	var zero A
	if s.fd < 0 {
		return 0, zero, ErrClosed
	}
	defer runtime.KeepAlive(s)
	n, sa, err := unix.Recvfrom(s.fd, p, flags)
	if err != nil {
		return 0, zero, &TransferError{Op: "recvfrom", Err: err}
	}
	from, err := s.decodeAddr(sa)
	if err != nil {
		return n, zero, &TransferError{Op: "recvfrom", N: n, Err: err}
	}
	return n, from, nil
}

// SendFull sends exactly the first n bytes of p. See SendFull.
func (s *Socket[A]) SendFull(p []byte, n int) (int, error) {
	return SendFull(s, p, n)
}

// RecvFull receives up to n bytes into p, stopping early only when the
// peer closes. See RecvFull.
func (s *Socket[A]) RecvFull(p []byte, n int) (int, error) {
	return RecvFull(s, p, n)
}

// Read implements io.Reader with a single receive call. A zero-byte read
// on a stream socket is reported as io.EOF. Datagram and seqpacket sockets
// carry empty messages, so there a zero-byte read returns 0, nil and does
// not mean the peer closed; callers reading those through io.Reader
// helpers must expect it.
func (s *Socket[A]) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := s.Recv(p, 0)
	if err != nil {
		return n, err
	}
	if n == 0 && s.typ == Stream {
		return 0, io.EOF
	}
	return n, nil
}

// Write implements io.Writer by sending all of p.
func (s *Socket[A]) Write(p []byte) (int, error) {
	return s.SendFull(p, len(p))
}
