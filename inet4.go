//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package npl

import (
	"context"
	"net"
	"net/netip"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Inet4Address is an IPv4 endpoint in sockaddr_in layout. The port is
// stored in network byte order.
type Inet4Address struct {
	raw unix.RawSockaddrInet4
	len int
}

var _ Address = (*Inet4Address)(nil)

// NewInet4Wildcard returns the IPv4 wildcard address with the given port.
func NewInet4Wildcard(port uint16) *Inet4Address {
	return NewInet4([4]byte{}, port)
}

// NewInet4 returns an IPv4 address from a binary IP and a host order port.
func NewInet4(ip [4]byte, port uint16) *Inet4Address {
	a := &Inet4Address{len: unix.SizeofSockaddrInet4}
	initRawInet4(&a.raw)
	a.raw.Addr = ip
	a.raw.Port = htons(port)
	return a
}

// ParseInet4 returns an IPv4 address from a dotted-decimal host and a
// port. An empty host is the wildcard address.
func ParseInet4(host string, port uint16) (*Inet4Address, error) {
	if host == "" {
		return NewInet4Wildcard(port), nil
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return nil, &ResolutionError{Op: "inet_pton", Host: host, Err: err}
	}
	if !ip.Is4() {
		return nil, &ResolutionError{Op: "inet_pton", Host: host, Err: errors.New("not an IPv4 address")}
	}
	return NewInet4(ip.As4(), port), nil
}

// ResolveInet4 resolves host and service through the platform resolver and
// returns the first IPv4 result. An empty host resolves to the loopback
// address; service may be numeric or a name from the services database.
func ResolveInet4(ctx context.Context, host, service string) (*Inet4Address, error) {
	port := 0
	if service != "" {
		p, err := net.DefaultResolver.LookupPort(ctx, "tcp", service)
		if err != nil {
			return nil, &ResolutionError{Op: "getaddrinfo", Host: host, Service: service, Err: err}
		}
		port = p
	}

	if host == "" {
		return NewInet4([4]byte{127, 0, 0, 1}, uint16(port)), nil
	}

	ips, err := net.DefaultResolver.LookupNetIP(ctx, "ip4", host)
	if err != nil {
		return nil, &ResolutionError{Op: "getaddrinfo", Host: host, Service: service, Err: err}
	}
	for _, ip := range ips {
		if ip = ip.Unmap(); ip.Is4() {
			return NewInet4(ip.As4(), uint16(port)), nil
		}
	}
	return nil, &ResolutionError{Op: "getaddrinfo", Host: host, Service: service, Err: errors.New("no IPv4 address")}
}

// IP returns the binary IPv4 address.
func (a *Inet4Address) IP() [4]byte { return a.raw.Addr }

// Host returns the address in dotted-decimal form.
func (a *Inet4Address) Host() string {
	return netip.AddrFrom4(a.raw.Addr).String()
}

// Port returns the port in host byte order.
func (a *Inet4Address) Port() uint16 { return ntohs(a.raw.Port) }

func (a *Inet4Address) Family() Family { return FamilyInet4 }

func (a *Inet4Address) Len() int { return a.len }

func (a *Inet4Address) SetLen(n int) error {
	if err := checkLen(n, unix.SizeofSockaddrInet4); err != nil {
		return err
	}
	a.len = n
	return nil
}

func (a *Inet4Address) Bytes() []byte { return rawView(&a.raw, a.len) }

func (a *Inet4Address) String() string {
	return net.JoinHostPort(a.Host(), strconv.Itoa(int(a.Port())))
}

func (a *Inet4Address) sockaddr() (unix.Sockaddr, error) {
	return &unix.SockaddrInet4{Port: int(a.Port()), Addr: a.raw.Addr}, nil
}

func (a *Inet4Address) setSockaddr(sa unix.Sockaddr) error {
	s4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return ErrFamilyMismatch
	}
	initRawInet4(&a.raw)
	a.raw.Addr = s4.Addr
	a.raw.Port = htons(uint16(s4.Port))
	a.len = unix.SizeofSockaddrInet4
	return nil
}

// NameInfoFlags control reverse lookups.
type NameInfoFlags int

const (
	// NameInfoNumericHost returns the numeric host instead of a name.
	NameInfoNumericHost NameInfoFlags = 1 << iota
	// NameInfoNumericService returns the numeric port instead of a service name.
	NameInfoNumericService
	// NameInfoNameRequired fails when the host has no name.
	NameInfoNameRequired
	// NameInfoDatagram looks the service up as a udp service.
	NameInfoDatagram
)

// NameInfo maps the address back to host and service names. Without
// NameInfoNameRequired, a host or service with no name falls back to its
// numeric form.
func (a *Inet4Address) NameInfo(ctx context.Context, flags NameInfoFlags) (host, service string, err error) {
	host = a.Host()
	if flags&NameInfoNumericHost == 0 {
		names, lerr := net.DefaultResolver.LookupAddr(ctx, host)
		switch {
		case lerr == nil && len(names) > 0:
			host = strings.TrimSuffix(names[0], ".")
		case flags&NameInfoNameRequired != 0:
			if lerr == nil {
				lerr = errors.New("no name for address")
			}
			return "", "", &ResolutionError{Op: "getnameinfo", Host: host, Err: lerr}
		}
	}

	service = strconv.Itoa(int(a.Port()))
	if flags&NameInfoNumericService == 0 {
		proto := "tcp"
		if flags&NameInfoDatagram != 0 {
			proto = "udp"
		}
		if name, ok := lookupServiceName(a.Port(), proto); ok {
			service = name
		}
	}
	return host, service, nil
}
