//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package npl

import (
	"context"
	"errors"
	"net/netip"
	"strings"
	"testing"

	"golang.org/x/sys/unix"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	"pgregory.net/rapid"
)

func TestParseInet4(t *testing.T) {
	a, err := ParseInet4("127.0.0.1", 20000)
	assert.NilError(t, err)

	assert.Check(t, is.Equal(a.Host(), "127.0.0.1"))
	assert.Check(t, is.Equal(a.Port(), uint16(20000)))
	assert.Check(t, is.Equal(a.Family(), FamilyInet4))
	assert.Check(t, is.Equal(a.Len(), unix.SizeofSockaddrInet4))
	assert.Check(t, is.Equal(a.String(), "127.0.0.1:20000"))
}

func TestParseInet4_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ip := [4]byte{
			rapid.Byte().Draw(t, "a"),
			rapid.Byte().Draw(t, "b"),
			rapid.Byte().Draw(t, "c"),
			rapid.Byte().Draw(t, "d"),
		}
		port := rapid.Uint16().Draw(t, "port")
		host := netip.AddrFrom4(ip).String()

		a, err := ParseInet4(host, port)
		if err != nil {
			t.Fatalf("ParseInet4(%q, %d): %v", host, port, err)
		}
		if a.Host() != host {
			t.Fatalf("Host() = %q, want %q", a.Host(), host)
		}
		if a.Port() != port {
			t.Fatalf("Port() = %d, want %d", a.Port(), port)
		}
		if a.IP() != ip {
			t.Fatalf("IP() = %v, want %v", a.IP(), ip)
		}
	})
}

func TestParseInet4_EmptyHostIsWildcard(t *testing.T) {
	a, err := ParseInet4("", 8080)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(a.Host(), "0.0.0.0"))
	assert.Check(t, is.Equal(a.Port(), uint16(8080)))
}

func TestParseInet4_Invalid(t *testing.T) {
	for _, host := range []string{"256.0.0.1", "localhost", "::1", "1.2.3"} {
		_, err := ParseInet4(host, 1)

		var re *ResolutionError
		assert.Assert(t, errors.As(err, &re), "host %q: got %v", host, err)
		assert.Check(t, is.Equal(re.Host, host))
	}
}

func TestInet4_NetworkByteOrder(t *testing.T) {
	a := NewInet4([4]byte{10, 1, 2, 3}, 0x1234)
	b := a.Bytes()

	assert.Check(t, is.Len(b, unix.SizeofSockaddrInet4))
	// sin_port and sin_addr follow the two family bytes on every platform.
	assert.Check(t, is.DeepEqual(b[2:4], []byte{0x12, 0x34}))
	assert.Check(t, is.DeepEqual(b[4:8], []byte{10, 1, 2, 3}))
}

func TestInet4_BytesIsWritableView(t *testing.T) {
	a := NewInet4Wildcard(1)
	b := a.Bytes()
	b[4], b[5], b[6], b[7] = 192, 168, 0, 1

	assert.Check(t, is.Equal(a.Host(), "192.168.0.1"))
}

func TestInet4_SetLen(t *testing.T) {
	a := NewInet4Wildcard(0)

	assert.NilError(t, a.SetLen(0))
	assert.Check(t, is.Len(a.Bytes(), 0))
	assert.NilError(t, a.SetLen(unix.SizeofSockaddrInet4))
	assert.ErrorIs(t, a.SetLen(unix.SizeofSockaddrInet4+1), ErrInvalidLength)
	assert.ErrorIs(t, a.SetLen(-1), ErrInvalidLength)
}

func TestInet4_SockaddrConversion(t *testing.T) {
	a := NewInet4([4]byte{127, 0, 0, 1}, 443)
	sa, err := a.sockaddr()
	assert.NilError(t, err)

	s4, ok := sa.(*unix.SockaddrInet4)
	assert.Assert(t, ok)
	assert.Check(t, is.Equal(s4.Port, 443))
	assert.Check(t, is.Equal(s4.Addr, [4]byte{127, 0, 0, 1}))

	b := NewInet4Wildcard(0)
	assert.NilError(t, b.setSockaddr(sa))
	assert.Check(t, is.Equal(b.String(), "127.0.0.1:443"))

	assert.ErrorIs(t, b.setSockaddr(&unix.SockaddrUnix{Name: "/x"}), ErrFamilyMismatch)
}

func TestResolveInet4_Numeric(t *testing.T) {
	a, err := ResolveInet4(context.Background(), "127.0.0.1", "8080")
	assert.NilError(t, err)
	assert.Check(t, is.Equal(a.Host(), "127.0.0.1"))
	assert.Check(t, is.Equal(a.Port(), uint16(8080)))
}

func TestResolveInet4_EmptyHostIsLoopback(t *testing.T) {
	a, err := ResolveInet4(context.Background(), "", "0")
	assert.NilError(t, err)
	assert.Check(t, is.Equal(a.Host(), "127.0.0.1"))
}

func TestResolveInet4_UnknownService(t *testing.T) {
	_, err := ResolveInet4(context.Background(), "127.0.0.1", "npl-no-such-service")

	var re *ResolutionError
	assert.Assert(t, errors.As(err, &re))
	assert.Check(t, is.Equal(re.Op, "getaddrinfo"))
	assert.Check(t, is.Equal(re.Service, "npl-no-such-service"))
}

func TestResolveInet4_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ResolveInet4(ctx, "npl-no-such-host.invalid", "")
	var re *ResolutionError
	assert.Assert(t, errors.As(err, &re))
}

func TestInet4_NameInfoNumeric(t *testing.T) {
	a := NewInet4([4]byte{127, 0, 0, 1}, 20000)

	host, service, err := a.NameInfo(context.Background(), NameInfoNumericHost|NameInfoNumericService)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(host, "127.0.0.1"))
	assert.Check(t, is.Equal(service, "20000"))
}

func TestUnixPath(t *testing.T) {
	a, err := NewUnixPath("/tmp/npl.sock")
	assert.NilError(t, err)

	assert.Check(t, is.Equal(a.Path(), "/tmp/npl.sock"))
	assert.Check(t, is.Equal(a.String(), "/tmp/npl.sock"))
	assert.Check(t, is.Equal(a.Family(), FamilyUnix))
	assert.Check(t, !a.Abstract())
	assert.Check(t, is.Equal(a.Len(), unix.SizeofSockaddrUnix))

	sa, err := a.sockaddr()
	assert.NilError(t, err)
	assert.Check(t, is.Equal(sa.(*unix.SockaddrUnix).Name, "/tmp/npl.sock"))
}

func TestUnixPath_TooLong(t *testing.T) {
	var raw unix.RawSockaddrUnix
	limit := len(raw.Path) - 1

	_, err := NewUnixPath("/" + strings.Repeat("x", limit-1))
	assert.NilError(t, err)

	_, err = NewUnixPath("/" + strings.Repeat("x", limit))
	assert.ErrorIs(t, err, ErrPathTooLong)
}

func TestUnixPath_LeadingAtStaysOnFilesystem(t *testing.T) {
	a, err := NewUnixPath("@victim")
	assert.NilError(t, err)

	assert.Check(t, !a.Abstract())
	assert.Check(t, is.Equal(a.Path(), "./@victim"))

	sa, err := a.sockaddr()
	assert.NilError(t, err)
	assert.Check(t, is.Equal(sa.(*unix.SockaddrUnix).Name, "./@victim"))
}

func TestUnixPath_ZeroByte(t *testing.T) {
	_, err := NewUnixPath("/tmp/npl\x00.sock")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = NewUnixPath("\x00hidden")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestUnixAddress_Empty(t *testing.T) {
	a := NewUnixAddress()
	assert.Check(t, is.Equal(a.Path(), ""))
	assert.Check(t, !a.Abstract())
	assert.Check(t, is.Len(a.Bytes(), unix.SizeofSockaddrUnix))
}

func TestUnixAddress_SetSockaddrLength(t *testing.T) {
	a := NewUnixAddress()

	assert.NilError(t, a.setSockaddr(&unix.SockaddrUnix{Name: "/run/x.sock"}))
	assert.Check(t, is.Equal(a.Path(), "/run/x.sock"))
	assert.Check(t, is.Equal(a.Len(), unixPathOffset+len("/run/x.sock")+1))

	assert.NilError(t, a.setSockaddr(&unix.SockaddrUnix{}))
	assert.Check(t, is.Equal(a.Path(), ""))
	assert.Check(t, is.Equal(a.Len(), unixPathOffset))
}

func TestFamilyString(t *testing.T) {
	assert.Check(t, is.Equal(FamilyUnix.String(), "unix"))
	assert.Check(t, is.Equal(FamilyInet4.String(), "inet4"))
	assert.Check(t, is.Equal(Family(12345).String(), "family(12345)"))
}

func TestTypeString(t *testing.T) {
	assert.Check(t, is.Equal(Stream.String(), "stream"))
	assert.Check(t, is.Equal(Datagram.String(), "datagram"))
	assert.Check(t, is.Equal(Type(999).String(), "type(999)"))
}

func TestByteOrderHelpers(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Uint16().Draw(t, "v")
		if ntohs(htons(v)) != v {
			t.Fatalf("ntohs(htons(%#x)) != %#x", v, v)
		}
	})
}
