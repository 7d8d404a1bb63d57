package npl

import (
	"fmt"
	"net"
	"slices"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// FamilyPacket is the link-layer packet family.
const FamilyPacket Family = unix.AF_PACKET

// ETHAll is the protocol value matching every ethernet protocol.
const ETHAll = unix.ETH_P_ALL

// PacketAddress is a link-layer endpoint in sockaddr_ll layout.
type PacketAddress struct {
	raw unix.RawSockaddrLinklayer
	len int
}

var _ Address = (*PacketAddress)(nil)

// NewPacketAddress returns the empty link-layer address.
func NewPacketAddress() *PacketAddress {
	return &PacketAddress{
		raw: unix.RawSockaddrLinklayer{Family: unix.AF_PACKET},
		len: unix.SizeofSockaddrLinklayer,
	}
}

// NewPacketIndex returns the link-layer address of the interface with the
// given index. protocol is an ethernet protocol in host byte order.
func NewPacketIndex(ifindex int, protocol uint16) *PacketAddress {
	a := NewPacketAddress()
	a.raw.Ifindex = int32(ifindex)
	a.raw.Protocol = htons(protocol)
	return a
}

// NewPacketInterface returns the link-layer address of the named interface.
func NewPacketInterface(name string, protocol uint16) (*PacketAddress, error) {
	index, err := interfaceIndex(name)
	if err != nil {
		return nil, err
	}
	return NewPacketIndex(index, protocol), nil
}

func interfaceIndex(name string) (int, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return 0, &InterfaceError{Name: name, Err: err}
	}
	return link.Attrs().Index, nil
}

// IfIndex returns the interface index; 0 matches any interface.
func (a *PacketAddress) IfIndex() int { return int(a.raw.Ifindex) }

// IfName resolves the interface index back to its name. Index 0 is "any".
func (a *PacketAddress) IfName() (string, error) {
	if a.raw.Ifindex == 0 {
		return "any", nil
	}
	link, err := netlink.LinkByIndex(int(a.raw.Ifindex))
	if err != nil {
		return "", &InterfaceError{Index: int(a.raw.Ifindex), Err: err}
	}
	return link.Attrs().Name, nil
}

// Protocol returns the ethernet protocol in host byte order.
func (a *PacketAddress) Protocol() uint16 { return ntohs(a.raw.Protocol) }

// HardwareAddr returns the first HardwareLen bytes of the physical address.
func (a *PacketAddress) HardwareAddr() net.HardwareAddr {
	n := min(int(a.raw.Halen), len(a.raw.Addr))
	return slices.Clone(net.HardwareAddr(a.raw.Addr[:n]))
}

func (a *PacketAddress) HardwareLen() int { return int(a.raw.Halen) }

// HardwareType returns the ARP hardware type, e.g. unix.ARPHRD_ETHER.
func (a *PacketAddress) HardwareType() uint16 { return a.raw.Hatype }

// PacketType returns the packet type, e.g. unix.PACKET_HOST.
func (a *PacketAddress) PacketType() uint8 { return a.raw.Pkttype }

func (a *PacketAddress) Family() Family { return FamilyPacket }

func (a *PacketAddress) Len() int { return a.len }

func (a *PacketAddress) SetLen(n int) error {
	if err := checkLen(n, unix.SizeofSockaddrLinklayer); err != nil {
		return err
	}
	a.len = n
	return nil
}

func (a *PacketAddress) Bytes() []byte { return rawView(&a.raw, a.len) }

func (a *PacketAddress) String() string {
	return fmt.Sprintf("packet(ifindex=%d proto=%#04x hw=%s)", a.raw.Ifindex, a.Protocol(), a.HardwareAddr())
}

func (a *PacketAddress) sockaddr() (unix.Sockaddr, error) {
	return &unix.SockaddrLinklayer{
		Protocol: a.raw.Protocol,
		Ifindex:  int(a.raw.Ifindex),
		Hatype:   a.raw.Hatype,
		Pkttype:  a.raw.Pkttype,
		Halen:    a.raw.Halen,
		Addr:     a.raw.Addr,
	}, nil
}

func (a *PacketAddress) setSockaddr(sa unix.Sockaddr) error {
	sl, ok := sa.(*unix.SockaddrLinklayer)
	if !ok {
		return ErrFamilyMismatch
	}
	a.raw = unix.RawSockaddrLinklayer{
		Family:   unix.AF_PACKET,
		Protocol: sl.Protocol,
		Ifindex:  int32(sl.Ifindex),
		Hatype:   sl.Hatype,
		Pkttype:  sl.Pkttype,
		Halen:    sl.Halen,
		Addr:     sl.Addr,
	}
	a.len = unix.SizeofSockaddrLinklayer
	return nil
}
