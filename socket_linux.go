package npl

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// OpenPacket opens a link-layer packet socket. The protocol given with
// ProtocolOption is an ethernet protocol in host byte order, e.g. ETHAll.
// Opening requires CAP_NET_RAW.
func OpenPacket(typ Type, opt ...Option) (*Socket[*PacketAddress], error) {
	opts := buildOptions(opt)
	return open(FamilyPacket, typ, int(htons(uint16(opts.protocol))), opts, NewPacketAddress)
}

// FanoutMode selects how a fanout group distributes packets.
type FanoutMode int

const (
	FanoutHash         FanoutMode = unix.PACKET_FANOUT_HASH
	FanoutLoadBalance  FanoutMode = unix.PACKET_FANOUT_LB
	FanoutCPU          FanoutMode = unix.PACKET_FANOUT_CPU
	FanoutRollover     FanoutMode = unix.PACKET_FANOUT_ROLLOVER
	FanoutRandom       FanoutMode = unix.PACKET_FANOUT_RND
	FanoutQueueMapping FanoutMode = unix.PACKET_FANOUT_QM
)

// EnablePromiscuous puts the interface with the given index into
// promiscuous mode for as long as the socket stays open.
func (s *Socket[A]) EnablePromiscuous(ifindex int) error {
	if s.fd < 0 {
		return ErrClosed
	}
	defer runtime.KeepAlive(s)
	mreq := unix.PacketMreq{
		Ifindex: int32(ifindex),
		Type:    unix.PACKET_MR_PROMISC,
	}
	if err := unix.SetsockoptPacketMreq(s.fd, unix.SOL_PACKET, unix.PACKET_ADD_MEMBERSHIP, &mreq); err != nil {
		return optionError("setsockopt", "PACKET_MR_PROMISC", err)
	}
	s.opts.logger.Debug("promiscuous mode enabled", "fd", s.fd, "ifindex", ifindex)
	return nil
}

// EnablePromiscuousByName is EnablePromiscuous for a named interface.
func (s *Socket[A]) EnablePromiscuousByName(name string) error {
	index, err := interfaceIndex(name)
	if err != nil {
		return err
	}
	return s.EnablePromiscuous(index)
}

// JoinFanout adds the socket to fanout group id, distributing packets
// across the group's sockets according to mode.
func (s *Socket[A]) JoinFanout(group uint16, mode FanoutMode) error {
	return s.setOptionInt("PACKET_FANOUT", unix.SOL_PACKET, unix.PACKET_FANOUT, int(mode)<<16|int(group))
}
