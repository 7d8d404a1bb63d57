package npl

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// HeaderSize is the size of the length header preceding a message.
const HeaderSize = 4

var (
	// ErrShortHeader is returned when a buffer holds fewer than HeaderSize bytes.
	ErrShortHeader = errors.New("buffer shorter than length header")
	// ErrFrameTooLarge is returned when a payload length does not fit in 32 bits.
	ErrFrameTooLarge = errors.New("frame length exceeds 32 bits")
)

// AttachLengthHeader returns buf prefixed with its length as a 4-byte
// big-endian integer.
func AttachLengthHeader(buf []byte) ([]byte, error) {
	if uint64(len(buf)) > math.MaxUint32 {
		return nil, ErrFrameTooLarge
	}
	out := make([]byte, HeaderSize, HeaderSize+len(buf))
	binary.BigEndian.PutUint32(out, uint32(len(buf)))
	return append(out, buf...), nil
}

// ReadLengthHeader returns the big-endian length held in the first four
// bytes of buf. The rest of buf is not inspected.
func ReadLengthHeader(buf []byte) (uint32, error) {
	if len(buf) < HeaderSize {
		return 0, ErrShortHeader
	}
	return binary.BigEndian.Uint32(buf), nil
}
