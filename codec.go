package npl

import (
	"io"

	"github.com/pkg/errors"
)

// ErrMessageTooLarge is returned when a frame announces more than the
// codec's maximum payload.
var ErrMessageTooLarge = errors.New("message too large")

// DefaultMaxMessageSize is the payload limit of a zero LengthCodec (1MB).
const DefaultMaxMessageSize = 1024 * 1024

// Message is a payload carried in one frame.
type Message interface {
	// Length returns the length of the message body.
	Length() int
	// Body returns the raw message data.
	Body() []byte
}

// Frame is a Message holding its payload bytes as-is.
type Frame []byte

func (f Frame) Length() int  { return len(f) }
func (f Frame) Body() []byte { return f }

// Codec encodes messages into bytes for a stream and decodes them back.
// Decode reads exactly the bytes of one message from r, which handles
// stream reassembly regardless of how the bytes were split in transit.
type Codec interface {
	Decode(r io.Reader) (Message, error)
	Encode(Message) ([]byte, error)
}

// LengthCodec frames messages with a 4-byte big-endian length header.
type LengthCodec struct {
	// MaxSize bounds the payload length accepted by Decode.
	// Zero means DefaultMaxMessageSize.
	MaxSize int
}

var _ Codec = LengthCodec{}

func (c LengthCodec) maxSize() int {
	if c.MaxSize <= 0 {
		return DefaultMaxMessageSize
	}
	return c.MaxSize
}

// Encode returns the message body prefixed with its length header.
func (c LengthCodec) Encode(m Message) ([]byte, error) {
	return AttachLengthHeader(m.Body())
}

// Decode reads one frame. A stream ending inside a frame yields
// io.ErrUnexpectedEOF; a stream ending before it yields io.EOF.
func (c LengthCodec) Decode(r io.Reader) (Message, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n, _ := ReadLengthHeader(hdr[:])
	if uint64(n) > uint64(c.maxSize()) {
		return nil, errors.Wrapf(ErrMessageTooLarge, "frame of %d bytes", n)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return Frame(body), nil
}

// WriteFrame writes payload to w as one frame.
func WriteFrame(w io.Writer, payload []byte) error {
	b, err := AttachLengthHeader(payload)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ReadFrame reads one frame from r and returns its payload. maxSize <= 0
// means DefaultMaxMessageSize.
func ReadFrame(r io.Reader, maxSize int) ([]byte, error) {
	m, err := LengthCodec{MaxSize: maxSize}.Decode(r)
	if err != nil {
		return nil, err
	}
	return m.Body(), nil
}
