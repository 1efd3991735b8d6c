package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// DefaultMaxFrameSize : Hard cap on the byte length of a single
// frame payload. Frames advertising a larger length are treated
// as protocol violations.
const DefaultMaxFrameSize = 64 * 1024 * 1024

// ErrConnectionClosed : Indicates that the underlying stream was
// closed by the peer, possibly in the middle of a frame.
var ErrConnectionClosed = fmt.Errorf("connection closed by peer")

// ErrProtocol : Indicates that the peer violated the framing
// protocol (oversized length or invalid MessagePack payload).
var ErrProtocol = fmt.Errorf("protocol violation")

// Codec :
// Implements the framing protocol used between the server and
// its clients: each message is an unsigned 32-bit big-endian
// length followed by exactly that many bytes of MessagePack
// payload. The payload is a map whose `type` key identifies the
// message.
// A codec performs no internal locking: serializing concurrent
// writers is the responsibility of the session layer.
//
// The `rw` defines the stream the codec operates on.
//
// The `maxSize` defines the cap applied to both inbound and
// outbound frame lengths.
type Codec struct {
	rw      io.ReadWriter
	maxSize uint32
}

// NewCodec :
// Builds a codec operating on the provided stream with the
// default frame size cap.
//
// The `rw` defines the stream to read frames from and write
// frames to.
//
// Returns the built-in codec.
func NewCodec(rw io.ReadWriter) *Codec {
	return &Codec{
		rw:      rw,
		maxSize: DefaultMaxFrameSize,
	}
}

// WithMaxFrameSize :
// Overrides the frame size cap for this codec. A zero value is
// ignored.
//
// Returns this codec to allow chain calling.
func (c *Codec) WithMaxFrameSize(size uint32) *Codec {
	if size > 0 {
		c.maxSize = size
	}
	return c
}

// Read :
// Reads exactly one frame from the stream and decodes its
// MessagePack payload into a generic map.
//
// Returns the decoded payload along with any error. The error
// is `ErrConnectionClosed` if the stream ends before or during
// a frame and wraps `ErrProtocol` if the length is oversized or
// the payload cannot be decoded.
func (c *Codec) Read() (map[string]interface{}, error) {
	var header [4]byte
	if _, err := io.ReadFull(c.rw, header[:]); err != nil {
		return nil, ErrConnectionClosed
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > c.maxSize {
		return nil, fmt.Errorf("%w: frame of %d bytes exceeds cap of %d", ErrProtocol, length, c.maxSize)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(c.rw, payload); err != nil {
		return nil, ErrConnectionClosed
	}

	var packet map[string]interface{}
	if err := msgpack.Unmarshal(payload, &packet); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}

	return packet, nil
}

// Write :
// Encodes the input value as MessagePack and writes it to the
// stream as a single length-prefixed frame. The header and the
// payload are emitted through a single call to the underlying
// writer.
//
// The `v` defines the value to encode, typically a map with a
// `type` key.
//
// Returns any error encountered while encoding or writing.
func (c *Codec) Write(v interface{}) error {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if uint32(len(payload)) > c.maxSize {
		return fmt.Errorf("%w: frame of %d bytes exceeds cap of %d", ErrProtocol, len(payload), c.maxSize)
	}

	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(payload)))
	copy(buf[4:], payload)

	if _, err := c.rw.Write(buf); err != nil {
		if errors.Is(err, io.ErrClosedPipe) {
			return ErrConnectionClosed
		}
		return err
	}

	return nil
}
