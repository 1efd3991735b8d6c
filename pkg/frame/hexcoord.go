package frame

import (
	"encoding/binary"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// HexCoordExtID : Reserved MessagePack extension type code used
// to encode hex coordinates compactly on the wire.
const HexCoordExtID = 1

// HexCoord :
// Compact wire representation of an axial hex coordinate. The
// three components are encoded as signed 32-bit big-endian
// integers for a total payload of 12 bytes. The `S` component
// is redundant (`s = -q - r`) but carried explicitly so that
// clients do not have to derive it.
type HexCoord struct {
	Q int32
	R int32
	S int32
}

func init() {
	msgpack.RegisterExt(HexCoordExtID, (*HexCoord)(nil))
}

// MarshalMsgpack :
// Encodes the coordinate as the 12-byte extension payload.
//
// Returns the encoded payload along with any error.
func (c *HexCoord) MarshalMsgpack() ([]byte, error) {
	buf := make([]byte, 12)
	binary.BigEndian.PutUint32(buf[0:4], uint32(c.Q))
	binary.BigEndian.PutUint32(buf[4:8], uint32(c.R))
	binary.BigEndian.PutUint32(buf[8:12], uint32(c.S))
	return buf, nil
}

// UnmarshalMsgpack :
// Decodes the coordinate from the 12-byte extension payload.
//
// The `data` defines the raw extension payload.
//
// Returns an error in case the payload does not have the
// expected length.
func (c *HexCoord) UnmarshalMsgpack(data []byte) error {
	if len(data) != 12 {
		return fmt.Errorf("%w: hex coordinate payload of %d bytes (expected 12)", ErrProtocol, len(data))
	}

	c.Q = int32(binary.BigEndian.Uint32(data[0:4]))
	c.R = int32(binary.BigEndian.Uint32(data[4:8]))
	c.S = int32(binary.BigEndian.Uint32(data[8:12]))

	return nil
}
