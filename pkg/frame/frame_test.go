package frame

import (
	"bytes"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	codec := NewCodec(&buf)

	payload := map[string]interface{}{
		"type": "login",
		"name": "Alice",
	}

	require.NoError(t, codec.Write(payload))

	decoded, err := codec.Read()
	require.NoError(t, err)

	assert.Equal(t, "login", decoded["type"])
	assert.Equal(t, "Alice", decoded["name"])
}

func TestFrameTwoFramesInOrder(t *testing.T) {
	var buf bytes.Buffer
	codec := NewCodec(&buf)

	require.NoError(t, codec.Write(map[string]interface{}{"type": "first", "value": 1}))
	require.NoError(t, codec.Write(map[string]interface{}{"type": "second", "value": 2}))

	first, err := codec.Read()
	require.NoError(t, err)
	assert.Equal(t, "first", first["type"])
	assert.EqualValues(t, 1, first["value"])

	second, err := codec.Read()
	require.NoError(t, err)
	assert.Equal(t, "second", second["type"])
	assert.EqualValues(t, 2, second["value"])
}

func TestFrameConnectionClosed(t *testing.T) {
	var buf bytes.Buffer
	codec := NewCodec(&buf)

	_, err := codec.Read()
	assert.ErrorIs(t, err, ErrConnectionClosed)
}

func TestFrameTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	// A header advertising 100 bytes followed by only 3.
	buf.Write([]byte{0, 0, 0, 100})
	buf.Write([]byte{1, 2, 3})

	codec := NewCodec(&buf)

	_, err := codec.Read()
	assert.ErrorIs(t, err, ErrConnectionClosed)
}

func TestFrameOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})

	codec := NewCodec(&buf)

	_, err := codec.Read()
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestFrameInvalidPayload(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 2})
	buf.Write([]byte{0xC1, 0xC1})

	codec := NewCodec(&buf)

	_, err := codec.Read()
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestFrameWriteCapEnforced(t *testing.T) {
	var buf bytes.Buffer
	codec := NewCodec(&buf).WithMaxFrameSize(8)

	err := codec.Write(map[string]interface{}{
		"type": "way too large for an eight byte frame",
	})
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestFrameOverPipe(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	go func() {
		codec := NewCodec(server)
		codec.Write(map[string]interface{}{"type": "ping"})
	}()

	codec := NewCodec(client)
	decoded, err := codec.Read()
	require.NoError(t, err)
	assert.Equal(t, "ping", decoded["type"])
}

func TestHexCoordExtPayload(t *testing.T) {
	coord := &HexCoord{Q: 3, R: -7, S: 4}

	data, err := coord.MarshalMsgpack()
	require.NoError(t, err)
	require.Len(t, data, 12)

	var decoded HexCoord
	require.NoError(t, decoded.UnmarshalMsgpack(data))
	assert.Equal(t, *coord, decoded)
}

func TestHexCoordExtremes(t *testing.T) {
	cases := []HexCoord{
		{Q: 0, R: 0, S: 0},
		{Q: 2147483647, R: -2147483648, S: 1},
		{Q: -2147483648, R: 2147483647, S: 1},
		{Q: 42, R: -17, S: -25},
	}

	for _, c := range cases {
		data, err := c.MarshalMsgpack()
		require.NoError(t, err)

		var decoded HexCoord
		require.NoError(t, decoded.UnmarshalMsgpack(data))
		assert.Equal(t, c, decoded)
	}
}

func TestHexCoordBadLength(t *testing.T) {
	var decoded HexCoord
	err := decoded.UnmarshalMsgpack([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestHexCoordThroughMsgpack(t *testing.T) {
	type wrapper struct {
		Coord *HexCoord `msgpack:"coord"`
	}

	data, err := msgpack.Marshal(wrapper{Coord: &HexCoord{Q: 5, R: -2, S: -3}})
	require.NoError(t, err)

	var out wrapper
	require.NoError(t, msgpack.Unmarshal(data, &out))
	require.NotNil(t, out.Coord)
	assert.Equal(t, HexCoord{Q: 5, R: -2, S: -3}, *out.Coord)
}
