package bits

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	r := NewReader([]byte{0b11010010, 0b01100101, 0b00001111})
	require.Equal(t, uint32(0b110), r.Read(3))
	require.Equal(t, uint32(0b10010), r.Read(5))
	require.Equal(t, uint32(0b0110010100001111), r.Read(16))
	require.True(t, r.EOS())
}

func TestReadEmulationPrevention(t *testing.T) {
	// the 0x03 after two zero bytes is not data
	r := NewReader([]byte{0x00, 0x00, 0x03, 0x01, 0xAB})
	require.Equal(t, uint32(0x00), r.Read(8))
	require.Equal(t, uint32(0x00), r.Read(8))
	require.Equal(t, uint32(0x01), r.Read(8))
	require.Equal(t, uint32(0xAB), r.Read(8))
	require.True(t, r.EOS())
}

func TestReadTruncated(t *testing.T) {
	// reading past the end zero-pads instead of erroring
	r := NewReader([]byte{0xFF})
	require.Equal(t, uint32(0xFF), r.Read(16))
	require.True(t, r.EOS())
	require.Equal(t, uint32(0), r.Read(8))
}

func TestReadUE(t *testing.T) {
	for _, ca := range []struct {
		name string
		byts []byte
		vals []uint32
	}{
		{
			"single values",
			[]byte{0b10100110, 0b01000000},
			[]uint32{0, 1, 2, 3},
		},
		{
			"larger value",
			[]byte{0b00010010, 0b00000000},
			[]uint32{8},
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			r := NewReader(ca.byts)
			for _, v := range ca.vals {
				require.Equal(t, v, r.ReadUE())
			}
		})
	}
}

func TestReadSE(t *testing.T) {
	// code k alternates sign: 1 -> 1, 2 -> -1, 3 -> 2, 4 -> -2
	r := NewReader([]byte{0b01001100, 0b10000101})
	require.Equal(t, int32(1), r.ReadSE())
	require.Equal(t, int32(-1), r.ReadSE())
	require.Equal(t, int32(2), r.ReadSE())
	require.Equal(t, int32(-2), r.ReadSE())
}
