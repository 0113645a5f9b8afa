package annexb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindStartCode(t *testing.T) {
	// every offset, including positions spanning the 4-byte scan boundary
	for offset := 0; offset < 16; offset++ {
		buf := make([]byte, offset)
		for i := range buf {
			buf[i] = 0xAA
		}
		buf = append(buf, 0x00, 0x00, 0x01, 0x42, 0x00)

		require.Equal(t, offset, FindStartCode(buf, 0), "offset %d", offset)
	}
}

func TestFindStartCodeBackup(t *testing.T) {
	// a preceding zero is included (the 00 00 00 01 form)
	buf := []byte{0xAA, 0xBB, 0x00, 0x00, 0x00, 0x01, 0x42}
	require.Equal(t, 2, FindStartCode(buf, 0))

	// unless the scan started on it
	require.Equal(t, 3, FindStartCode(buf, 3))
}

func TestFindStartCodeMissing(t *testing.T) {
	buf := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x00, 0x00}
	require.Equal(t, len(buf), FindStartCode(buf, 0))
}

func TestReframeLengthPrefixed(t *testing.T) {
	for _, ca := range []struct {
		name string
		byts []byte
		out  []byte
	}{
		{
			"3 byte start codes",
			[]byte{
				0x00, 0x00, 0x01, 0x67, 0xAA, 0xBB,
				0x00, 0x00, 0x01, 0x68, 0xCC,
			},
			[]byte{
				0x00, 0x00, 0x00, 0x03, 0x67, 0xAA, 0xBB,
				0x00, 0x00, 0x00, 0x02, 0x68, 0xCC,
			},
		},
		{
			"4 byte start codes",
			[]byte{
				0x00, 0x00, 0x00, 0x01, 0x65, 0x11, 0x22, 0x33,
				0x00, 0x00, 0x00, 0x01, 0x41, 0x44,
			},
			[]byte{
				0x00, 0x00, 0x00, 0x04, 0x65, 0x11, 0x22, 0x33,
				0x00, 0x00, 0x00, 0x02, 0x41, 0x44,
			},
		},
		{
			"no start code",
			[]byte{0xAA, 0xBB, 0xCC},
			nil,
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			require.Equal(t, ca.out, ReframeLengthPrefixed(ca.byts))
		})
	}
}
