package bitstreamconv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOutputBufferHeaderWidths(t *testing.T) {
	var b outputBuffer

	// 4-byte start code at the start of the buffer, 3-byte after
	b.appendNALU(nil, []byte{0x65, 0xAA}, 0x05)
	b.appendNALU(nil, []byte{0x41, 0xBB}, 0x01)
	require.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x01, 0x65, 0xAA,
		0x00, 0x00, 0x01, 0x41, 0xBB,
	}, b.bytes())
}

func TestOutputBufferRPUHeader(t *testing.T) {
	var b outputBuffer

	b.appendNALU(nil, []byte{0x26, 0x01, 0xAA}, 0x13)

	// RPU units always get a 4-byte start code
	b.appendNALU(nil, []byte{0x7C, 0x01, 0xBB}, naluTypeDoViRPU)
	require.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x01, 0x26, 0x01, 0xAA,
		0x00, 0x00, 0x00, 0x01, 0x7C, 0x01, 0xBB,
	}, b.bytes())
}

func TestOutputBufferSpliceParamSets(t *testing.T) {
	var b outputBuffer

	spsPPS := []byte{0x00, 0x00, 0x00, 0x01, 0x67, 0x64}
	b.appendNALU(spsPPS, []byte{0x65, 0xAA}, 0x05)

	// the cached parameter sets come first; the header width of the
	// spliced unit is decided before the prefix is added
	require.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x01, 0x67, 0x64,
		0x00, 0x00, 0x00, 0x01, 0x65, 0xAA,
	}, b.bytes())
}

func TestOutputBufferWrappedEL(t *testing.T) {
	var b outputBuffer

	b.appendNALU(nil, []byte{0x26, 0x01, 0xAA}, 0x13)

	// EL units are rewrapped with a fresh 2-byte NAL unit header
	b.appendWrappedNALU([]byte{0x02, 0x01, 0xCC}, naluTypeDoViEL)
	require.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x01, 0x26, 0x01, 0xAA,
		0x00, 0x00, 0x01, 0x7E, 0x01, 0x02, 0x01, 0xCC,
	}, b.bytes())
}
