package seqheader

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInspectMPEG2(t *testing.T) {
	// 720x576, 16:9, 25 fps
	data := []byte{
		0x00, 0x00, 0x01, 0xB3,
		0x2D, 0x02, 0x40, 0x33,
		0xFF, 0xFF, 0xE0, 0xA0,
	}

	var seq MPEG2Sequence
	require.True(t, InspectMPEG2(data, &seq))
	require.Equal(t, MPEG2Sequence{
		Width:     720,
		Height:    576,
		FPSRate:   25000,
		FPSScale:  1000,
		Ratio:     16.0 / 9,
		RatioInfo: 0x03,
	}, seq)

	// same header again, nothing changed
	require.False(t, InspectMPEG2(data, &seq))
}

func TestInspectMPEG2NoHeader(t *testing.T) {
	var seq MPEG2Sequence
	require.False(t, InspectMPEG2([]byte{0x00, 0x00, 0x01, 0x00, 0xAA}, &seq))
	require.Equal(t, MPEG2Sequence{}, seq)
}

var casesInspectH264 = []struct {
	name string
	byts []byte
	seq  H264Sequence
}{
	{
		"1920x1080 baseline",
		[]byte{
			0x00, 0x00, 0x00, 0x01,
			0x67, 0x42, 0xc0, 0x28, 0xd9, 0x00, 0x78, 0x02,
			0x27, 0xe5, 0x84, 0x00, 0x00, 0x03, 0x00, 0x04,
			0x00, 0x00, 0x03, 0x00, 0xf0, 0x3c, 0x60, 0xc9,
			0x20,
		},
		H264Sequence{
			Width:  1920,
			Height: 1080,
		},
	},
	{
		"1920x1080 high",
		[]byte{
			0x00, 0x00, 0x00, 0x01,
			0x67, 0x64, 0x00, 0x28, 0xac, 0xd9, 0x40, 0x78,
			0x02, 0x27, 0xe5, 0x84, 0x00, 0x00, 0x03, 0x00,
			0x04, 0x00, 0x00, 0x03, 0x00, 0xf0, 0x3c, 0x60,
			0xc6, 0x58,
		},
		H264Sequence{
			Width:  1920,
			Height: 1080,
		},
	},
}

func TestInspectH264(t *testing.T) {
	for _, ca := range casesInspectH264 {
		t.Run(ca.name, func(t *testing.T) {
			var seq H264Sequence
			require.True(t, InspectH264(ca.byts, &seq))
			require.Equal(t, ca.seq, seq)

			// same SPS again, nothing changed
			require.False(t, InspectH264(ca.byts, &seq))
		})
	}
}

func TestInspectH264NoSPS(t *testing.T) {
	var seq H264Sequence
	require.False(t, InspectH264([]byte{0x00, 0x00, 0x01, 0x41, 0xAA}, &seq))
	require.Equal(t, H264Sequence{}, seq)
}
