package bitstreamconv

import (
	"fmt"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h265"
)

// Codec is the codec of an elementary stream.
type Codec int

// Supported codecs.
const (
	CodecH264 Codec = iota + 1
	CodecH265
)

// String implements fmt.Stringer.
func (c Codec) String() string {
	switch c {
	case CodecH264:
		return "H264"
	case CodecH265:
		return "H265"
	}
	return fmt.Sprintf("unknown (%d)", int(c))
}

// naluType extracts the NAL unit type from the first header byte.
func (c Codec) naluType(b byte) uint8 {
	if c == CodecH264 {
		return b & 0x1F
	}
	return (b >> 1) & 0x3F
}

// isIDR reports whether a NAL unit type starts a random access point.
func (c Codec) isIDR(unitType uint8) bool {
	switch c {
	case CodecH264:
		return unitType == uint8(h264.NALUTypeIDR)

	case CodecH265:
		return unitType == uint8(h265.NALUType_IDR_W_RADL) ||
			unitType == uint8(h265.NALUType_IDR_N_LP) ||
			unitType == uint8(h265.NALUType_CRA_NUT)
	}
	return false
}

// isSlice reports whether a NAL unit type is a non-IDR coded slice.
func (c Codec) isSlice(unitType uint8) bool {
	switch c {
	case CodecH264:
		return unitType == uint8(h264.NALUTypeNonIDR)

	case CodecH265:
		switch h265.NALUType(unitType) {
		case h265.NALUType_TRAIL_N, h265.NALUType_TRAIL_R,
			h265.NALUType_TSA_N, h265.NALUType_TSA_R,
			h265.NALUType_STSA_N, h265.NALUType_STSA_R,
			h265.NALUType_RADL_N, h265.NALUType_RADL_R,
			h265.NALUType_RASL_N, h265.NALUType_RASL_R,
			h265.NALUType_BLA_W_LP, h265.NALUType_BLA_W_RADL,
			h265.NALUType_BLA_N_LP, h265.NALUType_CRA_NUT:
			return true
		}
	}
	return false
}

// paramSetTypes returns the SPS, PPS and prefix SEI NAL unit types of the codec.
func (c Codec) paramSetTypes() (uint8, uint8, uint8) {
	if c == CodecH264 {
		return uint8(h264.NALUTypeSPS), uint8(h264.NALUTypePPS), uint8(h264.NALUTypeSEI)
	}
	return uint8(h265.NALUType_SPS_NUT), uint8(h265.NALUType_PPS_NUT),
		uint8(h265.NALUType_PREFIX_SEI_NUT)
}
