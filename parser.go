package bitstreamconv

import (
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"

	"github.com/mediaforge/bitstreamconv/pkg/annexb"
)

// hasSEIRecoveryPoint reports whether an Annex-B framed SEI NALU carries a
// recovery point message (payload type 6). The walk skips a 1-byte NAL
// header. HEVC prefix SEI has a 2-byte header, so there the walk starts one
// byte early and only incidentally finds a recovery point; do not "fix" the
// offset without also revisiting the start-decode conditions that call this
// on HEVC units.
func hasSEIRecoveryPoint(buf []byte) bool {
	pos := 1 // skip NAL header

	for pos < len(buf) {
		payloadType := 0
		for pos < len(buf) && buf[pos] == 0xFF {
			payloadType += 255
			pos++
		}
		if pos >= len(buf) {
			return false
		}
		payloadType += int(buf[pos])
		pos++

		payloadSize := 0
		for pos < len(buf) && buf[pos] == 0xFF {
			payloadSize += 255
			pos++
		}
		if pos >= len(buf) {
			return false
		}
		payloadSize += int(buf[pos])
		pos++

		if payloadType == 6 {
			return true
		}

		pos += payloadSize
		if pos >= len(buf) || buf[pos] == 0x80 { // rbsp_trailing_bits
			return false
		}
	}

	return false
}

// CanStartDecode scans an Annex-B framed H264 access unit and reports
// whether a decoder can start from it: it contains an SPS, an IDR slice, or
// an SEI recovery point.
func CanStartDecode(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}

	end := len(buf)
	nalStart := annexb.FindStartCode(buf, 0) + 1

	for nalStart < end {
		for nalStart < end && buf[nalStart] == 0 {
			nalStart++
		}
		if nalStart == end {
			break
		}
		nalStart++
		nalEnd := annexb.FindStartCode(buf, nalStart)

		if nalStart < nalEnd {
			switch h264.NALUType(buf[nalStart] & 0x1F) {
			case h264.NALUTypeSPS, h264.NALUTypeIDR:
				return true
			case h264.NALUTypeSEI:
				if hasSEIRecoveryPoint(buf[nalStart:nalEnd]) {
					return true
				}
			}
		}

		nalStart = nalEnd + 1
	}

	return false
}
