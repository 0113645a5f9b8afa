package bitstreamconv

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h265"

	"github.com/mediaforge/bitstreamconv/pkg/annexb"
)

var naluStartCode = []byte{0x00, 0x00, 0x00, 0x01}

// paramSets caches the Annex-B framed parameter sets extracted from
// avcC/hvcC extradata, plus the state needed to prepend them before the
// first IDR access unit of a coded sequence.
type paramSets struct {
	// width of the NAL length field declared by the extradata (1-4)
	lengthSize int

	// whether the next IDR access unit still needs a parameter-set prefix
	firstIDR bool

	// whether the current access unit carries its own parameter sets
	idrSPSPPSSeen bool

	// Annex-B framed SPS/PPS/VPS
	data []byte
}

// extractParamSetsAVC walks the SPS/PPS records of an avcC atom and reflows
// them into an Annex-B framed cache. A trailing mvcC atom restarts the
// extraction from its embedded SPS/PPS array.
func extractParamSetsAVC(extradata []byte, onWarning func(error)) (*paramSets, error) {
	if len(extradata) < 6 {
		return nil, fmt.Errorf("avcC data too small (%d)", len(extradata))
	}

	pos := 4
	lengthSize := int(extradata[pos]&0x03) + 1
	pos++

	var out []byte
	spsSeen := false
	ppsSeen := false

	unitNb := int(extradata[pos] & 0x1F) // number of sps unit(s)
	pos++
	if unitNb > 0 {
		spsSeen = true
	}

	spsDone := false
	mvcDone := false

	for {
		for ; unitNb > 0; unitNb-- {
			if pos+2 > len(extradata) {
				return nil, errors.New("invalid avcC (truncated unit size)")
			}
			unitSize := int(extradata[pos])<<8 | int(extradata[pos+1])
			pos += 2
			if pos+unitSize > len(extradata) {
				return nil, errors.New("invalid avcC (unit points past end)")
			}
			out = append(out, naluStartCode...)
			out = append(out, extradata[pos:pos+unitSize]...)
			pos += unitSize
		}

		if !spsDone {
			spsDone = true
			if pos < len(extradata) {
				unitNb = int(extradata[pos]) // number of pps unit(s)
				pos++
				if unitNb > 0 {
					ppsSeen = true
				}
			}
			if unitNb > 0 {
				continue
			}
		}

		if !mvcDone {
			mvcDone = true
			if pos+18 <= len(extradata) &&
				bytes.Equal(extradata[pos+8:pos+12], []byte("mvcC")) {
				// start over, taking SPS and PPS from the mvcC atom
				pos += 17
				unitNb = int(extradata[pos] & 0x1F)
				pos++
				spsDone = false
				ppsSeen = false
				continue
			}
		}

		break
	}

	if !spsSeen {
		onWarning(errors.New("SPS missing or invalid, the resulting stream may not play"))
	}
	if !ppsSeen {
		onWarning(errors.New("PPS missing or invalid, the resulting stream may not play"))
	}

	return &paramSets{
		lengthSize: lengthSize,
		firstIDR:   true,
		data:       out,
	}, nil
}

// extractParamSetsHEVC walks the parameter set arrays of a hvcC atom and
// reflows VPS/SPS/PPS records into an Annex-B framed cache.
func extractParamSetsHEVC(extradata []byte, onWarning func(error)) (*paramSets, error) {
	if len(extradata) < 23 {
		return nil, fmt.Errorf("hvcC data too small (%d)", len(extradata))
	}

	pos := 21
	lengthSize := int(extradata[pos]&0x03) + 1
	pos++

	var out []byte
	spsSeen := false
	ppsSeen := false

	arrayNb := int(extradata[pos])
	pos++

	for ; arrayNb > 0; arrayNb-- {
		if pos+3 > len(extradata) {
			return nil, errors.New("invalid hvcC (truncated array header)")
		}
		nalType := h265.NALUType(extradata[pos] & 0x3F)
		unitNb := int(extradata[pos+1])<<8 | int(extradata[pos+2])
		pos += 3

		if nalType == h265.NALUType_SPS_NUT && unitNb > 0 {
			spsSeen = true
		} else if nalType == h265.NALUType_PPS_NUT && unitNb > 0 {
			ppsSeen = true
		}

		for ; unitNb > 0; unitNb-- {
			if pos+2 > len(extradata) {
				return nil, errors.New("invalid hvcC (truncated unit size)")
			}
			unitSize := int(extradata[pos])<<8 | int(extradata[pos+1])
			pos += 2
			if pos+unitSize > len(extradata) {
				return nil, errors.New("invalid hvcC (unit points past end)")
			}

			if nalType != h265.NALUType_SPS_NUT &&
				nalType != h265.NALUType_PPS_NUT &&
				nalType != h265.NALUType_VPS_NUT {
				pos += unitSize
				continue
			}

			out = append(out, naluStartCode...)
			out = append(out, extradata[pos:pos+unitSize]...)
			pos += unitSize
		}
	}

	if !spsSeen {
		onWarning(errors.New("SPS missing or invalid, the resulting stream may not play"))
	}
	if !ppsSeen {
		onWarning(errors.New("PPS missing or invalid, the resulting stream may not play"))
	}

	return &paramSets{
		lengthSize: lengthSize,
		firstIDR:   true,
		data:       out,
	}, nil
}

// synthesizeAVCC builds an avcC atom from Annex-B framed H264 extradata.
// Extradata that doesn't start with a start code is returned as-is.
func synthesizeAVCC(extradata []byte) ([]byte, error) {
	if len(extradata) <= 6 {
		return nil, fmt.Errorf("extradata too small (%d)", len(extradata))
	}

	if !bytes.HasPrefix(extradata, []byte{0x00, 0x00, 0x00, 0x01}) &&
		!bytes.HasPrefix(extradata, []byte{0x00, 0x00, 0x01}) {
		out := make([]byte, len(extradata))
		copy(out, extradata)
		return out, nil
	}

	buf := annexb.ReframeLengthPrefixed(extradata)

	var sps, pps []byte
	for pos := 0; len(buf)-pos > 4; {
		size := int(binary.BigEndian.Uint32(buf[pos:]))
		if size > len(buf)-pos-4 {
			size = len(buf) - pos - 4
		}
		pos += 4
		nalu := buf[pos : pos+size]

		switch h264.NALUType(nalu[0] & 0x1F) {
		case h264.NALUTypeSPS:
			sps = nalu
		case h264.NALUTypePPS:
			pps = nalu
		}

		pos += size
	}

	if sps == nil || pps == nil || len(sps) < 4 || len(sps) > 0xFFFF || len(pps) > 0xFFFF {
		return nil, errors.New("SPS or PPS missing from extradata")
	}

	var out bytes.Buffer
	out.WriteByte(1)      // configurationVersion
	out.WriteByte(sps[1]) // AVCProfileIndication
	out.WriteByte(sps[2]) // profile_compatibility
	out.WriteByte(sps[3]) // AVCLevelIndication
	out.WriteByte(0xFF)   // 6 bits reserved + 2 bits NAL size length - 1
	out.WriteByte(0xE1)   // 3 bits reserved + 5 bits number of SPS

	var size [2]byte
	binary.BigEndian.PutUint16(size[:], uint16(len(sps)))
	out.Write(size[:])
	out.Write(sps)

	out.WriteByte(1) // number of PPS
	binary.BigEndian.PutUint16(size[:], uint16(len(pps)))
	out.Write(size[:])
	out.Write(pps)

	return out.Bytes(), nil
}
