package bitstreamconv

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h265"

	"github.com/mediaforge/bitstreamconv/pkg/annexb"
	"github.com/mediaforge/bitstreamconv/pkg/dovi"
	"github.com/mediaforge/bitstreamconv/pkg/hdr"
)

// ErrNotOpened is returned by Convert when Open was not called or failed.
var ErrNotOpened = errors.New("converter not opened")

// Converter rewrites H264/HEVC access units between length-prefixed
// (avcC/hvcC) framing and Annex-B framing, extracting and rewriting HDR
// metadata along the way. A Converter is bound to one stream and must not be
// used from multiple goroutines at once.
type Converter struct {
	// the stream being converted
	Stream *StreamInfo

	// destination of extracted metadata.
	// It defaults to NopMetadataSink.
	Sink MetadataSink

	// Dolby Vision RPU collaborator.
	// It defaults to NopRPUProcessor, which disables RPU parsing,
	// conversion and HDR10+ synthesis.
	RPU dovi.RPUProcessor

	// called when a non-fatal condition is found.
	// It defaults to a no-op.
	OnWarning func(error)

	// config toggles
	convertDOVI               dovi.Mode
	convertHDR10Plus          bool
	preferHDR10PlusConversion bool
	dualPriorityHDR10Plus     bool
	removeDOVI                bool
	removeHDR10Plus           bool
	peakBrightnessSource      hdr.PeakBrightnessSource

	// session state
	opened            bool
	toAnnexB          bool
	initialHDRType    hdr.Type
	convertBitstream  bool
	convertBytestream bool
	convert3To4       bool
	combine           bool
	firstFrame        bool
	startDecode       bool
	paramSets         *paramSets
	staticMetadata    hdr.StaticMetadataInfo

	converted []byte
	input     []byte
}

// SetConvertDOVI sets the RPU conversion mode applied to profile-7 sources.
func (c *Converter) SetConvertDOVI(mode dovi.Mode) {
	c.convertDOVI = mode
}

// SetConvertHDR10Plus enables synthesizing a Dolby Vision RPU from HDR10+
// metadata found in the SEI prefix.
func (c *Converter) SetConvertHDR10Plus(v bool) {
	c.convertHDR10Plus = v
}

// SetPreferHDR10PlusConversion makes HDR10+ authoritative on dual-track
// sources so that conversion can apply.
func (c *Converter) SetPreferHDR10PlusConversion(v bool) {
	c.preferHDR10PlusConversion = v
}

// SetDualPriorityHDR10Plus reports HDR10+ as the primary HDR type of a
// dual-track source while keeping the Dolby Vision track untouched.
func (c *Converter) SetDualPriorityHDR10Plus(v bool) {
	c.dualPriorityHDR10Plus = v
}

// SetRemoveDOVI strips Dolby Vision RPU and EL NAL units from the output.
func (c *Converter) SetRemoveDOVI(v bool) {
	c.removeDOVI = v
}

// SetRemoveHDR10Plus strips HDR10+ SEI messages from the output.
// When HDR10+ conversion applies to the stream, conversion wins and the
// payload is consumed by the synthesized RPU instead.
func (c *Converter) SetRemoveHDR10Plus(v bool) {
	c.removeHDR10Plus = v
}

// SetPeakBrightnessSource selects the HDR10+ field used as peak brightness
// when synthesizing a RPU.
func (c *Converter) SetPeakBrightnessSource(s hdr.PeakBrightnessSource) {
	c.peakBrightnessSource = s
}

func (c *Converter) warn(err error) {
	if c.OnWarning != nil {
		c.OnWarning(err)
	}
}

// Open configures the converter for one direction. When toAnnexB is true,
// length-prefixed access units are rewritten with start codes and the
// parameter sets cached from extradata; otherwise Annex-B access units are
// re-framed with length prefixes. Open fails on unsupported codecs and on
// missing or malformed extradata.
func (c *Converter) Open(toAnnexB bool) error {
	if c.Sink == nil {
		c.Sink = NopMetadataSink{}
	}
	if c.RPU == nil {
		c.RPU = dovi.NopRPUProcessor{}
	}

	c.toAnnexB = toAnnexB
	c.initialHDRType = c.Stream.HDRType
	c.firstFrame = true
	c.startDecode = true
	c.staticMetadata = hdr.StaticMetadataInfo{}
	c.Sink.SetSourceHDRType(c.Stream.HDRType)

	extra := c.Stream.ExtraData

	switch c.Stream.Codec {
	case CodecH264:
		if len(extra) < 7 {
			return fmt.Errorf("avcC data too small or missing (%d)", len(extra))
		}

		if toAnnexB {
			// valid avcC data always starts with the value 1 (version)
			if extra[0] != 1 {
				return errors.New("invalid avcC")
			}
			ps, err := extractParamSetsAVC(extra, c.warn)
			if err != nil {
				// survivable, pass access units through untouched
				c.warn(err)
			} else {
				c.paramSets = ps
				c.convertBitstream = true
			}
			c.opened = true
			return nil
		}

		if extra[0] != 1 {
			if !bytes.HasPrefix(extra, []byte{0x00, 0x00, 0x00, 0x01}) &&
				!bytes.HasPrefix(extra, []byte{0x00, 0x00, 0x01}) {
				return errors.New("invalid avcC atom data")
			}

			// raw Annex-B stream, full re-packaging needed.
			// Build a valid avcC atom from the Annex-B parameter sets.
			avcc, err := synthesizeAVCC(extra)
			if err != nil {
				return err
			}
			c.Stream.ExtraData = avcc
			c.convertBytestream = true
			c.opened = true
			return nil
		}

		if extra[4] == 0xFE {
			// content from an encoder that thinks 3-byte NAL sizes
			// are valid, convert them to 4 bytes
			extra[4] = 0xFF
			c.convert3To4 = true
		}
		c.opened = true
		return nil

	case CodecH265:
		if len(extra) < 23 {
			return fmt.Errorf("hvcC data too small or missing (%d)", len(extra))
		}

		if toAnnexB {
			// hvcC with configurationVersion 0 is tolerated until
			// 14496-15 3rd edition settles it at 1
			if extra[0] == 0 && extra[1] == 0 && extra[2] <= 1 {
				return errors.New("invalid hvcC")
			}
			ps, err := extractParamSetsHEVC(extra, c.warn)
			if err != nil {
				c.warn(err)
			} else {
				c.paramSets = ps
				c.convertBitstream = true
			}
			c.opened = true
			return nil
		}

		if extra[0] != 1 {
			return errors.New("invalid hvcC atom data")
		}

		if (extra[4] & 0x3) == 2 {
			extra[4] |= 0x03
			c.convert3To4 = true
		}
		c.opened = true
		return nil
	}

	return fmt.Errorf("unsupported codec: %v", c.Stream.Codec)
}

// Close releases the parameter-set cache and the conversion buffer and
// resets all mode flags.
func (c *Converter) Close() {
	c.paramSets = nil
	c.converted = nil
	c.input = nil
	c.convertBitstream = false
	c.convertBytestream = false
	c.convert3To4 = false
	c.combine = false
	c.opened = false
}

// Convert rewrites one access unit. On failure no partial output is kept and
// the access unit should be dropped by the caller.
func (c *Converter) Convert(data []byte, pts time.Duration) error {
	c.converted = nil
	c.input = nil

	if !c.opened {
		return ErrNotOpened
	}
	if data == nil {
		return errors.New("no access unit")
	}

	if c.toAnnexB {
		if !c.convertBitstream {
			c.input = data
			return nil
		}

		out, err := c.bitstreamToAnnexB(data, pts)
		if err != nil {
			return err
		}
		c.converted = out
		return nil
	}

	c.input = data

	switch {
	case c.convertBytestream:
		c.converted = annexb.ReframeLengthPrefixed(data)

	case c.convert3To4:
		out := make([]byte, 0, len(data)+len(data)/3)
		for pos := 0; pos < len(data); {
			if pos+3 > len(data) {
				c.input = nil
				return errors.New("invalid access unit (truncated NAL length)")
			}
			nalSize := int(data[pos])<<16 | int(data[pos+1])<<8 | int(data[pos+2])
			pos += 3
			if nalSize <= 0 || pos+nalSize > len(data) {
				c.input = nil
				return errors.New("invalid access unit (NAL length points past end)")
			}
			out = binary.BigEndian.AppendUint32(out, uint32(nalSize))
			out = append(out, data[pos:pos+nalSize]...)
			pos += nalSize
		}
		c.converted = out
	}

	return nil
}

// bitstreamToAnnexB rewrites one length-prefixed access unit with start
// codes, prefixing cached parameter sets before the first IDR and running
// the HDR metadata pipeline on the way.
func (c *Converter) bitstreamToAnnexB(data []byte, pts time.Duration) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("invalid access unit (empty)")
	}

	nalSPS, nalPPS, nalSEI := c.Stream.Codec.paramSetTypes()
	lengthSize := c.paramSets.lengthSize

	out := &outputBuffer{}
	st := &seiState{}

	for pos := 0; pos < len(data); {
		if pos+lengthSize > len(data) {
			return nil, errors.New("invalid access unit (truncated NAL length)")
		}

		nalSize := 0
		for i := 0; i < lengthSize; i++ {
			nalSize = nalSize<<8 | int(data[pos+i])
		}
		pos += lengthSize

		if nalSize <= 0 || pos+nalSize > len(data) {
			return nil, errors.New("invalid access unit (NAL length points past end)")
		}

		nalu := data[pos : pos+nalSize]
		unitType := c.Stream.Codec.naluType(nalu[0])

		// don't add parameter sets when the unit already contains them
		if c.paramSets.firstIDR && (unitType == nalSPS || unitType == nalPPS) {
			c.paramSets.idrSPSPPSSeen = true
		}

		if !c.startDecode && (unitType == nalSPS || c.Stream.Codec.isIDR(unitType) ||
			(unitType == nalSEI && hasSEIRecoveryPoint(nalu))) {
			c.startDecode = true
		}

		switch {
		case c.paramSets.firstIDR && c.Stream.Codec.isIDR(unitType) && !c.paramSets.idrSPSPPSSeen:
			// prepend only to the first access unit of an IDR picture
			out.appendNALU(c.paramSets.data, nalu, unitType)
			c.paramSets.firstIDR = false

		default:
			if !c.paramSets.firstIDR && c.Stream.Codec.isSlice(unitType) {
				c.paramSets.firstIDR = true
				c.paramSets.idrSPSPPSSeen = false
			}

			switch {
			case c.Stream.Codec == CodecH265 && unitType == nalSEI:
				c.processSEIPrefix(nalu, out, st)

			case c.Stream.Codec == CodecH265 && unitType == naluTypeDoViRPU:
				if !c.removeDOVI && !st.convert {
					c.processDoViRPU(nalu, out, pts)
				}

			case c.Stream.Codec == CodecH265 && unitType == naluTypeDoViEL:
				if !c.removeDOVI && !st.convert && c.convertDOVI == dovi.ModeNone {
					out.appendNALU(nil, nalu, unitType)
				}

			default:
				out.appendNALU(nil, nalu, unitType)
			}
		}

		pos += nalSize
	}

	// when converting HDR10+, the RPU goes last in the access unit
	if st.convert {
		c.addDoViRPUNALU(st.meta, out, pts)
	}

	c.firstFrame = false

	return out.bytes(), nil
}

// ConvertDualLayer merges a profile-7 dual-track access unit: the base layer
// is scanned first, then every enhancement-layer NAL unit is repackaged
// under the Dolby Vision EL type. An end-of-sequence NAL unit found in the
// base layer is re-appended last.
func (c *Converter) ConvertDualLayer(bl []byte, el []byte, pts time.Duration) error {
	c.converted = nil
	c.input = nil

	if !c.opened {
		return ErrNotOpened
	}
	if bl == nil || el == nil {
		return errors.New("no access unit")
	}
	if c.Stream.Codec != CodecH265 {
		return fmt.Errorf("unsupported codec for dual layer: %v", c.Stream.Codec)
	}

	if !c.convertBitstream {
		bl = annexb.ReframeLengthPrefixed(bl)
		el = annexb.ReframeLengthPrefixed(el)
	}

	out := &outputBuffer{}
	st := &seiState{}

	var eos []byte

	// base layer
	for pos := 0; len(bl)-pos > 4; {
		size := int(binary.BigEndian.Uint32(bl[pos:]))
		if size > len(bl)-pos-4 {
			size = len(bl) - pos - 4
		}
		pos += 4
		nalu := bl[pos : pos+size]
		unitType := c.Stream.Codec.naluType(nalu[0])

		switch h265.NALUType(unitType) {
		case h265.NALUType_PREFIX_SEI_NUT:
			c.processSEIPrefix(nalu, out, st)

		case h265.NALUType_EOS_NUT: // end of sequence, defer to the tail
			eos = nalu

		default:
			out.appendNALU(nil, nalu, unitType)
		}

		c.Stream.DOVI.BLPresent = true

		pos += size
	}

	// enhancement layer
	for pos := 0; len(el)-pos > 4; {
		size := int(binary.BigEndian.Uint32(el[pos:]))
		if size > len(el)-pos-4 {
			size = len(el) - pos - 4
		}
		pos += 4
		nalu := el[pos : pos+size]
		unitType := c.Stream.Codec.naluType(nalu[0])

		switch unitType {
		case naluTypeDoViRPU:
			if !c.removeDOVI && !st.convert {
				c.processDoViRPU(nalu, out, pts)
			}

		default:
			// repackage everything else as enhancement layer
			if !c.removeDOVI && !st.convert && c.convertDOVI == dovi.ModeNone {
				out.appendWrappedNALU(nalu, naluTypeDoViEL)
			}
		}

		c.Stream.DOVI.ELPresent = true

		pos += size
	}

	if st.convert {
		c.addDoViRPUNALU(st.meta, out, pts)
	}

	if eos != nil {
		out.appendNALU(nil, eos, uint8(h265.NALUType_EOS_NUT))
	}

	c.converted = out.bytes()
	c.combine = true
	c.firstFrame = false

	return nil
}

// Buffer returns the output of the last Convert call: the converted access
// unit, or the original input when no conversion was needed.
func (c *Converter) Buffer() []byte {
	if (c.convertBitstream || c.convertBytestream || c.convert3To4 || c.combine) &&
		c.converted != nil {
		return c.converted
	}
	return c.input
}

// ExtraData returns the configuration the decoder should use: the Annex-B
// parameter-set cache when converting to Annex-B, the stream extradata
// otherwise.
func (c *Converter) ExtraData() []byte {
	if c.convertBitstream {
		return c.paramSets.data
	}
	return c.Stream.ExtraData
}

// NeedsConvert reports whether Convert rewrites access units instead of
// passing them through.
func (c *Converter) NeedsConvert() bool {
	return c.convertBitstream || c.convertBytestream || c.convert3To4
}

// ResetStartDecode arms start-decode tracking: CanStartDecode returns false
// until a converted access unit carries an SPS, an IDR slice or an SEI
// recovery point.
func (c *Converter) ResetStartDecode() {
	c.startDecode = false
}

// CanStartDecode reports whether a decoder can start from the access units
// seen since the last ResetStartDecode call.
func (c *Converter) CanStartDecode() bool {
	return c.startDecode
}
