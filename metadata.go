package bitstreamconv

import (
	"time"

	"github.com/mediaforge/bitstreamconv/pkg/dovi"
	"github.com/mediaforge/bitstreamconv/pkg/hdr"
	"github.com/mediaforge/bitstreamconv/pkg/sei"
)

// seiState carries the HDR10+ payload found in the SEI prefix of the access
// unit being converted, to be synthesized into a RPU at the end of it.
type seiState struct {
	meta    []byte
	convert bool
}

// applyMasteringDisplayColourVolume folds a mastering display message into
// the accumulated static metadata. Identical values do not re-trigger a push.
func (c *Converter) applyMasteringDisplayColourVolume(m *sei.MasteringDisplayColourVolume) bool {
	if c.staticMetadata.HasMDCVMetadata &&
		c.staticMetadata.MaxLuminance == m.MaxDisplayMasteringLuminance &&
		c.staticMetadata.MinLuminance == m.MinDisplayMasteringLuminance {
		return false
	}

	c.staticMetadata.HasMDCVMetadata = true
	c.staticMetadata.MaxLuminance = m.MaxDisplayMasteringLuminance
	c.staticMetadata.MinLuminance = m.MinDisplayMasteringLuminance
	c.staticMetadata.ColourPrimaries = m.PrimariesText()
	return true
}

// applyContentLightLevel folds a content light level message into the
// accumulated static metadata.
func (c *Converter) applyContentLightLevel(l *sei.ContentLightLevel) bool {
	if c.staticMetadata.HasCLLMetadata &&
		c.staticMetadata.MaxCLL == l.MaxContentLightLevel &&
		c.staticMetadata.MaxFALL == l.MaxFrameAverageLightLevel {
		return false
	}

	c.staticMetadata.HasCLLMetadata = true
	c.staticMetadata.MaxCLL = l.MaxContentLightLevel
	c.staticMetadata.MaxFALL = l.MaxFrameAverageLightLevel
	return true
}

// processSEIPrefix inspects a prefix SEI NAL unit for HDR static metadata
// and HDR10+ payloads, then re-emits it, stripped of HDR10+ when conversion
// or removal applies.
func (c *Converter) processSEIPrefix(nalu []byte, out *outputBuffer, st *seiState) {
	unitType := c.Stream.Codec.naluType(nalu[0])

	msgs, err := sei.Unmarshal(nalu)
	if err != nil {
		c.warn(err)
		out.appendNALU(nil, nalu, unitType)
		return
	}

	update := false

	if m := sei.FindMasteringDisplayColourVolume(msgs); m != nil {
		update = c.applyMasteringDisplayColourVolume(m) || update
	}
	if l := sei.FindContentLightLevel(msgs); l != nil {
		update = c.applyContentLightLevel(l) || update
	}
	if update {
		c.Sink.SetHDRStaticMetadata(c.staticMetadata)
	}

	copyThrough := true

	if t35 := sei.FindHDR10Plus(msgs); t35 != nil {
		// the source declared Dolby Vision and carries HDR10+ too
		isDual := c.initialHDRType == hdr.TypeDolbyVision
		considerAsHDR10Plus := !isDual || c.dualPriorityHDR10Plus || c.preferHDR10PlusConversion

		if c.firstFrame {
			if considerAsHDR10Plus {
				c.Stream.HDRType = hdr.TypeHDR10Plus
				c.Sink.SetSourceHDRType(hdr.TypeHDR10Plus)
				if isDual {
					c.Sink.SetAdditionalHDRType(hdr.TypeDolbyVision)
				}
			} else if isDual {
				c.Sink.SetAdditionalHDRType(hdr.TypeHDR10Plus)
			}
		}

		convert := considerAsHDR10Plus && c.convertHDR10Plus && !c.dualPriorityHDR10Plus

		if convert {
			st.meta = t35
			st.convert = true
		}

		if convert || c.removeHDR10Plus {
			// remove, carrying forward the remaining messages
			stripped, err2 := sei.RemoveHDR10Plus(nalu)
			if err2 != nil {
				c.warn(err2)
			} else if stripped != nil {
				out.appendNALU(nil, stripped, unitType)
			}
			copyThrough = false
		}
	}

	if copyThrough {
		out.appendNALU(nil, nalu, unitType)
	}
}

// processDoViRPU optionally rewrites a Dolby Vision RPU through the injected
// processor, extracts its metadata and emits it.
func (c *Converter) processDoViRPU(nalu []byte, out *outputBuffer, pts time.Duration) {
	if c.convertDOVI != dovi.ModeNone {
		res, err := c.RPU.Convert(nalu, c.convertDOVI)
		if err != nil {
			c.warn(err)
		} else if res != nil {
			// capture the source configuration, about to be replaced
			if c.firstFrame {
				c.Sink.SetSourceDOVIStreamInfo(dovi.StreamInfo{
					ELType:    res.ELType,
					Config:    c.Stream.DOVI,
					HasConfig: c.Stream.DOVI != dovi.ConfigurationRecord{},
					HasHeader: true,
				})
			}

			nalu = res.RPU

			// the EL is removed in both conversion cases
			c.Stream.DOVI.ELPresent = false
			if c.convertDOVI == dovi.ModeTo81 {
				c.Stream.DOVI.Profile = 8
				c.Stream.DOVI.BLSignalCompatibilityID = 1
			}
		}
	}

	c.pushRPUInfo(nalu, pts)

	out.appendNALU(nil, nalu, naluTypeDoViRPU)
}

// pushRPUInfo extracts frame metadata from a RPU and, on the first frame,
// the stream-level metadata and configuration.
func (c *Converter) pushRPUInfo(nalu []byte, pts time.Duration) {
	info, err := c.RPU.Info(nalu)
	if err != nil {
		c.warn(err)
		return
	}
	if info == nil {
		return
	}

	if info.Frame != nil {
		frame := *info.Frame
		frame.PTS = pts
		c.Sink.SetDOVIFrameMetadata(frame)
	}

	if !c.firstFrame {
		return
	}

	c.Sink.SetDOVIStreamMetadata(dovi.StreamMetadata{
		SourceMinPQ:       info.SourceMinPQ,
		SourceMaxPQ:       info.SourceMaxPQ,
		HasLevel6Metadata: info.HasLevel6Metadata,
		Level6MaxLum:      info.Level6MaxLum,
		Level6MinLum:      info.Level6MinLum,
		Level6MaxCLL:      info.Level6MaxCLL,
		Level6MaxFALL:     info.Level6MaxFALL,
		MetaVersion:       info.MetaVersion,
	})

	elType := dovi.ELTypeNone
	if info.Profile == 4 || info.Profile == 7 {
		elType = info.ELType
	}
	c.Stream.DOVIELType = elType

	c.Sink.SetDOVIStreamInfo(dovi.StreamInfo{
		ELType:    elType,
		Config:    c.Stream.DOVI,
		HasConfig: c.Stream.DOVI != dovi.ConfigurationRecord{},
		HasHeader: info.HasHeader,
	})
}

// addDoViRPUNALU synthesizes a profile-8, base-layer-only RPU from the
// HDR10+ payload cached during SEI processing and appends it.
func (c *Converter) addDoViRPUNALU(t35 []byte, out *outputBuffer, pts time.Duration) {
	nalu, err := c.RPU.SynthesizeFromHDR10Plus(t35, c.peakBrightnessSource, c.staticMetadata)
	if err != nil {
		c.warn(err)
		return
	}
	if nalu == nil {
		return
	}

	if c.firstFrame {
		c.Stream.HDRType = hdr.TypeDolbyVision
		c.Stream.DOVI = dovi.ConfigurationRecord{
			VersionMajor:            1,
			VersionMinor:            0,
			Profile:                 8,
			Level:                   6,
			RPUPresent:              true,
			ELPresent:               false,
			BLPresent:               true,
			BLSignalCompatibilityID: 1,
		}
	}

	c.pushRPUInfo(nalu, pts)

	out.appendNALU(nil, nalu, naluTypeDoViRPU)
}
