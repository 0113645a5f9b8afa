// Package hdr contains HDR metadata types shared by the converter and its
// collaborators.
package hdr

import (
	"fmt"
)

// Type is the HDR type of a stream.
type Type int

// HDR types.
const (
	TypeNone Type = iota
	TypeHDR10
	TypeDolbyVision
	TypeHLG
	TypeHDR10Plus
)

var typeLabels = map[Type]string{
	TypeNone:        "none",
	TypeHDR10:       "HDR10",
	TypeDolbyVision: "Dolby Vision",
	TypeHLG:         "HLG",
	TypeHDR10Plus:   "HDR10+",
}

// String implements fmt.Stringer.
func (t Type) String() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return fmt.Sprintf("unknown (%d)", int(t))
}

// PeakBrightnessSource selects how the peak brightness of an HDR10+ scene is
// derived when synthesizing Dolby Vision metadata.
type PeakBrightnessSource int

// Peak brightness sources.
const (
	PeakBrightnessSourceHistogram PeakBrightnessSource = iota
	PeakBrightnessSourceHistogram99
	PeakBrightnessSourceMaxSCL
	PeakBrightnessSourceMaxSCLClip
)

// StaticMetadataInfo accumulates HDR static metadata (mastering display
// colour volume and content light level) across SEI messages.
// Luminance values use the SEI units (0.0001 cd/m2).
type StaticMetadataInfo struct {
	HasMDCVMetadata bool
	MaxLuminance    uint32
	MinLuminance    uint32
	ColourPrimaries string

	HasCLLMetadata bool
	MaxCLL         uint16
	MaxFALL        uint16
}
