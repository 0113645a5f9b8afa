package dovi

import (
	"github.com/mediaforge/bitstreamconv/pkg/hdr"
)

// RPUMetadata is the metadata extracted from a RPU NAL unit.
type RPUMetadata struct {
	// whether the RPU header could be parsed
	HasHeader bool

	// guessed Dolby Vision profile
	Profile int

	// enhancement layer type declared by the header (profiles 4 and 7)
	ELType ELType

	// level-1 frame metadata, nil when absent
	Frame *FrameMetadata

	SourceMinPQ uint16
	SourceMaxPQ uint16

	HasLevel6Metadata bool
	Level6MaxLum      uint16
	Level6MinLum      uint16
	Level6MaxCLL      uint16
	Level6MaxFALL     uint16

	MetaVersion string
}

// ConvertResult is the outcome of a RPU rewrite.
type ConvertResult struct {
	// rewritten RPU NAL unit payload
	RPU []byte

	// enhancement layer type declared by the original profile-7 header
	ELType ELType
}

// RPUProcessor parses, rewrites and synthesizes Dolby Vision RPU NAL units.
// Implementations typically wrap an external RPU library; NopRPUProcessor can
// be used when none is available.
type RPUProcessor interface {
	// Convert rewrites a profile-7 RPU according to mode.
	// It returns nil when no rewrite was performed.
	Convert(rpu []byte, mode Mode) (*ConvertResult, error)

	// Info extracts frame-level and stream-level metadata from a RPU.
	// It returns nil when the RPU cannot be parsed.
	Info(rpu []byte) (*RPUMetadata, error)

	// SynthesizeFromHDR10Plus builds a profile-8, base-layer-only RPU from
	// a raw HDR10+ ITU-T T.35 payload and the accumulated HDR static
	// metadata. It returns nil when synthesis is not possible.
	SynthesizeFromHDR10Plus(
		t35 []byte,
		source hdr.PeakBrightnessSource,
		static hdr.StaticMetadataInfo,
	) ([]byte, error)
}

// NopRPUProcessor is a RPUProcessor that performs no parsing and no
// conversion, used when no RPU library is available.
type NopRPUProcessor struct{}

// Convert implements RPUProcessor.
func (NopRPUProcessor) Convert(_ []byte, _ Mode) (*ConvertResult, error) {
	return nil, nil
}

// Info implements RPUProcessor.
func (NopRPUProcessor) Info(_ []byte) (*RPUMetadata, error) {
	return nil, nil
}

// SynthesizeFromHDR10Plus implements RPUProcessor.
func (NopRPUProcessor) SynthesizeFromHDR10Plus(
	_ []byte,
	_ hdr.PeakBrightnessSource,
	_ hdr.StaticMetadataInfo,
) ([]byte, error) {
	return nil, nil
}
