package bitstreamconv

import (
	"github.com/mediaforge/bitstreamconv/pkg/dovi"
	"github.com/mediaforge/bitstreamconv/pkg/hdr"
)

// StreamInfo describes the stream being converted, as signaled by the
// demuxer. The converter reads the extradata at open time and updates the
// HDR and Dolby Vision fields as it learns about the stream.
type StreamInfo struct {
	Codec Codec

	// codec-specific configuration in avcC/hvcC format. A stream whose
	// extradata declares 3-byte NAL length fields gets a single-byte
	// in-place patch at open time (3-byte to 4-byte migration).
	ExtraData []byte

	// signaled HDR type
	HDRType hdr.Type

	DOVI       dovi.ConfigurationRecord
	DOVIELType dovi.ELType
}
