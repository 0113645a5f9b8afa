package bitstreamconv

import (
	"github.com/mediaforge/bitstreamconv/pkg/dovi"
	"github.com/mediaforge/bitstreamconv/pkg/hdr"
)

// MetadataSink receives the stream and frame metadata extracted during
// conversion. All pushes are last-write-wins snapshots, not deltas. The
// converter calls the sink from the thread that performs the conversion.
type MetadataSink interface {
	// SetSourceHDRType reports the primary HDR type of the source.
	SetSourceHDRType(t hdr.Type)

	// SetAdditionalHDRType reports the secondary HDR type of a dual-track
	// source (e.g. Dolby Vision with embedded HDR10+).
	SetAdditionalHDRType(t hdr.Type)

	// SetDOVIFrameMetadata reports per-frame Dolby Vision metadata.
	SetDOVIFrameMetadata(m dovi.FrameMetadata)

	// SetDOVIStreamMetadata reports per-stream Dolby Vision metadata.
	SetDOVIStreamMetadata(m dovi.StreamMetadata)

	// SetDOVIStreamInfo reports the Dolby Vision configuration of the
	// stream as emitted by the converter.
	SetDOVIStreamInfo(i dovi.StreamInfo)

	// SetSourceDOVIStreamInfo reports the Dolby Vision configuration of
	// the source, captured before a RPU rewrite replaces it.
	SetSourceDOVIStreamInfo(i dovi.StreamInfo)

	// SetHDRStaticMetadata reports accumulated HDR static metadata.
	SetHDRStaticMetadata(m hdr.StaticMetadataInfo)
}

// NopMetadataSink is a MetadataSink that discards everything.
type NopMetadataSink struct{}

// SetSourceHDRType implements MetadataSink.
func (NopMetadataSink) SetSourceHDRType(hdr.Type) {}

// SetAdditionalHDRType implements MetadataSink.
func (NopMetadataSink) SetAdditionalHDRType(hdr.Type) {}

// SetDOVIFrameMetadata implements MetadataSink.
func (NopMetadataSink) SetDOVIFrameMetadata(dovi.FrameMetadata) {}

// SetDOVIStreamMetadata implements MetadataSink.
func (NopMetadataSink) SetDOVIStreamMetadata(dovi.StreamMetadata) {}

// SetDOVIStreamInfo implements MetadataSink.
func (NopMetadataSink) SetDOVIStreamInfo(dovi.StreamInfo) {}

// SetSourceDOVIStreamInfo implements MetadataSink.
func (NopMetadataSink) SetSourceDOVIStreamInfo(dovi.StreamInfo) {}

// SetHDRStaticMetadata implements MetadataSink.
func (NopMetadataSink) SetHDRStaticMetadata(hdr.StaticMetadataInfo) {}
