// Package bitstreamconv converts H.264/HEVC access units between
// length-prefixed (avcC/hvcC) framing and Annex-B framing, while extracting,
// rewriting and re-emitting the NAL units that carry HDR metadata (Dolby
// Vision RPU, HDR10/HDR10+ SEI messages).
package bitstreamconv

// Dolby Vision NALU types (HEVC unspecified range).
const (
	naluTypeDoViRPU uint8 = 62
	naluTypeDoViEL  uint8 = 63
)
