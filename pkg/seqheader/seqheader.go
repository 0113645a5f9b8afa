// Package seqheader contains sequence-header inspectors, used to revalidate
// the parameters of a stream outside of the main conversion path.
package seqheader

import (
	"github.com/mediaforge/bitstreamconv/pkg/annexb"
	"github.com/mediaforge/bitstreamconv/pkg/bits"
)

// MPEG2Sequence holds the parameters of a MPEG-2 sequence header.
type MPEG2Sequence struct {
	Width     uint32
	Height    uint32
	FPSRate   uint32
	FPSScale  uint32
	Ratio     float64
	RatioInfo uint32
}

// H264Sequence holds the parameters of a H264 SPS.
type H264Sequence struct {
	Width     uint32
	Height    uint32
	Ratio     float64
	RatioInfo uint32
}

// InspectMPEG2 scans Annex-B data for a sequence header code and reports
// whether width, height, aspect ratio or frame rate changed with respect to
// seq, updating it in place.
func InspectMPEG2(data []byte, seq *MPEG2Sequence) bool {
	changed := false

	if len(data) == 0 {
		return false
	}

	pos := annexb.FindStartCode(data, 0)
	for pos < len(data) {
		for pos < len(data) && data[pos] == 0 {
			pos++
		}
		if pos >= len(data) {
			break
		}
		pos++
		if pos >= len(data) {
			break
		}
		next := annexb.FindStartCode(data, pos)

		if data[pos] == 0xB3 { // sequence_header_code
			r := bits.NewReader(data[pos:])
			r.Read(8) // sequence_header_code

			width := r.Read(12) // horizontal_size_value
			if width != seq.Width {
				changed = true
				seq.Width = width
			}

			height := r.Read(12) // vertical_size_value
			if height != seq.Height {
				changed = true
				seq.Height = height
			}

			ratio := seq.Ratio
			ratioInfo := r.Read(4) // aspect_ratio_information
			switch ratioInfo {
			case 0x01:
				ratio = 1.0
			case 0x03:
				ratio = 16.0 / 9
			case 0x04:
				ratio = 2.21
			default:
				ratio = 4.0 / 3
			}
			if ratioInfo != seq.RatioInfo {
				changed = true
				seq.Ratio = ratio
				seq.RatioInfo = ratioInfo
			}

			fpsRate := seq.FPSRate
			fpsScale := seq.FPSScale
			switch r.Read(4) { // frame_rate_code
			case 0x02:
				fpsRate = 24000
				fpsScale = 1000
			case 0x03:
				fpsRate = 25000
				fpsScale = 1000
			case 0x04:
				fpsRate = 30000
				fpsScale = 1001
			case 0x05:
				fpsRate = 30000
				fpsScale = 1000
			case 0x06:
				fpsRate = 50000
				fpsScale = 1000
			case 0x07:
				fpsRate = 60000
				fpsScale = 1001
			case 0x08:
				fpsRate = 60000
				fpsScale = 1000
			default:
				fpsRate = 24000
				fpsScale = 1001
			}
			if fpsScale != seq.FPSScale || fpsRate != seq.FPSRate {
				changed = true
				seq.FPSRate = fpsRate
				seq.FPSScale = fpsScale
			}
		}

		pos = next
	}

	return changed
}

// multipliers applied to the pixel aspect ratio, indexed by aspect_ratio_idc.
var h264AspectRatios = map[uint32]float64{
	1:  1,          // 1:1
	2:  12.0 / 11,  // 12:11
	3:  10.0 / 11,  // 10:11
	4:  16.0 / 11,  // 16:11
	5:  40.0 / 33,  // 40:33
	6:  24.0 / 11,  // 24:11
	7:  20.0 / 11,  // 20:11
	8:  32.0 / 11,  // 32:11
	9:  80.0 / 33,  // 80:33
	10: 18.0 / 11,  // 18:11
	11: 15.0 / 11,  // 15:11
	12: 64.0 / 33,  // 64:33
	13: 160.0 / 99, // 160:99
	14: 4.0 / 3,    // 4:3
	15: 3.0 / 2,    // 3:2
	16: 2,          // 2:1
}

func isH264HighProfile(profileIdc uint32) bool {
	switch profileIdc {
	case 100, 110, 122, 244, 44, 83, 86, 118, 128:
		return true
	}
	return false
}

// InspectH264 scans Annex-B data for a SPS and reports whether width, height
// or aspect ratio changed with respect to seq, updating it in place.
func InspectH264(data []byte, seq *H264Sequence) bool { //nolint:gocognit
	changed := false

	if len(data) == 0 {
		return false
	}

	pos := annexb.FindStartCode(data, 0)
	for pos < len(data) {
		for pos < len(data) && data[pos] == 0 {
			pos++
		}
		if pos >= len(data) {
			break
		}
		pos++
		if pos >= len(data) {
			break
		}
		next := annexb.FindStartCode(data, pos)

		if (data[pos] & 0x1f) != 7 { // SPS
			pos = next
			continue
		}

		r := bits.NewReader(data[pos:])
		r.Read(8) // NAL unit header

		profileIdc := r.Read(8)
		r.Read(8)  // constraint flags + reserved
		r.Read(8)  // level_idc
		r.ReadUE() // sps_id

		chromaFormatIdc := uint32(1)
		separateColourPlaneFlag := uint32(0)

		if isH264HighProfile(profileIdc) {
			chromaFormatIdc = r.ReadUE()
			if chromaFormatIdc == 3 {
				separateColourPlaneFlag = r.Read(1)
			}

			r.ReadUE() // bit_depth_luma_minus8
			r.ReadUE() // bit_depth_chroma_minus8
			r.Read(1)  // qpprime_y_zero_transform_bypass_flag

			if r.ReadFlag() { // seq_scaling_matrix_present_flag
				lists := 8
				if chromaFormatIdc == 3 {
					lists = 12
				}
				for idx := 0; idx < lists; idx++ {
					if !r.ReadFlag() { // seq_scaling_list_present_flag
						continue
					}
					size := 16
					if idx >= 6 {
						size = 64
					}
					lastScale := int32(8)
					nextScale := int32(8)
					for j := 0; j < size; j++ {
						if nextScale != 0 {
							deltaScale := r.ReadSE()
							nextScale = (lastScale + deltaScale + 256) % 256
						}
						if nextScale != 0 {
							lastScale = nextScale
						}
					}
				}
			}
		}

		r.ReadUE() // log2_max_frame_num_minus4

		switch r.ReadUE() { // pic_order_cnt_type
		case 0:
			r.ReadUE() // log2_max_pic_order_cnt_lsb_minus4
		case 1:
			r.Read(1)  // delta_pic_order_always_zero_flag
			r.ReadSE() // offset_for_non_ref_pic
			r.ReadSE() // offset_for_top_to_bottom_field
			n := r.ReadUE()
			for i := uint32(0); i < n; i++ {
				r.ReadSE() // offset_for_ref_frame[i]
			}
		}

		r.ReadUE() // max_num_ref_frames
		r.Read(1)  // gaps_in_frame_num_value_allowed_flag

		picWidth := (r.ReadUE() + 1) * 16
		picHeight := (r.ReadUE() + 1) * 16

		frameMbsOnlyFlag := r.Read(1)
		if frameMbsOnlyFlag == 0 {
			picHeight *= 2
			r.Read(1) // mb_adaptive_frame_field_flag
		}

		r.Read(1) // direct_8x8_inference_flag

		frameCropRightOffset := uint32(0)
		frameCropBottomOffset := uint32(0)
		if r.ReadFlag() { // frame_cropping_flag
			r.ReadUE() // frame_crop_left_offset
			frameCropRightOffset = r.ReadUE()
			r.ReadUE() // frame_crop_top_offset
			frameCropBottomOffset = r.ReadUE()
		}

		aspectRatioIdc := uint32(0)
		sarWidth := uint32(0)
		sarHeight := uint32(0)

		if r.ReadFlag() { // vui_parameters_present_flag
			if r.ReadFlag() { // aspect_ratio_info_present_flag
				aspectRatioIdc = r.Read(8)
				if aspectRatioIdc == 255 { // extended SAR
					sarWidth = r.Read(16)
					sarHeight = r.Read(16)
				}
			}

			if r.ReadFlag() { // overscan_info_present_flag
				r.Read(1) // overscan_appropriate_flag
			}

			if r.ReadFlag() { // video_signal_type_present_flag
				r.Read(3) // video_format
				r.Read(1) // video_full_range_flag
				if r.ReadFlag() { // colour_description_present_flag
					r.Read(8) // colour_primaries
					r.Read(8) // transfer_characteristics
					r.Read(8) // matrix_coefficients
				}
			}

			if r.ReadFlag() { // chroma_loc_info_present_flag
				r.ReadUE() // chroma_sample_loc_type_top_field
				r.ReadUE() // chroma_sample_loc_type_bottom_field
			}

			if r.ReadFlag() { // timing_info_present_flag
				r.Read(32) // num_units_in_tick
				r.Read(32) // time_scale
				r.Read(1)  // fixed_frame_rate_flag
			}
		}

		chromaArrayType := chromaFormatIdc
		if separateColourPlaneFlag != 0 {
			chromaArrayType = 0
		}

		// cropped width
		cropUnitX := uint32(1)
		subWidthC := uint32(2)
		if chromaFormatIdc == 3 {
			subWidthC = 1
		}
		if chromaArrayType != 0 {
			cropUnitX = subWidthC
		}
		picWidthCropped := picWidth - cropUnitX*frameCropRightOffset

		if picWidthCropped != seq.Width {
			changed = true
			seq.Width = picWidthCropped
		}

		// cropped height
		cropUnitY := 2 - frameMbsOnlyFlag
		subHeightC := uint32(1)
		if chromaFormatIdc <= 1 {
			subHeightC = 2
		}
		if chromaArrayType != 0 {
			cropUnitY *= subHeightC
		}
		picHeightCropped := picHeight - cropUnitY*frameCropBottomOffset

		if picHeightCropped != seq.Height {
			changed = true
			seq.Height = picHeightCropped
		}

		// aspect ratio
		ratio := seq.Ratio
		if picHeightCropped != 0 {
			ratio = float64(picWidthCropped) / float64(picHeightCropped)
		}
		if aspectRatioIdc == 255 { // extended SAR
			if sarHeight != 0 {
				ratio *= float64(sarWidth) / float64(sarHeight)
			} else {
				ratio = 0
			}
		} else if m, ok := h264AspectRatios[aspectRatioIdc]; ok {
			ratio *= m
		}
		if aspectRatioIdc != seq.RatioInfo {
			changed = true
			seq.Ratio = ratio
			seq.RatioInfo = aspectRatioIdc
		}

		break // first SPS wins
	}

	return changed
}
