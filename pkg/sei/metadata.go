package sei

import (
	"encoding/binary"
	"fmt"
)

// MasteringDisplayColourVolume is a mastering display colour volume SEI
// message (payload type 137).
type MasteringDisplayColourVolume struct {
	// display primaries, in (x, y) pairs of 0.00002 units, G/B/R order
	DisplayPrimaries [3][2]uint16

	// white point, in 0.00002 units
	WhitePoint [2]uint16

	// luminance, in 0.0001 cd/m2 units
	MaxDisplayMasteringLuminance uint32
	MinDisplayMasteringLuminance uint32
}

// Unmarshal decodes the message from its payload.
func (m *MasteringDisplayColourVolume) Unmarshal(buf []byte) error {
	if len(buf) < 24 {
		return fmt.Errorf("invalid mastering display colour volume (size %d)", len(buf))
	}

	for c := 0; c < 3; c++ {
		m.DisplayPrimaries[c][0] = binary.BigEndian.Uint16(buf[c*4:])
		m.DisplayPrimaries[c][1] = binary.BigEndian.Uint16(buf[c*4+2:])
	}
	m.WhitePoint[0] = binary.BigEndian.Uint16(buf[12:])
	m.WhitePoint[1] = binary.BigEndian.Uint16(buf[14:])
	m.MaxDisplayMasteringLuminance = binary.BigEndian.Uint32(buf[16:])
	m.MinDisplayMasteringLuminance = binary.BigEndian.Uint32(buf[20:])

	return nil
}

// known display primaries, G/B/R order, in 0.00002 units.
var primariesLabels = []struct {
	primaries [3][2]uint16
	label     string
}{
	{[3][2]uint16{{15000, 30000}, {7500, 3000}, {32000, 16500}}, "BT.709"},
	{[3][2]uint16{{8500, 39850}, {6550, 2300}, {35400, 14600}}, "BT.2020"},
	{[3][2]uint16{{13250, 34500}, {7500, 3000}, {34000, 16000}}, "DCI-P3"},
}

// PrimariesText returns a human-readable label of the display primaries.
func (m MasteringDisplayColourVolume) PrimariesText() string {
	for _, e := range primariesLabels {
		if e.primaries == m.DisplayPrimaries {
			return e.label
		}
	}
	return fmt.Sprintf("G(%d,%d) B(%d,%d) R(%d,%d)",
		m.DisplayPrimaries[0][0], m.DisplayPrimaries[0][1],
		m.DisplayPrimaries[1][0], m.DisplayPrimaries[1][1],
		m.DisplayPrimaries[2][0], m.DisplayPrimaries[2][1])
}

// ContentLightLevel is a content light level information SEI message
// (payload type 144).
type ContentLightLevel struct {
	MaxContentLightLevel      uint16
	MaxFrameAverageLightLevel uint16
}

// Unmarshal decodes the message from its payload.
func (l *ContentLightLevel) Unmarshal(buf []byte) error {
	if len(buf) < 4 {
		return fmt.Errorf("invalid content light level (size %d)", len(buf))
	}

	l.MaxContentLightLevel = binary.BigEndian.Uint16(buf)
	l.MaxFrameAverageLightLevel = binary.BigEndian.Uint16(buf[2:])

	return nil
}

// IsHDR10Plus reports whether a user-data-registered payload carries a
// SMPTE ST 2094-40 (HDR10+) message.
func IsHDR10Plus(buf []byte) bool {
	return len(buf) >= 7 &&
		buf[0] == 0xB5 && // itu_t_t35_country_code (USA)
		buf[1] == 0x00 && buf[2] == 0x3C && // terminal_provider_code
		buf[3] == 0x00 && buf[4] == 0x01 && // terminal_provider_oriented_code
		buf[5] == 0x04 // application_identifier
}

// FindMasteringDisplayColourVolume returns the first mastering display
// colour volume message, or nil.
func FindMasteringDisplayColourVolume(msgs []Message) *MasteringDisplayColourVolume {
	for _, m := range msgs {
		if m.PayloadType == PayloadTypeMasteringDisplayColourVolume {
			var v MasteringDisplayColourVolume
			if v.Unmarshal(m.Payload) == nil {
				return &v
			}
		}
	}
	return nil
}

// FindContentLightLevel returns the first content light level message, or nil.
func FindContentLightLevel(msgs []Message) *ContentLightLevel {
	for _, m := range msgs {
		if m.PayloadType == PayloadTypeContentLightLevel {
			var v ContentLightLevel
			if v.Unmarshal(m.Payload) == nil {
				return &v
			}
		}
	}
	return nil
}

// FindHDR10Plus returns the raw ITU-T T.35 payload of the first HDR10+
// message, or nil.
func FindHDR10Plus(msgs []Message) []byte {
	for _, m := range msgs {
		if m.PayloadType == PayloadTypeUserDataRegistered && IsHDR10Plus(m.Payload) {
			return m.Payload
		}
	}
	return nil
}

// RemoveHDR10Plus re-emits a prefix SEI NAL unit without its HDR10+
// message(s). It returns nil when no other message remains.
func RemoveHDR10Plus(nalu []byte) ([]byte, error) {
	msgs, err := Unmarshal(nalu)
	if err != nil {
		return nil, err
	}

	kept := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.PayloadType == PayloadTypeUserDataRegistered && IsHDR10Plus(m.Payload) {
			continue
		}
		kept = append(kept, m)
	}

	if len(kept) == 0 {
		return nil, nil
	}

	return Marshal(nalu[:2], kept), nil
}
