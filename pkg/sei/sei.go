// Package sei contains functions to work with HEVC prefix SEI NAL units.
package sei

import (
	"fmt"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
)

// SEI payload types handled by this package.
const (
	PayloadTypeUserDataRegistered           = 4
	PayloadTypeRecoveryPoint                = 6
	PayloadTypeMasteringDisplayColourVolume = 137
	PayloadTypeContentLightLevel            = 144
)

// Message is a single SEI message.
type Message struct {
	PayloadType uint32

	// payload with emulation prevention bytes removed
	Payload []byte
}

// Unmarshal splits the RBSP of a HEVC prefix SEI NAL unit into messages.
// Truncated trailing messages are discarded.
func Unmarshal(nalu []byte) ([]Message, error) {
	if len(nalu) < 3 {
		return nil, fmt.Errorf("SEI NALU is too short")
	}

	rbsp := h264.EmulationPreventionRemove(nalu[2:])

	var msgs []Message
	pos := 0

	for pos < len(rbsp) && rbsp[pos] != 0x80 {
		payloadType := uint32(0)
		for pos < len(rbsp) && rbsp[pos] == 0xFF {
			payloadType += 255
			pos++
		}
		if pos >= len(rbsp) {
			break
		}
		payloadType += uint32(rbsp[pos])
		pos++

		payloadSize := 0
		for pos < len(rbsp) && rbsp[pos] == 0xFF {
			payloadSize += 255
			pos++
		}
		if pos >= len(rbsp) {
			break
		}
		payloadSize += int(rbsp[pos])
		pos++

		if pos+payloadSize > len(rbsp) {
			break
		}

		msgs = append(msgs, Message{
			PayloadType: payloadType,
			Payload:     rbsp[pos : pos+payloadSize],
		})
		pos += payloadSize
	}

	return msgs, nil
}

// Marshal packs messages back into a SEI NAL unit with the given 2-byte NAL
// unit header, re-applying emulation prevention.
func Marshal(header []byte, msgs []Message) []byte {
	var rbsp []byte

	for _, m := range msgs {
		t := m.PayloadType
		for t >= 255 {
			rbsp = append(rbsp, 0xFF)
			t -= 255
		}
		rbsp = append(rbsp, byte(t))

		s := len(m.Payload)
		for s >= 255 {
			rbsp = append(rbsp, 0xFF)
			s -= 255
		}
		rbsp = append(rbsp, byte(s))

		rbsp = append(rbsp, m.Payload...)
	}

	rbsp = append(rbsp, 0x80) // rbsp_trailing_bits

	out := make([]byte, 0, 2+len(rbsp))
	out = append(out, header[0], header[1])
	return appendEmulationPrevention(out, rbsp)
}

// appendEmulationPrevention appends payload to buf, inserting an emulation
// prevention byte before every 00/01/02/03 that follows two zero bytes.
func appendEmulationPrevention(buf []byte, payload []byte) []byte {
	zeros := 0
	for _, b := range payload {
		if zeros == 2 && b <= 0x03 {
			buf = append(buf, 0x03)
			zeros = 0
		}
		if b == 0 {
			zeros++
		} else {
			zeros = 0
		}
		buf = append(buf, b)
	}
	return buf
}
