// Package annexb contains functions to work with the Annex-B stream format.
package annexb

import (
	"encoding/binary"
)

func findStartCode3(buf []byte, p int) int {
	end := len(buf) - 3

	// byte-wise until the next 4-byte boundary
	a := p + 4 - (p & 3)
	for ; p < a && p < end; p++ {
		if buf[p] == 0 && buf[p+1] == 0 && buf[p+2] == 1 {
			return p
		}
	}

	// word-aligned fast path: scan 4 bytes at a time for a zero byte,
	// then verify
	for ; p < len(buf)-6; p += 4 {
		x := binary.BigEndian.Uint32(buf[p:])
		if (x-0x01010101)&(^x)&0x80808080 != 0 {
			if buf[p+1] == 0 {
				if buf[p] == 0 && buf[p+2] == 1 {
					return p
				}
				if buf[p+2] == 0 && buf[p+3] == 1 {
					return p + 1
				}
			}
			if buf[p+3] == 0 {
				if buf[p+2] == 0 && buf[p+4] == 1 {
					return p + 2
				}
				if buf[p+4] == 0 && buf[p+5] == 1 {
					return p + 3
				}
			}
		}
	}

	// byte-wise tail
	for ; p < end; p++ {
		if buf[p] == 0 && buf[p+1] == 0 && buf[p+2] == 1 {
			return p
		}
	}

	return len(buf)
}

// FindStartCode returns the offset of the next 00 00 01 sequence in buf, at
// or after start. When the start code is preceded by an extra zero byte, the
// returned offset backs up one byte to include it (the 00 00 00 01 form). It
// returns len(buf) when no start code is present.
func FindStartCode(buf []byte, start int) int {
	out := findStartCode3(buf, start)
	if out > start && out < len(buf) && buf[out-1] == 0 {
		out--
	}
	return out
}

// ReframeLengthPrefixed converts an Annex-B stream into length-prefixed
// framing, replacing every start code with a 4-byte big-endian NAL size.
// Input before the first start code is discarded. The returned buffer is
// empty when buf contains no start code.
func ReframeLengthPrefixed(buf []byte) []byte {
	var out []byte
	pos := FindStartCode(buf, 0)

	for {
		// skip the start code, zeros included
		for pos < len(buf) && buf[pos] == 0 {
			pos++
		}
		if pos >= len(buf) {
			break
		}
		pos++

		next := FindStartCode(buf, pos)
		out = binary.BigEndian.AppendUint32(out, uint32(next-pos))
		out = append(out, buf[pos:next]...)
		pos = next
	}

	return out
}
