package bitstreamconv

// outputBuffer accumulates Annex-B framed NAL units produced during a
// conversion. Growth preserves previously written bytes; ownership never
// leaves the converter until the buffer is complete.
type outputBuffer struct {
	buf []byte
}

func (b *outputBuffer) size() int {
	return len(b.buf)
}

func (b *outputBuffer) bytes() []byte {
	return b.buf
}

// appendNALU appends one NAL unit, preceded by a start code: 4 bytes at the
// start of the buffer, 3 bytes otherwise. Dolby Vision RPU units always get
// a 4-byte start code, matching known encoder behavior. spsPPS, when not
// empty, is spliced in before the start code (cached parameter sets ahead of
// an IDR slice).
func (b *outputBuffer) appendNALU(spsPPS []byte, nalu []byte, unitType uint8) {
	headerSize := 3
	if len(b.buf) == 0 || unitType == naluTypeDoViRPU {
		headerSize = 4
	}

	b.buf = append(b.buf, spsPPS...)
	if headerSize == 4 {
		b.buf = append(b.buf, 0x00, 0x00, 0x00, 0x01)
	} else {
		b.buf = append(b.buf, 0x00, 0x00, 0x01)
	}
	b.buf = append(b.buf, nalu...)
}

// appendWrappedNALU appends one NAL unit under the given type. Dolby Vision
// EL units get a 5-byte header (3-byte start code plus a fresh 2-byte NAL
// unit header), since the wrapped unit keeps its own header as payload.
// Other types follow the appendNALU rules.
func (b *outputBuffer) appendWrappedNALU(nalu []byte, unitType uint8) {
	if unitType != naluTypeDoViEL {
		b.appendNALU(nil, nalu, unitType)
		return
	}

	b.buf = append(b.buf, 0x00, 0x00, 0x01, naluTypeDoViEL<<1, 0x01)
	b.buf = append(b.buf, nalu...)
}
