// Package bits contains a bit reader for NAL unit payloads.
package bits

// Reader reads fixed-width and Exp-Golomb-coded values from a NAL unit
// payload, transparently skipping emulation prevention bytes (0x03 after two
// zero bytes). Reading past the end of the payload returns zero-padded
// results instead of erroring, so that truncated units degrade gracefully.
type Reader struct {
	buf   []byte
	pos   int
	cache uint64
	head  int
}

// NewReader allocates a Reader.
func NewReader(buf []byte) *Reader {
	return &Reader{
		buf: buf,
		// fill with something other than 0 to avoid treating the first
		// bytes as an emulation prevention sequence
		cache: 0xffffffff,
	}
}

// Read reads n bits (n <= 32).
func (r *Reader) Read(n int) uint32 {
	if n == 0 {
		return 0
	}

	// fill up the cache if needed
fill:
	for r.head < n {
		var b byte
		checkThree := true

		for {
			if r.pos >= len(r.buf) {
				// end of payload, produce at most head bits
				n = r.head
				break fill
			}

			b = r.buf[r.pos]
			r.pos++

			if checkThree && b == 0x03 && (r.cache&0xffff) == 0 {
				// emulation prevention byte; the next byte goes
				// unconditionally to the cache, even if it's 0x03
				checkThree = false
				continue
			}
			break
		}

		r.cache = (r.cache << 8) | uint64(b)
		r.head += 8
	}

	var res uint32
	shift := r.head - n
	if shift > 0 {
		res = uint32(r.cache >> shift)
	} else {
		res = uint32(r.cache)
	}

	if n < 32 {
		res &= (1 << n) - 1
	}
	r.head = shift

	return res
}

// EOS reports whether the payload is exhausted and no bits remain cached.
func (r *Reader) EOS() bool {
	return r.pos >= len(r.buf) && r.head == 0
}

// ReadUE reads an unsigned Exp-Golomb-coded value.
func (r *Reader) ReadUE() uint32 {
	i := 0
	for r.Read(1) == 0 && !r.EOS() && i < 31 {
		i++
	}

	return (1 << i) - 1 + r.Read(i)
}

// ReadSE reads a signed Exp-Golomb-coded value.
func (r *Reader) ReadSE() int32 {
	// (-1)^(k+1) * ceil(k / 2)
	k := int32(r.ReadUE())
	if (k & 0x01) != 0 {
		return (k + 1) / 2
	}
	return -k / 2
}

// ReadFlag reads a single bit as a boolean flag.
func (r *Reader) ReadFlag() bool {
	return r.Read(1) != 0
}
