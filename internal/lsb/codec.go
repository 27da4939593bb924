// Package lsb hides message bits in the least significant bit of carrier
// bytes, one bit per byte, least significant message bit first.
package lsb

import "bytes"

// Usable returns how many of n carrier bytes hold message bits: n rounded
// down to a multiple of 8. The remainder is never touched.
func Usable(n int) int {
	if n <= 0 {
		return 0
	}
	return n - n%8
}

// Cursor tracks the position inside the message across carrier chunks
type Cursor struct {
	Index int  // Message byte being written or read
	Bit   uint // Bit of that byte, 0 (LSB) to 7
}

// advance moves the cursor to the next bit
func (c *Cursor) advance() {
	if c.Bit >= 7 {
		c.Bit = 0
		c.Index++
	} else {
		c.Bit++
	}
}

// Embed writes msg bits into the usable bytes of dst starting at cur. It
// returns the advanced cursor and whether the whole message has been written.
// Bytes after the last written bit are left as they are.
func Embed(dst, msg []byte, cur Cursor) (Cursor, bool) {
	usable := Usable(len(dst))

	for i := 0; i < usable && cur.Index < len(msg); i++ {
		bit := (msg[cur.Index] >> cur.Bit) & 1
		dst[i] = dst[i]&0xFE | bit
		cur.advance()
	}

	return cur, cur.Index >= len(msg)
}

// Extractor rebuilds a message from carrier bytes until the terminator shows
// up after a completed character.
type Extractor struct {
	terminator []byte
	out        bytes.Buffer
	char       byte
	cur        Cursor
	done       bool
}

// NewExtractor creates an extractor that stops at terminator
func NewExtractor(terminator []byte) *Extractor {
	return &Extractor{terminator: terminator}
}

// Feed reads the LSB of each usable byte of src. It returns true once the
// terminator has been seen; later calls do nothing.
func (e *Extractor) Feed(src []byte) bool {
	if e.done {
		return true
	}

	usable := Usable(len(src))
	for i := 0; i < usable; i++ {
		e.char |= (src[i] & 1) << e.cur.Bit
		e.cur.advance()

		if e.cur.Bit != 0 {
			continue
		}

		// Character complete
		e.out.WriteByte(e.char)
		e.char = 0

		if len(e.terminator) > 0 && e.out.Len() >= len(e.terminator) &&
			bytes.HasSuffix(e.out.Bytes(), e.terminator) {
			e.done = true
			return true
		}
	}

	return false
}

// Done reports whether the terminator was found
func (e *Extractor) Done() bool {
	return e.done
}

// Cursor returns the position reached so far
func (e *Extractor) Cursor() Cursor {
	return e.cur
}

// Len returns the number of complete characters read, terminator included
func (e *Extractor) Len() int {
	return e.out.Len()
}

// Message returns the recovered text without the terminator. When the
// terminator was never found, trailing bytes that could be the start of one
// are dropped as well.
func (e *Extractor) Message() []byte {
	msg := e.out.Bytes()
	if e.done {
		return bytes.Clone(msg[:len(msg)-len(e.terminator)])
	}

	return bytes.Clone(msg[:len(msg)-partialSuffix(msg, e.terminator)])
}

// partialSuffix returns the length of the longest proper prefix of term that
// msg ends with
func partialSuffix(msg, term []byte) int {
	for n := len(term) - 1; n > 0; n-- {
		if n <= len(msg) && bytes.HasSuffix(msg, term[:n]) {
			return n
		}
	}
	return 0
}
