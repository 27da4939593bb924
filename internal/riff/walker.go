// Package riff locates the movi list of an AVI file and walks the stream data
// chunks stored in it.
//
// Only the chunk framing needed to step over payload chunks is understood.
// The rest of the RIFF hierarchy is neither parsed nor validated.
package riff

import "errors"

// MoviMarker starts the LIST holding the interleaved audio/video chunks
const MoviMarker = "movi"

// ErrMarkerNotFound is returned when the buffer holds no marker sequence
var ErrMarkerNotFound = errors.New("movi list not found")

// StopReason tells why a Walker stopped yielding chunks
type StopReason int

const (
	// StopNone means the walker has not been exhausted yet
	StopNone StopReason = iota
	// StopNotStreamData means a chunk tag was not "##db" or "##dc"
	StopNotStreamData
	// StopOutOfBounds means a header or its content ran past the buffer
	StopOutOfBounds
)

func (r StopReason) String() string {
	switch r {
	case StopNone:
		return "none"
	case StopNotStreamData:
		return "end of stream data"
	case StopOutOfBounds:
		return "end of buffer"
	default:
		return "unknown"
	}
}

// FindMarker returns the offset of the first occurrence of marker in buf.
// The window slides one byte at a time from offset 0.
func FindMarker(buf, marker []byte) (int, error) {
	if len(marker) == 0 {
		return 0, ErrMarkerNotFound
	}

	for pos := 0; pos+len(marker) <= len(buf); pos++ {
		match := true
		for i := range marker {
			if buf[pos+i] != marker[i] {
				match = false
				break
			}
		}
		if match {
			return pos, nil
		}
	}

	return 0, ErrMarkerNotFound
}

// FindMovi returns the offset of the "movi" marker
func FindMovi(buf []byte) (int, error) {
	return FindMarker(buf, []byte(MoviMarker))
}

// Walker iterates over consecutive stream data chunks. It is single use.
type Walker struct {
	buf  []byte
	pos  int
	stop StopReason
}

// NewWalker creates a walker whose first chunk header is at start, usually
// the marker offset + 4.
func NewWalker(buf []byte, start int) *Walker {
	return &Walker{
		buf: buf,
		pos: start,
	}
}

// Next returns the next stream data chunk. Once it returns false every
// following call returns false as well, and Stop explains why.
func (w *Walker) Next() (Chunk, bool) {
	if w.stop != StopNone {
		return Chunk{}, false
	}

	header, ok := ReadChunkHeader(w.buf, w.pos)
	if !ok {
		w.stop = StopOutOfBounds
		return Chunk{}, false
	}

	if !header.IsStreamData() {
		w.stop = StopNotStreamData
		return Chunk{}, false
	}

	// Compare in int64 so a huge declared size can't wrap around on 32 bit
	offset := w.pos + HeaderSize
	if int64(offset)+int64(header.Size) > int64(len(w.buf)) {
		w.stop = StopOutOfBounds
		return Chunk{}, false
	}

	chunk := Chunk{
		Header: header,
		Offset: offset,
		Length: int(header.Size),
	}
	w.pos = chunk.End()

	return chunk, true
}

// Pos returns the offset of the next header the walker will read
func (w *Walker) Pos() int {
	return w.pos
}

// Stop returns the reason the walker stopped, or StopNone if it hasn't
func (w *Walker) Stop() StopReason {
	return w.stop
}
