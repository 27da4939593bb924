package riff

import "encoding/binary"

// HeaderSize is the length of a RIFF chunk header: 4 byte tag + 4 byte size
const HeaderSize = 8

// ChunkHeader is the tag and content size found at the start of every chunk
type ChunkHeader struct {
	ID   [4]byte // e.g. "00dc", "01wb"
	Size uint32  // Length of the content that follows, little endian on disk
}

// ReadChunkHeader reads the header at off. It returns false when the 8 bytes
// do not fit in buf.
func ReadChunkHeader(buf []byte, off int) (ChunkHeader, bool) {
	if off < 0 || off > len(buf)-HeaderSize {
		return ChunkHeader{}, false
	}

	var h ChunkHeader
	copy(h.ID[:], buf[off:off+4])
	h.Size = binary.LittleEndian.Uint32(buf[off+4 : off+8])
	return h, true
}

// IsStreamData reports whether the tag names an uncompressed ("##db") or
// compressed ("##dc") stream data chunk. The two digit stream index is not
// looked at.
func (h ChunkHeader) IsStreamData() bool {
	return h.ID[2] == 'd' && (h.ID[3] == 'b' || h.ID[3] == 'c')
}

// Tag returns the chunk ID as a string
func (h ChunkHeader) Tag() string {
	return string(h.ID[:])
}

// Chunk is a stream data chunk yielded by a Walker
type Chunk struct {
	Header ChunkHeader
	Offset int // First content byte, right after the header
	Length int // Content length as declared by the header
}

// End returns the offset just past the chunk content
func (c Chunk) End() int {
	return c.Offset + c.Length
}

// fileHeader is the RIFF form header: "RIFF" <size> "AVI "
type fileHeader struct {
	RiffID   [4]byte // "RIFF"
	FileSize uint32  // Everything after this field
	FormType [4]byte // "AVI "
}

// listHeader opens a LIST chunk: "LIST" <size> <type>
type listHeader struct {
	ListID   [4]byte // "LIST"
	ListSize uint32  // 4 (type) + content
	ListType [4]byte // "hdrl", "movi", ...
}

// mainHeader is the "avih" chunk of the hdrl list
type mainHeader struct {
	ChunkID             [4]byte // "avih"
	ChunkSize           uint32  // 56
	MicroSecPerFrame    uint32
	MaxBytesPerSec      uint32
	PaddingGranularity  uint32
	Flags               uint32
	TotalFrames         uint32
	InitialFrames       uint32
	Streams             uint32
	SuggestedBufferSize uint32
	Width               uint32
	Height              uint32
	Reserved            [4]uint32
}
