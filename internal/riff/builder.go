package riff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Builder assembles a minimal AVI file: the RIFF form, an hdrl list with the
// main AVI header and a movi list holding the added chunks.
//
// Chunks are written back to back without RIFF word padding so the file walks
// the same way the Walker steps through it.
type Builder struct {
	width  uint32
	height uint32
	fps    uint32
	chunks []builderChunk
}

type builderChunk struct {
	id   [4]byte
	data []byte
}

// NewBuilder creates a new AVI builder for a width x height stream
func NewBuilder(width, height, fps uint32) *Builder {
	if fps == 0 {
		fps = 25
	}
	return &Builder{
		width:  width,
		height: height,
		fps:    fps,
	}
}

// AddChunk appends a chunk to the movi list. id must be 4 characters.
func (b *Builder) AddChunk(id string, data []byte) error {
	if len(id) != 4 {
		return fmt.Errorf("invalid chunk id %q: must be 4 bytes", id)
	}

	var c builderChunk
	copy(c.id[:], id)
	c.data = data
	b.chunks = append(b.chunks, c)
	return nil
}

// MoviOffset returns the offset the "movi" marker will have in the output
func (b *Builder) MoviOffset() int {
	// RIFF header + hdrl list header + avih + movi list "LIST" <size>
	return binary.Size(fileHeader{}) + binary.Size(listHeader{}) + binary.Size(mainHeader{}) + 8
}

// WriteTo writes the AVI file to w
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	// Size of the movi content
	moviSize := uint32(4) // list type
	frames := uint32(0)
	for _, c := range b.chunks {
		moviSize += HeaderSize + uint32(len(c.data))
		if h := (ChunkHeader{ID: c.id}); h.IsStreamData() {
			frames++
		}
	}

	avih := mainHeader{
		ChunkID:             [4]byte{'a', 'v', 'i', 'h'},
		ChunkSize:           uint32(binary.Size(mainHeader{}) - HeaderSize),
		MicroSecPerFrame:    1000000 / b.fps,
		TotalFrames:         frames,
		Streams:             1,
		SuggestedBufferSize: b.width * b.height * 3,
		Width:               b.width,
		Height:              b.height,
	}

	hdrl := listHeader{
		ListID:   [4]byte{'L', 'I', 'S', 'T'},
		ListSize: 4 + uint32(binary.Size(avih)),
		ListType: [4]byte{'h', 'd', 'r', 'l'},
	}

	movi := listHeader{
		ListID:   [4]byte{'L', 'I', 'S', 'T'},
		ListSize: moviSize,
		ListType: [4]byte{'m', 'o', 'v', 'i'},
	}

	riffHeader := fileHeader{
		RiffID:   [4]byte{'R', 'I', 'F', 'F'},
		FileSize: 4 + HeaderSize + hdrl.ListSize + HeaderSize + movi.ListSize,
		FormType: [4]byte{'A', 'V', 'I', ' '},
	}

	cw := &countingWriter{w: w}

	for _, header := range []interface{}{&riffHeader, &hdrl, &avih, &movi} {
		if err := binary.Write(cw, binary.LittleEndian, header); err != nil {
			return cw.n, fmt.Errorf("error writing AVI header: %w", err)
		}
	}

	for _, c := range b.chunks {
		header := ChunkHeader{ID: c.id, Size: uint32(len(c.data))}
		if err := binary.Write(cw, binary.LittleEndian, &header); err != nil {
			return cw.n, fmt.Errorf("error writing chunk header %s: %w", header.Tag(), err)
		}
		if _, err := cw.Write(c.data); err != nil {
			return cw.n, fmt.Errorf("error writing chunk data %s: %w", header.Tag(), err)
		}
	}

	return cw.n, nil
}

// Bytes returns the complete AVI file
func (b *Builder) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := b.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
