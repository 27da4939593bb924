package stego

import (
	"github.com/mattetti/avistego/internal/lsb"
	"github.com/mattetti/avistego/internal/riff"
)

// ChunkInfo describes one stream data chunk of the movi list
type ChunkInfo struct {
	Tag    string
	Offset int // Content offset
	Length int // Declared content length
	Usable int // Bytes that carry message bits
}

// Report is an overview of the carrier layout
type Report struct {
	MarkerOffset int
	Chunks       []ChunkInfo
	Stop         riff.StopReason
	UsableBytes  int
	// Capacity is the longest message, in bytes, that fits next to the
	// terminator
	Capacity int
}

// Inspect walks the stream chunks of buf and sums up how much they can carry.
// It does not read or write any message bits.
func (c *Codec) Inspect(buf []byte) (*Report, error) {
	start, err := c.locate(buf)
	if err != nil {
		return nil, err
	}

	r := &Report{MarkerOffset: start - len(c.cfg.Marker)}

	w := riff.NewWalker(buf, start)
	for {
		chunk, ok := w.Next()
		if !ok {
			break
		}
		info := ChunkInfo{
			Tag:    chunk.Header.Tag(),
			Offset: chunk.Offset,
			Length: chunk.Length,
			Usable: lsb.Usable(chunk.Length),
		}
		r.Chunks = append(r.Chunks, info)
		r.UsableBytes += info.Usable
	}
	r.Stop = w.Stop()

	r.Capacity = r.UsableBytes/8 - len(c.cfg.Terminator)
	if r.Capacity < 0 {
		r.Capacity = 0
	}

	return r, nil
}

// Inspect reports the carrier layout of buf using DefaultConfig
func Inspect(buf []byte) (*Report, error) {
	return New(DefaultConfig()).Inspect(buf)
}
