// Package stego hides a text message in the stream chunks of an AVI file and
// recovers it.
//
// The message is followed by a fixed terminator and written one bit per
// usable content byte of every "##db"/"##dc" chunk of the movi list, carrying
// on from one chunk to the next until it has been written in full.
package stego

import (
	"bytes"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/mattetti/avistego/internal/lsb"
	"github.com/mattetti/avistego/internal/riff"
)

// Terminator is appended to every hidden message
const Terminator = "BITx"

// Config holds the codec settings
type Config struct {
	Marker     []byte     // Sequence opening the chunk list, "movi"
	Terminator []byte     // End of message marker, "BITx"
	Logger     log.Logger // Debug output, no-op when nil
}

// DefaultConfig returns the settings used by the package level functions.
// Every call returns fresh slices.
func DefaultConfig() Config {
	return Config{
		Marker:     []byte(riff.MoviMarker),
		Terminator: []byte(Terminator),
		Logger:     log.NewNopLogger(),
	}
}

// Codec embeds and extracts messages. It keeps no state between calls.
type Codec struct {
	cfg Config
}

// New creates a codec. Empty fields fall back to DefaultConfig. The codec
// keeps its own copy of the marker and terminator.
func New(cfg Config) *Codec {
	def := DefaultConfig()
	if len(cfg.Marker) == 0 {
		cfg.Marker = def.Marker
	} else {
		cfg.Marker = bytes.Clone(cfg.Marker)
	}
	if len(cfg.Terminator) == 0 {
		cfg.Terminator = def.Terminator
	} else {
		cfg.Terminator = bytes.Clone(cfg.Terminator)
	}
	if cfg.Logger == nil {
		cfg.Logger = def.Logger
	}
	return &Codec{cfg: cfg}
}

// Config returns a copy of the settings the codec runs with
func (c *Codec) Config() Config {
	cfg := c.cfg
	cfg.Marker = bytes.Clone(c.cfg.Marker)
	cfg.Terminator = bytes.Clone(c.cfg.Terminator)
	return cfg
}

// Encode returns a copy of buf with message hidden in it. buf itself is never
// modified. When the carrier is too small a *CapacityError is returned and no
// buffer.
func (c *Codec) Encode(buf []byte, message string) ([]byte, error) {
	start, err := c.locate(buf)
	if err != nil {
		return nil, err
	}

	out := bytes.Clone(buf)
	msg := make([]byte, 0, len(message)+len(c.cfg.Terminator))
	msg = append(msg, message...)
	msg = append(msg, c.cfg.Terminator...)

	var (
		cur       lsb.Cursor
		done      bool
		available int
		chunks    int
	)

	w := riff.NewWalker(out, start)
	for !done {
		chunk, ok := w.Next()
		if !ok {
			break
		}
		chunks++
		available += lsb.Usable(chunk.Length)
		cur, done = lsb.Embed(out[chunk.Offset:chunk.End()], msg, cur)

		level.Debug(c.cfg.Logger).Log("msg", "embedded into chunk", "tag", chunk.Header.Tag(), "offset", chunk.Offset, "size", chunk.Length, "written", cur.Index)
	}

	if !done {
		// Count what the rest of the list could have held for the report
		for {
			chunk, ok := w.Next()
			if !ok {
				break
			}
			available += lsb.Usable(chunk.Length)
		}
		level.Debug(c.cfg.Logger).Log("msg", "ran out of stream chunks", "chunks", chunks, "reason", w.Stop())
		return nil, &CapacityError{Required: len(msg) * 8, Available: available}
	}

	level.Debug(c.cfg.Logger).Log("msg", "message hidden", "chars", len(message), "chunks", chunks)
	return out, nil
}

// Decode recovers the message hidden in buf without modifying it. If the
// chunks run out before the terminator is found, the text read so far is
// returned together with ErrTerminatorNotFound.
func (c *Codec) Decode(buf []byte) (string, error) {
	start, err := c.locate(buf)
	if err != nil {
		return "", err
	}

	ex := lsb.NewExtractor(c.cfg.Terminator)
	chunks := 0

	w := riff.NewWalker(buf, start)
	for {
		chunk, ok := w.Next()
		if !ok {
			break
		}
		chunks++
		if ex.Feed(buf[chunk.Offset:chunk.End()]) {
			break
		}
	}

	if !ex.Done() {
		level.Debug(c.cfg.Logger).Log("msg", "terminator not found", "chunks", chunks, "chars", ex.Len(), "reason", w.Stop())
		return string(ex.Message()), ErrTerminatorNotFound
	}

	level.Debug(c.cfg.Logger).Log("msg", "message recovered", "chars", ex.Len()-len(c.cfg.Terminator), "chunks", chunks)
	return string(ex.Message()), nil
}

// locate returns the offset of the first chunk header after the marker
func (c *Codec) locate(buf []byte) (int, error) {
	pos, err := riff.FindMarker(buf, c.cfg.Marker)
	if err != nil {
		return 0, err
	}

	level.Debug(c.cfg.Logger).Log("msg", "found chunk list", "marker", string(c.cfg.Marker), "offset", pos)
	return pos + len(c.cfg.Marker), nil
}

// Encode hides message in a copy of buf using DefaultConfig
func Encode(buf []byte, message string) ([]byte, error) {
	return New(DefaultConfig()).Encode(buf, message)
}

// Decode recovers a message from buf using DefaultConfig
func Decode(buf []byte) (string, error) {
	return New(DefaultConfig()).Decode(buf)
}
