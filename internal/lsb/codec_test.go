package lsb

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var term = []byte("BITx")

func TestUsable(t *testing.T) {
	for n, want := range map[int]int{
		-3: 0,
		0:  0,
		1:  0,
		7:  0,
		8:  8,
		15: 8,
		16: 16,
		21: 16,
	} {
		assert.Equal(t, want, Usable(n), "n=%d", n)
	}
}

func TestEmbedBitOrder(t *testing.T) {
	dst := bytes.Repeat([]byte{0xAA}, 8) // LSB clear
	cur, done := Embed(dst, []byte{0x05}, Cursor{})
	require.True(t, done)
	assert.Equal(t, Cursor{Index: 1}, cur)

	// 0x05 = 0b00000101, written LSB first
	assert.Equal(t, []byte{0xAB, 0xAA, 0xAB, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA}, dst)
}

func TestEmbedOnlyTouchesLSB(t *testing.T) {
	dst := []byte{0xFF, 0x00, 0x7F, 0x80, 0x01, 0xFE, 0x55, 0xAA}
	orig := bytes.Clone(dst)

	Embed(dst, []byte{0x00}, Cursor{})
	for i := range dst {
		assert.Equal(t, orig[i]&0xFE, dst[i])
	}

	Embed(dst, []byte{0xFF}, Cursor{})
	for i := range dst {
		assert.Equal(t, orig[i]|0x01, dst[i])
	}
}

func TestEmbedLeavesRemainder(t *testing.T) {
	// 13 bytes: 8 usable, 5 reserved
	dst := make([]byte, 13)
	cur, done := Embed(dst, []byte{0xFF, 0xFF}, Cursor{})
	assert.False(t, done)
	assert.Equal(t, Cursor{Index: 1}, cur)
	assert.Equal(t, bytes.Repeat([]byte{1}, 8), dst[:8])
	assert.Equal(t, make([]byte, 5), dst[8:])
}

func TestEmbedStopsEarly(t *testing.T) {
	dst := bytes.Repeat([]byte{0x10}, 32)
	_, done := Embed(dst, []byte{0xFF}, Cursor{})
	require.True(t, done)
	assert.Equal(t, bytes.Repeat([]byte{0x11}, 8), dst[:8])
	assert.Equal(t, bytes.Repeat([]byte{0x10}, 24), dst[8:])
}

func TestEmbedEmptyChunk(t *testing.T) {
	start := Cursor{Index: 1}
	for _, dst := range [][]byte{nil, make([]byte, 7)} {
		cur, done := Embed(dst, []byte("ab"), start)
		assert.False(t, done)
		assert.Equal(t, start, cur)
	}
}

func TestEmbedAcrossChunks(t *testing.T) {
	msg := []byte("hello, world")
	chunks := [][]byte{make([]byte, 20), make([]byte, 3), make([]byte, 40), make([]byte, 64)}

	var cur Cursor
	var done bool
	for _, c := range chunks {
		cur, done = Embed(c, msg, cur)
		if done {
			break
		}
	}
	require.True(t, done)

	e := NewExtractor(nil)
	for _, c := range chunks {
		e.Feed(c)
	}
	assert.Equal(t, msg, e.out.Bytes()[:len(msg)])
}

func TestExtractor(t *testing.T) {
	carrier := make([]byte, 8*16)
	msg := append([]byte("hi"), term...)
	_, done := Embed(carrier, msg, Cursor{})
	require.True(t, done)

	e := NewExtractor(term)
	assert.True(t, e.Feed(carrier))
	assert.True(t, e.Done())
	assert.Equal(t, []byte("hi"), e.Message())
	assert.Equal(t, 6, e.Len())
	assert.Equal(t, Cursor{Index: 6}, e.Cursor())

	// Later feeds are ignored
	assert.True(t, e.Feed(carrier))
	assert.Equal(t, 6, e.Len())
}

func TestExtractorSplitChunks(t *testing.T) {
	msg := append([]byte("split message"), term...)
	carrier := make([]byte, len(msg)*8)
	_, done := Embed(carrier, msg, Cursor{})
	require.True(t, done)

	// Feed 8 bytes at a time, with unusable chunks in between
	e := NewExtractor(term)
	for i := 0; i < len(carrier); i += 8 {
		assert.False(t, e.Feed(nil))
		if e.Feed(carrier[i : i+8]) {
			break
		}
	}
	require.True(t, e.Done())
	assert.Equal(t, []byte("split message"), e.Message())
}

func TestExtractorStopsAtFirstTerminator(t *testing.T) {
	msg := []byte("abBITxcdBITx")
	carrier := make([]byte, len(msg)*8)
	Embed(carrier, msg, Cursor{})

	e := NewExtractor(term)
	require.True(t, e.Feed(carrier))
	assert.Equal(t, []byte("ab"), e.Message())
	assert.Equal(t, 6, e.Len())
}

func TestExtractorNoTerminator(t *testing.T) {
	for _, tc := range []struct {
		name    string
		written []byte
		want    []byte
	}{
		{"plain text", []byte("hi"), []byte("hi")},
		{"partial terminator", []byte("hiBIT"), []byte("hi")},
		{"single B", []byte("abB"), []byte("ab")},
		{"not a prefix", []byte("abIT"), []byte("abIT")},
	} {
		t.Run(tc.name, func(t *testing.T) {
			carrier := make([]byte, len(tc.written)*8+5)
			Embed(carrier, tc.written, Cursor{})

			e := NewExtractor(term)
			assert.False(t, e.Feed(carrier))
			assert.False(t, e.Done())
			assert.Equal(t, tc.want, e.Message())
		})
	}
}
