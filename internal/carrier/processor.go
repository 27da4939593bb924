package carrier

import (
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/mattetti/avistego/internal/riff"
	"github.com/mattetti/avistego/internal/stego"
)

// Options represents the processing options
type Options struct {
	Fs      afero.Fs     // Defaults to the OS filesystem
	Logger  log.Logger   // Defaults to a no-op logger
	Codec   *stego.Codec // Defaults to stego.DefaultConfig
	NoWrite bool         // Run the embed without creating the output file
}

// Processor reads carrier files, runs the codec and writes the results
type Processor struct {
	options Options
	fs      afero.Fs
	logger  log.Logger
	codec   *stego.Codec
}

// EmbedResult describes a finished embed
type EmbedResult struct {
	Input        string
	Output       string
	Size         int
	Written      bool   // False in no-write mode
	InputDigest  uint64 // xxhash of the input file
	OutputDigest uint64 // xxhash of the output bytes
	BytesChanged int
}

// ExtractResult describes a finished extract
type ExtractResult struct {
	Input    string
	Size     int
	Message  string
	Complete bool // The terminator was found
}

// NewProcessor creates a new processor
func NewProcessor(options Options) *Processor {
	p := &Processor{
		options: options,
		fs:      options.Fs,
		logger:  options.Logger,
		codec:   options.Codec,
	}
	if p.fs == nil {
		p.fs = afero.NewOsFs()
	}
	if p.logger == nil {
		p.logger = log.NewNopLogger()
	}
	if p.codec == nil {
		cfg := stego.DefaultConfig()
		cfg.Logger = p.logger
		p.codec = stego.New(cfg)
	}
	return p
}

// Embed hides message in a copy of the input file and writes it to output.
// Nothing is written when the codec fails.
func (p *Processor) Embed(input, message, output string) (*EmbedResult, error) {
	data, err := p.readFile(input)
	if err != nil {
		return nil, err
	}

	encoded, err := p.codec.Encode(data, message)
	if err != nil {
		return nil, errors.Wrapf(err, "hiding message in %s", input)
	}

	result := &EmbedResult{
		Input:        input,
		Output:       output,
		Size:         len(encoded),
		InputDigest:  xxhash.Sum64(data),
		OutputDigest: xxhash.Sum64(encoded),
		BytesChanged: countChanged(data, encoded),
	}

	if p.options.NoWrite {
		level.Info(p.logger).Log("msg", "no-write mode, output not created", "output", output)
		return result, nil
	}

	level.Info(p.logger).Log("msg", "writing file", "path", output)
	if err := afero.WriteFile(p.fs, output, encoded, 0644); err != nil {
		return nil, errors.Wrapf(err, "error writing output file %s", output)
	}
	result.Written = true

	return result, nil
}

// Extract recovers the message hidden in the input file. When the terminator
// is missing the result is returned along with stego.ErrTerminatorNotFound.
func (p *Processor) Extract(input string) (*ExtractResult, error) {
	data, err := p.readFile(input)
	if err != nil {
		return nil, err
	}

	msg, err := p.codec.Decode(data)
	switch {
	case err == nil:
		return &ExtractResult{Input: input, Size: len(data), Message: msg, Complete: true}, nil
	case errors.Is(err, stego.ErrTerminatorNotFound):
		level.Warn(p.logger).Log("msg", "terminator not found, message may be incomplete", "path", input, "chars", len(msg))
		return &ExtractResult{Input: input, Size: len(data), Message: msg}, err
	default:
		return nil, errors.Wrapf(err, "reading message from %s", input)
	}
}

// Inspect reports the stream chunk layout of the input file
func (p *Processor) Inspect(input string) (*stego.Report, error) {
	data, err := p.readFile(input)
	if err != nil {
		return nil, err
	}

	report, err := p.codec.Inspect(data)
	if err != nil {
		return nil, errors.Wrapf(err, "inspecting %s", input)
	}
	return report, nil
}

// WriteSample writes a synthetic AVI file with the given number of video
// chunks of size bytes each, filled with pseudo random data.
func (p *Processor) WriteSample(output string, chunks, size int) error {
	if chunks < 1 || size < 0 {
		return errors.Errorf("invalid sample layout: %d chunks of %d bytes", chunks, size)
	}

	b := riff.NewBuilder(320, 240, 25)
	state := uint64(0x9E3779B97F4A7C15)
	for i := 0; i < chunks; i++ {
		data := make([]byte, size)
		for j := range data {
			// xorshift, the content only has to look busy
			state ^= state << 13
			state ^= state >> 7
			state ^= state << 17
			data[j] = byte(state)
		}
		if err := b.AddChunk("00dc", data); err != nil {
			return err
		}
	}

	f, err := p.fs.OpenFile(output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "error creating sample file %s", output)
	}
	defer f.Close()

	n, err := b.WriteTo(f)
	if err != nil {
		return errors.Wrapf(err, "error writing sample file %s", output)
	}

	level.Info(p.logger).Log("msg", "sample written", "path", output, "bytes", n, "chunks", chunks)
	return nil
}

// readFile loads a whole carrier file
func (p *Processor) readFile(path string) ([]byte, error) {
	level.Info(p.logger).Log("msg", "reading file", "path", path)

	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading input file %s", path)
	}

	level.Debug(p.logger).Log("msg", "file loaded", "path", path, "bytes", len(data), "xxhash", xxhash.Sum64(data))
	return data, nil
}

// countChanged returns the number of differing bytes of two equal length buffers
func countChanged(a, b []byte) int {
	n := 0
	for i := range a {
		if i < len(b) && a[i] != b[i] {
			n++
		}
	}
	return n
}
