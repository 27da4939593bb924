package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/mattetti/avistego/internal/carrier"
	"github.com/mattetti/avistego/internal/stego"
)

const VERSION = "1.0.0"

// Exit codes
const (
	exitError      = 1
	exitIncomplete = 2
)

func main() {
	app := newApp()
	kingpin.MustParse(app.Parse(os.Args[1:]))
}

// newApp declares the commands. "r"/"R" and "w"/"W" keep the short read and
// write modes working.
func newApp() *kingpin.Application {
	app := kingpin.New("avistego", "Hide a text message in the video stream of an AVI file, or read it back.")
	app.Version(VERSION)
	app.HelpFlag.Short('h')

	debugMode := app.Flag("debug", "Debug mode").Short('d').Bool()

	extract := &extractCommand{debug: debugMode}
	extractCmd := app.Command("extract", "Print the message hidden in a file.").Alias("r").Alias("R").Action(extract.run)
	extract.input = extractCmd.Arg("input", "AVI file to read.").Required().String()

	embed := &embedCommand{debug: debugMode}
	embedCmd := app.Command("embed", "Hide a message in a copy of a file.").Alias("w").Alias("W").Action(embed.run)
	embed.input = embedCmd.Arg("input", "AVI file to hide the message in.").Required().String()
	embed.message = embedCmd.Arg("message", "Text to hide.").Required().String()
	embed.output = embedCmd.Arg("output", "Where to write the resulting file.").Required().String()
	embed.dryRun = embedCmd.Flag("dry-run", "Hide the message in memory without writing the output file.").Bool()

	inspect := &inspectCommand{debug: debugMode}
	inspectCmd := app.Command("inspect", "List the stream chunks of a file and how much they can hold.").Action(inspect.run)
	inspect.input = inspectCmd.Arg("input", "AVI file to inspect.").Required().String()

	sample := &sampleCommand{debug: debugMode}
	sampleCmd := app.Command("sample", "Write a synthetic AVI file to try the tool on.").Action(sample.run)
	sample.output = sampleCmd.Arg("output", "File to create.").Required().String()
	sample.chunks = sampleCmd.Flag("chunks", "Number of video chunks.").Default("16").Int()
	sample.size = sampleCmd.Flag("size", "Size of each video chunk in bytes.").Default("4096").Int()

	return app
}

// newProcessor builds the processor shared by all commands
func newProcessor(debug bool, noWrite bool) *carrier.Processor {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	if debug {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	return carrier.NewProcessor(carrier.Options{
		Logger:  logger,
		NoWrite: noWrite,
	})
}

type extractCommand struct {
	debug *bool
	input *string
}

func (cmd *extractCommand) run(_ *kingpin.ParseContext) error {
	p := newProcessor(*cmd.debug, false)

	res, err := p.Extract(*cmd.input)
	if err != nil && !errors.Is(err, stego.ErrTerminatorNotFound) {
		exitWithErr(err)
	}

	fmt.Printf("Hidden message: %s\n", res.Message)
	if !res.Complete {
		color.New(color.FgYellow).Fprintln(os.Stderr, "Warning: no end of message marker found, the message may be incomplete or the file may carry none.")
		os.Exit(exitIncomplete)
	}
	return nil
}

type embedCommand struct {
	debug   *bool
	input   *string
	message *string
	output  *string
	dryRun  *bool
}

func (cmd *embedCommand) run(_ *kingpin.ParseContext) error {
	p := newProcessor(*cmd.debug, *cmd.dryRun)

	res, err := p.Embed(*cmd.input, *cmd.message, *cmd.output)
	if err != nil {
		exitWithErr(err)
	}

	if !res.Written {
		fmt.Printf("Message '%s' fits into '%s' (dry run, nothing written).\n", *cmd.message, res.Input)
	} else {
		fmt.Printf("Message '%s' has been hidden into '%s' file.\n", *cmd.message, res.Output)
	}
	if *cmd.debug {
		fmt.Printf("%s, %s bytes changed, xxhash %016x -> %016x\n",
			humanize.Bytes(uint64(res.Size)), humanize.Comma(int64(res.BytesChanged)), res.InputDigest, res.OutputDigest)
	}
	return nil
}

type inspectCommand struct {
	debug *bool
	input *string
}

func (cmd *inspectCommand) run(_ *kingpin.ParseContext) error {
	p := newProcessor(*cmd.debug, false)

	report, err := p.Inspect(*cmd.input)
	if err != nil {
		exitWithErr(err)
	}

	bold := color.New(color.Bold)
	bold.Printf("%s\n", *cmd.input)
	fmt.Printf("\tmovi list at byte %d, %d stream chunks, walk ended at %s\n",
		report.MarkerOffset, len(report.Chunks), report.Stop)
	fmt.Printf("\tusable bytes: %s, capacity: %s characters\n",
		humanize.Comma(int64(report.UsableBytes)), humanize.Comma(int64(report.Capacity)))

	if *cmd.debug {
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "\ttag\toffset\tsize\tusable")
		for _, c := range report.Chunks {
			fmt.Fprintf(tw, "\t%s\t%d\t%s\t%d\n", c.Tag, c.Offset, humanize.Bytes(uint64(c.Length)), c.Usable)
		}
		tw.Flush()
	}
	return nil
}

type sampleCommand struct {
	debug  *bool
	output *string
	chunks *int
	size   *int
}

func (cmd *sampleCommand) run(_ *kingpin.ParseContext) error {
	p := newProcessor(*cmd.debug, false)

	if err := p.WriteSample(*cmd.output, *cmd.chunks, *cmd.size); err != nil {
		exitWithErr(err)
	}

	fmt.Printf("Sample written to %s (%d chunks of %s).\n", *cmd.output, *cmd.chunks, humanize.Bytes(uint64(*cmd.size)))
	return nil
}

func exitWithErr(err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.Is(err, stego.ErrMarkerNotFound) {
		fmt.Fprintln(os.Stderr, "Make sure the input file is an actual AVI.")
	}
	os.Exit(exitError)
}
