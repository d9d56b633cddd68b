// Command tgsix assembles, rewrites and prints shader token streams.
//
// Usage:
//
//	tgsix [options] <input>
//	cat input.tgsi | tgsix [options]
//
// The input is either the text form or a binary stream; binary input is
// recognized by its header. Output is text on a terminal and binary
// otherwise, unless -format says differently.
//
// Examples:
//
//	tgsix shader.tgsi                         # Assemble and print
//	tgsix -pass aapoint shader.tgsi           # Anti-aliased point variant
//	tgsix -pass aapoint-coord -coord-index 2 -texcoord fs.tgsi
//	tgsix -pass sprite -coord-enable 4 gs.tgsi
//	tgsix -pass pstipple -o out.bin fs.tgsi   # Write a binary stream
//	tgsix -info shader.bin                    # Summarize a stream
//
// Config file:
//
//	tgsix looks for tgsix.json or .tgsixrc in the input's directory and
//	its parents. Config file options are overridden by CLI flags.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/term"

	"github.com/gogpu/tgsi"
	"github.com/gogpu/tgsi/internal/config"
	"github.com/gogpu/tgsi/stream"
)

var version = "0.1.0-dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		outputFile  string
		configFile  string
		noConfig    bool
		format      string
		showInfo    bool
		verbose     bool
		showVersion bool

		pass        string
		capacity    int
		mode        string
		coordIndex  uint
		coordEnable uint
		lowerLeft   bool
		streamOut   bool
		texcoord    bool
		aa          bool
		samplerUnit int
		position    string
	)

	flag.StringVar(&outputFile, "o", "", "Write output to `file` (default: stdout)")
	flag.StringVar(&configFile, "config", "", "Use specific config `file`")
	flag.BoolVar(&noConfig, "no-config", false, "Ignore config files")
	flag.StringVar(&format, "format", "auto", "Output format: text, binary or auto")
	flag.BoolVar(&showInfo, "info", false, "Print a summary of the resulting stream")
	flag.BoolVar(&verbose, "v", false, "Log pass decisions to stderr")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")

	flag.StringVar(&pass, "pass", "", "Rewrite to run: "+passNames())
	flag.IntVar(&capacity, "capacity", 0, "Initial output buffer size in words")
	flag.StringVar(&mode, "mode", "", "AA distance mode: squared or normalized")
	flag.UintVar(&coordIndex, "coord-index", 0, "aapoint-coord: semantic index of the coordinate input")
	flag.UintVar(&coordEnable, "coord-enable", 0, "sprite: texture coordinate slots replaced by the sprite coordinate (bit mask)")
	flag.BoolVar(&lowerLeft, "lower-left", false, "sprite: put t = 0 at the bottom of the sprite")
	flag.BoolVar(&streamOut, "stream-out", false, "sprite: add an output with the unexpanded position")
	flag.BoolVar(&texcoord, "texcoord", false, "sprite, aapoint-coord: use TEXCOORD instead of GENERIC")
	flag.BoolVar(&aa, "aa", false, "sprite: add an anti-aliasing coordinate output")
	flag.IntVar(&samplerUnit, "sampler-unit", -1, "pstipple: fixed sampler unit (-1 picks a free one)")
	flag.StringVar(&position, "position", "", "pstipple: position register file, IN or SV")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tgsix - shader token stream tool v%s\n\n", version)
		fmt.Fprintf(os.Stderr, "Usage: tgsix [options] <input>\n")
		fmt.Fprintf(os.Stderr, "       cat input.tgsi | tgsix [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nConfig file:\n")
		fmt.Fprintf(os.Stderr, "  Searches for tgsix.json or .tgsixrc in the input's and parent directories.\n")
		fmt.Fprintf(os.Stderr, "  CLI flags override config file settings.\n")
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("tgsix v%s\n", version)
		return nil
	}
	if verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		tgsi.SetLogger(logger)
		slog.SetDefault(logger)
	}

	data, err := readInput()
	if err != nil {
		return err
	}
	in, err := decode(data)
	if err != nil {
		return err
	}

	var cfg *config.Config
	if !noConfig {
		if configFile != "" {
			cfg, err = config.LoadFile(configFile)
			if err != nil {
				return fmt.Errorf("loading config file %s: %w", configFile, err)
			}
		} else {
			startDir, _ := os.Getwd()
			if flag.NArg() > 0 {
				startDir = filepath.Dir(flag.Arg(0))
			}
			var configPath string
			cfg, configPath, err = config.Load(startDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if configPath != "" {
				slog.Debug("using config", "path", configPath)
			}
		}
	}

	// Only flags given on the command line override the config.
	cli := config.MergeOptions{Pass: pass, Mode: mode, Position: position}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "capacity":
			cli.Capacity = &capacity
		case "coord-index":
			idx := uint32(coordIndex)
			cli.CoordIndex = &idx
		case "coord-enable":
			mask := uint32(coordEnable)
			cli.CoordEnable = &mask
		case "lower-left":
			cli.LowerLeft = &lowerLeft
		case "stream-out":
			cli.StreamOut = &streamOut
		case "texcoord":
			cli.Texcoord = &texcoord
		case "aa":
			cli.AA = &aa
		case "sampler-unit":
			if samplerUnit >= 0 {
				cli.FixedUnit = &samplerUnit
			}
		}
	})
	opts, err := cfg.Merge(cli)
	if err != nil {
		return err
	}

	res, err := tgsi.Apply(in, opts)
	if err != nil {
		return err
	}

	var output io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	if showInfo {
		return printInfo(output, res)
	}

	switch format {
	case "auto":
		if outputFile == "" && term.IsTerminal(int(os.Stdout.Fd())) {
			format = "text"
		} else if outputFile != "" && filepath.Ext(outputFile) == ".tgsi" {
			format = "text"
		} else {
			format = "binary"
		}
	case "text", "binary":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	if format == "binary" {
		_, err = output.Write(res.Stream.Bytes())
		return err
	}
	listing, err := tgsi.Disassemble(res.Stream)
	if err != nil {
		return err
	}
	_, err = io.WriteString(output, listing)
	return err
}

// readInput reads the named file, or stdin when it is not a terminal.
func readInput() ([]byte, error) {
	if flag.NArg() > 0 {
		data, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		return data, nil
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		flag.Usage()
		return nil, fmt.Errorf("no input file specified")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return data, nil
}

// decode accepts either form. A binary stream starts with its header,
// whose low byte is the header size, which no text program starts with.
func decode(data []byte) (*stream.Stream, error) {
	if len(data) >= 4*stream.HeaderSize && data[0] == stream.HeaderSize {
		return stream.FromBytes(data)
	}
	return tgsi.Assemble(string(data))
}

func printInfo(w io.Writer, res *tgsi.Result) error {
	info, err := stream.Scan(res.Stream)
	if err != nil {
		return err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "processor:    %s\n", info.Processor)
	fmt.Fprintf(&sb, "words:        %d\n", len(res.Stream.Words()))
	fmt.Fprintf(&sb, "declarations: %d\n", info.NumDeclarations)
	fmt.Fprintf(&sb, "immediates:   %d\n", info.NumImmediates)
	fmt.Fprintf(&sb, "instructions: %d\n", info.NumInstructions)
	fmt.Fprintf(&sb, "properties:   %d\n", info.NumProperties)
	if len(info.Samplers) > 0 {
		fmt.Fprintf(&sb, "samplers:     %v\n", info.Samplers)
	}
	if info.UsesKill {
		sb.WriteString("uses kill\n")
	}

	for _, idx := range []struct {
		name string
		v    int
	}{
		{"coordinate input", res.InputIndex},
		{"sampler unit", res.SamplerUnit},
		{"aa coordinate", res.AACoordIndex},
		{"aux constant", res.AuxConstIndex},
		{"stream-out output", res.StreamOutIndex},
	} {
		if idx.v >= 0 {
			fmt.Fprintf(&sb, "%-14s %d\n", idx.name+":", idx.v)
		}
	}

	ops := make([]string, 0, len(info.Opcodes))
	for op, n := range info.Opcodes {
		ops = append(ops, fmt.Sprintf("%s=%d", op, n))
	}
	sort.Strings(ops)
	fmt.Fprintf(&sb, "opcodes:      %s\n", strings.Join(ops, " "))

	_, err = io.WriteString(w, sb.String())
	return err
}

func passNames() string {
	names := make([]string, len(tgsi.Passes))
	for i, p := range tgsi.Passes {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
