// Package tgsi assembles, rewrites and disassembles shader token streams.
//
// A token stream is the binary form of a shader program: a two-word header
// followed by declarations, immediates, instructions and properties. This
// package ties the stages together:
//   - text: assemble and disassemble the human-readable form
//   - transform: the driver every rewrite runs on
//   - aapoint, sprite, pstipple: the rewrites
//
// Example usage:
//
//	s, err := tgsi.Compile(`FRAG
//	DCL IN[0], COLOR, COLOR
//	DCL OUT[0], COLOR
//	MOV OUT[0], IN[0]
//	END
//	`, tgsi.Options{Pass: tgsi.PassAAPoint, AAPoint: aapoint.DefaultOptions()})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	listing, _ := tgsi.Disassemble(s)
package tgsi

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/tgsi/aapoint"
	"github.com/gogpu/tgsi/ir"
	"github.com/gogpu/tgsi/pstipple"
	"github.com/gogpu/tgsi/sprite"
	"github.com/gogpu/tgsi/stream"
	"github.com/gogpu/tgsi/text"
	"github.com/gogpu/tgsi/transform"
)

// Pass names a rewrite.
type Pass string

const (
	// PassNone copies the program through the transform driver unchanged.
	PassNone     Pass = "none"
	PassAAPoint  Pass = "aapoint"
	PassSprite   Pass = "sprite"
	PassPStipple Pass = "pstipple"

	// PassAAPointCoord is aapoint reading the point coordinate from the
	// input named by Options.Coord.
	PassAAPointCoord Pass = "aapoint-coord"
)

// Passes lists every pass name Apply accepts.
var Passes = []Pass{PassNone, PassAAPoint, PassAAPointCoord, PassSprite, PassPStipple}

// CoordOptions names the input aapoint-coord reads: GENERIC[Index], or
// TEXCOORD[Index] with UseTexcoord.
type CoordOptions struct {
	Index       uint32
	UseTexcoord bool
}

// Options selects a pass and configures it. Only the options of the
// selected pass are read.
type Options struct {
	Pass Pass

	AAPoint  aapoint.Options
	Coord    CoordOptions
	Sprite   sprite.Options
	PStipple pstipple.Options
}

// DefaultOptions returns a pass-through with every pass at its defaults.
func DefaultOptions() Options {
	return Options{
		Pass:     PassNone,
		AAPoint:  aapoint.DefaultOptions(),
		PStipple: pstipple.DefaultOptions(),
	}
}

// Result is the output of Apply. Index fields are those reported by the
// selected pass and are -1 when it reports none.
type Result struct {
	Stream *stream.Stream

	// InputIndex is the IN register aapoint and aapoint-coord read the
	// point coordinate from.
	InputIndex int

	// SamplerUnit is the sampler pstipple reads the pattern through.
	SamplerUnit int

	// AACoordIndex, AuxConstIndex and StreamOutIndex are reported by sprite.
	AACoordIndex   int
	AuxConstIndex  int
	StreamOutIndex int
}

// Assemble parses the text form of a program into a token stream.
func Assemble(source string) (*stream.Stream, error) {
	return text.Assemble(source)
}

// Disassemble prints a token stream in text form.
func Disassemble(s *stream.Stream) (string, error) {
	return text.Dump(s)
}

// Compile assembles source and applies the selected pass.
func Compile(source string, opts Options) (*stream.Stream, error) {
	s, err := Assemble(source)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	res, err := Apply(s, opts)
	if err != nil {
		return nil, err
	}
	return res.Stream, nil
}

// Apply runs the selected pass over s.
func Apply(s *stream.Stream, opts Options) (*Result, error) {
	res := &Result{InputIndex: -1, SamplerUnit: -1, AACoordIndex: -1, AuxConstIndex: -1, StreamOutIndex: -1}
	var err error
	switch opts.Pass {
	case PassNone, "":
		res.Stream, err = transform.Run(s, transform.Base{}, transform.DefaultOptions())
	case PassAAPoint:
		var r *aapoint.Result
		if r, err = aapoint.Transform(s, opts.AAPoint); err == nil {
			res.Stream, res.InputIndex = r.Stream, int(r.InputIndex)
		}
	case PassAAPointCoord:
		if res.Stream, err = aapoint.TransformCoord(s, opts.Coord.Index, opts.Coord.UseTexcoord, opts.AAPoint); err == nil {
			res.InputIndex, err = coordInput(res.Stream, opts.Coord)
		}
	case PassSprite:
		var r *sprite.Result
		if r, err = sprite.Transform(s, opts.Sprite); err == nil {
			res.Stream = r.Stream
			res.AACoordIndex, res.AuxConstIndex, res.StreamOutIndex = r.AACoordIndex, int(r.AuxConstIndex), r.StreamOutIndex
		}
	case PassPStipple:
		var r *pstipple.Result
		if r, err = pstipple.Transform(s, opts.PStipple); err == nil {
			res.Stream, res.SamplerUnit = r.Stream, int(r.SamplerUnit)
		}
	default:
		return nil, fmt.Errorf("unknown pass %q", opts.Pass)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opts.Pass, err)
	}
	return res, nil
}

// coordInput finds the register the coordinate semantic ended up on.
func coordInput(s *stream.Stream, c CoordOptions) (int, error) {
	info, err := stream.Scan(s)
	if err != nil {
		return -1, err
	}
	name := ir.SemanticGeneric
	if c.UseTexcoord {
		name = ir.SemanticTexcoord
	}
	reg, ok := info.FindInput(name, c.Index)
	if !ok {
		return -1, nil
	}
	return int(reg), nil
}

// ParsePass resolves a pass name.
func ParsePass(name string) (Pass, bool) {
	for _, p := range Passes {
		if string(p) == name {
			return p, true
		}
	}
	return "", false
}

// SetLogger configures the logger used by the driver and every pass.
// Pass nil to silence logging again.
func SetLogger(l *slog.Logger) {
	transform.SetLogger(l)
}
