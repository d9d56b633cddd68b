// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package pstipple rewrites fragment programs to apply a 32x32 polygon
// stipple pattern.
//
// The injected prolog samples the pattern texture at the fragment's window
// position and discards the fragment when the pattern bit is clear:
//
//	MUL     t, POSITION, {1/32, 1/32, 1, 1}
//	TEX     t, t, SAMP[unit], 2D
//	KILL_IF -t.wwww
//
// The caller binds the texture built by NewPatternTexture with a sampler
// built from SamplerDescriptor to the unit reported in Result.
package pstipple

import (
	"github.com/gogpu/tgsi/internal/bitset"
	"github.com/gogpu/tgsi/ir"
	"github.com/gogpu/tgsi/stream"
	"github.com/gogpu/tgsi/transform"
)

// MaxSamplers is the number of sampler units the pass can choose from.
const MaxSamplers = 32

// Options configures the pass.
type Options struct {
	// FixedUnit forces the pattern onto this sampler unit. When nil the
	// lowest unit the program does not declare is used.
	FixedUnit *int

	// PositionFile is where the window position is read from, either
	// ir.FileInput or ir.FileSystemValue.
	PositionFile ir.File

	// Capacity is the initial output size in words; zero derives it from
	// the input.
	Capacity int
}

// DefaultOptions reads the position from an input and picks a free unit.
func DefaultOptions() Options {
	return Options{PositionFile: ir.FileInput}
}

// Result is the output of Transform.
type Result struct {
	Stream *stream.Stream

	// SamplerUnit is the SAMP/SVIEW index the pattern is read through.
	SamplerUnit uint32
}

// Transform adds polygon stippling to a fragment program.
func Transform(in *stream.Stream, opts Options) (*Result, error) {
	if opts.PositionFile != ir.FileInput && opts.PositionFile != ir.FileSystemValue {
		return nil, ir.Errorf(ir.ErrMalformedStream, "pstipple", "position cannot be read from %s", opts.PositionFile)
	}
	if u := opts.FixedUnit; u != nil && (*u < 0 || *u >= MaxSamplers) {
		return nil, ir.Errorf(ir.ErrResourceExhausted, "pstipple", "sampler unit %d out of range", *u)
	}
	h := &handler{
		opts:     opts,
		samplers: bitset.New[uint32](MaxSamplers),
		temps:    bitset.New[uint32](32),
		maxPos:   -1,
		posReg:   -1,
	}
	out, err := transform.Run(in, h, transform.Options{Capacity: opts.Capacity})
	if err != nil {
		return nil, err
	}
	return &Result{Stream: out, SamplerUnit: h.unit}, nil
}

type handler struct {
	transform.Base
	opts Options

	samplers bitset.Set[uint32]
	temps    bitset.Set[uint32]

	// maxPos is the highest declared index in opts.PositionFile and posReg
	// the register holding POSITION, if any.
	maxPos int
	posReg int

	unit uint32
	tmp  uint32
	imm  uint32
}

func (h *handler) Declaration(ctx *transform.Context, decl *ir.Declaration) error {
	switch decl.File {
	case ir.FileSampler:
		h.samplers.AddRange(int(decl.First), int(decl.Last))
	case ir.FileTemporary:
		h.temps.AddRange(int(decl.First), int(decl.Last))
	case h.opts.PositionFile:
		h.maxPos = max(h.maxPos, int(decl.Last))
		if sem := decl.Semantic; sem != nil && sem.Name == ir.SemanticPosition && h.posReg < 0 {
			h.posReg = int(decl.First)
		}
	}
	return ctx.EmitDeclaration(decl)
}

func (h *handler) Prolog(ctx *transform.Context) error {
	if ctx.Processor() != ir.ProcessorFragment {
		return ir.Errorf(ir.ErrMalformedStream, "pstipple", "expected a fragment program, got %s", ctx.Processor())
	}

	if u := h.opts.FixedUnit; u != nil {
		if h.samplers.Has(*u) {
			return ir.Errorf(ir.ErrResourceExhausted, "pstipple", "sampler unit %d is in use", *u)
		}
		h.unit = uint32(*u)
	} else {
		u, ok := h.samplers.FirstClear()
		if !ok {
			return ir.Errorf(ir.ErrResourceExhausted, "pstipple", "no free sampler unit")
		}
		h.unit = uint32(u)
	}
	tmp, ok := h.temps.Take()
	if !ok {
		return ir.Errorf(ir.ErrResourceExhausted, "pstipple", "no free temporary")
	}
	h.tmp = uint32(tmp)

	if h.posReg < 0 {
		h.posReg = h.maxPos + 1
		var err error
		if h.opts.PositionFile == ir.FileInput {
			err = ctx.DeclareInput(uint32(h.posReg), ir.SemanticPosition, 0, ir.InterpLinear)
		} else {
			err = ctx.DeclareSystemValue(uint32(h.posReg), ir.SemanticPosition, 0)
		}
		if err != nil {
			return err
		}
	}
	if err := ctx.DeclareSampler(h.unit); err != nil {
		return err
	}
	if err := ctx.DeclareSamplerView(h.unit, ir.Texture2D, ir.ReturnFloat); err != nil {
		return err
	}
	if err := ctx.DeclareTemps(h.tmp, h.tmp); err != nil {
		return err
	}
	var err error
	if h.imm, err = ctx.DeclareImmediate(1.0/PatternSize, 1.0/PatternSize, 1, 1); err != nil {
		return err
	}

	transform.Logger().Debug("pstipple: registers",
		"sampler", h.unit,
		"temp", h.tmp,
		"position", h.opts.PositionFile.String(),
		"positionIndex", h.posReg)

	t := ir.DstReg(ir.FileTemporary, h.tmp, ir.WriteXYZW)
	e := ctx.Emitter()
	e.Op2(ir.OpMUL, t, ir.SrcReg(h.opts.PositionFile, uint32(h.posReg)), ir.SrcReg(ir.FileImmediate, h.imm))
	e.Tex(ir.OpTEX, t, ir.Texture2D, t.AsSrc(), h.unit)
	e.KillIf(t.AsSrc().Scalar(ir.W).Neg())
	return e.Err()
}
