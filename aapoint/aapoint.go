// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package aapoint rewrites fragment programs to draw anti-aliased points.
//
// The rewritten program reads a point-local coordinate from a new input,
// kills fragments outside the unit circle and multiplies the alpha of the
// color output by a coverage ramp near the edge:
//
//	d  = s² + t²            (ModeSquared)  or  sqrt(s² + t²)  (ModeNormalized)
//	kill if d > 1
//	cov = 1                                  if d <= k
//	cov = clamp((1 - d) / (1 - k), 0, 1)     otherwise
//
// The threshold k is supplied per point by the caller, see Threshold. The
// selection is done with CMP so the injected code has no branches.
package aapoint

import (
	"github.com/gogpu/tgsi/internal/bitset"
	"github.com/gogpu/tgsi/ir"
	"github.com/gogpu/tgsi/stream"
	"github.com/gogpu/tgsi/transform"
)

// Options configures the pass.
type Options struct {
	Mode Mode

	// Capacity is the initial output size in words; zero derives it from
	// the input.
	Capacity int
}

// DefaultOptions returns squared-distance coverage.
func DefaultOptions() Options {
	return Options{Mode: ModeSquared}
}

// Result is the output of Transform.
type Result struct {
	Stream *stream.Stream

	// InputIndex is the IN register the point coordinate is read from and
	// GenericIndex its GENERIC semantic index. The caller must feed
	// (s, t, 0, k) there, with s and t spanning [-1, 1] across the point.
	InputIndex   uint32
	GenericIndex uint32
}

// Transform adds anti-aliased point coverage to a fragment program.
func Transform(in *stream.Stream, opts Options) (*Result, error) {
	h := newHandler(opts)
	out, err := transform.Run(in, h, transform.Options{Capacity: opts.Capacity})
	if err != nil {
		return nil, err
	}
	return &Result{Stream: out, InputIndex: h.coordInput, GenericIndex: h.coordSemantic}, nil
}

// TransformCoord is Transform for a coordinate produced by the sprite
// pass: IN with semantic TEXCOORD[coordIndex] (or GENERIC[coordIndex]) holds
// (u, v, k, 1) with u and v spanning [0, 1]. An existing input carrying
// that semantic is reused.
func TransformCoord(in *stream.Stream, coordIndex uint32, useTexcoord bool, opts Options) (*stream.Stream, error) {
	h := newHandler(opts)
	h.coordMode = true
	h.coordSemantic = coordIndex
	h.coordName = ir.SemanticGeneric
	if useTexcoord {
		h.coordName = ir.SemanticTexcoord
	}
	return transform.Run(in, h, transform.Options{Capacity: opts.Capacity})
}

type handler struct {
	transform.Base
	opts Options

	coordMode     bool
	coordName     ir.SemanticName
	coordSemantic uint32
	coordInput    uint32
	coordFound    bool

	temps      bitset.Set[uint32]
	maxInput   int
	maxGeneric int
	colorOut   int

	tmp      uint32
	colorTmp uint32
	imm      uint32
}

func newHandler(opts Options) *handler {
	return &handler{
		opts:       opts,
		temps:      bitset.New[uint32](32),
		maxInput:   -1,
		maxGeneric: -1,
		colorOut:   -1,
	}
}

func (h *handler) Declaration(ctx *transform.Context, decl *ir.Declaration) error {
	switch decl.File {
	case ir.FileTemporary:
		h.temps.AddRange(int(decl.First), int(decl.Last))
	case ir.FileInput:
		h.maxInput = max(h.maxInput, int(decl.Last))
		if sem := decl.Semantic; sem != nil {
			if sem.Name == ir.SemanticGeneric {
				h.maxGeneric = max(h.maxGeneric, int(sem.Index+decl.Last-decl.First))
			}
			if h.coordMode && sem.Name == h.coordName &&
				h.coordSemantic >= sem.Index && h.coordSemantic <= sem.Index+decl.Last-decl.First {
				h.coordInput = decl.First + h.coordSemantic - sem.Index
				h.coordFound = true
			}
		}
	case ir.FileOutput:
		if sem := decl.Semantic; sem != nil && sem.Name == ir.SemanticColor && sem.Index == 0 {
			h.colorOut = int(decl.First)
		}
	}
	return ctx.EmitDeclaration(decl)
}

func (h *handler) Prolog(ctx *transform.Context) error {
	if ctx.Processor() != ir.ProcessorFragment {
		return ir.Errorf(ir.ErrMalformedStream, "aapoint", "expected a fragment program, got %s", ctx.Processor())
	}

	tmp, ok := h.temps.Take()
	if !ok {
		return ir.Errorf(ir.ErrResourceExhausted, "aapoint", "no free temporary for coverage")
	}
	h.tmp = uint32(tmp)
	if h.colorOut >= 0 {
		colorTmp, ok := h.temps.Take()
		if !ok {
			return ir.Errorf(ir.ErrResourceExhausted, "aapoint", "no free temporary for color")
		}
		h.colorTmp = uint32(colorTmp)
	}

	if !h.coordFound {
		h.coordInput = uint32(h.maxInput + 1)
		if !h.coordMode {
			h.coordName = ir.SemanticGeneric
			h.coordSemantic = uint32(h.maxGeneric + 1)
		}
		if err := ctx.DeclareInput(h.coordInput, h.coordName, h.coordSemantic, ir.InterpPerspective); err != nil {
			return err
		}
	}
	if err := ctx.DeclareTemps(h.tmp, h.tmp); err != nil {
		return err
	}
	if h.colorOut >= 0 {
		if err := ctx.DeclareTemps(h.colorTmp, h.colorTmp); err != nil {
			return err
		}
	}

	var err error
	if h.imm, err = ctx.DeclareImmediate(1, 2, 0, 0); err != nil {
		return err
	}

	transform.Logger().Debug("aapoint: registers",
		"coverageTemp", h.tmp,
		"colorTemp", h.colorTmp,
		"input", h.coordInput,
		"mode", h.opts.Mode.String())
	return h.emitCoverage(ctx)
}

// emitCoverage leaves the coverage in tmp.x, or kills the fragment.
func (h *handler) emitCoverage(ctx *transform.Context) error {
	coord := ir.SrcReg(ir.FileInput, h.coordInput)
	one := ir.SrcReg(ir.FileImmediate, h.imm).Scalar(ir.X)
	two := ir.SrcReg(ir.FileImmediate, h.imm).Scalar(ir.Y)
	t := func(mask ir.WriteMask) ir.Dst { return ir.DstReg(ir.FileTemporary, h.tmp, mask) }
	ts := ir.SrcReg(ir.FileTemporary, h.tmp)

	e := ctx.Emitter()
	xy, k := coord, coord.Scalar(ir.W)
	if h.coordMode {
		// (u, v) in [0, 1] to (s, t) in [-1, 1].
		e.Op3(ir.OpMAD, t(ir.WriteXY), coord, two, one.Neg())
		xy, k = ts, coord.Scalar(ir.Z)
	}
	xyxy := xy.Swz(ir.X, ir.Y, ir.X, ir.Y)

	e.Op2(ir.OpMUL, t(ir.WriteXY), xyxy, xyxy)
	e.Op2(ir.OpADD, t(ir.WriteX), ts.Scalar(ir.X), ts.Scalar(ir.Y))
	if h.opts.Mode == ModeNormalized {
		e.Op1(ir.OpSQRT, t(ir.WriteX), ts.Scalar(ir.X))
	}
	// Outside the unit circle.
	e.Op2(ir.OpSGT, t(ir.WriteY), ts.Scalar(ir.X), one)
	e.KillIf(ts.Scalar(ir.Y).Neg())
	// 1 / (1 - k)
	e.Op2(ir.OpADD, t(ir.WriteZ), one, k.Neg())
	e.Op1(ir.OpRCP, t(ir.WriteZ), ts.Scalar(ir.Z))
	// clamp((1 - d) / (1 - k))
	e.Op2(ir.OpADD, t(ir.WriteY), one, ts.Scalar(ir.X).Neg())
	e.Op2Sat(ir.OpMUL, t(ir.WriteY), ts.Scalar(ir.Y), ts.Scalar(ir.Z))
	// k - d < 0 selects the ramp, otherwise full coverage.
	e.Op2(ir.OpADD, t(ir.WriteW), k, ts.Scalar(ir.X).Neg())
	e.Op3(ir.OpCMP, t(ir.WriteX), ts.Scalar(ir.W), ts.Scalar(ir.Y), one)
	return e.Err()
}

func (h *handler) isColor(r *ir.Register) bool {
	return h.colorOut >= 0 && r.Is(ir.FileOutput, uint32(h.colorOut)) && !r.Dimension
}

// Instruction sends color output reads and writes to the color temporary.
func (h *handler) Instruction(ctx *transform.Context, inst *ir.Instruction) error {
	touches := false
	for i := range inst.Dst {
		touches = touches || h.isColor(&inst.Dst[i].Register)
	}
	for i := range inst.Src {
		touches = touches || h.isColor(&inst.Src[i].Register)
	}
	if !touches {
		return ctx.EmitInstruction(inst)
	}
	out := inst.Clone()
	for i := range out.Dst {
		h.redirect(&out.Dst[i].Register)
	}
	for i := range out.Src {
		h.redirect(&out.Src[i].Register)
	}
	return ctx.EmitInstruction(out)
}

func (h *handler) redirect(r *ir.Register) {
	if h.isColor(r) {
		r.File, r.Index = ir.FileTemporary, int32(h.colorTmp)
	}
}

func (h *handler) Epilogue(ctx *transform.Context) error {
	if h.colorOut < 0 {
		return nil
	}
	c := uint32(h.colorOut)
	color := ir.SrcReg(ir.FileTemporary, h.colorTmp)
	if err := ctx.Op1(ir.OpMOV, ir.DstReg(ir.FileOutput, c, ir.WriteXYZ), color); err != nil {
		return err
	}
	return ctx.Op2(ir.OpMUL, ir.DstReg(ir.FileOutput, c, ir.WriteW),
		color.Scalar(ir.W), ir.SrcReg(ir.FileTemporary, h.tmp).Scalar(ir.X))
}
