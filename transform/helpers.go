// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package transform

import "github.com/gogpu/tgsi/ir"

// DeclareTemps declares TEMP[first..last].
func (c *Context) DeclareTemps(first, last uint32) error {
	return c.EmitDeclaration(&ir.Declaration{File: ir.FileTemporary, First: first, Last: last})
}

// DeclareInput declares IN[index] with a semantic and interpolation mode.
func (c *Context) DeclareInput(index uint32, name ir.SemanticName, semIndex uint32, interp ir.Interpolate) error {
	return c.EmitDeclaration(&ir.Declaration{
		File: ir.FileInput, First: index, Last: index,
		Semantic: &ir.Semantic{Name: name, Index: semIndex},
		Interp:   &ir.Interpolation{Mode: interp},
	})
}

// DeclareOutput declares OUT[index] with a semantic.
func (c *Context) DeclareOutput(index uint32, name ir.SemanticName, semIndex uint32) error {
	return c.EmitDeclaration(&ir.Declaration{
		File: ir.FileOutput, First: index, Last: index,
		Semantic: &ir.Semantic{Name: name, Index: semIndex},
	})
}

// DeclareSystemValue declares SV[index] with a semantic.
func (c *Context) DeclareSystemValue(index uint32, name ir.SemanticName, semIndex uint32) error {
	return c.EmitDeclaration(&ir.Declaration{
		File: ir.FileSystemValue, First: index, Last: index,
		Semantic: &ir.Semantic{Name: name, Index: semIndex},
	})
}

// DeclareSampler declares SAMP[index].
func (c *Context) DeclareSampler(index uint32) error {
	return c.EmitDeclaration(&ir.Declaration{File: ir.FileSampler, First: index, Last: index})
}

// DeclareSamplerView declares SVIEW[index] with a target and return type.
func (c *Context) DeclareSamplerView(index uint32, target ir.TextureTarget, ret ir.ReturnType) error {
	return c.EmitDeclaration(&ir.Declaration{
		File: ir.FileSamplerView, First: index, Last: index,
		SamplerView: &ir.SamplerViewInfo{Target: target, ReturnType: ret},
	})
}

// DeclareConstants declares CONST[first..last] in the default buffer.
func (c *Context) DeclareConstants(first, last uint32) error {
	return c.EmitDeclaration(&ir.Declaration{File: ir.FileConstant, First: first, Last: last})
}

// DeclareImmediate emits a FLT32 immediate and returns its index.
func (c *Context) DeclareImmediate(x, y, z, w float32) (uint32, error) {
	index := uint32(c.numImmediates)
	if err := c.EmitImmediate(ir.FloatImmediate(x, y, z, w)); err != nil {
		return 0, err
	}
	return index, nil
}

// Op1 emits a one-source instruction.
func (c *Context) Op1(op ir.Opcode, dst ir.Dst, src ir.Src) error {
	return c.EmitInstruction(&ir.Instruction{Opcode: op, Dst: []ir.Dst{dst}, Src: []ir.Src{src}})
}

// Op2 emits a two-source instruction.
func (c *Context) Op2(op ir.Opcode, dst ir.Dst, src0, src1 ir.Src) error {
	return c.EmitInstruction(&ir.Instruction{Opcode: op, Dst: []ir.Dst{dst}, Src: []ir.Src{src0, src1}})
}

// Op3 emits a three-source instruction.
func (c *Context) Op3(op ir.Opcode, dst ir.Dst, src0, src1, src2 ir.Src) error {
	return c.EmitInstruction(&ir.Instruction{Opcode: op, Dst: []ir.Dst{dst}, Src: []ir.Src{src0, src1, src2}})
}

// Op2Sat emits a two-source instruction with its result clamped to [0, 1].
func (c *Context) Op2Sat(op ir.Opcode, dst ir.Dst, src0, src1 ir.Src) error {
	return c.EmitInstruction(&ir.Instruction{
		Opcode: op, Saturate: true,
		Dst: []ir.Dst{dst}, Src: []ir.Src{src0, src1},
	})
}

// KillIf emits KILL_IF, which discards the fragment when any channel of
// src is negative.
func (c *Context) KillIf(src ir.Src) error {
	return c.EmitInstruction(&ir.Instruction{Opcode: ir.OpKILL_IF, Src: []ir.Src{src}})
}

// Tex emits a sampling instruction reading coord through SAMP[sampler].
func (c *Context) Tex(op ir.Opcode, dst ir.Dst, target ir.TextureTarget, coord ir.Src, sampler uint32) error {
	return c.EmitInstruction(&ir.Instruction{
		Opcode:  op,
		Texture: target,
		Dst:     []ir.Dst{dst},
		Src:     []ir.Src{coord, ir.SrcReg(ir.FileSampler, sampler)},
	})
}

// Simple emits an instruction without a destination, such as END or EMIT.
func (c *Context) Simple(op ir.Opcode, src ...ir.Src) error {
	return c.EmitInstruction(&ir.Instruction{Opcode: op, Src: src})
}

// Emitter wraps a Context for straight-line instruction sequences: it keeps
// the first error and turns every later call into a no-op, so a sequence
// needs a single check at the end.
type Emitter struct {
	ctx *Context
	err error
}

// Emitter returns a sticky-error emitter over c.
func (c *Context) Emitter() *Emitter { return &Emitter{ctx: c} }

// Err returns the first error encountered.
func (e *Emitter) Err() error { return e.err }

// Inst emits inst.
func (e *Emitter) Inst(inst *ir.Instruction) {
	if e.err == nil {
		e.err = e.ctx.EmitInstruction(inst)
	}
}

func (e *Emitter) Op1(op ir.Opcode, dst ir.Dst, src ir.Src) {
	if e.err == nil {
		e.err = e.ctx.Op1(op, dst, src)
	}
}

func (e *Emitter) Op2(op ir.Opcode, dst ir.Dst, src0, src1 ir.Src) {
	if e.err == nil {
		e.err = e.ctx.Op2(op, dst, src0, src1)
	}
}

func (e *Emitter) Op3(op ir.Opcode, dst ir.Dst, src0, src1, src2 ir.Src) {
	if e.err == nil {
		e.err = e.ctx.Op3(op, dst, src0, src1, src2)
	}
}

func (e *Emitter) Op2Sat(op ir.Opcode, dst ir.Dst, src0, src1 ir.Src) {
	if e.err == nil {
		e.err = e.ctx.Op2Sat(op, dst, src0, src1)
	}
}

func (e *Emitter) KillIf(src ir.Src) {
	if e.err == nil {
		e.err = e.ctx.KillIf(src)
	}
}

func (e *Emitter) Tex(op ir.Opcode, dst ir.Dst, target ir.TextureTarget, coord ir.Src, sampler uint32) {
	if e.err == nil {
		e.err = e.ctx.Tex(op, dst, target, coord, sampler)
	}
}

func (e *Emitter) Simple(op ir.Opcode, src ...ir.Src) {
	if e.err == nil {
		e.err = e.ctx.Simple(op, src...)
	}
}
