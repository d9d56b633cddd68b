// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package sprite rewrites geometry programs that emit points into programs
// that emit screen-aligned quads.
//
// Every EMIT of the input becomes four vertices of a triangle strip whose
// corners are offset from the point position by half the point size. Outputs
// selected by Options.CoordEnable receive the sprite texture coordinate of
// the corner instead of the value the program wrote.
//
// The rewritten program reads two constants the caller must provide at
// Result.AuxConstIndex:
//
//	CONST[aux]   = (2/viewportWidth, 2/viewportHeight, minPointSize, maxPointSize)
//	CONST[aux+1] = (pointSize, 0, 0, 0)
//
// The x and y of CONST[aux] are the inverse of the viewport scale. The point
// size constant is used when the program does not write a PSIZE output.
package sprite

import (
	"github.com/gogpu/tgsi/aapoint"
	"github.com/gogpu/tgsi/ir"
	"github.com/gogpu/tgsi/stream"
	"github.com/gogpu/tgsi/transform"
)

// Options configures the pass.
type Options struct {
	// CoordEnable selects the texture coordinate slots replaced by the
	// sprite coordinate; bit i selects semantic index i.
	CoordEnable uint32

	// SpriteOriginLowerLeft puts t = 0 at the bottom of the sprite.
	SpriteOriginLowerLeft bool

	// StreamOutPointPos adds an output carrying the unexpanded point
	// position, for stream output.
	StreamOutPointPos bool

	// UseTexcoordSemantic names coordinate outputs TEXCOORD instead of
	// GENERIC.
	UseTexcoordSemantic bool

	// AA adds an output carrying (u, v, k, 1) for aapoint.TransformCoord.
	AA     bool
	AAMode aapoint.Mode

	// Capacity is the initial output size in words; zero derives it from
	// the input.
	Capacity int
}

// Result is the output of Transform.
type Result struct {
	Stream *stream.Stream

	// AACoordIndex is the semantic index of the anti-aliasing coordinate
	// output, or -1 when AA is off.
	AACoordIndex int

	// AuxConstIndex is the first of the two constants the program reads.
	AuxConstIndex uint32

	// StreamOutIndex is the OUT register holding the unexpanded position,
	// or -1 when StreamOutPointPos is off.
	StreamOutIndex int
}

// Transform expands points emitted by a geometry program into quads.
func Transform(in *stream.Stream, opts Options) (*Result, error) {
	h := &handler{
		opts:      opts,
		coordName: ir.SemanticGeneric,
		semantics: make(map[ir.Semantic]bool),
		posOut:    -1,
		psizeOut:  -1,
		maxTemp:   -1,
		maxConst:  -1,
		aaOut:     -1,
		aaIndex:   -1,
		soOut:     -1,
	}
	if opts.UseTexcoordSemantic {
		h.coordName = ir.SemanticTexcoord
	}
	out, err := transform.Run(in, h, transform.Options{Capacity: opts.Capacity})
	if err != nil {
		return nil, err
	}
	return &Result{
		Stream:         out,
		AACoordIndex:   h.aaIndex,
		AuxConstIndex:  h.aux,
		StreamOutIndex: h.soOut,
	}, nil
}

// Corner offsets and texture coordinates, selected from the immediate
// (-1, 1, 0, 0.5) in triangle strip order.
var corners = [4]struct {
	dir     ir.Swizzle
	tex     ir.Swizzle
	texFlip ir.Swizzle
}{
	{dir: pair(ir.X, ir.X), tex: ir.NewSwizzle(ir.Z, ir.Y, ir.Y, ir.Y), texFlip: ir.NewSwizzle(ir.Z, ir.Z, ir.Y, ir.Y)},
	{dir: pair(ir.X, ir.Y), tex: ir.NewSwizzle(ir.Z, ir.Z, ir.Y, ir.Y), texFlip: ir.NewSwizzle(ir.Z, ir.Y, ir.Y, ir.Y)},
	{dir: pair(ir.Y, ir.X), tex: ir.NewSwizzle(ir.Y, ir.Y, ir.Y, ir.Y), texFlip: ir.NewSwizzle(ir.Y, ir.Z, ir.Y, ir.Y)},
	{dir: pair(ir.Y, ir.Y), tex: ir.NewSwizzle(ir.Y, ir.Z, ir.Y, ir.Y), texFlip: ir.NewSwizzle(ir.Y, ir.Y, ir.Y, ir.Y)},
}

func pair(x, y ir.Component) ir.Swizzle { return ir.NewSwizzle(x, y, x, y) }

type handler struct {
	transform.Base
	opts      Options
	coordName ir.SemanticName

	// Declared outputs.
	numOutputs int
	semantics  map[ir.Semantic]bool
	declared   []bool
	sprite     []bool
	posOut     int
	psizeOut   int

	maxTemp  int
	maxConst int

	hasOutPrim  bool
	hasMaxVerts bool

	// Allocated in the prolog.
	spriteOuts []uint32
	aaOut      int
	aaIndex    int
	soOut      int
	tempBase   uint32
	ts         uint32
	aux        uint32
	imm        uint32
}

func (h *handler) Declaration(ctx *transform.Context, decl *ir.Declaration) error {
	switch decl.File {
	case ir.FileOutput:
		for i := decl.First; i <= decl.Last; i++ {
			h.declareOutput(int(i), decl.Semantic, i-decl.First)
		}
	case ir.FileTemporary:
		h.maxTemp = max(h.maxTemp, int(decl.Last))
	case ir.FileConstant:
		if !decl.Dimension || decl.DimIndex == 0 {
			h.maxConst = max(h.maxConst, int(decl.Last))
		}
	}
	return ctx.EmitDeclaration(decl)
}

func (h *handler) declareOutput(index int, sem *ir.Semantic, offset uint32) {
	for len(h.sprite) <= index {
		h.sprite = append(h.sprite, false)
		h.declared = append(h.declared, false)
	}
	h.declared[index] = true
	h.numOutputs = max(h.numOutputs, index+1)
	if sem == nil {
		return
	}
	s := ir.Semantic{Name: sem.Name, Index: sem.Index + offset}
	h.semantics[s] = true
	switch {
	case s.Name == ir.SemanticPosition && s.Index == 0:
		h.posOut = index
	case s.Name == ir.SemanticPSize && s.Index == 0:
		h.psizeOut = index
	case s.Name == h.coordName && h.coordEnabled(s.Index):
		h.sprite[index] = true
		h.spriteOuts = append(h.spriteOuts, uint32(index))
	}
}

func (h *handler) coordEnabled(index uint32) bool {
	return index < 32 && h.opts.CoordEnable&(1<<index) != 0
}

func (h *handler) Property(ctx *transform.Context, prop *ir.Property) error {
	switch prop.Name {
	case ir.PropGSOutputPrimitive:
		h.hasOutPrim = true
		return ctx.EmitProperty(&ir.Property{Name: prop.Name, Value: uint32(ir.PrimTriangleStrip)})
	case ir.PropGSMaxOutputVertices:
		h.hasMaxVerts = true
		return ctx.EmitProperty(&ir.Property{Name: prop.Name, Value: prop.Value * 4})
	}
	return ctx.EmitProperty(prop)
}

// freeIndex returns the lowest semantic index of name no output uses.
func (h *handler) freeIndex(name ir.SemanticName) uint32 {
	var i uint32
	for h.semantics[ir.Semantic{Name: name, Index: i}] || (name == h.coordName && h.coordEnabled(i)) {
		i++
	}
	return i
}

// newOutput declares the next free OUT register.
func (h *handler) newOutput(ctx *transform.Context, name ir.SemanticName, index uint32) (uint32, error) {
	out := uint32(h.numOutputs)
	h.numOutputs++
	h.semantics[ir.Semantic{Name: name, Index: index}] = true
	return out, ctx.DeclareOutput(out, name, index)
}

func (h *handler) Prolog(ctx *transform.Context) error {
	if ctx.Processor() != ir.ProcessorGeometry {
		return ir.Errorf(ir.ErrMalformedStream, "sprite", "expected a geometry program, got %s", ctx.Processor())
	}
	if h.posOut < 0 {
		return ir.Errorf(ir.ErrMalformedStream, "sprite", "program has no POSITION output")
	}

	if !h.hasOutPrim {
		if err := ctx.EmitProperty(&ir.Property{Name: ir.PropGSOutputPrimitive, Value: uint32(ir.PrimTriangleStrip)}); err != nil {
			return err
		}
	}
	if !h.hasMaxVerts {
		if err := ctx.EmitProperty(&ir.Property{Name: ir.PropGSMaxOutputVertices, Value: 4}); err != nil {
			return err
		}
	}

	// Temporaries shadow the outputs the program declared.
	numTemps := h.numOutputs
	h.tempBase = uint32(h.maxTemp + 1)
	h.ts = h.tempBase + uint32(numTemps)

	for i := range uint32(32) {
		if h.coordEnabled(i) && !h.semantics[ir.Semantic{Name: h.coordName, Index: i}] {
			out, err := h.newOutput(ctx, h.coordName, i)
			if err != nil {
				return err
			}
			h.spriteOuts = append(h.spriteOuts, out)
		}
	}
	if h.opts.AA {
		index := h.freeIndex(h.coordName)
		out, err := h.newOutput(ctx, h.coordName, index)
		if err != nil {
			return err
		}
		h.aaOut, h.aaIndex = int(out), int(index)
	}
	if h.opts.StreamOutPointPos {
		out, err := h.newOutput(ctx, ir.SemanticGeneric, h.freeIndex(ir.SemanticGeneric))
		if err != nil {
			return err
		}
		h.soOut = int(out)
	}

	if err := ctx.DeclareTemps(h.tempBase, h.ts); err != nil {
		return err
	}
	h.aux = uint32(h.maxConst + 1)
	if err := ctx.DeclareConstants(h.aux, h.aux+1); err != nil {
		return err
	}
	var err error
	if h.imm, err = ctx.DeclareImmediate(-1, 1, 0, 0.5); err != nil {
		return err
	}

	transform.Logger().Debug("sprite: registers",
		"temps", h.tempBase,
		"scratch", h.ts,
		"aux", h.aux,
		"spriteOutputs", h.spriteOuts,
		"aaOutput", h.aaOut,
		"streamOut", h.soOut)
	return nil
}

func (h *handler) Instruction(ctx *transform.Context, inst *ir.Instruction) error {
	for i := range inst.Dst {
		if err := h.checkOutput(&inst.Dst[i].Register); err != nil {
			return err
		}
	}
	for i := range inst.Src {
		if err := h.checkOutput(&inst.Src[i].Register); err != nil {
			return err
		}
	}

	switch inst.Opcode {
	case ir.OpEMIT:
		return h.emitQuad(ctx, inst.Src)
	case ir.OpENDPRIM:
		// Each quad ends its own strip.
		return nil
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

func (h *handler) checkOutput(r *ir.Register) error {
	if r.File == ir.FileOutput && r.Indirect != nil {
		return ir.Errorf(ir.ErrMalformedStream, "sprite", "indirect output addressing is not supported")
	}
	return nil
}

func (h *handler) redirect(r *ir.Register) {
	if r.File == ir.FileOutput && int(r.Index) < len(h.sprite) {
		r.File, r.Index = ir.FileTemporary, int32(h.tempBase)+r.Index
	}
}

func (h *handler) temp(out int) ir.Src {
	return ir.SrcReg(ir.FileTemporary, h.tempBase+uint32(out))
}

// emitQuad writes the four corners of the sprite for the current output
// values, then ends the strip.
func (h *handler) emitQuad(ctx *transform.Context, src []ir.Src) error {
	ts := ir.SrcReg(ir.FileTemporary, h.ts)
	t := func(mask ir.WriteMask) ir.Dst { return ir.DstReg(ir.FileTemporary, h.ts, mask) }
	imm := ir.SrcReg(ir.FileImmediate, h.imm)
	aux := ir.SrcReg(ir.FileConstant, h.aux)
	pos := h.temp(h.posOut)

	e := ctx.Emitter()

	// ts.x = clamp(size, min, max)
	if h.psizeOut >= 0 {
		e.Op1(ir.OpMOV, t(ir.WriteX), h.temp(h.psizeOut).Scalar(ir.X))
	} else {
		e.Op1(ir.OpMOV, t(ir.WriteX), ir.SrcReg(ir.FileConstant, h.aux+1).Scalar(ir.X))
	}
	e.Op2(ir.OpMAX, t(ir.WriteX), ts.Scalar(ir.X), aux.Scalar(ir.Z))
	e.Op2(ir.OpMIN, t(ir.WriteX), ts.Scalar(ir.X), aux.Scalar(ir.W))

	// ts.zw = size/2 * invScale * pos.w
	zw := ir.WriteZ | ir.WriteW
	e.Op2(ir.OpMUL, t(zw), ts.Scalar(ir.X), aux.Swz(ir.X, ir.X, ir.X, ir.Y))
	e.Op2(ir.OpMUL, t(zw), ts, imm.Scalar(ir.W))
	e.Op2(ir.OpMUL, t(zw), ts, pos.Scalar(ir.W))

	if h.aaOut >= 0 {
		// ts.y = k = 1 - 1/r with r = size/2, squared in ModeSquared.
		e.Op1(ir.OpRCP, t(ir.WriteY), ts.Scalar(ir.X))
		e.Op2(ir.OpADD, t(ir.WriteY), ts.Scalar(ir.Y), ts.Scalar(ir.Y))
		e.Op2(ir.OpADD, t(ir.WriteY), imm.Scalar(ir.Y), ts.Scalar(ir.Y).Neg())
		e.Op2(ir.OpMAX, t(ir.WriteY), ts.Scalar(ir.Y), imm.Scalar(ir.Z))
		if h.opts.AAMode == aapoint.ModeSquared {
			e.Op2(ir.OpMUL, t(ir.WriteY), ts.Scalar(ir.Y), ts.Scalar(ir.Y))
		}
	}

	for _, c := range corners {
		for o := range h.sprite {
			if !h.declared[o] || o == h.posOut || h.sprite[o] {
				continue
			}
			e.Op1(ir.OpMOV, ir.DstReg(ir.FileOutput, uint32(o), ir.WriteXYZW), h.temp(o))
		}

		p := uint32(h.posOut)
		offset := imm
		offset.Swizzle = c.dir
		e.Op3(ir.OpMAD, ir.DstReg(ir.FileOutput, p, ir.WriteXY), offset, ts.Swz(ir.Z, ir.W, ir.Z, ir.W), pos)
		e.Op1(ir.OpMOV, ir.DstReg(ir.FileOutput, p, zw), pos)

		tex := imm
		tex.Swizzle = c.tex
		if h.opts.SpriteOriginLowerLeft {
			tex.Swizzle = c.texFlip
		}
		for _, o := range h.spriteOuts {
			e.Op1(ir.OpMOV, ir.DstReg(ir.FileOutput, o, ir.WriteXYZW), tex)
		}
		if h.aaOut >= 0 {
			a := uint32(h.aaOut)
			e.Op1(ir.OpMOV, ir.DstReg(ir.FileOutput, a, ir.WriteXY|ir.WriteW), tex)
			e.Op1(ir.OpMOV, ir.DstReg(ir.FileOutput, a, ir.WriteZ), ts.Scalar(ir.Y))
		}
		if h.soOut >= 0 {
			e.Op1(ir.OpMOV, ir.DstReg(ir.FileOutput, uint32(h.soOut), ir.WriteXYZW), pos)
		}
		e.Simple(ir.OpEMIT, src...)
	}
	e.Simple(ir.OpENDPRIM, src...)
	return e.Err()
}
