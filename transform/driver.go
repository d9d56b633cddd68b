// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package transform rewrites a token stream into a new one by routing every
// input token through a Handler.
//
// The driver owns the output buffer. Handlers produce output only through
// the emit methods of Context, which grow the buffer and retry as needed,
// so a pass never deals with buffer space itself. Any error aborts the run
// and no partial output is returned.
package transform

import (
	"github.com/gogpu/tgsi/ir"
	"github.com/gogpu/tgsi/stream"
)

// Options configures a transform run.
type Options struct {
	// Capacity is the initial output buffer size in words. Zero sizes the
	// buffer from the input.
	Capacity int

	// MaxWords caps output growth. Zero means stream.MaxWords.
	MaxWords int
}

// DefaultOptions returns the default run options.
func DefaultOptions() Options {
	return Options{}
}

// Shader runs h over in with an initial output capacity in words.
func Shader(in *stream.Stream, capacity int, h Handler) (*stream.Stream, error) {
	return Run(in, h, Options{Capacity: capacity})
}

// Run runs h over in and returns the newly built stream.
func Run(in *stream.Stream, h Handler, opts Options) (*stream.Stream, error) {
	if in == nil {
		return nil, ir.Errorf(ir.ErrMalformedStream, "transform", "nil input stream")
	}
	p, err := stream.NewParser(in.Words())
	if err != nil {
		return nil, err
	}

	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = len(in.Words()) + len(in.Words())/2
	}
	b := stream.NewBuilder(capacity, p.Processor())
	if opts.MaxWords > 0 {
		b.SetLimit(opts.MaxWords)
	}

	d := &driver{
		p:     p,
		h:     h,
		ctx:   &Context{b: b, proc: p.Processor()},
		first: true,
	}
	if err := d.run(); err != nil {
		b.Abort()
		return nil, err
	}
	d.ctx.applyLabels()
	out := b.Finalize()

	Logger().Debug("transform: done",
		"processor", p.Processor().String(),
		"inWords", len(in.Words()),
		"outWords", len(out.Words()),
		"grows", d.ctx.grows)
	return out, nil
}

// driver walks the input and tracks the structure the epilogue placement
// depends on.
type driver struct {
	p   *stream.Parser
	h   Handler
	ctx *Context

	// nesting counts open IF/UIF/SWITCH/BGNLOOP blocks, subDepth open
	// BGNSUB bodies.
	nesting  int
	subDepth int

	first        bool
	epilogueDone bool
}

func (d *driver) run() error {
	for !d.p.End() {
		tok, err := d.p.Next()
		if err != nil {
			return err
		}
		if _, ok := tok.(*ir.Instruction); !ok && !d.first {
			// The prolog has already numbered its registers and
			// immediates after everything declared so far.
			return d.malformed("%s after the first instruction", tok.Kind())
		}
		switch t := tok.(type) {
		case *ir.Declaration:
			err = d.h.Declaration(d.ctx, t)
		case *ir.Immediate:
			err = d.h.Immediate(d.ctx, t)
		case *ir.Property:
			err = d.h.Property(d.ctx, t)
		case *ir.Instruction:
			err = d.instruction(t)
		}
		if err != nil {
			return err
		}
	}

	if d.subDepth != 0 {
		return d.malformed("%d subroutine(s) not closed by ENDSUB", d.subDepth)
	}
	if d.nesting != 0 {
		return d.malformed("%d block(s) not closed at end of program", d.nesting)
	}
	if !d.first && !d.epilogueDone {
		return d.malformed("program has no END")
	}
	return nil
}

func (d *driver) instruction(inst *ir.Instruction) error {
	if d.first {
		d.first = false
		if err := d.h.Prolog(d.ctx); err != nil {
			return err
		}
	}
	d.ctx.labelMap = append(d.ctx.labelMap, d.ctx.numInstructions)

	switch inst.Opcode.Info().Flow {
	case ir.FlowOpen:
		d.nesting++
	case ir.FlowElse:
		if d.nesting == 0 {
			return d.malformed("ELSE outside a conditional")
		}
	case ir.FlowClose:
		if d.nesting == 0 {
			return d.malformed("%s without a matching opener", inst.Opcode)
		}
		d.nesting--
	case ir.FlowSubBegin:
		d.subDepth++
	case ir.FlowSubEnd:
		if d.subDepth == 0 {
			return d.malformed("ENDSUB without BGNSUB")
		}
		d.subDepth--
	}

	op := inst.Opcode
	if (op == ir.OpEND || op == ir.OpRET) && d.subDepth == 0 && !d.epilogueDone {
		if d.nesting != 0 {
			// An early return inside a block would skip the epilogue.
			return d.malformed("%s inside %d open block(s) of the main body", op, d.nesting)
		}
		if err := d.h.Epilogue(d.ctx); err != nil {
			return err
		}
		d.epilogueDone = true
		return d.ctx.EmitInstruction(inst)
	}
	return d.h.Instruction(d.ctx, inst)
}

func (d *driver) malformed(format string, args ...any) error {
	return ir.Errorf(ir.ErrMalformedStream, "transform", format, args...)
}
