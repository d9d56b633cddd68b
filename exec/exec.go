// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package exec interprets token streams one invocation at a time.
//
// It is a reference implementation used to check what a program computes,
// not a fast one: registers are four float32 channels, integer opcodes
// reinterpret the channel bits, and derivatives evaluate to zero.
package exec

import (
	"errors"

	"github.com/gogpu/tgsi/ir"
	"github.com/gogpu/tgsi/stream"
)

// Vec4 is one register.
type Vec4 [4]float32

// DefaultMaxSteps bounds the instructions a single Run may execute.
const DefaultMaxSteps = 1 << 20

// ErrStepLimit is returned when a run exceeds its step budget.
var ErrStepLimit = errors.New("exec: step limit exceeded")

// Sampler answers texture fetches.
type Sampler interface {
	Sample(unit uint32, target ir.TextureTarget, coord Vec4) Vec4
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func(unit uint32, target ir.TextureTarget, coord Vec4) Vec4

// Sample calls f.
func (f SamplerFunc) Sample(unit uint32, target ir.TextureTarget, coord Vec4) Vec4 {
	return f(unit, target, coord)
}

// Env holds the inputs of one invocation.
type Env struct {
	// Inputs are the IN registers of fragment and vertex programs.
	Inputs []Vec4

	// VertexInputs are the IN registers of geometry programs, indexed by
	// vertex then register.
	VertexInputs [][]Vec4

	SystemValues []Vec4

	// Constants are indexed by buffer then register. Unqualified CONST
	// operands read buffer 0.
	Constants [][]Vec4

	Sampler Sampler

	// MaxSteps overrides DefaultMaxSteps when positive.
	MaxSteps int
}

// Result is the state a run finished in.
type Result struct {
	Outputs []Vec4
	Killed  bool

	// Vertices holds a copy of Outputs for every EMIT.
	Vertices [][]Vec4

	// Primitives holds the vertex count of every ENDPRIM.
	Primitives []int
}

// Program is a decoded stream ready to run.
type Program struct {
	proc  ir.Processor
	insts []*ir.Instruction
	imms  []Vec4

	numTemps   int
	numOutputs int
	numAddrs   int

	// match links block openers, ELSE and closers to their partners, and
	// BRK/CONT to the ENDLOOP of their loop.
	match []int
}

// Load decodes s and resolves its control flow.
func Load(s *stream.Stream) (*Program, error) {
	tokens, err := s.Tokens()
	if err != nil {
		return nil, err
	}
	p := &Program{proc: s.Processor()}
	for _, tok := range tokens {
		switch t := tok.(type) {
		case *ir.Declaration:
			p.declare(t)
		case *ir.Immediate:
			var v Vec4
			for i, bits := range t.Values {
				v[i] = fromBits(bits)
			}
			p.imms = append(p.imms, v)
		case *ir.Instruction:
			p.insts = append(p.insts, t)
		}
	}
	if err := p.link(); err != nil {
		return nil, err
	}
	return p, nil
}

// Processor returns the stage the program was built for.
func (p *Program) Processor() ir.Processor { return p.proc }

func (p *Program) declare(d *ir.Declaration) {
	n := int(d.Last) + 1
	switch d.File {
	case ir.FileTemporary:
		p.numTemps = max(p.numTemps, n)
	case ir.FileOutput:
		p.numOutputs = max(p.numOutputs, n)
	case ir.FileAddress:
		p.numAddrs = max(p.numAddrs, n)
	}
}

func (p *Program) link() error {
	p.match = make([]int, len(p.insts))
	for i := range p.match {
		p.match[i] = -1
	}

	type frame struct {
		op     ir.Opcode
		start  int
		elsePC int
		breaks []int
	}
	var stack []frame
	for pc, inst := range p.insts {
		switch inst.Opcode {
		case ir.OpIF, ir.OpUIF, ir.OpBGNLOOP, ir.OpSWITCH:
			stack = append(stack, frame{op: inst.Opcode, start: pc, elsePC: -1})
		case ir.OpELSE:
			if len(stack) == 0 || (stack[len(stack)-1].op != ir.OpIF && stack[len(stack)-1].op != ir.OpUIF) {
				return malformed("ELSE at %d outside a conditional", pc)
			}
			top := &stack[len(stack)-1]
			top.elsePC = pc
			p.match[top.start] = pc
		case ir.OpENDIF, ir.OpENDLOOP, ir.OpENDSWITCH:
			if len(stack) == 0 {
				return malformed("%s at %d without an opener", inst.Opcode, pc)
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if closerOf(top.op) != inst.Opcode {
				return malformed("%s at %d closes %s at %d", inst.Opcode, pc, top.op, top.start)
			}
			switch inst.Opcode {
			case ir.OpENDIF:
				if top.elsePC >= 0 {
					p.match[top.elsePC] = pc
				} else {
					p.match[top.start] = pc
				}
			case ir.OpENDLOOP:
				p.match[top.start] = pc
				p.match[pc] = top.start
				for _, b := range top.breaks {
					p.match[b] = pc
				}
			}
		case ir.OpBRK, ir.OpCONT:
			loop, inSwitch := -1, false
			for i := len(stack) - 1; i >= 0 && loop < 0; i-- {
				switch stack[i].op {
				case ir.OpBGNLOOP:
					loop = i
				case ir.OpSWITCH:
					inSwitch = true
				}
			}
			switch {
			case loop >= 0:
				stack[loop].breaks = append(stack[loop].breaks, pc)
			case inst.Opcode == ir.OpBRK && inSwitch:
				// Runs fail on SWITCH before reaching it.
			default:
				return malformed("%s at %d outside a loop", inst.Opcode, pc)
			}
		}
	}
	if len(stack) != 0 {
		return malformed("%s at %d is never closed", stack[len(stack)-1].op, stack[len(stack)-1].start)
	}
	return nil
}

func closerOf(op ir.Opcode) ir.Opcode {
	switch op {
	case ir.OpBGNLOOP:
		return ir.OpENDLOOP
	case ir.OpSWITCH:
		return ir.OpENDSWITCH
	}
	return ir.OpENDIF
}

func malformed(format string, args ...any) error {
	return ir.Errorf(ir.ErrMalformedStream, "exec", format, args...)
}
