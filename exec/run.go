package exec

import (
	"fmt"
	"math"

	"github.com/gogpu/tgsi/ir"
)

type machine struct {
	p   *Program
	env *Env

	temps   []Vec4
	outputs []Vec4
	addrs   []Vec4

	res     Result
	emitted int
}

// Run executes the program once against env.
func (p *Program) Run(env *Env) (*Result, error) {
	if env == nil {
		env = &Env{}
	}
	m := &machine{
		p:       p,
		env:     env,
		temps:   make([]Vec4, p.numTemps),
		outputs: make([]Vec4, p.numOutputs),
		addrs:   make([]Vec4, p.numAddrs),
	}
	if err := m.run(); err != nil {
		return nil, err
	}
	m.res.Outputs = m.outputs
	return &m.res, nil
}

func (m *machine) run() error {
	budget := m.env.MaxSteps
	if budget <= 0 {
		budget = DefaultMaxSteps
	}
	var calls []int
	insts := m.p.insts

	for pc := 0; pc < len(insts); {
		if budget--; budget < 0 {
			return ErrStepLimit
		}
		inst := insts[pc]
		next := pc + 1

		switch inst.Opcode {
		case ir.OpEND:
			return nil
		case ir.OpRET, ir.OpENDSUB:
			if len(calls) == 0 {
				return nil
			}
			next, calls = calls[len(calls)-1], calls[:len(calls)-1]
		case ir.OpCAL:
			if int(inst.Label) >= len(insts) {
				return malformed("CAL at %d targets %d past the end", pc, inst.Label)
			}
			calls = append(calls, next)
			next = int(inst.Label)
		case ir.OpIF, ir.OpUIF:
			x := m.fetch(&inst.Src[0])[0]
			taken := x != 0
			if inst.Opcode == ir.OpUIF {
				taken = toBits(x) != 0
			}
			if !taken {
				next = m.p.match[pc] + 1
			}
		case ir.OpELSE:
			next = m.p.match[pc] + 1
		case ir.OpENDLOOP:
			next = m.p.match[pc] + 1
		case ir.OpBRK:
			next = m.p.match[pc] + 1
		case ir.OpCONT:
			next = m.p.match[pc]
		case ir.OpENDIF, ir.OpBGNLOOP, ir.OpBGNSUB, ir.OpNOP:
		case ir.OpSWITCH, ir.OpCASE, ir.OpDEFAULT, ir.OpENDSWITCH:
			return fmt.Errorf("exec: %s is not supported", inst.Opcode)
		case ir.OpKILL:
			m.res.Killed = true
			return nil
		case ir.OpKILL_IF:
			v := m.fetch(&inst.Src[0])
			if v[0] < 0 || v[1] < 0 || v[2] < 0 || v[3] < 0 {
				m.res.Killed = true
				return nil
			}
		case ir.OpEMIT:
			m.res.Vertices = append(m.res.Vertices, append([]Vec4(nil), m.outputs...))
			m.emitted++
		case ir.OpENDPRIM:
			m.res.Primitives = append(m.res.Primitives, m.emitted)
			m.emitted = 0
		default:
			if err := m.compute(inst); err != nil {
				return fmt.Errorf("exec: instruction %d: %w", pc, err)
			}
		}
		pc = next
	}
	return nil
}

func (m *machine) compute(inst *ir.Instruction) error {
	if len(inst.Dst) != 1 {
		return fmt.Errorf("%s needs one destination", inst.Opcode)
	}
	var r Vec4
	switch inst.Opcode {
	case ir.OpTEX, ir.OpTXP, ir.OpTXB, ir.OpTXL, ir.OpTXF:
		if m.env.Sampler == nil {
			return fmt.Errorf("%s without a sampler", inst.Opcode)
		}
		coord := m.fetch(&inst.Src[0])
		if inst.Opcode == ir.OpTXP && coord[3] != 0 {
			for i := 0; i < 3; i++ {
				coord[i] /= coord[3]
			}
		}
		r = m.env.Sampler.Sample(uint32(inst.Src[1].Index), inst.Texture, coord)
	default:
		var src [3]Vec4
		intOp := isInteger(inst.Opcode)
		for i := range inst.Src {
			if intOp {
				src[i] = m.fetchInt(&inst.Src[i])
			} else {
				src[i] = m.fetch(&inst.Src[i])
			}
		}
		var ok bool
		if r, ok = evaluate(inst.Opcode, &src); !ok {
			return fmt.Errorf("%s is not supported", inst.Opcode)
		}
		if inst.Saturate && !intOp {
			for i := range r {
				r[i] = saturate(r[i])
			}
		}
	}
	return m.store(&inst.Dst[0], r)
}

// fetch reads a float operand, applying swizzle, absolute then negate.
func (m *machine) fetch(s *ir.Src) Vec4 {
	v := m.load(&s.Register)
	var out Vec4
	for i := range out {
		x := v[s.Swizzle.Get(i)]
		if s.Absolute {
			x = float32(math.Abs(float64(x)))
		}
		if s.Negate {
			x = -x
		}
		out[i] = x
	}
	return out
}

// fetchInt reads an integer operand; modifiers act on the int32 value.
func (m *machine) fetchInt(s *ir.Src) Vec4 {
	v := m.load(&s.Register)
	var out Vec4
	for i := range out {
		x := int32(toBits(v[s.Swizzle.Get(i)]))
		if s.Absolute && x < 0 {
			x = -x
		}
		if s.Negate {
			x = -x
		}
		out[i] = fromBits(uint32(x))
	}
	return out
}

func (m *machine) index(r *ir.Register) int {
	idx := int(r.Index)
	if ind := r.Indirect; ind != nil {
		if int(ind.Index) < len(m.addrs) {
			idx += int(m.addrs[ind.Index][ind.Component&3])
		}
	}
	return idx
}

// load returns the register, or zero for anything undeclared.
func (m *machine) load(r *ir.Register) Vec4 {
	idx := m.index(r)
	var file []Vec4
	switch r.File {
	case ir.FileTemporary:
		file = m.temps
	case ir.FileOutput:
		file = m.outputs
	case ir.FileAddress:
		file = m.addrs
	case ir.FileImmediate:
		file = m.p.imms
	case ir.FileSystemValue:
		file = m.env.SystemValues
	case ir.FileInput:
		file = m.env.Inputs
		if r.Dimension {
			file = nil
			if int(r.DimIndex) < len(m.env.VertexInputs) {
				file = m.env.VertexInputs[r.DimIndex]
			}
		}
	case ir.FileConstant:
		buf := 0
		if r.Dimension {
			buf = int(r.DimIndex)
		}
		if buf < len(m.env.Constants) {
			file = m.env.Constants[buf]
		}
	}
	if idx < 0 || idx >= len(file) {
		return Vec4{}
	}
	return file[idx]
}

func (m *machine) store(d *ir.Dst, v Vec4) error {
	idx := m.index(&d.Register)
	var file []Vec4
	switch d.File {
	case ir.FileTemporary:
		file = m.temps
	case ir.FileOutput:
		file = m.outputs
	case ir.FileAddress:
		file = m.addrs
	case ir.FileNull:
		return nil
	default:
		return fmt.Errorf("cannot write %s", d.File)
	}
	if idx < 0 || idx >= len(file) {
		return fmt.Errorf("write to undeclared %s[%d]", d.File, idx)
	}
	for c := ir.X; c <= ir.W; c++ {
		if d.WriteMask.Has(c) {
			file[idx][c] = v[c]
		}
	}
	return nil
}

func toBits(f float32) uint32   { return math.Float32bits(f) }
func fromBits(b uint32) float32 { return math.Float32frombits(b) }

func saturate(x float32) float32 {
	switch {
	case x > 1:
		return 1
	case x > 0:
		return x
	}
	return 0
}
