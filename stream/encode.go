package stream

import (
	"math"

	"github.com/gogpu/tgsi/ir"
)

// Every token starts with Type:4 | NrTokens:8 | payload:20. NrTokens counts
// the whole token including its first word.
const (
	maxDst = 3
	maxSrc = 7
)

// Declaration payload bits.
const (
	declSemantic    = 1 << 4
	declInterp      = 1 << 5
	declDimension   = 1 << 6
	declSamplerView = 1 << 7
)

// Instruction payload bits above the 8-bit opcode.
const (
	instSaturate = 1 << 8
	instLabel    = 1 << 14
	instTexture  = 1 << 15
)

// Operand word: File:4 | Indirect:1 | Dimension:1 | Negate:1 | Absolute:1 |
// Swizzle or WriteMask:8 | Index:16.
const (
	opIndirect  = 1 << 4
	opDimension = 1 << 5
	opNegate    = 1 << 6
	opAbsolute  = 1 << 7
)

func tokenWord(kind ir.TokenKind, nr int, payload uint32) uint32 {
	return uint32(kind) | uint32(nr)<<4 | payload<<12
}

// encoder accumulates the words of one token.
type encoder struct {
	words []uint32
}

func (e *encoder) reset() { e.words = e.words[:0] }

func (e *encoder) add(w uint32) { e.words = append(e.words, w) }

// encode serializes tok into e.words. The token must have passed Check.
func (e *encoder) encode(tok ir.Token) {
	e.reset()
	e.add(0)
	var head uint32
	switch t := tok.(type) {
	case *ir.Declaration:
		head = e.declaration(t)
	case *ir.Immediate:
		head = uint32(t.Type)
		for _, v := range t.Values {
			e.add(v)
		}
	case *ir.Instruction:
		head = e.instruction(t)
	case *ir.Property:
		head = uint32(t.Name)
		e.add(t.Value)
	}
	e.words[0] = tokenWord(tok.Kind(), len(e.words), head)
}

func (e *encoder) declaration(d *ir.Declaration) uint32 {
	head := uint32(d.File)
	e.add(d.First | d.Last<<16)
	if d.Dimension {
		head |= declDimension
		e.add(d.DimIndex)
	}
	if d.Semantic != nil {
		head |= declSemantic
		e.add(uint32(d.Semantic.Name) | d.Semantic.Index<<8)
	}
	if d.Interp != nil {
		head |= declInterp
		e.add(uint32(d.Interp.Mode) | uint32(d.Interp.Location)<<4)
	}
	if d.SamplerView != nil {
		head |= declSamplerView
		e.add(uint32(d.SamplerView.Target) | uint32(d.SamplerView.ReturnType)<<8)
	}
	return head
}

func (e *encoder) instruction(inst *ir.Instruction) uint32 {
	info := inst.Opcode.Info()
	head := uint32(inst.Opcode) | uint32(len(inst.Dst))<<9 | uint32(len(inst.Src))<<11
	if inst.Saturate {
		head |= instSaturate
	}
	if info.Label || inst.Label != 0 {
		head |= instLabel
		e.add(inst.Label)
	}
	if info.Texture || inst.Texture != ir.TextureUnknown {
		head |= instTexture
		e.add(uint32(inst.Texture))
	}
	for i := range inst.Dst {
		e.register(&inst.Dst[i].Register, uint32(inst.Dst[i].WriteMask), 0)
	}
	for i := range inst.Src {
		s := &inst.Src[i]
		var mods uint32
		if s.Negate {
			mods |= opNegate
		}
		if s.Absolute {
			mods |= opAbsolute
		}
		e.register(&s.Register, uint32(s.Swizzle), mods)
	}
	return head
}

func (e *encoder) register(r *ir.Register, sel, mods uint32) {
	w := uint32(r.File) | mods | sel<<8 | uint32(uint16(int16(r.Index)))<<16
	if r.Indirect != nil {
		w |= opIndirect
	}
	if r.Dimension {
		w |= opDimension
	}
	e.add(w)
	if r.Indirect != nil {
		e.add(uint32(r.Indirect.File) | uint32(r.Indirect.Component)<<4 | r.Indirect.Index<<16)
	}
	if r.Dimension {
		e.add(r.DimIndex)
	}
}

// Check reports whether tok can be encoded. Builders and Encode call it
// before writing anything.
func Check(tok ir.Token) error {
	const op = "encode"
	switch t := tok.(type) {
	case *ir.Declaration:
		if !t.File.Valid() || t.File == ir.FileNull {
			return ir.Errorf(ir.ErrMalformedStream, op, "declaration of invalid file %d", t.File)
		}
		if t.First > t.Last || t.Last > math.MaxUint16 {
			return ir.Errorf(ir.ErrMalformedStream, op, "declaration range [%d..%d] is not encodable", t.First, t.Last)
		}
		if t.Semantic != nil && t.Semantic.Index > 0xFFFFFF {
			return ir.Errorf(ir.ErrMalformedStream, op, "semantic index %d too large", t.Semantic.Index)
		}
	case *ir.Immediate:
		if t.Type > ir.ImmUint32 {
			return ir.Errorf(ir.ErrMalformedStream, op, "invalid immediate type %d", t.Type)
		}
	case *ir.Instruction:
		if !t.Opcode.Valid() {
			return ir.Errorf(ir.ErrMalformedStream, op, "invalid opcode %d", t.Opcode)
		}
		if len(t.Dst) > maxDst || len(t.Src) > maxSrc {
			return ir.Errorf(ir.ErrMalformedStream, op, "%s has %d dst and %d src operands", t.Opcode, len(t.Dst), len(t.Src))
		}
		for i := range t.Dst {
			if err := checkRegister(&t.Dst[i].Register); err != nil {
				return err
			}
		}
		for i := range t.Src {
			if err := checkRegister(&t.Src[i].Register); err != nil {
				return err
			}
		}
	case *ir.Property:
		if !t.Name.Valid() {
			return ir.Errorf(ir.ErrMalformedStream, op, "invalid property %d", t.Name)
		}
	case nil:
		return ir.Errorf(ir.ErrMalformedStream, op, "nil token")
	default:
		return ir.Errorf(ir.ErrMalformedStream, op, "unknown token type %T", tok)
	}
	return nil
}

func checkRegister(r *ir.Register) error {
	if !r.File.Valid() {
		return ir.Errorf(ir.ErrMalformedStream, "encode", "operand of invalid file %d", r.File)
	}
	if r.Index < math.MinInt16 || r.Index > math.MaxInt16 {
		return ir.Errorf(ir.ErrMalformedStream, "encode", "operand index %d out of range", r.Index)
	}
	if r.Indirect != nil && r.Indirect.Index > math.MaxUint16 {
		return ir.Errorf(ir.ErrMalformedStream, "encode", "indirect index %d out of range", r.Indirect.Index)
	}
	return nil
}

// Size returns the number of words tok encodes to.
func Size(tok ir.Token) int {
	var e encoder
	e.encode(tok)
	return len(e.words)
}
