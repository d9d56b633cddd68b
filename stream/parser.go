package stream

import (
	"fmt"

	"github.com/gogpu/tgsi/ir"
)

// Parser is a read cursor over the tokens of a stream. It never modifies
// the words it reads.
type Parser struct {
	words []uint32
	pos   int
	proc  ir.Processor
}

// NewParser validates the header of words and positions the cursor on the
// first token.
func NewParser(words []uint32) (*Parser, error) {
	proc, err := checkHeader("parse", words)
	if err != nil {
		return nil, err
	}
	return &Parser{words: words, pos: HeaderSize, proc: proc}, nil
}

// Processor returns the processor recorded in the header.
func (p *Parser) Processor() ir.Processor { return p.proc }

// End reports whether all tokens have been consumed.
func (p *Parser) End() bool { return p.pos >= len(p.words) }

// Offset returns the word offset of the next token.
func (p *Parser) Offset() int { return p.pos }

// Next decodes the token at the cursor and advances past it. Calling Next
// at the end of the stream returns a MalformedStream error.
func (p *Parser) Next() (ir.Token, error) {
	if p.End() {
		return nil, p.errorf("read past end of stream")
	}
	w := p.words[p.pos]
	nr := int(w>>4) & 0xFF
	if nr == 0 || p.pos+nr > len(p.words) {
		return nil, p.errorf("token of %d words overruns the stream", nr)
	}
	d := decoder{words: p.words[p.pos : p.pos+nr], pos: 1}
	payload := w >> 12

	var tok ir.Token
	var err error
	switch ir.TokenKind(w & 0xF) {
	case ir.TokenDeclaration:
		tok, err = d.declaration(payload)
	case ir.TokenImmediate:
		tok, err = d.immediate(payload)
	case ir.TokenInstruction:
		tok, err = d.instruction(payload)
	case ir.TokenProperty:
		tok, err = d.property(payload)
	default:
		return nil, p.errorf("unknown token type %d", w&0xF)
	}
	if err != nil {
		return nil, p.errorf("%v", err)
	}
	if d.pos != nr {
		return nil, p.errorf("%s decoded %d of %d words", tok.Kind(), d.pos, nr)
	}
	p.pos += nr
	return tok, nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return ir.Errorf(ir.ErrMalformedStream, "parse", "word %d: %s", p.pos, fmt.Sprintf(format, args...))
}

// decoder reads the words of a single token.
type decoder struct {
	words []uint32
	pos   int
}

type decodeError string

func (e decodeError) Error() string { return string(e) }

const errShort = decodeError("token is shorter than its fields")

func (d *decoder) next() (uint32, error) {
	if d.pos >= len(d.words) {
		return 0, errShort
	}
	w := d.words[d.pos]
	d.pos++
	return w, nil
}

func (d *decoder) declaration(payload uint32) (*ir.Declaration, error) {
	decl := &ir.Declaration{File: ir.File(payload & 0xF)}
	if !decl.File.Valid() || decl.File == ir.FileNull {
		return nil, decodeError("declaration of invalid file")
	}
	w, err := d.next()
	if err != nil {
		return nil, err
	}
	decl.First, decl.Last = w&0xFFFF, w>>16
	if decl.First > decl.Last {
		return nil, decodeError("declaration range is inverted")
	}
	if payload&declDimension != 0 {
		if decl.DimIndex, err = d.next(); err != nil {
			return nil, err
		}
		decl.Dimension = true
	}
	if payload&declSemantic != 0 {
		if w, err = d.next(); err != nil {
			return nil, err
		}
		decl.Semantic = &ir.Semantic{Name: ir.SemanticName(w & 0xFF), Index: w >> 8}
	}
	if payload&declInterp != 0 {
		if w, err = d.next(); err != nil {
			return nil, err
		}
		decl.Interp = &ir.Interpolation{
			Mode:     ir.Interpolate(w & 0xF),
			Location: ir.InterpLocation(w >> 4 & 0xF),
		}
	}
	if payload&declSamplerView != 0 {
		if w, err = d.next(); err != nil {
			return nil, err
		}
		decl.SamplerView = &ir.SamplerViewInfo{
			Target:     ir.TextureTarget(w & 0xFF),
			ReturnType: ir.ReturnType(w >> 8 & 0xF),
		}
	}
	return decl, nil
}

func (d *decoder) immediate(payload uint32) (*ir.Immediate, error) {
	imm := &ir.Immediate{Type: ir.ImmediateType(payload & 0xF)}
	if imm.Type > ir.ImmUint32 {
		return nil, decodeError("invalid immediate type")
	}
	for i := range imm.Values {
		v, err := d.next()
		if err != nil {
			return nil, err
		}
		imm.Values[i] = v
	}
	return imm, nil
}

func (d *decoder) instruction(payload uint32) (*ir.Instruction, error) {
	inst := &ir.Instruction{
		Opcode:   ir.Opcode(payload & 0xFF),
		Saturate: payload&instSaturate != 0,
	}
	if !inst.Opcode.Valid() {
		return nil, decodeError("invalid opcode")
	}
	numDst := int(payload>>9) & 3
	numSrc := int(payload>>11) & 7

	var err error
	if payload&instLabel != 0 {
		if inst.Label, err = d.next(); err != nil {
			return nil, err
		}
	}
	if payload&instTexture != 0 {
		w, err := d.next()
		if err != nil {
			return nil, err
		}
		inst.Texture = ir.TextureTarget(w & 0xFF)
	}
	if numDst > 0 {
		inst.Dst = make([]ir.Dst, numDst)
		for i := range inst.Dst {
			w, err := d.register(&inst.Dst[i].Register)
			if err != nil {
				return nil, err
			}
			inst.Dst[i].WriteMask = ir.WriteMask(w>>8) & ir.WriteXYZW
		}
	}
	if numSrc > 0 {
		inst.Src = make([]ir.Src, numSrc)
		for i := range inst.Src {
			s := &inst.Src[i]
			w, err := d.register(&s.Register)
			if err != nil {
				return nil, err
			}
			s.Swizzle = ir.Swizzle(w >> 8)
			s.Negate = w&opNegate != 0
			s.Absolute = w&opAbsolute != 0
		}
	}
	return inst, nil
}

// register decodes one operand into r and returns its first word.
func (d *decoder) register(r *ir.Register) (uint32, error) {
	w, err := d.next()
	if err != nil {
		return 0, err
	}
	r.File = ir.File(w & 0xF)
	if !r.File.Valid() {
		return 0, decodeError("operand of invalid file")
	}
	r.Index = int32(int16(uint16(w >> 16)))
	if w&opIndirect != 0 {
		iw, err := d.next()
		if err != nil {
			return 0, err
		}
		r.Indirect = &ir.Indirect{
			File:      ir.File(iw & 0xF),
			Component: ir.Component(iw >> 4 & 3),
			Index:     iw >> 16,
		}
	}
	if w&opDimension != 0 {
		if r.DimIndex, err = d.next(); err != nil {
			return 0, err
		}
		r.Dimension = true
	}
	return w, nil
}

func (d *decoder) property(payload uint32) (*ir.Property, error) {
	prop := &ir.Property{Name: ir.PropertyName(payload & 0xFF)}
	if !prop.Name.Valid() {
		return nil, decodeError("invalid property")
	}
	v, err := d.next()
	if err != nil {
		return nil, err
	}
	prop.Value = v
	return prop, nil
}
