package text

import (
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/tgsi/ir"
	"github.com/gogpu/tgsi/stream"
)

// Program is a parsed assembly listing.
type Program struct {
	Processor ir.Processor
	Tokens    []ir.Token
}

// Assemble parses source and encodes it as a stream.
func Assemble(source string) (*stream.Stream, error) {
	prog, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return stream.Encode(prog.Processor, prog.Tokens)
}

// Parse parses an assembly listing. The first statement names the
// processor; every following line holds one declaration, immediate,
// property or instruction.
func Parse(source string) (*Program, error) {
	tokens, err := NewLexer(source).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &parser{source: source, tokens: tokens}
	return p.program()
}

type parser struct {
	source string
	tokens []Token
	pos    int

	proc       ir.Processor
	immediates int
}

func (p *parser) program() (*Program, error) {
	p.skipNewlines()
	head, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	proc, ok := ir.ParseProcessor(head.Text)
	if !ok {
		return nil, p.errorAt(head, "unknown processor %q", head.Text)
	}
	p.proc = proc
	if err := p.endOfLine(); err != nil {
		return nil, err
	}

	prog := &Program{Processor: proc}
	for {
		p.skipNewlines()
		if p.peek().Kind == TokenEOF {
			return prog, nil
		}
		tok, err := p.statement()
		if err != nil {
			return nil, err
		}
		prog.Tokens = append(prog.Tokens, tok)
		if err := p.endOfLine(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) statement() (ir.Token, error) {
	// Optional instruction number prefix: "  3: MOV ...".
	if p.peek().Kind == TokenNumber && p.peekAt(1).Kind == TokenColon {
		p.pos += 2
	}
	head, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	switch head.Text {
	case "DCL":
		return p.declaration()
	case "IMM":
		return p.immediate(head)
	case "PROPERTY":
		return p.property()
	}
	return p.instruction(head)
}

func (p *parser) declaration() (*ir.Declaration, error) {
	fileTok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	file, ok := ir.ParseFile(fileTok.Text)
	if !ok || file == ir.FileNull {
		return nil, p.errorAt(fileTok, "unknown register file %q", fileTok.Text)
	}
	decl := &ir.Declaration{File: file}

	first, last, empty, err := p.declRange()
	if err != nil {
		return nil, err
	}
	if p.peek().Kind == TokenLBracket {
		// FILE[dim][range] or the geometry input form IN[][range].
		if !empty {
			if first != last {
				return nil, p.errorAt(p.peek(), "dimension cannot be a range")
			}
			decl.Dimension = true
			decl.DimIndex = first
		}
		if first, last, empty, err = p.declRange(); err != nil {
			return nil, err
		}
	}
	if empty {
		return nil, p.errorAt(fileTok, "declaration needs an index range")
	}
	decl.First, decl.Last = first, last

	if file == ir.FileSamplerView {
		return decl, p.samplerView(decl)
	}
	for i := 0; p.accept(TokenComma); i++ {
		name, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			if sem, ok := ir.ParseSemanticName(name.Text); ok {
				decl.Semantic = &ir.Semantic{Name: sem}
				if p.accept(TokenLBracket) {
					idx, err := p.uint()
					if err != nil {
						return nil, err
					}
					decl.Semantic.Index = idx
					if _, err := p.expect(TokenRBracket); err != nil {
						return nil, err
					}
				}
				continue
			}
		}
		if mode, ok := ir.ParseInterpolate(name.Text); ok && decl.Interp == nil {
			decl.Interp = &ir.Interpolation{Mode: mode}
			continue
		}
		if loc, ok := ir.ParseInterpLocation(name.Text); ok && decl.Interp != nil {
			decl.Interp.Location = loc
			continue
		}
		return nil, p.errorAt(name, "unexpected declaration attribute %q", name.Text)
	}
	return decl, nil
}

// declRange parses "[a]", "[a..b]" or "[]".
func (p *parser) declRange() (first, last uint32, empty bool, err error) {
	if _, err = p.expect(TokenLBracket); err != nil {
		return
	}
	if p.accept(TokenRBracket) {
		return 0, 0, true, nil
	}
	if first, err = p.uint(); err != nil {
		return
	}
	last = first
	if p.accept(TokenDotDot) {
		if last, err = p.uint(); err != nil {
			return
		}
		if last < first {
			return 0, 0, false, p.errorAt(p.prev(), "range %d..%d is inverted", first, last)
		}
	}
	_, err = p.expect(TokenRBracket)
	return
}

func (p *parser) samplerView(decl *ir.Declaration) error {
	if _, err := p.expect(TokenComma); err != nil {
		return err
	}
	tt, err := p.expect(TokenIdent)
	if err != nil {
		return err
	}
	target, ok := ir.ParseTextureTarget(tt.Text)
	if !ok {
		return p.errorAt(tt, "unknown texture target %q", tt.Text)
	}
	decl.SamplerView = &ir.SamplerViewInfo{Target: target}
	if p.accept(TokenComma) {
		rt, err := p.expect(TokenIdent)
		if err != nil {
			return err
		}
		ret, ok := ir.ParseReturnType(rt.Text)
		if !ok {
			return p.errorAt(rt, "unknown return type %q", rt.Text)
		}
		decl.SamplerView.ReturnType = ret
	}
	return nil
}

func (p *parser) immediate(head Token) (*ir.Immediate, error) {
	if p.accept(TokenLBracket) {
		idx, err := p.uint()
		if err != nil {
			return nil, err
		}
		if int(idx) != p.immediates {
			return nil, p.errorAt(head, "immediate declared as IMM[%d], expected IMM[%d]", idx, p.immediates)
		}
		if _, err := p.expect(TokenRBracket); err != nil {
			return nil, err
		}
	}
	typeTok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	imm := &ir.Immediate{}
	switch typeTok.Text {
	case "FLT32":
		imm.Type = ir.ImmFloat32
	case "INT32":
		imm.Type = ir.ImmInt32
	case "UINT32":
		imm.Type = ir.ImmUint32
	default:
		return nil, p.errorAt(typeTok, "unknown immediate type %q", typeTok.Text)
	}
	if _, err := p.expect(TokenLBrace); err != nil {
		return nil, err
	}
	for i := range imm.Values {
		if i > 0 {
			if _, err := p.expect(TokenComma); err != nil {
				return nil, err
			}
		}
		v, err := p.immediateValue(imm.Type)
		if err != nil {
			return nil, err
		}
		imm.Values[i] = v
	}
	if _, err := p.expect(TokenRBrace); err != nil {
		return nil, err
	}
	p.immediates++
	return imm, nil
}

func (p *parser) immediateValue(t ir.ImmediateType) (uint32, error) {
	neg := p.accept(TokenMinus)
	if !neg {
		p.accept(TokenPlus)
	}
	tok := p.next()
	text := tok.Text
	if neg {
		text = "-" + text
	}
	switch {
	case t == ir.ImmFloat32 && (tok.Kind == TokenNumber || tok.Kind == TokenIdent):
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return 0, p.errorAt(tok, "invalid float %q", text)
		}
		return math.Float32bits(float32(f)), nil
	case t == ir.ImmInt32 && tok.Kind == TokenNumber:
		v, err := strconv.ParseInt(text, 0, 32)
		if err != nil {
			return 0, p.errorAt(tok, "invalid int32 %q", text)
		}
		return uint32(int32(v)), nil
	case t == ir.ImmUint32 && tok.Kind == TokenNumber && !neg:
		v, err := strconv.ParseUint(text, 0, 32)
		if err != nil {
			return 0, p.errorAt(tok, "invalid uint32 %q", text)
		}
		return uint32(v), nil
	}
	return 0, p.errorAt(tok, "expected %s value, found %s", t, tok.Kind)
}

func (p *parser) property() (*ir.Property, error) {
	nameTok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	name, ok := ir.ParsePropertyName(nameTok.Text)
	if !ok {
		return nil, p.errorAt(nameTok, "unknown property %q", nameTok.Text)
	}
	prop := &ir.Property{Name: name}
	if p.peek().Kind == TokenIdent {
		valTok := p.next()
		for i, n := range name.ValueNames() {
			if n == valTok.Text {
				prop.Value = uint32(i)
				return prop, nil
			}
		}
		return nil, p.errorAt(valTok, "unknown %s value %q", name, valTok.Text)
	}
	if prop.Value, err = p.uint(); err != nil {
		return nil, err
	}
	return prop, nil
}

func (p *parser) instruction(head Token) (*ir.Instruction, error) {
	name := head.Text
	op, ok := ir.LookupOpcode(name)
	saturate := false
	if !ok {
		if base, cut := strings.CutSuffix(name, "_SAT"); cut {
			op, ok = ir.LookupOpcode(base)
			saturate = true
		}
	}
	if !ok {
		return nil, p.errorAt(head, "unknown opcode %q", name)
	}
	info := op.Info()
	inst := &ir.Instruction{Opcode: op, Saturate: saturate}

	operands := int(info.NumDst) + int(info.NumSrc)
	for i := 0; i < operands; i++ {
		if i > 0 {
			if _, err := p.expect(TokenComma); err != nil {
				return nil, err
			}
		}
		if i < int(info.NumDst) {
			dst, err := p.dst()
			if err != nil {
				return nil, err
			}
			inst.Dst = append(inst.Dst, dst)
			continue
		}
		src, err := p.src()
		if err != nil {
			return nil, err
		}
		inst.Src = append(inst.Src, src)
	}

	hasTarget := p.accept(TokenComma)
	if info.Texture && !hasTarget {
		return nil, p.errorAt(p.peek(), "%s needs a texture target", op)
	}
	if hasTarget {
		tt, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		target, ok := ir.ParseTextureTarget(tt.Text)
		if !ok {
			return nil, p.errorAt(tt, "unknown texture target %q", tt.Text)
		}
		inst.Texture = target
	}
	if p.accept(TokenColon) {
		label, err := p.uint()
		if err != nil {
			return nil, err
		}
		inst.Label = label
	}
	return inst, nil
}

func (p *parser) dst() (ir.Dst, error) {
	reg, err := p.register()
	if err != nil {
		return ir.Dst{}, err
	}
	dst := ir.Dst{Register: reg, WriteMask: ir.WriteXYZW}
	if p.accept(TokenDot) {
		tok, err := p.expect(TokenIdent)
		if err != nil {
			return ir.Dst{}, err
		}
		mask, ok := ir.ParseWriteMask(tok.Text)
		if !ok {
			return ir.Dst{}, p.errorAt(tok, "invalid write mask %q", tok.Text)
		}
		dst.WriteMask = mask
	}
	return dst, nil
}

func (p *parser) src() (ir.Src, error) {
	src := ir.Src{Swizzle: ir.SwizzleXYZW}
	src.Negate = p.accept(TokenMinus)
	src.Absolute = p.accept(TokenPipe)

	reg, err := p.register()
	if err != nil {
		return ir.Src{}, err
	}
	src.Register = reg
	if p.accept(TokenDot) {
		tok, err := p.expect(TokenIdent)
		if err != nil {
			return ir.Src{}, err
		}
		swz, ok := ir.ParseSwizzle(tok.Text)
		if !ok {
			return ir.Src{}, p.errorAt(tok, "invalid swizzle %q", tok.Text)
		}
		src.Swizzle = swz
	}
	if src.Absolute {
		if _, err := p.expect(TokenPipe); err != nil {
			return ir.Src{}, err
		}
	}
	return src, nil
}

// register parses FILE[index] or FILE[dim][index], where an index may be
// indirect: ADDR[0].x+3.
func (p *parser) register() (ir.Register, error) {
	fileTok, err := p.expect(TokenIdent)
	if err != nil {
		return ir.Register{}, err
	}
	file, ok := ir.ParseFile(fileTok.Text)
	if !ok {
		return ir.Register{}, p.errorAt(fileTok, "unknown register file %q", fileTok.Text)
	}
	reg := ir.Register{File: file}
	if err := p.index(&reg); err != nil {
		return ir.Register{}, err
	}
	if p.peek().Kind == TokenLBracket {
		if reg.Indirect != nil || reg.Index < 0 {
			return ir.Register{}, p.errorAt(fileTok, "dimension must be a plain index")
		}
		reg.Dimension = true
		reg.DimIndex = uint32(reg.Index)
		reg.Index = 0
		if err := p.index(&reg); err != nil {
			return ir.Register{}, err
		}
	}
	return reg, nil
}

func (p *parser) index(reg *ir.Register) error {
	if _, err := p.expect(TokenLBracket); err != nil {
		return err
	}
	if p.peek().Kind == TokenIdent {
		ind, err := p.indirect()
		if err != nil {
			return err
		}
		reg.Indirect = ind
		reg.Index = 0
		if sign := p.peek().Kind; sign == TokenPlus || sign == TokenMinus {
			p.next()
			off, err := p.uint()
			if err != nil {
				return err
			}
			reg.Index = int32(off)
			if sign == TokenMinus {
				reg.Index = -reg.Index
			}
		}
	} else {
		idx, err := p.uint()
		if err != nil {
			return err
		}
		if idx > math.MaxInt16 {
			return p.errorAt(p.prev(), "register index %d out of range", idx)
		}
		reg.Index = int32(idx)
	}
	_, err := p.expect(TokenRBracket)
	return err
}

func (p *parser) indirect() (*ir.Indirect, error) {
	fileTok := p.next()
	file, ok := ir.ParseFile(fileTok.Text)
	if !ok {
		return nil, p.errorAt(fileTok, "unknown register file %q", fileTok.Text)
	}
	if _, err := p.expect(TokenLBracket); err != nil {
		return nil, err
	}
	idx, err := p.uint()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRBracket); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenDot); err != nil {
		return nil, err
	}
	compTok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	swz, ok := ir.ParseSwizzle(compTok.Text)
	if !ok || len(compTok.Text) != 1 {
		return nil, p.errorAt(compTok, "indirect component must be one of x, y, z, w")
	}
	return &ir.Indirect{File: file, Index: idx, Component: swz.Get(0)}, nil
}

func (p *parser) uint() (uint32, error) {
	tok, err := p.expect(TokenNumber)
	if err != nil {
		return 0, err
	}
	v, perr := strconv.ParseUint(tok.Text, 0, 32)
	if perr != nil {
		return 0, p.errorAt(tok, "invalid unsigned integer %q", tok.Text)
	}
	return uint32(v), nil
}

func (p *parser) endOfLine() error {
	tok := p.peek()
	if tok.Kind == TokenNewline || tok.Kind == TokenEOF {
		p.accept(TokenNewline)
		return nil
	}
	return p.errorAt(tok, "unexpected %s at end of statement", describe(tok))
}

func (p *parser) skipNewlines() {
	for p.accept(TokenNewline) {
	}
}

func (p *parser) peek() Token { return p.peekAt(0) }

func (p *parser) peekAt(n int) Token {
	if p.pos+n < len(p.tokens) {
		return p.tokens[p.pos+n]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) prev() Token {
	if p.pos > 0 {
		return p.tokens[p.pos-1]
	}
	return p.tokens[0]
}

func (p *parser) next() Token {
	tok := p.peek()
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) accept(kind TokenKind) bool {
	if p.peek().Kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(kind TokenKind) (Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return Token{}, p.errorAt(tok, "expected %s, found %s", kind, describe(tok))
	}
	p.pos++
	return tok, nil
}

func (p *parser) errorAt(tok Token, format string, args ...any) error {
	return newErrorf(tok.Pos, p.source, format, args...)
}

func describe(tok Token) string {
	if tok.Text != "" {
		return strconv.Quote(tok.Text)
	}
	return tok.Kind.String()
}
