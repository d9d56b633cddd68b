package text

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/tgsi/ir"
	"github.com/gogpu/tgsi/stream"
)

// Dump returns the assembly listing of s. Parsing the listing with
// Assemble reproduces s word for word.
func Dump(s *stream.Stream) (string, error) {
	var sb strings.Builder
	if err := Fdump(&sb, s); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Fdump writes the assembly listing of s to w.
func Fdump(w io.Writer, s *stream.Stream) error {
	tokens, err := s.Tokens()
	if err != nil {
		return err
	}
	return Fprint(w, s.Processor(), tokens)
}

// Fprint writes the listing of a token sequence to w.
func Fprint(w io.Writer, proc ir.Processor, tokens []ir.Token) error {
	bw := bufio.NewWriter(w)
	p := &printer{w: bw, proc: proc}
	p.line(proc.String())
	for _, tok := range tokens {
		switch t := tok.(type) {
		case *ir.Declaration:
			p.declaration(t)
		case *ir.Immediate:
			p.immediate(t)
		case *ir.Property:
			p.property(t)
		case *ir.Instruction:
			p.instruction(t)
		}
	}
	return bw.Flush()
}

type printer struct {
	w    *bufio.Writer
	proc ir.Processor
	sb   strings.Builder

	immediates   int
	instructions int
	indent       int
}

func (p *printer) line(s string) {
	p.w.WriteString(s)
	p.w.WriteByte('\n')
}

func (p *printer) flush() {
	p.line(p.sb.String())
	p.sb.Reset()
}

func (p *printer) declaration(d *ir.Declaration) {
	sb := &p.sb
	sb.WriteString("DCL ")
	sb.WriteString(d.File.String())
	switch {
	case d.Dimension:
		fmt.Fprintf(sb, "[%d]", d.DimIndex)
	case d.File == ir.FileInput && p.proc == ir.ProcessorGeometry:
		sb.WriteString("[]")
	}
	if d.First == d.Last {
		fmt.Fprintf(sb, "[%d]", d.First)
	} else {
		fmt.Fprintf(sb, "[%d..%d]", d.First, d.Last)
	}

	if d.SamplerView != nil {
		fmt.Fprintf(sb, ", %s, %s", d.SamplerView.Target, d.SamplerView.ReturnType)
	}
	if d.Semantic != nil {
		sb.WriteString(", ")
		sb.WriteString(d.Semantic.Name.String())
		if d.Semantic.Index != 0 {
			fmt.Fprintf(sb, "[%d]", d.Semantic.Index)
		}
	}
	if d.Interp != nil {
		sb.WriteString(", ")
		sb.WriteString(d.Interp.Mode.String())
		if d.Interp.Location != ir.LocationCenter {
			sb.WriteString(", ")
			sb.WriteString(d.Interp.Location.String())
		}
	}
	p.flush()
}

func (p *printer) immediate(imm *ir.Immediate) {
	sb := &p.sb
	fmt.Fprintf(sb, "IMM[%d] %s {", p.immediates, imm.Type)
	for i, v := range imm.Values {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(formatImmediate(imm.Type, v))
	}
	sb.WriteByte('}')
	p.immediates++
	p.flush()
}

func formatImmediate(t ir.ImmediateType, v uint32) string {
	switch t {
	case ir.ImmInt32:
		return strconv.FormatInt(int64(int32(v)), 10)
	case ir.ImmUint32:
		return strconv.FormatUint(uint64(v), 10)
	}
	return strconv.FormatFloat(float64(math.Float32frombits(v)), 'g', -1, 32)
}

func (p *printer) property(prop *ir.Property) {
	fmt.Fprintf(&p.sb, "PROPERTY %s ", prop.Name)
	if names := prop.Name.ValueNames(); int(prop.Value) < len(names) {
		p.sb.WriteString(names[prop.Value])
	} else {
		p.sb.WriteString(strconv.FormatUint(uint64(prop.Value), 10))
	}
	p.flush()
}

func (p *printer) instruction(inst *ir.Instruction) {
	info := inst.Opcode.Info()
	switch info.Flow {
	case ir.FlowElse, ir.FlowClose, ir.FlowSubEnd:
		p.indent = max(p.indent-1, 0)
	}

	sb := &p.sb
	fmt.Fprintf(sb, "%3d: ", p.instructions)
	sb.WriteString(strings.Repeat("  ", p.indent))
	sb.WriteString(inst.Opcode.String())
	if inst.Saturate {
		sb.WriteString("_SAT")
	}
	n := 0
	for i := range inst.Dst {
		p.separator(n)
		p.dst(&inst.Dst[i])
		n++
	}
	for i := range inst.Src {
		p.separator(n)
		p.src(&inst.Src[i])
		n++
	}
	if info.Texture || inst.Texture != ir.TextureUnknown {
		sb.WriteString(", ")
		sb.WriteString(inst.Texture.String())
	}
	if info.Label || inst.Label != 0 {
		fmt.Fprintf(sb, " :%d", inst.Label)
	}
	p.instructions++
	p.flush()

	switch info.Flow {
	case ir.FlowOpen, ir.FlowElse, ir.FlowSubBegin:
		p.indent++
	}
}

func (p *printer) separator(n int) {
	if n == 0 {
		p.sb.WriteByte(' ')
	} else {
		p.sb.WriteString(", ")
	}
}

func (p *printer) dst(d *ir.Dst) {
	p.register(&d.Register)
	if d.WriteMask != ir.WriteXYZW {
		p.sb.WriteByte('.')
		p.sb.WriteString(d.WriteMask.String())
	}
}

func (p *printer) src(s *ir.Src) {
	if s.Negate {
		p.sb.WriteByte('-')
	}
	if s.Absolute {
		p.sb.WriteByte('|')
	}
	p.register(&s.Register)
	if s.Swizzle != ir.SwizzleXYZW {
		p.sb.WriteByte('.')
		p.sb.WriteString(s.Swizzle.String())
	}
	if s.Absolute {
		p.sb.WriteByte('|')
	}
}

func (p *printer) register(r *ir.Register) {
	sb := &p.sb
	sb.WriteString(r.File.String())
	if r.Dimension {
		fmt.Fprintf(sb, "[%d]", r.DimIndex)
	}
	sb.WriteByte('[')
	if ind := r.Indirect; ind != nil {
		fmt.Fprintf(sb, "%s[%d].%s", ind.File, ind.Index, ind.Component)
		switch {
		case r.Index > 0:
			fmt.Fprintf(sb, "+%d", r.Index)
		case r.Index < 0:
			fmt.Fprintf(sb, "%d", r.Index)
		}
	} else {
		sb.WriteString(strconv.Itoa(int(r.Index)))
	}
	sb.WriteByte(']')
}
