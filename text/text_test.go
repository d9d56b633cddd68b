package text

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/tgsi/ir"
)

const passThrough = `FRAG
DCL IN[0], COLOR, CONSTANT
DCL OUT[0], COLOR
  0: MOV OUT[0], IN[0]
  1: END
`

func TestAssemblePassThrough(t *testing.T) {
	prog, err := Parse("FRAG\nDCL IN[0], COLOR, CONSTANT\nDCL OUT[0], COLOR\nMOV OUT[0], IN[0]\nEND\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if prog.Processor != ir.ProcessorFragment {
		t.Errorf("Expected FRAG, got %s", prog.Processor)
	}
	if len(prog.Tokens) != 4 {
		t.Fatalf("Expected 4 tokens, got %d", len(prog.Tokens))
	}

	in, ok := prog.Tokens[0].(*ir.Declaration)
	if !ok {
		t.Fatalf("Expected declaration, got %T", prog.Tokens[0])
	}
	if in.File != ir.FileInput || in.Semantic == nil || in.Semantic.Name != ir.SemanticColor {
		t.Errorf("Unexpected input declaration %+v", in)
	}
	if in.Interp == nil || in.Interp.Mode != ir.InterpConstant {
		t.Errorf("Expected CONSTANT interpolation, got %+v", in.Interp)
	}

	mov, ok := prog.Tokens[2].(*ir.Instruction)
	if !ok {
		t.Fatalf("Expected instruction, got %T", prog.Tokens[2])
	}
	if mov.Opcode != ir.OpMOV || len(mov.Dst) != 1 || len(mov.Src) != 1 {
		t.Fatalf("Unexpected instruction %+v", mov)
	}
	if !mov.Dst[0].Is(ir.FileOutput, 0) || mov.Dst[0].WriteMask != ir.WriteXYZW {
		t.Errorf("Unexpected dst %+v", mov.Dst[0])
	}
	if !mov.Src[0].Is(ir.FileInput, 0) || mov.Src[0].Swizzle != ir.SwizzleXYZW {
		t.Errorf("Unexpected src %+v", mov.Src[0])
	}

	s, err := Assemble(passThrough)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	got, err := Dump(s)
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if got != passThrough {
		t.Errorf("Dump mismatch:\nexpected:\n%s\ngot:\n%s", passThrough, got)
	}
}

func TestDumpIndentsBlocks(t *testing.T) {
	const src = `FRAG
DCL IN[0], GENERIC, PERSPECTIVE
DCL OUT[0], COLOR
DCL TEMP[0]
  0: IF IN[0].xxxx :2
  1:   MOV OUT[0], IN[0]
  2: ELSE :4
  3:   MOV OUT[0], -|IN[0].wzyx|
  4: ENDIF
  5: BGNSUB
  6:   RET
  7: ENDSUB
  8: END
`
	s, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	got, err := Dump(s)
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if got != src {
		t.Errorf("Dump mismatch:\nexpected:\n%s\ngot:\n%s", src, got)
	}
}

// fullListing exercises every token kind and operand form.
const fullListing = `GEOM
PROPERTY GS_INPUT_PRIMITIVE POINTS
PROPERTY GS_OUTPUT_PRIMITIVE TRIANGLE_STRIP
PROPERTY GS_MAX_OUTPUT_VERTICES 4
DCL IN[][0], POSITION
DCL IN[][1], PSIZE
DCL OUT[0], POSITION
DCL OUT[1], GENERIC[3]
DCL CONST[0..7]
DCL CONST[1][0..3]
DCL TEMP[0..3]
DCL ADDR[0]
DCL SAMP[0]
DCL SVIEW[0], 2D, FLOAT
IMM[0] FLT32 {1, -0.5, 0.03125, 1e+06}
IMM[1] INT32 {-1, 2, 16, 0}
IMM[2] UINT32 {4294967295, 0, 1, 2}
  0: ARL ADDR[0].x, IN[0][1].xxxx
  1: MOV TEMP[0], CONST[ADDR[0].x+3]
  2: MOV TEMP[1], CONST[ADDR[0].y-2]
  3: MAD_SAT TEMP[0].xy, IN[0][0], CONST[1][2].wwww, -IMM[0].yyyy
  4: TEX TEMP[2], TEMP[0], SAMP[0], 2D
  5: BGNLOOP :8
  6:   BRK
  7: ENDLOOP :5
  8: MOV OUT[0], TEMP[0]
  9: EMIT IMM[1].xxxx
 10: ENDPRIM IMM[1].xxxx
 11: END
`

func TestDumpAssembleFixedPoint(t *testing.T) {
	s, err := Assemble(fullListing)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	dumped, err := Dump(s)
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if dumped != fullListing {
		t.Errorf("Dump mismatch:\nexpected:\n%s\ngot:\n%s", fullListing, dumped)
	}
	again, err := Assemble(dumped)
	if err != nil {
		t.Fatalf("re-Assemble failed: %v", err)
	}
	if !again.Equal(s) {
		t.Error("Assemble(Dump(s)) differs from s")
	}
}

func TestParseOperandForms(t *testing.T) {
	prog, err := Parse(fullListing)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var insts []*ir.Instruction
	var decls []*ir.Declaration
	for _, tok := range prog.Tokens {
		switch v := tok.(type) {
		case *ir.Instruction:
			insts = append(insts, v)
		case *ir.Declaration:
			decls = append(decls, v)
		}
	}

	if decls[0].Dimension {
		t.Error("Expected IN[][0] to parse without a dimension")
	}
	if !decls[5].Dimension || decls[5].DimIndex != 1 || decls[5].First != 0 || decls[5].Last != 3 {
		t.Errorf("Expected CONST[1][0..3], got %+v", decls[5])
	}
	if decls[3].Semantic.Index != 3 {
		t.Errorf("Expected GENERIC[3], got index %d", decls[3].Semantic.Index)
	}

	ind := insts[1].Src[0]
	if ind.Indirect == nil || ind.Indirect.File != ir.FileAddress || ind.Indirect.Component != ir.X || ind.Index != 3 {
		t.Errorf("Unexpected indirect operand %+v", ind)
	}
	if insts[2].Src[0].Index != -2 || insts[2].Src[0].Indirect.Component != ir.Y {
		t.Errorf("Expected negative indirect offset on .y, got %+v", insts[2].Src[0])
	}

	mad := insts[3]
	if !mad.Saturate || mad.Opcode != ir.OpMAD {
		t.Errorf("Expected MAD_SAT, got %s sat=%v", mad.Opcode, mad.Saturate)
	}
	if mad.Dst[0].WriteMask != ir.WriteXY {
		t.Errorf("Expected .xy write mask, got %s", mad.Dst[0].WriteMask)
	}
	if !mad.Src[2].Negate || mad.Src[2].Swizzle != ir.NewSwizzle(ir.Y, ir.Y, ir.Y, ir.Y) {
		t.Errorf("Unexpected third source %+v", mad.Src[2])
	}
	if !mad.Src[0].Dimension || mad.Src[0].DimIndex != 0 {
		t.Errorf("Expected IN[0][0] to be two-dimensional, got %+v", mad.Src[0])
	}

	if insts[4].Texture != ir.Texture2D {
		t.Errorf("Expected 2D target, got %s", insts[4].Texture)
	}
	if insts[7].Label != 5 {
		t.Errorf("Expected ENDLOOP label 5, got %d", insts[7].Label)
	}
}

func TestParseImmediates(t *testing.T) {
	prog, err := Parse(fullListing)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var imms []*ir.Immediate
	for _, tok := range prog.Tokens {
		if imm, ok := tok.(*ir.Immediate); ok {
			imms = append(imms, imm)
		}
	}
	if len(imms) != 3 {
		t.Fatalf("Expected 3 immediates, got %d", len(imms))
	}
	wantF := [4]float32{1, -0.5, 0.03125, 1e6}
	for i, w := range wantF {
		if got := imms[0].Float(ir.Component(i)); got != w {
			t.Errorf("FLT32[%d]: expected %v, got %v", i, w, got)
		}
	}
	if int32(imms[1].Values[0]) != -1 || imms[1].Values[2] != 16 {
		t.Errorf("Unexpected INT32 values %v", imms[1].Values)
	}
	if imms[2].Values[0] != math.MaxUint32 {
		t.Errorf("Expected UINT32 max, got %d", imms[2].Values[0])
	}
}

func TestParseShortSwizzleAndComments(t *testing.T) {
	src := "# leading comment\nFRAG\n\nDCL IN[0], GENERIC, LINEAR, CENTROID\nDCL OUT[0], COLOR\n  7: MOV OUT[0].w, IN[0].x # trailing\nEND\n"
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	decl := prog.Tokens[0].(*ir.Declaration)
	if decl.Interp == nil || decl.Interp.Mode != ir.InterpLinear || decl.Interp.Location != ir.LocationCentroid {
		t.Errorf("Expected LINEAR CENTROID, got %+v", decl.Interp)
	}
	mov := prog.Tokens[2].(*ir.Instruction)
	if mov.Src[0].Swizzle != ir.NewSwizzle(ir.X, ir.X, ir.X, ir.X) {
		t.Errorf("Expected .x to mean .xxxx, got %s", mov.Src[0].Swizzle)
	}
	if mov.Dst[0].WriteMask != ir.WriteW {
		t.Errorf("Expected .w write mask, got %s", mov.Dst[0].WriteMask)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		line    int
		column  int
		message string
	}{
		{"unknown processor", "BOGUS\n", 1, 1, "unknown processor"},
		{"unknown opcode", "FRAG\nFOO TEMP[0]\n", 2, 1, "unknown opcode"},
		{"missing operand", "FRAG\nMOV OUT[0]\n", 2, 11, "expected ','"},
		{"bad write mask", "FRAG\nMOV TEMP[0].zx, IN[0]\n", 2, 13, "invalid write mask"},
		{"bad character", "FRAG\nMOV TEMP[0], IN[0] @\n", 2, 20, "unexpected character"},
		{"immediate out of order", "FRAG\nIMM[1] FLT32 {0, 0, 0, 0}\n", 2, 1, "expected IMM[0]"},
		{"missing texture target", "FRAG\nTEX TEMP[0], IN[0], SAMP[0]\n", 2, 28, "texture target"},
		{"trailing garbage", "FRAG\nEND END\n", 2, 5, "end of statement"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			var serr *SourceError
			if !errors.As(err, &serr) {
				t.Fatalf("Expected *SourceError, got %T", err)
			}
			if serr.Pos.Line != tt.line || serr.Pos.Column != tt.column {
				t.Errorf("Expected position %d:%d, got %d:%d (%s)", tt.line, tt.column, serr.Pos.Line, serr.Pos.Column, serr.Message)
			}
			if !strings.Contains(serr.Message, tt.message) {
				t.Errorf("Expected message containing %q, got %q", tt.message, serr.Message)
			}
		})
	}
}

func TestFormatWithContext(t *testing.T) {
	_, err := Parse("FRAG\nMOV TEMP[0].zx, IN[0]\n")
	var serr *SourceError
	if !errors.As(err, &serr) {
		t.Fatalf("Expected *SourceError, got %v", err)
	}
	out := serr.FormatWithContext()
	if !strings.Contains(out, "MOV TEMP[0].zx, IN[0]") {
		t.Errorf("Expected offending line in context, got:\n%s", out)
	}
	if !strings.Contains(out, strings.Repeat(" ", 12)+"^") {
		t.Errorf("Expected caret under column 13, got:\n%s", out)
	}
}
