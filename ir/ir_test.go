package ir

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseSwizzle(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"xyzw", "xyzw", true},
		{"x", "xxxx", true},
		{"xy", "xyyy", true},
		{"rgba", "xyzw", true},
		{"wzyx", "wzyx", true},
		{"", "", false},
		{"xyzwx", "", false},
		{"xq", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			s, ok := ParseSwizzle(tt.text)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && s.String() != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, s.String())
			}
		})
	}
}

func TestSwizzleGetSet(t *testing.T) {
	if SwizzleXYZW != NewSwizzle(X, Y, Z, W) {
		t.Fatalf("Expected identity 0x%02X, got 0x%02X", uint8(NewSwizzle(X, Y, Z, W)), uint8(SwizzleXYZW))
	}
	s := SwizzleXYZW.Set(1, W)
	if s.Get(1) != W || s.Get(0) != X || s.Get(2) != Z {
		t.Errorf("Expected xwzw, got %s", s)
	}
	if got := NewSwizzle(Z, Z, Y, Y).String(); got != "zzyy" {
		t.Errorf("Expected zzyy, got %s", got)
	}
}

func TestParseWriteMask(t *testing.T) {
	tests := []struct {
		text string
		want WriteMask
		ok   bool
	}{
		{"xyzw", WriteXYZW, true},
		{"xy", WriteXY, true},
		{"w", WriteW, true},
		{"xz", WriteX | WriteZ, true},
		{"yx", 0, false},
		{"xx", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			m, ok := ParseWriteMask(tt.text)
			if ok != tt.ok || m != tt.want {
				t.Errorf("Expected (%s, %v), got (%s, %v)", tt.want, tt.ok, m, ok)
			}
			if ok && m.String() != tt.text {
				t.Errorf("Expected %q back, got %q", tt.text, m.String())
			}
		})
	}
}

func TestOpcodeTable(t *testing.T) {
	for op := OpNOP; op < opcodeCount; op++ {
		info := op.Info()
		if info.Name == "" {
			t.Errorf("opcode %d has no name", op)
			continue
		}
		got, ok := LookupOpcode(info.Name)
		if !ok || got != op {
			t.Errorf("LookupOpcode(%q): expected %d, got %d", info.Name, op, got)
		}
		if info.Texture && info.NumSrc != 2 {
			t.Errorf("%s: texture opcodes take a coordinate and a sampler", info.Name)
		}
	}
	if opcodeCount.Valid() {
		t.Error("Expected opcodeCount to be invalid")
	}
	if got := Opcode(255).String(); got != "UNKNOWN" {
		t.Errorf("Expected UNKNOWN, got %s", got)
	}
}

func TestOpcodeFlow(t *testing.T) {
	tests := []struct {
		op   Opcode
		flow Flow
	}{
		{OpIF, FlowOpen},
		{OpUIF, FlowOpen},
		{OpBGNLOOP, FlowOpen},
		{OpSWITCH, FlowOpen},
		{OpELSE, FlowElse},
		{OpENDIF, FlowClose},
		{OpENDLOOP, FlowClose},
		{OpENDSWITCH, FlowClose},
		{OpBGNSUB, FlowSubBegin},
		{OpENDSUB, FlowSubEnd},
		{OpMOV, FlowNone},
		{OpEND, FlowNone},
	}
	for _, tt := range tests {
		if got := tt.op.Info().Flow; got != tt.flow {
			t.Errorf("%s: expected flow %d, got %d", tt.op, tt.flow, got)
		}
	}
}

func TestParseFile(t *testing.T) {
	for f := FileNull; f < fileCount; f++ {
		got, ok := ParseFile(f.String())
		if !ok || got != f {
			t.Errorf("ParseFile(%q): expected %d, got %d", f, f, got)
		}
	}
	if _, ok := ParseFile("REG"); ok {
		t.Error("Expected REG to be rejected")
	}
}

func TestErrorKinds(t *testing.T) {
	base := errors.New("out of memory")
	tests := []struct {
		name string
		err  error
		kind ErrorKind
		text string
	}{
		{
			"formatted",
			Errorf(ErrResourceExhausted, "pstipple", "no free sampler among %d", 32),
			ErrResourceExhausted,
			"tgsi pstipple ResourceExhausted: no free sampler among 32",
		},
		{
			"wrapped",
			Wrap(ErrAllocationFailure, "pstipple", base),
			ErrAllocationFailure,
			"tgsi pstipple AllocationFailure: out of memory",
		},
		{
			"no op",
			Errorf(ErrMalformedStream, "", "bad header"),
			ErrMalformedStream,
			"tgsi MalformedStream: bad header",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.text {
				t.Errorf("Expected %q, got %q", tt.text, tt.err.Error())
			}
			outer := fmt.Errorf("sprite: %w", tt.err)
			if !errors.Is(outer, tt.kind) {
				t.Errorf("Expected errors.Is(%v) through wrapping", tt.kind)
			}
			if k, ok := KindOf(outer); !ok || k != tt.kind {
				t.Errorf("KindOf: expected %s, got %s (%v)", tt.kind, k, ok)
			}
			if tt.kind != ErrCapacityExceeded && errors.Is(outer, ErrCapacityExceeded) {
				t.Error("Expected no match for a different kind")
			}
		})
	}

	if !errors.Is(Wrap(ErrAllocationFailure, "op", base), base) {
		t.Error("Expected the cause to be reachable through Unwrap")
	}
	if IsKind(base, ErrMalformedStream) {
		t.Error("Expected a plain error to carry no kind")
	}
}

func TestInstructionClone(t *testing.T) {
	src := SrcReg(FileTemporary, 1)
	src.Indirect = &Indirect{File: FileAddress, Component: X}
	inst := &Instruction{
		Opcode: OpMOV,
		Dst:    []Dst{DstReg(FileOutput, 0, WriteXYZW)},
		Src:    []Src{src},
	}
	c := inst.Clone()
	c.Dst[0].Index = 3
	c.Src[0].Indirect.Index = 2
	if inst.Dst[0].Index != 0 || inst.Src[0].Indirect.Index != 0 {
		t.Errorf("Clone shares operands with the original: %+v", inst)
	}
}

func TestOperandHelpers(t *testing.T) {
	s := SrcReg(FileInput, 2).Scalar(W).Neg().Abs()
	if s.Swizzle.String() != "wwww" || !s.Negate || !s.Absolute {
		t.Errorf("Expected -|IN[2].wwww|, got %+v", s)
	}
	if s.Neg().Negate {
		t.Error("Expected Neg to toggle")
	}
	d := DstReg(FileTemporary, 5, WriteXY)
	if back := d.AsSrc(); !back.Is(FileTemporary, 5) || back.Swizzle != SwizzleXYZW {
		t.Errorf("AsSrc: got %+v", back)
	}
	decl := &Declaration{File: FileTemporary, First: 2, Last: 4, Semantic: &Semantic{Name: SemanticGeneric}}
	if !decl.Contains(4) || decl.Contains(5) || decl.Contains(1) {
		t.Error("Contains: wrong range check")
	}
	dc := decl.Clone()
	dc.Semantic.Index = 7
	if decl.Semantic.Index != 0 {
		t.Error("Declaration clone shares its semantic")
	}
}
