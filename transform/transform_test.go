package transform

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/tgsi/ir"
	"github.com/gogpu/tgsi/stream"
	"github.com/gogpu/tgsi/text"
)

func assemble(t testing.TB, src string) *stream.Stream {
	t.Helper()
	s, err := text.Assemble(src)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	return s
}

func dump(s *stream.Stream) string {
	out, err := text.Dump(s)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return out
}

// injector inserts a fixed number of instructions at the prolog and the
// epilogue and counts how often each hook ran.
type injector struct {
	Base
	prolog   int
	epilogue int

	declareImm bool
	immIndex   uint32

	prologs   int
	epilogues int
}

func (h *injector) Prolog(ctx *Context) error {
	h.prologs++
	if h.declareImm {
		idx, err := ctx.DeclareImmediate(0.5, 0.5, 0.5, 0.5)
		if err != nil {
			return err
		}
		h.immIndex = idx
	}
	for i := 0; i < h.prolog; i++ {
		if err := ctx.Op1(ir.OpMOV, ir.DstReg(ir.FileTemporary, 0, ir.WriteXYZW), ir.SrcReg(ir.FileInput, 0)); err != nil {
			return err
		}
	}
	return nil
}

func (h *injector) Epilogue(ctx *Context) error {
	h.epilogues++
	for i := 0; i < h.epilogue; i++ {
		err := ctx.Op2(ir.OpMUL,
			ir.DstReg(ir.FileOutput, 0, ir.WriteW),
			ir.SrcReg(ir.FileTemporary, 0).Scalar(ir.W),
			ir.SrcReg(ir.FileInput, 0).Scalar(ir.W))
		if err != nil {
			return err
		}
	}
	return nil
}

const header = `FRAG
DCL IN[0], GENERIC, PERSPECTIVE
DCL OUT[0], COLOR
DCL TEMP[0]
`

const nested = header + `IMM[0] FLT32 {1, 0, 0, 0}
IMM[1] FLT32 {0, 1, 0, 0}
  0: IF IN[0].xxxx :6
  1:   IF IN[0].yyyy :5
  2:     IF IN[0].zzzz :4
  3:       MOV OUT[0], IN[0]
  4:     ENDIF
  5:   ENDIF
  6: ENDIF
  7: END
  8: BGNSUB
  9:   RET
 10: ENDSUB
`

func TestIdentityTransform(t *testing.T) {
	sources := []string{
		"FRAG\n",
		header + "MOV OUT[0], IN[0]\nEND\n",
		nested,
		"VERT\nDCL IN[0], POSITION\nDCL OUT[0], POSITION\nDCL CONST[0..3]\nDCL ADDR[0]\n" +
			"ARL ADDR[0].x, IN[0].xxxx\nMOV OUT[0], CONST[ADDR[0].x+1]\nEND\n",
	}
	for i, src := range sources {
		in := assemble(t, src)
		out, err := Run(in, Base{}, DefaultOptions())
		if err != nil {
			t.Fatalf("source %d: Run failed: %v", i, err)
		}
		if !out.Equal(in) {
			t.Errorf("source %d: identity transform changed the program:\n%s\nbecame\n%s", i, dump(in), dump(out))
		}
	}
}

func TestPrologAndEpilogueFireOnce(t *testing.T) {
	in := assemble(t, nested)
	h := &injector{prolog: 1, epilogue: 1}
	out, err := Run(in, h, DefaultOptions())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if h.prologs != 1 || h.epilogues != 1 {
		t.Errorf("Expected one prolog and one epilogue, got %d and %d", h.prologs, h.epilogues)
	}

	want := assemble(t, header+`IMM[0] FLT32 {1, 0, 0, 0}
IMM[1] FLT32 {0, 1, 0, 0}
MOV TEMP[0], IN[0]
IF IN[0].xxxx :7
IF IN[0].yyyy :6
IF IN[0].zzzz :5
MOV OUT[0], IN[0]
ENDIF
ENDIF
ENDIF
MUL OUT[0].w, TEMP[0].wwww, IN[0].wwww
END
BGNSUB
RET
ENDSUB
`)
	if !out.Equal(want) {
		t.Errorf("Unexpected output:\n%s\nexpected:\n%s", dump(out), dump(want))
	}
}

func TestTopLevelRetEndsMainBody(t *testing.T) {
	in := assemble(t, header+"MOV OUT[0], IN[0]\nRET\n")
	h := &injector{epilogue: 1}
	out, err := Run(in, h, DefaultOptions())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want := assemble(t, header+"MOV OUT[0], IN[0]\nMUL OUT[0].w, TEMP[0].wwww, IN[0].wwww\nRET\n")
	if !out.Equal(want) {
		t.Errorf("Unexpected output:\n%s", dump(out))
	}
}

func TestInjectedImmediateIndex(t *testing.T) {
	in := assemble(t, nested)
	h := &injector{declareImm: true}
	out, err := Run(in, h, DefaultOptions())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if h.immIndex != 2 {
		t.Errorf("Expected injected immediate index 2, got %d", h.immIndex)
	}
	info, err := stream.Scan(out)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if info.NumImmediates != 3 {
		t.Errorf("Expected 3 immediates, got %d", info.NumImmediates)
	}
}

func TestMalformedStructure(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"ret inside conditional", "IF IN[0].xxxx :2\nRET\nENDIF\nEND\n"},
		{"end inside loop", "BGNLOOP :2\nEND\nENDLOOP :0\n"},
		{"close without open", "ENDIF\nEND\n"},
		{"else outside conditional", "ELSE :1\nEND\n"},
		{"unterminated subroutine", "END\nBGNSUB\nRET\n"},
		{"stray endsub", "END\nENDSUB\n"},
		{"missing end", "MOV OUT[0], IN[0]\n"},
		{"immediate after instruction", "MOV OUT[0], IN[0]\nIMM[0] FLT32 {0.25, 0.25, 0.25, 0.25}\nADD OUT[0], IN[0], IMM[0]\nEND\n"},
		{"declaration after instruction", "MOV TEMP[0], IN[0]\nDCL TEMP[1]\nMOV OUT[0], TEMP[1]\nEND\n"},
		{"property after instruction", "MOV OUT[0], IN[0]\nPROPERTY FS_COLOR0_WRITES_ALL_CBUFS 1\nEND\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := assemble(t, header+tt.body)
			h := &injector{epilogue: 1}
			out, err := Run(in, h, DefaultOptions())
			if out != nil {
				t.Error("Expected no output on failure")
			}
			if !ir.IsKind(err, ir.ErrMalformedStream) {
				t.Fatalf("Expected MalformedStream, got %v", err)
			}
		})
	}
}

func TestRetInConditionalSkipsEpilogue(t *testing.T) {
	in := assemble(t, header+"IF IN[0].xxxx :2\nRET\nENDIF\nEND\n")
	h := &injector{epilogue: 1}
	if _, err := Run(in, h, DefaultOptions()); err == nil {
		t.Fatal("Expected error")
	}
	if h.epilogues != 0 {
		t.Errorf("Expected the epilogue not to run, ran %d times", h.epilogues)
	}
}

func TestGrowthIndependentOfCapacity(t *testing.T) {
	in := assemble(t, nested)
	h := &injector{prolog: 40, epilogue: 40}
	want, err := Run(in, h, Options{Capacity: 1 << 12})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, capacity := range []int{1, 2, 4, 16, 1024} {
		got, err := Shader(in, capacity, &injector{prolog: 40, epilogue: 40})
		if err != nil {
			t.Fatalf("capacity %d: Run failed: %v", capacity, err)
		}
		if !got.Equal(want) {
			t.Errorf("capacity %d: output differs", capacity)
		}
	}
}

func TestCapacityExceeded(t *testing.T) {
	in := assemble(t, header+"END\n")
	h := &injector{prolog: 100}
	out, err := Run(in, h, Options{Capacity: 4, MaxWords: 64})
	if out != nil {
		t.Error("Expected no output on failure")
	}
	if !ir.IsKind(err, ir.ErrCapacityExceeded) {
		t.Fatalf("Expected CapacityExceeded, got %v", err)
	}
}

type failing struct {
	Base
	err error
}

func (f failing) Instruction(*Context, *ir.Instruction) error { return f.err }

func TestHandlerErrorPropagates(t *testing.T) {
	sentinel := errors.New("boom")
	in := assemble(t, header+"MOV OUT[0], IN[0]\nEND\n")
	_, err := Run(in, failing{err: sentinel}, DefaultOptions())
	if !errors.Is(err, sentinel) {
		t.Errorf("Expected handler error to propagate unchanged, got %v", err)
	}
}

type badEmitter struct{ Base }

func (badEmitter) Prolog(ctx *Context) error {
	return ctx.EmitInstruction(&ir.Instruction{Opcode: ir.Opcode(250)})
}

func TestUnencodableTokenRejected(t *testing.T) {
	in := assemble(t, header+"END\n")
	_, err := Run(in, badEmitter{}, DefaultOptions())
	if !ir.IsKind(err, ir.ErrMalformedStream) {
		t.Errorf("Expected MalformedStream, got %v", err)
	}
}

func TestRunLogsCompletion(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	in := assemble(t, header+"END\n")
	if _, err := Run(in, Base{}, DefaultOptions()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(buf.String(), "transform: done") {
		t.Errorf("Expected completion log, got %q", buf.String())
	}
}

func BenchmarkIdentity(b *testing.B) {
	in := assemble(b, nested)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Run(in, Base{}, DefaultOptions()); err != nil {
			b.Fatal(err)
		}
	}
}
