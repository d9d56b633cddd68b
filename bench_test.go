package tgsi

import (
	"runtime"
	"strings"
	"testing"

	"github.com/gogpu/tgsi/aapoint"
	"github.com/gogpu/tgsi/pstipple"
	"github.com/gogpu/tgsi/sprite"
	"github.com/gogpu/tgsi/stream"
)

// ---------------------------------------------------------------------------
// Test programs at different sizes
// ---------------------------------------------------------------------------

// largeFS repeats a texture-and-blend body to give the driver a realistic
// amount of instructions to walk.
var largeFS = func() string {
	var sb strings.Builder
	sb.WriteString("FRAG\n")
	sb.WriteString("DCL IN[0], COLOR, COLOR\n")
	sb.WriteString("DCL IN[1], GENERIC[0], PERSPECTIVE\n")
	sb.WriteString("DCL OUT[0], COLOR\n")
	sb.WriteString("DCL SAMP[0]\n")
	sb.WriteString("DCL TEMP[0..1]\n")
	sb.WriteString("MOV TEMP[0], IN[0]\n")
	for i := 0; i < 200; i++ {
		sb.WriteString("TEX TEMP[1], IN[1], SAMP[0], 2D\n")
		sb.WriteString("MAD TEMP[0], TEMP[0], TEMP[1], IN[0]\n")
	}
	sb.WriteString("MOV OUT[0], TEMP[0]\n")
	sb.WriteString("END\n")
	return sb.String()
}()

var passBenchmarks = []struct {
	name string
	src  string
	opts Options
}{
	{"none_small", colorFS, DefaultOptions()},
	{"none_large", largeFS, DefaultOptions()},
	{"aapoint_small", colorFS, Options{Pass: PassAAPoint, AAPoint: aapoint.DefaultOptions()}},
	{"aapoint_large", largeFS, Options{Pass: PassAAPoint, AAPoint: aapoint.DefaultOptions()}},
	{"pstipple_large", largeFS, Options{Pass: PassPStipple, PStipple: pstipple.DefaultOptions()}},
	{"sprite", pointGS, Options{Pass: PassSprite, Sprite: sprite.Options{CoordEnable: 1, AA: true}}},
}

// ---------------------------------------------------------------------------
// Pass benchmarks
// ---------------------------------------------------------------------------

// BenchmarkApply measures one pass over an already assembled stream.
// Reports allocations and throughput in stream bytes/sec.
func BenchmarkApply(b *testing.B) {
	for _, bc := range passBenchmarks {
		b.Run(bc.name, func(b *testing.B) {
			in, err := Assemble(bc.src)
			if err != nil {
				b.Fatalf("assemble failed: %v", err)
			}
			b.ReportAllocs()
			b.SetBytes(int64(len(in.Bytes())))
			b.ResetTimer()

			var res *Result
			for i := 0; i < b.N; i++ {
				res, err = Apply(in, bc.opts)
				if err != nil {
					b.Fatalf("apply failed: %v", err)
				}
			}
			runtime.KeepAlive(res)
		})
	}
}

// BenchmarkAssemble measures parsing the text form.
func BenchmarkAssemble(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(largeFS)))
	var s *stream.Stream
	for i := 0; i < b.N; i++ {
		var err error
		s, err = Assemble(largeFS)
		if err != nil {
			b.Fatalf("assemble failed: %v", err)
		}
	}
	runtime.KeepAlive(s)
}

// BenchmarkDisassemble measures printing the text form.
func BenchmarkDisassemble(b *testing.B) {
	s, err := Assemble(largeFS)
	if err != nil {
		b.Fatalf("assemble failed: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	var out string
	for i := 0; i < b.N; i++ {
		out, err = Disassemble(s)
		if err != nil {
			b.Fatalf("disassemble failed: %v", err)
		}
	}
	runtime.KeepAlive(out)
}
