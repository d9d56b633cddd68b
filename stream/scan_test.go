package stream

import (
	"testing"

	"github.com/gogpu/tgsi/ir"
)

func TestScan(t *testing.T) {
	s := mustEncode(t, ir.ProcessorFragment, sampleTokens())
	info, err := Scan(s)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if info.NumDeclarations != 7 {
		t.Errorf("Expected 7 declarations, got %d", info.NumDeclarations)
	}
	if info.NumImmediates != 2 {
		t.Errorf("Expected 2 immediates, got %d", info.NumImmediates)
	}
	if info.NumInstructions != 8 {
		t.Errorf("Expected 8 instructions, got %d", info.NumInstructions)
	}
	if got := info.FileMax[ir.FileTemporary]; got != 3 {
		t.Errorf("Expected TEMP max 3, got %d", got)
	}
	if sem := info.Inputs[1]; sem.Name != ir.SemanticGeneric || sem.Index != 4 {
		t.Errorf("Expected IN[1] to be GENERIC[4], got %s[%d]", sem.Name, sem.Index)
	}
	if reg, ok := info.FindOutput(ir.SemanticColor, 0); !ok || reg != 0 {
		t.Errorf("Expected COLOR output at 0, got %d (%v)", reg, ok)
	}
	if len(info.Samplers) != 1 || info.Samplers[0] != 2 {
		t.Errorf("Expected samplers [2], got %v", info.Samplers)
	}
	if !info.UsesKill {
		t.Error("Expected UsesKill")
	}
	if info.Properties[ir.PropFSColor0WritesAllCbufs] != 1 {
		t.Error("Expected FS_COLOR0_WRITES_ALL_CBUFS property")
	}
}
