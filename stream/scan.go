package stream

import (
	"github.com/gogpu/tgsi/ir"
)

// Info summarizes a program: what it declares and which opcodes it uses.
type Info struct {
	Processor ir.Processor

	NumDeclarations int
	NumImmediates   int
	NumInstructions int
	NumProperties   int

	// FileMax is the highest declared index per register file. Files
	// with no declaration are absent.
	FileMax map[ir.File]uint32

	// Inputs and Outputs map register indices to their semantics.
	Inputs  map[uint32]ir.Semantic
	Outputs map[uint32]ir.Semantic

	// SystemValues maps SV indices to their semantics.
	SystemValues map[uint32]ir.Semantic

	// Samplers lists declared sampler units in ascending order.
	Samplers []uint32

	Properties map[ir.PropertyName]uint32
	Opcodes    map[ir.Opcode]int

	UsesKill bool
}

// Scan walks s once and collects its Info.
func Scan(s *Stream) (*Info, error) {
	info := &Info{
		Processor:    s.Processor(),
		FileMax:      make(map[ir.File]uint32),
		Inputs:       make(map[uint32]ir.Semantic),
		Outputs:      make(map[uint32]ir.Semantic),
		SystemValues: make(map[uint32]ir.Semantic),
		Properties:   make(map[ir.PropertyName]uint32),
		Opcodes:      make(map[ir.Opcode]int),
	}
	p := s.Parser()
	for !p.End() {
		tok, err := p.Next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case *ir.Declaration:
			info.NumDeclarations++
			info.declaration(t)
		case *ir.Immediate:
			info.NumImmediates++
		case *ir.Instruction:
			info.NumInstructions++
			info.Opcodes[t.Opcode]++
			if t.Opcode == ir.OpKILL || t.Opcode == ir.OpKILL_IF {
				info.UsesKill = true
			}
		case *ir.Property:
			info.NumProperties++
			info.Properties[t.Name] = t.Value
		}
	}
	return info, nil
}

func (info *Info) declaration(d *ir.Declaration) {
	if m, ok := info.FileMax[d.File]; !ok || d.Last > m {
		info.FileMax[d.File] = d.Last
	}
	var sems map[uint32]ir.Semantic
	switch d.File {
	case ir.FileInput:
		sems = info.Inputs
	case ir.FileOutput:
		sems = info.Outputs
	case ir.FileSystemValue:
		sems = info.SystemValues
	case ir.FileSampler:
		for i := d.First; i <= d.Last; i++ {
			info.Samplers = insertSorted(info.Samplers, i)
		}
	}
	if sems != nil && d.Semantic != nil {
		for i := d.First; i <= d.Last; i++ {
			sems[i] = ir.Semantic{Name: d.Semantic.Name, Index: d.Semantic.Index + (i - d.First)}
		}
	}
}

// FindOutput returns the output register carrying the given semantic.
func (info *Info) FindOutput(name ir.SemanticName, index uint32) (uint32, bool) {
	return findSemantic(info.Outputs, name, index)
}

// FindInput returns the input register carrying the given semantic.
func (info *Info) FindInput(name ir.SemanticName, index uint32) (uint32, bool) {
	return findSemantic(info.Inputs, name, index)
}

// findSemantic returns the lowest register carrying the semantic.
func findSemantic(m map[uint32]ir.Semantic, name ir.SemanticName, index uint32) (uint32, bool) {
	best, found := uint32(0), false
	for reg, sem := range m {
		if sem.Name == name && sem.Index == index && (!found || reg < best) {
			best, found = reg, true
		}
	}
	return best, found
}

func insertSorted(list []uint32, v uint32) []uint32 {
	for i, x := range list {
		if x == v {
			return list
		}
		if x > v {
			list = append(list, 0)
			copy(list[i+1:], list[i:])
			list[i] = v
			return list
		}
	}
	return append(list, v)
}
