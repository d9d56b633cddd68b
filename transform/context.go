package transform

import (
	"github.com/gogpu/tgsi/ir"
	"github.com/gogpu/tgsi/stream"
)

// Context is the handle a Handler emits output through. It is only valid
// during the Run call that created it.
type Context struct {
	b    *stream.Builder
	proc ir.Processor

	numImmediates   int
	numInstructions uint32

	// labelMap[i] is the output number of input instruction i.
	labelMap []uint32
	fixups   []labelFixup

	grows int
}

// labelFixup records where an emitted branch label was written.
type labelFixup struct {
	offset int
	label  uint32
}

// Processor returns the processor of the program being transformed.
func (c *Context) Processor() ir.Processor { return c.proc }

// NumImmediates returns how many immediates have been emitted so far, which
// is the index the next emitted immediate receives.
func (c *Context) NumImmediates() int { return c.numImmediates }

// NumInstructions returns how many instructions have been emitted so far.
func (c *Context) NumInstructions() int { return int(c.numInstructions) }

// EmitDeclaration appends a declaration to the output.
func (c *Context) EmitDeclaration(decl *ir.Declaration) error {
	_, err := c.emit(decl)
	return err
}

// EmitImmediate appends an immediate to the output.
func (c *Context) EmitImmediate(imm *ir.Immediate) error {
	if _, err := c.emit(imm); err != nil {
		return err
	}
	c.numImmediates++
	return nil
}

// EmitInstruction appends an instruction to the output. Branch labels are
// taken to be input instruction numbers and are renumbered once the whole
// output is known.
func (c *Context) EmitInstruction(inst *ir.Instruction) error {
	start, err := c.emit(inst)
	if err != nil {
		return err
	}
	if inst.Opcode.Info().Label || inst.Label != 0 {
		c.fixups = append(c.fixups, labelFixup{offset: start + 1, label: inst.Label})
	}
	c.numInstructions++
	return nil
}

// EmitProperty appends a property to the output.
func (c *Context) EmitProperty(prop *ir.Property) error {
	_, err := c.emit(prop)
	return err
}

// emit is the only place output is written. It retries an append after
// growing the builder until the token fits or growth fails.
func (c *Context) emit(tok ir.Token) (int, error) {
	if err := stream.Check(tok); err != nil {
		return 0, err
	}
	start := c.b.Len()
	for {
		if _, ok := c.b.TryAppend(tok); ok {
			return start, nil
		}
		if err := c.b.Grow(); err != nil {
			return 0, err
		}
		c.grows++
	}
}

// applyLabels rewrites every recorded label from input to output numbering.
func (c *Context) applyLabels() {
	for _, f := range c.fixups {
		out := c.numInstructions
		if int(f.label) < len(c.labelMap) {
			out = c.labelMap[f.label]
		}
		c.b.SetWord(f.offset, out)
	}
}
