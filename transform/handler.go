package transform

import "github.com/gogpu/tgsi/ir"

// Handler receives every input token and decides what to emit for it.
//
// The driver calls Prolog exactly once, immediately before the first
// instruction, and Epilogue exactly once, immediately before the program's
// terminating END (or a RET that ends the main body). Any error aborts the
// whole transform.
//
// Embed Base to inherit pass-through behaviour and override only the
// methods a pass needs.
type Handler interface {
	Prolog(ctx *Context) error
	Epilogue(ctx *Context) error
	Declaration(ctx *Context, decl *ir.Declaration) error
	Immediate(ctx *Context, imm *ir.Immediate) error
	Instruction(ctx *Context, inst *ir.Instruction) error
	Property(ctx *Context, prop *ir.Property) error
}

// Base copies every token through unchanged and injects nothing.
type Base struct{}

func (Base) Prolog(*Context) error   { return nil }
func (Base) Epilogue(*Context) error { return nil }

func (Base) Declaration(ctx *Context, decl *ir.Declaration) error {
	return ctx.EmitDeclaration(decl)
}

func (Base) Immediate(ctx *Context, imm *ir.Immediate) error {
	return ctx.EmitImmediate(imm)
}

func (Base) Instruction(ctx *Context, inst *ir.Instruction) error {
	return ctx.EmitInstruction(inst)
}

func (Base) Property(ctx *Context, prop *ir.Property) error {
	return ctx.EmitProperty(prop)
}
