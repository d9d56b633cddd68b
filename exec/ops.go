package exec

import (
	"math"

	"github.com/gogpu/tgsi/ir"
)

// isInteger reports whether op reads its sources as integer bits.
func isInteger(op ir.Opcode) bool {
	switch op {
	case ir.OpI2F, ir.OpU2F, ir.OpNOT, ir.OpUADD, ir.OpAND, ir.OpOR, ir.OpXOR, ir.OpSHL:
		return true
	}
	return false
}

func evaluate(op ir.Opcode, src *[3]Vec4) (Vec4, bool) {
	a, b, c := &src[0], &src[1], &src[2]
	switch op {
	case ir.OpMOV:
		return *a, true
	case ir.OpARL, ir.OpFLR:
		return each(a, floor), true
	case ir.OpCEIL:
		return each(a, func(x float32) float32 { return float32(math.Ceil(float64(x))) }), true
	case ir.OpTRUNC:
		return each(a, func(x float32) float32 { return float32(math.Trunc(float64(x))) }), true
	case ir.OpROUND:
		return each(a, func(x float32) float32 { return float32(math.RoundToEven(float64(x))) }), true
	case ir.OpFRC:
		return each(a, func(x float32) float32 { return x - floor(x) }), true
	case ir.OpSSG:
		return each(a, func(x float32) float32 {
			switch {
			case x > 0:
				return 1
			case x < 0:
				return -1
			}
			return 0
		}), true
	case ir.OpDDX, ir.OpDDY:
		return Vec4{}, true

	// Scalar opcodes replicate their result from the x channel.
	case ir.OpRCP:
		return splat(1 / a[0]), true
	case ir.OpRSQ:
		return splat(float32(1 / math.Sqrt(math.Abs(float64(a[0]))))), true
	case ir.OpSQRT:
		return splat(float32(math.Sqrt(float64(a[0])))), true
	case ir.OpEX2:
		return splat(float32(math.Exp2(float64(a[0])))), true
	case ir.OpLG2:
		return splat(float32(math.Log2(float64(a[0])))), true
	case ir.OpSIN:
		return splat(float32(math.Sin(float64(a[0])))), true
	case ir.OpCOS:
		return splat(float32(math.Cos(float64(a[0])))), true
	case ir.OpPOW:
		return splat(float32(math.Pow(float64(a[0]), float64(b[0])))), true
	case ir.OpDP2:
		return splat(a[0]*b[0] + a[1]*b[1]), true
	case ir.OpDP3:
		return splat(a[0]*b[0] + a[1]*b[1] + a[2]*b[2]), true
	case ir.OpDP4:
		return splat(a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3]), true

	case ir.OpADD:
		return each2(a, b, func(x, y float32) float32 { return x + y }), true
	case ir.OpMUL:
		return each2(a, b, func(x, y float32) float32 { return x * y }), true
	case ir.OpDIV:
		return each2(a, b, func(x, y float32) float32 { return x / y }), true
	case ir.OpMIN:
		return each2(a, b, func(x, y float32) float32 { return min(x, y) }), true
	case ir.OpMAX:
		return each2(a, b, func(x, y float32) float32 { return max(x, y) }), true
	case ir.OpSLT:
		return each2(a, b, compare(func(x, y float32) bool { return x < y })), true
	case ir.OpSGE:
		return each2(a, b, compare(func(x, y float32) bool { return x >= y })), true
	case ir.OpSGT:
		return each2(a, b, compare(func(x, y float32) bool { return x > y })), true
	case ir.OpSLE:
		return each2(a, b, compare(func(x, y float32) bool { return x <= y })), true
	case ir.OpSEQ:
		return each2(a, b, compare(func(x, y float32) bool { return x == y })), true
	case ir.OpSNE:
		return each2(a, b, compare(func(x, y float32) bool { return x != y })), true

	case ir.OpMAD:
		var r Vec4
		for i := range r {
			r[i] = a[i]*b[i] + c[i]
		}
		return r, true
	case ir.OpLRP:
		var r Vec4
		for i := range r {
			r[i] = a[i]*b[i] + (1-a[i])*c[i]
		}
		return r, true
	case ir.OpCMP:
		var r Vec4
		for i := range r {
			if a[i] < 0 {
				r[i] = b[i]
			} else {
				r[i] = c[i]
			}
		}
		return r, true

	case ir.OpI2F:
		return each(a, func(x float32) float32 { return float32(int32(toBits(x))) }), true
	case ir.OpU2F:
		return each(a, func(x float32) float32 { return float32(toBits(x)) }), true
	case ir.OpF2I:
		return each(a, func(x float32) float32 { return fromBits(uint32(int32(x))) }), true
	case ir.OpF2U:
		return each(a, func(x float32) float32 { return fromBits(uint32(x)) }), true
	case ir.OpNOT:
		return each(a, func(x float32) float32 { return fromBits(^toBits(x)) }), true
	case ir.OpUADD:
		return bits2(a, b, func(x, y uint32) uint32 { return x + y }), true
	case ir.OpAND:
		return bits2(a, b, func(x, y uint32) uint32 { return x & y }), true
	case ir.OpOR:
		return bits2(a, b, func(x, y uint32) uint32 { return x | y }), true
	case ir.OpXOR:
		return bits2(a, b, func(x, y uint32) uint32 { return x ^ y }), true
	case ir.OpSHL:
		return bits2(a, b, func(x, y uint32) uint32 { return x << (y & 31) }), true
	}
	return Vec4{}, false
}

func floor(x float32) float32 { return float32(math.Floor(float64(x))) }

func splat(x float32) Vec4 { return Vec4{x, x, x, x} }

func each(a *Vec4, f func(float32) float32) Vec4 {
	var r Vec4
	for i := range r {
		r[i] = f(a[i])
	}
	return r
}

func each2(a, b *Vec4, f func(x, y float32) float32) Vec4 {
	var r Vec4
	for i := range r {
		r[i] = f(a[i], b[i])
	}
	return r
}

func bits2(a, b *Vec4, f func(x, y uint32) uint32) Vec4 {
	var r Vec4
	for i := range r {
		r[i] = fromBits(f(toBits(a[i]), toBits(b[i])))
	}
	return r
}

func compare(pred func(x, y float32) bool) func(x, y float32) float32 {
	return func(x, y float32) float32 {
		if pred(x, y) {
			return 1
		}
		return 0
	}
}
