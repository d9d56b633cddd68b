package ir

import "strings"

// Component selects one of the four channels of a register.
type Component uint8

const (
	X Component = iota
	Y
	Z
	W
)

const componentChars = "xyzw"

func (c Component) String() string {
	if c < 4 {
		return componentChars[c : c+1]
	}
	return "?"
}

// Swizzle maps each destination channel to a source channel, two bits per
// channel with x in the low bits.
type Swizzle uint8

// SwizzleXYZW is the identity selection.
const SwizzleXYZW Swizzle = 0xE4

// NewSwizzle packs four channel selections.
func NewSwizzle(x, y, z, w Component) Swizzle {
	return Swizzle(x&3 | (y&3)<<2 | (z&3)<<4 | (w&3)<<6)
}

// Get returns the source channel feeding destination channel i.
func (s Swizzle) Get(i int) Component {
	return Component(s>>(2*uint(i))) & 3
}

// Set returns s with destination channel i fed from c.
func (s Swizzle) Set(i int, c Component) Swizzle {
	shift := 2 * uint(i)
	return s&^(3<<shift) | Swizzle(c&3)<<shift
}

func (s Swizzle) String() string {
	var b [4]byte
	for i := range b {
		b[i] = componentChars[s.Get(i)]
	}
	return string(b[:])
}

// ParseSwizzle accepts one to four of x, y, z, w (or r, g, b, a). Short
// forms repeat the last channel, so ".x" means ".xxxx".
func ParseSwizzle(text string) (Swizzle, bool) {
	if len(text) == 0 || len(text) > 4 {
		return 0, false
	}
	var comps [4]Component
	for i := 0; i < 4; i++ {
		if i >= len(text) {
			comps[i] = comps[i-1]
			continue
		}
		c, ok := parseComponent(text[i])
		if !ok {
			return 0, false
		}
		comps[i] = c
	}
	return NewSwizzle(comps[0], comps[1], comps[2], comps[3]), true
}

func parseComponent(ch byte) (Component, bool) {
	switch ch {
	case 'x', 'r':
		return X, true
	case 'y', 'g':
		return Y, true
	case 'z', 'b':
		return Z, true
	case 'w', 'a':
		return W, true
	}
	return 0, false
}

// WriteMask is the set of destination channels an instruction writes.
type WriteMask uint8

const (
	WriteX WriteMask = 1 << iota
	WriteY
	WriteZ
	WriteW

	WriteXY   = WriteX | WriteY
	WriteXYZ  = WriteX | WriteY | WriteZ
	WriteXYZW = WriteX | WriteY | WriteZ | WriteW
)

// Has reports whether channel c is written.
func (m WriteMask) Has(c Component) bool { return m&(1<<c) != 0 }

func (m WriteMask) String() string {
	var sb strings.Builder
	for c := X; c <= W; c++ {
		if m.Has(c) {
			sb.WriteByte(componentChars[c])
		}
	}
	return sb.String()
}

// ParseWriteMask accepts channels in xyzw order, each at most once.
func ParseWriteMask(text string) (WriteMask, bool) {
	if text == "" {
		return 0, false
	}
	var m WriteMask
	last := -1
	for i := 0; i < len(text); i++ {
		c, ok := parseComponent(text[i])
		if !ok || int(c) <= last {
			return 0, false
		}
		last = int(c)
		m |= 1 << c
	}
	return m, true
}
