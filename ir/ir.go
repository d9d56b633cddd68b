package ir

import "math"

// Processor identifies the pipeline stage a program runs on.
type Processor uint8

const (
	ProcessorFragment Processor = iota
	ProcessorVertex
	ProcessorGeometry
	ProcessorTessCtrl
	ProcessorTessEval
	ProcessorCompute

	processorCount
)

var processorNames = [...]string{
	ProcessorFragment: "FRAG",
	ProcessorVertex:   "VERT",
	ProcessorGeometry: "GEOM",
	ProcessorTessCtrl: "TESS_CTRL",
	ProcessorTessEval: "TESS_EVAL",
	ProcessorCompute:  "COMP",
}

// String returns the short header name used by the text format.
func (p Processor) String() string {
	if int(p) < len(processorNames) {
		return processorNames[p]
	}
	return "UNKNOWN"
}

// Valid reports whether p is a known processor.
func (p Processor) Valid() bool { return p < processorCount }

// ParseProcessor resolves a header name such as "FRAG".
func ParseProcessor(name string) (Processor, bool) {
	for i, n := range processorNames {
		if n == name {
			return Processor(i), true
		}
	}
	return 0, false
}

// File is a register file.
type File uint8

const (
	FileNull File = iota
	FileConstant
	FileInput
	FileOutput
	FileTemporary
	FileSampler
	FileAddress
	FileImmediate
	FileSystemValue
	FileSamplerView
	FileBuffer
	FileImage

	fileCount
)

var fileNames = [...]string{
	FileNull:        "NULL",
	FileConstant:    "CONST",
	FileInput:       "IN",
	FileOutput:      "OUT",
	FileTemporary:   "TEMP",
	FileSampler:     "SAMP",
	FileAddress:     "ADDR",
	FileImmediate:   "IMM",
	FileSystemValue: "SV",
	FileSamplerView: "SVIEW",
	FileBuffer:      "BUFFER",
	FileImage:       "IMAGE",
}

func (f File) String() string {
	if int(f) < len(fileNames) {
		return fileNames[f]
	}
	return "UNKNOWN"
}

// Valid reports whether f is a known register file.
func (f File) Valid() bool { return f < fileCount }

// ParseFile resolves a register file name such as "TEMP".
func ParseFile(name string) (File, bool) {
	for i, n := range fileNames {
		if n == name {
			return File(i), true
		}
	}
	return 0, false
}

// TokenKind tags the variant of a Token.
type TokenKind uint8

const (
	TokenDeclaration TokenKind = iota
	TokenImmediate
	TokenInstruction
	TokenProperty
)

func (k TokenKind) String() string {
	switch k {
	case TokenDeclaration:
		return "declaration"
	case TokenImmediate:
		return "immediate"
	case TokenInstruction:
		return "instruction"
	case TokenProperty:
		return "property"
	default:
		return "unknown"
	}
}

// Token is one record of a program: *Declaration, *Immediate,
// *Instruction or *Property.
type Token interface {
	Kind() TokenKind
}

// Semantic annotates a declaration with its pipeline meaning.
type Semantic struct {
	Name  SemanticName
	Index uint32
}

// Interpolation describes how a fragment input varies across a primitive.
type Interpolation struct {
	Mode     Interpolate
	Location InterpLocation
}

// SamplerViewInfo describes a SVIEW declaration.
type SamplerViewInfo struct {
	Target     TextureTarget
	ReturnType ReturnType
}

// Declaration establishes a range of registers in one file.
type Declaration struct {
	File  File
	First uint32
	Last  uint32

	// Dimension is set for 2D declarations such as CONST[1][0..3];
	// DimIndex then holds the outer index.
	Dimension bool
	DimIndex  uint32

	Semantic    *Semantic
	Interp      *Interpolation
	SamplerView *SamplerViewInfo
}

func (*Declaration) Kind() TokenKind { return TokenDeclaration }

// Contains reports whether index lies inside the declared range.
func (d *Declaration) Contains(index uint32) bool {
	return index >= d.First && index <= d.Last
}

// Clone returns a deep copy of d.
func (d *Declaration) Clone() *Declaration {
	c := *d
	if d.Semantic != nil {
		s := *d.Semantic
		c.Semantic = &s
	}
	if d.Interp != nil {
		i := *d.Interp
		c.Interp = &i
	}
	if d.SamplerView != nil {
		v := *d.SamplerView
		c.SamplerView = &v
	}
	return &c
}

// ImmediateType is the element type of an immediate vector.
type ImmediateType uint8

const (
	ImmFloat32 ImmediateType = iota
	ImmInt32
	ImmUint32
)

func (t ImmediateType) String() string {
	switch t {
	case ImmFloat32:
		return "FLT32"
	case ImmInt32:
		return "INT32"
	case ImmUint32:
		return "UINT32"
	default:
		return "UNKNOWN"
	}
}

// Immediate is a constant four-component vector. Values hold raw bits so
// that round trips are exact for every type.
type Immediate struct {
	Type   ImmediateType
	Values [4]uint32
}

func (*Immediate) Kind() TokenKind { return TokenImmediate }

// FloatImmediate returns a FLT32 immediate holding (x, y, z, w).
func FloatImmediate(x, y, z, w float32) *Immediate {
	return &Immediate{
		Type: ImmFloat32,
		Values: [4]uint32{
			math.Float32bits(x),
			math.Float32bits(y),
			math.Float32bits(z),
			math.Float32bits(w),
		},
	}
}

// Float returns channel c interpreted as a float32.
func (imm *Immediate) Float(c Component) float32 {
	return math.Float32frombits(imm.Values[c&3])
}

// Instruction is one operation with up to one destination and three sources.
type Instruction struct {
	Opcode   Opcode
	Saturate bool

	// Label is the target instruction number of branch opcodes. It is
	// only meaningful when Opcode.Info().Label is set.
	Label uint32

	// Texture is the sampling target of texture opcodes.
	Texture TextureTarget

	Dst []Dst
	Src []Src
}

func (*Instruction) Kind() TokenKind { return TokenInstruction }

// Clone returns a copy of inst whose operand slices are not shared.
func (inst *Instruction) Clone() *Instruction {
	c := *inst
	c.Dst = append([]Dst(nil), inst.Dst...)
	c.Src = append([]Src(nil), inst.Src...)
	for i := range c.Dst {
		c.Dst[i].Register = c.Dst[i].Register.clone()
	}
	for i := range c.Src {
		c.Src[i].Register = c.Src[i].Register.clone()
	}
	return &c
}

// Property is a whole-program key/value setting.
type Property struct {
	Name  PropertyName
	Value uint32
}

func (*Property) Kind() TokenKind { return TokenProperty }

// Indirect names the address register component added to an operand index.
type Indirect struct {
	File      File
	Index     uint32
	Component Component
}

// Register addresses one register, optionally 2D and/or indirectly indexed.
type Register struct {
	File  File
	Index int32

	Indirect *Indirect

	// Dimension selects the outer index of 2D files: the vertex of a
	// geometry input or the buffer of a constant.
	Dimension bool
	DimIndex  uint32
}

func (r Register) clone() Register {
	if r.Indirect != nil {
		ind := *r.Indirect
		r.Indirect = &ind
	}
	return r
}

// Is reports whether r is the plain register file[index].
func (r Register) Is(file File, index uint32) bool {
	return r.File == file && r.Indirect == nil && r.Index == int32(index)
}

// Src is a source operand.
type Src struct {
	Register
	Swizzle  Swizzle
	Negate   bool
	Absolute bool
}

// Dst is a destination operand.
type Dst struct {
	Register
	WriteMask WriteMask
}

// SrcReg returns file[index] read with the identity swizzle.
func SrcReg(file File, index uint32) Src {
	return Src{Register: Register{File: file, Index: int32(index)}, Swizzle: SwizzleXYZW}
}

// DstReg returns file[index] written through mask.
func DstReg(file File, index uint32, mask WriteMask) Dst {
	return Dst{Register: Register{File: file, Index: int32(index)}, WriteMask: mask}
}

// Swz returns s with the given component selection.
func (s Src) Swz(x, y, z, w Component) Src {
	s.Swizzle = NewSwizzle(x, y, z, w)
	return s
}

// Scalar returns s with component c replicated.
func (s Src) Scalar(c Component) Src {
	s.Swizzle = NewSwizzle(c, c, c, c)
	return s
}

// Neg returns s with its negate modifier toggled.
func (s Src) Neg() Src {
	s.Negate = !s.Negate
	return s
}

// Abs returns s with the absolute modifier set.
func (s Src) Abs() Src {
	s.Absolute = true
	return s
}

// AsSrc reads back the register a destination writes.
func (d Dst) AsSrc() Src {
	return Src{Register: d.Register, Swizzle: SwizzleXYZW}
}
