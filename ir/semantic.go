package ir

// SemanticName is the pipeline meaning attached to a declaration.
type SemanticName uint8

const (
	SemanticPosition SemanticName = iota
	SemanticColor
	SemanticBColor
	SemanticFog
	SemanticPSize
	SemanticGeneric
	SemanticNormal
	SemanticFace
	SemanticEdgeFlag
	SemanticPrimID
	SemanticInstanceID
	SemanticVertexID
	SemanticStencil
	SemanticClipDist
	SemanticClipVertex
	SemanticTexcoord
	SemanticPCoord
	SemanticViewportIndex
	SemanticLayer
	SemanticSampleID
	SemanticSamplePos
	SemanticSampleMask
	SemanticInvocationID
)

var semanticNames = [...]string{
	SemanticPosition:      "POSITION",
	SemanticColor:         "COLOR",
	SemanticBColor:        "BCOLOR",
	SemanticFog:           "FOG",
	SemanticPSize:         "PSIZE",
	SemanticGeneric:       "GENERIC",
	SemanticNormal:        "NORMAL",
	SemanticFace:          "FACE",
	SemanticEdgeFlag:      "EDGEFLAG",
	SemanticPrimID:        "PRIM_ID",
	SemanticInstanceID:    "INSTANCEID",
	SemanticVertexID:      "VERTEXID",
	SemanticStencil:       "STENCIL",
	SemanticClipDist:      "CLIPDIST",
	SemanticClipVertex:    "CLIPVERTEX",
	SemanticTexcoord:      "TEXCOORD",
	SemanticPCoord:        "PCOORD",
	SemanticViewportIndex: "VIEWPORT_INDEX",
	SemanticLayer:         "LAYER",
	SemanticSampleID:      "SAMPLEID",
	SemanticSamplePos:     "SAMPLEPOS",
	SemanticSampleMask:    "SAMPLEMASK",
	SemanticInvocationID:  "INVOCATIONID",
}

func (s SemanticName) String() string { return lookupName(semanticNames[:], int(s)) }

// ParseSemanticName resolves a semantic such as "GENERIC".
func ParseSemanticName(name string) (SemanticName, bool) {
	i, ok := findName(semanticNames[:], name)
	return SemanticName(i), ok
}

// Interpolate is the interpolation mode of a fragment input.
type Interpolate uint8

const (
	InterpConstant Interpolate = iota
	InterpLinear
	InterpPerspective
	InterpColor
)

var interpNames = [...]string{
	InterpConstant:    "CONSTANT",
	InterpLinear:      "LINEAR",
	InterpPerspective: "PERSPECTIVE",
	InterpColor:       "COLOR",
}

func (i Interpolate) String() string { return lookupName(interpNames[:], int(i)) }

// ParseInterpolate resolves an interpolation mode name.
func ParseInterpolate(name string) (Interpolate, bool) {
	i, ok := findName(interpNames[:], name)
	return Interpolate(i), ok
}

// InterpLocation is where within the pixel an input is evaluated.
type InterpLocation uint8

const (
	LocationCenter InterpLocation = iota
	LocationCentroid
	LocationSample
)

var locationNames = [...]string{
	LocationCenter:   "CENTER",
	LocationCentroid: "CENTROID",
	LocationSample:   "SAMPLE",
}

func (l InterpLocation) String() string { return lookupName(locationNames[:], int(l)) }

// ParseInterpLocation resolves an interpolation location name.
func ParseInterpLocation(name string) (InterpLocation, bool) {
	i, ok := findName(locationNames[:], name)
	return InterpLocation(i), ok
}

// TextureTarget is the dimensionality a texture is sampled with.
type TextureTarget uint8

const (
	TextureUnknown TextureTarget = iota
	TextureBuffer
	Texture1D
	Texture2D
	Texture3D
	TextureCube
	TextureRect
	TextureShadow1D
	TextureShadow2D
	TextureShadowRect
	Texture1DArray
	Texture2DArray
	Texture2DMSAA
)

var textureNames = [...]string{
	TextureUnknown:    "UNKNOWN",
	TextureBuffer:     "BUFFER",
	Texture1D:         "1D",
	Texture2D:         "2D",
	Texture3D:         "3D",
	TextureCube:       "CUBE",
	TextureRect:       "RECT",
	TextureShadow1D:   "SHADOW1D",
	TextureShadow2D:   "SHADOW2D",
	TextureShadowRect: "SHADOWRECT",
	Texture1DArray:    "1D_ARRAY",
	Texture2DArray:    "2D_ARRAY",
	Texture2DMSAA:     "2D_MSAA",
}

func (t TextureTarget) String() string { return lookupName(textureNames[:], int(t)) }

// ParseTextureTarget resolves a texture target name such as "2D".
func ParseTextureTarget(name string) (TextureTarget, bool) {
	i, ok := findName(textureNames[:], name)
	return TextureTarget(i), ok
}

// ReturnType is the component type a sampler view returns.
type ReturnType uint8

const (
	ReturnFloat ReturnType = iota
	ReturnUnorm
	ReturnSnorm
	ReturnSint
	ReturnUint
)

var returnNames = [...]string{
	ReturnFloat: "FLOAT",
	ReturnUnorm: "UNORM",
	ReturnSnorm: "SNORM",
	ReturnSint:  "SINT",
	ReturnUint:  "UINT",
}

func (r ReturnType) String() string { return lookupName(returnNames[:], int(r)) }

// ParseReturnType resolves a sampler view return type name.
func ParseReturnType(name string) (ReturnType, bool) {
	i, ok := findName(returnNames[:], name)
	return ReturnType(i), ok
}

// PropertyName is the key of a Property token.
type PropertyName uint8

const (
	PropGSInputPrimitive PropertyName = iota
	PropGSOutputPrimitive
	PropGSMaxOutputVertices
	PropGSInvocations
	PropFSCoordOrigin
	PropFSCoordPixelCenter
	PropFSColor0WritesAllCbufs
	PropFSDepthLayout
	PropVSProhibitUCPs
	PropVSWindowSpacePosition
	PropNumClipDistEnabled
	PropNextShader
)

var propertyNames = [...]string{
	PropGSInputPrimitive:       "GS_INPUT_PRIMITIVE",
	PropGSOutputPrimitive:      "GS_OUTPUT_PRIMITIVE",
	PropGSMaxOutputVertices:    "GS_MAX_OUTPUT_VERTICES",
	PropGSInvocations:          "GS_INVOCATIONS",
	PropFSCoordOrigin:          "FS_COORD_ORIGIN",
	PropFSCoordPixelCenter:     "FS_COORD_PIXEL_CENTER",
	PropFSColor0WritesAllCbufs: "FS_COLOR0_WRITES_ALL_CBUFS",
	PropFSDepthLayout:          "FS_DEPTH_LAYOUT",
	PropVSProhibitUCPs:         "VS_PROHIBIT_UCPS",
	PropVSWindowSpacePosition:  "VS_WINDOW_SPACE_POSITION",
	PropNumClipDistEnabled:     "NUM_CLIPDIST_ENABLED",
	PropNextShader:             "NEXT_SHADER",
}

func (p PropertyName) String() string { return lookupName(propertyNames[:], int(p)) }

// Valid reports whether p is a known property.
func (p PropertyName) Valid() bool { return int(p) < len(propertyNames) }

// ParsePropertyName resolves a property key.
func ParsePropertyName(name string) (PropertyName, bool) {
	i, ok := findName(propertyNames[:], name)
	return PropertyName(i), ok
}

// ValueNames returns the symbolic names of the property's values, or nil
// when the value is a plain number.
func (p PropertyName) ValueNames() []string {
	switch p {
	case PropGSInputPrimitive, PropGSOutputPrimitive:
		return primNames[:]
	case PropFSCoordOrigin:
		return originNames[:]
	case PropFSCoordPixelCenter:
		return pixelCenterNames[:]
	}
	return nil
}

// PrimType is a primitive topology.
type PrimType uint32

const (
	PrimPoints PrimType = iota
	PrimLines
	PrimLineLoop
	PrimLineStrip
	PrimTriangles
	PrimTriangleStrip
	PrimTriangleFan
	PrimLinesAdjacency
	PrimLineStripAdjacency
	PrimTrianglesAdjacency
	PrimTriangleStripAdjacency
)

var primNames = [...]string{
	PrimPoints:                 "POINTS",
	PrimLines:                  "LINES",
	PrimLineLoop:               "LINE_LOOP",
	PrimLineStrip:              "LINE_STRIP",
	PrimTriangles:              "TRIANGLES",
	PrimTriangleStrip:          "TRIANGLE_STRIP",
	PrimTriangleFan:            "TRIANGLE_FAN",
	PrimLinesAdjacency:         "LINES_ADJACENCY",
	PrimLineStripAdjacency:     "LINE_STRIP_ADJACENCY",
	PrimTrianglesAdjacency:     "TRIANGLES_ADJACENCY",
	PrimTriangleStripAdjacency: "TRIANGLE_STRIP_ADJACENCY",
}

func (p PrimType) String() string { return lookupName(primNames[:], int(p)) }

// Fragment coordinate origins for PropFSCoordOrigin.
const (
	OriginUpperLeft uint32 = iota
	OriginLowerLeft
)

var originNames = [...]string{"UPPER_LEFT", "LOWER_LEFT"}

var pixelCenterNames = [...]string{"HALF_INTEGER", "INTEGER"}

func lookupName(names []string, i int) string {
	if i >= 0 && i < len(names) && names[i] != "" {
		return names[i]
	}
	return "UNKNOWN"
}

func findName(names []string, name string) (int, bool) {
	for i, n := range names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}
