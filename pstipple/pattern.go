package pstipple

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/tgsi/ir"
	"github.com/gogpu/tgsi/pipe"
)

// PatternSize is the width and height of the stipple pattern in pixels.
const PatternSize = 32

const bytesPerTexel = 4

// Pattern is a 32x32 stipple bitmap. Bit 31-x of row y is set where pixel
// (x, y) is drawn.
type Pattern [PatternSize]uint32

// Drawn reports whether the pattern keeps window pixel (x, y). The pattern
// repeats across the window.
func (p *Pattern) Drawn(x, y int) bool {
	x, y = wrap(x), wrap(y)
	return p[y]&(1<<(PatternSize-1-x)) != 0
}

func wrap(v int) int {
	v %= PatternSize
	if v < 0 {
		v += PatternSize
	}
	return v
}

// Texel values of the pattern texture. Alpha above zero makes KILL_IF
// discard the fragment.
const (
	texelKeep    = 0
	texelDiscard = 255
)

// NewPatternTexture returns the texture descriptor and RGBA8 texel data for
// p, with every channel of a texel holding the same value.
func NewPatternTexture(p *Pattern) (*pipe.TextureDescriptor, []byte, gputypes.TextureDataLayout) {
	desc := &pipe.TextureDescriptor{
		Label: "pstipple pattern",
		Size: gputypes.Extent3D{
			Width:              PatternSize,
			Height:             PatternSize,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	}

	data := make([]byte, PatternSize*PatternSize*bytesPerTexel)
	for y := range PatternSize {
		for x := range PatternSize {
			v := byte(texelDiscard)
			if p.Drawn(x, y) {
				v = texelKeep
			}
			off := (y*PatternSize + x) * bytesPerTexel
			data[off], data[off+1], data[off+2], data[off+3] = v, v, v, v
		}
	}

	layout := gputypes.TextureDataLayout{
		BytesPerRow:  PatternSize * bytesPerTexel,
		RowsPerImage: PatternSize,
	}
	return desc, data, layout
}

// SamplerDescriptor returns the sampler state the pattern is read with:
// repeat addressing and nearest filtering.
func SamplerDescriptor() *pipe.SamplerDescriptor {
	return &pipe.SamplerDescriptor{
		Label:        "pstipple sampler",
		AddressModeU: gputypes.AddressModeRepeat,
		AddressModeV: gputypes.AddressModeRepeat,
		AddressModeW: gputypes.AddressModeRepeat,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	}
}

// Resources are the driver objects the stippled program samples.
type Resources struct {
	Texture pipe.Texture
	Sampler pipe.Sampler
}

// CreateResources creates the pattern texture and its sampler.
func CreateResources(f pipe.ResourceFactory, p *Pattern) (*Resources, error) {
	desc, data, layout := NewPatternTexture(p)
	tex, err := f.CreateTexture(desc, data, layout)
	if err != nil {
		return nil, ir.Wrap(ir.ErrAllocationFailure, "pstipple", err)
	}
	smp, err := f.CreateSampler(SamplerDescriptor())
	if err != nil {
		return nil, ir.Wrap(ir.ErrAllocationFailure, "pstipple", err)
	}
	return &Resources{Texture: tex, Sampler: smp}, nil
}
