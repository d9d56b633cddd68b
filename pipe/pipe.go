// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package pipe describes the driver objects the passes need but do not
// implement: a fragment shader factory and texture/sampler provisioning.
//
// Drivers implement these interfaces; the passes only call them. Descriptor
// fields use the WebGPU vocabulary of gputypes.
package pipe

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/tgsi/stream"
)

// Shader is a driver handle to a compiled shader.
type Shader any

// ShaderFactory creates, binds and deletes fragment shaders.
type ShaderFactory interface {
	CreateFS(s *stream.Stream) (Shader, error)
	BindFS(sh Shader)
	DeleteFS(sh Shader)
}

// Texture is a driver handle to a texture.
type Texture any

// Sampler is a driver handle to a sampler state.
type Sampler any

// ResourceFactory provisions textures and samplers.
type ResourceFactory interface {
	// CreateTexture creates a texture and uploads data laid out as
	// described by layout into its first mip level.
	CreateTexture(desc *TextureDescriptor, data []byte, layout gputypes.TextureDataLayout) (Texture, error)
	CreateSampler(desc *SamplerDescriptor) (Sampler, error)
}

// TextureDescriptor describes a texture to create.
type TextureDescriptor struct {
	Label         string
	Size          gputypes.Extent3D
	MipLevelCount uint32
	SampleCount   uint32
	Dimension     gputypes.TextureDimension
	Format        gputypes.TextureFormat
	Usage         gputypes.TextureUsage
}

// SamplerDescriptor describes a sampler state to create.
type SamplerDescriptor struct {
	Label        string
	AddressModeU gputypes.AddressMode
	AddressModeV gputypes.AddressMode
	AddressModeW gputypes.AddressMode
	MagFilter    gputypes.FilterMode
	MinFilter    gputypes.FilterMode
	MipmapFilter gputypes.FilterMode
}
