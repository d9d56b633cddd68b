// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package aapoint

import (
	"github.com/gogpu/tgsi/pipe"
	"github.com/gogpu/tgsi/stream"
	"github.com/gogpu/tgsi/transform"
)

// Stage decorates a shader factory so that fragment shaders can be swapped
// for their anti-aliased variant while points are drawn.
//
// Shaders returned by CreateFS must only be passed back to the same Stage.
type Stage struct {
	next pipe.ShaderFactory
	opts Options

	bound  *fragmentShader
	active bool
}

type fragmentShader struct {
	src *stream.Stream
	app pipe.Shader

	aa     pipe.Shader
	input  uint32
	failed bool
}

var _ pipe.ShaderFactory = (*Stage)(nil)

// NewStage returns a Stage forwarding to next.
func NewStage(next pipe.ShaderFactory, opts Options) *Stage {
	return &Stage{next: next, opts: opts}
}

// CreateFS creates the application shader and keeps s for building the
// anti-aliased variant on demand.
func (st *Stage) CreateFS(s *stream.Stream) (pipe.Shader, error) {
	app, err := st.next.CreateFS(s)
	if err != nil {
		return nil, err
	}
	return &fragmentShader{src: s, app: app}, nil
}

// BindFS binds sh, or its anti-aliased variant between Begin and End.
func (st *Stage) BindFS(sh pipe.Shader) {
	fs, _ := sh.(*fragmentShader)
	st.bound = fs
	if fs == nil {
		st.next.BindFS(nil)
		return
	}
	if st.active && st.prepare(fs) {
		st.next.BindFS(fs.aa)
		return
	}
	st.next.BindFS(fs.app)
}

// DeleteFS deletes the application shader and its variant, if built.
func (st *Stage) DeleteFS(sh pipe.Shader) {
	fs, ok := sh.(*fragmentShader)
	if !ok {
		return
	}
	if st.bound == fs {
		st.bound = nil
	}
	if fs.aa != nil {
		st.next.DeleteFS(fs.aa)
	}
	st.next.DeleteFS(fs.app)
}

// Begin switches the bound shader to its anti-aliased variant. It reports
// the input the point coordinate must be written to; ok is false when no
// variant is available and the application shader stays bound.
func (st *Stage) Begin() (input uint32, ok bool) {
	st.active = true
	fs := st.bound
	if fs == nil || !st.prepare(fs) {
		return 0, false
	}
	st.next.BindFS(fs.aa)
	return fs.input, true
}

// End rebinds the application shader.
func (st *Stage) End() {
	st.active = false
	if st.bound != nil {
		st.next.BindFS(st.bound.app)
	}
}

// prepare builds the variant of fs once. A failed build is remembered so
// the transform is not retried on every draw.
func (st *Stage) prepare(fs *fragmentShader) bool {
	if fs.aa != nil {
		return true
	}
	if fs.failed {
		return false
	}
	res, err := Transform(fs.src, st.opts)
	if err == nil {
		fs.aa, err = st.next.CreateFS(res.Stream)
		fs.input = res.InputIndex
	}
	if err != nil {
		fs.failed = true
		transform.Logger().Warn("aapoint: drawing aliased points", "err", err)
		return false
	}
	return true
}
