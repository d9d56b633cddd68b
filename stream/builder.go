// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package stream

import (
	"github.com/gogpu/tgsi/ir"
)

// Builder accumulates tokens into a growable word buffer while keeping the
// header's body size in step with what has been written.
//
// TryAppend never grows the buffer: when a token does not fit it restores
// the header and cursor to their state before the attempt and reports
// failure, so the caller can Grow and retry the same token.
type Builder struct {
	words []uint32
	n     int
	limit int
	enc   encoder
	done  bool
}

// NewBuilder allocates a buffer of max(hint, HeaderSize) words holding an
// empty program for proc.
func NewBuilder(hint int, proc ir.Processor) *Builder {
	size := max(hint, HeaderSize)
	if size > MaxWords {
		size = MaxWords
	}
	b := &Builder{
		words: make([]uint32, size),
		n:     HeaderSize,
		limit: MaxWords,
	}
	b.words[0] = makeHeader(0)
	b.words[1] = makeProcessor(proc)
	return b
}

// SetLimit caps the number of words the buffer may grow to. Limits above
// MaxWords or below the current capacity are clamped.
func (b *Builder) SetLimit(words int) {
	b.limit = min(max(words, len(b.words)), MaxWords)
}

// Cap returns the current buffer capacity in words.
func (b *Builder) Cap() int { return len(b.words) }

// Len returns the number of words written, header included.
func (b *Builder) Len() int { return b.n }

// TryAppend serializes tok at the cursor. It returns the number of words
// written, or ok == false when the buffer ran out of space, in which case
// nothing observable has changed. tok must have passed Check.
func (b *Builder) TryAppend(tok ir.Token) (written int, ok bool) {
	b.mustBeOpen()
	b.enc.encode(tok)

	header, start := b.words[0], b.n
	for _, w := range b.enc.words {
		if b.n >= len(b.words) {
			b.words[0], b.n = header, start
			return 0, false
		}
		b.words[b.n] = w
		b.n++
		b.words[0] = makeHeader(b.n - HeaderSize)
	}
	return b.n - start, true
}

// Grow doubles the buffer capacity, copying the words written so far.
// It fails with CapacityExceeded once the limit has been reached.
func (b *Builder) Grow() error {
	b.mustBeOpen()
	cur := len(b.words)
	if cur >= b.limit {
		return ir.Errorf(ir.ErrCapacityExceeded, "grow", "buffer of %d words cannot grow past %d", cur, b.limit)
	}
	next := cur * 2
	if next < cur || next > b.limit {
		next = b.limit
	}
	words := make([]uint32, next)
	copy(words, b.words[:b.n])
	b.words = words
	return nil
}

// SetWord overwrites an already written body word. It is used to patch
// values, such as branch labels, that are only known after later tokens
// have been appended.
func (b *Builder) SetWord(offset int, w uint32) {
	b.mustBeOpen()
	if offset < HeaderSize || offset >= b.n {
		panic("stream: SetWord offset outside the written body")
	}
	b.words[offset] = w
}

// Finalize returns the completed stream. The builder must not be used
// afterwards.
func (b *Builder) Finalize() *Stream {
	b.mustBeOpen()
	b.done = true
	words := b.words[:b.n:b.n]
	b.words = nil
	return &Stream{words: words, proc: ir.Processor(words[1] & 0xF)}
}

// Abort releases the buffer. The builder must not be used afterwards.
func (b *Builder) Abort() {
	b.done = true
	b.words = nil
}

func (b *Builder) mustBeOpen() {
	if b.done {
		panic("stream: builder used after Finalize or Abort")
	}
}
