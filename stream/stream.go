// Package stream encodes shader tokens into a flat sequence of 32-bit words
// and decodes them back.
//
// A stream is a two-word header followed by the token body. Streams are
// immutable once built: transforms read one stream and build a new one.
package stream

import (
	"slices"

	"honnef.co/go/safeish"

	"github.com/gogpu/tgsi/ir"
)

// Stream is a complete, validated program in word form.
type Stream struct {
	words []uint32
	proc  ir.Processor
}

// New wraps words after validating the header. The slice is retained, not
// copied; callers must not modify it afterwards.
func New(words []uint32) (*Stream, error) {
	proc, err := checkHeader("stream", words)
	if err != nil {
		return nil, err
	}
	return &Stream{words: words, proc: proc}, nil
}

// FromBytes copies a native byte order encoding into a new stream.
func FromBytes(data []byte) (*Stream, error) {
	if len(data)%4 != 0 {
		return nil, ir.Errorf(ir.ErrMalformedStream, "stream", "%d bytes is not a whole number of words", len(data))
	}
	words := make([]uint32, len(data)/4)
	copy(safeish.SliceCast[[]byte](words), data)
	return New(words)
}

// Encode builds a stream holding tokens in order.
func Encode(proc ir.Processor, tokens []ir.Token) (*Stream, error) {
	if !proc.Valid() {
		return nil, ir.Errorf(ir.ErrMalformedStream, "encode", "invalid processor %d", proc)
	}
	size := HeaderSize
	for _, tok := range tokens {
		if err := Check(tok); err != nil {
			return nil, err
		}
		size += Size(tok)
	}
	if size > MaxWords {
		return nil, ir.Errorf(ir.ErrCapacityExceeded, "encode", "%d words exceed the %d word limit", size, MaxWords)
	}
	b := NewBuilder(size, proc)
	for _, tok := range tokens {
		if _, ok := b.TryAppend(tok); !ok {
			b.Abort()
			return nil, ir.Errorf(ir.ErrCapacityExceeded, "encode", "pre-sized buffer overflowed")
		}
	}
	return b.Finalize(), nil
}

// Processor returns the program's processor.
func (s *Stream) Processor() ir.Processor { return s.proc }

// Words returns the encoded program, header included. The slice must not
// be modified.
func (s *Stream) Words() []uint32 { return s.words }

// Bytes returns the words viewed as native byte order bytes, without
// copying. The slice must not be modified.
func (s *Stream) Bytes() []byte { return safeish.SliceCast[[]byte](s.words) }

// Len returns the number of body words.
func (s *Stream) Len() int { return len(s.words) - HeaderSize }

// Parser returns a cursor positioned on the first token.
func (s *Stream) Parser() *Parser {
	return &Parser{words: s.words, pos: HeaderSize, proc: s.proc}
}

// Tokens decodes every token of the stream.
func (s *Stream) Tokens() ([]ir.Token, error) {
	p := s.Parser()
	var tokens []ir.Token
	for !p.End() {
		tok, err := p.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// Equal reports whether s and other encode the same program.
func (s *Stream) Equal(other *Stream) bool {
	if s == nil || other == nil {
		return s == other
	}
	return slices.Equal(s.words, other.words)
}
