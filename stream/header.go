package stream

import "github.com/gogpu/tgsi/ir"

// Header layout. Word 0 carries HeaderSize:8 and BodySize:24, word 1
// carries Processor:4.
const (
	// HeaderSize is the number of header words preceding the body.
	HeaderSize = 2

	// MaxBodySize is the largest body a header can describe.
	MaxBodySize = 1<<24 - 1

	// MaxWords is the largest stream, header included.
	MaxWords = HeaderSize + MaxBodySize
)

func makeHeader(bodySize int) uint32 {
	return HeaderSize | uint32(bodySize)<<8
}

func headerSizes(w uint32) (headerSize, bodySize int) {
	return int(w & 0xFF), int(w >> 8)
}

func makeProcessor(p ir.Processor) uint32 {
	return uint32(p) & 0xF
}

// checkHeader validates the header of words and returns the processor.
func checkHeader(op string, words []uint32) (ir.Processor, error) {
	if len(words) < HeaderSize {
		return 0, ir.Errorf(ir.ErrMalformedStream, op, "stream has %d words, header needs %d", len(words), HeaderSize)
	}
	hs, body := headerSizes(words[0])
	if hs != HeaderSize {
		return 0, ir.Errorf(ir.ErrMalformedStream, op, "header size %d, expected %d", hs, HeaderSize)
	}
	if body != len(words)-HeaderSize {
		return 0, ir.Errorf(ir.ErrMalformedStream, op, "header body size %d disagrees with %d body words", body, len(words)-HeaderSize)
	}
	proc := ir.Processor(words[1] & 0xF)
	if words[1]>>4 != 0 || !proc.Valid() {
		return 0, ir.Errorf(ir.ErrMalformedStream, op, "invalid processor word %#x", words[1])
	}
	return proc, nil
}
