// tgsidis - token stream disassembler
// Prints a binary stream in the text form tgsix assembles.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gogpu/tgsi/ir"
	"github.com/gogpu/tgsi/stream"
	"github.com/gogpu/tgsi/text"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: tgsidis [-x] <file.bin>")
		return
	}
	hex := false
	path := os.Args[1]
	if path == "-x" && len(os.Args) > 2 {
		hex, path = true, os.Args[2]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	s, err := stream.FromBytes(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("; %s program\n", s.Processor())
	fmt.Printf("; Words: %d (header %d, body %d)\n", len(s.Words()), stream.HeaderSize, s.Len())
	fmt.Println()

	if hex {
		if err := dumpWords(s); err != nil {
			fmt.Fprintf(os.Stderr, "; ERROR: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if err := text.Fdump(os.Stdout, s); err != nil {
		fmt.Fprintf(os.Stderr, "; ERROR: %v\n", err)
		os.Exit(1)
	}
}

// dumpWords prints every token's raw words next to its offset.
func dumpWords(s *stream.Stream) error {
	words := s.Words()
	p := s.Parser()
	for !p.End() {
		start := p.Offset()
		tok, err := p.Next()
		if err != nil {
			return err
		}
		var sb strings.Builder
		for _, w := range words[start:p.Offset()] {
			fmt.Fprintf(&sb, " %08X", w)
		}
		fmt.Printf("%04X %-12s%s\n", start, kindName(tok), sb.String())
	}
	return nil
}

func kindName(tok ir.Token) string {
	switch t := tok.(type) {
	case *ir.Declaration:
		return "DCL " + t.File.String()
	case *ir.Immediate:
		return "IMM"
	case *ir.Property:
		return "PROPERTY"
	case *ir.Instruction:
		return t.Opcode.String()
	}
	return "?"
}
