// Package ir defines the in-memory token model of a shader program.
//
// A program is a header (its processor) followed by an ordered sequence of
// tokens. Declarations, immediates and properties always precede the first
// instruction. Tokens are plain structs; the stream package encodes them
// into words and back.
//
// Tokens reference registers by (file, index). The invariants below are not
// checked by this package but every transform in the module preserves them:
//
//   - a register is declared before any instruction reads or writes it;
//   - immediates are numbered in declaration order starting at zero;
//   - the main body ends in exactly one END and its block nesting returns
//     to zero by then.
package ir
