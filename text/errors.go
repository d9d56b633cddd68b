package text

import (
	"fmt"
	"strings"
)

// Position is a 1-based line and column in the source.
type Position struct {
	Line   int
	Column int
}

// SourceError is an assembly error with its source location.
type SourceError struct {
	Message string
	Pos     Position
	Source  string // Original source, for context display
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Pos.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// FormatWithContext returns the message followed by the offending line and
// a caret under the error column.
func (e *SourceError) FormatWithContext() string {
	if e.Source == "" || e.Pos.Line == 0 {
		return e.Error()
	}
	lines := strings.Split(e.Source, "\n")
	if e.Pos.Line > len(lines) {
		return e.Error()
	}
	line := lines[e.Pos.Line-1]
	col := min(max(e.Pos.Column, 1), len(line)+1)

	var sb strings.Builder
	fmt.Fprintf(&sb, "error: %s\n", e.Message)
	fmt.Fprintf(&sb, "  --> line %d:%d\n", e.Pos.Line, col)
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", e.Pos.Line, line)
	fmt.Fprintf(&sb, "   | %s^\n", strings.Repeat(" ", col-1))
	return sb.String()
}

func newErrorf(pos Position, source, format string, args ...any) *SourceError {
	return &SourceError{
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
		Source:  source,
	}
}
