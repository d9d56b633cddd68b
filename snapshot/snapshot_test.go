// Package snapshot_test provides golden snapshot tests for every pass.
//
// For each program in testdata/in/, the test runs each pass that applies to
// the program's processor and compares the listing to the golden file
// stored in testdata/golden/{pass}/. Every listing must also reassemble to
// the stream it was printed from.
//
// To regenerate golden files after intentional changes:
//
//	UPDATE_GOLDEN=1 go test ./snapshot/...
package snapshot_test

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/gogpu/tgsi"
	"github.com/gogpu/tgsi/aapoint"
	"github.com/gogpu/tgsi/ir"
	"github.com/gogpu/tgsi/pstipple"
	"github.com/gogpu/tgsi/sprite"
	"github.com/gogpu/tgsi/stream"
)

// ---------------------------------------------------------------------------
// Test Runner
// ---------------------------------------------------------------------------

// programFile represents an input program loaded from disk.
type programFile struct {
	name   string // base name without extension (e.g., "color")
	source string
}

// passesFor lists the passes run on each processor.
var passesFor = map[ir.Processor][]tgsi.Options{
	ir.ProcessorFragment: {
		tgsi.DefaultOptions(),
		{Pass: tgsi.PassAAPoint, AAPoint: aapoint.DefaultOptions()},
		{Pass: tgsi.PassPStipple, PStipple: pstipple.DefaultOptions()},
	},
	ir.ProcessorGeometry: {
		tgsi.DefaultOptions(),
		{Pass: tgsi.PassSprite, Sprite: sprite.Options{CoordEnable: 1, AA: true}},
	},
}

// TestSnapshots is the main golden snapshot test.
func TestSnapshots(t *testing.T) {
	programs := loadInputPrograms(t, "testdata/in")
	if len(programs) == 0 {
		t.Fatal("no input programs found in testdata/in/")
	}

	for i := range programs {
		prog := &programs[i]
		t.Run(prog.name, func(t *testing.T) {
			in, err := tgsi.Assemble(prog.source)
			if err != nil {
				t.Fatalf("[%s] assemble failed: %v", prog.name, err)
			}
			passes := passesFor[in.Processor()]
			if len(passes) == 0 {
				t.Fatalf("[%s] no passes for %s", prog.name, in.Processor())
			}

			for _, opts := range passes {
				t.Run(string(opts.Pass), func(t *testing.T) {
					res, err := tgsi.Apply(in, opts)
					if err != nil {
						t.Fatalf("apply failed: %v", err)
					}
					listing := reassemble(t, res.Stream)
					compareGolden(t, filepath.Join("testdata", "golden", string(opts.Pass), prog.name+".tgsi"), listing)
				})
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Program Loading
// ---------------------------------------------------------------------------

// loadInputPrograms reads all .tgsi files from the given directory.
func loadInputPrograms(t *testing.T, dir string) []programFile {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read input directory %q: %v", dir, err)
	}

	var programs []programFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tgsi") {
			continue
		}
		data, readErr := os.ReadFile(filepath.Join(dir, entry.Name()))
		if readErr != nil {
			t.Fatalf("read program %q: %v", entry.Name(), readErr)
		}
		name := strings.TrimSuffix(entry.Name(), ".tgsi")
		programs = append(programs, programFile{name: name, source: string(data)})
	}

	// Sort for deterministic test order
	sort.Slice(programs, func(i, j int) bool {
		return programs[i].name < programs[j].name
	})

	return programs
}

// reassemble prints s and checks that the listing parses back to s.
func reassemble(t *testing.T, s *stream.Stream) string {
	t.Helper()

	listing, err := tgsi.Disassemble(s)
	if err != nil {
		t.Fatalf("disassemble failed: %v", err)
	}
	back, err := tgsi.Assemble(listing)
	if err != nil {
		t.Fatalf("listing does not assemble: %v\n%s", err, listing)
	}
	if !back.Equal(s) {
		t.Errorf("listing reassembles to a different stream:\n%s", listing)
	}
	return listing
}

// ---------------------------------------------------------------------------
// Golden File Comparison
// ---------------------------------------------------------------------------

// compareGolden compares actual output with the golden file at path.
// If UPDATE_GOLDEN is set, writes actual output as the new golden file.
func compareGolden(t *testing.T, path, actual string) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDEN") != "" {
		if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
			t.Fatalf("create golden dir: %v", mkErr)
		}
		if wErr := os.WriteFile(path, []byte(actual), 0o644); wErr != nil {
			t.Fatalf("write golden file: %v", wErr)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Fatalf("golden file missing: %s\nRun with UPDATE_GOLDEN=1 to create.\n\nActual output:\n%s", path, truncate(actual, 500))
	}
	if err != nil {
		t.Fatalf("read golden file %s: %v", path, err)
	}

	// Git may convert \n to \r\n on Windows checkout.
	expectedStr := strings.ReplaceAll(string(expected), "\r\n", "\n")
	actualStr := strings.ReplaceAll(actual, "\r\n", "\n")

	if expectedStr != actualStr {
		diff := diffStrings(expectedStr, actualStr)
		t.Errorf("output differs from golden %s:\n%s", path, diff)
	}
}

// diffStrings shows the first differing line with some context.
func diffStrings(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")
	maxLines := max(len(expectedLines), len(actualLines))

	line := func(lines []string, i int) string {
		if i < len(lines) {
			return lines[i]
		}
		return ""
	}

	firstDiff := -1
	for i := 0; i < maxLines; i++ {
		if line(expectedLines, i) != line(actualLines, i) {
			firstDiff = i
			break
		}
	}
	if firstDiff < 0 {
		return "(no difference found)"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "first difference at line %d:\n", firstDiff+1)
	fmt.Fprintf(&sb, "  expected lines: %d\n", len(expectedLines))
	fmt.Fprintf(&sb, "  actual lines:   %d\n\n", len(actualLines))

	const contextLines = 3
	start := max(firstDiff-contextLines, 0)
	end := min(firstDiff+contextLines+1, maxLines)
	for i := start; i < end; i++ {
		e, a := line(expectedLines, i), line(actualLines, i)
		prefix := " "
		if e != a {
			prefix = "!"
		}
		fmt.Fprintf(&sb, "%s %4d expected: %s\n", prefix, i+1, truncate(e, 120))
		if e != a {
			fmt.Fprintf(&sb, "%s %4d actual:   %s\n", prefix, i+1, truncate(a, 120))
		}
	}
	return sb.String()
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
