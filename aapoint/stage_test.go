package aapoint

import (
	"testing"

	"github.com/gogpu/tgsi/pipe"
	"github.com/gogpu/tgsi/stream"
)

type fakeShader struct {
	id  int
	src *stream.Stream
}

type fakeFactory struct {
	created []*fakeShader
	bound   pipe.Shader
	deleted []pipe.Shader
}

func (f *fakeFactory) CreateFS(s *stream.Stream) (pipe.Shader, error) {
	sh := &fakeShader{id: len(f.created), src: s}
	f.created = append(f.created, sh)
	return sh, nil
}

func (f *fakeFactory) BindFS(sh pipe.Shader) { f.bound = sh }

func (f *fakeFactory) DeleteFS(sh pipe.Shader) { f.deleted = append(f.deleted, sh) }

func TestStageSwapsShaders(t *testing.T) {
	f := &fakeFactory{}
	st := NewStage(f, DefaultOptions())

	src := assemble(t, colorPassThrough)
	sh, err := st.CreateFS(src)
	if err != nil {
		t.Fatalf("CreateFS failed: %v", err)
	}
	if len(f.created) != 1 {
		t.Fatalf("Expected only the application shader to be created, got %d", len(f.created))
	}
	app := f.created[0]

	st.BindFS(sh)
	if f.bound != app {
		t.Fatalf("Expected application shader bound")
	}

	input, ok := st.Begin()
	if !ok {
		t.Fatal("Expected the anti-aliased variant to be available")
	}
	if input != 1 {
		t.Errorf("Expected coordinate input 1, got %d", input)
	}
	if len(f.created) != 2 {
		t.Fatalf("Expected the variant to be created, got %d shaders", len(f.created))
	}
	aa := f.created[1]
	if f.bound != aa {
		t.Errorf("Expected variant bound after Begin")
	}
	if aa.src.Equal(src) {
		t.Error("Expected the variant to be built from a transformed stream")
	}

	// Rebinding while active keeps the variant.
	st.BindFS(sh)
	if f.bound != aa {
		t.Errorf("Expected variant bound while active")
	}

	st.End()
	if f.bound != app {
		t.Errorf("Expected application shader bound after End")
	}

	// The variant is built once.
	st.Begin()
	st.End()
	if len(f.created) != 2 {
		t.Errorf("Expected the variant to be reused, got %d shaders", len(f.created))
	}

	st.DeleteFS(sh)
	if len(f.deleted) != 2 {
		t.Fatalf("Expected both shaders deleted, got %d", len(f.deleted))
	}
}

func TestStageFallsBack(t *testing.T) {
	f := &fakeFactory{}
	st := NewStage(f, DefaultOptions())

	sh, err := st.CreateFS(assemble(t, "FRAG\nDCL OUT[0], COLOR\nDCL TEMP[0..31]\nEND\n"))
	if err != nil {
		t.Fatalf("CreateFS failed: %v", err)
	}
	st.BindFS(sh)
	app := f.bound

	if _, ok := st.Begin(); ok {
		t.Error("Expected Begin to report no variant")
	}
	if f.bound != app {
		t.Errorf("Expected application shader to stay bound")
	}
	st.End()
	if _, ok := st.Begin(); ok {
		t.Error("Expected the failure to be remembered")
	}
	if len(f.created) != 1 {
		t.Errorf("Expected no variant created, got %d shaders", len(f.created))
	}

	st.DeleteFS(sh)
	if len(f.deleted) != 1 {
		t.Errorf("Expected only the application shader deleted, got %d", len(f.deleted))
	}
}
