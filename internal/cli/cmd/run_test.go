package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchelljustin/nais-sub000/internal/isa"
)

func TestBinaryRoundTrip(t *testing.T) {
	words := []isa.Word{0, 1, -1, 0x7fffffff, -0x7fffffff}

	path := filepath.Join(t.TempDir(), "prog.bin")

	if err := writeBinary(path, words); err != nil {
		t.Fatalf("writeBinary() = %v, want nil", err)
	}

	got, err := readBinary(path)
	if err != nil {
		t.Fatalf("readBinary() = %v, want nil", err)
	}

	if len(got) != len(words) {
		t.Fatalf("readBinary() = %d words, want %d", len(got), len(words))
	}

	for i, want := range words {
		if got[i] != want {
			t.Errorf("word[%d] = %d, want %d", i, got[i], want)
		}
	}
}

func TestReadBinary_TruncatedLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")

	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("WriteFile() = %v, want nil", err)
	}

	if _, err := readBinary(path); err == nil {
		t.Fatal("readBinary() = nil, want an error for a non-multiple-of-4 length")
	}
}

func TestRunner_LoadOrAssemble_UnsupportedExtension(t *testing.T) {
	r := &runner{}

	path := filepath.Join(t.TempDir(), "prog.txt")
	if err := os.WriteFile(path, []byte("entry:\n\tpush 1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() = %v, want nil", err)
	}

	if _, _, err := r.loadOrAssemble(path, nil); err == nil {
		t.Fatal("loadOrAssemble() = nil, want an unsupported-extension error")
	}
}
