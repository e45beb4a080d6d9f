package machox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blacktop/go-macho/types"

	"unalias/internal/disasm"
)

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()
	junk := filepath.Join(dir, "junk")
	if err := os.WriteFile(junk, []byte("definitely not a mach-o file"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{filepath.Join(dir, "missing"), junk} {
		if im, err := Open(path, ""); err == nil {
			im.Close()
			t.Errorf("Open(%s) succeeded", path)
		}
	}
}

func TestArchOf(t *testing.T) {
	tests := []struct {
		cpu  types.CPU
		want disasm.Arch
	}{
		{types.CPUArm64, disasm.ArchAArch64},
		{types.CPUAmd64, disasm.ArchX86_64},
		{types.CPUArm, disasm.ArchUnknown},
	}
	for _, tt := range tests {
		if got := archOf(tt.cpu); got != tt.want {
			t.Errorf("archOf(%v) = %v, want %v", tt.cpu, got, tt.want)
		}
	}
}

func TestPointerTarget(t *testing.T) {
	const base = 0x100000000
	tests := []struct {
		ptr, want uint64
	}{
		{0, 0},
		{0x8010, 0x100008010},
		{0x100008010, 0x100008010},
	}
	for _, tt := range tests {
		if got := pointerTarget(tt.ptr, base); got != tt.want {
			t.Errorf("pointerTarget(%#x) = %#x, want %#x", tt.ptr, got, tt.want)
		}
	}
}

func TestDemangle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"_objc_msgSend$count", "_objc_msgSend$count"},
		{"_ZN3foo3barEv", "foo::bar()"},
	}
	for _, tt := range tests {
		if got := Demangle(tt.in); got != tt.want {
			t.Errorf("Demangle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	before, hitsBefore := DemangleStats()
	Demangle("_ZN3foo3barEv")
	after, hitsAfter := DemangleStats()
	if after != before || hitsAfter != hitsBefore+1 {
		t.Errorf("stats went from (%d, %d) to (%d, %d)", before, hitsBefore, after, hitsAfter)
	}
}
