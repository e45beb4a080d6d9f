package disasm

import (
	"encoding/binary"
	"reflect"
	"testing"
)

func word(w uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, w)
	return b
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		va     uint64
		word   uint32
		op     string
		args   []string
		flow   Flow
		target uint64
	}{
		{
			name: "adrp resolves page",
			va:   0x100004000,
			word: 0x90000021, // adrp x1, +4 pages
			op:   "adrp",
			args: []string{"x1", "#0x100008000"},
		},
		{
			name: "adrp from mid page",
			va:   0x100004abc,
			word: 0x90000021,
			op:   "adrp",
			args: []string{"x1", "#0x100008000"},
		},
		{
			name: "ldr with offset",
			va:   0x100004004,
			word: 0xf9401021, // ldr x1, [x1, #0x20]
			op:   "ldr",
			args: []string{"x1", "[x1, #0x20]"},
		},
		{
			name: "ldr without offset",
			va:   0x100004004,
			word: 0xf9400021, // ldr x1, [x1]
			op:   "ldr",
			args: []string{"x1", "[x1]"},
		},
		{
			name: "add immediate",
			va:   0x100004008,
			word: 0x91008231, // add x17, x17, #0x20
			op:   "add",
			args: []string{"x17", "x17", "#0x20"},
		},
		{
			name: "br register",
			va:   0x100004010,
			word: 0xd61f0200, // br x16
			op:   "br",
			args: []string{"x16"},
			flow: FlowIndirect,
		},
		{
			name: "ret",
			va:   0x100004010,
			word: 0xd65f03c0,
			op:   "ret",
			flow: FlowReturn,
		},
		{
			name:   "conditional branch",
			va:     0x100004000,
			word:   0x54000040, // b.eq +8
			op:     "b.eq",
			flow:   FlowCond,
			target: 0x100004008,
		},
		{
			name:   "call",
			va:     0x100004000,
			word:   0x94000004, // bl +16
			op:     "bl",
			flow:   FlowCall,
			target: 0x100004010,
		},
		{
			name: "breakpoint",
			va:   0x100004014,
			word: 0xd4200020, // brk #1
			op:   "brk",
			flow: FlowTrap,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := Decode(tt.va, word(tt.word))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if in.Op != tt.op {
				t.Errorf("Op = %q, want %q", in.Op, tt.op)
			}
			if tt.args != nil && !reflect.DeepEqual(in.Args, tt.args) {
				t.Errorf("Args = %q, want %q", in.Args, tt.args)
			}
			if in.Flow != tt.flow {
				t.Errorf("Flow = %v, want %v", in.Flow, tt.flow)
			}
			if tt.target != 0 && in.Target != tt.target {
				t.Errorf("Target = %#x, want %#x", in.Target, tt.target)
			}
			if in.Arch != ArchAArch64 {
				t.Errorf("Arch = %v, want aarch64", in.Arch)
			}
		})
	}
}

func TestDecodeShort(t *testing.T) {
	if _, err := Decode(0x1000, []byte{0x21, 0x00}); err == nil {
		t.Fatal("expected error for short input")
	}
}

func TestStreamMnemonics(t *testing.T) {
	s := Stream{{Op: "adrp"}, {Op: "ldr"}, {Op: "br"}}
	want := []string{"adrp", "ldr", "br"}
	if got := s.Mnemonics(); !reflect.DeepEqual(got, want) {
		t.Errorf("Mnemonics() = %v, want %v", got, want)
	}
}

func TestInstString(t *testing.T) {
	in := Inst{Op: "ldr", Args: []string{"x1", "[x1, #0x20]"}}
	if got, want := in.String(), "ldr x1, [x1, #0x20]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if in.Arg(5) != "" {
		t.Error("Arg out of range should be empty")
	}
}
