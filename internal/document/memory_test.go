package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"unalias/internal/disasm"
)

func TestMemoryLookups(t *testing.T) {
	m := NewMemory(disasm.ArchAArch64)
	text := m.AddSegment(Segment{Name: TextSegment, Addr: 0x1000, Size: 0x1000})
	m.AddSegment(Segment{Name: "__DATA", Addr: 0x2000, Size: 0x1000})
	m.AddSection(Section{Segment: "__DATA", Name: SelRefsSection, Addr: 0x2000, Size: 0x10})
	m.AddSection(Section{Segment: TextSegment, Name: MethNameSection, Addr: 0x1800, Size: 0x100})

	tests := []struct {
		name    string
		addr    uint64
		section string
		segment string
	}{
		{"selrefs start", 0x2000, SelRefsSection, "__DATA"},
		{"selrefs last byte", 0x200f, SelRefsSection, "__DATA"},
		{"past selrefs", 0x2010, "", "__DATA"},
		{"methname", 0x1810, MethNameSection, TextSegment},
		{"unmapped", 0x9000, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sec := m.SectionAtAddress(tt.addr)
			if tt.section == "" {
				if sec != nil {
					t.Errorf("SectionAtAddress(%#x) = %s, want nil", tt.addr, sec)
				}
			} else if sec == nil || sec.Name != tt.section {
				t.Errorf("SectionAtAddress(%#x) = %v, want %s", tt.addr, sec, tt.section)
			}
			seg := m.SegmentAtAddress(tt.addr)
			if tt.segment == "" {
				if seg != nil {
					t.Errorf("SegmentAtAddress(%#x) = %s, want nil", tt.addr, seg.Name)
				}
			} else if seg == nil || seg.Name != tt.segment {
				t.Errorf("SegmentAtAddress(%#x) = %v, want %s", tt.addr, seg, tt.segment)
			}
		})
	}

	if _, err := m.SegmentByName("__LINKEDIT"); !errors.Is(err, ErrNoSegment) {
		t.Errorf("SegmentByName error = %v, want ErrNoSegment", err)
	}
	if got, err := m.SegmentByName(TextSegment); err != nil || got.Addr != text.Addr {
		t.Errorf("SegmentByName(__TEXT) = %v, %v", got, err)
	}
}

func TestMemoryProceduresSorted(t *testing.T) {
	m := NewMemory(disasm.ArchAArch64)
	seg := m.AddSegment(Segment{Name: TextSegment, Addr: 0x1000, Size: 0x1000})
	m.AddProcedure(TextSegment, Procedure{Entry: 0x1100})
	m.AddProcedure(TextSegment, Procedure{Entry: 0x1000})

	if n := m.ProcedureCount(seg); n != 2 {
		t.Fatalf("ProcedureCount = %d, want 2", n)
	}
	p, err := m.ProcedureAt(seg, 0)
	if err != nil {
		t.Fatal(err)
	}
	if p.Entry != 0x1000 {
		t.Errorf("first procedure = %#x, want 0x1000", p.Entry)
	}
	if _, err := m.ProcedureAt(seg, 2); !errors.Is(err, ErrNoProcedure) {
		t.Errorf("ProcedureAt(2) error = %v, want ErrNoProcedure", err)
	}
}

func TestMemoryReadBytes(t *testing.T) {
	m := NewMemory(disasm.ArchAArch64)
	m.Map(0x3000, []byte("count\x00"))

	b, err := m.ReadByteAt(0x3004)
	if err != nil || b != 't' {
		t.Errorf("ReadByteAt(0x3004) = %q, %v", b, err)
	}
	if _, err := m.ReadByteAt(0x3006); !errors.Is(err, ErrUnmapped) {
		t.Errorf("ReadByteAt past region error = %v, want ErrUnmapped", err)
	}
	if _, ok := m.ReadBytes(0x3004, 4); ok {
		t.Error("ReadBytes across region end should fail")
	}
}

func TestMemoryLazyDecode(t *testing.T) {
	m := NewMemory(disasm.ArchAArch64)
	seg := m.AddSegment(Segment{Name: TextSegment, Addr: 0x1000, Size: 0x10})
	m.Map(0x1000, []byte{0xc0, 0x03, 0x5f, 0xd6}) // ret

	in, err := m.InstructionAt(seg, 0x1000)
	if err != nil {
		t.Fatal(err)
	}
	if in.Op != "ret" {
		t.Errorf("Op = %q, want ret", in.Op)
	}
	if _, err := m.InstructionAt(seg, 0x2000); !errors.Is(err, ErrNoInstruction) {
		t.Errorf("InstructionAt outside segment error = %v", err)
	}

	m.AddInstruction(disasm.Inst{VA: 0x1000, Op: "nop", Arch: disasm.ArchAArch64})
	if in, _ := m.InstructionAt(seg, 0x1000); in.Op != "nop" {
		t.Errorf("explicit instruction not preferred, got %q", in.Op)
	}
}

func TestNamesWriteJSON(t *testing.T) {
	m := NewMemory(disasm.ArchAArch64)
	if err := m.SetNameAtAddress(0x1020, "ALIAS__count"); err != nil {
		t.Fatal(err)
	}
	m.Names.Set(0x1000, "ALIAS__init")

	entries := m.Names.Entries()
	if len(entries) != 2 || entries[0].Addr != 0x1000 {
		t.Fatalf("Entries() = %v, want sorted by address", entries)
	}

	var buf bytes.Buffer
	if err := m.Names.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var got map[string]string
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["0x1020"] != "ALIAS__count" {
		t.Errorf("names json = %v", got)
	}
}
