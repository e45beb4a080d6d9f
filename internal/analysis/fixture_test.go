package analysis

import (
	"encoding/binary"

	"unalias/internal/disasm"
	"unalias/internal/document"
)

const (
	selRefBase   = 0x1000
	methNameBase = 0x2000
	otherBase    = 0x3000
	textBase     = 0x4000
)

// newDoc returns a document with a __TEXT segment spanning every fixture
// address, a selector-reference section, a method-name section and an
// unrelated data section.
func newDoc() (*document.Memory, *document.Segment) {
	m := document.NewMemory(disasm.ArchAArch64)
	seg := m.AddSegment(document.Segment{Name: document.TextSegment, Addr: 0, Size: 0x10000})
	m.AddSection(document.Section{Segment: "__DATA", Name: document.SelRefsSection, Addr: selRefBase, Size: 0x100})
	m.AddSection(document.Section{Segment: document.TextSegment, Name: document.MethNameSection, Addr: methNameBase, Size: 0x100})
	m.AddSection(document.Section{Segment: "__DATA", Name: "__data", Addr: otherBase, Size: 0x100})
	return m, seg
}

func inst(va uint64, op string, args ...string) disasm.Inst {
	return disasm.Inst{VA: va, Op: op, Args: args, Arch: disasm.ArchAArch64}
}

// addStub adds a single-block procedure at entry whose instructions are
// given in order.
func addStub(m *document.Memory, entry uint64, insts ...disasm.Inst) {
	for i, in := range insts {
		in.VA = entry + uint64(i*disasm.InstWidth)
		m.AddInstruction(in)
	}
	m.AddProcedure(document.TextSegment, document.Procedure{
		Entry:  entry,
		Blocks: []document.BasicBlock{{Start: entry, End: entry + uint64(len(insts)*disasm.InstWidth)}},
	})
}

// idiomA returns the five instructions of an idiom A stub loading page+off.
func idiomA(page string, offOperand string) []disasm.Inst {
	return []disasm.Inst{
		inst(0, "adrp", "x1", page),
		inst(0, "ldr", "x1", offOperand),
		inst(0, "adrp", "x16", "#0x8000"),
		inst(0, "ldr", "x16", "[x16, #0x8]"),
		inst(0, "br", "x16"),
	}
}

func idiomB(page string, offOperand string) []disasm.Inst {
	return []disasm.Inst{
		inst(0, "adrp", "x1", page),
		inst(0, "ldr", "x1", offOperand),
		inst(0, "adrp", "x17", "#0x8000"),
		inst(0, "add", "x17", "x17", "#0x10"),
		inst(0, "ldr", "x16", "[x17]"),
	}
}

func le32(words ...uint32) []byte {
	b := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[i*4:], w)
	}
	return b
}

// countingDoc counts instruction reads.
type countingDoc struct {
	document.Document
	reads int
}

func (c *countingDoc) InstructionAt(seg *document.Segment, addr uint64) (disasm.Inst, error) {
	c.reads++
	return c.Document.InstructionAt(seg, addr)
}
