// Package disasm defines a common instruction representation used
// across the analysis passes, plus an AArch64 decoder that produces it.
package disasm

import "strings"

// Arch identifies the instruction set an instruction was decoded for.
type Arch int

const (
	ArchUnknown Arch = iota
	ArchAArch64
	ArchX86_64
)

func (a Arch) String() string {
	switch a {
	case ArchAArch64:
		return "aarch64"
	case ArchX86_64:
		return "x86_64"
	default:
		return "unknown"
	}
}

// InstWidth is the fixed instruction width for AArch64.
const InstWidth = 4

// Flow classifies how an instruction affects control flow.
type Flow int

const (
	FlowNone     Flow = iota // falls through
	FlowJump                 // unconditional direct branch
	FlowCond                 // conditional direct branch
	FlowIndirect             // branch through a register
	FlowCall                 // call, returns to the next instruction
	FlowReturn               // return from procedure
	FlowTrap                 // breakpoint / undefined, never falls through
)

// Inst is a simplified decoded instruction.
type Inst struct {
	VA     uint64   // virtual address of instruction
	Op     string   // mnemonic in lowercase
	Args   []string // raw operand text, e.g. "x1", "#0x100008000", "[x1, #0x20]"
	Arch   Arch
	Raw    [4]byte // raw encoding
	Flow   Flow
	Target uint64 // direct branch target, valid for FlowJump, FlowCond and FlowCall
}

// Arg returns the i-th raw operand, or "" when the instruction has fewer operands.
func (in Inst) Arg(i int) string {
	if i < 0 || i >= len(in.Args) {
		return ""
	}
	return in.Args[i]
}

// String formats the instruction as "op arg, arg".
func (in Inst) String() string {
	if len(in.Args) == 0 {
		return in.Op
	}
	return in.Op + " " + strings.Join(in.Args, ", ")
}

// EndsBlock reports whether a basic block ends after this instruction.
func (in Inst) EndsBlock() bool {
	switch in.Flow {
	case FlowJump, FlowCond, FlowIndirect, FlowReturn, FlowTrap:
		return true
	}
	return false
}

// FallsThrough reports whether execution may continue at VA+InstWidth.
func (in Inst) FallsThrough() bool {
	switch in.Flow {
	case FlowJump, FlowIndirect, FlowReturn, FlowTrap:
		return false
	}
	return true
}

// Stream is a linear sequence of instructions.
type Stream []Inst

// Mnemonics returns the ordered mnemonics of the stream.
func (s Stream) Mnemonics() []string {
	ops := make([]string, len(s))
	for i, in := range s {
		ops[i] = in.Op
	}
	return ops
}
