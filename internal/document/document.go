// Package document models a disassembled binary image: segments, sections,
// procedures, decoded instructions, raw bytes, cross references and the
// naming store the analysis passes write to.
package document

import (
	"errors"

	"unalias/internal/disasm"
)

// Well-known Mach-O names used by the analysis passes.
const (
	TextSegment     = "__TEXT"
	SelRefsSection  = "__objc_selrefs"
	MethNameSection = "__objc_methname"
	StubsSection    = "__objc_stubs"
)

var (
	ErrNoSegment     = errors.New("segment not found")
	ErrNoProcedure   = errors.New("procedure index out of range")
	ErrUnmapped      = errors.New("address not mapped")
	ErrNoInstruction = errors.New("no instruction at address")
)

// Segment is a named address range that contains sections.
type Segment struct {
	Name string
	Addr uint64
	Size uint64
}

// Contains reports whether addr lies in the segment.
func (s *Segment) Contains(addr uint64) bool {
	return s != nil && addr >= s.Addr && addr < s.Addr+s.Size
}

// Section is a named address range inside a segment.
type Section struct {
	Segment string
	Name    string
	Addr    uint64
	Size    uint64
}

// Contains reports whether addr lies in the section.
func (s *Section) Contains(addr uint64) bool {
	return s != nil && addr >= s.Addr && addr < s.Addr+s.Size
}

func (s *Section) String() string {
	return s.Segment + "." + s.Name
}

// BasicBlock is a straight-line run of instructions [Start, End).
type BasicBlock struct {
	Start uint64
	End   uint64
}

// Len returns the block length in bytes.
func (b BasicBlock) Len() uint64 {
	return b.End - b.Start
}

// Procedure is a function discovered in a segment.
type Procedure struct {
	Entry  uint64
	Name   string // existing symbol name, may be empty
	Blocks []BasicBlock
}

// Document is the read-only view of a disassembled image plus its naming store.
type Document interface {
	SegmentByName(name string) (*Segment, error)
	SectionAtAddress(addr uint64) *Section
	SegmentAtAddress(addr uint64) *Segment
	ProcedureCount(seg *Segment) int
	ProcedureAt(seg *Segment, idx int) (*Procedure, error)
	InstructionAt(seg *Segment, addr uint64) (disasm.Inst, error)
	ReadByteAt(addr uint64) (byte, error)
	ReferencesFrom(addr uint64) []uint64
	SetNameAtAddress(addr uint64, name string) error
}
