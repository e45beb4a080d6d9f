package document

import (
	"fmt"
	"sort"
	"sync"

	"unalias/internal/disasm"
)

// Region is a run of mapped bytes starting at Addr.
type Region struct {
	Addr uint64
	Data []byte
}

// Memory is an in-memory Document. Loaders fill it once and then hand it to
// the analysis passes; instructions not added explicitly are decoded lazily
// from the mapped bytes.
type Memory struct {
	Arch  disasm.Arch
	Names *Names

	segments []*Segment
	sections []*Section
	procs    map[string][]*Procedure
	regions  []Region
	xrefs    map[uint64][]uint64

	mu    sync.Mutex
	insts map[uint64]disasm.Inst
}

// NewMemory returns an empty document for the given architecture.
func NewMemory(arch disasm.Arch) *Memory {
	return &Memory{
		Arch:  arch,
		Names: NewNames(),
		procs: make(map[string][]*Procedure),
		xrefs: make(map[uint64][]uint64),
		insts: make(map[uint64]disasm.Inst),
	}
}

// AddSegment registers a segment.
func (m *Memory) AddSegment(seg Segment) *Segment {
	s := seg
	m.segments = append(m.segments, &s)
	return &s
}

// AddSection registers a section.
func (m *Memory) AddSection(sec Section) *Section {
	s := sec
	m.sections = append(m.sections, &s)
	return &s
}

// AddProcedure appends a procedure to the named segment. Procedures are kept
// in entry-point order.
func (m *Memory) AddProcedure(segment string, p Procedure) {
	proc := p
	list := append(m.procs[segment], &proc)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Entry < list[j].Entry })
	m.procs[segment] = list
}

// AddInstruction records a pre-decoded instruction, overriding lazy decoding.
func (m *Memory) AddInstruction(in disasm.Inst) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insts[in.VA] = in
}

// Map makes data readable at addr.
func (m *Memory) Map(addr uint64, data []byte) {
	m.regions = append(m.regions, Region{Addr: addr, Data: data})
}

// AddReference records that the value stored at from refers to to.
func (m *Memory) AddReference(from, to uint64) {
	m.xrefs[from] = append(m.xrefs[from], to)
}

// Sections returns all registered sections.
func (m *Memory) Sections() []*Section {
	return m.sections
}

// Procedures returns the procedures of the named segment.
func (m *Memory) Procedures(segment string) []*Procedure {
	return m.procs[segment]
}

// ReadBytes returns size bytes starting at addr. It returns false if any
// part of the range is unmapped.
func (m *Memory) ReadBytes(addr uint64, size int) ([]byte, bool) {
	if size <= 0 {
		return []byte{}, true
	}
	for _, r := range m.regions {
		if addr < r.Addr || addr >= r.Addr+uint64(len(r.Data)) {
			continue
		}
		off := addr - r.Addr
		end := off + uint64(size)
		if end > uint64(len(r.Data)) {
			return nil, false
		}
		return r.Data[off:end], true
	}
	return nil, false
}

func (m *Memory) SegmentByName(name string) (*Segment, error) {
	for _, s := range m.segments {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoSegment, name)
}

func (m *Memory) SectionAtAddress(addr uint64) *Section {
	for _, s := range m.sections {
		if s.Contains(addr) {
			return s
		}
	}
	return nil
}

func (m *Memory) SegmentAtAddress(addr uint64) *Segment {
	for _, s := range m.segments {
		if s.Contains(addr) {
			return s
		}
	}
	return nil
}

func (m *Memory) ProcedureCount(seg *Segment) int {
	if seg == nil {
		return 0
	}
	return len(m.procs[seg.Name])
}

func (m *Memory) ProcedureAt(seg *Segment, idx int) (*Procedure, error) {
	if seg == nil {
		return nil, ErrNoSegment
	}
	list := m.procs[seg.Name]
	if idx < 0 || idx >= len(list) {
		return nil, fmt.Errorf("%w: %s[%d]", ErrNoProcedure, seg.Name, idx)
	}
	return list[idx], nil
}

func (m *Memory) InstructionAt(seg *Segment, addr uint64) (disasm.Inst, error) {
	if seg != nil && !seg.Contains(addr) {
		return disasm.Inst{}, fmt.Errorf("%w: %#x outside %s", ErrNoInstruction, addr, seg.Name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if in, ok := m.insts[addr]; ok {
		return in, nil
	}
	if m.Arch != disasm.ArchAArch64 {
		// no decoder for this architecture; report the tag only
		return disasm.Inst{VA: addr, Arch: m.Arch}, nil
	}
	raw, ok := m.ReadBytes(addr, disasm.InstWidth)
	if !ok {
		return disasm.Inst{}, fmt.Errorf("%w: %#x", ErrNoInstruction, addr)
	}
	in, err := disasm.Decode(addr, raw)
	if err != nil {
		return disasm.Inst{}, err
	}
	m.insts[addr] = in
	return in, nil
}

func (m *Memory) ReadByteAt(addr uint64) (byte, error) {
	b, ok := m.ReadBytes(addr, 1)
	if !ok {
		return 0, fmt.Errorf("%w: %#x", ErrUnmapped, addr)
	}
	return b[0], nil
}

func (m *Memory) ReferencesFrom(addr uint64) []uint64 {
	return m.xrefs[addr]
}

func (m *Memory) SetNameAtAddress(addr uint64, name string) error {
	m.Names.Set(addr, name)
	return nil
}
