package machox

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"unalias/internal/document"
)

// StubSize is the size of one __objc_stubs entry in the default (fast) layout.
const StubSize = 32

// LoadOptions configure Load.
type LoadOptions struct {
	Logger *log.Logger
}

// LoadStats summarizes what Load put into the document.
type LoadStats struct {
	Segments     int
	Sections     int
	Functions    int // from LC_FUNCTION_STARTS
	Stubs        int // carved from __objc_stubs
	SelectorRefs int
}

// Load builds a document from the selected slice.
func (im *Image) Load(opts LoadOptions) (*document.Memory, LoadStats, error) {
	lg := opts.Logger
	if lg == nil {
		lg = log.New(io.Discard)
	}
	var st LoadStats

	m := im.File
	doc := document.NewMemory(im.InstructionSet())

	for _, seg := range m.Segments() {
		if seg.Memsz == 0 || seg.Name == "__PAGEZERO" {
			continue
		}
		doc.AddSegment(document.Segment{Name: seg.Name, Addr: seg.Addr, Size: seg.Memsz})
		st.Segments++
	}

	for _, sec := range m.Sections {
		doc.AddSection(document.Section{Segment: sec.Seg, Name: sec.Name, Addr: sec.Addr, Size: sec.Size})
		st.Sections++
		if sec.Offset == 0 || sec.Size == 0 {
			// zerofill
			continue
		}
		data, err := sec.Data()
		if err != nil {
			lg.Warn("failed to read section", "section", sec.Seg+"."+sec.Name, "error", err)
			continue
		}
		doc.Map(sec.Addr, data)
	}

	st.SelectorRefs = im.loadSelectorRefs(doc, lg)

	syms := newSymbolizer(m)
	seen := make(map[uint64]bool)
	addProc := func(start, end uint64) bool {
		seg := doc.SegmentAtAddress(start)
		if seg == nil || seen[start] {
			return false
		}
		seen[start] = true
		doc.AddProcedure(seg.Name, document.Procedure{
			Entry:  start,
			Name:   syms.lookup(start),
			Blocks: BuildBlocks(doc, seg, start, end),
		})
		return true
	}

	if m.FunctionStarts() != nil {
		for _, fn := range m.GetFunctions() {
			if addProc(fn.StartAddr, fn.EndAddr) {
				st.Functions++
			}
		}
	} else {
		lg.Warn("no LC_FUNCTION_STARTS; only __objc_stubs entries will be analyzed")
	}

	if stubs := m.Section(document.TextSegment, document.StubsSection); stubs != nil {
		for _, start := range StubEntries(stubs.Addr, stubs.Size) {
			if addProc(start, start+StubSize) {
				st.Stubs++
			}
		}
	}

	if _, err := doc.SegmentByName(document.TextSegment); err != nil {
		return nil, st, fmt.Errorf("failed to load %s: %w", im.Path, err)
	}

	lg.Debug("loaded image",
		"path", im.Path,
		"arch", im.Arch,
		"segments", st.Segments,
		"sections", st.Sections,
		"functions", st.Functions,
		"stubs", st.Stubs,
		"selrefs", st.SelectorRefs)
	return doc, st, nil
}

// StubEntries returns the entry addresses of the stubs in a section of the
// given address and size. A trailing partial entry is ignored.
func StubEntries(addr, size uint64) []uint64 {
	entries := make([]uint64, 0, size/StubSize)
	for off := uint64(0); off+StubSize <= size; off += StubSize {
		entries = append(entries, addr+off)
	}
	return entries
}

// loadSelectorRefs records a reference from every __objc_selrefs cell to the
// selector string it points at. Images may carry the section in more than
// one data segment.
func (im *Image) loadSelectorRefs(doc *document.Memory, lg *log.Logger) int {
	m := im.File
	base := m.GetBaseAddress()
	n := 0
	for _, sec := range m.Sections {
		if sec.Name != document.SelRefsSection {
			continue
		}
		n += im.loadSelectorCells(doc, lg, sec.Addr, sec.Size, base)
	}
	if n == 0 {
		lg.Warn("no selector references found")
	}
	return n
}

func (im *Image) loadSelectorCells(doc *document.Memory, lg *log.Logger, addr, size, base uint64) int {
	m := im.File
	n := 0
	for off := uint64(0); off+8 <= size; off += 8 {
		cell := addr + off
		// raw cell, decoded once
		ptr, err := m.GetSlidPointerAtAddress(cell)
		if err != nil {
			lg.Debug("failed to read selector reference", "address", fmt.Sprintf("%#x", cell), "error", err)
			continue
		}
		target := pointerTarget(ptr, base)
		if target == 0 {
			continue
		}
		doc.AddReference(cell, target)
		n++
	}
	return n
}

// pointerTarget converts a slid pointer value into a virtual address.
// Chained-fixup rebases encode an offset from the image base.
func pointerTarget(ptr, base uint64) uint64 {
	if ptr != 0 && ptr < base {
		return ptr + base
	}
	return ptr
}
