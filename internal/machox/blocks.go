package machox

import (
	"slices"

	"unalias/internal/disasm"
	"unalias/internal/document"
)

// BuildBlocks splits the procedure starting at entry into basic blocks by
// following direct control flow from the entry. Only instructions in
// [entry, end) reachable from the entry are covered; trailing padding after a
// return is excluded.
func BuildBlocks(doc document.Document, seg *document.Segment, entry, end uint64) []document.BasicBlock {
	inRange := func(va uint64) bool { return va >= entry && va < end }

	leaders := map[uint64]bool{entry: true}
	reached := make(map[uint64]bool)
	work := []uint64{entry}

	for len(work) > 0 {
		va := work[len(work)-1]
		work = work[:len(work)-1]

		for inRange(va) && !reached[va] {
			in, err := doc.InstructionAt(seg, va)
			if err != nil {
				break
			}
			reached[va] = true

			if in.Flow == disasm.FlowJump || in.Flow == disasm.FlowCond {
				if inRange(in.Target) {
					leaders[in.Target] = true
					work = append(work, in.Target)
				}
			}
			if !in.FallsThrough() {
				break
			}
			next := va + disasm.InstWidth
			if in.Flow == disasm.FlowCond {
				leaders[next] = true
				work = append(work, next)
				break
			}
			va = next
		}
	}

	var starts []uint64
	for va := range leaders {
		if reached[va] {
			starts = append(starts, va)
		}
	}
	slices.Sort(starts)

	blocks := make([]document.BasicBlock, 0, len(starts))
	for _, start := range starts {
		va := start
		for {
			in, _ := doc.InstructionAt(seg, va)
			va += disasm.InstWidth
			if in.EndsBlock() || !reached[va] || leaders[va] {
				break
			}
		}
		blocks = append(blocks, document.BasicBlock{Start: start, End: va})
	}
	return blocks
}
