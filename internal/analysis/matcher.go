package analysis

import (
	"fmt"
	"slices"

	"unalias/internal/disasm"
	"unalias/internal/document"
)

// Idiom identifies which alias stub shape a block matched.
type Idiom int

const (
	IdiomNone Idiom = iota
	IdiomA          // adrp, ldr, adrp, ldr, br
	IdiomB          // adrp, ldr, adrp, add, ldr
)

func (i Idiom) String() string {
	switch i {
	case IdiomA:
		return "A"
	case IdiomB:
		return "B"
	default:
		return "none"
	}
}

var idioms = []struct {
	idiom Idiom
	ops   []string
}{
	{IdiomA, []string{"adrp", "ldr", "adrp", "ldr", "br"}},
	{IdiomB, []string{"adrp", "ldr", "adrp", "add", "ldr"}},
}

// CheckBlockLength rejects blocks whose length cannot hold an alias stub.
// It never looks at instructions.
func CheckBlockLength(bb document.BasicBlock) error {
	switch bb.Len() {
	case StubBlockLen, LegacyStubBlockLen:
		return nil
	}
	return newError(KindPatternMismatch, bb.Start, fmt.Errorf("block length %d", bb.Len()))
}

// MatchMnemonics compares ops position by position against the known idioms.
func MatchMnemonics(ops []string) (Idiom, error) {
	if idiom, ok := lookupIdiom(ops); ok {
		return idiom, nil
	}
	return IdiomNone, newError(KindPatternMismatch, 0, fmt.Errorf("opcodes %v", ops))
}

func lookupIdiom(ops []string) (Idiom, bool) {
	for _, id := range idioms {
		if slices.Equal(ops, id.ops) {
			return id.idiom, true
		}
	}
	return IdiomNone, false
}

// MatchBlock applies the length pre-filter and then reads the idiom window
// from the block start and matches its mnemonics. The returned stream holds
// the window instructions.
func MatchBlock(doc document.Document, seg *document.Segment, bb document.BasicBlock) (Idiom, disasm.Stream, error) {
	if err := CheckBlockLength(bb); err != nil {
		return IdiomNone, nil, err
	}

	window := make(disasm.Stream, 0, IdiomWidth)
	for i := 0; i < IdiomWidth; i++ {
		va := bb.Start + uint64(i*disasm.InstWidth)
		in, err := doc.InstructionAt(seg, va)
		if err != nil {
			return IdiomNone, nil, newError(KindPatternMismatch, va, err)
		}
		window = append(window, in)
	}

	ops := window.Mnemonics()
	idiom, ok := lookupIdiom(ops)
	if !ok {
		return IdiomNone, nil, newError(KindPatternMismatch, bb.Start, fmt.Errorf("opcodes %v", ops))
	}
	return idiom, window, nil
}
