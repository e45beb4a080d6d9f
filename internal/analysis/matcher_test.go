package analysis

import (
	"errors"
	"testing"

	"unalias/internal/document"
)

func TestMatchMnemonics(t *testing.T) {
	tests := []struct {
		name  string
		ops   []string
		want  Idiom
		match bool
	}{
		{"idiom A", []string{"adrp", "ldr", "adrp", "ldr", "br"}, IdiomA, true},
		{"idiom B", []string{"adrp", "ldr", "adrp", "add", "ldr"}, IdiomB, true},
		{"A with add first", []string{"add", "ldr", "adrp", "ldr", "br"}, IdiomNone, false},
		{"A with str", []string{"adrp", "str", "adrp", "ldr", "br"}, IdiomNone, false},
		{"A with ret", []string{"adrp", "ldr", "adrp", "ldr", "ret"}, IdiomNone, false},
		{"B with br last", []string{"adrp", "ldr", "adrp", "add", "br"}, IdiomNone, false},
		{"B with adr", []string{"adrp", "ldr", "adr", "add", "ldr"}, IdiomNone, false},
		{"reordered", []string{"ldr", "adrp", "adrp", "ldr", "br"}, IdiomNone, false},
		{"short", []string{"adrp", "ldr", "adrp", "ldr"}, IdiomNone, false},
		{"long", []string{"adrp", "ldr", "adrp", "ldr", "br", "brk"}, IdiomNone, false},
		{"uppercase", []string{"ADRP", "LDR", "ADRP", "LDR", "BR"}, IdiomNone, false},
		{"empty", nil, IdiomNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MatchMnemonics(tt.ops)
			if got != tt.want {
				t.Errorf("MatchMnemonics() = %v, want %v", got, tt.want)
			}
			if tt.match && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.match && !errors.Is(err, ErrPatternMismatch) {
				t.Errorf("error = %v, want pattern mismatch", err)
			}
		})
	}
}

func TestMatchMnemonicsSingleDeviation(t *testing.T) {
	for _, id := range idioms {
		for pos := range id.ops {
			ops := append([]string(nil), id.ops...)
			ops[pos] = "nop"
			if _, err := MatchMnemonics(ops); !errors.Is(err, ErrPatternMismatch) {
				t.Errorf("idiom %v with position %d replaced matched: %v", id.idiom, pos, err)
			}
		}
	}
}

func TestMatchBlockLengthPrefilter(t *testing.T) {
	m, seg := newDoc()
	addStub(m, textBase, idiomA("#0x1000", "[x1]")...)

	for _, n := range []uint64{0, 4, 8, 12, 24, 28, 32, 64} {
		doc := &countingDoc{Document: m}
		bb := document.BasicBlock{Start: textBase, End: textBase + n}
		_, _, err := MatchBlock(doc, seg, bb)
		if !errors.Is(err, ErrPatternMismatch) {
			t.Errorf("len %d: error = %v, want pattern mismatch", n, err)
		}
		if doc.reads != 0 {
			t.Errorf("len %d: %d instruction reads, want none", n, doc.reads)
		}
	}
}

func TestMatchBlock(t *testing.T) {
	m, seg := newDoc()
	addStub(m, textBase, idiomA("#0x1000", "[x1]")...)
	addStub(m, textBase+0x100, idiomB("#0x1000", "[x1, #0x8]")...)

	tests := []struct {
		name string
		bb   document.BasicBlock
		want Idiom
	}{
		{"idiom A 20 bytes", document.BasicBlock{Start: textBase, End: textBase + 20}, IdiomA},
		{"idiom A 16 byte block reads the idiom window", document.BasicBlock{Start: textBase, End: textBase + 16}, IdiomA},
		{"idiom B", document.BasicBlock{Start: textBase + 0x100, End: textBase + 0x114}, IdiomB},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &countingDoc{Document: m}
			got, insts, err := MatchBlock(doc, seg, tt.bb)
			if err != nil {
				t.Fatalf("MatchBlock failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("idiom = %v, want %v", got, tt.want)
			}
			if len(insts) != IdiomWidth || doc.reads != IdiomWidth {
				t.Errorf("window = %d insts, %d reads; want %d", len(insts), doc.reads, IdiomWidth)
			}
		})
	}
}

func TestMatchBlockUnreadable(t *testing.T) {
	m, seg := newDoc()
	// nothing mapped or added at this address
	bb := document.BasicBlock{Start: 0x6000, End: 0x6014}
	if _, _, err := MatchBlock(m, seg, bb); !errors.Is(err, ErrPatternMismatch) {
		t.Errorf("error = %v, want pattern mismatch", err)
	}
}
