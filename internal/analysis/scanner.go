package analysis

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"unalias/internal/disasm"
	"unalias/internal/document"
)

// Candidate is a procedure whose only block matched an alias idiom.
type Candidate struct {
	Proc   *document.Procedure
	Block  document.BasicBlock
	Idiom  Idiom
	Insts  disasm.Stream
	SelRef uint64 // resolved selector-reference cell
}

// Outcome is the per-procedure result of a scan. Exactly one of Selector and
// Err is set.
type Outcome struct {
	Entry    uint64
	OldName  string
	Idiom    Idiom
	SelRef   uint64
	NameAddr uint64
	Selector string
	NewName  string
	Insts    disasm.Stream
	Err      error
}

// OK reports whether the procedure was identified as an alias stub.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Kind returns the failure kind, or 0 for a success or a non-analysis error.
func (o Outcome) Kind() Kind {
	k, _ := KindOf(o.Err)
	return k
}

// Stats counts what happened to every procedure visited.
type Stats struct {
	Visited    int
	Skipped    int // filtered before idiom matching
	Candidates int // reached idiom matching
	Renamed    int
	Failures   map[Kind]int
	Errors     int // rename or collaborator failures outside the taxonomy
}

// Result is the outcome of one scan.
type Result struct {
	Segment  string
	Renamed  int
	Stats    Stats
	Outcomes []Outcome
}

// Options configure a Scanner.
type Options struct {
	Prefix   string      // default DefaultPrefix
	Arch     disasm.Arch // default disasm.ArchAArch64
	DryRun   bool        // do not call SetNameAtAddress
	Logger   *log.Logger // default discards
	Observer func(Outcome)
}

// Scanner walks the procedures of a segment and renames alias stubs.
type Scanner struct {
	doc  document.Document
	opts Options
}

// NewScanner creates a scanner over doc.
func NewScanner(doc document.Document, opts Options) *Scanner {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Arch == disasm.ArchUnknown {
		opts.Arch = disasm.ArchAArch64
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Scanner{doc: doc, opts: opts}
}

// Scan visits every procedure of the named segment. Candidate failures are
// recorded in the result and never stop the scan; only a missing segment or
// a cancelled context return an error.
func (s *Scanner) Scan(ctx context.Context, segment string) (*Result, error) {
	seg, err := s.doc.SegmentByName(segment)
	if err != nil {
		return nil, fmt.Errorf("failed to find segment: %w", err)
	}

	res := &Result{
		Segment: segment,
		Stats:   Stats{Failures: make(map[Kind]int)},
	}
	lg := s.opts.Logger

	count := s.doc.ProcedureCount(seg)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Stats.Visited++

		proc, err := s.doc.ProcedureAt(seg, i)
		if err != nil {
			lg.Warn("failed to read procedure", "index", i, "error", err)
			res.Stats.Errors++
			continue
		}

		out, ok := s.Analyze(seg, proc)
		if !ok {
			res.Stats.Skipped++
			continue
		}
		res.Stats.Candidates++
		s.record(res, out)
	}

	res.Renamed = res.Stats.Renamed
	lg.Info("scan complete", "segment", segment, "procedures", res.Stats.Visited, "renamed", res.Renamed)
	return res, nil
}

// Analyze runs the filters and, for candidates, the full recognition
// pipeline on one procedure. The bool is false when the procedure was
// filtered out before idiom matching.
func (s *Scanner) Analyze(seg *document.Segment, proc *document.Procedure) (Outcome, bool) {
	if len(proc.Blocks) != 1 {
		return Outcome{}, false
	}
	bb := proc.Blocks[0]

	first, err := s.doc.InstructionAt(seg, bb.Start)
	if err != nil || first.Arch != s.opts.Arch {
		return Outcome{}, false
	}
	if CheckBlockLength(bb) != nil {
		return Outcome{}, false
	}

	out := Outcome{Entry: proc.Entry, OldName: proc.Name}
	c, err := s.candidate(seg, proc, bb)
	if c != nil {
		out.Idiom = c.Idiom
		out.Insts = c.Insts
		out.SelRef = c.SelRef
	}
	if err != nil {
		out.Err = err
		return out, true
	}

	nameAddr, err := WalkSelectorRef(s.doc, c.SelRef)
	if err != nil {
		out.Err = err
		return out, true
	}
	out.NameAddr = nameAddr

	sel, err := ReadSelectorName(s.doc, nameAddr)
	if err != nil {
		out.Err = err
		return out, true
	}
	out.Selector = sel
	out.NewName = s.opts.Prefix + sel
	return out, true
}

func (s *Scanner) candidate(seg *document.Segment, proc *document.Procedure, bb document.BasicBlock) (*Candidate, error) {
	idiom, insts, err := MatchBlock(s.doc, seg, bb)
	if err != nil {
		return nil, err
	}
	c := &Candidate{Proc: proc, Block: bb, Idiom: idiom, Insts: insts}
	addr, err := ResolveSplitAddress(insts[0], insts[1])
	if err != nil {
		return c, err
	}
	c.SelRef = addr
	return c, nil
}

func (s *Scanner) record(res *Result, out Outcome) {
	lg := s.opts.Logger
	entry := fmt.Sprintf("%#x", out.Entry)

	if out.Err == nil && !s.opts.DryRun {
		if err := s.doc.SetNameAtAddress(out.Entry, out.NewName); err != nil {
			out.Err = fmt.Errorf("failed to rename: %w", err)
		}
	}

	switch kind := out.Kind(); {
	case out.Err == nil:
		res.Stats.Renamed++
		lg.Info("found alias procedure", "address", entry, "selector", out.Selector, "name", out.NewName)
	case kind == KindPatternMismatch:
		res.Stats.Failures[kind]++
		lg.Debug("not an alias stub", "address", entry, "error", out.Err)
	case kind != 0:
		res.Stats.Failures[kind]++
		lg.Warn("alias stub rejected", "address", entry, "kind", kind, "error", out.Err)
	default:
		res.Stats.Errors++
		lg.Error("alias stub failed", "address", entry, "error", out.Err)
	}

	res.Outcomes = append(res.Outcomes, out)
	if s.opts.Observer != nil {
		s.opts.Observer(out)
	}
}
