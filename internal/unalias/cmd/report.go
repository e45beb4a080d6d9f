package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"unalias/internal/analysis"
	"unalias/internal/disasm"
	"unalias/internal/unalias/styles"
	"unalias/internal/ui/colorize"
)

// Report is the result of one scan as printed by the CLI.
type Report struct {
	Path       string         `json:"path"`
	Arch       string         `json:"arch,omitempty"`
	Segment    string         `json:"segment"`
	DryRun     bool           `json:"dry_run,omitempty"`
	Procedures int            `json:"procedures"`
	Candidates int            `json:"candidates"`
	Renamed    int            `json:"renamed"`
	Failures   map[string]int `json:"failures,omitempty"`
	Stubs      []StubEntry    `json:"stubs"`
	Rejected   []StubEntry    `json:"rejected,omitempty"`
}

// StubEntry describes one renamed or rejected candidate.
type StubEntry struct {
	Address  string `json:"address"`
	OldName  string `json:"old_name,omitempty"`
	NewName  string `json:"new_name,omitempty"`
	Selector string `json:"selector,omitempty"`
	Idiom    string `json:"idiom,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Error    string `json:"error,omitempty"`

	insts disasm.Stream
}

// sanitizeForJSON cleans a string to be valid UTF-8 and safe for JSON encoding
func sanitizeForJSON(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "�")
}

// NewReport summarizes res. Pattern mismatches are counted but not listed.
func NewReport(path, arch string, res *analysis.Result, dryRun bool) *Report {
	rep := &Report{
		Path:       path,
		Arch:       arch,
		Segment:    res.Segment,
		DryRun:     dryRun,
		Procedures: res.Stats.Visited,
		Candidates: res.Stats.Candidates,
		Renamed:    res.Renamed,
		Stubs:      []StubEntry{},
	}
	if len(res.Stats.Failures) > 0 || res.Stats.Errors > 0 {
		rep.Failures = make(map[string]int)
		for k, n := range res.Stats.Failures {
			rep.Failures[k.String()] = n
		}
		if res.Stats.Errors > 0 {
			rep.Failures["error"] = res.Stats.Errors
		}
	}

	for _, out := range res.Outcomes {
		e := StubEntry{
			Address: fmt.Sprintf("%#x", out.Entry),
			OldName: sanitizeForJSON(out.OldName),
			insts:   out.Insts,
		}
		if out.Idiom != analysis.IdiomNone {
			e.Idiom = out.Idiom.String()
		}
		switch {
		case out.OK():
			e.NewName = out.NewName
			e.Selector = out.Selector
			rep.Stubs = append(rep.Stubs, e)
		case out.Kind() == analysis.KindPatternMismatch:
			// counted only
		default:
			if k := out.Kind(); k != 0 {
				e.Kind = k.String()
			} else {
				e.Kind = "error"
			}
			e.Error = sanitizeForJSON(out.Err.Error())
			rep.Rejected = append(rep.Rejected, e)
		}
	}
	return rep
}

// WriteJSON writes rep as indented JSON.
func (rep *Report) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// Markdown renders rep as a markdown document. With full set, each renamed
// stub's instruction window is listed in a code block.
func (rep *Report) Markdown(full bool) string {
	var sb strings.Builder

	sb.WriteString("# unalias\n\n")
	fmt.Fprintf(&sb, "`%s`", rep.Path)
	if rep.Arch != "" {
		fmt.Fprintf(&sb, " (%s)", rep.Arch)
	}
	sb.WriteString("\n\n")

	sb.WriteString("| Segment | Procedures | Candidates | Renamed |\n")
	sb.WriteString("|---|---|---|---|\n")
	fmt.Fprintf(&sb, "| %s | %d | %d | %d |\n\n", rep.Segment, rep.Procedures, rep.Candidates, rep.Renamed)

	if rep.DryRun {
		sb.WriteString("> dry run: no names were written\n\n")
	}

	if len(rep.Failures) > 0 {
		sb.WriteString("## Failures\n\n")
		kinds := make([]string, 0, len(rep.Failures))
		for k := range rep.Failures {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(&sb, "- %s: %d\n", k, rep.Failures[k])
		}
		sb.WriteString("\n")
	}

	if len(rep.Stubs) > 0 {
		sb.WriteString("## Renamed stubs\n\n")
		sb.WriteString("| Address | Idiom | Old name | New name |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, e := range rep.Stubs {
			fmt.Fprintf(&sb, "| `%s` | %s | %s | `%s` |\n", e.Address, e.Idiom, cell(e.OldName), e.NewName)
		}
		sb.WriteString("\n")
	}

	if len(rep.Rejected) > 0 {
		sb.WriteString("## Rejected candidates\n\n")
		sb.WriteString("| Address | Kind | Detail |\n")
		sb.WriteString("|---|---|---|\n")
		for _, e := range rep.Rejected {
			fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", e.Address, e.Kind, cell(e.Error))
		}
		sb.WriteString("\n")
	}

	if full {
		for _, e := range rep.Stubs {
			fmt.Fprintf(&sb, "### %s\n\n```\n%s\n```\n\n", e.NewName, colorize.Listing(e.insts, false))
		}
	}
	return sb.String()
}

// cell escapes text for a markdown table cell.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}

// Summary is the one-line result printed after the rendered report.
func (rep *Report) Summary(color bool) string {
	verb := "renamed"
	if rep.DryRun {
		verb = "would rename"
	}
	rejected := len(rep.Rejected)
	if !color {
		return fmt.Sprintf("%s %d alias stubs in %s (%d candidates, %d rejected)", verb, rep.Renamed, rep.Segment, rep.Candidates, rejected)
	}
	s := styles.Label.Render(verb+" ") +
		styles.Good.Render(fmt.Sprint(rep.Renamed)) +
		styles.Label.Render(" alias stubs in ") +
		styles.Value.Render(rep.Segment) +
		styles.Label.Render(fmt.Sprintf(" (%d candidates, ", rep.Candidates))
	if rejected > 0 {
		s += styles.Warn.Render(fmt.Sprintf("%d rejected", rejected))
	} else {
		s += styles.Label.Render("0 rejected")
	}
	return s + styles.Label.Render(")")
}

// renderOptions control text output.
type renderOptions struct {
	Full  bool
	Color bool
	Width int
}

// Render writes the text form of rep. On a color terminal the markdown is
// rendered with glamour and stub listings are highlighted; otherwise the
// raw markdown is written.
func (rep *Report) Render(w io.Writer, opts renderOptions) error {
	if !opts.Color {
		if _, err := io.WriteString(w, rep.Markdown(opts.Full)); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, rep.Summary(false))
		return err
	}

	width := opts.Width
	if width <= 0 {
		width = 80
	}
	r, err := styles.MarkdownRenderer(width - 2)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(rep.Markdown(false))
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	if _, err := io.WriteString(w, out); err != nil {
		return err
	}

	if opts.Full {
		for _, e := range rep.Stubs {
			fmt.Fprintf(w, "  %s %s\n", styles.Title.Render(e.NewName), styles.Address.Render(e.Address))
			for _, line := range strings.Split(colorize.Listing(e.insts, true), "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
			fmt.Fprintln(w)
		}
	}
	_, err = fmt.Fprintln(w, "  "+rep.Summary(true))
	return err
}
