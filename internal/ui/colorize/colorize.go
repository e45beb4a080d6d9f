// Package colorize renders instruction listings with chroma syntax
// highlighting for terminal output.
package colorize

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"unalias/internal/disasm"
)

// getAssemblyLexer returns an appropriate assembly lexer with fallbacks
func getAssemblyLexer() chroma.Lexer {
	for _, name := range []string{"armasm", "gas", "nasm"} {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

func getDisasmStyle() *chroma.Style {
	for _, name := range []string{DisasmDark.Name, "dracula", "monokai"} {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

func getTerminalFormatter() chroma.Formatter {
	for _, name := range []string{"terminal16m", "terminal256"} {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// FormatLine renders one instruction as "address  op args".
func FormatLine(in disasm.Inst) string {
	return fmt.Sprintf("%016x  %-6s %s", in.VA, in.Op, strings.Join(in.Args, ", "))
}

// Listing renders stream one instruction per line. With color set, the
// operand text is highlighted and addresses are dimmed.
func Listing(stream disasm.Stream, color bool) string {
	lines := make([]string, 0, len(stream))
	for _, in := range stream {
		line := FormatLine(in)
		if color {
			line = ColorizeInstructionLine(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// ColorizeAssembly applies syntax highlighting to a block of assembly text.
// On any lexer or formatter failure the input is returned unchanged.
func ColorizeAssembly(code string) (string, error) {
	lexer := getAssemblyLexer()
	if lexer == nil {
		return code, nil
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code, err
	}

	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getDisasmStyle(), iterator); err != nil {
		return code, err
	}
	return buf.String(), nil
}

// ColorizeInstructionLine colorizes a line produced by FormatLine, keeping
// its column layout.
func ColorizeInstructionLine(line string) string {
	addr, rest, ok := strings.Cut(line, "  ")
	if !ok || !isHex(addr) {
		return colorizeFullLine(line)
	}
	// address in gray (79, 79, 79)
	return fmt.Sprintf("\033[38;2;79;79;79m%s\033[0m  %s", addr, colorizeFullLine(rest))
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if !((ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')) {
			return false
		}
	}
	return true
}

func colorizeFullLine(line string) string {
	out, err := ColorizeAssembly(line)
	if err != nil {
		return line
	}
	// lexers append a newline the caller's line does not have
	return strings.ReplaceAll(out, "\n", "")
}

// StripANSI removes ANSI escape sequences.
func StripANSI(s string) string {
	var result strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		default:
			result.WriteRune(r)
		}
	}
	return result.String()
}
