package styles

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/x/exp/charmtone"
)

func hex(k charmtone.Key) *string {
	s := k.Hex()
	return &s
}

func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }
func uintPtr(u uint) *uint       { return &u }

// MarkdownRenderer returns a glamour renderer for scan reports.
func MarkdownRenderer(width int) (*glamour.TermRenderer, error) {
	return glamour.NewTermRenderer(
		glamour.WithStyles(ReportStyle()),
		glamour.WithWordWrap(width),
	)
}

// ReportStyle styles the elements a report uses: headings, the summary and
// stub tables, the failure list, inline addresses and the dry-run note.
func ReportStyle() ansi.StyleConfig {
	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: hex(charmtone.Smoke)},
		},
		H1: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix:          " ",
				Suffix:          " ",
				Color:           hex(charmtone.Zest),
				BackgroundColor: hex(charmtone.Charple),
				Bold:            boolPtr(true),
				BlockSuffix:     "\n",
			},
		},
		H2: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix:      "▌ ",
				Color:       hex(charmtone.Malibu),
				Bold:        boolPtr(true),
				BlockSuffix: "\n",
			},
		},
		// dry-run note
		BlockQuote: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: hex(charmtone.Zest)},
			Indent:         uintPtr(1),
			IndentToken:    stringPtr("! "),
		},
		List: ansi.StyleList{LevelIndent: 2},
		Item: ansi.StylePrimitive{BlockPrefix: "· "},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: hex(charmtone.Guac)},
		},
		Table: ansi.StyleTable{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{Color: hex(charmtone.Squid)},
			},
		},
	}
}
