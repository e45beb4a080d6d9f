package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"

	"unalias/internal/unalias/styles"
	"unalias/internal/ui/colorize"
)

type viewMode int

const (
	viewReport viewMode = iota
	viewStubs
	viewListing
)

type stubItem struct {
	entry    StubEntry
	rejected bool
}

func (i stubItem) Title() string {
	if i.rejected {
		return fmt.Sprintf("%s  %s", i.entry.Address, i.entry.Kind)
	}
	return fmt.Sprintf("%s  %s", i.entry.Address, i.entry.NewName)
}

func (i stubItem) Description() string { return i.entry.OldName }

func (i stubItem) FilterValue() string {
	return strings.Join([]string{i.entry.Address, i.entry.OldName, i.entry.NewName, i.entry.Kind}, " ")
}

type stubDelegate struct{}

func (d stubDelegate) Height() int                               { return 1 }
func (d stubDelegate) Spacing() int                              { return 0 }
func (d stubDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d stubDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(stubItem)
	if !ok {
		return
	}

	indicator := " "
	addrStyle := styles.Address
	if index == m.Index() {
		indicator = ">"
		addrStyle = styles.Selected
	}

	name := styles.Good.Render(i.entry.NewName)
	if i.rejected {
		name = styles.Warn.Render(i.entry.Kind)
	}
	fmt.Fprintf(w, " %s  %s  %s  %s",
		indicator,
		addrStyle.Render(i.entry.Address),
		name,
		styles.Label.Render(cell(i.entry.OldName)))
}

type scanDoneMsg struct {
	rep *Report
	err error
}

func scanFileCmd(ctx context.Context, path string, opts scanOptions) tea.Cmd {
	return func() tea.Msg {
		rep, err := scanFile(ctx, path, opts)
		return scanDoneMsg{rep: rep, err: err}
	}
}

// model is the interactive view: a rendered report, a list of renamed and
// rejected stubs, and the instruction window of the selected stub.
type model struct {
	report  viewport.Model
	stubs   list.Model
	listing viewport.Model
	spinner spinner.Model
	mode    viewMode
	path    string
	scan    tea.Cmd
	loading bool
	rep     *Report
	err     error
	width   int
	height  int
}

func newModel(path string, scan tea.Cmd) model {
	rvp := viewport.New()
	rvp.SetWidth(80)
	rvp.SetHeight(22)

	lvp := viewport.New()
	lvp.SetWidth(80)
	lvp.SetHeight(22)

	stubs := list.New([]list.Item{}, stubDelegate{}, 80, 22)
	stubs.SetShowStatusBar(false)
	stubs.SetFilteringEnabled(true)
	stubs.SetShowHelp(true)
	stubs.Title = "Stubs"
	stubs.Styles.Title = styles.ListName

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Selected

	m := model{
		report:  rvp,
		stubs:   stubs,
		listing: lvp,
		spinner: s,
		mode:    viewReport,
		path:    path,
		scan:    scan,
		loading: true,
		width:   80,
		height:  24,
	}
	m.updateReport()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.scan, m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case scanDoneMsg:
		m.loading = false
		m.rep, m.err = msg.rep, msg.err
		if m.rep != nil {
			m.updateStubs()
		}
		m.updateReport()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		m.updateReport()
		return m, cmd

	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width, m.height = msg.Width, msg.Height
			m.report.SetWidth(msg.Width)
			m.report.SetHeight(msg.Height - 2)
			m.stubs.SetWidth(msg.Width)
			m.stubs.SetHeight(msg.Height - 2)
			m.listing.SetWidth(msg.Width)
			m.listing.SetHeight(msg.Height - 2)
			m.updateReport()
		}

	case tea.KeyMsg:
		if m.mode == viewStubs && m.stubs.FilterState() == list.Filtering {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			break
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.mode = viewReport
			return m, nil
		case "s":
			if m.rep != nil {
				m.mode = viewStubs
			}
			return m, nil
		case "esc":
			if m.mode == viewListing {
				m.mode = viewStubs
				return m, nil
			}
		case "enter":
			if m.mode == viewStubs {
				if item, ok := m.stubs.SelectedItem().(stubItem); ok {
					m.openListing(item)
				}
				return m, nil
			}
		case "tab":
			switch {
			case m.rep == nil:
			case m.mode == viewReport:
				m.mode = viewStubs
			default:
				m.mode = viewReport
			}
			return m, nil
		}
	}

	switch m.mode {
	case viewStubs:
		m.stubs, cmd = m.stubs.Update(msg)
	case viewListing:
		m.listing, cmd = m.listing.Update(msg)
	default:
		m.report, cmd = m.report.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	var content, menu string
	switch m.mode {
	case viewStubs:
		content = m.stubs.View()
		menu = " Enter: instructions • R: report • Tab: cycle • Q: quit "
	case viewListing:
		content = m.listing.View()
		menu = " Esc: stubs • R: report • Q: quit "
	default:
		content = m.report.View()
		if m.rep != nil {
			menu = " S: stubs • Tab: cycle • Q: quit "
		} else {
			menu = " Q: quit "
		}
	}
	return content + "\n" + styles.Menu.Width(m.width).Render(menu)
}

func (m *model) updateReport() {
	var sb strings.Builder
	switch {
	case m.loading:
		fmt.Fprintf(&sb, "%s Scanning %s...", m.spinner.View(), m.path)
	case m.err != nil:
		sb.WriteString(styles.Warn.Render("scan failed: " + m.err.Error()))
	default:
		sb.WriteString(m.rep.Summary(true) + "\n")
		width := m.width
		if width <= 0 {
			width = 80
		}
		if r, err := styles.MarkdownRenderer(width - 2); err == nil {
			if out, err := r.Render(m.rep.Markdown(false)); err == nil {
				sb.WriteString(out)
			}
		}
	}
	m.report.SetContent(strings.TrimSuffix(sb.String(), "\n"))
}

func (m *model) updateStubs() {
	items := make([]list.Item, 0, len(m.rep.Stubs)+len(m.rep.Rejected))
	for _, e := range m.rep.Stubs {
		items = append(items, stubItem{entry: e})
	}
	for _, e := range m.rep.Rejected {
		items = append(items, stubItem{entry: e, rejected: true})
	}
	m.stubs.SetItems(items)
	m.stubs.Title = fmt.Sprintf("Stubs (%d renamed, %d rejected)", len(m.rep.Stubs), len(m.rep.Rejected))
}

// openListing shows the instruction window of item.
func (m *model) openListing(item stubItem) {
	e := item.entry
	head := styles.Title.Render(e.NewName)
	if item.rejected {
		head = styles.Warn.Render(e.Kind)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s\n\n", head, styles.Address.Render(e.Address), styles.Label.Render(cell(e.OldName)))
	if item.rejected {
		sb.WriteString(styles.Label.Render(e.Error) + "\n\n")
	}
	if len(e.insts) == 0 {
		sb.WriteString(styles.Label.Render("no instructions"))
	} else {
		sb.WriteString(colorize.Listing(e.insts, true))
	}

	m.listing.SetContent(sb.String())
	m.listing.GotoTop()
	m.mode = viewListing
}
