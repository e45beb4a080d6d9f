package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	pathpkg "path/filepath"
	"runtime/pprof"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"unalias/internal/analysis"
	"unalias/internal/config"
	"unalias/internal/document"
	"unalias/internal/logging"
	"unalias/internal/machox"
	ulog "unalias/internal/unalias/log"
)

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")
	rootCmd.PersistentFlags().StringP("arch", "a", "", "Slice to analyze in a universal binary (default: first arm64 slice)")
	rootCmd.PersistentFlags().StringP("segment", "s", "", "Segment to scan (default __TEXT)")
	rootCmd.PersistentFlags().StringP("prefix", "p", "", "Prefix for renamed stubs (default ALIAS__)")
	rootCmd.PersistentFlags().BoolP("dry-run", "n", false, "Report alias stubs without writing names")
	rootCmd.PersistentFlags().StringP("names-out", "o", "", "Write the address to name map as JSON to this file")

	rootCmd.Flags().BoolP("help", "h", false, "Help")
	rootCmd.Flags().BoolP("full", "f", false, "Show the instruction window of every renamed stub")
	rootCmd.Flags().BoolP("json", "j", false, "Output results as JSON")
	rootCmd.Flags().Bool("no-color", false, "Disable colors and markdown rendering")
	rootCmd.Flags().Bool("no-tui", false, "Print the report instead of starting the interactive view")
	rootCmd.Flags().String("cpuprofile", "", "Write CPU profile to file")

	rootCmd.AddCommand(runCmd)
}

var rootCmd = &cobra.Command{
	Use:   "unalias [file]",
	Short: "Rename Objective-C alias stubs in arm64 Mach-O binaries",
	Long: `Unalias finds the small stub procedures that load an Objective-C selector
reference and jump through it, resolves the selector each one calls, and names
the stub after it (ALIAS__<selector>).`,
	Example: `
# Scan a binary and print a report
unalias /path/to/binary

# Pick a slice of a universal binary and save the names
unalias -a arm64e -o names.json /path/to/binary

# Print the report without the interactive view
unalias --no-tui /path/to/binary

# Machine-readable output
unalias --json /path/to/binary
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cpuprofile, _ := cmd.Flags().GetString("cpuprofile")
		if cpuprofile != "" {
			f, err := os.Create(cpuprofile)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %v", err)
			}
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("could not start CPU profile: %v", err)
			}
			defer pprof.StopCPUProfile()
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		opts := scanOptions{Config: cfg}
		opts.DryRun, _ = cmd.Flags().GetBool("dry-run")
		opts.NamesOut, _ = cmd.Flags().GetString("names-out")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Render.Full, _ = cmd.Flags().GetBool("full")

		tty := term.IsTerminal(os.Stdout.Fd())
		noColor, _ := cmd.Flags().GetBool("no-color")
		opts.Render.Color = !noColor && !cfg.NoColor && tty
		if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil {
			opts.Render.Width = w
		}

		noTUI, _ := cmd.Flags().GetBool("no-tui")
		if noTUI || opts.JSON || !tty {
			return runFile(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		}

		// stderr belongs to the alternate screen while the TUI runs
		if !cfg.LogToFile {
			opts.Logger = log.New(io.Discard)
		}
		program := tea.NewProgram(
			newModel(args[0], scanFileCmd(cmd.Context(), args[0], opts)),
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
		)
		final, err := program.Run()
		if err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("TUI error: %v", err)
		}
		if m, ok := final.(model); ok && m.err != nil {
			return m.err
		}
		return nil
	},
}

// loadConfig reads the environment and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if debug, _ := flags.GetBool("debug"); debug {
		cfg.LogLevel = "debug"
	}
	if v, _ := flags.GetString("arch"); v != "" {
		cfg.Arch = v
	}
	if v, _ := flags.GetString("segment"); v != "" {
		cfg.Segment = v
	}
	if v, _ := flags.GetString("prefix"); v != "" {
		cfg.Prefix = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ulog.Setup(os.Stderr, cfg.Debug())
	return cfg, nil
}

// scanOptions carry everything a scan needs besides the input file.
type scanOptions struct {
	Config   *config.Config
	DryRun   bool
	NamesOut string
	JSON     bool
	Quiet    bool // list renamed stubs only
	Render   renderOptions
	Logger   *log.Logger // default built from Config
}

// runFile opens path, scans it and writes the report to w.
func runFile(ctx context.Context, w io.Writer, path string, opts scanOptions) error {
	rep, err := scanFile(ctx, path, opts)
	if err != nil {
		return err
	}
	return writeOutput(w, rep, opts)
}

// scanFile opens path, loads the selected slice and scans it.
func scanFile(ctx context.Context, path string, opts scanOptions) (*Report, error) {
	absPath, err := pathpkg.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %v", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("cannot access file: %v", err)
	}

	if opts.Logger == nil {
		lc := logging.NewLogger(opts.Config)
		defer lc.Close()
		opts.Logger = lc.Logger
	}

	im, err := machox.Open(absPath, opts.Config.Arch)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer im.Close()

	doc, _, err := im.Load(machox.LoadOptions{Logger: opts.Logger})
	if err != nil {
		return nil, err
	}
	if entries, hits := machox.DemangleStats(); entries > 0 {
		opts.Logger.Debug("demangle cache", "entries", entries, "hits", hits)
	}
	return scanDocument(ctx, doc, absPath, im.Arch, opts)
}

// scanDocument runs the scanner over doc and saves the name map when asked.
func scanDocument(ctx context.Context, doc *document.Memory, path, arch string, opts scanOptions) (*Report, error) {
	s := analysis.NewScanner(doc, analysis.Options{
		Prefix: opts.Config.Prefix,
		DryRun: opts.DryRun,
		Logger: opts.Logger,
	})
	res, err := s.Scan(ctx, opts.Config.Segment)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	if opts.NamesOut != "" && !opts.DryRun {
		if err := writeNames(doc.Names, opts.NamesOut); err != nil {
			return nil, err
		}
		opts.Logger.Info("wrote names", "file", opts.NamesOut, "count", doc.Names.Len())
	}
	return NewReport(path, arch, res, opts.DryRun), nil
}

func writeNames(names *document.Names, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := names.WriteJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeOutput(w io.Writer, rep *Report, opts scanOptions) error {
	switch {
	case opts.JSON:
		return rep.WriteJSON(w)
	case opts.Quiet:
		return writeNameLines(w, rep)
	}
	return rep.Render(w, opts.Render)
}

func Execute() {
	// Bypass fang's styled output for machine-readable or piped output
	plain := !term.IsTerminal(os.Stdout.Fd())
	for _, arg := range os.Args[1:] {
		if arg == "--json" || arg == "-j" {
			plain = true
			break
		}
	}

	if plain {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
