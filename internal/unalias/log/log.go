// Package log routes the process-wide slog default through charmbracelet/log
// and recovers panics at goroutine boundaries.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	charmlog "github.com/charmbracelet/log"
)

var (
	setupOnce sync.Once
	ready     atomic.Bool
)

// Setup makes a charmbracelet logger on w the slog default. Only the first
// call has an effect.
func Setup(w io.Writer, verbose bool) {
	setupOnce.Do(func() {
		h := charmlog.NewWithOptions(w, charmlog.Options{
			Level:        charmlog.InfoLevel,
			Prefix:       "unalias",
			ReportCaller: verbose,
		})
		if verbose {
			h.SetLevel(charmlog.DebugLevel)
		}
		slog.SetDefault(slog.New(h))
		ready.Store(true)
	})
}

func Initialized() bool {
	return ready.Load()
}

// RecoverPanic logs a panic in the named goroutine with its stack and runs
// cleanup. It must be deferred directly.
func RecoverPanic(name string, cleanup func()) {
	r := recover()
	if r == nil {
		return
	}
	if ready.Load() {
		slog.Error("panic recovered",
			"goroutine", name,
			"panic", fmt.Sprint(r),
			"stack", string(debug.Stack()))
	}
	if cleanup != nil {
		cleanup()
	}
}
