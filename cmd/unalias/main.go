package main

import (
	"log/slog"
	"net/http"

	_ "net/http/pprof" // profiling

	"unalias/internal/config"
	"unalias/internal/unalias/cmd"
	"unalias/internal/unalias/log"
)

const pprofAddr = "localhost:6060"

func main() {
	defer log.RecoverPanic("main", func() {
		slog.Error("Application terminated due to unhandled panic")
	})

	// config errors are reported by the command itself
	if cfg, err := config.Load(); err == nil && cfg.Profile {
		go servePprof()
	}

	cmd.Execute()
}

func servePprof() {
	defer log.RecoverPanic("pprof", nil)
	slog.Info("Serving pprof", "addr", pprofAddr)
	if err := http.ListenAndServe(pprofAddr, nil); err != nil {
		slog.Error("Failed to pprof listen", "error", err)
	}
}
