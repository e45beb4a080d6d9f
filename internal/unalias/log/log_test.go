package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestRecoverPanic(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, false)
	if !Initialized() {
		t.Fatal("Setup did not initialize")
	}

	cleaned := false
	func() {
		defer RecoverPanic("worker", func() { cleaned = true })
		panic("boom")
	}()

	if !cleaned {
		t.Error("cleanup not run")
	}
	if out := buf.String(); !strings.Contains(out, "panic recovered") || !strings.Contains(out, "goroutine=worker") || !strings.Contains(out, "boom") {
		t.Errorf("panic not logged: %q", out)
	}
}

func TestRecoverPanicNoPanic(t *testing.T) {
	called := false
	func() {
		defer RecoverPanic("quiet", func() { called = true })
	}()
	if called {
		t.Error("cleanup ran without a panic")
	}
}
