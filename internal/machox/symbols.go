package machox

import (
	"sync"

	"github.com/blacktop/go-macho"
	"github.com/ianlancetaylor/demangle"
)

// demangleCache memoizes demangled symbol names. Stub symbols repeat the
// same selector across many images, so hits are common.
type demangleCache struct {
	mu    sync.RWMutex
	names map[string]string
	hits  int
}

var cache = &demangleCache{names: make(map[string]string)}

// Demangle returns the demangled form of a C++ or Rust symbol, or the name
// unchanged when it is not mangled.
func Demangle(mangled string) string {
	cache.mu.RLock()
	if d, ok := cache.names[mangled]; ok {
		cache.mu.RUnlock()
		cache.mu.Lock()
		cache.hits++
		cache.mu.Unlock()
		return d
	}
	cache.mu.RUnlock()

	d := demangle.Filter(mangled, demangle.NoClones)

	cache.mu.Lock()
	cache.names[mangled] = d
	cache.mu.Unlock()
	return d
}

// DemangleStats returns the number of cached names and cache hits.
func DemangleStats() (entries, hits int) {
	cache.mu.RLock()
	defer cache.mu.RUnlock()
	return len(cache.names), cache.hits
}

// symbolizer resolves addresses to symbol names, memoizing lookups.
type symbolizer struct {
	m     *macho.File
	names map[uint64]string
}

func newSymbolizer(m *macho.File) *symbolizer {
	return &symbolizer{m: m, names: make(map[uint64]string)}
}

// lookup returns the demangled symbol at addr, or "" when there is none.
func (s *symbolizer) lookup(addr uint64) string {
	if name, ok := s.names[addr]; ok {
		return name
	}
	var name string
	if s.m.Symtab != nil {
		if syms, err := s.m.FindAddressSymbols(addr); err == nil {
			for _, sym := range syms {
				if len(sym.Name) > 0 {
					name = Demangle(sym.Name)
					break
				}
			}
		}
	}
	s.names[addr] = name
	return name
}
