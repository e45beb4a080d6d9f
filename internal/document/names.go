package document

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Names is the naming store. It is safe for concurrent use.
type Names struct {
	mu    sync.RWMutex
	names map[uint64]string
}

// NewNames returns an empty naming store.
func NewNames() *Names {
	return &Names{names: make(map[uint64]string)}
}

// Set records name for addr, replacing any previous name.
func (n *Names) Set(addr uint64, name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.names[addr] = name
}

// Get returns the name recorded for addr.
func (n *Names) Get(addr uint64) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	name, ok := n.names[addr]
	return name, ok
}

// Len returns the number of named addresses.
func (n *Names) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.names)
}

// Entry is one address/name pair.
type Entry struct {
	Addr uint64
	Name string
}

// Entries returns all names sorted by address.
func (n *Names) Entries() []Entry {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]Entry, 0, len(n.names))
	for addr, name := range n.names {
		out = append(out, Entry{Addr: addr, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out
}

// WriteJSON writes the store as a JSON object keyed by hex address.
func (n *Names) WriteJSON(w io.Writer) error {
	m := make(map[string]string, n.Len())
	for _, e := range n.Entries() {
		m[fmt.Sprintf("%#x", e.Addr)] = e.Name
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("failed to encode names: %w", err)
	}
	return nil
}
