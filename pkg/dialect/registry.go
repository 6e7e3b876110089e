package dialect

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// DefaultName is the dialect used when none is configured.
const DefaultName = "ansi"

// ErrUnknownDialect is returned by Lookup for unregistered dialect names.
var ErrUnknownDialect = errors.New("unknown dialect")

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Dialect)
)

// Register makes a dialect available by name.
// Called by dialect implementations in their init() functions.
func Register(d *Dialect) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Name] = d
}

// Get returns a registered dialect by name.
func Get(name string) (*Dialect, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[name]
	return d, ok
}

// Lookup is Get with a descriptive error listing the known dialects.
func Lookup(name string) (*Dialect, error) {
	if name == "" {
		name = DefaultName
	}
	if d, ok := Get(name); ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownDialect, name, List())
}

// List returns the names of all registered dialects, sorted.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
