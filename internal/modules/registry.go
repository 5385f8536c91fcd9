package modules

import (
	"sort"
	"sync"
)

// registry holds modules any interpreter in the process may import by name.
//
// Thread-safe: modules are usually registered once at startup, then looked
// up from many interpreters.
var registry = struct {
	mu      sync.RWMutex
	modules map[string]*Module
}{
	modules: make(map[string]*Module),
}

// Register makes m importable by name. A module of the same name is replaced.
func Register(m *Module) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.modules[m.Name()] = m
}

// Lookup returns the registered module called name, or nil.
func Lookup(name string) *Module {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return registry.modules[name]
}

// Unregister removes the module called name and reports whether it existed.
func Unregister(name string) bool {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	_, ok := registry.modules[name]
	delete(registry.modules, name)
	return ok
}

// Registered returns the names of all registered modules, sorted.
func Registered() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	names := make([]string, 0, len(registry.modules))
	for name := range registry.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClearRegistry removes all registered modules.
// Used for testing.
func ClearRegistry() {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.modules = make(map[string]*Module)
}
