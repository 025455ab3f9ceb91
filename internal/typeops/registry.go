// Package typeops is a reference implementation of the type algebra the
// pattern engines consult: a class registry seeded with the builtin classes,
// subtyping, narrowing, joins and member lookup.
//
// It is deliberately small. It covers what fixtures and tests need and is
// not a general-purpose type checker.
package typeops

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"martianoff/matchcore/internal/types"
)

// MainModule is the module that user-declared classes live in.
const MainModule = "__main__"

// Registry manages known symbols and resolves them by qualified or
// unqualified name.
//
// Thread-safe: all methods can be called concurrently.
type Registry struct {
	mu sync.RWMutex

	// symbols maps qualified names to symbols
	symbols map[string]types.Symbol

	// shortIndex maps unqualified names to the first symbol registered under them
	shortIndex map[string]types.Symbol
}

// NewRegistry creates an empty registry. Use NewBuiltinRegistry for one
// seeded with the builtin classes.
func NewRegistry() *Registry {
	return &Registry{
		symbols:    make(map[string]types.Symbol),
		shortIndex: make(map[string]types.Symbol),
	}
}

// Register adds a symbol. Registering a qualified name twice is an error.
func (r *Registry) Register(sym types.Symbol) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := sym.SymbolName()
	if _, exists := r.symbols[name]; exists {
		return &ConflictError{Name: name}
	}
	r.symbols[name] = sym
	short := shortName(name)
	if _, taken := r.shortIndex[short]; !taken {
		r.shortIndex[short] = sym
	}
	return nil
}

// LookupSymbol resolves a qualified name first, then an unqualified one.
func (r *Registry) LookupSymbol(name string) (types.Symbol, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if sym, ok := r.symbols[name]; ok {
		return sym, true
	}
	sym, ok := r.shortIndex[name]
	return sym, ok
}

// Class returns the class registered under name, or nil.
func (r *Registry) Class(name string) *types.Class {
	sym, ok := r.LookupSymbol(name)
	if !ok {
		return nil
	}
	c, _ := sym.(*types.Class)
	return c
}

// Names returns every qualified name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, 0, len(r.symbols))
	for name := range r.symbols {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// ConflictError is returned when a qualified name is registered twice.
type ConflictError struct {
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("symbol '%s' is already registered", e.Name)
}

// QualifyName places an unqualified user name in the main module.
func QualifyName(name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	return MainModule + "." + name
}

func shortName(name string) string {
	if idx := strings.LastIndex(name, "."); idx != -1 {
		return name[idx+1:]
	}
	return name
}
