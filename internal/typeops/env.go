package typeops

import (
	"fmt"

	"martianoff/matchcore/internal/pattern"
	"martianoff/matchcore/internal/types"
)

// Env is a typing environment: a class registry plus the types of value
// names referenced from patterns and guards.
type Env struct {
	registry *Registry
	parser   *types.Parser
	names    map[string]types.Type
}

// NewEnv creates an environment over the builtin classes.
func NewEnv() *Env {
	return NewEnvWithRegistry(NewBuiltinRegistry())
}

// NewEnvWithRegistry creates an environment over an existing registry.
func NewEnvWithRegistry(r *Registry) *Env {
	e := &Env{registry: r, names: make(map[string]types.Type)}
	e.parser = types.NewParser(r)
	return e
}

// Registry returns the class registry.
func (e *Env) Registry() *Registry {
	return e.registry
}

// LookupSymbol implements types.Resolver.
func (e *Env) LookupSymbol(name string) (types.Symbol, bool) {
	return e.registry.LookupSymbol(name)
}

// Parse parses a type expression against the registry. A top-level union
// comes back simplified.
func (e *Env) Parse(s string) (types.Type, error) {
	return e.simplifyParsed(e.parser.Parse(s))
}

// ParseWith parses a type expression with extra type variables in scope.
func (e *Env) ParseWith(s string, vars map[string]types.Type) (types.Type, error) {
	p := types.NewParser(e.registry)
	for k, v := range vars {
		p.TypeVars[k] = v
	}
	return e.simplifyParsed(p.Parse(s))
}

func (e *Env) simplifyParsed(t types.Type, err error) (types.Type, error) {
	if err != nil {
		return nil, err
	}
	if u, ok := t.(*types.Union); ok {
		return e.Union(u.Items), nil
	}
	return t, nil
}

// MustParse is Parse for tests and builtin setup. It panics on error.
func (e *Env) MustParse(s string) types.Type {
	t, err := e.Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// DeclareName records the static type of a value name.
func (e *Env) DeclareName(name string, t types.Type) {
	e.names[name] = t
}

// Class returns a registered class, or nil.
func (e *Env) Class(name string) *types.Class {
	return e.registry.Class(name)
}

// NamedType returns the class registered under a qualified name with every
// type parameter filled with Any.
func (e *Env) NamedType(name string) (types.Type, error) {
	c := e.registry.Class(name)
	if c == nil {
		return nil, fmt.Errorf("unknown class %q", name)
	}
	return types.FillWithAny(c), nil
}

// NamedGeneric instantiates the class registered under name with args.
func (e *Env) NamedGeneric(name string, args []types.Type) (*types.Instance, error) {
	c := e.registry.Class(name)
	if c == nil {
		return nil, fmt.Errorf("unknown class %q", name)
	}
	if len(args) != len(c.TypeParams) {
		return nil, fmt.Errorf("%s expects %d type arguments, got %d", c.Name(), len(c.TypeParams), len(args))
	}
	return &types.Instance{Class: c, Args: args}, nil
}

func (e *Env) instance(name string, args ...types.Type) *types.Instance {
	inst, err := e.NamedGeneric(name, args)
	if err != nil {
		panic(err)
	}
	return inst
}

// Literal builds a literal type for an int64, string, bool or Bytes value.
func (e *Env) Literal(v any) *types.Literal {
	lit, err := e.parser.Literal(v)
	if err != nil {
		panic(err)
	}
	return lit
}

// TupleFallback views a tuple as an instance: a named-tuple class instance
// or tuple[X, ...] over the union of the item types.
func (e *Env) TupleFallback(t *types.Tuple) *types.Instance {
	if t.Fallback != nil && t.Fallback.Class.FullName != types.TupleClassName {
		return t.Fallback
	}
	return e.instance(types.TupleClassName, e.tupleElement(t))
}

// tupleElement is the union of the item types, variadic slots included.
func (e *Env) tupleElement(t *types.Tuple) types.Type {
	items := make([]types.Type, 0, len(t.Items))
	for _, it := range t.Items {
		if u, ok := it.(*types.Unpack); ok {
			if elem, ok := types.UnpackedElement(u); ok {
				items = append(items, elem)
			} else {
				items = append(items, types.NewAny())
			}
			continue
		}
		items = append(items, it)
	}
	return e.Union(items)
}

func (e *Env) isBoolInstance(t types.Type) bool {
	inst, ok := t.(*types.Instance)
	return ok && inst.Class.FullName == types.BoolClassName
}

// expandBool rewrites bool as Literal[True] | Literal[False], inside unions too.
func (e *Env) expandBool(t types.Type) types.Type {
	if e.isBoolInstance(t) {
		return &types.Union{Items: []types.Type{e.Literal(true), e.Literal(false)}}
	}
	if u, ok := t.(*types.Union); ok {
		var items []types.Type
		changed := false
		for _, item := range u.Items {
			if e.isBoolInstance(item) {
				items = append(items, e.Literal(true), e.Literal(false))
				changed = true
				continue
			}
			items = append(items, item)
		}
		if changed {
			return &types.Union{Items: items}
		}
	}
	return t
}

// ExprType infers the type of a constant or a declared value name. Integer,
// string and bool constants keep their literal value. Unknown names are Any.
func (e *Env) ExprType(expr pattern.Expr) types.Type {
	switch x := expr.(type) {
	case *pattern.Const:
		switch v := x.Value.(type) {
		case nil:
			return &types.None{}
		case float64:
			return e.instance(types.FloatClassName)
		case int, int64, string, bool, types.Bytes:
			lit := e.Literal(v)
			return &types.Instance{Class: lit.Fallback.Class, LastKnown: lit}
		}
	case *pattern.Name:
		if t, ok := e.names[x.Name]; ok {
			return t
		}
	}
	return types.NewAny()
}
