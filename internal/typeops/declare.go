package typeops

import (
	"fmt"
	"strings"

	"martianoff/matchcore/internal/types"
)

// Field is a declared attribute.
type Field struct {
	Name string
	Type string
}

// ClassSpec describes a user class. Type strings may refer to TypeParams.
type ClassSpec struct {
	Name       string
	TypeParams []string
	Bases      []string
	Fields     []Field
	Final      bool
	// NamedTuple makes the class a tuple whose items are the fields in order.
	// Its __match_args__ default to the field names.
	NamedTuple bool
	// MatchArgs declares __match_args__ as a tuple of string literals.
	MatchArgs []string
	// MatchArgsType declares __match_args__ with an arbitrary type instead,
	// for classes whose positional protocol is not literal.
	MatchArgsType string
}

// DeclareClass registers a class in the main module.
func (e *Env) DeclareClass(spec ClassSpec) (*types.Class, error) {
	class := &types.Class{
		FullName: QualifyName(spec.Name),
		Final:    spec.Final,
		Members:  make(map[string]types.Type),
	}
	object := e.instance(types.ObjectClassName)
	vars := make(map[string]types.Type, len(spec.TypeParams))
	for _, p := range spec.TypeParams {
		tv := &types.TypeVar{Name: p, UpperBound: object}
		class.TypeParams = append(class.TypeParams, tv)
		vars[p] = tv
	}
	if err := e.registry.Register(class); err != nil {
		return nil, err
	}

	for _, b := range spec.Bases {
		t, err := e.ParseWith(b, vars)
		if err != nil {
			return nil, fmt.Errorf("class %s: base %q: %w", spec.Name, b, err)
		}
		inst, ok := t.(*types.Instance)
		if !ok {
			return nil, fmt.Errorf("class %s: base %q is not a class", spec.Name, b)
		}
		if inst.Class.Final {
			return nil, fmt.Errorf("class %s: cannot inherit from final class %s", spec.Name, inst.Class.Name())
		}
		class.Bases = append(class.Bases, inst)
	}

	fieldTypes := make([]types.Type, 0, len(spec.Fields))
	for _, f := range spec.Fields {
		t, err := e.ParseWith(f.Type, vars)
		if err != nil {
			return nil, fmt.Errorf("class %s: field %s: %w", spec.Name, f.Name, err)
		}
		class.Members[f.Name] = t
		fieldTypes = append(fieldTypes, t)
	}

	matchArgs := spec.MatchArgs
	if spec.NamedTuple {
		class.Bases = append(class.Bases, e.instance(types.TupleClassName, e.Union(fieldTypes)))
		class.TupleType = types.NewTuple(fieldTypes, types.FillTypeVars(class))
		if matchArgs == nil {
			for _, f := range spec.Fields {
				matchArgs = append(matchArgs, f.Name)
			}
		}
	}
	if len(class.Bases) == 0 {
		class.Bases = []*types.Instance{object}
	}

	switch {
	case spec.MatchArgsType != "":
		t, err := e.ParseWith(spec.MatchArgsType, vars)
		if err != nil {
			return nil, fmt.Errorf("class %s: __match_args__: %w", spec.Name, err)
		}
		class.Members[types.MatchArgsName] = t
	case matchArgs != nil:
		class.Members[types.MatchArgsName] = e.MatchArgsTuple(matchArgs...)
	}
	return class, nil
}

// MatchArgsTuple builds the type of a literal __match_args__ tuple.
func (e *Env) MatchArgsTuple(names ...string) *types.Tuple {
	items := make([]types.Type, len(names))
	for i, n := range names {
		items[i] = e.Literal(n)
	}
	return types.NewTuple(items, e.instance(types.TupleClassName, e.instance(types.StrClassName)))
}

// DeclareAlias registers a type alias. An alias to a bare class name elides
// the class parameters; any other target carries explicit arguments.
func (e *Env) DeclareAlias(name, target string) (*types.Alias, error) {
	t, err := e.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("alias %s: %w", name, err)
	}
	alias := &types.Alias{Name: name, Target: t, NoArgs: !strings.Contains(target, "[")}
	if err := e.registry.Register(alias); err != nil {
		return nil, err
	}
	return alias, nil
}

// DeclareVar registers a value symbol that can appear as a class reference.
func (e *Env) DeclareVar(name, typ string) (*types.Var, error) {
	t, err := e.Parse(typ)
	if err != nil {
		return nil, fmt.Errorf("var %s: %w", name, err)
	}
	v := &types.Var{Name: name, Type: t}
	if err := e.registry.Register(v); err != nil {
		return nil, err
	}
	return v, nil
}
