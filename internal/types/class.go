package types

import "strings"

// Qualified names of the builtin classes the engines refer to.
const (
	ObjectClassName    = "builtins.object"
	IntClassName       = "builtins.int"
	BoolClassName      = "builtins.bool"
	FloatClassName     = "builtins.float"
	StrClassName       = "builtins.str"
	BytesClassName     = "builtins.bytes"
	ByteArrayClassName = "builtins.bytearray"
	ListClassName      = "builtins.list"
	TupleClassName     = "builtins.tuple"
	DictClassName      = "builtins.dict"
	SetClassName       = "builtins.set"
	FrozenSetClassName = "builtins.frozenset"
	IterableClassName  = "typing.Iterable"
	SequenceClassName  = "typing.Sequence"
	MappingClassName   = "typing.Mapping"
)

// MatchArgsName is the member holding the ordered positional-argument names
// of a class pattern.
const MatchArgsName = "__match_args__"

// Symbol is what a class reference in a class pattern resolves to.
type Symbol interface {
	SymbolName() string
	symbolNode()
}

// Class describes a nominal class.
type Class struct {
	FullName   string
	TypeParams []*TypeVar
	Bases      []*Instance
	// Members maps attribute names to their declared types. Types may refer
	// to TypeParams.
	Members map[string]Type
	Final   bool
	// TupleType is set for named-tuple classes.
	TupleType *Tuple
}

func (*Class) symbolNode() {}

// SymbolName returns the qualified name.
func (c *Class) SymbolName() string {
	return c.FullName
}

// Name returns the unqualified class name.
func (c *Class) Name() string {
	if idx := strings.LastIndex(c.FullName, "."); idx != -1 {
		return c.FullName[idx+1:]
	}
	return c.FullName
}

// IsBuiltin reports whether the class lives in the builtins module.
func (c *Class) IsBuiltin() bool {
	return strings.HasPrefix(c.FullName, "builtins.")
}

// MRO returns the class followed by its ancestors, depth-first, without
// repeats.
func (c *Class) MRO() []*Class {
	var out []*Class
	seen := make(map[*Class]bool)
	var walk func(k *Class)
	walk = func(k *Class) {
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, k)
		for _, b := range k.Bases {
			walk(b.Class)
		}
	}
	walk(c)
	return out
}

// HasBase reports whether other appears in the MRO of c.
func (c *Class) HasBase(other *Class) bool {
	for _, k := range c.MRO() {
		if k == other {
			return true
		}
	}
	return false
}

// Lookup finds a member along the MRO and returns its declared type together
// with the declaring class.
func (c *Class) Lookup(name string) (Type, *Class, bool) {
	for _, k := range c.MRO() {
		if t, ok := k.Members[name]; ok {
			return t, k, true
		}
	}
	return nil, nil, false
}

// Alias is a named type alias. NoArgs is false for a generic alias whose
// parameters were not supplied at the use site.
type Alias struct {
	Name   string
	Target Type
	NoArgs bool
}

func (*Alias) symbolNode() {}

// SymbolName returns the alias name.
func (a *Alias) SymbolName() string {
	return a.Name
}

// Var is a variable symbol. A class pattern accepts it only when its type is Any.
type Var struct {
	Name string
	Type Type
}

func (*Var) symbolNode() {}

// SymbolName returns the variable name.
func (v *Var) SymbolName() string {
	return v.Name
}

// FillWithAny instantiates c with Any for every type parameter. Named tuple
// classes yield their tuple type.
func FillWithAny(c *Class) Type {
	if c.TupleType != nil {
		return c.TupleType
	}
	args := make([]Type, len(c.TypeParams))
	for i := range args {
		args[i] = NewAny()
	}
	return &Instance{Class: c, Args: args}
}

// FillTypeVars instantiates c with its own type parameters.
func FillTypeVars(c *Class) *Instance {
	args := make([]Type, len(c.TypeParams))
	for i, tv := range c.TypeParams {
		args[i] = tv
	}
	return &Instance{Class: c, Args: args}
}

// MapToSupertype views inst as an instance of super, substituting type
// arguments along the base chain. It returns nil if super is not an ancestor.
func MapToSupertype(inst *Instance, super *Class) *Instance {
	if inst.Class == super {
		return inst
	}
	sub := BindArgs(inst.Class, inst.Args)
	for _, base := range inst.Class.Bases {
		mapped := sub.Apply(base).(*Instance)
		if found := MapToSupertype(mapped, super); found != nil {
			return found
		}
	}
	return nil
}
