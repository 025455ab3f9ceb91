// Package types holds the static type model consumed by the pattern engines.
//
// The engines only inspect a few shapes directly (Never, Union, Tuple with
// an optional variadic Unpack slot, Instance, TypeVar, Any). Everything else,
// subtyping and narrowing included, is answered by the type algebra.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Type represents a static type.
type Type interface {
	fmt.Stringer
	typeNode()
}

// Never is the uninhabited type.
type Never struct{}

func (*Never) typeNode()      {}
func (*Never) String() string { return "Never" }

// Any is the dynamic type. FromError marks an Any substituted after a
// reported or swallowed lookup failure.
type Any struct {
	FromError bool
}

func (*Any) typeNode()      {}
func (*Any) String() string { return "Any" }

// None is the type of the None singleton.
type None struct{}

func (*None) typeNode()      {}
func (*None) String() string { return "None" }

// Instance is a nominal type: a class applied to type arguments.
type Instance struct {
	Class *Class
	Args  []Type
	// LastKnown is the literal value an expression of this type is known to
	// hold, if any. It does not take part in subtyping.
	LastKnown *Literal
}

func (*Instance) typeNode() {}

func (t *Instance) String() string {
	name := t.Class.Name()
	if len(t.Args) == 0 {
		return name
	}
	if t.Class.FullName == TupleClassName && len(t.Args) == 1 {
		return fmt.Sprintf("tuple[%s, ...]", t.Args[0])
	}
	return fmt.Sprintf("%s[%s]", name, joinTypes(t.Args, ", "))
}

// Bytes marks a bytes literal value.
type Bytes string

// Literal is a literal-valued type such as Literal[1] or Literal['a'].
// Value is an int64, string, bool or Bytes.
type Literal struct {
	Value    any
	Fallback *Instance
}

func (*Literal) typeNode() {}

func (t *Literal) String() string {
	return fmt.Sprintf("Literal[%s]", literalValueString(t.Value))
}

func literalValueString(v any) string {
	switch v := v.(type) {
	case bool:
		if v {
			return "True"
		}
		return "False"
	case string:
		return "'" + v + "'"
	case Bytes:
		return "b'" + string(v) + "'"
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

// Union is a union of types. Construction through the type algebra keeps it
// flat and simplified; a Union built by hand may not be.
type Union struct {
	Items []Type
}

func (*Union) typeNode() {}

func (t *Union) String() string {
	return joinTypes(t.Items, " | ")
}

// Tuple is a fixed-shape tuple. At most one item is an *Unpack (variadic
// slot). Fallback is the partial fallback instance (builtins.tuple or a
// named-tuple class).
type Tuple struct {
	Items    []Type
	Fallback *Instance
}

func (*Tuple) typeNode() {}

func (t *Tuple) String() string {
	var sb strings.Builder
	sb.WriteString("tuple[")
	if len(t.Items) == 0 {
		sb.WriteString("()")
	} else {
		sb.WriteString(joinTypes(t.Items, ", "))
	}
	if t.Fallback != nil && t.Fallback.Class.FullName != TupleClassName {
		sb.WriteString(", fallback=")
		sb.WriteString(t.Fallback.Class.Name())
	}
	sb.WriteByte(']')
	return sb.String()
}

// UnpackIndex returns the position of the variadic slot, or -1.
func (t *Tuple) UnpackIndex() int {
	return FindUnpack(t.Items)
}

// Unpack is the variadic slot of a tuple. Inner is either a builtins.tuple
// instance with one argument or a *TypeVarTuple.
type Unpack struct {
	Inner Type
}

func (*Unpack) typeNode() {}

func (t *Unpack) String() string {
	return "*" + t.Inner.String()
}

// TypeVar is a type parameter with an upper bound.
type TypeVar struct {
	Name       string
	UpperBound Type
}

func (*TypeVar) typeNode()        {}
func (t *TypeVar) String() string { return t.Name }

// TypeVarTuple is a variadic type parameter. UpperBound is a builtins.tuple
// instance.
type TypeVarTuple struct {
	Name       string
	UpperBound *Instance
}

func (*TypeVarTuple) typeNode()        {}
func (t *TypeVarTuple) String() string { return t.Name }

// TypedDict is a mapping with a fixed set of string keys.
type TypedDict struct {
	Name     string
	Keys     []string
	Items    map[string]Type
	Fallback *Instance
}

func (*TypedDict) typeNode() {}

func (t *TypedDict) String() string {
	if t.Name != "" {
		return t.Name
	}
	parts := make([]string, len(t.Keys))
	for i, k := range t.Keys {
		parts[i] = fmt.Sprintf("'%s': %s", k, t.Items[k])
	}
	return fmt.Sprintf("TypedDict({%s})", strings.Join(parts, ", "))
}

func joinTypes(ts []Type, sep string) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		if t == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = t.String()
	}
	return strings.Join(parts, sep)
}

// NewNever returns the uninhabited type.
func NewNever() Type { return &Never{} }

// NewAny returns the dynamic type.
func NewAny() Type { return &Any{} }

// NewErrorAny returns an Any marking a failed lookup.
func NewErrorAny() Type { return &Any{FromError: true} }

// NewTuple builds a tuple reusing a partial fallback.
func NewTuple(items []Type, fallback *Instance) *Tuple {
	return &Tuple{Items: items, Fallback: fallback}
}

// IsNever reports whether t is the uninhabited type.
func IsNever(t Type) bool {
	_, ok := t.(*Never)
	return ok
}

// IsAny reports whether t is the dynamic type.
func IsAny(t Type) bool {
	_, ok := t.(*Any)
	return ok
}

// FindUnpack returns the index of the first *Unpack in items, or -1.
func FindUnpack(items []Type) int {
	for i, it := range items {
		if _, ok := it.(*Unpack); ok {
			return i
		}
	}
	return -1
}

// UnpackedElement returns T for an unpack of tuple[T, ...].
func UnpackedElement(u *Unpack) (Type, bool) {
	inst, ok := u.Inner.(*Instance)
	if !ok || inst.Class.FullName != TupleClassName || len(inst.Args) != 1 {
		return nil, false
	}
	return inst.Args[0], true
}

// UnionItems returns the members of t if it is a union, otherwise t itself.
func UnionItems(t Type) []Type {
	if u, ok := t.(*Union); ok {
		return u.Items
	}
	return []Type{t}
}

// IsUninhabited reports whether no value has type t: Never itself, a tuple
// with an uninhabited item, or a union of uninhabited items.
func IsUninhabited(t Type) bool {
	switch t := t.(type) {
	case *Never:
		return true
	case *Tuple:
		for _, it := range t.Items {
			if _, ok := it.(*Unpack); !ok && IsUninhabited(it) {
				return true
			}
		}
	case *Union:
		for _, it := range t.Items {
			if !IsUninhabited(it) {
				return false
			}
		}
		return true
	}
	return false
}
