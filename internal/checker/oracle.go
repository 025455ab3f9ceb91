package checker

import (
	"martianoff/matchcore/internal/pattern"
	"martianoff/matchcore/internal/types"
)

// Oracle is the type algebra the checker consults. Implementations must be
// pure: the checker may ask the same question more than once.
type Oracle interface {
	IsSubtype(a, b types.Type) bool
	// Narrow splits typ by the candidate ranges into the type on match and
	// the type on non-match. def is the matched type when typ is fully
	// covered; nil means typ itself.
	Narrow(typ types.Type, ranges []types.TypeRange, def types.Type) (matched, rest types.Type)
	NarrowDeclared(declared, narrowed types.Type) types.Type
	Join(a, b types.Type) types.Type
	Union(items []types.Type) types.Type

	NamedType(name string) (types.Type, error)
	NamedGeneric(name string, args []types.Type) (*types.Instance, error)

	MemberType(name string, receiver, original types.Type) (types.Type, error)
	ItemType(receiver types.Type, key pattern.Expr) (types.Type, error)
	IterableElement(t types.Type) (types.Type, bool)
	ExprType(e pattern.Expr) types.Type
}

// bestEffort discards the error of a speculative lookup. The caller gets
// ok=false and decides on a fallback; nothing is reported.
func bestEffort(t types.Type, err error) (types.Type, bool) {
	if err != nil || t == nil {
		return nil, false
	}
	return t, true
}

// narrowTo narrows current against a single type.
func (c *Checker) narrowTo(current, target, def types.Type) (types.Type, types.Type) {
	return c.oracle.Narrow(current, []types.TypeRange{types.RangeOf(target)}, def)
}

func (c *Checker) namedGeneric(name string, args ...types.Type) types.Type {
	inst, err := c.oracle.NamedGeneric(name, args)
	if err != nil {
		return types.NewErrorAny()
	}
	return inst
}

func (c *Checker) named(name string) types.Type {
	t, err := c.oracle.NamedType(name)
	if err != nil {
		return types.NewErrorAny()
	}
	return t
}
