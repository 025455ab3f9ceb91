// Package pattern defines the closed set of structural patterns shared by the
// type engine and the lowering engine.
package pattern

import (
	"martianoff/matchcore/internal/types"
)

// Pos is a source position.
type Pos struct {
	Line   int
	Column int
}

// Position returns the position itself so that Pos can be embedded.
func (p Pos) Position() Pos {
	return p
}

// Pattern is one node of the pattern tree. The set of implementations is
// closed: Binding, Alternation, Value, Singleton, Sequence, Gather, Mapping
// and Class.
type Pattern interface {
	Position() Pos
	patternNode()
}

// Binding binds Target to the subject once Inner (if any) matched.
// A Binding with neither Target nor Inner is the wildcard.
type Binding struct {
	Pos
	Target *Target
	Inner  Pattern
}

// Alternation matches if any branch matches, tried left to right.
type Alternation struct {
	Pos
	Branches []Pattern
}

// Value matches a subject equal to Expr.
type Value struct {
	Pos
	Expr Expr
}

// SingletonKind selects the singleton compared by identity.
type SingletonKind int

const (
	SingletonNone SingletonKind = iota
	SingletonTrue
	SingletonFalse
)

func (k SingletonKind) String() string {
	switch k {
	case SingletonTrue:
		return "True"
	case SingletonFalse:
		return "False"
	default:
		return "None"
	}
}

// Singleton matches True, False or None by identity.
type Singleton struct {
	Pos
	Value SingletonKind
}

// Sequence matches a sequence item by item. At most one item is a Gather.
type Sequence struct {
	Pos
	Items []Pattern
}

// Gather collects the unmatched middle of a sequence. It is only valid as a
// direct child of Sequence. Target is nil for "*_".
type Gather struct {
	Pos
	Target *Target
}

// Mapping matches keys of a mapping subject. Rest binds the remaining items.
type Mapping struct {
	Pos
	Keys   []Expr
	Values []Pattern
	Rest   *Target
}

// ClassRef is the class named by a class pattern. Node is nil when the name
// failed to resolve.
type ClassRef struct {
	Name string
	Node types.Symbol
}

// Class matches instances of Ref and decomposes them positionally (through
// __match_args__) and by keyword.
type Class struct {
	Pos
	Ref           *ClassRef
	Positionals   []Pattern
	KeywordKeys   []string
	KeywordValues []Pattern
}

func (*Binding) patternNode()     {}
func (*Alternation) patternNode() {}
func (*Value) patternNode()       {}
func (*Singleton) patternNode()   {}
func (*Sequence) patternNode()    {}
func (*Gather) patternNode()      {}
func (*Mapping) patternNode()     {}
func (*Class) patternNode()       {}

// IsWildcard reports whether p is "_".
func IsWildcard(p Pattern) bool {
	b, ok := p.(*Binding)
	return ok && b.Target == nil && b.Inner == nil
}

// SplitGather separates the gather of a sequence pattern from its other
// items. star is -1 if there is no gather.
func SplitGather(seq *Sequence) (star int, capture *Target, items []Pattern) {
	star = -1
	for i, item := range seq.Items {
		if g, ok := item.(*Gather); ok {
			star = i
			capture = g.Target
			continue
		}
		items = append(items, item)
	}
	return star, capture, items
}
