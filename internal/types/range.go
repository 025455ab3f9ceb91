package types

// TypeRange is a candidate type for narrowing. An upper-bound range only
// proves the subject is some subtype of Item, so nothing can be excluded
// from the negative branch.
type TypeRange struct {
	Item         Type
	IsUpperBound bool
}

// RangeOf builds an exact range for t. A bool instance with a known literal
// value is narrowed by that literal instead.
func RangeOf(t Type) TypeRange {
	if inst, ok := t.(*Instance); ok && inst.LastKnown != nil {
		if _, isBool := inst.LastKnown.Value.(bool); isBool {
			return TypeRange{Item: inst.LastKnown}
		}
	}
	return TypeRange{Item: t}
}
