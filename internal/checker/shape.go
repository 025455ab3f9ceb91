package checker

import (
	"golang.org/x/exp/slices"

	"martianoff/matchcore/internal/types"
)

// Shape reshapes the per-position item types of a sequence around the gather
// position of a sequence pattern. star is the gather position, or -1.
type Shape struct {
	oracle Oracle
}

// Contract maps items onto the positions of a pattern with required
// non-gather sub-patterns. Each non-gather position keeps its own item type;
// the gather position gets the union of the items it spans. A variadic slot
// contributes its element type.
func (s Shape) Contract(items []types.Type, star, required int) []types.Type {
	if idx := types.FindUnpack(items); idx != -1 {
		elem := unpackElement(items[idx])
		if star < 0 {
			missing := required - len(items) + 1
			out := slices.Clone(items[:idx])
			for i := 0; i < missing; i++ {
				out = append(out, elem)
			}
			return append(out, items[idx+1:]...)
		}
		prefix, middle, suffix := splitAround(items, idx, star, required-star)
		folded := make([]types.Type, len(middle))
		for i, m := range middle {
			if _, ok := m.(*types.Unpack); ok {
				folded[i] = elem
			} else {
				folded[i] = m
			}
		}
		out := append(slices.Clone(prefix), s.oracle.Union(folded))
		return append(out, suffix...)
	}

	if star < 0 {
		return items
	}
	span := len(items) - required
	out := slices.Clone(items[:star])
	out = append(out, s.oracle.Union(items[star:star+span]))
	return append(out, items[star+span:]...)
}

// Expand undoes Contract for originalCount items. The gather type is
// repeated over the positions it spanned, or re-wrapped as a variadic slot
// when the original had one.
func (s Shape) Expand(items []types.Type, star, originalCount int, hadUnpack bool) []types.Type {
	if star < 0 {
		return items
	}
	if hadUnpack {
		out := slices.Clone(items)
		inner, err := s.oracle.NamedGeneric(types.TupleClassName, []types.Type{items[star]})
		if err != nil {
			out[star] = &types.Unpack{Inner: types.NewErrorAny()}
		} else {
			out[star] = &types.Unpack{Inner: inner}
		}
		return out
	}
	span := originalCount - len(items) + 1
	out := slices.Clone(items[:star])
	for i := 0; i < span; i++ {
		out = append(out, items[star])
	}
	return append(out, items[star+1:]...)
}

// splitAround splits items into prefix, middle and suffix of the requested
// lengths, first repeating the variadic slot's element at idx where the
// fixed items cannot fill the prefix or suffix.
func splitAround(items []types.Type, idx, prefix, suffix int) ([]types.Type, []types.Type, []types.Type) {
	before, after := idx, len(items)-idx-1
	if before < prefix || after < suffix {
		elem := unpackElement(items[idx])
		grown := slices.Clone(items[:idx])
		for i := before; i < prefix; i++ {
			grown = append(grown, elem)
		}
		grown = append(grown, items[idx])
		for i := after; i < suffix; i++ {
			grown = append(grown, elem)
		}
		items = append(grown, items[idx+1:]...)
	}
	end := len(items) - suffix
	return items[:prefix], items[prefix:end], items[end:]
}

func unpackElement(t types.Type) types.Type {
	u, ok := t.(*types.Unpack)
	if !ok {
		return t
	}
	if elem, ok := types.UnpackedElement(u); ok {
		return elem
	}
	return types.NewAny()
}

// normalizeUnpack replaces a variadic type-variable slot by its tuple upper
// bound, since it cannot be split into positions.
func normalizeUnpack(items []types.Type) []types.Type {
	out := make([]types.Type, len(items))
	for i, it := range items {
		if u, ok := it.(*types.Unpack); ok {
			if tvt, ok := u.Inner.(*types.TypeVarTuple); ok && tvt.UpperBound != nil {
				out[i] = &types.Unpack{Inner: tvt.UpperBound}
				continue
			}
		}
		out[i] = it
	}
	return out
}
