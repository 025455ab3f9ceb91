package typeops

import "martianoff/matchcore/internal/types"

type builtinSpec struct {
	name   string
	params []string
	// bases refer to params by name; the first entry is the base class
	bases [][]string
	final bool
}

var builtinSpecs = []builtinSpec{
	{name: types.ObjectClassName},
	{name: types.IterableClassName, params: []string{"T"}, bases: [][]string{{types.ObjectClassName}}},
	{name: types.SequenceClassName, params: []string{"T"}, bases: [][]string{{types.IterableClassName, "T"}}},
	{name: types.MappingClassName, params: []string{"K", "V"}, bases: [][]string{{types.IterableClassName, "K"}}},
	{name: types.IntClassName, bases: [][]string{{types.ObjectClassName}}},
	{name: types.BoolClassName, bases: [][]string{{types.IntClassName}}, final: true},
	{name: types.FloatClassName, bases: [][]string{{types.ObjectClassName}}},
	{name: types.StrClassName, bases: [][]string{{types.SequenceClassName, types.StrClassName}}},
	{name: types.BytesClassName, bases: [][]string{{types.SequenceClassName, types.IntClassName}}},
	{name: types.ByteArrayClassName, bases: [][]string{{types.SequenceClassName, types.IntClassName}}},
	{name: types.ListClassName, params: []string{"T"}, bases: [][]string{{types.SequenceClassName, "T"}}},
	{name: types.TupleClassName, params: []string{"T"}, bases: [][]string{{types.SequenceClassName, "T"}}},
	{name: types.DictClassName, params: []string{"K", "V"}, bases: [][]string{{types.MappingClassName, "K", "V"}}},
	{name: types.SetClassName, params: []string{"T"}, bases: [][]string{{types.IterableClassName, "T"}}},
	{name: types.FrozenSetClassName, params: []string{"T"}, bases: [][]string{{types.IterableClassName, "T"}}},
}

// NewBuiltinRegistry creates a registry holding object, the numeric and
// string classes, the builtin containers and the typing protocols they
// implement.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	classes := make(map[string]*types.Class, len(builtinSpecs))
	for _, spec := range builtinSpecs {
		c := &types.Class{FullName: spec.name, Final: spec.final, Members: make(map[string]types.Type)}
		for _, p := range spec.params {
			c.TypeParams = append(c.TypeParams, &types.TypeVar{Name: p})
		}
		classes[spec.name] = c
	}

	object := classes[types.ObjectClassName]
	for _, spec := range builtinSpecs {
		c := classes[spec.name]
		params := make(map[string]types.Type, len(c.TypeParams))
		for _, tv := range c.TypeParams {
			tv.UpperBound = &types.Instance{Class: object}
			params[tv.Name] = tv
		}
		for _, base := range spec.bases {
			inst := &types.Instance{Class: classes[base[0]]}
			for _, arg := range base[1:] {
				if tv, ok := params[arg]; ok {
					inst.Args = append(inst.Args, tv)
				} else {
					inst.Args = append(inst.Args, &types.Instance{Class: classes[arg]})
				}
			}
			c.Bases = append(c.Bases, inst)
		}
	}

	intType := &types.Instance{Class: classes[types.IntClassName]}
	floatType := &types.Instance{Class: classes[types.FloatClassName]}
	classes[types.IntClassName].Members["real"] = intType
	classes[types.IntClassName].Members["imag"] = intType
	classes[types.FloatClassName].Members["real"] = floatType
	classes[types.FloatClassName].Members["imag"] = floatType

	for _, spec := range builtinSpecs {
		if err := r.Register(classes[spec.name]); err != nil {
			panic(err)
		}
	}
	return r
}
