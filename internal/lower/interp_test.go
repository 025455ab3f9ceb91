package lower_test

import (
	"fmt"
	"reflect"

	"martianoff/matchcore/internal/ir"
)

// object is a runtime instance of a user class.
type object struct {
	class string
	attrs map[string]any
}

// className is the runtime value of an unbound global name.
type className string

// run is the outcome of interpreting a lowered graph.
type run struct {
	bodies []string
	vars   map[string]any
}

// interpret executes g with the given variables bound. Lists are []any and
// dicts map[any]any.
func interpret(g *ir.Graph, vars map[string]any) (*run, error) {
	r := &run{vars: make(map[string]any)}
	for k, v := range vars {
		r.vars[k] = v
	}
	temps := make(map[int]any)
	eval := func(v ir.Value) any {
		switch v := v.(type) {
		case *ir.Const:
			return v.Value
		case *ir.Temp:
			return temps[v.ID]
		case *ir.Var:
			if val, ok := r.vars[v.Name]; ok {
				return val
			}
			return className(v.Name)
		}
		return nil
	}

	block := g.Entry
	for steps := 0; steps < 10000; steps++ {
		for _, op := range block.Ops {
			switch op := op.(type) {
			case *ir.Assign:
				r.vars[op.Target.Name] = eval(op.Value)
			case *ir.Exec:
				r.bodies = append(r.bodies, op.Body.BodyLabel())
			case *ir.BinaryOp:
				res, err := binary(op.Op, eval(op.Left), eval(op.Right))
				if err != nil {
					return nil, err
				}
				temps[op.Result.ID] = res
			case *ir.GetAttr:
				obj, ok := eval(op.Object).(*object)
				if !ok {
					return nil, fmt.Errorf("getattr %s on non-object", op.Attr)
				}
				temps[op.Result.ID] = obj.attrs[op.Attr]
			case *ir.Prim:
				args := make([]any, len(op.Args))
				for i, a := range op.Args {
					args[i] = eval(a)
				}
				res, err := primitive(op.Op, args)
				if err != nil {
					return nil, err
				}
				if op.Result != nil {
					temps[op.Result.ID] = res
				}
			}
		}
		switch t := block.Term.(type) {
		case nil:
			if block != g.Join {
				return nil, fmt.Errorf("fell off %s", block.Label)
			}
			return r, nil
		case *ir.Goto:
			block = t.Target
		case *ir.Branch:
			cond, ok := eval(t.Cond).(bool)
			if !ok {
				return nil, fmt.Errorf("non-bool condition %v", eval(t.Cond))
			}
			if cond {
				block = t.True
			} else {
				block = t.False
			}
		}
	}
	return nil, fmt.Errorf("step limit exceeded")
}

func binary(op string, left, right any) (any, error) {
	switch op {
	case "==":
		return reflect.DeepEqual(left, right), nil
	case "is":
		return left == right, nil
	}
	l, lok := left.(int64)
	rr, rok := right.(int64)
	if !lok || !rok {
		return nil, fmt.Errorf("%v %s %v on non-integers", left, op, right)
	}
	switch op {
	case ">=":
		return l >= rr, nil
	case "-":
		return l - rr, nil
	}
	return nil, fmt.Errorf("unknown operator %s", op)
}

func primitive(op ir.PrimOp, args []any) (any, error) {
	switch op {
	case ir.PrimSupportsSequence:
		_, ok := args[0].([]any)
		return ok, nil
	case ir.PrimSupportsMapping:
		_, ok := args[0].(map[any]any)
		return ok, nil
	case ir.PrimLen:
		switch v := args[0].(type) {
		case []any:
			return int64(len(v)), nil
		case map[any]any:
			return int64(len(v)), nil
		}
	case ir.PrimSequenceGetItem:
		return args[0].([]any)[args[1].(int64)], nil
	case ir.PrimSequenceGetSlice:
		seq := args[0].([]any)
		out := make([]any, 0)
		return append(out, seq[args[1].(int64):args[2].(int64)]...), nil
	case ir.PrimMappingHasKey:
		_, ok := args[0].(map[any]any)[args[1]]
		return ok, nil
	case ir.PrimMappingGetItem:
		return args[0].(map[any]any)[args[1]], nil
	case ir.PrimDictCopy:
		out := make(map[any]any)
		for k, v := range args[0].(map[any]any) {
			out[k] = v
		}
		return out, nil
	case ir.PrimDictDelItem:
		delete(args[0].(map[any]any), args[1])
		return nil, nil
	case ir.PrimFastIsInstance, ir.PrimSlowIsInstance:
		return isInstance(args[0], args[1])
	}
	return nil, fmt.Errorf("cannot apply %s to %v", op, args)
}

func isInstance(v, class any) (bool, error) {
	name, ok := class.(className)
	if !ok {
		return false, fmt.Errorf("isinstance against %v", class)
	}
	switch name {
	case "int":
		_, ok := v.(int64)
		return ok, nil
	case "str":
		_, ok := v.(string)
		return ok, nil
	case "list":
		_, ok := v.([]any)
		return ok, nil
	case "dict":
		_, ok := v.(map[any]any)
		return ok, nil
	}
	obj, ok := v.(*object)
	return ok && obj.class == string(name), nil
}
