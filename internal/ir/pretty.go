package ir

import (
	"fmt"
	"strings"
)

// PrettyPrint returns a human-readable listing of the reachable blocks.
func (g *Graph) PrettyPrint() string {
	reachable := Reachable(g)
	var b strings.Builder
	for _, block := range g.Blocks {
		if !reachable[block] {
			continue
		}
		b.WriteString(block.PrettyPrint())
		if block == g.Join {
			b.WriteString("    ; join\n")
		}
	}
	return b.String()
}

// PrettyPrint returns a human-readable listing of a basic block.
func (bb *BasicBlock) PrettyPrint() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s:\n", bb.Label))
	for _, op := range bb.Ops {
		b.WriteString("    ")
		b.WriteString(opString(op))
		b.WriteString("\n")
	}
	if bb.Term != nil {
		b.WriteString("    ")
		b.WriteString(terminatorString(bb.Term))
		b.WriteString("\n")
	}
	return b.String()
}

func opString(op Op) string {
	switch o := op.(type) {
	case *Assign:
		return fmt.Sprintf("%s = %s", o.Target, o.Value)
	case *Prim:
		call := fmt.Sprintf("%s(%s)", o.Op, valuesString(o.Args))
		if o.Result == nil {
			return call
		}
		return fmt.Sprintf("%s = %s", o.Result, call)
	case *BinaryOp:
		return fmt.Sprintf("%s = %s %s %s", o.Result, o.Left, o.Op, o.Right)
	case *GetAttr:
		return fmt.Sprintf("%s = getattr %s.%s", o.Result, o.Object, o.Attr)
	case *Exec:
		return fmt.Sprintf("exec %s", o.Body.BodyLabel())
	}
	return fmt.Sprintf("<unknown op %T>", op)
}

func terminatorString(t Terminator) string {
	switch t := t.(type) {
	case *Goto:
		return fmt.Sprintf("goto %s", t.Target.Label)
	case *Branch:
		return fmt.Sprintf("branch %s, %s, %s", t.Cond, t.True.Label, t.False.Label)
	}
	return fmt.Sprintf("<unknown terminator %T>", t)
}

func valuesString(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
