package pattern

import (
	"fmt"
	"strings"
)

// Format renders a pattern in case-clause syntax.
func Format(p Pattern) string {
	return Accept[struct{}, string](p, printer{}, struct{}{})
}

type printer struct{}

func (pr printer) VisitBinding(p *Binding, _ struct{}) string {
	switch {
	case p.Inner == nil && p.Target == nil:
		return "_"
	case p.Inner == nil:
		return p.Target.Name
	case p.Target == nil:
		return Format(p.Inner)
	}
	return fmt.Sprintf("%s as %s", Format(p.Inner), p.Target.Name)
}

func (pr printer) VisitAlternation(p *Alternation, _ struct{}) string {
	parts := make([]string, len(p.Branches))
	for i, b := range p.Branches {
		parts[i] = Format(b)
	}
	return strings.Join(parts, " | ")
}

func (pr printer) VisitValue(p *Value, _ struct{}) string {
	return p.Expr.String()
}

func (pr printer) VisitSingleton(p *Singleton, _ struct{}) string {
	return p.Value.String()
}

func (pr printer) VisitSequence(p *Sequence, _ struct{}) string {
	parts := make([]string, len(p.Items))
	for i, item := range p.Items {
		parts[i] = Format(item)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (pr printer) VisitGather(p *Gather, _ struct{}) string {
	if p.Target == nil {
		return "*_"
	}
	return "*" + p.Target.Name
}

func (pr printer) VisitMapping(p *Mapping, _ struct{}) string {
	parts := make([]string, 0, len(p.Keys)+1)
	for i, k := range p.Keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, Format(p.Values[i])))
	}
	if p.Rest != nil {
		parts = append(parts, "**"+p.Rest.Name)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (pr printer) VisitClass(p *Class, _ struct{}) string {
	parts := make([]string, 0, len(p.Positionals)+len(p.KeywordKeys))
	for _, pos := range p.Positionals {
		parts = append(parts, Format(pos))
	}
	for i, k := range p.KeywordKeys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, Format(p.KeywordValues[i])))
	}
	return fmt.Sprintf("%s(%s)", p.Ref.Name, strings.Join(parts, ", "))
}
