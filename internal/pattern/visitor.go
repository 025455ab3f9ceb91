package pattern

import "fmt"

// Visitor handles every pattern variant. C is the per-call context threaded
// through the recursion and R the result. Adding a variant adds a method
// here, so every engine has to handle it before it builds again.
type Visitor[C, R any] interface {
	VisitBinding(p *Binding, ctx C) R
	VisitAlternation(p *Alternation, ctx C) R
	VisitValue(p *Value, ctx C) R
	VisitSingleton(p *Singleton, ctx C) R
	VisitSequence(p *Sequence, ctx C) R
	VisitGather(p *Gather, ctx C) R
	VisitMapping(p *Mapping, ctx C) R
	VisitClass(p *Class, ctx C) R
}

// Accept dispatches p to the matching visitor method.
func Accept[C, R any](p Pattern, v Visitor[C, R], ctx C) R {
	switch p := p.(type) {
	case *Binding:
		return v.VisitBinding(p, ctx)
	case *Alternation:
		return v.VisitAlternation(p, ctx)
	case *Value:
		return v.VisitValue(p, ctx)
	case *Singleton:
		return v.VisitSingleton(p, ctx)
	case *Sequence:
		return v.VisitSequence(p, ctx)
	case *Gather:
		return v.VisitGather(p, ctx)
	case *Mapping:
		return v.VisitMapping(p, ctx)
	case *Class:
		return v.VisitClass(p, ctx)
	}
	// The interface is sealed; only a nil pattern gets here.
	panic(fmt.Sprintf("pattern: unexpected pattern %T", p))
}
