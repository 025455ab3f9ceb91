// Package checker implements the pattern type engine: for a pattern and the
// static type of its subject it infers the type the subject narrows to on
// match, what remains on non-match, and the types of the names the pattern
// binds.
package checker

import (
	"strings"

	"martianoff/matchcore/internal/config"
	"martianoff/matchcore/internal/pattern"
	"martianoff/matchcore/internal/types"
	"martianoff/matchcore/matcherr"
)

// Checker evaluates patterns. It holds no per-pattern state, so one Checker
// can evaluate any number of patterns in sequence.
type Checker struct {
	oracle   Oracle
	reporter matcherr.Reporter
	shape    Shape

	// selfMatchTypes match their single positional sub-pattern against the
	// subject itself
	selfMatchTypes []types.Type

	// nonSequenceTypes are sequences that never match a sequence pattern
	nonSequenceTypes []types.Type
}

// New creates a Checker. A nil cfg means config.DefaultConfig(); a nil
// reporter drops diagnostics.
func New(oracle Oracle, reporter matcherr.Reporter, cfg *config.Config) (*Checker, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if reporter == nil {
		reporter = matcherr.Discard{}
	}
	selfMatch, err := typesFromNames(oracle, cfg.SelfMatchTypes)
	if err != nil {
		return nil, err
	}
	nonSequence, err := typesFromNames(oracle, cfg.NonSequenceTypes)
	if err != nil {
		return nil, err
	}
	return &Checker{
		oracle:           oracle,
		reporter:         reporter,
		shape:            Shape{oracle: oracle},
		selfMatchTypes:   selfMatch,
		nonSequenceTypes: nonSequence,
	}, nil
}

// typesFromNames resolves class names. Builtins missing from a minimal
// environment are skipped.
func typesFromNames(oracle Oracle, names []string) ([]types.Type, error) {
	out := make([]types.Type, 0, len(names))
	for _, name := range names {
		t, err := oracle.NamedType(name)
		if err != nil {
			if strings.HasPrefix(name, "builtins.") {
				continue
			}
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// withReporter returns a copy of c sending diagnostics to r.
func (c *Checker) withReporter(r matcherr.Reporter) *Checker {
	cp := *c
	cp.reporter = r
	return &cp
}

// Evaluate checks p against a subject of type ctx.
func (c *Checker) Evaluate(p pattern.Pattern, ctx types.Type) Result {
	return pattern.Accept[types.Type, Result](p, c, ctx)
}

func (c *Checker) report(kind matcherr.Kind, pos pattern.Pos, msg string) {
	c.reporter.Report(matcherr.NewPatternErrorAt(kind, pos.Line, pos.Column, msg))
}

func (c *Checker) VisitBinding(p *pattern.Binding, ctx types.Type) Result {
	var res Result
	if p.Inner != nil {
		res = c.Evaluate(p.Inner, ctx)
	} else {
		res = Result{Type: ctx, Rest: types.NewNever(), Captures: NewCaptures()}
	}

	if !types.IsNever(res.Type) && p.Target != nil {
		typ, _ := c.narrowTo(ctx, res.Type, ctx)
		res.Type = typ
		if !types.IsNever(typ) {
			bound := NewCaptures()
			bound.Set(p.Target, typ)
			c.merge(res.Captures, bound)
		}
	}
	return res
}

func (c *Checker) VisitAlternation(p *pattern.Alternation, ctx types.Type) Result {
	if len(p.Branches) == 0 {
		return earlyNonMatch(ctx)
	}
	current := ctx
	results := make([]Result, len(p.Branches))
	for i, branch := range p.Branches {
		results[i] = c.Evaluate(branch, current)
		if !types.IsNever(results[i].Type) {
			current = results[i].Rest
		}
	}

	var matched []types.Type
	for _, r := range results {
		if !types.IsNever(r.Type) {
			matched = append(matched, r.Type)
		}
	}

	first := results[0].Captures.IDSet()
	for i := 1; i < len(results); i++ {
		if !first.Equal(results[i].Captures.IDSet()) {
			c.report(matcherr.KindAlternativeNames, p.Branches[i].Position(), matcherr.MsgAlternativeNames)
		}
	}

	captures := NewCaptures()
	for _, r := range results {
		for _, id := range r.Captures.IDs() {
			t, _ := r.Captures.Get(id)
			prev, ok := captures.Get(id)
			if !ok {
				prev = types.NewNever()
			}
			site := r.Captures.Site(id)
			if existing := captures.Site(id); existing != nil {
				site = existing
			}
			captures.Set(site, c.oracle.Join(prev, t))
		}
	}

	return Result{Type: c.oracle.Union(matched), Rest: current, Captures: captures}
}

func (c *Checker) VisitValue(p *pattern.Value, ctx types.Type) Result {
	typ := coerceToLiteral(c.oracle.ExprType(p.Expr))
	matched, rest := c.narrowTo(ctx, typ, typ)
	switch matched.(type) {
	case *types.Literal, *types.Never:
	default:
		// equality gives no precise negative information
		rest = c.oracle.Union([]types.Type{matched, rest})
	}
	return Result{Type: matched, Rest: rest, Captures: NewCaptures()}
}

func (c *Checker) VisitSingleton(p *pattern.Singleton, ctx types.Type) Result {
	var value any
	switch p.Value {
	case pattern.SingletonTrue:
		value = true
	case pattern.SingletonFalse:
		value = false
	}
	typ := c.oracle.ExprType(&pattern.Const{Value: value})
	matched, rest := c.narrowTo(ctx, typ, ctx)
	return Result{Type: matched, Rest: rest, Captures: NewCaptures()}
}

func (c *Checker) VisitGather(p *pattern.Gather, ctx types.Type) Result {
	captures := NewCaptures()
	if p.Target != nil {
		captures.Set(p.Target, c.namedGeneric(types.ListClassName, ctx))
	}
	return Result{Type: ctx, Rest: types.NewNever(), Captures: captures}
}

// coerceToLiteral replaces an instance whose literal value is known by that
// literal.
func coerceToLiteral(t types.Type) types.Type {
	if inst, ok := t.(*types.Instance); ok && inst.LastKnown != nil {
		return inst.LastKnown
	}
	return t
}
