// Package lower turns the clauses of a match statement into a control-flow
// graph of runtime structural tests, reads and bindings.
//
// Every pattern is lowered against the current subject with an explicit
// success and failure block. Lowering starts in the active block and
// terminates every path it creates with a jump to one of the two.
package lower

import (
	set "github.com/hashicorp/go-set/v3"

	"martianoff/matchcore/internal/config"
	"martianoff/matchcore/internal/ir"
	"martianoff/matchcore/internal/pattern"
	"martianoff/matchcore/matcherr"
)

// Builder is the code-generation environment the lowerer emits into.
type Builder interface {
	NewBlock() *ir.BasicBlock
	Activate(block *ir.BasicBlock)
	Goto(target *ir.BasicBlock)
	Branch(cond ir.Value, ifTrue, ifFalse *ir.BasicBlock)

	LoadInt(n int) ir.Value
	Constant(v any) ir.Value
	Expr(e pattern.Expr) ir.Value
	BinaryOp(op string, left, right ir.Value) ir.Value
	Primitive(op ir.PrimOp, args ...ir.Value) ir.Value
	GetAttr(obj ir.Value, attr string) ir.Value

	Assign(target *pattern.Target, v ir.Value)
	Body(body pattern.Body)
	Finish(join *ir.BasicBlock) *ir.Graph
}

// Lowerer lowers match statements into a Builder.
type Lowerer struct {
	b Builder

	// selfMatch holds the qualified names of classes whose positional
	// sub-pattern is matched against the subject itself
	selfMatch *set.Set[string]
}

// New creates a Lowerer. A nil cfg means config.DefaultConfig().
func New(b Builder, cfg *config.Config) *Lowerer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Lowerer{b: b, selfMatch: set.From(cfg.SelfMatchTypes)}
}

// Lower emits the clauses in order. Clause i's failure continues with
// clause i+1, every body ends in the shared join block, and control reaches
// the join block without running a body if no clause matches.
func (l *Lowerer) Lower(clauses []pattern.Clause, subject ir.Value) (*ir.Graph, error) {
	join := l.b.NewBlock()
	for i := range clauses {
		clause := &clauses[i]
		code := l.b.NewBlock()
		next := l.b.NewBlock()
		if _, err := l.lower(subject, clause.Pattern, code, next); err != nil {
			return nil, err
		}

		l.b.Activate(code)
		if clause.Guard != nil {
			body := l.b.NewBlock()
			l.b.Branch(l.b.Expr(clause.Guard), body, next)
			l.b.Activate(body)
		}
		if clause.Body != nil {
			l.b.Body(clause.Body)
		}
		l.b.Goto(join)
		l.b.Activate(next)
	}
	l.b.Goto(join)
	l.b.Activate(join)
	return l.b.Finish(join), nil
}

// target is where a lowered pattern continues: the value it tests and the
// blocks for a match and a non-match.
type target struct {
	subject ir.Value
	success *ir.BasicBlock
	fail    *ir.BasicBlock
}

// lowered carries the value a binding around the pattern captures.
type lowered struct {
	value ir.Value
	err   error
}

// lowering visits patterns on behalf of a Lowerer.
type lowering struct {
	*Lowerer
}

// lower emits p against subject and returns the value a binding around p
// captures.
func (l *Lowerer) lower(subject ir.Value, p pattern.Pattern, success, fail *ir.BasicBlock) (ir.Value, error) {
	if p == nil {
		return nil, matcherr.NewInvariantError("missing pattern")
	}
	res := pattern.Accept[target, lowered](p, lowering{l}, target{subject: subject, success: success, fail: fail})
	return res.value, res.err
}

func (l lowering) VisitBinding(p *pattern.Binding, t target) lowered {
	return lowered{t.subject, l.lowerBinding(t.subject, p, t.success, t.fail)}
}

func (l lowering) VisitAlternation(p *pattern.Alternation, t target) lowered {
	return lowered{t.subject, l.lowerAlternation(t.subject, p.Branches, t.success, t.fail)}
}

func (l lowering) VisitValue(p *pattern.Value, t target) lowered {
	value := l.b.Expr(p.Expr)
	l.b.Branch(l.b.BinaryOp("==", t.subject, value), t.success, t.fail)
	return lowered{value: value}
}

func (l lowering) VisitSingleton(p *pattern.Singleton, t target) lowered {
	var v any
	switch p.Value {
	case pattern.SingletonTrue:
		v = true
	case pattern.SingletonFalse:
		v = false
	}
	l.b.Branch(l.b.BinaryOp("is", t.subject, l.b.Constant(v)), t.success, t.fail)
	return lowered{value: t.subject}
}

func (l lowering) VisitSequence(p *pattern.Sequence, t target) lowered {
	return lowered{t.subject, l.lowerSequence(t.subject, p, t.success, t.fail)}
}

func (l lowering) VisitGather(p *pattern.Gather, _ target) lowered {
	return lowered{err: matcherr.NewInvariantError("gather pattern at %d:%d outside of a sequence pattern", p.Line, p.Column)}
}

func (l lowering) VisitMapping(p *pattern.Mapping, t target) lowered {
	return lowered{t.subject, l.lowerMapping(t.subject, p, t.success, t.fail)}
}

func (l lowering) VisitClass(p *pattern.Class, t target) lowered {
	return lowered{t.subject, l.lowerClass(t.subject, p, t.success, t.fail)}
}

// then lowers p and activates the block its success continues in.
func (l *Lowerer) then(subject ir.Value, p pattern.Pattern, fail *ir.BasicBlock) error {
	next := l.b.NewBlock()
	if _, err := l.lower(subject, p, next, fail); err != nil {
		return err
	}
	l.b.Activate(next)
	return nil
}

// test branches on cond and activates the success side.
func (l *Lowerer) test(cond ir.Value, fail *ir.BasicBlock) {
	next := l.b.NewBlock()
	l.b.Branch(cond, next, fail)
	l.b.Activate(next)
}

func (l *Lowerer) lowerBinding(subject ir.Value, p *pattern.Binding, success, fail *ir.BasicBlock) error {
	switch {
	case p.Inner == nil:
		if p.Target != nil {
			l.b.Assign(p.Target, subject)
		}
		l.b.Goto(success)
		return nil
	case p.Target == nil:
		_, err := l.lower(subject, p.Inner, success, fail)
		return err
	}

	if alt, ok := p.Inner.(*pattern.Alternation); ok {
		// each branch reaches the merge with its own value
		branches := make([]pattern.Pattern, len(alt.Branches))
		for i, branch := range alt.Branches {
			branches[i] = &pattern.Binding{Pos: p.Pos, Target: p.Target, Inner: branch}
		}
		return l.lowerAlternation(subject, branches, success, fail)
	}

	bind := l.b.NewBlock()
	value, err := l.lower(subject, p.Inner, bind, fail)
	if err != nil {
		return err
	}
	l.b.Activate(bind)
	l.b.Assign(p.Target, value)
	l.b.Goto(success)
	return nil
}

func (l *Lowerer) lowerAlternation(subject ir.Value, branches []pattern.Pattern, success, fail *ir.BasicBlock) error {
	if len(branches) == 0 {
		l.b.Goto(fail)
		return nil
	}
	for i, branch := range branches {
		next := fail
		if i < len(branches)-1 {
			next = l.b.NewBlock()
		}
		if _, err := l.lower(subject, branch, success, next); err != nil {
			return err
		}
		l.b.Activate(next)
	}
	return nil
}
