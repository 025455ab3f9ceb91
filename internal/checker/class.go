package checker

import (
	"fmt"

	set "github.com/hashicorp/go-set/v3"

	"martianoff/matchcore/internal/pattern"
	"martianoff/matchcore/internal/types"
	"martianoff/matchcore/matcherr"
)

// keywordPattern is a keyword sub-pattern, or a positional converted to one.
// An unnamed keyword comes from a __match_args__ that is not a literal tuple.
type keywordPattern struct {
	name    string
	named   bool
	pattern pattern.Pattern
}

func (c *Checker) VisitClass(p *pattern.Class, ctx types.Type) Result {
	if p.Ref.Node == nil {
		// the unresolved name was reported by name resolution
		return Result{Type: types.NewErrorAny(), Rest: types.NewErrorAny(), Captures: NewCaptures()}
	}
	typ, ok := c.classPatternType(p)
	if !ok {
		return earlyNonMatch(ctx)
	}

	matched, rest := c.narrowTo(ctx, typ, ctx)
	if types.IsNever(matched) {
		return earlyNonMatch(ctx)
	}
	receiver := c.oracle.NarrowDeclared(ctx, matched)

	captures := NewCaptures()
	canMatch := true
	var keywords []keywordPattern
	matchArgSet := set.New[string](len(p.Positionals))

	if len(p.Positionals) > 0 {
		if c.shouldSelfMatch(typ) {
			if len(p.Positionals) > 1 {
				c.report(matcherr.KindTooManyPositionals, p.Pos, matcherr.MsgTooManyPositionals)
			}
			sub := c.Evaluate(p.Positionals[0], receiver)
			if !types.IsNever(sub.Type) && len(p.KeywordKeys) == 0 {
				return Result{Type: sub.Type, Rest: c.oracle.Join(rest, sub.Rest), Captures: sub.Captures}
			}
			captures = sub.Captures
			if types.IsNever(sub.Type) {
				canMatch = false
			} else {
				matched = sub.Type
				rest = c.oracle.Join(rest, sub.Rest)
			}
		} else {
			names, ok := c.matchArgNames(p, typ)
			if !ok {
				return earlyNonMatch(ctx)
			}
			for i, pos := range p.Positionals {
				kw := keywordPattern{pattern: pos}
				if names[i] != nil {
					kw.name, kw.named = *names[i], true
					matchArgSet.Insert(kw.name)
				}
				keywords = append(keywords, kw)
			}
		}
	}

	keywordSet := set.New[string](len(p.KeywordKeys))
	duplicates := false
	for i, key := range p.KeywordKeys {
		value := p.KeywordValues[i]
		keywords = append(keywords, keywordPattern{name: key, named: true, pattern: value})
		switch {
		case matchArgSet.Contains(key):
			c.report(matcherr.KindKeywordMatchesPositional, value.Position(), fmt.Sprintf(matcherr.MsgKeywordMatchesPositional, key))
			duplicates = true
		case keywordSet.Contains(key):
			c.report(matcherr.KindDuplicateKeyword, value.Position(), fmt.Sprintf(matcherr.MsgDuplicateKeyword, key))
			duplicates = true
		}
		keywordSet.Insert(key)
	}
	if duplicates {
		return earlyNonMatch(ctx)
	}

	for _, kw := range keywords {
		attr := types.NewErrorAny()
		if kw.named {
			t, ok := bestEffort(c.oracle.MemberType(kw.name, receiver, matched))
			if ok {
				attr = t
			} else {
				c.report(matcherr.KindUnknownKeyword, kw.pattern.Position(), fmt.Sprintf(matcherr.MsgUnknownKeyword, typ.String(), kw.name))
			}
		}
		sub := c.Evaluate(kw.pattern, attr)
		if types.IsNever(sub.Type) {
			canMatch = false
			continue
		}
		c.merge(captures, sub.Captures)
		if !types.IsNever(sub.Rest) {
			rest = ctx
		}
	}

	if !canMatch {
		matched = types.NewNever()
	}
	return Result{Type: matched, Rest: rest, Captures: captures}
}

// classPatternType resolves the class reference of p to the type it tests
// for. ok is false after a diagnostic.
func (c *Checker) classPatternType(p *pattern.Class) (types.Type, bool) {
	switch sym := p.Ref.Node.(type) {
	case *types.Alias:
		if !sym.NoArgs {
			c.report(matcherr.KindGenericAlias, p.Pos, matcherr.MsgGenericAlias)
			return nil, false
		}
		return sym.Target, true
	case *types.Class:
		return types.FillWithAny(sym), true
	case *types.Var:
		if sym.Type != nil && types.IsAny(sym.Type) {
			return sym.Type, true
		}
		name := sym.Name
		if sym.Type != nil {
			name = sym.Type.String()
		}
		c.report(matcherr.KindTypeRequired, p.Pos, fmt.Sprintf(matcherr.MsgTypeRequired, name))
		return nil, false
	}
	c.report(matcherr.KindTypeRequired, p.Pos, fmt.Sprintf(matcherr.MsgTypeRequired, p.Ref.Name))
	return nil, false
}

// shouldSelfMatch reports whether a class pattern on typ matches its single
// positional against the subject itself.
func (c *Checker) shouldSelfMatch(typ types.Type) bool {
	t := typ
	if tuple, ok := t.(*types.Tuple); ok && tuple.Fallback != nil {
		t = tuple.Fallback
	}
	if inst, ok := t.(*types.Instance); ok {
		if _, _, declared := inst.Class.Lookup(types.MatchArgsName); declared {
			return false
		}
	}
	for _, other := range c.selfMatchTypes {
		if c.oracle.IsSubtype(t, other) {
			return true
		}
	}
	return false
}

// matchArgNames converts the positionals of p to attribute names through
// __match_args__. A nil entry is a position without a literal name.
func (c *Checker) matchArgNames(p *pattern.Class, typ types.Type) ([]*string, bool) {
	matchArgs, ok := bestEffort(c.oracle.MemberType(types.MatchArgsName, typ, typ))
	if !ok {
		c.report(matcherr.KindMissingMatchArgs, p.Pos, fmt.Sprintf(matcherr.MsgMissingMatchArgs, typ.String()))
		return nil, false
	}
	tuple, ok := matchArgs.(*types.Tuple)
	if !ok {
		return make([]*string, len(p.Positionals)), true
	}
	if len(p.Positionals) > len(tuple.Items) {
		c.report(matcherr.KindTooManyPositionals, p.Pos, matcherr.MsgTooManyPositionals)
		return nil, false
	}
	names := make([]*string, len(p.Positionals))
	for i := range names {
		names[i] = stringLiteral(tuple.Items[i])
	}
	return names, true
}

func stringLiteral(t types.Type) *string {
	if inst, ok := t.(*types.Instance); ok && inst.LastKnown != nil {
		t = inst.LastKnown
	}
	if lit, ok := t.(*types.Literal); ok {
		if s, ok := lit.Value.(string); ok {
			return &s
		}
	}
	return nil
}
