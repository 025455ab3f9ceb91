package checker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/matchcore/internal/checker"
	"martianoff/matchcore/internal/config"
	"martianoff/matchcore/internal/pattern"
	"martianoff/matchcore/internal/typeops"
	"martianoff/matchcore/internal/types"
	"martianoff/matchcore/matcherr"
)

type harness struct {
	t       *testing.T
	env     *typeops.Env
	locals  *pattern.Locals
	diags   *matcherr.Collector
	checker *checker.Checker
}

func newHarness(t *testing.T) *harness {
	return newHarnessWithConfig(t, nil)
}

func newHarnessWithConfig(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	env := typeops.NewEnv()
	_, err := env.DeclareClass(typeops.ClassSpec{
		Name:      "Point",
		Fields:    []typeops.Field{{Name: "x", Type: "int"}, {Name: "y", Type: "int"}},
		MatchArgs: []string{"x", "y"},
	})
	require.NoError(t, err)
	_, err = env.DeclareClass(typeops.ClassSpec{
		Name:   "Plain",
		Fields: []typeops.Field{{Name: "a", Type: "int"}},
	})
	require.NoError(t, err)
	_, err = env.DeclareAlias("IntList", "list[int]")
	require.NoError(t, err)
	_, err = env.DeclareVar("count", "int")
	require.NoError(t, err)

	diags := matcherr.NewCollector()
	c, err := checker.New(env, diags, cfg)
	require.NoError(t, err)
	return &harness{t: t, env: env, locals: pattern.NewLocals(), diags: diags, checker: c}
}

func (h *harness) eval(p pattern.Pattern, subject string) checker.Result {
	return h.checker.Evaluate(p, h.env.MustParse(subject))
}

func (h *harness) capture(name string) *pattern.Binding {
	return &pattern.Binding{Target: h.locals.Declare(name, pattern.Pos{})}
}

func (h *harness) as(p pattern.Pattern, name string) *pattern.Binding {
	return &pattern.Binding{Target: h.locals.Declare(name, pattern.Pos{}), Inner: p}
}

func (h *harness) gather(name string) *pattern.Gather {
	if name == "" {
		return &pattern.Gather{}
	}
	return &pattern.Gather{Target: h.locals.Declare(name, pattern.Pos{})}
}

func (h *harness) class(name string, positionals ...pattern.Pattern) *pattern.Class {
	sym, _ := h.env.LookupSymbol(name)
	return &pattern.Class{Ref: &pattern.ClassRef{Name: name, Node: sym}, Positionals: positionals}
}

func withKeywords(c *pattern.Class, kv ...any) *pattern.Class {
	for i := 0; i < len(kv); i += 2 {
		c.KeywordKeys = append(c.KeywordKeys, kv[i].(string))
		c.KeywordValues = append(c.KeywordValues, kv[i+1].(pattern.Pattern))
	}
	return c
}

func wildcard() *pattern.Binding {
	return &pattern.Binding{}
}

func value(v any) *pattern.Value {
	return &pattern.Value{Expr: &pattern.Const{Value: v}}
}

func seq(items ...pattern.Pattern) *pattern.Sequence {
	return &pattern.Sequence{Items: items}
}

func alt(branches ...pattern.Pattern) *pattern.Alternation {
	return &pattern.Alternation{Branches: branches}
}

func captureString(t *testing.T, r checker.Result, name string) string {
	t.Helper()
	typ, ok := r.Captures.ByName()[name]
	require.True(t, ok, "no capture %q", name)
	return typ.String()
}

func TestCapture(t *testing.T) {
	h := newHarness(t)
	res := h.eval(h.capture("a"), "int")
	assert.Equal(t, "int", res.Type.String())
	assert.Equal(t, "Never", res.Rest.String())
	assert.Equal(t, "int", captureString(t, res, "a"))

	res = h.eval(wildcard(), "int | str")
	assert.Equal(t, "int | str", res.Type.String())
	assert.Equal(t, 0, res.Captures.Len())
}

func TestValuePattern(t *testing.T) {
	h := newHarness(t)

	res := h.eval(value(int64(1)), "int")
	assert.Equal(t, "Literal[1]", res.Type.String())
	assert.Equal(t, "int", res.Rest.String())

	res = h.eval(value(int64(1)), "Literal[1, 2]")
	assert.Equal(t, "Literal[1]", res.Type.String())
	assert.Equal(t, "Literal[2]", res.Rest.String())
}

func TestSingletonPattern(t *testing.T) {
	h := newHarness(t)

	res := h.eval(&pattern.Singleton{Value: pattern.SingletonNone}, "int | None")
	assert.Equal(t, "None", res.Type.String())
	assert.Equal(t, "int", res.Rest.String())

	res = h.eval(&pattern.Singleton{Value: pattern.SingletonTrue}, "bool")
	assert.Equal(t, "Literal[True]", res.Type.String())
	assert.Equal(t, "Literal[False]", res.Rest.String())
}

func TestSequenceArity(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		name    string
		pattern pattern.Pattern
		matches bool
	}{
		{"exact", seq(h.capture("a"), h.capture("b")), true},
		{"too short", seq(h.capture("a")), false},
		{"too long", seq(h.capture("a"), h.capture("b"), h.capture("c")), false},
		{"gather covers rest", seq(h.capture("a"), h.gather("r")), true},
		{"empty gather", seq(h.capture("a"), h.capture("b"), h.gather("")), true},
		{"gather still too long", seq(h.capture("a"), h.capture("b"), h.capture("c"), h.gather("")), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := h.eval(tt.pattern, "tuple[int, str]")
			assert.Equal(t, tt.matches, !types.IsNever(res.Type))
			if !tt.matches {
				assert.Equal(t, "tuple[int, str]", res.Rest.String())
			}
		})
	}
}

func TestSequenceAlwaysMatchingRest(t *testing.T) {
	h := newHarness(t)
	res := h.eval(seq(wildcard(), wildcard()), "tuple[int, str]")
	assert.Equal(t, "tuple[int, str]", res.Type.String())
	assert.Equal(t, "tuple[Never, Never]", res.Rest.String())
	assert.True(t, types.IsUninhabited(res.Rest))
}

func TestSequenceOneFailingPosition(t *testing.T) {
	h := newHarness(t)
	res := h.eval(seq(value(int64(1)), wildcard()), "tuple[Literal[1, 2], str]")
	assert.Equal(t, "tuple[Literal[1], str]", res.Type.String())
	assert.Equal(t, "tuple[Literal[2], str]", res.Rest.String())

	// two positions may fail, nothing is excluded
	res = h.eval(seq(value(int64(1)), value(int64(1))), "tuple[Literal[1, 2], Literal[1, 2]]")
	assert.Equal(t, "tuple[Literal[1], Literal[1]]", res.Type.String())
	assert.Equal(t, "tuple[Literal[1] | Literal[2], Literal[1] | Literal[2]]", res.Rest.String())
}

func TestSequenceGatherCapture(t *testing.T) {
	h := newHarness(t)
	res := h.eval(seq(h.capture("a"), h.gather("b"), h.capture("c")), "tuple[int, str, bytes]")
	assert.Equal(t, "tuple[int, str, bytes]", res.Type.String())
	assert.Equal(t, "int", captureString(t, res, "a"))
	assert.Equal(t, "list[str]", captureString(t, res, "b"))
	assert.Equal(t, "bytes", captureString(t, res, "c"))
}

func TestSequenceVariadicTuple(t *testing.T) {
	h := newHarness(t)
	res := h.eval(seq(h.capture("a"), h.capture("b")), "tuple[int, *tuple[str, ...]]")
	assert.Equal(t, "tuple[int, str]", res.Type.String())
	assert.Equal(t, "str", captureString(t, res, "b"))
}

func TestSequenceHomogeneous(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		subject  string
		expected string
	}{
		{"list[int]", "list[int]"},
		{"typing.Sequence[int]", "Sequence[int]"},
		{"object", "Sequence[object]"},
		{"str", "Never"},
		{"int", "Never"},
	}
	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			res := h.eval(seq(h.capture("x"), h.gather("")), tt.subject)
			assert.Equal(t, tt.expected, res.Type.String())
		})
	}
}

func TestSequenceConfiguredNonSequenceTypes(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.NonSequenceTypes = nil
	h := newHarnessWithConfig(t, cfg)
	res := h.eval(seq(h.capture("c")), "str")
	assert.Equal(t, "str", res.Type.String())
	assert.Equal(t, "str", captureString(t, res, "c"))
}

func TestDuplicateCaptureInSequence(t *testing.T) {
	h := newHarness(t)
	h.eval(seq(h.capture("a"), h.capture("a")), "tuple[int, int]")
	assert.Equal(t, 1, h.diags.Count(matcherr.KindDuplicateCapture))
	assert.Equal(t, `Multiple assignments to name "a" in pattern`, h.diags.Errors[0].Msg)
}

func TestSameNameAcrossAlternation(t *testing.T) {
	h := newHarness(t)
	res := h.eval(alt(h.as(h.class("int"), "a"), h.as(h.class("str"), "a")), "int | str")
	assert.False(t, h.diags.HasErrors())
	assert.Equal(t, "int | str", res.Type.String())
	assert.Equal(t, "Never", res.Rest.String())
	assert.Equal(t, 1, res.Captures.Len())
}

func TestAlternationInconsistentNames(t *testing.T) {
	h := newHarness(t)
	second := h.as(h.class("str"), "b")
	second.Pos = pattern.Pos{Line: 2, Column: 14}
	res := h.eval(alt(h.as(h.class("int"), "a"), second, h.as(h.class("bytes"), "a")), "int | str | bytes")

	require.Equal(t, 1, h.diags.Count(matcherr.KindAlternativeNames))
	assert.Equal(t, 2, h.diags.Errors[0].Line)
	assert.Equal(t, 14, h.diags.Errors[0].Column)
	assert.Equal(t, "int | str | bytes", res.Type.String())
	assert.Equal(t, "str", captureString(t, res, "b"))
}

func TestAlternationExcludesCoveredCases(t *testing.T) {
	h := newHarness(t)
	res := h.eval(alt(value(int64(1)), value(int64(2))), "Literal[1, 2, 3]")
	assert.Equal(t, "Literal[1] | Literal[2]", res.Type.String())
	assert.Equal(t, "Literal[3]", res.Rest.String())
}

func TestEmptyAlternationNeverMatches(t *testing.T) {
	h := newHarness(t)
	var res checker.Result
	require.NotPanics(t, func() { res = h.eval(alt(), "int | str") })
	assert.False(t, h.diags.HasErrors())
	assert.Equal(t, "Never", res.Type.String())
	assert.Equal(t, "int | str", res.Rest.String())
	assert.Equal(t, 0, res.Captures.Len())
}

func TestClassPositionalsEqualKeywords(t *testing.T) {
	h := newHarness(t)
	positional := h.eval(h.class("Point", value(int64(0)), value(int64(0))), "Point")
	keyword := h.eval(withKeywords(h.class("Point"), "x", value(int64(0)), "y", value(int64(0))), "Point")

	assert.False(t, h.diags.HasErrors())
	assert.Equal(t, keyword.Type.String(), positional.Type.String())
	assert.Equal(t, keyword.Rest.String(), positional.Rest.String())
	assert.Equal(t, "Point", positional.Type.String())
	assert.Equal(t, "Point", positional.Rest.String())
}

func TestClassCapturesAttributes(t *testing.T) {
	h := newHarness(t)
	res := h.eval(h.class("Point", h.capture("px"), h.capture("py")), "Point | None")
	assert.Equal(t, "Point", res.Type.String())
	assert.Equal(t, "None", res.Rest.String())
	assert.Equal(t, "int", captureString(t, res, "px"))
	assert.Equal(t, "int", captureString(t, res, "py"))
}

func TestClassSelfMatch(t *testing.T) {
	h := newHarness(t)
	res := h.eval(h.class("int", h.capture("n")), "int | str")
	assert.Equal(t, "int", res.Type.String())
	assert.Equal(t, "str", res.Rest.String())
	assert.Equal(t, "int", captureString(t, res, "n"))

	res = h.eval(h.class("int", h.capture("m"), h.capture("k")), "int")
	assert.Equal(t, 1, h.diags.Count(matcherr.KindTooManyPositionals))
	assert.Equal(t, "int", res.Type.String())
}

func TestClassErrors(t *testing.T) {
	tests := []struct {
		name    string
		pattern func(h *harness) pattern.Pattern
		kind    matcherr.Kind
		msg     string
	}{
		{
			name:    "missing match args",
			pattern: func(h *harness) pattern.Pattern { return h.class("Plain", value(int64(1))) },
			kind:    matcherr.KindMissingMatchArgs,
			msg:     `Class "Plain" does not define "__match_args__"`,
		},
		{
			name: "too many positionals",
			pattern: func(h *harness) pattern.Pattern {
				return h.class("Point", value(int64(1)), value(int64(2)), value(int64(3)))
			},
			kind: matcherr.KindTooManyPositionals,
			msg:  matcherr.MsgTooManyPositionals,
		},
		{
			name: "keyword matches positional",
			pattern: func(h *harness) pattern.Pattern {
				return withKeywords(h.class("Point", value(int64(1))), "x", value(int64(2)))
			},
			kind: matcherr.KindKeywordMatchesPositional,
			msg:  `Keyword "x" already matches a positional pattern`,
		},
		{
			name: "duplicate keyword",
			pattern: func(h *harness) pattern.Pattern {
				return withKeywords(h.class("Point"), "y", value(int64(1)), "y", value(int64(2)))
			},
			kind: matcherr.KindDuplicateKeyword,
			msg:  `Duplicate keyword pattern "y"`,
		},
		{
			name:    "generic alias",
			pattern: func(h *harness) pattern.Pattern { return h.class("IntList") },
			kind:    matcherr.KindGenericAlias,
			msg:     matcherr.MsgGenericAlias,
		},
		{
			name:    "not a type",
			pattern: func(h *harness) pattern.Pattern { return h.class("count") },
			kind:    matcherr.KindTypeRequired,
			msg:     `Expected type in class pattern; found "int"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			res := h.eval(tt.pattern(h), "object")
			require.Len(t, h.diags.Errors, 1)
			assert.Equal(t, tt.kind, h.diags.Errors[0].Kind)
			assert.Equal(t, tt.msg, h.diags.Errors[0].Msg)
			assert.True(t, types.IsNever(res.Type))
			assert.Equal(t, "object", res.Rest.String())
		})
	}
}

func TestClassUnknownKeyword(t *testing.T) {
	h := newHarness(t)
	res := h.eval(withKeywords(h.class("Point"), "z", h.capture("z")), "Point")
	require.Equal(t, 1, h.diags.Count(matcherr.KindUnknownKeyword))
	assert.Equal(t, `Class "Point" has no attribute "z"`, h.diags.Errors[0].Msg)
	assert.Equal(t, "Point", res.Type.String())
	z := res.Captures.ByName()["z"]
	assert.True(t, z.(*types.Any).FromError)
}

func TestClassUnresolvedReference(t *testing.T) {
	h := newHarness(t)
	res := h.eval(&pattern.Class{Ref: &pattern.ClassRef{Name: "Missing"}}, "int")
	assert.False(t, h.diags.HasErrors())
	assert.True(t, types.IsAny(res.Type))
	assert.True(t, types.IsAny(res.Rest))
}

func TestMappingPattern(t *testing.T) {
	h := newHarness(t)
	m := &pattern.Mapping{
		Keys:   []pattern.Expr{&pattern.Const{Value: "k"}},
		Values: []pattern.Pattern{h.capture("v")},
		Rest:   h.locals.Declare("rest", pattern.Pos{}),
	}

	res := h.eval(m, "dict[str, int]")
	assert.Equal(t, "dict[str, int]", res.Type.String())
	assert.Equal(t, "dict[str, int]", res.Rest.String())
	assert.Equal(t, "int", captureString(t, res, "v"))
	assert.Equal(t, "dict[str, int]", captureString(t, res, "rest"))

	res = h.eval(m, "int")
	assert.Equal(t, "int", res.Type.String())
	assert.Equal(t, "dict[object, object]", captureString(t, res, "rest"))
	assert.False(t, h.diags.HasErrors())
}

func TestMappingTypedDict(t *testing.T) {
	h := newHarness(t)
	movie := &types.TypedDict{
		Name:  "Movie",
		Keys:  []string{"title"},
		Items: map[string]types.Type{"title": h.env.MustParse("str")},
	}
	mapping := func(key string) *pattern.Mapping {
		return &pattern.Mapping{
			Keys:   []pattern.Expr{&pattern.Const{Value: key}},
			Values: []pattern.Pattern{h.capture("v")},
		}
	}

	res := h.checker.Evaluate(mapping("title"), movie)
	assert.Equal(t, "Movie", res.Type.String())
	assert.Equal(t, "str", captureString(t, res, "v"))

	res = h.checker.Evaluate(mapping("year"), movie)
	assert.True(t, types.IsNever(res.Type))
	assert.Equal(t, "Movie", res.Rest.String())
}

func TestCheckMatchNarrowsAcrossClauses(t *testing.T) {
	h := newHarness(t)
	clauses := []pattern.Clause{
		{Pattern: h.class("int"), Body: &pattern.Block{Label: "ints"}},
		{Pattern: h.class("str"), Body: &pattern.Block{Label: "strs"}},
	}
	report := h.checker.CheckMatch(h.env.MustParse("int | str"), clauses)

	require.Len(t, report.Clauses, 2)
	assert.Equal(t, "int", report.Clauses[0].Subject.String())
	assert.Equal(t, "str", report.Clauses[0].Rest.String())
	assert.Equal(t, "str", report.Clauses[1].Subject.String())
	assert.Equal(t, "Never", report.Residual.String())
	assert.True(t, report.Exhaustive())
}

func TestCheckMatchGuardFallsThrough(t *testing.T) {
	h := newHarness(t)
	clauses := []pattern.Clause{
		{Pattern: h.class("int"), Guard: &pattern.Name{Name: "flag"}},
		{Pattern: wildcard()},
	}
	report := h.checker.CheckMatch(h.env.MustParse("int | str"), clauses)

	assert.Equal(t, "str | int", report.Clauses[0].Rest.String())
	assert.Equal(t, "str | int", report.Clauses[1].Subject.String())
	assert.True(t, report.Exhaustive())
}

func TestCheckMatchUnreachableAndBindings(t *testing.T) {
	h := newHarness(t)
	clauses := []pattern.Clause{
		{Pattern: h.as(h.class("int"), "v")},
		{Pattern: h.as(h.class("str"), "v")},
		{Pattern: h.class("int")},
	}
	report := h.checker.CheckMatch(h.env.MustParse("int | str"), clauses)

	assert.False(t, report.Clauses[0].Unreachable)
	assert.False(t, report.Clauses[1].Unreachable)
	assert.True(t, report.Clauses[2].Unreachable)

	id, ok := h.locals.Lookup("v")
	require.True(t, ok)
	assert.Equal(t, "object", report.Bindings[id].String())

	fixed := h.checker.CheckMatch(h.env.MustParse("tuple[int, str]"), []pattern.Clause{
		{Pattern: seq(wildcard(), wildcard())},
		{Pattern: seq(h.capture("p"), h.capture("q"))},
	})
	assert.True(t, fixed.Exhaustive())
	assert.True(t, fixed.Clauses[1].Unreachable)
}
