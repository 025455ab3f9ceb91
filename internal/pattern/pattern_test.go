package pattern_test

import (
	"martianoff/matchcore/internal/pattern"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalsShareIDByName(t *testing.T) {
	locals := pattern.NewLocals()
	a1 := locals.Declare("a", pattern.Pos{Line: 1, Column: 6})
	b := locals.Declare("b", pattern.Pos{Line: 1, Column: 9})
	a2 := locals.Declare("a", pattern.Pos{Line: 2, Column: 6})

	assert.Equal(t, a1.ID, a2.ID)
	assert.NotEqual(t, a1.ID, b.ID)
	assert.NotSame(t, a1, a2)
	assert.Equal(t, 2, locals.Len())
	assert.Equal(t, []string{"a", "b"}, locals.Names())
	assert.Equal(t, "b", locals.Name(b.ID))
	assert.Equal(t, "", locals.Name(pattern.LocalID(7)))

	id, ok := locals.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, a1.ID, id)
	_, ok = locals.Lookup("zzz")
	assert.False(t, ok)
}

func TestSplitGather(t *testing.T) {
	locals := pattern.NewLocals()
	a := &pattern.Binding{Target: locals.Declare("a", pattern.Pos{})}
	rest := locals.Declare("rest", pattern.Pos{})
	c := &pattern.Binding{Target: locals.Declare("c", pattern.Pos{})}
	seq := &pattern.Sequence{Items: []pattern.Pattern{a, &pattern.Gather{Target: rest}, c}}

	star, capture, items := pattern.SplitGather(seq)
	assert.Equal(t, 1, star)
	assert.Same(t, rest, capture)
	assert.Equal(t, []pattern.Pattern{a, c}, items)

	star, capture, items = pattern.SplitGather(&pattern.Sequence{Items: []pattern.Pattern{a}})
	assert.Equal(t, -1, star)
	assert.Nil(t, capture)
	assert.Len(t, items, 1)
}

func TestFormat(t *testing.T) {
	locals := pattern.NewLocals()
	name := func(n string) *pattern.Target { return locals.Declare(n, pattern.Pos{}) }

	tests := []struct {
		name     string
		pattern  pattern.Pattern
		expected string
	}{
		{
			name:     "wildcard",
			pattern:  &pattern.Binding{},
			expected: "_",
		},
		{
			name: "alternation with as",
			pattern: &pattern.Binding{
				Target: name("v"),
				Inner: &pattern.Alternation{Branches: []pattern.Pattern{
					&pattern.Value{Expr: &pattern.Const{Value: int64(1)}},
					&pattern.Singleton{Value: pattern.SingletonNone},
				}},
			},
			expected: "1 | None as v",
		},
		{
			name: "sequence with gather",
			pattern: &pattern.Sequence{Items: []pattern.Pattern{
				&pattern.Binding{Target: name("a")},
				&pattern.Gather{Target: name("b")},
				&pattern.Gather{},
			}},
			expected: "[a, *b, *_]",
		},
		{
			name: "mapping with rest",
			pattern: &pattern.Mapping{
				Keys:   []pattern.Expr{&pattern.Const{Value: "k"}},
				Values: []pattern.Pattern{&pattern.Singleton{Value: pattern.SingletonTrue}},
				Rest:   name("rest"),
			},
			expected: `{"k": True, **rest}`,
		},
		{
			name: "class with keywords",
			pattern: &pattern.Class{
				Ref:           &pattern.ClassRef{Name: "Point"},
				Positionals:   []pattern.Pattern{&pattern.Value{Expr: &pattern.Const{Value: int64(0)}}},
				KeywordKeys:   []string{"y"},
				KeywordValues: []pattern.Pattern{&pattern.Value{Expr: &pattern.Name{Name: "Color.RED"}}},
			},
			expected: "Point(0, y=Color.RED)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, pattern.Format(tt.pattern))
		})
	}
}

func TestIsWildcard(t *testing.T) {
	locals := pattern.NewLocals()
	assert.True(t, pattern.IsWildcard(&pattern.Binding{}))
	assert.False(t, pattern.IsWildcard(&pattern.Binding{Target: locals.Declare("x", pattern.Pos{})}))
	assert.False(t, pattern.IsWildcard(&pattern.Gather{}))
}
