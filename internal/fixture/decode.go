package fixture

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"martianoff/matchcore/internal/pattern"
	"martianoff/matchcore/internal/typeops"
	"martianoff/matchcore/internal/types"
)

// patternDecoder turns YAML pattern nodes into pattern trees. All targets of
// one fixture share a Locals table.
type patternDecoder struct {
	env    *typeops.Env
	locals *pattern.Locals
}

// pos returns the source position of a node.
func pos(n *yaml.Node) pattern.Pos {
	return pattern.Pos{Line: n.Line, Column: n.Column}
}

// nodeError is a decoding failure at a YAML node.
type nodeError struct {
	line, column int
	msg          string
}

func (e *nodeError) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.line, e.column, e.msg)
}

func nodeErr(n *yaml.Node, format string, args ...any) error {
	return &nodeError{line: n.Line, column: n.Column, msg: fmt.Sprintf(format, args...)}
}

func (d *patternDecoder) clause(c *clauseDecl) (pattern.Clause, error) {
	if c.Pattern.Kind == 0 {
		return pattern.Clause{}, fmt.Errorf("pattern must be provided")
	}
	p, err := d.pattern(&c.Pattern)
	if err != nil {
		return pattern.Clause{}, err
	}
	clause := pattern.Clause{Pos: pos(&c.Pattern), Pattern: p}
	if c.Guard.Kind != 0 {
		if clause.Guard, err = expr(&c.Guard); err != nil {
			return pattern.Clause{}, err
		}
	}
	if c.Body != "" {
		clause.Body = &pattern.Block{Label: c.Body}
	}
	return clause, nil
}

// fields maps the keys of a mapping node to their values.
func fields(n *yaml.Node) (map[string]*yaml.Node, []string, error) {
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	var order []string
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if _, dup := out[key]; dup {
			return nil, nil, nodeErr(n.Content[i], "duplicate key %q", key)
		}
		out[key] = n.Content[i+1]
		order = append(order, key)
	}
	return out, order, nil
}

// allowed lists the keys each pattern kind accepts next to its own.
var allowed = map[string][]string{
	"capture":   {"pattern"},
	"wildcard":  nil,
	"or":        nil,
	"value":     nil,
	"singleton": nil,
	"seq":       nil,
	"star":      nil,
	"mapping":   {"rest"},
	"class":     {"args", "kwargs"},
}

var kindOrder = []string{"capture", "wildcard", "or", "value", "singleton", "seq", "star", "mapping", "class"}

func (d *patternDecoder) pattern(n *yaml.Node) (pattern.Pattern, error) {
	return d.decode(n, false)
}

// decode reads one pattern. A star is only accepted as a direct item of a
// seq pattern, signalled by inSeq.
func (d *patternDecoder) decode(n *yaml.Node, inSeq bool) (pattern.Pattern, error) {
	if n.Kind == yaml.ScalarNode && n.Value == "_" {
		return &pattern.Binding{Pos: pos(n)}, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, nodeErr(n, "pattern must be a mapping")
	}
	f, order, err := fields(n)
	if err != nil {
		return nil, err
	}

	kind := ""
	for _, k := range kindOrder {
		if _, ok := f[k]; ok {
			kind = k
			break
		}
	}
	if kind == "" {
		return nil, nodeErr(n, "unknown pattern %v", order)
	}
	for _, key := range order {
		if key != kind && !slices.Contains(allowed[kind], key) {
			return nil, nodeErr(n, "unexpected key %q in %s pattern", key, kind)
		}
	}

	p := pos(n)
	v := f[kind]
	switch kind {
	case "capture":
		b := &pattern.Binding{Pos: p, Target: d.target(v)}
		if inner, ok := f["pattern"]; ok {
			if b.Inner, err = d.pattern(inner); err != nil {
				return nil, err
			}
		}
		return b, nil
	case "wildcard":
		return &pattern.Binding{Pos: p}, nil
	case "or":
		branches, err := d.patterns(v)
		if err != nil {
			return nil, err
		}
		if len(branches) == 0 {
			return nil, nodeErr(v, "or pattern needs at least one branch")
		}
		return &pattern.Alternation{Pos: p, Branches: branches}, nil
	case "value":
		e, err := expr(v)
		if err != nil {
			return nil, err
		}
		return &pattern.Value{Pos: p, Expr: e}, nil
	case "singleton":
		switch strings.ToLower(v.Value) {
		case "none", "null", "~", "":
			return &pattern.Singleton{Pos: p, Value: pattern.SingletonNone}, nil
		case "true":
			return &pattern.Singleton{Pos: p, Value: pattern.SingletonTrue}, nil
		case "false":
			return &pattern.Singleton{Pos: p, Value: pattern.SingletonFalse}, nil
		}
		return nil, nodeErr(v, "unknown singleton %q", v.Value)
	case "seq":
		return d.sequence(p, v)
	case "star":
		if !inSeq {
			return nil, nodeErr(n, "star pattern outside of a seq pattern")
		}
		return &pattern.Gather{Pos: p, Target: d.target(v)}, nil
	case "mapping":
		return d.mapping(p, v, f["rest"])
	case "class":
		return d.class(p, v, f["args"], f["kwargs"])
	}
	return nil, nodeErr(n, "unknown pattern %q", kind)
}

func (d *patternDecoder) sequence(p pattern.Pos, n *yaml.Node) (pattern.Pattern, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, nodeErr(n, "expected a list of patterns")
	}
	seq := &pattern.Sequence{Pos: p, Items: make([]pattern.Pattern, 0, len(n.Content))}
	gathers := 0
	for _, item := range n.Content {
		sub, err := d.decode(item, true)
		if err != nil {
			return nil, err
		}
		if _, ok := sub.(*pattern.Gather); ok {
			gathers++
			if gathers > 1 {
				return nil, nodeErr(item, "seq pattern has more than one star")
			}
		}
		seq.Items = append(seq.Items, sub)
	}
	return seq, nil
}

func (d *patternDecoder) patterns(n *yaml.Node) ([]pattern.Pattern, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, nodeErr(n, "expected a list of patterns")
	}
	out := make([]pattern.Pattern, 0, len(n.Content))
	for _, item := range n.Content {
		p, err := d.pattern(item)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// target declares the name in n. An empty name or "_" binds nothing.
func (d *patternDecoder) target(n *yaml.Node) *pattern.Target {
	if n == nil || n.ShortTag() == "!!null" || n.Value == "" || n.Value == "_" {
		return nil
	}
	return d.locals.Declare(n.Value, pos(n))
}

func (d *patternDecoder) mapping(p pattern.Pos, items, rest *yaml.Node) (pattern.Pattern, error) {
	if items.Kind != yaml.SequenceNode {
		return nil, nodeErr(items, "mapping must be a list of {key, pattern}")
	}
	m := &pattern.Mapping{Pos: p}
	for _, item := range items.Content {
		f, _, err := fields(item)
		if err != nil {
			return nil, err
		}
		key, ok := f["key"]
		if !ok || f["pattern"] == nil || len(f) != 2 {
			return nil, nodeErr(item, "mapping item needs exactly key and pattern")
		}
		k, err := expr(key)
		if err != nil {
			return nil, err
		}
		v, err := d.pattern(f["pattern"])
		if err != nil {
			return nil, err
		}
		m.Keys = append(m.Keys, k)
		m.Values = append(m.Values, v)
	}
	if rest != nil {
		m.Rest = d.target(rest)
	}
	return m, nil
}

func (d *patternDecoder) class(p pattern.Pos, name, args, kwargs *yaml.Node) (pattern.Pattern, error) {
	if name.Kind != yaml.ScalarNode || name.Value == "" {
		return nil, nodeErr(name, "class must name a class")
	}
	ref := &pattern.ClassRef{Name: name.Value}
	if sym, ok := d.env.LookupSymbol(name.Value); ok {
		ref.Node = sym
	}
	c := &pattern.Class{Pos: p, Ref: ref}
	if args != nil {
		positionals, err := d.patterns(args)
		if err != nil {
			return nil, err
		}
		c.Positionals = positionals
	}
	if kwargs != nil {
		if kwargs.Kind != yaml.SequenceNode {
			return nil, nodeErr(kwargs, "kwargs must be a list of {name, pattern}")
		}
		for _, item := range kwargs.Content {
			f, _, err := fields(item)
			if err != nil {
				return nil, err
			}
			key, ok := f["name"]
			if !ok || f["pattern"] == nil || len(f) != 2 {
				return nil, nodeErr(item, "keyword needs exactly name and pattern")
			}
			v, err := d.pattern(f["pattern"])
			if err != nil {
				return nil, err
			}
			c.KeywordKeys = append(c.KeywordKeys, key.Value)
			c.KeywordValues = append(c.KeywordValues, v)
		}
	}
	return c, nil
}

// expr decodes an expression. Plain scalars are constants by their YAML
// tag, except that an unquoted string is a value name. Quoted strings are
// string constants. The mapping forms {name: ...}, {str: ...} and
// {bytes: ...} spell each kind out.
func expr(n *yaml.Node) (pattern.Expr, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return &pattern.Const{Value: nil}, nil
		case "!!bool":
			return &pattern.Const{Value: strings.EqualFold(n.Value, "true")}, nil
		case "!!int":
			v, err := strconv.ParseInt(n.Value, 0, 64)
			if err != nil {
				return nil, nodeErr(n, "%v", err)
			}
			return &pattern.Const{Value: v}, nil
		case "!!float":
			v, err := strconv.ParseFloat(n.Value, 64)
			if err != nil {
				return nil, nodeErr(n, "%v", err)
			}
			return &pattern.Const{Value: v}, nil
		}
		if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
			return &pattern.Const{Value: n.Value}, nil
		}
		return &pattern.Name{Name: n.Value}, nil
	case yaml.MappingNode:
		f, _, err := fields(n)
		if err != nil {
			return nil, err
		}
		if len(f) == 1 {
			if v, ok := f["name"]; ok {
				return &pattern.Name{Name: v.Value}, nil
			}
			if v, ok := f["str"]; ok {
				return &pattern.Const{Value: v.Value}, nil
			}
			if v, ok := f["bytes"]; ok {
				return &pattern.Const{Value: types.Bytes(v.Value)}, nil
			}
		}
	}
	return nil, nodeErr(n, "unrecognized expression")
}
