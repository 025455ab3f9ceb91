package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolver looks up class, alias and variable symbols by name.
type Resolver interface {
	LookupSymbol(name string) (Symbol, bool)
}

// Parser turns type expressions such as "int | None" or
// "tuple[int, *tuple[str, ...]]" into types.
type Parser struct {
	Resolver Resolver
	// TypeVars holds the *TypeVar and *TypeVarTuple names in scope.
	TypeVars map[string]Type
}

// NewParser creates a Parser without type variables in scope.
func NewParser(r Resolver) *Parser {
	return &Parser{Resolver: r, TypeVars: make(map[string]Type)}
}

// Parse parses a single type expression.
func (p *Parser) Parse(s string) (Type, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty type expression")
	}

	if parts := splitTopLevel(s, '|'); len(parts) > 1 {
		items := make([]Type, 0, len(parts))
		for _, part := range parts {
			t, err := p.Parse(part)
			if err != nil {
				return nil, err
			}
			items = append(items, UnionItems(t)...)
		}
		return &Union{Items: items}, nil
	}

	if strings.HasPrefix(s, "*") {
		return nil, fmt.Errorf("unpack %q is only valid inside tuple[...]", s)
	}

	switch s {
	case "Never":
		return NewNever(), nil
	case "Any":
		return NewAny(), nil
	case "None":
		return &None{}, nil
	}

	if idx := strings.Index(s, "["); idx != -1 {
		if !strings.HasSuffix(s, "]") {
			return nil, fmt.Errorf("unbalanced brackets in %q", s)
		}
		base := strings.TrimSpace(s[:idx])
		inner := strings.TrimSpace(s[idx+1 : len(s)-1])
		switch base {
		case "Literal":
			return p.parseLiteral(inner)
		case "tuple":
			return p.parseTuple(inner)
		}
		return p.parseGeneric(base, inner)
	}

	if tv, ok := p.TypeVars[s]; ok {
		return tv, nil
	}
	sym, ok := p.Resolver.LookupSymbol(s)
	if !ok {
		return nil, fmt.Errorf("unknown type %q", s)
	}
	switch sym := sym.(type) {
	case *Class:
		return FillWithAny(sym), nil
	case *Alias:
		return sym.Target, nil
	default:
		return nil, fmt.Errorf("%q is not a type", s)
	}
}

func (p *Parser) parseGeneric(base, inner string) (Type, error) {
	sym, ok := p.Resolver.LookupSymbol(base)
	if !ok {
		return nil, fmt.Errorf("unknown type %q", base)
	}
	class, ok := sym.(*Class)
	if !ok {
		return nil, fmt.Errorf("%q is not a generic class", base)
	}
	argStrs := splitTopLevel(inner, ',')
	if len(argStrs) != len(class.TypeParams) {
		return nil, fmt.Errorf("%s expects %d type arguments, got %d", base, len(class.TypeParams), len(argStrs))
	}
	args := make([]Type, len(argStrs))
	for i, a := range argStrs {
		t, err := p.Parse(a)
		if err != nil {
			return nil, err
		}
		args[i] = t
	}
	return &Instance{Class: class, Args: args}, nil
}

func (p *Parser) parseTuple(inner string) (Type, error) {
	fallback, err := p.instance(TupleClassName)
	if err != nil {
		return nil, err
	}
	if inner == "()" {
		return NewTuple(nil, fallback), nil
	}
	parts := splitTopLevel(inner, ',')
	if len(parts) == 2 && strings.TrimSpace(parts[1]) == "..." {
		elem, err := p.Parse(parts[0])
		if err != nil {
			return nil, err
		}
		return &Instance{Class: fallback.Class, Args: []Type{elem}}, nil
	}
	items := make([]Type, 0, len(parts))
	unpacks := 0
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "*") {
			unpacks++
			t, err := p.parseUnpackTarget(strings.TrimSpace(part[1:]))
			if err != nil {
				return nil, err
			}
			items = append(items, &Unpack{Inner: t})
			continue
		}
		t, err := p.Parse(part)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if unpacks > 1 {
		return nil, fmt.Errorf("more than one unpack in tuple[%s]", inner)
	}
	return NewTuple(items, fallback), nil
}

func (p *Parser) parseUnpackTarget(s string) (Type, error) {
	if tv, ok := p.TypeVars[s]; ok {
		if tvt, ok := tv.(*TypeVarTuple); ok {
			return tvt, nil
		}
		return nil, fmt.Errorf("cannot unpack type variable %q", s)
	}
	t, err := p.Parse(s)
	if err != nil {
		return nil, err
	}
	inst, ok := t.(*Instance)
	if !ok || inst.Class.FullName != TupleClassName {
		return nil, fmt.Errorf("cannot unpack %q, expected tuple[T, ...]", s)
	}
	return inst, nil
}

func (p *Parser) parseLiteral(inner string) (Type, error) {
	parts := splitTopLevel(inner, ',')
	items := make([]Type, 0, len(parts))
	for _, part := range parts {
		lit, err := p.literalValue(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		items = append(items, lit)
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return &Union{Items: items}, nil
}

// Literal builds a literal type for a Go value (int64, string, bool, Bytes).
// An int is stored as int64.
func (p *Parser) Literal(v any) (*Literal, error) {
	if i, ok := v.(int); ok {
		v = int64(i)
	}
	var fallbackName string
	switch v.(type) {
	case int64:
		fallbackName = IntClassName
	case string:
		fallbackName = StrClassName
	case bool:
		fallbackName = BoolClassName
	case Bytes:
		fallbackName = BytesClassName
	default:
		return nil, fmt.Errorf("unsupported literal value %v (%T)", v, v)
	}
	fallback, err := p.instance(fallbackName)
	if err != nil {
		return nil, err
	}
	return &Literal{Value: v, Fallback: fallback}, nil
}

func (p *Parser) literalValue(s string) (*Literal, error) {
	switch {
	case s == "True":
		return p.Literal(true)
	case s == "False":
		return p.Literal(false)
	case len(s) >= 3 && s[0] == 'b' && isQuoted(s[1:]):
		return p.Literal(Bytes(s[2 : len(s)-1]))
	case isQuoted(s):
		return p.Literal(s[1 : len(s)-1])
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid literal %q", s)
	}
	return p.Literal(n)
}

func (p *Parser) instance(name string) (*Instance, error) {
	sym, ok := p.Resolver.LookupSymbol(name)
	if !ok {
		return nil, fmt.Errorf("builtin %q is not defined", name)
	}
	class, ok := sym.(*Class)
	if !ok {
		return nil, fmt.Errorf("builtin %q is not a class", name)
	}
	inst := FillWithAny(class).(*Instance)
	return inst, nil
}

func isQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	return (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"')
}

// splitTopLevel splits s on sep, ignoring separators nested in brackets,
// parentheses, braces or quotes.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
		default:
			if c == sep && depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts
}
