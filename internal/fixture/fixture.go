// Package fixture loads match statements and the declarations they are
// checked against from YAML files.
package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"martianoff/matchcore/internal/pattern"
	"martianoff/matchcore/internal/typeops"
	"martianoff/matchcore/internal/types"
	"martianoff/matchcore/matcherr"
)

// SubjectName is the variable the subject of a fixture is bound to.
const SubjectName = "subject"

// Fixture is a loaded match statement with its environment.
type Fixture struct {
	Path    string
	Env     *typeops.Env
	Subject types.Type
	Match   *pattern.Match
}

type fixtureFile struct {
	Classes []classDecl       `yaml:"classes"`
	Aliases []aliasDecl       `yaml:"aliases"`
	Vars    []varDecl         `yaml:"vars"`
	Names   map[string]string `yaml:"names"`
	Subject string            `yaml:"subject"`
	Clauses []clauseDecl      `yaml:"clauses"`
}

type classDecl struct {
	Name          string    `yaml:"name"`
	TypeParams    []string  `yaml:"type_params"`
	Bases         []string  `yaml:"bases"`
	Final         bool      `yaml:"final"`
	NamedTuple    bool      `yaml:"named_tuple"`
	Fields        yaml.Node `yaml:"fields"`
	MatchArgs     []string  `yaml:"match_args"`
	MatchArgsType string    `yaml:"match_args_type"`
}

type aliasDecl struct {
	Name   string `yaml:"name"`
	Target string `yaml:"target"`
}

type varDecl struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type clauseDecl struct {
	Pattern yaml.Node `yaml:"pattern"`
	Guard   yaml.Node `yaml:"guard"`
	Body    string    `yaml:"body"`
}

// Load reads and builds the fixture at path.
func Load(path string) (*Fixture, error) {
	if path == "" {
		return nil, matcherr.NewFixtureError("", "empty fixture path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, matcherr.NewFixtureError(path, err.Error())
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, matcherr.NewFixtureError(absPath, err.Error())
	}
	return Parse(absPath, data)
}

// Parse builds a fixture from YAML source. path is only used in errors.
func Parse(path string, data []byte) (*Fixture, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var raw fixtureFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, matcherr.NewFixtureError(path, "fixture is empty")
		}
		return nil, matcherr.NewFixtureError(path, err.Error())
	}
	if raw.Subject == "" {
		return nil, matcherr.NewFixtureError(path, "subject must be provided")
	}

	env := typeops.NewEnv()
	if err := raw.declare(env); err != nil {
		return nil, fixtureError(path, "", err)
	}
	subject, err := env.Parse(raw.Subject)
	if err != nil {
		return nil, matcherr.NewFixtureError(path, fmt.Sprintf("subject: %v", err))
	}

	d := &patternDecoder{env: env, locals: pattern.NewLocals()}
	match := &pattern.Match{
		Subject: &pattern.Name{Name: SubjectName},
		Locals:  d.locals,
	}
	for i := range raw.Clauses {
		clause, err := d.clause(&raw.Clauses[i])
		if err != nil {
			return nil, fixtureError(path, fmt.Sprintf("clauses[%d]: ", i), err)
		}
		match.Clauses = append(match.Clauses, clause)
	}

	return &Fixture{Path: path, Env: env, Subject: subject, Match: match}, nil
}

// fixtureError wraps err, keeping the position of a node error.
func fixtureError(path, prefix string, err error) *matcherr.FixtureError {
	var ne *nodeError
	if errors.As(err, &ne) {
		return matcherr.NewFixtureErrorAt(path, ne.line, ne.column, prefix+ne.msg)
	}
	return matcherr.NewFixtureError(path, prefix+err.Error())
}

// declare registers the declarations of raw in dependency order: classes
// first so that aliases, vars and names may refer to them.
func (raw *fixtureFile) declare(env *typeops.Env) error {
	for _, c := range raw.Classes {
		if c.Name == "" {
			return fmt.Errorf("classes: name must be provided")
		}
		fields, err := fieldList(&c.Fields)
		if err != nil {
			return fmt.Errorf("class %s: %w", c.Name, err)
		}
		_, err = env.DeclareClass(typeops.ClassSpec{
			Name:          c.Name,
			TypeParams:    c.TypeParams,
			Bases:         c.Bases,
			Fields:        fields,
			Final:         c.Final,
			NamedTuple:    c.NamedTuple,
			MatchArgs:     c.MatchArgs,
			MatchArgsType: c.MatchArgsType,
		})
		if err != nil {
			return err
		}
	}
	for _, a := range raw.Aliases {
		if _, err := env.DeclareAlias(a.Name, a.Target); err != nil {
			return err
		}
	}
	for _, v := range raw.Vars {
		if _, err := env.DeclareVar(v.Name, v.Type); err != nil {
			return err
		}
	}
	for name, typ := range raw.Names {
		t, err := env.Parse(typ)
		if err != nil {
			return fmt.Errorf("name %s: %w", name, err)
		}
		env.DeclareName(name, t)
	}
	return nil
}

// fieldList reads a field mapping in declaration order.
func fieldList(node *yaml.Node) ([]typeops.Field, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, nodeErr(node, "fields must be a mapping")
	}
	fields := make([]typeops.Field, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		fields = append(fields, typeops.Field{
			Name: node.Content[i].Value,
			Type: node.Content[i+1].Value,
		})
	}
	return fields, nil
}
