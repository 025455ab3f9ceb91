// Package driver runs a match statement fixture through the type engine and
// the lowering engine.
package driver

import (
	"log"

	"martianoff/matchcore/internal/checker"
	"martianoff/matchcore/internal/config"
	"martianoff/matchcore/internal/fixture"
	"martianoff/matchcore/internal/ir"
	"martianoff/matchcore/internal/lower"
	"martianoff/matchcore/matcherr"
)

// Loader reads a fixture from disk.
type Loader interface {
	Load(path string) (*fixture.Fixture, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) (*fixture.Fixture, error)

func (f LoaderFunc) Load(path string) (*fixture.Fixture, error) {
	return f(path)
}

// Result is the outcome of running a fixture.
type Result struct {
	Fixture     *fixture.Fixture
	Report      *checker.MatchReport
	Diagnostics []*matcherr.PatternError
	// Graph is nil unless the fixture was lowered.
	Graph *ir.Graph
}

// Pipeline orchestrates loading, checking and lowering.
type Pipeline struct {
	loader Loader
	cfg    *config.Config
}

// New creates a Pipeline reading fixtures with fixture.Load. A nil cfg means
// config.DefaultConfig().
func New(cfg *config.Config) *Pipeline {
	return NewWithLoader(LoaderFunc(fixture.Load), cfg)
}

// NewWithLoader creates a Pipeline with its loader injected.
func NewWithLoader(loader Loader, cfg *config.Config) *Pipeline {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Pipeline{loader: loader, cfg: cfg}
}

func (p *Pipeline) tracef(format string, args ...any) {
	if p.cfg.Verbose {
		log.Printf(format, args...)
	}
}

// Check loads the fixture at path and type checks its match statement.
// Structural diagnostics are returned in the Result, not as an error.
func (p *Pipeline) Check(path string) (*Result, error) {
	f, err := p.loader.Load(path)
	if err != nil {
		return nil, err
	}
	p.tracef("loaded %s: %d clause(s), subject %s", path, len(f.Match.Clauses), f.Subject)

	diags := matcherr.NewCollector()
	c, err := checker.New(f.Env, diags, p.cfg)
	if err != nil {
		return nil, err
	}
	report := c.CheckMatch(f.Subject, f.Match.Clauses)
	p.tracef("checked %s: residual %s, %d diagnostic(s)", path, report.Residual, len(diags.Errors))

	return &Result{Fixture: f, Report: report, Diagnostics: diags.Errors}, nil
}

// Lower checks the fixture and lowers it into a control-flow graph. A
// fixture with diagnostics is not lowered; the diagnostics come back as a
// *matcherr.MultiError.
func (p *Pipeline) Lower(path string) (*Result, error) {
	res, err := p.Check(path)
	if err != nil {
		return nil, err
	}
	if len(res.Diagnostics) > 0 {
		collector := &matcherr.Collector{Errors: res.Diagnostics}
		return res, collector.Err()
	}

	subject := &ir.Var{Name: fixture.SubjectName}
	g, err := lower.New(ir.NewBuilder(), p.cfg).Lower(res.Fixture.Match.Clauses, subject)
	if err != nil {
		return res, err
	}
	if err := g.Validate(); err != nil {
		return res, matcherr.NewInvariantError("%v", err)
	}
	p.tracef("lowered %s: %d block(s)", path, len(g.Blocks))
	res.Graph = g
	return res, nil
}
