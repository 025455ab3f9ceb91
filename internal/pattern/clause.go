package pattern

// Body is the statement block of a clause. Lowering it is the job of the
// surrounding statement lowering.
type Body interface {
	BodyLabel() string
}

// Block is a named body used by fixtures and tests.
type Block struct {
	Label string
}

// BodyLabel returns the label.
func (b *Block) BodyLabel() string {
	return b.Label
}

// Clause is one "case pattern [if guard]: body" of a match statement.
type Clause struct {
	Pos
	Pattern Pattern
	Guard   Expr
	Body    Body
}

// Match is a whole match statement: subject expression, clauses and the
// table of names the clauses bind.
type Match struct {
	Subject Expr
	Clauses []Clause
	Locals  *Locals
}
