package pattern

import (
	"fmt"
	"strconv"

	"martianoff/matchcore/internal/types"
)

// Expr is an expression embedded in a pattern or guard. Its type and its
// runtime value come from the surrounding environment.
type Expr interface {
	fmt.Stringer
	exprNode()
}

// Const is a constant. Value is an int64 (or int), float64, string, bool,
// types.Bytes or nil.
type Const struct {
	Value any
}

func (*Const) exprNode() {}

func (c *Const) String() string {
	switch v := c.Value.(type) {
	case nil:
		return "None"
	case bool:
		if v {
			return "True"
		}
		return "False"
	case string:
		return strconv.Quote(v)
	case types.Bytes:
		return "b" + strconv.Quote(string(v))
	default:
		return fmt.Sprint(v)
	}
}

// Name is a (possibly dotted) reference to a value, such as Color.RED or
// a guard flag.
type Name struct {
	Name string
}

func (*Name) exprNode() {}

func (n *Name) String() string {
	return n.Name
}
