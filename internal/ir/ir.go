// Package ir is the control-flow graph the match lowering engine emits into:
// basic blocks of primitive operations ending in jumps and branches.
package ir

import (
	"fmt"

	"martianoff/matchcore/internal/pattern"
)

// Graph is a lowered match statement. Control leaves through Join, which is
// left unterminated for the enclosing statement lowering.
type Graph struct {
	Entry  *BasicBlock
	Join   *BasicBlock
	Blocks []*BasicBlock
}

// BasicBlock is a straight-line run of ops ending in a terminator.
type BasicBlock struct {
	Label string
	Ops   []Op
	Term  Terminator
}

// Terminated reports whether the block already ends in a jump or branch.
func (b *BasicBlock) Terminated() bool {
	return b.Term != nil
}

// Successors returns the blocks control may continue with.
func (b *BasicBlock) Successors() []*BasicBlock {
	switch t := b.Term.(type) {
	case *Goto:
		return []*BasicBlock{t.Target}
	case *Branch:
		return []*BasicBlock{t.True, t.False}
	}
	return nil
}

// Value is an operand.
type Value interface {
	fmt.Stringer
	valueNode()
}

// Temp is a value computed by an op.
type Temp struct {
	ID int
}

func (*Temp) valueNode() {}

func (t *Temp) String() string {
	return fmt.Sprintf("%%%d", t.ID)
}

// Var is a named variable: the match subject, a global such as a class
// or an enum member, or a local bound by a pattern.
type Var struct {
	Name string
}

func (*Var) valueNode() {}

func (v *Var) String() string {
	return v.Name
}

// Const is a constant operand.
type Const struct {
	Value any
}

func (*Const) valueNode() {}

func (c *Const) String() string {
	return (&pattern.Const{Value: c.Value}).String()
}

// PrimOp selects a runtime primitive.
type PrimOp int

const (
	PrimSupportsSequence PrimOp = iota
	PrimLen
	PrimSequenceGetItem
	PrimSequenceGetSlice
	PrimSupportsMapping
	PrimMappingHasKey
	PrimMappingGetItem
	PrimDictCopy
	PrimDictDelItem
	PrimFastIsInstance
	PrimSlowIsInstance
)

var primNames = map[PrimOp]string{
	PrimSupportsSequence: "supports_sequence_protocol",
	PrimLen:              "len",
	PrimSequenceGetItem:  "sequence_get_item",
	PrimSequenceGetSlice: "sequence_get_slice",
	PrimSupportsMapping:  "supports_mapping_protocol",
	PrimMappingHasKey:    "mapping_has_key",
	PrimMappingGetItem:   "mapping_get_item",
	PrimDictCopy:         "dict_copy",
	PrimDictDelItem:      "dict_del_item",
	PrimFastIsInstance:   "fast_isinstance",
	PrimSlowIsInstance:   "slow_isinstance",
}

func (op PrimOp) String() string {
	if name, ok := primNames[op]; ok {
		return name
	}
	return fmt.Sprintf("prim(%d)", int(op))
}

// HasResult reports whether the primitive produces a value.
func (op PrimOp) HasResult() bool {
	return op != PrimDictDelItem
}

// Op is a non-terminating operation.
type Op interface {
	opNode()
}

// Assign stores a value into a variable.
type Assign struct {
	Target *Var
	Value  Value
}

// Prim calls a runtime primitive. Result is nil for primitives without one.
type Prim struct {
	Result *Temp
	Op     PrimOp
	Args   []Value
}

// BinaryOp applies a comparison or arithmetic operator.
type BinaryOp struct {
	Result *Temp
	Op     string
	Left   Value
	Right  Value
}

// GetAttr reads an attribute.
type GetAttr struct {
	Result *Temp
	Object Value
	Attr   string
}

// Exec runs the body of a clause.
type Exec struct {
	Body pattern.Body
}

func (*Assign) opNode()   {}
func (*Prim) opNode()     {}
func (*BinaryOp) opNode() {}
func (*GetAttr) opNode()  {}
func (*Exec) opNode()     {}

// Terminator ends a block.
type Terminator interface {
	terminatorNode()
}

// Goto jumps unconditionally.
type Goto struct {
	Target *BasicBlock
}

// Branch jumps to True if Cond holds, to False otherwise.
type Branch struct {
	Cond  Value
	True  *BasicBlock
	False *BasicBlock
}

func (*Goto) terminatorNode()   {}
func (*Branch) terminatorNode() {}
