package ir

import (
	"fmt"

	"martianoff/matchcore/internal/pattern"
)

// Builder appends ops to the active block of a graph under construction.
type Builder struct {
	blocks []*BasicBlock
	entry  *BasicBlock
	active *BasicBlock
	temps  int
}

// NewBuilder creates a builder whose entry block is active.
func NewBuilder() *Builder {
	b := &Builder{}
	b.entry = b.newBlock("entry")
	b.active = b.entry
	return b
}

func (b *Builder) newBlock(label string) *BasicBlock {
	if label == "" {
		label = fmt.Sprintf("bb%d", len(b.blocks))
	}
	block := &BasicBlock{Label: label}
	b.blocks = append(b.blocks, block)
	return block
}

// NewBlock allocates a block without activating it.
func (b *Builder) NewBlock() *BasicBlock {
	return b.newBlock("")
}

// Activate makes block the target of subsequent ops.
func (b *Builder) Activate(block *BasicBlock) {
	b.active = block
}

// Active returns the block ops are appended to.
func (b *Builder) Active() *BasicBlock {
	return b.active
}

// Goto ends the active block with a jump. A block that is already
// terminated is left alone.
func (b *Builder) Goto(target *BasicBlock) {
	if b.active.Terminated() {
		return
	}
	b.active.Term = &Goto{Target: target}
}

// Branch ends the active block with a conditional jump.
func (b *Builder) Branch(cond Value, ifTrue, ifFalse *BasicBlock) {
	if b.active.Terminated() {
		return
	}
	b.active.Term = &Branch{Cond: cond, True: ifTrue, False: ifFalse}
}

func (b *Builder) emit(op Op) {
	b.active.Ops = append(b.active.Ops, op)
}

func (b *Builder) temp() *Temp {
	t := &Temp{ID: b.temps}
	b.temps++
	return t
}

// LoadInt returns an integer constant.
func (b *Builder) LoadInt(n int) Value {
	return &Const{Value: int64(n)}
}

// Constant returns a constant for an int64, float64, string, bool,
// types.Bytes or nil value.
func (b *Builder) Constant(v any) Value {
	return &Const{Value: v}
}

// Expr evaluates a pattern or guard expression.
func (b *Builder) Expr(e pattern.Expr) Value {
	switch x := e.(type) {
	case *pattern.Const:
		return b.Constant(x.Value)
	case *pattern.Name:
		return &Var{Name: x.Name}
	}
	return &Var{Name: e.String()}
}

// BinaryOp emits left op right.
func (b *Builder) BinaryOp(op string, left, right Value) Value {
	result := b.temp()
	b.emit(&BinaryOp{Result: result, Op: op, Left: left, Right: right})
	return result
}

// Primitive emits a runtime primitive call. It returns nil for primitives
// without a result.
func (b *Builder) Primitive(op PrimOp, args ...Value) Value {
	prim := &Prim{Op: op, Args: args}
	if !op.HasResult() {
		b.emit(prim)
		return nil
	}
	prim.Result = b.temp()
	b.emit(prim)
	return prim.Result
}

// GetAttr emits a generic attribute read.
func (b *Builder) GetAttr(obj Value, attr string) Value {
	result := b.temp()
	b.emit(&GetAttr{Result: result, Object: obj, Attr: attr})
	return result
}

// Assign binds a pattern target.
func (b *Builder) Assign(target *pattern.Target, v Value) {
	b.emit(&Assign{Target: &Var{Name: target.Name}, Value: v})
}

// Body emits the execution of a clause body.
func (b *Builder) Body(body pattern.Body) {
	b.emit(&Exec{Body: body})
}

// Finish returns the graph built so far with join as its exit.
func (b *Builder) Finish(join *BasicBlock) *Graph {
	blocks := make([]*BasicBlock, len(b.blocks))
	copy(blocks, b.blocks)
	return &Graph{Entry: b.entry, Join: join, Blocks: blocks}
}
