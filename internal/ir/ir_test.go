package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/matchcore/internal/ir"
	"martianoff/matchcore/internal/pattern"
)

func TestBuilderPrettyPrint(t *testing.T) {
	b := ir.NewBuilder()
	subject := &ir.Var{Name: "subject"}
	body := b.NewBlock()
	join := b.NewBlock()

	n := b.Primitive(ir.PrimLen, subject)
	cond := b.BinaryOp("==", n, b.LoadInt(2))
	b.Branch(cond, body, join)

	b.Activate(body)
	item := b.Primitive(ir.PrimSequenceGetItem, subject, b.LoadInt(0))
	b.Assign(&pattern.Target{Name: "x"}, item)
	b.Body(&pattern.Block{Label: "pairs"})
	b.Goto(join)
	b.Activate(join)

	g := b.Finish(join)
	require.NoError(t, g.Validate())
	expected := `entry:
    %0 = len(subject)
    %1 = %0 == 2
    branch %1, bb1, bb2
bb1:
    %2 = sequence_get_item(subject, 0)
    x = %2
    exec pairs
    goto bb2
bb2:
    ; join
`
	assert.Equal(t, expected, g.PrettyPrint())
	assert.Equal(t, []string{"pairs"}, g.ReachableBodies())
}

func TestGotoKeepsFirstTerminator(t *testing.T) {
	b := ir.NewBuilder()
	first := b.NewBlock()
	second := b.NewBlock()
	b.Goto(first)
	b.Goto(second)
	assert.Same(t, first, b.Active().Term.(*ir.Goto).Target)
}

func TestReachable(t *testing.T) {
	b := ir.NewBuilder()
	used := b.NewBlock()
	orphan := b.NewBlock()
	b.Goto(used)
	b.Activate(orphan)
	b.Body(&pattern.Block{Label: "dead"})
	b.Goto(used)

	g := b.Finish(used)
	reachable := ir.Reachable(g)
	assert.True(t, reachable[g.Entry])
	assert.True(t, reachable[used])
	assert.False(t, reachable[orphan])
	assert.Empty(t, g.ReachableBodies())
}

func TestValidateUnterminated(t *testing.T) {
	b := ir.NewBuilder()
	join := b.NewBlock()
	g := b.Finish(join)
	assert.EqualError(t, g.Validate(), "block entry is not terminated")
}

func TestValueStrings(t *testing.T) {
	b := ir.NewBuilder()
	assert.Equal(t, `"k"`, b.Constant("k").String())
	assert.Equal(t, "None", b.Constant(nil).String())
	assert.Equal(t, "True", b.Expr(&pattern.Const{Value: true}).String())
	assert.Equal(t, "Color.RED", b.Expr(&pattern.Name{Name: "Color.RED"}).String())
	assert.Nil(t, b.Primitive(ir.PrimDictDelItem, &ir.Var{Name: "d"}, b.Constant("k")))
	assert.Equal(t, "dict_del_item", ir.PrimDictDelItem.String())
	assert.False(t, ir.PrimDictDelItem.HasResult())
}
