package ir

import "fmt"

// Reachable returns the blocks reachable from the entry block.
func Reachable(g *Graph) map[*BasicBlock]bool {
	seen := map[*BasicBlock]bool{g.Entry: true}
	work := []*BasicBlock{g.Entry}
	for len(work) > 0 {
		block := work[len(work)-1]
		work = work[:len(work)-1]
		for _, next := range block.Successors() {
			if !seen[next] {
				seen[next] = true
				work = append(work, next)
			}
		}
	}
	return seen
}

// Validate checks that every reachable block other than the join block is
// terminated.
func (g *Graph) Validate() error {
	for block := range Reachable(g) {
		if block != g.Join && !block.Terminated() {
			return fmt.Errorf("block %s is not terminated", block.Label)
		}
	}
	return nil
}

// ReachableBodies returns the labels of the bodies some path from the entry
// block runs, in block order.
func (g *Graph) ReachableBodies() []string {
	reachable := Reachable(g)
	var out []string
	for _, block := range g.Blocks {
		if !reachable[block] {
			continue
		}
		for _, op := range block.Ops {
			if exec, ok := op.(*Exec); ok {
				out = append(out, exec.Body.BodyLabel())
			}
		}
	}
	return out
}
