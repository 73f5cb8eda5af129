// control.go — flattens the standardized tree into numbered delta control
// blocks.
//
// Grounded on AST.java's createDeltas/createDelta/processPendingDeltaStack/
// buildDeltaBody: a LIFO worklist of pending delta bodies (spec.md §9's
// "Pending-delta worklist" note explicitly sanctions this numbering order),
// one fresh placeholder Environment allocated per delta at build time (the
// machine never fills these: Rule 2 closes over its current runtime
// environment, and Run starts in delta0's), and a pre-order walk that
// stops at LAMBDA boundaries instead of recursing into them.
//
// Conditional lowering (spec.md §4.4) has no analogue in AST.java (which
// predates CONDITIONAL's special control-building treatment in this spec);
// it is built here directly from spec.md's description: a CONDITIONAL node
// expands to a BETA marker plus two inner deltas for its then/else arms.
package rpal

// Delta is a compiled control block: a lambda body flattened to a sequence
// of AST nodes and nested Deltas, plus its formal parameters and the
// environment in effect when the delta was constructed (spec.md §3).
type Delta struct {
	Index       int
	Body        []interface{} // elements are *ASTNode, *Delta, or *Beta
	BoundVars   []string
	DefiningEnv *Environment
}

// Beta is the control-list marker produced by lowering a CONDITIONAL node:
// it carries the then- and else-arm deltas so Rule 8 can pick between them
// once the guard's boolean value is on the Stack.
type Beta struct {
	Then *Delta
	Else *Delta
}

type controlBuilder struct {
	deltas     []*Delta
	worklist   []*pendingDelta
	currentEnv *Environment
}

type pendingDelta struct {
	delta     *Delta
	startNode *ASTNode
}

// BuildControl linearizes the standardized tree rooted at root into
// delta0..deltaK, numbered in creation order, and returns delta0. The
// primitive environment (prim) becomes delta0's defining environment's
// parent.
func BuildControl(root *ASTNode, prim *Environment) *Delta {
	cb := &controlBuilder{currentEnv: prim}
	delta0 := cb.createDelta(root)
	cb.drainWorklist()
	return delta0
}

func (cb *controlBuilder) createDelta(startNode *ASTNode) *Delta {
	newEnv := NewEnvironment(cb.currentEnv)
	cb.currentEnv = newEnv

	d := &Delta{Index: len(cb.deltas), DefiningEnv: newEnv}
	cb.deltas = append(cb.deltas, d)
	cb.worklist = append(cb.worklist, &pendingDelta{delta: d, startNode: startNode})
	return d
}

func (cb *controlBuilder) drainWorklist() {
	for len(cb.worklist) > 0 {
		last := len(cb.worklist) - 1
		pending := cb.worklist[last]
		cb.worklist = cb.worklist[:last]
		cb.buildBody(pending.startNode, &pending.delta.Body)
	}
}

func (cb *controlBuilder) buildBody(node *ASTNode, body *[]interface{}) {
	switch node.Type {
	case LAMBDA:
		paramNode := node.Child
		bodyNode := paramNode.Sibling
		d := cb.createDelta(bodyNode)
		if paramNode.Type == COMMA {
			for name := paramNode.Child; name != nil; name = name.Sibling {
				d.BoundVars = append(d.BoundVars, name.Value)
			}
		} else {
			d.BoundVars = append(d.BoundVars, paramNode.Value)
		}
		*body = append(*body, d)
		return
	case CONDITIONAL:
		guard := node.Child
		thenNode := guard.Sibling
		elseNode := thenNode.Sibling
		thenDelta := cb.createDelta(thenNode)
		elseDelta := cb.createDelta(elseNode)
		// Beta is queued before the guard, same reasoning as the reversed
		// child order below: a node that consumes a value goes in ahead of
		// the subtree producing it, so that loading bodies onto the runtime
		// Control stack in this list order pops the guard first and Beta
		// only once the guard's boolean is sitting on the Stack.
		*body = append(*body, &Beta{Then: thenDelta, Else: elseDelta})
		cb.buildBody(guard, body)
		return
	}

	*body = append(*body, node)
	// Children are queued in reverse so that, once a delta's body is loaded
	// onto the runtime Control stack in this same list order, the first
	// child is the first one popped and evaluated: this gives left-to-right
	// evaluation for GAMMA's rator/rand, PLUS/MINUS's left/right operands,
	// and TAU's tuple elements (csem.go relies on this ordering).
	children := childList(node)
	for i := len(children) - 1; i >= 0; i-- {
		cb.buildBody(children[i], body)
	}
}

func childList(node *ASTNode) []*ASTNode {
	var out []*ASTNode
	for child := node.Child; child != nil; child = child.Sibling {
		out = append(out, child)
	}
	return out
}
