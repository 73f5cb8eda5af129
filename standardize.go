// standardize.go — bottom-up rewrite of surface syntax into canonical form.
//
// Grounded directly on original_source/.../ast/AST.java's standardize()
// method: the same seven rules (LET, WHERE, FCNFORM, AT, WITHIN, SIMULTDEF,
// REC), the same post-order traversal (children standardized before the
// node itself), and the same lambda-chain construction shared by FCNFORM
// and multi-parameter LAMBDA. Ported from Java's mutable pointer-surgery
// style to Go's tagged-node-with-explicit-links style; the rewrites
// themselves are unchanged in meaning, per spec.md §4.1.
package rpal

// Standardize rewrites root's subtree in place into canonical form — only
// LAMBDA, GAMMA, EQUAL, COMMA, TAU, YSTAR, operators, conditionals and
// primitives remain afterward (spec.md §8 invariant 2).
func Standardize(root *ASTNode) error {
	return standardizeNode(root)
}

func standardizeNode(node *ASTNode) error {
	for child := node.Child; child != nil; child = child.Sibling {
		if err := standardizeNode(child); err != nil {
			return err
		}
	}

	switch node.Type {
	case LET:
		return standardizeLet(node)
	case WHERE:
		return standardizeWhere(node)
	case FCNFORM:
		return standardizeFcnForm(node)
	case AT:
		return standardizeAt(node)
	case WITHIN:
		return standardizeWithin(node)
	case SIMULTDEF:
		return standardizeSimultDef(node)
	case REC:
		return standardizeRec(node)
	case LAMBDA:
		return standardizeLambda(node)
	default:
		// Operators, CONDITIONAL, TAU, COMMA, literals: already canonical.
		return nil
	}
}

// standardizeLet: LET(EQUAL(X,E), P) -> GAMMA(LAMBDA(X,P), E)
func standardizeLet(node *ASTNode) error {
	equalNode := node.Child
	if equalNode == nil || equalNode.Type != EQUAL {
		return &MalformedTreeError{Rule: "LET", Msg: "left child is not EQUAL"}
	}
	x := equalNode.Child
	e := x.Sibling
	x.Sibling = equalNode.Sibling // P becomes X's sibling
	equalNode.Sibling = e         // E becomes LAMBDA's sibling (GAMMA's rand)
	equalNode.Type = LAMBDA
	node.Type = GAMMA
	return nil
}

// standardizeWhere: WHERE(P, EQUAL(X,E)) -> LET(EQUAL(X,E), P), then re-run
// the LET rule on the same node (mandatory re-entry per spec.md §4.1).
func standardizeWhere(node *ASTNode) error {
	p := node.Child
	equalNode := p.Sibling
	p.Sibling = nil
	equalNode.Sibling = p
	node.Child = equalNode
	node.Type = LET
	return standardizeLet(node)
}

// standardizeFcnForm: FCN_FORM(P, V1..Vn, E) -> EQUAL(P, LAMBDA-chain(V1..Vn,E))
func standardizeFcnForm(node *ASTNode) error {
	p := node.Child
	rest := p.Sibling // V1 -> ... -> Vn -> E
	p.Sibling = constructLambdaChain(rest)
	node.Type = EQUAL
	return nil
}

// standardizeAt: AT(E1, N, E2) -> GAMMA(GAMMA(N, E1), E2)
func standardizeAt(node *ASTNode) error {
	e1 := node.Child
	n := e1.Sibling
	e2 := n.Sibling

	inner := NewASTNode(GAMMA)
	inner.Child = n
	n.Sibling = e1
	e1.Sibling = nil
	inner.Sibling = e2

	node.Child = inner
	node.Type = GAMMA
	return nil
}

// standardizeWithin: WITHIN(EQUAL(X1,E1), EQUAL(X2,E2)) ->
// EQUAL(X2, GAMMA(LAMBDA(X1,E2), E1))
func standardizeWithin(node *ASTNode) error {
	left := node.Child
	right := left.Sibling
	if left.Type != EQUAL || right.Type != EQUAL {
		return &MalformedTreeError{Rule: "WITHIN", Msg: "one of the children is not EQUAL"}
	}
	x1 := left.Child
	e1 := x1.Sibling
	x2 := right.Child
	e2 := x2.Sibling

	lambdaNode := NewASTNode(LAMBDA)
	x1.Sibling = e2
	lambdaNode.Child = x1
	lambdaNode.Sibling = e1

	gammaNode := NewASTNode(GAMMA)
	gammaNode.Child = lambdaNode

	x2.Sibling = gammaNode
	node.Child = x2
	node.Type = EQUAL
	return nil
}

// standardizeSimultDef: SIMULTDEF(EQUAL(X1,E1), .., EQUAL(Xn,En)) ->
// EQUAL(COMMA(X1..Xn), TAU(E1..En))
func standardizeSimultDef(node *ASTNode) error {
	commaNode := NewASTNode(COMMA)
	tauNode := NewASTNode(TAU)

	for child := node.Child; child != nil; child = child.Sibling {
		if child.Type != EQUAL {
			return &MalformedTreeError{Rule: "SIMULTDEF", Msg: "one of the children is not EQUAL"}
		}
		x := child.Child
		e := x.Sibling
		appendChild(commaNode, x)
		appendChild(tauNode, e)
	}

	commaNode.Sibling = tauNode
	node.Child = commaNode
	node.Type = EQUAL
	return nil
}

// standardizeRec: REC(EQUAL(X,E)) -> EQUAL(X, GAMMA(YSTAR, LAMBDA(X,E)))
// The bound name X must appear in two places as structural copies, never
// shared references (spec.md §4.1).
func standardizeRec(node *ASTNode) error {
	equalNode := node.Child
	if equalNode == nil || equalNode.Type != EQUAL {
		return &MalformedTreeError{Rule: "REC", Msg: "child is not EQUAL"}
	}
	x := equalNode.Child // x.Sibling is E

	lambdaNode := NewASTNode(LAMBDA)
	lambdaNode.Child = x // x is already attached to its sibling E

	yStarNode := NewASTNode(YSTAR)
	gammaNode := NewASTNode(GAMMA)
	yStarNode.Sibling = lambdaNode
	gammaNode.Child = yStarNode

	xCopy := copyShallow(x)
	xCopy.Sibling = gammaNode

	node.Child = xCopy
	node.Type = EQUAL
	return nil
}

// standardizeLambda: LAMBDA(V1..Vn, E) -> LAMBDA(V1, LAMBDA-chain(V2..Vn,E))
// Single-parameter lambdas (n=1) are left unchanged; a COMMA parameter is a
// tuple pattern and stays attached to one LAMBDA rather than being expanded.
func standardizeLambda(node *ASTNode) error {
	rest := node.Child.Sibling
	node.Child.Sibling = constructLambdaChain(rest)
	return nil
}

// constructLambdaChain builds nested right-associative LAMBDA nodes from a
// linear sibling list V1 -> V2 -> ... -> Vn -> E (n>=1). If there is only
// one element left (n=0, just E), it is returned unchanged.
func constructLambdaChain(node *ASTNode) *ASTNode {
	if node.Sibling == nil {
		return node
	}
	lambdaNode := NewASTNode(LAMBDA)
	lambdaNode.Child = node
	if node.Sibling.Sibling != nil {
		node.Sibling = constructLambdaChain(node.Sibling)
	}
	return lambdaNode
}
