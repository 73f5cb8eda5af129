// csem.go — the Control-Stack-Environment machine (spec.md §4.4).
//
// Grounded on the teacher's vm.go for shape: a small struct holding the
// machine's mutable state plus push/pop helpers and a tight dispatch loop
// over a tagged instruction stream (there opcode, here ASTNodeType/Delta/
// Beta/environment-marker). The thirteen CSEM rules themselves have no
// teacher analogue — the teacher is a bytecode VM for a different language —
// and are built directly from spec.md §4.4 and the data model in §3.
//
// Control-list ordering convention (see control.go): a delta's Body is a
// list where consuming elements in order (append order = push order onto
// this machine's Control stack) makes a node's own operator/combinator
// token the last thing popped from its segment, after every value it
// depends on has already been reduced and pushed onto Stack. This lets the
// thirteen rules below simply pop "the last N pushed values" without any
// additional bookkeeping.
package rpal

// EnvMarker is the Control/Stack sentinel CSEM Rules 3 and 5 use to bound a
// closure call: pushed on both stacks when a closure is entered, it carries
// the environment to restore once the call's single result value surfaces.
type EnvMarker struct {
	Env *Environment
}

// pushedValue is an internal-only control item: a value already computed,
// queued to be re-materialized onto Stack at the right moment. It has no
// counterpart in spec.md's token set; it exists solely to sequence Rule 13's
// two nested applications (F (Y F) arg) through the same Control/Stack
// machinery every other rule uses, rather than special-casing recursion.
type pushedValue struct {
	v Value
}

type machine struct {
	control []interface{}
	stack   []interface{}
	env     *Environment
}

// Run drives the CSE machine to completion starting from delta0's body
// (BuildControl has already wired delta0.DefiningEnv's parent to the
// primitive environment) and returns the single value left on Stack when
// the machine halts (dummy when the program's last step is a Print call).
func Run(delta0 *Delta) (Value, error) {
	em0 := &EnvMarker{Env: nil}
	m := &machine{
		control: []interface{}{em0},
		stack:   []interface{}{em0},
		env:     delta0.DefiningEnv,
	}
	m.pushControlBody(delta0.Body)

	// The bootstrap marker at control[0]/stack[0] is never popped: the loop
	// stops once Control is reduced to just that sentinel, matching spec.md
	// §8 invariant 6 (Control empty, Stack holding one value plus the
	// initial marker).
	for len(m.control) > 1 {
		if err := m.step(); err != nil {
			return Value{}, err
		}
	}

	if len(m.stack) != 2 {
		return Value{}, &MalformedTreeError{Rule: "CSEM", Msg: "machine halted with a malformed final stack"}
	}
	result, ok := m.stack[1].(Value)
	if !ok {
		return Value{}, &MalformedTreeError{Rule: "CSEM", Msg: "machine halted without a final value"}
	}
	return result, nil
}

func (m *machine) pushControl(item interface{}) { m.control = append(m.control, item) }

func (m *machine) popControl() interface{} {
	last := len(m.control) - 1
	item := m.control[last]
	m.control = m.control[:last]
	return item
}

// pushControlBody appends body's elements in list order; see the file
// comment for why this order yields correct left-to-right evaluation.
func (m *machine) pushControlBody(body []interface{}) {
	m.control = append(m.control, body...)
}

func (m *machine) pushStack(item interface{}) { m.stack = append(m.stack, item) }

func (m *machine) popStack() interface{} {
	last := len(m.stack) - 1
	item := m.stack[last]
	m.stack = m.stack[:last]
	return item
}

func (m *machine) popValue() (Value, error) {
	item := m.popStack()
	v, ok := item.(Value)
	if !ok {
		return Value{}, &MalformedTreeError{Rule: "CSEM", Msg: "expected a value on Stack, found an environment marker"}
	}
	return v, nil
}

func (m *machine) step() error {
	item := m.popControl()
	switch v := item.(type) {
	case *ASTNode:
		return m.stepNode(v)
	case *Delta:
		// R2: stack a lambda as a closure over the *current* environment.
		m.pushStack(ClosureVal(&Closure{Delta: v, Env: m.env}))
		return nil
	case *Beta:
		return m.stepBeta(v)
	case *EnvMarker:
		return m.stepEnvMarker(v)
	case *pushedValue:
		m.pushStack(v.v)
		return nil
	}
	return &MalformedTreeError{Rule: "CSEM", Msg: "unrecognized control item"}
}

func (m *machine) stepNode(node *ASTNode) error {
	switch node.Type {
	case IDENTIFIER:
		val, err := m.env.Lookup(node.Value)
		if err != nil {
			return err
		}
		m.pushStack(val)
		return nil
	case INTEGER:
		n, err := parseRPALInt(node.Value)
		if err != nil {
			return err
		}
		m.pushStack(IntVal(n))
		return nil
	case STRING:
		m.pushStack(StringVal(node.Value))
		return nil
	case TRUE:
		m.pushStack(BoolVal(true))
		return nil
	case FALSE:
		m.pushStack(BoolVal(false))
		return nil
	case NIL:
		m.pushStack(NilVal)
		return nil
	case DUMMY:
		m.pushStack(DummyVal)
		return nil
	case YSTAR:
		m.pushStack(YStarVal)
		return nil
	case GAMMA:
		return m.stepGamma()
	case TAU:
		return m.stepTau(node)
	case OR, AND, GR, GE, LS, LE, EQ, NE, PLUS, MINUS, MULT, DIV, EXP:
		return m.stepBinaryOp(node.Type)
	case NOT, NEG:
		return m.stepUnaryOp(node.Type)
	}
	return &MalformedTreeError{Rule: "CSEM", Msg: "node type " + node.Type.String() + " has no runtime rule"}
}

// stepGamma implements Rules 3, 4, 10, 12 and kicks off Rule 13: it pops
// rand then rator (control.go orders GAMMA's children so rator is always
// evaluated first and rand second, leaving rand on top) and dispatches on
// rator's shape.
func (m *machine) stepGamma() error {
	rand, err := m.popValue()
	if err != nil {
		return err
	}
	rator, err := m.popValue()
	if err != nil {
		return err
	}

	switch rator.Tag {
	case VClosure:
		return m.callClosure(rator.Closure, rand)
	case VBuiltin, VPartial:
		return m.applyBuiltin(rator.Builtin, rand)
	case VTuple:
		return m.selectTuple(rator, rand) // R10
	case VYStar:
		if rand.Tag != VClosure {
			return &TypeError{Op: "YSTAR", Expected: "function", Got: rand.TypeName()}
		}
		m.pushStack(EtaVal(rand.Closure)) // R12
		return nil
	case VEta:
		return m.applyEta(rator, rand) // R13
	}
	return &TypeError{Op: "apply", Expected: "function", Got: rator.TypeName()}
}

// callClosure implements Rule 3 (and Rule 11's destructuring when the
// closure binds more than one name).
func (m *machine) callClosure(c *Closure, rand Value) error {
	newEnv := NewEnvironment(c.Env)
	switch n := len(c.Delta.BoundVars); {
	case n == 1:
		newEnv.Define(c.Delta.BoundVars[0], rand)
	case n > 1:
		if rand.Tag != VTuple || len(rand.Tuple) != n {
			got := 1
			if rand.Tag == VTuple {
				got = len(rand.Tuple)
			}
			return &ArityMismatchError{Want: n, Got: got}
		}
		for i, name := range c.Delta.BoundVars {
			newEnv.Define(name, rand.Tuple[i])
		}
	}

	marker := &EnvMarker{Env: m.env}
	m.pushControl(marker)
	m.pushControlBody(c.Delta.Body)
	m.pushStack(marker)
	m.env = newEnv
	return nil
}

// applyBuiltin implements Rule 4, including the currying case (Conc):
// a builtin with more bound arguments still owed becomes a VPartial.
func (m *machine) applyBuiltin(b *Builtin, rand Value) error {
	args := make([]Value, 0, len(b.Bound)+1)
	args = append(args, b.Bound...)
	args = append(args, rand)

	if len(args) < b.Arity {
		m.pushStack(Value{Tag: VPartial, Builtin: &Builtin{Name: b.Name, Arity: b.Arity, Bound: args, Apply: b.Apply}})
		return nil
	}
	result, err := b.Apply(args)
	if err != nil {
		return err
	}
	m.pushStack(result)
	return nil
}

// selectTuple implements Rule 10.
func (m *machine) selectTuple(tuple, index Value) error {
	if index.Tag != VInt {
		return &TypeError{Op: "tuple selection", Expected: "int", Got: index.TypeName()}
	}
	i := index.Int
	if i < 1 || int(i) > len(tuple.Tuple) {
		return &TupleIndexOutOfRangeError{Index: int(i), Len: len(tuple.Tuple)}
	}
	m.pushStack(tuple.Tuple[i-1])
	return nil
}

// applyEta implements Rule 13: F (Y F) arg, choreographed as two GAMMA
// applications queued on Control so the existing Rule 3/4 code handles both,
// rather than recursing through callClosure directly (the intermediate F
// (Y F) result might itself be a builtin-shaped partial in principle, so
// routing back through stepGamma keeps this rule honest about what rator
// can be).
func (m *machine) applyEta(eta, arg Value) error {
	closure := Value{Tag: VClosure, Closure: eta.Eta}
	outerGamma := NewASTNode(GAMMA)
	innerGamma := NewASTNode(GAMMA)

	m.pushControl(outerGamma)
	m.pushControl(&pushedValue{arg})
	m.pushControl(innerGamma)
	m.pushControl(&pushedValue{eta})
	m.pushControl(&pushedValue{closure})
	return nil
}

// stepBeta implements Rule 8: the guard's boolean is already on Stack.
func (m *machine) stepBeta(b *Beta) error {
	cond, err := m.popValue()
	if err != nil {
		return err
	}
	if cond.Tag != VBool {
		return &TypeError{Op: "conditional", Expected: "bool", Got: cond.TypeName()}
	}
	chosen := b.Else
	if cond.Bool {
		chosen = b.Then
	}
	m.pushControlBody(chosen.Body)
	return nil
}

// stepEnvMarker implements Rule 5.
func (m *machine) stepEnvMarker(cm *EnvMarker) error {
	result, err := m.popValue()
	if err != nil {
		return err
	}
	sm, ok := m.popStack().(*EnvMarker)
	if !ok {
		return &MalformedTreeError{Rule: "CSEM", Msg: "environment marker mismatch between Control and Stack"}
	}
	_ = sm
	m.env = cm.Env
	m.pushStack(result)
	return nil
}

// stepTau implements Rule 9: the n values popped come off in reverse of
// their source order (see the comment in control.go's buildBody), so reversing them
// back restores E1..En -> element1..elementN.
func (m *machine) stepTau(node *ASTNode) error {
	n := len(childList(node))
	vals := make([]Value, n)
	for i := 0; i < n; i++ {
		v, err := m.popValue()
		if err != nil {
			return err
		}
		vals[i] = v
	}
	for i, j := 0, len(vals)-1; i < j; i, j = i+1, j-1 {
		vals[i], vals[j] = vals[j], vals[i]
	}
	m.pushStack(TupleVal(vals))
	return nil
}

// stepBinaryOp implements Rule 6. Control order leaves the right operand on
// top of Stack and the left operand beneath it.
func (m *machine) stepBinaryOp(op ASTNodeType) error {
	right, err := m.popValue()
	if err != nil {
		return err
	}
	left, err := m.popValue()
	if err != nil {
		return err
	}

	switch op {
	case OR:
		return m.pushBoolOp(op, left, right)
	case AND:
		return m.pushBoolOp(op, left, right)
	case PLUS, MINUS, MULT, DIV, EXP:
		return m.pushArith(op, left, right)
	case GR, GE, LS, LE:
		return m.pushOrderCompare(op, left, right)
	case EQ, NE:
		return m.pushEquality(op, left, right)
	}
	return &MalformedTreeError{Rule: "CSEM", Msg: "unrecognized binary operator"}
}

func (m *machine) pushBoolOp(op ASTNodeType, left, right Value) error {
	if left.Tag != VBool || right.Tag != VBool {
		return &TypeError{Op: op.String(), Expected: "bool", Got: mismatchedTypeName(left, right)}
	}
	if op == OR {
		m.pushStack(BoolVal(left.Bool || right.Bool))
	} else {
		m.pushStack(BoolVal(left.Bool && right.Bool))
	}
	return nil
}

func (m *machine) pushArith(op ASTNodeType, left, right Value) error {
	if left.Tag != VInt || right.Tag != VInt {
		return &TypeError{Op: op.String(), Expected: "int", Got: mismatchedTypeName(left, right)}
	}
	switch op {
	case PLUS:
		m.pushStack(IntVal(left.Int + right.Int))
	case MINUS:
		m.pushStack(IntVal(left.Int - right.Int))
	case MULT:
		m.pushStack(IntVal(left.Int * right.Int))
	case DIV:
		if right.Int == 0 {
			return &DivisionByZeroError{}
		}
		m.pushStack(IntVal(left.Int / right.Int))
	case EXP:
		m.pushStack(IntVal(intPow(left.Int, right.Int)))
	}
	return nil
}

func (m *machine) pushOrderCompare(op ASTNodeType, left, right Value) error {
	if left.Tag != VInt || right.Tag != VInt {
		return &TypeError{Op: op.String(), Expected: "int", Got: mismatchedTypeName(left, right)}
	}
	var result bool
	switch op {
	case GR:
		result = left.Int > right.Int
	case GE:
		result = left.Int >= right.Int
	case LS:
		result = left.Int < right.Int
	case LE:
		result = left.Int <= right.Int
	}
	m.pushStack(BoolVal(result))
	return nil
}

func (m *machine) pushEquality(op ASTNodeType, left, right Value) error {
	eq := valuesEqual(left, right)
	if op == NE {
		eq = !eq
	}
	m.pushStack(BoolVal(eq))
	return nil
}

// stepUnaryOp implements Rule 7.
func (m *machine) stepUnaryOp(op ASTNodeType) error {
	operand, err := m.popValue()
	if err != nil {
		return err
	}
	switch op {
	case NEG:
		if operand.Tag != VInt {
			return &TypeError{Op: "neg", Expected: "int", Got: operand.TypeName()}
		}
		m.pushStack(IntVal(-operand.Int))
	case NOT:
		if operand.Tag != VBool {
			return &TypeError{Op: "not", Expected: "bool", Got: operand.TypeName()}
		}
		m.pushStack(BoolVal(!operand.Bool))
	}
	return nil
}

func valuesEqual(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VInt:
		return a.Int == b.Int
	case VString:
		return a.Str == b.Str
	case VBool:
		return a.Bool == b.Bool
	case VNil, VDummy:
		return true
	case VTuple:
		if len(a.Tuple) != len(b.Tuple) {
			return false
		}
		for i := range a.Tuple {
			if !valuesEqual(a.Tuple[i], b.Tuple[i]) {
				return false
			}
		}
		return true
	default:
		return false // functions are never equal, even to themselves
	}
}

func mismatchedTypeName(left, right Value) string {
	if left.TypeName() != "int" && left.TypeName() != "bool" {
		return left.TypeName()
	}
	return right.TypeName()
}

func intPow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	result := int64(1)
	for i := int64(0); i < exp; i++ {
		result *= base
	}
	return result
}

func parseRPALInt(s string) (int64, error) {
	var n int64
	for i := 0; i < len(s); i++ {
		n = n*10 + int64(s[i]-'0')
	}
	return n, nil
}
