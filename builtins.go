// builtins.go — the primitive environment (spec.md §4.3, §4.5).
//
// Grounded on the teacher's RegisterNative pattern (builtin_core.go /
// builtin_misc.go / builtin_strings.go bind a name to a Go func in a table
// that seeds the root environment) but adapted to this machine's simpler
// *Builtin{Name, Arity, Bound, Apply} value rather than the teacher's
// variadic native-function signature, since every RPAL primitive here has a
// fixed, small arity.
package rpal

import (
	"fmt"
	"strconv"
)

// NewPrimitiveEnvironment builds the environment that backs every program's
// outermost scope: the root of the parent chain, holding the built-ins
// spec.md §4.3 requires at minimum.
func NewPrimitiveEnvironment() *Environment {
	env := NewEnvironment(nil)
	for _, b := range primitives() {
		bb := b
		env.Define(bb.Name, Value{Tag: VBuiltin, Builtin: &bb})
	}
	return env
}

func primitives() []Builtin {
	return []Builtin{
		{Name: "Print", Arity: 1, Apply: builtinPrint},
		{Name: "Stem", Arity: 1, Apply: builtinStem},
		{Name: "Stern", Arity: 1, Apply: builtinStern},
		{Name: "Conc", Arity: 2, Apply: builtinConc},
		{Name: "Order", Arity: 1, Apply: builtinOrder},
		{Name: "Null", Arity: 1, Apply: builtinNull},
		{Name: "Isinteger", Arity: 1, Apply: builtinPredicate(VInt)},
		{Name: "Istruthvalue", Arity: 1, Apply: builtinPredicate(VBool)},
		{Name: "Isstring", Arity: 1, Apply: builtinPredicate(VString)},
		{Name: "Istuple", Arity: 1, Apply: builtinPredicate(VTuple)},
		{Name: "Isdummy", Arity: 1, Apply: builtinPredicate(VDummy)},
		{Name: "Isfunction", Arity: 1, Apply: builtinIsFunction},
		{Name: "ItoS", Arity: 1, Apply: builtinItoS},
	}
}

func builtinPrint(args []Value) (Value, error) {
	fmt.Print(FormatValue(args[0]))
	return DummyVal, nil
}

func builtinStem(args []Value) (Value, error) {
	s, err := requireString("Stem", args[0])
	if err != nil {
		return Value{}, err
	}
	if len(s) == 0 {
		return StringVal(""), nil
	}
	return StringVal(s[:1]), nil
}

func builtinStern(args []Value) (Value, error) {
	s, err := requireString("Stern", args[0])
	if err != nil {
		return Value{}, err
	}
	if len(s) == 0 {
		return StringVal(""), nil
	}
	return StringVal(s[1:]), nil
}

func builtinConc(args []Value) (Value, error) {
	a, err := requireString("Conc", args[0])
	if err != nil {
		return Value{}, err
	}
	b, err := requireString("Conc", args[1])
	if err != nil {
		return Value{}, err
	}
	return StringVal(a + b), nil
}

func builtinOrder(args []Value) (Value, error) {
	if args[0].Tag != VTuple {
		return Value{}, &TypeError{Op: "Order", Expected: "tuple", Got: args[0].TypeName()}
	}
	return IntVal(int64(len(args[0].Tuple))), nil
}

func builtinNull(args []Value) (Value, error) {
	return BoolVal(args[0].Tag == VNil), nil
}

func builtinPredicate(tag ValueTag) func([]Value) (Value, error) {
	return func(args []Value) (Value, error) {
		return BoolVal(args[0].Tag == tag), nil
	}
}

func builtinIsFunction(args []Value) (Value, error) {
	switch args[0].Tag {
	case VClosure, VEta, VBuiltin, VPartial, VYStar:
		return BoolVal(true), nil
	default:
		return BoolVal(false), nil
	}
}

func builtinItoS(args []Value) (Value, error) {
	if args[0].Tag != VInt {
		return Value{}, &TypeError{Op: "ItoS", Expected: "int", Got: args[0].TypeName()}
	}
	return StringVal(strconv.FormatInt(args[0].Int, 10)), nil
}

func requireString(op string, v Value) (string, error) {
	if v.Tag != VString {
		return "", &TypeError{Op: op, Expected: "string", Got: v.TypeName()}
	}
	return v.Str, nil
}
