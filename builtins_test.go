package rpal

import "testing"

func findBuiltin(t *testing.T, env *Environment, name string) *Builtin {
	t.Helper()
	v, err := env.Lookup(name)
	if err != nil {
		t.Fatalf("expected primitive %s to be bound: %v", name, err)
	}
	if v.Tag != VBuiltin {
		t.Fatalf("expected %s to be a builtin, got tag %v", name, v.Tag)
	}
	return v.Builtin
}

func Test_Builtins_Stem(t *testing.T) {
	env := NewPrimitiveEnvironment()
	b := findBuiltin(t, env, "Stem")
	v, err := b.Apply([]Value{StringVal("hello")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Str != "h" {
		t.Fatalf("expected %q, got %q", "h", v.Str)
	}
}

func Test_Builtins_StemOnEmptyString(t *testing.T) {
	env := NewPrimitiveEnvironment()
	b := findBuiltin(t, env, "Stem")
	v, err := b.Apply([]Value{StringVal("")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Str != "" {
		t.Fatalf("expected empty string, got %q", v.Str)
	}
}

func Test_Builtins_Stern(t *testing.T) {
	env := NewPrimitiveEnvironment()
	b := findBuiltin(t, env, "Stern")
	v, err := b.Apply([]Value{StringVal("hello")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Str != "ello" {
		t.Fatalf("expected %q, got %q", "ello", v.Str)
	}
}

// Currying itself (a partial Conc application yielding a VPartial) is
// exercised end-to-end in csem_test.go; this test only checks the
// fully-applied result and the declared arity.
func Test_Builtins_ConcFullyApplied(t *testing.T) {
	env := NewPrimitiveEnvironment()
	b := findBuiltin(t, env, "Conc")
	if b.Arity != 2 {
		t.Fatalf("expected Conc arity 2, got %d", b.Arity)
	}
	full, err := b.Apply([]Value{StringVal("foo"), StringVal("bar")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if full.Str != "foobar" {
		t.Fatalf("expected %q, got %q", "foobar", full.Str)
	}
}

func Test_Builtins_Order(t *testing.T) {
	env := NewPrimitiveEnvironment()
	b := findBuiltin(t, env, "Order")
	v, err := b.Apply([]Value{TupleVal([]Value{IntVal(1), IntVal(2), IntVal(3)})})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Int != 3 {
		t.Fatalf("expected 3, got %d", v.Int)
	}
}

func Test_Builtins_OrderRejectsNonTuple(t *testing.T) {
	env := NewPrimitiveEnvironment()
	b := findBuiltin(t, env, "Order")
	_, err := b.Apply([]Value{IntVal(5)})
	if _, ok := err.(*TypeError); !ok {
		t.Fatalf("expected *TypeError, got %T (%v)", err, err)
	}
}

func Test_Builtins_Null(t *testing.T) {
	env := NewPrimitiveEnvironment()
	b := findBuiltin(t, env, "Null")
	v, err := b.Apply([]Value{NilVal})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Bool {
		t.Fatalf("expected true for nil input")
	}
	v, err = b.Apply([]Value{IntVal(1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Bool {
		t.Fatalf("expected false for non-nil input")
	}
}

func Test_Builtins_TypePredicates(t *testing.T) {
	env := NewPrimitiveEnvironment()
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"Isinteger", IntVal(1), true},
		{"Isinteger", StringVal("x"), false},
		{"Istruthvalue", BoolVal(true), true},
		{"Isstring", StringVal("x"), true},
		{"Istuple", TupleVal(nil), true},
		{"Isdummy", DummyVal, true},
	}
	for _, c := range cases {
		b := findBuiltin(t, env, c.name)
		v, err := b.Apply([]Value{c.v})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.name, err)
		}
		if v.Bool != c.want {
			t.Errorf("%s(%v): expected %v, got %v", c.name, c.v, c.want, v.Bool)
		}
	}
}

func Test_Builtins_IsfunctionAcrossFunctionShapedTags(t *testing.T) {
	env := NewPrimitiveEnvironment()
	b := findBuiltin(t, env, "Isfunction")
	fnVals := []Value{
		ClosureVal(&Closure{}),
		EtaVal(&Closure{}),
		YStarVal,
		{Tag: VBuiltin, Builtin: &Builtin{Name: "Print", Arity: 1}},
		{Tag: VPartial, Builtin: &Builtin{Name: "Conc", Arity: 2}},
	}
	for _, fv := range fnVals {
		v, err := b.Apply([]Value{fv})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !v.Bool {
			t.Fatalf("expected tag %v to count as a function", fv.Tag)
		}
	}
	v, err := b.Apply([]Value{IntVal(1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Bool {
		t.Fatalf("expected non-function value to be false")
	}
}

func Test_Builtins_ItoS(t *testing.T) {
	env := NewPrimitiveEnvironment()
	b := findBuiltin(t, env, "ItoS")
	v, err := b.Apply([]Value{IntVal(42)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Str != "42" {
		t.Fatalf("expected %q, got %q", "42", v.Str)
	}
}

func Test_Builtins_ItoSRejectsNonInt(t *testing.T) {
	env := NewPrimitiveEnvironment()
	b := findBuiltin(t, env, "ItoS")
	_, err := b.Apply([]Value{StringVal("x")})
	if _, ok := err.(*TypeError); !ok {
		t.Fatalf("expected *TypeError, got %T (%v)", err, err)
	}
}

func Test_Builtins_StemRejectsNonString(t *testing.T) {
	env := NewPrimitiveEnvironment()
	b := findBuiltin(t, env, "Stem")
	_, err := b.Apply([]Value{IntVal(1)})
	if _, ok := err.(*TypeError); !ok {
		t.Fatalf("expected *TypeError, got %T (%v)", err, err)
	}
}
