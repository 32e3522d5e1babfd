package params

import (
	"reflect"
	"testing"
)

func TestSetKeepsInsertionOrder(t *testing.T) {
	a := New().Set("x", 1).Set("y", 2).Set("x", 3)

	if got := a.Keys(); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Fatalf("expected keys [x y], got %v", got)
	}
	if v, _ := a.Get("x"); v != 3 {
		t.Fatalf("expected x=3, got %v", v)
	}
}

func TestMergeOtherWins(t *testing.T) {
	base := New().Set("x", 1).Set("y", 2)
	base.Merge(New().Set("y", 5).Set("z", 6))

	want := []Pair{{"x", 1}, {"y", 5}, {"z", 6}}
	if got := base.Pairs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMergeNil(t *testing.T) {
	a := New().Set("a", 1)
	a.Merge(nil)
	if a.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", a.Len())
	}
}

func TestDelete(t *testing.T) {
	a := New().Set("problem", "P").Set("n", 5)
	if !a.Delete("problem") {
		t.Fatalf("expected problem to be deleted")
	}
	if a.Has("problem") {
		t.Fatalf("problem still present")
	}
	if a.Delete("problem") {
		t.Fatalf("second delete should report false")
	}
	if got := a.Keys(); !reflect.DeepEqual(got, []string{"n"}) {
		t.Fatalf("expected keys [n], got %v", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := New().Set("a", 1)
	b := a.Clone()
	b.Set("b", 2)
	if a.Has("b") {
		t.Fatalf("clone mutation leaked into original")
	}
}

func TestNilArgs(t *testing.T) {
	var a *Args
	if a.Len() != 0 || a.Pairs() != nil || a.Has("x") {
		t.Fatalf("nil Args should behave as empty")
	}
	if a.Clone().Len() != 0 {
		t.Fatalf("clone of nil should be empty")
	}
}

func TestFromMapSortsKeys(t *testing.T) {
	a := FromMap(map[string]any{"b": 1, "a": 2, "c": 3})
	if got := a.Keys(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("expected sorted keys, got %v", got)
	}
}

func TestTypedAccessors(t *testing.T) {
	a := New().
		Set("max_iters", 100).
		Set("lr_float", 0.1).
		Set("whole", 4.0).
		Set("bias", true).
		Set("activation", "relu").
		Set("layers", []any{4, 2.0}).
		Set("single", 3)

	if n, err := a.Int("max_iters", 0); err != nil || n != 100 {
		t.Fatalf("Int: got %d, %v", n, err)
	}
	if n, err := a.Int("whole", 0); err != nil || n != 4 {
		t.Fatalf("Int from integral float: got %d, %v", n, err)
	}
	if _, err := a.Int("lr_float", 0); err == nil {
		t.Fatalf("expected error for fractional float")
	}
	if n, err := a.Int("missing", 7); err != nil || n != 7 {
		t.Fatalf("Int default: got %d, %v", n, err)
	}
	if f, err := a.Float("max_iters", 0); err != nil || f != 100 {
		t.Fatalf("Float from int: got %f, %v", f, err)
	}
	if b, err := a.Bool("bias", false); err != nil || !b {
		t.Fatalf("Bool: got %v, %v", b, err)
	}
	if _, err := a.Bool("activation", false); err == nil {
		t.Fatalf("expected type error for Bool")
	}
	if s, err := a.Str("activation", ""); err != nil || s != "relu" {
		t.Fatalf("Str: got %q, %v", s, err)
	}
	if got, err := a.IntSlice("layers", nil); err != nil || !reflect.DeepEqual(got, []int{4, 2}) {
		t.Fatalf("IntSlice: got %v, %v", got, err)
	}
	if got, err := a.IntSlice("single", nil); err != nil || !reflect.DeepEqual(got, []int{3}) {
		t.Fatalf("IntSlice scalar: got %v, %v", got, err)
	}
}

type label string

func (l label) String() string { return "label:" + string(l) }

func TestToStruct(t *testing.T) {
	a := New().
		Set("n", 7).
		Set("layers", []int{4, 2}).
		Set("schedule", label("geom")).
		Set("ch", make(chan int))

	s := a.ToStruct()
	if got := s.Fields["n"].GetNumberValue(); got != 7 {
		t.Fatalf("expected n=7, got %v", got)
	}
	if got := len(s.Fields["layers"].GetListValue().GetValues()); got != 2 {
		t.Fatalf("expected 2 layers, got %d", got)
	}
	if got := s.Fields["schedule"].GetStringValue(); got != "label:geom" {
		t.Fatalf("expected stringer rendering, got %q", got)
	}
	if s.Fields["ch"].GetStringValue() == "" {
		t.Fatalf("expected fallback string rendering for channel")
	}
}

func TestString(t *testing.T) {
	a := New().Set("a", 1).Set("b", "x")
	if got := a.String(); got != "{a: 1, b: x}" {
		t.Fatalf("unexpected rendering %q", got)
	}
}
