package rules

import (
	"errors"
	"testing"

	"github.com/solatis/subordinate/internal/types"
)

func TestNewCompare_Validation(t *testing.T) {
	trigger := &field{id: "t"}

	tests := []struct {
		name    string
		op      Operator
		trigger Trigger
		value   any
		wantErr error
	}{
		{name: "valid equal", op: OpEq, trigger: trigger, value: "x"},
		{name: "valid match", op: OpMatch, trigger: trigger, value: "^x$"},
		{name: "unspecified operator", op: OpUnspecified, trigger: trigger, value: "x", wantErr: types.ErrInvalidArgument},
		{name: "out of range operator", op: Operator(99), trigger: trigger, value: "x", wantErr: types.ErrInvalidArgument},
		{name: "nil trigger", op: OpEq, trigger: nil, value: "x", wantErr: types.ErrInvalidArgument},
		{name: "match with number", op: OpMatch, trigger: trigger, value: 5, wantErr: types.ErrInvalidArgument},
		{name: "match with bad pattern", op: OpMatch, trigger: trigger, value: "(", wantErr: types.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCompare(tt.op, tt.trigger, tt.value)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("NewCompare() error = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewCompare() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompare_IsTrueReadsLiveValue(t *testing.T) {
	trigger := &field{id: "t", value: "false"}
	c := mustCompare(OpEq, trigger, "false")

	if !c.IsTrue() {
		t.Fatalf("IsTrue() = false, want true")
	}
	trigger.value = "true"
	if c.IsTrue() {
		t.Errorf("IsTrue() after value change = true, want false")
	}
}

func TestCompare_String(t *testing.T) {
	labelled := &field{id: "t1", label: "Country"}
	bare := &field{id: "t2"}

	tests := []struct {
		cond *Compare
		want string
	}{
		{mustCompare(OpEq, labelled, "AU"), `Country="AU"`},
		{mustCompare(OpNeq, bare, 1), `t2!="1"`},
		{mustCompare(OpLt, bare, 2), `t2<"2"`},
		{mustCompare(OpLte, bare, 3), `t2<="3"`},
		{mustCompare(OpGt, bare, 4), `t2>"4"`},
		{mustCompare(OpGte, bare, nil), `t2>=""`},
		{mustCompare(OpMatch, bare, "^a"), `t2 matches "^a"`},
	}
	for _, tt := range tests {
		if got := tt.cond.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}

func TestGroups(t *testing.T) {
	a := &field{id: "a", value: "1"}
	b := &field{id: "b", value: "2"}
	c := &field{id: "c", value: "3"}

	aTrue := mustCompare(OpEq, a, "1")
	bTrue := mustCompare(OpEq, b, "2")
	cFalse := mustCompare(OpEq, c, "x")

	tests := []struct {
		name     string
		cond     Condition
		want     bool
		wantText string
	}{
		{"and all true", NewAnd(aTrue, bTrue), true, `(a="1" and b="2")`},
		{"and with false tail", NewAnd(aTrue, bTrue, cFalse), false, `(a="1" and b="2" and c="x")`},
		{"or with one true", NewOr(cFalse, bTrue), true, `(c="x" or b="2")`},
		{"or all false", NewOr(cFalse, cFalse), false, `(c="x" or c="x")`},
		{"not", NewNot(cFalse), true, `NOT (c="x")`},
		{"nested", NewOr(NewAnd(aTrue, cFalse), NewNot(aTrue)), false, `((a="1" and c="x") or NOT (a="1"))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cond.IsTrue(); got != tt.want {
				t.Errorf("IsTrue() = %v, want %v", got, tt.want)
			}
			if got := tt.cond.String(); got != tt.wantText {
				t.Errorf("String() = %s, want %s", got, tt.wantText)
			}
		})
	}
}

// countingCondition records how often it was evaluated.
type countingCondition struct {
	value bool
	calls int
}

func (c *countingCondition) IsTrue() bool   { c.calls++; return c.value }
func (c *countingCondition) String() string { return "counting" }

func TestGroups_ShortCircuit(t *testing.T) {
	first := &countingCondition{value: false}
	second := &countingCondition{value: true}
	NewAnd(first, second).IsTrue()
	if second.calls != 0 {
		t.Errorf("AND evaluated second operand after false, calls = %d", second.calls)
	}

	first = &countingCondition{value: true}
	second = &countingCondition{value: false}
	NewOr(first, second).IsTrue()
	if second.calls != 0 {
		t.Errorf("OR evaluated second operand after true, calls = %d", second.calls)
	}
}
