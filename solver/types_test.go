package solver

import "testing"

func TestIntToLit(t *testing.T) {
	tests := []struct {
		cnf int32
		lit Lit
	}{
		{1, 0},
		{-1, 1},
		{3, 4},
		{-3, 5},
	}
	for _, test := range tests {
		if lit := IntToLit(test.cnf); lit != test.lit {
			t.Errorf("invalid lit for %d: expected %d, got %d", test.cnf, test.lit, lit)
		}
		if back := test.lit.Int(); back != test.cnf {
			t.Errorf("invalid int for lit %d: expected %d, got %d", test.lit, test.cnf, back)
		}
	}
}

func TestLitNegation(t *testing.T) {
	for _, i := range []int32{1, -1, 7, -12} {
		lit := IntToLit(i)
		if lit.Negation().Int() != -i {
			t.Errorf("invalid negation for %d: got %d", i, lit.Negation().Int())
		}
		if lit.Negation().Negation() != lit {
			t.Errorf("double negation of %d is not the identity", i)
		}
		if lit.IsPositive() != (i > 0) {
			t.Errorf("invalid sign for %d", i)
		}
	}
}

func TestVarLit(t *testing.T) {
	v := IntToVar(4)
	if v.Lit().Int() != 4 {
		t.Errorf("expected lit 4, got %d", v.Lit().Int())
	}
	if v.SignedLit(true).Int() != -4 {
		t.Errorf("expected lit -4, got %d", v.SignedLit(true).Int())
	}
}
