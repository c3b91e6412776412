package solver

import "testing"

func TestLuby(t *testing.T) {
	expected := []int64{1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8}
	for i, exp := range expected {
		if v := luby(int64(i + 1)); v != exp {
			t.Errorf("invalid luby(%d): expected %d, got %d", i+1, exp, v)
		}
	}
}

func TestGlueWindow(t *testing.T) {
	var r restartStats
	for i := 0; i < nbMaxRecent; i++ {
		r.addLbd(10)
	}
	if r.recentAvg < 9.99 || r.recentAvg > 10.01 {
		t.Errorf("invalid recent average: got %f", r.recentAvg)
	}
	r.clear()
	if r.nbRecent != 0 || r.recentAvg != 0 {
		t.Errorf("clear did not reset the window")
	}
}
