package rooms

import "testing"

func TestScore_Incorrect(t *testing.T) {
	for _, remaining := range []int{0, 5, 10} {
		if got := Score(false, remaining, 10); got != 0 {
			t.Errorf("Score(false, %d, 10) = %d, want 0", remaining, got)
		}
	}
}

func TestScore_Bounds(t *testing.T) {
	if got := Score(true, 0, 10); got != scoreBase {
		t.Errorf("Score(true, 0, 10) = %d, want %d", got, scoreBase)
	}
	if got := Score(true, 10, 10); got != scoreBase+scoreMaxBonus {
		t.Errorf("Score(true, 10, 10) = %d, want %d", got, scoreBase+scoreMaxBonus)
	}
}

func TestScore_NonDecreasingInTimeRemaining(t *testing.T) {
	const limit = 30
	prev := 0
	for remaining := 0; remaining <= limit; remaining++ {
		got := Score(true, remaining, limit)
		if got < prev {
			t.Errorf("Score(true, %d, %d) = %d, less than Score at %d (%d)", remaining, limit, got, remaining-1, prev)
		}
		prev = got
	}
}

func TestScore_ReferenceValues(t *testing.T) {
	tests := []struct {
		remaining, limit, want int
	}{
		{8, 10, 14}, // floor(8/10 * 5) = 4
		{5, 10, 12},
		{1, 10, 10},
		{9, 10, 14},
		{30, 30, 15},
	}
	for _, tt := range tests {
		if got := Score(true, tt.remaining, tt.limit); got != tt.want {
			t.Errorf("Score(true, %d, %d) = %d, want %d", tt.remaining, tt.limit, got, tt.want)
		}
	}
}

func TestScore_ClampsOutOfRangeRemaining(t *testing.T) {
	if got := Score(true, -3, 10); got != scoreBase {
		t.Errorf("Score(true, -3, 10) = %d, want %d", got, scoreBase)
	}
	if got := Score(true, 99, 10); got != scoreBase+scoreMaxBonus {
		t.Errorf("Score(true, 99, 10) = %d, want %d", got, scoreBase+scoreMaxBonus)
	}
}
