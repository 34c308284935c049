package wfc

import "testing"

func TestPickWeightedSkipsNonPositive(t *testing.T) {
	tests := []struct {
		name    string
		weights []int
		rolls   []int
		want    []int
	}{
		{
			name:    "single positive weight",
			weights: []int{0, 5, 0},
			rolls:   []int{0, 1, 2, 3, 4},
			want:    []int{1, 1, 1, 1, 1},
		},
		{
			name:    "zero between positives",
			weights: []int{3, 0, 2},
			rolls:   []int{0, 2, 3, 4},
			want:    []int{0, 0, 2, 2},
		},
		{
			name:    "negative weights ignored",
			weights: []int{-4, 1, -1, 1},
			rolls:   []int{0, 1},
			want:    []int{1, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &sequenceSource{values: tt.rolls}
			for i, want := range tt.want {
				if got := PickWeighted(src, tt.weights); got != want {
					t.Errorf("roll %d: PickWeighted() = %d, want %d", tt.rolls[i], got, want)
				}
			}
		})
	}
}

func TestPickWeightedNoPositiveWeight(t *testing.T) {
	for _, weights := range [][]int{nil, {}, {0, 0, 0}, {-1, -3}} {
		if got := PickWeighted(&sequenceSource{}, weights); got != -1 {
			t.Errorf("PickWeighted(%v) = %d, want -1", weights, got)
		}
	}
}

func TestPickWeightedDistribution(t *testing.T) {
	rng := seeded(7)
	counts := make([]int, 3)
	for i := 0; i < 3000; i++ {
		counts[PickWeighted(rng, []int{1, 0, 2})]++
	}

	if counts[1] != 0 {
		t.Errorf("zero-weight entry picked %d times", counts[1])
	}
	if counts[2] <= counts[0] {
		t.Errorf("heavier entry picked less often: %v", counts)
	}
}

func TestPickUniform(t *testing.T) {
	if got := PickUniform(&sequenceSource{values: []int{5}}, 0); got != -1 {
		t.Errorf("PickUniform(n=0) = %d, want -1", got)
	}
	if got := PickUniform(&sequenceSource{values: []int{5}}, 1); got != 0 {
		t.Errorf("PickUniform(n=1) = %d, want 0", got)
	}
	if got := PickUniform(&sequenceSource{values: []int{5}}, 3); got != 2 {
		t.Errorf("PickUniform(n=3) = %d, want 2", got)
	}
}
