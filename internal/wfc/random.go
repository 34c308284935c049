package wfc

// Source is the random source consulted for tile and rotation choices.
// *rand.Rand satisfies it; pass a seeded one for reproducible runs.
type Source interface {
	// Intn returns a value in [0, n). n is always positive.
	Intn(n int) int
}

// PickWeighted returns an index chosen with probability proportional to its
// weight. Entries with a non-positive weight are never chosen. Returns -1 if
// no entry has a positive weight.
func PickWeighted(rng Source, weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}

	r := rng.Intn(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if r < w {
			return i
		}
		r -= w
	}
	return -1
}

// PickUniform returns an index in [0, n), or -1 if n is not positive.
func PickUniform(rng Source, n int) int {
	if n <= 0 {
		return -1
	}
	if n == 1 {
		return 0
	}
	return rng.Intn(n)
}
