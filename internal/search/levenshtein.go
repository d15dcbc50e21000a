package search

// Levenshtein returns the edit distance between a and b over runes, with
// insertion, deletion and substitution each costing 1.
func Levenshtein(a, b string) int {
	return levenshtein([]rune(a), []rune(b))
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Two rows of the DP matrix are enough
	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[i] = min(
				curr[i-1]+1,
				prev[i]+1,
				prev[i-1]+cost,
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(a)]
}

// WindowDistance is the smallest Levenshtein distance between needle and any
// substring of haystack with the same rune length. When needle is longer than
// haystack the two are compared whole.
func WindowDistance(needle, haystack string) int {
	n := []rune(needle)
	h := []rune(haystack)

	if len(n) == 0 {
		return len(h)
	}
	if len(h) == 0 {
		return len(n)
	}
	if len(n) > len(h) {
		return levenshtein(n, h)
	}

	best := len(n)
	for i := 0; i+len(n) <= len(h); i++ {
		if d := levenshtein(n, h[i:i+len(n)]); d < best {
			best = d
			if best == 0 {
				break
			}
		}
	}
	return best
}
