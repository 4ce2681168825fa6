package proof

// IsCorrectOrder reports whether user equals correct element-wise.
func IsCorrectOrder(user, correct []string) bool {
	if len(user) != len(correct) {
		return false
	}
	for i := range user {
		if user[i] != correct[i] {
			return false
		}
	}
	return true
}

// Similarity is the percentage of positions in correct that user matches.
// It is 0 when correct is empty.
func Similarity(user, correct []string) float64 {
	if len(correct) == 0 {
		return 0
	}
	matches := 0
	for i := 0; i < min(len(user), len(correct)); i++ {
		if user[i] == correct[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(correct)) * 100
}

// CorrectPrefix returns the length of the longest common prefix of user and
// correct.
func CorrectPrefix(user, correct []string) int {
	n := min(len(user), len(correct))
	for i := 0; i < n; i++ {
		if user[i] != correct[i] {
			return i
		}
	}
	return n
}
