package proof

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateDifficulty(t *testing.T) {
	assert.Equal(t, "Easy", EstimateDifficulty(2))
	assert.Equal(t, "Easy", EstimateDifficulty(5))
	assert.Equal(t, "Medium", EstimateDifficulty(6))
	assert.Equal(t, "Medium", EstimateDifficulty(10))
	assert.Equal(t, "Hard", EstimateDifficulty(11))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 30))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))

	// "é" is two bytes; the cut must not split it.
	got := Truncate("aé", 2)
	assert.Equal(t, "a...", got)
}

func TestStatistics(t *testing.T) {
	v := thetaPuzzle(t)

	st := v.Statistics()
	assert.Equal(t, 11, st.TotalBlocks)
	assert.Equal(t, "Hard", st.Difficulty)
	require.Len(t, st.Blocks, 11)
	assert.Equal(t, "block1-1", st.Blocks[0].ID)
	assert.Equal(t, `\text{step 1}`, st.Blocks[0].Preview)

	long := Puzzle{
		ID: "long",
		Steps: []Step{
			{ID: "a", Content: strings.Repeat("x", 40)},
			{ID: "b", Content: "y"},
		},
		SolutionOrder: []string{"a", "b"},
	}
	st = MustNewValidator(long).Statistics()
	assert.Equal(t, "Easy", st.Difficulty)
	assert.Equal(t, strings.Repeat("x", 30)+"...", st.Blocks[0].Preview)
}

func TestGradeFor(t *testing.T) {
	assert.Equal(t, GradeExcellent, GradeFor(100))
	assert.Equal(t, GradeExcellent, GradeFor(90))
	assert.Equal(t, GradeGood, GradeFor(89))
	assert.Equal(t, GradeGood, GradeFor(70))
	assert.Equal(t, GradeFair, GradeFor(50))
	assert.Equal(t, GradeKeepGoing, GradeFor(49))
}
