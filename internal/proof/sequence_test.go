package proof

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCorrectOrder(t *testing.T) {
	correct := []string{"a", "b", "c"}

	assert.True(t, IsCorrectOrder([]string{"a", "b", "c"}, correct))
	assert.False(t, IsCorrectOrder([]string{"a", "c", "b"}, correct))
	assert.False(t, IsCorrectOrder([]string{"a", "b"}, correct))
	assert.False(t, IsCorrectOrder([]string{"a", "b", "c", "d"}, correct))
	assert.True(t, IsCorrectOrder(nil, nil))
}

func TestSimilarity(t *testing.T) {
	correct := []string{"a", "b", "c", "d"}

	tests := []struct {
		name string
		user []string
		want float64
	}{
		{"identical", []string{"a", "b", "c", "d"}, 100},
		{"half", []string{"a", "b", "d", "c"}, 50},
		{"none", []string{"d", "c", "b", "a"}, 0},
		{"shorter", []string{"a"}, 25},
		{"longer", []string{"a", "b", "c", "d", "e"}, 100},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.user, correct), 0.001)
		})
	}

	assert.Zero(t, Similarity([]string{"a"}, nil))
}

func TestCorrectPrefix(t *testing.T) {
	correct := []string{"a", "b", "c"}

	assert.Equal(t, 0, CorrectPrefix(nil, correct))
	assert.Equal(t, 0, CorrectPrefix([]string{"b"}, correct))
	assert.Equal(t, 2, CorrectPrefix([]string{"a", "b", "x"}, correct))
	assert.Equal(t, 3, CorrectPrefix([]string{"a", "b", "c"}, correct))
	assert.Equal(t, 3, CorrectPrefix([]string{"a", "b", "c", "d"}, correct))
}
