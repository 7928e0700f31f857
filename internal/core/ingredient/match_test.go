package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPercentage(t *testing.T) {
	tests := []struct {
		name   string
		user   []string
		recipe []string
		want   int
	}{
		{
			name:   "two of three",
			user:   []string{"chicken", "rice"},
			recipe: []string{"chicken breast", "bell peppers", "rice"},
			want:   67,
		},
		{
			name:   "empty recipe",
			user:   []string{"chicken"},
			recipe: nil,
			want:   0,
		},
		{
			name:   "case insensitive",
			user:   []string{"EGGS"},
			recipe: []string{"eggs", "Milk"},
			want:   50,
		},
		{
			name:   "recipe ingredient contained in user ingredient",
			user:   []string{"chicken breast"},
			recipe: []string{"chicken"},
			want:   100,
		},
		{
			name:   "short token false positive is kept",
			user:   []string{"egg"},
			recipe: []string{"eggplant"},
			want:   100,
		},
		{
			name:   "underscores are not normalized",
			user:   []string{"bell_peppers"},
			recipe: []string{"bell peppers"},
			want:   0,
		},
		{
			name:   "no overlap",
			user:   []string{"tofu"},
			recipe: []string{"beef", "onion"},
			want:   0,
		},
		{
			name:   "half rounds up",
			user:   []string{"salt"},
			recipe: []string{"salt", "flour", "sugar", "water", "yeast", "oil", "milk", "butter"},
			want:   13,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchPercentage(tt.user, tt.recipe))
		})
	}
}

func TestMatchPercentageIgnoresBlankUserEntries(t *testing.T) {
	assert.Equal(t, 0, MatchPercentage([]string{""}, []string{"beef"}))
}
