package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		query string
		want  int
	}{
		{"blank query", "anything", "", 0},
		{"whitespace query", "anything", "   ", 0},
		{"no match", "Cell Culture", "pcr", 0},
		{"contains phrase and token", "Run a PCR today", "pcr", 110},
		{"prefix match", "PCR Amplification", "pcr", 160},
		{"case insensitive", "pcr amplification", "PCR AMP", 100 + 20 + 50},
		{"tokens only", "gel then pcr", "pcr gel", 20},
		{"one token found", "gel only", "pcr gel", 10},
		{"token substring not word", "pcrx", "pcr", 160},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.text, tt.query))
		})
	}
}

func TestScore_SubstringFloor(t *testing.T) {
	texts := []string{"western blot", "the western blot protocol", "WESTERN BLOT"}
	for _, text := range texts {
		assert.GreaterOrEqual(t, Score(text, "western blot"), 100, text)
	}
	assert.GreaterOrEqual(t, Score("western blot protocol", "western blot"), 150)
	assert.Less(t, Score("a western blot", "western blot"), 150)
}
