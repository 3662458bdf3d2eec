package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFeature(t *testing.T) {
	tests := []struct {
		input   string
		want    Feature
		wantErr bool
	}{
		{input: "tips", want: FeatureTips},
		{input: " Quizzes ", want: FeatureQuizzes},
		{input: "badges", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFeature(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFeature)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompletionKey(t *testing.T) {
	t.Run("Should separate features", func(t *testing.T) {
		assert.NotEqual(t, CompletionKey("dev-1", FeatureTips), CompletionKey("dev-1", FeatureQuizzes))
	})

	t.Run("Should separate namespaces", func(t *testing.T) {
		assert.NotEqual(t, CompletionKey("dev-1", FeatureTips), CompletionKey("dev-2", FeatureTips))
	})

	t.Run("Should fall back to a global key without namespace", func(t *testing.T) {
		assert.Equal(t, "ecoquest:daily:tips", CompletionKey("", FeatureTips))
	})
}

func TestIsValidDay(t *testing.T) {
	assert.True(t, IsValidDay("2024-02-29"))
	assert.False(t, IsValidDay("2025-02-29"))
	assert.False(t, IsValidDay("2025-1-1"))
	assert.False(t, IsValidDay(""))
}
