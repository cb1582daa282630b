package satisfaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatusTiers(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected Status
	}{
		{name: "perfect score", score: 100, expected: StatusExceptional},
		{name: "exceptional lower bound", score: 90, expected: StatusExceptional},
		{name: "just below exceptional", score: 89.99, expected: StatusExcellent},
		{name: "excellent lower bound", score: 85, expected: StatusExcellent},
		{name: "very good lower bound", score: 80, expected: StatusVeryGood},
		{name: "good lower bound", score: 75, expected: StatusGood},
		{name: "satisfactory lower bound", score: 70, expected: StatusSatisfactory},
		{name: "needs attention lower bound", score: 65, expected: StatusNeedsAttention},
		{name: "at risk lower bound", score: 60, expected: StatusAtRisk},
		{name: "just below at risk", score: 59.99, expected: StatusCritical},
		{name: "zero score", score: 0, expected: StatusCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := Classify(tt.score, 50)
			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestClassifyConfidenceLevels(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		expected   string
	}{
		{name: "high lower bound", confidence: 90, expected: ConfidenceHigh},
		{name: "just below high", confidence: 89.99, expected: ConfidenceModerate},
		{name: "moderate lower bound", confidence: 70, expected: ConfidenceModerate},
		{name: "just below moderate", confidence: 69.99, expected: ConfidenceLow},
		{name: "zero confidence", confidence: 0, expected: ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, level := Classify(75, tt.confidence)
			assert.Equal(t, tt.expected, level)
		})
	}
}
