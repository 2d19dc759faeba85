package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "single broker",
			input:    []string{"localhost:9092"},
			expected: []string{"localhost:9092"},
		},
		{
			name:     "trims whitespace around env-split entries",
			input:    []string{" kafka-1:9092", "kafka-2:9092 "},
			expected: []string{"kafka-1:9092", "kafka-2:9092"},
		},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"kafka-2:9092", "kafka-1:9092", "kafka-2:9092"},
			expected: []string{"kafka-2:9092", "kafka-1:9092"},
		},
		{
			name:     "drops empty entries from a trailing comma",
			input:    []string{"kafka-1:9092", "", "  "},
			expected: []string{"kafka-1:9092"},
		},
		{
			name:     "preserves case",
			input:    []string{"Kafka:9092", "kafka:9092"},
			expected: []string{"Kafka:9092", "kafka:9092"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}
