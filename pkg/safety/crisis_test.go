package safety

import "testing"

func TestIsCrisis(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"direct phrase", "I want to die", true},
		{"mixed case", "i've been thinking about SUICIDE lately", true},
		{"self harm with dash", "I keep thinking about self-harm", true},
		{"self harm with space", "thoughts of self harm again", true},
		{"overdose", "what happens in an overdose", true},
		{"cant go on", "I just can't go on anymore", true},
		{"threat toward others", "I could kill them for this", true},
		{"embedded in sentence", "sometimes I feel like I want to end my life", true},
		{"benign message", "I had a rough day at work", false},
		{"benign with similar words", "this deadline is killing my schedule", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsCrisis(tt.input)
			if got != tt.expected {
				t.Errorf("IsCrisis(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
