package entity

import "testing"

func TestValidPersonID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"P1", true},
		{"emp-001.a_b", true},
		{"", false},
		{".", false},
		{"..", false},
		{"../outside", false},
		{"a/b", false},
		{`a\b`, false},
		{"bad id", false},
	}

	for _, tt := range tests {
		if got := ValidPersonID(tt.id); got != tt.want {
			t.Errorf("ValidPersonID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
