package common

import "testing"

func TestIsValidRelationshipType(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"COUPLE", true},
		{"PARENT_CHILD", true},
		{"_private", true},
		{"rel2", true},
		{"", false},
		{"2REL", false},
		{"MARRIED TO", false},
		{"A-B", false},
		{"X`]->(n) DETACH DELETE n//", false},
		{"ÉPOUX", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsValidRelationshipType(tt.input); got != tt.want {
				t.Fatalf("IsValidRelationshipType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
