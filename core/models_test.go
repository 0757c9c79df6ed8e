package core

import (
	"testing"
)

func TestIDFromCode(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		wantSame bool
	}{
		{
			name:     "same code produces same ID",
			code:     "E1152",
			wantSame: true,
		},
		{
			name:     "empty string",
			code:     "",
			wantSame: true,
		},
		{
			name:     "seven character extension code",
			code:     "S72001A",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromCode(tt.code)
			id2 := IDFromCode(tt.code)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromCode() produced different IDs for same code: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromCode_Different(t *testing.T) {
	id1 := IDFromCode("E1152")
	id2 := IDFromCode("E1151")

	if id1 == id2 {
		t.Errorf("IDFromCode() produced same ID for different codes")
	}
}

func TestIDFromCode_CaseSensitive(t *testing.T) {
	// Normalization happens before hashing; the hash itself must not fold case.
	id1 := IDFromCode("E1152")
	id2 := IDFromCode("e1152")

	if id1 == id2 {
		t.Errorf("IDFromCode() folded case before hashing")
	}
}
