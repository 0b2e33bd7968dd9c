package errors

import (
	"math"
	"testing"
)

func TestValidateWeight(t *testing.T) {
	tests := []struct {
		name    string
		input   float32
		wantErr bool
	}{
		{"zero", 0, false},
		{"one", 1, false},
		{"half", 0.5, false},

		{"negative", -0.01, true},
		{"above one", 1.01, true},
		{"NaN", float32(math.NaN()), true},
		{"+Inf", float32(math.Inf(1)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWeight(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWeight(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeOutOfRange) {
				t.Errorf("ValidateWeight(%v) code = %v, want %v", tt.input, GetCode(err), ErrCodeOutOfRange)
			}
		})
	}
}

func TestValidateTargetRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max float32
		wantErr  bool
	}{
		{"ascending", 0, 10, false},
		{"negative span", -5, -1, false},

		{"equal", 1, 1, true},
		{"descending", 10, 0, true},
		{"NaN min", float32(math.NaN()), 1, true},
		{"NaN max", 0, float32(math.NaN()), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTargetRange(tt.min, tt.max)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTargetRange(%v, %v) error = %v, wantErr %v", tt.min, tt.max, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeOutOfRange) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeOutOfRange)
			}
		})
	}
}

func TestValidateSameShape(t *testing.T) {
	if err := ValidateSameShape(3, 4, 3, 4); err != nil {
		t.Errorf("equal shapes: unexpected error %v", err)
	}
	for _, dims := range [][4]int{{3, 4, 4, 4}, {3, 4, 3, 5}, {1, 1, 2, 2}} {
		err := ValidateSameShape(dims[0], dims[1], dims[2], dims[3])
		if !Is(err, ErrCodeShapeMismatch) {
			t.Errorf("ValidateSameShape%v = %v, want SHAPE_MISMATCH", dims, err)
		}
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "base", false},
		{"dashes and dots", "detail-v2.noise", false},
		{"underscore", "island_mask", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 65)), true},
		{"space", "two words", true},
		{"slash", "a/b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "grids/base.json", false},
		{"nested", "a/b/c.toml", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "../secret", true},
		{"backslash", "a\\b", true},
		{"control char", "a\x01b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
