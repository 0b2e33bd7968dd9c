package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// ValidateWeight checks that an interpolation weight lies in [0, 1].
// NaN is rejected because it compares false against both bounds.
func ValidateWeight(weight float32) error {
	if !(weight >= 0 && weight <= 1) {
		return New(ErrCodeOutOfRange, "weight %v outside [0, 1]", weight)
	}
	return nil
}

// ValidateTargetRange checks that min is strictly below max.
func ValidateTargetRange(min, max float32) error {
	if math.IsNaN(float64(min)) || math.IsNaN(float64(max)) {
		return New(ErrCodeOutOfRange, "target range [%v, %v] contains NaN", min, max)
	}
	if min >= max {
		return New(ErrCodeOutOfRange, "target min %v must be less than max %v", min, max)
	}
	return nil
}

// ValidateSameShape checks that two grids have identical dimensions.
func ValidateSameShape(aHeight, aWidth, bHeight, bWidth int) error {
	if aHeight != bHeight || aWidth != bWidth {
		return New(ErrCodeShapeMismatch, "shape %dx%d does not match %dx%d",
			aHeight, aWidth, bHeight, bWidth)
	}
	return nil
}

// nameRegex matches grid and step names used in recipes.
var nameRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ValidateName validates a grid or step name referenced from a recipe.
//
// Names must be non-empty, at most 64 characters, and contain only letters,
// digits, underscores, dots and dashes.
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidRecipe, "name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidRecipe, "name too long (max 64 characters)")
	}
	if !nameRegex.MatchString(name) {
		return New(ErrCodeInvalidRecipe, "invalid name: %q", name)
	}
	return nil
}

// ValidatePath validates a relative file path supplied by an untrusted caller.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
