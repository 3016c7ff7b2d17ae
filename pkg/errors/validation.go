package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIdentifierLength bounds place names, node ids and floor keys.
const maxIdentifierLength = 256

// ValidateIdentifier validates a place, node or entrance identifier supplied
// by a caller. Names are free text (they may contain spaces and punctuation),
// so only emptiness, length and control characters are rejected.
func ValidateIdentifier(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidInput, "identifier cannot be empty")
	}

	if len(id) > maxIdentifierLength {
		return New(ErrCodeInvalidInput, "identifier too long (max %d characters)", maxIdentifierLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "identifier contains invalid control characters")
		}
	}

	return nil
}

// floorKeyRegex matches floor keys: letters, digits, dot, dash and underscore.
var floorKeyRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateFloorKey validates a floor key for safety.
// Floor keys name data files and cache keys, so they must be simple
// basenames without path components or traversal sequences.
//
// Validation rules:
//   - Key cannot be empty
//   - Maximum length of 256 characters
//   - No path separators or traversal sequences (..)
//   - Only letters, digits, '.', '-' and '_'
func ValidateFloorKey(floor string) error {
	if floor == "" {
		return New(ErrCodeInvalidFloor, "floor key cannot be empty")
	}

	if len(floor) > maxIdentifierLength {
		return New(ErrCodeInvalidFloor, "floor key too long (max %d characters)", maxIdentifierLength)
	}

	if strings.Contains(floor, "..") {
		return New(ErrCodeInvalidFloor, "floor key cannot contain path traversal sequences (..)")
	}

	if strings.ContainsAny(floor, "/\\") {
		return New(ErrCodeInvalidFloor, "floor key cannot contain path separators")
	}

	if !floorKeyRegex.MatchString(floor) {
		return New(ErrCodeInvalidFloor, "invalid floor key: %q", floor)
	}

	return nil
}
