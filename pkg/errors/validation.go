package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIdentifierLength bounds record identifiers accepted from callers.
const maxIdentifierLength = 128

// identifierRegex matches record identifiers (UUIDs, slugs, numeric keys).
var identifierRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidateIdentifier validates a record identifier received from a request
// path, a plan file or a persistence record.
//
// The rules are conservative:
//   - No empty identifiers
//   - Maximum length of 128 characters
//   - Only letters, digits and ". _ : -", starting with a letter or digit
//   - No path traversal sequences
func ValidateIdentifier(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "%s id cannot be empty", kind)
	}

	if len(id) > maxIdentifierLength {
		return New(ErrCodeInvalidInput, "%s id too long (max %d characters)", kind, maxIdentifierLength)
	}

	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidInput, "%s id cannot contain path traversal sequences (..)", kind)
	}

	if !identifierRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid %s id: %q", kind, id)
	}

	return nil
}

// ValidateDisplayName validates a human name or label (occupant names,
// room and class names) before it is rendered into a document.
func ValidateDisplayName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidRecord, "%s cannot be empty", field)
	}

	const maxNameLength = 200
	if len([]rune(name)) > maxNameLength {
		return New(ErrCodeInvalidRecord, "%s too long (max %d characters)", field, maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidRecord, "%s contains invalid control characters", field)
		}
	}

	return nil
}
