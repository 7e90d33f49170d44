package usecase

import (
	"strings"

	"github.com/google/uuid"
)

const maxSessionIDLen = 128

// resolveSessionID returns the supplied identifier verbatim when present
// and valid, or a freshly generated one when the caller sent none.
func resolveSessionID(supplied string) (string, error) {
	id := strings.TrimSpace(supplied)
	if id == "" {
		return newSessionID(), nil
	}
	if err := validateSessionID(id); err != nil {
		return "", err
	}
	return id, nil
}

// validateSessionID rejects identifiers that are unsafe as storage keys:
// file names, S3 object keys, Redis keys and DynamoDB partition keys all
// have to accept the value unchanged.
func validateSessionID(id string) error {
	if len(id) > maxSessionIDLen {
		return newError(ErrorInvalidSessionID, "session_id_too_long", nil)
	}
	if id[0] == '.' {
		return newError(ErrorInvalidSessionID, "session_id_leading_dot", nil)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return newError(ErrorInvalidSessionID, "session_id_unsafe_character", nil)
		}
	}
	return nil
}

var newSessionID = func() string {
	return uuid.NewString()
}
