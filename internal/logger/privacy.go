package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// HashUserID returns a short stable digest of a user id for log correlation.
func HashUserID(uid string) string {
	sum := sha256.Sum256([]byte(uid))
	return hex.EncodeToString(sum[:])[:8]
}

// SanitizeText redacts free text, keeping only its shape.
func SanitizeText(text string) string {
	if text == "" {
		return "<empty>"
	}
	return fmt.Sprintf("<redacted: %d words, %d chars>", len(strings.Fields(text)), len(text))
}
