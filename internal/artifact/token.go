package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var tokenPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// MintToken derives an opaque report token from the owner email, the current
// time and a random nonce. The result is 64 lowercase hex characters and is
// not guessable from the email alone.
func MintToken(email string) string {
	raw := fmt.Sprintf("%s-%d-%s", email, time.Now().UnixMilli(), uuid.New().String())
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// ValidToken checks the fixed token format before any storage lookup.
func ValidToken(token string) bool {
	return tokenPattern.MatchString(token)
}
