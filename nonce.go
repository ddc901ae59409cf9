package twitter

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// generateNonce returns a random 32-byte hex string for oauth_nonce.
func generateNonce() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return hex.EncodeToString(b)
}
