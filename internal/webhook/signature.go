package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// ValidSignature reports whether signature is the base64-encoded HMAC-SHA256
// digest of body under the channel secret, per the LINE webhook contract.
// Comparison is constant-time.
func ValidSignature(channelSecret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
