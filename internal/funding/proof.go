package funding

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ProofHash is the recomputable fingerprint binding a contribution to its
// declared parameters. It is an audit tag, not a secret; authenticity comes
// from the separate HMAC signature.
func ProofHash(projectID uint, walletAddress string, amountSats int64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d-%s-%d", projectID, walletAddress, amountSats)))
	return hex.EncodeToString(sum[:])
}

// Sign computes the webhook signature over the canonical payload string
// "{project_id}|{amount_sats}|{proof_hash}" with the shared secret.
func Sign(secret string, projectID uint, amountSats int64, proofHash string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d|%d|%s", projectID, amountSats, proofHash)
	return hex.EncodeToString(mac.Sum(nil))
}

// verifySignature compares in constant time.
func verifySignature(secret string, projectID uint, amountSats int64, proofHash, signature string) bool {
	expected := Sign(secret, projectID, amountSats, proofHash)
	return hmac.Equal([]byte(expected), []byte(signature))
}
