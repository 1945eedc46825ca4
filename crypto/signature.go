// SPDX-License-Identifier: GPL-3.0-only

package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignPayment computes the vendor's payment signature: HMAC-SHA256 over the
// message, rendered as lowercase hex. The message is the vendor-documented
// pipe-joined tuple and its field order is flow specific: "order_id|payment_id"
// for one-off orders, "payment_id|subscription_id" for subscription renewals.
func SignPayment(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature checks a claimed signature against the shared secret
// in constant time. An empty secret or signature never verifies.
func VerifyPaymentSignature(message, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := SignPayment(message, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
