// SPDX-License-Identifier: GPL-3.0-only

package crypto

import (
	"strings"
	"testing"
)

func TestVerifyPaymentSignature(t *testing.T) {
	secret := "test_key_secret"
	message := "order_MnO123|pay_PqR456"

	signature := SignPayment(message, secret)
	if signature == "" {
		t.Fatal("SignPayment returned empty signature")
	}
	if signature != strings.ToLower(signature) {
		t.Errorf("Expected lowercase hex signature, got %s", signature)
	}

	if !VerifyPaymentSignature(message, signature, secret) {
		t.Error("Valid signature should verify")
	}

	if VerifyPaymentSignature(message, signature, "wrong_secret") {
		t.Error("Signature should not verify with a different secret")
	}

	if VerifyPaymentSignature("pay_PqR456|order_MnO123", signature, secret) {
		t.Error("Signature should not verify with reordered message fields")
	}
}

func TestVerifyPaymentSignatureMutations(t *testing.T) {
	secret := "test_key_secret"
	message := "order_MnO123|pay_PqR456"
	signature := SignPayment(message, secret)

	// Any single-character mutation of the message or the signature must fail.
	for i := 0; i < len(message); i++ {
		mutated := []byte(message)
		mutated[i] ^= 0x01
		if VerifyPaymentSignature(string(mutated), signature, secret) {
			t.Errorf("Mutated message at index %d should not verify", i)
		}
	}

	for i := 0; i < len(signature); i++ {
		mutated := []byte(signature)
		if mutated[i] == '0' {
			mutated[i] = '1'
		} else {
			mutated[i] = '0'
		}
		if VerifyPaymentSignature(message, string(mutated), secret) {
			t.Errorf("Mutated signature at index %d should not verify", i)
		}
	}
}

func TestVerifyPaymentSignatureFailsClosed(t *testing.T) {
	message := "order_MnO123|pay_PqR456"
	signature := SignPayment(message, "secret")

	if VerifyPaymentSignature(message, signature, "") {
		t.Error("Empty secret must never verify")
	}
	if VerifyPaymentSignature(message, "", "secret") {
		t.Error("Empty signature must never verify")
	}
}
