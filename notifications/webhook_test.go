// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"formfill-server/billing"
)

func testActivationEvent() billing.ActivationEvent {
	return billing.ActivationEvent{
		Event:       "payment.verified",
		AccountID:   "acct_test",
		PlanName:    "Monthly",
		FormLimit:   400,
		ReferenceID: "order_abc",
		PaymentID:   "pay_123",
		ActivatedAt: time.Now(),
	}
}

func TestWebhookClientDeliversActivationEvent(t *testing.T) {
	var received billing.ActivationEvent
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected application/json content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Failed to decode webhook body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewWebhookClient(5 * time.Second)
	if err := client.NotifyActivation(context.Background(), server.URL, testActivationEvent()); err != nil {
		t.Fatalf("Expected delivery to succeed, got %v", err)
	}
	if received.Event != "payment.verified" || received.PaymentID != "pay_123" {
		t.Errorf("Unexpected webhook payload: %+v", received)
	}
}

func TestWebhookClientReportsNon2xxResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewWebhookClient(5 * time.Second)
	if err := client.NotifyActivation(context.Background(), server.URL, testActivationEvent()); err == nil {
		t.Fatal("Expected an error for a 500 response")
	}
}

func TestWebhookClientReportsTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewWebhookClient(100 * time.Millisecond)
	start := time.Now()
	err := client.NotifyActivation(context.Background(), server.URL, testActivationEvent())
	if err == nil {
		t.Fatal("Expected an error for a stalled endpoint")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Timeout took too long: %v", elapsed)
	}
}

func TestWebhookClientReportsUnreachableEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewWebhookClient(time.Second)
	if err := client.NotifyActivation(context.Background(), server.URL, testActivationEvent()); err == nil {
		t.Fatal("Expected an error for a closed endpoint")
	}
}
