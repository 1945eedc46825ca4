// SPDX-License-Identifier: GPL-3.0-only

package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"formfill-server/crypto"
	"formfill-server/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test_key_secret"

type recordingNotifier struct {
	calls []ActivationEvent
	urls  []string
	err   error
}

func (n *recordingNotifier) NotifyActivation(ctx context.Context, webhookURL string, event ActivationEvent) error {
	n.calls = append(n.calls, event)
	n.urls = append(n.urls, webhookURL)
	return n.err
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache DSN keeps every pooled connection on the same
	// in-memory database while isolating tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := conn.AutoMigrate(models.AllModels...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return conn
}

var testUserSeq int

func createTestUser(t *testing.T, conn *gorm.DB, webhookURL *string) *models.User {
	t.Helper()

	testUserSeq++
	user := models.User{
		Email:      fmt.Sprintf("user-%d@example.com", testUserSeq),
		Password:   "irrelevant",
		PlanType:   models.FreePlan,
		FormsUsed:  2,
		FormLimit:  models.FreeFormLimit,
		WebhookURL: webhookURL,
	}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return &user
}

func newTestService(conn *gorm.DB, notifier Notifier, now time.Time) *Service {
	svc := NewService(conn, Config{KeySecret: testSecret, WebhookTimeout: time.Second}, notifier)
	svc.now = func() time.Time { return now }
	return svc
}

func signedPurchaseRequest(referenceID, paymentID, planName string) VerificationRequest {
	return VerificationRequest{
		ReferenceID: referenceID,
		PaymentID:   paymentID,
		Signature:   crypto.SignPayment(referenceID+"|"+paymentID, testSecret),
		PlanName:    planName,
		Amount:      49900,
		Currency:    "INR",
	}
}

func signedRenewalRequest(subscriptionID, paymentID, planName string) VerificationRequest {
	return VerificationRequest{
		ReferenceID: subscriptionID,
		PaymentID:   paymentID,
		Signature:   crypto.SignPayment(paymentID+"|"+subscriptionID, testSecret),
		PlanName:    planName,
		Amount:      49900,
		Currency:    "INR",
	}
}

func TestVerifyPurchaseAppliesMonthlyPlan(t *testing.T) {
	conn := openTestDB(t)
	webhookURL := "https://example.com/hooks/formfill"
	user := createTestUser(t, conn, &webhookURL)
	notifier := &recordingNotifier{}
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	svc := newTestService(conn, notifier, now)

	result, err := svc.VerifyPurchase(context.Background(), user, signedPurchaseRequest("order_abc", "pay_123", "Monthly"))
	if err != nil {
		t.Fatalf("VerifyPurchase failed: %v", err)
	}

	if result.Outcome != Applied {
		t.Errorf("Expected outcome Applied, got %s", result.Outcome)
	}
	if result.FormLimit != 400 {
		t.Errorf("Expected form limit 400, got %d", result.FormLimit)
	}
	if result.ExpiresAt == nil {
		t.Fatal("Expected non-nil expiry for Monthly plan")
	}
	expectedExpiry := now.AddDate(0, 0, 30)
	if !result.ExpiresAt.Equal(expectedExpiry) {
		t.Errorf("Expected expiry %v, got %v", expectedExpiry, result.ExpiresAt)
	}

	var fresh models.User
	if err := conn.First(&fresh, user.ID).Error; err != nil {
		t.Fatalf("Failed to reload user: %v", err)
	}
	if fresh.PlanType != models.MonthlyPlan {
		t.Errorf("Expected plan type MONTHLY, got %s", fresh.PlanType)
	}
	if fresh.FormLimit != 400 {
		t.Errorf("Expected user form limit 400, got %d", fresh.FormLimit)
	}
	if fresh.FormsUsed != 0 {
		t.Errorf("Expected forms used reset to 0, got %d", fresh.FormsUsed)
	}
	if fresh.PlanExpiresAt == nil {
		t.Fatal("Expected user plan expiry to be set")
	}

	var record models.PaymentRecord
	if err := conn.Where("payment_id = ?", "pay_123").First(&record).Error; err != nil {
		t.Fatalf("Expected ledger row for pay_123: %v", err)
	}
	if record.Status != models.PaymentSucceeded {
		t.Errorf("Expected ledger status SUCCEEDED, got %s", record.Status)
	}
	if record.UserID != user.ID {
		t.Errorf("Expected ledger row owned by user %d, got %d", user.ID, record.UserID)
	}

	var event models.EventLog
	if err := conn.Where("user_id = ? AND action = ?", user.ID, models.ActionPlanUpgrade).First(&event).Error; err != nil {
		t.Fatalf("Expected plan_upgrade event log: %v", err)
	}
	if event.Status == nil || *event.Status != models.Succeeded {
		t.Errorf("Expected event status SUCCEEDED, got %v", event.Status)
	}

	if len(notifier.calls) != 1 {
		t.Fatalf("Expected exactly one webhook delivery, got %d", len(notifier.calls))
	}
	if notifier.urls[0] != webhookURL {
		t.Errorf("Expected webhook URL %s, got %s", webhookURL, notifier.urls[0])
	}
	if notifier.calls[0].PlanName != "Monthly" || notifier.calls[0].FormLimit != 400 {
		t.Errorf("Unexpected webhook payload: %+v", notifier.calls[0])
	}
	if notifier.calls[0].AccountID != user.AccountID {
		t.Errorf("Expected webhook account %s, got %s", user.AccountID, notifier.calls[0].AccountID)
	}
}

func TestVerifyPurchasePerFormNeverExpires(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, nil)
	svc := newTestService(conn, &recordingNotifier{}, time.Now())

	result, err := svc.VerifyPurchase(context.Background(), user, signedPurchaseRequest("order_pf", "pay_pf", "Per Form"))
	if err != nil {
		t.Fatalf("VerifyPurchase failed: %v", err)
	}

	if result.FormLimit != 1 {
		t.Errorf("Expected form limit 1, got %d", result.FormLimit)
	}
	if result.ExpiresAt != nil {
		t.Errorf("Expected nil expiry for Per Form plan, got %v", result.ExpiresAt)
	}

	var fresh models.User
	if err := conn.First(&fresh, user.ID).Error; err != nil {
		t.Fatalf("Failed to reload user: %v", err)
	}
	if fresh.PlanExpiresAt != nil {
		t.Errorf("Expected nil user plan expiry, got %v", fresh.PlanExpiresAt)
	}
}

func TestVerifyPurchaseRejectsTamperedSignature(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, nil)
	notifier := &recordingNotifier{}
	svc := newTestService(conn, notifier, time.Now())

	req := signedPurchaseRequest("order_abc", "pay_123", "Monthly")
	req.Signature = crypto.SignPayment("order_abc|pay_999", testSecret)

	_, err := svc.VerifyPurchase(context.Background(), user, req)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("Expected ErrSignatureInvalid, got %v", err)
	}

	var fresh models.User
	if err := conn.First(&fresh, user.ID).Error; err != nil {
		t.Fatalf("Failed to reload user: %v", err)
	}
	if fresh.PlanType != models.FreePlan || fresh.FormsUsed != 2 {
		t.Error("Expected account state untouched after rejected signature")
	}

	var count int64
	conn.Model(&models.PaymentRecord{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected empty ledger after rejected signature, got %d rows", count)
	}
	if len(notifier.calls) != 0 {
		t.Errorf("Expected no webhook delivery, got %d", len(notifier.calls))
	}
}

func TestVerifyPurchaseRejectsUnknownPlan(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, nil)
	svc := newTestService(conn, &recordingNotifier{}, time.Now())

	_, err := svc.VerifyPurchase(context.Background(), user, signedPurchaseRequest("order_abc", "pay_123", "Biweekly"))
	if !errors.Is(err, ErrUnknownPlan) {
		t.Fatalf("Expected ErrUnknownPlan, got %v", err)
	}

	var count int64
	conn.Model(&models.PaymentRecord{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected empty ledger after unknown plan, got %d rows", count)
	}
}

func TestVerifyPurchaseFailsClosedWithoutSecret(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, nil)
	svc := NewService(conn, Config{KeySecret: ""}, nil)

	_, err := svc.VerifyPurchase(context.Background(), user, signedPurchaseRequest("order_abc", "pay_123", "Monthly"))
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Expected ErrConfiguration, got %v", err)
	}
}

func TestVerifyPurchaseValidatesFields(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, nil)
	svc := newTestService(conn, nil, time.Now())

	base := signedPurchaseRequest("order_abc", "pay_123", "Monthly")
	mutations := map[string]func(*VerificationRequest){
		"reference_id": func(r *VerificationRequest) { r.ReferenceID = "" },
		"payment_id":   func(r *VerificationRequest) { r.PaymentID = "" },
		"signature":    func(r *VerificationRequest) { r.Signature = "" },
		"plan_name":    func(r *VerificationRequest) { r.PlanName = "" },
		"amount":       func(r *VerificationRequest) { r.Amount = 0 },
	}

	for field, mutate := range mutations {
		req := base
		mutate(&req)
		if _, err := svc.VerifyPurchase(context.Background(), user, req); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("Expected ErrInvalidRequest for missing %s, got %v", field, err)
		}
	}
}

func TestVerifyPurchaseIsIdempotent(t *testing.T) {
	conn := openTestDB(t)
	webhookURL := "https://example.com/hooks/formfill"
	user := createTestUser(t, conn, &webhookURL)
	notifier := &recordingNotifier{}
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	svc := newTestService(conn, notifier, now)

	req := signedPurchaseRequest("order_abc", "pay_123", "Monthly")

	first, err := svc.VerifyPurchase(context.Background(), user, req)
	if err != nil {
		t.Fatalf("First VerifyPurchase failed: %v", err)
	}
	second, err := svc.VerifyPurchase(context.Background(), user, req)
	if err != nil {
		t.Fatalf("Second VerifyPurchase failed: %v", err)
	}

	if second.Outcome != AlreadyApplied {
		t.Errorf("Expected outcome AlreadyApplied on replay, got %s", second.Outcome)
	}
	if second.PlanName != first.PlanName || second.FormLimit != first.FormLimit {
		t.Error("Expected replay to return the original payload")
	}

	var count int64
	conn.Model(&models.PaymentRecord{}).Where("payment_id = ?", "pay_123").Count(&count)
	if count != 1 {
		t.Errorf("Expected exactly one ledger row for pay_123, got %d", count)
	}

	// The replay must not grant the entitlement again or deliver a second
	// webhook.
	if len(notifier.calls) != 1 {
		t.Errorf("Expected one webhook delivery, got %d", len(notifier.calls))
	}

	var duplicates int64
	conn.Model(&models.EventLog{}).Where("user_id = ? AND status = ?", user.ID, models.Duplicate).Count(&duplicates)
	if duplicates != 1 {
		t.Errorf("Expected one duplicate audit event, got %d", duplicates)
	}
}

func TestVerifyPurchaseRejectsCrossAccountReplay(t *testing.T) {
	conn := openTestDB(t)
	owner := createTestUser(t, conn, nil)
	other := createTestUser(t, conn, nil)
	svc := newTestService(conn, &recordingNotifier{}, time.Now())

	req := signedPurchaseRequest("order_abc", "pay_123", "Monthly")
	if _, err := svc.VerifyPurchase(context.Background(), owner, req); err != nil {
		t.Fatalf("VerifyPurchase failed: %v", err)
	}

	_, err := svc.VerifyPurchase(context.Background(), other, req)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("Expected ErrInvalidRequest for cross-account replay, got %v", err)
	}

	var fresh models.User
	if err := conn.First(&fresh, other.ID).Error; err != nil {
		t.Fatalf("Failed to reload user: %v", err)
	}
	if fresh.PlanType != models.FreePlan {
		t.Error("Expected replaying account to stay on the free plan")
	}
}

func TestVerifyPurchaseWebhookFailureDoesNotAffectResult(t *testing.T) {
	conn := openTestDB(t)
	webhookURL := "https://example.com/hooks/formfill"
	user := createTestUser(t, conn, &webhookURL)
	notifier := &recordingNotifier{err: errors.New("connection refused")}
	svc := newTestService(conn, notifier, time.Now())

	result, err := svc.VerifyPurchase(context.Background(), user, signedPurchaseRequest("order_abc", "pay_123", "Monthly"))
	if err != nil {
		t.Fatalf("Expected verification to succeed despite webhook failure, got %v", err)
	}
	if result.Outcome != Applied {
		t.Errorf("Expected outcome Applied, got %s", result.Outcome)
	}
	if len(notifier.calls) != 1 {
		t.Errorf("Expected webhook to have been attempted once, got %d", len(notifier.calls))
	}
}

func TestVerifyPurchaseSkipsWebhookWithoutURL(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, nil)
	notifier := &recordingNotifier{}
	svc := newTestService(conn, notifier, time.Now())

	if _, err := svc.VerifyPurchase(context.Background(), user, signedPurchaseRequest("order_abc", "pay_123", "Monthly")); err != nil {
		t.Fatalf("VerifyPurchase failed: %v", err)
	}
	if len(notifier.calls) != 0 {
		t.Errorf("Expected no webhook delivery without a configured URL, got %d", len(notifier.calls))
	}
}

func TestVerifySubscriptionRenewalSignatureOrder(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, nil)
	svc := newTestService(conn, &recordingNotifier{}, time.Now())

	// A renewal signed with the one-off field order must be rejected.
	req := signedPurchaseRequest("sub_abc", "pay_123", "Monthly")
	if _, err := svc.VerifySubscriptionRenewal(context.Background(), user, req); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("Expected ErrSignatureInvalid for purchase-order signature, got %v", err)
	}

	result, err := svc.VerifySubscriptionRenewal(context.Background(), user, signedRenewalRequest("sub_abc", "pay_123", "Monthly"))
	if err != nil {
		t.Fatalf("VerifySubscriptionRenewal failed: %v", err)
	}
	if result.FormLimit != 100 {
		t.Errorf("Expected renewal form limit 100, got %d", result.FormLimit)
	}
}

func TestVerifySubscriptionRenewalLenientPlanMatching(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, nil)
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	svc := newTestService(conn, &recordingNotifier{}, now)

	result, err := svc.VerifySubscriptionRenewal(context.Background(), user, signedRenewalRequest("sub_abc", "pay_123", "Biweekly"))
	if err != nil {
		t.Fatalf("Expected renewal with unknown plan to succeed, got %v", err)
	}
	if result.FormLimit != defaultRenewalEntitlement.FormLimit {
		t.Errorf("Expected default renewal quota %d, got %d", defaultRenewalEntitlement.FormLimit, result.FormLimit)
	}
	if result.PlanType != models.DefaultPlan {
		t.Errorf("Expected plan type DEFAULT for unrecognized renewal, got %s", result.PlanType)
	}

	var fresh models.User
	if err := conn.First(&fresh, user.ID).Error; err != nil {
		t.Fatalf("Failed to reload user: %v", err)
	}
	if fresh.PlanType != models.DefaultPlan {
		t.Errorf("Expected account recorded as DEFAULT, got %s", fresh.PlanType)
	}

	var event models.EventLog
	if err := conn.Where("user_id = ? AND action = ?", user.ID, models.ActionSubscriptionActivated).First(&event).Error; err != nil {
		t.Fatalf("Expected subscription_activated event log: %v", err)
	}
}

func TestVerifySubscriptionRenewalIsIdempotent(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, nil)
	svc := newTestService(conn, &recordingNotifier{}, time.Now())

	req := signedRenewalRequest("sub_abc", "pay_123", "Weekly")
	if _, err := svc.VerifySubscriptionRenewal(context.Background(), user, req); err != nil {
		t.Fatalf("First renewal failed: %v", err)
	}

	second, err := svc.VerifySubscriptionRenewal(context.Background(), user, req)
	if err != nil {
		t.Fatalf("Second renewal failed: %v", err)
	}
	if second.Outcome != AlreadyApplied {
		t.Errorf("Expected AlreadyApplied on replayed renewal, got %s", second.Outcome)
	}

	var count int64
	conn.Model(&models.PaymentRecord{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected one ledger row, got %d", count)
	}
}
