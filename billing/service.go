// SPDX-License-Identifier: GPL-3.0-only

package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"formfill-server/commons"
	"formfill-server/crypto"
	"formfill-server/models"

	"gorm.io/gorm"
)

// Notifier delivers the outbound activation webhook. Delivery is best effort:
// the orchestrator discards the returned error after logging it.
type Notifier interface {
	NotifyActivation(ctx context.Context, webhookURL string, event ActivationEvent) error
}

// ActivationEvent is the JSON body POSTed to the account's webhook URL after a
// payment has been verified and applied.
type ActivationEvent struct {
	Event       string     `json:"event"`
	AccountID   string     `json:"account_id"`
	PlanName    string     `json:"plan_name"`
	FormLimit   uint       `json:"form_limit"`
	ReferenceID string     `json:"reference_id"`
	PaymentID   string     `json:"payment_id"`
	ExpiresAt   *time.Time `json:"expires_at"`
	ActivatedAt time.Time  `json:"activated_at"`
}

// VerificationRequest is the untrusted inbound payment claim. ReferenceID is
// the vendor order ID for one-off purchases and the subscription ID for
// renewals. Amount is in the vendor's minor currency unit.
type VerificationRequest struct {
	ReferenceID string
	PaymentID   string
	Signature   string
	PlanName    string
	Amount      int64
	Currency    string
}

type Outcome string

const (
	Applied        Outcome = "APPLIED"
	AlreadyApplied Outcome = "ALREADY_APPLIED"
)

type VerificationResult struct {
	Outcome   Outcome
	PlanName  string
	PlanType  models.PlanType
	FormLimit uint
	ExpiresAt *time.Time
}

// Service verifies vendor payment confirmations and applies the purchased
// entitlement to the account, recording a ledger row and an audit event.
type Service struct {
	conn     *gorm.DB
	cfg      Config
	notifier Notifier
	now      func() time.Time
}

func NewService(conn *gorm.DB, cfg Config, notifier Notifier) *Service {
	return &Service{
		conn:     conn,
		cfg:      cfg,
		notifier: notifier,
		now:      time.Now,
	}
}

// VerifyPurchase handles the one-off purchase flow. The signed message is
// "order_id|payment_id" per the vendor's checkout documentation.
func (s *Service) VerifyPurchase(ctx context.Context, user *models.User, req VerificationRequest) (*VerificationResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if s.cfg.KeySecret == "" {
		return nil, fmt.Errorf("%w: payment key secret is not configured", ErrConfiguration)
	}

	message := req.ReferenceID + "|" + req.PaymentID
	if !crypto.VerifyPaymentSignature(message, req.Signature, s.cfg.KeySecret) {
		return nil, ErrSignatureInvalid
	}

	entitlement, err := ResolvePurchaseEntitlement(req.PlanName)
	if err != nil {
		return nil, err
	}

	return s.apply(ctx, user, req, entitlement, PlanTypeFor(req.PlanName), models.ActionPlanUpgrade)
}

// VerifySubscriptionRenewal handles the recurring subscription flow. The
// vendor signs renewals with the fields in the opposite order to one-off
// purchases: "payment_id|subscription_id". Unknown plan names fall back to the
// default renewal quota instead of failing.
func (s *Service) VerifySubscriptionRenewal(ctx context.Context, user *models.User, req VerificationRequest) (*VerificationResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if s.cfg.KeySecret == "" {
		return nil, fmt.Errorf("%w: payment key secret is not configured", ErrConfiguration)
	}

	message := req.PaymentID + "|" + req.ReferenceID
	if !crypto.VerifyPaymentSignature(message, req.Signature, s.cfg.KeySecret) {
		return nil, ErrSignatureInvalid
	}

	entitlement := ResolveRenewalEntitlement(req.PlanName)

	return s.apply(ctx, user, req, entitlement, RenewalPlanTypeFor(req.PlanName), models.ActionSubscriptionActivated)
}

func validateRequest(req VerificationRequest) error {
	switch {
	case req.ReferenceID == "":
		return fmt.Errorf("%w: reference_id is required", ErrInvalidRequest)
	case req.PaymentID == "":
		return fmt.Errorf("%w: payment_id is required", ErrInvalidRequest)
	case req.Signature == "":
		return fmt.Errorf("%w: signature is required", ErrInvalidRequest)
	case req.PlanName == "":
		return fmt.Errorf("%w: plan_name is required", ErrInvalidRequest)
	case req.Amount <= 0:
		return fmt.Errorf("%w: amount must be a positive minor-unit value", ErrInvalidRequest)
	}
	return nil
}

// apply writes the ledger row, the account update and the audit event in one
// transaction. The unique index on payment_id turns duplicate deliveries into
// no-ops: the entitlement is applied at most once per payment.
func (s *Service) apply(ctx context.Context, user *models.User, req VerificationRequest, entitlement Entitlement, planType models.PlanType, action string) (*VerificationResult, error) {
	now := s.now()
	expiresAt := entitlement.ExpiryFrom(now)

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	outcome := Applied
	err := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.PaymentRecord
		err := tx.Where("payment_id = ?", req.PaymentID).First(&existing).Error
		if err == nil {
			outcome = AlreadyApplied
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		record := models.PaymentRecord{
			PaymentID:   req.PaymentID,
			ReferenceID: req.ReferenceID,
			PlanName:    req.PlanName,
			Amount:      req.Amount,
			Currency:    currency,
			Status:      models.PaymentSucceeded,
			UserID:      user.ID,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		updates := map[string]any{
			"plan_type":       planType,
			"form_limit":      entitlement.FormLimit,
			"forms_used":      0,
			"plan_expires_at": expiresAt,
		}
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return err
		}

		category := models.Payment
		status := models.Succeeded
		event := models.EventLog{
			Category:    &category,
			Status:      &status,
			Action:      &action,
			PlanName:    &req.PlanName,
			ReferenceID: &req.ReferenceID,
			PaymentID:   &req.PaymentID,
			UserID:      user.ID,
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against a concurrent delivery of the same
			// payment; the other writer applied the entitlement.
			outcome = AlreadyApplied
		} else {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	if outcome == AlreadyApplied {
		return s.replayResult(ctx, user, req.PaymentID)
	}

	result := &VerificationResult{
		Outcome:   Applied,
		PlanName:  req.PlanName,
		PlanType:  planType,
		FormLimit: entitlement.FormLimit,
		ExpiresAt: expiresAt,
	}

	s.notify(user, req, result, now)

	return result, nil
}

// replayResult reproduces the original success payload for a payment that was
// already applied, without mutating the account a second time.
func (s *Service) replayResult(ctx context.Context, user *models.User, paymentID string) (*VerificationResult, error) {
	var record models.PaymentRecord
	if err := s.conn.WithContext(ctx).Where("payment_id = ?", paymentID).First(&record).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if record.UserID != user.ID {
		// A replayed tuple that was minted for a different account is not a
		// retry, it is a cross-account replay attempt.
		return nil, fmt.Errorf("%w: payment does not belong to this account", ErrInvalidRequest)
	}

	var fresh models.User
	if err := s.conn.WithContext(ctx).First(&fresh, user.ID).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	category := models.Payment
	status := models.Duplicate
	description := "duplicate delivery ignored"
	event := models.EventLog{
		Category:    &category,
		Status:      &status,
		PlanName:    &record.PlanName,
		ReferenceID: &record.ReferenceID,
		PaymentID:   &record.PaymentID,
		Description: &description,
		UserID:      user.ID,
	}
	if err := s.conn.WithContext(ctx).Create(&event).Error; err != nil {
		commons.Logger.Errorf("Failed to record duplicate payment event: %v", err)
	}

	return &VerificationResult{
		Outcome:   AlreadyApplied,
		PlanName:  record.PlanName,
		PlanType:  fresh.PlanType,
		FormLimit: fresh.FormLimit,
		ExpiresAt: fresh.PlanExpiresAt,
	}, nil
}

// notify delivers the activation webhook. The call is wrapped so its outcome
// structurally cannot reach the caller: errors are logged and dropped here.
func (s *Service) notify(user *models.User, req VerificationRequest, result *VerificationResult, activatedAt time.Time) {
	if s.notifier == nil || user.WebhookURL == nil || *user.WebhookURL == "" {
		return
	}

	timeout := s.cfg.WebhookTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	event := ActivationEvent{
		Event:       "payment.verified",
		AccountID:   user.AccountID,
		PlanName:    result.PlanName,
		FormLimit:   result.FormLimit,
		ReferenceID: req.ReferenceID,
		PaymentID:   req.PaymentID,
		ExpiresAt:   result.ExpiresAt,
		ActivatedAt: activatedAt,
	}
	if err := s.notifier.NotifyActivation(ctx, *user.WebhookURL, event); err != nil {
		commons.Logger.Errorf("Activation webhook delivery failed for account %s: %v", user.AccountID, err)
	}
}
