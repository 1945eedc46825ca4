// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"formfill-server/billing"
	"formfill-server/db"
	"formfill-server/middlewares"
	"formfill-server/models"
	"formfill-server/notifications"

	"github.com/labstack/echo/v4"
)

// paymentService is constructed once at startup from the validated
// configuration. Request handlers never read the environment; rotating the
// payment key secret requires a restart.
var paymentService *billing.Service

// InitPaymentService wires the payment verification service against the shared
// database connection. Called from main after the database is initialized.
func InitPaymentService(cfg billing.Config) {
	paymentService = billing.NewService(db.Conn, cfg, notifications.NewWebhookClient(cfg.WebhookTimeout))
}

func paymentErrorResponse(c echo.Context, user *models.User, action string, req billing.VerificationRequest, err error) error {
	logger := c.Logger()

	switch {
	case errors.Is(err, billing.ErrInvalidRequest):
		logger.Error("Payment verification rejected: ", err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		}
	case errors.Is(err, billing.ErrSignatureInvalid):
		logger.Error("Payment signature verification failed.")
		description := "signature verification failed"
		if logErr := LogPaymentEventFailureHandler(action, &req.PlanName, &req.ReferenceID, &req.PaymentID, user.ID, &description); logErr != nil {
			logger.Errorf("Failed to record payment failure event: %v", logErr)
		}
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Payment verification failed",
		}
	case errors.Is(err, billing.ErrUnknownPlan):
		logger.Error("Payment verification rejected: ", err)
		description := "unknown plan name"
		if logErr := LogPaymentEventFailureHandler(action, &req.PlanName, &req.ReferenceID, &req.PaymentID, user.ID, &description); logErr != nil {
			logger.Errorf("Failed to record payment failure event: %v", logErr)
		}
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf("Unknown plan: %s", req.PlanName),
		}
	case errors.Is(err, billing.ErrStoreUnavailable):
		logger.Errorf("Payment store unavailable: %v", err)
		return &echo.HTTPError{
			Code:    http.StatusServiceUnavailable,
			Message: "Payment could not be recorded, please retry",
		}
	default:
		logger.Errorf("Payment verification failed: %v", err)
		return echo.ErrInternalServerError
	}
}

func verificationResponse(c echo.Context, user *models.User, result *billing.VerificationResult) error {
	response := VerifyPaymentResponse{
		AlreadyApplied: result.Outcome == billing.AlreadyApplied,
		PlanName:       result.PlanName,
		FormLimit:      result.FormLimit,
		Message:        "Payment verified successfully",
	}
	if result.ExpiresAt != nil {
		expiresAt := result.ExpiresAt.Format(time.RFC3339)
		response.ExpiresAt = &expiresAt
	}

	if result.Outcome == billing.Applied {
		go notifications.DispatchNotification(notifications.Email, notifications.SMTP, notifications.NotificationData{
			To:       user.Email,
			Subject:  "Your FormFill plan is active",
			Template: "payment-receipt",
			Variables: map[string]any{
				"plan_name":  result.PlanName,
				"form_limit": result.FormLimit,
				"expires_at": response.ExpiresAt,
			},
		})
	}

	return c.JSON(http.StatusOK, response)
}

// VerifyPaymentHandler godoc
// @Summary      Verify a one-off payment
// @Description  Verifies the signature of a completed checkout payment and applies the purchased plan to the account.
// @Description  The signature must be the hex HMAC-SHA256 of "order_id|payment_id" under the shared key secret.
// @Description  Replays of an already-verified payment are acknowledged without applying the plan a second time.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        verifyPaymentRequest  body  VerifyPaymentRequest  true  "Payment verification payload"
// @Success      200 {object} VerifyPaymentResponse "Payment verified and plan applied"
// @Failure      400 {object} echo.HTTPError     "Bad request, missing fields, invalid signature or unknown plan"
// @Failure      401 {object} echo.HTTPError     "Unauthorized, invalid or expired session token"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Failure      503 {object} echo.HTTPError     "Payment store unavailable"
// @Router       /v1/payments/verify [post]
func VerifyPaymentHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	var req VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid payment verification payload:", err)
		return echo.ErrBadRequest
	}

	if paymentService == nil {
		logger.Error("Payment service is not initialized.")
		return echo.ErrInternalServerError
	}

	verification := billing.VerificationRequest{
		ReferenceID: req.ReferenceID,
		PaymentID:   req.PaymentID,
		Signature:   req.Signature,
		PlanName:    req.PlanName,
		Amount:      req.Amount,
		Currency:    req.Currency,
	}

	result, err := paymentService.VerifyPurchase(c.Request().Context(), user, verification)
	if err != nil {
		return paymentErrorResponse(c, user, models.ActionPlanUpgrade, verification, err)
	}

	logger.Infof("Payment verified and plan %s applied", result.PlanName)
	return verificationResponse(c, user, result)
}

// VerifySubscriptionHandler godoc
// @Summary      Verify a subscription renewal payment
// @Description  Verifies the signature of a recurring subscription charge and applies the renewal quota to the account.
// @Description  The signature must be the hex HMAC-SHA256 of "payment_id|subscription_id" under the shared key secret.
// @Description  Unrecognized plan names receive the default renewal quota rather than being rejected.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        verifySubscriptionRequest  body  VerifySubscriptionRequest  true  "Subscription verification payload"
// @Success      200 {object} VerifyPaymentResponse "Renewal verified and plan applied"
// @Failure      400 {object} echo.HTTPError     "Bad request, missing fields or invalid signature"
// @Failure      401 {object} echo.HTTPError     "Unauthorized, invalid or expired session token"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Failure      503 {object} echo.HTTPError     "Payment store unavailable"
// @Router       /v1/payments/verify-subscription [post]
func VerifySubscriptionHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	var req VerifySubscriptionRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid subscription verification payload:", err)
		return echo.ErrBadRequest
	}

	if paymentService == nil {
		logger.Error("Payment service is not initialized.")
		return echo.ErrInternalServerError
	}

	verification := billing.VerificationRequest{
		ReferenceID: req.SubscriptionID,
		PaymentID:   req.PaymentID,
		Signature:   req.Signature,
		PlanName:    req.PlanName,
		Amount:      req.Amount,
		Currency:    req.Currency,
	}

	result, err := paymentService.VerifySubscriptionRenewal(c.Request().Context(), user, verification)
	if err != nil {
		return paymentErrorResponse(c, user, models.ActionSubscriptionActivated, verification, err)
	}

	logger.Infof("Subscription renewal verified for plan %s", result.PlanName)
	return verificationResponse(c, user, result)
}

// GetPaymentsHandler godoc
// @Summary      Get payment history
// @Description  Retrieves the authenticated user's payment ledger, newest first.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        page      query   int     false  "Page number (default 1)"
// @Param        page_size query   int     false  "Page size (default 10, max 100)"
// @Success      200 {object} PaymentListResponse "Paginated list of payments"
// @Failure      401 {object} echo.HTTPError     "Unauthorized, invalid or expired session token"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/payments [get]
func GetPaymentsHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	page := 1
	pageSize := 10
	if p := c.QueryParam("page"); p != "" {
		if _, err := fmt.Sscanf(p, "%d", &page); err != nil || page < 1 {
			page = 1
		}
	}
	if ps := c.QueryParam("page_size"); ps != "" {
		if _, err := fmt.Sscanf(ps, "%d", &pageSize); err != nil || pageSize < 1 {
			pageSize = 10
		}
	}
	if pageSize > 100 {
		pageSize = 100
	}

	var total int64
	if err := db.Conn.Model(&models.PaymentRecord{}).Where("user_id = ?", user.ID).Count(&total).Error; err != nil {
		logger.Errorf("Failed to count payments: %v", err)
		return echo.ErrInternalServerError
	}

	offset := (page - 1) * pageSize
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	var records []models.PaymentRecord
	if err := db.Conn.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&records).Error; err != nil {
		logger.Errorf("Failed to fetch payments: %v", err)
		return echo.ErrInternalServerError
	}

	details := make([]PaymentDetails, 0, len(records))
	for _, record := range records {
		details = append(details, PaymentDetails{
			PaymentID:   record.PaymentID,
			ReferenceID: record.ReferenceID,
			PlanName:    record.PlanName,
			Amount:      record.Amount,
			Currency:    record.Currency,
			Status:      string(record.Status),
			CreatedAt:   record.CreatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, PaymentListResponse{
		Data: details,
		Pagination: PaginationDetails{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
		Message: "Payments retrieved successfully",
	})
}
