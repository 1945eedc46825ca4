// SPDX-License-Identifier: GPL-3.0-only

package handlers

// swagger:model SignupRequest
type SignupRequest struct {
	// User's password
	// required: true
	Password string `json:"password" example:"MySecretPassword@123"`
	// User's email address
	// required: true
	Email string `json:"email" example:"user@example.com"`
}

// swagger:model AuthResponse
type AuthResponse struct {
	// Authentication session token
	// This token is used for subsequent authenticated requests.
	// It should be stored securely by the client.
	// Should be used in the Authorization header as a Bearer token.
	SessionToken string `json:"session_token" example:"sample_session_token"`
	// Message indicating successful operation
	Message string `json:"message" example:"Operation successful"`
}

// swagger:model LoginRequest
type LoginRequest struct {
	// User's email address
	Email string `json:"email" example:"user@example.com"`
	// User's password
	Password string `json:"password" example:"MySecretPassword@123"`
}

// swagger:model GenericResponse
type GenericResponse struct {
	// Message indicating the result of the operation
	Message string `json:"message"`
}

// swagger:model PaginationDetails
type PaginationDetails struct {
	// Current page number
	Page int `json:"page"`
	// Page size
	PageSize int `json:"page_size"`
	// Total number of items
	Total int64 `json:"total"`
	// Total number of pages
	TotalPages int `json:"total_pages"`
}

// swagger:model VerifyPaymentRequest
type VerifyPaymentRequest struct {
	// Vendor order ID the checkout was created for
	ReferenceID string `json:"reference_id" example:"order_MnOPqr123456"`
	// Vendor payment ID issued on capture
	PaymentID string `json:"payment_id" example:"pay_NoPQrs654321"`
	// Hex HMAC-SHA256 signature over "order_id|payment_id"
	Signature string `json:"signature" example:"d1f3a9..."`
	// Purchased plan name, one of the published catalog
	PlanName string `json:"plan_name" example:"Monthly"`
	// Paid amount in minor currency units (paise)
	Amount int64 `json:"amount" example:"49900"`
	// ISO currency code, defaults to INR
	Currency string `json:"currency" example:"INR"`
}

// swagger:model VerifySubscriptionRequest
type VerifySubscriptionRequest struct {
	// Vendor subscription ID the renewal belongs to
	SubscriptionID string `json:"subscription_id" example:"sub_AbCdEf789012"`
	// Vendor payment ID issued on capture
	PaymentID string `json:"payment_id" example:"pay_NoPQrs654321"`
	// Hex HMAC-SHA256 signature over "payment_id|subscription_id"
	Signature string `json:"signature" example:"d1f3a9..."`
	// Renewed plan name
	PlanName string `json:"plan_name" example:"Monthly"`
	// Paid amount in minor currency units (paise)
	Amount int64 `json:"amount" example:"49900"`
	// ISO currency code, defaults to INR
	Currency string `json:"currency" example:"INR"`
}

// swagger:model VerifyPaymentResponse
type VerifyPaymentResponse struct {
	// Whether the verified entitlement was applied by this call or a
	// previous delivery of the same payment
	AlreadyApplied bool `json:"already_applied" example:"false"`
	// Activated plan name
	PlanName string `json:"plan_name" example:"Monthly"`
	// Granted form quota
	FormLimit uint `json:"form_limit" example:"400"`
	// Entitlement expiry, null for plans that never expire
	ExpiresAt *string `json:"expires_at" example:"2025-02-01T00:00:00Z"`
	// Message indicating successful verification
	Message string `json:"message" example:"Payment verified successfully"`
}

// swagger:model GetUserResponse
type GetUserResponse struct {
	// Unique identifier for the user
	AccountID string `json:"account_id" example:"acct_1234567890"`
	// Email address associated with the user's account
	Email string `json:"email" example:"user@example.com"`
	// Current plan type
	PlanType string `json:"plan_type" example:"MONTHLY"`
	// Forms consumed under the current entitlement
	FormsUsed uint `json:"forms_used" example:"12"`
	// Form quota of the current entitlement
	FormLimit uint `json:"form_limit" example:"400"`
	// Entitlement expiry, null for plans that never expire
	ExpiresAt *string `json:"expires_at" example:"2025-02-01T00:00:00Z"`
	// Days remaining until expiration (null for non-expiring plans)
	DaysRemaining *int `json:"days_remaining" example:"22"`
	// Configured outbound webhook URL, null when none is set
	WebhookURL *string `json:"webhook_url" example:"https://example.com/hooks/formfill"`
	// Message indicating successful retrieval
	Message string `json:"message" example:"User retrieved successfully"`
}

// swagger:model UpdateWebhookRequest
type UpdateWebhookRequest struct {
	// Outbound webhook URL; null or empty clears the webhook
	WebhookURL *string `json:"webhook_url" example:"https://example.com/hooks/formfill"`
}

// swagger:model ConsumeFormResponse
type ConsumeFormResponse struct {
	// Forms consumed after this call
	FormsUsed uint `json:"forms_used" example:"13"`
	// Form quota of the current entitlement
	FormLimit uint `json:"form_limit" example:"400"`
	// Message indicating the form fill was recorded
	Message string `json:"message" example:"Form fill recorded"`
}

// swagger:model PlanDetails
type PlanDetails struct {
	// Plan ID
	ID uint `json:"id" example:"4"`
	// Plan name
	Name string `json:"name" example:"Monthly"`
	// Plan price in minor currency units
	Price uint `json:"price" example:"49900"`
	// Currency for the plan price
	Currency string `json:"currency" example:"INR"`
	// Form quota granted by the plan
	FormLimit uint `json:"form_limit" example:"400"`
	// Duration of the plan in days, 0 for plans that never expire
	DurationInDays uint `json:"duration_in_days" example:"30"`
}

// swagger:model GetPlansResponse
type GetPlansResponse struct {
	// Operation success message
	Message string `json:"message" example:"Plans retrieved successfully"`
	// List of available plans
	Plans []PlanDetails `json:"plans"`
}

// swagger:model PaymentDetails
type PaymentDetails struct {
	// Vendor payment ID
	PaymentID string `json:"payment_id" example:"pay_NoPQrs654321"`
	// Vendor order or subscription ID
	ReferenceID string `json:"reference_id" example:"order_MnOPqr123456"`
	// Purchased plan name
	PlanName string `json:"plan_name" example:"Monthly"`
	// Paid amount in minor currency units
	Amount int64 `json:"amount" example:"49900"`
	// ISO currency code
	Currency string `json:"currency" example:"INR"`
	// Payment status
	Status string `json:"status" example:"SUCCEEDED"`
	// Timestamp of when the payment was recorded
	CreatedAt string `json:"created_at" example:"2025-01-01T12:00:00Z"`
}

// swagger:model PaymentListResponse
type PaymentListResponse struct {
	// List of recorded payments
	Data []PaymentDetails `json:"data"`
	// Pagination details
	Pagination PaginationDetails `json:"pagination"`
	// Message indicating successful retrieval
	Message string `json:"message" example:"Payments retrieved successfully"`
}

// swagger:model EventLogDetails
type EventLogDetails struct {
	// Event ID
	EID string `json:"eid" example:"550e8400-e29b-41d4-a716-446655440000"`
	// Event category
	Category *string `json:"category" example:"PAYMENT"`
	// Event status
	Status *string `json:"status" example:"SUCCEEDED"`
	// Action recorded by the event
	Action *string `json:"action" example:"plan_upgrade"`
	// Plan name associated with the event
	PlanName *string `json:"plan_name" example:"Monthly"`
	// Vendor order or subscription ID
	ReferenceID *string `json:"reference_id" example:"order_MnOPqr123456"`
	// Vendor payment ID
	PaymentID *string `json:"payment_id" example:"pay_NoPQrs654321"`
	// Event description
	Description *string `json:"description" example:"duplicate delivery ignored"`
	// Timestamp of when the event was created
	CreatedAt string `json:"created_at" example:"2025-01-01T12:00:00Z"`
}

// swagger:model EventLogListResponse
type EventLogListResponse struct {
	// List of event logs
	Data []EventLogDetails `json:"data"`
	// Pagination details
	Pagination PaginationDetails `json:"pagination"`
	// Message indicating successful retrieval
	Message string `json:"message" example:"Event logs retrieved successfully"`
}

// swagger:model EventLogSummaryResponse
type EventLogSummaryResponse struct {
	Data    EventLogSummaryData `json:"data"`
	Message string              `json:"message" example:"Event logs summary retrieved successfully"`
}

// swagger:model EventLogSummaryData
type EventLogSummaryData struct {
	TotalCount     int64 `json:"total_count" example:"150"`
	TotalSucceeded int64 `json:"total_succeeded" example:"130"`
	TotalFailed    int64 `json:"total_failed" example:"15"`
	TotalDuplicate int64 `json:"total_duplicate" example:"5"`
}

// swagger:model CreateAPIKeyRequest
type CreateAPIKeyRequest struct {
	// Name of the API key
	Name string `json:"name" example:"My API Key"`
	// Description of the API key
	Description *string `json:"description" example:"This key is used by the form-filling client."`
	// Expiration date for the API key (optional)
	ExpiresAt *string `json:"expires_at" example:"2026-12-31"`
}

// swagger:model CreateAPIKeyResponse
type CreateAPIKeyResponse struct {
	// API key created; only returned once at creation time
	APIKey string `json:"api_key" example:"ak_jkdfkjdfkdfjkdlklklkllklklklklklklklklklklkl"`
	// Key ID of the created API key
	KeyID string `json:"key_id" example:"ak_jkdfkjdfkdfjkd"`
	// Name of the API key
	Name string `json:"name" example:"My API Key"`
	// Description of the API key
	Description *string `json:"description" example:"This key is used by the form-filling client."`
	// Timestamp of when the API key was created
	CreatedAt string `json:"created_at" example:"2025-01-01T12:00:00Z"`
	// Expiration date for the API key
	ExpiresAt *string `json:"expires_at" example:"2026-12-31"`
	// Message indicating successful creation
	Message string `json:"message" example:"API key created successfully"`
}

// swagger:model APIKeyDetails
type APIKeyDetails struct {
	// Key ID of the API key
	KeyID string `json:"key_id" example:"ak_jkdfkjdfkdfjkd"`
	// Name of the API key
	Name string `json:"name" example:"My API Key"`
	// Description of the API key
	Description *string `json:"description" example:"This key is used by the form-filling client."`
	// Timestamp of when the API key was created
	CreatedAt string `json:"created_at" example:"2025-01-01T12:00:00Z"`
	// Last used timestamp of the API key
	LastUsedAt *string `json:"last_used_at" example:"2025-01-01T12:00:00Z"`
	// Expiration date for the API key
	ExpiresAt *string `json:"expires_at" example:"2026-12-31"`
}

// swagger:model APIKeyListResponse
type APIKeyListResponse struct {
	// List of API keys
	Data []APIKeyDetails `json:"data"`
	// Pagination details
	Pagination PaginationDetails `json:"pagination"`
	// Message indicating successful retrieval
	Message string `json:"message" example:"API keys retrieved successfully"`
}
