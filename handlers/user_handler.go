// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"net/http"
	"net/url"
	"time"

	"formfill-server/db"
	"formfill-server/middlewares"

	"github.com/labstack/echo/v4"
)

// GetUserHandler godoc
// @Summary      Get user details
// @Description  Retrieves the authenticated user's account details along with the current plan, quota usage and expiry.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Success      200 {object}  GetUserResponse 	 "User retrieved successfully"
// @Failure      401 {object} echo.HTTPError     "Unauthorized, invalid or expired session token"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/users/ [get]
func GetUserHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	response := GetUserResponse{
		AccountID:  user.AccountID,
		Email:      user.Email,
		PlanType:   string(user.PlanType),
		FormsUsed:  user.FormsUsed,
		FormLimit:  user.FormLimit,
		WebhookURL: user.WebhookURL,
		Message:    "User retrieved successfully",
	}

	if user.PlanExpiresAt != nil {
		expiresAt := user.PlanExpiresAt.Format(time.RFC3339)
		response.ExpiresAt = &expiresAt

		daysRemaining := int(time.Until(*user.PlanExpiresAt).Hours() / 24)
		if daysRemaining < 0 {
			daysRemaining = 0
		}
		response.DaysRemaining = &daysRemaining
	}

	return c.JSON(http.StatusOK, response)
}

// UpdateWebhookHandler godoc
// @Summary      Set or clear the outbound webhook URL
// @Description  Sets the URL that receives plan activation events after a payment is verified. A null or empty URL clears the webhook.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        updateWebhookRequest  body  UpdateWebhookRequest  true  "Webhook update payload"
// @Success      200 {object}  GenericResponse "Webhook updated successfully"
// @Failure      400 {object} echo.HTTPError     "Bad request, webhook URL is not a valid http(s) URL"
// @Failure      401 {object} echo.HTTPError     "Unauthorized, invalid or expired session token"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/users/webhook [put]
func UpdateWebhookHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	var req UpdateWebhookRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid webhook update payload:", err)
		return echo.ErrBadRequest
	}

	var webhookURL *string
	if req.WebhookURL != nil && *req.WebhookURL != "" {
		parsed, err := url.Parse(*req.WebhookURL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			logger.Error("Invalid webhook URL.")
			return &echo.HTTPError{
				Code:    http.StatusBadRequest,
				Message: "webhook_url must be a valid http or https URL",
			}
		}
		webhookURL = req.WebhookURL
	}

	if err := db.Conn.Model(user).Update("webhook_url", webhookURL).Error; err != nil {
		logger.Errorf("Failed to update webhook URL: %v", err)
		return echo.ErrInternalServerError
	}

	message := "Webhook updated successfully"
	if webhookURL == nil {
		message = "Webhook cleared successfully"
	}

	logger.Info(message)
	return c.JSON(http.StatusOK, GenericResponse{Message: message})
}
