// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"net/http"
	"time"

	"formfill-server/db"
	"formfill-server/middlewares"
	"formfill-server/models"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// ConsumeFormHandler godoc
// @Summary      Record a form fill
// @Description  Consumes one form fill from the account's quota. Rejected when the quota is exhausted or the plan has expired.
// @Tags         forms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Success      200 {object} ConsumeFormResponse "Form fill recorded"
// @Failure      401 {object} echo.HTTPError     "Unauthorized, invalid or expired session token"
// @Failure      402 {object} echo.HTTPError     "Quota exhausted or plan expired"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/forms/consume [post]
func ConsumeFormHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	if !user.PlanActive(time.Now()) {
		logger.Error("Plan has expired.")
		return &echo.HTTPError{
			Code:    http.StatusPaymentRequired,
			Message: "Your plan has expired, please purchase a new plan",
		}
	}

	var formsUsed uint
	err = db.Conn.Transaction(func(tx *gorm.DB) error {
		var fresh models.User
		if err := tx.First(&fresh, user.ID).Error; err != nil {
			return err
		}

		if fresh.FormsUsed >= fresh.FormLimit {
			return echo.NewHTTPError(http.StatusPaymentRequired, "Form quota exhausted, please upgrade your plan")
		}

		formsUsed = fresh.FormsUsed + 1
		if err := tx.Model(&fresh).Update("forms_used", formsUsed).Error; err != nil {
			return err
		}

		category := models.Form
		status := models.Succeeded
		action := models.ActionFormConsumed
		event := models.EventLog{
			Category: &category,
			Status:   &status,
			Action:   &action,
			UserID:   fresh.ID,
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		if httpErr, ok := err.(*echo.HTTPError); ok {
			logger.Error("Form consumption rejected: ", httpErr.Message)
			return httpErr
		}
		logger.Errorf("Failed to record form fill: %v", err)
		return echo.ErrInternalServerError
	}

	logger.Infof("Form fill recorded")
	return c.JSON(http.StatusOK, ConsumeFormResponse{
		FormsUsed: formsUsed,
		FormLimit: user.FormLimit,
		Message:   "Form fill recorded",
	})
}
