// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"net/http"

	"formfill-server/db"
	"formfill-server/models"

	"github.com/labstack/echo/v4"
)

// GetPlansHandler godoc
// @Summary      Get available plans
// @Description  Retrieves the published plan catalog with pricing, quotas and durations for display to clients.
// @Tags         plans
// @Accept       json
// @Produce      json
// @Success      200 {object}  GetPlansResponse "Plans retrieved successfully"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/plans [get]
func GetPlansHandler(c echo.Context) error {
	logger := c.Logger()

	var plans []models.Plan
	if err := db.Conn.Order("id ASC").Find(&plans).Error; err != nil {
		logger.Error("Failed to retrieve plans:", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve plans",
		}
	}

	details := make([]PlanDetails, 0, len(plans))
	for _, plan := range plans {
		details = append(details, PlanDetails{
			ID:             plan.ID,
			Name:           plan.Name,
			Price:          plan.Price,
			Currency:       plan.Currency,
			FormLimit:      plan.FormLimit,
			DurationInDays: plan.DurationInDays,
		})
	}

	return c.JSON(http.StatusOK, GetPlansResponse{
		Message: "Plans retrieved successfully",
		Plans:   details,
	})
}
