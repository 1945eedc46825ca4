// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"formfill-server/db"
	"formfill-server/middlewares"
	"formfill-server/models"

	"github.com/labstack/echo/v4"
)

func CreateEventLogHandler(eventLog models.EventLog) error {
	if err := db.Conn.Create(&eventLog).Error; err != nil {
		return fmt.Errorf("failed to create event log: %w", err)
	}
	return nil
}

func LogPaymentEventFailureHandler(
	action string,
	planName *string,
	referenceID *string,
	paymentID *string,
	userID uint,
	description *string,
) error {
	status := new(models.EventStatus)
	*status = models.Failed
	category := new(models.EventCategory)
	*category = models.Payment
	return CreateEventLogHandler(models.EventLog{
		Category:    category,
		Status:      status,
		Action:      &action,
		PlanName:    planName,
		ReferenceID: referenceID,
		PaymentID:   paymentID,
		UserID:      userID,
		Description: description,
	})
}

// GetEventLogsHandler godoc
// @Summary      Get event logs
// @Description  Retrieves the audit trail for the authenticated user, newest first. Supports filtering by category and status.
// @Tags         event-logs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        page      query   int     false  "Page number (default 1)"
// @Param        page_size query   int     false  "Page size (default 10, max 100)"
// @Param        category  query   string  false  "Filter by event category (PAYMENT, AUTH, FORM)"
// @Param        status    query   string  false  "Filter by event status (SUCCEEDED, FAILED, DUPLICATE)"
// @Success      200 {object} EventLogListResponse "Paginated list of event logs"
// @Failure      401 {object} echo.HTTPError     "Unauthorized, invalid or expired session token"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/event-logs [get]
func GetEventLogsHandler(c echo.Context) error {
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

	query := db.Conn.Model(&models.EventLog{}).Where("user_id = ?", user.ID)
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Errorf("Failed to count event logs: %v", err)
		return echo.ErrInternalServerError
	}

	offset := (page - 1) * pageSize
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	var eventLogs []models.EventLog
	if err := query.
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&eventLogs).Error; err != nil {
		logger.Errorf("Failed to fetch event logs: %v", err)
		return echo.ErrInternalServerError
	}

	details := make([]EventLogDetails, 0, len(eventLogs))
	for _, eventLog := range eventLogs {
		detail := EventLogDetails{
			EID:         eventLog.EID.String(),
			Action:      eventLog.Action,
			PlanName:    eventLog.PlanName,
			ReferenceID: eventLog.ReferenceID,
			PaymentID:   eventLog.PaymentID,
			Description: eventLog.Description,
			CreatedAt:   eventLog.CreatedAt.Format(time.RFC3339),
		}
		if eventLog.Category != nil {
			category := string(*eventLog.Category)
			detail.Category = &category
		}
		if eventLog.Status != nil {
			status := string(*eventLog.Status)
			detail.Status = &status
		}
		details = append(details, detail)
	}

	return c.JSON(http.StatusOK, EventLogListResponse{
		Data: details,
		Pagination: PaginationDetails{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
		Message: "Event logs retrieved successfully",
	})
}

// GetEventLogsSummaryHandler godoc
// @Summary      Get event logs summary
// @Description  Retrieves aggregate counts of the authenticated user's event logs by status.
// @Tags         event-logs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Success      200 {object} EventLogSummaryResponse "Event logs summary"
// @Failure      401 {object} echo.HTTPError     "Unauthorized, invalid or expired session token"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/event-logs/summary [get]
func GetEventLogsSummaryHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	summary := EventLogSummaryData{}

	if err := db.Conn.Model(&models.EventLog{}).
		Where("user_id = ?", user.ID).
		Count(&summary.TotalCount).Error; err != nil {
		logger.Errorf("Failed to count event logs: %v", err)
		return echo.ErrInternalServerError
	}

	statusCounts := map[models.EventStatus]*int64{
		models.Succeeded: &summary.TotalSucceeded,
		models.Failed:    &summary.TotalFailed,
		models.Duplicate: &summary.TotalDuplicate,
	}
	for status, dest := range statusCounts {
		if err := db.Conn.Model(&models.EventLog{}).
			Where("user_id = ? AND status = ?", user.ID, status).
			Count(dest).Error; err != nil {
			logger.Errorf("Failed to count %s event logs: %v", status, err)
			return echo.ErrInternalServerError
		}
	}

	return c.JSON(http.StatusOK, EventLogSummaryResponse{
		Data:    summary,
		Message: "Event logs summary retrieved successfully",
	})
}
