// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"formfill-server/crypto"
	"formfill-server/db"
	"formfill-server/middlewares"
	"formfill-server/models"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// CreateAPIKeyHandler godoc
// @Summary      Create an API key
// @Description  Creates a new API key for the authenticated user. The full key is returned once and cannot be retrieved again.
// @Tags         api-keys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        createAPIKeyRequest  body  CreateAPIKeyRequest  true  "API key creation payload"
// @Success      201 {object} CreateAPIKeyResponse "API key created successfully"
// @Failure      400 {object} echo.HTTPError     "Bad request, missing required fields"
// @Failure      401 {object} echo.HTTPError     "Unauthorized, invalid or expired session token"
// @Failure      409 {object} echo.HTTPError     "An API key with this name already exists"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/auth/api-keys [post]
func CreateAPIKeyHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	var req CreateAPIKeyRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid API key creation payload:", err)
		return echo.ErrBadRequest
	}

	if req.Name == "" {
		logger.Error("API key name is required.")
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "name field is required",
		}
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil && *req.ExpiresAt != "" {
		parsed, err := time.Parse("2006-01-02", *req.ExpiresAt)
		if err != nil {
			logger.Error("Invalid API key expiration date:", err)
			return &echo.HTTPError{
				Code:    http.StatusBadRequest,
				Message: "expires_at must be a date in YYYY-MM-DD format",
			}
		}
		if parsed.Before(time.Now()) {
			logger.Error("API key expiration date is in the past.")
			return &echo.HTTPError{
				Code:    http.StatusBadRequest,
				Message: "expires_at must be in the future",
			}
		}
		expiresAt = &parsed
	}

	count := db.Conn.Where("user_id = ? AND name = ?", user.ID, req.Name).First(&models.APIKey{}).RowsAffected
	if count > 0 {
		logger.Error("API key name already in use.")
		return &echo.HTTPError{
			Code:    http.StatusConflict,
			Message: "An API key with this name already exists",
		}
	}

	apiKeyValue, err := crypto.GenerateRandomString("ak_", 32, "hex")
	if err != nil {
		logger.Errorf("Failed to generate API key: %v", err)
		return echo.ErrInternalServerError
	}

	// The stored key ID is the recognizable prefix of the full key; the
	// remainder is only ever stored hashed.
	keyID := apiKeyValue[:35]

	newCrypto := crypto.NewCrypto()
	hashedKey, err := newCrypto.HashPassword(apiKeyValue)
	if err != nil {
		logger.Errorf("Failed to hash API key: %v", err)
		return echo.ErrInternalServerError
	}

	apiKey := models.APIKey{
		KeyID:       keyID,
		HashedKey:   hashedKey,
		Name:        req.Name,
		Description: req.Description,
		ExpiresAt:   expiresAt,
		UserID:      user.ID,
	}

	if err := db.Conn.Create(&apiKey).Error; err != nil {
		logger.Errorf("Failed to create API key: %v", err)
		return echo.ErrInternalServerError
	}

	response := CreateAPIKeyResponse{
		APIKey:      apiKeyValue,
		KeyID:       apiKey.KeyID,
		Name:        apiKey.Name,
		Description: apiKey.Description,
		CreatedAt:   apiKey.CreatedAt.Format(time.RFC3339),
		Message:     "API key created successfully",
	}
	if apiKey.ExpiresAt != nil {
		expiry := apiKey.ExpiresAt.Format("2006-01-02")
		response.ExpiresAt = &expiry
	}

	logger.Infof("API key created successfully")
	return c.JSON(http.StatusCreated, response)
}

// GetAllAPIKeyHandler godoc
// @Summary      Get all API keys
// @Description  Retrieves all API keys for the authenticated user. Key values are never returned, only metadata.
// @Tags         api-keys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        page      query   int     false  "Page number (default 1)"
// @Param        page_size query   int     false  "Page size (default 10, max 100)"
// @Success      200 {object} APIKeyListResponse "Paginated list of API keys"
// @Failure      401 {object} echo.HTTPError     "Unauthorized, invalid or expired session token"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/auth/api-keys [get]
func GetAllAPIKeyHandler(c echo.Context) error {
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
	if err := db.Conn.Model(&models.APIKey{}).Where("user_id = ?", user.ID).Count(&total).Error; err != nil {
		logger.Errorf("Failed to count API keys: %v", err)
		return echo.ErrInternalServerError
	}

	offset := (page - 1) * pageSize
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	var apiKeys []models.APIKey
	if err := db.Conn.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&apiKeys).Error; err != nil {
		logger.Errorf("Failed to fetch API keys: %v", err)
		return echo.ErrInternalServerError
	}

	details := make([]APIKeyDetails, 0, len(apiKeys))
	for _, apiKey := range apiKeys {
		detail := APIKeyDetails{
			KeyID:       apiKey.KeyID,
			Name:        apiKey.Name,
			Description: apiKey.Description,
			CreatedAt:   apiKey.CreatedAt.Format(time.RFC3339),
		}
		if apiKey.LastUsedAt != nil {
			lastUsed := apiKey.LastUsedAt.Format(time.RFC3339)
			detail.LastUsedAt = &lastUsed
		}
		if apiKey.ExpiresAt != nil {
			expiry := apiKey.ExpiresAt.Format("2006-01-02")
			detail.ExpiresAt = &expiry
		}
		details = append(details, detail)
	}

	return c.JSON(http.StatusOK, APIKeyListResponse{
		Data: details,
		Pagination: PaginationDetails{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
		Message: "API keys retrieved successfully",
	})
}

// DeleteAPIKeyHandler godoc
// @Summary      Delete an API key
// @Description  Permanently deletes an API key by its key ID. Requests using the key are rejected immediately after deletion.
// @Tags         api-keys
// @Produce      json
// @Security     BearerAuth
// @Param        Authorization  header  string  true  "Bearer token for authentication. Replace <your_token_here> with a valid token."  default(Bearer <your_token_here>)
// @Param        key_id    path    string  true  "Key ID"
// @Success      200 {object} GenericResponse "API key deleted successfully"
// @Failure      401 {object} echo.HTTPError     "Unauthorized, invalid or expired session token"
// @Failure      404 {object} echo.HTTPError     "API key not found"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/auth/api-keys/{key_id} [delete]
func DeleteAPIKeyHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("Failed to get authenticated user:", err)
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Invalid or expired authentication token, please login again",
		}
	}

	keyID := c.Param("key_id")
	if keyID == "" {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Key ID is required",
		}
	}

	apiKey := models.APIKey{}
	if err := db.Conn.Where("key_id = ? AND user_id = ?", keyID, user.ID).First(&apiKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("API key not found.")
			return &echo.HTTPError{
				Code:    http.StatusNotFound,
				Message: "API key not found",
			}
		}
		logger.Errorf("Failed to fetch API key: %v", err)
		return echo.ErrInternalServerError
	}

	if err := db.Conn.Unscoped().Delete(&apiKey).Error; err != nil {
		logger.Errorf("Failed to delete API key: %v", err)
		return echo.ErrInternalServerError
	}

	logger.Infof("API key deleted successfully")
	return c.JSON(http.StatusOK, GenericResponse{
		Message: "API key deleted successfully",
	})
}
