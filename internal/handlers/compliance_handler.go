package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"compliance-service/internal/models"
	"compliance-service/internal/repository"
	"compliance-service/internal/services"
)

// ComplianceHandler handles compliance HTTP requests
type ComplianceHandler struct {
	service  *services.ComplianceService
	profiles repository.ProfileStore
}

// NewComplianceHandler creates a new compliance handler
func NewComplianceHandler(service *services.ComplianceService, profiles repository.ProfileStore) *ComplianceHandler {
	return &ComplianceHandler{
		service:  service,
		profiles: profiles,
	}
}

// referenceTime resolves the optional asOf query parameter so deadline and
// alert projections are reproducible against arbitrary reference dates.
func referenceTime(c *gin.Context) (time.Time, bool) {
	asOf := c.Query("asOf")
	if asOf == "" {
		return time.Now(), true
	}
	t, err := time.Parse(time.RFC3339, asOf)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid asOf parameter",
			"message": "asOf must be an RFC3339 timestamp",
		})
		return time.Time{}, false
	}
	return t, true
}

// ==================== Profile CRUD ====================

// CreateProfile handles POST /api/v1/profiles
func (h *ComplianceHandler) CreateProfile(c *gin.Context) {
	var req models.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": err.Error(),
		})
		return
	}

	if !req.Turnover.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": "unknown turnover range",
		})
		return
	}

	profile := models.BusinessProfile{
		ID:        uuid.New().String(),
		Name:      req.Name,
		OwnerName: req.OwnerName,
		Type:      req.Type,
		Turnover:  req.Turnover,
		State:     req.State,
		HasGST:    req.HasGST,
		GSTNumber: req.GSTNumber,
		PANNumber: req.PANNumber,
		Email:     req.Email,
	}

	if err := h.profiles.CreateProfile(c.Request.Context(), &profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create profile",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// GetProfile handles GET /api/v1/profiles/:id
func (h *ComplianceHandler) GetProfile(c *gin.Context) {
	profile, err := h.profiles.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch profile",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/v1/profiles/:id
func (h *ComplianceHandler) UpdateProfile(c *gin.Context) {
	profile, err := h.profiles.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch profile",
			"message": err.Error(),
		})
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": err.Error(),
		})
		return
	}

	if req.Name != nil {
		profile.Name = *req.Name
	}
	if req.OwnerName != nil {
		profile.OwnerName = *req.OwnerName
	}
	if req.Type != nil {
		profile.Type = *req.Type
	}
	if req.Turnover != nil {
		if !req.Turnover.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": "unknown turnover range",
			})
			return
		}
		profile.Turnover = *req.Turnover
	}
	if req.State != nil {
		profile.State = *req.State
	}
	if req.HasGST != nil {
		profile.HasGST = *req.HasGST
	}
	if req.GSTNumber != nil {
		profile.GSTNumber = *req.GSTNumber
	}

	if err := h.profiles.UpdateProfile(c.Request.Context(), profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update profile",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// ==================== Compliance pipeline ====================

// RefreshObligations handles POST /api/v1/compliance/:profileId/refresh
func (h *ComplianceHandler) RefreshObligations(c *gin.Context) {
	now, ok := referenceTime(c)
	if !ok {
		return
	}

	response, err := h.service.RefreshObligations(c.Request.Context(), c.Param("profileId"), now)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProfileNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		case errors.Is(err, repository.ErrLockNotAcquired):
			c.JSON(http.StatusConflict, gin.H{"error": "Refresh already in progress"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to refresh obligations",
				"message": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListObligations handles GET /api/v1/compliance/:profileId/obligations
func (h *ComplianceHandler) ListObligations(c *gin.Context) {
	obligations, err := h.service.GetObligations(c.Request.Context(), c.Param("profileId"))
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list obligations",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, obligations)
}

// ListDeadlines handles GET /api/v1/compliance/:profileId/deadlines
func (h *ComplianceHandler) ListDeadlines(c *gin.Context) {
	now, ok := referenceTime(c)
	if !ok {
		return
	}

	deadlines, err := h.service.GetDeadlines(c.Request.Context(), c.Param("profileId"), now)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to compute deadlines",
			"message": err.Error(),
		})
		return
	}

	if daysStr := c.Query("days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil || days < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid days parameter",
				"message": "days must be a non-negative integer",
			})
			return
		}
		deadlines = services.FilterUpcomingDeadlines(deadlines, days)
	}

	c.JSON(http.StatusOK, deadlines)
}

// ListAlerts handles GET /api/v1/compliance/:profileId/alerts
func (h *ComplianceHandler) ListAlerts(c *gin.Context) {
	now, ok := referenceTime(c)
	if !ok {
		return
	}

	alerts, err := h.service.GetAlerts(c.Request.Context(), c.Param("profileId"), now)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to compute alerts",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"counts": services.CountAlerts(alerts),
	})
}

// GetSummary handles GET /api/v1/compliance/:profileId/summary
func (h *ComplianceHandler) GetSummary(c *gin.Context) {
	summary, err := h.service.GetSummary(c.Request.Context(), c.Param("profileId"))
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to compute summary",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// UpdateObligationStatus handles PATCH /api/v1/obligations/:id/status
func (h *ComplianceHandler) UpdateObligationStatus(c *gin.Context) {
	var req models.UpdateObligationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": err.Error(),
		})
		return
	}

	if err := h.service.MarkObligationStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		switch {
		case errors.Is(err, repository.ErrObligationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Obligation not found"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Failed to update obligation status",
				"message": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Obligation status updated"})
}
