package sysconfig

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mona5211005/certificate-system/internal/shared/server/middleware"
	"github.com/mona5211005/certificate-system/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes mounts the admin configuration endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/deadline", h.getDeadline)
	rg.PUT("/deadline", h.updateDeadline)
	rg.PUT("/vision-key", h.updateVisionKey)
}

type updateDeadlineRequest struct {
	Deadline string `json:"deadline" binding:"required"`
}

type updateVisionKeyRequest struct {
	APIKey string `json:"apiKey" binding:"required"`
}

func (h *Handler) getDeadline(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	deadline, err := h.Svc.Deadline(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load deadline", nil)
		return
	}
	respond.OK(c, gin.H{"deadline": deadline.Format(DeadlineLayout)})
}

func (h *Handler) updateDeadline(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	var req updateDeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusUnprocessableEntity, "validation_failed", "deadline is required", nil)
		return
	}
	if err := h.Svc.SetDeadline(c.Request.Context(), req.Deadline); err != nil {
		if errors.Is(err, ErrInvalidDeadline) {
			respond.Error(c, http.StatusUnprocessableEntity, "validation_failed", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store deadline", nil)
		return
	}
	respond.OK(c, gin.H{"deadline": req.Deadline})
}

func (h *Handler) updateVisionKey(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	var req updateVisionKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusUnprocessableEntity, "validation_failed", "apiKey is required", nil)
		return
	}
	if err := h.Svc.SetVisionKey(c.Request.Context(), req.APIKey); err != nil {
		if errors.Is(err, ErrEmptyKey) {
			respond.Error(c, http.StatusUnprocessableEntity, "validation_failed", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store api key", nil)
		return
	}
	respond.OK(c, gin.H{"updated": true})
}

func (h *Handler) requireAdmin(c *gin.Context) bool {
	if !middleware.IsAdmin(c) {
		respond.Error(c, http.StatusForbidden, "forbidden", "admin role required", nil)
		return false
	}
	return true
}
