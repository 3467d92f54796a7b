package files

import (
	"errors"
	"net/http"
	"strconv"

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

// RegisterRoutes attaches file routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.DELETE("/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	list, err := h.Svc.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "storage_failure", "failed to list files", nil)
		return
	}
	respond.OK(c, gin.H{"files": toResponseList(list)})
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	role := middleware.UserRoleFromContext(c)

	err := h.Svc.Remove(c.Request.Context(), userID, role, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
		case errors.Is(err, ErrSubmittedLocked):
			respond.Error(c, http.StatusForbidden, "forbidden", "提交后的证书文件仅管理员可删除", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "storage_failure", "failed to delete file", nil)
		}
		return
	}
	c.Status(http.StatusNoContent)
}
