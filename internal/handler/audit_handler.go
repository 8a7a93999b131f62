package handler

import (
	"net/http"

	"assetverse/internal/middleware"
	"assetverse/internal/model"
	"assetverse/internal/service"
	"assetverse/pkg/pagination"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	audits := router.Group("/api/audits")
	{
		audits.GET("", middleware.RequireRole(model.RoleHR), h.ListAuditLogs)
	}
}

// ListAuditLogs returns audit entries, optionally filtered by action or actor
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	page := pagination.Parse(c)
	filter := service.AuditFilter{
		Action:     c.Query("action"),
		ActorEmail: c.Query("actor"),
		Page:       page.Page,
		Limit:      page.Limit,
	}

	entries, total, err := h.auditService.ListAuditLogs(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page.Wrap(entries, total))
}
