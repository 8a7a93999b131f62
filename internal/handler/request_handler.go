package handler

import (
	"net/http"

	"assetverse/internal/middleware"
	"assetverse/internal/model"
	"assetverse/internal/service"
	"assetverse/pkg/pagination"
	"assetverse/pkg/response"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	requestService  service.RequestService
	approvalService service.ApprovalService
}

func NewRequestHandler(requestService service.RequestService, approvalService service.ApprovalService) *RequestHandler {
	return &RequestHandler{requestService: requestService, approvalService: approvalService}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests")
	{
		requests.POST("", middleware.RequireRole(model.RoleEmployee, model.RoleUnaffiliated), h.CreateRequest)
		requests.GET("/my", middleware.RequireRole(model.RoleEmployee, model.RoleUnaffiliated), h.ListMyRequests)
		requests.GET("", middleware.RequireRole(model.RoleHR), h.ListHrRequests)
		requests.POST("/:id/approve", middleware.RequireRole(model.RoleHR), h.ApproveRequest)
		requests.POST("/:id/reject", middleware.RequireRole(model.RoleHR), h.RejectRequest)
		requests.DELETE("/:id", middleware.RequireRole(model.RoleEmployee, model.RoleUnaffiliated), h.CancelRequest)
	}
}

// CreateRequest creates a PENDING asset request for the caller
// @Summary      Create asset request
// @Description  Creates a pending request for one unit of an asset
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRequestDTO  true  "Request payload"
// @Success      201      {object}  response.Response{data=service.RequestResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/requests [post]
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req service.CreateRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "BadRequest", "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.requestService.CreateRequest(c.Request.Context(), callerEmail(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListMyRequests returns the caller's own requests
func (h *RequestHandler) ListMyRequests(c *gin.Context) {
	page := pagination.Parse(c)
	filter := service.RequestFilter{
		Status: c.Query("status"),
		Page:   page.Page,
		Limit:  page.Limit,
	}

	requests, total, err := h.requestService.ListMyRequests(c.Request.Context(), callerEmail(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page.Wrap(requests, total))
}

// ListHrRequests returns requests targeting the calling HR account
func (h *RequestHandler) ListHrRequests(c *gin.Context) {
	page := pagination.Parse(c)
	filter := service.RequestFilter{
		Status: c.Query("status"),
		Page:   page.Page,
		Limit:  page.Limit,
	}

	requests, total, err := h.requestService.ListHrRequests(c.Request.Context(), callerEmail(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page.Wrap(requests, total))
}

// ApproveRequest approves a pending request
// @Summary      Approve request
// @Description  Approves a pending request, decrements the asset and affiliates the requester
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestResponse}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/requests/{id}/approve [post]
func (h *RequestHandler) ApproveRequest(c *gin.Context) {
	result, err := h.approvalService.Approve(c.Request.Context(), c.Param("id"), callerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// RejectRequest rejects a pending request
func (h *RequestHandler) RejectRequest(c *gin.Context) {
	result, err := h.approvalService.Reject(c.Request.Context(), c.Param("id"), callerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CancelRequest cancels the caller's own still-pending request
func (h *RequestHandler) CancelRequest(c *gin.Context) {
	if err := h.approvalService.Cancel(c.Request.Context(), c.Param("id"), callerEmail(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// callerEmail pulls the authenticated account email set by RequireRole.
func callerEmail(c *gin.Context) string {
	email, _ := c.Get("userEmail")
	emailStr, _ := email.(string)
	return emailStr
}
