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

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/api/payments", middleware.RequireRole(model.RoleHR))
	{
		payments.POST("", h.CreatePaymentIntent)
		payments.POST("/:id/complete", h.CompletePayment)
		payments.GET("", h.ListPayments)
	}
}

// CreatePaymentIntent creates a payment for a member package
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	var req service.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "BadRequest", "Invalid request payload: "+err.Error()))
		return
	}

	payment, err := h.paymentService.CreatePaymentIntent(c.Request.Context(), callerEmail(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, payment))
}

// CompletePayment records a successful charge and raises the member limit
func (h *PaymentHandler) CompletePayment(c *gin.Context) {
	var req service.CompletePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "BadRequest", "Invalid request payload: "+err.Error()))
		return
	}

	payment, err := h.paymentService.CompletePayment(c.Request.Context(), callerEmail(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// ListPayments returns the calling HR account's payment history
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	page := pagination.Parse(c)

	payments, total, err := h.paymentService.ListPayments(c.Request.Context(), callerEmail(c), page.Page, page.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page.Wrap(payments, total))
}
