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

type AssetHandler struct {
	assetService service.AssetService
}

func NewAssetHandler(assetService service.AssetService) *AssetHandler {
	return &AssetHandler{assetService: assetService}
}

func (h *AssetHandler) RegisterRoutes(router *gin.RouterGroup) {
	assets := router.Group("/api/assets")
	{
		assets.POST("", middleware.RequireRole(model.RoleHR), h.CreateAsset)
		assets.GET("", middleware.RequireRole(model.RoleHR), h.ListAssets)
		assets.GET("/:id", middleware.RequireRole(model.RoleHR, model.RoleEmployee, model.RoleUnaffiliated), h.GetAsset)
		assets.PUT("/:id", middleware.RequireRole(model.RoleHR), h.UpdateAsset)
		assets.DELETE("/:id", middleware.RequireRole(model.RoleHR), h.DeleteAsset)
		assets.GET("/:id/movements", middleware.RequireRole(model.RoleHR), h.ListMovements)
	}
}

// CreateAsset adds an inventory item owned by the calling HR account
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	var req service.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "BadRequest", "Invalid request payload: "+err.Error()))
		return
	}

	asset, err := h.assetService.CreateAsset(c.Request.Context(), callerEmail(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, asset))
}

// ListAssets returns the calling HR account's inventory with search and type filters
func (h *AssetHandler) ListAssets(c *gin.Context) {
	page := pagination.Parse(c)
	filter := service.AssetFilter{
		Search:      c.Query("search"),
		ProductType: c.Query("type"),
		Page:        page.Page,
		Limit:       page.Limit,
	}

	assets, total, err := h.assetService.ListAssets(c.Request.Context(), callerEmail(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page.Wrap(assets, total))
}

// GetAsset returns a single inventory item
func (h *AssetHandler) GetAsset(c *gin.Context) {
	asset, err := h.assetService.GetAsset(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, asset))
}

// UpdateAsset changes non-quantity fields of an owned item
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	var req service.UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "BadRequest", "Invalid request payload: "+err.Error()))
		return
	}

	asset, err := h.assetService.UpdateAsset(c.Request.Context(), callerEmail(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, asset))
}

// DeleteAsset removes an owned item
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	if err := h.assetService.DeleteAsset(c.Request.Context(), callerEmail(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// ListMovements returns the stock ledger for an item
func (h *AssetHandler) ListMovements(c *gin.Context) {
	page := pagination.Parse(c)

	movements, total, err := h.assetService.ListMovements(c.Request.Context(), c.Param("id"), page.Page, page.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page.Wrap(movements, total))
}
