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

type UserHandler struct {
	userService     service.UserService
	approvalService service.ApprovalService
}

// NewUserHandler sets up the routing dependencies for account endpoints
func NewUserHandler(userService service.UserService, approvalService service.ApprovalService) *UserHandler {
	return &UserHandler{userService: userService, approvalService: approvalService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public routes
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)

	// Me route (authenticated — any valid token)
	router.GET("/me", middleware.RequireRole(model.RoleHR, model.RoleEmployee, model.RoleUnaffiliated), h.GetMe)

	users := router.Group("/api/users")
	{
		users.GET("", middleware.RequireRole(model.RoleHR), h.ListUsers)
		users.GET("/my-employees", middleware.RequireRole(model.RoleHR), h.ListMyEmployees)
		users.GET("/:email", middleware.RequireRole(model.RoleHR, model.RoleEmployee, model.RoleUnaffiliated), h.GetUserByEmail)
		users.PUT("/profile", middleware.RequireRole(model.RoleHR, model.RoleEmployee, model.RoleUnaffiliated), h.UpdateProfile)
		users.PATCH("/:email/remove", middleware.RequireRole(model.RoleHR), h.RemoveEmployee)
	}
}

// Register creates a new account
// @Summary      Register account
// @Description  Creates an HR or employee account; employees start unaffiliated
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterUserRequest  true  "Registration payload"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Router       /register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "BadRequest", "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "BadRequest", err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// Login authenticates an account and returns a JWT token
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginUserRequest  true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      401      {object}  response.Response
// @Router       /login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "BadRequest", "Invalid request payload"))
		return
	}

	tokenRes, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Unauthorized", err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokenRes))
}

// GetMe returns the currently authenticated account
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.GetUserByEmail(c.Request.Context(), callerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// ListUsers returns accounts, optionally filtered by role
func (h *UserHandler) ListUsers(c *gin.Context) {
	page := pagination.Parse(c)

	users, total, err := h.userService.ListUsers(c.Request.Context(), c.Query("role"), page.Page, page.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page.Wrap(users, total))
}

// ListMyEmployees returns the employees affiliated with the calling HR account
func (h *UserHandler) ListMyEmployees(c *gin.Context) {
	employees, err := h.userService.ListMyEmployees(c.Request.Context(), callerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, employees))
}

// GetUserByEmail returns a specific account
func (h *UserHandler) GetUserByEmail(c *gin.Context) {
	user, err := h.userService.GetUserByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// UpdateProfile updates the caller's profile fields
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "BadRequest", "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), callerEmail(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

type removeEmployeeRequest struct {
	HrEmail string `json:"hr_email" binding:"required,email"`
}

// RemoveEmployee detaches an employee from the calling HR account
// @Summary      Remove employee
// @Description  Clears the employee's affiliation and decrements the HR head count
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        email    path      string                 true  "Employee email"
// @Param        payload  body      removeEmployeeRequest  true  "HR email"
// @Success      200      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/users/{email}/remove [patch]
func (h *UserHandler) RemoveEmployee(c *gin.Context) {
	var req removeEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "BadRequest", "Invalid request payload: "+err.Error()))
		return
	}

	actor := callerEmail(c)
	if req.HrEmail != actor {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Forbidden", "Cannot remove employees of another company"))
		return
	}

	if err := h.approvalService.RemoveEmployee(c.Request.Context(), c.Param("email"), req.HrEmail, actor); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"removed": true}))
}
