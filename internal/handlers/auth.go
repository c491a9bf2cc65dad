// internal/handlers/auth.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/catalog-api/internal/i18n"
	"github.com/javajoker/catalog-api/internal/services"
	"github.com/javajoker/catalog-api/internal/utils"
)

type AuthHandler struct {
	authService       *services.AuthService
	permissionService *services.PermissionService
}

func NewAuthHandler(authService *services.AuthService, permissionService *services.PermissionService) *AuthHandler {
	return &AuthHandler{
		authService:       authService,
		permissionService: permissionService,
	}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.CreatedResponse(c, i18n.KeySuccess, user)
}

// POST /auth/token
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, resp)
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), utils.GetTokenFromContext(c)); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeyAuthLogoutSuccess, nil)
}

// GET /auth/me
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, err := h.authService.CurrentUser(c.Request.Context(), utils.GetIdentityFromContext(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, user)
}

// PUT /permission/supplier?user_id=
func (h *AuthHandler) ToggleSupplier(c *gin.Context) {
	userID, ok := queryID(c, "user_id")
	if !ok {
		return
	}

	user, err := h.permissionService.ToggleSupplier(c.Request.Context(), utils.GetIdentityFromContext(c), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeyPermissionUpdated, user)
}
