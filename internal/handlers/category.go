// internal/handlers/category.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/catalog-api/internal/i18n"
	"github.com/javajoker/catalog-api/internal/services"
	"github.com/javajoker/catalog-api/internal/utils"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
}

func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// GET /categories/
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	categories, err := h.categoryService.ListTree(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, categories)
}

// POST /categories/create
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req services.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), utils.GetIdentityFromContext(c), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.CreatedResponse(c, i18n.KeyCategoryCreated, category)
}

// PUT /categories/update?category_id=
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	categoryID, ok := queryID(c, "category_id")
	if !ok {
		return
	}

	var req services.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), utils.GetIdentityFromContext(c), categoryID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeyCategoryUpdated, category)
}

// DELETE /categories/delete?category_id=
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	categoryID, ok := queryID(c, "category_id")
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), utils.GetIdentityFromContext(c), categoryID); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeyCategoryDeleted, nil)
}
