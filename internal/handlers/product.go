// internal/handlers/product.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/catalog-api/internal/i18n"
	"github.com/javajoker/catalog-api/internal/services"
	"github.com/javajoker/catalog-api/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
	storageService *services.StorageService
}

func NewProductHandler(productService *services.ProductService, storageService *services.StorageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		storageService: storageService,
	}
}

// GET /products/
func (h *ProductHandler) GetProducts(c *gin.Context) {
	products, err := h.productService.ListAvailable(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, products)
}

// GET /products/:category_slug
func (h *ProductHandler) GetProductsByCategory(c *gin.Context) {
	products, err := h.productService.ListByCategory(c.Request.Context(), c.Param("category_slug"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, products)
}

// GET /products/detail/:product_slug
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetBySlug(c.Request.Context(), c.Param("product_slug"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, product)
}

// POST /products/create
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), utils.GetIdentityFromContext(c), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.CreatedResponse(c, i18n.KeyProductCreated, product)
}

// PUT /products/detail/:product_slug
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req services.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), utils.GetIdentityFromContext(c), c.Param("product_slug"), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeyProductUpdated, product)
}

// DELETE /products/delete?product_id=
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	productID, ok := queryID(c, "product_id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), utils.GetIdentityFromContext(c), productID); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeyProductDeleted, nil)
}

// POST /products/images
func (h *ProductHandler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyImageInvalid), nil)
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadProductImage(c.Request.Context(), utils.GetIdentityFromContext(c), file, header)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.CreatedResponse(c, i18n.KeySuccess, result)
}
