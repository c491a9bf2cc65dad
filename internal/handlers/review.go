// internal/handlers/review.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/catalog-api/internal/i18n"
	"github.com/javajoker/catalog-api/internal/services"
	"github.com/javajoker/catalog-api/internal/utils"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// GET /reviews/
func (h *ReviewHandler) GetReviews(c *gin.Context) {
	listing, err := h.reviewService.ListAll(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, listing)
}

// GET /reviews/:product_slug
func (h *ReviewHandler) GetProductReviews(c *gin.Context) {
	listing, err := h.reviewService.ListByProduct(c.Request.Context(), c.Param("product_slug"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, listing)
}

// POST /reviews/create
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req services.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.reviewService.CreateReview(c.Request.Context(), utils.GetIdentityFromContext(c), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.CreatedResponse(c, i18n.KeyReviewCreated, result)
}

// DELETE /reviews/delete?rating_id=
func (h *ReviewHandler) DeleteRating(c *gin.Context) {
	ratingID, ok := queryID(c, "rating_id")
	if !ok {
		return
	}

	result, err := h.reviewService.DeleteRating(c.Request.Context(), utils.GetIdentityFromContext(c), ratingID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeyRatingDeleted, result)
}
