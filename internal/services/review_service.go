// internal/services/review_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/catalog-api/internal/apperror"
	"github.com/javajoker/catalog-api/internal/events"
	"github.com/javajoker/catalog-api/internal/i18n"
	"github.com/javajoker/catalog-api/internal/models"
	"github.com/javajoker/catalog-api/internal/repository"
	"github.com/javajoker/catalog-api/internal/utils"
)

// ReviewService owns the review/rating pair: both rows are written, or
// deactivated, in one transaction together with the product's rating.
type ReviewService struct {
	store      repository.Store
	authz      *AuthorizationService
	aggregator *RatingAggregator
	publisher  events.Publisher
}

type CreateReviewRequest struct {
	Grade     int    `json:"grade" validate:"required,min=1,max=5"`
	ProductID uint   `json:"product_id" validate:"required"`
	Comment   string `json:"comment" validate:"max=5000"`
}

type CreateReviewResult struct {
	Review        *models.Review `json:"review"`
	Rating        *models.Rating `json:"rating"`
	ProductRating float64        `json:"product_rating"`
}

type DeleteRatingResult struct {
	Rating        *models.Rating `json:"rating"`
	ReviewID      *uint          `json:"review_id,omitempty"`
	ProductRating float64        `json:"product_rating"`
}

type ReviewListing struct {
	Reviews []models.Review `json:"reviews"`
	Ratings []models.Rating `json:"ratings"`
}

type ProductReviews struct {
	Product *models.Product `json:"product"`
	Reviews []models.Review `json:"reviews"`
	Ratings []models.Rating `json:"rating"`
}

func NewReviewService(store repository.Store, authz *AuthorizationService, aggregator *RatingAggregator, publisher events.Publisher) *ReviewService {
	return &ReviewService{
		store:      store,
		authz:      authz,
		aggregator: aggregator,
		publisher:  publisher,
	}
}

// CreateReview inserts the rating, then the review pointing at it, then
// recomputes the product rating. The product is not checked up front: a
// missing product fails the rating insert on its foreign key.
func (s *ReviewService) CreateReview(ctx context.Context, identity *models.Identity, req *CreateReviewRequest) (*CreateReviewResult, error) {
	if err := s.authz.Authorize(identity, ActionCreateReview, nil); err != nil {
		return nil, err
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperror.Invalid(i18n.KeyValidationInvalid, err)
	}

	result := &CreateReviewResult{}
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := tx.LockProduct(ctx, req.ProductID); err != nil {
			return fmt.Errorf("lock product %d: %w", req.ProductID, err)
		}

		rating := &models.Rating{
			Grade:     req.Grade,
			UserID:    identity.UserID,
			ProductID: req.ProductID,
			IsActive:  true,
		}
		if err := tx.CreateRating(ctx, rating); err != nil {
			return err
		}

		review := &models.Review{
			UserID:    identity.UserID,
			ProductID: rating.ProductID,
			RatingID:  rating.ID,
			Comment:   req.Comment,
			IsActive:  true,
		}
		if err := tx.CreateReview(ctx, review); err != nil {
			return err
		}

		productRating, err := s.aggregator.Recompute(ctx, tx, rating.ProductID)
		if err != nil {
			return err
		}

		result.Review = review
		result.Rating = rating
		result.ProductRating = productRating
		return nil
	})
	if errors.Is(err, repository.ErrForeignKeyViolation) {
		return nil, apperror.Unprocessable(i18n.KeyReviewInvalidProduct, err)
	}
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id": utils.RequestIDFromContext(ctx),
		"product_id": result.Rating.ProductID,
		"rating_id":  result.Rating.ID,
		"review_id":  result.Review.ID,
		"rating":     result.ProductRating,
	}).Info("review created")

	publish(ctx, s.publisher, events.TypeReviewCreated, productKey(result.Rating.ProductID), result)
	return result, nil
}

// DeleteRating deactivates the rating and its paired review, if any. A
// rating without a review is deactivated all the same.
func (s *ReviewService) DeleteRating(ctx context.Context, identity *models.Identity, ratingID uint) (*DeleteRatingResult, error) {
	if err := s.authz.Authorize(identity, ActionDeleteRating, nil); err != nil {
		return nil, err
	}

	result := &DeleteRatingResult{}
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		rating, err := tx.GetRatingByID(ctx, ratingID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound(i18n.KeyRatingNotFound)
		}
		if err != nil {
			return err
		}

		if _, err := tx.LockProduct(ctx, rating.ProductID); err != nil {
			return fmt.Errorf("lock product %d: %w", rating.ProductID, err)
		}

		if err := tx.DeactivateRating(ctx, rating.ID); err != nil {
			return err
		}
		rating.IsActive = false

		review, err := tx.GetReviewByRatingID(ctx, rating.ID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
		case err != nil:
			return err
		default:
			if err := tx.DeactivateReview(ctx, review.ID); err != nil {
				return err
			}
			result.ReviewID = &review.ID
		}

		productRating, err := s.aggregator.Recompute(ctx, tx, rating.ProductID)
		if err != nil {
			return err
		}

		result.Rating = rating
		result.ProductRating = productRating
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id": utils.RequestIDFromContext(ctx),
		"product_id": result.Rating.ProductID,
		"rating_id":  result.Rating.ID,
		"rating":     result.ProductRating,
	}).Info("rating deactivated")

	publish(ctx, s.publisher, events.TypeRatingDeleted, productKey(result.Rating.ProductID), result)
	return result, nil
}

// ListAll returns every review and rating, inactive ones included.
func (s *ReviewService) ListAll(ctx context.Context) (*ReviewListing, error) {
	reviews, err := s.store.ListReviews(ctx)
	if err != nil {
		return nil, err
	}
	ratings, err := s.store.ListRatings(ctx)
	if err != nil {
		return nil, err
	}

	return &ReviewListing{
		Reviews: nonNil(reviews),
		Ratings: nonNil(ratings),
	}, nil
}

func (s *ReviewService) ListByProduct(ctx context.Context, productSlug string) (*ProductReviews, error) {
	product, err := s.store.GetProductBySlug(ctx, productSlug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound(i18n.KeyProductNotFound)
	}
	if err != nil {
		return nil, err
	}

	reviews, err := s.store.ListReviewsByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, apperror.NotFound(i18n.KeyReviewNotFound)
	}

	ratings, err := s.store.ListRatingsByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	return &ProductReviews{
		Product: product,
		Reviews: reviews,
		Ratings: nonNil(ratings),
	}, nil
}

// nonNil keeps empty listings encoded as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
