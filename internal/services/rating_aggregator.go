// internal/services/rating_aggregator.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/javajoker/catalog-api/internal/apperror"
	"github.com/javajoker/catalog-api/internal/i18n"
	"github.com/javajoker/catalog-api/internal/repository"
)

// RatingAggregator keeps Product.Rating equal to the mean grade of the
// product's active ratings. Recompute must run inside the transaction that
// changed the ratings, after the product row has been locked.
type RatingAggregator struct{}

func NewRatingAggregator() *RatingAggregator {
	return &RatingAggregator{}
}

func (a *RatingAggregator) Recompute(ctx context.Context, tx repository.ProductStore, productID uint) (float64, error) {
	rating, err := tx.RecomputeProductRating(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, apperror.NotFound(i18n.KeyProductNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("recompute rating for product %d: %w", productID, err)
	}
	return rating, nil
}
