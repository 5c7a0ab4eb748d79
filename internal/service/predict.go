package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/admarket/moderation/internal/core"
	"github.com/admarket/moderation/internal/domain/model"
)

// PredictRequest is a stateless prediction request carrying all features
// inline, no store lookup involved.
type PredictRequest struct {
	SellerID         int64  `json:"seller_id"`
	IsVerifiedSeller bool   `json:"is_verified_seller"`
	ItemID           int64  `json:"item_id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Category         int    `json:"category"`
	ImagesQty        int    `json:"images_qty"`
}

// Validate validates the PredictRequest fields.
func (r *PredictRequest) Validate() error {
	if r.SellerID <= 0 {
		return errors.New("seller_id must be positive")
	}
	if r.ItemID <= 0 {
		return errors.New("item_id must be positive")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if r.Description == "" {
		return errors.New("description is required")
	}
	if r.Category <= 0 {
		return errors.New("category must be positive")
	}
	if r.ImagesQty < 0 {
		return errors.New("images_qty must be >= 0")
	}
	return nil
}

// PredictServiceOptions groups dependencies for PredictService.
type PredictServiceOptions struct {
	Listings core.ListingRepository // Required for listing-based predictions
	Scorer   core.Scorer            // Required
	Cache    *core.ResultCache      // Optional: nil disables caching
	Logger   *slog.Logger           // Optional
}

// PredictService runs synchronous predictions, cache-aside keyed by the
// request's discriminating fields.
type PredictService struct {
	listings core.ListingRepository
	scorer   core.Scorer
	cache    *core.ResultCache
	logger   *slog.Logger
}

// NewPredictService constructs a new PredictService.
func NewPredictService(opts PredictServiceOptions) (*PredictService, error) {
	if opts.Scorer == nil {
		return nil, errors.New("Scorer is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cache := opts.Cache
	if cache == nil {
		cache = core.NewResultCache(core.ResultCacheOptions{Logger: logger})
	}
	return &PredictService{
		listings: opts.Listings,
		scorer:   opts.Scorer,
		cache:    cache,
		logger:   logger.With("component", "predict_service"),
	}, nil
}

// Predict scores a stateless request. The cache key carries the description's
// length in code points, not its content, so equal-length descriptions share
// an entry.
func (p *PredictService) Predict(ctx context.Context, req *PredictRequest) (*model.Decision, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	descLen := utf8.RuneCountInString(req.Description)
	key := core.PredictKey(core.PredictKeyInput{
		SellerID:          req.SellerID,
		IsVerifiedSeller:  req.IsVerifiedSeller,
		ItemID:            req.ItemID,
		DescriptionLength: descLen,
		Category:          req.Category,
		ImagesQty:         req.ImagesQty,
	})

	var cached model.Decision
	if p.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	decision, err := p.scorer.Score(core.Features{
		IsVerifiedSeller:  req.IsVerifiedSeller,
		ImagesQty:         req.ImagesQty,
		DescriptionLength: descLen,
		Category:          req.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("score request: %w", err)
	}

	p.cache.SetJSON(ctx, key, decision)
	return &decision, nil
}

// PredictListing scores a stored listing, cache-aside under the listing's
// simple-predict key.
func (p *PredictService) PredictListing(ctx context.Context, itemID int64) (*model.Decision, error) {
	if p.listings == nil {
		return nil, core.ErrUnavailable
	}

	key := core.SimplePredictKey(itemID)
	var cached model.Decision
	if p.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	listing, err := p.listings.GetOpenByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	decision, err := p.scorer.Score(core.FeaturesFromListing(listing))
	if err != nil {
		return nil, fmt.Errorf("score listing: %w", err)
	}

	p.cache.SetJSON(ctx, key, decision)
	return &decision, nil
}
