package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/admarket/moderation/internal/core"
	"github.com/admarket/moderation/internal/data"
	"github.com/admarket/moderation/internal/domain/model"
	"github.com/admarket/moderation/internal/mocks"
)

func newPredictService(
	t *testing.T,
) (*PredictService, *mocks.MockListingRepository, *mocks.MockScorer, *mocks.MockCacheRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	listings := mocks.NewMockListingRepository(ctrl)
	scorer := mocks.NewMockScorer(ctrl)
	cacheRepo := mocks.NewMockCacheRepository(ctrl)
	svc, err := NewPredictService(PredictServiceOptions{
		Listings: listings,
		Scorer:   scorer,
		Cache:    core.NewResultCache(core.ResultCacheOptions{Repo: cacheRepo, Logger: slog.New(slog.DiscardHandler)}),
		Logger:   slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	return svc, listings, scorer, cacheRepo
}

func validPredictRequest() *PredictRequest {
	return &PredictRequest{
		SellerID:         3,
		IsVerifiedSeller: false,
		ItemID:           7,
		Name:             "vintage rug",
		Description:      "hand woven wool",
		Category:         12,
		ImagesQty:        2,
	}
}

func TestPredict_ScoresAndCachesOnMiss(t *testing.T) {
	svc, _, scorer, cacheRepo := newPredictService(t)

	req := validPredictRequest()
	wantKey := "predict:3:0:7:15:12:2"
	decision := model.Decision{IsViolation: false, Probability: 0.04}

	cacheRepo.EXPECT().Get(gomock.Any(), wantKey).Return(nil, nil)
	scorer.EXPECT().Score(core.Features{
		IsVerifiedSeller:  false,
		ImagesQty:         2,
		DescriptionLength: 15,
		Category:          12,
	}).Return(decision, nil)
	cacheRepo.EXPECT().Set(gomock.Any(), wantKey, gomock.Any(), core.DefaultCacheTTL).Return(nil)

	got, err := svc.Predict(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, decision, *got)
}

func TestPredict_MultibyteDescriptionMeasuredInCodePoints(t *testing.T) {
	svc, _, scorer, cacheRepo := newPredictService(t)

	req := validPredictRequest()
	req.Description = "привет мир" // 10 code points, 19 bytes
	wantKey := "predict:3:0:7:10:12:2"
	decision := model.Decision{IsViolation: false, Probability: 0.04}

	cacheRepo.EXPECT().Get(gomock.Any(), wantKey).Return(nil, nil)
	scorer.EXPECT().Score(core.Features{
		IsVerifiedSeller:  false,
		ImagesQty:         2,
		DescriptionLength: 10,
		Category:          12,
	}).Return(decision, nil)
	cacheRepo.EXPECT().Set(gomock.Any(), wantKey, gomock.Any(), core.DefaultCacheTTL).Return(nil)

	got, err := svc.Predict(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, decision, *got)
}

func TestPredict_CacheHitSkipsScorer(t *testing.T) {
	svc, _, _, cacheRepo := newPredictService(t)

	cached := model.Decision{IsViolation: true, Probability: 0.88}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)

	cacheRepo.EXPECT().Get(gomock.Any(), "predict:3:0:7:15:12:2").Return(raw, nil)

	got, err := svc.Predict(context.Background(), validPredictRequest())
	require.NoError(t, err)
	assert.Equal(t, cached, *got)
}

func TestPredict_ValidationErrors(t *testing.T) {
	svc, _, _, _ := newPredictService(t)

	tests := []struct {
		name    string
		mutate  func(*PredictRequest)
		wantErr string
	}{
		{"zero seller", func(r *PredictRequest) { r.SellerID = 0 }, "seller_id"},
		{"zero item", func(r *PredictRequest) { r.ItemID = 0 }, "item_id"},
		{"blank name", func(r *PredictRequest) { r.Name = "  " }, "name"},
		{"empty description", func(r *PredictRequest) { r.Description = "" }, "description"},
		{"zero category", func(r *PredictRequest) { r.Category = 0 }, "category"},
		{"negative images", func(r *PredictRequest) { r.ImagesQty = -1 }, "images_qty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validPredictRequest()
			tt.mutate(req)
			_, err := svc.Predict(context.Background(), req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPredictListing_ScoresOpenListing(t *testing.T) {
	svc, listings, scorer, cacheRepo := newPredictService(t)

	listing := &model.Listing{
		ID:               7,
		SellerID:         3,
		Description:      "hand woven wool",
		Category:         12,
		ImagesQty:        2,
		SellerIsVerified: true,
	}
	decision := model.Decision{IsViolation: false, Probability: 0.01}

	cacheRepo.EXPECT().Get(gomock.Any(), "simple_predict:7").Return(nil, nil)
	listings.EXPECT().GetOpenByID(gomock.Any(), int64(7)).Return(listing, nil)
	scorer.EXPECT().Score(core.FeaturesFromListing(listing)).Return(decision, nil)
	cacheRepo.EXPECT().Set(gomock.Any(), "simple_predict:7", gomock.Any(), core.DefaultCacheTTL).Return(nil)

	got, err := svc.PredictListing(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, decision, *got)
}

func TestPredictListing_NotFound(t *testing.T) {
	svc, listings, _, cacheRepo := newPredictService(t)

	cacheRepo.EXPECT().Get(gomock.Any(), "simple_predict:99").Return(nil, nil)
	listings.EXPECT().GetOpenByID(gomock.Any(), int64(99)).Return(nil, data.ErrListingNotFound)

	_, err := svc.PredictListing(context.Background(), 99)
	require.ErrorIs(t, err, data.ErrListingNotFound)
}

func TestPredictListing_NoListingStoreWired(t *testing.T) {
	ctrl := gomock.NewController(t)
	scorer := mocks.NewMockScorer(ctrl)
	svc, err := NewPredictService(PredictServiceOptions{
		Scorer: scorer,
		Logger: slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	_, err = svc.PredictListing(context.Background(), 7)
	require.ErrorIs(t, err, core.ErrUnavailable)
}
