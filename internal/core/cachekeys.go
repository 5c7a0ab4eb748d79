package core

import (
	"fmt"
)

// Cache key derivation. Keys are deterministic so repeated requests with
// identical discriminating fields hit the same entry.
//
// PredictKey hashes the description length, not its content: two requests with
// different descriptions of equal length collide to the same key. This matches
// the scorer, which also only sees the length.

// PredictKeyInput holds the discriminating fields of a stateless prediction
// request.
type PredictKeyInput struct {
	SellerID          int64
	IsVerifiedSeller  bool
	ItemID            int64
	DescriptionLength int
	Category          int
	ImagesQty         int
}

// PredictKey returns the cache key for a stateless prediction request.
func PredictKey(in PredictKeyInput) string {
	verified := 0
	if in.IsVerifiedSeller {
		verified = 1
	}
	return fmt.Sprintf("predict:%d:%d:%d:%d:%d:%d",
		in.SellerID, verified, in.ItemID, in.DescriptionLength, in.Category, in.ImagesQty)
}

// SimplePredictKey returns the cache key for a listing-based prediction.
func SimplePredictKey(itemID int64) string {
	return fmt.Sprintf("simple_predict:%d", itemID)
}

// TaskResultKey returns the cache key for a terminal task result.
func TaskResultKey(taskID int64) string {
	return fmt.Sprintf("moderation_result:%d", taskID)
}
