package model

import (
	"errors"
	"strings"
	"time"
)

// Seller is a marketplace seller account. The verified flag is immutable after
// creation and feeds the moderation heuristic.
type Seller struct {
	ID         int64     `json:"id"          db:"id"`
	IsVerified bool      `json:"is_verified" db:"is_verified"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"`
}

// Listing is a marketplace ad. Immutable once created except for the one-way
// open -> closed transition. The seller's verified flag is denormalized onto
// the struct by the repository join so scoring has everything it needs.
type Listing struct {
	ID               int64     `json:"id"                 db:"id"`
	SellerID         int64     `json:"seller_id"          db:"seller_id"`
	Name             string    `json:"name"               db:"name"`
	Description      string    `json:"description"        db:"description"`
	Category         int       `json:"category"           db:"category"`
	ImagesQty        int       `json:"images_qty"         db:"images_qty"`
	IsClosed         bool      `json:"is_closed"          db:"is_closed"`
	SellerIsVerified bool      `json:"is_verified_seller" db:"is_verified_seller"`
	CreatedAt        time.Time `json:"created_at"         db:"created_at"`
}

// CreateListingRequest carries the fields needed to insert a new listing.
type CreateListingRequest struct {
	SellerID    int64  `json:"seller_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    int    `json:"category"`
	ImagesQty   int    `json:"images_qty"`
}

// Validate validates the CreateListingRequest fields.
func (r *CreateListingRequest) Validate() error {
	if r.SellerID <= 0 {
		return errors.New("seller_id must be positive")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(r.Description) == "" {
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
