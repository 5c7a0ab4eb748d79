package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/admarket/moderation/internal/domain/model"
)

// ListingRepo provides database operations for listings.
type ListingRepo struct {
	DB *sql.DB
}

// NewListingRepo creates a new ListingRepo with the given database handle.
func NewListingRepo(db *sql.DB) *ListingRepo {
	return &ListingRepo{DB: db}
}

// GetOpenByID returns an open listing joined with the seller's verified flag.
// Closed or absent listings both map to ErrListingNotFound: a closed ad is
// gone as far as moderation is concerned.
func (r *ListingRepo) GetOpenByID(ctx context.Context, id int64) (*model.Listing, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT l.id, l.seller_id, l.name, l.description, l.category,
		       l.images_qty, l.is_closed, s.is_verified, l.created_at
		FROM listings l
		INNER JOIN sellers s ON l.seller_id = s.id
		WHERE l.id = $1 AND l.is_closed = FALSE`,
		id,
	)
	var l model.Listing
	if err := row.Scan(
		&l.ID,
		&l.SellerID,
		&l.Name,
		&l.Description,
		&l.Category,
		&l.ImagesQty,
		&l.IsClosed,
		&l.SellerIsVerified,
		&l.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return &l, nil
}

// Close flips the listing's closed flag. One-way: closing an already closed or
// absent listing returns ErrListingNotFound.
func (r *ListingRepo) Close(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE listings SET is_closed = TRUE
		WHERE id = $1 AND is_closed = FALSE`,
		id,
	)
	if err != nil {
		return fmt.Errorf("close listing: %w", err)
	}
	return requireRow(res, ErrListingNotFound)
}

// Create inserts a new open listing.
func (r *ListingRepo) Create(ctx context.Context, req *model.CreateListingRequest) (*model.Listing, error) {
	if req == nil {
		return nil, errors.New("create listing request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO listings (seller_id, name, description, category, images_qty)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_closed, created_at`,
		req.SellerID, req.Name, req.Description, req.Category, req.ImagesQty,
	)

	l := model.Listing{
		SellerID:    req.SellerID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		ImagesQty:   req.ImagesQty,
	}
	if err := row.Scan(&l.ID, &l.IsClosed, &l.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("insert listing: %w", err)
	}
	return &l, nil
}

// SellerRepo provides database operations for sellers.
type SellerRepo struct {
	DB *sql.DB
}

// NewSellerRepo creates a new SellerRepo with the given database handle.
func NewSellerRepo(db *sql.DB) *SellerRepo {
	return &SellerRepo{DB: db}
}

// GetByID returns the seller or ErrSellerNotFound.
func (r *SellerRepo) GetByID(ctx context.Context, id int64) (*model.Seller, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, is_verified, created_at FROM sellers WHERE id = $1`,
		id,
	)
	var s model.Seller
	if err := row.Scan(&s.ID, &s.IsVerified, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("get seller: %w", err)
	}
	return &s, nil
}

// Create inserts a new seller.
func (r *SellerRepo) Create(ctx context.Context, isVerified bool) (*model.Seller, error) {
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO sellers (is_verified) VALUES ($1)
		RETURNING id, is_verified, created_at`,
		isVerified,
	)
	var s model.Seller
	if err := row.Scan(&s.ID, &s.IsVerified, &s.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert seller: %w", err)
	}
	return &s, nil
}
