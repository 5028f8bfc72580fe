package repository

import (
	"fmt"

	"hbcplayer/model"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// ProductRepository resolves products and the track-id lists behind each
// auto-playlist context. All id lists come back in a stable order and are
// capped by the limit argument.
type ProductRepository interface {
	GetProductByID(id int64) (*model.Product, error)
	MainTrackIDs(category string, limit int) ([]int64, error)
	SearchTrackIDs(query string, limit int) ([]int64, error)
	ArtistTrackIDs(artistID int64, publicOnly bool, limit int) ([]int64, error)
	FollowingTrackIDs(userID int64, limit int) ([]int64, error)
	LikedTrackIDs(userID int64, limit int) ([]int64, error)
	CartTrackIDs(userID int64, limit int) ([]int64, error)
	FilterExisting(ids []int64) ([]int64, error)
}

type gormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a ProductRepository backed by GORM.
func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &gormProductRepository{db: db}
}

// GetProductByID retrieves a product by its ID. Returns nil when the
// product does not exist.
func (r *gormProductRepository) GetProductByID(id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &product, nil
}

func (r *gormProductRepository) productIDs(q *gorm.DB, limit int) ([]int64, error) {
	var ids []int64
	if err := q.Limit(limit).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to query product ids: %w", err)
	}
	return ids, nil
}

// MainTrackIDs returns the main-feed id list, newest first, optionally
// filtered by category.
func (r *gormProductRepository) MainTrackIDs(category string, limit int) ([]int64, error) {
	q := r.db.Model(&model.Product{}).Where("is_public = ?", true).Order("created_at DESC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	return r.productIDs(q, limit)
}

// SearchTrackIDs returns ids of public products matching the query on
// title or artist name.
func (r *gormProductRepository) SearchTrackIDs(query string, limit int) ([]int64, error) {
	pattern := "%" + query + "%"
	q := r.db.Model(&model.Product{}).
		Where("is_public = ?", true).
		Where("title LIKE ? OR artist_name LIKE ?", pattern, pattern).
		Order("like_count DESC, created_at DESC")
	return r.productIDs(q, limit)
}

// ArtistTrackIDs returns an artist's product ids, newest first.
func (r *gormProductRepository) ArtistTrackIDs(artistID int64, publicOnly bool, limit int) ([]int64, error) {
	q := r.db.Model(&model.Product{}).Where("artist_id = ?", artistID).Order("created_at DESC")
	if publicOnly {
		q = q.Where("is_public = ?", true)
	}
	return r.productIDs(q, limit)
}

// FollowingTrackIDs returns ids of public products by artists the user
// follows, newest first.
func (r *gormProductRepository) FollowingTrackIDs(userID int64, limit int) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.Product{}).
		Joins("JOIN artist_follows ON artist_follows.artist_id = products.artist_id").
		Where("artist_follows.user_id = ? AND products.is_public = ?", userID, true).
		Order("products.created_at DESC").
		Limit(limit).
		Pluck("products.id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query following ids for user %d: %w", userID, err)
	}
	return ids, nil
}

// LikedTrackIDs returns ids of products the user liked, most recently
// liked first.
func (r *gormProductRepository) LikedTrackIDs(userID int64, limit int) ([]int64, error) {
	var likes []model.ProductLike
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&likes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query likes for user %d: %w", userID, err)
	}
	return lo.Map(likes, func(l model.ProductLike, _ int) int64 { return l.ProductID }), nil
}

// CartTrackIDs returns ids of products in the user's cart, in insertion
// order.
func (r *gormProductRepository) CartTrackIDs(userID int64, limit int) ([]int64, error) {
	var items []model.CartItem
	err := r.db.Where("user_id = ?", userID).
		Order("created_at ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query cart for user %d: %w", userID, err)
	}
	return lo.Map(items, func(i model.CartItem, _ int) int64 { return i.ProductID }), nil
}

// FilterExisting drops ids that do not reference an existing product,
// preserving the input order. Used by the manual-playlist endpoint.
func (r *gormProductRepository) FilterExisting(ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var existing []int64
	err := r.db.Model(&model.Product{}).
		Where("id IN ?", lo.Uniq(ids)).
		Pluck("id", &existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to filter product ids: %w", err)
	}

	known := lo.SliceToMap(existing, func(id int64) (int64, struct{}) { return id, struct{}{} })
	return lo.Filter(ids, func(id int64, _ int) bool {
		_, ok := known[id]
		return ok
	}), nil
}
