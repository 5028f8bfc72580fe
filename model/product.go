package model

import "time"

// Product represents a purchasable, playable unit (beat or acapella).
// The track identifier used throughout the playlist core is Product.ID.
type Product struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	ArtistID     int64     `json:"artistId" gorm:"index"`
	Title        string    `json:"title"`
	ArtistName   string    `json:"artistName"`
	Category     string    `json:"category" gorm:"index"` // beat, acapella
	Genre        string    `json:"genre"`
	CoverURL     string    `json:"coverUrl"`
	PreviewKey   string    `json:"-"` // Object key of the preview audio in MinIO
	BPM          int       `json:"bpm"`
	IsPublic     bool      `json:"isPublic" gorm:"index"`
	Price        int64     `json:"price"`
	LikeCount    int64     `json:"likeCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName maps Product to the products table.
func (Product) TableName() string { return "products" }

// ProductLike records a user liking a product.
type ProductLike struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"userId" gorm:"index:idx_like_user"`
	ProductID int64     `json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName maps ProductLike to the product_likes table.
func (ProductLike) TableName() string { return "product_likes" }

// ArtistFollow records a user following an artist.
type ArtistFollow struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"userId" gorm:"index:idx_follow_user"`
	ArtistID  int64     `json:"artistId"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName maps ArtistFollow to the artist_follows table.
func (ArtistFollow) TableName() string { return "artist_follows" }

// CartItem is a product sitting in a user's cart.
type CartItem struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"userId" gorm:"index:idx_cart_user"`
	ProductID int64     `json:"productId"`
	LicenseID int64     `json:"licenseId"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName maps CartItem to the cart_items table.
func (CartItem) TableName() string { return "cart_items" }
