package models

import "time"

// WishlistEntry is keyed by (user, wine); RecommendedBy is set when another
// user pushed the wine into this wishlist.
type WishlistEntry struct {
	ID            string    `bson:"_id" json:"id"`
	UserID        string    `bson:"user_id" json:"user_id"`
	WineID        string    `bson:"wine_id" json:"wine_id"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	RecommendedBy *string   `bson:"recommended_by,omitempty" json:"recommended_by,omitempty"`
}

func WishlistKey(userID, wineID string) string {
	return compositeKey(userID, wineID)
}
