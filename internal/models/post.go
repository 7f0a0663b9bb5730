package models

import "time"

// FeedPost is created together with its wine. The author fields are a
// snapshot taken at post time.
type FeedPost struct {
	ID                  string    `bson:"_id" json:"id"`
	WineID              string    `bson:"wine_id" json:"wine_id"`
	UserID              string    `bson:"user_id" json:"user_id"`
	Username            string    `bson:"username" json:"username"`
	UserProfileImageURL *string   `bson:"user_profile_image_url,omitempty" json:"user_profile_image_url,omitempty"`
	PostedDate          time.Time `bson:"posted_date" json:"posted_date"`
	Likes               []string  `bson:"likes" json:"likes"`
	Comments            []Comment `bson:"comments" json:"comments"`
}

func (p *FeedPost) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

type Comment struct {
	ID       string    `bson:"id" json:"id"`
	UserID   string    `bson:"user_id" json:"user_id"`
	Username string    `bson:"username" json:"username"`
	Text     string    `bson:"text" json:"text"`
	Date     time.Time `bson:"date" json:"date"`
}

type AddCommentInput struct {
	Text string `json:"text" validate:"required,max=1000"`
}

func (in *AddCommentInput) Validate() error {
	return validateStruct(in)
}

// FeedResponse bundles the posts with the wines they reference.
type FeedResponse struct {
	Posts []FeedPost `json:"posts"`
	Wines []Wine     `json:"wines"`
}
