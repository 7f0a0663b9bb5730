package models

import (
	"strconv"
	"strings"
	"time"
)

// PrivacyLevel is stored on the profile but not enforced by any read path.
type PrivacyLevel string

const (
	PrivacyPublic  PrivacyLevel = "public"
	PrivacyPrivate PrivacyLevel = "private"
	PrivacySecret  PrivacyLevel = "secret"
)

func (p PrivacyLevel) Valid() bool {
	switch p {
	case PrivacyPublic, PrivacyPrivate, PrivacySecret:
		return true
	}
	return false
}

// UserSchemaVersion is the document layout written by this service. Older
// documents are upgraded at read time by the repository.
const UserSchemaVersion = 2

// Counter names a denormalized follow counter on the user document.
type Counter string

const (
	FollowingCounter Counter = "following_count"
	FollowersCounter Counter = "followers_count"
)

// User represents a wine taster profile.
type User struct {
	ID              string       `bson:"_id" json:"id"`
	Username        string       `bson:"username" json:"username"`
	UsernameLower   string       `bson:"username_lower" json:"-"`
	Email           string       `bson:"email" json:"email"`
	ProfileImageURL *string      `bson:"profile_image_url,omitempty" json:"profile_image_url,omitempty"`
	WinesTasted     []string     `bson:"wines_tasted" json:"wines_tasted"`
	FollowingCount  int64        `bson:"following_count" json:"following_count"`
	FollowersCount  int64        `bson:"followers_count" json:"followers_count"`
	PrivacyLevel    PrivacyLevel `bson:"privacy_level" json:"privacy_level"`
	SchemaVersion   int          `bson:"schema_version" json:"-"`
	CreatedAt       time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `bson:"updated_at" json:"updated_at"`
}

// PublicUser is the projection returned by lists and search.
type PublicUser struct {
	ID              string  `json:"id"`
	Username        string  `json:"username"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:              u.ID,
		Username:        u.Username,
		ProfileImageURL: u.ProfileImageURL,
	}
}

// NormalizeUsername is the search key written next to every username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

const maxUsernameLength = 40

// UsernameCandidate returns base for attempt 0 and base with a numeric
// suffix ("anna2", "anna3", ...) after that, cut to the username limit.
func UsernameCandidate(base string, attempt int) string {
	base = strings.TrimSpace(base)
	suffix := ""
	if attempt > 0 {
		suffix = strconv.Itoa(attempt + 1)
	}
	runes := []rune(base)
	if keep := maxUsernameLength - len(suffix); len(runes) > keep {
		runes = runes[:keep]
	}
	return string(runes) + suffix
}

// UpdateProfileInput carries the editable profile fields. Nil means unchanged.
type UpdateProfileInput struct {
	Username        *string       `json:"username" validate:"omitempty,min=1,max=40"`
	ProfileImageURL *string       `json:"profile_image_url" validate:"omitempty,url"`
	PrivacyLevel    *PrivacyLevel `json:"privacy_level" validate:"omitempty,oneof=public private secret"`
}

func (in *UpdateProfileInput) Validate() error {
	return validateStruct(in)
}

// FollowStats reports follow counters. When Exact is set the values were
// counted from the ledger instead of read from the denormalized fields.
type FollowStats struct {
	UserID         string `json:"user_id"`
	FollowingCount int64  `json:"following_count"`
	FollowersCount int64  `json:"followers_count"`
	Exact          bool   `json:"exact"`
}
