package repository

import (
	"testing"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestMigrateUserDoc_LegacyLayout(t *testing.T) {
	doc := &userDocument{
		User: models.User{
			ID:            "u1",
			Username:      "Sommelier",
			SchemaVersion: 1,
		},
		LegacyFollowing: []string{"u2", "u3"},
		LegacyFollowers: []string{"u4"},
		LegacyWishlist:  []string{"w1"},
	}

	migrated := migrateUserDoc(doc)

	assert.Equal(t, models.UserSchemaVersion, migrated.User.SchemaVersion)
	assert.Equal(t, int64(2), migrated.User.FollowingCount)
	assert.Equal(t, int64(1), migrated.User.FollowersCount)
	assert.Equal(t, "sommelier", migrated.User.UsernameLower)
	assert.Equal(t, models.PrivacyPublic, migrated.User.PrivacyLevel)
	assert.NotNil(t, migrated.User.WinesTasted)
	assert.Equal(t, []string{"u2", "u3"}, migrated.LegacyFollowing)
	assert.Equal(t, []string{"w1"}, migrated.LegacyWishlist)
}

func TestMigrateUserDoc_CurrentLayoutKeepsCounters(t *testing.T) {
	doc := &userDocument{
		User: models.User{
			ID:             "u1",
			Username:       "alice",
			UsernameLower:  "alice",
			FollowingCount: 7,
			FollowersCount: 3,
			SchemaVersion:  models.UserSchemaVersion,
			PrivacyLevel:   models.PrivacyPublic,
		},
		LegacyFollowing: []string{"stale"},
	}

	migrated := migrateUserDoc(doc)

	assert.Equal(t, int64(7), migrated.User.FollowingCount)
	assert.Equal(t, int64(3), migrated.User.FollowersCount)
}
