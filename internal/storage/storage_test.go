package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWinePhotoPath(t *testing.T) {
	assert.Equal(t, "wines/abc/photo.jpg", WinePhotoPath("abc"))
}

func TestNoopImageStore(t *testing.T) {
	url, err := NoopImageStore{}.Upload(context.Background(), "wines/abc/photo.jpg", "image/jpeg", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrStorageDisabled)
	assert.Empty(t, url)
}
