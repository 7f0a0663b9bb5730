package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrSelfFollow           = errors.New("cannot follow yourself")
	ErrUserNotFound         = errors.New("user not found")
	ErrWineNotFound         = errors.New("wine not found")
	ErrPostNotFound         = errors.New("post not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrForbidden            = errors.New("forbidden")
	ErrAlreadyExists        = errors.New("already exists")

	// ErrUsernameTaken is a unique-key conflict on the normalized username.
	// It matches ErrAlreadyExists as well.
	ErrUsernameTaken = fmt.Errorf("username %w", ErrAlreadyExists)
)
