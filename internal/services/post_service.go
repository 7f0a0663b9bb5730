package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/repository"
	"github.com/google/uuid"
)

type PostService struct {
	posts    repository.PostStore
	users    repository.UserStore
	notifier Notifier
}

func NewPostService(posts repository.PostStore, users repository.UserStore, notifier Notifier) *PostService {
	return &PostService{
		posts:    posts,
		users:    users,
		notifier: notifier,
	}
}

func (s *PostService) getPost(ctx context.Context, postID string) (*models.FeedPost, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil {
		return nil, models.ErrPostNotFound
	}
	return post, nil
}

// ToggleLike flips userID's like on the post and returns the new state.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	if userID == "" {
		return false, models.ErrInvalidInput
	}
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return false, err
	}

	if post.LikedBy(userID) {
		if _, err := s.posts.RemoveLike(ctx, postID, userID); err != nil {
			return true, err
		}
		return false, nil
	}

	added, err := s.posts.AddLike(ctx, postID, userID)
	if err != nil {
		return false, err
	}
	if added && s.notifier != nil {
		s.notifier.Notify(ctx, post.UserID, models.NotificationPostLiked, userID, postID, "Someone liked your tasting")
	}
	return true, nil
}

// AddComment appends a comment carrying a snapshot of the author's name.
func (s *PostService) AddComment(ctx context.Context, postID, userID string, input *models.AddCommentInput) (*models.Comment, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	author, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment author: %w", err)
	}
	if author == nil {
		return nil, models.ErrUserNotFound
	}

	comment := models.Comment{
		ID:       uuid.NewString(),
		UserID:   userID,
		Username: author.Username,
		Text:     input.Text,
		Date:     time.Now().UTC(),
	}
	ok, err := s.posts.AppendComment(ctx, postID, comment)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrPostNotFound
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, post.UserID, models.NotificationPostCommented, userID, postID, "New comment on your tasting")
	}
	return &comment, nil
}
