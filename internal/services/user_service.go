package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Dias221467/Tenvin_Social/internal/cache"
	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/Dias221467/Tenvin_Social/internal/repository"
	jwtutil "github.com/Dias221467/Tenvin_Social/pkg/jwt"
	"github.com/sirupsen/logrus"
)

// maxUsernameAttempts bounds the suffixes EnsureUser tries for a taken name.
const maxUsernameAttempts = 20

// UserService handles profiles and user search.
type UserService struct {
	repo        repository.UserStore
	searchCache *cache.SearchCache
	minChars    int
	maxResults  int
}

// NewUserService creates a new UserService. searchCache may be nil.
func NewUserService(repo repository.UserStore, searchCache *cache.SearchCache, minChars, maxResults int) *UserService {
	return &UserService{
		repo:        repo,
		searchCache: searchCache,
		minChars:    minChars,
		maxResults:  maxResults,
	}
}

// EnsureUser returns the user for the token subject, creating it on first
// sign-in. created reports whether a new document was written.
func (s *UserService) EnsureUser(ctx context.Context, claims *jwtutil.Claims) (user *models.User, created bool, err error) {
	if claims == nil || claims.UserID == "" {
		return nil, false, models.ErrInvalidInput
	}

	existing, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load user: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	base := strings.TrimSpace(claims.Username)
	if base == "" {
		base, _, _ = strings.Cut(claims.Email, "@")
	}
	if base == "" {
		return nil, false, fmt.Errorf("%w: username is required", models.ErrInvalidInput)
	}

	// Usernames are unique ignoring case; a taken one gets a numeric suffix.
	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		user = &models.User{
			ID:           claims.UserID,
			Username:     models.UsernameCandidate(base, attempt),
			Email:        claims.Email,
			WinesTasted:  []string{},
			PrivacyLevel: models.PrivacyPublic,
		}
		if claims.Picture != "" {
			picture := claims.Picture
			user.ProfileImageURL = &picture
		}

		err := s.repo.CreateUser(ctx, user)
		switch {
		case err == nil:
			s.searchCache.Invalidate(ctx)
			return user, true, nil
		case errors.Is(err, models.ErrUsernameTaken):
			continue
		case errors.Is(err, models.ErrAlreadyExists):
			// Lost a race with a concurrent first sign-in.
			existing, err := s.GetUser(ctx, claims.UserID)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		default:
			return nil, false, err
		}
	}

	logrus.WithFields(logrus.Fields{
		"userID":   claims.UserID,
		"username": base,
	}).Warn("No free username left for new user")
	return nil, false, fmt.Errorf("%w: %q", models.ErrUsernameTaken, base)
}

// GetUser fetches a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		logrus.WithField("userID", id).Warn("User not found")
		return nil, models.ErrUserNotFound
	}
	return user, nil
}

// GetUsersByIDs resolves ids concurrently. Unknown ids are skipped and the
// input order is kept.
func (s *UserService) GetUsersByIDs(ctx context.Context, ids []string) []models.PublicUser {
	users := fetchAll(ctx, dedupe(ids), s.repo.GetUserByID)
	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out
}

// UpdateProfile applies the non-nil fields of input.
func (s *UserService) UpdateProfile(ctx context.Context, id string, input *models.UpdateProfileInput) (*models.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, fmt.Errorf("%w: username cannot be blank", models.ErrInvalidInput)
		}
		fields["username"] = username
	}
	if input.ProfileImageURL != nil {
		fields["profile_image_url"] = *input.ProfileImageURL
	}
	if input.PrivacyLevel != nil {
		fields["privacy_level"] = *input.PrivacyLevel
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateUserFields(ctx, id, fields); err != nil {
			if errors.Is(err, models.ErrUsernameTaken) {
				return nil, fmt.Errorf("%w: %q", err, fields["username"])
			}
			return nil, err
		}
		if _, renamed := fields["username"]; renamed {
			s.searchCache.Invalidate(ctx)
		}
	}
	return s.GetUser(ctx, id)
}

// SearchUsers runs a case-insensitive prefix search on usernames and leaves
// out viewerID. Short queries and read failures return an empty result.
func (s *UserService) SearchUsers(ctx context.Context, viewerID, query string, limit int) []models.PublicUser {
	q := models.NormalizeUsername(query)
	if utf8.RuneCountInString(q) < s.minChars {
		return []models.PublicUser{}
	}
	if limit <= 0 || limit > s.maxResults {
		limit = s.maxResults
	}

	// One extra row so that dropping the viewer still fills the page.
	candidates, gen, ok := s.searchCache.Get(ctx, q, limit+1)
	if !ok {
		users, err := s.repo.SearchByUsernamePrefix(ctx, q, limit+1)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"query": q,
				"error": err,
			}).Warn("User search failed, returning no results")
			return []models.PublicUser{}
		}
		candidates = make([]models.PublicUser, 0, len(users))
		for i := range users {
			candidates = append(candidates, users[i].Public())
		}
		s.searchCache.Set(ctx, gen, q, limit+1, candidates)
	}

	out := make([]models.PublicUser, 0, limit)
	for _, u := range candidates {
		if u.ID == viewerID {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, u)
	}
	return out
}
