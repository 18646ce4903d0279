package service

import (
	"context"
	"strings"
	"time"

	"lumen/internal/models"
	"lumen/internal/observability"
	"lumen/internal/repository"
	"lumen/internal/storage"
)

type UserService struct {
	userRepo repository.UserRepository
	blobs    storage.BlobStore
}

type UpdateUserInput struct {
	Name     string
	Bio      string
	Filename string
	// File is optional; empty keeps the current avatar.
	File []byte
}

func NewUserService(userRepo repository.UserRepository, blobs storage.BlobStore) *UserService {
	return &UserService{userRepo: userRepo, blobs: blobs}
}

// GetUsers lists profiles newest-first.
func (s *UserService) GetUsers(ctx context.Context, limit int) ([]models.User, error) {
	users, err := s.userRepo.List(ctx, limit)
	if err != nil {
		return nil, classify(err)
	}
	return users, nil
}

// GetUserByID returns a profile with its most recent posts attached.
func (s *UserService) GetUserByID(ctx context.Context, id uint, postLimit int) (*models.User, error) {
	user, err := s.userRepo.GetByIDWithPosts(ctx, id, postLimit)
	if err != nil {
		return nil, classify(err)
	}
	return user, nil
}

// UpdateUser mutates the caller's own profile, optionally replacing the
// avatar image with the same upload-then-persist workflow posts use: new file
// first, document second, old file retired only after a confirmed update.
func (s *UserService) UpdateUser(ctx context.Context, session *models.Session, in UpdateUserInput) (*models.User, error) {
	span, ctx := observability.NewSpan(ctx, "user.update")
	defer span.End()
	start := time.Now()

	if session == nil || session.User == nil {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}

	user, err := s.userRepo.GetByID(ctx, session.User.ID)
	if err != nil {
		span.SetError(err)
		return nil, classify(err)
	}

	oldImageID := user.ImageID
	newImageID := ""

	if len(in.File) > 0 {
		newImageID, err = s.blobs.Create(ctx, in.Filename, in.File)
		if err != nil {
			span.SetError(err)
			observability.ObserveWorkflow("user.update", "upload_failure", start)
			return nil, classifyUpload(err)
		}

		newURL, err := s.blobs.ViewURL(ctx, newImageID)
		if err != nil {
			span.SetError(err)
			compensateDelete(ctx, s.blobs, "user.update", newImageID)
			observability.ObserveWorkflow("user.update", "upload_failure", start)
			return nil, classifyUpload(err)
		}
		user.ImageID = newImageID
		user.ImageURL = newURL
	}

	if strings.TrimSpace(in.Name) != "" {
		user.Name = in.Name
	}
	user.Bio = in.Bio

	if err := s.userRepo.Update(ctx, user); err != nil {
		span.SetError(err)
		compensateDelete(ctx, s.blobs, "user.update", newImageID)
		observability.ObserveWorkflow("user.update", "persist_failure", start)
		return nil, classifyPersist(err)
	}

	if newImageID != "" && oldImageID != "" && oldImageID != newImageID {
		compensateDelete(ctx, s.blobs, "user.update.retire", oldImageID)
	}

	observability.ObserveWorkflow("user.update", "ok", start)
	return user, nil
}
