package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"lumen/internal/models"
	"lumen/internal/observability"
	"lumen/internal/repository"
	"lumen/internal/storage"

	"go.opentelemetry.io/otel/attribute"
)

type PostService struct {
	postRepo repository.PostRepository
	saveRepo repository.SaveRepository
	blobs    storage.BlobStore
}

type CreatePostInput struct {
	Caption  string
	Location string
	Tags     string
	Filename string
	File     []byte
}

// UpdatePostInput carries the full new state of a post. Caption, Location and
// Tags replace the stored values outright, so an empty location or tag string
// clears the field.
type UpdatePostInput struct {
	PostID   uint
	Caption  string
	Location string
	Tags     string
	Filename string
	// File is optional; empty means the existing image is kept.
	File []byte
}

type DeletePostInput struct {
	PostID  uint
	ImageID string
}

func NewPostService(
	postRepo repository.PostRepository,
	saveRepo repository.SaveRepository,
	blobs storage.BlobStore,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		saveRepo: saveRepo,
		blobs:    blobs,
	}
}

// ParseTags turns a raw comma-separated tag string into a tag list. All
// whitespace is stripped first, so "art, photo" and "art,photo" are the same
// input. Empty segments are dropped; the result is never nil.
func ParseTags(raw string) []string {
	stripped := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, raw)

	tags := []string{}
	for _, t := range strings.Split(stripped, ",") {
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// CreatePost runs the create content workflow: upload the image, derive its
// preview URL, then persist the post document. A failure after the upload
// triggers a best-effort compensating delete of the uploaded blob.
func (s *PostService) CreatePost(ctx context.Context, session *models.Session, in CreatePostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "post.create")
	defer span.End()
	start := time.Now()

	if session == nil || session.User == nil {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	if strings.TrimSpace(in.Caption) == "" {
		return nil, models.NewInvalidArgumentError("Caption is required")
	}
	if len(in.File) == 0 {
		return nil, models.NewInvalidArgumentError("Image file is required")
	}

	imageID, err := s.blobs.Create(ctx, in.Filename, in.File)
	if err != nil {
		span.SetError(err)
		observability.ObserveWorkflow("post.create", "upload_failure", start)
		return nil, classifyUpload(err)
	}
	span.AddAttributes(attribute.String("blob.id", imageID))

	imageURL, err := s.blobs.ViewURL(ctx, imageID)
	if err != nil {
		span.SetError(err)
		compensateDelete(ctx, s.blobs, "post.create", imageID)
		observability.ObserveWorkflow("post.create", "upload_failure", start)
		return nil, classifyUpload(err)
	}

	post := &models.Post{
		Caption:         in.Caption,
		ImageURL:        imageURL,
		ImageID:         imageID,
		Location:        in.Location,
		Tags:            ParseTags(in.Tags),
		CreatorID:       session.User.ID,
		CreatorName:     session.User.Name,
		CreatorImageURL: session.User.ImageURL,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		span.SetError(err)
		compensateDelete(ctx, s.blobs, "post.create", imageID)
		observability.ObserveWorkflow("post.create", "persist_failure", start)
		return nil, classifyPersist(err)
	}

	observability.ObserveWorkflow("post.create", "ok", start)
	created, err := s.postRepo.GetByID(ctx, post.ID, session.User.ID)
	if err != nil {
		return nil, classify(err)
	}
	return created, nil
}

// UpdatePost mutates a post, optionally replacing its image. The new file is
// uploaded before the document is touched; the old file is deleted only after
// the document update is confirmed. A failed update deletes the new file and
// never the old one.
func (s *PostService) UpdatePost(ctx context.Context, session *models.Session, in UpdatePostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "post.update")
	defer span.End()
	start := time.Now()

	if session == nil || session.User == nil {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	if in.PostID == 0 {
		return nil, models.NewInvalidArgumentError("Post ID is required")
	}
	if strings.TrimSpace(in.Caption) == "" {
		return nil, models.NewInvalidArgumentError("Caption is required")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID, session.User.ID)
	if err != nil {
		span.SetError(err)
		return nil, classify(err)
	}
	if post.CreatorID != session.User.ID {
		return nil, models.NewUnauthorizedError("You can only update your own posts")
	}

	oldImageID := post.ImageID
	newImageID := ""

	if len(in.File) > 0 {
		newImageID, err = s.blobs.Create(ctx, in.Filename, in.File)
		if err != nil {
			span.SetError(err)
			observability.ObserveWorkflow("post.update", "upload_failure", start)
			return nil, classifyUpload(err)
		}

		newURL, err := s.blobs.ViewURL(ctx, newImageID)
		if err != nil {
			span.SetError(err)
			compensateDelete(ctx, s.blobs, "post.update", newImageID)
			observability.ObserveWorkflow("post.update", "upload_failure", start)
			return nil, classifyUpload(err)
		}
		post.ImageID = newImageID
		post.ImageURL = newURL
	}

	// Caption, location and tags are taken as-is; empty location or tags
	// clear the stored values.
	post.Caption = in.Caption
	post.Location = in.Location
	post.Tags = ParseTags(in.Tags)

	if err := s.postRepo.Update(ctx, post); err != nil {
		span.SetError(err)
		// Only the file that never made it into the document is rolled back.
		compensateDelete(ctx, s.blobs, "post.update", newImageID)
		observability.ObserveWorkflow("post.update", "persist_failure", start)
		return nil, classifyPersist(err)
	}

	if newImageID != "" && oldImageID != "" && oldImageID != newImageID {
		// Update confirmed; retire the replaced file exactly once.
		compensateDelete(ctx, s.blobs, "post.update.retire", oldImageID)
	}

	observability.ObserveWorkflow("post.update", "ok", start)
	updated, err := s.postRepo.GetByID(ctx, post.ID, session.User.ID)
	if err != nil {
		return nil, classify(err)
	}
	return updated, nil
}

// DeletePost removes a post document and then its image file. Both ids are
// required up front; nothing is called when either is missing.
func (s *PostService) DeletePost(ctx context.Context, session *models.Session, in DeletePostInput) error {
	span, ctx := observability.NewSpan(ctx, "post.delete")
	defer span.End()

	if session == nil || session.User == nil {
		return models.NewUnauthenticatedError("Authentication required")
	}
	if in.PostID == 0 || in.ImageID == "" {
		return models.NewInvalidArgumentError("Post ID and image ID are required")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID, session.User.ID)
	if err != nil {
		span.SetError(err)
		return classify(err)
	}
	if post.CreatorID != session.User.ID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, in.PostID); err != nil {
		span.SetError(err)
		return classifyPersist(err)
	}

	// Document gone; the file delete is cleanup and must not fail the call.
	compensateDelete(ctx, s.blobs, "post.delete", in.ImageID)
	return nil
}

func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, currentUserID)
	if err != nil {
		return nil, classify(err)
	}
	return post, nil
}

// GetRecentPosts returns the feed newest-first. cursor is the last post id of
// the previous page; zero fetches the first page.
func (s *PostService) GetRecentPosts(ctx context.Context, limit int, cursor uint, currentUserID uint) ([]*models.Post, error) {
	posts, err := s.postRepo.ListRecent(ctx, limit, cursor, currentUserID)
	if err != nil {
		return nil, classify(err)
	}
	return posts, nil
}

func (s *PostService) SearchPosts(ctx context.Context, query string, limit int, currentUserID uint) ([]*models.Post, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.NewInvalidArgumentError("Search query is required")
	}
	posts, err := s.postRepo.Search(ctx, query, limit, currentUserID)
	if err != nil {
		return nil, classify(err)
	}
	return posts, nil
}

func (s *PostService) GetUserPosts(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	posts, err := s.postRepo.GetByCreator(ctx, userID, limit, offset, currentUserID)
	if err != nil {
		return nil, classify(err)
	}
	return posts, nil
}

// ToggleLike flips the caller's like on a post and returns the fresh post.
func (s *PostService) ToggleLike(ctx context.Context, session *models.Session, postID uint) (*models.Post, error) {
	if session == nil || session.User == nil {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}

	isLiked, err := s.postRepo.IsLiked(ctx, session.User.ID, postID)
	if err != nil {
		return nil, classify(err)
	}

	if isLiked {
		err = s.postRepo.Unlike(ctx, session.User.ID, postID)
	} else {
		err = s.postRepo.Like(ctx, session.User.ID, postID)
	}
	if err != nil {
		return nil, classify(err)
	}

	post, err := s.postRepo.GetByID(ctx, postID, session.User.ID)
	if err != nil {
		return nil, classify(err)
	}
	return post, nil
}

// SavePost bookmarks a post for the caller. Saving the same post twice
// converges on the one existing record.
func (s *PostService) SavePost(ctx context.Context, session *models.Session, postID uint) (*models.Save, error) {
	if session == nil || session.User == nil {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	if postID == 0 {
		return nil, models.NewInvalidArgumentError("Post ID is required")
	}

	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, classify(err)
	}

	save, err := s.saveRepo.Upsert(ctx, session.User.ID, postID)
	if err != nil {
		return nil, classifyPersist(err)
	}
	return save, nil
}

// DeleteSavedPost removes one of the caller's save-records.
func (s *PostService) DeleteSavedPost(ctx context.Context, session *models.Session, saveID uint) error {
	if session == nil || session.User == nil {
		return models.NewUnauthenticatedError("Authentication required")
	}

	save, err := s.saveRepo.GetByID(ctx, saveID)
	if err != nil {
		return classify(err)
	}
	if save.UserID != session.User.ID {
		return models.NewUnauthorizedError("You can only remove your own saved posts")
	}

	if err := s.saveRepo.Delete(ctx, saveID); err != nil {
		return classifyPersist(err)
	}
	return nil
}

// GetSavedPosts aggregates the caller's bookmarks into posts, ordered by when
// each was saved (newest first). Saves whose post no longer exists are
// silently dropped.
func (s *PostService) GetSavedPosts(ctx context.Context, session *models.Session) ([]*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "post.saved_list")
	defer span.End()

	if session == nil || session.User == nil {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}

	saves, err := s.saveRepo.ListByUser(ctx, session.User.ID)
	if err != nil {
		span.SetError(err)
		return nil, classify(err)
	}

	// De-duplicate post ids and remember when each post was saved. With one
	// save per (user, post) duplicates cannot normally occur, but the
	// aggregation stays tolerant of them.
	savedAt := make(map[uint]time.Time, len(saves))
	ids := make([]uint, 0, len(saves))
	for _, save := range saves {
		if _, seen := savedAt[save.PostID]; seen {
			continue
		}
		savedAt[save.PostID] = save.CreatedAt
		ids = append(ids, save.PostID)
	}
	if len(ids) == 0 {
		return []*models.Post{}, nil
	}

	posts, err := s.postRepo.GetByIDs(ctx, ids, session.User.ID)
	if err != nil {
		span.SetError(err)
		return nil, classify(err)
	}

	// Posts missing a save timestamp sort as the epoch, i.e. last.
	sort.SliceStable(posts, func(i, j int) bool {
		return savedAt[posts[i].ID].After(savedAt[posts[j].ID])
	})
	return posts, nil
}
