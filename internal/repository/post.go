package repository

import (
	"context"
	"errors"
	"strings"

	"lumen/internal/cache"
	"lumen/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	GetByIDs(ctx context.Context, ids []uint, currentUserID uint) ([]*models.Post, error)
	GetByCreator(ctx context.Context, creatorID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	ListRecent(ctx context.Context, limit int, cursor uint, currentUserID uint) ([]*models.Post, error)
	Search(ctx context.Context, query string, limit int, currentUserID uint) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Create(post).Error
	if err == nil {
		cache.InvalidateRecentPosts(ctx)
	}
	return err
}

// GetByID serves anonymous reads cache-aside; viewer-specific reads carry a
// per-user liked flag and always hit the database.
func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	if currentUserID != 0 {
		return r.fetchByID(ctx, id, currentUserID)
	}

	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		fetched, err := r.fetchByID(ctx, id, currentUserID)
		if err != nil {
			return err
		}
		post = *fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	if post.Likes == nil {
		post.Likes = []uint{}
	}
	return &post, nil
}

func (r *postRepository) fetchByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	if err := r.attachLikerIDs(ctx, []*models.Post{&post}); err != nil {
		return nil, err
	}
	return &post, nil
}

// GetByIDs batch-fetches posts by id. Missing ids are silently skipped; the
// result order is unspecified and callers re-order as needed.
func (r *postRepository) GetByIDs(ctx context.Context, ids []uint, currentUserID uint) ([]*models.Post, error) {
	if len(ids) == 0 {
		return []*models.Post{}, nil
	}
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Where("posts.id IN ?", ids).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	if err := r.attachLikerIDs(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) GetByCreator(ctx context.Context, creatorID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	if err := r.attachLikerIDs(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListRecent returns posts newest-first using keyset pagination. cursor is the
// id of the last post of the previous page; zero means the first page. The
// anonymous first page is the hot read and is served cache-aside; cursor pages
// and viewer-specific reads go to the database.
func (r *postRepository) ListRecent(ctx context.Context, limit int, cursor uint, currentUserID uint) ([]*models.Post, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	if cursor != 0 || currentUserID != 0 {
		return r.fetchRecent(ctx, limit, cursor, currentUserID)
	}

	var posts []*models.Post
	err := cache.Aside(ctx, cache.RecentPostsKey(limit, cursor), &posts, cache.RecentPostsTTL, func() error {
		fetched, err := r.fetchRecent(ctx, limit, cursor, currentUserID)
		if err != nil {
			return err
		}
		posts = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		if p.Likes == nil {
			p.Likes = []uint{}
		}
	}
	return posts, nil
}

func (r *postRepository) fetchRecent(ctx context.Context, limit int, cursor uint, currentUserID uint) ([]*models.Post, error) {
	q := r.applyPostDetails(r.db.WithContext(ctx), currentUserID)
	if cursor != 0 {
		var after models.Post
		if err := r.db.WithContext(ctx).Select("id", "created_at").First(&after, cursor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []*models.Post{}, nil
			}
			return nil, err
		}
		q = q.Where("posts.created_at < ? OR (posts.created_at = ? AND posts.id < ?)",
			after.CreatedAt, after.CreatedAt, after.ID)
	}

	var posts []*models.Post
	err := q.Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	if err := r.attachLikerIDs(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Search(ctx context.Context, query string, limit int, currentUserID uint) ([]*models.Post, error) {
	if limit <= 0 {
		limit = 20
	}
	var posts []*models.Post
	like := "%" + strings.ToLower(query) + "%"
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Where("LOWER(caption) LIKE ?", like).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	if err := r.attachLikerIDs(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// applyPostDetails adds subqueries to fetch the like count and liked status in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

// attachLikerIDs populates the non-persisted Likes slice with liker user ids.
func (r *postRepository) attachLikerIDs(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	var likes []models.Like
	if err := r.db.WithContext(ctx).
		Where("post_id IN ?", ids).
		Order("created_at ASC").
		Find(&likes).Error; err != nil {
		return err
	}

	byPost := make(map[uint][]uint, len(posts))
	for _, l := range likes {
		byPost[l.PostID] = append(byPost[l.PostID], l.UserID)
	}
	for _, p := range posts {
		p.Likes = byPost[p.ID]
		if p.Likes == nil {
			p.Likes = []uint{}
		}
	}
	return nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID)
	cache.InvalidateRecentPosts(ctx)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id)
	cache.InvalidateRecentPosts(ctx)
	return nil
}

func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	// INSERT ... ON CONFLICT DO NOTHING makes the toggle atomic and prevents
	// duplicate key errors under concurrent requests.
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, post_id, created_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID,
	)
	if result.Error == nil {
		cache.InvalidatePost(ctx, postID)
	}
	return result.Error
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	// Hard delete the like record
	err := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{}).Error
	if err == nil {
		cache.InvalidatePost(ctx, postID)
	}
	return err
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
