package repository

import (
	"context"

	"lumen/internal/models"

	"gorm.io/gorm"
)

// SaveRepository defines persistence operations for save-records (bookmarks).
type SaveRepository interface {
	Upsert(ctx context.Context, userID, postID uint) (*models.Save, error)
	GetByID(ctx context.Context, id uint) (*models.Save, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Save, error)
	Delete(ctx context.Context, id uint) error
}

type saveRepository struct {
	db *gorm.DB
}

// NewSaveRepository creates a new save repository.
func NewSaveRepository(db *gorm.DB) SaveRepository {
	return &saveRepository{db: db}
}

// Upsert records the bookmark if it does not exist yet and returns the row
// either way. The unique (user_id, post_id) index makes concurrent saves
// converge on a single record instead of racing a check-then-create.
func (r *saveRepository) Upsert(ctx context.Context, userID, postID uint) (*models.Save, error) {
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO saves (user_id, post_id, created_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID,
	)
	if result.Error != nil {
		return nil, result.Error
	}

	var save models.Save
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&save).Error; err != nil {
		return nil, err
	}
	return &save, nil
}

func (r *saveRepository) GetByID(ctx context.Context, id uint) (*models.Save, error) {
	var save models.Save
	if err := r.db.WithContext(ctx).First(&save, id).Error; err != nil {
		return nil, err
	}
	return &save, nil
}

// ListByUser returns the user's save-records newest-first.
func (r *saveRepository) ListByUser(ctx context.Context, userID uint) ([]models.Save, error) {
	var saves []models.Save
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&saves).Error; err != nil {
		return nil, err
	}
	return saves, nil
}

func (r *saveRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Save{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
