package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"lumen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn       func(context.Context, *models.Post) error
	getByIDFn      func(context.Context, uint, uint) (*models.Post, error)
	getByIDsFn     func(context.Context, []uint, uint) ([]*models.Post, error)
	getByCreatorFn func(context.Context, uint, int, int, uint) ([]*models.Post, error)
	listRecentFn   func(context.Context, int, uint, uint) ([]*models.Post, error)
	searchFn       func(context.Context, string, int, uint) ([]*models.Post, error)
	updateFn       func(context.Context, *models.Post) error
	deleteFn       func(context.Context, uint) error
	likeFn         func(context.Context, uint, uint) error
	unlikeFn       func(context.Context, uint, uint) error
	isLikedFn      func(context.Context, uint, uint) (bool, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) GetByIDs(ctx context.Context, ids []uint, currentUserID uint) ([]*models.Post, error) {
	return s.getByIDsFn(ctx, ids, currentUserID)
}
func (s *postRepoStub) GetByCreator(ctx context.Context, creatorID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.getByCreatorFn(ctx, creatorID, limit, offset, currentUserID)
}
func (s *postRepoStub) ListRecent(ctx context.Context, limit int, cursor uint, currentUserID uint) ([]*models.Post, error) {
	return s.listRecentFn(ctx, limit, cursor, currentUserID)
}
func (s *postRepoStub) Search(ctx context.Context, query string, limit int, currentUserID uint) ([]*models.Post, error) {
	return s.searchFn(ctx, query, limit, currentUserID)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		getByIDsFn: func(_ context.Context, _ []uint, _ uint) ([]*models.Post, error) {
			return []*models.Post{}, nil
		},
		getByCreatorFn: func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Post, error) { return nil, nil },
		listRecentFn:   func(_ context.Context, _ int, _, _ uint) ([]*models.Post, error) { return nil, nil },
		searchFn:       func(_ context.Context, _ string, _ int, _ uint) ([]*models.Post, error) { return nil, nil },
		updateFn:       func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
		likeFn:         func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn:       func(_ context.Context, _, _ uint) error { return nil },
		isLikedFn:      func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
	}
}

// saveRepoStub is a stub for repository.SaveRepository.
type saveRepoStub struct {
	upsertFn     func(context.Context, uint, uint) (*models.Save, error)
	getByIDFn    func(context.Context, uint) (*models.Save, error)
	listByUserFn func(context.Context, uint) ([]models.Save, error)
	deleteFn     func(context.Context, uint) error
}

func (s *saveRepoStub) Upsert(ctx context.Context, userID, postID uint) (*models.Save, error) {
	return s.upsertFn(ctx, userID, postID)
}
func (s *saveRepoStub) GetByID(ctx context.Context, id uint) (*models.Save, error) {
	return s.getByIDFn(ctx, id)
}
func (s *saveRepoStub) ListByUser(ctx context.Context, userID uint) ([]models.Save, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *saveRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopSaveRepo() *saveRepoStub {
	return &saveRepoStub{
		upsertFn: func(_ context.Context, userID, postID uint) (*models.Save, error) {
			return &models.Save{ID: 1, UserID: userID, PostID: postID}, nil
		},
		getByIDFn:    func(_ context.Context, id uint) (*models.Save, error) { return &models.Save{ID: id}, nil },
		listByUserFn: func(_ context.Context, _ uint) ([]models.Save, error) { return nil, nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn           func(context.Context, *models.User) error
	getByIDFn          func(context.Context, uint) (*models.User, error)
	getByIDWithPostsFn func(context.Context, uint, int) (*models.User, error)
	getByAccountIDFn   func(context.Context, uint) (*models.User, error)
	getByUsernameFn    func(context.Context, string) (*models.User, error)
	updateFn           func(context.Context, *models.User) error
	listFn             func(context.Context, int) ([]models.User, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDWithPosts(ctx context.Context, id uint, limit int) (*models.User, error) {
	return s.getByIDWithPostsFn(ctx, id, limit)
}
func (s *userRepoStub) GetByAccountID(ctx context.Context, accountID uint) (*models.User, error) {
	return s.getByAccountIDFn(ctx, accountID)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) List(ctx context.Context, limit int) ([]models.User, error) {
	return s.listFn(ctx, limit)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = 7
			return nil
		},
		getByIDFn:          func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByIDWithPostsFn: func(_ context.Context, id uint, _ int) (*models.User, error) { return &models.User{ID: id}, nil },
		getByAccountIDFn:   func(_ context.Context, _ uint) (*models.User, error) { return nil, nil },
		getByUsernameFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		updateFn:           func(_ context.Context, _ *models.User) error { return nil },
		listFn:             func(_ context.Context, _ int) ([]models.User, error) { return nil, nil },
	}
}

// accountRepoStub is a stub for repository.AccountRepository.
type accountRepoStub struct {
	createFn     func(context.Context, *models.Account) error
	getByIDFn    func(context.Context, uint) (*models.Account, error)
	getByEmailFn func(context.Context, string) (*models.Account, error)
}

func (s *accountRepoStub) Create(ctx context.Context, account *models.Account) error {
	return s.createFn(ctx, account)
}
func (s *accountRepoStub) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	return s.getByIDFn(ctx, id)
}
func (s *accountRepoStub) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.getByEmailFn(ctx, email)
}

func noopAccountRepo() *accountRepoStub {
	return &accountRepoStub{
		createFn: func(_ context.Context, a *models.Account) error {
			a.ID = 42
			return nil
		},
		getByIDFn:    func(_ context.Context, id uint) (*models.Account, error) { return &models.Account{ID: id}, nil },
		getByEmailFn: func(_ context.Context, _ string) (*models.Account, error) { return nil, nil },
	}
}

// blobStoreSpy records blob operations and lets tests fail specific steps.
type blobStoreSpy struct {
	created   []string
	deleted   []string
	createErr error
	viewErr   error
	deleteErr error
	nextID    int
}

func (s *blobStoreSpy) Create(_ context.Context, _ string, _ []byte) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	s.nextID++
	id := fmt.Sprintf("blob-%d", s.nextID)
	s.created = append(s.created, id)
	return id, nil
}

func (s *blobStoreSpy) ViewURL(_ context.Context, id string) (string, error) {
	if s.viewErr != nil {
		return "", s.viewErr
	}
	return "/media/f/" + id + "/preview.webp", nil
}

func (s *blobStoreSpy) Delete(_ context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func testSession() *models.Session {
	return &models.Session{
		AccountID: 42,
		User: &models.User{
			ID:       7,
			Name:     "Ada Lovelace",
			Username: "ada",
			Email:    "ada@example.com",
			ImageURL: "/media/f/avatar/preview.webp",
		},
	}
}

// assertAppErrorCode asserts that err is an AppError with the given code.
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
