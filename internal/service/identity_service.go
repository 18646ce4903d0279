package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lumen/internal/avatar"
	"lumen/internal/models"
	"lumen/internal/observability"
	"lumen/internal/repository"
	"lumen/internal/storage"
	"lumen/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// IdentityService owns auth identities and their mapping to profile records.
// The account id (JWT subject) and the profile user id are distinct values
// and never interchangeable.
type IdentityService struct {
	accountRepo repository.AccountRepository
	userRepo    repository.UserRepository
	saveRepo    repository.SaveRepository
	blobs       storage.BlobStore
}

type SignupInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

func NewIdentityService(
	accountRepo repository.AccountRepository,
	userRepo repository.UserRepository,
	saveRepo repository.SaveRepository,
	blobs storage.BlobStore,
) *IdentityService {
	return &IdentityService{
		accountRepo: accountRepo,
		userRepo:    userRepo,
		saveRepo:    saveRepo,
		blobs:       blobs,
	}
}

// Signup creates an auth account and immediately provisions its profile.
func (s *IdentityService) Signup(ctx context.Context, in SignupInput) (*models.Session, error) {
	span, ctx := observability.NewSpan(ctx, "identity.signup")
	defer span.End()

	if strings.TrimSpace(in.Name) == "" {
		return nil, models.NewInvalidArgumentError("Name is required")
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewInvalidArgumentError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewInvalidArgumentError(err.Error())
	}
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if username == "" {
		username = emailLocalPart(in.Email)
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewInvalidArgumentError(err.Error())
	}

	existing, err := s.accountRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		span.SetError(err)
		return nil, classify(err)
	}
	if existing != nil {
		return nil, models.NewInvalidArgumentError("Email is already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewBackendFailure(err)
	}

	account := &models.Account{
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: string(hashed),
		Name:     in.Name,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		span.SetError(err)
		return nil, classify(err)
	}

	user, err := s.provisionProfile(ctx, account, username)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return &models.Session{AccountID: account.ID, User: user}, nil
}

// Authenticate verifies credentials and returns the matching account.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	account, err := s.accountRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, classify(err)
	}
	if account == nil {
		return nil, models.NewUnauthenticatedError("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthenticatedError("Invalid email or password")
	}
	return account, nil
}

// CurrentUser resolves the session for an authenticated account id. Profiles
// are provisioned lazily on first resolution: a placeholder username from the
// email local-part and a generated initials avatar. The caller's save-records
// are attached to the resolved profile.
func (s *IdentityService) CurrentUser(ctx context.Context, accountID uint) (*models.Session, error) {
	span, ctx := observability.NewSpan(ctx, "identity.current_user")
	defer span.End()

	if accountID == 0 {
		return nil, models.NewUnauthenticatedError("No active session")
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		span.SetError(err)
		// Only a genuinely missing account invalidates the session; a store
		// failure must not read as a bad token.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewUnauthenticatedError("Account no longer exists")
		}
		return nil, classify(err)
	}

	user, err := s.userRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		span.SetError(err)
		return nil, classify(err)
	}
	if user == nil {
		user, err = s.provisionProfile(ctx, account, emailLocalPart(account.Email))
		if err != nil {
			span.SetError(err)
			return nil, err
		}
	}

	saves, err := s.saveRepo.ListByUser(ctx, user.ID)
	if err != nil {
		span.SetError(err)
		return nil, classify(err)
	}
	if saves == nil {
		saves = []models.Save{}
	}
	user.Saves = saves

	return &models.Session{AccountID: accountID, User: user}, nil
}

// provisionProfile creates the profile record for an account. A persist
// failure here is fatal for the attempt; there is no retry and no partially
// provisioned state left behind beyond the (reusable) avatar blob.
func (s *IdentityService) provisionProfile(ctx context.Context, account *models.Account, username string) (*models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || validation.ValidateUsername(username) != nil {
		username = fmt.Sprintf("user%d", account.ID)
	}
	// The local-part may already be taken by someone else.
	if taken, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		return nil, classify(err)
	} else if taken != nil {
		username = fmt.Sprintf("%s%d", username, account.ID)
	}

	imageURL := ""
	imageID := ""
	if rendered, err := avatar.Render(account.Name); err == nil {
		if id, err := s.blobs.Create(ctx, "avatar.png", rendered); err == nil {
			if url, err := s.blobs.ViewURL(ctx, id); err == nil {
				imageID = id
				imageURL = url
			} else {
				compensateDelete(ctx, s.blobs, "identity.provision", id)
			}
		}
	}

	user := &models.User{
		AccountID: account.ID,
		Name:      account.Name,
		Username:  username,
		Email:     account.Email,
		ImageURL:  imageURL,
		ImageID:   imageID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		compensateDelete(ctx, s.blobs, "identity.provision", imageID)
		return nil, models.NewProvisioningFailure(err)
	}
	return user, nil
}

func emailLocalPart(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return strings.ToLower(strings.TrimSpace(email))
	}
	return strings.ToLower(strings.TrimSpace(email[:at]))
}
