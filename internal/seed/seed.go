// Package seed provides database seeding utilities for development and demos.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"lumen/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

var locations = []string{
	"Berlin", "Lisbon", "Tokyo", "Reykjavik", "Mexico City", "Seoul",
	"Cape Town", "Portland", "Valparaiso", "Tbilisi", "Hanoi", "Oaxaca",
}

var tagPool = []string{
	"photography", "streetphoto", "landscape", "portrait", "film",
	"blackandwhite", "goldenhour", "travel", "architecture", "nature",
	"minimal", "urban", "analog", "nightshots", "wildlife",
}

// Seeder populates the database with demo accounts, profiles and posts.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded data. Order matters for foreign keys.
func (s *Seeder) ClearAll() error {
	for _, table := range []string{"likes", "saves", "posts", "users", "accounts"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Database cleared")
	return nil
}

// Seed creates the requested number of users and posts, then sprinkles likes
// and saves across them. Every seeded account uses the password "password123".
func (s *Seeder) Seed(opts Options) error {
	users, err := s.seedUsers(opts.NumUsers)
	if err != nil {
		return err
	}
	posts, err := s.seedPosts(users, opts.NumPosts)
	if err != nil {
		return err
	}
	if err := s.seedEngagement(users, posts); err != nil {
		return err
	}
	log.Printf("Seeded %d users and %d posts", len(users), len(posts))
	return nil
}

func (s *Seeder) seedUsers(n int) ([]*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		name := gofakeit.Name()
		username := fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i)
		email := fmt.Sprintf("%s@%s", username, gofakeit.DomainName())

		account := &models.Account{
			Email:    email,
			Password: string(hashed),
			Name:     name,
		}
		if err := s.db.Create(account).Error; err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}

		user := &models.User{
			AccountID: account.ID,
			Name:      name,
			Username:  username,
			Email:     email,
			Bio:       gofakeit.Sentence(8),
			ImageURL:  fmt.Sprintf("https://picsum.photos/seed/avatar-%s/256/256", gofakeit.UUID()),
		}
		if err := s.db.Create(user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedPosts(users []*models.User, n int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}

	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		creator := users[s.rng.Intn(len(users))]

		tags := make([]string, 0, 3)
		for _, t := range s.rng.Perm(len(tagPool))[:1+s.rng.Intn(3)] {
			tags = append(tags, tagPool[t])
		}

		createdAt := time.Now().Add(-time.Duration(s.rng.Intn(90*24)) * time.Hour)
		post := &models.Post{
			Caption:         gofakeit.Sentence(6 + s.rng.Intn(10)),
			ImageURL:        fmt.Sprintf("https://picsum.photos/seed/%s/1080/1080", gofakeit.UUID()),
			ImageID:         gofakeit.UUID(),
			Location:        locations[s.rng.Intn(len(locations))],
			Tags:            models.TagList(tags),
			CreatorID:       creator.ID,
			CreatorName:     creator.Name,
			CreatorImageURL: creator.ImageURL,
			CreatedAt:       createdAt,
			UpdatedAt:       createdAt,
		}
		if err := s.db.Create(post).Error; err != nil {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// seedEngagement gives every post a random set of likers and savers. The
// unique (user, post) constraints make re-runs safe.
func (s *Seeder) seedEngagement(users []*models.User, posts []*models.Post) error {
	for _, post := range posts {
		for _, idx := range s.rng.Perm(len(users))[:s.rng.Intn(len(users)+1)] {
			like := &models.Like{UserID: users[idx].ID, PostID: post.ID}
			if err := s.db.Create(like).Error; err != nil {
				return fmt.Errorf("failed to create like: %w", err)
			}
		}
		if s.rng.Intn(3) == 0 {
			save := &models.Save{UserID: users[s.rng.Intn(len(users))].ID, PostID: post.ID}
			if err := s.db.Create(save).Error; err != nil {
				return fmt.Errorf("failed to create save: %w", err)
			}
		}
	}
	return nil
}
