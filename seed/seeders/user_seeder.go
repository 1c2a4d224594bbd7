package seeders

import (
	"errors"
	"log"
	"time"

	"github.com/roamline/live_api/model"
	"gorm.io/gorm"
)

// UserSeeder handles seeding demo users
type UserSeeder struct {
	db *gorm.DB
}

// NewUserSeeder creates a new user seeder
func NewUserSeeder(db *gorm.DB) *UserSeeder {
	return &UserSeeder{db: db}
}

// SeedUsers seeds the database with demo users
func (s *UserSeeder) SeedUsers() error {
	users := s.getDemoUsers()

	for _, user := range users {
		var existing model.User
		if err := s.db.Where("id = ?", user.ID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if err := s.db.Create(&user).Error; err != nil {
					log.Printf("Error creating user %s: %v", user.Username, err)
					return err
				}
				log.Printf("Created user: %s", user.Username)
			} else {
				log.Printf("Error checking user %s: %v", user.Username, err)
				return err
			}
		} else {
			log.Printf("User %s already exists, skipping", user.Username)
		}
	}

	log.Println("User seeding completed successfully")
	return nil
}

func (s *UserSeeder) getDemoUsers() []model.User {
	now := time.Now()

	return []model.User{
		{
			ID:            "user_ana",
			Email:         "ana@example.com",
			Username:      "ana",
			ShareLocation: true,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            "user_bruno",
			Email:         "bruno@example.com",
			Username:      "bruno",
			ShareLocation: true,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            "user_carla",
			Email:         "carla@example.com",
			Username:      "carla",
			ShareLocation: false,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
}
