package seeders

import (
	"log"

	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll runs all seeders in the correct order
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting database seeding...")

	// 1. Seed users first (experiences reference their owner)
	userSeeder := NewUserSeeder(s.db)
	if err := userSeeder.SeedUsers(); err != nil {
		log.Printf("User seeding failed: %v", err)
		return err
	}

	// 2. Seed experiences with their activities
	experienceSeeder := NewExperienceSeeder(s.db)
	if err := experienceSeeder.SeedExperiences(); err != nil {
		log.Printf("Experience seeding failed: %v", err)
		return err
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedUsersOnly seeds only users
func (s *MainSeeder) SeedUsersOnly() error {
	userSeeder := NewUserSeeder(s.db)
	return userSeeder.SeedUsers()
}

// SeedExperiencesOnly seeds only experiences
func (s *MainSeeder) SeedExperiencesOnly() error {
	experienceSeeder := NewExperienceSeeder(s.db)
	return experienceSeeder.SeedExperiences()
}
