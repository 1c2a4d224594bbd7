package seeders

import (
	"errors"
	"log"
	"time"

	"github.com/roamline/live_api/model"
	"gorm.io/gorm"
)

// ExperienceSeeder handles seeding demo experiences and their activities
type ExperienceSeeder struct {
	db *gorm.DB
}

// NewExperienceSeeder creates a new experience seeder
func NewExperienceSeeder(db *gorm.DB) *ExperienceSeeder {
	return &ExperienceSeeder{db: db}
}

// SeedExperiences seeds the database with demo itineraries
func (s *ExperienceSeeder) SeedExperiences() error {
	experiences := s.getDemoExperiences()

	for _, experience := range experiences {
		var existing model.Experience
		if err := s.db.Where("id = ?", experience.ID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if err := s.db.Create(&experience).Error; err != nil {
					log.Printf("Error creating experience %s: %v", experience.Title, err)
					return err
				}
				log.Printf("Created experience: %s (%d activities)", experience.Title, len(experience.Activities))
			} else {
				log.Printf("Error checking experience %s: %v", experience.Title, err)
				return err
			}
		} else {
			log.Printf("Experience %s already exists, skipping", experience.Title)
		}
	}

	log.Println("Experience seeding completed successfully")
	return nil
}

func (s *ExperienceSeeder) getDemoExperiences() []model.Experience {
	now := time.Now()

	return []model.Experience{
		{
			ID:          "exp_lisbon_day",
			UserID:      "user_ana",
			Title:       "Lisbon in a Day",
			Description: "A walking loop through Alfama and Baixa with the classic viewpoints.",
			CreatedAt:   now,
			UpdatedAt:   now,
			Activities: []model.Activity{
				{
					ID:           "act_se_cathedral",
					ExperienceID: "exp_lisbon_day",
					Title:        "Sé Cathedral",
					Description:  "Romanesque cathedral at the foot of Alfama.",
					Latitude:     38.7098,
					Longitude:    -9.1325,
					Position:     0,
					CreatedAt:    now,
					UpdatedAt:    now,
				},
				{
					ID:           "act_castelo",
					ExperienceID: "exp_lisbon_day",
					Title:        "Castelo de São Jorge",
					Description:  "Hilltop castle with views over the Tagus.",
					Latitude:     38.7139,
					Longitude:    -9.1335,
					Position:     1,
					CreatedAt:    now,
					UpdatedAt:    now,
				},
				{
					ID:           "act_miradouro",
					ExperienceID: "exp_lisbon_day",
					Title:        "Miradouro de Santa Luzia",
					Description:  "Tiled terrace overlooking the rooftops of Alfama.",
					Latitude:     38.7118,
					Longitude:    -9.1301,
					Position:     2,
					CreatedAt:    now,
					UpdatedAt:    now,
				},
			},
		},
		{
			ID:          "exp_porto_food",
			UserID:      "user_bruno",
			Title:       "Porto Food Crawl",
			Description: "From the Bolhão market down to the riverside tascas.",
			CreatedAt:   now,
			UpdatedAt:   now,
			Activities: []model.Activity{
				{
					ID:           "act_bolhao",
					ExperienceID: "exp_porto_food",
					Title:        "Mercado do Bolhão",
					Description:  "Fresh produce and petiscos at the covered market.",
					Latitude:     41.1496,
					Longitude:    -8.6061,
					Position:     0,
					CreatedAt:    now,
					UpdatedAt:    now,
				},
				{
					ID:           "act_ribeira",
					ExperienceID: "exp_porto_food",
					Title:        "Ribeira Riverside",
					Description:  "Francesinha and a glass of port by the Douro.",
					Latitude:     41.1407,
					Longitude:    -8.6110,
					Position:     1,
					CreatedAt:    now,
					UpdatedAt:    now,
				},
			},
		},
	}
}
