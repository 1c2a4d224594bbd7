package main

import (
	"os"

	"github.com/roamline/live_api/services"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Error loading .env file")
	}

	var store context.Service
	if os.Getenv("DB_DRIVER") == "postgres" {
		store = &services.PostgresService{}
	} else {
		store = &services.SqliteService{}
	}

	ctx, err := context.NewCtx(

		&services.JWTService{},
		&services.AuthMiddleware{},
		store,
		&services.RedisService{},
		&services.MinIOService{},
		&services.RateLimitMiddleware{},

		&services.ExperienceService{},
		&services.ActiveActivityService{},
		&services.ActiveExperienceService{},
		&services.LocationService{},

		&services.MonitoringService{},
		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err)
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err)
		return
	}
}
