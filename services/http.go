package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"

	"github.com/roamline/live_api/docs"
	"github.com/roamline/live_api/services/handlers"
	"github.com/roamline/live_api/shared"
)

type HttpService struct {
	context.DefaultService

	sessionSvc  *ActiveExperienceService
	activitySvc *ActiveActivityService
	locationSvc *LocationService
	authMw      *AuthMiddleware
	rateMw      *RateLimitMiddleware

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.sessionSvc = svc.Service(ACTIVE_EXPERIENCE_SVC).(*ActiveExperienceService)
	svc.activitySvc = svc.Service(ACTIVE_ACTIVITY_SVC).(*ActiveActivityService)
	svc.locationSvc = svc.Service(LOCATION_SVC).(*LocationService)
	svc.authMw = svc.Service(AUTH_MIDDLEWARE_SVC).(*AuthMiddleware)
	svc.rateMw = svc.Service(RATE_LIMIT_MIDDLEWARE_SVC).(*RateLimitMiddleware)

	docs.SwaggerInfo.BasePath = ""

	r := fiber.New(fiber.Config{
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if appErr, ok := shared.GetAppError(err); ok {
				return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
			}
			return shared.ResponseInternalError(c, err)
		},
	})

	r.Use(recover.New())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
	}))
	r.Use(MonitoringMiddleware())

	//Validation endpoints
	r.Get("/ping", svc.ping)
	r.Get("/swagger/*", fiberSwagger.HandlerDefault)

	auth := svc.authMw.RequiredAuth()

	v1 := r.Group("/api/v1")

	v1.Get("/ping", svc.ping)

	sessionHandler := handlers.NewSessionHandler(svc.sessionSvc, svc.activitySvc)
	locationHandler := handlers.NewLocationHandler(svc.locationSvc)

	v1.Post("/experiences/:experienceId/start", auth, sessionHandler.StartSession)

	v1.Get("/sessions/:sessionId", auth, sessionHandler.GetSession)
	v1.Post("/sessions/:sessionId/join", auth, sessionHandler.JoinSession)
	v1.Post("/sessions/:sessionId/end", auth, sessionHandler.EndSession)

	v1.Get("/sessions/:sessionId/activities/current", auth, sessionHandler.GetCurrentActivity)
	v1.Post("/sessions/:sessionId/activities/current/start", auth, sessionHandler.StartCurrentActivity)
	v1.Post("/sessions/:sessionId/activities/current/complete", auth, sessionHandler.CompleteCurrentActivity)
	v1.Post("/sessions/:sessionId/activities/current/skip", auth, sessionHandler.SkipCurrentActivity)
	v1.Post("/sessions/:sessionId/activities/:activeActivityId/checkin", auth, svc.rateMw.Limit("checkin"), sessionHandler.CheckIn)

	v1.Post("/activities/:activeActivityId/photo", auth, svc.rateMw.Limit("photo_upload"), sessionHandler.SubmitPhoto)

	v1.Post("/sessions/:sessionId/location", auth, svc.rateMw.Limit("location_report"), locationHandler.ReportLocation)

	r.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	r.Get("/ws/sessions/:sessionId/locations", auth, websocket.New(locationHandler.StreamLocations))

	r.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})

	svc.server = r

	return svc.server.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "max-age=10")

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}
