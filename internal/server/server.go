package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mansoorceksport/liftlog/internal/config"
	"github.com/mansoorceksport/liftlog/internal/handler"
	"github.com/mansoorceksport/liftlog/internal/middleware"
	"github.com/mansoorceksport/liftlog/internal/repository"
	"github.com/mansoorceksport/liftlog/internal/service"
	"github.com/mansoorceksport/liftlog/internal/telemetry"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client
	Instruments *telemetry.Instruments // nil records nothing
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	cfg := deps.Config

	// Initialize repositories
	redisRepo := repository.NewRedisCacheRepository(deps.RedisClient)
	setRepo := repository.NewMongoSetLogRepository(deps.MongoDB)
	recordRepo := repository.NewMongoPersonalRecordRepository(deps.MongoDB)
	sessionRepo := repository.NewMongoWorkoutSessionRepository(deps.MongoDB)
	exerciseRepo := repository.NewCachedExerciseRepository(
		repository.NewMongoExerciseRepository(deps.MongoDB),
		redisRepo,
	)

	// Initialize services
	recordService := service.NewRecordService(setRepo, recordRepo, exerciseRepo, redisRepo, cfg.Progression.RecordRetries, deps.Instruments)
	progressionService := service.NewProgressionService(setRepo, sessionRepo, exerciseRepo, redisRepo, service.ProgressionOptions{
		CacheTTL:     cfg.Progression.CacheTTL,
		DefaultWeeks: cfg.Progression.DefaultWeeks,
		Location:     cfg.Location(),
		Instruments:  deps.Instruments,
	})
	sessionService := service.NewSessionService(sessionRepo, redisRepo)
	exerciseService := service.NewExerciseService(exerciseRepo, recordRepo, redisRepo)

	// Initialize handlers
	setHandler := handler.NewSetHandler(recordService)
	recordHandler := handler.NewRecordHandler(recordService)
	progressHandler := handler.NewProgressHandler(progressionService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	exerciseHandler := handler.NewExerciseHandler(exerciseService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "LiftLog API",
		BodyLimit:    int(cfg.Server.BodyLimitKB * 1024),
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(telemetry.FiberMiddleware())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-User-ID, X-Correlation-ID",
		AllowMethods: "GET, POST, PATCH, DELETE, OPTIONS",
	}))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "liftlog",
		})
	})

	// API v1 routes
	v1 := app.Group("/v1")

	// Exercise library (shared)
	v1.Get("/exercises", exerciseHandler.ListExercises)
	v1.Get("/exercises/:id", exerciseHandler.GetExercise)
	v1.Post("/exercises", exerciseHandler.CreateExercise)
	v1.Patch("/exercises/:id", exerciseHandler.UpdateExercise)
	v1.Delete("/exercises/:id", exerciseHandler.DeleteExercise)

	// ===========================================
	// USER API - /v1/me/* (user resolved by the gateway)
	// ===========================================
	me := v1.Group("/me")
	me.Use(middleware.UserScope())
	me.Use(middleware.IdempotencyMiddleware(deps.RedisClient, cfg.Progression.IdempotencyTTL))

	me.Post("/sets", setHandler.LogSet)
	me.Delete("/sets/:id", setHandler.DeleteSet)

	me.Post("/sessions", sessionHandler.StartSession)
	me.Patch("/sessions/:id/finish", sessionHandler.FinishSession)

	me.Get("/records", recordHandler.ListRecords)
	me.Post("/records/rebuild", recordHandler.Rebuild)

	progress := me.Group("/progress")
	progress.Get("/series", progressHandler.GetSeries)
	progress.Get("/weekly-volume", progressHandler.GetWeeklyVolume)
	progress.Get("/muscle-groups", progressHandler.GetMuscleGroups)
	progress.Get("/rpe", progressHandler.GetRpe)
	progress.Get("/overview", progressHandler.GetOverview)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := handler.StatusFor(err)
	log.WithError(err).WithField("path", c.Path()).Error("unhandled error")
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
