package server

import (
	"backend-tripmate/internal/auth"
	"backend-tripmate/internal/collab"
	"backend-tripmate/internal/config"
	"backend-tripmate/internal/directory"
	"backend-tripmate/internal/docstore"
	"backend-tripmate/internal/friends"
	"backend-tripmate/internal/game"
	"backend-tripmate/internal/itinerary"
	"backend-tripmate/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Store  docstore.Store
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}
	if redisClient != nil {
		s.Store = docstore.NewRedisStore(redisClient)
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	users := directory.NewService(s.DB)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	directory.RegisterRoutes(s.App.Group("/users"), users, jwtMiddleware)
	itinerary.RegisterRoutes(s.App.Group("/itineraries"), itinerary.NewService(s.DB, users, s.Store), jwtMiddleware)
	friends.RegisterRoutes(s.App.Group("/friends"), friends.NewService(s.Store, users, s.Stream), jwtMiddleware)
	collab.RegisterRoutes(s.App.Group("/collab"), collab.NewService(s.Store, users, s.Stream), jwtMiddleware)
	game.RegisterRoutes(s.App.Group("/game"), game.NewService(s.Store, s.Stream), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
