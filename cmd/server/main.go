package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/Abduqodir7007/twitter-clone/internal/config"
	"github.com/Abduqodir7007/twitter-clone/internal/domain"
	"github.com/Abduqodir7007/twitter-clone/internal/handler"
	"github.com/Abduqodir7007/twitter-clone/internal/hub"
	"github.com/Abduqodir7007/twitter-clone/internal/repository"
	"github.com/Abduqodir7007/twitter-clone/internal/service"
	"github.com/Abduqodir7007/twitter-clone/pkg/database"
	"github.com/Abduqodir7007/twitter-clone/pkg/jwt"
	"github.com/Abduqodir7007/twitter-clone/pkg/log"
	"github.com/Abduqodir7007/twitter-clone/pkg/middleware"
	"github.com/Abduqodir7007/twitter-clone/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log)
	logger := log.L()

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.AutoMigrate(db,
		&domain.User{},
		&domain.Follow{},
		&domain.Post{},
		&domain.PostLike{},
		&domain.PostReply{},
		&domain.ReplyLike{},
		&domain.Chat{},
		&domain.Message{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	blobs, err := newStorage(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessDuration, cfg.JWT.RefreshDuration, cfg.JWT.Issuer)

	connections := hub.NewHub(cfg.WebSocket)

	userRepo := repository.NewGormUserRepository(db)
	followRepo := repository.NewGormFollowRepository(db)
	postRepo := repository.NewGormPostRepository(db)
	chatRepo := repository.NewGormChatRepository(db)

	userSvc := service.NewUserService(userRepo, followRepo, postRepo, tokens, blobs)
	postSvc := service.NewPostService(postRepo, blobs, connections)
	chatSvc := service.NewChatService(chatRepo, userRepo, connections)

	authMiddleware := middleware.NewAuthMiddleware(tokens)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(log.GinMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Local storage hands out URLs under its prefix; serve the files there.
	if local, ok := blobs.(*storage.LocalStorage); ok {
		router.Static(local.URLBase(), local.BasePath())
	}

	api := router.Group("/api/v1")
	handler.NewUserHandler(userSvc, authMiddleware).RegisterRoutes(api)
	handler.NewPostHandler(postSvc, authMiddleware).RegisterRoutes(api)
	handler.NewChatHandler(chatSvc, authMiddleware).RegisterRoutes(api)
	handler.NewWSHandler(connections, postSvc, tokens, cfg.WebSocket).RegisterRoutes(api)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info().Str("addr", addr).Msg("server starting")
	if err := router.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func newStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Backend {
	case "s3":
		return storage.NewS3Storage(context.Background(), cfg.Storage.S3)
	default:
		return storage.NewLocalStorage(cfg.Storage.Local)
	}
}
