package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"bookshelf/auth"
	"bookshelf/config"
	"bookshelf/handler"
	"bookshelf/store"
	"bookshelf/utils"
)

// @title Bookshelf API
// @version 1.0
// @description CRUD backend for books and users with token-based ownership.
// @BasePath /api/v1
// @schemes http
func main() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	client, err := config.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	db := client.Database(cfg.Database)
	users := store.NewMongoUserStore(db.Collection("users"))
	books := store.NewMongoBookStore(db.Collection("books"))

	ttl, _ := cfg.ParseTokenTTL() // validated in Load
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), ttl)

	h := handler.New(users, books, hasher, tokens, cfg.BookListLimit)

	e := echo.New()
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Validator = handler.NewValidator()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Hello World"})
	})
	h.Register(e.Group("/api/v1"))

	audit := utils.StartAuditJob(users, books)
	defer audit.Stop()

	go func() {
		if err := e.Start(cfg.Addr); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.Printf("database disconnect: %v", err)
	}
}
