package main

import (
	"context"
	"fmt"
	"log"

	"brewshop/internal/auth"
	"brewshop/internal/config"
	"brewshop/internal/database"
	"brewshop/internal/migrations"
	"brewshop/internal/notify"
	"brewshop/internal/redis"
	"brewshop/internal/repository"
	"brewshop/internal/services"
)

// Recreates every table from scratch and seeds the admin account.
func main() {
	fmt.Println("Initializing database...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, database.Options{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	fmt.Println("Dropping existing tables...")
	if err := database.DropAll(db); err != nil {
		log.Printf("Warning: Error dropping tables: %v", err)
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.LoginTokenTTL)
	userService := services.NewUserService(db, repository.NewUserRepository(db), tokens,
		notify.NewRedisQueue(redisClient), cfg.RecoveryTokenTTL)

	err = migrations.RunMigrations(context.Background(), db, userService, migrations.Admin{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	})
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	fmt.Println("Database initialization completed successfully!")
}
