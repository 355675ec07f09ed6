package migrations

import (
	"context"
	"errors"
	"log"

	"brewshop/internal/database"
	"brewshop/internal/models"
	"brewshop/internal/services"

	"gorm.io/gorm"
)

// Admin is the staff account created on first start.
type Admin struct {
	Email    string
	Password string
}

// RunMigrations brings the schema up to date and creates default data
func RunMigrations(ctx context.Context, db *gorm.DB, users services.UserService, admin Admin) error {
	log.Println("Running database migrations...")

	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	if err := createDefaultData(ctx, users, admin); err != nil {
		log.Printf("Warning: Failed to create default data: %v", err)
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

// createDefaultData seeds the staff account, once.
func createDefaultData(ctx context.Context, users services.UserService, admin Admin) error {
	if admin.Email == "" || admin.Password == "" {
		log.Println("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin account")
		return nil
	}

	existing, err := users.GetUserByEmail(ctx, admin.Email)
	if err == nil && existing != nil {
		log.Println("Admin user already exists")
		return nil
	}
	if err != nil && !errors.Is(err, services.ErrUserNotFound) {
		return err
	}

	log.Println("Creating admin user...")
	user := &models.User{
		Email:      admin.Email,
		FirstName:  "Admin",
		IsStaff:    true,
		IsVerified: true,
	}
	if err := users.CreateUser(ctx, user, admin.Password); err != nil {
		return err
	}
	log.Printf("Admin user %s created successfully", user.Email)
	return nil
}
