package database

import (
	"fmt"
	"log"
	"os"

	"github.com/cambfordable/api/model"
	"github.com/cambfordable/api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedCourses(); err != nil {
		return fmt.Errorf("failed to seed courses: %w", err)
	}

	log.Println("Database seeding completed.")
	return nil
}

// SeedAdminUser creates the default admin user from env credentials
func (s *Seeder) SeedAdminUser() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping...")
		return nil
	}

	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" || adminEmail == "" || adminPassword == "" {
		log.Println("ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return err
	}

	admin := model.User{
		Username:     adminUsername,
		Email:        adminEmail,
		FullName:     "Administrator",
		PasswordHash: passwordHash,
		IsAdmin:      true,
	}

	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Created admin user %q", adminUsername)
	return nil
}

// SeedCourses creates a couple of sample courses for development
func (s *Seeder) SeedCourses() error {
	var count int64
	if err := s.db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Courses already exist, skipping...")
		return nil
	}

	courses := []model.Course{
		{Name: "IELTS Preparation", Code: "IELTS-01"},
		{Name: "O-Level Mathematics", Code: "OL-MATH"},
	}

	for _, course := range courses {
		if err := s.db.Create(&course).Error; err != nil {
			return err
		}
	}

	log.Printf("Created %d sample courses", len(courses))
	return nil
}
