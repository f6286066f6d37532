package database

import (
	"fmt"
	"log"

	config "github.com/anjiri1684/excursion_booking/configs"
	"github.com/anjiri1684/excursion_booking/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

// AutoMigrate creates or updates every table the service uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Country{},
		&models.Region{},
		&models.Cruise{},
		&models.ExcursionType{},
		&models.Excursion{},
		&models.CreditCard{},
		&models.Invoice{},
		&models.Booking{},
		&models.Contact{},
		&models.Employment{},
		&models.ExperienceVideo{},
		&models.ExperienceGallery{},
		&models.FaqCategory{},
		&models.Faq{},
	)
}

func Migrate() {
	if err := AutoMigrate(DB); err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

func SeedAdmin(cfg *config.Config) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Println("⚠️ ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return
	}

	var count int64
	err := DB.Model(&models.User{}).Where("email = ?", cfg.AdminEmail).Count(&count).Error
	if err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
		return
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
		return
	}

	adminUser := models.User{
		FullName: cfg.AdminFullName,
		Email:    cfg.AdminEmail,
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
	}

	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
		return
	}

	log.Println("✅ Admin user seeded successfully")
}
