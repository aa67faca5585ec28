package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mahapatra12/vitam-cms/domain"
	"github.com/mahapatra12/vitam-cms/utils"
)

func GetDatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_SSLMODE"),
	)
}

func BootDB() (*gorm.DB, error) {
	var gormLogger logger.Interface
	if os.Getenv("APP_ENV") == "development" {
		gormLogger = logger.Default.LogMode(logger.Info)
	} else {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(postgres.Open(GetDatabaseURL()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.AuditEvent{},
	); err != nil {
		return nil, fmt.Errorf("auto-migrate database schemas: %w", err)
	}

	if err := seedAdmin(db); err != nil {
		return nil, err
	}

	log.Print("Connected to ", utils.ColorText("Database", utils.Green), " successfully")
	return db, nil
}

// seedAdmin creates the first admin from env on an empty deployment. The
// admin gets a TOTP secret at creation like every other user.
func seedAdmin(db *gorm.DB) error {
	var count int64
	db.Model(&domain.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPass := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPass == "" {
		log.Print("Skipping admin seeding, missing ADMIN_EMAIL or ADMIN_PASSWORD in env")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPass), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	secret, err := utils.GenerateTOTPSecret(adminEmail)
	if err != nil {
		return err
	}

	admin := domain.User{
		UUID:       uuid.NewString(),
		Name:       os.Getenv("ADMIN_NAME"),
		Email:      adminEmail,
		Phone:      os.Getenv("ADMIN_PHONE"),
		Password:   string(hashed),
		Role:       domain.RoleAdmin,
		TotpSecret: secret,
		IsActive:   true,
	}

	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	log.Printf("Seeded admin user: %s", adminEmail)
	log.Printf("Admin authenticator URI: %s", utils.TOTPProvisioningURI(secret, adminEmail))
	return nil
}
