package client

import (
	"log"
	"time"

	"edemy-backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func InitMysqlClient(databaseURL string) *gorm.DB {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}

	// Connection pool (important for webhooks)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	return db
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Chapter{},
		&model.Lecture{},
		&model.CourseRating{},
		&model.UserEnrollment{},
		&model.CourseEnrollment{},
		&model.Purchase{},
		&model.CourseProgress{},
		&model.LectureCompletion{},
		&model.WebhookEvent{},
	)
}
