package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusCompleted = "completed"
	PurchaseStatusFailed    = "failed"
)

const (
	RoleStudent  = "student"
	RoleEducator = "educator"
)

type Course struct {
	ID              string `gorm:"primaryKey;size:64;not null"`
	Title           string `gorm:"size:255;not null"`
	Description     string `gorm:"type:text;not null"`
	ThumbnailURL    string `gorm:"size:512"`
	PriceCents      int64  `gorm:"not null"`
	DiscountPercent int32  `gorm:"not null;default:0"` // 0..100
	EducatorID      string `gorm:"size:64;index;not null"`
	IsPublished     bool   `gorm:"index;not null;default:false"`

	Chapters []Chapter      `gorm:"foreignKey:CourseID"`
	Ratings  []CourseRating `gorm:"foreignKey:CourseID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectivePriceCents applies the percentage discount to the list price,
// rounded half away from zero to a whole cent. Never negative.
func (c *Course) EffectivePriceCents() int64 {
	price := decimal.NewFromInt(c.PriceCents)
	keep := decimal.NewFromInt32(100 - c.DiscountPercent)
	cents := price.Mul(keep).Div(decimal.NewFromInt(100)).Round(0)
	if cents.IsNegative() {
		return 0
	}
	return cents.IntPart()
}

// TotalLectures counts lectures across all chapters. Chapters must be preloaded.
func (c *Course) TotalLectures() int {
	n := 0
	for _, ch := range c.Chapters {
		n += len(ch.Lectures)
	}
	return n
}

// FindLecture looks a lecture up by id across the course content.
func (c *Course) FindLecture(lectureID string) *Lecture {
	for i := range c.Chapters {
		for j := range c.Chapters[i].Lectures {
			if c.Chapters[i].Lectures[j].ID == lectureID {
				return &c.Chapters[i].Lectures[j]
			}
		}
	}
	return nil
}

type Chapter struct {
	ID       string `gorm:"primaryKey;size:64;not null"`
	CourseID string `gorm:"size:64;index;not null"`
	Position int32  `gorm:"not null"`
	Title    string `gorm:"size:255;not null"`

	Lectures []Lecture `gorm:"foreignKey:ChapterID"`
}

type Lecture struct {
	ID              string `gorm:"primaryKey;size:64;not null"`
	ChapterID       string `gorm:"size:64;index;not null"`
	Position        int32  `gorm:"not null"`
	Title           string `gorm:"size:255;not null"`
	DurationMinutes int32  `gorm:"not null"`
	ContentURL      string `gorm:"size:512;not null"`
	IsPreviewFree   bool   `gorm:"not null;default:false"`
}

// CourseRating holds one rating slot per (course, user); the service upserts
// into it, the unique index only backstops concurrent first writes.
type CourseRating struct {
	ID       uint   `gorm:"primaryKey"`
	CourseID string `gorm:"size:64;uniqueIndex:idx_course_rating_user;not null"`
	UserID   string `gorm:"size:64;uniqueIndex:idx_course_rating_user;not null"`
	Value    int32  `gorm:"not null"` // 1..5

	CreatedAt time.Time
	UpdatedAt time.Time
}

// User identity is issued by the external identity provider; the id is opaque.
type User struct {
	ID       string `gorm:"primaryKey;size:64;not null"`
	Name     string `gorm:"size:255"`
	ImageURL string `gorm:"size:512"`
	Role     string `gorm:"size:32;not null;default:'student'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserEnrollment and CourseEnrollment are the two sides of the enrollment
// relationship. Each side is owned independently; the enrollment linker writes
// both in one transaction and a property test asserts they stay symmetric.
type UserEnrollment struct {
	UserID    string `gorm:"primaryKey;size:64;not null"`
	CourseID  string `gorm:"primaryKey;size:64;not null"`
	CreatedAt time.Time
}

type CourseEnrollment struct {
	CourseID  string `gorm:"primaryKey;size:64;not null"`
	UserID    string `gorm:"primaryKey;size:64;not null"`
	CreatedAt time.Time
}

type Purchase struct {
	ID          string `gorm:"primaryKey;size:64;not null"`
	CourseID    string `gorm:"size:64;index;not null"`
	UserID      string `gorm:"size:64;index;not null"`
	AmountCents int64  `gorm:"not null"` // server-computed effective price at initiation
	Status      string `gorm:"size:16;index;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CourseProgress is keyed by (user, course); the completed-lecture set lives in
// LectureCompletion rows so additions stay commutative under concurrency.
type CourseProgress struct {
	UserID    string `gorm:"primaryKey;size:64;not null"`
	CourseID  string `gorm:"primaryKey;size:64;not null"`
	Completed bool   `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type LectureCompletion struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"size:64;uniqueIndex:idx_lecture_completion;not null"`
	CourseID  string `gorm:"size:64;uniqueIndex:idx_lecture_completion;not null"`
	LectureID string `gorm:"size:64;uniqueIndex:idx_lecture_completion;not null"`
	CreatedAt time.Time
}

// WebhookEvent records processed payment-callback event ids so duplicate
// deliveries are dropped without re-running their effects.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
