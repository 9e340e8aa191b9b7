package dto

import "time"

// --- course views (viewer-specific projection output) ---

// CourseView is the externally visible shape of a course. Lecture content URLs
// are blanked by the projector unless the viewer may see them.
type CourseView struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	ThumbnailURL    string        `json:"thumbnail_url"`
	PriceCents      int64         `json:"price_cents"`
	DiscountPercent int32         `json:"discount_percent"`
	EffectiveCents  int64         `json:"effective_price_cents"`
	EducatorID      string        `json:"educator_id"`
	IsPublished     bool          `json:"is_published"`
	Chapters        []ChapterView `json:"chapters"`
	Ratings         []RatingView  `json:"ratings"`
	EnrolledCount   int           `json:"enrolled_count"`
	CreatedAt       time.Time     `json:"created_at"`
}

type ChapterView struct {
	ID       string        `json:"id"`
	Position int32         `json:"position"`
	Title    string        `json:"title"`
	Lectures []LectureView `json:"lectures"`
}

type LectureView struct {
	ID              string `json:"id"`
	Position        int32  `json:"position"`
	Title           string `json:"title"`
	DurationMinutes int32  `json:"duration_minutes"`
	ContentURL      string `json:"content_url"` // empty unless preview-free, enrolled or owner
	IsPreviewFree   bool   `json:"is_preview_free"`
}

type RatingView struct {
	UserID string `json:"user_id"`
	Value  int32  `json:"value"`
}

// CourseSummary is the catalogue shape: no content, no enrollment set.
type CourseSummary struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	ThumbnailURL    string       `json:"thumbnail_url"`
	PriceCents      int64        `json:"price_cents"`
	DiscountPercent int32        `json:"discount_percent"`
	EffectiveCents  int64        `json:"effective_price_cents"`
	EducatorID      string       `json:"educator_id"`
	Ratings         []RatingView `json:"ratings"`
	CreatedAt       time.Time    `json:"created_at"`
}

// --- course authoring ---

type CreateCourseRequest struct {
	Title           string                 `json:"title" validate:"required"`
	Description     string                 `json:"description" validate:"required"`
	ThumbnailURL    string                 `json:"thumbnail_url" validate:"required"`
	PriceCents      int64                  `json:"price_cents" validate:"gte=0"`
	DiscountPercent int32                  `json:"discount_percent" validate:"gte=0,lte=100"`
	Chapters        []CreateChapterRequest `json:"chapters" validate:"required,min=1,dive"`
}

type CreateChapterRequest struct {
	Title    string                 `json:"title" validate:"required"`
	Lectures []CreateLectureRequest `json:"lectures" validate:"dive"`
}

type CreateLectureRequest struct {
	Title           string `json:"title" validate:"required"`
	DurationMinutes int32  `json:"duration_minutes" validate:"gte=0"`
	ContentURL      string `json:"content_url" validate:"required"`
	IsPreviewFree   bool   `json:"is_preview_free"`
}

// --- commerce ---

type PurchaseRequest struct {
	CourseID string `json:"course_id" validate:"required"`
}

type CheckoutResponse struct {
	PurchaseID string `json:"purchase_id"`
	SessionURL string `json:"session_url"`
}

type RatingRequest struct {
	CourseID string `json:"course_id" validate:"required"`
	Value    int32  `json:"value" validate:"required"`
}

// --- progress ---

type ProgressRequest struct {
	CourseID  string `json:"course_id" validate:"required"`
	LectureID string `json:"lecture_id" validate:"required"`
}

type ProgressView struct {
	CourseID          string   `json:"course_id"`
	CompletedLectures []string `json:"completed_lectures"`
	Completed         bool     `json:"completed"`
}

// --- educator aggregates ---

type StudentView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

type EnrollmentEntry struct {
	Student     StudentView `json:"student"`
	CourseTitle string      `json:"course_title"`
	PurchasedAt time.Time   `json:"purchased_at"`
}

type DashboardData struct {
	TotalCourses       int                `json:"total_courses"`
	TotalEnrollments   int                `json:"total_enrollments"`
	TotalEarningsCents int64              `json:"total_earnings_cents"`
	LatestEnrollments  []*EnrollmentEntry `json:"latest_enrollments"`
}

type CourseEarnings struct {
	Course        CourseSummary `json:"course"`
	IsPublished   bool          `json:"is_published"`
	EarningsCents int64         `json:"earnings_cents"`
}

// --- identity sync ---

type UserView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Role     string `json:"role"`
}
