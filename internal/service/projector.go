package service

import (
	"edemy-backend/internal/dto"
	"edemy-backend/internal/model"
)

// ProjectCourse builds the viewer-specific view of a course. It is a pure
// function of the course snapshot, its enrolled set and the viewer identity:
// the stored entity is never mutated. A lecture's content URL survives the
// projection only when the lecture is preview-free, the viewer is enrolled, or
// the viewer owns the course. An empty viewerID means unauthenticated.
func ProjectCourse(course *model.Course, enrolledUserIDs []string, viewerID string) *dto.CourseView {
	isOwner := viewerID != "" && viewerID == course.EducatorID

	isEnrolled := false
	if viewerID != "" {
		for _, id := range enrolledUserIDs {
			if id == viewerID {
				isEnrolled = true
				break
			}
		}
	}

	chapters := make([]dto.ChapterView, len(course.Chapters))
	for i, ch := range course.Chapters {
		lectures := make([]dto.LectureView, len(ch.Lectures))
		for j, lec := range ch.Lectures {
			url := lec.ContentURL
			if !lec.IsPreviewFree && !isEnrolled && !isOwner {
				url = ""
			}
			lectures[j] = dto.LectureView{
				ID:              lec.ID,
				Position:        lec.Position,
				Title:           lec.Title,
				DurationMinutes: lec.DurationMinutes,
				ContentURL:      url,
				IsPreviewFree:   lec.IsPreviewFree,
			}
		}
		chapters[i] = dto.ChapterView{
			ID:       ch.ID,
			Position: ch.Position,
			Title:    ch.Title,
			Lectures: lectures,
		}
	}

	ratings := make([]dto.RatingView, len(course.Ratings))
	for i, r := range course.Ratings {
		ratings[i] = dto.RatingView{UserID: r.UserID, Value: r.Value}
	}

	return &dto.CourseView{
		ID:              course.ID,
		Title:           course.Title,
		Description:     course.Description,
		ThumbnailURL:    course.ThumbnailURL,
		PriceCents:      course.PriceCents,
		DiscountPercent: course.DiscountPercent,
		EffectiveCents:  course.EffectivePriceCents(),
		EducatorID:      course.EducatorID,
		IsPublished:     course.IsPublished,
		Chapters:        chapters,
		Ratings:         ratings,
		EnrolledCount:   len(enrolledUserIDs),
		CreatedAt:       course.CreatedAt,
	}
}

// SummarizeCourse is the catalogue projection: content and enrollment sets are
// stripped entirely, only display and pricing fields remain.
func SummarizeCourse(course *model.Course) *dto.CourseSummary {
	ratings := make([]dto.RatingView, len(course.Ratings))
	for i, r := range course.Ratings {
		ratings[i] = dto.RatingView{UserID: r.UserID, Value: r.Value}
	}

	return &dto.CourseSummary{
		ID:              course.ID,
		Title:           course.Title,
		Description:     course.Description,
		ThumbnailURL:    course.ThumbnailURL,
		PriceCents:      course.PriceCents,
		DiscountPercent: course.DiscountPercent,
		EffectiveCents:  course.EffectivePriceCents(),
		EducatorID:      course.EducatorID,
		Ratings:         ratings,
		CreatedAt:       course.CreatedAt,
	}
}
