package handler

import (
	"net/http"

	"edemy-backend/internal/dto"
	"edemy-backend/internal/middleware"
	"edemy-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type EducatorHandler struct {
	courseService   service.CourseService
	educatorService service.EducatorService
}

func NewEducatorHandler(courseService service.CourseService, educatorService service.EducatorService) *EducatorHandler {
	return &EducatorHandler{
		courseService:   courseService,
		educatorService: educatorService,
	}
}

func (h *EducatorHandler) CreateCourse(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateCourseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	course, err := h.courseService.Create(ctx, middleware.UserID(c), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, course)
}

func (h *EducatorHandler) PublishCourse(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.courseService.Publish(ctx, middleware.UserID(c), c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "course published"})
}

func (h *EducatorHandler) Courses(c echo.Context) error {
	ctx := c.Request().Context()

	courses, err := h.educatorService.CoursesWithEarnings(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, courses)
}

func (h *EducatorHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	data, err := h.educatorService.Dashboard(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, data)
}

func (h *EducatorHandler) EnrolledStudents(c echo.Context) error {
	ctx := c.Request().Context()

	students, err := h.educatorService.EnrolledStudents(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, students)
}
