package handler

import (
	"net/http"

	"edemy-backend/internal/middleware"
	"edemy-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type CourseHandler struct {
	courseService service.CourseService
}

func NewCourseHandler(courseService service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

func (h *CourseHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	courses, err := h.courseService.ListPublished(ctx, c.QueryParam("search"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, courses)
}

func (h *CourseHandler) Featured(c echo.Context) error {
	ctx := c.Request().Context()

	courses, err := h.courseService.Featured(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, courses)
}

func (h *CourseHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	view, err := h.courseService.Get(ctx, c.Param("id"), middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, view)
}
