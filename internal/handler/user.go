package handler

import (
	"errors"
	"net/http"

	"edemy-backend/internal/apperr"
	"edemy-backend/internal/dto"
	"edemy-backend/internal/middleware"
	"edemy-backend/internal/model"
	"edemy-backend/internal/repository"
	"edemy-backend/internal/service"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type UserHandler struct {
	userRepo        repository.UserRepository
	courseService   service.CourseService
	purchaseService service.PurchaseService
	progressService service.ProgressService
}

func NewUserHandler(
	userRepo repository.UserRepository,
	courseService service.CourseService,
	purchaseService service.PurchaseService,
	progressService service.ProgressService,
) *UserHandler {
	return &UserHandler{
		userRepo:        userRepo,
		courseService:   courseService,
		purchaseService: purchaseService,
		progressService: progressService,
	}
}

func (h *UserHandler) Me(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.userRepo.FindByID(ctx, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}

	return c.JSON(http.StatusOK, &dto.UserView{
		ID:       user.ID,
		Name:     user.Name,
		ImageURL: user.ImageURL,
		Role:     user.Role,
	})
}

// Sync upserts the profile fields carried in the identity token. The client
// calls it once after login so aggregates can join display names later.
func (h *UserHandler) Sync(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UserView
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	// the role comes from the verified token claim, never the request body
	role := middleware.Role(c)
	if role == "" {
		role = model.RoleStudent
	}

	err := h.userRepo.Upsert(ctx, &model.User{
		ID:       middleware.UserID(c),
		Name:     req.Name,
		ImageURL: req.ImageURL,
		Role:     role,
	})
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) EnrolledCourses(c echo.Context) error {
	ctx := c.Request().Context()

	courses, err := h.courseService.EnrolledCourses(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, courses)
}

func (h *UserHandler) Purchase(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PurchaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	origin := c.Request().Header.Get("Origin")
	result, err := h.purchaseService.Initiate(ctx, middleware.UserID(c), req.CourseID, origin)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *UserHandler) EnrollFree(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PurchaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.purchaseService.EnrollFree(ctx, middleware.UserID(c), req.CourseID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "enrolled"})
}

func (h *UserHandler) MarkProgress(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ProgressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.progressService.MarkLectureComplete(ctx, middleware.UserID(c), req.CourseID, req.LectureID)
	if errors.Is(err, apperr.ErrAlreadyCompleted) {
		// benign repeat, not a failure
		return c.JSON(http.StatusOK, map[string]string{"message": "lecture already completed"})
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "progress updated"})
}

func (h *UserHandler) Progress(c echo.Context) error {
	ctx := c.Request().Context()

	progress, err := h.progressService.Progress(ctx, middleware.UserID(c), c.Param("courseId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, progress)
}

func (h *UserHandler) AllProgress(c echo.Context) error {
	ctx := c.Request().Context()

	progress, err := h.progressService.AllProgress(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, progress)
}

func (h *UserHandler) AddRating(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RatingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.courseService.AddRating(ctx, middleware.UserID(c), req.CourseID, req.Value); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "rating added"})
}
