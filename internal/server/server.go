package server

import (
	"errors"
	"net/http"

	"edemy-backend/internal/apperr"
	"edemy-backend/internal/handler"
	appmw "edemy-backend/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo            *echo.Echo
	courseHandler   *handler.CourseHandler
	userHandler     *handler.UserHandler
	educatorHandler *handler.EducatorHandler
	paymentHandler  *handler.PaymentHandler
	jwtSecret       string
}

func NewServer(
	courseHandler *handler.CourseHandler,
	userHandler *handler.UserHandler,
	educatorHandler *handler.EducatorHandler,
	paymentHandler *handler.PaymentHandler,
	jwtSecret string,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = &requestValidator{validate: validator.New()}
	e.HTTPErrorHandler = httpErrorHandler(e)

	s := &Server{
		echo:            e,
		courseHandler:   courseHandler,
		userHandler:     userHandler,
		educatorHandler: educatorHandler,
		paymentHandler:  paymentHandler,
		jwtSecret:       jwtSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- public catalogue --------
	courses := api.Group("/courses")
	courses.GET("", s.courseHandler.List)
	courses.GET("/featured", s.courseHandler.Featured)
	courses.GET("/:id", s.courseHandler.Get, appmw.OptionalAuth(s.jwtSecret))

	// -------- authenticated user --------
	users := api.Group("/users", appmw.Auth(s.jwtSecret))
	users.GET("/me", s.userHandler.Me)
	users.POST("/sync", s.userHandler.Sync)
	users.GET("/enrolled-courses", s.userHandler.EnrolledCourses)
	users.POST("/purchase", s.userHandler.Purchase)
	users.POST("/enroll-free", s.userHandler.EnrollFree)
	users.POST("/progress", s.userHandler.MarkProgress)
	users.GET("/progress", s.userHandler.AllProgress)
	users.GET("/progress/:courseId", s.userHandler.Progress)
	users.POST("/rating", s.userHandler.AddRating)

	// -------- educator --------
	educators := api.Group("/educators", appmw.Auth(s.jwtSecret), appmw.RequireEducator())
	educators.POST("/courses", s.educatorHandler.CreateCourse)
	educators.PATCH("/courses/:id/publish", s.educatorHandler.PublishCourse)
	educators.GET("/courses", s.educatorHandler.Courses)
	educators.GET("/dashboard", s.educatorHandler.Dashboard)
	educators.GET("/enrolled-students", s.educatorHandler.EnrolledStudents)

	// -------- payment callbacks --------
	api.POST("/payments/webhook", s.paymentHandler.Webhook)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// httpErrorHandler maps business outcomes onto HTTP statuses; anything
// unrecognized is an unexpected storage failure and stays a 500.
func httpErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperr.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.Is(err, apperr.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, apperr.ErrAlreadyEnrolled), errors.Is(err, apperr.ErrConflict):
			status = http.StatusConflict
		case errors.Is(err, apperr.ErrInvalidState):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, apperr.ErrRateLimited):
			status = http.StatusTooManyRequests
		default:
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				e.DefaultHTTPErrorHandler(err, c)
				return
			}
		}

		_ = c.JSON(status, map[string]string{"error": err.Error()})
	}
}
