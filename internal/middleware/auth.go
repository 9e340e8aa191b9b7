package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"edemy-backend/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// Auth verifies the bearer token issued by the identity provider and threads
// the opaque user id and role claim into the request context. This service
// never authenticates; it only trusts verified claims.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := parseClaims(c, jwtSecret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			c.Set(ContextUserID, claims.Subject)
			c.Set(ContextRole, claims.Role)
			return next(c)
		}
	}
}

// OptionalAuth extracts identity when a token is present but lets anonymous
// requests through; the course read path treats those viewers as neither
// enrolled nor owner.
func OptionalAuth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				return next(c)
			}

			claims, err := parseClaims(c, jwtSecret)
			if err != nil {
				return next(c)
			}

			c.Set(ContextUserID, claims.Subject)
			c.Set(ContextRole, claims.Role)
			return next(c)
		}
	}
}

// RequireEducator gates educator-only routes on the role claim.
func RequireEducator() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if role, _ := c.Get(ContextRole).(string); role != model.RoleEducator {
				return echo.NewHTTPError(http.StatusForbidden, "educator role required")
			}
			return next(c)
		}
	}
}

// UserID returns the authenticated user id, empty for anonymous requests.
func UserID(c echo.Context) string {
	id, _ := c.Get(ContextUserID).(string)
	return id
}

// Role returns the verified role claim, empty for anonymous requests.
func Role(c echo.Context) string {
	role, _ := c.Get(ContextRole).(string)
	return role
}

type identityClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

func parseClaims(c echo.Context, jwtSecret string) (*identityClaims, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, fmt.Errorf("missing or invalid Authorization header")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	claims := &identityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
