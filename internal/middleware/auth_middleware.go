package middleware

import (
	"errors"
	"strings"

	"storefront-cache/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	AdminSubjectKey     = "adminSubject" // Key for storing the token subject in fiber.Ctx locals

	RoleAdmin = "admin"
)

// AdminClaims are the claims carried by an admin bearer token.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminOnly protects the admin API. It requires an HS256 bearer token signed
// with secret whose role claim is "admin". An empty secret disables the API.
func AdminOnly(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
				Code:    "ADMIN_DISABLED",
				Message: "Admin API is disabled",
				Status:  fiber.StatusForbidden,
			})
		}

		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "MISSING_AUTH_HEADER",
				Message: "Authorization header is missing",
				Status:  fiber.StatusUnauthorized,
			})
		}

		if !strings.HasPrefix(authHeader, BearerSchema) {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "INVALID_AUTH_SCHEME",
				Message: "Authorization scheme is not Bearer",
				Status:  fiber.StatusUnauthorized,
			})
		}

		tokenString := strings.TrimPrefix(authHeader, BearerSchema)
		claims := &AdminClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			logger.Get().Debug("Admin token rejected", zap.Error(err))
			code := "INVALID_TOKEN"
			if errors.Is(err, jwt.ErrTokenExpired) {
				code = "TOKEN_EXPIRED"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    code,
				Message: "Invalid or expired token",
				Status:  fiber.StatusUnauthorized,
			})
		}

		if claims.Role != RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "Admin role required",
				Status:  fiber.StatusForbidden,
			})
		}

		c.Locals(AdminSubjectKey, claims.Subject)
		return c.Next()
	}
}
