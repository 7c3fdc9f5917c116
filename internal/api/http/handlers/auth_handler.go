package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dopaj/field-service/internal/api/dto"
	"github.com/dopaj/field-service/internal/service"
	apperrors "github.com/dopaj/field-service/pkg/util/errorutil"
)

// AuthHandler manages login and logout.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("body", "invalid payload")
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email", "login identifier is required")
	}
	if req.Password == "" {
		return apperrors.NewValidationError("password", "password is required")
	}

	user, token, expiresAt, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.NewUserResponse(user),
	}})
}

// Logout POST /auth/logout. Clears the session unconditionally.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 {
		if err := h.auth.Logout(c.Context(), parts[1]); err != nil {
			return err
		}
	}
	return c.SendStatus(http.StatusNoContent)
}
