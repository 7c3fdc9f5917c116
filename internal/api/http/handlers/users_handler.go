package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/dopaj/field-service/internal/api/dto"
	"github.com/dopaj/field-service/internal/auth"
	"github.com/dopaj/field-service/internal/service"
	apperrors "github.com/dopaj/field-service/pkg/util/errorutil"
)

// UsersHandler manages the admin-only directory endpoints.
type UsersHandler struct {
	directory *service.DirectoryService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(directory *service.DirectoryService) *UsersHandler {
	return &UsersHandler{directory: directory}
}

// List GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.directory.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Engineers GET /users/engineers, for the assignment picker.
func (h *UsersHandler) Engineers(c *fiber.Ctx) error {
	engineers, err := h.directory.Engineers(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(engineers))
	for i := range engineers {
		items = append(items, dto.NewUserResponse(&engineers[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("body", "invalid payload")
	}
	user, err := h.directory.Add(c.Context(), service.UserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Update PUT /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("body", "invalid payload")
	}
	user, err := h.directory.Update(c.Context(), c.Params("id"), service.UserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Delete DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.directory.Delete(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
