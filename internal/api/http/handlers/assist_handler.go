package handlers

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/dopaj/field-service/internal/api/dto"
	"github.com/dopaj/field-service/internal/assist"
	apperrors "github.com/dopaj/field-service/pkg/util/errorutil"
)

const manualEntryAdvisory = "Asistente no disponible. Capture los datos manualmente."

// AssistHandler fronts the best-effort AI adapter. Adapter failures are
// swallowed here and surfaced as a soft advisory with empty data; they
// never become 5xx responses.
type AssistHandler struct {
	client *assist.Client
	logger *zap.Logger
}

// NewAssistHandler constructs handler.
func NewAssistHandler(client *assist.Client, logger *zap.Logger) *AssistHandler {
	return &AssistHandler{client: client, logger: logger}
}

// Extract POST /assist/extract (multipart field "document").
func (h *AssistHandler) Extract(c *fiber.Ctx) error {
	header, err := c.FormFile("document")
	if err != nil {
		return apperrors.NewValidationError("document", "document file is required")
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.MapError(err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return apperrors.MapError(err)
	}

	fields, err := h.client.ExtractDocument(c.Context(), data, header.Header.Get("Content-Type"))
	if err != nil {
		h.logger.Warn("document extraction degraded", zap.Error(err))
		return c.JSON(fiber.Map{"data": dto.ExtractionResponse{Message: manualEntryAdvisory}})
	}
	return c.JSON(fiber.Map{"data": dto.ExtractionResponse{Fields: fields}})
}

// Suggestions POST /assist/suggestions.
func (h *AssistHandler) Suggestions(c *fiber.Ctx) error {
	var req dto.SuggestionsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("body", "invalid payload")
	}
	if strings.TrimSpace(req.Failure) == "" {
		return apperrors.NewValidationError("failure", "failure description is required")
	}

	suggestions, err := h.client.SuggestSolutions(c.Context(), req.Failure)
	if err != nil {
		h.logger.Warn("diagnostic assist degraded", zap.Error(err))
		return c.JSON(fiber.Map{"data": dto.SuggestionsResponse{Suggestions: []string{}, Message: manualEntryAdvisory}})
	}
	return c.JSON(fiber.Map{"data": dto.SuggestionsResponse{Suggestions: suggestions}})
}

// Summary POST /assist/summary.
func (h *AssistHandler) Summary(c *fiber.Ctx) error {
	var req dto.SummaryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("body", "invalid payload")
	}
	if strings.TrimSpace(req.Failure) == "" {
		return apperrors.NewValidationError("failure", "failure description is required")
	}

	summary, err := h.client.SummarizeReport(c.Context(), req.Failure, req.Solution)
	if err != nil {
		h.logger.Warn("summary assist degraded", zap.Error(err))
		return c.JSON(fiber.Map{"data": dto.SummaryResponse{Message: manualEntryAdvisory}})
	}
	return c.JSON(fiber.Map{"data": dto.SummaryResponse{Summary: summary}})
}
