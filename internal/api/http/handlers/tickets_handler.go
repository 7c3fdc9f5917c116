package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/dopaj/field-service/internal/api/dto"
	"github.com/dopaj/field-service/internal/auth"
	"github.com/dopaj/field-service/internal/domain"
	"github.com/dopaj/field-service/internal/service"
	apperrors "github.com/dopaj/field-service/pkg/util/errorutil"
)

// TicketsHandler manages the service-order endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService}
}

// Create POST /tickets. Admin only (enforced on the route).
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("body", "invalid payload")
	}
	ticket, err := h.tickets.Create(c.Context(), principal.User, service.TicketDraft{
		Folio:             req.Folio,
		ReportFolio:       req.ReportFolio,
		SerialNumber:      req.SerialNumber,
		Model:             req.Model,
		ClientName:        req.ClientName,
		ResponsiblePerson: req.ResponsiblePerson,
		Phone:             req.Phone,
		Description:       req.Description,
		EngineerID:        req.EngineerID,
		ServiceSheetURL:   req.ServiceSheetURL,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// List GET /tickets?status=. Engineers get only their own assignments.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var status *domain.TicketStatus
	if raw := c.Query("status"); raw != "" && raw != "All" {
		s := domain.TicketStatus(raw)
		status = &s
	}
	tickets, err := h.tickets.List(c.Context(), principal.User, status)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.tickets.Get(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// UpdateProgress PATCH /tickets/:id/progress.
func (h *TicketsHandler) UpdateProgress(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("body", "invalid payload")
	}
	ticket, err := h.tickets.UpdateProgress(c.Context(), principal.User, c.Params("id"), service.ProgressInput{
		Status:          req.Status,
		FailureLocated:  req.FailureLocated,
		SolutionApplied: req.SolutionApplied,
		Observations:    req.Observations,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// AttachEvidence POST /tickets/:id/evidence (multipart field "photo").
func (h *TicketsHandler) AttachEvidence(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	photo, err := readPhoto(c, "photo")
	if err != nil {
		return err
	}
	ticket, err := h.tickets.AttachEvidence(c.Context(), principal.User, c.Params("id"), *photo)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// AttachReportEvidence POST /tickets/:id/report-evidence.
func (h *TicketsHandler) AttachReportEvidence(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	photo, err := readPhoto(c, "photo")
	if err != nil {
		return err
	}
	ticket, err := h.tickets.AttachReportEvidence(c.Context(), principal.User, c.Params("id"), *photo)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// Close POST /tickets/:id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CloseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("body", "invalid payload")
	}
	ticket, err := h.tickets.Close(c.Context(), principal.User, c.Params("id"), service.ClosureInput{
		FailureLocated:  req.FailureLocated,
		SolutionApplied: req.SolutionApplied,
		Observations:    req.Observations,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// Assign POST /tickets/:id/assign. Admin only (enforced on the route).
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("body", "invalid payload")
	}
	ticket, err := h.tickets.Reassign(c.Context(), principal.User, c.Params("id"), req.EngineerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// DownloadEvidence GET /tickets/:id/evidence/:index/download.
func (h *TicketsHandler) DownloadEvidence(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.tickets.Get(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil || index < 0 || index >= len(ticket.EvidencePhotos) {
		return apperrors.NewNotFound("evidence photo", map[string]any{"index": c.Params("index")})
	}
	photo := ticket.EvidencePhotos[index]
	return sendPhoto(c, photo, fmt.Sprintf("Evidencia_%s_%d%s", ticket.Folio, index+1, extensionFor(photo.MimeType)))
}

// DownloadReportEvidence GET /tickets/:id/report-evidence/download.
func (h *TicketsHandler) DownloadReportEvidence(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.tickets.Get(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	if ticket.ReportEvidence == nil {
		return apperrors.NewNotFound("report evidence", map[string]any{"folio": ticket.Folio})
	}
	return sendPhoto(c, *ticket.ReportEvidence, fmt.Sprintf("Reporte_Firmado_%s%s", ticket.Folio, extensionFor(ticket.ReportEvidence.MimeType)))
}

// ServiceSheet GET /tickets/:id/service-sheet. The sheet is an opaque
// reference passed through unchanged; only the download name is ours.
func (h *TicketsHandler) ServiceSheet(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.tickets.Get(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	if ticket.ServiceSheetURL == "" {
		return apperrors.NewNotFound("service sheet", map[string]any{"folio": ticket.Folio})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"url":       ticket.ServiceSheetURL,
		"file_name": fmt.Sprintf("Reporte_%s.pdf", ticket.Folio),
	}})
}

func readPhoto(c *fiber.Ctx, field string) (*domain.EvidencePhoto, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, apperrors.NewValidationError(field, "photo file is required")
	}
	file, err := header.Open()
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &domain.EvidencePhoto{
		FileName: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

func sendPhoto(c *fiber.Ctx, photo domain.EvidencePhoto, filename string) error {
	c.Set(fiber.HeaderContentType, photo.MimeType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(photo.Data)
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}

func ticketSummary(t *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:           t.ID,
		Folio:        t.Folio,
		ClientName:   t.ClientName,
		Model:        t.Model,
		Description:  t.Description,
		EngineerID:   t.EngineerID,
		EngineerName: t.EngineerName,
		Status:       t.Status,
		AssignedAt:   t.AssignedAt,
		AttendedAt:   t.AttendedAt,
		CreatedAt:    t.CreatedAt,
	}
}

func ticketDetail(t *domain.Ticket) dto.TicketDetail {
	detail := dto.TicketDetail{
		ID:                t.ID,
		Folio:             t.Folio,
		ReportFolio:       t.ReportFolio,
		SerialNumber:      t.SerialNumber,
		Model:             t.Model,
		ClientName:        t.ClientName,
		ResponsiblePerson: t.ResponsiblePerson,
		Phone:             t.Phone,
		Description:       t.Description,
		EngineerID:        t.EngineerID,
		EngineerName:      t.EngineerName,
		Status:            t.Status,
		AssignedAt:        t.AssignedAt,
		AttendedAt:        t.AttendedAt,
		FailureLocated:    t.FailureLocated,
		SolutionApplied:   t.SolutionApplied,
		Observations:      t.Observations,
		ServiceSheetURL:   t.ServiceSheetURL,
		EvidencePhotos:    make([]dto.PhotoResponse, 0, len(t.EvidencePhotos)),
		Closed:            t.Closed(),
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
	for _, photo := range t.EvidencePhotos {
		detail.EvidencePhotos = append(detail.EvidencePhotos, photoResponse(photo))
	}
	if t.ReportEvidence != nil {
		p := photoResponse(*t.ReportEvidence)
		detail.ReportEvidence = &p
	}
	if t.ClosureLocation != nil {
		detail.ClosureLocation = &dto.GeoPointResponse{
			Latitude:  t.ClosureLocation.Latitude,
			Longitude: t.ClosureLocation.Longitude,
			Timestamp: t.ClosureLocation.Timestamp,
		}
	}
	return detail
}

func photoResponse(photo domain.EvidencePhoto) dto.PhotoResponse {
	return dto.PhotoResponse{
		FileName:   photo.FileName,
		MimeType:   photo.MimeType,
		SizeBytes:  len(photo.Data),
		UploadedAt: photo.UploadedAt,
	}
}
