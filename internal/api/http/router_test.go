package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dopaj/field-service/internal/api/http/handlers"
	"github.com/dopaj/field-service/internal/assist"
	"github.com/dopaj/field-service/internal/auth"
	"github.com/dopaj/field-service/internal/config"
	"github.com/dopaj/field-service/internal/domain"
	"github.com/dopaj/field-service/internal/observability"
	"github.com/dopaj/field-service/internal/repository"
	"github.com/dopaj/field-service/internal/service"
)

type apiFixture struct {
	app      *fiber.App
	admin    *domain.User
	engineer *domain.User
	other    *domain.User
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	logger := zap.NewNop()
	tickets := repository.NewMemoryTicketRepository()
	users := repository.NewMemoryUserRepository()

	hash, err := auth.HashPassword("secreto", bcrypt.MinCost)
	require.NoError(t, err)
	admin := &domain.User{ID: uuid.NewString(), Email: "admin@dopaj.com", Name: "Admin Principal", Role: domain.RoleAdmin, PasswordHash: hash, Protected: true}
	engineer := &domain.User{ID: uuid.NewString(), Email: "juan.perez@dopaj.com", Name: "Juan Pérez", Role: domain.RoleEngineer, PasswordHash: hash}
	other := &domain.User{ID: uuid.NewString(), Email: "maria.gomez@dopaj.com", Name: "María Gómez", Role: domain.RoleEngineer, PasswordHash: hash}
	for _, u := range []*domain.User{admin, engineer, other} {
		require.NoError(t, users.Create(context.Background(), u))
	}

	authCfg := config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		LoginRatePerMinute:    600,
		LoginBurst:            100,
	}
	revoked := auth.NewMemoryRevocationList()
	authService := service.NewAuthService(authCfg, service.AuthDependencies{
		UserRepo:       users,
		RevocationList: revoked,
		Logger:         logger,
	})
	directoryService := service.NewDirectoryService(users, bcrypt.MinCost, nil)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: tickets,
		UserRepo:   users,
		GeoTimeout: time.Second,
		Logger:     logger,
	})
	statsService := service.NewStatsService(tickets)
	assistClient := assist.NewClient(config.AssistConfig{Model: "gemini-3-flash-preview"}, logger)

	app := fiber.New()
	RegisterMiddlewares(app, logger, observability.NewMetrics(), 10*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(directoryService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Dashboard:      handlers.NewDashboardHandler(statsService),
		Assist:         handlers.NewAssistHandler(assistClient, logger),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), users, revoked),
	})

	return &apiFixture{app: app, admin: admin, engineer: engineer, other: other}
}

func (f *apiFixture) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := f.app.Test(req, 10000)
	require.NoError(t, err)
	return resp
}

func (f *apiFixture) login(t *testing.T, email string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":"secreto"}`, email)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := f.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.NotEmpty(t, parsed.Data.Token)
	return parsed.Data.Token
}

func jsonRequest(method, target, token, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeError(t *testing.T, resp *http.Response) (code string, details map[string]any) {
	t.Helper()
	var parsed struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return parsed.Error.Code, parsed.Error.Details
}

func (f *apiFixture) createTicket(t *testing.T, token, folio, engineerID string) string {
	t.Helper()
	body := fmt.Sprintf(`{"folio":%q,"serialNumber":"33005460","model":"MXB376WH","clientName":"CFE","description":"Atasco de papel","engineerId":%q}`, folio, engineerID)
	resp := f.do(t, jsonRequest(http.MethodPost, "/tickets", token, body))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var parsed struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return parsed.Data.ID
}

func (f *apiFixture) uploadReportEvidence(t *testing.T, token, ticketID string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("photo", "reporte.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte{0xff, 0xd8, 0xff})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/tickets/"+ticketID+"/report-evidence", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp := f.do(t, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestHealthEndpointsArePublic(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newAPIFixture(t)

	req := jsonRequest(http.MethodPost, "/auth/login", "", `{"email":"admin@dopaj.com","password":"incorrecta"}`)
	resp := f.do(t, req)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	code, _ := decodeError(t, resp)
	assert.Equal(t, "INVALID_CREDENTIALS", code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, jsonRequest(http.MethodGet, "/tickets", "", ""))

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	code, _ := decodeError(t, resp)
	assert.Equal(t, "UNAUTHORIZED", code)
}

func TestAdminRoutesRejectEngineers(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t, f.engineer.Email)

	resp := f.do(t, jsonRequest(http.MethodGet, "/dashboard/stats", token, ""))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, jsonRequest(http.MethodPost, "/tickets", token, `{"folio":"FL-1","engineerId":"x"}`))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCreateTicketValidationEnvelope(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t, f.admin.Email)

	resp := f.do(t, jsonRequest(http.MethodPost, "/tickets", token, fmt.Sprintf(`{"engineerId":%q}`, f.engineer.ID)))

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	code, details := decodeError(t, resp)
	assert.Equal(t, "VALIDATION_FAILED", code)
	assert.Equal(t, "folio", details["field"])
}

func TestEngineerSeesOnlyOwnTickets(t *testing.T) {
	f := newAPIFixture(t)
	adminToken := f.login(t, f.admin.Email)
	f.createTicket(t, adminToken, "FL-1", f.engineer.ID)
	f.createTicket(t, adminToken, "FL-2", f.other.ID)

	token := f.login(t, f.engineer.Email)
	resp := f.do(t, jsonRequest(http.MethodGet, "/tickets", token, ""))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Data []struct {
			Folio string `json:"folio"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.Len(t, parsed.Data, 1)
	assert.Equal(t, "FL-1", parsed.Data[0].Folio)
}

func TestClosureFlowOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	adminToken := f.login(t, f.admin.Email)
	ticketID := f.createTicket(t, adminToken, "FL040283", f.engineer.ID)
	token := f.login(t, f.engineer.Email)

	// Without the signed report the closure is refused.
	resp := f.do(t, jsonRequest(http.MethodPost, "/tickets/"+ticketID+"/close", token, `{"solutionApplied":"Se reemplazó el fusor"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	code, _ := decodeError(t, resp)
	assert.Equal(t, "MISSING_REQUIRED_EVIDENCE", code)

	f.uploadReportEvidence(t, token, ticketID)

	resp = f.do(t, jsonRequest(http.MethodPost, "/tickets/"+ticketID+"/close", token, `{"failureLocated":"Fusor dañado","solutionApplied":"Se reemplazó el fusor"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var parsed struct {
		Data struct {
			Status domain.TicketStatus `json:"status"`
			Closed bool                `json:"closed"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	assert.Equal(t, domain.StatusClosed, parsed.Data.Status)
	assert.True(t, parsed.Data.Closed)

	// The signed report downloads under its printed name.
	resp = f.do(t, jsonRequest(http.MethodGet, "/tickets/"+ticketID+"/report-evidence/download", token, ""))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Reporte_Firmado_FL040283")

	// A closed ticket rejects further edits.
	resp = f.do(t, jsonRequest(http.MethodPatch, "/tickets/"+ticketID+"/progress", token, `{"observations":"extra"}`))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t, f.engineer.Email)

	resp := f.do(t, jsonRequest(http.MethodPost, "/auth/logout", token, ""))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, jsonRequest(http.MethodGet, "/tickets", token, ""))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAssistDegradesToManualEntry(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t, f.engineer.Email)

	resp := f.do(t, jsonRequest(http.MethodPost, "/assist/suggestions", token, `{"failure":"atasco de papel"}`))

	// No API key configured: the endpoint still answers 200 with advice
	// to fall back to manual capture.
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var parsed struct {
		Data struct {
			Suggestions []string `json:"suggestions"`
			Message     string   `json:"message"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	assert.Empty(t, parsed.Data.Suggestions)
	assert.NotEmpty(t, parsed.Data.Message)
}

func TestDashboardStats(t *testing.T) {
	f := newAPIFixture(t)
	adminToken := f.login(t, f.admin.Email)
	f.createTicket(t, adminToken, "FL-1", f.engineer.ID)
	f.createTicket(t, adminToken, "FL-2", f.other.ID)

	resp := f.do(t, jsonRequest(http.MethodGet, "/dashboard/stats", adminToken, ""))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Data struct {
			TotalTickets   int            `json:"total_tickets"`
			PendingTickets int            `json:"pending_tickets"`
			ByStatus       map[string]int `json:"by_status"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	assert.Equal(t, 2, parsed.Data.TotalTickets)
	assert.Equal(t, 2, parsed.Data.PendingTickets)
	assert.Equal(t, 2, parsed.Data.ByStatus[string(domain.StatusPendingAttention)])
	assert.Equal(t, 0, parsed.Data.ByStatus[string(domain.StatusClosed)])
}
