package assist

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	cache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/dopaj/field-service/internal/config"
	apperrors "github.com/dopaj/field-service/pkg/util/errorutil"
)

// Extraction holds the ticket fields read out of an uploaded service
// report. Zero values mean the model could not find the field; the form
// stays editable either way.
type Extraction struct {
	Folio             string `json:"folio"`
	ReportFolio       string `json:"reportFolio"`
	SerialNumber      string `json:"serialNumber"`
	Model             string `json:"model"`
	ClientName        string `json:"clientName"`
	ResponsiblePerson string `json:"responsiblePerson"`
	Phone             string `json:"phone"`
	Description       string `json:"description"`
}

// Client talks to the generative endpoint. Every method is best-effort:
// callers degrade to manual entry on error, nothing here is required for
// ticket correctness.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	suggestions *cache.Cache
	logger      *zap.Logger
}

// NewClient builds the adapter from configuration.
func NewClient(cfg config.AssistConfig, logger *zap.Logger) *Client {
	var suggestionCache *cache.Cache
	if ttl := cfg.SuggestionCacheTTL(); ttl > 0 {
		suggestionCache = cache.New(ttl, 2*ttl)
	}
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout()},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		suggestions: suggestionCache,
		logger:      logger,
	}
}

// Enabled reports whether an API key was configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type generateRequest struct {
	Contents         []content       `json:"contents"`
	GenerationConfig *generateConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   any     `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

var extractionSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"folio":             map[string]any{"type": "STRING"},
		"reportFolio":       map[string]any{"type": "STRING"},
		"serialNumber":      map[string]any{"type": "STRING"},
		"model":             map[string]any{"type": "STRING"},
		"clientName":        map[string]any{"type": "STRING"},
		"responsiblePerson": map[string]any{"type": "STRING"},
		"phone":             map[string]any{"type": "STRING"},
		"description":       map[string]any{"type": "STRING"},
	},
}

var suggestionSchema = map[string]any{
	"type":  "ARRAY",
	"items": map[string]any{"type": "STRING"},
}

// ExtractDocument reads ticket fields out of an uploaded image or PDF.
// Low temperature keeps the extraction deterministic.
func (c *Client) ExtractDocument(ctx context.Context, data []byte, mimeType string) (Extraction, error) {
	var out Extraction
	prompt := "Extrae los datos de esta orden de servicio de impresora. " +
		"Devuelve folio, reportFolio, serialNumber, model, clientName, responsiblePerson, phone y description. " +
		"Usa cadena vacía para los campos que no aparezcan en el documento."
	req := generateRequest{
		Contents: []content{{Parts: []part{
			{Text: prompt},
			{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(data)}},
		}}},
		GenerationConfig: &generateConfig{
			Temperature:      0.1,
			ResponseMimeType: "application/json",
			ResponseSchema:   extractionSchema,
		},
	}
	text, err := c.generate(ctx, req)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &out); err != nil {
		return Extraction{}, apperrors.NewExternalServiceUnavailable(fmt.Errorf("unparseable extraction response: %w", err))
	}
	return out, nil
}

// SuggestSolutions returns the three most common remediation steps for a
// reported failure. Repeated queries are served from cache.
func (c *Client) SuggestSolutions(ctx context.Context, failure string) ([]string, error) {
	if c.suggestions != nil {
		if cached, ok := c.suggestions.Get(failure); ok {
			if steps, ok := cached.([]string); ok {
				return steps, nil
			}
		}
	}

	prompt := fmt.Sprintf("Un ingeniero reporta la siguiente falla en una impresora: %s. "+
		"Sugiere los 3 pasos de solución más comunes basados en mejores prácticas de mantenimiento preventivo y correctivo.", failure)
	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generateConfig{
			Temperature:      0.6,
			ResponseMimeType: "application/json",
			ResponseSchema:   suggestionSchema,
		},
	}
	text, err := c.generate(ctx, req)
	if err != nil {
		return nil, err
	}
	var steps []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &steps); err != nil {
		return nil, apperrors.NewExternalServiceUnavailable(fmt.Errorf("unparseable suggestions response: %w", err))
	}
	if c.suggestions != nil {
		c.suggestions.SetDefault(failure, steps)
	}
	return steps, nil
}

// SummarizeReport produces a short executive summary of a diagnosis and
// its solution for the closed service report.
func (c *Client) SummarizeReport(ctx context.Context, failure, solution string) (string, error) {
	prompt := fmt.Sprintf("Eres un experto en soporte técnico de impresoras. "+
		"Resume el siguiente diagnóstico y solución para un reporte ejecutivo de máximo 2 párrafos:\nFalla: %s\nSolución: %s", failure, solution)
	req := generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generateConfig{Temperature: 0.7},
	}
	text, err := c.generate(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// generate performs one round trip and returns the first candidate's
// text. Every failure mode maps to ExternalServiceUnavailable so callers
// have a single arm to handle.
func (c *Client) generate(ctx context.Context, payload generateRequest) (string, error) {
	if !c.Enabled() {
		return "", apperrors.NewExternalServiceUnavailable(errors.New("assist API key not configured"))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperrors.NewExternalServiceUnavailable(err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", apperrors.NewExternalServiceUnavailable(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewExternalServiceUnavailable(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewExternalServiceUnavailable(err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("assist request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("model", c.model))
		return "", apperrors.NewExternalServiceUnavailable(fmt.Errorf("assist endpoint returned %d", resp.StatusCode))
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", apperrors.NewExternalServiceUnavailable(err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", apperrors.NewExternalServiceUnavailable(errors.New("empty assist response"))
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
