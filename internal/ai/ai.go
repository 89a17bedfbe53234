/*
Package ai assesses shortlisted announcements with the Gemini API, sending
the announcement PDF inline and requiring a structured JSON verdict.
*/
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"asxwatch/internal/ann"
)

// Config carries the Gemini settings.
type Config struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`

	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

// Assessment is the structured verdict for one announcement.
type Assessment struct {
	BullishScore           int     `json:"bullish_score"`
	SurpriseLevel          string  `json:"surprise_level"`
	ExpectedDailyChangePct float64 `json:"expected_daily_change_pct"`
	PredictionConfidence   int     `json:"prediction_confidence"`

	Summary           string `json:"summary"`
	FinancialImpact   string `json:"financial_impact"`
	SurpriseRationale string `json:"surprise_rationale"`
	MomentumContext   string `json:"momentum_context"`
	Risks             string `json:"risks"`
	Catalysts         string `json:"catalysts"`
	Recommendation    string `json:"recommendation"`
}

// Snapshot is the market context included in the prompt alongside the PDF.
type Snapshot struct {
	Close         float64
	MomentumPct   float64
	RSI           float64
	AvgVolume     float64
	MarketCap     float64
	ShortInterest string
}

// Assessor wraps a Gemini client. The client is created once and reused
// across announcements.
type Assessor struct {
	cfg    Config
	client *genai.Client
	logger zerolog.Logger
	sleep  func(context.Context, time.Duration) error
}

// New creates the Gemini client. The API key is required.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*Assessor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai: gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 5 * time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 60 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: create gemini client: %w", err)
	}

	return &Assessor{
		cfg:    cfg,
		client: client,
		logger: logger.With().Str("component", "ai").Logger(),
		sleep:  sleepCtx,
	}, nil
}

// Analyze sends the announcement PDF and market snapshot to the model and
// parses the structured verdict. Rate-limited calls are retried with
// exponential backoff; other transient failures retry on a flat delay.
func (a *Assessor) Analyze(ctx context.Context, c ann.Candidate, snap Snapshot, pdf []byte) (*Assessment, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildUserPrompt(c, snap)},
				{InlineData: &genai.Blob{MIMEType: "application/pdf", Data: pdf}},
			},
		},
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	}

	backoff := a.cfg.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= a.cfg.MaxAttempts; attempt++ {
		resp, err := a.client.Models.GenerateContent(ctx, a.cfg.Model, contents, cfg)
		if err == nil {
			return parseAssessment(resp.Text())
		}
		lastErr = err

		if attempt == a.cfg.MaxAttempts {
			break
		}

		delay := a.cfg.InitialBackoff
		if isRateLimited(err) {
			delay = backoff
			backoff *= 2
			if backoff > a.cfg.MaxBackoff {
				backoff = a.cfg.MaxBackoff
			}
		}

		a.logger.Warn().Err(err).
			Str("symbol", c.Symbol.String()).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("gemini call failed, retrying")

		if err := a.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("ai: gemini call failed after %d attempts: %w", a.cfg.MaxAttempts, lastErr)
}

func parseAssessment(raw string) (*Assessment, error) {
	var assessment Assessment
	if err := json.Unmarshal([]byte(raw), &assessment); err != nil {
		return nil, fmt.Errorf("ai: unmarshal gemini response: %w. Raw text: %s", err, raw)
	}
	if assessment.BullishScore < 1 || assessment.BullishScore > 10 {
		return nil, fmt.Errorf("ai: bullish_score %d out of range", assessment.BullishScore)
	}
	return &assessment, nil
}

// isRateLimited matches the shapes a quota error arrives in.
func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource_exhausted")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
