/*
Package sheets appends rows to a Google Sheet through an Apps Script web
app, which keeps the deployment free of service-account credentials.
*/
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Config carries the webhook settings.
type Config struct {
	ScriptURL     string        `mapstructure:"script_url"`
	SpreadsheetID string        `mapstructure:"spreadsheet_id"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// Publisher posts append requests to the Apps Script endpoint.
type Publisher struct {
	cfg    Config
	client *http.Client
	logger zerolog.Logger
}

// New builds a publisher. ScriptURL and SpreadsheetID are required.
func New(cfg Config, logger zerolog.Logger) (*Publisher, error) {
	if cfg.ScriptURL == "" {
		return nil, fmt.Errorf("sheets: script URL is required")
	}
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("sheets: spreadsheet id is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Publisher{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger.With().Str("component", "sheets").Logger(),
	}, nil
}

type appendRequest struct {
	SpreadsheetID string     `json:"spreadsheetId"`
	Headers       []string   `json:"headers"`
	Data          [][]string `json:"data"`
}

type appendResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Append posts the headers and rows to the sheet. Appending zero rows is a
// no-op.
func (p *Publisher) Append(ctx context.Context, headers []string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	payload, err := json.Marshal(appendRequest{
		SpreadsheetID: p.cfg.SpreadsheetID,
		Headers:       headers,
		Data:          rows,
	})
	if err != nil {
		return fmt.Errorf("sheets: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.ScriptURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("sheets: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("sheets: post append: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			p.logger.Warn().Err(err).Msg("failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sheets: append returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("sheets: read response: %w", err)
	}

	var parsed appendResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("sheets: decode response: %w", err)
	}
	if !parsed.Success {
		return fmt.Errorf("sheets: append rejected: %s", parsed.Error)
	}

	p.logger.Info().Int("rows", len(rows)).Msg("appended rows to sheet")
	return nil
}
