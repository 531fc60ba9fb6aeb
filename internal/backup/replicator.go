package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Replicator delivers one record to a backup target
type Replicator interface {
	Replicate(ctx context.Context, rec Record) error
}

// WebhookReplicator posts each record as JSON, the shape an Apps Script
// web app attached to the backup sheet expects
type WebhookReplicator struct {
	url     string
	timeout time.Duration
}

func NewWebhookReplicator(url string, timeout time.Duration) *WebhookReplicator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookReplicator{url: url, timeout: timeout}
}

func (w *WebhookReplicator) Replicate(ctx context.Context, rec Record) error {
	timeout := w.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	agent := fiber.Post(w.url).JSON(rec).Timeout(timeout)
	if err := agent.Parse(); err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("webhook post: %w", errors.Join(errs...))
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("webhook returned %d: %s", code, body)
	}
	return nil
}

// SheetsReplicator appends records as rows through the Sheets API
type SheetsReplicator struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// SpreadsheetID extracts the id from a sheet URL
func SpreadsheetID(url string) (string, error) {
	m := spreadsheetIDPattern.FindStringSubmatch(url)
	if len(m) < 2 {
		return "", fmt.Errorf("invalid Google Sheets URL format")
	}
	return m[1], nil
}

// LoadCredentials reads service-account JSON from
// GOOGLE_APPLICATION_CREDENTIALS (a file) or GOOGLE_CREDENTIALS (inline)
func LoadCredentials() ([]byte, error) {
	if file := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); file != "" {
		creds, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		return creds, nil
	}
	if inline := os.Getenv("GOOGLE_CREDENTIALS"); inline != "" {
		return []byte(inline), nil
	}
	return nil, fmt.Errorf("neither GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is set")
}

func NewSheetsReplicator(ctx context.Context, sheetURL, sheetName string, creds []byte) (*SheetsReplicator, error) {
	const op = "NewSheetsReplicator"

	id, err := SpreadsheetID(sheetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cfg, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse credentials: %w", op, err)
	}
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create sheets service: %w", op, err)
	}

	return &SheetsReplicator{svc: svc, spreadsheetID: id, sheetName: sheetName}, nil
}

func (s *SheetsReplicator) Replicate(ctx context.Context, rec Record) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{rec.Row()}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.sheetName+"!A:I", vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append to sheet: %w", err)
	}
	return nil
}

// EnsureHeader writes the header row when the sheet is empty
func (s *SheetsReplicator) EnsureHeader(ctx context.Context) error {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName+"!A1:I1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read sheet header: %w", err)
	}
	if len(resp.Values) > 0 {
		return nil
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{Header}}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.sheetName+"!A1:I1", vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}
