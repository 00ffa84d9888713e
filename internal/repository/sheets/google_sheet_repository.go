package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/flockbook/internal/config"
)

// GoogleSheetRepository keeps persisted state in a spreadsheet tab: column A
// holds the key, column B the payload, one row per key.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	tab           string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		tab:           cfg.StateTab,
		logger:        logger,
	}, nil
}

// GetItem looks key up in column A and returns the payload next to it.
func (r *GoogleSheetRepository) GetItem(ctx context.Context, key string) (string, bool, error) {
	rows, err := r.readRange(ctx, keyRange(r.tab))
	if err != nil {
		return "", false, err
	}
	_, value, ok := findRow(rows, key)
	return value, ok, nil
}

// SetItem overwrites the row holding key, or appends a new row.
func (r *GoogleSheetRepository) SetItem(ctx context.Context, key, value string) error {
	rows, err := r.readRange(ctx, keyRange(r.tab))
	if err != nil {
		return err
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{{key, value}}}

	if idx, _, ok := findRow(rows, key); ok {
		target := rowRange(r.tab, idx)
		call := r.service.Spreadsheets.Values.Update(r.spreadsheetID, target, payload).
			ValueInputOption("RAW").
			Context(ctx)
		if _, err := call.Do(); err != nil {
			return fmt.Errorf("update range %s: %w", target, err)
		}
		r.logger.Debug("state row updated", zap.String("key", key), zap.String("range", target))
		return nil
	}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, keyRange(r.tab), payload).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)
	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", keyRange(r.tab), err)
	}
	r.logger.Debug("state row appended", zap.String("key", key))
	return nil
}

// RemoveItem clears the row holding key, if present.
func (r *GoogleSheetRepository) RemoveItem(ctx context.Context, key string) error {
	rows, err := r.readRange(ctx, keyRange(r.tab))
	if err != nil {
		return err
	}

	idx, _, ok := findRow(rows, key)
	if !ok {
		return nil
	}

	target := rowRange(r.tab, idx)
	call := r.service.Spreadsheets.Values.Clear(r.spreadsheetID, target, &sheetsapi.ClearValuesRequest{}).Context(ctx)
	if _, err := call.Do(); err != nil {
		return fmt.Errorf("clear range %s: %w", target, err)
	}
	return nil
}

// Close is a no-op; the HTTP client holds no resources needing release.
func (r *GoogleSheetRepository) Close(context.Context) error {
	return nil
}

func (r *GoogleSheetRepository) readRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}
	return resp.Values, nil
}

func keyRange(tab string) string {
	return tab + "!A:B"
}

// rowRange addresses the zero-based row idx of the A:B columns.
func rowRange(tab string, idx int) string {
	return fmt.Sprintf("%s!A%d:B%d", tab, idx+1, idx+1)
}

func findRow(rows [][]interface{}, key string) (int, string, bool) {
	for i, row := range rows {
		if len(row) == 0 || fmt.Sprint(row[0]) != key {
			continue
		}
		if len(row) < 2 {
			return i, "", true
		}
		return i, fmt.Sprint(row[1]), true
	}
	return -1, "", false
}
