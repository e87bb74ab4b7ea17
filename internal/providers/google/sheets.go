package google

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/dimitrije/relayo-api/internal/providers"
	"google.golang.org/api/sheets/v4"
)

var ErrInvalidSpreadsheetURL = errors.New("invalid spreadsheet URL")

const valueInputOption = "USER_ENTERED"

var (
	_ providers.Sheets = (*Client)(nil)

	spreadsheetIDPattern = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)
)

// SpreadsheetID extracts the document id from a sheet's share URL.
func SpreadsheetID(sheetURL string) (string, error) {
	m := spreadsheetIDPattern.FindStringSubmatch(sheetURL)
	if m == nil {
		return "", ErrInvalidSpreadsheetURL
	}
	return m[1], nil
}

func (c *Client) sheetsService(ctx context.Context, integ *models.Integration) (*sheets.Service, error) {
	opts, err := c.clientOptions(ctx, integ)
	if err != nil {
		return nil, err
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return svc, nil
}

func (c *Client) AppendRow(ctx context.Context, integ *models.Integration, sheetURL, tab string, values []any) error {
	spreadsheetID, err := SpreadsheetID(sheetURL)
	if err != nil {
		return err
	}
	svc, err := c.sheetsService(ctx, integ)
	if err != nil {
		return err
	}
	return appendRow(ctx, svc, spreadsheetID, tab, values)
}

func (c *Client) UpsertRowByKey(ctx context.Context, integ *models.Integration, sheetURL, tab, key string, values []any) error {
	spreadsheetID, err := SpreadsheetID(sheetURL)
	if err != nil {
		return err
	}
	svc, err := c.sheetsService(ctx, integ)
	if err != nil {
		return err
	}

	resp, err := svc.Spreadsheets.Values.Get(spreadsheetID, tab+"!A:Z").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read sheet: %w", err)
	}

	rowIndex := -1
	for i, row := range resp.Values {
		if len(row) > 0 && fmt.Sprint(row[0]) == key {
			rowIndex = i
			break
		}
	}

	if rowIndex == -1 {
		return appendRow(ctx, svc, spreadsheetID, tab, values)
	}

	rng := fmt.Sprintf("%s!A%d:Z%d", tab, rowIndex+1, rowIndex+1)
	_, err = svc.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{Values: [][]interface{}{values}}).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update sheet row: %w", err)
	}
	return nil
}

func appendRow(ctx context.Context, svc *sheets.Service, spreadsheetID, tab string, values []any) error {
	_, err := svc.Spreadsheets.Values.Append(spreadsheetID, tab+"!A:Z", &sheets.ValueRange{Values: [][]interface{}{values}}).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append sheet row: %w", err)
	}
	return nil
}
