// Package google mirrors ledger activity to a Google spreadsheet using a
// service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"tally/internal/core"
	"tally/internal/sheets"
)

type Client struct {
	svc            *gsheet.Service
	spreadsheetID  string
	incomeSheet    string
	expensesSheet  string
	deletionsSheet string
}

var _ sheets.MirrorWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional sheet names: GOOGLE_INCOME_SHEET_NAME (default "Income"),
// GOOGLE_EXPENSES_SHEET_NAME (default "Expenses"),
// GOOGLE_DELETIONS_SHEET_NAME (default "Deletions").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	incomeSheet := strings.TrimSpace(os.Getenv("GOOGLE_INCOME_SHEET_NAME"))
	if incomeSheet == "" {
		incomeSheet = "Income"
	}
	expensesSheet := strings.TrimSpace(os.Getenv("GOOGLE_EXPENSES_SHEET_NAME"))
	if expensesSheet == "" {
		expensesSheet = "Expenses"
	}
	deletionsSheet := strings.TrimSpace(os.Getenv("GOOGLE_DELETIONS_SHEET_NAME"))
	if deletionsSheet == "" {
		deletionsSheet = "Deletions"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:            svc,
		spreadsheetID:  spreadsheetID,
		incomeSheet:    incomeSheet,
		expensesSheet:  expensesSheet,
		deletionsSheet: deletionsSheet,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) AppendIncome(ctx context.Context, e core.IncomeEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	row := []any{e.ID, e.Date.String(), e.Occupation, e.Amount.Units(), string(e.Type)}
	return c.appendRow(ctx, c.incomeSheet, row)
}

func (c *Client) AppendExpense(ctx context.Context, e core.ExpenseEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	row := []any{e.ID, e.Date.String(), e.Item, e.Price.Units(), e.Quantity, e.Total.Units()}
	return c.appendRow(ctx, c.expensesSheet, row)
}

func (c *Client) RecordDeletion(ctx context.Context, kind string, id int64) error {
	row := []any{id, kind, time.Now().UTC().Format(time.RFC3339)}
	_, err := c.appendRow(ctx, c.deletionsSheet, row)
	return err
}

func (c *Client) appendRow(ctx context.Context, sheetName string, row []any) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheetName, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return sheetName, nil
}
