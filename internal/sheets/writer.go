package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer implements ReportWriter for Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: srv,
		logger:  logger,
	}, nil
}

// Write replaces the Budget and Balance tabs with the report.
func (w *Writer) Write(ctx context.Context, report *Report) error {
	w.logger.Info("starting report export",
		"period", report.Period(),
		"bars", len(report.Bars),
		"rows", len(report.Rows))

	spreadsheetID, tabIDs, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  max(w.config.RetryAttempts, 1),
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	tabs := []struct {
		name   string
		values [][]any
	}{
		{BudgetTab, budgetValues(report)},
		{BalanceTab, balanceValues(report)},
	}

	for _, tab := range tabs {
		err := common.WithRetry(ctx, func() error {
			if err := w.clearTab(ctx, spreadsheetID, tab.name); err != nil {
				return err
			}
			return w.writeData(ctx, spreadsheetID, tab.name, tab.values)
		}, retryOpts)
		if err != nil {
			return fmt.Errorf("failed to write %s tab: %w", tab.name, err)
		}
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return w.applyFormatting(ctx, spreadsheetID, tabIDs)
		}, retryOpts)
		if err != nil {
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("report export completed", "spreadsheet_id", spreadsheetID)
	return nil
}

func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}
		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := newOAuthConfig(config.ClientID, config.ClientSecret)
		tokenSource = oauthConfig.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

// getOrCreateSpreadsheet returns the spreadsheet id and the sheet id of
// each report tab, adding missing tabs to an existing spreadsheet.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, map[string]int64, error) {
	if w.config.SpreadsheetID == "" {
		created, err := w.service.Spreadsheets.Create(&sheets.Spreadsheet{
			Properties: &sheets.SpreadsheetProperties{
				Title:    w.config.SpreadsheetName,
				TimeZone: w.config.TimeZone,
			},
			Sheets: []*sheets.Sheet{
				{Properties: &sheets.SheetProperties{Title: BudgetTab}},
				{Properties: &sheets.SheetProperties{Title: BalanceTab}},
			},
		}).Context(ctx).Do()
		if err != nil {
			return "", nil, fmt.Errorf("unable to create spreadsheet: %w", err)
		}
		w.logger.Info("created new spreadsheet",
			"id", created.SpreadsheetId,
			"url", created.SpreadsheetUrl)
		return created.SpreadsheetId, tabIDs(created), nil
	}

	existing, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
	}

	ids := tabIDs(existing)
	var add []*sheets.Request
	for _, name := range []string{BudgetTab, BalanceTab} {
		if _, ok := ids[name]; !ok {
			add = append(add, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: name}},
			})
		}
	}
	if len(add) == 0 {
		return existing.SpreadsheetId, ids, nil
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(existing.SpreadsheetId, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: add,
	}).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("unable to add report tabs: %w", err)
	}
	for _, reply := range resp.Replies {
		if reply.AddSheet != nil && reply.AddSheet.Properties != nil {
			ids[reply.AddSheet.Properties.Title] = reply.AddSheet.Properties.SheetId
		}
	}
	return existing.SpreadsheetId, ids, nil
}

func tabIDs(s *sheets.Spreadsheet) map[string]int64 {
	ids := make(map[string]int64, len(s.Sheets))
	for _, sh := range s.Sheets {
		if sh.Properties != nil {
			ids[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	return ids
}

func (w *Writer) clearTab(ctx context.Context, spreadsheetID, tab string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, tab+"!A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// writeData writes values in batches to stay under API limits.
func (w *Writer) writeData(ctx context.Context, spreadsheetID, tab string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))
		batch := values[i:end]

		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, fmt.Sprintf("%s!A%d", tab, i+1), &sheets.ValueRange{
			Values: batch,
		}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "tab", tab, "start_row", i+1, "rows", len(batch))
	}
	return nil
}

// budgetValues lays out the budget tab: a title row, a blank row, the
// header and one row per bar.
func budgetValues(r *Report) [][]any {
	values := make([][]any, 0, len(r.Bars)+3)
	values = append(values,
		[]any{"Budget Report", r.Period()},
		[]any{},
		[]any{"Category", "Budget", "Actual", "Expected"},
	)
	for _, bar := range r.Bars {
		var expected any = bar.Expectation.String()
		if !bar.Expectation.IsError {
			expected = bar.Expectation.Amount.InexactFloat64()
		}
		values = append(values, []any{
			bar.Category.DisplayName(),
			bar.Budget.InexactFloat64(),
			bar.Actual.InexactFloat64(),
			expected,
		})
	}
	return values
}

// balanceValues lays out the balance tab, one row per roll entry.
func balanceValues(r *Report) [][]any {
	values := make([][]any, 0, len(r.Rows)+3)
	values = append(values,
		[]any{"Balance Forecast", r.Period()},
		[]any{},
		[]any{"Date", "Source", "Category", "Info", "Amount", "Total"},
	)
	for _, row := range r.Rows {
		values = append(values, []any{
			row.Date.Format(calendar.DateLayout),
			string(row.Origin),
			row.Category.DisplayName(),
			row.Info,
			row.Amount.InexactFloat64(),
			row.Total.InexactFloat64(),
		})
	}
	return values
}

const headerRows = 3

func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, tabIDs map[string]int64) error {
	currency := map[string][2]int64{
		BudgetTab:  {1, 4},
		BalanceTab: {4, 6},
	}

	var requests []*sheets.Request
	for tab, cols := range currency {
		id, ok := tabIDs[tab]
		if !ok {
			continue
		}
		requests = append(requests,
			&sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{SheetId: id, StartRowIndex: 0, EndRowIndex: 1, StartColumnIndex: 0, EndColumnIndex: 2},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true, FontSize: 14}},
					},
					Fields: "userEnteredFormat.textFormat",
				},
			},
			&sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{SheetId: id, StartRowIndex: headerRows - 1, EndRowIndex: headerRows},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true}},
					},
					Fields: "userEnteredFormat.textFormat",
				},
			},
			&sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{SheetId: id, StartRowIndex: headerRows, StartColumnIndex: cols[0], EndColumnIndex: cols[1]},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							NumberFormat: &sheets.NumberFormat{Type: "CURRENCY", Pattern: "$#,##0.00"},
						},
					},
					Fields: "userEnteredFormat.numberFormat",
				},
			},
			&sheets.Request{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId:        id,
						GridProperties: &sheets.GridProperties{FrozenRowCount: headerRows},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
			&sheets.Request{
				AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
					Dimensions: &sheets.DimensionRange{SheetId: id, Dimension: "COLUMNS", StartIndex: 0, EndIndex: 6},
				},
			},
		)
	}

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}

var _ ReportWriter = (*Writer)(nil)
