// Package google reads the finance export from a Google Sheets range.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"findash/internal/core"
	"findash/internal/log"
	"findash/internal/sources"
)

// Options selects the spreadsheet and the credentials.
type Options struct {
	SpreadsheetID      string
	Range              string // e.g. "Transactions!A:J", header row first
	ServiceAccountJSON string
	ServiceAccountFile string
}

// ValuesGetter fetches a range as a matrix of cells.
type ValuesGetter interface {
	Values(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error)
}

type Client struct {
	values        ValuesGetter
	spreadsheetID string
	readRange     string
}

var _ sources.Reader = (*Client)(nil)

// New creates a read-only Sheets client using service account credentials.
func New(ctx context.Context, opts Options, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, opts, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithGetter(serviceGetter{svc: svc}, opts.SpreadsheetID, opts.Range), nil
}

// NewWithGetter builds a Client over any ValuesGetter.
func NewWithGetter(values ValuesGetter, spreadsheetID, readRange string) *Client {
	return &Client{values: values, spreadsheetID: spreadsheetID, readRange: readRange}
}

// newSheetsService initializes a Sheets Service from inline JSON, a file, or
// GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, opts Options, logger *log.Logger) (*gsheet.Service, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSources)

	file := strings.TrimSpace(opts.ServiceAccountFile)
	if opts.ServiceAccountJSON == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case opts.ServiceAccountJSON != "":
		logger.InfoContext(ctx, "using inline service account credentials")
		credentialsJSON = []byte(opts.ServiceAccountJSON)
	case file != "":
		logger.InfoContext(ctx, "reading service account credentials", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

type serviceGetter struct {
	svc *gsheet.Service
}

func (g serviceGetter) Values(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (c *Client) Name() string { return "sheets" }

func (c *Client) Transactions(ctx context.Context) ([]core.Transaction, error) {
	values, err := c.values.Values(ctx, c.spreadsheetID, c.readRange)
	if err != nil {
		return nil, fmt.Errorf("read range %q: %w", c.readRange, err)
	}
	txs, err := sources.ParseRecords(toStrings(values))
	if err != nil {
		return nil, fmt.Errorf("range %q: %w", c.readRange, err)
	}
	return txs, nil
}

// toStrings converts the loosely typed cell matrix of the Sheets API.
func toStrings(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v != nil {
				cells[j] = strings.TrimSpace(fmt.Sprint(v))
			}
		}
		out[i] = cells
	}
	return out
}
