package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/ports"
)

var _ ports.CategoryReader = (*Client)(nil)

// Config selects the spreadsheet tab and the credentials used to read it.
// OAuth user credentials are used when OAuthTokenFile is set; otherwise a
// service account is required.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string

	OAuthClientJSON string
	OAuthClientFile string
	OAuthTokenFile  string
}

// Client reads the category catalog from a Google Sheets tab laid out as
// `ID | Name | Color` with a header row.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

func NewClient(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Categories"
	}
	logger = logger.WithComponent(log.ComponentCatalog)

	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger,
	}, nil
}

// newSheetsService initializes a read-only Sheets Service from an OAuth token,
// or from service account credentials: inline JSON, a file, or
// GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, cfg Config, logger *log.Logger) (*gsheet.Service, error) {
	if tokenFile := strings.TrimSpace(cfg.OAuthTokenFile); tokenFile != "" {
		oauthCfg, err := OAuthConfig(cfg.OAuthClientJSON, cfg.OAuthClientFile)
		if err != nil {
			return nil, err
		}
		tok, err := LoadToken(tokenFile)
		if err != nil {
			return nil, err
		}
		logger.DebugContext(ctx, "Using OAuth user credentials", "token_file", tokenFile)
		service, err := gsheet.NewService(ctx, goption.WithTokenSource(oauthCfg.TokenSource(ctx, tok)))
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		logger.InfoContext(ctx, "Google Sheets service created", "auth", "oauth")
		return service, nil
	}

	serviceAccountJSON := strings.TrimSpace(cfg.CredentialsJSON)
	serviceAccountFile := strings.TrimSpace(cfg.CredentialsFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		logger.DebugContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		logger.DebugContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
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
	logger.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// Categories implements ports.CategoryReader.
func (c *Client) Categories(ctx context.Context) (core.Catalog, error) {
	if c.svc == nil {
		return core.Catalog{}, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:C", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return core.Catalog{}, fmt.Errorf("read %s: %w", rng, err)
	}
	catalog, err := parseCategories(resp.Values)
	if err != nil {
		return core.Catalog{}, fmt.Errorf("parse %s: %w", rng, err)
	}
	c.logger.DebugContext(ctx, "Categories loaded", "count", catalog.Len(), "range", rng)
	return catalog, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx >= 0 && idx < len(arr) {
		return arr[idx]
	}
	return ""
}
