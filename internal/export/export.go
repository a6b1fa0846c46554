package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rovshanmuradov/tokenfolio/internal/domain"
	"github.com/rovshanmuradov/tokenfolio/internal/portfolio"
	"go.uber.org/zap"
)

// Format represents the snapshot file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a user supplied format name
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported format: %q", s)
	}
}

// Options configures the export behavior
type Options struct {
	Format    Format
	OutputDir string
	// OnlyHeld skips tokens with zero holdings.
	OnlyHeld bool
	// Now stamps the file name and record; time.Now when zero.
	Now time.Time
}

// Snapshot is the JSON record of a priced portfolio
type Snapshot struct {
	ExportTime  time.Time  `json:"export_time"`
	LastUpdated time.Time  `json:"last_updated,omitempty"`
	TokenCount  int        `json:"token_count"`
	TotalValue  float64    `json:"total_value"`
	Tokens      []TokenRow `json:"tokens"`
	Breakdown   []Share    `json:"breakdown"`
}

// TokenRow is one priced watchlist entry
type TokenRow struct {
	ID           string  `json:"id"`
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Holdings     float64 `json:"holdings"`
	Price        float64 `json:"price"`
	Change24hPct float64 `json:"change_24h_pct"`
	Value        float64 `json:"value"`
}

// Share is one token's slice of the total value
type Share struct {
	Symbol     string  `json:"symbol"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

var csvHeaders = []string{"id", "symbol", "name", "holdings", "price", "change_24h_pct", "value"}

// SnapshotExporter writes priced portfolio snapshots to disk
type SnapshotExporter struct {
	logger *zap.Logger
}

// NewSnapshotExporter creates a new snapshot exporter
func NewSnapshotExporter(logger *zap.Logger) *SnapshotExporter {
	return &SnapshotExporter{
		logger: logger.Named("export"),
	}
}

// Export values tokens against snapshots and writes the result to a new
// file in options.OutputDir. It returns the written path.
func (e *SnapshotExporter) Export(tokens []domain.Token, snapshots map[string]domain.PriceSnapshot, lastUpdated time.Time, options Options) (string, error) {
	if options.Now.IsZero() {
		options.Now = time.Now()
	}

	rows := e.filterRows(portfolio.Rows(tokens, snapshots), options)
	if len(rows) == 0 {
		return "", fmt.Errorf("no tokens match the export criteria")
	}

	if err := os.MkdirAll(options.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(options.OutputDir, generateFilename(options))

	var err error
	switch options.Format {
	case FormatCSV:
		err = exportToCSV(rows, outputPath)
	case FormatJSON:
		err = exportToJSON(buildSnapshot(tokens, snapshots, rows, lastUpdated, options.Now), outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}
	if err != nil {
		return "", err
	}

	e.logger.Info("Portfolio snapshot exported",
		zap.String("file", outputPath),
		zap.Int("count", len(rows)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

func (e *SnapshotExporter) filterRows(rows []domain.Row, options Options) []domain.Row {
	if !options.OnlyHeld {
		return rows
	}
	filtered := make([]domain.Row, 0, len(rows))
	for _, r := range rows {
		if r.Holdings > 0 {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func generateFilename(options Options) string {
	return fmt.Sprintf("portfolio_%s.%s", options.Now.Format("20060102_150405"), options.Format)
}

func buildSnapshot(tokens []domain.Token, snapshots map[string]domain.PriceSnapshot, rows []domain.Row, lastUpdated, now time.Time) Snapshot {
	summary := portfolio.Aggregate(tokens, snapshots)

	out := Snapshot{
		ExportTime:  now,
		LastUpdated: lastUpdated,
		TokenCount:  len(rows),
		TotalValue:  summary.TotalValue,
		Tokens:      make([]TokenRow, 0, len(rows)),
		Breakdown:   make([]Share, 0, len(summary.Breakdown)),
	}
	for _, r := range rows {
		out.Tokens = append(out.Tokens, toTokenRow(r))
	}
	for _, item := range summary.Breakdown {
		out.Breakdown = append(out.Breakdown, Share{
			Symbol:     item.Symbol,
			Value:      item.Value,
			Percentage: item.Percentage,
		})
	}
	return out
}

func toTokenRow(r domain.Row) TokenRow {
	return TokenRow{
		ID:           r.ID,
		Symbol:       r.DisplaySymbol(),
		Name:         r.Name,
		Holdings:     r.Holdings,
		Price:        r.CurrentPrice,
		Change24hPct: r.Change24hPct,
		Value:        r.Value,
	}
}

func exportToCSV(rows []domain.Row, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeaders); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range rows {
		if err := writer.Write([]string{
			r.ID,
			r.DisplaySymbol(),
			r.Name,
			portfolio.FormatHoldings(r.Holdings),
			strconv.FormatFloat(r.CurrentPrice, 'f', -1, 64),
			strconv.FormatFloat(r.Change24hPct, 'f', 2, 64),
			strconv.FormatFloat(r.Value, 'f', 2, 64),
		}); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func exportToJSON(snapshot Snapshot, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(snapshot); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
