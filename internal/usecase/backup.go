package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vitos/trade_journal/internal/domain"
)

// BackupVersion tags exported documents; bumped on breaking format
// changes so imports can be reasoned about later.
const BackupVersion = "2.0"

// BackupService serializes the whole journal to a portable JSON
// document and restores from one. Import is a destructive full replace
// of trades, setups and symbols; the caller is responsible for
// confirming the action with the user first.
type BackupService struct {
	trades  domain.TradeRepository
	options domain.OptionRepository
	logger  *zap.Logger
}

func NewBackupService(trades domain.TradeRepository, options domain.OptionRepository, logger *zap.Logger) *BackupService {
	return &BackupService{trades: trades, options: options, logger: logger}
}

// Export snapshots the current journal state into a backup document.
func (s *BackupService) Export(ctx context.Context) (*domain.BackupDocument, error) {
	trades, err := s.trades.ListTrades(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read trades for export: %w", err)
	}
	setups, err := s.options.ListSetups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read setups for export: %w", err)
	}
	symbols, err := s.options.ListSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read symbols for export: %w", err)
	}
	return &domain.BackupDocument{
		Trades:     trades,
		Setups:     setups,
		Symbols:    symbols,
		ExportDate: time.Now().UTC(),
		Version:    BackupVersion,
	}, nil
}

// rawBackup mirrors BackupDocument with the trades member kept raw so a
// missing or non-array value can be told apart from an empty list.
type rawBackup struct {
	Trades     json.RawMessage `json:"trades"`
	Setups     []string        `json:"setups"`
	Symbols    []string        `json:"symbols"`
	ExportDate time.Time       `json:"exportDate"`
	Version    string          `json:"version"`
}

// Decode parses and validates a backup document. A document without a
// trades array is rejected; absent setups/symbols fall back to the
// caller's current configuration.
func (s *BackupService) Decode(ctx context.Context, raw []byte) (*domain.BackupDocument, error) {
	var rb rawBackup
	if err := json.Unmarshal(raw, &rb); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadBackup, err)
	}
	if len(rb.Trades) == 0 || string(rb.Trades) == "null" {
		return nil, fmt.Errorf("%w: missing trades array", domain.ErrBadBackup)
	}
	var trades []*domain.Trade
	if err := json.Unmarshal(rb.Trades, &trades); err != nil {
		return nil, fmt.Errorf("%w: trades is not an array", domain.ErrBadBackup)
	}

	doc := &domain.BackupDocument{
		Trades:     trades,
		Setups:     rb.Setups,
		Symbols:    rb.Symbols,
		ExportDate: rb.ExportDate,
		Version:    rb.Version,
	}
	if doc.Setups == nil {
		current, err := s.options.ListSetups(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read current setups: %w", err)
		}
		doc.Setups = current
	}
	if doc.Symbols == nil {
		current, err := s.options.ListSymbols(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read current symbols: %w", err)
		}
		doc.Symbols = current
	}
	return doc, nil
}

// Import applies a decoded document, replacing all trades, setups and
// symbols. Trades re-enter through normalization so derived P&L stays
// consistent with the formulas in the entry pipeline.
func (s *BackupService) Import(ctx context.Context, doc *domain.BackupDocument) error {
	for _, t := range doc.Trades {
		normalizeTrade(t)
	}
	if err := s.trades.ReplaceAllTrades(ctx, doc.Trades); err != nil {
		return fmt.Errorf("failed to replace trades: %w", err)
	}
	if err := s.options.ReplaceSetups(ctx, doc.Setups); err != nil {
		return fmt.Errorf("failed to replace setups: %w", err)
	}
	if err := s.options.ReplaceSymbols(ctx, doc.Symbols); err != nil {
		return fmt.Errorf("failed to replace symbols: %w", err)
	}
	s.logger.Info("backup imported",
		zap.Int("trades", len(doc.Trades)),
		zap.String("version", doc.Version))
	return nil
}

// normalizeTrade recomputes the derived fields of an imported trade,
// dedupes its emotion tags and drops empty screenshot rows. Imported
// documents are external input; their stored P&L is never trusted.
func normalizeTrade(t *domain.Trade) {
	priceDiff := t.ExitPrice - t.EntryPrice
	if t.Direction == domain.DirectionShort {
		priceDiff = t.EntryPrice - t.ExitPrice
	}
	t.PnlAmount = priceDiff*t.Size - t.Fees - t.Slippage
	t.PnlPercentage = 0
	if t.EntryPrice != 0 {
		t.PnlPercentage = priceDiff / t.EntryPrice * 100
	}
	if t.ErrorCategory == "" {
		t.ErrorCategory = domain.ErrorNone
	}
	t.Emotions = SplitEmotions(strings.Join(t.Emotions, " "))
	t.Screenshots = stripEmptyScreenshots(t.Screenshots)
}
