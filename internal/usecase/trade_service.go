package usecase

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vitos/trade_journal/internal/domain"
	"github.com/vitos/trade_journal/pkg/id"
)

// TradeDraft is the raw form payload for a new or edited trade. Numeric
// fields arrive as strings and are coerced with unparseable input
// treated as zero, so a half-filled form still produces a well-formed
// record.
type TradeDraft struct {
	ID string `json:"id"`

	EntryTime string `json:"entryTime"`
	ExitTime  string `json:"exitTime"`

	Symbol     string `json:"symbol"`
	Direction  string `json:"direction"`
	EntryPrice string `json:"entryPrice"`
	ExitPrice  string `json:"exitPrice"`
	Size       string `json:"size"`
	Fees       string `json:"fees"`
	Slippage   string `json:"slippage"`

	Setup       string `json:"setup"`
	StopLoss    string `json:"stopLoss"`
	TakeProfit  string `json:"takeProfit"`
	InitialRisk string `json:"initialRisk"`

	Confidence       string              `json:"confidence"`
	Emotions         string              `json:"emotions"` // whitespace-delimited tags
	PreTradeMindset  string              `json:"preTradeMindset"`
	NotesOnExecution string              `json:"notesOnExecution"`
	Summary          string              `json:"summary"`
	Improvements     string              `json:"improvements"`
	ExecutionRating  string              `json:"executionRating"`
	ErrorCategory    string              `json:"errorCategory"`
	Screenshots      []domain.Screenshot `json:"screenshots"`
}

// RiskPreview is the interactive risk/reward readout shown before
// submit. Ready is false while entry price or stop loss is not positive
// yet; that is an incomplete-input state, not an error.
type RiskPreview struct {
	Ready      bool    `json:"ready"`
	RiskAmount float64 `json:"riskAmount"`
	RiskReward float64 `json:"riskReward"`
}

// TradeService turns drafts into persisted trades and owns trade
// deletion. P&L is always recomputed here; client-supplied values are
// ignored.
type TradeService struct {
	repo   domain.TradeRepository
	logger *zap.Logger
}

func NewTradeService(repo domain.TradeRepository, logger *zap.Logger) *TradeService {
	return &TradeService{repo: repo, logger: logger}
}

// BuildTrade materializes a draft into a Trade owned by userID. The
// owner always comes from the authenticated session, never from the
// draft, so a trade cannot be attributed to another account.
func (s *TradeService) BuildTrade(draft *TradeDraft, userID string) *domain.Trade {
	entryPrice := parseFloat(draft.EntryPrice)
	exitPrice := parseFloat(draft.ExitPrice)
	size := parseFloat(draft.Size)
	fees := parseFloat(draft.Fees)
	slippage := parseFloat(draft.Slippage)

	direction := domain.DirectionLong
	if strings.EqualFold(draft.Direction, string(domain.DirectionShort)) {
		direction = domain.DirectionShort
	}

	priceDiff := exitPrice - entryPrice
	if direction == domain.DirectionShort {
		priceDiff = entryPrice - exitPrice
	}

	pnlAmount := priceDiff*size - fees - slippage
	var pnlPct float64
	if entryPrice != 0 {
		pnlPct = priceDiff / entryPrice * 100
	}

	stopLoss := parseFloat(draft.StopLoss)
	takeProfit := parseFloat(draft.TakeProfit)
	var riskReward float64
	if preview := Preview(entryPrice, stopLoss, takeProfit, size); preview.Ready {
		riskReward = preview.RiskReward
	}

	errCat := domain.ErrorCategory(draft.ErrorCategory)
	if errCat == "" {
		errCat = domain.ErrorNone
	}

	trade := &domain.Trade{
		ID:               draft.ID,
		UserID:           userID,
		EntryTime:        parseTime(draft.EntryTime),
		ExitTime:         parseTime(draft.ExitTime),
		Symbol:           draft.Symbol,
		Direction:        direction,
		EntryPrice:       entryPrice,
		ExitPrice:        exitPrice,
		Size:             size,
		Fees:             fees,
		Slippage:         slippage,
		Setup:            draft.Setup,
		StopLoss:         stopLoss,
		TakeProfit:       takeProfit,
		InitialRisk:      parseFloat(draft.InitialRisk),
		Confidence:       parseInt(draft.Confidence),
		Emotions:         SplitEmotions(draft.Emotions),
		PreTradeMindset:  draft.PreTradeMindset,
		NotesOnExecution: draft.NotesOnExecution,
		Summary:          draft.Summary,
		Improvements:     draft.Improvements,
		ExecutionRating:  parseInt(draft.ExecutionRating),
		ErrorCategory:    errCat,
		PnlAmount:        pnlAmount,
		PnlPercentage:    pnlPct,
		RiskRewardRatio:  riskReward,
		Screenshots:      stripEmptyScreenshots(draft.Screenshots),
	}
	if trade.ID == "" {
		trade.ID = id.New()
		trade.CreatedAt = time.Now().UTC()
	}
	return trade
}

// SubmitTrade persists the draft for userID, replacing an existing
// record when the draft carries its id. A draft with a client-chosen id
// that matches nothing is still a create and gets a fresh CreatedAt;
// the original CreatedAt survives an edit.
func (s *TradeService) SubmitTrade(ctx context.Context, draft *TradeDraft, userID string) (*domain.Trade, error) {
	trade := s.BuildTrade(draft, userID)
	if trade.CreatedAt.IsZero() {
		if existing, err := s.repo.GetTrade(ctx, trade.ID); err == nil {
			trade.CreatedAt = existing.CreatedAt
		} else {
			trade.CreatedAt = time.Now().UTC()
		}
	}
	if err := s.repo.SaveTrade(ctx, trade); err != nil {
		return nil, fmt.Errorf("failed to save trade %s: %w", trade.ID, err)
	}
	s.logger.Info("trade saved",
		zap.String("id", trade.ID),
		zap.String("user", userID),
		zap.String("symbol", trade.Symbol),
		zap.Float64("pnl", trade.PnlAmount))
	return trade, nil
}

// DeleteTrade removes one trade. Non-admins may only delete their own.
func (s *TradeService) DeleteTrade(ctx context.Context, tradeID string, actor *domain.User) error {
	trade, err := s.repo.GetTrade(ctx, tradeID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && trade.UserID != actor.ID {
		return domain.ErrForbidden
	}
	if err := s.repo.DeleteTrade(ctx, tradeID); err != nil {
		return fmt.Errorf("failed to delete trade %s: %w", tradeID, err)
	}
	s.logger.Info("trade deleted", zap.String("id", tradeID), zap.String("actor", actor.ID))
	return nil
}

// Preview computes the interactive risk/reward figures. It is only
// defined once both entry price and stop loss are positive.
func Preview(entryPrice, stopLoss, takeProfit, size float64) RiskPreview {
	if entryPrice <= 0 || stopLoss <= 0 {
		return RiskPreview{}
	}
	riskPerUnit := math.Abs(entryPrice - stopLoss)
	if riskPerUnit == 0 {
		return RiskPreview{}
	}
	return RiskPreview{
		Ready:      true,
		RiskAmount: riskPerUnit * math.Max(size, 1),
		RiskReward: math.Abs(takeProfit-entryPrice) / riskPerUnit,
	}
}

// SplitEmotions normalizes the whitespace-delimited emotions field into
// an ordered set of tags, first occurrence wins.
func SplitEmotions(raw string) []string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(fields))
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			tags = append(tags, f)
		}
	}
	return tags
}

func stripEmptyScreenshots(shots []domain.Screenshot) []domain.Screenshot {
	var kept []domain.Screenshot
	for _, s := range shots {
		if strings.TrimSpace(s.URL) != "" {
			kept = append(kept, s)
		}
	}
	return kept
}

func parseFloat(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func parseInt(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return v
}

func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
