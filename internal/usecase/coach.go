package usecase

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/vitos/trade_journal/internal/domain"
)

// coachTradeLimit caps how much history is sent out for commentary.
const coachTradeLimit = 10

// CoachService produces behavioral commentary over a user's recent
// trades through an external analyzer. Requests carry an explicit
// timeout so a stuck upstream cannot hang the handler.
type CoachService struct {
	analyzer domain.TradeAnalyzer
	timeout  time.Duration
	logger   *zap.Logger
}

func NewCoachService(analyzer domain.TradeAnalyzer, timeout time.Duration, logger *zap.Logger) *CoachService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CoachService{analyzer: analyzer, timeout: timeout, logger: logger}
}

// Available reports whether the analyzer credential is configured, so
// the client can show credential-setup guidance instead of a dead
// button.
func (s *CoachService) Available() bool {
	return s.analyzer.Available()
}

// Analyze sends the most recent trades (at most ten, newest first by
// exit time) for commentary.
func (s *CoachService) Analyze(ctx context.Context, trades []*domain.Trade) (string, error) {
	if !s.analyzer.Available() {
		return "", domain.ErrAIKeyMissing
	}

	recent := make([]*domain.Trade, len(trades))
	copy(recent, trades)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].ExitTime.After(recent[j].ExitTime)
	})
	if len(recent) > coachTradeLimit {
		recent = recent[:coachTradeLimit]
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.analyzer.Analyze(ctx, recent)
	if err != nil {
		s.logger.Warn("trade analysis failed", zap.Int("trades", len(recent)), zap.Error(err))
		return "", err
	}
	return text, nil
}
