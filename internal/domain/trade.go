package domain

import "time"

type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// ErrorCategory classifies the execution mistake made on a trade, if any.
type ErrorCategory string

const (
	ErrorNone          ErrorCategory = "NONE"
	ErrorEarlyEntry    ErrorCategory = "EARLY_ENTRY"
	ErrorLateEntry     ErrorCategory = "LATE_ENTRY"
	ErrorEarlyExit     ErrorCategory = "EARLY_EXIT"
	ErrorLateExit      ErrorCategory = "LATE_EXIT"
	ErrorMovedStop     ErrorCategory = "MOVED_STOP"
	ErrorOversized     ErrorCategory = "OVERSIZED"
	ErrorNoPlan        ErrorCategory = "NO_PLAN"
	ErrorRevengeTrade  ErrorCategory = "REVENGE_TRADE"
	ErrorChasedEntry   ErrorCategory = "CHASED_ENTRY"
	ErrorIgnoredSignal ErrorCategory = "IGNORED_SIGNAL"
)

// Screenshot is a chart capture attached to a trade.
type Screenshot struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Trade represents one closed position in the journal.
type Trade struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	EntryTime time.Time `json:"entryTime"`
	ExitTime  time.Time `json:"exitTime"`

	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"direction"`
	EntryPrice float64   `json:"entryPrice"`
	ExitPrice  float64   `json:"exitPrice"`
	Size       float64   `json:"size"`
	Fees       float64   `json:"fees"`
	Slippage   float64   `json:"slippage"`

	Setup       string  `json:"setup"`
	StopLoss    float64 `json:"stopLoss"`
	TakeProfit  float64 `json:"takeProfit"`
	InitialRisk float64 `json:"initialRisk"`

	Confidence       int           `json:"confidence"` // 1-10, informational
	Emotions         []string      `json:"emotions"`
	PreTradeMindset  string        `json:"preTradeMindset"`
	NotesOnExecution string        `json:"notesOnExecution"`
	Summary          string        `json:"summary"`
	Improvements     string        `json:"improvements"`
	ExecutionRating  int           `json:"executionRating"` // 1-5
	ErrorCategory    ErrorCategory `json:"errorCategory"`

	// Recomputed from price/size/fees/direction on every save,
	// never taken from client input.
	PnlAmount       float64 `json:"pnlAmount"`
	PnlPercentage   float64 `json:"pnlPercentage"`
	RiskRewardRatio float64 `json:"riskRewardRatio"`

	Screenshots []Screenshot `json:"screenshots"`

	CreatedAt time.Time `json:"createdAt"`
}

// HasEmotion reports whether the trade carries the given emotion tag.
func (t *Trade) HasEmotion(tag string) bool {
	for _, e := range t.Emotions {
		if e == tag {
			return true
		}
	}
	return false
}

// Win reports whether the trade closed with a strictly positive P&L.
// A zero-P&L trade is neither a win nor a loss.
func (t *Trade) Win() bool {
	return t.PnlAmount > 0
}
