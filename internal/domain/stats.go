package domain

// Stats is the aggregate picture of a (filtered) trade list.
type Stats struct {
	Count      int     `json:"count"`
	TotalPnl   float64 `json:"totalPnl"`
	WinRate    float64 `json:"winRate"` // percent, 0 when Count == 0
	AvgWin     float64 `json:"avgWin"`
	AvgLoss    float64 `json:"avgLoss"` // absolute value of the mean losing P&L
	BestTrade  *Trade  `json:"bestTrade,omitempty"`
	WorstTrade *Trade  `json:"worstTrade,omitempty"`
	LongPct    float64 `json:"longPct"`
	ShortPct   float64 `json:"shortPct"`
}

// EquityPoint is one step of the cumulative balance curve.
type EquityPoint struct {
	Label  string  `json:"label"`
	Equity float64 `json:"equity"`
}

// EquityCurve is the full curve plus its headline return figure.
type EquityCurve struct {
	Points         []EquityPoint `json:"points"`
	TotalReturnPct float64       `json:"totalReturnPct"`
}

// HourBucket reports performance for one hour-of-day slot (0-23).
type HourBucket struct {
	Hour    int     `json:"hour"`
	Label   string  `json:"label"` // "00:00" .. "23:00"
	Count   int     `json:"count"`
	WinRate float64 `json:"winRate"`
}

// EmotionStat correlates an emotion tag with realized P&L.
type EmotionStat struct {
	Tag    string  `json:"tag"`
	AvgPnl float64 `json:"avgPnl"`
	Count  int     `json:"count"`
}
