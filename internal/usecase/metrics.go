package usecase

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vitos/trade_journal/internal/domain"
)

// MetricsEngine derives aggregate statistics from a trade list. Every
// method is pure: input slices are never mutated and results are
// recomputed from scratch on each call. Trade sets are small (low
// thousands at most), so there is no incremental state to maintain.
//
// Percentages are defined as 0 on empty input throughout, so dashboards
// stay renderable with no history.
type MetricsEngine struct{}

func NewMetricsEngine() *MetricsEngine {
	return &MetricsEngine{}
}

// Aggregate computes the headline statistics over a (pre-filtered)
// trade list.
func (e *MetricsEngine) Aggregate(trades []*domain.Trade) domain.Stats {
	stats := domain.Stats{Count: len(trades)}
	if len(trades) == 0 {
		return stats
	}

	var wins, losses, longs int
	var winSum, lossSum float64
	best, worst := trades[0], trades[0]

	for _, t := range trades {
		stats.TotalPnl += t.PnlAmount
		switch {
		case t.PnlAmount > 0:
			wins++
			winSum += t.PnlAmount
		case t.PnlAmount < 0:
			losses++
			lossSum += -t.PnlAmount
		}
		if t.Direction == domain.DirectionLong {
			longs++
		}
		if t.PnlAmount > best.PnlAmount {
			best = t
		}
		if t.PnlAmount < worst.PnlAmount {
			worst = t
		}
	}

	n := float64(len(trades))
	stats.WinRate = float64(wins) / n * 100
	if wins > 0 {
		stats.AvgWin = winSum / float64(wins)
	}
	if losses > 0 {
		stats.AvgLoss = lossSum / float64(losses)
	}
	stats.BestTrade = best
	stats.WorstTrade = worst
	stats.LongPct = float64(longs) / n * 100
	stats.ShortPct = 100 - stats.LongPct
	return stats
}

// EquityCurve folds trade P&L onto a starting balance, ordered by exit
// time. The first point is a synthetic "Start" holding the baseline;
// each following point adds one trade's P&L to the previous equity.
// With the baseline disabled the curve starts at zero and
// TotalReturnPct is 0; a non-positive balance also zeroes the return.
func (e *MetricsEngine) EquityCurve(trades []*domain.Trade, startingBalance float64, useBaseline bool) domain.EquityCurve {
	if !useBaseline {
		startingBalance = 0
	}
	sorted := make([]*domain.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ExitTime.Before(sorted[j].ExitTime)
	})

	curve := domain.EquityCurve{
		Points: make([]domain.EquityPoint, 0, len(sorted)+1),
	}
	equity := startingBalance
	curve.Points = append(curve.Points, domain.EquityPoint{Label: "Start", Equity: equity})

	var cumulative float64
	for _, t := range sorted {
		equity += t.PnlAmount
		cumulative += t.PnlAmount
		curve.Points = append(curve.Points, domain.EquityPoint{
			Label:  t.ExitTime.Format("Jan 02"),
			Equity: equity,
		})
	}

	if useBaseline && startingBalance > 0 {
		curve.TotalReturnPct = cumulative / startingBalance * 100
	}
	return curve
}

// HourlyWinRate partitions trades into 24 buckets by the local hour of
// entry. All 24 buckets are emitted in order 00:00..23:00 regardless of
// count, so chart axes stay fixed.
func (e *MetricsEngine) HourlyWinRate(trades []*domain.Trade) []domain.HourBucket {
	counts := make([]int, 24)
	wins := make([]int, 24)
	for _, t := range trades {
		h := t.EntryTime.Local().Hour()
		counts[h]++
		if t.Win() {
			wins[h]++
		}
	}

	buckets := make([]domain.HourBucket, 24)
	for h := 0; h < 24; h++ {
		buckets[h] = domain.HourBucket{
			Hour:  h,
			Label: fmt.Sprintf("%02d:00", h),
			Count: counts[h],
		}
		if counts[h] > 0 {
			buckets[h].WinRate = float64(wins[h]) / float64(counts[h]) * 100
		}
	}
	return buckets
}

// EmotionPnl accumulates P&L per emotion tag. A trade carrying several
// tags contributes its full P&L to each of them; a trade with no tags
// contributes nowhere. The result is ordered by avgPnl descending.
func (e *MetricsEngine) EmotionPnl(trades []*domain.Trade) []domain.EmotionStat {
	type acc struct {
		sum   float64
		count int
	}
	byTag := make(map[string]*acc)
	for _, t := range trades {
		for _, raw := range t.Emotions {
			tag := strings.TrimSpace(raw)
			if tag == "" {
				continue
			}
			a, ok := byTag[tag]
			if !ok {
				a = &acc{}
				byTag[tag] = a
			}
			a.sum += t.PnlAmount
			a.count++
		}
	}

	stats := make([]domain.EmotionStat, 0, len(byTag))
	for tag, a := range byTag {
		stats = append(stats, domain.EmotionStat{
			Tag:    tag,
			AvgPnl: a.sum / float64(a.count),
			Count:  a.count,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].AvgPnl != stats[j].AvgPnl {
			return stats[i].AvgPnl > stats[j].AvgPnl
		}
		return stats[i].Tag < stats[j].Tag
	})
	return stats
}

// DurationMinutes returns the trade duration in whole minutes, floored.
// Inverted or zero ranges count as zero duration rather than erroring.
func (e *MetricsEngine) DurationMinutes(entry, exit time.Time) int {
	d := exit.Sub(entry)
	if d <= 0 {
		return 0
	}
	return int(d.Minutes())
}
