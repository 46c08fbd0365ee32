package usecase

import (
	"strings"
	"time"

	"github.com/vitos/trade_journal/internal/domain"
)

// ScopeForUser reduces the full trade set to what the user may see:
// admins see everything, users only their own trades. This partition is
// always applied before any other filter.
func ScopeForUser(trades []*domain.Trade, user *domain.User) []*domain.Trade {
	if user.IsAdmin() {
		return trades
	}
	scoped := make([]*domain.Trade, 0, len(trades))
	for _, t := range trades {
		if t.UserID == user.ID {
			scoped = append(scoped, t)
		}
	}
	return scoped
}

// FilterMonth retains trades whose entry time falls inside the given
// calendar year and month. It is a pure view filter and never touches
// the underlying records.
func FilterMonth(trades []*domain.Trade, year int, month time.Month) []*domain.Trade {
	filtered := make([]*domain.Trade, 0, len(trades))
	for _, t := range trades {
		entry := t.EntryTime.Local()
		if entry.Year() == year && entry.Month() == month {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// FilterText matches trades whose symbol, setup, or entry date contains
// the query as a case-insensitive substring.
func FilterText(trades []*domain.Trade, query string) []*domain.Trade {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return trades
	}
	filtered := make([]*domain.Trade, 0, len(trades))
	for _, t := range trades {
		date := strings.ToLower(t.EntryTime.Local().Format("Jan 2, 2006"))
		if strings.Contains(strings.ToLower(t.Symbol), q) ||
			strings.Contains(strings.ToLower(t.Setup), q) ||
			strings.Contains(date, q) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
