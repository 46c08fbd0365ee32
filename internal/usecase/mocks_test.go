package usecase_test

import (
	"context"
	"errors"

	"github.com/vitos/trade_journal/internal/domain"
)

// memStore is an in-memory stand-in for the sqlite store, implementing
// the trade, user and option repositories.
type memStore struct {
	Trades  []*domain.Trade
	Users   []*domain.User
	Invites []*domain.Invite
	Setups  []string
	Symbols []string

	FailNextCascade bool
}

func newMemStore() *memStore {
	return &memStore{}
}

func (m *memStore) SaveTrade(ctx context.Context, trade *domain.Trade) error {
	for i, t := range m.Trades {
		if t.ID == trade.ID {
			m.Trades[i] = trade
			return nil
		}
	}
	m.Trades = append([]*domain.Trade{trade}, m.Trades...)
	return nil
}

func (m *memStore) GetTrade(ctx context.Context, id string) (*domain.Trade, error) {
	for _, t := range m.Trades {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) ListTrades(ctx context.Context) ([]*domain.Trade, error) {
	return m.Trades, nil
}

func (m *memStore) ListTradesByUser(ctx context.Context, userID string) ([]*domain.Trade, error) {
	var out []*domain.Trade
	for _, t := range m.Trades {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) DeleteTrade(ctx context.Context, id string) error {
	for i, t := range m.Trades {
		if t.ID == id {
			m.Trades = append(m.Trades[:i], m.Trades[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memStore) ReplaceAllTrades(ctx context.Context, trades []*domain.Trade) error {
	m.Trades = trades
	return nil
}

func (m *memStore) SaveUser(ctx context.Context, user *domain.User) error {
	for i, u := range m.Users {
		if u.ID == user.ID {
			m.Users[i] = user
			return nil
		}
	}
	m.Users = append(m.Users, user)
	return nil
}

func (m *memStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	for _, u := range m.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range m.Users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return m.Users, nil
}

func (m *memStore) DeleteUserCascade(ctx context.Context, id string) error {
	if m.FailNextCascade {
		m.FailNextCascade = false
		return errors.New("storage offline")
	}
	found := false
	for i, u := range m.Users {
		if u.ID == id {
			m.Users = append(m.Users[:i], m.Users[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return domain.ErrNotFound
	}
	var kept []*domain.Trade
	for _, t := range m.Trades {
		if t.UserID != id {
			kept = append(kept, t)
		}
	}
	m.Trades = kept
	return nil
}

func (m *memStore) SaveInvite(ctx context.Context, invite *domain.Invite) error {
	for i, inv := range m.Invites {
		if inv.Email == invite.Email {
			m.Invites[i] = invite
			return nil
		}
	}
	m.Invites = append(m.Invites, invite)
	return nil
}

func (m *memStore) FindInvite(ctx context.Context, email string) (*domain.Invite, error) {
	for _, inv := range m.Invites {
		if inv.Email == email {
			return inv, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) DeleteInvite(ctx context.Context, email string) error {
	for i, inv := range m.Invites {
		if inv.Email == email {
			m.Invites = append(m.Invites[:i], m.Invites[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memStore) ListSetups(ctx context.Context) ([]string, error) {
	return m.Setups, nil
}

func (m *memStore) ListSymbols(ctx context.Context) ([]string, error) {
	return m.Symbols, nil
}

func (m *memStore) ReplaceSetups(ctx context.Context, setups []string) error {
	m.Setups = setups
	return nil
}

func (m *memStore) ReplaceSymbols(ctx context.Context, symbols []string) error {
	m.Symbols = symbols
	return nil
}

// mockAnalyzer records what it was asked to analyze.
type mockAnalyzer struct {
	Key      bool
	LastSeen []*domain.Trade
	Reply    string
	Err      error
}

func (m *mockAnalyzer) Available() bool { return m.Key }

func (m *mockAnalyzer) Analyze(ctx context.Context, trades []*domain.Trade) (string, error) {
	m.LastSeen = trades
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}
