package domain

import (
	"context"
	"time"
)

// TradeRepository defines storage operations for journal trades.
type TradeRepository interface {
	SaveTrade(ctx context.Context, trade *Trade) error
	GetTrade(ctx context.Context, id string) (*Trade, error)
	ListTrades(ctx context.Context) ([]*Trade, error)
	ListTradesByUser(ctx context.Context, userID string) ([]*Trade, error)
	DeleteTrade(ctx context.Context, id string) error
	ReplaceAllTrades(ctx context.Context, trades []*Trade) error
}

// UserRepository defines storage operations for accounts and invites.
type UserRepository interface {
	SaveUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	// DeleteUserCascade removes the user and every trade with a matching
	// userId in a single transaction.
	DeleteUserCascade(ctx context.Context, id string) error

	SaveInvite(ctx context.Context, invite *Invite) error
	FindInvite(ctx context.Context, email string) (*Invite, error)
	DeleteInvite(ctx context.Context, email string) error
}

// OptionRepository persists the configurable setup and symbol vocabularies.
type OptionRepository interface {
	ListSetups(ctx context.Context) ([]string, error)
	ListSymbols(ctx context.Context) ([]string, error)
	ReplaceSetups(ctx context.Context, setups []string) error
	ReplaceSymbols(ctx context.Context, symbols []string) error
}

// TradeAnalyzer produces behavioral commentary over recent trades.
type TradeAnalyzer interface {
	// Available reports whether the analyzer credential is configured.
	Available() bool
	Analyze(ctx context.Context, trades []*Trade) (string, error)
}

// BackupDocument is the portable interchange format for the whole journal.
type BackupDocument struct {
	Trades     []*Trade  `json:"trades"`
	Setups     []string  `json:"setups"`
	Symbols    []string  `json:"symbols"`
	ExportDate time.Time `json:"exportDate"`
	Version    string    `json:"version"`
}

// GistStore pushes and pulls backup documents to a remote gist.
type GistStore interface {
	Push(ctx context.Context, token, gistID string, doc *BackupDocument) (string, error)
	Pull(ctx context.Context, token, gistID string) (*BackupDocument, error)
}
