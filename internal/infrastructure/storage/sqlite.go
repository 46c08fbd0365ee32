package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vitos/trade_journal/internal/domain"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			entry_time DATETIME,
			exit_time DATETIME,
			symbol TEXT NOT NULL DEFAULT '',
			direction TEXT NOT NULL DEFAULT 'LONG',
			entry_price REAL NOT NULL DEFAULT 0,
			exit_price REAL NOT NULL DEFAULT 0,
			size REAL NOT NULL DEFAULT 0,
			fees REAL NOT NULL DEFAULT 0,
			slippage REAL NOT NULL DEFAULT 0,
			setup TEXT NOT NULL DEFAULT '',
			stop_loss REAL NOT NULL DEFAULT 0,
			take_profit REAL NOT NULL DEFAULT 0,
			initial_risk REAL NOT NULL DEFAULT 0,
			confidence INTEGER NOT NULL DEFAULT 0,
			emotions TEXT NOT NULL DEFAULT '',
			pre_trade_mindset TEXT NOT NULL DEFAULT '',
			notes_on_execution TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			improvements TEXT NOT NULL DEFAULT '',
			execution_rating INTEGER NOT NULL DEFAULT 0,
			error_category TEXT NOT NULL DEFAULT 'NONE',
			pnl_amount REAL NOT NULL DEFAULT 0,
			pnl_percentage REAL NOT NULL DEFAULT 0,
			risk_reward_ratio REAL NOT NULL DEFAULT 0,
			screenshots TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trades_user ON trades(user_id);`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'USER',
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			initial_balance REAL NOT NULL DEFAULT 0,
			use_initial_balance BOOLEAN NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS invites (
			email TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'USER',
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS options (
			kind TEXT NOT NULL,
			position INTEGER NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (kind, position)
		);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}

	// Migration: columns added after the first release. Errors are
	// ignored when the column already exists.
	_, _ = s.db.Exec(`ALTER TABLE trades ADD COLUMN slippage REAL NOT NULL DEFAULT 0`)
	_, _ = s.db.Exec(`ALTER TABLE trades ADD COLUMN initial_risk REAL NOT NULL DEFAULT 0`)
	_, _ = s.db.Exec(`ALTER TABLE users ADD COLUMN initial_balance REAL NOT NULL DEFAULT 0`)
	_, _ = s.db.Exec(`ALTER TABLE users ADD COLUMN use_initial_balance BOOLEAN NOT NULL DEFAULT 0`)

	return nil
}

const tradeColumns = `id, user_id, entry_time, exit_time, symbol, direction, entry_price, exit_price, size, fees, slippage,
	setup, stop_loss, take_profit, initial_risk, confidence, emotions, pre_trade_mindset, notes_on_execution,
	summary, improvements, execution_rating, error_category, pnl_amount, pnl_percentage, risk_reward_ratio,
	screenshots, created_at`

// TradeRepository implementation

func (s *SQLiteStore) SaveTrade(ctx context.Context, t *domain.Trade) error {
	query := `INSERT INTO trades (` + tradeColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT(id) DO UPDATE SET
			  user_id=excluded.user_id, entry_time=excluded.entry_time, exit_time=excluded.exit_time,
			  symbol=excluded.symbol, direction=excluded.direction, entry_price=excluded.entry_price,
			  exit_price=excluded.exit_price, size=excluded.size, fees=excluded.fees, slippage=excluded.slippage,
			  setup=excluded.setup, stop_loss=excluded.stop_loss, take_profit=excluded.take_profit,
			  initial_risk=excluded.initial_risk, confidence=excluded.confidence, emotions=excluded.emotions,
			  pre_trade_mindset=excluded.pre_trade_mindset, notes_on_execution=excluded.notes_on_execution,
			  summary=excluded.summary, improvements=excluded.improvements, execution_rating=excluded.execution_rating,
			  error_category=excluded.error_category, pnl_amount=excluded.pnl_amount,
			  pnl_percentage=excluded.pnl_percentage, risk_reward_ratio=excluded.risk_reward_ratio,
			  screenshots=excluded.screenshots`
	_, err := s.db.ExecContext(ctx, query, tradeArgs(t)...)
	return err
}

func tradeArgs(t *domain.Trade) []any {
	shots, err := json.Marshal(t.Screenshots)
	if err != nil || t.Screenshots == nil {
		shots = []byte("[]")
	}
	return []any{
		t.ID, t.UserID, t.EntryTime, t.ExitTime, t.Symbol, string(t.Direction),
		t.EntryPrice, t.ExitPrice, t.Size, t.Fees, t.Slippage,
		t.Setup, t.StopLoss, t.TakeProfit, t.InitialRisk, t.Confidence,
		strings.Join(t.Emotions, " "), t.PreTradeMindset, t.NotesOnExecution,
		t.Summary, t.Improvements, t.ExecutionRating, string(t.ErrorCategory),
		t.PnlAmount, t.PnlPercentage, t.RiskRewardRatio, string(shots), t.CreatedAt,
	}
}

// scanTrade is the single row-to-domain mapping for trades; all
// defaulting for legacy rows lives here.
func scanTrade(scanner interface{ Scan(...any) error }) (*domain.Trade, error) {
	var t domain.Trade
	var direction, emotions, errCat, shots string
	err := scanner.Scan(
		&t.ID, &t.UserID, &t.EntryTime, &t.ExitTime, &t.Symbol, &direction,
		&t.EntryPrice, &t.ExitPrice, &t.Size, &t.Fees, &t.Slippage,
		&t.Setup, &t.StopLoss, &t.TakeProfit, &t.InitialRisk, &t.Confidence,
		&emotions, &t.PreTradeMindset, &t.NotesOnExecution,
		&t.Summary, &t.Improvements, &t.ExecutionRating, &errCat,
		&t.PnlAmount, &t.PnlPercentage, &t.RiskRewardRatio, &shots, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Direction = domain.DirectionLong
	if direction == string(domain.DirectionShort) {
		t.Direction = domain.DirectionShort
	}
	if fields := strings.Fields(emotions); len(fields) > 0 {
		t.Emotions = fields
	}
	t.ErrorCategory = domain.ErrorCategory(errCat)
	if t.ErrorCategory == "" {
		t.ErrorCategory = domain.ErrorNone
	}
	if shots != "" {
		if jsonErr := json.Unmarshal([]byte(shots), &t.Screenshots); jsonErr != nil {
			t.Screenshots = nil
		}
	}
	return &t, nil
}

func (s *SQLiteStore) GetTrade(ctx context.Context, id string) (*domain.Trade, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = ?`, id)
	t, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return t, err
}

func (s *SQLiteStore) ListTrades(ctx context.Context) ([]*domain.Trade, error) {
	return s.queryTrades(ctx, `SELECT `+tradeColumns+` FROM trades ORDER BY created_at DESC, id DESC`)
}

func (s *SQLiteStore) ListTradesByUser(ctx context.Context, userID string) ([]*domain.Trade, error) {
	return s.queryTrades(ctx, `SELECT `+tradeColumns+` FROM trades WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
}

func (s *SQLiteStore) queryTrades(ctx context.Context, query string, args ...any) ([]*domain.Trade, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*domain.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func (s *SQLiteStore) DeleteTrade(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceAllTrades swaps the whole trade table for the given list in
// one transaction. Used by backup import only.
func (s *SQLiteStore) ReplaceAllTrades(ctx context.Context, trades []*domain.Trade) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trades`); err != nil {
		return err
	}
	insert := `INSERT INTO trades (` + tradeColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, t := range trades {
		if _, err := tx.ExecContext(ctx, insert, tradeArgs(t)...); err != nil {
			return fmt.Errorf("failed to insert trade %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// UserRepository implementation

func (s *SQLiteStore) SaveUser(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (id, username, password_hash, role, is_active, created_at, initial_balance, use_initial_balance)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT(id) DO UPDATE SET
			  username=excluded.username, password_hash=excluded.password_hash, role=excluded.role,
			  is_active=excluded.is_active, initial_balance=excluded.initial_balance,
			  use_initial_balance=excluded.use_initial_balance`
	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Username, u.PasswordHash, string(u.Role), u.IsActive, u.CreatedAt,
		u.InitialBalance, u.UseInitialBalance)
	return err
}

const userColumns = `id, username, password_hash, role, is_active, created_at, initial_balance, use_initial_balance`

func scanUser(scanner interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	var role string
	err := scanner.Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &u.IsActive,
		&u.CreatedAt, &u.InitialBalance, &u.UseInitialBalance)
	if err != nil {
		return nil, err
	}
	u.Role = domain.RoleUser
	if role == string(domain.RoleAdmin) {
		u.Role = domain.RoleAdmin
	}
	return &u, nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return u, err
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return u, err
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// DeleteUserCascade removes the account and its trades atomically, so a
// failure can never leave orphaned trades behind.
func (s *SQLiteStore) DeleteUserCascade(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trades WHERE user_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}

func (s *SQLiteStore) SaveInvite(ctx context.Context, inv *domain.Invite) error {
	query := `INSERT INTO invites (email, password_hash, role, created_at)
			  VALUES (?, ?, ?, ?)
			  ON CONFLICT(email) DO UPDATE SET
			  password_hash=excluded.password_hash, role=excluded.role, created_at=excluded.created_at`
	_, err := s.db.ExecContext(ctx, query, inv.Email, inv.PasswordHash, string(inv.Role), inv.CreatedAt)
	return err
}

func (s *SQLiteStore) FindInvite(ctx context.Context, email string) (*domain.Invite, error) {
	row := s.db.QueryRowContext(ctx, `SELECT email, password_hash, role, created_at FROM invites WHERE email = ?`, email)
	var inv domain.Invite
	var role string
	err := row.Scan(&inv.Email, &inv.PasswordHash, &role, &inv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	inv.Role = domain.RoleUser
	if role == string(domain.RoleAdmin) {
		inv.Role = domain.RoleAdmin
	}
	return &inv, nil
}

func (s *SQLiteStore) DeleteInvite(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM invites WHERE email = ?`, email)
	return err
}

// OptionRepository implementation

func (s *SQLiteStore) ListSetups(ctx context.Context) ([]string, error) {
	return s.listOptions(ctx, "setup")
}

func (s *SQLiteStore) ListSymbols(ctx context.Context) ([]string, error) {
	return s.listOptions(ctx, "symbol")
}

func (s *SQLiteStore) ReplaceSetups(ctx context.Context, setups []string) error {
	return s.replaceOptions(ctx, "setup", setups)
}

func (s *SQLiteStore) ReplaceSymbols(ctx context.Context, symbols []string) error {
	return s.replaceOptions(ctx, "symbol", symbols)
}

func (s *SQLiteStore) listOptions(ctx context.Context, kind string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT value FROM options WHERE kind = ? ORDER BY position`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (s *SQLiteStore) replaceOptions(ctx context.Context, kind string, values []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM options WHERE kind = ?`, kind); err != nil {
		return err
	}
	for i, v := range values {
		if _, err := tx.ExecContext(ctx, `INSERT INTO options (kind, position, value) VALUES (?, ?, ?)`, kind, i, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}
