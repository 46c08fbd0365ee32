package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/vitos/trade_journal/internal/domain"
	"github.com/vitos/trade_journal/pkg/id"
)

// UserService owns accounts, invitations and the role gate around
// mutating them. Passwords only ever exist here as bcrypt hashes.
type UserService struct {
	repo   domain.UserRepository
	logger *zap.Logger
}

func NewUserService(repo domain.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// Authenticate verifies the credentials and returns the account.
// Disabled accounts are rejected even with a correct password.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}
	return user, nil
}

// Signup consumes an invitation: the email must have a pending invite
// and the password must match the one set by the inviting admin. The
// invite is deleted once the account exists.
func (s *UserService) Signup(ctx context.Context, email, password string) (*domain.User, error) {
	invite, err := s.repo.FindInvite(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(invite.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user := &domain.User{
		ID:           id.New(),
		Username:     email,
		PasswordHash: invite.PasswordHash,
		Role:         invite.Role,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create account for %s: %w", email, err)
	}
	if err := s.repo.DeleteInvite(ctx, email); err != nil {
		s.logger.Warn("failed to consume invite", zap.String("email", email), zap.Error(err))
	}
	s.logger.Info("account created from invite", zap.String("user", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// CreateUser registers an account directly (admin action or bootstrap).
func (s *UserService) CreateUser(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	if _, err := s.repo.GetUserByUsername(ctx, username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:           id.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user %s: %w", username, err)
	}
	return user, nil
}

// Invite records a pending signup for an email address.
func (s *UserService) Invite(ctx context.Context, email, password string, role domain.Role) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	invite := &domain.Invite{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.SaveInvite(ctx, invite); err != nil {
		return fmt.Errorf("failed to save invite for %s: %w", email, err)
	}
	return nil
}

// UserUpdate carries the admin-editable account fields. Nil members are
// left unchanged.
type UserUpdate struct {
	Password          *string      `json:"password,omitempty"`
	Role              *domain.Role `json:"role,omitempty"`
	IsActive          *bool        `json:"isActive,omitempty"`
	InitialBalance    *float64     `json:"initialBalance,omitempty"`
	UseInitialBalance *bool        `json:"useInitialBalance,omitempty"`
}

// UpdateUser applies an admin edit to the target account. Deactivating
// or demoting the actor's own account is refused so an admin cannot
// lock themselves out.
func (s *UserService) UpdateUser(ctx context.Context, targetID string, update UserUpdate, actor *domain.User) (*domain.User, error) {
	user, err := s.repo.GetUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if targetID == actor.ID {
		if update.IsActive != nil && !*update.IsActive {
			return nil, domain.ErrSelfDelete
		}
		if update.Role != nil && *update.Role != actor.Role {
			return nil, domain.ErrSelfDelete
		}
	}

	if update.Password != nil && *update.Password != "" {
		hash, err := hashPassword(*update.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if update.Role != nil {
		user.Role = *update.Role
	}
	if update.IsActive != nil {
		user.IsActive = *update.IsActive
	}
	if update.InitialBalance != nil {
		user.InitialBalance = *update.InitialBalance
	}
	if update.UseInitialBalance != nil {
		user.UseInitialBalance = *update.UseInitialBalance
	}

	if err := s.repo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", targetID, err)
	}
	s.logger.Info("user updated", zap.String("target", targetID), zap.String("actor", actor.ID))
	return user, nil
}

// ChangeOwnPassword is the self-service credential update.
func (s *UserService) ChangeOwnPassword(ctx context.Context, actor *domain.User, current, next string) error {
	if bcrypt.CompareHashAndPassword([]byte(actor.PasswordHash), []byte(current)) != nil {
		return domain.ErrInvalidCredentials
	}
	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	actor.PasswordHash = hash
	if err := s.repo.SaveUser(ctx, actor); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}

// DeleteUser removes the target account and all of its trades in one
// transaction. Deleting the authenticated account is refused.
func (s *UserService) DeleteUser(ctx context.Context, targetID string, actor *domain.User) error {
	if targetID == actor.ID {
		return domain.ErrSelfDelete
	}
	if _, err := s.repo.GetUser(ctx, targetID); err != nil {
		return err
	}
	if err := s.repo.DeleteUserCascade(ctx, targetID); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", targetID, err)
	}
	s.logger.Info("user deleted with trade cascade", zap.String("target", targetID), zap.String("actor", actor.ID))
	return nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.ListUsers(ctx)
}

func hashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
