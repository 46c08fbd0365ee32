package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitos/trade_journal/internal/domain"
	"github.com/vitos/trade_journal/internal/usecase"
)

func newUserService(store *memStore) *usecase.UserService {
	return usecase.NewUserService(store, zap.NewNop())
}

func TestAuthenticate(t *testing.T) {
	store := newMemStore()
	svc := newUserService(store)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "alice", "hunter22", domain.RoleUser)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", created.PasswordHash, "password must never be stored in the clear")

	user, err := svc.Authenticate(ctx, "alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "hunter22")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticateDisabledAccount(t *testing.T) {
	store := newMemStore()
	svc := newUserService(store)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "bob", "pw123456", domain.RoleUser)
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, store.SaveUser(ctx, user))

	_, err = svc.Authenticate(ctx, "bob", "pw123456")
	assert.ErrorIs(t, err, domain.ErrAccountDisabled)
}

func TestSignupConsumesInvite(t *testing.T) {
	store := newMemStore()
	svc := newUserService(store)
	ctx := context.Background()

	require.NoError(t, svc.Invite(ctx, "carol@example.com", "welcome1", domain.RoleUser))

	_, err := svc.Signup(ctx, "carol@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	user, err := svc.Signup(ctx, "carol@example.com", "welcome1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.Empty(t, store.Invites, "invite must be consumed")

	_, err = svc.Signup(ctx, "carol@example.com", "welcome1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestSelfDeleteGuard(t *testing.T) {
	store := newMemStore()
	svc := newUserService(store)
	ctx := context.Background()

	admin, err := svc.CreateUser(ctx, "root", "rootpass", domain.RoleAdmin)
	require.NoError(t, err)

	err = svc.DeleteUser(ctx, admin.ID, admin)
	assert.ErrorIs(t, err, domain.ErrSelfDelete)
	assert.Len(t, store.Users, 1, "user list must be unchanged")

	off := false
	_, err = svc.UpdateUser(ctx, admin.ID, usecase.UserUpdate{IsActive: &off}, admin)
	assert.ErrorIs(t, err, domain.ErrSelfDelete)
	assert.True(t, store.Users[0].IsActive)

	demoted := domain.RoleUser
	_, err = svc.UpdateUser(ctx, admin.ID, usecase.UserUpdate{Role: &demoted}, admin)
	assert.ErrorIs(t, err, domain.ErrSelfDelete)
}

func TestDeleteUserCascades(t *testing.T) {
	store := newMemStore()
	svc := newUserService(store)
	ctx := context.Background()

	admin, err := svc.CreateUser(ctx, "root", "rootpass", domain.RoleAdmin)
	require.NoError(t, err)
	victim, err := svc.CreateUser(ctx, "dave", "davepass", domain.RoleUser)
	require.NoError(t, err)

	store.Trades = []*domain.Trade{
		{ID: "t1", UserID: victim.ID},
		{ID: "t2", UserID: admin.ID},
		{ID: "t3", UserID: victim.ID},
	}

	require.NoError(t, svc.DeleteUser(ctx, victim.ID, admin))
	assert.Len(t, store.Users, 1)
	require.Len(t, store.Trades, 1)
	assert.Equal(t, admin.ID, store.Trades[0].UserID)
}

func TestUpdateUserResetsPassword(t *testing.T) {
	store := newMemStore()
	svc := newUserService(store)
	ctx := context.Background()

	admin, err := svc.CreateUser(ctx, "root", "rootpass", domain.RoleAdmin)
	require.NoError(t, err)
	target, err := svc.CreateUser(ctx, "erin", "oldpass1", domain.RoleUser)
	require.NoError(t, err)

	newPass := "newpass1"
	_, err = svc.UpdateUser(ctx, target.ID, usecase.UserUpdate{Password: &newPass}, admin)
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "erin", "oldpass1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "erin", "newpass1")
	assert.NoError(t, err)
}

func TestChangeOwnPassword(t *testing.T) {
	store := newMemStore()
	svc := newUserService(store)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "frank", "first123", domain.RoleUser)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangeOwnPassword(ctx, user, "bad", "second12"), domain.ErrInvalidCredentials)
	require.NoError(t, svc.ChangeOwnPassword(ctx, user, "first123", "second12"))

	_, err = svc.Authenticate(ctx, "frank", "second12")
	assert.NoError(t, err)
}

func TestCreateUserDuplicate(t *testing.T) {
	svc := newUserService(newMemStore())
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "gina", "pass1234", domain.RoleUser)
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, "gina", "pass1234", domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}
