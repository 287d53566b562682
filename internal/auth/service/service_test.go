package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/birracraft/internal/auth/domain"
	"github.com/smallbiznis/birracraft/internal/auth/repository"
	"github.com/smallbiznis/birracraft/internal/clock"
	"github.com/smallbiznis/birracraft/internal/config"
	"github.com/smallbiznis/birracraft/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturedMail struct {
	kind string
	to   string
	link string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []capturedMail
}

func (f *fakeNotifier) SendActivation(_ context.Context, user authdomain.UserResponse, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, capturedMail{kind: "activation", to: user.Email, link: link})
	return nil
}

func (f *fakeNotifier) SendPasswordReset(_ context.Context, user authdomain.UserResponse, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, capturedMail{kind: "reset", to: user.Email, link: link})
	return nil
}

func (f *fakeNotifier) last() capturedMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

type fakeRoles struct {
	assigned []string
	removed  []string
}

func (f *fakeRoles) AssignDefaultRole(_ context.Context, userID string) error {
	f.assigned = append(f.assigned, userID)
	return nil
}

func (f *fakeRoles) RemoveUser(_ context.Context, userID string) error {
	f.removed = append(f.removed, userID)
	return nil
}

type fixture struct {
	svc      authdomain.Service
	clock    *clock.FakeClock
	notifier *fakeNotifier
	roles    *fakeRoles
}

func newTestService(t *testing.T) fixture {
	t.Helper()
	return newTestServiceWithPasswords(t, config.PasswordConfig{HashMemoryKiB: 1024, HashThreads: 1})
}

func newTestServiceWithPasswords(t *testing.T, passwords config.PasswordConfig) fixture {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&authdomain.User{}, &authdomain.Session{}))

	repo, sessionRepo := repository.New(dbConn)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	f := fixture{
		clock:    clock.NewFakeClock(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)),
		notifier: &fakeNotifier{},
		roles:    &fakeRoles{},
	}
	f.svc = New(Params{
		Log: zap.NewNop(),
		Cfg: config.Config{
			PublicBaseURL: "http://api.test",
			Auth: config.AuthConfig{
				TokenSecret:   "test-secret",
				AccessTTL:     5 * time.Minute,
				RefreshTTL:    time.Hour,
				ActivationTTL: 24 * time.Hour,
				Password:      passwords,
			},
		},
		Repo:        repo,
		SessionRepo: sessionRepo,
		GenID:       node,
		Clock:       f.clock,
		Notifier:    f.notifier,
		Roles:       f.roles,
	})
	return f
}

// linkParts splits ".../<uid>/<token>" into its last two segments.
func linkParts(t *testing.T, link string) (string, string) {
	t.Helper()
	parts := strings.Split(link, "/")
	require.GreaterOrEqual(t, len(parts), 2)
	return parts[len(parts)-2], parts[len(parts)-1]
}

func register(t *testing.T, f fixture, username string) *authdomain.UserResponse {
	t.Helper()
	user, err := f.svc.Register(context.Background(), authdomain.RegisterRequest{
		Username: username,
		Email:    username + "@birracraft.test",
		Password: "cerveza-roja",
	})
	require.NoError(t, err)
	return user
}

func activate(t *testing.T, f fixture) {
	t.Helper()
	mail := f.notifier.last()
	require.Equal(t, "activation", mail.kind)
	uid, token := linkParts(t, mail.link)
	require.NoError(t, f.svc.Activate(context.Background(), uid, token))
}

func TestRegisterCreatesInactiveUser(t *testing.T) {
	f := newTestService(t)
	ctx := context.Background()

	user := register(t, f, "ana")
	assert.False(t, user.IsActive)
	assert.Equal(t, []string{user.ID}, f.roles.assigned)

	mail := f.notifier.last()
	assert.Equal(t, "ana@birracraft.test", mail.to)
	assert.True(t, strings.HasPrefix(mail.link, "http://api.test/api/user/activate/"))

	_, err := f.svc.IssueTokens(ctx, authdomain.TokenRequest{Username: "ana", Password: "cerveza-roja"})
	assert.ErrorIs(t, err, authdomain.ErrInactiveUser)
}

func TestRegisterValidation(t *testing.T) {
	f := newTestService(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, authdomain.RegisterRequest{Username: "bob", Email: "bob@x.io", Password: "short"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidPassword)

	_, err = f.svc.Register(ctx, authdomain.RegisterRequest{Username: "bob", Email: "not-an-email", Password: "long-enough"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidEmail)

	_, err = f.svc.Register(ctx, authdomain.RegisterRequest{Username: "", Email: "bob@x.io", Password: "long-enough"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidUsername)

	register(t, f, "bob")
	_, err = f.svc.Register(ctx, authdomain.RegisterRequest{Username: "bob", Email: "other@x.io", Password: "long-enough"})
	assert.ErrorIs(t, err, authdomain.ErrUserExists)
}

func TestRegisterUsesConfiguredPasswordPolicy(t *testing.T) {
	f := newTestServiceWithPasswords(t, config.PasswordConfig{MinLength: 12, HashTime: 2, HashMemoryKiB: 2048, HashThreads: 1})
	ctx := context.Background()

	_, err := f.svc.Register(ctx, authdomain.RegisterRequest{Username: "eva", Email: "eva@x.io", Password: "long-enough"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidPassword)

	_, err = f.svc.Register(ctx, authdomain.RegisterRequest{Username: "eva", Email: "eva@x.io", Password: "twelve-chars"})
	require.NoError(t, err)
	activate(t, f)

	pair, err := f.svc.IssueTokens(ctx, authdomain.TokenRequest{Username: "eva", Password: "twelve-chars"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
}

func TestActivationThenTokens(t *testing.T) {
	f := newTestService(t)
	ctx := context.Background()

	register(t, f, "carla")
	mail := f.notifier.last()
	uid, token := linkParts(t, mail.link)

	assert.ErrorIs(t, f.svc.Activate(ctx, uid, token+"x"), authdomain.ErrInvalidLink)
	require.NoError(t, f.svc.Activate(ctx, uid, token))
	// the flag is part of the digest, so the same link cannot be replayed
	assert.ErrorIs(t, f.svc.Activate(ctx, uid, token), authdomain.ErrInvalidLink)

	_, err := f.svc.IssueTokens(ctx, authdomain.TokenRequest{Username: "carla", Password: "wrong-password"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)

	pair, err := f.svc.IssueTokens(ctx, authdomain.TokenRequest{Username: "carla", Password: "cerveza-roja"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)

	user, err := f.svc.Authenticate(ctx, pair.Access)
	require.NoError(t, err)
	assert.Equal(t, "carla", user.Username)
}

func TestAccessExpiryAndRefresh(t *testing.T) {
	f := newTestService(t)
	ctx := context.Background()

	register(t, f, "dario")
	activate(t, f)
	pair, err := f.svc.IssueTokens(ctx, authdomain.TokenRequest{Username: "dario", Password: "cerveza-roja"})
	require.NoError(t, err)

	f.clock.Advance(6 * time.Minute)
	_, err = f.svc.Authenticate(ctx, pair.Access)
	assert.ErrorIs(t, err, authdomain.ErrSessionExpired)

	refreshed, err := f.svc.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	assert.Empty(t, refreshed.Refresh)

	_, err = f.svc.Authenticate(ctx, refreshed.Access)
	require.NoError(t, err)
	_, err = f.svc.Authenticate(ctx, pair.Access)
	assert.ErrorIs(t, err, authdomain.ErrInvalidSession)

	f.clock.Advance(time.Hour)
	_, err = f.svc.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, authdomain.ErrSessionExpired)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newTestService(t)
	ctx := context.Background()

	register(t, f, "elena")
	activate(t, f)
	pair, err := f.svc.IssueTokens(ctx, authdomain.TokenRequest{Username: "elena", Password: "cerveza-roja"})
	require.NoError(t, err)

	view, err := f.svc.RequestPasswordReset(ctx, "ELENA@birracraft.test")
	require.NoError(t, err)
	assert.Equal(t, "elena", view.Username)

	mail := f.notifier.last()
	require.Equal(t, "reset", mail.kind)
	uid, token := linkParts(t, mail.link)
	require.NoError(t, f.svc.CheckResetLink(ctx, uid, token))

	_, err = f.svc.SetNewPassword(ctx, authdomain.SetPasswordRequest{Username: "someone", Password: "nueva-clave", UID: uid, Token: token})
	assert.ErrorIs(t, err, authdomain.ErrInvalidLink)

	_, err = f.svc.SetNewPassword(ctx, authdomain.SetPasswordRequest{Username: "elena", Password: "nueva-clave", UID: uid, Token: token})
	require.NoError(t, err)

	// new hash invalidates the link and the old sessions
	assert.ErrorIs(t, f.svc.CheckResetLink(ctx, uid, token), authdomain.ErrInvalidLink)
	_, err = f.svc.Authenticate(ctx, pair.Access)
	assert.ErrorIs(t, err, authdomain.ErrSessionRevoked)

	_, err = f.svc.IssueTokens(ctx, authdomain.TokenRequest{Username: "elena", Password: "nueva-clave"})
	require.NoError(t, err)
}

func TestUpdateAndDelete(t *testing.T) {
	f := newTestService(t)
	ctx := context.Background()

	created := register(t, f, "fede")
	register(t, f, "gabi")

	first := "Federico"
	updated, err := f.svc.Update(ctx, "fede", authdomain.UpdateUserRequest{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Federico", updated.FirstName)
	assert.Equal(t, "fede@birracraft.test", updated.Email)

	taken := "gabi@birracraft.test"
	_, err = f.svc.Update(ctx, "fede", authdomain.UpdateUserRequest{Email: &taken})
	assert.ErrorIs(t, err, authdomain.ErrUserExists)

	users, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "fede", users[0].Username)

	require.NoError(t, f.svc.Delete(ctx, "fede"))
	assert.Equal(t, []string{created.ID}, f.roles.removed)
	_, err = f.svc.GetByUsername(ctx, "fede")
	assert.ErrorIs(t, err, authdomain.ErrUserNotFound)
}
