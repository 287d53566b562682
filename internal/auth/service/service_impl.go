package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"math"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/birracraft/internal/auth/domain"
	"github.com/smallbiznis/birracraft/internal/auth/linktoken"
	"github.com/smallbiznis/birracraft/internal/auth/password"
	"github.com/smallbiznis/birracraft/internal/clock"
	"github.com/smallbiznis/birracraft/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	sessionTokenBytes = 32
	maxUsernameLength = 150
)

type Params struct {
	fx.In

	Log         *zap.Logger
	Cfg         config.Config
	Repo        domain.Repository
	SessionRepo domain.SessionRepository
	GenID       *snowflake.Node
	Clock       clock.Clock         `optional:"true"`
	Notifier    domain.Notifier     `optional:"true"`
	Roles       domain.RoleAssigner `optional:"true"`
}

type Service struct {
	log         *zap.Logger
	cfg         config.AuthConfig
	baseURL     string
	repo        domain.Repository
	sessionRepo domain.SessionRepository
	genID       *snowflake.Node
	clock       clock.Clock
	links       *linktoken.Generator
	passwords   password.Policy
	notifier    domain.Notifier
	roles       domain.RoleAssigner
}

func New(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		log:         p.Log.Named("auth.service"),
		cfg:         p.Cfg.Auth,
		baseURL:     p.Cfg.PublicBaseURL,
		repo:        p.Repo,
		sessionRepo: p.SessionRepo,
		genID:       p.GenID,
		clock:       clk,
		links:       linktoken.New(p.Cfg.Auth.TokenSecret, p.Cfg.Auth.ActivationTTL, clk),
		passwords:   passwordPolicy(p.Cfg.Auth.Password),
		notifier:    p.Notifier,
		roles:       p.Roles,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.UserResponse, error) {
	username := strings.TrimSpace(req.Username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}
	if err := s.validatePassword(req.Password); err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, username, email, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	hashed, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:                  s.genID.Generate(),
		Username:            username,
		Email:               email,
		FirstName:           strings.TrimSpace(req.FirstName),
		LastName:            strings.TrimSpace(req.LastName),
		PasswordHash:        hashed,
		IsActive:            false,
		LastPasswordChanged: &now,
		Metadata:            datatypes.JSONMap{"source": "signup"},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.roles != nil {
		if err := s.roles.AssignDefaultRole(ctx, user.ID.String()); err != nil {
			return nil, err
		}
	}

	view := user.Response()
	link := s.baseURL + "/api/user/activate/" + linktoken.EncodeUID(user.Email) + "/" + s.links.Make(linktoken.PurposeActivation, *user)
	if s.notifier != nil {
		if err := s.notifier.SendActivation(ctx, view, link); err != nil {
			s.log.Warn("failed to send activation email", zap.String("user_id", view.ID), zap.Error(err))
		}
	}
	s.log.Info("user registered", zap.String("user_id", view.ID))
	return &view, nil
}

func (s *Service) Activate(ctx context.Context, uidb64, token string) error {
	email, err := linktoken.DecodeUID(uidb64)
	if err != nil {
		return domain.ErrInvalidLink
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidLink
		}
		return err
	}
	if !s.links.Check(linktoken.PurposeActivation, *user, token) {
		return domain.ErrInvalidLink
	}
	return s.repo.UpdateFields(ctx, user.ID, map[string]any{
		"is_active":  true,
		"updated_at": s.clock.Now(),
	})
}

func (s *Service) RequestPasswordReset(ctx context.Context, email string) (*domain.UserResponse, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}
	user, err := s.repo.FindByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}

	view := user.Response()
	link := s.baseURL + "/api/user/reset_password/" + linktoken.EncodeUID(user.ID.String()) + "/" + s.links.Make(linktoken.PurposeReset, *user)
	if s.notifier != nil {
		if err := s.notifier.SendPasswordReset(ctx, view, link); err != nil {
			return nil, err
		}
	}
	return &view, nil
}

func (s *Service) CheckResetLink(ctx context.Context, uidb64, token string) error {
	_, err := s.resetTarget(ctx, uidb64, token)
	return err
}

func (s *Service) SetNewPassword(ctx context.Context, req domain.SetPasswordRequest) (*domain.UserResponse, error) {
	user, err := s.resetTarget(ctx, req.UID, req.Token)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(req.Username), user.Username) {
		return nil, domain.ErrInvalidLink
	}
	if err := s.validatePassword(req.Password); err != nil {
		return nil, err
	}
	if err := s.setPassword(ctx, user, req.Password); err != nil {
		return nil, err
	}
	view := user.Response()
	return &view, nil
}

func (s *Service) resetTarget(ctx context.Context, uidb64, token string) (*domain.User, error) {
	raw, err := linktoken.DecodeUID(uidb64)
	if err != nil {
		return nil, domain.ErrInvalidLink
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return nil, domain.ErrInvalidLink
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidLink
		}
		return nil, err
	}
	if !s.links.Check(linktoken.PurposeReset, *user, token) {
		return nil, domain.ErrInvalidLink
	}
	return user, nil
}

func (s *Service) setPassword(ctx context.Context, user *domain.User, raw string) error {
	hashed, err := s.passwords.Hash(raw)
	if err != nil {
		return err
	}
	now := s.clock.Now()
	if err := s.repo.UpdateFields(ctx, user.ID, map[string]any{
		"password_hash":         hashed,
		"last_password_changed": &now,
		"updated_at":            now,
	}); err != nil {
		return err
	}
	user.PasswordHash = hashed
	return s.sessionRepo.RevokeUserSessions(ctx, user.ID, now)
}

func (s *Service) IssueTokens(ctx context.Context, req domain.TokenRequest) (*domain.TokenPair, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !password.Verify(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveUser
	}

	access, err := newSessionToken()
	if err != nil {
		return nil, err
	}
	refresh, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &domain.Session{
		ID:               s.genID.Generate(),
		UserID:           user.ID,
		AccessTokenHash:  hashToken(access),
		RefreshTokenHash: hashToken(refresh),
		UserAgent:        strings.TrimSpace(req.UserAgent),
		IPAddress:        strings.TrimSpace(req.IPAddress),
		AccessExpiresAt:  now.Add(s.cfg.AccessTTL),
		RefreshExpiresAt: now.Add(s.cfg.RefreshTTL),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.sessionRepo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFields(ctx, user.ID, map[string]any{"last_login": &now}); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		Access:           access,
		Refresh:          refresh,
		AccessExpiresAt:  session.AccessExpiresAt,
		RefreshExpiresAt: session.RefreshExpiresAt,
	}, nil
}

func (s *Service) Refresh(ctx context.Context, rawRefresh string) (*domain.TokenPair, error) {
	token := strings.TrimSpace(rawRefresh)
	if token == "" {
		return nil, domain.ErrInvalidSession
	}
	session, err := s.sessionRepo.GetByRefreshHash(ctx, hashToken(token))
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if err := checkSession(session.RevokedAt != nil, now.After(session.RefreshExpiresAt)); err != nil {
		return nil, err
	}

	access, err := newSessionToken()
	if err != nil {
		return nil, err
	}
	expiresAt := now.Add(s.cfg.AccessTTL)
	if err := s.sessionRepo.RotateAccess(ctx, session.ID, hashToken(access), expiresAt); err != nil {
		return nil, err
	}
	return &domain.TokenPair{Access: access, AccessExpiresAt: expiresAt}, nil
}

func (s *Service) Authenticate(ctx context.Context, rawAccess string) (*domain.User, error) {
	token := strings.TrimSpace(rawAccess)
	if token == "" {
		return nil, domain.ErrInvalidSession
	}
	session, err := s.sessionRepo.GetByAccessHash(ctx, hashToken(token))
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if err := checkSession(session.RevokedAt != nil, now.After(session.AccessExpiresAt)); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveUser
	}

	if err := s.sessionRepo.UpdateLastSeen(ctx, session.ID, now); err != nil {
		s.log.Warn("failed to touch session", zap.String("session_id", session.ID.String()), zap.Error(err))
	}
	return user, nil
}

func (s *Service) List(ctx context.Context) ([]domain.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.Response())
	}
	return out, nil
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*domain.UserResponse, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	view := user.Response()
	return &view, nil
}

func (s *Service) Update(ctx context.Context, username string, req domain.UpdateUserRequest) (*domain.UserResponse, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}

	next := *user
	if req.Username != nil {
		next.Username = strings.TrimSpace(*req.Username)
		if err := validateUsername(next.Username); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		email, err := normalizeEmail(*req.Email)
		if err != nil {
			return nil, domain.ErrInvalidEmail
		}
		next.Email = email
	}
	if req.FirstName != nil {
		next.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		next.LastName = strings.TrimSpace(*req.LastName)
	}
	if next.Username != user.Username || next.Email != user.Email {
		exists, err := s.repo.Exists(ctx, next.Username, next.Email, user.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrUserExists
		}
	}

	next.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateFields(ctx, user.ID, map[string]any{
		"username":   next.Username,
		"email":      next.Email,
		"first_name": next.FirstName,
		"last_name":  next.LastName,
		"updated_at": next.UpdatedAt,
	}); err != nil {
		return nil, err
	}

	if req.Password != nil {
		if err := s.validatePassword(*req.Password); err != nil {
			return nil, err
		}
		if err := s.setPassword(ctx, &next, *req.Password); err != nil {
			return nil, err
		}
	}

	view := next.Response()
	return &view, nil
}

func (s *Service) Delete(ctx context.Context, username string) error {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, user.ID); err != nil {
		return err
	}
	if s.roles != nil {
		if err := s.roles.RemoveUser(ctx, user.ID.String()); err != nil {
			s.log.Warn("failed to drop user roles", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}
	return nil
}

func checkSession(revoked, expired bool) error {
	if revoked {
		return domain.ErrSessionRevoked
	}
	if expired {
		return domain.ErrSessionExpired
	}
	return nil
}

func validateUsername(username string) error {
	if username == "" || utf8.RuneCountInString(username) > maxUsernameLength || strings.ContainsAny(username, " /") {
		return domain.ErrInvalidUsername
	}
	return nil
}

func (s *Service) validatePassword(raw string) error {
	if err := s.passwords.Validate(raw); err != nil {
		return domain.ErrInvalidPassword
	}
	return nil
}

// passwordPolicy clamps out-of-range config values to the defaults.
func passwordPolicy(cfg config.PasswordConfig) password.Policy {
	p := password.Policy{MinLength: cfg.MinLength}
	if cfg.HashTime > 0 && int64(cfg.HashTime) <= math.MaxUint32 {
		p.Time = uint32(cfg.HashTime)
	}
	if cfg.HashMemoryKiB > 0 && int64(cfg.HashMemoryKiB) <= math.MaxUint32 {
		p.MemoryKiB = uint32(cfg.HashMemoryKiB)
	}
	if cfg.HashThreads > 0 && cfg.HashThreads <= math.MaxUint8 {
		p.Threads = uint8(cfg.HashThreads)
	}
	return password.NewPolicy(p)
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(addr.Address)), nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
