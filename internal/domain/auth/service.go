package auth

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/yanqian/rencard-user/pkg/errors"
	"github.com/yanqian/rencard-user/pkg/metrics"
	"github.com/yanqian/rencard-user/pkg/util"
)

// Service exposes authentication workflows.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (Result, error)
	Login(ctx context.Context, req LoginRequest) (Result, error)
	Refresh(ctx context.Context, req RefreshRequest) (Result, error)
	Logout(ctx context.Context) error
	ChangePassword(ctx context.Context, req ChangePasswordRequest) (Result, error)
	Authenticate(ctx context.Context, accessToken string) (Claims, error)
	ResumeSession(ctx context.Context, sessionID string) (SessionTicket, bool, error)
	DefaultMode() SessionMode
}

type service struct {
	cfg      Config
	users    UserDirectory
	tokens   RefreshTokenStore
	issuer   *TokenIssuer
	sessions *SessionBinder
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

const (
	opRegister       = "register"
	opLogin          = "login"
	opRefresh        = "refresh"
	opLogout         = "logout"
	opChangePassword = "change_password"
)

// NewService constructs a Service instance. It fails when the token
// configuration cannot sign tokens.
func NewService(cfg Config, users UserDirectory, tokens RefreshTokenStore, sessions SessionStore, recorder Recorder, logger *slog.Logger) (Service, error) {
	issuer, err := NewTokenIssuer(cfg.Token)
	if err != nil {
		return nil, err
	}
	if cfg.CookieLifetime <= 0 {
		return nil, apperrors.Wrap(apperrors.CodeConfig, "cookie lifetime must be positive", nil)
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &service{
		cfg:      cfg,
		users:    users,
		tokens:   tokens,
		issuer:   issuer,
		sessions: NewSessionBinder(sessions, cfg.CookieLifetime, logger),
		recorder: recorder,
		logger:   logger.With("component", "auth.service"),
		now:      util.NowUTC,
	}, nil
}

func (s *service) DefaultMode() SessionMode {
	return s.cfg.DefaultMode
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (res Result, err error) {
	defer func() { s.observe(opRegister, res, err) }()

	if errs := ValidateRegistration(req, s.now()); len(errs) > 0 {
		return failed(FailureValidation, errs...), nil
	}
	email, _ := NormalizeEmail(req.Email)
	principal, err := s.users.CreateUser(ctx, NewUser{
		Email:       email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		BirthDate:   req.BirthDate,
		Sex:         req.Sex,
	})
	if err != nil {
		if dirErr, ok := AsDirectoryError(err); ok {
			return failed(dirErr.Kind, dirErr.Messages...), nil
		}
		return Result{}, apperrors.Wrap(apperrors.CodeAuth, "failed to create user", err)
	}
	s.logger.Info("user registered", "user_id", principal.ID)
	return s.issueTokens(ctx, principal, ModeFromUseJWT(req.UseJWT))
}

func (s *service) Login(ctx context.Context, req LoginRequest) (res Result, err error) {
	defer func() { s.observe(opLogin, res, err) }()

	if errs := ValidateLogin(req.Email, req.Password); len(errs) > 0 {
		return failed(FailureValidation, errs...), nil
	}
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return failed(FailureAuthentication, MsgInvalidCredentials), nil
	}
	principal, found, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeAuth, "failed to fetch user", err)
	}
	if !found {
		return failed(FailureAuthentication, MsgInvalidCredentials), nil
	}
	ok, err := s.users.VerifyPassword(ctx, principal, req.Password)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeAuth, "failed to verify password", err)
	}
	if !ok {
		return failed(FailureAuthentication, MsgInvalidCredentials), nil
	}
	return s.issueTokens(ctx, principal, ModeFromUseJWT(req.UseJWT))
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (res Result, err error) {
	defer func() { s.observe(opRefresh, res, err) }()

	principal, found, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeAuth, "failed to load user", err)
	}
	if !found {
		return failed(FailureAuthentication, MsgUserNotFound), nil
	}
	// An authenticated caller may only refresh its own tokens.
	if callerID, ok := CallerIDFromContext(ctx); ok && callerID != principal.ID {
		s.logger.Warn("refresh rejected for mismatched caller", "user_id", principal.ID)
		return failed(FailureAuthentication, MsgInvalidRefreshToken), nil
	}
	valid, err := s.tokens.Validate(ctx, principal.ID, req.RefreshToken)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeStorage, "failed to validate refresh token", err)
	}
	if !valid {
		return failed(FailureAuthentication, MsgInvalidRefreshToken), nil
	}
	return s.issueTokens(ctx, principal, s.cfg.DefaultMode)
}

func (s *service) Logout(ctx context.Context) (err error) {
	defer func() { s.observe(opLogout, Result{Success: err == nil}, err) }()

	// Bearer tokens stay valid until they expire; there is no revocation list.
	if s.cfg.DefaultMode != ModeCookie {
		return nil
	}
	sessionID, ok := SessionIDFromContext(ctx)
	if !ok {
		return nil
	}
	return s.sessions.Terminate(ctx, sessionID)
}

func (s *service) ChangePassword(ctx context.Context, req ChangePasswordRequest) (res Result, err error) {
	defer func() { s.observe(opChangePassword, res, err) }()

	callerID, ok := CallerIDFromContext(ctx)
	if !ok {
		return failed(FailureAuthentication, MsgUnauthorized), nil
	}
	principal, found, err := s.users.FindByID(ctx, callerID)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeAuth, "failed to load user", err)
	}
	if !found {
		return failed(FailureAuthentication, MsgUserNotFound), nil
	}
	// Existing sessions and refresh tokens are left untouched.
	if err := s.users.ChangePassword(ctx, principal, req.CurrentPassword, req.NewPassword); err != nil {
		if dirErr, ok := AsDirectoryError(err); ok {
			return failed(dirErr.Kind, dirErr.Messages...), nil
		}
		return Result{}, apperrors.Wrap(apperrors.CodeAuth, "failed to change password", err)
	}
	s.logger.Info("password changed", "user_id", principal.ID)
	return Result{Success: true}, nil
}

func (s *service) Authenticate(_ context.Context, accessToken string) (Claims, error) {
	return s.issuer.ParseAccessToken(accessToken)
}

func (s *service) ResumeSession(ctx context.Context, sessionID string) (SessionTicket, bool, error) {
	return s.sessions.Resume(ctx, sessionID)
}

// issueTokens is shared by register, login and refresh. The refresh token is
// stored before the result is returned so it can be redeemed immediately.
func (s *service) issueTokens(ctx context.Context, principal Principal, mode SessionMode) (Result, error) {
	access, err := s.issuer.IssueAccessToken(principal.ID, nil)
	if err != nil {
		return Result{}, err
	}
	refresh, err := s.issuer.IssueRefreshToken()
	if err != nil {
		return Result{}, err
	}
	if err := s.tokens.Replace(ctx, principal.ID, refresh); err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeStorage, "failed to store refresh token", err)
	}
	var session *SessionTicket
	if mode == ModeCookie {
		ticket, err := s.sessions.Establish(ctx, principal)
		if err != nil {
			return Result{}, err
		}
		session = &ticket
	}
	return succeeded(TokenPair{AccessToken: access, RefreshToken: refresh}, session), nil
}

func (s *service) observe(operation string, res Result, err error) {
	switch {
	case err != nil:
		s.recorder.Observe(operation, metrics.OutcomeError)
		s.logger.Error("auth operation failed", "operation", operation, "error", err)
	case res.Success:
		s.recorder.Observe(operation, metrics.OutcomeSuccess)
	default:
		s.recorder.Observe(operation, metrics.OutcomeFailure)
	}
}
