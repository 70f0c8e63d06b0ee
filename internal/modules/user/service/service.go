package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"anoa.com/itemprofile/internal/entity"
	"anoa.com/itemprofile/internal/modules/user/dto"
	"anoa.com/itemprofile/internal/modules/user/repository"
	"anoa.com/itemprofile/pkg/apperror"
	"anoa.com/itemprofile/pkg/metrics"
	"anoa.com/itemprofile/pkg/ratelimiter"
	"anoa.com/itemprofile/pkg/token"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const loginAction = "login_failed"

// LoginThrottle blocks a username from one client address after MaxFailures
// failed logins inside Window.
type LoginThrottle struct {
	Window      time.Duration
	MaxFailures int64
}

var errInvalidCredentials = apperror.Unauthorized("invalid username or password")

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginRequest) (*dto.AuthResponse, error)
	// Authenticate resolves a bearer token to an enabled identity.
	Authenticate(ctx context.Context, bearer string) (*entity.Identity, error)
	Validate(identity *entity.Identity) *dto.ValidateResponse
}

type authService struct {
	repo          repository.UserRepository
	tokens        token.Service
	limiter  *ratelimiter.Limiter
	throttle LoginThrottle
	log      logrus.FieldLogger
}

func NewAuthService(repo repository.UserRepository, tokens token.Service, limiter *ratelimiter.Limiter, throttle LoginThrottle, log logrus.FieldLogger) AuthService {
	return &authService{
		repo:     repo,
		tokens:   tokens,
		limiter:  limiter,
		throttle: throttle,
		log:      log.WithField("service", "auth"),
	}
}

// Register hashes the password and inserts the user in a single attempt; the
// store's unique indexes decide conflicts.
func (s *authService) Register(ctx context.Context, input dto.RegisterRequest) (*dto.AuthResponse, error) {
	input.Normalize()
	if n := utf8.RuneCountInString(input.Username); n < dto.UsernameMinLen || n > dto.UsernameMaxLen {
		return nil, apperror.InvalidInput(fmt.Sprintf("Username must be %d to %d characters", dto.UsernameMinLen, dto.UsernameMaxLen))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperror.InvalidInput("Password cannot exceed 72 bytes")
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	identity, err := s.repo.CreateUser(ctx, repository.NewUser{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashed),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			metrics.RecordAuthEvent("register", "conflict")
		}
		return nil, err
	}

	metrics.RecordAuthEvent("register", "success")
	s.log.WithField("username", identity.Username).Info("user registered")

	return s.buildAuthResponse(identity)
}

func (s *authService) Login(ctx context.Context, input dto.LoginRequest) (*dto.AuthResponse, error) {
	username := strings.TrimSpace(input.Username)
	subject := username + "|" + input.ClientIP

	if err := s.limiter.Check(ctx, loginAction, subject, s.throttle.MaxFailures); err != nil {
		var limitErr *ratelimiter.LimitError
		if errors.As(err, &limitErr) {
			metrics.RecordAuthEvent("login", "throttled")
			return nil, err
		}
		s.log.WithError(err).Warn("login rate limit check failed")
	}

	identity, err := s.repo.LoadByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, s.failLogin(ctx, subject)
		}
		return nil, err
	}

	if !identity.Enabled {
		return nil, s.failLogin(ctx, subject)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(input.Password)); err != nil {
		return nil, s.failLogin(ctx, subject)
	}

	if err := s.limiter.Clear(ctx, loginAction, subject); err != nil {
		s.log.WithError(err).Warn("failed to clear login failures")
	}

	metrics.RecordAuthEvent("login", "success")
	return s.buildAuthResponse(identity)
}

func (s *authService) failLogin(ctx context.Context, subject string) error {
	metrics.RecordAuthEvent("login", "failed")
	if _, err := s.limiter.Fail(ctx, loginAction, subject, s.throttle.Window); err != nil {
		s.log.WithError(err).Warn("failed to record login failure")
	}
	return errInvalidCredentials
}

func (s *authService) Authenticate(ctx context.Context, bearer string) (*entity.Identity, error) {
	username, err := s.tokens.Verify(bearer)
	if err != nil {
		return nil, apperror.Unauthorized(err.Error())
	}

	identity, err := s.repo.LoadByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("user no longer exists")
		}
		return nil, err
	}
	if !identity.Enabled {
		return nil, apperror.Unauthorized("user is disabled")
	}

	return identity, nil
}

func (s *authService) Validate(identity *entity.Identity) *dto.ValidateResponse {
	return &dto.ValidateResponse{
		Message:  "token is valid for user: " + identity.Username,
		Username: identity.Username,
		Roles:    identity.Roles,
	}
}

func (s *authService) buildAuthResponse(identity *entity.Identity) (*dto.AuthResponse, error) {
	signed, expiresAt, err := s.tokens.Issue(identity.Username)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(expiresAt).Round(time.Second).Seconds()),
		Username:    identity.Username,
		Email:       identity.Email,
	}, nil
}
