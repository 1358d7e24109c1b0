package service

import (
	"context"
	"errors"
	"strings"

	"github.com/lesechos/accounts/internal/audit"
	"github.com/lesechos/accounts/internal/logging"
	"github.com/lesechos/accounts/internal/metrics"
	"github.com/lesechos/accounts/internal/models"
	"github.com/lesechos/accounts/internal/password"
	"github.com/lesechos/accounts/internal/repository"
	"github.com/lesechos/accounts/internal/revocation"
	"github.com/lesechos/accounts/pkg/tokens"
)

// AuthService owns the login and logout flows and the two request guards.
type AuthService struct {
	repo     repository.Repository
	hasher   *password.Hasher
	issuer   *tokens.Issuer
	revoked  revocation.Store
	auditLog *audit.Logger
	log      *logging.Logger
}

func NewAuthService(
	repo repository.Repository,
	hasher *password.Hasher,
	issuer *tokens.Issuer,
	revoked revocation.Store,
	auditLog *audit.Logger,
	log *logging.Logger,
) *AuthService {
	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		issuer:   issuer,
		revoked:  revoked,
		auditLog: auditLog,
		log:      log,
	}
}

// Login verifies credentials and issues a session token. Unknown usernames
// and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			s.log.ErrorContext(ctx, "Login lookup failed", logging.Error(err))
			metrics.LoginAttempts.WithLabelValues("error").Inc()
			return nil, Internal(err)
		}
		s.loginFailed(ctx, "", req.Username, "user not found")
		return nil, Unauthorized(MsgInvalidCredentials)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.loginFailed(ctx, user.ID, user.Username, "invalid password")
		return nil, Unauthorized(MsgInvalidCredentials)
	}

	issued, err := s.issuer.Issue(tokens.Subject{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Token issue failed", logging.UserID(user.ID), logging.Error(err))
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return nil, Internal(err)
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	s.auditLog.Log(ctx, audit.Event{
		ActorID:       user.ID,
		ActorUsername: user.Username,
		Action:        models.ActionLogin,
		Result:        models.ResultSuccess,
	})

	return &models.LoginResponse{
		AccessToken: issued.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.issuer.TTL().Seconds()),
	}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, userID, username, reason string) {
	metrics.LoginAttempts.WithLabelValues("failure").Inc()
	s.auditLog.Log(ctx, audit.Event{
		ActorID:       userID,
		ActorUsername: username,
		Action:        models.ActionLogin,
		Result:        models.ResultFailure,
		Reason:        reason,
	})
}

// Logout revokes the bearer token in authHeader until its own expiry.
func (s *AuthService) Logout(ctx context.Context, authHeader string) (*models.LogoutResponse, error) {
	if strings.TrimSpace(authHeader) == "" {
		return nil, Unauthorized(MsgAuthHeaderMissing)
	}
	token, ok := bearerToken(authHeader)
	if !ok {
		return nil, Unauthorized(MsgBearerTokenMissing)
	}

	claims, err := s.issuer.Verify(token)
	if err != nil {
		return nil, verifyError(err)
	}

	if err := s.revoked.Revoke(ctx, token, claims.ExpiresAt.Time); err != nil {
		s.log.ErrorContext(ctx, "Token revocation failed", logging.TokenID(claims.ID), logging.Error(err))
		return nil, Internal(err)
	}

	metrics.TokensRevoked.Inc()
	s.auditLog.Log(ctx, audit.Event{
		ActorID:       claims.UserID(),
		ActorUsername: claims.Username,
		Action:        models.ActionLogout,
		Result:        models.ResultSuccess,
		Metadata:      map[string]any{"jti": claims.ID},
	})

	return &models.LogoutResponse{Message: MsgLoggedOut}, nil
}

// Authenticate resolves the user behind a bearer token. Checks run in order:
// token present, not revoked, signature and expiry valid, subject still in
// the directory. The returned user has no password hash.
func (s *AuthService) Authenticate(ctx context.Context, authHeader string) (*models.User, error) {
	user, err := s.authenticate(ctx, authHeader)
	outcome := metrics.OutcomeAllow
	if err != nil {
		outcome = metrics.OutcomeDeny
		if KindOf(err) == KindInternal {
			outcome = metrics.OutcomeError
		}
	}
	metrics.GuardDecisions.WithLabelValues(metrics.GuardAuthenticate, outcome).Inc()
	return user, err
}

func (s *AuthService) authenticate(ctx context.Context, authHeader string) (*models.User, error) {
	token, ok := bearerToken(authHeader)
	if !ok {
		return nil, Unauthorized(MsgTokenNotProvided)
	}

	revoked, err := s.revoked.IsRevoked(ctx, token)
	if err != nil {
		s.log.ErrorContext(ctx, "Revocation lookup failed", logging.Error(err))
		return nil, Internal(err)
	}
	if revoked {
		return nil, Unauthorized(MsgTokenBlacklisted)
	}

	claims, err := s.issuer.Verify(token)
	if err != nil {
		return nil, verifyError(err)
	}

	user, err := s.repo.GetUserByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, Unauthorized(MsgUserNotFound)
		}
		s.log.ErrorContext(ctx, "User lookup failed", logging.UserID(claims.UserID()), logging.Error(err))
		return nil, Internal(err)
	}

	return user.Sanitized(), nil
}

// Authorize re-reads user from the directory and checks its current role
// against roles. An empty roles set allows everyone. On success the fresh
// record is returned and should replace the one carried by the request.
func (s *AuthService) Authorize(ctx context.Context, user *models.User, roles []models.Role) (*models.User, error) {
	if len(roles) == 0 {
		return user, nil
	}

	fresh, err := s.authorize(ctx, user, roles)
	outcome := metrics.OutcomeAllow
	if err != nil {
		outcome = metrics.OutcomeDeny
		if KindOf(err) == KindInternal {
			outcome = metrics.OutcomeError
		}
	}
	metrics.GuardDecisions.WithLabelValues(metrics.GuardAuthorize, outcome).Inc()
	return fresh, err
}

func (s *AuthService) authorize(ctx context.Context, user *models.User, roles []models.Role) (*models.User, error) {
	if user == nil {
		return nil, Forbidden(MsgUserNotInRequest)
	}

	fresh, err := s.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, Forbidden(MsgUserNotFound)
		}
		s.log.ErrorContext(ctx, "User lookup failed", logging.UserID(user.ID), logging.Error(err))
		return nil, Internal(err)
	}

	if !fresh.HasAnyRole(roles...) {
		s.auditLog.Log(ctx, audit.Event{
			ActorID:       fresh.ID,
			ActorUsername: fresh.Username,
			Action:        models.ActionAccessDenied,
			Result:        models.ResultFailure,
			Reason:        "role " + string(fresh.Role) + " not permitted",
		})
		return nil, Forbidden(MsgInsufficientPermissions)
	}

	return fresh.Sanitized(), nil
}

func verifyError(err error) *Error {
	if errors.Is(err, tokens.ErrExpiredToken) {
		return Unauthorized(MsgTokenExpired)
	}
	return Unauthorized(MsgInvalidToken)
}

// bearerToken extracts the credential from "Bearer <token>". The scheme is
// case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
