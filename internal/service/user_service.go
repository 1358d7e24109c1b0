package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/asaskevich/govalidator"
	"golang.org/x/crypto/bcrypt"

	"github.com/lesechos/accounts/internal/audit"
	"github.com/lesechos/accounts/internal/logging"
	"github.com/lesechos/accounts/internal/metrics"
	"github.com/lesechos/accounts/internal/models"
	"github.com/lesechos/accounts/internal/password"
	"github.com/lesechos/accounts/internal/repository"
)

// UserService manages directory records on behalf of API callers.
type UserService struct {
	repo     repository.Repository
	hasher   *password.Hasher
	auditLog *audit.Logger
	log      *logging.Logger
}

func NewUserService(repo repository.Repository, hasher *password.Hasher, auditLog *audit.Logger, log *logging.Logger) *UserService {
	return &UserService{
		repo:     repo,
		hasher:   hasher,
		auditLog: auditLog,
		log:      log,
	}
}

// Register creates an account through the public endpoint. Only USER
// accounts can be created this way.
func (s *UserService) Register(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	return s.create(ctx, nil, req, models.ActionRegister)
}

// CreateByAdmin creates an account of any role on behalf of actor.
func (s *UserService) CreateByAdmin(ctx context.Context, actor *models.User, req *models.CreateUserRequest) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, Forbidden(MsgInsufficientPermissions)
	}
	return s.create(ctx, actor, req, models.ActionUserCreate)
}

func (s *UserService) create(ctx context.Context, actor *models.User, req *models.CreateUserRequest, action string) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, BadRequest(MsgUsernameRequired)
	}
	if req.Password == "" {
		return nil, BadRequest(MsgPasswordRequired)
	}

	role := models.RoleUser
	if req.Role != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			return nil, BadRequest(MsgInvalidRole)
		}
		role = parsed
	}
	if role == models.RoleAdmin && !actor.IsAdmin() {
		return nil, BadRequest(MsgAdminRoleAdminOnly)
	}

	if req.Email != "" && !govalidator.IsEmail(req.Email) {
		return nil, BadRequest(MsgInvalidEmail)
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.CreateUser(ctx, &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Email:        req.Email,
		Name:         req.Name,
		Address:      req.Address,
		Comment:      req.Comment,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			s.logEvent(ctx, actor, action, "", models.ResultFailure, "username taken", nil)
			return nil, BadRequest(MsgUsernameTaken)
		}
		s.log.ErrorContext(ctx, "User creation failed", logging.Username(username), logging.Error(err))
		return nil, Internal(err)
	}

	metrics.UsersCreated.WithLabelValues(string(created.Role)).Inc()
	s.logEvent(ctx, actor, action, created.ID, models.ResultSuccess, "", map[string]any{
		"username": created.Username,
		"role":     string(created.Role),
	})
	return created.Sanitized(), nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(ctx, id, err)
	}
	return user.Sanitized(), nil
}

// List returns one page of users.
func (s *UserService) List(ctx context.Context, q models.ListQuery) ([]*models.User, error) {
	users, err := s.repo.ListUsers(ctx, q)
	if err != nil {
		s.log.ErrorContext(ctx, "User listing failed", logging.Error(err))
		return nil, Internal(err)
	}
	for i, u := range users {
		users[i] = u.Sanitized()
	}
	return users, nil
}

// Update applies req to the user with the given id. Usernames never change;
// role changes require actor to be an admin.
func (s *UserService) Update(ctx context.Context, actor *models.User, id string, req *models.UpdateUserRequest) (*models.User, error) {
	patch, err := s.buildPatch(actor, req)
	if err != nil {
		s.logEvent(ctx, actor, models.ActionUserUpdate, id, models.ResultFailure, AsError(err).Message, nil)
		return nil, err
	}

	if patch.IsEmpty() {
		// Nothing to write; still 404 on an unknown id.
		user, err := s.repo.GetUserByID(ctx, id)
		if err != nil {
			return nil, s.lookupError(ctx, id, err)
		}
		return user.Sanitized(), nil
	}

	updated, err := s.repo.UpdateUser(ctx, id, patch)
	if err != nil {
		return nil, s.lookupError(ctx, id, err)
	}

	s.logEvent(ctx, actor, models.ActionUserUpdate, updated.ID, models.ResultSuccess, "", map[string]any{
		"fields": patchFields(patch),
	})
	return updated.Sanitized(), nil
}

func (s *UserService) buildPatch(actor *models.User, req *models.UpdateUserRequest) (*models.UserPatch, error) {
	if req.Username != nil {
		return nil, BadRequest(MsgUsernameImmutable)
	}

	patch := &models.UserPatch{
		Name:    req.Name,
		Address: req.Address,
		Comment: req.Comment,
	}

	if req.Role != nil {
		if !actor.IsAdmin() {
			return nil, BadRequest(MsgRoleUpdateAdminOnly)
		}
		role, err := models.ParseRole(*req.Role)
		if err != nil {
			return nil, BadRequest(MsgInvalidRole)
		}
		patch.Role = &role
	}

	if req.Email != nil {
		if *req.Email != "" && !govalidator.IsEmail(*req.Email) {
			return nil, BadRequest(MsgInvalidEmail)
		}
		patch.Email = req.Email
	}

	if req.Password != nil {
		hash, err := s.hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}

	return patch, nil
}

// Delete removes the user with the given id and returns the removed record.
func (s *UserService) Delete(ctx context.Context, actor *models.User, id string) (*models.User, error) {
	deleted, err := s.repo.DeleteUser(ctx, id)
	if err != nil {
		return nil, s.lookupError(ctx, id, err)
	}

	s.logEvent(ctx, actor, models.ActionUserDelete, deleted.ID, models.ResultSuccess, "", map[string]any{
		"username": deleted.Username,
	})
	return deleted.Sanitized(), nil
}

func (s *UserService) hashPassword(plaintext string) (string, error) {
	if err := password.Validate(plaintext); err != nil {
		return "", BadRequest(MsgPasswordTooShort)
	}
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", BadRequest(MsgPasswordTooLong)
		}
		return "", Internal(err)
	}
	return hash, nil
}

func (s *UserService) lookupError(ctx context.Context, id string, err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return NotFound(fmt.Sprintf("User with ID %s not found.", id))
	}
	s.log.ErrorContext(ctx, "User lookup failed", logging.UserID(id), logging.Error(err))
	return Internal(err)
}

func (s *UserService) logEvent(ctx context.Context, actor *models.User, action, resourceID, result, reason string, metadata map[string]any) {
	e := audit.Event{
		Action:     action,
		ResourceID: resourceID,
		Result:     result,
		Reason:     reason,
		Metadata:   metadata,
	}
	if actor != nil {
		e.ActorID = actor.ID
		e.ActorUsername = actor.Username
	}
	s.auditLog.Log(ctx, e)
}

func patchFields(p *models.UserPatch) []string {
	var fields []string
	if p.Email != nil {
		fields = append(fields, "email")
	}
	if p.Name != nil {
		fields = append(fields, "name")
	}
	if p.Address != nil {
		fields = append(fields, "address")
	}
	if p.Comment != nil {
		fields = append(fields, "comment")
	}
	if p.Role != nil {
		fields = append(fields, "role")
	}
	if p.PasswordHash != nil {
		fields = append(fields, "password")
	}
	return fields
}
