package users

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	store     UserStore
	passwords PasswordIssuer
	logger    *zap.Logger
}

// NewUserService creates a new user service instance
func NewUserService(store UserStore, passwords PasswordIssuer, logger *zap.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		store:     store,
		passwords: passwords,
		logger:    logger,
	}
}

// CreateUser validates req and stores a new user with a freshly issued password
func (s *UserServiceImpl) CreateUser(ctx context.Context, req *UserInput) (*User, error) {
	if req == nil {
		return nil, NewValidationError("body", "is required")
	}
	if err := s.validateUser(ctx, req, 0); err != nil {
		return nil, err
	}

	passwordHash, err := s.passwords.Issue()
	if err != nil {
		return nil, NewServerError("issue password", err)
	}

	user, err := s.store.CreateUser(ctx, req, passwordHash)
	if err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			return nil, conflictToError(conflict, req)
		}
		return nil, NewServerError("create user", err)
	}

	s.logger.Info("User created",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username))
	return user, nil
}

// EditUser re-validates every field of req and overwrites the stored user
func (s *UserServiceImpl) EditUser(ctx context.Context, userID int64, req *UserInput) (*User, error) {
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewUserNotFoundError("id " + strconv.FormatInt(userID, 10))
		}
		return nil, NewServerError("user lookup", err)
	}

	if req == nil {
		return nil, NewValidationError("body", "is required")
	}
	if err := s.validateUser(ctx, req, userID); err != nil {
		return nil, err
	}

	user, err := s.store.UpdateUser(ctx, userID, req)
	if err != nil {
		var conflict *ConflictError
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, NewUserNotFoundError("id " + strconv.FormatInt(userID, 10))
		case errors.As(err, &conflict):
			return nil, conflictToError(conflict, req)
		default:
			return nil, NewServerError("update user", err)
		}
	}

	s.logger.Info("User updated", zap.Int64("user_id", user.ID))
	return user, nil
}

// GetUserByEmail percent-decodes rawEmail and looks the result up exactly.
// '+' is kept as a literal character so alias addresses survive decoding.
func (s *UserServiceImpl) GetUserByEmail(ctx context.Context, rawEmail string) (*User, error) {
	email, err := url.PathUnescape(rawEmail)
	if err != nil {
		return nil, NewValidationError("email", "is not a valid encoded address")
	}
	if email == "" {
		return nil, NewValidationError("email", "is required")
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewUserNotFoundError("email " + email)
		}
		return nil, NewServerError("user lookup", err)
	}

	return user, nil
}
