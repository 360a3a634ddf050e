package users

import (
	"context"
	"errors"
)

// validateUser runs the checks shared by create and edit, in order, stopping at
// the first failure. A record whose id equals excludeID never counts as a
// conflict; create passes 0, which no stored record has.
func (s *UserServiceImpl) validateUser(ctx context.Context, req *UserInput, excludeID int64) error {
	if req.Email == "" {
		return NewValidationError("email", "is required")
	}
	if req.Username == "" {
		return NewValidationError("username", "is required")
	}

	taken, err := belongsToOther(ctx, s.store.GetUserByUsername, req.Username, excludeID)
	if err != nil {
		return NewServerError("username lookup", err)
	}
	if taken {
		return NewUsernameTakenError(req.Username)
	}

	taken, err = belongsToOther(ctx, s.store.GetUserByEmail, req.Email, excludeID)
	if err != nil {
		return NewServerError("email lookup", err)
	}
	if taken {
		return NewEmailInUseError(req.Email)
	}

	if req.firstNameNotString || req.FirstName == "" {
		return NewValidationError("firstName", "must be a non-empty string")
	}
	if req.lastNameNotString || req.LastName == "" {
		return NewValidationError("lastName", "must be a non-empty string")
	}

	return nil
}

func belongsToOther(
	ctx context.Context,
	lookup func(context.Context, string) (*User, error),
	key string,
	excludeID int64,
) (bool, error) {
	existing, err := lookup(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ID != excludeID, nil
}
