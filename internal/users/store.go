package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/kshyun28/ddd-forum/internal/database"
)

// UserSchema represents the users table. email and username carry UNIQUE
// constraints so concurrent writers cannot both succeed.
type UserSchema struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Email     string    `bun:"email,notnull,unique"`
	Username  string    `bun:"username,notnull,unique"`
	FirstName string    `bun:"first_name,notnull"`
	LastName  string    `bun:"last_name,notnull"`
	Password  string    `bun:"password,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// UserStoreImpl implements the UserStore interface
type UserStoreImpl struct {
	db bun.IDB
}

// NewUserStore creates a new user store instance
func NewUserStore(db bun.IDB) *UserStoreImpl {
	return &UserStoreImpl{
		db: db,
	}
}

func (s *UserStoreImpl) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *UserStoreImpl) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUser(ctx, "email", email)
}

func (s *UserStoreImpl) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.getUser(ctx, "username", username)
}

func (s *UserStoreImpl) getUser(ctx context.Context, column string, value interface{}) (*User, error) {
	var schema UserSchema
	err := s.db.NewSelect().
		Model(&schema).
		Where("?TableAlias.? = ?", bun.Ident(column), value).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	return UserSchemaToUser(schema), nil
}

// CreateUser inserts a new user row
func (s *UserStoreImpl) CreateUser(ctx context.Context, req *UserInput, passwordHash string) (*User, error) {
	now := time.Now().UTC()
	schema := UserSchema{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  passwordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.NewInsert().
		Model(&schema).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if conflict := conflictFrom(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return UserSchemaToUser(schema), nil
}

// UpdateUser overwrites the four writable fields of user id
func (s *UserStoreImpl) UpdateUser(ctx context.Context, id int64, req *UserInput) (*User, error) {
	result, err := s.db.NewUpdate().
		Model((*UserSchema)(nil)).
		Set("email = ?", req.Email).
		Set("username = ?", req.Username).
		Set("first_name = ?", req.FirstName).
		Set("last_name = ?", req.LastName).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		if conflict := conflictFrom(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.GetUserByID(ctx, id)
}

func conflictFrom(err error) *ConflictError {
	constraint, ok := database.UniqueViolation(err)
	if !ok {
		return nil
	}

	field := "email"
	if strings.Contains(constraint, "username") {
		field = "username"
	}
	return &ConflictError{Field: field, Cause: err}
}

// UserSchemaToUser drops the password hash on the way out
func UserSchemaToUser(schema UserSchema) *User {
	return &User{
		ID:        schema.ID,
		Email:     schema.Email,
		Username:  schema.Username,
		FirstName: schema.FirstName,
		LastName:  schema.LastName,
		CreatedAt: schema.CreatedAt,
		UpdatedAt: schema.UpdatedAt,
	}
}
