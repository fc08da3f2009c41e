package model

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrPendingUserNotFound = errors.New("user not found or OTP expired")
	ErrInvalidOTP          = errors.New("invalid OTP")
	ErrInvalidResetToken   = errors.New("invalid or expired token")
	ErrUnauthorized        = errors.New("not authorized")
	ErrForbidden           = errors.New("only superadmin can create admin or superadmin accounts")
	ErrNotAdmin            = errors.New("account has no admin access")
)

const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"

	PendingUserTTL = 10 * time.Minute
	ResetTokenTTL  = time.Hour
)

type User struct {
	ID             primitive.ObjectID
	Username       string
	Email          string
	HashedPassword string
	Role           string
	ProfileImage   string
	ResetToken     string
	ResetExpiresAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// PendingUser is a signup awaiting OTP confirmation. Storage expires it after
// PendingUserTTL.
type PendingUser struct {
	ID             primitive.ObjectID
	Username       string
	Email          string
	HashedPassword string
	OTP            string
	CreatedAt      time.Time
}

type UserRepository interface {
	NextID() primitive.ObjectID
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Find(ctx context.Context, id primitive.ObjectID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByResetToken(ctx context.Context, token string, now time.Time) (*User, error)
	FindMany(ctx context.Context, ids []primitive.ObjectID) ([]User, error)
	FindAll(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type PendingUserRepository interface {
	NextID() primitive.ObjectID
	Create(ctx context.Context, user *PendingUser) error
	Find(ctx context.Context, id primitive.ObjectID) (*PendingUser, error)
	FindByEmail(ctx context.Context, email string) (*PendingUser, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type PasswordManager interface {
	Hash(plainTextPassword string) (string, error)
	Check(hashedPassword, plainTextPassword string) (bool, error)
}

type TokenManager interface {
	Issue(subject primitive.ObjectID) (string, error)
	Parse(token string) (primitive.ObjectID, error)
}
