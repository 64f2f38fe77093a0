package identity

import (
	"strings"
	"time"

	"github.com/avocado/teamhub/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Well-known role ids seeded by the initial migration
const (
	RoleStudent int64 = 1
	RoleAdmin   int64 = 2
	RoleTutor   int64 = 3
)

const bcryptCost = bcrypt.DefaultCost

// bcrypt only reads the first 72 bytes of a password
const maxPasswordBytes = 72

// User is a student or staff member identified by zid
type User struct {
	shared.EventRecorder
	Zid          string
	Name         string
	PasswordHash string
	RoleID       int64
	CreatedAt    time.Time
}

// Role is a named permission level
type Role struct {
	ID   int64
	Name string
}

// NewUser validates the fields and hashes the password
func NewUser(zid, name, password string, roleID int64) (*User, error) {
	zid = strings.TrimSpace(zid)
	name = strings.TrimSpace(name)
	if zid == "" || name == "" {
		return nil, shared.ErrInvalidInput.WithMessage("zid and name cannot be blank")
	}
	if len(zid) > 50 {
		return nil, shared.ErrInvalidInput.WithMessage("zid cannot exceed 50 characters")
	}
	if roleID <= 0 {
		return nil, shared.ErrInvalidInput.WithMessage("role_id must be positive")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &User{
		Zid:          zid,
		Name:         name,
		PasswordHash: hash,
		RoleID:       roleID,
		CreatedAt:    time.Now(),
	}, nil
}

// HashPassword returns the bcrypt hash of password
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", shared.ErrInvalidInput.WithMessage("password cannot be empty")
	}
	if len(password) > maxPasswordBytes {
		return "", shared.ErrInvalidInput.WithMessage("password cannot exceed 72 bytes")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// IsStaff reports whether the user grades groups (admin or tutor)
func (u *User) IsStaff() bool {
	return u.RoleID == RoleAdmin || u.RoleID == RoleTutor
}
