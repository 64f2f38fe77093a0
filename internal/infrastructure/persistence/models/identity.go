package models

import (
	"time"

	"github.com/avocado/teamhub/internal/domain/identity"
)

// RoleModel is the persistence model for roles
type RoleModel struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(50);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (RoleModel) TableName() string { return "roles" }

// ToDomain converts the model to a domain Role
func (m *RoleModel) ToDomain() identity.Role {
	return identity.Role{ID: m.ID, Name: m.Name}
}

// UserModel is the persistence model for users
type UserModel struct {
	Zid          string    `gorm:"type:varchar(50);primaryKey"`
	Name         string    `gorm:"type:varchar(100);not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	RoleID       int64     `gorm:"not null;index"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string { return "users" }

// ToDomain converts the model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		Zid:          m.Zid,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		RoleID:       m.RoleID,
		CreatedAt:    m.CreatedAt,
	}
}

// UserModelFromDomain creates a model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	return &UserModel{
		Zid:          u.Zid,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		RoleID:       u.RoleID,
		CreatedAt:    u.CreatedAt,
	}
}
