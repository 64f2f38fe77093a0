package identity

import (
	"time"
)

// RegisterInput contains the input for self-registration.
// Presence of the required fields is checked by the HTTP contract.
type RegisterInput struct {
	Zid        string
	Name       string
	Password   string
	RoleID     int64
	CourseCode string
	IsLeader   bool
	IsNewGroup bool
	GroupName  string
	GroupID    *int64
}

// RegisterResult is returned by a successful registration. It never carries the password.
type RegisterResult struct {
	User     UserInfo  `json:"user"`
	Group    GroupInfo `json:"group"`
	NewGroup bool      `json:"-"`
}

// UserInfo is the public view of a user
type UserInfo struct {
	Zid    string `json:"zid"`
	Name   string `json:"name"`
	RoleID int64  `json:"role_id"`
}

// GroupInfo is the group a user registered into
type GroupInfo struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CourseCode string `json:"course_code"`
}

// LoginInput contains the input for user login
type LoginInput struct {
	Username string
	Password string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	User  LoginUser   `json:"user"`
	Token TokenResult `json:"token"`
}

// LoginUser is the user block of a login response. GroupID is the first
// membership's group, or null.
type LoginUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	RoleID  int64  `json:"role_id"`
	GroupID *int64 `json:"groupid"`
}

// TokenResult is an issued token pair
type TokenResult struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"`
}

// LogoutInput names the access token to revoke
type LogoutInput struct {
	TokenID   string
	ExpiresAt time.Time
}

// RoleRef is one row of the user-role lookup
type RoleRef struct {
	RoleID int64 `json:"role_id"`
}

// RoleInfo is a role in the roles lookup
type RoleInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TutorInfo is a tutor in the tutors lookup
type TutorInfo struct {
	Zid  string `json:"zid"`
	Name string `json:"name"`
}
