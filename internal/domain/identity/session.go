package identity

// Session is the authenticated caller resolved from a token.
// Handlers receive it explicitly instead of reading ambient client state.
type Session struct {
	Zid     string `json:"zid"`
	Name    string `json:"name"`
	RoleID  int64  `json:"role_id"`
	GroupID *int64 `json:"group_id"`
}

// IsStaff reports whether the session belongs to an admin or tutor
func (s Session) IsStaff() bool {
	return s.RoleID == RoleAdmin || s.RoleID == RoleTutor
}
