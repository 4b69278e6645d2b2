package session

// Role is the platform role carried by an authenticated user.
type Role string

const (
	// RoleAdmin is an exported constant used by the session manager.
	RoleAdmin Role = "admin"
	// RoleTeacher is an exported constant used by the session manager.
	RoleTeacher Role = "teacher"
	// RoleStudent is an exported constant used by the session manager.
	RoleStudent Role = "student"
	// RoleParent is an exported constant used by the session manager.
	RoleParent Role = "parent"
)

// Valid reports whether r is one of the four platform roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleParent:
		return true
	}
	return false
}

// User is the identity record owned by the store once authenticated.
// It is copied, never shared; no other entity references a User except
// by value.
type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Username   string `json:"username,omitempty"`
	IsVerified bool   `json:"isVerified"`
}

// TokenPair carries the two-token credential scheme. RefreshToken may be
// empty when the backend did not issue one. ExpiresIn is advisory only;
// refresh is reactive, never scheduled.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int64  `json:"expiresIn,omitempty"`
}

// Credentials is the ephemeral login input. It is never persisted.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Snapshot is a point-in-time copy of the reactive state.
type Snapshot struct {
	User    *User
	Loading bool
	Err     error
}

// Authenticated reports whether the snapshot carries a user. The session
// flag is derived, never stored.
func (s Snapshot) Authenticated() bool {
	return s.User != nil
}
