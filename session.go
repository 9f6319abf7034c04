package skillsprint

import (
	"fmt"
	"strings"
)

// Session is the client's belief about who is logged in
type Session struct {
	Token    string   `json:"token"`
	Role     UserRole `json:"role"`
	Username string   `json:"username"`
}

// IsAdmin is derived from the role, never stored
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role.IsAdmin()
}

// String masks the token so sessions can be logged
func (s *Session) String() string {
	if s == nil {
		return "<nil>"
	}
	return fmt.Sprintf("user=%s role=%s token=%s", s.Username, s.Role, maskToken(s.Token))
}

// resolveSession applies the fallback chain: explicit values first, then
// decoded claims, then defaults. Empty strings fall through.
func resolveSession(token, role, username string) *Session {
	claims, _ := DecodeClaims(token)

	return &Session{
		Token:    token,
		Role:     UserRole(firstNonEmpty(role, claims.PrimaryRole(), string(DefaultRole))),
		Username: firstNonEmpty(username, claims.DisplayName(), DefaultUsername),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func maskToken(token string) string {
	if token == "" {
		return "<none>"
	}
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + "..." + token[len(token)-4:]
}
