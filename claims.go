package skillsprint

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the token payload the client reads for display
// and role resolution. The signature is never verified, the backend is the
// only party that enforces trust.
type Claims struct {
	Role      string
	Roles     []string
	Subject   string
	Username  string
	ExpiresAt time.Time
}

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeClaims reads the payload segment of a three segment bearer token.
// Any malformed input returns false, never an error.
func DecodeClaims(token string) (*Claims, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, false
	}

	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return nil, false
	}

	var raw jwt.MapClaims
	if err := json.Unmarshal(payload, &raw); err != nil || raw == nil {
		return nil, false
	}

	claims := &Claims{
		Role:     stringClaim(raw, "role"),
		Roles:    stringsClaim(raw, "roles"),
		Username: stringClaim(raw, "username"),
	}

	if sub, err := raw.GetSubject(); err == nil {
		claims.Subject = sub
	}

	if exp, err := raw.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	return claims, true
}

// PrimaryRole returns the role claim, or the first entry of roles
func (c *Claims) PrimaryRole() string {
	if c == nil {
		return ""
	}
	if c.Role != "" {
		return c.Role
	}
	if len(c.Roles) > 0 {
		return c.Roles[0]
	}
	return ""
}

// DisplayName returns the subject, or the username claim
func (c *Claims) DisplayName() string {
	if c == nil {
		return ""
	}
	if c.Subject != "" {
		return c.Subject
	}
	return c.Username
}

// Expired reports whether the token advertises an expiration before now.
// Tokens without exp never expire from the client's point of view.
func (c *Claims) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt.IsZero() {
		return false
	}
	return now.After(c.ExpiresAt)
}

func stringClaim(raw jwt.MapClaims, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

func stringsClaim(raw jwt.MapClaims, key string) []string {
	list, ok := raw[key].([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
